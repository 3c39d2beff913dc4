package models

import "time"

// SyncStatus is the persisted state of a local record.
type SyncStatus string

const (
	// StatusComplete means the file exists at Path with the recorded size
	// (and checksum, when one is recorded).
	StatusComplete SyncStatus = "complete"
	// StatusPartial marks a record whose transfer did not finish.
	StatusPartial SyncStatus = "partial"
	// StatusFailed marks a record whose last transfer failed.
	StatusFailed SyncStatus = "failed"
)

// LocalRecord is the persisted last-known state of one catalog item.
type LocalRecord struct {
	ItemID       string     `json:"item_id"`
	Path         string     `json:"path"`
	Size         int64      `json:"size"`
	LastModified time.Time  `json:"last_modified"`
	Checksum     string     `json:"checksum,omitempty"`
	Status       SyncStatus `json:"status"`
	SyncedAt     time.Time  `json:"synced_at"`

	ProductName string `json:"product_name"`
	Publisher   string `json:"publisher"`
	FileName    string `json:"file_name"`
}

// IsComplete reports whether the record was committed after a successful
// transfer.
func (r LocalRecord) IsComplete() bool {
	return r.Status == StatusComplete
}
