package models

import "time"

// CatalogItem is one downloadable file of a purchased product as reported
// by the remote catalog. Items are produced fresh on every sync and are
// never mutated afterwards.
type CatalogItem struct {
	// ID is the stable identifier of the file across runs
	// ("<orderProductId>-<fileIndex>"). It is the only key used to match
	// an item against its local record.
	ID string `json:"id"`

	// ProductName is the display name of the product the file belongs to.
	ProductName string `json:"product_name"`

	// Publisher is the publisher's display name. May be empty.
	Publisher string `json:"publisher"`

	// FileName is the remote file name (e.g. "Core Rules.pdf").
	FileName string `json:"file_name"`

	// Size is the declared size in bytes. Zero means the catalog did not
	// declare a size.
	Size int64 `json:"size"`

	// LastModified is the declared last-modified timestamp.
	LastModified time.Time `json:"last_modified"`

	// Checksum is the newest declared MD5 checksum (hex). Empty when the
	// catalog did not provide one.
	Checksum string `json:"checksum,omitempty"`

	// ResolveToken is an opaque value handed back to the catalog client
	// to resolve a short-lived download URL.
	ResolveToken string `json:"-"`
}

// Title returns a short human-readable label for logs and reports.
func (c CatalogItem) Title() string {
	return c.ProductName + " - " + c.FileName
}
