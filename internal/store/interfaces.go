package store

import (
	"context"

	"github.com/MKhiriev/drpg-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// StateStore persists one LocalRecord per catalog item id. Implementations
// must be safe for concurrent use by the download workers.
type StateStore interface {
	// Get returns ErrRecordNotFound when id has no record.
	Get(ctx context.Context, id string) (models.LocalRecord, error)
	// Put inserts or replaces the record for rec.ItemID in one statement.
	Put(ctx context.Context, rec models.LocalRecord) error
	// All returns a snapshot of every record ordered by item id.
	All(ctx context.Context) ([]models.LocalRecord, error)
	// Prune deletes records whose id is not in keep and reports how many
	// were removed. An empty keep deletes nothing.
	Prune(ctx context.Context, keep []string) (int64, error)
	Close() error
}
