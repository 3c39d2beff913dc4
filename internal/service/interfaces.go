// Package service implements the sync engine: the diff planner, the
// download scheduler, the sync report and the SyncService entry point
// that ties them to the catalog and the state store.
package service

import (
	"context"

	"github.com/MKhiriev/drpg-sync/models"
)

// Planner turns a catalog snapshot into one action per item.
type Planner interface {
	// Plan returns actions in catalog order.
	Plan(ctx context.Context, items []models.CatalogItem, opts models.SyncOptions) ([]models.SyncAction, error)
}

// Scheduler executes planned actions. Outcome i always belongs to action i.
type Scheduler interface {
	Execute(ctx context.Context, actions []models.SyncAction, opts models.SyncOptions) []models.SyncOutcome
}

type SyncService interface {
	// Sync runs one full pass. The error is non-nil only for failures that
	// stop the run before any item is processed; the report is still
	// returned when the catalog could not be listed.
	Sync(ctx context.Context, opts models.SyncOptions) (*Report, error)
}
