package service

import (
	"github.com/MKhiriev/drpg-sync/internal/adapter"
	"github.com/MKhiriev/drpg-sync/internal/config"
	"github.com/MKhiriev/drpg-sync/internal/logger"
	"github.com/MKhiriev/drpg-sync/internal/store"
	"github.com/MKhiriev/drpg-sync/internal/validators"
)

type Services struct {
	Planner     Planner
	Scheduler   Scheduler
	SyncService SyncService
}

func NewServices(catalog adapter.CatalogFetcher, files adapter.FileFetcher, st store.StateStore, cfg config.StructuredConfig, logger *logger.Logger) *Services {
	planner := NewPlanner(st, logger)
	scheduler := NewScheduler(catalog, files, st, cfg.Workers, logger)

	return &Services{
		Planner:     planner,
		Scheduler:   scheduler,
		SyncService: NewSyncService(catalog, st, validators.NewCatalogItemValidator(), planner, scheduler, cfg.Workers, logger),
	}
}
