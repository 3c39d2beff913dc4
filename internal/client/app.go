package client

import (
	"context"
	"fmt"
	"io"

	"github.com/MKhiriev/drpg-sync/internal/adapter"
	"github.com/MKhiriev/drpg-sync/internal/config"
	"github.com/MKhiriev/drpg-sync/internal/logger"
	"github.com/MKhiriev/drpg-sync/internal/service"
	"github.com/MKhiriev/drpg-sync/internal/store"
	"github.com/MKhiriev/drpg-sync/models"
	"github.com/rs/zerolog"
)

var _ Client = (*App)(nil)

type App struct {
	cfg      *config.StructuredConfig
	store    store.StateStore
	services *service.Services
	renderer *ReportRenderer
	logger   *logger.Logger
}

// NewApp opens the state store and builds the catalog adapter and the sync
// engine from cfg. The report is rendered to out. A dry run opens the store
// read-only and leaves the disk untouched.
func NewApp(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger, out io.Writer) (*App, error) {
	openStore := store.Open
	if cfg.Library.DryRun {
		openStore = store.OpenReadOnly
	}

	st, err := openStore(ctx, cfg.Storage.DBPath, log.GetChildLogger("store"))
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}

	catalog, err := adapter.NewHTTPCatalog(cfg.Catalog, log.GetChildLogger("catalog"))
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("create catalog adapter: %w", err)
	}

	return &App{
		cfg:      cfg,
		store:    st,
		services: service.NewServices(catalog, catalog, st, *cfg, log.GetChildLogger("engine")),
		renderer: NewReportRenderer(out, log.GetLevel() <= zerolog.DebugLevel),
		logger:   log,
	}, nil
}

// SyncOptions maps the loaded configuration onto the engine's options.
func SyncOptions(cfg *config.StructuredConfig) models.SyncOptions {
	return models.SyncOptions{
		LibraryPath:       cfg.Library.Path,
		Concurrency:       cfg.Workers.Threads,
		ValidateChecksums: cfg.Library.ValidateChecksums,
		DryRun:            cfg.Library.DryRun,
		CompatibilityMode: cfg.Library.CompatibilityMode,
		OmitPublisher:     cfg.Library.OmitPublisher,
	}
}

func (a *App) Run(ctx context.Context) (int, error) {
	opts := SyncOptions(a.cfg)

	a.logger.Info().
		Str("library", opts.LibraryPath).
		Int("threads", opts.Concurrency).
		Bool("validate", opts.ValidateChecksums).
		Bool("dry_run", opts.DryRun).
		Msg("starting sync")

	report, err := a.services.SyncService.Sync(ctx, opts)
	if report != nil {
		if renderErr := a.renderer.Render(report); renderErr != nil {
			a.logger.Warn().Err(renderErr).Msg("could not render report")
		}
	}
	if err != nil {
		if report != nil {
			return report.ExitCode(), err
		}
		return service.ExitFailure, err
	}

	return report.ExitCode(), nil
}

func (a *App) Close() error {
	return a.store.Close()
}
