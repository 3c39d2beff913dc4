package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MKhiriev/drpg-sync/internal/adapter"
	"github.com/MKhiriev/drpg-sync/internal/config"
	"github.com/MKhiriev/drpg-sync/internal/logger"
	"github.com/MKhiriev/drpg-sync/internal/store"
	"github.com/MKhiriev/drpg-sync/internal/validators"
	"github.com/MKhiriev/drpg-sync/models"
	"github.com/sethvargo/go-retry"
)

type syncService struct {
	catalog   adapter.CatalogFetcher
	store     store.StateStore
	validator validators.Validator
	planner   Planner
	scheduler Scheduler

	retries   uint64
	baseDelay time.Duration
	now       func() time.Time

	logger *logger.Logger
}

// NewSyncService wires the engine. Listing the catalog is retried with the
// same policy the scheduler uses for transfers.
func NewSyncService(
	catalog adapter.CatalogFetcher,
	st store.StateStore,
	validator validators.Validator,
	planner Planner,
	scheduler Scheduler,
	cfg config.Workers,
	logger *logger.Logger,
) SyncService {
	return &syncService{
		catalog:   catalog,
		store:     st,
		validator: validator,
		planner:   planner,
		scheduler: scheduler,
		retries:   uint64(max(cfg.Retries, 0)),
		baseDelay: max(cfg.RetryBaseDelay, minRetryDelay),
		now:       time.Now,
		logger:    logger,
	}
}

// Sync implements SyncService.
//
// Invalid options fail before anything else happens. A catalog that cannot
// be listed yields a failure report together with an ErrListPurchases
// error. Otherwise every listed item ends up with exactly one outcome, in
// catalog order, and records of items no longer listed are pruned unless
// this is a dry run.
func (s *syncService) Sync(ctx context.Context, opts models.SyncOptions) (*Report, error) {
	start := s.now()

	opts, err := normalizeOptions(opts)
	if err != nil {
		return nil, err
	}

	items, err := s.listPurchases(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrListPurchases, err)
		report := NewListingFailureReport(err)
		report.LibraryPath = opts.LibraryPath
		report.DryRun = opts.DryRun
		report.Duration = s.now().Sub(start)
		s.logger.Err(err).Str("func", "syncService.Sync").Msg("catalog listing failed")
		return report, err
	}

	outcomes := make([]models.SyncOutcome, len(items))
	valid, positions, err := s.validate(ctx, items, outcomes)
	if err != nil {
		return nil, err
	}

	actions, err := s.planner.Plan(ctx, valid, opts)
	if err != nil {
		if ctx.Err() == nil {
			return nil, fmt.Errorf("plan: %w", err)
		}
		for j, item := range valid {
			outcomes[positions[j]] = models.Failed(models.SyncAction{Kind: models.ActionDownload, Item: item}, models.ErrorKindCanceled, err)
		}
	} else {
		for j, out := range s.scheduler.Execute(ctx, actions, opts) {
			outcomes[positions[j]] = out
		}
	}

	report := NewReport(outcomes)
	report.LibraryPath = opts.LibraryPath
	report.DryRun = opts.DryRun

	if !opts.DryRun && ctx.Err() == nil {
		report.Pruned = s.prune(ctx, items)
	}

	report.Duration = s.now().Sub(start)

	s.logger.Info().
		Str("func", "syncService.Sync").
		Str("status", string(report.Status())).
		Int("succeeded", report.Succeeded).
		Int("skipped", report.Skipped).
		Int("would_download", report.WouldDownload).
		Int("failed", report.Failed).
		Int64("pruned", report.Pruned).
		Dur("took", report.Duration).
		Msg("sync finished")

	return report, nil
}

func (s *syncService) listPurchases(ctx context.Context) ([]models.CatalogItem, error) {
	backoff := retry.WithMaxRetries(s.retries, retry.NewExponential(s.baseDelay))

	var items []models.CatalogItem
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		items, err = s.catalog.ListPurchases(ctx)
		if err != nil && retryable(ctx, err) {
			s.logger.Warn().Err(err).Str("func", "syncService.listPurchases").Msg("transient failure listing purchases")
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

// validate fills outcomes for invalid items and returns the valid ones with
// their positions in the listing.
func (s *syncService) validate(ctx context.Context, items []models.CatalogItem, outcomes []models.SyncOutcome) ([]models.CatalogItem, []int, error) {
	var itemErrs validators.ItemErrors
	if err := s.validator.Validate(ctx, items); err != nil && !errors.As(err, &itemErrs) {
		return nil, nil, fmt.Errorf("validate catalog: %w", err)
	}

	valid := make([]models.CatalogItem, 0, len(items))
	positions := make([]int, 0, len(items))
	for i, item := range items {
		if itemErr, bad := itemErrs[i]; bad {
			err := fmt.Errorf("%w: %w", ErrInvalidItem, itemErr)
			outcomes[i] = models.Failed(models.SyncAction{Kind: models.ActionSkip, Item: item}, models.ErrorKindInvalidItem, err)
			s.logger.Warn().Err(err).Str("item", item.ID).Str("title", item.Title()).Msg("skipping invalid catalog item")
			continue
		}
		valid = append(valid, item)
		positions = append(positions, i)
	}

	return valid, positions, nil
}

// prune drops records for ids missing from the listing. A failure only
// costs a stale row, so it is logged and ignored.
func (s *syncService) prune(ctx context.Context, items []models.CatalogItem) int64 {
	keep := make([]string, 0, len(items))
	for _, item := range items {
		if item.ID != "" {
			keep = append(keep, item.ID)
		}
	}

	removed, err := s.store.Prune(ctx, keep)
	if err != nil {
		s.logger.Warn().Err(err).Str("func", "syncService.prune").Msg("could not prune orphaned records")
		return 0
	}
	return removed
}

// normalizeOptions applies the default concurrency and resolves the library
// path. A missing library directory is fine; a file in its place is not.
func normalizeOptions(opts models.SyncOptions) (models.SyncOptions, error) {
	if strings.TrimSpace(opts.LibraryPath) == "" {
		return opts, fmt.Errorf("%w: library path is required", ErrInvalidOptions)
	}
	if opts.Concurrency == 0 {
		opts.Concurrency = models.DefaultConcurrency
	}
	if opts.Concurrency < 1 {
		return opts, fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidOptions, opts.Concurrency)
	}

	root, err := filepath.Abs(opts.LibraryPath)
	if err != nil {
		return opts, fmt.Errorf("%w: library path: %w", ErrInvalidOptions, err)
	}
	if info, statErr := os.Stat(root); statErr == nil && !info.IsDir() {
		return opts, fmt.Errorf("%w: library path %s is not a directory", ErrInvalidOptions, root)
	}
	opts.LibraryPath = root

	return opts, nil
}
