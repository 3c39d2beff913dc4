package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/MKhiriev/drpg-sync/internal/adapter"
	"github.com/MKhiriev/drpg-sync/internal/config"
	"github.com/MKhiriev/drpg-sync/internal/logger"
	"github.com/MKhiriev/drpg-sync/internal/store"
	"github.com/MKhiriev/drpg-sync/internal/utils"
	"github.com/MKhiriev/drpg-sync/internal/workers"
	"github.com/MKhiriev/drpg-sync/models"
	"github.com/sethvargo/go-retry"
)

const minRetryDelay = time.Millisecond

// scheduler is the concrete implementation of Scheduler.
type scheduler struct {
	catalog adapter.CatalogFetcher
	files   adapter.FileFetcher
	store   store.StateStore
	ids     *utils.UUIDGenerator

	retries   uint64
	baseDelay time.Duration
	now       func() time.Time

	logger *logger.Logger
}

// NewScheduler constructs a Scheduler. Transient failures are retried
// cfg.Retries times with exponential backoff starting at cfg.RetryBaseDelay.
func NewScheduler(
	catalog adapter.CatalogFetcher,
	files adapter.FileFetcher,
	st store.StateStore,
	cfg config.Workers,
	logger *logger.Logger,
) Scheduler {
	return &scheduler{
		catalog:   catalog,
		files:     files,
		store:     st,
		ids:       utils.NewUUIDGenerator(),
		retries:   uint64(max(cfg.Retries, 0)),
		baseDelay: max(cfg.RetryBaseDelay, minRetryDelay),
		now:       time.Now,
		logger:    logger,
	}
}

// Execute implements Scheduler.
//
// Targets are claimed in action order before anything runs, so when two
// items normalize to the same path (compared case-insensitively) the later
// one fails with ErrPathCollision and the earlier one proceeds. Skip actions
// and dry runs never reach the pool. Downloads and revalidations run on a
// workers.Pool of opts.Concurrency goroutines; actions still queued when ctx
// is done fail as canceled.
func (s *scheduler) Execute(ctx context.Context, actions []models.SyncAction, opts models.SyncOptions) []models.SyncOutcome {
	outcomes := make([]models.SyncOutcome, len(actions))

	claimed := make(map[string]int, len(actions))
	queue := make([]models.SyncAction, 0, len(actions))
	positions := make([]int, 0, len(actions))

	for i, action := range actions {
		key := targetKey(action.Target)
		if first, ok := claimed[key]; ok {
			err := fmt.Errorf("%w: %s is also the target of item %s", ErrPathCollision, action.Target, actions[first].Item.ID)
			outcomes[i] = models.Failed(action, models.ErrorKindPathCollision, err)
			s.logOutcome(outcomes[i])
			continue
		}
		claimed[key] = i

		switch {
		case opts.DryRun:
			outcomes[i] = dryRun(action)
		case action.Kind == models.ActionSkip:
			outcomes[i] = models.Skipped(action, models.ReasonUnchanged)
		default:
			queue = append(queue, action)
			positions = append(positions, i)
		}
	}

	if len(queue) == 0 {
		return outcomes
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = models.DefaultConcurrency
	}

	pool := workers.NewPool[models.SyncAction, models.SyncOutcome](
		concurrency,
		func(ctx context.Context, _ int, action models.SyncAction) models.SyncOutcome {
			return s.run(ctx, action, opts)
		},
		func(_ int, action models.SyncAction, err error) models.SyncOutcome {
			return models.Failed(action, models.ErrorKindCanceled, err)
		},
	)

	s.logger.Debug().
		Str("func", "scheduler.Execute").
		Int("queued", len(queue)).
		Int("workers", pool.Size()).
		Msg("starting transfers")

	for j, out := range pool.Run(ctx, queue) {
		outcomes[positions[j]] = out
	}

	return outcomes
}

func dryRun(action models.SyncAction) models.SyncOutcome {
	switch action.Kind {
	case models.ActionDownload:
		return models.Skipped(action, models.ReasonWouldDownload)
	case models.ActionRevalidate:
		return models.Skipped(action, models.ReasonWouldRevalidate)
	default:
		return models.Skipped(action, models.ReasonUnchanged)
	}
}

func targetKey(target string) string {
	return strings.ToLower(filepath.Clean(target))
}

// run executes one action inside a worker.
func (s *scheduler) run(ctx context.Context, action models.SyncAction, opts models.SyncOptions) models.SyncOutcome {
	start := s.now()

	var out models.SyncOutcome
	switch action.Kind {
	case models.ActionRevalidate:
		out = s.revalidate(ctx, action, opts)
	case models.ActionDownload:
		out = s.download(ctx, action, opts)
	default:
		out = models.Skipped(action, models.ReasonUnchanged)
	}

	out.Duration = s.now().Sub(start)
	s.logOutcome(out)
	return out
}

// revalidate hashes the local file and escalates to a download when it does
// not match the declared (else recorded) checksum.
func (s *scheduler) revalidate(ctx context.Context, action models.SyncAction, opts models.SyncOptions) models.SyncOutcome {
	want := action.Item.Checksum
	if want == "" && action.Record != nil {
		want = action.Record.Checksum
	}

	sum, _, err := utils.FileChecksum(action.Target)
	if err == nil && utils.ChecksumEqual(sum, want) {
		return models.Skipped(action, models.ReasonUnchanged)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return models.Failed(action, models.ErrorKindCanceled, ctxErr)
	}

	reason := models.ReasonLocalMismatch
	if err != nil {
		reason = models.ReasonFileMissing
	}

	s.logger.Info().
		Str("func", "scheduler.revalidate").
		Str("item", action.Item.ID).
		Str("want", want).
		Str("got", sum).
		Msg("local file failed revalidation; downloading again")

	return s.download(ctx, models.Download(action.Item, action.Target, reason, action.Record), opts)
}

// download transfers the item with bounded retries and commits its record.
func (s *scheduler) download(ctx context.Context, action models.SyncAction, opts models.SyncOptions) models.SyncOutcome {
	backoff := retry.WithMaxRetries(s.retries, retry.NewExponential(s.baseDelay))

	var (
		res     transferResult
		attempt int
	)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		var err error
		res, err = s.attempt(ctx, action, opts)
		if err != nil && retryable(ctx, err) {
			s.logger.Warn().
				Err(err).
				Str("func", "scheduler.download").
				Str("item", action.Item.ID).
				Int("attempt", attempt).
				Msg("transient failure")
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return models.Failed(action, classify(ctx, err), err)
	}

	rec := models.LocalRecord{
		ItemID:       action.Item.ID,
		Path:         action.Target,
		Size:         res.bytes,
		LastModified: action.Item.LastModified,
		Checksum:     recordedChecksum(action.Item, res),
		Status:       models.StatusComplete,
		SyncedAt:     s.now(),
		ProductName:  action.Item.ProductName,
		Publisher:    action.Item.Publisher,
		FileName:     action.Item.FileName,
	}

	// the file is already in place; the record must follow even if the run
	// is being canceled
	if err = s.store.Put(context.WithoutCancel(ctx), rec); err != nil {
		err = fmt.Errorf("%w: %w", ErrStateStore, err)
		return models.Failed(action, models.ErrorKindStateStore, err)
	}

	return models.Succeeded(action, res.bytes)
}

// attempt resolves a fresh URL and transfers the file. An expired link is
// resolved once more right away; a second expiry is reported as transient.
func (s *scheduler) attempt(ctx context.Context, action models.SyncAction, opts models.SyncOptions) (transferResult, error) {
	res, err := s.resolveAndTransfer(ctx, action, opts)
	if !errors.Is(err, adapter.ErrExpiredURL) {
		return res, err
	}

	s.logger.Debug().
		Str("func", "scheduler.attempt").
		Str("item", action.Item.ID).
		Msg("download url expired; resolving again")

	res, err = s.resolveAndTransfer(ctx, action, opts)
	if errors.Is(err, adapter.ErrExpiredURL) {
		return res, fmt.Errorf("%w: %w", ErrTransientNetwork, err)
	}
	return res, err
}

func (s *scheduler) resolveAndTransfer(ctx context.Context, action models.SyncAction, opts models.SyncOptions) (transferResult, error) {
	url, err := s.catalog.ResolveDownloadURL(ctx, action.Item)
	if err != nil {
		return transferResult{}, fmt.Errorf("resolve download url: %w", err)
	}
	return s.transfer(ctx, action, url, opts)
}

// recordedChecksum prefers the declared checksum so that the next plan can
// compare declared values; the computed digest fills in when none was
// declared.
func recordedChecksum(item models.CatalogItem, res transferResult) string {
	if item.Checksum != "" {
		return item.Checksum
	}
	return res.checksum
}

func (s *scheduler) logOutcome(out models.SyncOutcome) {
	switch out.Kind {
	case models.OutcomeFailed:
		s.logger.Warn().
			Err(out.Err).
			Str("item", out.Action.Item.ID).
			Str("kind", string(out.ErrorKind)).
			Str("target", out.Action.Target).
			Msg("sync failed")
	case models.OutcomeSucceeded:
		s.logger.Info().
			Str("item", out.Action.Item.ID).
			Str("target", out.Action.Target).
			Int64("bytes", out.Bytes).
			Dur("took", out.Duration).
			Str("reason", string(out.Action.Reason)).
			Msg("downloaded")
	default:
		s.logger.Debug().
			Str("item", out.Action.Item.ID).
			Str("reason", string(out.Reason)).
			Msg("skipped")
	}
}
