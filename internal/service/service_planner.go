package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MKhiriev/drpg-sync/internal/logger"
	"github.com/MKhiriev/drpg-sync/internal/naming"
	"github.com/MKhiriev/drpg-sync/internal/store"
	"github.com/MKhiriev/drpg-sync/internal/utils"
	"github.com/MKhiriev/drpg-sync/models"
)

// planner is the concrete implementation of Planner. It reads the state
// store once per call and stats target files; it never writes anything.
type planner struct {
	store  store.StateStore
	logger *logger.Logger
}

// NewPlanner constructs a Planner backed by st.
func NewPlanner(st store.StateStore, logger *logger.Logger) Planner {
	return &planner{
		store:  st,
		logger: logger,
	}
}

// Plan implements Planner.
//
// Every item is matched against its record by id only. The checks run in a
// fixed order and the first one that fires decides the action:
//
//   - local state: no record, record not complete, recorded path differs
//     from the target, file missing, on-disk size differs from the record;
//   - remote state: declared size or timestamp differs from the record;
//   - checksums (only when validation is on and a checksum is known):
//     declared differs from recorded, otherwise revalidate the local file.
//
// Anything else is skipped as unchanged.
func (p *planner) Plan(ctx context.Context, items []models.CatalogItem, opts models.SyncOptions) ([]models.SyncAction, error) {
	root, err := filepath.Abs(opts.LibraryPath)
	if err != nil {
		return nil, fmt.Errorf("%w: library path: %w", ErrInvalidOptions, err)
	}

	mode := naming.ModeFor(opts.CompatibilityMode)
	records := p.snapshot(ctx)

	actions := make([]models.SyncAction, 0, len(items))
	for _, item := range items {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		target := filepath.Join(root, naming.ItemPath(mode, item.Publisher, item.ProductName, item.FileName, opts.OmitPublisher))

		var rec *models.LocalRecord
		if r, ok := records[item.ID]; ok {
			rec = &r
		}

		actions = append(actions, decide(item, target, rec, opts.ValidateChecksums))
	}

	p.logger.Debug().
		Str("func", "planner.Plan").
		Str("mode", mode.Name()).
		Int("items", len(items)).
		Int("records", len(records)).
		Msg("plan built")

	return actions, nil
}

// snapshot loads every record. An unreadable store counts as empty so the
// run degrades to a full resync.
func (p *planner) snapshot(ctx context.Context) map[string]models.LocalRecord {
	all, err := p.store.All(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Str("func", "planner.snapshot").Msg("state store unreadable; treating as empty")
		return map[string]models.LocalRecord{}
	}

	records := make(map[string]models.LocalRecord, len(all))
	for _, r := range all {
		records[r.ItemID] = r
	}
	return records
}

func decide(item models.CatalogItem, target string, rec *models.LocalRecord, validate bool) models.SyncAction {
	// ── local state ─────────────────────────────────────────────────────────
	switch {
	case rec == nil:
		return models.Download(item, target, models.ReasonNew, nil)
	case !rec.IsComplete():
		return models.Download(item, target, models.ReasonIncomplete, rec)
	case rec.Path != target:
		return models.Download(item, target, models.ReasonPathChanged, rec)
	}

	info, err := os.Stat(target)
	if err != nil || !info.Mode().IsRegular() {
		return models.Download(item, target, models.ReasonFileMissing, rec)
	}
	if info.Size() != rec.Size {
		return models.Download(item, target, models.ReasonSizeOnDisk, rec)
	}

	// ── remote state ────────────────────────────────────────────────────────
	if item.Size > 0 && item.Size != rec.Size {
		return models.Download(item, target, models.ReasonRemoteChanged, rec)
	}
	if !item.LastModified.IsZero() && !item.LastModified.Equal(rec.LastModified) {
		return models.Download(item, target, models.ReasonRemoteChanged, rec)
	}

	// ── checksums ───────────────────────────────────────────────────────────
	if validate && (item.Checksum != "" || rec.Checksum != "") {
		if item.Checksum != "" && rec.Checksum != "" && !utils.ChecksumEqual(item.Checksum, rec.Checksum) {
			return models.Download(item, target, models.ReasonChecksumChanged, rec)
		}
		return models.Revalidate(item, target, rec)
	}

	return models.Skip(item, target, models.ReasonUnchanged, rec)
}
