package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/drpg-sync/internal/logger"
	"github.com/MKhiriev/drpg-sync/models"
)

type stateRepository struct {
	*DB
	logger *logger.Logger
}

func NewStateRepository(db *DB, logger *logger.Logger) StateStore {
	return &stateRepository{
		DB:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.LocalRecord, error) {
	var (
		rec      models.LocalRecord
		checksum sql.NullString
		status   string
	)

	err := row.Scan(
		&rec.ItemID,
		&rec.Path,
		&rec.Size,
		&rec.LastModified,
		&checksum,
		&status,
		&rec.SyncedAt,
		&rec.ProductName,
		&rec.Publisher,
		&rec.FileName,
	)
	if err != nil {
		return models.LocalRecord{}, err
	}

	rec.Checksum = checksum.String
	rec.Status = models.SyncStatus(status)

	return rec, nil
}

func (s *stateRepository) Get(ctx context.Context, id string) (models.LocalRecord, error) {
	log := s.logger

	query, args, err := buildGetRecordQuery(id)
	if err != nil {
		log.Err(err).Str("func", "stateRepository.Get").Msg("failed to build query")
		return models.LocalRecord{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rec, err := scanRecord(s.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.LocalRecord{}, ErrRecordNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "stateRepository.Get").
			Str("item_id", id).
			Msg("failed to scan record row")
		return models.LocalRecord{}, fmt.Errorf("%w (item_id=%s): %w", ErrScanningRow, id, err)
	}

	return rec, nil
}

func (s *stateRepository) Put(ctx context.Context, rec models.LocalRecord) error {
	log := s.logger

	query, args, err := buildUpsertRecordQuery(rec)
	if err != nil {
		log.Err(err).Str("func", "stateRepository.Put").Msg("failed to build query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "stateRepository.Put").
			Str("item_id", rec.ItemID).
			Msg("failed to execute upsert for record")
		return fmt.Errorf("%w (item_id=%s): %w", ErrExecutingStatement, rec.ItemID, err)
	}

	return nil
}

func (s *stateRepository) All(ctx context.Context) ([]models.LocalRecord, error) {
	log := s.logger

	query, args, err := buildAllRecordsQuery()
	if err != nil {
		log.Err(err).Str("func", "stateRepository.All").Msg("failed to build query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "stateRepository.All").Msg("failed to query records")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var records []models.LocalRecord
	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "stateRepository.All").Msg("failed to scan record row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		records = append(records, rec)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", "stateRepository.All").Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating record rows: %w", rowsErr)
	}

	return records, nil
}

// Prune diffs the stored ids against keep and deletes the orphans in
// batches inside one transaction, so keep may exceed SQLite's bound
// parameter limit.
func (s *stateRepository) Prune(ctx context.Context, keep []string) (int64, error) {
	if len(keep) == 0 {
		return 0, nil
	}
	log := s.logger

	records, err := s.All(ctx)
	if err != nil {
		return 0, err
	}

	kept := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		kept[id] = struct{}{}
	}
	var orphans []string
	for _, rec := range records {
		if _, ok := kept[rec.ItemID]; !ok {
			orphans = append(orphans, rec.ItemID)
		}
	}
	if len(orphans) == 0 {
		return 0, nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "stateRepository.Prune").Msg("failed to begin transaction")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	defer func() { _ = tx.Rollback() }()

	var removed int64
	for start := 0; start < len(orphans); start += pruneBatchSize {
		batch := orphans[start:min(start+pruneBatchSize, len(orphans))]

		query, args, err := buildDeleteRecordsQuery(batch)
		if err != nil {
			log.Err(err).Str("func", "stateRepository.Prune").Msg("failed to build query")
			return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			log.Err(err).Str("func", "stateRepository.Prune").Int("batch", len(batch)).Msg("failed to delete orphaned records")
			return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("error reading affected rows: %w", err)
		}
		removed += n
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "stateRepository.Prune").Msg("failed to commit prune")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if removed > 0 {
		log.Info().Str("func", "stateRepository.Prune").Int64("removed", removed).Msg("pruned orphaned records")
	}

	return removed, nil
}

func (s *stateRepository) Close() error {
	return s.DB.Close()
}
