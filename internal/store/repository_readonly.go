package store

import (
	"context"

	"github.com/MKhiriev/drpg-sync/models"
)

// readOnlyState rejects writes before they reach SQLite.
type readOnlyState struct {
	StateStore
}

func (readOnlyState) Put(context.Context, models.LocalRecord) error {
	return ErrReadOnly
}

func (readOnlyState) Prune(context.Context, []string) (int64, error) {
	return 0, ErrReadOnly
}

// emptyState stands in for a database that does not exist yet or cannot be
// read.
type emptyState struct{}

func (emptyState) Get(context.Context, string) (models.LocalRecord, error) {
	return models.LocalRecord{}, ErrRecordNotFound
}

func (emptyState) Put(context.Context, models.LocalRecord) error {
	return ErrReadOnly
}

func (emptyState) All(context.Context) ([]models.LocalRecord, error) {
	return nil, nil
}

func (emptyState) Prune(context.Context, []string) (int64, error) {
	return 0, ErrReadOnly
}

func (emptyState) Close() error {
	return nil
}
