// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MKhiriev/drpg-sync/internal/logger"
)

const (
	sqliteParams = "?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL"
	// readOnlyParams must not set a journal mode: that is itself a write.
	readOnlyParams = "?mode=ro&_query_only=1&_busy_timeout=5000"
)

var errQuickCheckFailed = errors.New("quick_check did not report ok")

// Open returns the SQLite-backed StateStore at path, creating it and its
// parent directories when missing. A database that cannot be opened, fails
// its integrity check or cannot be migrated is moved aside to
// <path>.corrupt-<unix> and replaced by an empty one, which forces a full
// resync. Only failing to create the replacement is an error.
func Open(ctx context.Context, path string, log *logger.Logger) (StateStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Err(err).Str("func", "store.Open").Str("path", path).Msg("error creating state directory")
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	db, err := NewConnectSQLite(ctx, path, log)
	if err == nil {
		return NewStateRepository(db, log), nil
	}

	aside := fmt.Sprintf("%s.corrupt-%d", path, time.Now().Unix())
	log.Warn().Err(err).
		Str("func", "store.Open").
		Str("path", path).
		Str("moved_to", aside).
		Msg("state store unusable, starting from empty state")

	if mvErr := moveAside(path, aside); mvErr != nil {
		log.Err(mvErr).Str("func", "store.Open").Msg("error moving corrupt state store aside")
		return nil, fmt.Errorf("%w: %w", ErrStateStoreCorrupt, mvErr)
	}

	db, err = NewConnectSQLite(ctx, path, log)
	if err != nil {
		log.Err(err).Str("func", "store.Open").Msg("error creating fresh state store")
		return nil, fmt.Errorf("%w: %w", ErrStateStoreCorrupt, err)
	}

	return NewStateRepository(db, log), nil
}

// OpenReadOnly returns a StateStore for runs that must not change anything
// on disk. It never creates directories, files or tables, and never moves a
// broken database aside: a missing or unusable database reads as empty
// state. Put and Prune on the result fail with ErrReadOnly.
func OpenReadOnly(ctx context.Context, path string, log *logger.Logger) (StateStore, error) {
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("func", "store.OpenReadOnly").Str("path", path).Msg("state store unreadable, using empty state")
		}
		return emptyState{}, nil
	}

	db, err := newReadOnlySQLite(ctx, path, log)
	if err != nil {
		log.Warn().Err(err).
			Str("func", "store.OpenReadOnly").
			Str("path", path).
			Msg("state store unusable, using empty state")
		return emptyState{}, nil
	}

	return readOnlyState{StateStore: NewStateRepository(db, log)}, nil
}

func newReadOnlySQLite(ctx context.Context, path string, log *logger.Logger) (*DB, error) {
	conn, err := sql.Open("sqlite3", "file:"+path+readOnlyParams)
	if err != nil {
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}
	conn.SetMaxOpenConns(1)

	var verdict string
	if err = conn.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&verdict); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error checking database: %w", err)
	}
	if verdict != "ok" {
		conn.Close()
		return nil, fmt.Errorf("%w: %s", errQuickCheckFailed, verdict)
	}
	log.Debug().Str("func", "newReadOnlySQLite").Str("path", path).Msg("opened state store read-only")

	return &DB{DB: conn, path: path, logger: log}, nil
}

// NewConnectSQLite opens path, verifies it with PRAGMA quick_check and runs
// pending migrations. The pool is limited to one connection so writers are
// serialized by database/sql.
func NewConnectSQLite(ctx context.Context, path string, log *logger.Logger) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+sqliteParams)
	if err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error opening database")
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err = conn.PingContext(ctx); err != nil {
		conn.Close()
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database (ping)")
		return nil, fmt.Errorf("error connecting database: %w", err)
	}

	var verdict string
	if err = conn.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&verdict); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error checking database: %w", err)
	}
	if verdict != "ok" {
		conn.Close()
		return nil, fmt.Errorf("%w: %s", errQuickCheckFailed, verdict)
	}

	db := &DB{DB: conn, path: path, logger: log}
	if err = db.Migrate(); err != nil {
		conn.Close()
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error migrating database")
		return nil, err
	}
	log.Debug().Str("func", "NewConnectSQLite").Str("path", path).Msg("connected to state store")

	return db, nil
}

// moveAside renames the database file and its WAL companions. A missing
// main file is not an error.
func moveAside(path, aside string) error {
	if err := os.Rename(path, aside); err != nil && !os.IsNotExist(err) {
		return err
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Rename(path+suffix, aside+suffix); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
