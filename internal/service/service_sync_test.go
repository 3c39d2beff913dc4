// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MKhiriev/drpg-sync/internal/adapter"
	"github.com/MKhiriev/drpg-sync/internal/logger"
	"github.com/MKhiriev/drpg-sync/internal/mock"
	"github.com/MKhiriev/drpg-sync/internal/store"
	"github.com/MKhiriev/drpg-sync/internal/utils"
	"github.com/MKhiriev/drpg-sync/internal/validators"
	"github.com/MKhiriev/drpg-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestSyncSvc wires a syncService over gomock fakes and st.
func newTestSyncSvc(t *testing.T, f fakes, st store.StateStore, retries int) *syncService {
	t.Helper()
	planner := NewPlanner(st, logger.Nop())
	scheduler := newTestScheduler(f, st, retries)
	svc := NewSyncService(f.catalog, st, validators.NewCatalogItemValidator(), planner, scheduler, testWorkers(retries), logger.Nop()).(*syncService)
	return svc
}

// ── Example scenario ─────────────────────────────────────────────────────────

func TestSync_A1Scenario(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	st := newRealStore(t)
	f := newFakes(t)
	svc := newTestSyncSvc(t, f, st, 0)

	content := strings.Repeat("x", 1024)
	a1 := models.CatalogItem{
		ID:           "A1",
		ProductName:  "Core Rules",
		FileName:     "Core Rules.pdf",
		Size:         1024,
		LastModified: testModified,
		Checksum:     "abc123",
		ResolveToken: "A1",
	}

	f.catalog.EXPECT().ListPurchases(gomock.Any()).Return([]models.CatalogItem{a1}, nil).Times(2)
	f.expectDownload(a1, content)

	actions, err := svc.planner.Plan(ctx, []models.CatalogItem{a1}, testOptions(root))
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, models.ActionDownload, actions[0].Kind)

	report, err := svc.Sync(ctx, testOptions(root))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, StatusSuccess, report.Status())

	rec, err := st.Get(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, int64(1024), rec.Size)
	assert.Equal(t, "abc123", rec.Checksum)
	assert.Equal(t, models.StatusComplete, rec.Status)

	actions, err = svc.planner.Plan(ctx, []models.CatalogItem{a1}, testOptions(root))
	require.NoError(t, err)
	assert.Equal(t, models.ActionSkip, actions[0].Kind)
	assert.Equal(t, models.ReasonUnchanged, actions[0].Reason)

	report, err = svc.Sync(ctx, testOptions(root))
	require.NoError(t, err)
	assert.Equal(t, 0, report.Succeeded)
	assert.Equal(t, 1, report.Skipped)
}

// ── Idempotence and convergence ──────────────────────────────────────────────

func TestSync_IdempotentAndConvergent(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	st := newRealStore(t)
	f := newFakes(t)
	svc := newTestSyncSvc(t, f, st, 0)

	contents := map[string]string{
		"1-0": "first file",
		"1-1": "second file of the same product",
		"2-0": "another product",
	}
	items := []models.CatalogItem{
		testItem(t, "1-0", "Core Rules", "core.pdf", contents["1-0"]),
		testItem(t, "1-1", "Core Rules", "maps.pdf", contents["1-1"]),
		testItem(t, "2-0", "Bestiary", "bestiary.pdf", contents["2-0"]),
	}
	f.catalog.EXPECT().ListPurchases(gomock.Any()).Return(items, nil).Times(2)
	for _, item := range items {
		f.expectDownload(item, contents[item.ID]) // once each: the second run must not download
	}

	opts := testOptions(root)
	opts.ValidateChecksums = true

	first, err := svc.Sync(ctx, opts)
	require.NoError(t, err)
	require.Equal(t, 3, first.Succeeded)

	all, err := st.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, rec := range all {
		sum, size, err := utils.FileChecksum(rec.Path)
		require.NoError(t, err)
		assert.Equal(t, rec.Size, size, rec.ItemID)
		assert.True(t, utils.ChecksumEqual(rec.Checksum, sum), rec.ItemID)
	}

	second, err := svc.Sync(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Succeeded)
	assert.Equal(t, 3, second.Skipped)
	assert.Equal(t, ExitSuccess, second.ExitCode())
}

// ── Dry run ──────────────────────────────────────────────────────────────────

func TestSync_DryRunIsPure(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "library")
	st := newRealStore(t)
	f := newFakes(t)
	svc := newTestSyncSvc(t, f, st, 0)

	orphan := models.LocalRecord{ItemID: "gone-0", Path: filepath.Join(root, "gone.pdf"), Status: models.StatusComplete}
	require.NoError(t, st.Put(ctx, orphan))

	items := []models.CatalogItem{
		testItem(t, "1-0", "Core Rules", "core.pdf", "a"),
		testItem(t, "2-0", "Bestiary", "b.pdf", "b"),
	}
	f.catalog.EXPECT().ListPurchases(gomock.Any()).Return(items, nil)

	opts := testOptions(root)
	opts.DryRun = true

	report, err := svc.Sync(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, report.WouldDownload)
	assert.Equal(t, int64(0), report.Pruned)
	assert.True(t, report.DryRun)
	assert.Equal(t, StatusSuccess, report.Status())

	assert.NoDirExists(t, root)
	all, err := st.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "gone-0", all[0].ItemID)
}

// ── Pruning ──────────────────────────────────────────────────────────────────

func TestSync_PrunesOrphanedRecords(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	st := newRealStore(t)
	f := newFakes(t)
	svc := newTestSyncSvc(t, f, st, 0)

	require.NoError(t, st.Put(ctx, models.LocalRecord{ItemID: "refunded-0", Path: "/nowhere", Status: models.StatusComplete}))

	item := testItem(t, "1-0", "Core Rules", "core.pdf", "a")
	f.catalog.EXPECT().ListPurchases(gomock.Any()).Return([]models.CatalogItem{item}, nil)
	f.expectDownload(item, "a")

	report, err := svc.Sync(ctx, testOptions(root))
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Pruned)

	_, err = st.Get(ctx, "refunded-0")
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
	_, err = st.Get(ctx, "1-0")
	assert.NoError(t, err)
}

func TestSync_EmptyCatalogPrunesNothing(t *testing.T) {
	ctx := context.Background()
	st := newRealStore(t)
	f := newFakes(t)
	svc := newTestSyncSvc(t, f, st, 0)

	require.NoError(t, st.Put(ctx, models.LocalRecord{ItemID: "keep-0", Path: "/x", Status: models.StatusComplete}))
	f.catalog.EXPECT().ListPurchases(gomock.Any()).Return(nil, nil)

	report, err := svc.Sync(ctx, testOptions(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, 0, report.Total())
	assert.Equal(t, StatusSuccess, report.Status())

	_, err = st.Get(ctx, "keep-0")
	assert.NoError(t, err)
}

func TestSync_PruneFailureIsNotFatal(t *testing.T) {
	root := t.TempDir()
	f := newFakes(t)
	st := mock.NewMockStateStore(gomock.NewController(t))
	svc := newTestSyncSvc(t, f, st, 0)

	item := testItem(t, "1-0", "Core Rules", "core.pdf", "a")
	f.catalog.EXPECT().ListPurchases(gomock.Any()).Return([]models.CatalogItem{item}, nil)
	f.expectDownload(item, "a")
	st.EXPECT().All(gomock.Any()).Return(nil, nil)
	st.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)
	st.EXPECT().Prune(gomock.Any(), []string{"1-0"}).Return(int64(0), store.ErrExecutingStatement)

	report, err := svc.Sync(context.Background(), testOptions(root))
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, report.Status())
}

// ── Validation ───────────────────────────────────────────────────────────────

func TestSync_InvalidItemsFailOthersContinue(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	st := newRealStore(t)
	f := newFakes(t)
	svc := newTestSyncSvc(t, f, st, 0)

	good := testItem(t, "1-0", "Core Rules", "core.pdf", "a")
	noName := testItem(t, "2-0", "", "b.pdf", "b")
	dup := testItem(t, "1-0", "Core Rules Again", "other.pdf", "c")

	f.catalog.EXPECT().ListPurchases(gomock.Any()).Return([]models.CatalogItem{good, noName, dup}, nil)
	f.expectDownload(good, "a")

	report, err := svc.Sync(ctx, testOptions(root))
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 3)

	assert.Equal(t, models.OutcomeSucceeded, report.Outcomes[0].Kind)
	assert.Equal(t, models.ErrorKindInvalidItem, report.Outcomes[1].ErrorKind)
	assert.ErrorIs(t, report.Outcomes[1].Err, validators.ErrEmptyProductName)
	assert.Equal(t, models.ErrorKindInvalidItem, report.Outcomes[2].ErrorKind)
	assert.ErrorIs(t, report.Outcomes[2].Err, validators.ErrDuplicateItemID)
	assert.ErrorIs(t, report.Outcomes[2].Err, ErrInvalidItem)

	assert.Equal(t, StatusPartialFailure, report.Status())
	assert.Equal(t, ExitPartialFailure, report.ExitCode())

	rec, err := st.Get(ctx, "1-0")
	require.NoError(t, err)
	assert.Equal(t, "core.pdf", rec.FileName)
}

// ── Listing ──────────────────────────────────────────────────────────────────

func TestSync_ListingRetriedThenFails(t *testing.T) {
	f := newFakes(t)
	svc := newTestSyncSvc(t, f, newRealStore(t), 2)

	f.catalog.EXPECT().ListPurchases(gomock.Any()).Return(nil, adapter.ErrTransient).Times(3)

	report, err := svc.Sync(context.Background(), testOptions(t.TempDir()))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrListPurchases)
	assert.ErrorIs(t, err, adapter.ErrTransient)

	require.NotNil(t, report)
	assert.Equal(t, StatusFailure, report.Status())
	assert.Equal(t, ExitFailure, report.ExitCode())
	assert.Contains(t, report.Summary(), "failure")
}

func TestSync_ListingRecovers(t *testing.T) {
	f := newFakes(t)
	svc := newTestSyncSvc(t, f, newRealStore(t), 1)

	gomock.InOrder(
		f.catalog.EXPECT().ListPurchases(gomock.Any()).Return(nil, adapter.ErrTransient),
		f.catalog.EXPECT().ListPurchases(gomock.Any()).Return(nil, nil),
	)

	report, err := svc.Sync(context.Background(), testOptions(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, report.Status())
}

func TestSync_UnauthorizedNotRetried(t *testing.T) {
	f := newFakes(t)
	svc := newTestSyncSvc(t, f, newRealStore(t), 5)

	f.catalog.EXPECT().ListPurchases(gomock.Any()).Return(nil, adapter.ErrUnauthorized).Times(1)

	_, err := svc.Sync(context.Background(), testOptions(t.TempDir()))
	assert.ErrorIs(t, err, adapter.ErrUnauthorized)
}

// ── Options ──────────────────────────────────────────────────────────────────

func TestSync_InvalidOptions(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	writeFile(t, file, "x")

	tests := []struct {
		name string
		opts models.SyncOptions
	}{
		{name: "empty library path", opts: models.SyncOptions{}},
		{name: "blank library path", opts: models.SyncOptions{LibraryPath: "   "}},
		{name: "negative concurrency", opts: models.SyncOptions{LibraryPath: t.TempDir(), Concurrency: -1}},
		{name: "library path is a file", opts: models.SyncOptions{LibraryPath: file}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakes(t)
			svc := newTestSyncSvc(t, f, newRealStore(t), 0)

			report, err := svc.Sync(context.Background(), tt.opts)
			assert.Nil(t, report)
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}
}

func TestNormalizeOptions(t *testing.T) {
	root := t.TempDir()

	opts, err := normalizeOptions(models.SyncOptions{LibraryPath: root})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultConcurrency, opts.Concurrency)
	assert.True(t, filepath.IsAbs(opts.LibraryPath))

	missing := filepath.Join(root, "not", "yet")
	opts, err = normalizeOptions(models.SyncOptions{LibraryPath: missing, Concurrency: 1})
	require.NoError(t, err)
	assert.Equal(t, missing, opts.LibraryPath)
}

// ── Cancellation ─────────────────────────────────────────────────────────────

func TestSync_CanceledRunDoesNotPrune(t *testing.T) {
	st := mock.NewMockStateStore(gomock.NewController(t))
	f := newFakes(t)
	svc := newTestSyncSvc(t, f, st, 0)

	ctx, cancel := context.WithCancel(context.Background())
	item := testItem(t, "1-0", "Core Rules", "core.pdf", "a")

	f.catalog.EXPECT().ListPurchases(gomock.Any()).DoAndReturn(func(context.Context) ([]models.CatalogItem, error) {
		cancel()
		return []models.CatalogItem{item}, nil
	})
	st.EXPECT().All(gomock.Any()).Return(nil, nil).AnyTimes()
	// no Prune expectation

	report, err := svc.Sync(ctx, testOptions(t.TempDir()))
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, models.ErrorKindCanceled, report.Outcomes[0].ErrorKind)
	assert.Equal(t, StatusFailure, report.Status())
}

func TestSync_PartialFailureExitCode(t *testing.T) {
	root := t.TempDir()
	f := newFakes(t)
	svc := newTestSyncSvc(t, f, newRealStore(t), 0)

	ok := testItem(t, "1-0", "Core Rules", "core.pdf", "a")
	missing := testItem(t, "2-0", "Withdrawn", "w.pdf", "w")
	f.catalog.EXPECT().ListPurchases(gomock.Any()).Return([]models.CatalogItem{ok, missing}, nil)
	f.expectDownload(ok, "a")
	f.catalog.EXPECT().ResolveDownloadURL(gomock.Any(), missing).Return("", errors.Join(adapter.ErrNotFound, errors.New("404")))

	report, err := svc.Sync(context.Background(), testOptions(root))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, models.ErrorKindNotFound, report.Outcomes[1].ErrorKind)
	assert.Equal(t, ExitPartialFailure, report.ExitCode())
	assert.Greater(t, report.Duration, time.Duration(-1))
}
