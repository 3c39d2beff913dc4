package service

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MKhiriev/drpg-sync/internal/config"
	"github.com/MKhiriev/drpg-sync/internal/logger"
	"github.com/MKhiriev/drpg-sync/internal/mock"
	"github.com/MKhiriev/drpg-sync/internal/naming"
	"github.com/MKhiriev/drpg-sync/internal/store"
	"github.com/MKhiriev/drpg-sync/internal/utils"
	"github.com/MKhiriev/drpg-sync/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var testModified = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func md5Hex(t *testing.T, content string) string {
	t.Helper()
	h := utils.NewChecksum()
	_, err := io.WriteString(h, content)
	require.NoError(t, err)
	return utils.SumHex(h)
}

func testItem(t *testing.T, id, product, file, content string) models.CatalogItem {
	t.Helper()
	return models.CatalogItem{
		ID:           id,
		ProductName:  product,
		Publisher:    "Acme Games",
		FileName:     file,
		Size:         int64(len(content)),
		LastModified: testModified,
		Checksum:     md5Hex(t, content),
		ResolveToken: id,
	}
}

func targetFor(root string, item models.CatalogItem) string {
	return filepath.Join(root, naming.ItemPath(naming.Friendly, item.Publisher, item.ProductName, item.FileName, false))
}

func testOptions(root string) models.SyncOptions {
	return models.SyncOptions{
		LibraryPath: root,
		Concurrency: 2,
	}
}

func testWorkers(retries int) config.Workers {
	return config.Workers{
		Threads:        2,
		Retries:        retries,
		RetryBaseDelay: time.Millisecond,
	}
}

func newRealStore(t *testing.T) store.StateStore {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "state", "drpg.db"), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func body(content string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(content))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

// completeRecord is the record a successful download of content would have
// committed for item.
func completeRecord(item models.CatalogItem, target string) models.LocalRecord {
	return models.LocalRecord{
		ItemID:       item.ID,
		Path:         target,
		Size:         item.Size,
		LastModified: item.LastModified,
		Checksum:     item.Checksum,
		Status:       models.StatusComplete,
		SyncedAt:     testModified,
		ProductName:  item.ProductName,
		Publisher:    item.Publisher,
		FileName:     item.FileName,
	}
}

// partFiles lists leftover temp files anywhere under root.
func partFiles(t *testing.T, root string) []string {
	t.Helper()
	var found []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".part") {
			found = append(found, path)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return found
}

// ctxReader blocks until ctx is done and then fails with its error.
type ctxReader struct {
	ctx context.Context
}

func (r ctxReader) Read([]byte) (int, error) {
	<-r.ctx.Done()
	return 0, r.ctx.Err()
}

type fakes struct {
	catalog *mock.MockCatalogFetcher
	files   *mock.MockFileFetcher
}

func newFakes(t *testing.T) fakes {
	t.Helper()
	ctrl := gomock.NewController(t)
	return fakes{
		catalog: mock.NewMockCatalogFetcher(ctrl),
		files:   mock.NewMockFileFetcher(ctrl),
	}
}

func newTestScheduler(f fakes, st store.StateStore, retries int) *scheduler {
	s := NewScheduler(f.catalog, f.files, st, testWorkers(retries), logger.Nop()).(*scheduler)
	s.now = func() time.Time { return testModified }
	return s
}

// expectDownload wires one resolve+fetch pair serving content for item.
func (f fakes) expectDownload(item models.CatalogItem, content string) {
	url := "https://files.example/" + item.ID
	f.catalog.EXPECT().ResolveDownloadURL(gomock.Any(), item).Return(url, nil)
	f.files.EXPECT().Fetch(gomock.Any(), url).Return(body(content), int64(len(content)), nil)
}
