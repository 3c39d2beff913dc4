package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/MKhiriev/drpg-sync/internal/utils"
	"github.com/MKhiriev/drpg-sync/models"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

type transferResult struct {
	bytes    int64
	checksum string
}

// nameMax is the longest file name, in bytes, common filesystems accept.
const nameMax = 255

// tempPath returns the per-attempt temp file next to target, so the final
// rename never crosses filesystems. The target's base name is shortened as
// needed to keep the temp name within nameMax.
func tempPath(target, id string) string {
	base := truncateName(filepath.Base(target), nameMax-len(id)-len(".."+".part"))
	return filepath.Join(filepath.Dir(target), "."+base+"."+id+".part")
}

// truncateName cuts name to at most limit bytes without splitting a rune.
func truncateName(name string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(name) <= limit {
		return name
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return name[:cut]
}

// transfer streams url into a temp file beside action.Target while hashing
// it, verifies size and checksum, and renames it over the target. The temp
// file is removed on every failure; the target is only touched by the
// final rename, which never happens once ctx is done.
func (s *scheduler) transfer(ctx context.Context, action models.SyncAction, url string, opts models.SyncOptions) (transferResult, error) {
	item := action.Item

	if err := os.MkdirAll(filepath.Dir(action.Target), dirPerm); err != nil {
		return transferResult{}, fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	tmp := tempPath(action.Target, s.ids.Generate())
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return transferResult{}, fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	renamed := false
	defer func() {
		if renamed {
			return
		}
		_ = f.Close()
		if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			s.logger.Warn().Err(rmErr).Str("func", "scheduler.transfer").Str("tmp", tmp).Msg("could not remove temp file")
		}
	}()

	body, contentLength, err := s.files.Fetch(ctx, url)
	if err != nil {
		return transferResult{}, fmt.Errorf("fetch %s: %w", item.ID, err)
	}
	defer body.Close()

	h := utils.NewChecksum()
	n, err := io.Copy(io.MultiWriter(f, h), body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return transferResult{}, ctxErr
		}
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return transferResult{}, fmt.Errorf("%w: %w", ErrFilesystem, err)
		}
		return transferResult{}, fmt.Errorf("%w: stream interrupted after %d bytes: %w", ErrTransientNetwork, n, err)
	}

	switch {
	case contentLength >= 0 && n != contentLength:
		return transferResult{}, fmt.Errorf("%w: received %d of %d bytes", ErrTransientNetwork, n, contentLength)
	case item.Size > 0 && n < item.Size:
		return transferResult{}, fmt.Errorf("%w: received %d of %d declared bytes", ErrTransientNetwork, n, item.Size)
	case item.Size > 0 && n != item.Size:
		return transferResult{}, fmt.Errorf("%w: size %d, declared %d", ErrIntegrity, n, item.Size)
	}

	sum := utils.SumHex(h)
	if opts.ValidateChecksums && item.Checksum != "" && !utils.ChecksumEqual(sum, item.Checksum) {
		return transferResult{}, fmt.Errorf("%w: checksum %s, declared %s", ErrIntegrity, sum, item.Checksum)
	}

	if err = f.Sync(); err != nil {
		return transferResult{}, fmt.Errorf("%w: %w", ErrFilesystem, err)
	}
	if err = f.Close(); err != nil {
		return transferResult{}, fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	if err = ctx.Err(); err != nil {
		return transferResult{}, err
	}
	if err = os.Rename(tmp, action.Target); err != nil {
		return transferResult{}, fmt.Errorf("%w: %w", ErrFilesystem, err)
	}
	renamed = true

	return transferResult{bytes: n, checksum: sum}, nil
}
