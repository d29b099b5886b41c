// Package thumbnail inspects and prunes the tab thumbnail cache.
package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bnema/webpage/internal/application/port"
	"github.com/bnema/webpage/internal/domain/entity"
	"github.com/bnema/webpage/internal/logging"
)

// Entry describes one cached thumbnail file.
type Entry struct {
	TabID   entity.TabID
	Path    string
	Size    int64
	ModTime time.Time
}

// Store reads the directory SaveThumbnailUseCase writes into.
type Store struct {
	paths port.XDGPaths
}

// NewStore creates a store over the cache directory resolved by paths.
func NewStore(paths port.XDGPaths) *Store {
	return &Store{paths: paths}
}

// Dir returns the cache directory.
func (s *Store) Dir() (string, error) {
	dir, err := s.paths.CacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return dir, nil
}

// Path returns the cache file of a tab's thumbnail.
// Returns empty string if the cache dir cannot be resolved.
func (s *Store) Path(id entity.TabID) string {
	dir, err := s.Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, entity.ThumbnailFileName(id))
}

// Has checks if a thumbnail exists on disk for the given tab.
func (s *Store) Has(id entity.TabID) bool {
	path := s.Path(id)
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Read returns the JPEG bytes of a tab's thumbnail. A missing thumbnail
// wraps fs.ErrNotExist.
func (s *Store) Read(id entity.TabID) ([]byte, error) {
	path := s.Path(id)
	if path == "" {
		return nil, fmt.Errorf("resolve thumbnail path for tab %s", id)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read thumbnail: %w", err)
	}
	return data, nil
}

// LastTabID returns the highest tab id with a cached thumbnail, or zero.
func (s *Store) LastTabID(ctx context.Context) (entity.TabID, error) {
	entries, err := s.List(ctx)
	if err != nil || len(entries) == 0 {
		return 0, err
	}
	return entries[len(entries)-1].TabID, nil
}

// List returns the cached thumbnails ordered by tab id.
// A missing cache directory is an empty cache.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	dir, err := s.Dir()
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache dir: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !de.Type().IsRegular() {
			continue
		}
		id, ok := entity.ParseThumbnailFileName(de.Name())
		if !ok {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		entries = append(entries, Entry{
			TabID:   id,
			Path:    filepath.Join(dir, de.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].TabID < entries[j].TabID })
	return entries, nil
}

// Remove deletes one tab's thumbnail. A missing file is not an error.
func (s *Store) Remove(id entity.TabID) error {
	path := s.Path(id)
	if path == "" {
		return fmt.Errorf("resolve thumbnail path for tab %s", id)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove thumbnail: %w", err)
	}
	return nil
}

// Purge deletes every cached thumbnail and returns how many were removed.
// Files that are not thumbnails are left in place.
func (s *Store) Purge(ctx context.Context) (int, error) {
	log := logging.FromContext(ctx)

	entries, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	var (
		removed int
		errs    []error
	)
	for _, e := range entries {
		if err := os.Remove(e.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	log.Debug().Int("removed", removed).Int("failed", len(errs)).Msg("thumbnail cache purged")
	return removed, errors.Join(errs...)
}
