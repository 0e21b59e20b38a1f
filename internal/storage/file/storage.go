package file

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mcoot/samuel/internal/model"
	"github.com/mcoot/samuel/internal/storage"
)

// Storage keeps the snapshot as a JSON document at a single path
type Storage struct {
	path   string
	logger *slog.Logger
}

// New creates a file-backed snapshot store. Nothing is touched on disk
// until the first Load or Save.
func New(path string, logger *slog.Logger) *Storage {
	return &Storage{path: path, logger: logger}
}

// Ensure Storage implements the interface
var _ storage.SnapshotStore = (*Storage)(nil)

// Path returns the cache file location
func (s *Storage) Path() string {
	return s.path
}

func (s *Storage) Load(ctx context.Context) (*model.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("cache file unreadable", slog.String("path", s.path), slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("%w: %v", model.ErrCacheMiss, err)
	}

	snapshot, err := storage.Decode(data)
	if err != nil {
		s.logger.Warn("cache file corrupt", slog.String("path", s.path), slog.String("error", err.Error()))
		return nil, err
	}
	return snapshot, nil
}

// Save writes the snapshot to a temp file in the target directory and renames
// it over the cache file, so readers see either the old or the new snapshot.
func (s *Storage) Save(ctx context.Context, snapshot *model.Snapshot) error {
	data, err := storage.Encode(snapshot)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrCacheIO, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("%w: %v", model.ErrCacheIO, err)
	}

	if err := writeAtomic(dir, s.path, data); err != nil {
		return fmt.Errorf("%w: %v", model.ErrCacheIO, err)
	}

	s.logger.Debug("cache written", slog.String("path", s.path), slog.Int("games", len(snapshot.Games)))
	return nil
}

func (s *Storage) Close() error {
	return nil
}

func writeAtomic(dir, path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Chmod(0600); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
