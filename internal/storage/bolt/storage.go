package bolt

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mcoot/samuel/internal/model"
	"github.com/mcoot/samuel/internal/storage"
)

var (
	bucketSnapshots = []byte("snapshots")
	keyOwnedGames   = []byte("owned_games")
)

// defaultLockTimeout bounds the wait for another invocation's file lock
const defaultLockTimeout = 1 * time.Second

// Storage keeps the snapshot in an embedded BoltDB file. The database is
// opened for each Load or Save and closed straight after, so concurrent
// invocations only contend for the lock while one of them is writing.
type Storage struct {
	path        string
	lockTimeout time.Duration
	logger      *slog.Logger
}

// New creates a bolt-backed snapshot store. Nothing is touched on disk
// until the first Load or Save.
func New(path string, logger *slog.Logger) *Storage {
	return &Storage{
		path:        path,
		lockTimeout: defaultLockTimeout,
		logger:      logger,
	}
}

// Ensure Storage implements the interface
var _ storage.SnapshotStore = (*Storage)(nil)

// Path returns the database file location
func (s *Storage) Path() string {
	return s.path
}

func (s *Storage) open(readOnly bool) (*bolt.DB, error) {
	return bolt.Open(s.path, 0600, &bolt.Options{
		Timeout:  s.lockTimeout,
		ReadOnly: readOnly,
	})
}

func (s *Storage) Load(ctx context.Context) (*model.Snapshot, error) {
	db, err := s.open(true)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("bolt cache unreadable", slog.String("path", s.path), slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("%w: %v", model.ErrCacheMiss, err)
	}
	defer db.Close()

	var data []byte
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshots)
		if b == nil {
			return nil
		}
		if v := b.Get(keyOwnedGames); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("bolt cache unreadable", slog.String("path", s.path), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", model.ErrCacheMiss, err)
	}
	if data == nil {
		return nil, model.ErrCacheMiss
	}

	snapshot, err := storage.Decode(data)
	if err != nil {
		s.logger.Warn("bolt cache corrupt", slog.String("path", s.path), slog.String("error", err.Error()))
		return nil, err
	}
	return snapshot, nil
}

// Save writes the snapshot in a single bolt transaction. A database file
// that can't be opened for any reason but a held lock is replaced.
func (s *Storage) Save(ctx context.Context, snapshot *model.Snapshot) error {
	data, err := storage.Encode(snapshot)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrCacheIO, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("%w: %v", model.ErrCacheIO, err)
	}

	db, err := s.open(false)
	if err != nil && !errors.Is(err, bolt.ErrTimeout) {
		s.logger.Warn("replacing unreadable bolt cache", slog.String("path", s.path), slog.String("error", err.Error()))
		if rmErr := os.Remove(s.path); rmErr == nil {
			db, err = s.open(false)
		}
	}
	if err != nil {
		return fmt.Errorf("%w: failed to open bolt db: %v", model.ErrCacheIO, err)
	}
	defer db.Close()

	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketSnapshots)
		if err != nil {
			return err
		}
		return b.Put(keyOwnedGames, data)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrCacheIO, err)
	}
	return nil
}

func (s *Storage) Close() error {
	return nil
}
