package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/samuel/internal/model"
	"github.com/mcoot/samuel/internal/storage"
)

// Storage is a Redis-backed snapshot store, for sharing one cache between
// machines. Freshness is decided by the caller, so keys carry no TTL.
type Storage struct {
	client *redis.Client
	cfg    Config
	logger *slog.Logger
}

// New creates a new Redis storage instance. The client dials on first use,
// so an unreachable server only surfaces through Load and Save.
func New(cfg Config, logger *slog.Logger) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}

	return NewWithClient(redis.NewClient(opts), cfg, logger), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, logger *slog.Logger) *Storage {
	if cfg.Namespace == "" {
		cfg.Namespace = keyPrefix
	}
	return &Storage{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.SnapshotStore = (*Storage)(nil)

func (s *Storage) Load(ctx context.Context) (*model.Snapshot, error) {
	data, err := s.client.Get(ctx, snapshotKey(s.cfg.Namespace)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("redis cache unreadable", slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("%w: %v", model.ErrCacheMiss, err)
	}

	snapshot, err := storage.Decode(data)
	if err != nil {
		s.logger.Warn("redis cache corrupt", slog.String("error", err.Error()))
		return nil, err
	}
	return snapshot, nil
}

// Save replaces the snapshot with a single SET, which Redis applies atomically
func (s *Storage) Save(ctx context.Context, snapshot *model.Snapshot) error {
	data, err := storage.Encode(snapshot)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrCacheIO, err)
	}

	if err := s.client.Set(ctx, snapshotKey(s.cfg.Namespace), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrCacheIO, err)
	}
	return nil
}
