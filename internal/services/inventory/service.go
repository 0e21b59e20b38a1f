package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/samuel/internal/dependencies/clock"
	"github.com/mcoot/samuel/internal/model"
	"github.com/mcoot/samuel/internal/storage"
)

// DefaultMaxAge is how long a cached snapshot is trusted
const DefaultMaxAge = 24 * time.Hour

// Fetcher retrieves the owned-games list from the remote inventory service
type Fetcher interface {
	GetOwnedGames(ctx context.Context, creds model.Credentials) ([]model.Game, error)
}

// Service serves owned games from the snapshot cache or the Web API,
// deciding per call which source to trust.
type Service struct {
	fetcher Fetcher
	store   storage.SnapshotStore
	clock   clock.Clock
	maxAge  time.Duration
	logger  *slog.Logger
}

// New creates an inventory service. A non-positive maxAge falls back to
// DefaultMaxAge.
func New(fetcher Fetcher, store storage.SnapshotStore, clk clock.Clock, maxAge time.Duration, logger *slog.Logger) *Service {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Service{
		fetcher: fetcher,
		store:   store,
		clock:   clk,
		maxAge:  maxAge,
		logger:  logger,
	}
}

// MaxAge returns the staleness threshold in use
func (s *Service) MaxAge() time.Duration {
	return s.maxAge
}

// GetOwnedGames returns the cached snapshot while it is fresh, otherwise
// fetches and persists a new one.
//
// If the fetch succeeds but persisting fails, the fresh snapshot is returned
// together with an error wrapping model.ErrCacheIO.
func (s *Service) GetOwnedGames(ctx context.Context, creds model.Credentials) (*model.Snapshot, error) {
	cached, err := s.store.Load(ctx)
	if err == nil {
		age := cached.Age(s.clock.Now())
		// A timestamp in the future means the clock moved; don't trust it.
		if age >= 0 && age <= s.maxAge {
			s.logger.Debug("cache hit", slog.Duration("age", age), slog.Int("games", len(cached.Games)))
			return cached, nil
		}
		s.logger.Debug("cache stale", slog.Duration("age", age), slog.Duration("max_age", s.maxAge))
	} else {
		s.logger.Debug("cache miss", slog.String("reason", err.Error()))
	}

	return s.GetOwnedGamesDirect(ctx, creds)
}

// GetOwnedGamesDirect always fetches from the Web API and persists the result.
// A failed fetch leaves the cache untouched.
func (s *Service) GetOwnedGamesDirect(ctx context.Context, creds model.Credentials) (*model.Snapshot, error) {
	games, err := s.fetcher.GetOwnedGames(ctx, creds)
	if err != nil {
		return nil, err
	}

	snapshot := &model.Snapshot{
		Games:     games,
		FetchedAt: s.clock.Now(),
	}

	if err := s.store.Save(ctx, snapshot); err != nil {
		s.logger.Warn("failed to persist owned games", slog.String("error", err.Error()))
		if !errors.Is(err, model.ErrCacheIO) {
			err = fmt.Errorf("%w: %v", model.ErrCacheIO, err)
		}
		return snapshot, err
	}

	s.logger.Info("owned games refreshed", slog.Int("games", len(games)))
	return snapshot, nil
}

// FindGame resolves target against the owned games, by name when byName is
// set and by stringified appid otherwise. The first match wins. As with
// GetOwnedGames, a found game may come back alongside a model.ErrCacheIO.
func (s *Service) FindGame(ctx context.Context, creds model.Credentials, target string, byName bool) (*model.Game, error) {
	snapshot, err := s.GetOwnedGames(ctx, creds)
	if snapshot == nil {
		return nil, err
	}

	game, findErr := Find(snapshot.Games, target, byName)
	if findErr != nil {
		return nil, findErr
	}
	return game, err
}
