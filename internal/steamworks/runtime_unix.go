//go:build darwin || linux

package steamworks

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/mcoot/samuel/internal/model"
	"github.com/mcoot/samuel/internal/services/achievements"
)

const callbackInterval = 50 * time.Millisecond

// Runtime is the Steamworks-backed achievements.Runtime. Steam binds the
// process to a single app at init, so one Runtime serves one app.
type Runtime struct {
	cfg    Config
	logger *slog.Logger
	load   func(path string) (*api, error)

	mu      sync.Mutex
	api     *api
	worker  *worker
	session *session
	closed  bool
}

// Ensure Runtime implements the achievements runtime
var _ achievements.Runtime = (*Runtime)(nil)

// New creates a runtime; the library is loaded on first Attach
func New(cfg Config, logger *slog.Logger) *Runtime {
	if cfg.LibraryPath == "" {
		cfg.LibraryPath = defaultLibraryName()
	}
	if cfg.StatsWait <= 0 {
		cfg.StatsWait = DefaultConfig().StatsWait
	}
	return &Runtime{
		cfg:    cfg,
		logger: logger,
		load:   loadAPI,
	}
}

func (r *Runtime) Attach(ctx context.Context, appID model.AppID) (achievements.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, fmt.Errorf("%w: runtime closed", model.ErrClientUnavailable)
	}
	if r.session != nil {
		if r.session.appID == appID {
			return r.session, nil
		}
		return nil, fmt.Errorf("%w: already attached to app %s", model.ErrClientUnavailable, r.session.appID)
	}

	if r.api == nil {
		a, err := r.load(r.cfg.LibraryPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrClientUnavailable, err)
		}
		r.api = a
		r.worker = newWorker()
	}

	id := strconv.FormatUint(uint64(appID), 10)
	for _, name := range []string{"SteamAppId", "SteamGameId"} {
		_ = os.Setenv(name, id)
		if r.api.setenv != nil {
			r.api.setenv(name, id, 1)
		}
	}

	r.logger.Debug("initialising steamworks", "app_id", appID, "library", r.cfg.LibraryPath)
	initErr, err := do(ctx, r.worker, r.api.initialize)
	if err != nil {
		return nil, err
	}
	if initErr != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrClientUnavailable, initErr)
	}

	type handles struct {
		stats      uintptr
		subscribed bool
	}
	h, err := do(ctx, r.worker, func() handles {
		apps := r.api.apps()
		stats := r.api.userStats()
		return handles{
			stats:      stats,
			subscribed: apps != 0 && r.api.isSubscribedApp(apps, uint32(appID)),
		}
	})
	if err != nil {
		return nil, err
	}
	if !h.subscribed || h.stats == 0 {
		r.shutdown()
		return nil, fmt.Errorf("%w: app %s is not owned by the signed-in account", model.ErrUnknownApp, appID)
	}

	s := &session{
		appID:  appID,
		api:    r.api,
		worker: r.worker,
		stats:  h.stats,
		logger: r.logger.With("app_id", appID),
	}
	if err := s.waitForStats(ctx, r.cfg.StatsWait); err != nil {
		r.shutdown()
		return nil, err
	}

	r.session = s
	return s, nil
}

// Close shuts Steam down if it was initialised
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	if r.session != nil {
		r.shutdown()
		r.session = nil
	}
	if r.worker != nil {
		r.worker.stop()
	}
	return nil
}

func (r *Runtime) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, _ = do(ctx, r.worker, func() struct{} {
		r.api.shutdown()
		return struct{}{}
	})
}

type session struct {
	appID  model.AppID
	api    *api
	worker *worker
	stats  uintptr
	logger *slog.Logger
}

// waitForStats asks for the user's stats where the SDK still needs it and
// pumps callbacks until the schema reports achievements or wait elapses.
// Apps without achievements simply use up the wait.
func (s *session) waitForStats(ctx context.Context, wait time.Duration) error {
	if s.api.requestCurrentStats != nil {
		if _, err := do(ctx, s.worker, func() bool { return s.api.requestCurrentStats(s.stats) }); err != nil {
			return err
		}
	}

	deadline := time.Now().Add(wait)
	for {
		n, err := do(ctx, s.worker, func() uint32 {
			s.api.runCallbacks()
			return s.api.numAchievements(s.stats)
		})
		if err != nil {
			return err
		}
		if n > 0 || time.Now().After(deadline) {
			s.logger.Debug("stats ready", "achievements", n)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(callbackInterval):
		}
	}
}

func (s *session) Achievements(ctx context.Context) ([]model.Achievement, error) {
	type result struct {
		list []model.Achievement
		err  error
	}

	res, err := do(ctx, s.worker, func() result {
		s.api.runCallbacks()
		n := s.api.numAchievements(s.stats)
		list := make([]model.Achievement, 0, n)
		for i := uint32(0); i < n; i++ {
			id := s.api.achievementName(s.stats, i)
			if id == "" {
				continue
			}
			var unlocked bool
			if !s.api.getAchievement(s.stats, id, &unlocked) {
				return result{err: fmt.Errorf("%w: stats for %q are not loaded", model.ErrClientUnavailable, id)}
			}
			list = append(list, model.Achievement{
				ID:          id,
				Name:        s.api.displayAttribute(s.stats, id, attrName),
				Description: s.api.displayAttribute(s.stats, id, attrDesc),
				Unlocked:    unlocked,
			})
		}
		return result{list: list}
	})
	if err != nil {
		return nil, err
	}
	return res.list, res.err
}

func (s *session) SetAchievement(ctx context.Context, id string, unlocked bool) error {
	res, err := do(ctx, s.worker, func() error {
		var ok bool
		if unlocked {
			ok = s.api.setAchievement(s.stats, id)
		} else {
			ok = s.api.clearAchievement(s.stats, id)
		}
		if !ok {
			return fmt.Errorf("%w: %q", errRejected, id)
		}
		if !s.api.storeStats(s.stats) {
			return fmt.Errorf("%w: StoreStats failed for %q", errRejected, id)
		}
		s.api.runCallbacks()
		return nil
	})
	if err != nil {
		return err
	}
	return res
}
