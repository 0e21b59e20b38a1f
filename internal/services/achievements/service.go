package achievements

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/samuel/internal/model"
)

// DefaultTimeout bounds each call into the local runtime
const DefaultTimeout = 10 * time.Second

// Bridge is the set of achievement operations offered to the command line
type Bridge interface {
	ListAchievements(ctx context.Context, appID model.AppID) ([]model.Achievement, error)
	Trigger(ctx context.Context, appID model.AppID, achievementID string) error
	Clear(ctx context.Context, appID model.AppID, achievementID string) error
	ResetAll(ctx context.Context, appID model.AppID) (*model.ResetReport, error)
}

// Service implements Bridge on top of a Runtime
type Service struct {
	runtime Runtime
	timeout time.Duration
	logger  *slog.Logger
}

// Ensure Service implements Bridge
var _ Bridge = (*Service)(nil)

// New creates an achievement service. A non-positive timeout falls back to
// DefaultTimeout.
func New(runtime Runtime, timeout time.Duration, logger *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		runtime: runtime,
		timeout: timeout,
		logger:  logger,
	}
}

// ListAchievements returns the live unlock state of every achievement
func (s *Service) ListAchievements(ctx context.Context, appID model.AppID) ([]model.Achievement, error) {
	session, err := s.attach(ctx, appID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, session)
}

// Achievement returns a single achievement by id
func (s *Service) Achievement(ctx context.Context, appID model.AppID, achievementID string) (*model.Achievement, error) {
	list, err := s.ListAchievements(ctx, appID)
	if err != nil {
		return nil, err
	}
	return find(list, achievementID)
}

// Trigger unlocks an achievement. Unlocking an unlocked achievement succeeds
// without writing.
func (s *Service) Trigger(ctx context.Context, appID model.AppID, achievementID string) error {
	_, err := s.setState(ctx, appID, achievementID, true)
	return err
}

// Clear locks an achievement. Locking a locked achievement succeeds without
// writing.
func (s *Service) Clear(ctx context.Context, appID model.AppID, achievementID string) error {
	_, err := s.setState(ctx, appID, achievementID, false)
	return err
}

// ResetAll clears every achievement of the app, one at a time. A failure on
// one achievement is recorded in the report and the batch carries on. The
// returned error is only set when the achievements couldn't be enumerated.
func (s *Service) ResetAll(ctx context.Context, appID model.AppID) (*model.ResetReport, error) {
	session, err := s.attach(ctx, appID)
	if err != nil {
		return nil, err
	}

	list, err := s.list(ctx, session)
	if err != nil {
		return nil, err
	}

	report := &model.ResetReport{
		AppID:    appID,
		Outcomes: make([]model.ResetOutcome, 0, len(list)),
	}

	for _, a := range list {
		outcome := model.ResetOutcome{AchievementID: a.ID, Status: model.ResetAlreadyLocked}
		if a.Unlocked {
			if err := s.write(ctx, session, a.ID, false); err != nil {
				outcome.Status = model.ResetFailed
				outcome.Err = err
			} else {
				outcome.Status = model.ResetCleared
			}
		}

		s.logger.Debug("reset achievement",
			slog.String("appid", appID.String()),
			slog.String("achievement", a.ID),
			slog.String("status", string(outcome.Status)),
		)
		report.Outcomes = append(report.Outcomes, outcome)
	}

	if failed := report.Failed(); len(failed) > 0 {
		s.logger.Warn("reset incomplete",
			slog.String("appid", appID.String()),
			slog.Int("failed", len(failed)),
			slog.Int("total", len(report.Outcomes)),
		)
	}
	return report, nil
}

// setState moves one achievement to the wanted state, reporting whether a
// write was needed.
func (s *Service) setState(ctx context.Context, appID model.AppID, achievementID string, unlocked bool) (bool, error) {
	session, err := s.attach(ctx, appID)
	if err != nil {
		return false, err
	}

	list, err := s.list(ctx, session)
	if err != nil {
		return false, err
	}

	current, err := find(list, achievementID)
	if err != nil {
		return false, err
	}
	if current.Unlocked == unlocked {
		s.logger.Debug("achievement already in requested state",
			slog.String("achievement", achievementID),
			slog.Bool("unlocked", unlocked),
		)
		return false, nil
	}

	if err := s.write(ctx, session, achievementID, unlocked); err != nil {
		return false, err
	}

	s.logger.Info("achievement updated",
		slog.String("appid", appID.String()),
		slog.String("achievement", achievementID),
		slog.Bool("unlocked", unlocked),
	)
	return true, nil
}

func (s *Service) attach(ctx context.Context, appID model.AppID) (Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session, err := s.runtime.Attach(ctx, appID)
	if err != nil {
		return nil, s.classify(ctx, err)
	}
	return session, nil
}

func (s *Service) list(ctx context.Context, session Session) ([]model.Achievement, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	list, err := session.Achievements(ctx)
	if err != nil {
		return nil, s.classify(ctx, err)
	}
	return list, nil
}

func (s *Service) write(ctx context.Context, session Session, achievementID string, unlocked bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := session.SetAchievement(ctx, achievementID, unlocked); err != nil {
		return s.classify(ctx, err)
	}
	return nil
}

// classify turns an unresponsive runtime into ErrClientUnavailable
func (s *Service) classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		if !errors.Is(err, model.ErrClientUnavailable) {
			return fmt.Errorf("%w: no response within %s", model.ErrClientUnavailable, s.timeout)
		}
	}
	return err
}

func find(list []model.Achievement, achievementID string) (*model.Achievement, error) {
	for i := range list {
		if list[i].ID == achievementID {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", model.ErrUnknownAchievement, achievementID)
}
