package achievements_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/samuel/internal/dependencies/mocks"
	"github.com/mcoot/samuel/internal/model"
	"github.com/mcoot/samuel/internal/services/achievements"
	"github.com/mcoot/samuel/internal/testutil"
)

const appID model.AppID = 440

type ServiceSuite struct {
	suite.Suite
	runtime *mocks.MockRuntime
	service *achievements.Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.runtime = mocks.NewMockRuntime()
	s.runtime.AddApp(appID,
		model.Achievement{ID: "A", Name: "First", Description: "Do a thing", Unlocked: true},
		model.Achievement{ID: "B", Name: "Second", Description: "Do another", Unlocked: false},
	)
	s.service = achievements.New(s.runtime, time.Second, testutil.NopLogger())
	s.ctx = context.Background()
}

// ListAchievements tests

func (s *ServiceSuite) TestListReflectsLiveState() {
	list, err := s.service.ListAchievements(s.ctx, appID)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("A", list[0].ID)
	s.True(list[0].Unlocked)
	s.False(list[1].Unlocked)

	s.Require().NoError(s.service.Trigger(s.ctx, appID, "B"))

	list, err = s.service.ListAchievements(s.ctx, appID)
	s.Require().NoError(err)
	s.True(list[1].Unlocked)
}

func (s *ServiceSuite) TestListUnknownApp() {
	_, err := s.service.ListAchievements(s.ctx, 999)
	s.ErrorIs(err, model.ErrUnknownApp)
}

func (s *ServiceSuite) TestEveryOperationFailsWhenRuntimeUnavailable() {
	s.runtime.Unavailable = true

	_, err := s.service.ListAchievements(s.ctx, appID)
	s.ErrorIs(err, model.ErrClientUnavailable)
	s.ErrorIs(s.service.Trigger(s.ctx, appID, "A"), model.ErrClientUnavailable)
	s.ErrorIs(s.service.Clear(s.ctx, appID, "A"), model.ErrClientUnavailable)
	_, err = s.service.ResetAll(s.ctx, appID)
	s.ErrorIs(err, model.ErrClientUnavailable)
	_, err = s.service.Achievement(s.ctx, appID, "A")
	s.ErrorIs(err, model.ErrClientUnavailable)
}

func (s *ServiceSuite) TestUnresponsiveRuntimeTimesOut() {
	s.runtime.Hang = true
	svc := achievements.New(s.runtime, 20*time.Millisecond, testutil.NopLogger())

	_, err := svc.ListAchievements(s.ctx, appID)
	s.ErrorIs(err, model.ErrClientUnavailable)
}

// Achievement tests

func (s *ServiceSuite) TestAchievementByID() {
	a, err := s.service.Achievement(s.ctx, appID, "B")
	s.Require().NoError(err)
	s.Equal("Second", a.Name)

	_, err = s.service.Achievement(s.ctx, appID, "nope")
	s.ErrorIs(err, model.ErrUnknownAchievement)
}

// Trigger / Clear tests

func (s *ServiceSuite) TestTriggerUnlocks() {
	s.Require().NoError(s.service.Trigger(s.ctx, appID, "B"))
	s.True(s.runtime.Unlocked(appID, "B"))
	s.Equal([]string{"B=true"}, s.runtime.Writes())
}

func (s *ServiceSuite) TestTriggerIsIdempotent() {
	s.Require().NoError(s.service.Trigger(s.ctx, appID, "B"))
	s.Require().NoError(s.service.Trigger(s.ctx, appID, "B"))

	s.True(s.runtime.Unlocked(appID, "B"))
	s.Equal([]string{"B=true"}, s.runtime.Writes())
}

func (s *ServiceSuite) TestClearIsIdempotent() {
	s.Require().NoError(s.service.Clear(s.ctx, appID, "A"))
	s.Require().NoError(s.service.Clear(s.ctx, appID, "A"))

	s.False(s.runtime.Unlocked(appID, "A"))
	s.Equal([]string{"A=false"}, s.runtime.Writes())
}

func (s *ServiceSuite) TestTransitionsAreReversible() {
	s.Require().NoError(s.service.Clear(s.ctx, appID, "A"))
	s.Require().NoError(s.service.Trigger(s.ctx, appID, "A"))
	s.True(s.runtime.Unlocked(appID, "A"))
}

func (s *ServiceSuite) TestUnknownAchievement() {
	s.ErrorIs(s.service.Trigger(s.ctx, appID, "missing"), model.ErrUnknownAchievement)
	s.ErrorIs(s.service.Clear(s.ctx, appID, "missing"), model.ErrUnknownAchievement)
	s.Empty(s.runtime.Writes())
}

func (s *ServiceSuite) TestTriggerSurfacesWriteFailure() {
	s.runtime.SetErrs["B"] = errors.New("StoreStats failed")

	err := s.service.Trigger(s.ctx, appID, "B")
	s.EqualError(err, "StoreStats failed")
	s.False(s.runtime.Unlocked(appID, "B"))
}

// ResetAll tests

func (s *ServiceSuite) TestResetAllClearsAndReportsPerID() {
	report, err := s.service.ResetAll(s.ctx, appID)
	s.Require().NoError(err)

	s.False(s.runtime.Unlocked(appID, "A"))
	s.False(s.runtime.Unlocked(appID, "B"))

	s.Equal(appID, report.AppID)
	s.Require().Len(report.Outcomes, 2)
	s.Equal(model.ResetOutcome{AchievementID: "A", Status: model.ResetCleared}, report.Outcomes[0])
	s.Equal(model.ResetOutcome{AchievementID: "B", Status: model.ResetAlreadyLocked}, report.Outcomes[1])
	s.Equal([]string{"A=false"}, s.runtime.Writes())
}

func (s *ServiceSuite) TestResetAllContinuesPastFailures() {
	s.runtime.AddApp(appID,
		model.Achievement{ID: "A", Unlocked: true},
		model.Achievement{ID: "B", Unlocked: true},
		model.Achievement{ID: "C", Unlocked: true},
		model.Achievement{ID: "D", Unlocked: false},
	)
	s.runtime.SetErrs["B"] = model.ErrClientUnavailable

	report, err := s.service.ResetAll(s.ctx, appID)
	s.Require().NoError(err)
	s.Require().Len(report.Outcomes, 4)

	s.Equal(model.ResetCleared, report.Outcomes[0].Status)
	s.Equal(model.ResetFailed, report.Outcomes[1].Status)
	s.ErrorIs(report.Outcomes[1].Err, model.ErrClientUnavailable)
	s.Equal("client_unavailable", report.Outcomes[1].FailureKind())
	s.Equal(model.ResetCleared, report.Outcomes[2].Status)
	s.Equal(model.ResetAlreadyLocked, report.Outcomes[3].Status)

	s.False(s.runtime.Unlocked(appID, "C"))
	s.True(s.runtime.Unlocked(appID, "B"))
	s.Len(report.Failed(), 1)
}

func (s *ServiceSuite) TestResetAllWithNoAchievements() {
	s.runtime.AddApp(7)

	report, err := s.service.ResetAll(s.ctx, 7)
	s.Require().NoError(err)
	s.Empty(report.Outcomes)
	s.Empty(report.Failed())
}

func (s *ServiceSuite) TestResetAllUnknownApp() {
	_, err := s.service.ResetAll(s.ctx, 1234)
	s.ErrorIs(err, model.ErrUnknownApp)
}

func (s *ServiceSuite) TestDefaultTimeout() {
	s.NotPanics(func() {
		svc := achievements.New(s.runtime, 0, testutil.NopLogger())
		_, err := svc.ListAchievements(s.ctx, appID)
		s.NoError(err)
	})
}
