package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/mcoot/samuel/internal/model"
	"github.com/mcoot/samuel/internal/services/achievements"
)

// MockRuntime is an in-memory achievement runtime for testing
type MockRuntime struct {
	mu sync.Mutex

	apps map[model.AppID][]model.Achievement

	// Unavailable makes every Attach fail with ErrClientUnavailable
	Unavailable bool

	// Hang makes every session call block until its context is done
	Hang bool

	// SetErrs fails SetAchievement for specific achievement ids
	SetErrs map[string]error

	attaches int
	writes   []string
}

// Ensure MockRuntime implements Runtime
var _ achievements.Runtime = (*MockRuntime)(nil)

// NewMockRuntime creates an empty MockRuntime
func NewMockRuntime() *MockRuntime {
	return &MockRuntime{
		apps:    make(map[model.AppID][]model.Achievement),
		SetErrs: make(map[string]error),
	}
}

// AddApp registers an owned app with the given achievements
func (r *MockRuntime) AddApp(appID model.AppID, list ...model.Achievement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[appID] = append([]model.Achievement(nil), list...)
}

// Unlocked reports the stored state of one achievement
func (r *MockRuntime) Unlocked(appID model.AppID, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps[appID] {
		if a.ID == id {
			return a.Unlocked
		}
	}
	return false
}

// Writes returns the "id=state" log of every successful SetAchievement
func (r *MockRuntime) Writes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.writes...)
}

// Attaches returns how many times Attach was called
func (r *MockRuntime) Attaches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attaches
}

// Attach returns a session for a registered app
func (r *MockRuntime) Attach(ctx context.Context, appID model.AppID) (achievements.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.attaches++
	if r.Unavailable {
		return nil, fmt.Errorf("%w: runtime not running", model.ErrClientUnavailable)
	}
	if _, ok := r.apps[appID]; !ok {
		return nil, fmt.Errorf("%w: %d", model.ErrUnknownApp, appID)
	}
	return &mockSession{runtime: r, appID: appID}, nil
}

type mockSession struct {
	runtime *MockRuntime
	appID   model.AppID
}

func (s *mockSession) Achievements(ctx context.Context) ([]model.Achievement, error) {
	if err := s.runtime.maybeHang(ctx); err != nil {
		return nil, err
	}

	s.runtime.mu.Lock()
	defer s.runtime.mu.Unlock()
	return append([]model.Achievement(nil), s.runtime.apps[s.appID]...), nil
}

func (s *mockSession) SetAchievement(ctx context.Context, id string, unlocked bool) error {
	if err := s.runtime.maybeHang(ctx); err != nil {
		return err
	}

	s.runtime.mu.Lock()
	defer s.runtime.mu.Unlock()

	if err := s.runtime.SetErrs[id]; err != nil {
		return err
	}

	list := s.runtime.apps[s.appID]
	for i := range list {
		if list[i].ID == id {
			s.runtime.writes = append(s.runtime.writes, fmt.Sprintf("%s=%t", id, unlocked))
			list[i].Unlocked = unlocked
			return nil
		}
	}
	return fmt.Errorf("%w: %q", model.ErrUnknownAchievement, id)
}

func (r *MockRuntime) maybeHang(ctx context.Context) error {
	r.mu.Lock()
	hang := r.Hang
	r.mu.Unlock()

	if !hang {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}
