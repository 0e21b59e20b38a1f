package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/samuel/internal/model"
	"github.com/mcoot/samuel/internal/services/inventory"
)

// MockFetcher is a mock remote inventory for testing
type MockFetcher struct {
	mu sync.Mutex

	// Games is returned by every successful call
	Games []model.Game

	// Err, when set, is returned instead of Games
	Err error

	calls     int
	lastCreds model.Credentials
}

// Ensure MockFetcher implements Fetcher
var _ inventory.Fetcher = (*MockFetcher)(nil)

// NewMockFetcher creates a MockFetcher returning the given games
func NewMockFetcher(games ...model.Game) *MockFetcher {
	if games == nil {
		games = []model.Game{}
	}
	return &MockFetcher{Games: games}
}

// GetOwnedGames records the call and returns a copy of Games or Err
func (f *MockFetcher) GetOwnedGames(ctx context.Context, creds model.Credentials) ([]model.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.lastCreds = creds

	if f.Err != nil {
		return nil, f.Err
	}
	games := make([]model.Game, len(f.Games))
	copy(games, f.Games)
	return games, nil
}

// Calls returns how many fetches were made
func (f *MockFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastCredentials returns the credentials of the most recent fetch
func (f *MockFetcher) LastCredentials() model.Credentials {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastCreds
}
