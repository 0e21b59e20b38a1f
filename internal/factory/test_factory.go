package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/samuel/internal/config"
	"github.com/mcoot/samuel/internal/dependencies/mocks"
	"github.com/mcoot/samuel/internal/model"
	"github.com/mcoot/samuel/internal/services/achievements"
	"github.com/mcoot/samuel/internal/services/inventory"
	"github.com/mcoot/samuel/internal/storage/memory"
)

// TestCredentials are the credentials NewTestApp is configured with
var TestCredentials = model.Credentials{
	APIKey:    "test-key",
	AccountID: "76561197960287930",
}

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock   *mocks.MockClock
	MockFetcher *mocks.MockFetcher
	MockRuntime *mocks.MockRuntime
	MemoryStore *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	cfg := &config.Config{
		Credentials:    TestCredentials,
		MaxAge:         inventory.DefaultMaxAge,
		CacheBackend:   config.BackendFile,
		RuntimeTimeout: achievements.DefaultTimeout,
		Output:         config.OutputText,
	}

	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockFetcher := mocks.NewMockFetcher()
	mockRuntime := mocks.NewMockRuntime()

	app := newWithDependencies(cfg, store, mockFetcher, mockRuntime, mockClock, slog.New(slog.NewTextHandler(io.Discard, nil)))

	return &TestApp{
		App:         app,
		MockClock:   mockClock,
		MockFetcher: mockFetcher,
		MockRuntime: mockRuntime,
		MemoryStore: store,
	}
}

// SetRuntimeTimeout rebuilds the achievements service with a shorter timeout
func (t *TestApp) SetRuntimeTimeout(d time.Duration) {
	t.Config.RuntimeTimeout = d
	t.Achievements = achievements.New(t.MockRuntime, d, t.Logger)
}
