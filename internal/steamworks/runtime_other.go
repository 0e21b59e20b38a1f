//go:build !(darwin || linux)

package steamworks

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/mcoot/samuel/internal/model"
	"github.com/mcoot/samuel/internal/services/achievements"
)

// Runtime reports the local client as unavailable on platforms without a
// dynamic loader binding.
type Runtime struct {
	cfg    Config
	logger *slog.Logger
}

// Ensure Runtime implements the achievements runtime
var _ achievements.Runtime = (*Runtime)(nil)

func New(cfg Config, logger *slog.Logger) *Runtime {
	return &Runtime{cfg: cfg, logger: logger}
}

func (r *Runtime) Attach(_ context.Context, _ model.AppID) (achievements.Session, error) {
	return nil, fmt.Errorf("%w: steamworks is not supported on %s", model.ErrClientUnavailable, runtime.GOOS)
}

func (r *Runtime) Close() error {
	return nil
}
