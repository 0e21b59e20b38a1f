package achievements

import (
	"context"

	"github.com/mcoot/samuel/internal/model"
)

// Runtime is the local achievement runtime. Attaching fails with
// model.ErrClientUnavailable when the runtime isn't reachable for the app and
// with model.ErrUnknownApp when the app isn't owned.
type Runtime interface {
	Attach(ctx context.Context, appID model.AppID) (Session, error)
}

// Session is an attachment to one app's live achievement state. Calls must
// honour ctx and return promptly once it is done.
type Session interface {
	// Achievements lists every achievement with its current unlock state
	Achievements(ctx context.Context) ([]model.Achievement, error)

	// SetAchievement sets or clears one achievement and asks the runtime to
	// persist the change.
	SetAchievement(ctx context.Context, id string, unlocked bool) error
}
