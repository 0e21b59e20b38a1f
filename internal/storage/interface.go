package storage

import (
	"context"

	"github.com/mcoot/samuel/internal/model"
)

// SnapshotStore persists exactly one owned-games snapshot.
//
// Load returns model.ErrCacheMiss when there is nothing usable to return:
// the snapshot is absent, unreadable or fails to decode. Save returns
// model.ErrCacheIO on failure and never leaves a partially written snapshot
// visible to readers.
type SnapshotStore interface {
	Load(ctx context.Context) (*model.Snapshot, error)
	Save(ctx context.Context, snapshot *model.Snapshot) error
	Close() error
}
