package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mcoot/samuel/internal/model"
)

// FormatVersion is the version written into every encoded snapshot
const FormatVersion = 1

type document struct {
	Version   int          `json:"version"`
	FetchedAt *time.Time   `json:"fetched_at"`
	Games     []model.Game `json:"games"`
}

// Encode serializes a snapshot into the on-disk JSON document
func Encode(snapshot *model.Snapshot) ([]byte, error) {
	if snapshot == nil {
		return nil, errors.New("nil snapshot")
	}
	games := snapshot.Games
	if games == nil {
		games = []model.Game{}
	}
	fetchedAt := snapshot.FetchedAt
	return json.MarshalIndent(document{
		Version:   FormatVersion,
		FetchedAt: &fetchedAt,
		Games:     games,
	}, "", "  ")
}

// Decode parses an encoded snapshot. Anything that is not a well formed
// document of the current version is reported as a cache miss.
func Decode(data []byte) (*model.Snapshot, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrCacheMiss, err)
	}
	if doc.Version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported cache version %d", model.ErrCacheMiss, doc.Version)
	}
	if doc.FetchedAt == nil {
		return nil, fmt.Errorf("%w: missing fetched_at", model.ErrCacheMiss)
	}

	snapshot := &model.Snapshot{Games: doc.Games, FetchedAt: *doc.FetchedAt}
	if snapshot.Games == nil {
		snapshot.Games = []model.Game{}
	}
	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrCacheMiss, err)
	}
	return snapshot, nil
}
