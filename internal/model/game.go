package model

import (
	"fmt"
	"strconv"
	"time"
)

// AppID identifies a title in the Web API and in the local runtime
type AppID uint64

// String returns the decimal form used on the command line and in lookups
func (id AppID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseAppID parses a decimal app id. The local runtime addresses apps with
// 32-bit ids, so anything wider is rejected.
func ParseAppID(s string) (AppID, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a valid app id", ErrValidation, s)
	}
	return AppID(v), nil
}

// Game is one owned title as reported by the Web API
type Game struct {
	AppID           AppID  `json:"appid"`
	Name            string `json:"name"`
	PlaytimeForever uint32 `json:"playtime_forever"` // minutes
}

// Snapshot is the full owned-games inventory as of one fetch
type Snapshot struct {
	Games     []Game    `json:"games"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Age returns how old the snapshot is relative to now
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// Validate checks the appid uniqueness invariant
func (s *Snapshot) Validate() error {
	seen := make(map[AppID]struct{}, len(s.Games))
	for _, g := range s.Games {
		if _, ok := seen[g.AppID]; ok {
			return fmt.Errorf("duplicate appid %d in snapshot", g.AppID)
		}
		seen[g.AppID] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy so callers can't mutate stored state
func (s *Snapshot) Clone() *Snapshot {
	games := make([]Game, len(s.Games))
	copy(games, s.Games)
	return &Snapshot{Games: games, FetchedAt: s.FetchedAt}
}

// Credentials identify the account whose library is queried
type Credentials struct {
	APIKey    string
	AccountID string
}
