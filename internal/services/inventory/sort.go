package inventory

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/mcoot/samuel/internal/model"
)

// SortKey selects the field games are ordered by for display
type SortKey int

const (
	SortByAppID SortKey = iota
	SortByName
	SortByPlaytime
)

// ParseSortKey accepts the numeric index used on the command line
func ParseSortKey(s string) (SortKey, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: sort index %q is not a number", model.ErrValidation, s)
	}
	return SortKeyFromIndex(n)
}

// SortKeyFromIndex validates a numeric sort index
func SortKeyFromIndex(n int) (SortKey, error) {
	if n < int(SortByAppID) || n > int(SortByPlaytime) {
		return 0, fmt.Errorf("%w: sort index %d out of range (0=appid, 1=name, 2=playtime)", model.ErrValidation, n)
	}
	return SortKey(n), nil
}

// SortGames returns a stably sorted copy of games; the input is not modified
func SortGames(games []model.Game, key SortKey) []model.Game {
	sorted := slices.Clone(games)
	slices.SortStableFunc(sorted, func(a, b model.Game) int {
		switch key {
		case SortByName:
			return strings.Compare(a.Name, b.Name)
		case SortByPlaytime:
			return cmp.Compare(a.PlaytimeForever, b.PlaytimeForever)
		default:
			return cmp.Compare(a.AppID, b.AppID)
		}
	})
	return sorted
}
