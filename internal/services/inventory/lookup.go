package inventory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mcoot/samuel/internal/model"
)

// suggestionLimit caps how many close matches a failed lookup carries
const suggestionLimit = 3

// NotFoundError reports a failed game lookup together with close matches
type NotFoundError struct {
	Target      string
	ByName      bool
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if e.ByName {
		return fmt.Sprintf("no owned game named %q", e.Target)
	}
	return fmt.Sprintf("no owned game with appid %q", e.Target)
}

// Unwrap lets callers match with errors.Is(err, model.ErrNotFound)
func (e *NotFoundError) Unwrap() error {
	return model.ErrNotFound
}

// Find returns the first game whose name (byName) or appid equals target
func Find(games []model.Game, target string, byName bool) (*model.Game, error) {
	for i := range games {
		if byName {
			if games[i].Name == target {
				return &games[i], nil
			}
		} else if games[i].AppID.String() == target {
			return &games[i], nil
		}
	}

	return nil, &NotFoundError{
		Target:      target,
		ByName:      byName,
		Suggestions: Suggest(games, target, suggestionLimit),
	}
}

// Suggest returns up to limit game names close to target, best first
func Suggest(games []model.Game, target string, limit int) []string {
	target = strings.TrimSpace(target)
	if target == "" || limit <= 0 {
		return nil
	}

	names := make([]string, len(games))
	for i, g := range games {
		names[i] = g.Name
	}

	ranks := fuzzy.RankFindFold(target, names)
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Distance < ranks[j].Distance
	})

	var suggestions []string
	seen := make(map[string]struct{})
	for _, r := range ranks {
		if _, ok := seen[r.Target]; ok {
			continue
		}
		seen[r.Target] = struct{}{}
		suggestions = append(suggestions, r.Target)
		if len(suggestions) == limit {
			break
		}
	}
	return suggestions
}
