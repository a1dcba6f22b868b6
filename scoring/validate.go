package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/daniel-lerner/lerners-game-tournament/models"
)

// ValidationError lists every problem found in a submitted match, keyed by field.
type ValidationError struct {
	Problems map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Problems))
	for k := range e.Problems {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Problems[k])
	}
	return "invalid match entry: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Problems == nil {
		e.Problems = make(map[string]string)
	}
	if _, exists := e.Problems[field]; !exists {
		e.Problems[field] = msg
	}
}

// ValidateEntry checks a submission against the game rules before anything is written.
//
// Regular games need a listed participant count and positions forming exactly 1..N.
// Plus-rule games accept any count from the smallest listed one upwards; positions
// only need to be positive and at least one participant must have won.
// known reports whether a player id may take part; nil accepts everyone.
func ValidateEntry(game models.Game, entries []Entry, known func(models.ID) bool) error {
	verr := &ValidationError{}
	n := len(entries)

	if n == 0 {
		verr.add("entries", "at least one participant is required")
		return verr
	}

	smallest, hasCounts := Smallest(game.Scoring)
	if !hasCounts {
		verr.add("game", fmt.Sprintf("game %q has no scoring table", game.Name))
	} else if game.IsPlusRule {
		if n < smallest {
			verr.add("entries", fmt.Sprintf("%s requires at least %d participants", game.Name, smallest))
		}
	} else if _, ok := game.Scoring[n]; !ok {
		verr.add("entries", fmt.Sprintf("%s cannot be played by %d participants (allowed: %s)", game.Name, n, joinInts(Counts(game.Scoring))))
	}

	seen := make(map[models.ID]bool, n)
	positions := make(map[int]int, n)
	winners := 0
	for i, e := range entries {
		field := fmt.Sprintf("entries[%d]", i)
		if e.PlayerID.IsZero() {
			verr.add(field, "player is required")
			continue
		}
		if seen[e.PlayerID] {
			verr.add(field, fmt.Sprintf("player %s appears more than once", e.PlayerID))
		}
		seen[e.PlayerID] = true
		if known != nil && !known(e.PlayerID) {
			verr.add(field, fmt.Sprintf("player %s is not registered in this edition", e.PlayerID))
		}
		if e.Position < 1 {
			verr.add(field, "position is required")
			continue
		}
		positions[e.Position]++
		if e.Position == 1 {
			winners++
		}
	}

	if game.IsPlusRule {
		if winners == 0 {
			verr.add("positions", "select at least one winner")
		}
	} else {
		for pos := 1; pos <= n; pos++ {
			if positions[pos] != 1 {
				verr.add("positions", fmt.Sprintf("positions must be exactly 1..%d with no repeats", n))
				break
			}
		}
	}

	if len(verr.Problems) > 0 {
		return verr
	}
	return nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
