// Package scoring turns a game's scoring table and a finished match into points.
package scoring

import (
	"sort"

	"github.com/daniel-lerner/lerners-game-tournament/models"
)

// Table is the scoring table of a game: participant count -> position -> points.
type Table = models.ScoringTable

// Counts returns the participant counts a table defines, ascending.
func Counts(table Table) []int {
	counts := make([]int, 0, len(table))
	for count := range table {
		counts = append(counts, count)
	}
	sort.Ints(counts)
	return counts
}

// Smallest returns the smallest participant count of the table and false when the
// table is empty.
func Smallest(table Table) (int, bool) {
	counts := Counts(table)
	if len(counts) == 0 {
		return 0, false
	}
	return counts[0], true
}

// Row picks the position->points row used for a match with participantCount players.
// Plus-rule games borrow the row of the smallest listed count when the exact count is
// missing. A nil row means every position earns nothing.
func Row(table Table, isPlusRule bool, participantCount int) map[int]int {
	if row, ok := table[participantCount]; ok {
		return row
	}
	if !isPlusRule {
		return nil
	}
	smallest, ok := Smallest(table)
	if !ok {
		return nil
	}
	return table[smallest]
}

// Resolve returns the points awarded for finishing at position in a match of
// participantCount players. It never fails: missing counts or positions are worth 0.
func Resolve(table Table, isPlusRule bool, participantCount, position int) int {
	row := Row(table, isPlusRule, participantCount)
	if row == nil {
		return 0
	}
	points := row[position]
	if points < 0 {
		return 0
	}
	return points
}

// Entry is one participant of a match as submitted, before points are known.
type Entry struct {
	PlayerID models.ID `json:"playerId"`
	Position int       `json:"position"`
}

// ResolveAll computes the stored results of a match. Points are fixed here and never
// recomputed if the game's table changes later.
func ResolveAll(game models.Game, entries []Entry) []models.MatchResult {
	results := make([]models.MatchResult, 0, len(entries))
	for _, e := range entries {
		results = append(results, models.MatchResult{
			PlayerID:     e.PlayerID,
			Position:     e.Position,
			PointsEarned: Resolve(game.Scoring, game.IsPlusRule, len(entries), e.Position),
		})
	}
	return results
}
