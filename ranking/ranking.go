// Package ranking orders the players of an edition into a leaderboard.
package ranking

import (
	"sort"

	"github.com/daniel-lerner/lerners-game-tournament/models"
)

// Less reports whether a ranks above b: more points, then more wins, then name and id
// ascending so that ties always come out in the same order.
func Less(a, b models.Player) bool {
	if a.TotalPoints != b.TotalPoints {
		return a.TotalPoints > b.TotalPoints
	}
	if a.Wins != b.Wins {
		return a.Wins > b.Wins
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}

// Rank filters players to edition and returns them as ordered standings with 1-based
// places. The input slice is not modified.
func Rank(players []models.Player, edition string) []models.Standing {
	filtered := make([]models.Player, 0, len(players))
	for _, p := range players {
		if p.EditionID == edition {
			filtered = append(filtered, p)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return Less(filtered[i], filtered[j]) })

	standings := make([]models.Standing, len(filtered))
	for i, p := range filtered {
		standings[i] = models.Standing{
			Place:         i + 1,
			PlayerID:      p.ID,
			Name:          p.Name,
			AvatarURL:     p.AvatarURL,
			TotalPoints:   p.TotalPoints,
			MatchesPlayed: p.MatchesPlayed,
			Wins:          p.Wins,
		}
	}
	return standings
}

// Top returns at most n leading standings.
func Top(standings []models.Standing, n int) []models.Standing {
	if n < 0 {
		n = 0
	}
	if len(standings) < n {
		n = len(standings)
	}
	return standings[:n]
}

// Leader returns the first place of edition, or nil when the edition has no players.
func Leader(players []models.Player, edition string) *models.Standing {
	standings := Rank(players, edition)
	if len(standings) == 0 {
		return nil
	}
	leader := standings[0]
	return &leader
}
