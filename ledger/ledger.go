// Package ledger keeps the per-player aggregates in step with committed matches.
package ledger

import "github.com/daniel-lerner/lerners-game-tournament/models"

// Apply adds one match result to a player's aggregates.
func Apply(p *models.Player, r models.MatchResult) {
	p.TotalPoints += r.PointsEarned
	p.MatchesPlayed++
	if r.IsWin() {
		p.Wins++
	}
}

// Reverse undoes Apply. Aggregates are clamped at zero, so reversing onto a player
// whose totals drifted below the recorded values never goes negative.
func Reverse(p *models.Player, r models.MatchResult) {
	p.TotalPoints = clamp(p.TotalPoints - r.PointsEarned)
	p.MatchesPlayed = clamp(p.MatchesPlayed - 1)
	if r.IsWin() {
		p.Wins = clamp(p.Wins - 1)
	}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// Ledger holds the players of a single edition.
type Ledger struct {
	edition string
	players map[models.ID]*models.Player
}

// New builds a ledger for edition over the given players. Players of other editions
// are ignored; the ledger mutates the pointed-to values.
func New(edition string, players []*models.Player) *Ledger {
	l := &Ledger{edition: edition, players: make(map[models.ID]*models.Player, len(players))}
	for _, p := range players {
		if p != nil && p.EditionID == edition {
			l.players[p.ID] = p
		}
	}
	return l
}

func (l *Ledger) Edition() string { return l.edition }

// Player returns the tracked player with id.
func (l *Ledger) Player(id models.ID) (*models.Player, bool) {
	p, ok := l.players[id]
	return p, ok
}

// ApplyMatch applies every result of m and returns the players that changed.
// Results for players the ledger does not hold are skipped. A match from another
// edition touches nothing.
func (l *Ledger) ApplyMatch(m models.Match) []*models.Player {
	return l.each(m, Apply)
}

// ReverseMatch is the inverse of ApplyMatch.
func (l *Ledger) ReverseMatch(m models.Match) []*models.Player {
	return l.each(m, Reverse)
}

func (l *Ledger) each(m models.Match, op func(*models.Player, models.MatchResult)) []*models.Player {
	if m.EditionID != l.edition {
		return nil
	}
	touched := make([]*models.Player, 0, len(m.Results))
	for _, r := range m.Results {
		p, ok := l.players[r.PlayerID]
		if !ok {
			continue
		}
		op(p, r)
		touched = append(touched, p)
	}
	return touched
}

// Reset zeroes the aggregates of every player of edition and returns them.
func (l *Ledger) Reset(edition string) []*models.Player {
	if edition != l.edition {
		return nil
	}
	reset := make([]*models.Player, 0, len(l.players))
	for _, p := range l.players {
		p.SetAggregates(models.Aggregates{})
		reset = append(reset, p)
	}
	return reset
}
