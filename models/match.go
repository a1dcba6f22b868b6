package models

import "time"

type MatchResult struct {
	PlayerID     ID  `json:"playerId"`
	Position     int `json:"position"`
	PointsEarned int `json:"pointsEarned"`
}

// IsWin reports whether the result counts as a win for the ledger.
func (r MatchResult) IsWin() bool { return r.Position == 1 }

type Match struct {
	ID        ID            `json:"id"`
	GameID    ID            `json:"gameId"`
	Timestamp time.Time     `json:"timestamp"`
	EditionID string        `json:"editionId"`
	Results   []MatchResult `json:"results"`
}

// Winners returns the ids of every participant that finished first.
func (m *Match) Winners() []ID {
	var ids []ID
	for _, r := range m.Results {
		if r.IsWin() {
			ids = append(ids, r.PlayerID)
		}
	}
	return ids
}
