package models

type Player struct {
	ID            ID     `json:"id"`
	Name          string `json:"name"`
	AvatarURL     string `json:"avatarUrl,omitempty"`
	EditionID     string `json:"editionId"`
	TotalPoints   int    `json:"totalPoints"`
	MatchesPlayed int    `json:"matchesPlayed"`
	Wins          int    `json:"wins"`
}

// Aggregates is the ledger part of a player, the only fields the match lifecycle writes.
type Aggregates struct {
	TotalPoints   int `json:"totalPoints"`
	MatchesPlayed int `json:"matchesPlayed"`
	Wins          int `json:"wins"`
}

func (p *Player) Aggregates() Aggregates {
	return Aggregates{TotalPoints: p.TotalPoints, MatchesPlayed: p.MatchesPlayed, Wins: p.Wins}
}

func (p *Player) SetAggregates(a Aggregates) {
	p.TotalPoints = a.TotalPoints
	p.MatchesPlayed = a.MatchesPlayed
	p.Wins = a.Wins
}
