package models

import "time"

type SyncStatus string

const (
	SyncOnline  SyncStatus = "online"
	SyncSyncing SyncStatus = "syncing"
	SyncOffline SyncStatus = "offline"
)

// Standing is one row of a ranking table.
type Standing struct {
	Place         int    `json:"place"`
	PlayerID      ID     `json:"playerId"`
	Name          string `json:"name"`
	AvatarURL     string `json:"avatarUrl,omitempty"`
	TotalPoints   int    `json:"totalPoints"`
	MatchesPlayed int    `json:"matchesPlayed"`
	Wins          int    `json:"wins"`
}

type ResultView struct {
	PlayerID     ID     `json:"playerId"`
	PlayerName   string `json:"playerName"`
	Position     int    `json:"position"`
	PointsEarned int    `json:"pointsEarned"`
}

type MatchView struct {
	ID        ID           `json:"id"`
	GameID    ID           `json:"gameId"`
	GameName  string       `json:"gameName"`
	Timestamp time.Time    `json:"timestamp"`
	EditionID string       `json:"editionId"`
	Winners   []string     `json:"winners"`
	Results   []ResultView `json:"results"`
}

type Dashboard struct {
	EditionID       string      `json:"editionId"`
	Podium          []Standing  `json:"podium"`
	RecentMatches   []MatchView `json:"recentMatches"`
	PreviousEdition string      `json:"previousEdition"`
	PreviousChamp   *Standing   `json:"previousChampion,omitempty"`
	PlayersTotal    int         `json:"playersTotal"`
	MatchesTotal    int         `json:"matchesTotal"`
	SyncStatus      SyncStatus  `json:"syncStatus"`
	SyncedAt        time.Time   `json:"syncedAt"`
}
