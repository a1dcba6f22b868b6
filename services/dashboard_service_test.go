package services

import (
	"testing"

	"github.com/daniel-lerner/lerners-game-tournament/models"
)

func TestDashboard(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ids := env.addPlayers(t, testEdition, "Ana", "Bruno", "Caio", "Duda")

	// seven two-player matches, Ana wins all but the last
	for i := 0; i < 7; i++ {
		pair := []models.ID{ids[0], ids[1+i%3]}
		positions := []int{1, 2}
		if i == 6 {
			positions = []int{2, 1}
		}
		if _, err := env.matches.CommitMatch(env.ctx, CommitMatchInput{GameID: "fm", Entries: entries(pair, positions...)}); err != nil {
			t.Fatalf("commit %d failed: %v", i, err)
		}
	}

	d := NewDashboardService(env.cache, testEdition, testPrevEdition).GetDashboard(env.ctx)
	if len(d.Podium) != 3 || d.Podium[0].Name != "Ana" || d.Podium[0].TotalPoints != 18 {
		t.Fatalf("unexpected podium %+v", d.Podium)
	}
	if len(d.RecentMatches) != 5 || d.MatchesTotal != 7 || d.PlayersTotal != 4 {
		t.Fatalf("unexpected totals: recent=%d matches=%d players=%d", len(d.RecentMatches), d.MatchesTotal, d.PlayersTotal)
	}
	if d.RecentMatches[0].Winners[0] != "Bruno" {
		t.Fatalf("recent matches must be newest first, got %+v", d.RecentMatches[0])
	}
	if d.PreviousChamp != nil {
		t.Fatalf("no previous edition players, got %+v", d.PreviousChamp)
	}
	if d.SyncStatus != models.SyncOnline {
		t.Fatalf("unexpected sync status %s", d.SyncStatus)
	}
}
