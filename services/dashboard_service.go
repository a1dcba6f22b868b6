package services

import (
	"context"

	"github.com/daniel-lerner/lerners-game-tournament/models"
	"github.com/daniel-lerner/lerners-game-tournament/ranking"
)

const (
	podiumSize    = 3
	recentMatches = 5
)

type DashboardService interface {
	GetDashboard(ctx context.Context) models.Dashboard
	Rankings(ctx context.Context, edition string) []models.Standing
}

type dashboardService struct {
	cache           *StateCache
	edition         string
	previousEdition string
}

func NewDashboardService(cache *StateCache, edition, previousEdition string) DashboardService {
	return &dashboardService{cache: cache, edition: edition, previousEdition: previousEdition}
}

func (s *dashboardService) GetDashboard(ctx context.Context) models.Dashboard {
	snap := s.cache.Snapshot()
	standings := ranking.Rank(snap.Players, s.edition)

	recent := snap.Matches
	if len(recent) > recentMatches {
		recent = recent[:recentMatches]
	}

	return models.Dashboard{
		EditionID:       s.edition,
		Podium:          ranking.Top(standings, podiumSize),
		RecentMatches:   buildHistory(snap, recent),
		PreviousEdition: s.previousEdition,
		PreviousChamp:   ranking.Leader(snap.Players, s.previousEdition),
		PlayersTotal:    len(standings),
		MatchesTotal:    len(snap.Matches),
		SyncStatus:      snap.Status,
		SyncedAt:        snap.SyncedAt,
	}
}

func (s *dashboardService) Rankings(ctx context.Context, edition string) []models.Standing {
	if edition == "" {
		edition = s.edition
	}
	return ranking.Rank(s.cache.Snapshot().Players, edition)
}
