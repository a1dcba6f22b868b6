package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/daniel-lerner/lerners-game-tournament/models"
	"github.com/daniel-lerner/lerners-game-tournament/repositories"
	"github.com/daniel-lerner/lerners-game-tournament/scoring"
)

type GameService interface {
	List(ctx context.Context) []models.Game
	// ReplaceCatalog перезаписывает игры по id; пустой список загружает каталог по умолчанию.
	ReplaceCatalog(ctx context.Context, games []models.Game) (int, error)
}

type gameService struct {
	gameRepo repositories.GameRepository
	cache    *StateCache
	syncer   Resyncer
	logger   *slog.Logger
}

func NewGameService(gameRepo repositories.GameRepository, cache *StateCache, syncer Resyncer, logger *slog.Logger) GameService {
	return &gameService{gameRepo: gameRepo, cache: cache, syncer: syncer, logger: logger}
}

func (s *gameService) List(ctx context.Context) []models.Game {
	games := s.cache.Snapshot().Games
	sort.Slice(games, func(i, j int) bool { return games[i].Name < games[j].Name })
	return games
}

func (s *gameService) ReplaceCatalog(ctx context.Context, games []models.Game) (int, error) {
	if len(games) == 0 {
		games = scoring.DefaultCatalog()
	}
	seen := make(map[models.ID]bool, len(games))
	for i := range games {
		if err := validateGame(&games[i]); err != nil {
			return 0, err
		}
		if seen[games[i].ID] {
			return 0, fmt.Errorf("%w: duplicate id %s", ErrInvalidGame, games[i].ID)
		}
		seen[games[i].ID] = true
	}

	if err := s.gameRepo.UpsertAll(ctx, games); err != nil {
		return 0, fmt.Errorf("failed to save game catalog: %w", err)
	}
	s.logger.Info("game catalog replaced", "games", len(games))
	resyncAfterWrite(ctx, s.syncer, s.logger)
	return len(games), nil
}

func validateGame(g *models.Game) error {
	g.ID = models.ID(strings.TrimSpace(string(g.ID)))
	g.Name = strings.TrimSpace(g.Name)
	if g.ID.IsZero() {
		return fmt.Errorf("%w: id is required", ErrInvalidGame)
	}
	if g.Name == "" {
		return fmt.Errorf("%w: name is required for %s", ErrInvalidGame, g.ID)
	}
	if len(g.Scoring) == 0 {
		return fmt.Errorf("%w: %s has no scoring table", ErrInvalidGame, g.ID)
	}
	for count, row := range g.Scoring {
		if count < 1 {
			return fmt.Errorf("%w: %s has participant count %d", ErrInvalidGame, g.ID, count)
		}
		for pos, pts := range row {
			if pos < 1 || pts < 0 {
				return fmt.Errorf("%w: %s has invalid entry %d:%d=%d", ErrInvalidGame, g.ID, count, pos, pts)
			}
		}
	}
	return nil
}
