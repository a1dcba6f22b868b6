package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/daniel-lerner/lerners-game-tournament/ledger"
	"github.com/daniel-lerner/lerners-game-tournament/models"
	"github.com/daniel-lerner/lerners-game-tournament/ranking"
	"github.com/daniel-lerner/lerners-game-tournament/repositories"
	"github.com/daniel-lerner/lerners-game-tournament/saga"
	"github.com/daniel-lerner/lerners-game-tournament/scoring"
)

const unknownPlayerName = "unknown player"

type MatchService interface {
	CommitMatch(ctx context.Context, input CommitMatchInput) (*MatchOutcome, error)
	PreviewMatch(ctx context.Context, input CommitMatchInput) (*MatchPreview, error)
	RetractMatch(ctx context.Context, matchID models.ID) (*MatchOutcome, error)
	ResetEdition(ctx context.Context, edition string) (*ResetOutcome, error)
	ListMatches(ctx context.Context) []models.Match
	MatchHistory(ctx context.Context) []models.MatchView
}

type CommitMatchInput struct {
	GameID  models.ID       `json:"gameId"`
	Entries []scoring.Entry `json:"entries"`
}

// MatchOutcome описывает, какие шаги записи реально выполнились.
type MatchOutcome struct {
	Match   models.Match `json:"match"`
	Report  *saga.Report `json:"report"`
	Skipped []models.ID  `json:"skipped,omitempty"`
}

type MatchPreview struct {
	Results   []models.MatchResult `json:"results"`
	Standings []models.Standing    `json:"standings"`
}

type ResetOutcome struct {
	Edition        string `json:"edition"`
	MatchesDeleted int64  `json:"matchesDeleted"`
}

type MatchServiceConfig struct {
	Edition    string
	Compensate bool
}

type matchService struct {
	matchRepo  repositories.MatchRepository
	playerRepo repositories.PlayerRepository
	cache      *StateCache
	syncer     Resyncer
	cfg        MatchServiceConfig
	logger     *slog.Logger
	now        func() time.Time
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	cache *StateCache,
	syncer Resyncer,
	cfg MatchServiceConfig,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		cache:      cache,
		syncer:     syncer,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// prepare проверяет ввод по правилам игры и считает очки. Ничего не пишет.
func (s *matchService) prepare(input CommitMatchInput) (models.Game, []models.MatchResult, error) {
	game, ok := s.cache.Game(input.GameID)
	if !ok {
		return models.Game{}, nil, ErrGameNotFound
	}

	roster := make(map[models.ID]bool)
	for _, p := range s.cache.PlayersOf(s.cfg.Edition) {
		roster[p.ID] = true
	}
	known := func(id models.ID) bool { return roster[id] }

	if err := scoring.ValidateEntry(game, input.Entries, known); err != nil {
		return models.Game{}, nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return game, scoring.ResolveAll(game, input.Entries), nil
}

func (s *matchService) PreviewMatch(ctx context.Context, input CommitMatchInput) (*MatchPreview, error) {
	_, results, err := s.prepare(input)
	if err != nil {
		return nil, err
	}

	players := s.cache.PlayersOf(s.cfg.Edition)
	ptrs := make([]*models.Player, len(players))
	for i := range players {
		ptrs[i] = &players[i]
	}
	ledger.New(s.cfg.Edition, ptrs).ApplyMatch(models.Match{EditionID: s.cfg.Edition, Results: results})

	return &MatchPreview{Results: results, Standings: ranking.Rank(players, s.cfg.Edition)}, nil
}

func (s *matchService) CommitMatch(ctx context.Context, input CommitMatchInput) (*MatchOutcome, error) {
	game, results, err := s.prepare(input)
	if err != nil {
		return nil, err
	}

	match := models.Match{
		GameID:    game.ID,
		Timestamp: s.now().UTC(),
		EditionID: s.cfg.Edition,
		Results:   results,
	}

	steps := []saga.Step{{
		Name:   "insert match",
		Policy: saga.Critical,
		Do:     func(ctx context.Context) error { return s.matchRepo.Create(ctx, &match) },
		Compensate: func(ctx context.Context) error {
			return s.matchRepo.Delete(ctx, match.ID)
		},
	}}
	playerSteps, skipped := s.standingsSteps(match, ledger.Apply, ledger.Reverse, "apply")
	steps = append(steps, playerSteps...)

	report, err := saga.Run(ctx, steps, saga.Options{Compensate: s.cfg.Compensate, Logger: s.logger})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMatchCreationFailed, err)
	}
	s.logger.Info("match committed", "match_id", match.ID, "game_id", game.ID, "participants", len(results))

	outcome := &MatchOutcome{Match: match, Report: report, Skipped: skipped}
	resyncAfterWrite(ctx, s.syncer, s.logger)

	if report.Partial() {
		return outcome, fmt.Errorf("%w: %w", ErrPartialApply, report.Err())
	}
	return outcome, nil
}

func (s *matchService) RetractMatch(ctx context.Context, matchID models.ID) (*MatchOutcome, error) {
	// Матч ищется в кэше: если кэш устарел, удаление может не найти свежий матч.
	match, ok := s.cache.Match(matchID)
	if !ok {
		return nil, ErrMatchNotFound
	}

	steps, skipped := s.standingsSteps(match, ledger.Reverse, ledger.Apply, "reverse")
	steps = append(steps, saga.Step{
		Name:   "delete match",
		Policy: saga.Critical,
		Do: func(ctx context.Context) error {
			err := s.matchRepo.Delete(ctx, match.ID)
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		},
	})

	report, err := saga.Run(ctx, steps, saga.Options{Compensate: s.cfg.Compensate, Logger: s.logger})
	outcome := &MatchOutcome{Match: match, Report: report, Skipped: skipped}
	resyncAfterWrite(ctx, s.syncer, s.logger)

	if err != nil {
		// Агрегаты уже уменьшены, а матч остался: отчёт показывает, что именно применено.
		s.logger.Error("match retraction left standings inconsistent",
			"match_id", match.ID, "applied", report.Applied, "compensated", report.Compensated)
		return outcome, fmt.Errorf("%w: %w", ErrMatchDeleteFailed, err)
	}
	s.logger.Info("match retracted", "match_id", match.ID)

	if report.Partial() {
		return outcome, fmt.Errorf("%w: %w", ErrPartialApply, report.Err())
	}
	return outcome, nil
}

// standingsSteps строит по шагу на каждого участника. Шаг меняет копию игрока
// из кэша и записывает агрегаты вслепую. Игроки, которых нет в кэше, пропускаются.
func (s *matchService) standingsSteps(match models.Match, do, undo func(*models.Player, models.MatchResult), verb string) ([]saga.Step, []models.ID) {
	players := s.cache.PlayersOf(match.EditionID)
	ptrs := make([]*models.Player, len(players))
	for i := range players {
		ptrs[i] = &players[i]
	}
	book := ledger.New(match.EditionID, ptrs)

	steps := make([]saga.Step, 0, len(match.Results))
	var skipped []models.ID
	for _, result := range match.Results {
		result := result
		player, ok := book.Player(result.PlayerID)
		if !ok {
			s.logger.Warn("player missing from cache, standings not updated", "player_id", result.PlayerID, "match_id", match.ID)
			skipped = append(skipped, result.PlayerID)
			continue
		}
		steps = append(steps, saga.Step{
			Name:   verb + " " + string(result.PlayerID),
			Policy: saga.BestEffort,
			Do: func(ctx context.Context) error {
				do(player, result)
				return s.playerRepo.UpdateAggregates(ctx, player.ID, player.Aggregates())
			},
			Compensate: func(ctx context.Context) error {
				undo(player, result)
				return s.playerRepo.UpdateAggregates(ctx, player.ID, player.Aggregates())
			},
		})
	}
	return steps, skipped
}

// ResetEdition удаляет матчи издания и обнуляет агрегаты его игроков.
// Обе операции выполняются всегда, ошибки объединяются.
func (s *matchService) ResetEdition(ctx context.Context, edition string) (*ResetOutcome, error) {
	if edition == "" {
		return nil, ErrInvalidEdition
	}

	outcome := &ResetOutcome{Edition: edition}
	deleted, matchErr := s.matchRepo.DeleteByEdition(ctx, edition)
	outcome.MatchesDeleted = deleted
	playerErr := s.playerRepo.ResetAggregates(ctx, edition)
	resyncAfterWrite(ctx, s.syncer, s.logger)

	if err := errors.Join(matchErr, playerErr); err != nil {
		s.logger.Error("edition reset incomplete", "edition", edition, "error", err)
		return outcome, fmt.Errorf("%w: %w", ErrResetIncomplete, err)
	}
	s.logger.Info("edition reset", "edition", edition, "matches_deleted", deleted)
	return outcome, nil
}

func (s *matchService) ListMatches(ctx context.Context) []models.Match {
	return s.cache.Snapshot().Matches
}

func (s *matchService) MatchHistory(ctx context.Context) []models.MatchView {
	snap := s.cache.Snapshot()
	return buildHistory(snap, snap.Matches)
}

// buildHistory подставляет названия игр и имена игроков; результаты по месту.
func buildHistory(snap Snapshot, matches []models.Match) []models.MatchView {
	games := make(map[models.ID]string, len(snap.Games))
	for _, g := range snap.Games {
		games[g.ID] = g.Name
	}
	names := make(map[models.ID]string, len(snap.Players))
	for _, p := range snap.Players {
		names[p.ID] = p.Name
	}
	nameOf := func(id models.ID) string {
		if n, ok := names[id]; ok {
			return n
		}
		return unknownPlayerName
	}

	views := make([]models.MatchView, 0, len(matches))
	for _, m := range matches {
		view := models.MatchView{
			ID:        m.ID,
			GameID:    m.GameID,
			GameName:  games[m.GameID],
			Timestamp: m.Timestamp,
			EditionID: m.EditionID,
			Winners:   []string{},
			Results:   make([]models.ResultView, 0, len(m.Results)),
		}
		if view.GameName == "" {
			view.GameName = string(m.GameID)
		}
		for _, r := range m.Results {
			view.Results = append(view.Results, models.ResultView{
				PlayerID:     r.PlayerID,
				PlayerName:   nameOf(r.PlayerID),
				Position:     r.Position,
				PointsEarned: r.PointsEarned,
			})
		}
		sort.SliceStable(view.Results, func(i, j int) bool { return view.Results[i].Position < view.Results[j].Position })
		for _, id := range m.Winners() {
			view.Winners = append(view.Winners, nameOf(id))
		}
		views = append(views, view)
	}
	return views
}
