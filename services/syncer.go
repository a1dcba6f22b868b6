package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/daniel-lerner/lerners-game-tournament/models"
	"github.com/daniel-lerner/lerners-game-tournament/realtime"
	"github.com/daniel-lerner/lerners-game-tournament/repositories"
	"github.com/daniel-lerner/lerners-game-tournament/scoring"
	"golang.org/x/sync/errgroup"
)

// ChangeNotifier рассылает браузерам сигнал "перечитайте данные".
type ChangeNotifier interface {
	Broadcast(msgType, edition string, payload interface{})
}

// Resyncer перезагружает кэш целиком.
type Resyncer interface {
	Resync(ctx context.Context) error
}

type Syncer struct {
	gameRepo   repositories.GameRepository
	playerRepo repositories.PlayerRepository
	matchRepo  repositories.MatchRepository
	cache      *StateCache
	edition    string
	notifier   ChangeNotifier
	logger     *slog.Logger
	now        func() time.Time
}

func NewSyncer(
	gameRepo repositories.GameRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	cache *StateCache,
	edition string,
	notifier ChangeNotifier,
	logger *slog.Logger,
) *Syncer {
	return &Syncer{
		gameRepo:   gameRepo,
		playerRepo: playerRepo,
		matchRepo:  matchRepo,
		cache:      cache,
		edition:    edition,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// Resync загружает игры, игроков и матчи параллельно и атомарно подменяет снимок.
// Повторные и пересекающиеся вызовы безопасны: каждый ставит эквивалентный снимок.
func (s *Syncer) Resync(ctx context.Context) error {
	s.cache.SetStatus(models.SyncSyncing)

	var (
		games   []models.Game
		players []models.Player
		matches []models.Match
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		games, err = s.gameRepo.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		players, err = s.playerRepo.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByEdition(gctx, s.edition)
		return err
	})
	if err := g.Wait(); err != nil {
		s.cache.SetStatus(models.SyncOffline)
		s.logger.Error("resync failed, keeping previous state", "error", err)
		return fmt.Errorf("resync: %w", err)
	}

	defaultCatalog := false
	if len(games) == 0 {
		games = scoring.DefaultCatalog()
		defaultCatalog = true
	}

	s.cache.Replace(Snapshot{
		Games:          games,
		Players:        players,
		Matches:        matches,
		SyncedAt:       s.now(),
		Status:         models.SyncOnline,
		DefaultCatalog: defaultCatalog,
	})
	s.logger.Debug("state resynced", "games", len(games), "players", len(players), "matches", len(matches))

	if s.notifier != nil {
		s.notifier.Broadcast(realtime.MessageStateChanged, s.edition, nil)
	}
	return nil
}

// Run перечитывает состояние на каждый сигнал об изменении и по таймеру.
// Сигналы не несут данных; их порядок и количество не важны.
func (s *Syncer) Run(ctx context.Context, signals <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	s.logger.Info("state syncer started", slog.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("state syncer stopped")
			return
		case _, ok := <-signals:
			if !ok {
				signals = nil
				continue
			}
			s.Resync(ctx)
		case <-ticker.C:
			s.Resync(ctx)
		}
	}
}
