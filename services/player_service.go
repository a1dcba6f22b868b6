package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/daniel-lerner/lerners-game-tournament/importer"
	"github.com/daniel-lerner/lerners-game-tournament/models"
	"github.com/daniel-lerner/lerners-game-tournament/repositories"
	"github.com/daniel-lerner/lerners-game-tournament/storage"
	"github.com/finnbear/moderation"
)

const MaxPlayerNameLength = 60

type PlayerService interface {
	Register(ctx context.Context, input RegisterPlayerInput) (*models.Player, error)
	Delete(ctx context.Context, id models.ID) error
	UploadAvatar(ctx context.Context, id models.ID, contentType string, reader io.Reader) (*models.Player, error)
	ClearEdition(ctx context.Context, edition string) (int64, error)
	ImportLegacy(ctx context.Context, reader io.Reader) (int, error)
	List(ctx context.Context, edition string) []models.Player
}

type RegisterPlayerInput struct {
	Name string `json:"name"`
}

type PlayerServiceConfig struct {
	Edition         string
	PreviousEdition string
	PointsColumn    int
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
	cache      *StateCache
	syncer     Resyncer
	cfg        PlayerServiceConfig
	logger     *slog.Logger
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	uploader storage.FileUploader,
	cache *StateCache,
	syncer Resyncer,
	cfg PlayerServiceConfig,
	logger *slog.Logger,
) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		uploader:   uploader,
		cache:      cache,
		syncer:     syncer,
		cfg:        cfg,
		logger:     logger,
	}
}

// ValidatePlayerName возвращает очищенное имя или ошибку валидации.
func ValidatePlayerName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrPlayerNameRequired
	}
	if utf8.RuneCountInString(name) > MaxPlayerNameLength {
		return "", ErrPlayerNameTooLong
	}
	if moderation.Scan(name).Is(moderation.Inappropriate & moderation.Moderate) {
		return "", ErrPlayerNameInappropriate
	}
	return name, nil
}

func (s *playerService) Register(ctx context.Context, input RegisterPlayerInput) (*models.Player, error) {
	name, err := ValidatePlayerName(input.Name)
	if err != nil {
		return nil, err
	}

	player := &models.Player{Name: name, EditionID: s.cfg.Edition}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to register player: %w", err)
	}
	s.logger.Info("player registered", "player_id", player.ID, "edition", player.EditionID)
	resyncAfterWrite(ctx, s.syncer, s.logger)
	return player, nil
}

// Delete удаляет игрока. Результаты старых матчей сохраняют его id.
func (s *playerService) Delete(ctx context.Context, id models.ID) error {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to get player %s: %w", id, err)
	}

	if err := s.playerRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to delete player %s: %w", id, err)
	}
	s.deleteAvatarObject(ctx, player.AvatarURL)
	resyncAfterWrite(ctx, s.syncer, s.logger)
	return nil
}

func (s *playerService) UploadAvatar(ctx context.Context, id models.ID, contentType string, reader io.Reader) (*models.Player, error) {
	if !storage.IsImage(contentType) {
		return nil, ErrUnsupportedAvatarType
	}
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}

	key, err := storage.AvatarKey(string(id), contentType)
	if err != nil {
		return nil, ErrUnsupportedAvatarType
	}
	uploaded, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	if err := s.playerRepo.UpdateAvatar(ctx, id, uploaded.Location); err != nil {
		// Новый объект уже загружен, убираем его.
		if delErr := s.uploader.Delete(ctx, uploaded.Key); delErr != nil {
			s.logger.Warn("failed to delete orphaned avatar", "key", uploaded.Key, "error", delErr)
		}
		return nil, fmt.Errorf("failed to save avatar url: %w", err)
	}

	s.deleteAvatarObject(ctx, player.AvatarURL)
	player.AvatarURL = uploaded.Location
	resyncAfterWrite(ctx, s.syncer, s.logger)
	return player, nil
}

func (s *playerService) deleteAvatarObject(ctx context.Context, location string) {
	key, ok := s.uploader.KeyFromURL(location)
	if !ok {
		return
	}
	if err := s.uploader.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete previous avatar", "key", key, "error", err)
	}
}

func (s *playerService) ClearEdition(ctx context.Context, edition string) (int64, error) {
	if strings.TrimSpace(edition) == "" {
		return 0, ErrInvalidEdition
	}
	n, err := s.playerRepo.DeleteByEdition(ctx, edition)
	if err != nil {
		return 0, fmt.Errorf("failed to clear edition %s: %w", edition, err)
	}
	s.logger.Info("edition players cleared", "edition", edition, "deleted", n)
	resyncAfterWrite(ctx, s.syncer, s.logger)
	return n, nil
}

// ImportLegacy загружает таблицу прошлого издания одним пакетом.
func (s *playerService) ImportLegacy(ctx context.Context, reader io.Reader) (int, error) {
	players, err := importer.ParseLegacyCSV(reader, importer.LegacyOptions{
		Edition:      s.cfg.PreviousEdition,
		PointsColumn: s.cfg.PointsColumn,
	})
	if err != nil {
		if errors.Is(err, importer.ErrEmptyImport) {
			return 0, ErrEmptyImport
		}
		return 0, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	if err := s.playerRepo.CreateBatch(ctx, players); err != nil {
		return 0, fmt.Errorf("failed to import players: %w", err)
	}
	s.logger.Info("legacy players imported", "edition", s.cfg.PreviousEdition, "count", len(players))
	resyncAfterWrite(ctx, s.syncer, s.logger)
	return len(players), nil
}

// List возвращает игроков издания из кэша, по имени.
func (s *playerService) List(ctx context.Context, edition string) []models.Player {
	players := s.cache.PlayersOf(edition)
	sort.Slice(players, func(i, j int) bool {
		if players[i].Name != players[j].Name {
			return players[i].Name < players[j].Name
		}
		return players[i].ID < players[j].ID
	})
	return players
}
