package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/daniel-lerner/lerners-game-tournament/models"
)

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerNameConflict = errors.New("player name conflict")
)

type PlayerRepository interface {
	// List возвращает игроков всех изданий.
	List(ctx context.Context) ([]models.Player, error)
	GetByID(ctx context.Context, id models.ID) (*models.Player, error)
	Create(ctx context.Context, player *models.Player) error
	CreateBatch(ctx context.Context, players []models.Player) error
	UpdateAggregates(ctx context.Context, id models.ID, agg models.Aggregates) error
	ResetAggregates(ctx context.Context, edition string) error
	UpdateAvatar(ctx context.Context, id models.ID, avatarURL string) error
	Delete(ctx context.Context, id models.ID) error
	DeleteByEdition(ctx context.Context, edition string) (int64, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `id::text, name, COALESCE(avatar_url, ''), edition_id::text, total_points, matches_played, wins`

func scanPlayer(row interface{ Scan(...interface{}) error }) (models.Player, error) {
	var p models.Player
	err := row.Scan(&p.ID, &p.Name, &p.AvatarURL, &p.EditionID, &p.TotalPoints, &p.MatchesPlayed, &p.Wins)
	return p, err
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY total_points DESC, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id models.ID) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id::text = $1`

	p, err := scanPlayer(r.db.QueryRowContext(ctx, query, string(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}
	return &p, nil
}

func (r *postgresPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (name, avatar_url, edition_id, total_points, matches_played, wins)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)
		RETURNING id::text`

	err := r.db.QueryRowContext(ctx, query,
		p.Name, p.AvatarURL, p.EditionID, p.TotalPoints, p.MatchesPlayed, p.Wins,
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPlayerNameConflict
		}
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) CreateBatch(ctx context.Context, players []models.Player) error {
	if len(players) == 0 {
		return nil
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO players (name, edition_id, total_points, matches_played, wins)
			VALUES ($1, $2, $3, $4, $5)`)
		if err != nil {
			return fmt.Errorf("CreateBatch failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, p := range players {
			if _, err := stmt.ExecContext(ctx, p.Name, p.EditionID, p.TotalPoints, p.MatchesPlayed, p.Wins); err != nil {
				return fmt.Errorf("CreateBatch failed for player %q: %w", p.Name, err)
			}
		}
		return nil
	})
}

// UpdateAggregates записывает значения вслепую (last write wins).
func (r *postgresPlayerRepository) UpdateAggregates(ctx context.Context, id models.ID, agg models.Aggregates) error {
	query := `UPDATE players SET total_points = $1, matches_played = $2, wins = $3 WHERE id::text = $4`

	result, err := r.db.ExecContext(ctx, query, agg.TotalPoints, agg.MatchesPlayed, agg.Wins, string(id))
	if err != nil {
		return fmt.Errorf("failed to update player %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) ResetAggregates(ctx context.Context, edition string) error {
	query := `UPDATE players SET total_points = 0, matches_played = 0, wins = 0 WHERE edition_id::text = $1`

	if _, err := r.db.ExecContext(ctx, query, edition); err != nil {
		return fmt.Errorf("failed to reset players of edition %s: %w", edition, err)
	}
	return nil
}

func (r *postgresPlayerRepository) UpdateAvatar(ctx context.Context, id models.ID, avatarURL string) error {
	query := `UPDATE players SET avatar_url = NULLIF($1, '') WHERE id::text = $2`

	result, err := r.db.ExecContext(ctx, query, avatarURL, string(id))
	if err != nil {
		return fmt.Errorf("failed to update avatar of player %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id models.ID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id::text = $1`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete player %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) DeleteByEdition(ctx context.Context, edition string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE edition_id::text = $1`, edition)
	if err != nil {
		return 0, fmt.Errorf("failed to delete players of edition %s: %w", edition, err)
	}
	return result.RowsAffected()
}
