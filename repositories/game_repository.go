package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/daniel-lerner/lerners-game-tournament/models"
)

var ErrGameConflict = errors.New("game id conflict")

type GameRepository interface {
	List(ctx context.Context) ([]models.Game, error)
	// UpsertAll заменяет каждую игру целиком по id.
	UpsertAll(ctx context.Context, games []models.Game) error
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) List(ctx context.Context) ([]models.Game, error) {
	query := `SELECT id::text, name, scoring, is_plus_rule FROM games ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	games := make([]models.Game, 0)
	for rows.Next() {
		var (
			g       models.Game
			scoring []byte
		)
		if err := rows.Scan(&g.ID, &g.Name, &scoring, &g.IsPlusRule); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		if err := json.Unmarshal(scoring, &g.Scoring); err != nil {
			return nil, fmt.Errorf("failed to decode scoring of game %s: %w", g.ID, err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (r *postgresGameRepository) UpsertAll(ctx context.Context, games []models.Game) error {
	if len(games) == 0 {
		return nil
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO games (id, name, scoring, is_plus_rule) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name, scoring = EXCLUDED.scoring, is_plus_rule = EXCLUDED.is_plus_rule`)
		if err != nil {
			return fmt.Errorf("UpsertAll failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, g := range games {
			scoring, err := json.Marshal(g.Scoring)
			if err != nil {
				return fmt.Errorf("failed to encode scoring of game %s: %w", g.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, string(g.ID), g.Name, string(scoring), g.IsPlusRule); err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: %s", ErrGameConflict, g.ID)
				}
				return fmt.Errorf("UpsertAll failed for game %s: %w", g.ID, err)
			}
		}
		return nil
	})
}
