package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/daniel-lerner/lerners-game-tournament/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	// Create сохраняет матч вместе со всеми результатами одной строкой.
	Create(ctx context.Context, match *models.Match) error
	// ListByEdition возвращает матчи издания, новые первыми.
	ListByEdition(ctx context.Context, edition string) ([]models.Match, error)
	Delete(ctx context.Context, id models.ID) error
	DeleteByEdition(ctx context.Context, edition string) (int64, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) Create(ctx context.Context, m *models.Match) error {
	results, err := json.Marshal(m.Results)
	if err != nil {
		return fmt.Errorf("failed to encode match results: %w", err)
	}

	query := `
		INSERT INTO matches (game_id, timestamp, edition_id, results)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text`

	err = r.db.QueryRowContext(ctx, query, string(m.GameID), m.Timestamp, m.EditionID, string(results)).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) ListByEdition(ctx context.Context, edition string) ([]models.Match, error) {
	query := `
		SELECT id::text, game_id::text, timestamp, edition_id::text, results
		FROM matches
		WHERE edition_id::text = $1
		ORDER BY timestamp DESC`

	rows, err := r.db.QueryContext(ctx, query, edition)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var (
			m       models.Match
			results []byte
		)
		if err := rows.Scan(&m.ID, &m.GameID, &m.Timestamp, &m.EditionID, &results); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		// В старых строках playerId бывает числом; models.ID нормализует.
		if err := json.Unmarshal(results, &m.Results); err != nil {
			return nil, fmt.Errorf("failed to decode results of match %s: %w", m.ID, err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id models.ID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id::text = $1`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete match %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByEdition(ctx context.Context, edition string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE edition_id::text = $1`, edition)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches of edition %s: %w", edition, err)
	}
	return result.RowsAffected()
}
