package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/bsparty/bullshit-services/internal/roundsvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PlayerStore struct {
	db *pgxpool.Pool
}

func NewPlayerStore(db *pgxpool.Pool) *PlayerStore {
	return &PlayerStore{db: db}
}

func (s *PlayerStore) GetPlayerByID(ctx context.Context, playerID int64) (*models.Player, error) {
	query := `
		SELECT id, game_id, name, status, created_at, updated_at
		FROM players
		WHERE id = $1
	`

	p := &models.Player{}
	err := s.db.QueryRow(ctx, query, playerID).Scan(
		&p.ID,
		&p.GameID,
		&p.Name,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // player not found
		}
		return nil, fmt.Errorf("failed to get player by ID: %w", err)
	}

	return p, nil
}

func (s *PlayerStore) ListByGame(ctx context.Context, gameID int64) ([]*models.Player, error) {
	query := `
		SELECT id, game_id, name, status, created_at, updated_at
		FROM players
		WHERE game_id = $1 AND status = 'joined'
		ORDER BY id
	`

	rows, err := s.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		var p models.Player
		err := rows.Scan(
			&p.ID,
			&p.GameID,
			&p.Name,
			&p.Status,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		players = append(players, &p)
	}

	return players, rows.Err()
}
