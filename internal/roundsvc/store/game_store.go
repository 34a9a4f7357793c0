package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/bsparty/bullshit-services/internal/roundsvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GameStore struct {
	db *pgxpool.Pool
}

func NewGameStore(db *pgxpool.Pool) *GameStore {
	return &GameStore{db: db}
}

func (s *GameStore) GetGameByID(ctx context.Context, gameID int64) (*models.Game, error) {
	query := `
		SELECT id, code, status, created_at, updated_at
		FROM games
		WHERE id = $1
	`

	g := &models.Game{}
	err := s.db.QueryRow(ctx, query, gameID).Scan(
		&g.ID,
		&g.Code,
		&g.Status,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // game not found
		}
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}

	return g, nil
}
