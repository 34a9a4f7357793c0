package store

import (
	"context"
	"fmt"

	"github.com/bsparty/bullshit-services/internal/roundsvc/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AnswerStore struct {
	db *pgxpool.Pool
}

func NewAnswerStore(db *pgxpool.Pool) *AnswerStore {
	return &AnswerStore{db: db}
}

// CreateAnswer inserts a player's fabricated answer. The unique index on
// (round_id, player_id) makes a second submission land on ErrDuplicate; the
// first stored content always wins.
func (s *AnswerStore) CreateAnswer(ctx context.Context, roundID, playerID int64, content string) (*models.Answer, error) {
	query := `
		INSERT INTO answers (round_id, player_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, round_id, player_id, content, created_at
	`

	a := &models.Answer{}
	err := s.db.QueryRow(ctx, query, roundID, playerID, content).Scan(
		&a.ID,
		&a.RoundID,
		&a.PlayerID,
		&a.Content,
		&a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("invalid round or player reference: %w", err)
		}
		return nil, fmt.Errorf("failed to create answer: %w", err)
	}

	return a, nil
}

func (s *AnswerStore) ListByRound(ctx context.Context, roundID int64) ([]*models.Answer, error) {
	query := `
		SELECT id, round_id, player_id, content, created_at
		FROM answers
		WHERE round_id = $1
		ORDER BY id
	`

	rows, err := s.db.Query(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer rows.Close()

	var answers []*models.Answer
	for rows.Next() {
		var a models.Answer
		err := rows.Scan(
			&a.ID,
			&a.RoundID,
			&a.PlayerID,
			&a.Content,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		answers = append(answers, &a)
	}

	return answers, rows.Err()
}
