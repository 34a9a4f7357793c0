package store

import (
	"context"
	"fmt"

	"github.com/bsparty/bullshit-services/internal/roundsvc/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type VoteStore struct {
	db *pgxpool.Pool
}

func NewVoteStore(db *pgxpool.Pool) *VoteStore {
	return &VoteStore{db: db}
}

// CreateVote inserts a player's vote for a revealed answer. Same duplicate
// policy as answers: the unique index on (round_id, player_id) turns a
// repeat vote into ErrDuplicate and the first selection stands.
func (s *VoteStore) CreateVote(ctx context.Context, roundID, playerID int64, selection string) (*models.Vote, error) {
	query := `
		INSERT INTO votes (round_id, player_id, selection)
		VALUES ($1, $2, $3)
		RETURNING id, round_id, player_id, selection, created_at
	`

	v := &models.Vote{}
	err := s.db.QueryRow(ctx, query, roundID, playerID, selection).Scan(
		&v.ID,
		&v.RoundID,
		&v.PlayerID,
		&v.Selection,
		&v.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("invalid round or player reference: %w", err)
		}
		return nil, fmt.Errorf("failed to create vote: %w", err)
	}

	return v, nil
}

func (s *VoteStore) ListByRound(ctx context.Context, roundID int64) ([]*models.Vote, error) {
	query := `
		SELECT id, round_id, player_id, selection, created_at
		FROM votes
		WHERE round_id = $1
		ORDER BY id
	`

	rows, err := s.db.Query(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	var votes []*models.Vote
	for rows.Next() {
		var v models.Vote
		err := rows.Scan(
			&v.ID,
			&v.RoundID,
			&v.PlayerID,
			&v.Selection,
			&v.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		votes = append(votes, &v)
	}

	return votes, rows.Err()
}
