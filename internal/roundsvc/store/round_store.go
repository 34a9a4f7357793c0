package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsparty/bullshit-services/internal/roundsvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const roundColumns = `id, game_id, number, category, moderator_id, prompt_id, phase,
	active, reveal_seed, reveal_index, scored, results_until, phase_since,
	created_at, updated_at`

type RoundStore struct {
	db *pgxpool.Pool
}

func NewRoundStore(db *pgxpool.Pool) *RoundStore {
	return &RoundStore{db: db}
}

func scanRound(row pgx.Row) (*models.Round, error) {
	r := &models.Round{}
	err := row.Scan(
		&r.ID,
		&r.GameID,
		&r.Number,
		&r.Category,
		&r.ModeratorID,
		&r.PromptID,
		&r.Phase,
		&r.Active,
		&r.RevealSeed,
		&r.RevealIndex,
		&r.Scored,
		&r.ResultsUntil,
		&r.PhaseSince,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // round not found
		}
		return nil, err
	}
	return r, nil
}

func (s *RoundStore) GetRoundByID(ctx context.Context, roundID int64) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE id = $1`
	r, err := scanRound(s.db.QueryRow(ctx, query, roundID))
	if err != nil {
		return nil, fmt.Errorf("failed to get round by ID: %w", err)
	}
	return r, nil
}

// GetActiveRound returns the game's single active round, nil if the game
// has none (not started, or already over).
func (s *RoundStore) GetActiveRound(ctx context.Context, gameID int64) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE game_id = $1 AND active LIMIT 1`
	r, err := scanRound(s.db.QueryRow(ctx, query, gameID))
	if err != nil {
		return nil, fmt.Errorf("failed to get active round: %w", err)
	}
	return r, nil
}

func (s *RoundStore) GetRoundByNumber(ctx context.Context, gameID int64, number int) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE game_id = $1 AND number = $2`
	r, err := scanRound(s.db.QueryRow(ctx, query, gameID, number))
	if err != nil {
		return nil, fmt.Errorf("failed to get round %d: %w", number, err)
	}
	return r, nil
}

// AdvancePhase moves a round from one phase to its successor. The WHERE
// clause makes the write conditional: if another writer got there first the
// update matches zero rows and we report false, never a phase regression.
func (s *RoundStore) AdvancePhase(ctx context.Context, roundID int64, from, to models.Phase) (bool, error) {
	if !from.CanAdvanceTo(to) {
		return false, fmt.Errorf("illegal phase transition %s -> %s", from, to)
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE rounds
		SET phase = $3, phase_since = now(), updated_at = now()
		WHERE id = $1 AND phase = $2 AND active
	`, roundID, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to advance round %d to %s: %w", roundID, to, err)
	}
	return tag.RowsAffected() > 0, nil
}

// EnsureRevealSeed fixes the reveal permutation seed for a round. The first
// caller's seed wins; later callers (moderator reconnects, duplicate taps)
// get the stored one back, so every rebuild of the sequence shuffles
// identically.
func (s *RoundStore) EnsureRevealSeed(ctx context.Context, roundID int64, seed int64) (int64, error) {
	var stored int64
	err := s.db.QueryRow(ctx, `
		UPDATE rounds
		SET reveal_seed = COALESCE(reveal_seed, $2), updated_at = now()
		WHERE id = $1
		RETURNING reveal_seed
	`, roundID, seed).Scan(&stored)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("round %d not found", roundID)
		}
		return 0, fmt.Errorf("failed to set reveal seed for round %d: %w", roundID, err)
	}
	return stored, nil
}

func (s *RoundStore) SetRevealIndex(ctx context.Context, roundID int64, index int) error {
	_, err := s.db.Exec(ctx, `
		UPDATE rounds SET reveal_index = $2, updated_at = now() WHERE id = $1
	`, roundID, index)
	if err != nil {
		return fmt.Errorf("failed to set reveal index for round %d: %w", roundID, err)
	}
	return nil
}

// MarkScored flips the round's scored flag, returning false if it was set
// already. The scoring engine runs only when this returns true, which keeps
// a duplicate reveal-results trigger from double-awarding points.
func (s *RoundStore) MarkScored(ctx context.Context, roundID int64) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE rounds SET scored = true, updated_at = now()
		WHERE id = $1 AND NOT scored
	`, roundID)
	if err != nil {
		return false, fmt.Errorf("failed to mark round %d scored: %w", roundID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *RoundStore) SetResultsDeadline(ctx context.Context, roundID int64, until time.Time) error {
	_, err := s.db.Exec(ctx, `
		UPDATE rounds SET results_until = $2, updated_at = now() WHERE id = $1
	`, roundID, until)
	if err != nil {
		return fmt.Errorf("failed to set results deadline for round %d: %w", roundID, err)
	}
	return nil
}
