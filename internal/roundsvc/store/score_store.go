package store

import (
	"context"
	"fmt"

	"github.com/bsparty/bullshit-services/internal/roundsvc/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ScoreStore struct {
	db *pgxpool.Pool
}

func NewScoreStore(db *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{db: db}
}

// InsertScores writes a round's awards in one transaction, so the results
// screen never observes a half-written score set.
func (s *ScoreStore) InsertScores(ctx context.Context, scores []*models.Score) error {
	if len(scores) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, sc := range scores {
		_, err := tx.Exec(ctx, `
			INSERT INTO scores (game_id, round_id, player_id, points, reason)
			VALUES ($1, $2, $3, $4, $5)
		`, sc.GameID, sc.RoundID, sc.PlayerID, sc.Points, sc.Reason)
		if err != nil {
			return fmt.Errorf("insert score for player %d: %w", sc.PlayerID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *ScoreStore) ListByRound(ctx context.Context, roundID int64) ([]*models.Score, error) {
	query := `
		SELECT id, game_id, round_id, player_id, points, reason, created_at
		FROM scores
		WHERE round_id = $1
		ORDER BY id
	`

	rows, err := s.db.Query(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	var scores []*models.Score
	for rows.Next() {
		var sc models.Score
		err := rows.Scan(
			&sc.ID,
			&sc.GameID,
			&sc.RoundID,
			&sc.PlayerID,
			&sc.Points,
			&sc.Reason,
			&sc.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		scores = append(scores, &sc)
	}

	return scores, rows.Err()
}

// TotalsByGame sums every player's score rows across all rounds of the
// game. Players with no awards still show up with zero points.
func (s *ScoreStore) TotalsByGame(ctx context.Context, gameID int64) ([]*models.PlayerTotal, error) {
	query := `
		SELECT p.id, p.name, COALESCE(SUM(s.points), 0) AS total
		FROM players p
		LEFT JOIN scores s ON s.player_id = p.id AND s.game_id = p.game_id
		WHERE p.game_id = $1
		GROUP BY p.id, p.name
		ORDER BY total DESC, p.id
	`

	rows, err := s.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum scores for game %d: %w", gameID, err)
	}
	defer rows.Close()

	var totals []*models.PlayerTotal
	for rows.Next() {
		var t models.PlayerTotal
		if err := rows.Scan(&t.PlayerID, &t.Name, &t.Points); err != nil {
			return nil, err
		}
		totals = append(totals, &t)
	}

	return totals, rows.Err()
}
