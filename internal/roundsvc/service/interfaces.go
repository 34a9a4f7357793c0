package service

import (
	"context"
	"time"

	"github.com/bsparty/bullshit-services/internal/roundsvc/models"
)

// Store dependencies are taken as interfaces so tests can run the round
// lifecycle against in-memory fakes instead of a live pool.

type RoundStore interface {
	GetRoundByID(ctx context.Context, roundID int64) (*models.Round, error)
	GetActiveRound(ctx context.Context, gameID int64) (*models.Round, error)
	AdvancePhase(ctx context.Context, roundID int64, from, to models.Phase) (bool, error)
	EnsureRevealSeed(ctx context.Context, roundID int64, seed int64) (int64, error)
	SetRevealIndex(ctx context.Context, roundID int64, index int) error
	MarkScored(ctx context.Context, roundID int64) (bool, error)
	SetResultsDeadline(ctx context.Context, roundID int64, until time.Time) error
}

type AnswerStore interface {
	CreateAnswer(ctx context.Context, roundID, playerID int64, content string) (*models.Answer, error)
	ListByRound(ctx context.Context, roundID int64) ([]*models.Answer, error)
}

type VoteStore interface {
	CreateVote(ctx context.Context, roundID, playerID int64, selection string) (*models.Vote, error)
	ListByRound(ctx context.Context, roundID int64) ([]*models.Vote, error)
}

type ScoreStore interface {
	InsertScores(ctx context.Context, scores []*models.Score) error
	ListByRound(ctx context.Context, roundID int64) ([]*models.Score, error)
	TotalsByGame(ctx context.Context, gameID int64) ([]*models.PlayerTotal, error)
}

type GameStore interface {
	GetGameByID(ctx context.Context, gameID int64) (*models.Game, error)
}

type PlayerStore interface {
	GetPlayerByID(ctx context.Context, playerID int64) (*models.Player, error)
	ListByGame(ctx context.Context, gameID int64) ([]*models.Player, error)
}

type PromptStore interface {
	GetPromptByID(ctx context.Context, hexID string) (*models.Prompt, error)
}
