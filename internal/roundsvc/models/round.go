package models

import (
	"database/sql"
	"time"
)

type Round struct {
	ID           int64         `json:"id"`           // Primary key
	GameID       int64         `json:"game_id"`      // FK to games(id)
	Number       int           `json:"number"`       // Ordinal within the game, unique per game
	Category     string        `json:"category"`     // Prompt category tag
	ModeratorID  int64         `json:"moderator_id"` // FK to players(id), reads the prompt this round
	PromptID     string        `json:"prompt_id"`    // Prompt document id in the content bank
	Phase        Phase         `json:"phase"`
	Active       bool          `json:"active"`       // exactly one active round per game
	RevealSeed   sql.NullInt64 `json:"reveal_seed"`  // fixed once at answering->reading
	RevealIndex  int           `json:"reveal_index"` // moderator's cursor into the reveal sequence
	Scored       bool          `json:"scored"`       // set once by the scoring engine
	ResultsUntil sql.NullTime  `json:"results_until"`
	PhaseSince   time.Time     `json:"phase_since"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
