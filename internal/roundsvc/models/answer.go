package models

import "time"

// Answer is a fabricated answer submitted by a non-moderator player.
// At most one per (round, player), enforced by a unique index.
type Answer struct {
	ID        int64     `json:"id"`
	RoundID   int64     `json:"round_id"`
	PlayerID  int64     `json:"player_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
