package models

import "time"

// Vote records which revealed answer a player believed was real. Selection
// is the answer content itself, not a foreign key: votes are joined against
// answers (and the prompt's real answer) by string equality. At most one
// per (round, player), enforced by a unique index.
type Vote struct {
	ID        int64     `json:"id"`
	RoundID   int64     `json:"round_id"`
	PlayerID  int64     `json:"player_id"`
	Selection string    `json:"selection"`
	CreatedAt time.Time `json:"created_at"`
}
