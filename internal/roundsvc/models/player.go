package models

import "time"

type Player struct {
	ID        int64     `json:"id"`      // Primary key
	GameID    int64     `json:"game_id"` // FK to games(id)
	Name      string    `json:"name"`
	Status    string    `json:"status"` // 'joined', 'left'
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
