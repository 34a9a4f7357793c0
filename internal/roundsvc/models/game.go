package models

import "time"

type Game struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`   // invite code, managed by the lobby service
	Status    string    `json:"status"` // 'waiting', 'playing', 'complete'
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	GameStatusWaiting  = "waiting"
	GameStatusPlaying  = "playing"
	GameStatusComplete = "complete"
)
