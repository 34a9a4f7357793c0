package models

import "time"

const (
	ReasonCorrectVote   = "correct_vote"   // voter picked the real answer
	ReasonDeceivedOther = "deceived_other" // another player voted for this player's fabrication
)

const (
	PointsCorrectVote   = 2
	PointsDeceivedOther = 1
)

// Score is one point award. A player can hold several rows per round: one
// correct_vote plus one deceived_other per deceived voter.
type Score struct {
	ID        int64     `json:"id"`
	GameID    int64     `json:"game_id"`
	RoundID   int64     `json:"round_id"`
	PlayerID  int64     `json:"player_id"`
	Points    int       `json:"points"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// PlayerTotal is a leaderboard row: the SUM of a player's score rows
// across the whole game, computed on read.
type PlayerTotal struct {
	PlayerID int64  `json:"player_id"`
	Name     string `json:"name"`
	Points   int    `json:"points"`
}
