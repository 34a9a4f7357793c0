package comm

import (
	"encoding/json"

	"github.com/bsparty/bullshit-services/internal/roundsvc/models"
)

// Subjects shared by the services. The gateway relays client messages to
// SubjectRoundService; the round service answers (and broadcasts) on
// SubjectGateway, which the gateway fans out to sockets.
const (
	SubjectRoundService = "round.service"
	SubjectGateway      = "round.gateway"
)

type WSMessage struct {
	Type     string          `json:"type"` // e.g. "submit-answer", "begin-reading"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
	GameId   int64           `json:"gameid,omitempty"` // set instead of SocketId for room broadcasts
}

// JoinGame registers a socket with a game room on the gateway.
type JoinGame struct {
	GameId   int64 `json:"game_id"`
	PlayerId int64 `json:"player_id"`
}

type SubmitAnswer struct {
	GameId   int64  `json:"game_id"`
	RoundId  int64  `json:"round_id"`
	PlayerId int64  `json:"player_id"`
	Content  string `json:"content"`
}

type SubmitVote struct {
	GameId    int64  `json:"game_id"`
	RoundId   int64  `json:"round_id"`
	PlayerId  int64  `json:"player_id"`
	Selection string `json:"selection"`
}

// ModeratorAction covers begin-reading, advance-reveal, prev-reveal and
// reveal-results; the message type selects the action.
type ModeratorAction struct {
	GameId   int64 `json:"game_id"`
	RoundId  int64 `json:"round_id"`
	PlayerId int64 `json:"player_id"`
}

type GetRoundState struct {
	GameId int64 `json:"game_id"`
}

type GetScoreboard struct {
	GameId int64 `json:"game_id"`
}

// SubmissionAck confirms an answer/vote to its submitter. Duplicate means
// the player had already submitted; the client treats it the same as a
// fresh submission.
type SubmissionAck struct {
	RoundId   int64  `json:"round_id"`
	PlayerId  int64  `json:"player_id"`
	Kind      string `json:"kind"` // "answer" or "vote"
	Duplicate bool   `json:"duplicate"`
}

// SubmissionEvent is the change notification broadcast to a game room when
// a submission lands. Receivers must merge it idempotently by
// (round, player); their own optimistic update may already cover it.
type SubmissionEvent struct {
	GameId   int64   `json:"game_id"`
	RoundId  int64   `json:"round_id"`
	PlayerId int64   `json:"player_id"`
	Kind     string  `json:"kind"`
	RowId    int64   `json:"row_id"`
	Pending  []int64 `json:"pending"` // players still owing this phase's action
}

type RevealCard struct {
	Content  string `json:"content"`
	Correct  bool   `json:"correct"`
	PlayerId int64  `json:"player_id,omitempty"` // author, zero for the real answer
}

type RevealCursor struct {
	GameId  int64 `json:"game_id"`
	RoundId int64 `json:"round_id"`
	Index   int   `json:"index"`
}

// RoundState is the full derived view of the active round, sent on request
// and broadcast on every phase transition so clients never have to re-fetch.
type RoundState struct {
	Round          *models.Round    `json:"round"`
	Players        []*models.Player `json:"players"`
	Reveal         []RevealCard     `json:"reveal,omitempty"`
	PendingAnswers []int64          `json:"pending_answers"`
	PendingVotes   []int64          `json:"pending_votes"`
	Tally          map[string]int   `json:"tally,omitempty"`
	RoundScores    []*models.Score  `json:"round_scores,omitempty"`
}

type RoundAdvanced struct {
	GameId  int64        `json:"game_id"`
	RoundId int64        `json:"round_id"`
	Phase   models.Phase `json:"phase"`
}

type GameOver struct {
	GameId int64 `json:"game_id"`
}

type ScoreboardData struct {
	GameId int64                 `json:"game_id"`
	Totals []*models.PlayerTotal `json:"totals"`
}

type ErrorData struct {
	Reason string `json:"reason"`
}
