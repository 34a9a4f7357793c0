package service

import "errors"

var (
	// ErrAlreadySubmitted marks a duplicate answer/vote. Callers present it
	// as success: the player's first submission stands.
	ErrAlreadySubmitted = errors.New("already submitted")

	ErrWrongPhase    = errors.New("action not allowed in current phase")
	ErrNotModerator  = errors.New("only the moderator may do this")
	ErrModeratorRole = errors.New("the moderator does not submit in their own round")
	ErrOwnAnswer     = errors.New("players may not vote for their own answer")
	ErrEmptyContent  = errors.New("submission content is empty")
	ErrVotesPending  = errors.New("not all players have voted")
	ErrRoundNotFound = errors.New("round not found")
	ErrPromptMissing = errors.New("round prompt missing from content bank")
)
