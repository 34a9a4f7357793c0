package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bsparty/bullshit-services/internal/roundsvc/models"
	"github.com/bsparty/bullshit-services/internal/roundsvc/store"
)

// SubmissionService mediates concurrent answer and vote submissions. The
// store's unique constraints carry the at-most-one-per-player guarantee;
// this layer normalizes duplicate inserts into ErrAlreadySubmitted so a
// retry or a double tap never surfaces as a failure.
type SubmissionService struct {
	answers AnswerStore
	votes   VoteStore
}

func NewSubmissionService(answers AnswerStore, votes VoteStore) *SubmissionService {
	return &SubmissionService{answers: answers, votes: votes}
}

// SubmitAnswer stores a player's fabricated answer for the round. Returns
// ErrAlreadySubmitted when the player already has one; any other store
// error is transient and the caller may retry.
func (s *SubmissionService) SubmitAnswer(ctx context.Context, round *models.Round, playerID int64, content string) (*models.Answer, error) {
	if round.Phase != models.PhaseAnswering {
		return nil, ErrWrongPhase
	}
	if playerID == round.ModeratorID {
		return nil, ErrModeratorRole
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	a, err := s.answers.CreateAnswer(ctx, round.ID, playerID, content)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAlreadySubmitted
		}
		return nil, err
	}
	return a, nil
}

// SubmitVote stores a player's vote for a revealed answer. Voting for one's
// own fabrication is rejected here; it is a presentation rule, not a store
// constraint, so it has to hold even for hand-crafted requests.
func (s *SubmissionService) SubmitVote(ctx context.Context, round *models.Round, playerID int64, selection string) (*models.Vote, error) {
	if round.Phase != models.PhaseVoting {
		return nil, ErrWrongPhase
	}
	if playerID == round.ModeratorID {
		return nil, ErrModeratorRole
	}
	selection = strings.TrimSpace(selection)
	if selection == "" {
		return nil, ErrEmptyContent
	}

	answers, err := s.answers.ListByRound(ctx, round.ID)
	if err != nil {
		return nil, err
	}
	for _, a := range answers {
		if a.PlayerID == playerID && a.Content == selection {
			return nil, ErrOwnAnswer
		}
	}

	v, err := s.votes.CreateVote(ctx, round.ID, playerID, selection)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAlreadySubmitted
		}
		return nil, err
	}
	return v, nil
}

func (s *SubmissionService) Answers(ctx context.Context, roundID int64) ([]*models.Answer, error) {
	return s.answers.ListByRound(ctx, roundID)
}

func (s *SubmissionService) Votes(ctx context.Context, roundID int64) ([]*models.Vote, error) {
	return s.votes.ListByRound(ctx, roundID)
}
