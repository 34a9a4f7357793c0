package service

import (
	"context"
	"testing"

	"github.com/bsparty/bullshit-services/internal/roundsvc/models"
)

func answeringRound() *models.Round {
	return &models.Round{
		ID:          1,
		GameID:      5,
		ModeratorID: 99,
		PromptID:    "p1",
		Phase:       models.PhaseAnswering,
		Active:      true,
	}
}

func TestSubmitAnswerDuplicateKeepsFirst(t *testing.T) {
	ctx := context.Background()
	answers := &fakeAnswerStore{}
	svc := NewSubmissionService(answers, &fakeVoteStore{})
	round := answeringRound()

	if _, err := svc.SubmitAnswer(ctx, round, 10, "Avatar"); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := svc.SubmitAnswer(ctx, round, 10, "Inception"); err != ErrAlreadySubmitted {
		t.Fatalf("want ErrAlreadySubmitted, got %v", err)
	}

	stored, _ := answers.ListByRound(ctx, round.ID)
	if len(stored) != 1 || stored[0].Content != "Avatar" {
		t.Fatalf("first submission must stand: %+v", stored)
	}
}

func TestSubmitAnswerRejections(t *testing.T) {
	ctx := context.Background()
	svc := NewSubmissionService(&fakeAnswerStore{}, &fakeVoteStore{})

	tests := []struct {
		name    string
		phase   models.Phase
		player  int64
		content string
		want    error
	}{
		{"wrong phase", models.PhaseVoting, 10, "Avatar", ErrWrongPhase},
		{"countdown", models.PhaseCountdown, 10, "Avatar", ErrWrongPhase},
		{"moderator", models.PhaseAnswering, 99, "Avatar", ErrModeratorRole},
		{"empty", models.PhaseAnswering, 10, "   ", ErrEmptyContent},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			round := answeringRound()
			round.Phase = tc.phase
			if _, err := svc.SubmitAnswer(ctx, round, tc.player, tc.content); err != tc.want {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestSubmitVoteOwnAnswer(t *testing.T) {
	ctx := context.Background()
	answers := &fakeAnswerStore{answers: []*models.Answer{
		{ID: 1, RoundID: 1, PlayerID: 10, Content: "Avatar"},
	}}
	svc := NewSubmissionService(answers, &fakeVoteStore{})

	round := answeringRound()
	round.Phase = models.PhaseVoting

	if _, err := svc.SubmitVote(ctx, round, 10, "Avatar"); err != ErrOwnAnswer {
		t.Fatalf("want ErrOwnAnswer, got %v", err)
	}
}

func TestSubmitVoteDuplicate(t *testing.T) {
	ctx := context.Background()
	votes := &fakeVoteStore{}
	svc := NewSubmissionService(&fakeAnswerStore{}, votes)

	round := answeringRound()
	round.Phase = models.PhaseVoting

	if _, err := svc.SubmitVote(ctx, round, 10, "Titanic"); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if _, err := svc.SubmitVote(ctx, round, 10, "Avatar"); err != ErrAlreadySubmitted {
		t.Fatalf("want ErrAlreadySubmitted, got %v", err)
	}

	stored, _ := votes.ListByRound(ctx, round.ID)
	if len(stored) != 1 || stored[0].Selection != "Titanic" {
		t.Fatalf("first vote must stand: %+v", stored)
	}
}

func TestSubmitVoteWrongPhase(t *testing.T) {
	ctx := context.Background()
	svc := NewSubmissionService(&fakeAnswerStore{}, &fakeVoteStore{})

	round := answeringRound() // still answering
	if _, err := svc.SubmitVote(ctx, round, 10, "Titanic"); err != ErrWrongPhase {
		t.Fatalf("want ErrWrongPhase, got %v", err)
	}
}
