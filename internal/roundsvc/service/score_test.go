package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/bsparty/bullshit-services/internal/roundsvc/models"
)

func votingRound() *models.Round {
	return &models.Round{
		ID:          1,
		GameID:      5,
		Number:      1,
		ModeratorID: 99,
		PromptID:    "p1",
		Phase:       models.PhaseVoting,
		Active:      true,
		RevealSeed:  sql.NullInt64{Int64: 11, Valid: true},
	}
}

func TestComputeAwards(t *testing.T) {
	round := votingRound()

	// playerA fabricated Avatar, playerB Inception; the real answer is
	// Titanic. playerC votes correctly, A and B fall for each other.
	answers := []*models.Answer{
		{ID: 1, RoundID: 1, PlayerID: 10, Content: "Avatar"},
		{ID: 2, RoundID: 1, PlayerID: 20, Content: "Inception"},
	}
	votes := []*models.Vote{
		{ID: 1, RoundID: 1, PlayerID: 30, Selection: "Titanic"},
		{ID: 2, RoundID: 1, PlayerID: 10, Selection: "Inception"},
		{ID: 3, RoundID: 1, PlayerID: 20, Selection: "Avatar"},
	}

	awards := ComputeAwards(round, "Titanic", answers, votes)
	if len(awards) != 3 {
		t.Fatalf("expected 3 award rows, got %d", len(awards))
	}

	points := make(map[int64]int)
	reasons := make(map[string]int)
	for _, a := range awards {
		points[a.PlayerID] += a.Points
		reasons[a.Reason]++
		if a.GameID != round.GameID || a.RoundID != round.ID {
			t.Fatalf("award row misattributed: %+v", a)
		}
	}

	if points[30] != 2 {
		t.Errorf("correct voter: want 2 points, got %d", points[30])
	}
	if points[10] != 1 || points[20] != 1 {
		t.Errorf("deceivers: want 1 point each, got %d and %d", points[10], points[20])
	}
	if reasons[models.ReasonCorrectVote] != 1 || reasons[models.ReasonDeceivedOther] != 2 {
		t.Errorf("unexpected reason breakdown: %v", reasons)
	}
}

func TestComputeAwardsOneRowPerDeceivedVoter(t *testing.T) {
	round := votingRound()

	answers := []*models.Answer{
		{ID: 1, RoundID: 1, PlayerID: 10, Content: "Avatar"},
	}
	votes := []*models.Vote{
		{ID: 1, RoundID: 1, PlayerID: 20, Selection: "Avatar"},
		{ID: 2, RoundID: 1, PlayerID: 30, Selection: "Avatar"},
		{ID: 3, RoundID: 1, PlayerID: 40, Selection: "Avatar"},
	}

	awards := ComputeAwards(round, "Titanic", answers, votes)
	if len(awards) != 3 {
		t.Fatalf("expected one row per deceived voter, got %d", len(awards))
	}
	for _, a := range awards {
		if a.PlayerID != 10 || a.Points != models.PointsDeceivedOther {
			t.Fatalf("unexpected award: %+v", a)
		}
	}
}

func TestComputeAwardsUnmatchedSelection(t *testing.T) {
	round := votingRound()

	// a vote for content nobody authored and that is not the real answer
	// awards nothing
	votes := []*models.Vote{
		{ID: 1, RoundID: 1, PlayerID: 20, Selection: "Casablanca"},
	}

	awards := ComputeAwards(round, "Titanic", nil, votes)
	if len(awards) != 0 {
		t.Fatalf("expected no awards, got %d", len(awards))
	}
}

func TestScoreRoundRunsOnce(t *testing.T) {
	ctx := context.Background()
	round := votingRound()

	rounds := newFakeRoundStore(round)
	scores := &fakeScoreStore{}
	answers := &fakeAnswerStore{answers: []*models.Answer{
		{ID: 1, RoundID: 1, PlayerID: 10, Content: "Avatar"},
	}}
	votes := &fakeVoteStore{votes: []*models.Vote{
		{ID: 1, RoundID: 1, PlayerID: 20, Selection: "Titanic"},
	}}
	prompts := &fakePromptStore{prompts: map[string]*models.Prompt{
		"p1": {Answer: "Titanic"},
	}}

	svc := NewScoreService(rounds, scores, answers, votes, prompts)

	first, err := svc.ScoreRound(ctx, round)
	if err != nil {
		t.Fatalf("first ScoreRound: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 award, got %d", len(first))
	}

	second, err := svc.ScoreRound(ctx, round)
	if err != nil {
		t.Fatalf("second ScoreRound: %v", err)
	}
	if second != nil {
		t.Fatalf("second invocation must be a no-op, got %d awards", len(second))
	}
	if len(scores.scores) != 1 {
		t.Fatalf("awards were written twice: %d rows", len(scores.scores))
	}
}

func TestScoreRoundMissingPrompt(t *testing.T) {
	ctx := context.Background()
	round := votingRound()

	rounds := newFakeRoundStore(round)
	svc := NewScoreService(rounds, &fakeScoreStore{}, &fakeAnswerStore{}, &fakeVoteStore{}, &fakePromptStore{prompts: map[string]*models.Prompt{}})

	if _, err := svc.ScoreRound(ctx, round); err != ErrPromptMissing {
		t.Fatalf("want ErrPromptMissing, got %v", err)
	}
}
