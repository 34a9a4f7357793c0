package session

import (
	"testing"

	"github.com/bsparty/bullshit-services/internal/roundsvc/models"
)

func testRound() (*models.Round, []*models.Player) {
	round := &models.Round{ID: 1, GameID: 5, ModeratorID: 99}
	players := []*models.Player{
		{ID: 99, GameID: 5},
		{ID: 10, GameID: 5},
		{ID: 20, GameID: 5},
	}
	return round, players
}

func TestApplySubmissionIdempotent(t *testing.T) {
	r := NewRound(testRound())

	if !r.ApplySubmission(1, 10, KindAnswer, 7) {
		t.Fatal("optimistic apply rejected")
	}
	// echo of the same submission from the bus
	if !r.ApplySubmission(1, 10, KindAnswer, 7) {
		t.Fatal("echo apply rejected")
	}

	if got := r.PendingAnswers(); len(got) != 1 || got[0] != 20 {
		t.Fatalf("unexpected pending answers: %v", got)
	}
}

func TestApplySubmissionStaleRoundDiscarded(t *testing.T) {
	r := NewRound(testRound())

	if r.ApplySubmission(2, 10, KindAnswer, 7) {
		t.Fatal("event from another round was applied")
	}
	if r.HasAnswered(10) {
		t.Fatal("stale event mutated the session")
	}
}

func TestApplySubmissionUnknownKind(t *testing.T) {
	r := NewRound(testRound())

	if r.ApplySubmission(1, 10, "guess", 7) {
		t.Fatal("unknown kind was applied")
	}
}

func TestPendingExcludesModerator(t *testing.T) {
	r := NewRound(testRound())

	if got := r.PendingAnswers(); len(got) != 2 {
		t.Fatalf("moderator counted as pending: %v", got)
	}

	r.ApplySubmission(1, 10, KindVote, 1)
	r.ApplySubmission(1, 20, KindVote, 2)

	if !r.AllVoted() {
		t.Fatal("all non-moderator players voted, AllVoted is false")
	}
	if r.AllAnswered() {
		t.Fatal("nobody answered, AllAnswered is true")
	}
}

func TestHydrateReplay(t *testing.T) {
	r := NewRound(testRound())

	answers := []*models.Answer{
		{ID: 1, RoundID: 1, PlayerID: 10, Content: "Avatar"},
		{ID: 2, RoundID: 9, PlayerID: 20, Content: "stale"}, // other round
	}
	votes := []*models.Vote{
		{ID: 1, RoundID: 1, PlayerID: 20, Selection: "Avatar"},
	}

	r.Hydrate(answers, votes)
	r.Hydrate(answers, votes) // replay is harmless

	if !r.HasAnswered(10) || r.HasAnswered(20) {
		t.Fatal("hydrate applied the wrong answers")
	}
	if !r.HasVoted(20) {
		t.Fatal("hydrate dropped a vote")
	}
}

func TestPendingPure(t *testing.T) {
	_, players := testRound()

	got := Pending(players, 99, map[int64]bool{20: true})
	if len(got) != 1 || got[0] != 10 {
		t.Fatalf("unexpected pending set: %v", got)
	}
}
