package service

import (
	"testing"

	"github.com/bsparty/bullshit-services/internal/roundsvc/models"
)

func sampleAnswers() []*models.Answer {
	return []*models.Answer{
		{ID: 3, RoundID: 1, PlayerID: 30, Content: "Inception"},
		{ID: 1, RoundID: 1, PlayerID: 10, Content: "Titanic"},
		{ID: 2, RoundID: 1, PlayerID: 20, Content: "Avatar"},
	}
}

func TestBuildRevealSequenceDeterministic(t *testing.T) {
	const seed = 424242

	first := BuildRevealSequence("The Godfather", sampleAnswers(), seed)
	second := BuildRevealSequence("The Godfather", sampleAnswers(), seed)

	if len(first) != 4 {
		t.Fatalf("expected 4 cards, got %d", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sequence differs at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestBuildRevealSequenceContents(t *testing.T) {
	cards := BuildRevealSequence("The Godfather", sampleAnswers(), 7)

	correct := 0
	seen := make(map[string]bool)
	for _, c := range cards {
		seen[c.Content] = true
		if c.Correct {
			correct++
			if c.Content != "The Godfather" {
				t.Fatalf("correct flag on wrong card: %+v", c)
			}
			if c.PlayerID != 0 {
				t.Fatalf("real answer carries an author: %+v", c)
			}
		}
	}
	if correct != 1 {
		t.Fatalf("expected exactly one correct card, got %d", correct)
	}
	for _, want := range []string{"The Godfather", "Titanic", "Avatar", "Inception"} {
		if !seen[want] {
			t.Fatalf("card %q missing from sequence", want)
		}
	}
}

func TestBuildRevealSequenceAnswerOrderIrrelevant(t *testing.T) {
	const seed = 99

	shuffledInput := []*models.Answer{
		{ID: 2, RoundID: 1, PlayerID: 20, Content: "Avatar"},
		{ID: 3, RoundID: 1, PlayerID: 30, Content: "Inception"},
		{ID: 1, RoundID: 1, PlayerID: 10, Content: "Titanic"},
	}

	a := BuildRevealSequence("The Godfather", sampleAnswers(), seed)
	b := BuildRevealSequence("The Godfather", shuffledInput, seed)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("input order changed the sequence at %d", i)
		}
	}
}

func TestVoteTally(t *testing.T) {
	votes := []*models.Vote{
		{PlayerID: 1, Selection: "Titanic"},
		{PlayerID: 2, Selection: "Titanic"},
		{PlayerID: 3, Selection: "The Godfather"},
	}

	tally := VoteTally(votes)
	if tally["Titanic"] != 2 || tally["The Godfather"] != 1 {
		t.Fatalf("unexpected tally: %v", tally)
	}
}
