package service

import (
	"math/rand"
	"sort"

	"github.com/bsparty/bullshit-services/internal/roundsvc/models"
)

// RevealCard is one entry of the moderator's reading sequence: the real
// answer or one player fabrication.
type RevealCard struct {
	Content  string
	Correct  bool
	PlayerID int64 // author, zero for the real answer
}

// NewRevealSeed draws the permutation seed fixed at answering -> reading.
func NewRevealSeed() int64 {
	return rand.Int63()
}

// BuildRevealSequence shuffles the real answer in with the fabricated ones.
// The base order is deterministic (real answer first, then answers by row
// id) and the permutation comes from the round's stored seed, so any caller
// holding the same seed and answer set rebuilds the exact same sequence —
// the moderator's card order survives reconnects and restarts.
func BuildRevealSequence(correct string, answers []*models.Answer, seed int64) []RevealCard {
	cards := make([]RevealCard, 0, 1+len(answers))
	cards = append(cards, RevealCard{Content: correct, Correct: true})

	sorted := make([]*models.Answer, len(answers))
	copy(sorted, answers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for _, a := range sorted {
		cards = append(cards, RevealCard{Content: a.Content, PlayerID: a.PlayerID})
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	return cards
}

// VoteTally counts votes per selected content for the results screen.
func VoteTally(votes []*models.Vote) map[string]int {
	tally := make(map[string]int, len(votes))
	for _, v := range votes {
		tally[v.Selection]++
	}
	return tally
}
