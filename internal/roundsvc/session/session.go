// Package session keeps a small in-memory view of a round's submissions.
// It is fed from two directions: optimistically, right after a local insert
// is acknowledged, and from change notifications arriving over the bus.
// Both paths land in the same maps keyed by player id, so an event echoing
// a submission we already applied replaces instead of duplicating.
package session

import (
	"sort"
	"sync"

	"github.com/bsparty/bullshit-services/internal/roundsvc/models"
)

const (
	KindAnswer = "answer"
	KindVote   = "vote"
)

type Round struct {
	mu          sync.Mutex
	roundID     int64
	moderatorID int64
	players     map[int64]bool
	answers     map[int64]int64 // player id -> answer row id
	votes       map[int64]int64 // player id -> vote row id
}

func NewRound(round *models.Round, players []*models.Player) *Round {
	r := &Round{
		roundID:     round.ID,
		moderatorID: round.ModeratorID,
		players:     make(map[int64]bool, len(players)),
		answers:     make(map[int64]int64),
		votes:       make(map[int64]int64),
	}
	for _, p := range players {
		r.players[p.ID] = true
	}
	return r
}

// Hydrate replays stored submissions into the session, e.g. after a service
// restart. Safe to call over a live session; replays are idempotent.
func (r *Round) Hydrate(answers []*models.Answer, votes []*models.Vote) {
	for _, a := range answers {
		r.ApplySubmission(a.RoundID, a.PlayerID, KindAnswer, a.ID)
	}
	for _, v := range votes {
		r.ApplySubmission(v.RoundID, v.PlayerID, KindVote, v.ID)
	}
}

// ApplySubmission merges one submission, optimistic or notified, into the
// session. Events for a different round id are discarded (a stale
// notification from a previous round must not touch current state). The
// same (round, player) pair applied twice leaves exactly one entry.
func (r *Round) ApplySubmission(roundID, playerID int64, kind string, rowID int64) bool {
	if roundID != r.roundID {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch kind {
	case KindAnswer:
		r.answers[playerID] = rowID
	case KindVote:
		r.votes[playerID] = rowID
	default:
		return false
	}
	return true
}

func (r *Round) HasAnswered(playerID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.answers[playerID]
	return ok
}

func (r *Round) HasVoted(playerID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.votes[playerID]
	return ok
}

// PendingAnswers lists non-moderator players without a recorded answer,
// sorted for stable output.
func (r *Round) PendingAnswers() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending(r.answers)
}

// PendingVotes lists non-moderator players without a recorded vote.
func (r *Round) PendingVotes() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending(r.votes)
}

func (r *Round) AllAnswered() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending(r.answers)) == 0
}

func (r *Round) AllVoted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending(r.votes)) == 0
}

// caller holds r.mu
func (r *Round) pending(submitted map[int64]int64) []int64 {
	var out []int64
	for id := range r.players {
		if id == r.moderatorID {
			continue
		}
		if _, ok := submitted[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Pending is the pure derivation used when no live session exists: the
// non-moderator roster minus the players present in the submitted set.
func Pending(players []*models.Player, moderatorID int64, submitted map[int64]bool) []int64 {
	var out []int64
	for _, p := range players {
		if p.ID == moderatorID {
			continue
		}
		if !submitted[p.ID] {
			out = append(out, p.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
