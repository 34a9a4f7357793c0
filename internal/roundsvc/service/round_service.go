package service

import (
	"context"
	"errors"
	"time"

	"github.com/bsparty/bullshit-services/internal/roundsvc/models"
	"github.com/bsparty/bullshit-services/internal/roundsvc/session"
)

// ErrModeratorMissing signals corrupt upstream state: the round points at a
// moderator who is not in the game's roster. Not recoverable here.
var ErrModeratorMissing = errors.New("round moderator missing from roster")

// RoundService owns the round phase machine. It is the only writer of
// Round.phase; every transition is a conditional store write, so a lost
// race shows up as "zero rows" and local state is only updated after the
// store acknowledged the transition.
type RoundService struct {
	rounds         RoundStore
	answers        AnswerStore
	votes          VoteStore
	players        PlayerStore
	prompts        PromptStore
	scoring        *ScoreService
	resultsSeconds int
}

func NewRoundService(rounds RoundStore, answers AnswerStore, votes VoteStore,
	players PlayerStore, prompts PromptStore, scoring *ScoreService, resultsSeconds int) *RoundService {
	return &RoundService{
		rounds:         rounds,
		answers:        answers,
		votes:          votes,
		players:        players,
		prompts:        prompts,
		scoring:        scoring,
		resultsSeconds: resultsSeconds,
	}
}

func (s *RoundService) ActiveRound(ctx context.Context, gameID int64) (*models.Round, error) {
	round, err := s.rounds.GetActiveRound(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, ErrRoundNotFound
	}
	return round, nil
}

// BeginReading moves the round from answering to reading and fixes the
// reveal order. Deliberately not gated on pending answers: the moderator
// may start reading early, non-respondents simply have no card in the
// sequence. Calling it again once reading has begun is a no-op that
// returns the already-fixed sequence.
func (s *RoundService) BeginReading(ctx context.Context, round *models.Round, playerID int64) (*models.Round, []RevealCard, error) {
	if playerID != round.ModeratorID {
		return nil, nil, ErrNotModerator
	}

	switch round.Phase {
	case models.PhaseAnswering:
	case models.PhaseReading:
		reveal, err := s.RevealSequence(ctx, round)
		return round, reveal, err
	default:
		return nil, nil, ErrWrongPhase
	}

	seed, err := s.rounds.EnsureRevealSeed(ctx, round.ID, NewRevealSeed())
	if err != nil {
		return nil, nil, err
	}
	round.RevealSeed.Int64 = seed
	round.RevealSeed.Valid = true

	advanced, err := s.rounds.AdvancePhase(ctx, round.ID, models.PhaseAnswering, models.PhaseReading)
	if err != nil {
		return nil, nil, err
	}
	if advanced {
		round.Phase = models.PhaseReading
	} else {
		// lost the race; accept the stored phase if someone else advanced
		fresh, err := s.rounds.GetRoundByID(ctx, round.ID)
		if err != nil {
			return nil, nil, err
		}
		if fresh == nil || fresh.Phase != models.PhaseReading {
			return nil, nil, ErrWrongPhase
		}
		round = fresh
	}

	reveal, err := s.RevealSequence(ctx, round)
	if err != nil {
		return nil, nil, err
	}
	return round, reveal, nil
}

// RevealSequence rebuilds the round's reveal order from the stored seed.
// Before the seed is fixed there is no sequence and it returns nil.
func (s *RoundService) RevealSequence(ctx context.Context, round *models.Round) ([]RevealCard, error) {
	if !round.RevealSeed.Valid {
		return nil, nil
	}

	prompt, err := s.prompts.GetPromptByID(ctx, round.PromptID)
	if err != nil {
		return nil, err
	}
	if prompt == nil {
		return nil, ErrPromptMissing
	}

	answers, err := s.answers.ListByRound(ctx, round.ID)
	if err != nil {
		return nil, err
	}

	return BuildRevealSequence(prompt.Answer, answers, round.RevealSeed.Int64), nil
}

// AdvanceReveal moves the moderator's cursor by delta (+1 or -1). Previous
// at the first card is a no-op; next past the last card does not move the
// cursor but advances the round into voting.
func (s *RoundService) AdvanceReveal(ctx context.Context, round *models.Round, playerID int64, delta int) (*models.Round, int, error) {
	if playerID != round.ModeratorID {
		return nil, 0, ErrNotModerator
	}
	if round.Phase != models.PhaseReading {
		return nil, round.RevealIndex, ErrWrongPhase
	}

	reveal, err := s.RevealSequence(ctx, round)
	if err != nil {
		return nil, 0, err
	}

	cur := round.RevealIndex
	switch {
	case delta < 0:
		if cur == 0 {
			return round, cur, nil
		}
		if err := s.rounds.SetRevealIndex(ctx, round.ID, cur-1); err != nil {
			return nil, cur, err
		}
		round.RevealIndex = cur - 1

	case delta > 0:
		if cur >= len(reveal)-1 {
			advanced, err := s.rounds.AdvancePhase(ctx, round.ID, models.PhaseReading, models.PhaseVoting)
			if err != nil {
				return nil, cur, err
			}
			if advanced {
				round.Phase = models.PhaseVoting
			} else {
				fresh, err := s.rounds.GetRoundByID(ctx, round.ID)
				if err != nil {
					return nil, cur, err
				}
				if fresh == nil || fresh.Phase != models.PhaseVoting {
					return nil, cur, ErrWrongPhase
				}
				round = fresh
			}
			return round, cur, nil
		}
		if err := s.rounds.SetRevealIndex(ctx, round.ID, cur+1); err != nil {
			return nil, cur, err
		}
		round.RevealIndex = cur + 1
	}

	return round, round.RevealIndex, nil
}

// RevealResults closes voting. Unlike BeginReading this transition is
// strict: every non-moderator player must hold a vote. Scoring runs before
// the phase write; its scored-flag guard makes a retried call skip the
// awards and just finish the transition.
func (s *RoundService) RevealResults(ctx context.Context, round *models.Round, playerID int64) (*models.Round, []*models.Score, error) {
	if playerID != round.ModeratorID {
		return nil, nil, ErrNotModerator
	}

	switch round.Phase {
	case models.PhaseVoting:
	case models.PhaseResults:
		scores, err := s.scoring.RoundScores(ctx, round.ID)
		return round, scores, err
	default:
		return nil, nil, ErrWrongPhase
	}

	players, err := s.players.ListByGame(ctx, round.GameID)
	if err != nil {
		return nil, nil, err
	}
	votes, err := s.votes.ListByRound(ctx, round.ID)
	if err != nil {
		return nil, nil, err
	}

	voted := make(map[int64]bool, len(votes))
	for _, v := range votes {
		voted[v.PlayerID] = true
	}
	if pending := session.Pending(players, round.ModeratorID, voted); len(pending) > 0 {
		return nil, nil, ErrVotesPending
	}

	scores, err := s.scoring.ScoreRound(ctx, round)
	if err != nil {
		return nil, nil, err
	}
	if scores == nil {
		// scored by an earlier attempt whose phase write did not land
		scores, err = s.scoring.RoundScores(ctx, round.ID)
		if err != nil {
			return nil, nil, err
		}
	}

	advanced, err := s.rounds.AdvancePhase(ctx, round.ID, models.PhaseVoting, models.PhaseResults)
	if err != nil {
		return nil, nil, err
	}
	if advanced {
		round.Phase = models.PhaseResults
		until := time.Now().UTC().Add(time.Duration(s.resultsSeconds) * time.Second)
		if err := s.rounds.SetResultsDeadline(ctx, round.ID, until); err != nil {
			return nil, nil, err
		}
	} else {
		fresh, err := s.rounds.GetRoundByID(ctx, round.ID)
		if err != nil {
			return nil, nil, err
		}
		if fresh == nil || fresh.Phase != models.PhaseResults {
			return nil, nil, ErrWrongPhase
		}
		round = fresh
	}

	return round, scores, nil
}

// Snapshot is the full derived round view handed to clients: phase, roster,
// reveal sequence, pending sets, and on results the tally and awards.
type Snapshot struct {
	Round          *models.Round
	Players        []*models.Player
	Reveal         []RevealCard
	PendingAnswers []int64
	PendingVotes   []int64
	Tally          map[string]int
	RoundScores    []*models.Score
}

func (s *RoundService) Snapshot(ctx context.Context, gameID int64) (*Snapshot, error) {
	round, err := s.ActiveRound(ctx, gameID)
	if err != nil {
		return nil, err
	}

	players, err := s.players.ListByGame(ctx, round.GameID)
	if err != nil {
		return nil, err
	}
	moderatorKnown := false
	for _, p := range players {
		if p.ID == round.ModeratorID {
			moderatorKnown = true
			break
		}
	}
	if !moderatorKnown {
		return nil, ErrModeratorMissing
	}

	answers, err := s.answers.ListByRound(ctx, round.ID)
	if err != nil {
		return nil, err
	}
	votes, err := s.votes.ListByRound(ctx, round.ID)
	if err != nil {
		return nil, err
	}

	answered := make(map[int64]bool, len(answers))
	for _, a := range answers {
		answered[a.PlayerID] = true
	}
	voted := make(map[int64]bool, len(votes))
	for _, v := range votes {
		voted[v.PlayerID] = true
	}

	snap := &Snapshot{
		Round:          round,
		Players:        players,
		PendingAnswers: session.Pending(players, round.ModeratorID, answered),
		PendingVotes:   session.Pending(players, round.ModeratorID, voted),
	}

	if round.RevealSeed.Valid {
		snap.Reveal, err = s.RevealSequence(ctx, round)
		if err != nil {
			return nil, err
		}
	}

	if round.Phase == models.PhaseResults {
		snap.Tally = VoteTally(votes)
		snap.RoundScores, err = s.scoring.RoundScores(ctx, round.ID)
		if err != nil {
			return nil, err
		}
	}

	return snap, nil
}
