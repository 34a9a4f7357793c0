package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bsparty/bullshit-services/internal/roundsvc/models"
	"github.com/bsparty/bullshit-services/internal/roundsvc/store"
)

// In-memory store fakes with the same semantics as the SQL stores:
// conditional phase writes, first-seed-wins, scored-flag CAS, duplicate
// detection on (round, player).

type fakeRoundStore struct {
	rounds     map[int64]*models.Round
	advanceErr error
}

func newFakeRoundStore(rounds ...*models.Round) *fakeRoundStore {
	s := &fakeRoundStore{rounds: make(map[int64]*models.Round)}
	for _, r := range rounds {
		s.rounds[r.ID] = r
	}
	return s
}

func (s *fakeRoundStore) GetRoundByID(ctx context.Context, roundID int64) (*models.Round, error) {
	r, ok := s.rounds[roundID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *fakeRoundStore) GetActiveRound(ctx context.Context, gameID int64) (*models.Round, error) {
	for _, r := range s.rounds {
		if r.GameID == gameID && r.Active {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeRoundStore) AdvancePhase(ctx context.Context, roundID int64, from, to models.Phase) (bool, error) {
	if s.advanceErr != nil {
		return false, s.advanceErr
	}
	if !from.CanAdvanceTo(to) {
		return false, fmt.Errorf("illegal phase transition %s -> %s", from, to)
	}
	r, ok := s.rounds[roundID]
	if !ok || r.Phase != from || !r.Active {
		return false, nil
	}
	r.Phase = to
	r.PhaseSince = time.Now()
	return true, nil
}

func (s *fakeRoundStore) EnsureRevealSeed(ctx context.Context, roundID int64, seed int64) (int64, error) {
	r, ok := s.rounds[roundID]
	if !ok {
		return 0, fmt.Errorf("round %d not found", roundID)
	}
	if !r.RevealSeed.Valid {
		r.RevealSeed.Int64 = seed
		r.RevealSeed.Valid = true
	}
	return r.RevealSeed.Int64, nil
}

func (s *fakeRoundStore) SetRevealIndex(ctx context.Context, roundID int64, index int) error {
	r, ok := s.rounds[roundID]
	if !ok {
		return fmt.Errorf("round %d not found", roundID)
	}
	r.RevealIndex = index
	return nil
}

func (s *fakeRoundStore) MarkScored(ctx context.Context, roundID int64) (bool, error) {
	r, ok := s.rounds[roundID]
	if !ok {
		return false, fmt.Errorf("round %d not found", roundID)
	}
	if r.Scored {
		return false, nil
	}
	r.Scored = true
	return true, nil
}

func (s *fakeRoundStore) SetResultsDeadline(ctx context.Context, roundID int64, until time.Time) error {
	r, ok := s.rounds[roundID]
	if !ok {
		return fmt.Errorf("round %d not found", roundID)
	}
	r.ResultsUntil.Time = until
	r.ResultsUntil.Valid = true
	return nil
}

type fakeAnswerStore struct {
	answers []*models.Answer
	nextID  int64
}

func (s *fakeAnswerStore) CreateAnswer(ctx context.Context, roundID, playerID int64, content string) (*models.Answer, error) {
	for _, a := range s.answers {
		if a.RoundID == roundID && a.PlayerID == playerID {
			return nil, store.ErrDuplicate
		}
	}
	s.nextID++
	a := &models.Answer{ID: s.nextID, RoundID: roundID, PlayerID: playerID, Content: content}
	s.answers = append(s.answers, a)
	return a, nil
}

func (s *fakeAnswerStore) ListByRound(ctx context.Context, roundID int64) ([]*models.Answer, error) {
	var out []*models.Answer
	for _, a := range s.answers {
		if a.RoundID == roundID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeVoteStore struct {
	votes  []*models.Vote
	nextID int64
}

func (s *fakeVoteStore) CreateVote(ctx context.Context, roundID, playerID int64, selection string) (*models.Vote, error) {
	for _, v := range s.votes {
		if v.RoundID == roundID && v.PlayerID == playerID {
			return nil, store.ErrDuplicate
		}
	}
	s.nextID++
	v := &models.Vote{ID: s.nextID, RoundID: roundID, PlayerID: playerID, Selection: selection}
	s.votes = append(s.votes, v)
	return v, nil
}

func (s *fakeVoteStore) ListByRound(ctx context.Context, roundID int64) ([]*models.Vote, error) {
	var out []*models.Vote
	for _, v := range s.votes {
		if v.RoundID == roundID {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeScoreStore struct {
	scores []*models.Score
	nextID int64
}

func (s *fakeScoreStore) InsertScores(ctx context.Context, scores []*models.Score) error {
	for _, sc := range scores {
		s.nextID++
		cp := *sc
		cp.ID = s.nextID
		s.scores = append(s.scores, &cp)
	}
	return nil
}

func (s *fakeScoreStore) ListByRound(ctx context.Context, roundID int64) ([]*models.Score, error) {
	var out []*models.Score
	for _, sc := range s.scores {
		if sc.RoundID == roundID {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (s *fakeScoreStore) TotalsByGame(ctx context.Context, gameID int64) ([]*models.PlayerTotal, error) {
	sums := make(map[int64]int)
	for _, sc := range s.scores {
		if sc.GameID == gameID {
			sums[sc.PlayerID] += sc.Points
		}
	}
	var out []*models.PlayerTotal
	for id, pts := range sums {
		out = append(out, &models.PlayerTotal{PlayerID: id, Points: pts})
	}
	return out, nil
}

type fakePlayerStore struct {
	players []*models.Player
}

func (s *fakePlayerStore) GetPlayerByID(ctx context.Context, playerID int64) (*models.Player, error) {
	for _, p := range s.players {
		if p.ID == playerID {
			return p, nil
		}
	}
	return nil, nil
}

func (s *fakePlayerStore) ListByGame(ctx context.Context, gameID int64) ([]*models.Player, error) {
	var out []*models.Player
	for _, p := range s.players {
		if p.GameID == gameID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakePromptStore struct {
	prompts map[string]*models.Prompt
}

func (s *fakePromptStore) GetPromptByID(ctx context.Context, hexID string) (*models.Prompt, error) {
	return s.prompts[hexID], nil
}
