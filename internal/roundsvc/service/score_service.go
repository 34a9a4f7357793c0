package service

import (
	"context"
	"fmt"

	"github.com/bsparty/bullshit-services/internal/roundsvc/models"
)

// ScoreService turns a round's finalized vote set into score rows. It runs
// once per round, at the voting -> results transition.
type ScoreService struct {
	rounds  RoundStore
	scores  ScoreStore
	answers AnswerStore
	votes   VoteStore
	prompts PromptStore
}

func NewScoreService(rounds RoundStore, scores ScoreStore, answers AnswerStore, votes VoteStore, prompts PromptStore) *ScoreService {
	return &ScoreService{
		rounds:  rounds,
		scores:  scores,
		answers: answers,
		votes:   votes,
		prompts: prompts,
	}
}

// ScoreRound awards points for one round. The scored-flag CAS on the round
// row makes this safe against a duplicate transition trigger: the second
// caller sees scored already set and returns without inserting anything.
func (s *ScoreService) ScoreRound(ctx context.Context, round *models.Round) ([]*models.Score, error) {
	fresh, err := s.rounds.MarkScored(ctx, round.ID)
	if err != nil {
		return nil, err
	}
	if !fresh {
		return nil, nil // already scored
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
	votes, err := s.votes.ListByRound(ctx, round.ID)
	if err != nil {
		return nil, err
	}

	awards := ComputeAwards(round, prompt.Answer, answers, votes)
	if err := s.scores.InsertScores(ctx, awards); err != nil {
		return nil, fmt.Errorf("failed to store awards for round %d: %w", round.ID, err)
	}
	return awards, nil
}

// ComputeAwards applies the scoring rules: 2 points to every player whose
// vote matches the real answer, and 1 point to a fabrication's author for
// every other player their answer fooled — one row per deceived voter, so
// the results screen can show each deception. Votes join answers by
// content, the same way clients submit them.
func ComputeAwards(round *models.Round, correct string, answers []*models.Answer, votes []*models.Vote) []*models.Score {
	authorByContent := make(map[string]int64, len(answers))
	for _, a := range answers {
		if _, ok := authorByContent[a.Content]; !ok {
			authorByContent[a.Content] = a.PlayerID
		}
	}

	var awards []*models.Score
	for _, v := range votes {
		if v.Selection == correct {
			awards = append(awards, &models.Score{
				GameID:   round.GameID,
				RoundID:  round.ID,
				PlayerID: v.PlayerID,
				Points:   models.PointsCorrectVote,
				Reason:   models.ReasonCorrectVote,
			})
			continue
		}
		if author, ok := authorByContent[v.Selection]; ok {
			awards = append(awards, &models.Score{
				GameID:   round.GameID,
				RoundID:  round.ID,
				PlayerID: author,
				Points:   models.PointsDeceivedOther,
				Reason:   models.ReasonDeceivedOther,
			})
		}
	}
	return awards
}

func (s *ScoreService) RoundScores(ctx context.Context, roundID int64) ([]*models.Score, error) {
	return s.scores.ListByRound(ctx, roundID)
}

// Totals is the cumulative leaderboard, summed on demand rather than
// denormalized.
func (s *ScoreService) Totals(ctx context.Context, gameID int64) ([]*models.PlayerTotal, error) {
	return s.scores.TotalsByGame(ctx, gameID)
}
