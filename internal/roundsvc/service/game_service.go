package service

import (
	"context"
	"errors"

	"github.com/bsparty/bullshit-services/internal/roundsvc/models"
)

var ErrGameNotFound = errors.New("game not found")

// GameService is a thin read surface over games. Game creation, joining and
// completion belong to the lobby and lifecycle services; this side only
// resolves games.
type GameService struct {
	games GameStore
}

func NewGameService(games GameStore) *GameService {
	return &GameService{games: games}
}

func (s *GameService) GetGame(ctx context.Context, gameID int64) (*models.Game, error) {
	g, err := s.games.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGameNotFound
	}
	return g, nil
}
