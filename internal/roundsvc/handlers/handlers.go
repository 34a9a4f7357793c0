package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/bsparty/bullshit-services/internal/comm"
	"github.com/bsparty/bullshit-services/internal/roundsvc/service"
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
)

type Handler struct {
	tokenAuth    *jwtauth.JWTAuth
	roundService *service.RoundService
	scoreService *service.ScoreService
	gameService  *service.GameService
}

func NewHandler(roundService *service.RoundService, scoreService *service.ScoreService,
	gameService *service.GameService) *Handler {
	return &Handler{
		roundService: roundService,
		scoreService: scoreService,
		gameService:  gameService,
	}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func (rs *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	json.NewEncoder(w).Encode(rsp)
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "round service is running at port " + os.Getenv("ROUND_SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	json.NewEncoder(w).Encode(rsp)
}

// RoundStateHandler serves the active round snapshot for reconnecting
// clients that prefer HTTP over the socket path.
func (h *Handler) RoundStateHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "invalid game id"})
		return
	}

	snap, err := h.roundService.Snapshot(r.Context(), gameID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoundNotFound):
			h.CreateResponse(w, Response{Code: http.StatusNotFound, Error: "no active round"})
		case errors.Is(err, service.ErrModeratorMissing):
			h.CreateResponse(w, Response{Code: http.StatusConflict, Error: "round moderator missing"})
		default:
			h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "round state unavailable"})
		}
		return
	}

	state := comm.RoundState{
		Round:          snap.Round,
		Players:        snap.Players,
		PendingAnswers: snap.PendingAnswers,
		PendingVotes:   snap.PendingVotes,
		Tally:          snap.Tally,
		RoundScores:    snap.RoundScores,
	}
	for _, card := range snap.Reveal {
		state.Reveal = append(state.Reveal, comm.RevealCard{
			Content:  card.Content,
			Correct:  card.Correct,
			PlayerId: card.PlayerID,
		})
	}

	h.CreateResponse(w, Response{Code: http.StatusOK, Data: state})
}

// ScoreboardHandler returns the cumulative leaderboard for a game.
func (h *Handler) ScoreboardHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "invalid game id"})
		return
	}

	if _, err := h.gameService.GetGame(r.Context(), gameID); err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			h.CreateResponse(w, Response{Code: http.StatusNotFound, Error: "game not found"})
			return
		}
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "scoreboard unavailable"})
		return
	}

	totals, err := h.scoreService.Totals(r.Context(), gameID)
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "scoreboard unavailable"})
		return
	}

	h.CreateResponse(w, Response{
		Code: http.StatusOK,
		Data: comm.ScoreboardData{GameId: gameID, Totals: totals},
	})
}
