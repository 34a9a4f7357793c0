package broker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bsparty/bullshit-services/internal/comm"
	"github.com/bsparty/bullshit-services/internal/roundsvc/models"
	"github.com/bsparty/bullshit-services/internal/roundsvc/service"
	"github.com/bsparty/bullshit-services/internal/roundsvc/session"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const (
	readAttempts = 3
	readBackoff  = 150 * time.Millisecond
	opTimeout    = 10 * time.Second
)

type Broker struct {
	Conn              *nats.Conn
	RoundService      *service.RoundService
	SubmissionService *service.SubmissionService
	ScoreService      *service.ScoreService
	Tracker           *session.Tracker
}

func NewBroker(nc *nats.Conn, roundService *service.RoundService,
	submissionService *service.SubmissionService, scoreService *service.ScoreService) *Broker {
	return &Broker{
		Conn:              nc,
		RoundService:      roundService,
		SubmissionService: submissionService,
		ScoreService:      scoreService,
		Tracker:           session.NewTracker(),
	}
}

// handleMessage dispatches requests relayed by the gateway.
func (b *Broker) handleMessage(msgNat *nats.Msg) {
	msg := &comm.WSMessage{}
	err := json.Unmarshal(msgNat.Data, &msg)
	if err != nil {
		log.Errorf("Error nats message %s", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	switch msg.Type {
	case "get-round-state":
		var request comm.GetRoundState
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding get-round-state: %s", err)
			return
		}
		b.sendRoundState(ctx, request.GameId, msg.SocketId)

	case "submit-answer":
		var request comm.SubmitAnswer
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding submit-answer: %s", err)
			return
		}
		b.handleSubmitAnswer(ctx, request, msg.SocketId)

	case "submit-vote":
		var request comm.SubmitVote
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding submit-vote: %s", err)
			return
		}
		b.handleSubmitVote(ctx, request, msg.SocketId)

	case "begin-reading":
		var request comm.ModeratorAction
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding begin-reading: %s", err)
			return
		}
		b.handleBeginReading(ctx, request, msg.SocketId)

	case "advance-reveal", "prev-reveal":
		var request comm.ModeratorAction
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding %s: %s", msg.Type, err)
			return
		}
		delta := 1
		if msg.Type == "prev-reveal" {
			delta = -1
		}
		b.handleAdvanceReveal(ctx, request, delta, msg.SocketId)

	case "reveal-results":
		var request comm.ModeratorAction
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding reveal-results: %s", err)
			return
		}
		b.handleRevealResults(ctx, request, msg.SocketId)

	case "get-scoreboard":
		var request comm.GetScoreboard
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding get-scoreboard: %s", err)
			return
		}
		totals, err := b.ScoreService.Totals(ctx, request.GameId)
		if err != nil {
			log.Errorf("Error [ScoreService.Totals] %s", err)
			b.PublishError("scoreboard unavailable, try again", msg.SocketId)
			return
		}
		b.PublishScoreboard(comm.ScoreboardData{GameId: request.GameId, Totals: totals}, msg.SocketId)

	default:
		log.Error("Unknown message")
	}
}

// handleEvent consumes the gateway-bound stream the service itself (and the
// sweeper) publishes on. Applying our own submission events here is the
// echo path; the session merge is idempotent so optimistic-then-echo is
// harmless.
func (b *Broker) handleEvent(msgNat *nats.Msg) {
	msg := &comm.WSMessage{}
	if err := json.Unmarshal(msgNat.Data, &msg); err != nil {
		return
	}

	switch msg.Type {
	case "submission-update":
		var ev comm.SubmissionEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return
		}
		if sess, ok := b.Tracker.Get(ev.GameId, ev.RoundId); ok {
			sess.ApplySubmission(ev.RoundId, ev.PlayerId, ev.Kind, ev.RowId)
		}
	case "round-advanced":
		var ev comm.RoundAdvanced
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return
		}
		b.Tracker.DropGame(ev.GameId)
	case "game-over":
		var ev comm.GameOver
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return
		}
		b.Tracker.DropGame(ev.GameId)
	}
}

func (b *Broker) handleSubmitAnswer(ctx context.Context, request comm.SubmitAnswer, socketId string) {
	round, err := b.activeRound(ctx, request.GameId)
	if err != nil {
		b.PublishError("no active round", socketId)
		return
	}
	if round.ID != request.RoundId {
		// submission for a round that is no longer current
		b.PublishError("round is over", socketId)
		return
	}

	answer, err := b.SubmissionService.SubmitAnswer(ctx, round, request.PlayerId, request.Content)
	switch {
	case errors.Is(err, service.ErrAlreadySubmitted):
		b.PublishSubmissionAck(comm.SubmissionAck{
			RoundId:   round.ID,
			PlayerId:  request.PlayerId,
			Kind:      session.KindAnswer,
			Duplicate: true,
		}, socketId)
		return
	case err != nil:
		log.Errorf("Error [SubmissionService.SubmitAnswer] %s", err)
		b.PublishError(submitErrorReason(err), socketId)
		return
	}

	sess := b.sessionFor(ctx, round)
	if sess != nil {
		sess.ApplySubmission(round.ID, answer.PlayerID, session.KindAnswer, answer.ID)
	}

	b.PublishSubmissionAck(comm.SubmissionAck{
		RoundId:  round.ID,
		PlayerId: request.PlayerId,
		Kind:     session.KindAnswer,
	}, socketId)

	ev := comm.SubmissionEvent{
		GameId:   round.GameID,
		RoundId:  round.ID,
		PlayerId: answer.PlayerID,
		Kind:     session.KindAnswer,
		RowId:    answer.ID,
	}
	if sess != nil {
		ev.Pending = sess.PendingAnswers()
	}
	b.PublishSubmissionEvent(ev)
}

func (b *Broker) handleSubmitVote(ctx context.Context, request comm.SubmitVote, socketId string) {
	round, err := b.activeRound(ctx, request.GameId)
	if err != nil {
		b.PublishError("no active round", socketId)
		return
	}
	if round.ID != request.RoundId {
		b.PublishError("round is over", socketId)
		return
	}

	vote, err := b.SubmissionService.SubmitVote(ctx, round, request.PlayerId, request.Selection)
	switch {
	case errors.Is(err, service.ErrAlreadySubmitted):
		b.PublishSubmissionAck(comm.SubmissionAck{
			RoundId:   round.ID,
			PlayerId:  request.PlayerId,
			Kind:      session.KindVote,
			Duplicate: true,
		}, socketId)
		return
	case err != nil:
		log.Errorf("Error [SubmissionService.SubmitVote] %s", err)
		b.PublishError(submitErrorReason(err), socketId)
		return
	}

	sess := b.sessionFor(ctx, round)
	if sess != nil {
		sess.ApplySubmission(round.ID, vote.PlayerID, session.KindVote, vote.ID)
	}

	b.PublishSubmissionAck(comm.SubmissionAck{
		RoundId:  round.ID,
		PlayerId: request.PlayerId,
		Kind:     session.KindVote,
	}, socketId)

	ev := comm.SubmissionEvent{
		GameId:   round.GameID,
		RoundId:  round.ID,
		PlayerId: vote.PlayerID,
		Kind:     session.KindVote,
		RowId:    vote.ID,
	}
	if sess != nil {
		ev.Pending = sess.PendingVotes()
	}
	b.PublishSubmissionEvent(ev)
}

func (b *Broker) handleBeginReading(ctx context.Context, request comm.ModeratorAction, socketId string) {
	round, err := b.activeRound(ctx, request.GameId)
	if err != nil {
		b.PublishError("no active round", socketId)
		return
	}

	_, _, err = b.RoundService.BeginReading(ctx, round, request.PlayerId)
	if err != nil {
		log.Errorf("Error [RoundService.BeginReading] %s", err)
		b.PublishError(moderatorErrorReason(err), socketId)
		return
	}

	// every client gets the full round state, no re-fetch needed to show
	// the reading overlay
	b.broadcastRoundState(ctx, round.GameID)
}

func (b *Broker) handleAdvanceReveal(ctx context.Context, request comm.ModeratorAction, delta int, socketId string) {
	round, err := b.activeRound(ctx, request.GameId)
	if err != nil {
		b.PublishError("no active round", socketId)
		return
	}

	round, index, err := b.RoundService.AdvanceReveal(ctx, round, request.PlayerId, delta)
	if err != nil {
		log.Errorf("Error [RoundService.AdvanceReveal] %s", err)
		b.PublishError(moderatorErrorReason(err), socketId)
		return
	}

	if round.Phase == models.PhaseVoting {
		b.broadcastRoundState(ctx, round.GameID)
		return
	}
	b.PublishRevealCursor(comm.RevealCursor{
		GameId:  round.GameID,
		RoundId: round.ID,
		Index:   index,
	})
}

func (b *Broker) handleRevealResults(ctx context.Context, request comm.ModeratorAction, socketId string) {
	round, err := b.activeRound(ctx, request.GameId)
	if err != nil {
		b.PublishError("no active round", socketId)
		return
	}

	_, _, err = b.RoundService.RevealResults(ctx, round, request.PlayerId)
	if err != nil {
		log.Errorf("Error [RoundService.RevealResults] %s", err)
		b.PublishError(moderatorErrorReason(err), socketId)
		return
	}

	b.broadcastRoundState(ctx, round.GameID)
}

// activeRound fetches the game's current round with a small bounded retry,
// so a transient store hiccup does not bubble straight to the player.
func (b *Broker) activeRound(ctx context.Context, gameID int64) (*models.Round, error) {
	var round *models.Round
	err := b.retryRead(ctx, func() error {
		var err error
		round, err = b.RoundService.ActiveRound(ctx, gameID)
		if errors.Is(err, service.ErrRoundNotFound) {
			// a missing round will not appear by retrying
			round = nil
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, service.ErrRoundNotFound
	}
	return round, nil
}

func (b *Broker) retryRead(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= readAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == readAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * readBackoff):
		}
	}
	return err
}

// sessionFor returns the live submission session for the round, building
// and hydrating one from the store on first use.
func (b *Broker) sessionFor(ctx context.Context, round *models.Round) *session.Round {
	if sess, ok := b.Tracker.Get(round.GameID, round.ID); ok {
		return sess
	}

	snap, err := b.RoundService.Snapshot(ctx, round.GameID)
	if err != nil {
		log.Errorf("Error hydrating session for round %d: %s", round.ID, err)
		return nil
	}
	if snap.Round.ID != round.ID {
		return nil
	}

	sess := session.NewRound(snap.Round, snap.Players)
	b.hydrate(ctx, sess, round.ID)
	b.Tracker.Put(round.GameID, sess)
	return sess
}

func (b *Broker) hydrate(ctx context.Context, sess *session.Round, roundID int64) {
	snapAnswers, err := b.SubmissionService.Answers(ctx, roundID)
	if err != nil {
		log.Errorf("Error hydrating answers for round %d: %s", roundID, err)
	}
	snapVotes, err := b.SubmissionService.Votes(ctx, roundID)
	if err != nil {
		log.Errorf("Error hydrating votes for round %d: %s", roundID, err)
	}
	sess.Hydrate(snapAnswers, snapVotes)
}

func (b *Broker) sendRoundState(ctx context.Context, gameID int64, socketId string) {
	var snap *service.Snapshot
	err := b.retryRead(ctx, func() error {
		var err error
		snap, err = b.RoundService.Snapshot(ctx, gameID)
		if errors.Is(err, service.ErrRoundNotFound) || errors.Is(err, service.ErrModeratorMissing) {
			return nil
		}
		return err
	})
	if err != nil || snap == nil {
		b.PublishError("round state unavailable", socketId)
		return
	}

	b.publish("round-state", snapshotData(snap), socketId, 0)
}

func (b *Broker) broadcastRoundState(ctx context.Context, gameID int64) {
	var snap *service.Snapshot
	err := b.retryRead(ctx, func() error {
		var err error
		snap, err = b.RoundService.Snapshot(ctx, gameID)
		return err
	})
	if err != nil {
		log.Errorf("Error [RoundService.Snapshot] for broadcast: %s", err)
		return
	}

	b.publish("round-phase", snapshotData(snap), "", gameID)
}

func snapshotData(snap *service.Snapshot) comm.RoundState {
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
	return state
}

func submitErrorReason(err error) string {
	switch {
	case errors.Is(err, service.ErrWrongPhase):
		return "submissions are closed for this phase"
	case errors.Is(err, service.ErrModeratorRole):
		return "the moderator does not submit this round"
	case errors.Is(err, service.ErrOwnAnswer):
		return "you cannot vote for your own answer"
	case errors.Is(err, service.ErrEmptyContent):
		return "submission is empty"
	default:
		return "submission failed, try again"
	}
}

func moderatorErrorReason(err error) string {
	switch {
	case errors.Is(err, service.ErrNotModerator):
		return "only the moderator may do this"
	case errors.Is(err, service.ErrVotesPending):
		return "waiting for votes"
	case errors.Is(err, service.ErrWrongPhase):
		return "round is not in the right phase"
	case errors.Is(err, service.ErrPromptMissing):
		return "round prompt is missing"
	default:
		return "action failed, try again"
	}
}

func (b *Broker) PublishSubmissionAck(ack comm.SubmissionAck, socketId string) {
	b.publish("submission-ack", ack, socketId, 0)
}

func (b *Broker) PublishSubmissionEvent(ev comm.SubmissionEvent) {
	b.publish("submission-update", ev, "", ev.GameId)
}

func (b *Broker) PublishRevealCursor(cursor comm.RevealCursor) {
	b.publish("reveal-cursor", cursor, "", cursor.GameId)
}

func (b *Broker) PublishScoreboard(data comm.ScoreboardData, socketId string) {
	b.publish("scoreboard", data, socketId, 0)
}

func (b *Broker) PublishError(reason string, socketId string) {
	b.publish("error-response", comm.ErrorData{Reason: reason}, socketId, 0)
}

func (b *Broker) publish(msgType string, payload interface{}, socketId string, gameId int64) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("error [%s] unable to marshal payload: %s", msgType, err)
		return
	}

	msg := &comm.WSMessage{
		Type:     msgType,
		Data:     data,
		SocketId: socketId,
		GameId:   gameId,
	}

	out, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	if err := b.Conn.Publish(comm.SubjectGateway, out); err != nil {
		log.Errorf("Error publishing to topic %s: %s", comm.SubjectGateway, err)
	}
}

// SubscribeGateway consumes requests relayed by the socket gateway.
func (b *Broker) SubscribeGateway(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessage)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// SubscribeEvents consumes the outbound event stream for echo merging and
// sweeper notifications.
func (b *Broker) SubscribeEvents(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleEvent)
	if err != nil {
		return nil, err
	}

	return sub, nil
}
