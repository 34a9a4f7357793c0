package ws

import (
	"encoding/json"
	"sync"

	"github.com/bsparty/bullshit-services/internal/comm"
	"github.com/bsparty/bullshit-services/internal/socketsvc/broker"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Ws tracks open client connections and which game room each socket joined,
// and relays everything else to the round service over NATS.
type Ws struct {
	connMap sync.Map // socketId -> *websocket.Conn
	gameMap sync.Map // socketId -> game id (int64)
	Broker  *broker.Broker
}

func NewWs() *Ws {
	return &Ws{}
}

// SocketMessage handles an incoming message from a web client. join-game is
// resolved locally (room membership lives in the gateway); everything else
// is stamped with the socket id and relayed to the round service.
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case "join-game":
		s.handleJoinGame(socketId, message)
	case "get-round-state", "submit-answer", "submit-vote",
		"begin-reading", "advance-reveal", "prev-reveal",
		"reveal-results", "get-scoreboard":
		s.relay(socketId, message)
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

func (s *Ws) handleJoinGame(socketId string, msg *comm.WSMessage) {
	var payload comm.JoinGame
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Errorf("Error: malformed join-game payload %s", err)
		return
	}
	if payload.GameId == 0 {
		log.Error("Invalid join-game payload: missing game id")
		return
	}

	s.StoreGame(socketId, payload.GameId)
	log.Infof("socket %s joined game %d", socketId, payload.GameId)

	// hand the fresh member the current round state right away
	state := &comm.WSMessage{Type: "get-round-state", SocketId: socketId}
	data, err := json.Marshal(comm.GetRoundState{GameId: payload.GameId})
	if err != nil {
		log.Errorf("Failed to marshal round state request: %v", err)
		return
	}
	state.Data = data
	s.publish(state)
}

func (s *Ws) relay(socketId string, msg *comm.WSMessage) {
	msg.SocketId = socketId
	s.publish(msg)
}

func (s *Ws) publish(msg *comm.WSMessage) {
	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Failed to marshal WSMessage for NATS: %v", err)
		return
	}

	if err := s.Broker.Publish(comm.SubjectRoundService, bytes); err != nil {
		log.Errorf("Failed to publish to NATS topic %s: %v", comm.SubjectRoundService, err)
	}
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, conn)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

func (s *Ws) StoreGame(socketId string, gameId int64) {
	s.gameMap.Store(socketId, gameId)
}

func (s *Ws) GetGame(socketId string) (int64, bool) {
	game, ok := s.gameMap.Load(socketId)
	if !ok {
		return 0, false
	}
	return game.(int64), true
}

// GetGameSockets lists every socket currently joined to a game room.
func (s *Ws) GetGameSockets(gameId int64) ([]string, bool) {
	var sockets []string
	found := false

	s.gameMap.Range(func(key, value interface{}) bool {
		if value.(int64) == gameId {
			sockets = append(sockets, key.(string))
			found = true
		}
		return true // continue iterating
	})

	return sockets, found
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
	s.gameMap.Delete(socketId)
}
