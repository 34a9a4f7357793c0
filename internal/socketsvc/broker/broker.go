package broker

import (
	"encoding/json"

	"github.com/bsparty/bullshit-services/internal/comm"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

type Broker struct {
	Conn           *nats.Conn
	GetConnection  func(string) (*websocket.Conn, bool)
	GetGameSockets func(int64) ([]string, bool)
}

func NewBroker(conn *nats.Conn, fncGetConnection func(string) (*websocket.Conn, bool),
	fncGetGameSockets func(int64) ([]string, bool)) *Broker {
	return &Broker{
		Conn:           conn,
		GetConnection:  fncGetConnection,
		GetGameSockets: fncGetGameSockets,
	}
}

// consume messages from the round service
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// publish message to the round service
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

// handleMessages fans round-service messages out to sockets: addressed
// messages go to their one socket, room messages to every socket that
// joined the game.
func (b *Broker) handleMessages(msgNats *nats.Msg) {
	message := &comm.WSMessage{}
	err := json.Unmarshal(msgNats.Data, &message)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	switch message.Type {
	case "round-state", "submission-ack", "scoreboard", "error-response":
		b.sendMessage(message)
	case "round-phase", "submission-update", "reveal-cursor",
		"round-advanced", "game-over":
		b.broadcastToGame(message)
	default:
		log.Error("Unknown message")
	}
}

// send socket message to one web client
func (b *Broker) sendMessage(m *comm.WSMessage) {
	socketId := m.SocketId
	if conn, ok := b.GetConnection(socketId); ok {
		if err := conn.WriteJSON(m); err != nil {
			log.Println(err)
		}
	}
}

// send socket message to every client in the game room
func (b *Broker) broadcastToGame(m *comm.WSMessage) {
	sockets, ok := b.GetGameSockets(m.GameId)
	if !ok {
		return
	}
	for _, socketId := range sockets {
		if conn, ok := b.GetConnection(socketId); ok {
			if err := conn.WriteJSON(m); err != nil {
				log.Println(err)
			}
		}
	}
}
