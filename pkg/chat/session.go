package chat

import (
	"errors"
	"log"

	"github.com/gofiber/contrib/websocket"

	"streamrelay/pkg/envelope"
)

// sendBufferSize is how many outbound frames may queue per connection
// before deliveries to it start being dropped.
const sendBufferSize = 64

var errSendBufferFull = errors.New("send buffer full")

// Session adapts one live WebSocket connection to hub operations. It holds
// no chat logic of its own: inbound frames become hub calls, hub fan-out
// becomes outbound writes.
type Session struct {
	id   string
	conn *websocket.Conn
	hub  *Hub
	out  chan []byte
	done chan struct{}
}

func NewSession(id string, conn *websocket.Conn, hub *Hub) *Session {
	return &Session{
		id:   id,
		conn: conn,
		hub:  hub,
		out:  make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// Run attaches the session to the hub and services the connection until the
// transport closes. It blocks; the caller owns the connection's lifetime.
func (s *Session) Run() {
	go s.writePump()

	// Register replays history through deliver before any live event can
	// reach this connection.
	s.hub.Register(s.id, s.deliver)
	log.Printf("[CHAT] session connected id=%s total=%d", s.id, s.hub.ClientCount())

	s.readLoop()

	s.hub.Disconnect(s.id)
	s.hub.Unregister(s.id)
	close(s.done)
	log.Printf("[CHAT] session disconnected id=%s total=%d", s.id, s.hub.ClientCount())
}

func (s *Session) readLoop() {
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		env, err := envelope.Unmarshal(raw)
		if err != nil {
			s.reply(envelope.NewError(400, "invalid JSON"))
			continue
		}

		switch env.Type {
		case envelope.TypePing:
			pong, _ := envelope.New(envelope.TypePong, nil)
			s.reply(pong)

		case envelope.TypeIdentify:
			payload, err := envelope.ParseData[envelope.IdentifyPayload](env)
			if err != nil || payload.Nickname == "" {
				s.reply(envelope.NewError(400, "nickname is required"))
				continue
			}
			s.hub.Join(s.id, payload.Nickname)

		case envelope.TypeMessage:
			payload, err := envelope.ParseData[envelope.MessagePayload](env)
			if err != nil {
				s.reply(envelope.NewError(400, "invalid message payload"))
				continue
			}
			// The raw payload rides along as author metadata, unvalidated.
			s.hub.Message(s.id, payload.Text, env.Payload)

		default:
			s.reply(envelope.NewError(404, "unknown frame type: "+env.Type))
		}
	}
}

// deliver is the hub-facing sink. It never blocks the hub loop: when the
// buffer is full the frame is dropped for this connection only.
func (s *Session) deliver(data []byte) error {
	select {
	case s.out <- data:
		return nil
	default:
		return errSendBufferFull
	}
}

func (s *Session) reply(env envelope.Envelope) {
	data, err := env.Marshal()
	if err != nil {
		return
	}
	if err := s.deliver(data); err != nil {
		log.Printf("[CHAT] reply to %s: %v", s.id, err)
	}
}

// writePump is the sole writer on the connection.
func (s *Session) writePump() {
	for {
		select {
		case <-s.done:
			return
		case data := <-s.out:
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("[CHAT] write to %s: %v", s.id, err)
				return
			}
		}
	}
}
