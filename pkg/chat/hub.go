package chat

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"streamrelay/pkg/envelope"
	"streamrelay/pkg/models"
	"streamrelay/pkg/repository"
)

// SendFunc delivers one encoded frame to an attached connection. It must not
// block; a failed delivery is logged and does not abort fan-out to the
// remaining connections.
type SendFunc func(data []byte) error

type opKind int

const (
	opRegister opKind = iota
	opUnregister
	opJoin
	opMessage
	opDisconnect
	opHistory
)

type command struct {
	op       opKind
	connID   string
	nickname string
	text     string
	author   json.RawMessage
	sink     SendFunc
	done     chan struct{}
	snapshot chan []*models.ChatEvent
}

// Hub is the single authoritative coordinator of chat state. Every
// state-mutating operation is funneled through one command channel and
// applied by the Run loop, so the order events enter the history buffer is
// exactly the order every connection observes them, no matter how many
// sessions submit concurrently.
type Hub struct {
	repo     repository.ChatRepository
	history  *History
	presence *Presence

	mu    sync.RWMutex
	sinks map[string]SendFunc

	commands chan command
	done     chan struct{}
	lastTS   time.Time
}

// New creates a hub persisting through repo and replaying up to historySize
// events to newly attached connections. Call Run to start processing.
func New(repo repository.ChatRepository, historySize int) *Hub {
	return &Hub{
		repo:     repo,
		history:  NewHistory(historySize),
		presence: NewPresence(),
		sinks:    make(map[string]SendFunc),
		commands: make(chan command, 64),
		done:     make(chan struct{}),
	}
}

// Run drains commands in arrival order until ctx is cancelled. It must run
// in its own goroutine; exactly one Run per hub.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-h.commands:
			h.apply(ctx, cmd)
		}
	}
}

func (h *Hub) apply(ctx context.Context, cmd command) {
	switch cmd.op {
	case opRegister:
		// The snapshot goes through the sink before it joins the fan-out
		// set, so the client always sees the catch-up frame before any
		// live event.
		env, err := envelope.New(envelope.TypeHistorySnapshot, h.history.Snapshot())
		if err == nil {
			data, _ := env.Marshal()
			if err := cmd.sink(data); err != nil {
				log.Printf("[HUB] snapshot to %s: %v", cmd.connID, err)
			}
		}
		h.mu.Lock()
		h.sinks[cmd.connID] = cmd.sink
		h.mu.Unlock()

	case opUnregister:
		h.mu.Lock()
		delete(h.sinks, cmd.connID)
		h.mu.Unlock()

	case opJoin:
		h.presence.Put(models.Participant{
			ConnID:   cmd.connID,
			Nickname: cmd.nickname,
			JoinedAt: time.Now().UTC(),
		})
		evt := h.newEvent(models.EventSystem, cmd.nickname+" joined", cmd.connID, nil)
		h.commit(ctx, evt)

	case opMessage:
		// Attribution is best effort: an unknown sender still gets relayed.
		evt := h.newEvent(models.EventUser, cmd.text, cmd.connID, cmd.author)
		h.commit(ctx, evt)

	case opDisconnect:
		participant, ok := h.presence.Get(cmd.connID)
		if !ok {
			break
		}
		evt := h.newEvent(models.EventSystem, participant.Nickname+" left", cmd.connID, nil)
		h.commit(ctx, evt)
		h.presence.Remove(cmd.connID)

	case opHistory:
		cmd.snapshot <- h.history.Snapshot()
	}

	if cmd.done != nil {
		close(cmd.done)
	}
}

// commit persists an event, appends it to history, and fans it out. A
// persistence failure is logged and the event is still delivered: chat
// availability wins over durability here.
func (h *Hub) commit(ctx context.Context, evt *models.ChatEvent) {
	if err := h.repo.Record(ctx, evt.Origin, evt.Text); err != nil {
		log.Printf("[HUB] record event from %s: %v", evt.Origin, err)
	}

	h.history.Append(evt)

	env, err := envelope.New(envelope.TypeEvent, evt)
	if err != nil {
		log.Printf("[HUB] encode event: %v", err)
		return
	}
	data, err := env.Marshal()
	if err != nil {
		log.Printf("[HUB] encode event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for connID, send := range h.sinks {
		if err := send(data); err != nil {
			log.Printf("[HUB] deliver to %s: %v", connID, err)
		}
	}
}

// newEvent stamps an event with a monotonically non-decreasing timestamp.
func (h *Hub) newEvent(kind models.EventKind, text, origin string, author json.RawMessage) *models.ChatEvent {
	ts := time.Now().UTC()
	if ts.Before(h.lastTS) {
		ts = h.lastTS
	}
	h.lastTS = ts
	return &models.ChatEvent{
		Kind:      kind,
		Text:      text,
		Origin:    origin,
		Timestamp: ts,
		Author:    author,
	}
}

// submit enqueues a command and waits for the run loop to apply it. After
// the hub stops, calls become no-ops instead of blocking forever.
func (h *Hub) submit(cmd command) {
	cmd.done = make(chan struct{})
	select {
	case h.commands <- cmd:
	case <-h.done:
		return
	}
	select {
	case <-cmd.done:
	case <-h.done:
	}
}

// Register adds a fan-out target and replays the current history to it.
// Registration is independent of presence: a connection receives events
// before it ever identifies itself.
func (h *Hub) Register(connID string, send SendFunc) {
	h.submit(command{op: opRegister, connID: connID, sink: send})
}

func (h *Hub) Unregister(connID string) {
	h.submit(command{op: opUnregister, connID: connID})
}

// Join registers the participant and announces it to everyone, including
// the joining connection itself.
func (h *Hub) Join(connID, nickname string) {
	h.submit(command{op: opJoin, connID: connID, nickname: nickname})
}

// Message relays a user message. The author payload is passed through
// untouched.
func (h *Hub) Message(connID, text string, author json.RawMessage) {
	h.submit(command{op: opMessage, connID: connID, text: text, author: author})
}

// Disconnect announces the departure and drops the presence entry. It is
// idempotent: unknown connection ids are ignored.
func (h *Hub) Disconnect(connID string) {
	h.submit(command{op: opDisconnect, connID: connID})
}

// History returns the current buffer contents, oldest-first, as observed by
// the run loop between events.
func (h *Hub) History() []*models.ChatEvent {
	reply := make(chan []*models.ChatEvent, 1)
	h.submit(command{op: opHistory, snapshot: reply})
	select {
	case events := <-reply:
		return events
	default:
		return nil
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sinks)
}

func (h *Hub) ParticipantCount() int {
	return h.presence.Count()
}

// Participant looks up the presence entry for a connection id.
func (h *Hub) Participant(connID string) (models.Participant, bool) {
	return h.presence.Get(connID)
}
