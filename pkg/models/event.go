package models

import (
	"encoding/json"
	"time"
)

// EventKind distinguishes server-synthesized notices from user messages.
type EventKind string

const (
	EventSystem EventKind = "system"
	EventUser   EventKind = "user"
)

// ChatEvent is one recorded chat occurrence (join, message, or leave).
// Events are never mutated after construction; the same pointer is shared
// by the history buffer and every fan-out target.
type ChatEvent struct {
	Kind      EventKind       `json:"kind"`
	Text      string          `json:"text"`
	Origin    string          `json:"origin"`
	Timestamp time.Time       `json:"timestamp"`
	Author    json.RawMessage `json:"author,omitempty"`
}

// Participant is one connected identity, keyed by its connection id.
type Participant struct {
	ConnID   string    `json:"conn_id"`
	Nickname string    `json:"nickname"`
	JoinedAt time.Time `json:"joined_at"`
}
