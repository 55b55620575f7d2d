package envelope

import (
	"encoding/json"
)

// Frame types exchanged over a chat WebSocket. Inbound frames come from the
// client (identify, message, ping); the rest are server-to-client.
const (
	TypeIdentify        = "identify"
	TypeMessage         = "message"
	TypePing            = "ping"
	TypePong            = "pong"
	TypeEvent           = "event"
	TypeHistorySnapshot = "history_snapshot"
	TypeError           = "error"
)

// Envelope is the JSON frame carried over the WebSocket in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   *ErrorPayload   `json:"error,omitempty"`
}

type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// IdentifyPayload is sent by a client to announce its nickname.
type IdentifyPayload struct {
	Nickname string `json:"nickname"`
}

// MessagePayload carries a user message. Senders may attach arbitrary extra
// fields; those travel as opaque author metadata and are never validated.
type MessagePayload struct {
	Text string `json:"text"`
}

func New(frameType string, payload interface{}) (Envelope, error) {
	e := Envelope{Type: frameType}
	if payload == nil {
		return e, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return e, err
	}
	e.Payload = raw
	return e, nil
}

func NewError(code int, message string) Envelope {
	return Envelope{
		Type:  TypeError,
		Error: &ErrorPayload{Code: code, Message: message},
	}
}

func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func Unmarshal(data []byte) (Envelope, error) {
	var e Envelope
	err := json.Unmarshal(data, &e)
	return e, err
}

// ParseData decodes an envelope payload into a concrete type.
func ParseData[T any](e Envelope) (T, error) {
	var v T
	err := json.Unmarshal(e.Payload, &v)
	return v, err
}
