// Package hub fans dashboard updates out to websocket clients through a
// single goroutine that owns the client set.
package hub

import "encoding/json"

// MessageType selects the websocket frame a message is written as.
type MessageType int

const (
	// TextMessage carries a JSON event.
	TextMessage MessageType = iota
	// BinaryMessage carries an encoded JPEG frame.
	BinaryMessage
)

// Message is one queued broadcast.
type Message struct {
	Type MessageType
	Data []byte
}

// EventKind names what a status event reports.
type EventKind string

const (
	// EventStatus carries the dashboard snapshot after a frame.
	EventStatus EventKind = "status"
	// EventLocked is sent once, when the reading latches on the target.
	EventLocked EventKind = "locked"
	// EventEnded carries the final snapshot after the session closed.
	EventEnded EventKind = "ended"
)

// Event is the JSON envelope written to status clients.
type Event struct {
	Kind EventKind      `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// NewEventMessage encodes v as the payload of a kind event.
func NewEventMessage(kind EventKind, v any) (Message, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return Message{}, err
	}
	data, err := json.Marshal(Event{Kind: kind, Data: payload})
	if err != nil {
		return Message{}, err
	}
	return Message{Type: TextMessage, Data: data}, nil
}

// NewBinaryMessage wraps an encoded frame.
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}
