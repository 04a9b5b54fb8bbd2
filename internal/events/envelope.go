package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event names delivered to websocket clients.
const (
	EventNewMessage  = "newMessage"
	EventOnlineUsers = "getOnlineUsers"
)

type Envelope struct {
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Marshal wraps payload in an envelope and encodes it.
func Marshal(eventType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return json.Marshal(Envelope{
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	})
}
