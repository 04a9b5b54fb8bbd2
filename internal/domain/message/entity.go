package message

import (
	"time"

	"github.com/google/uuid"
)

// Message represents the messages table. Text holds ciphertext while the
// message is at rest and plaintext once it has been decoded for delivery.
type Message struct {
	ID         uuid.UUID `json:"id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Text       *string   `json:"text"`
	Image      *string   `json:"image,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Participants returns the distinct users a message must be delivered to.
func (m Message) Participants() []uuid.UUID {
	if m.SenderID == m.ReceiverID {
		return []uuid.UUID{m.ReceiverID}
	}
	return []uuid.UUID{m.ReceiverID, m.SenderID}
}

// MapText returns a copy of m whose text, when present, is replaced by fn(text).
func (m Message) MapText(fn func(string) string) Message {
	if m.Text == nil {
		return m
	}
	mapped := fn(*m.Text)
	m.Text = &mapped
	return m
}

// ConversationQuery narrows a conversation history read.
type ConversationQuery struct {
	Before time.Time // zero means no upper bound
	Limit  int       // <= 0 means no limit
}
