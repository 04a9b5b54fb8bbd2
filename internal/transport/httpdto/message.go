package httpdto

import (
	"cipher-chat/internal/domain/message"
)

// SendMessageRequest is used for POST /api/messages/send/:id. Image is a
// base64 payload, optionally as a data URL.
type SendMessageRequest struct {
	Text  *string `json:"text"`
	Image *string `json:"image"`
}

// ConversationRequest holds query parameters for GET /api/messages/:id
type ConversationRequest struct {
	Limit  int    `form:"limit"`
	Before string `form:"before"`
}

// ConversationResponse is returned when fetching a conversation
type ConversationResponse struct {
	Messages []message.Message `json:"messages"`
}
