package handler

import (
	"context"
	"net/http"
	"time"

	"cipher-chat/internal/domain/message"
	"cipher-chat/internal/services"
	"cipher-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxConversationLimit = 500

type MessageService interface {
	GetConversation(ctx context.Context, callerID, otherID uuid.UUID, q message.ConversationQuery) ([]message.Message, error)
	SendMessage(ctx context.Context, in services.SendMessageInput) (message.Message, error)
}

type MessageHandler struct {
	service MessageService
}

func NewMessageHandler(service MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// List handles GET /api/messages/:id, the history between the caller and :id.
func (h *MessageHandler) List(c *gin.Context) {
	otherID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.ConversationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid query", "INVALID_REQUEST"))
		return
	}
	if req.Limit < 0 || req.Limit > maxConversationLimit {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid limit", "INVALID_REQUEST"))
		return
	}

	var before time.Time
	if req.Before != "" {
		before, err = time.Parse(time.RFC3339, req.Before)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid before", "INVALID_REQUEST"))
			return
		}
	}

	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	items, err := h.service.GetConversation(c.Request.Context(), userID, otherID, message.ConversationQuery{
		Before: before,
		Limit:  req.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ConversationResponse{Messages: items}))
}

// Send handles POST /api/messages/send/:id.
func (h *MessageHandler) Send(c *gin.Context) {
	receiverID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid receiver id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), services.SendMessageInput{
		SenderID:   userID,
		ReceiverID: receiverID,
		Text:       req.Text,
		Image:      req.Image,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(msg))
}

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(value)
}
