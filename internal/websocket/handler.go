package websocket

import (
	"context"
	"net/http"
	"strings"
	"time"

	"cipher-chat/internal/auth"
	"cipher-chat/internal/transport/httpdto"
	"cipher-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Presence records connections so other users see who is online.
type Presence interface {
	Connect(ctx context.Context, userID, clientID string) error
	Disconnect(ctx context.Context, userID, clientID string) error
	Heartbeat(ctx context.Context, userID string) error
}

type Handler struct {
	verifier   *auth.TokenVerifier
	hub        *Hub
	presence   Presence
	cookieName string
	log        connLogger
}

// NewHandler builds the upgrade handler; presence may be nil.
func NewHandler(verifier *auth.TokenVerifier, hub *Hub, presence Presence, cookieName string, log *logger.Logger) *Handler {
	return &Handler{
		verifier:   verifier,
		hub:        hub,
		presence:   presence,
		cookieName: cookieName,
		log:        newConnLogger(log),
	}
}

func (h *Handler) Connect(c *gin.Context) {
	token := h.extractToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("missing token", "UNAUTHORIZED"))
		return
	}

	userID, err := h.verifier.UserID(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("invalid token", "UNAUTHORIZED"))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		return
	}

	client := NewClient(conn, userID.String())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	go client.WriteLoop(ctx)
	h.log.Info("connected", client)

	if h.presence != nil {
		if err := h.presence.Connect(ctx, client.UserID, client.ID); err != nil {
			h.log.Warn("presence_connect_failed", client, err)
		}
	}

	lastBeat := time.Now()
	client.ReadLoop(func() {
		if h.presence == nil || time.Since(lastBeat) < pongWait/2 {
			return
		}
		lastBeat = time.Now()
		if err := h.presence.Heartbeat(ctx, client.UserID); err != nil {
			h.log.Warn("presence_heartbeat_failed", client, err)
		}
	})

	h.hub.Unregister(client)
	if h.presence != nil {
		if err := h.presence.Disconnect(ctx, client.UserID, client.ID); err != nil {
			h.log.Warn("presence_disconnect_failed", client, err)
		}
	}
	h.log.Info("disconnected", client)
}

// extractToken reads the access token from the query string, the session
// cookie or a bearer Authorization header, in that order.
func (h *Handler) extractToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}

	if h.cookieName != "" {
		if cookie, err := c.Cookie(h.cookieName); err == nil && cookie != "" {
			return cookie
		}
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	return ""
}
