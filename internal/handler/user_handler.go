package handler

import (
	"context"
	"net/http"

	"cipher-chat/internal/domain/user"
	"cipher-chat/internal/services"
	"cipher-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserService interface {
	ListSidebarUsers(ctx context.Context, callerID uuid.UUID) ([]user.User, error)
	OnlineUsers(ctx context.Context) ([]string, error)
}

type UserHandler struct {
	service UserService
}

func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Sidebar handles GET /api/messages/users.
func (h *UserHandler) Sidebar(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	items, err := h.service.ListSidebarUsers(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.SidebarUsersResponse{
		Users: httpdto.FromUserSlice(items),
	}))
}

func (h *UserHandler) Online(c *gin.Context) {
	ids, err := h.service.OnlineUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.OnlineUsersResponse{UserIDs: ids}))
}
