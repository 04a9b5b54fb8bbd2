package handler

import (
	"cipher-chat/internal/transport/httpdto"
	chat_errors "cipher-chat/pkg/errors"
	"cipher-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError writes the status and code mapped from err. Internal errors
// are logged and their detail withheld from the client.
func respondError(c *gin.Context, err error) {
	status, code := chat_errors.HTTPStatus(err)
	msg := err.Error()
	if status >= 500 {
		logger.GetGlobalLogger().Error(c.Request.Context(), "request failed",
			zap.String("path", c.FullPath()), zap.Error(err))
		if code == "INTERNAL_ERROR" {
			msg = "internal error"
		}
	}
	c.JSON(status, httpdto.NewErrorResponse(msg, code))
}
