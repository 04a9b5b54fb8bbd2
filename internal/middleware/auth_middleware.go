package middleware

import (
	"net/http"
	"strings"

	"cipher-chat/internal/auth"
	"cipher-chat/internal/services"
	"cipher-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware verifies the access token from a bearer Authorization
// header, falling back to the session cookie, and stores the user id on the
// request context.
func AuthMiddleware(verifier *auth.TokenVerifier, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		if token == "" && cookieName != "" {
			token, _ = c.Cookie(cookieName)
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized - no token provided", "UNAUTHORIZED"))
			c.Abort()
			return
		}

		userID, err := verifier.UserID(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized - invalid token", "UNAUTHORIZED"))
			c.Abort()
			return
		}

		ctx := services.WithUserContext(c.Request.Context(), userID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
