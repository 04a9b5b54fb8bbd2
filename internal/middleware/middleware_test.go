package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cipher-chat/internal/auth"
	"cipher-chat/internal/redis"
	"cipher-chat/internal/services"
	"cipher-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-secret"

func echoUser(c *gin.Context) {
	id, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.String(http.StatusInternalServerError, "no user")
		return
	}
	c.String(http.StatusOK, id.String())
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(auth.NewTokenVerifier(testSecret), "jwt"), echoUser)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	verifier := auth.NewTokenVerifier(testSecret)
	userID := uuid.New()
	token, err := verifier.Issue(userID, time.Minute)
	require.NoError(t, err)
	other, err := auth.NewTokenVerifier("other-secret").Issue(userID, time.Minute)
	require.NoError(t, err)

	r := newAuthRouter()

	t.Run("bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, userID.String(), w.Body.String())
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+other)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

type stubLimiter struct {
	result *redis.RateLimitResult
	err    error
}

func (s stubLimiter) AllowMessage(context.Context, string) (*redis.RateLimitResult, error) {
	return s.result, s.err
}

func TestMessageRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()

	run := func(limiter MessageLimiter) *httptest.ResponseRecorder {
		r := gin.New()
		r.POST("/send", func(c *gin.Context) {
			c.Request = c.Request.WithContext(services.WithUserContext(c.Request.Context(), userID))
			c.Next()
		}, MessageRateLimitMiddleware(limiter), func(c *gin.Context) { c.Status(http.StatusCreated) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/send", nil))
		return w
	}

	w := run(stubLimiter{result: &redis.RateLimitResult{Allowed: true, Remaining: 4, Limit: 5, ResetIn: 30 * time.Second}})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	require.Equal(t, "30", w.Header().Get("X-RateLimit-Reset"))

	w = run(stubLimiter{result: &redis.RateLimitResult{Allowed: false, Limit: 5}})
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	w = run(stubLimiter{err: errors.New("redis down")})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		id, _ := c.Request.Context().Value(logger.RequestIdKey).(string)
		c.String(http.StatusOK, id)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, w.Body.String())
	require.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "abc", w.Body.String())
}
