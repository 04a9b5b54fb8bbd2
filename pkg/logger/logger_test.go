package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContext_AttachesRequestAndUser(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := &Logger{Logger: zap.New(core)}

	ctx := context.WithValue(context.Background(), RequestIdKey, "req-1")
	ctx = context.WithValue(ctx, UserIdKey, "user-1")
	l.Info(ctx, "message sent")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "req-1", fields["request_id"])
	require.Equal(t, "user-1", fields["user_id"])
}

func TestGetGlobalLogger_DefaultsToNop(t *testing.T) {
	SetGlobalLogger(nil)
	require.NotNil(t, GetGlobalLogger())
}
