package websocket

import (
	"cipher-chat/pkg/logger"

	"go.uber.org/zap"
)

// connLogger provides structured logging for WebSocket events
type connLogger struct {
	logger *zap.Logger
}

func newConnLogger(log *logger.Logger) connLogger {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return connLogger{logger: log.Logger.With(zap.String("component", "websocket"))}
}

func (l connLogger) fields(event string, client *Client, extra []zap.Field) []zap.Field {
	return append([]zap.Field{
		zap.String("event", event),
		zap.String("user_id", client.UserID),
		zap.String("client_id", client.ID),
	}, extra...)
}

func (l connLogger) Info(event string, client *Client, fields ...zap.Field) {
	l.logger.Info("websocket_event", l.fields(event, client, fields)...)
}

func (l connLogger) Warn(event string, client *Client, err error, fields ...zap.Field) {
	l.logger.Warn("websocket_warning", l.fields(event, client, append(fields, zap.Error(err)))...)
}
