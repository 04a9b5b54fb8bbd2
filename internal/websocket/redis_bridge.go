package websocket

import (
	"context"

	"cipher-chat/internal/events"
)

// BridgePatterns are the pub/sub patterns a bridge listens on.
var BridgePatterns = []string{events.ChannelPrefixUser + "*", events.ChannelBroadcast}

// RedisBridge relays pub/sub events to the connections held by this process.
type RedisBridge struct {
	subscriber events.Subscriber
	hub        *Hub
}

func NewRedisBridge(subscriber events.Subscriber, hub *Hub) *RedisBridge {
	return &RedisBridge{subscriber: subscriber, hub: hub}
}

func (b *RedisBridge) Run(ctx context.Context) error {
	return b.subscriber.Subscribe(ctx, BridgePatterns, b.Route)
}

// Route delivers one pub/sub message to the matching local connections.
func (b *RedisBridge) Route(channel string, payload []byte) {
	if channel == events.ChannelBroadcast {
		b.hub.BroadcastAll(payload)
		return
	}
	if userID, ok := events.UserIDFromChannel(channel); ok {
		b.hub.BroadcastToUser(userID, payload)
	}
}
