package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"cipher-chat/internal/events"
	"cipher-chat/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis keys for presence
const (
	presenceOnlineSet     = "presence:online"    // Set of online user IDs
	presenceHeartbeatSet  = "presence:heartbeat" // Sorted set of user ID -> last heartbeat (unix)
	connectionsKeyPattern = "connections:%s"     // Hash of client id -> connected_at per user
)

// PresenceStore tracks which users hold at least one live websocket
// connection. It is the lookup the message pipeline uses to decide whether a
// user can be reached in real time.
type PresenceStore struct {
	client    *goredis.Client
	publisher events.Publisher
	ttl       time.Duration
	now       func() time.Time
}

// NewPresenceStore creates a new presence store
func NewPresenceStore(client *goredis.Client, publisher events.Publisher, ttl time.Duration) *PresenceStore {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &PresenceStore{
		client:    client,
		publisher: publisher,
		ttl:       ttl,
		now:       time.Now,
	}
}

// drops one connection and, if it was the last, the user's online entry.
// Returns 1 when the user went offline.
var disconnectScript = goredis.NewScript(`
	redis.call('HDEL', KEYS[1], ARGV[1])
	if redis.call('HLEN', KEYS[1]) > 0 then
		return 0
	end
	redis.call('SREM', KEYS[2], ARGV[2])
	redis.call('ZREM', KEYS[3], ARGV[2])
	return 1
`)

// removes a user whose heartbeat is at or before ARGV[2] and whose
// connection hash has expired. Returns 1 when the user was removed.
var sweepScript = goredis.NewScript(`
	local score = redis.call('ZSCORE', KEYS[3], ARGV[1])
	if score and tonumber(score) > tonumber(ARGV[2]) then
		return 0
	end
	if redis.call('EXISTS', KEYS[1]) == 1 then
		return 0
	end
	redis.call('SREM', KEYS[2], ARGV[1])
	redis.call('ZREM', KEYS[3], ARGV[1])
	return 1
`)

func connectionsKey(userID string) string {
	return fmt.Sprintf(connectionsKeyPattern, userID)
}

// Connect records a websocket connection for userID and marks the user online.
func (p *PresenceStore) Connect(ctx context.Context, userID, clientID string) error {
	key := connectionsKey(userID)
	now := p.now()

	_, err := p.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, key, clientID, now.UTC().Format(time.RFC3339))
		pipe.Expire(ctx, key, p.ttl)
		pipe.SAdd(ctx, presenceOnlineSet, userID)
		pipe.ZAdd(ctx, presenceHeartbeatSet, goredis.Z{Score: float64(now.Unix()), Member: userID})
		return nil
	})
	if err != nil {
		return err
	}

	return p.publishOnlineUsers(ctx)
}

// Disconnect drops one connection; the user goes offline with the last one.
func (p *PresenceStore) Disconnect(ctx context.Context, userID, clientID string) error {
	keys := []string{connectionsKey(userID), presenceOnlineSet, presenceHeartbeatSet}
	offline, err := disconnectScript.Run(ctx, p.client, keys, clientID, userID).Int64()
	if err != nil {
		return fmt.Errorf("presence disconnect failed: %w", err)
	}
	if offline == 0 {
		return nil
	}
	return p.publishOnlineUsers(ctx)
}

// Heartbeat keeps the connections of userID alive and records the time.
func (p *PresenceStore) Heartbeat(ctx context.Context, userID string) error {
	now := p.now()
	_, err := p.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Expire(ctx, connectionsKey(userID), p.ttl)
		pipe.ZAdd(ctx, presenceHeartbeatSet, goredis.Z{Score: float64(now.Unix()), Member: userID})
		return nil
	})
	return err
}

// CleanupStalePresence marks offline every user whose last heartbeat is
// older than the connection TTL and whose connections have expired, as
// happens when an instance dies without disconnecting its sockets.
func (p *PresenceStore) CleanupStalePresence(ctx context.Context) (int64, error) {
	threshold := strconv.FormatInt(p.now().Add(-p.ttl).Unix(), 10)

	stale, err := p.client.ZRangeByScore(ctx, presenceHeartbeatSet, &goredis.ZRangeBy{
		Min: "-inf",
		Max: threshold,
	}).Result()
	if err != nil {
		return 0, err
	}

	var removed int64
	for _, userID := range stale {
		keys := []string{connectionsKey(userID), presenceOnlineSet, presenceHeartbeatSet}
		n, err := sweepScript.Run(ctx, p.client, keys, userID, threshold).Int64()
		if err != nil {
			return removed, fmt.Errorf("presence sweep failed: %w", err)
		}
		removed += n
	}

	if removed > 0 {
		if err := p.publishOnlineUsers(ctx); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// RunCleanup sweeps stale presence every interval until ctx ends.
func (p *PresenceStore) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := p.CleanupStalePresence(ctx)
			if err != nil {
				logger.GetGlobalLogger().Warn(ctx, "presence cleanup failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.GetGlobalLogger().Info(ctx, "removed stale presence", zap.Int64("users", removed))
			}
		}
	}
}

// IsOnline checks if a user is online
func (p *PresenceStore) IsOnline(ctx context.Context, userID string) (bool, error) {
	return p.client.SIsMember(ctx, presenceOnlineSet, userID).Result()
}

// GetOnlineUsers returns all online user IDs, sorted.
func (p *PresenceStore) GetOnlineUsers(ctx context.Context) ([]string, error) {
	ids, err := p.client.SMembers(ctx, presenceOnlineSet).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

func (p *PresenceStore) publishOnlineUsers(ctx context.Context) error {
	if p.publisher == nil {
		return nil
	}

	ids, err := p.GetOnlineUsers(ctx)
	if err != nil {
		return err
	}

	data, err := events.Marshal(events.EventOnlineUsers, ids)
	if err != nil {
		return err
	}
	return p.publisher.Publish(ctx, events.ChannelBroadcast, data)
}
