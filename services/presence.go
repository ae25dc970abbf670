package services

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Presence windows. A user counts as online while their last heartbeat is
// newer than presenceWindow.
const (
	presenceKey    = "presence:online"
	presenceWindow = 5 * time.Minute
)

// PresenceService tracks who is currently on the platform, backed by a
// Redis sorted set scored by last-seen unix time.
type PresenceService struct {
	Redis *redis.Client
	now   func() time.Time
}

func NewPresenceService(rdb *redis.Client) *PresenceService {
	return &PresenceService{Redis: rdb, now: time.Now}
}

// Heartbeat marks the user online and prunes entries past the window.
func (s *PresenceService) Heartbeat(ctx context.Context, userID string) error {
	now := s.now()
	pipe := s.Redis.Pipeline()
	pipe.ZAdd(ctx, presenceKey, redis.Z{Score: float64(now.Unix()), Member: userID})
	pipe.ZRemRangeByScore(ctx, presenceKey, "0", strconv.FormatInt(now.Add(-presenceWindow).Unix(), 10))
	_, err := pipe.Exec(ctx)
	return err
}

// OnlineUsers lists user IDs seen within the window.
func (s *PresenceService) OnlineUsers(ctx context.Context) ([]string, error) {
	min := strconv.FormatInt(s.now().Add(-presenceWindow).Unix(), 10)
	return s.Redis.ZRangeByScore(ctx, presenceKey, &redis.ZRangeBy{Min: min, Max: "+inf"}).Result()
}

// OnlineCount returns the number of users seen within the window.
func (s *PresenceService) OnlineCount(ctx context.Context) (int64, error) {
	min := strconv.FormatInt(s.now().Add(-presenceWindow).Unix(), 10)
	return s.Redis.ZCount(ctx, presenceKey, min, "+inf").Result()
}
