package cache

import (
	"context"
	"encoding/json"
	"time"

	"riddle-game/internal/leaderboard"

	"github.com/go-redis/redis/v8"
)

const (
	otpTTL         = 5 * time.Minute
	leaderboardTTL = 30 * time.Second
	leaderboardKey = "leaderboard"
)

// RedisCache owns the expiring OTP store and the cached leaderboard
// projection.
type RedisCache struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisCache(addr string) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{
		client: client,
		ctx:    context.Background(),
	}
}

// SetOTP stores a verification code for an email. One code per email; a new
// code replaces the previous one. Codes expire after five minutes.
func (c *RedisCache) SetOTP(email, code string) error {
	return c.client.Set(c.ctx, "otp:"+email, code, otpTTL).Err()
}

// GetOTP returns the stored code for an email, or "" when none exists or it
// has expired.
func (c *RedisCache) GetOTP(email string) (string, error) {
	code, err := c.client.Get(c.ctx, "otp:"+email).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return code, nil
}

// ClearOTP removes the stored code for an email after successful
// verification.
func (c *RedisCache) ClearOTP(email string) error {
	return c.client.Del(c.ctx, "otp:"+email).Err()
}

// SetLeaderboard caches a projected leaderboard. Short TTL; writers also
// invalidate on every unlock.
func (c *RedisCache) SetLeaderboard(entries []leaderboard.Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.client.Set(c.ctx, leaderboardKey, data, leaderboardTTL).Err()
}

// GetLeaderboard returns the cached projection, or an error on a miss.
func (c *RedisCache) GetLeaderboard() ([]leaderboard.Entry, error) {
	data, err := c.client.Get(c.ctx, leaderboardKey).Bytes()
	if err != nil {
		return nil, err
	}

	var entries []leaderboard.Entry
	err = json.Unmarshal(data, &entries)
	return entries, err
}

// InvalidateLeaderboard drops the cached projection so the next read
// recomputes it.
func (c *RedisCache) InvalidateLeaderboard() error {
	return c.client.Del(c.ctx, leaderboardKey).Err()
}
