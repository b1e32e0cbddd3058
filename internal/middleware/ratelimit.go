package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/HammerMeetNail/talksy/internal/logging"
)

var errNoRedis = errors.New("rate limiter has no redis client")

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(r *http.Request) string

// RateLimiter is a fixed-window counter kept in Redis.
type RateLimiter struct {
	redis    *redis.Client
	limit    int
	window   time.Duration
	prefix   string
	keyFunc  KeyFunc
	failOpen bool
}

func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration, prefix string, keyFunc KeyFunc, failOpen bool) *RateLimiter {
	if keyFunc == nil {
		keyFunc = (*ClientIP)(nil).Resolve
	}
	return &RateLimiter{
		redis:    redisClient,
		limit:    limit,
		window:   window,
		prefix:   prefix,
		keyFunc:  keyFunc,
		failOpen: failOpen,
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.prefix + rl.keyFunc(r)

		allowed, remaining, resetTime, err := rl.isAllowed(r.Context(), key)
		if err != nil {
			if rl.failOpen {
				next.ServeHTTP(w, r)
				return
			}
			logging.Error("Rate limiter unavailable", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			writeError(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime, 10))

		if !allowed {
			w.Header().Set("Retry-After", strconv.FormatInt(resetTime-time.Now().Unix(), 10))
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) isAllowed(ctx context.Context, key string) (allowed bool, remaining int, resetTime int64, err error) {
	if rl.redis == nil {
		return false, 0, 0, errNoRedis
	}

	windowStart := time.Now().Truncate(rl.window)
	windowEnd := windowStart.Add(rl.window)
	bucket := fmt.Sprintf("%s:%d", key, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, bucket)
	pipe.ExpireNX(ctx, bucket, rl.window)
	if _, err = pipe.Exec(ctx); err != nil {
		return false, 0, windowEnd.Unix(), err
	}

	count := int(incrCmd.Val())
	remaining = rl.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= rl.limit, remaining, windowEnd.Unix(), nil
}

// NewAuthRateLimiter guards signup and login. Stricter and per IP.
func NewAuthRateLimiter(redisClient *redis.Client, ips *ClientIP) *RateLimiter {
	return NewRateLimiter(redisClient, 5, time.Minute, "ratelimit:auth:", ips.Resolve, true)
}

// NewFriendRequestRateLimiter guards friend request writes per user.
func NewFriendRequestRateLimiter(redisClient *redis.Client, ips *ClientIP) *RateLimiter {
	return NewRateLimiter(redisClient, 30, time.Minute, "ratelimit:friend-requests:", ips.UserOrIPKey, true)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
