package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrTooManyAttempts = errors.New("too many attempts")

type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{
		redis: redisClient,
	}
}

func (r *RateLimiter) CheckLogin(ctx context.Context, email string) error {
	key := fmt.Sprintf("login_attempts:%s", email)

	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		return err
	}

	if count == 1 {
		r.redis.Expire(ctx, key, 15*time.Minute)
	}

	if count > 5 {
		return ErrTooManyAttempts
	}

	return nil
}
