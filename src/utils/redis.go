package utils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps the access-token blacklist and per-email login attempts.
// A nil client turns every call into a no-op (development mode).
type SessionStore struct {
	client      *redis.Client
	maxAttempts int
	cooldown    time.Duration
}

func NewSessionStore(client *redis.Client, maxAttempts int, cooldown time.Duration) *SessionStore {
	return &SessionStore{client: client, maxAttempts: maxAttempts, cooldown: cooldown}
}

func (s *SessionStore) Enabled() bool {
	return s != nil && s.client != nil
}

// BlacklistToken เพิ่ม access token เข้า blacklist (ใช้ตอน logout)
func (s *SessionStore) BlacklistToken(ctx context.Context, tokenID string, expiresIn time.Duration) error {
	if !s.Enabled() || expiresIn <= 0 {
		return nil
	}
	key := fmt.Sprintf("blacklist:%s", tokenID)
	if err := s.client.Set(ctx, key, "1", expiresIn).Err(); err != nil {
		return errors.Wrap(err, "failed to blacklist token")
	}
	return nil
}

// IsTokenBlacklisted ตรวจสอบว่า token อยู่ใน blacklist หรือไม่
func (s *SessionStore) IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	key := fmt.Sprintf("blacklist:%s", tokenID)
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, errors.Wrap(err, "failed to check blacklist")
	}
	return n > 0, nil
}

func loginKey(email string) string {
	return fmt.Sprintf("login_attempts:%s", strings.ToLower(strings.TrimSpace(email)))
}

// LoginAllowed reports whether email is still under the failed-attempt limit.
func (s *SessionStore) LoginAllowed(ctx context.Context, email string) (bool, error) {
	if !s.Enabled() || s.maxAttempts <= 0 {
		return true, nil
	}
	n, err := s.client.Get(ctx, loginKey(email)).Int()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "failed to read login attempts")
	}
	return n < s.maxAttempts, nil
}

// RecordLoginFailure counts a failed attempt; the window starts at the first failure.
func (s *SessionStore) RecordLoginFailure(ctx context.Context, email string) error {
	if !s.Enabled() {
		return nil
	}
	key := loginKey(email)
	pipe := s.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, s.cooldown)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to record login attempt")
	}
	return nil
}

func (s *SessionStore) ResetLoginFailures(ctx context.Context, email string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.client.Del(ctx, loginKey(email)).Err(); err != nil {
		return errors.Wrap(err, "failed to reset login attempts")
	}
	return nil
}
