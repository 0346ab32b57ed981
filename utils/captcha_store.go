package utils

import (
	"context"
	"time"

	"github.com/mojocn/base64Captcha"
)

// redisCaptchaStore implements base64Captcha.Store backed by Redis,
// so a captcha issued by one instance verifies on another.
type redisCaptchaStore struct {
	ttl time.Duration
}

// NewRedisCaptchaStore returns a Redis backed captcha store with the given answer TTL.
func NewRedisCaptchaStore(ttl time.Duration) base64Captcha.Store {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &redisCaptchaStore{ttl: ttl}
}

func (s *redisCaptchaStore) key(id string) string {
	return "captcha:" + id
}

// Set stores the captcha answer with TTL.
func (s *redisCaptchaStore) Set(id string, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return GetRedis().Set(ctx, s.key(id), value, s.ttl).Err()
}

// Get retrieves the answer and optionally clears it.
func (s *redisCaptchaStore) Get(id string, clear bool) string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	rc := GetRedis()
	if clear {
		v, err := rc.GetDel(ctx, s.key(id)).Result()
		if err != nil {
			return ""
		}
		return v
	}
	v, err := rc.Get(ctx, s.key(id)).Result()
	if err != nil {
		return ""
	}
	return v
}

// Verify compares answer and optionally clears it.
func (s *redisCaptchaStore) Verify(id, answer string, clear bool) bool {
	v := s.Get(id, clear)
	return v != "" && v == answer
}
