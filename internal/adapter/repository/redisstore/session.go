package redisstore

import (
	"context"
	"errors"
	"time"

	"ownbank-account-service/internal/domain/auth"

	"github.com/redis/go-redis/v9"
)

var _ auth.SessionStore = (*SessionStore)(nil)

const revokedPrefix = "session:revoked:"

// SessionStore keeps revoked token ids until their natural expiry.
type SessionStore struct {
	rdb redis.UniversalClient
	now func() time.Time
}

func NewSessionStore(rdb redis.UniversalClient) *SessionStore {
	return &SessionStore{rdb: rdb, now: time.Now}
}

func (s *SessionStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		// already expired, nothing to remember
		return nil
	}
	return s.rdb.Set(ctx, revokedPrefix+tokenID, 1, ttl).Err()
}

func (s *SessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := s.rdb.Get(ctx, revokedPrefix+tokenID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
