package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Session is the server-side record behind an opaque bearer token.
type Session struct {
	UserID      uuid.UUID  `json:"user_id"`
	Role        string     `json:"role"`
	ManagerType *string    `json:"manager_type,omitempty"`
	LocationID  *uuid.UUID `json:"location_id,omitempty"`
}

type SessionRepository interface {
	Save(ctx context.Context, token string, s Session, ttl time.Duration) error
	// Find returns nil when the token is unknown or expired.
	Find(ctx context.Context, token string) (*Session, error)
	// Delete invalidates exactly the presented token; other sessions of the
	// same user stay valid.
	Delete(ctx context.Context, token string) error
}

type sessionRepo struct{ rdb *redis.Client }

func NewSessionRepository(rdb *redis.Client) SessionRepository { return &sessionRepo{rdb: rdb} }

const sessionKeyPrefix = "session:"

func (r *sessionRepo) Save(ctx context.Context, token string, s Session, ttl time.Duration) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, sessionKeyPrefix+token, payload, ttl).Err()
}

func (r *sessionRepo) Find(ctx context.Context, token string) (*Session, error) {
	payload, err := r.rdb.Get(ctx, sessionKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) Delete(ctx context.Context, token string) error {
	return r.rdb.Del(ctx, sessionKeyPrefix+token).Err()
}
