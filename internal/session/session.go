// Package session stores browser session values in Redis hashes keyed by
// an opaque cookie id.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// CookieName is the cookie carrying the session id.
const CookieName = "hasjob_session"

const keyPrefix = "session:"

// Session holds the values the view layer reads on every request.
type Session struct {
	Kiosk      bool   // kiosk mode hides campaigns
	Peopleflow string // return URL for the peopleflow kiosk app
	UserID     string // empty when anonymous
}

// Store loads and saves sessions.
type Store struct {
	rdb redis.Cmdable
}

// NewStore returns a Store backed by rdb.
func NewStore(rdb redis.Cmdable) *Store {
	return &Store{rdb: rdb}
}

// NewID returns a random session id.
func NewID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Load returns the session for id. Unknown or empty ids yield an empty session.
func (s *Store) Load(ctx context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, nil
	}
	vals, err := s.rdb.HGetAll(ctx, keyPrefix+id).Result()
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	kiosk, _ := strconv.ParseBool(vals["kiosk"])
	return Session{
		Kiosk:      kiosk,
		Peopleflow: vals["peopleflow"],
		UserID:     vals["user_id"],
	}, nil
}

// Save replaces the session for id and sets it to expire after ttl.
func (s *Store) Save(ctx context.Context, id string, sess Session, ttl time.Duration) error {
	key := keyPrefix + id
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key,
			"kiosk", strconv.FormatBool(sess.Kiosk),
			"peopleflow", sess.Peopleflow,
			"user_id", sess.UserID,
		)
		p.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
