package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
	"github.com/HyperCol/taipo-fire-php-re/internal/store"
)

// SessionStore token -> session with expiry
type SessionStore interface {
	Save(ctx context.Context, s domain.Session) error
	// Get returns nil, nil for unknown or expired tokens.
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
	// Purge drops every session and returns how many were removed.
	Purge(ctx context.Context) (int, error)
}

// KVSessionStore stores sessions as JSON under safeboard:session:{token}.
// Backed by RedisKV in production and MemoryKV when Redis is off.
type KVSessionStore struct {
	kv  store.KV
	now func() time.Time
}

func NewKVSessionStore(kv store.KV) *KVSessionStore {
	return &KVSessionStore{kv: kv, now: time.Now}
}

var _ SessionStore = (*KVSessionStore)(nil)

func (s *KVSessionStore) Save(ctx context.Context, sess domain.Session) error {
	ttl := time.Duration(0)
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return fmt.Errorf("session already expired")
		}
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, store.SessionKey(sess.Token), string(b), ttl)
}

func (s *KVSessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := s.kv.Get(ctx, store.SessionKey(token))
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, nil
		}
		return nil, err
	}
	var sess domain.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		// unreadable entry, treat as logged out
		_ = s.kv.Del(ctx, store.SessionKey(token))
		return nil, nil
	}
	if sess.Expired(s.now()) {
		_ = s.kv.Del(ctx, store.SessionKey(token))
		return nil, nil
	}
	return &sess, nil
}

func (s *KVSessionStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.kv.Del(ctx, store.SessionKey(token))
}

func (s *KVSessionStore) Purge(ctx context.Context) (int, error) {
	keys, err := s.kv.ScanKeys(ctx, store.SessionKeyPattern)
	if err != nil {
		return 0, err
	}
	if err := s.kv.Del(ctx, keys...); err != nil {
		return 0, err
	}
	return len(keys), nil
}
