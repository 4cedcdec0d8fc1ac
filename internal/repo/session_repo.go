package repo

import (
	"errors"
	"time"

	"token-backend/db"
	"token-backend/utils"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore 登录状态：username -> token
type SessionStore interface {
	Set(username, token string, ttl time.Duration) error
	Get(username string) (string, error)
	Delete(username string) error
}

type memorySession struct {
	token    string
	expireAt time.Time
}

type MemorySessionStore struct {
	sessions utils.Map[string, memorySession]
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{now: time.Now}
}

func (s *MemorySessionStore) Set(username, token string, ttl time.Duration) error {
	sess := memorySession{token: token}
	if ttl > 0 {
		sess.expireAt = s.now().Add(ttl)
	}
	s.sessions.Set(username, sess)
	return nil
}

func (s *MemorySessionStore) Get(username string) (string, error) {
	sess, ok := s.sessions.Get(username)
	if !ok {
		return "", ErrSessionNotFound
	}
	if !sess.expireAt.IsZero() && !s.now().Before(sess.expireAt) {
		s.sessions.Del(username)
		return "", ErrSessionNotFound
	}
	return sess.token, nil
}

func (s *MemorySessionStore) Delete(username string) error {
	s.sessions.Del(username)
	return nil
}

// RedisSessionStore 会话存 redis，过期由 redis 处理
type RedisSessionStore struct {
	prefix string
}

func NewRedisSessionStore() *RedisSessionStore {
	return &RedisSessionStore{prefix: "token-backend:session:"}
}

func (s *RedisSessionStore) Set(username, token string, ttl time.Duration) error {
	return db.RedisSetString(s.prefix+username, token, int(ttl/time.Second))
}

func (s *RedisSessionStore) Get(username string) (string, error) {
	token, err := db.RedisGetString(s.prefix + username)
	if errors.Is(err, db.ErrNil) {
		return "", ErrSessionNotFound
	}
	return token, err
}

func (s *RedisSessionStore) Delete(username string) error {
	_, err := db.RedisDelete(s.prefix + username)
	return err
}
