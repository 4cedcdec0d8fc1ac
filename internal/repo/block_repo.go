package repo

import (
	"errors"
	"sync"

	"token-backend/db"
)

// MemoryCursor 扫块进度，进程重启后从配置的起始块重新扫描
type MemoryCursor struct {
	mu    sync.Mutex
	last  uint64
	saved bool
}

func NewMemoryCursor() *MemoryCursor {
	return &MemoryCursor{}
}

func (c *MemoryCursor) Last() (uint64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.saved, nil
}

// Save only moves forward.
func (c *MemoryCursor) Save(b uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.saved || b > c.last {
		c.last = b
		c.saved = true
	}
	return nil
}

// RedisCursor keeps the scan position in redis under one key per token.
type RedisCursor struct {
	key string
}

func NewRedisCursor(tokenAddress string) *RedisCursor {
	return &RedisCursor{key: "token-backend:scan_cursor:" + tokenAddress}
}

func (c *RedisCursor) Last() (uint64, bool, error) {
	v, err := db.RedisGetInt64(c.key)
	if errors.Is(err, db.ErrNil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return uint64(v), true, nil
}

func (c *RedisCursor) Save(b uint64) error {
	last, ok, err := c.Last()
	if err != nil {
		return err
	}
	if ok && b <= last {
		return nil
	}
	return db.RedisSetInt64(c.key, int64(b))
}
