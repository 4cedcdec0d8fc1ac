package db

import (
	"errors"
	"fmt"
	"time"

	"token-backend/config"
	"token-backend/log"

	"github.com/gomodule/redigo/redis"
)

// RedisConn 全局连接池，InitRedis 之后可用
var RedisConn *redis.Pool

// ErrNil is returned by the getters when the key does not exist.
var ErrNil = redis.ErrNil

// InitRedis 初始化Redis
func InitRedis(redisConf config.RedisConfig) (*redis.Pool, error) {
	log.Logger.Info("Init Redis")
	pool := &redis.Pool{
		MaxIdle:     redisConf.MaxIdle,   // 最大空闲连接数
		MaxActive:   redisConf.MaxActive, // 0 表示不限制
		Wait:        true,                // 连接数不足时阻塞等待
		IdleTimeout: time.Duration(redisConf.IdleTimeout) * time.Second,
		Dial: func() (redis.Conn, error) {
			c, err := redis.Dial("tcp", fmt.Sprintf("%s:%s", redisConf.Address, redisConf.Port))
			if err != nil {
				return nil, err
			}
			// 未设置密码时跳过 auth
			if redisConf.Password != "" {
				if _, err := c.Do("auth", redisConf.Password); err != nil {
					_ = c.Close()
					return nil, fmt.Errorf("redis auth err: %w", err)
				}
			}
			if _, err := c.Do("select", redisConf.Db); err != nil {
				_ = c.Close()
				return nil, fmt.Errorf("redis select db err: %w", err)
			}
			return c, nil
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("ping")
			return err
		},
	}

	// 获取一个连接测试一下，确保配置没写错
	conn := pool.Get()
	defer func() {
		_ = conn.Close()
	}()
	if _, err := conn.Do("ping"); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("redis init err: %w", err)
	}
	RedisConn = pool
	return pool, nil
}

func redisPool() (*redis.Pool, error) {
	if RedisConn == nil {
		return nil, errors.New("redis is not initialized")
	}
	return RedisConn, nil
}

// RedisSetString 设置key、value，aliveSeconds > 0 时设置过期秒数
func RedisSetString(key string, data string, aliveSeconds int) error {
	pool, err := redisPool()
	if err != nil {
		return err
	}
	conn := pool.Get()
	defer func() {
		_ = conn.Close()
	}()
	if aliveSeconds > 0 {
		_, err = redis.String(conn.Do("set", key, data, "EX", aliveSeconds))
	} else {
		_, err = redis.String(conn.Do("set", key, data))
	}
	return err
}

// RedisGetString 获取Key对应的字符串，不存在时返回 ErrNil
func RedisGetString(key string) (string, error) {
	pool, err := redisPool()
	if err != nil {
		return "", err
	}
	conn := pool.Get()
	defer func() {
		_ = conn.Close()
	}()
	return redis.String(conn.Do("get", key))
}

// RedisSetInt64 存储 64位整数
func RedisSetInt64(key string, data int64) error {
	pool, err := redisPool()
	if err != nil {
		return err
	}
	conn := pool.Get()
	defer func() {
		_ = conn.Close()
	}()
	_, err = conn.Do("set", key, data)
	return err
}

// RedisGetInt64 获取整数值，不存在时返回 ErrNil
func RedisGetInt64(key string) (int64, error) {
	pool, err := redisPool()
	if err != nil {
		return -1, err
	}
	conn := pool.Get()
	defer func() {
		_ = conn.Close()
	}()
	reply, err := redis.Int64(conn.Do("get", key))
	if err != nil {
		return -1, err
	}
	return reply, nil
}

// RedisDelete 删除Key
func RedisDelete(key string) (bool, error) {
	pool, err := redisPool()
	if err != nil {
		return false, err
	}
	conn := pool.Get()
	defer func() {
		_ = conn.Close()
	}()
	return redis.Bool(conn.Do("del", key))
}

// CloseRedis releases the pool on shutdown.
func CloseRedis() {
	if RedisConn != nil {
		_ = RedisConn.Close()
	}
}
