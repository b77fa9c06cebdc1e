package kvstore

import (
	"time"

	"github.com/go-redis/redis/v8"
)

// Nil is returned by Get when the key does not exist.
var Nil = redis.Nil

type KVStore interface {
	Get(key string) (string, error)
	SetEx(key string, value interface{}, ttl time.Duration) error
	Delete(key string) error
	RPush(key string, values ...interface{}) error
	LRange(key string, start, stop int64) ([]string, error)
	LRem(key string, count int64, value interface{}) error
	HSet(key, field string, value interface{}) error
	HGetAll(key string) (map[string]string, error)
	HDel(key string, fields ...string) error
}
