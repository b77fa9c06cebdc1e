package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

var ctx = context.Background()

type Redis struct {
	client *redis.Client
}

func NewRedis(addr string, password string, db int) (KVStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", addr, err)
	}

	return Redis{client: rdb}, nil
}

func (r Redis) SetEx(key string, value interface{}, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r Redis) Get(key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r Redis) Delete(key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r Redis) RPush(key string, values ...interface{}) error {
	return r.client.RPush(ctx, key, values...).Err()
}

func (r Redis) LRange(key string, start, stop int64) ([]string, error) {
	val, err := r.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (r Redis) LRem(key string, count int64, value interface{}) error {
	return r.client.LRem(ctx, key, count, value).Err()
}

func (r Redis) HSet(key, field string, value interface{}) error {
	return r.client.HSet(ctx, key, field, value).Err()
}

func (r Redis) HGetAll(key string) (map[string]string, error) {
	val, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (r Redis) HDel(key string, fields ...string) error {
	return r.client.HDel(ctx, key, fields...).Err()
}

func (r Redis) Close() error {
	return r.client.Close()
}
