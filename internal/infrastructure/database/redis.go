package database

import (
	"github.com/redis/go-redis/v9"
)

// NewRedis dials the redis instance backing the visit counters and the
// realtime event channel.
func NewRedis(addr string, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
