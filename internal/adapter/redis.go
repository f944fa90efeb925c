package adapter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

func InitRedisClient(addr string, password string) error {
	if addr == "" {
		return errors.New("Redis host is empty")
	}

	var initError error
	redisOnce.Do(func() {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       0,
		})

		if _, err := client.Ping(context.Background()).Result(); err != nil {
			initError = fmt.Errorf("failed to connect to Redis: %v", err)
			return
		}

		redisClient = client
	})

	return initError
}

func GetRedisClient() (*redis.Client, error) {
	if redisClient == nil {
		return nil, errors.New("redis client is not initialized. call InitRedisClient first")
	}
	return redisClient, nil
}
