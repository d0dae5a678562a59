package database

import (
	"context"
	"fmt"

	"github.com/Aidos2201/ReelRivals/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ConnectRedis creates the Redis client used for catalog caching.
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	logrus.WithField("addr", cfg.RedisAddr).Info("Connected to Redis")
	return client, nil
}
