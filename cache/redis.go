package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"VibeWake/config"
	"VibeWake/logger"

	"github.com/redis/go-redis/v9"
)

// Keys and channels, all under one prefix.
const (
	keyPrefix       = "vibewake:"
	firedKeyFormat  = keyPrefix + "fired:%s:%s"
	SessionKey      = keyPrefix + "session"
	SessionChannel  = keyPrefix + "session:events"
	firedMinuteForm = "200601021504"
)

// NewRedisClient connects and pings. Callers own Close.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("Connected to Redis", logger.String("addr", client.Options().Addr), logger.Int("db", cfg.RedisDB))
	return client, nil
}
