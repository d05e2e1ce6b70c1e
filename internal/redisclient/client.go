package redisclient

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "userhub:"

// Client owns the Redis connection and the namespace every userhub key lives under.
type Client struct {
	redisdb *redis.Client
	prefix  string
}

type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string // defaults to DefaultKeyPrefix
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}

	return &Client{redisdb: redisdb, prefix: prefix}
}

// Namespace returns the key prefix for one feature, e.g. "userhub:ratelimit:".
func (c *Client) Namespace(feature string) string {
	return c.prefix + feature + ":"
}

// Ping backs the readiness check.
func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.redisdb.Close()
}

// Cmdable is the command surface handed to stores built on this client.
func (c *Client) Cmdable() redis.Cmdable {
	return c.redisdb
}
