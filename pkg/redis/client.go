package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Options selects the Redis server and bounds how long calls may hang.
type Options struct {
	Addr     string
	Password string
	DB       int
	// PingTimeout bounds the startup and health pings; zero means 3s.
	PingTimeout time.Duration
}

// Client is a go-redis client that also serves as a health probe.
type Client struct {
	*redis.Client
	pingTimeout time.Duration
	logger      *zap.Logger
}

// NewClient connects and pings once; the connection is closed again when the ping fails.
func NewClient(ctx context.Context, opts Options, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = 3 * time.Second
	}
	c := &Client{
		Client: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		pingTimeout: opts.PingTimeout,
		logger:      logger,
	}
	if err := c.Ping(ctx); err != nil {
		_ = c.Client.Close()
		return nil, err
	}
	logger.Info("redis connected", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return c, nil
}

// Ping checks the server within the configured timeout.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.pingTimeout)
	defer cancel()
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
