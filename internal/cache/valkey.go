// Package cache provides the Valkey (Redis-compatible) client and the
// response cache in front of the public site endpoints.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// dialTimeout bounds connecting and the initial ping.
const dialTimeout = 5 * time.Second

// Options locates a Valkey server. DB selects the logical database; the
// server uses 0 and the test suites use 15.
type Options struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr joins host and port, bracketing IPv6 literals.
func (o Options) Addr() string {
	return net.JoinHostPort(o.Host, o.Port)
}

// Connect creates a client for opts and returns it once a ping succeeds.
// The client is shared by the session backend and the site cache.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr(),
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping %s: %w", opts.Addr(), err)
	}

	slog.Info("valkey connected", "addr", opts.Addr(), "db", opts.DB)
	return client, nil
}
