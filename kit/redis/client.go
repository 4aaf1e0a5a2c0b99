package redis

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	goRedis "github.com/redis/go-redis/v9"
)

// ErrUnavailable is returned by every operation while the connection
// state is not Ready. Callers decide whether that is fatal, the session
// layer treats it as a degradation signal.
var ErrUnavailable = errors.New("redis unavailable")

type ConnectionState int32

const (
	Disconnected ConnectionState = iota
	Connecting
	Ready
)

type Config struct {
	Address  string
	Password string
	DBSelect int

	// OperationTimeout bounds dials, reads and writes so a downed cache
	// cannot stall request latency. Sub-second by default.
	OperationTimeout time.Duration
	// ConnectMaxRetries caps the exponential backoff inside Connect.
	// Once exhausted the client stays Disconnected until Connect is
	// called again, there is no background reconnect loop.
	ConnectMaxRetries uint64
}

type Cache struct {
	redisClient *goRedis.Client
	cfg         Config

	state atomic.Int32
}

// CreateCache builds the client without touching the network. The owner
// calls Connect and Close explicitly.
func CreateCache(cfg Config) *Cache {
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 500 * time.Millisecond
	}
	if cfg.ConnectMaxRetries == 0 {
		cfg.ConnectMaxRetries = 5
	}
	redisClient := goRedis.NewClient(&goRedis.Options{
		Addr:            cfg.Address,
		Password:        cfg.Password,
		DB:              cfg.DBSelect,
		DialTimeout:     cfg.OperationTimeout,
		ReadTimeout:     cfg.OperationTimeout,
		WriteTimeout:    cfg.OperationTimeout,
		MaxRetries:      -1,
		PoolTimeout:     cfg.OperationTimeout,
		MinIdleConns:    0,
		ConnMaxIdleTime: time.Minute,
	})
	return &Cache{
		redisClient: redisClient,
		cfg:         cfg,
	}
}

func (c *Cache) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

func (c *Cache) Ready() bool {
	return c.State() == Ready
}

// Connect pings the server with bounded exponential backoff. On success
// the state becomes Ready, on exhaustion it returns to Disconnected and
// the error is reported to the caller.
func (c *Cache) Connect(ctx context.Context) error {
	c.state.Store(int32(Connecting))

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 100 * time.Millisecond
	expBackoff.MaxInterval = time.Second

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, c.cfg.OperationTimeout)
		defer cancel()
		return c.redisClient.Ping(pingCtx).Err()
	}
	if err := backoff.Retry(ping, backoff.WithContext(backoff.WithMaxRetries(expBackoff, c.cfg.ConnectMaxRetries), ctx)); err != nil {
		c.state.Store(int32(Disconnected))
		return errors.Wrap(ErrUnavailable, err.Error())
	}

	c.state.Store(int32(Ready))
	return nil
}

func (c *Cache) Close() error {
	c.state.Store(int32(Disconnected))
	return c.redisClient.Close()
}

func (c *Cache) markDisconnected() {
	c.state.Store(int32(Disconnected))
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !c.Ready() {
		return errors.Wrap(ErrUnavailable, "set skipped")
	}
	if err := c.redisClient.Set(ctx, key, value, expiration).Err(); err != nil {
		c.markDisconnected()
		return errors.Wrap(ErrUnavailable, err.Error())
	}
	return nil
}

func (c *Cache) Get(ctx context.Context, key string) (val string, exists bool, err error) {
	if !c.Ready() {
		return "", false, errors.Wrap(ErrUnavailable, "get skipped")
	}
	val, err = c.redisClient.Get(ctx, key).Result()
	if err == goRedis.Nil {
		return "", false, nil
	} else if err != nil {
		c.markDisconnected()
		return "", false, errors.Wrap(ErrUnavailable, err.Error())
	}
	return val, true, nil
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if !c.Ready() {
		return errors.Wrap(ErrUnavailable, "del skipped")
	}
	if err := c.redisClient.Del(ctx, keys...).Err(); err != nil {
		c.markDisconnected()
		return errors.Wrap(ErrUnavailable, err.Error())
	}
	return nil
}
