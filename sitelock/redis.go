package sitelock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock key only while it still holds the token
// of the caller.
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

// renewScript extends the TTL of the lock key only while it still holds the
// token of the caller.
var renewScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("PEXPIRE", KEYS[1], ARGV[2])
	end
	return 0
`)

// RedisConfig encapsulates the settings for configuring a Redis locker.
type RedisConfig struct {
	// The redis client to use.
	Client redis.UniversalClient

	// The lifetime of an acquired lock. A holder that crashes releases
	// its lock once the TTL elapses.
	TTL time.Duration

	// The delay between acquisition attempts. If not specified, a value
	// of 100ms is used.
	RetryInterval time.Duration

	// The delay between TTL renewals of a held lock. If not specified, a
	// third of the TTL is used. It must be shorter than the TTL.
	RenewInterval time.Duration

	// The prefix of the lock keys. If not specified, "linkrank:sitelock:"
	// is used.
	KeyPrefix string

	// A clock instance for pacing acquisition attempts and renewals. If not
	// specified, the default wall-clock will be used instead.
	Clock clock.Clock
}

func (config *RedisConfig) validate() error {
	var err error

	if config.Client == nil {
		err = multierror.Append(err, fmt.Errorf("redis client not provided"))
	}

	if config.TTL <= 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for lock TTL"))
	}

	if config.RetryInterval <= 0 {
		config.RetryInterval = 100 * time.Millisecond
	}

	if config.RenewInterval <= 0 {
		config.RenewInterval = config.TTL / 3
	}

	if config.TTL > 0 && config.RenewInterval >= config.TTL {
		err = multierror.Append(err, fmt.Errorf("renew interval must be shorter than the lock TTL"))
	}

	if config.KeyPrefix == "" {
		config.KeyPrefix = "linkrank:sitelock:"
	}

	if config.Clock == nil {
		config.Clock = clock.WallClock
	}

	return err
}

// Static and compile-time check to ensure Redis implements the Locker
// interface.
var _ Locker = (*Redis)(nil)

// Redis is a Locker shared by every process connected to the same redis
// instance. Locks are keys set with NX and a TTL holding a random token.
type Redis struct {
	cfg RedisConfig
}

// NewRedis returns a Redis locker configured with cfg.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("redis site lock: config validation failed: %w", err)
	}

	return &Redis{cfg: cfg}, nil
}

// Lock implements Locker. It polls until the lock key can be set or ctx
// expires. While the lock is held its TTL is renewed every RenewInterval.
// A renewal that finds the key gone or owned by another holder cancels the
// returned context with ErrLockLost.
func (r *Redis) Lock(ctx context.Context, siteID int64) (context.Context, Unlock, error) {
	key := fmt.Sprintf("%s%d", r.cfg.KeyPrefix, siteID)
	token := uuid.NewString()

	for {
		acquired, err := r.cfg.Client.SetNX(ctx, key, token, r.cfg.TTL).Result()
		if err != nil {
			return nil, nil, fmt.Errorf("lock site %d: %w", siteID, err)
		}

		if acquired {
			break
		}

		select {
		case <-ctx.Done():
			return nil, nil, fmt.Errorf("lock site %d: %w", siteID, ctx.Err())
		case <-r.cfg.Clock.After(r.cfg.RetryInterval):
		}
	}

	var (
		lockCtx, cancel = context.WithCancelCause(ctx)
		stopCh          = make(chan struct{})
		doneCh          = make(chan struct{})
		once            sync.Once
		unlockErr       error
	)

	go func() {
		defer close(doneCh)
		r.keepAlive(key, token, siteID, stopCh, cancel)
	}()

	return lockCtx, func() error {
		once.Do(func() {
			close(stopCh)
			<-doneCh

			unlockErr = r.release(key, token, siteID)
			if unlockErr != nil {
				cancel(unlockErr)
			} else {
				cancel(nil)
			}
		})

		return unlockErr
	}, nil
}

// keepAlive renews the lock key until stopCh is closed or a renewal fails.
func (r *Redis) keepAlive(key, token string, siteID int64, stopCh <-chan struct{}, cancel context.CancelCauseFunc) {
	ttl := r.cfg.TTL.Milliseconds()

	for {
		select {
		case <-stopCh:
			return
		case <-r.cfg.Clock.After(r.cfg.RenewInterval):
		}

		ctx, cancelRenew := context.WithTimeout(context.Background(), r.cfg.RenewInterval)
		renewed, err := renewScript.Run(ctx, r.cfg.Client, []string{key}, token, ttl).Int()
		cancelRenew()

		switch {
		case err != nil:
			cancel(fmt.Errorf("renew lock of site %d: %w", siteID, err))

			return
		case renewed == 0:
			cancel(fmt.Errorf("renew lock of site %d: %w", siteID, ErrLockLost))

			return
		}
	}
}

func (r *Redis) release(key, token string, siteID int64) error {
	// The caller's context may already be done by the time the lock is
	// released.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	deleted, err := releaseScript.Run(ctx, r.cfg.Client, []string{key}, token).Int()
	if err != nil {
		return fmt.Errorf("unlock site %d: %w", siteID, err)
	}

	if deleted == 0 {
		return fmt.Errorf("unlock site %d: %w", siteID, ErrLockLost)
	}

	return nil
}
