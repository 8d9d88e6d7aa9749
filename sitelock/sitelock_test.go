package sitelock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/juju/clock/testclock"
	"github.com/redis/go-redis/v9"
	check "gopkg.in/check.v1"
)

var (
	_ = check.Suite(new(localLockTestSuite))
	_ = check.Suite(new(redisLockTestSuite))
)

func Test(t *testing.T) {
	check.TestingT(t)
}

type localLockTestSuite struct{}

func (s *localLockTestSuite) TestLockIsExclusivePerSite(c *check.C) {
	assertOnExclusiveLock(c, NewLocal())
}

func (s *localLockTestSuite) TestUnlockIsIdempotent(c *check.C) {
	l := NewLocal()

	lockCtx, unlock, err := l.Lock(context.TODO(), 1)
	c.Assert(err, check.IsNil)
	c.Assert(lockCtx.Err(), check.IsNil)
	c.Assert(unlock(), check.IsNil)
	c.Assert(lockCtx.Err(), check.Equals, context.Canceled)
	c.Assert(unlock(), check.IsNil)

	_, unlock, err = l.Lock(context.TODO(), 1)
	c.Assert(err, check.IsNil)
	c.Assert(unlock(), check.IsNil)
}

func (s *localLockTestSuite) TestNopNeverBlocks(c *check.C) {
	var l Locker = Nop{}

	for i := 0; i < 3; i++ {
		_, unlock, err := l.Lock(context.TODO(), 1)
		c.Assert(err, check.IsNil)
		defer func() { c.Assert(unlock(), check.IsNil) }()
	}
}

type redisLockTestSuite struct {
	mr     *miniredis.Miniredis
	client *redis.Client
}

func (s *redisLockTestSuite) SetUpTest(c *check.C) {
	mr, err := miniredis.Run()
	c.Assert(err, check.IsNil)

	s.mr = mr
	s.client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func (s *redisLockTestSuite) TearDownTest(c *check.C) {
	_ = s.client.Close()
	s.mr.Close()
}

func (s *redisLockTestSuite) newLocker(c *check.C) *Redis {
	return s.newLockerWithClock(c, nil)
}

func (s *redisLockTestSuite) newLockerWithClock(c *check.C, clk *testclock.Clock) *Redis {
	cfg := RedisConfig{
		Client:        s.client,
		TTL:           time.Minute,
		RetryInterval: 10 * time.Millisecond,
	}
	if clk != nil {
		cfg.Clock = clk
	}

	l, err := NewRedis(cfg)
	c.Assert(err, check.IsNil)

	return l
}

func (s *redisLockTestSuite) TestConfigValidation(c *check.C) {
	_, err := NewRedis(RedisConfig{})
	c.Assert(err, check.ErrorMatches, "(?s).*redis client not provided.*invalid value for lock TTL.*")

	_, err = NewRedis(RedisConfig{Client: s.client, TTL: time.Second, RenewInterval: time.Second})
	c.Assert(err, check.ErrorMatches, "(?s).*renew interval must be shorter than the lock TTL.*")
}

func (s *redisLockTestSuite) TestLockIsExclusivePerSite(c *check.C) {
	assertOnExclusiveLock(c, s.newLocker(c))
}

func (s *redisLockTestSuite) TestLockKeyCarriesTTL(c *check.C) {
	_, unlock, err := s.newLocker(c).Lock(context.TODO(), 9)
	c.Assert(err, check.IsNil)

	c.Assert(s.mr.Exists("linkrank:sitelock:9"), check.Equals, true)
	c.Assert(s.mr.TTL("linkrank:sitelock:9"), check.Equals, time.Minute)

	c.Assert(unlock(), check.IsNil)
	c.Assert(s.mr.Exists("linkrank:sitelock:9"), check.Equals, false)
}

func (s *redisLockTestSuite) TestExpiredLockCanBeTakenOver(c *check.C) {
	l := s.newLocker(c)

	_, staleUnlock, err := l.Lock(context.TODO(), 3)
	c.Assert(err, check.IsNil)

	// The holder stalls past the TTL.
	s.mr.FastForward(2 * time.Minute)

	_, unlock, err := l.Lock(context.TODO(), 3)
	c.Assert(err, check.IsNil)

	// The stale holder must not release the new holder's lock.
	err = staleUnlock()
	c.Assert(errors.Is(err, ErrLockLost), check.Equals, true)
	c.Assert(s.mr.Exists("linkrank:sitelock:3"), check.Equals, true)

	c.Assert(unlock(), check.IsNil)
}

func (s *redisLockTestSuite) TestHeldLockIsRenewed(c *check.C) {
	clk := testclock.NewClock(time.Now())
	l := s.newLockerWithClock(c, clk)

	lockCtx, unlock, err := l.Lock(context.TODO(), 7)
	c.Assert(err, check.IsNil)

	s.mr.FastForward(40 * time.Second)

	// Fire the renewal, then wait for the keeper to schedule the next one.
	c.Assert(clk.WaitAdvance(20*time.Second, 5*time.Second, 1), check.IsNil)
	c.Assert(clk.WaitAdvance(0, 5*time.Second, 1), check.IsNil)
	c.Assert(s.mr.TTL("linkrank:sitelock:7"), check.Equals, time.Minute)

	// Without the renewal the key would have expired by now.
	s.mr.FastForward(40 * time.Second)
	c.Assert(s.mr.Exists("linkrank:sitelock:7"), check.Equals, true)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, _, err = s.newLocker(c).Lock(ctx, 7)
	c.Assert(errors.Is(err, context.DeadlineExceeded), check.Equals, true)

	c.Assert(lockCtx.Err(), check.IsNil)
	c.Assert(unlock(), check.IsNil)
	c.Assert(lockCtx.Err(), check.Equals, context.Canceled)
	c.Assert(s.mr.Exists("linkrank:sitelock:7"), check.Equals, false)
}

func (s *redisLockTestSuite) TestTakenOverLockCancelsStaleHolder(c *check.C) {
	clk := testclock.NewClock(time.Now())
	l := s.newLockerWithClock(c, clk)

	staleCtx, staleUnlock, err := l.Lock(context.TODO(), 7)
	c.Assert(err, check.IsNil)

	// The holder stalls past the TTL and another process takes over.
	s.mr.FastForward(2 * time.Minute)

	lockCtx, unlock, err := l.Lock(context.TODO(), 7)
	c.Assert(err, check.IsNil)

	// Both keepers renew: the stale one finds a foreign token.
	c.Assert(clk.WaitAdvance(20*time.Second, 5*time.Second, 2), check.IsNil)

	select {
	case <-staleCtx.Done():
	case <-time.After(5 * time.Second):
		c.Fatal("stale holder context was not cancelled")
	}
	c.Assert(errors.Is(context.Cause(staleCtx), ErrLockLost), check.Equals, true)

	c.Assert(clk.WaitAdvance(0, 5*time.Second, 1), check.IsNil)
	c.Assert(lockCtx.Err(), check.IsNil)

	c.Assert(errors.Is(staleUnlock(), ErrLockLost), check.Equals, true)
	c.Assert(s.mr.Exists("linkrank:sitelock:7"), check.Equals, true)
	c.Assert(unlock(), check.IsNil)
}

func assertOnExclusiveLock(c *check.C, l Locker) {
	_, unlock, err := l.Lock(context.TODO(), 1)
	c.Assert(err, check.IsNil)

	// A different site is not affected.
	_, other, err := l.Lock(context.TODO(), 2)
	c.Assert(err, check.IsNil)
	c.Assert(other(), check.IsNil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	_, _, err = l.Lock(ctx, 1)
	cancel()
	c.Assert(errors.Is(err, context.DeadlineExceeded), check.Equals, true)

	acquired := make(chan Unlock, 1)
	go func() {
		_, next, err := l.Lock(context.Background(), 1)
		if err == nil {
			acquired <- next
		}
	}()

	select {
	case <-acquired:
		c.Fatal("lock acquired while held")
	case <-time.After(30 * time.Millisecond):
	}

	c.Assert(unlock(), check.IsNil)

	select {
	case next := <-acquired:
		c.Assert(next(), check.IsNil)
	case <-time.After(5 * time.Second):
		c.Fatal("timed out waiting for the lock to be released")
	}
}
