package users

import (
	"context"
	"time"

	"github.com/siddontang/ledisdb/ledis"
)

// DefaultBanTTL bounds how long a cached ban outlives a change this process
// was never told about.
const DefaultBanTTL = 5 * time.Minute

type keyspace interface {
	SetEX(key []byte, duration int64, value []byte) error
	Del(keys ...[]byte) (int64, error)
	Exists(key []byte) (int64, error)
}

// Cached wraps a Store keeping "ban:<username>" keys in ledis, so the
// content-creation gate does not hit mongo for banned accounts. The store
// stays the source of truth: keys expire after ttl and are dropped when
// another process announces a change through Invalidations.
type Cached struct {
	Store
	db  keyspace
	ttl time.Duration
	bus Invalidations
}

// NewCached wraps s. With a nil db no keys are kept and ban changes are only
// announced to other processes.
func NewCached(s Store, db *ledis.DB, ttl time.Duration) *Cached {
	c := &Cached{Store: s, ttl: ttl}
	if db != nil {
		c.db = db
	}
	if c.ttl <= 0 {
		c.ttl = DefaultBanTTL
	}
	return c
}

// Share announces every ban change on bus.
func (c *Cached) Share(bus Invalidations) {
	c.bus = bus
}

// Listen drops the keys other processes announce until ctx is done.
func (c *Cached) Listen(ctx context.Context) error {
	if c.bus == nil {
		return nil
	}
	return c.bus.Subscribe(ctx, c.Forget)
}

// Forget drops the cached ban of username.
func (c *Cached) Forget(username string) {
	if c.db == nil {
		return
	}
	if _, err := c.db.Del(banKey(username)); err != nil {
		log.Warningf("ban cache delete failed	user=%s err=%v", username, err)
	}
}

func banKey(username string) []byte {
	return []byte("ban:" + username)
}

// SetBanned commits to the store first. Cache and announcement failures are
// only logged since the change is already persisted.
func (c *Cached) SetBanned(username string, banned bool, at time.Time) error {
	if err := c.Store.SetBanned(username, banned, at); err != nil {
		return err
	}
	if banned {
		c.remember(username, at)
	} else {
		c.Forget(username)
	}
	if c.bus == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.bus.Publish(ctx, username); err != nil {
		log.Errorf("could not announce ban change	user=%s err=%v", username, err)
	}
	return nil
}

// Banned answers from ledis when the key is present, otherwise from the
// store, remembering positive answers.
func (c *Cached) Banned(username string) (bool, error) {
	if c.db != nil {
		n, err := c.db.Exists(banKey(username))
		if err == nil && n == 1 {
			return true, nil
		}
		if err != nil {
			log.Warningf("ban cache lookup failed	user=%s err=%v", username, err)
		}
	}
	banned, err := c.Store.Banned(username)
	if err == nil && banned {
		c.remember(username, time.Now())
	}
	return banned, err
}

func (c *Cached) remember(username string, at time.Time) {
	if c.db == nil {
		return
	}
	secs := int64(c.ttl / time.Second)
	if secs < 1 {
		secs = 1
	}
	if err := c.db.SetEX(banKey(username), secs, []byte(at.Format(time.RFC3339))); err != nil {
		log.Warningf("ban cache write failed	user=%s err=%v", username, err)
	}
}
