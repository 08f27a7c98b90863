package deps

import (
	"context"
	"fmt"

	"github.com/tryanzu/overflow/board/audit"
	"github.com/tryanzu/overflow/board/collections"
	"github.com/tryanzu/overflow/board/content"
	"github.com/tryanzu/overflow/board/flags"
	"github.com/tryanzu/overflow/board/users"
)

type indexed interface {
	EnsureIndexes() error
}

// IgniteStores picks the store implementations for the configured driver.
func IgniteStores(container Deps) (Deps, error) {
	var s Stores
	switch driver := container.Config().Database.Driver; driver {
	case "memory":
		s = Stores{
			Posts:       content.NewMemory(),
			Flags:       flags.NewMemory(),
			Users:       users.NewMemory(),
			Collections: collections.NewMemory(),
			Audit:       audit.NewMemory(),
		}
		log.Warning("using in-memory stores, nothing will be persisted")
	case "mongo":
		posts := content.NewMongo(container)
		ledger := flags.NewMongo(container)
		people := users.NewMongo(container)
		cols := collections.NewMongo(container)
		for _, store := range []indexed{posts, ledger, people, cols} {
			if err := store.EnsureIndexes(); err != nil {
				return container, err
			}
		}
		s = Stores{
			Posts:       posts,
			Flags:       ledger,
			Users:       people,
			Collections: cols,
			Audit:       audit.NewMongo(container),
		}
	default:
		return container, fmt.Errorf("unknown database driver %q", driver)
	}
	s.Users = banCache(&container, s.Users)
	container.StoresProvider = s
	return container, nil
}

// banCache keeps bans in ledis when configured and announces ban changes on
// redis so other processes drop their cached entries.
func banCache(container *Deps, store users.Store) users.Store {
	db, client := container.LedisDB(), container.Redis()
	if db == nil && client == nil {
		return store
	}
	c := container.Config()
	cached := users.NewCached(store, db, c.Ledis.TTL)
	if client == nil {
		log.Warningf("ban cache has no redis to share changes, entries may lag other processes up to %s", c.Ledis.TTL)
		return cached
	}
	cached.Share(users.NewRedisInvalidations(client, c.Redis.Channel+":bans"))
	if db != nil {
		ctx, cancel := context.WithCancel(context.Background())
		container.stop = cancel
		go func() {
			if err := cached.Listen(ctx); err != nil && ctx.Err() == nil {
				log.Errorf("ban cache invalidations stopped: %v", err)
			}
		}()
	}
	return cached
}
