package deps

import (
	"context"

	"github.com/getsentry/raven-go"
	"github.com/go-redis/redis/v8"
	"github.com/op/go-logging"
	"github.com/siddontang/ledisdb/ledis"
	"github.com/tryanzu/overflow/board/audit"
	"github.com/tryanzu/overflow/board/collections"
	"github.com/tryanzu/overflow/board/content"
	"github.com/tryanzu/overflow/board/flags"
	"github.com/tryanzu/overflow/board/users"
	"github.com/tryanzu/overflow/core/config"
	"gopkg.in/mgo.v2"
)

// Deps holds bootstraped dependencies.
type Deps struct {
	ConfigProvider          *config.Config
	DatabaseSessionProvider *mgo.Session
	DatabaseProvider        *mgo.Database
	LoggerProvider          *logging.Logger
	LedisProvider           *ledis.DB
	RedisProvider           *redis.Client
	ErrorsProvider          *raven.Client
	StoresProvider          Stores

	ledisConn *ledis.Ledis
	stop      context.CancelFunc
}

// Stores used by the board packages.
type Stores struct {
	Posts       content.Store
	Flags       flags.Ledger
	Users       users.Store
	Collections collections.Store
	Audit       audit.Log
}

func (d Deps) Config() *config.Config {
	return d.ConfigProvider
}

func (d Deps) Log() *logging.Logger {
	return d.LoggerProvider
}

func (d Deps) Mgo() *mgo.Database {
	return d.DatabaseProvider
}

func (d Deps) LedisDB() *ledis.DB {
	return d.LedisProvider
}

// Redis client, nil when the relay is disabled.
func (d Deps) Redis() *redis.Client {
	return d.RedisProvider
}

func (d Deps) Errors() *raven.Client {
	return d.ErrorsProvider
}

func (d Deps) Stores() Stores {
	return d.StoresProvider
}

// Close releases every open connection.
func (d Deps) Close() {
	if d.stop != nil {
		d.stop()
	}
	if d.DatabaseSessionProvider != nil {
		d.DatabaseSessionProvider.Close()
	}
	if d.RedisProvider != nil {
		d.RedisProvider.Close()
	}
	if d.ledisConn != nil {
		d.ledisConn.Close()
	}
	if d.ErrorsProvider != nil {
		d.ErrorsProvider.Close()
	}
}
