package config

import (
	"time"

	"github.com/olebedev/config"
)

// Config holds the typed process settings.
type Config struct {
	Raw         *config.Config
	Environment string
	Secret      string
	HTTP        HTTP
	Database    Database
	Ledis       Ledis
	Redis       Redis
	Sentry      string
	Log         Log
	Moderation  Moderation
	Profanity   Profanity
}

// Development env check.
func (c Config) Development() bool {
	return c.Environment == "development"
}

type HTTP struct {
	Addr string
}

// Database selects the store driver: "mongo" or "memory".
type Database struct {
	Driver string
	URL    string
	Name   string
}

// Ledis ban cache, disabled when Path is empty. Each process needs its own
// Path, the data dir is locked while open.
type Ledis struct {
	Path string
	TTL  time.Duration
}

// Redis relay for realtime fan-out, disabled when Addr is empty.
type Redis struct {
	Addr    string
	Channel string
}

type Log struct {
	Level string
}

type Moderation struct {
	Moderators     Allowlist
	DailyFlagLimit int
}

type Profanity struct {
	Words []string
}
