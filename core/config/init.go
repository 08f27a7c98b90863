package config

import (
	"fmt"
	"os"
	"time"

	"github.com/olebedev/config"
)

// DefaultFile is used when neither the --config flag nor CONFIG_FILE are set.
const DefaultFile = "./config.yaml"

// Load reads the yaml configuration file and applies environment overrides.
func Load(file string) (Config, error) {
	if file == "" {
		file = os.Getenv("CONFIG_FILE")
	}
	if file == "" {
		file = DefaultFile
	}
	raw, err := config.ParseYamlFile(file)
	if err != nil {
		return Config{}, fmt.Errorf("config: could not parse %s: %w", file, err)
	}
	return From(raw.Env()), nil
}

// Parse builds a Config from a yaml document.
func Parse(doc string) (Config, error) {
	raw, err := config.ParseYaml(doc)
	if err != nil {
		return Config{}, err
	}
	return From(raw), nil
}

// From maps the generic config tree into typed settings, filling defaults.
func From(raw *config.Config) Config {
	c := Config{
		Raw:         raw,
		Environment: raw.UString("environment", "development"),
		Secret:      raw.UString("application.secret"),
		HTTP: HTTP{
			Addr: raw.UString("http.addr", ":3200"),
		},
		Database: Database{
			Driver: raw.UString("database.driver", "mongo"),
			URL:    raw.UString("mongo.url", "mongodb://localhost:27017"),
			Name:   raw.UString("mongo.name", "overflow"),
		},
		Ledis: Ledis{
			Path: raw.UString("ledis.path"),
			TTL:  duration(raw.UString("ledis.ttl"), 5*time.Minute),
		},
		Redis: Redis{
			Addr:    raw.UString("redis.addr"),
			Channel: raw.UString("redis.channel", "overflow:realtime"),
		},
		Sentry: raw.UString("sentry.dsn"),
		Log: Log{
			Level: raw.UString("log.level"),
		},
		Moderation: Moderation{
			Moderators:     NewAllowlist(stringList(raw.UList("moderation.moderators"))...),
			DailyFlagLimit: raw.UInt("moderation.daily_flag_limit", 10),
		},
		Profanity: Profanity{
			Words: stringList(raw.UList("profanity.words")),
		},
	}
	if c.Log.Level == "" {
		c.Log.Level = "INFO"
		if c.Development() {
			c.Log.Level = "DEBUG"
		}
	}
	return c
}

func duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func stringList(list []interface{}) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
