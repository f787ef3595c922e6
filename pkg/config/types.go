package config

import (
	"strings"
	"time"

	"github.com/getmockd/recordsd/pkg/fetch"
	"github.com/getmockd/recordsd/pkg/logging"
	"github.com/getmockd/recordsd/pkg/query"
)

// Server names a collection can be served by.
const (
	ServerSite = "site"
	ServerData = "data"
)

// Config is the complete recordsd configuration.
type Config struct {
	Site        ServerConfig       `mapstructure:"site" yaml:"site"`
	Data        ServerConfig       `mapstructure:"data" yaml:"data"`
	Query       QueryConfig        `mapstructure:"query" yaml:"query"`
	Fetch       FetchConfig        `mapstructure:"fetch" yaml:"fetch"`
	Cache       CacheConfig        `mapstructure:"cache" yaml:"cache"`
	Log         LogConfig          `mapstructure:"log" yaml:"log"`
	Collections []CollectionConfig `mapstructure:"collections" yaml:"collections" validate:"required,min=1,dive"`
}

// ServerConfig describes one HTTP server.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `mapstructure:"addr" yaml:"addr" validate:"required,listen_addr"`
	// BaseURL is the address clients use to reach the server.
	BaseURL string `mapstructure:"baseURL" yaml:"baseURL" validate:"required,http_url"`
}

// QueryConfig holds query service settings.
type QueryConfig struct {
	// MethodNotAllowedStatus is answered to non-GET requests: 403 or 405.
	MethodNotAllowedStatus int `mapstructure:"methodNotAllowedStatus" yaml:"methodNotAllowedStatus" validate:"oneof=403 405"`
}

// FetchConfig holds downstream fetch settings.
type FetchConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
	Breaker BreakerConfig `mapstructure:"breaker" yaml:"breaker"`
}

// BreakerConfig holds circuit breaker settings.
type BreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"maxRequests" yaml:"maxRequests" validate:"min=1"`
	Interval         time.Duration `mapstructure:"interval" yaml:"interval" validate:"gte=0"`
	Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
	FailureThreshold float64       `mapstructure:"failureThreshold" yaml:"failureThreshold" validate:"gt=0,lte=1"`
	MinRequests      uint32        `mapstructure:"minRequests" yaml:"minRequests" validate:"min=1"`
}

// CacheConfig holds the optional Redis response cache settings.
type CacheConfig struct {
	// RedisAddr enables the cache when set.
	RedisAddr string        `mapstructure:"redisAddr" yaml:"redisAddr" validate:"omitempty,listen_addr"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl" validate:"gt=0"`
	Prefix    string        `mapstructure:"prefix" yaml:"prefix"`
}

// Enabled reports whether a cache is configured.
func (c CacheConfig) Enabled() bool {
	return c.RedisAddr != ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// CollectionConfig declares a served collection.
type CollectionConfig struct {
	Name    string   `mapstructure:"name" yaml:"name" validate:"required,excludesall=/?&#"`
	Path    string   `mapstructure:"path" yaml:"path" validate:"required,startswith=/"`
	Aliases []string `mapstructure:"aliases" yaml:"aliases,omitempty" validate:"dive,startswith=/"`
	Server  string   `mapstructure:"server" yaml:"server" validate:"oneof=site data"`
	// Filters lists the recognized filter parameters; empty means any field.
	Filters []string `mapstructure:"filters" yaml:"filters,omitempty" validate:"dive,required"`
	// Seed is a builtin reference (builtin:people) or a JSON/YAML file path.
	Seed string `mapstructure:"seed" yaml:"seed" validate:"required"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	breaker := fetch.DefaultBreakerConfig()
	cache := fetch.DefaultCacheConfig()
	return Config{
		Site:  ServerConfig{Addr: "127.0.0.1:3000", BaseURL: "http://localhost:3000"},
		Data:  ServerConfig{Addr: "127.0.0.1:4001", BaseURL: "http://localhost:4001"},
		Query: QueryConfig{MethodNotAllowedStatus: query.DefaultRejectStatus},
		Fetch: FetchConfig{
			Timeout: 5 * time.Second,
			Breaker: BreakerConfig{
				MaxRequests:      breaker.MaxRequests,
				Interval:         breaker.Interval,
				Timeout:          breaker.Timeout,
				FailureThreshold: breaker.FailureThreshold,
				MinRequests:      breaker.MinRequests,
			},
		},
		Cache:       CacheConfig{TTL: cache.TTL, Prefix: cache.Prefix},
		Log:         LogConfig{Level: "info", Format: string(logging.FormatText)},
		Collections: DefaultCollections(),
	}
}

// DefaultCollections returns the built-in people and books collections.
func DefaultCollections() []CollectionConfig {
	return []CollectionConfig{
		{
			Name:    "people",
			Path:    "/api/getPeople",
			Aliases: []string{"/records"},
			Server:  ServerSite,
			Filters: []string{"country", "livesIn"},
			Seed:    "builtin:people",
		},
		{
			Name:   "books",
			Path:   "/books",
			Server: ServerData,
			Seed:   "builtin:books",
		},
	}
}

// Server returns the settings of the named server.
func (c *Config) Server(name string) ServerConfig {
	if name == ServerData {
		return c.Data
	}
	return c.Site
}

// Endpoints maps every collection to the absolute URL of its primary path.
func (c *Config) Endpoints() map[string]string {
	out := make(map[string]string, len(c.Collections))
	for _, coll := range c.Collections {
		out[coll.Name] = strings.TrimSuffix(c.Server(coll.Server).BaseURL, "/") + coll.Path
	}
	return out
}

// Logging converts the log settings.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.Log.Level)
	cfg.Format = logging.ParseFormat(c.Log.Format)
	return cfg
}

// BreakerSettings converts the breaker settings.
func (c *Config) BreakerSettings() fetch.BreakerConfig {
	b := c.Fetch.Breaker
	return fetch.BreakerConfig{
		MaxRequests:      b.MaxRequests,
		Interval:         b.Interval,
		Timeout:          b.Timeout,
		FailureThreshold: b.FailureThreshold,
		MinRequests:      b.MinRequests,
	}
}

// CacheSettings converts the cache settings.
func (c *Config) CacheSettings() fetch.CacheConfig {
	return fetch.CacheConfig{TTL: c.Cache.TTL, Prefix: c.Cache.Prefix}
}
