package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "RECORDSD"

// DefaultFileName is the configuration file looked up in the working
// directory when no file is given.
const DefaultFileName = "recordsd"

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	file  string
	dirs  []string
	flags map[string]*pflag.Flag
}

// WithFile loads settings from path. The file must exist.
func WithFile(path string) Option {
	return func(o *loadOptions) {
		o.file = path
	}
}

// WithSearchPath adds a directory searched for recordsd.yaml when no file is
// given.
func WithSearchPath(dir string) Option {
	return func(o *loadOptions) {
		o.dirs = append(o.dirs, dir)
	}
}

// WithFlag binds a command-line flag to a configuration key (log.level).
// Flags left at their default do not override other sources.
func WithFlag(key string, f *pflag.Flag) Option {
	return func(o *loadOptions) {
		if f != nil {
			o.flags[key] = f
		}
	}
}

// Load reads, merges and validates the configuration.
func Load(opts ...Option) (*Config, error) {
	o := &loadOptions{flags: make(map[string]*pflag.Flag)}
	for _, opt := range opts {
		opt(o)
	}

	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, f := range o.flags {
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", f.Name, err)
		}
	}

	if err := readFile(v, o); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(cfg.Collections) == 0 {
		cfg.Collections = DefaultCollections()
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UsedFile returns the file Load would read with the given options, or ""
// when none exists.
func UsedFile(opts ...Option) string {
	o := &loadOptions{flags: make(map[string]*pflag.Flag)}
	for _, opt := range opts {
		opt(o)
	}
	v := viper.New()
	if err := readFile(v, o); err != nil {
		return ""
	}
	return v.ConfigFileUsed()
}

// readFile reads the explicit file, or searches for recordsd.yaml. A missing
// searched-for file is not an error.
func readFile(v *viper.Viper, o *loadOptions) error {
	if o.file != "" {
		v.SetConfigFile(o.file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", o.file, err)
		}
		return nil
	}

	v.SetConfigName(DefaultFileName)
	v.SetConfigType("yaml")
	dirs := o.dirs
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	for _, d := range dirs {
		v.AddConfigPath(d)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// setDefaults registers every scalar setting so that environment variables
// can override it. Collections are filled in after unmarshalling instead.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("site.addr", d.Site.Addr)
	v.SetDefault("site.baseURL", d.Site.BaseURL)
	v.SetDefault("data.addr", d.Data.Addr)
	v.SetDefault("data.baseURL", d.Data.BaseURL)
	v.SetDefault("query.methodNotAllowedStatus", d.Query.MethodNotAllowedStatus)
	v.SetDefault("fetch.timeout", d.Fetch.Timeout)
	v.SetDefault("fetch.breaker.maxRequests", d.Fetch.Breaker.MaxRequests)
	v.SetDefault("fetch.breaker.interval", d.Fetch.Breaker.Interval)
	v.SetDefault("fetch.breaker.timeout", d.Fetch.Breaker.Timeout)
	v.SetDefault("fetch.breaker.failureThreshold", d.Fetch.Breaker.FailureThreshold)
	v.SetDefault("fetch.breaker.minRequests", d.Fetch.Breaker.MinRequests)
	v.SetDefault("cache.redisAddr", d.Cache.RedisAddr)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.prefix", d.Cache.Prefix)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}
