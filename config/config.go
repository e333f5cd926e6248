// Package config loads dscache namespaces from a YAML, JSON or TOML file.
//
//	redis:
//	  url: redis://localhost:6379/0
//	namespaces:
//	  roles:
//	    cacheKeyPrefix: "RolesPermissionsCache:"
//	    cacheMaxAgeMs: 1d
//	    cachePopulatorMaxTries: 5
//	    cachePopulatorMsGraceTime: 200
//
// Every key can be overridden from the environment with a DSCACHE_ prefix,
// e.g. DSCACHE_REDIS_URL.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/unkn0wn-root/dscache"
	"github.com/unkn0wn-root/dscache/age"
)

const EnvPrefix = "DSCACHE"

var ErrUnknownNamespace = errors.New("config: unknown namespace")

type Config struct {
	Redis      Redis                `mapstructure:"redis"`
	Namespaces map[string]Namespace `mapstructure:"namespaces"`
}

type Redis struct {
	URL       string `mapstructure:"url"`
	ScanCount int64  `mapstructure:"scanCount"`
}

// Namespace mirrors dscache.Options for the settings that can live in a file.
type Namespace struct {
	Prefix          string    `mapstructure:"cacheKeyPrefix"`
	MaxAge          age.Value `mapstructure:"cacheMaxAgeMs"`
	DeleteOnExpire  bool      `mapstructure:"cachePopulatorDelete"`
	MaxTries        int       `mapstructure:"cachePopulatorMaxTries"`
	GraceTime       age.Value `mapstructure:"cachePopulatorMsGraceTime"`
	KeyReplaceRegex string    `mapstructure:"cacheKeyReplaceRegex"`
	KeyReplaceWith  *string   `mapstructure:"cacheKeyReplaceWith"`
	Verbose         bool      `mapstructure:"verboseLog"`

	Framing         string        `mapstructure:"framing"` // "json" (default) or "binary"
	RecordTTL       time.Duration `mapstructure:"recordTTL"`
	PopulateTimeout time.Duration `mapstructure:"populateTimeout"`
	Coalesce        bool          `mapstructure:"coalesce"`
}

// Load reads path (any format viper knows by extension) and applies
// DSCACHE_* environment overrides. An empty path reads the environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.scanCount", 0)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := new(Config)
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		age.DecodeHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// Namespace returns the named namespace.
func (c *Config) Namespace(name string) (Namespace, error) {
	ns, ok := c.Namespaces[name]
	if !ok {
		return Namespace{}, fmt.Errorf("%w %q", ErrUnknownNamespace, name)
	}
	return ns, nil
}

// Apply copies ns into opts. Fields ns leaves empty keep whatever opts
// already holds, so code-only settings (Provider, Populator, Logger) survive.
func Apply[V any](ns Namespace, opts *dscache.Options[V]) error {
	if ns.Prefix != "" {
		opts.Prefix = ns.Prefix
	}
	if ns.MaxAge.IsSet() {
		opts.MaxAge = ns.MaxAge
	}
	if ns.GraceTime.IsSet() {
		opts.GraceTime = ns.GraceTime
	}
	if ns.MaxTries != 0 {
		opts.MaxTries = ns.MaxTries
	}
	opts.DeleteOnExpire = opts.DeleteOnExpire || ns.DeleteOnExpire
	opts.Verbose = opts.Verbose || ns.Verbose
	opts.Coalesce = opts.Coalesce || ns.Coalesce

	if ns.KeyReplaceRegex != "" {
		re, err := regexp.Compile(ns.KeyReplaceRegex)
		if err != nil {
			return &dscache.ConfigError{Field: "KeyPattern", Err: err}
		}
		opts.KeyPattern = re
	}
	if ns.KeyReplaceWith != nil {
		with := *ns.KeyReplaceWith
		opts.KeyReplacement = &with
	}

	switch strings.ToLower(ns.Framing) {
	case "":
	case "json":
		opts.Framing = dscache.FramingJSON
	case "binary":
		opts.Framing = dscache.FramingBinary
	default:
		return &dscache.ConfigError{Field: "Framing", Err: fmt.Errorf("unknown framing %q", ns.Framing)}
	}

	if ns.RecordTTL > 0 {
		opts.RecordTTL = ns.RecordTTL
	}
	if ns.PopulateTimeout > 0 {
		opts.PopulateTimeout = ns.PopulateTimeout
	}
	return nil
}
