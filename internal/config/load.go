package config

import (
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/ganttsync/pkg/errors"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "GANTTSYNC_"

// Load builds the configuration from defaults, the user file, the project
// file and the environment. A non-empty path replaces the project file
// lookup and must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	if user, err := UserConfigPath(); err == nil {
		if _, err := os.Stat(user); err == nil {
			if err := loadFile(cfg, user); err != nil {
				return nil, err
			}
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
	} else {
		path = findProjectConfigFile()
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := loadFromEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	cfg.Cache.Dir = expandPath(cfg.Cache.Dir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile decodes a TOML file over cfg. Keys the file sets replace the
// current values; keys it omits are left alone.
func loadFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Files = append(cfg.Files, path)
	return nil
}

// Decode reads a TOML document over the defaults. It exists for tests and
// for tools that embed a config.
func Decode(data string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown key: %s", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromEnv applies GANTTSYNC_* overrides. lookup is os.LookupEnv outside
// tests.
func loadFromEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	var firstErr error
	parse := func(name string, set func(string) error) {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return
		}
		if err := set(v); err != nil && firstErr == nil {
			firstErr = errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s%s=%q", EnvPrefix, name, v)
		}
	}
	duration := func(dst *Duration) func(string) error {
		return func(v string) error {
			d, err := time.ParseDuration(v)
			dst.Duration = d
			return err
		}
	}
	integer := func(dst *int) func(string) error {
		return func(v string) error {
			n, err := strconv.Atoi(v)
			*dst = n
			return err
		}
	}

	str("LOG_LEVEL", &cfg.Log.Level)
	str("CACHE_BACKEND", &cfg.Cache.Backend)
	str("CACHE_DIR", &cfg.Cache.Dir)
	str("CACHE_NAMESPACE", &cfg.Cache.Namespace)
	str("REDIS_ADDR", &cfg.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.Redis.Password)
	str("REDIS_PREFIX", &cfg.Redis.Prefix)
	str("SERVER_ADDR", &cfg.Server.Addr)

	parse("REDIS_DB", integer(&cfg.Redis.DB))
	parse("WATCH_DEBOUNCE", duration(&cfg.Watch.Debounce))
	parse("RISK_BEHIND_THRESHOLD", integer(&cfg.Risk.BehindThreshold))
	parse("LOG_TIMESTAMPS", func(v string) error {
		b, err := strconv.ParseBool(v)
		cfg.Log.Timestamps = b
		return err
	})
	return firstErr
}
