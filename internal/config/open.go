package config

import (
	"context"

	"github.com/matzehuels/ganttsync/pkg/cache"
	"github.com/matzehuels/ganttsync/pkg/errors"
)

// OpenCache builds the cache backend and keyer described by the [cache]
// and [redis] tables. A configured namespace scopes every key.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, cache.Keyer, error) {
	var keyer cache.Keyer = cache.NewDefaultKeyer()
	if c.Cache.Namespace != "" {
		keyer = cache.NewScopedKeyer(keyer, c.Cache.Namespace+":")
	}

	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), keyer, nil
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:        c.Redis.Addr,
			Password:    c.Redis.Password,
			DB:          c.Redis.DB,
			Prefix:      c.Redis.Prefix,
			DialTimeout: c.Redis.DialTimeout.Duration,
		})
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open redis cache")
		}
		return rc, keyer, nil
	}

	dir, err := c.CacheDir()
	if err != nil {
		return nil, nil, err
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open cache dir %s", dir)
	}
	return fc, keyer, nil
}

// CacheDir returns the file cache directory in effect.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	dir, err := DefaultCacheDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "locate cache dir")
	}
	return dir, nil
}
