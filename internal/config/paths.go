package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ProjectFileName is looked up in the working directory.
const ProjectFileName = "ganttsync.toml"

const (
	appName        = "ganttsync"
	userConfigName = "config.toml"
)

// UserConfigPath returns the per-user config file location. It honors
// XDG_CONFIG_HOME on every platform.
func UserConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, userConfigName), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, userConfigName), nil
}

// DefaultCacheDir returns the file cache directory (~/.cache/ganttsync on
// Linux), honoring XDG_CACHE_HOME.
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// findProjectConfigFile returns ganttsync.toml in the working directory, or
// "" when there is none.
func findProjectConfigFile() string {
	if _, err := os.Stat(ProjectFileName); err == nil {
		return ProjectFileName
	}
	return ""
}

// expandPath expands a leading ~ and environment variables.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}
