// Package config loads ganttsync settings.
//
// Settings are layered, later layers winning:
//
//  1. Built-in defaults
//  2. User file: $XDG_CONFIG_HOME/ganttsync/config.toml (or the OS equivalent)
//  3. Project file: ganttsync.toml in the working directory, or the file
//     named by --config
//  4. Environment: GANTTSYNC_* variables
//  5. Command-line flags, applied by the CLI after Load returns
//
// A minimal project file:
//
//	[cache]
//	backend = "redis"
//
//	[redis]
//	addr = "localhost:6379"
//
//	[risk]
//	behind_threshold = 30
//
// Unknown keys are rejected so that typos do not silently fall back to
// defaults.
package config
