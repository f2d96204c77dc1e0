package cli

import (
	"os"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// Configuration
// =============================================================================

// Config holds user-level defaults read from the TOML config file
// (~/.config/graphweave/config.toml). Flags override config values; config
// values override built-in defaults.
type Config struct {
	// CacheDir overrides the XDG cache directory.
	CacheDir string `toml:"cache_dir"`

	// RedisAddr switches the cache backend from files to Redis
	// (host:port). Empty keeps the file cache.
	RedisAddr string `toml:"redis_addr"`

	// MongoURI is the connection string for the graph store commands.
	MongoURI string `toml:"mongo_uri"`

	// Database is the MongoDB database name for stored graphs.
	Database string `toml:"database"`

	// SampleSize bounds the dialect/header inference pre-scan.
	SampleSize int `toml:"sample_size"`

	// Addr is the default listen address for the serve command.
	Addr string `toml:"addr"`
}

// defaultConfig returns the built-in defaults applied before any file or
// flag values.
func defaultConfig() Config {
	return Config{
		Database: appName,
		Addr:     ":8080",
	}
}

// LoadConfig reads the config file at path, falling back to the XDG default
// location when path is empty. A missing file is not an error: the built-in
// defaults are returned. A malformed file is also non-fatal so a broken
// config never locks the user out of the CLI.
func LoadConfig(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		var err error
		if path, err = configPath(); err != nil {
			return cfg
		}
	}
	if _, err := os.Stat(path); err != nil {
		return cfg
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return defaultConfig()
	}
	if cfg.Database == "" {
		cfg.Database = appName
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	return cfg
}
