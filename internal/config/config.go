// Package config holds the engine configuration, loaded from a TOML file
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type FileConfig struct {
	AllowRead  bool   `toml:"allow_read"`
	AllowWrite bool   `toml:"allow_write"`
	AllowCopy  bool   `toml:"allow_copy"`
	PathLimit  string `toml:"path_limit"` // "none" disables the restriction
}

type WebConfig struct {
	Allow          bool `toml:"allow"`
	TimeoutSeconds int  `toml:"timeout_seconds"`
}

type SQLConfig struct {
	Allow bool `toml:"allow"`
}

type Config struct {
	ScriptsPath string `toml:"scripts_path"`
	DataPath    string `toml:"data_path"`
	TickMillis  int64  `toml:"tick_millis"`
	WatchReload bool   `toml:"watch_reload"`

	File FileConfig `toml:"file"`
	Web  WebConfig  `toml:"web"`
	SQL  SQLConfig  `toml:"sql"`
}

// Default returns the configuration used when no file is given. File and
// network commands are disabled until explicitly allowed.
func Default() *Config {
	return &Config{
		ScriptsPath: "scripts",
		DataPath:    "data",
		TickMillis:  50,
		File: FileConfig{
			PathLimit: "data",
		},
		Web: WebConfig{
			TimeoutSeconds: 10,
		},
	}
}

// Load reads a TOML config file over the defaults, then applies environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config '%s': %w", path, err)
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("QUILL_SCRIPTS_PATH"); v != "" {
		c.ScriptsPath = v
	}
	if v := os.Getenv("QUILL_DATA_PATH"); v != "" {
		c.DataPath = v
	}
	if v := os.Getenv("QUILL_TICK_MILLIS"); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil && ms > 0 {
			c.TickMillis = ms
		}
	}
	if v, ok := envBool("QUILL_ALLOW_FILE_READ"); ok {
		c.File.AllowRead = v
	}
	if v, ok := envBool("QUILL_ALLOW_FILE_WRITE"); ok {
		c.File.AllowWrite = v
		c.File.AllowCopy = v
	}
	if v, ok := envBool("QUILL_ALLOW_WEB"); ok {
		c.Web.Allow = v
	}
	if v, ok := envBool("QUILL_ALLOW_SQL"); ok {
		c.SQL.Allow = v
	}
}

func envBool(name string) (bool, bool) {
	v := os.Getenv(name)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// Core is the active configuration, set once at startup before any queue
// runs and treated as read-only afterwards.
var Core = Default()
