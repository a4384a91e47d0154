package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds one run's settings. It is assembled once at startup
// (defaults, then config file, then flags, then env) and passed
// explicitly into each component; nothing reads it ambiently.
type Config struct {
	PageURL    string
	OutputDir  string
	Pad        int
	Prefix     string
	UserAgent  string
	Verbose    bool
	KeepList   bool
	Workers    int
	Timeout    time.Duration
	Extensions []string
	UseRegex   bool
	AssumeYes  bool
	HistoryDB  string
}

// DefaultExtensions is the image extension filter used when none is
// configured.
var DefaultExtensions = []string{"jpg", "jpeg", "png", "gif", "webp"}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		OutputDir:  ".",
		Pad:        2,
		UserAgent:  "Mozilla/5.0",
		Workers:    4,
		Timeout:    30 * time.Second,
		Extensions: DefaultExtensions,
	}
}

// fileConfig mirrors Config for TOML decoding. Pointers distinguish
// "absent" from a zero value.
type fileConfig struct {
	OutputDir  *string  `toml:"output_dir"`
	Pad        *int     `toml:"pad"`
	Prefix     *string  `toml:"prefix"`
	UserAgent  *string  `toml:"user_agent"`
	Workers    *int     `toml:"workers"`
	TimeoutSec *int     `toml:"timeout_seconds"`
	Extensions []string `toml:"extensions"`
	Regex      *bool    `toml:"regex"`
	HistoryDB  *string  `toml:"history_db"`
}

// ApplyFile overlays settings from a TOML file. Fields absent from the
// file keep their current values.
func (c *Config) ApplyFile(path string) error {
	var f fileConfig
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	if f.OutputDir != nil {
		c.OutputDir = *f.OutputDir
	}
	if f.Pad != nil {
		c.Pad = *f.Pad
	}
	if f.Prefix != nil {
		c.Prefix = *f.Prefix
	}
	if f.UserAgent != nil {
		c.UserAgent = *f.UserAgent
	}
	if f.Workers != nil {
		c.Workers = *f.Workers
	}
	if f.TimeoutSec != nil {
		c.Timeout = time.Duration(*f.TimeoutSec) * time.Second
	}
	if len(f.Extensions) > 0 {
		c.Extensions = f.Extensions
	}
	if f.Regex != nil {
		c.UseRegex = *f.Regex
	}
	if f.HistoryDB != nil {
		c.HistoryDB = *f.HistoryDB
	}
	return nil
}

// ApplyEnv overlays IMGCATCHER_* environment variables. Env wins over
// everything else.
func (c *Config) ApplyEnv() {
	if out := os.Getenv("IMGCATCHER_OUT"); out != "" {
		c.OutputDir = out
	}
	if agent := os.Getenv("IMGCATCHER_USER_AGENT"); agent != "" {
		c.UserAgent = agent
	}
	if workers := os.Getenv("IMGCATCHER_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil {
			c.Workers = w
		}
	}
	if db := os.Getenv("IMGCATCHER_HISTORY_DB"); db != "" {
		c.HistoryDB = db
	}
}

// Validate rejects option combinations that cannot produce a sane run.
func (c *Config) Validate() error {
	if c.Pad < 1 {
		return fmt.Errorf("pad must be at least 1, got %d", c.Pad)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("extension filter is empty")
	}
	return nil
}
