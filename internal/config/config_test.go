package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Pad != 2 {
		t.Errorf("Pad = %d, want 2", cfg.Pad)
	}
	if cfg.OutputDir != "." {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, ".")
	}
	if cfg.UserAgent != "Mozilla/5.0" {
		t.Errorf("UserAgent = %q, want %q", cfg.UserAgent, "Mozilla/5.0")
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v, want nil", err)
	}
}

func TestApplyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imgcatcher.toml")
	content := `
output_dir = "/data/images"
pad = 4
prefix = "pic-"
workers = 8
timeout_seconds = 10
extensions = ["jpg", "png"]
regex = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg := Default()
	if err := cfg.ApplyFile(path); err != nil {
		t.Fatalf("ApplyFile() error = %v", err)
	}

	if cfg.OutputDir != "/data/images" {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, "/data/images")
	}
	if cfg.Pad != 4 {
		t.Errorf("Pad = %d, want 4", cfg.Pad)
	}
	if cfg.Prefix != "pic-" {
		t.Errorf("Prefix = %q, want %q", cfg.Prefix, "pic-")
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %s, want 10s", cfg.Timeout)
	}
	if len(cfg.Extensions) != 2 {
		t.Errorf("Extensions = %v, want [jpg png]", cfg.Extensions)
	}
	if !cfg.UseRegex {
		t.Error("UseRegex = false, want true")
	}
	// Untouched fields keep their defaults.
	if cfg.UserAgent != "Mozilla/5.0" {
		t.Errorf("UserAgent = %q, want default", cfg.UserAgent)
	}
}

func TestApplyFile_Missing(t *testing.T) {
	cfg := Default()
	if err := cfg.ApplyFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("ApplyFile() on missing file, want error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("IMGCATCHER_OUT", "/env/out")
	t.Setenv("IMGCATCHER_USER_AGENT", "EnvAgent/2.0")
	t.Setenv("IMGCATCHER_WORKERS", "16")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.OutputDir != "/env/out" {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, "/env/out")
	}
	if cfg.UserAgent != "EnvAgent/2.0" {
		t.Errorf("UserAgent = %q, want %q", cfg.UserAgent, "EnvAgent/2.0")
	}
	if cfg.Workers != 16 {
		t.Errorf("Workers = %d, want 16", cfg.Workers)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero pad", func(c *Config) { c.Pad = 0 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"no extensions", func(c *Config) { c.Extensions = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
