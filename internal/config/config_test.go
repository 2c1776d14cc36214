package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Scan.BlockSize != 100_000 {
		t.Errorf("expected BlockSize=100000, got %d", cfg.Scan.BlockSize)
	}
	if cfg.Scan.RecordBlockSize != 1_000_000 {
		t.Errorf("expected RecordBlockSize=1000000, got %d", cfg.Scan.RecordBlockSize)
	}
	if cfg.Output.Delimiter != "," {
		t.Errorf("expected Delimiter=',', got %q", cfg.Output.Delimiter)
	}
	require.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "sloan.yaml")

	cfg := DefaultConfig()
	cfg.Scan.Workers = 3
	cfg.Output.Delimiter = ";"
	cfg.Logging.Categories = map[string]bool{"scan": false}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assert.Equal(t, cfg, loaded)
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sloan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan:\n  workers: 1\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Scan.Workers)
	assert.Equal(t, uint64(100_000), cfg.Scan.BlockSize)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sloan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan: [unterminated"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative workers", func(c *Config) { c.Scan.Workers = -1 }},
		{"zero block size", func(c *Config) { c.Scan.BlockSize = 0 }},
		{"zero record block size", func(c *Config) { c.Scan.RecordBlockSize = 0 }},
		{"multi-character delimiter", func(c *Config) { c.Output.Delimiter = "::" }},
		{"quote delimiter", func(c *Config) { c.Output.Delimiter = `"` }},
		{"unknown theme", func(c *Config) { c.Display.Theme = "neon" }},
		{"unknown level", func(c *Config) { c.Logging.Level = "loud" }},
		{"unknown format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDelimiterRune(t *testing.T) {
	r, err := OutputConfig{Delimiter: "\t"}.DelimiterRune()
	require.NoError(t, err)
	assert.Equal(t, '\t', r)

	r, err = OutputConfig{}.DelimiterRune()
	require.NoError(t, err)
	assert.Equal(t, ',', r)
}

func TestLoggingConfig_Options(t *testing.T) {
	c := LoggingConfig{
		Level:      "warn",
		Format:     "json",
		File:       "sloan.log",
		Categories: map[string]bool{"scan": false},
	}
	opts := c.Options()
	assert.Equal(t, "warn", opts.Level)
	assert.Equal(t, "json", opts.Format)
	assert.Equal(t, "sloan.log", opts.File)
	assert.Equal(t, c.Categories, opts.Categories)
}
