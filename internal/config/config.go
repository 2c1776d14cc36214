package config

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is read when no --config flag is given. A missing file means defaults.
const DefaultConfigPath = "sloan.yaml"

// Config holds all sloan configuration.
type Config struct {
	// Scan tuning
	Scan ScanConfig `yaml:"scan"`

	// Table output
	Output OutputConfig `yaml:"output"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Terminal presentation
	Display DisplayConfig `yaml:"display"`
}

// ScanConfig configures the execution backend and block sizes.
type ScanConfig struct {
	Workers         int    `yaml:"workers"`           // 0 = one per CPU, 1 = sequential
	BlockSize       uint64 `yaml:"block_size"`        // integers per bulk block (and per file append)
	RecordBlockSize uint64 `yaml:"record_block_size"` // integers per record-sequence block
}

// OutputConfig configures delimited table output.
type OutputConfig struct {
	Dir       string `yaml:"dir"`       // where <start>-<end>.csv files go
	Delimiter string `yaml:"delimiter"` // single character
}

// DisplayConfig configures human-readable output.
type DisplayConfig struct {
	Theme    string `yaml:"theme"`    // auto, light, dark, plain
	Progress bool   `yaml:"progress"` // progress bar on stderr during bulk scans
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Workers:         0,
			BlockSize:       100_000,
			RecordBlockSize: 1_000_000,
		},
		Output: OutputConfig{
			Dir:       ".",
			Delimiter: ",",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Display: DisplayConfig{
			Theme: "auto",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Scan.Workers < 0 {
		return fmt.Errorf("scan.workers must be >= 0")
	}
	if c.Scan.BlockSize == 0 {
		return fmt.Errorf("scan.block_size must be > 0")
	}
	if c.Scan.RecordBlockSize == 0 {
		return fmt.Errorf("scan.record_block_size must be > 0")
	}
	if _, err := c.Output.DelimiterRune(); err != nil {
		return err
	}
	switch c.Display.Theme {
	case "", "auto", "light", "dark", "plain":
	default:
		return fmt.Errorf("display.theme %q must be auto, light, dark or plain", c.Display.Theme)
	}
	return c.Logging.Validate()
}

// DelimiterRune returns the table delimiter as a rune.
func (o OutputConfig) DelimiterRune() (rune, error) {
	if o.Delimiter == "" {
		return ',', nil
	}
	r, size := utf8.DecodeRuneInString(o.Delimiter)
	if size != len(o.Delimiter) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("output.delimiter %q must be a single character other than a quote or newline", o.Delimiter)
	}
	return r, nil
}
