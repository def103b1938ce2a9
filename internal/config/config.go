package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape for tfbscan. Pointer
// fields distinguish unset keys from zero values.
type FileConfig struct {
	Email    *string `yaml:"email,omitempty"`
	APIKey   *string `yaml:"api_key,omitempty"`
	DataDir  *string `yaml:"data_dir,omitempty"`
	Timeout  *string `yaml:"timeout,omitempty"`
	Workers  *int    `yaml:"workers,omitempty"`
	NoCache  *bool   `yaml:"no_cache,omitempty"`
	NoColor  *bool   `yaml:"no_color,omitempty"`
	LogLevel *string `yaml:"log_level,omitempty"`
	// LogPretty switches logs to zerolog's console writer.
	LogPretty *bool `yaml:"log_pretty,omitempty"`

	// Search defaults mirror the scan flags
	PromoterLength  *int     `yaml:"promoter_length,omitempty"`
	WindowSize      *int     `yaml:"window_size,omitempty"`
	WindowThreshold *float64 `yaml:"window_threshold,omitempty"`
	Threshold       *float64 `yaml:"threshold,omitempty"`
	Pseudocount     *float64 `yaml:"pseudocount,omitempty"`

	// Service
	Listen  *string `yaml:"listen,omitempty"`
	Metrics *bool   `yaml:"metrics,omitempty"`

	Entrez *RemoteConfig `yaml:"entrez,omitempty"`
	JASPAR *RemoteConfig `yaml:"jaspar,omitempty"`
}

// RemoteConfig overrides a remote data source.
type RemoteConfig struct {
	BaseURL *string `yaml:"base_url,omitempty"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadLocal searches for a project-local config file in the given root.
// It supports .tfbscan.yml/.yaml and tfbscan.yml/.yaml.
func LoadLocal(root string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range []string{".tfbscan.yml", ".tfbscan.yaml", "tfbscan.yml", "tfbscan.yaml"} {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// GlobalPath returns the global config location under XDG_CONFIG_HOME or
// ~/.config.
func GlobalPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return "", errors.New("no config dir")
	}
	return filepath.Join(base, "tfbscan", "config.yml"), nil
}

// LoadGlobal loads the global config file.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	p, err := GlobalPath()
	if err != nil {
		return cfg, err
	}
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// EntrezBaseURL returns the configured E-utilities base URL or "".
func (fc FileConfig) EntrezBaseURL() string {
	if fc.Entrez == nil || fc.Entrez.BaseURL == nil {
		return ""
	}
	return *fc.Entrez.BaseURL
}

// JASPARBaseURL returns the configured JASPAR base URL or "".
func (fc FileConfig) JASPARBaseURL() string {
	if fc.JASPAR == nil || fc.JASPAR.BaseURL == nil {
		return ""
	}
	return *fc.JASPAR.BaseURL
}

// TimeoutDuration parses Timeout; unset yields 0.
func (fc FileConfig) TimeoutDuration() (time.Duration, error) {
	if fc.Timeout == nil || *fc.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(*fc.Timeout)
	if err != nil {
		return 0, fmt.Errorf("timeout: %w", err)
	}
	return d, nil
}

// Default returns the configuration written by `tfbscan config init`.
func Default() FileConfig {
	return FileConfig{
		DataDir:         ptr("data"),
		Timeout:         ptr("30s"),
		Workers:         ptr(4),
		LogLevel:        ptr("info"),
		PromoterLength:  ptr(1000),
		WindowSize:      ptr(40),
		WindowThreshold: ptr(0.01),
		Threshold:       ptr(-5.0),
		Pseudocount:     ptr(0.0),
		Listen:          ptr(":8000"),
		Metrics:         ptr(true),
	}
}

func ptr[T any](v T) *T { return &v }

// Save writes fc as YAML, refusing to replace an existing file unless force
// is set.
func Save(path string, fc FileConfig, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	b, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, b, 0o644)
}
