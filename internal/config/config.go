package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	EnvIndexDir    = "ICONHASH_INDEX_DIR"
	EnvResolverURL = "ICONHASH_RESOLVER_URL"

	DefaultResolverURL = "https://api.iconify.design"
)

// Config is the in-memory representation of ~/.iconhash/config.yaml.
type Config struct {
	IndexDir    string   `yaml:"index_dir"`
	ResolverURL string   `yaml:"resolver_url,omitempty"`
	Size        int      `yaml:"size,omitempty"`
	Limit       int      `yaml:"limit,omitempty"`
	Threshold   float64  `yaml:"threshold"`
	Prefer      []string `yaml:"prefer,omitempty"`
	BatchSize   int      `yaml:"batch_size,omitempty"`
	Columns     int      `yaml:"columns,omitempty"`
	Workers     int      `yaml:"workers,omitempty"`
}

// IconhashDir returns the absolute path to ~/.iconhash/.
func IconhashDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".iconhash"), nil
}

// ConfigPath returns the absolute path to ~/.iconhash/config.yaml.
func ConfigPath() (string, error) {
	dir, err := IconhashDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the default Config written on first iconhash init.
func DefaultConfig() (*Config, error) {
	dir, err := IconhashDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		IndexDir:    filepath.Join(dir, "index"),
		ResolverURL: DefaultResolverURL,
		Size:        32,
		Limit:       10,
		Threshold:   0.8,
		BatchSize:   1000,
		Columns:     50,
	}, nil
}

// Load reads ~/.iconhash/config.yaml and applies environment overrides. A
// missing file yields the defaults.
func Load() (*Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.IndexDir, err = ExpandPath(cfg.IndexDir)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save marshals cfg and writes it to ~/.iconhash/config.yaml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
