package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Where an override value came from.
const (
	SourceEnv    = "environment"
	SourceDotEnv = ".env"
)

// envOverride binds an environment key to the Config field it replaces.
type envOverride struct {
	key  string
	help string
	set  func(cfg *Config, v string)
}

var envOverrides = []envOverride{
	{EnvIndexDir, "index directory read by find/info and replaced by build/fetch", func(c *Config, v string) { c.IndexDir = v }},
	{EnvResolverURL, "icon API base URL, or a local <prefix>/<name>.svg tree, for named queries", func(c *Config, v string) { c.ResolverURL = v }},
}

// Override is one config field replaced from the environment or ~/.iconhash/.env.
type Override struct {
	Key    string
	Value  string
	Source string
}

// DotEnvPath returns the absolute path to ~/.iconhash/.env.
func DotEnvPath() (string, error) {
	dir, err := IconhashDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".env"), nil
}

// ReadDotEnv parses a dotenv file. A missing file is an empty map.
//
// Lines are KEY=VALUE with an optional "export " prefix. One pair of matching
// single or double quotes around VALUE is removed; anything else is literal.
// Blank lines, comments and lines without a key are skipped.
func ReadDotEnv(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	out := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		k, v, ok := strings.Cut(line, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			continue
		}
		out[k] = unquote(strings.TrimSpace(v))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return out, nil
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// ActiveOverrides lists the override keys that currently have a value. The
// process environment wins over ~/.iconhash/.env.
func ActiveOverrides() ([]Override, error) {
	p, err := DotEnvPath()
	if err != nil {
		return nil, err
	}
	dotenv, err := ReadDotEnv(p)
	if err != nil {
		return nil, err
	}
	var out []Override
	for _, o := range envOverrides {
		if v := os.Getenv(o.key); v != "" {
			out = append(out, Override{Key: o.key, Value: v, Source: SourceEnv})
		} else if v := dotenv[o.key]; v != "" {
			out = append(out, Override{Key: o.key, Value: v, Source: SourceDotEnv})
		}
	}
	return out, nil
}

func applyEnv(cfg *Config) error {
	active, err := ActiveOverrides()
	if err != nil {
		return err
	}
	for _, a := range active {
		for _, o := range envOverrides {
			if o.key == a.Key {
				o.set(cfg, a.Value)
			}
		}
	}
	return nil
}

// EnsureDotEnvTemplate writes ~/.iconhash/.env listing every override key,
// commented and empty. An existing file is left alone.
func EnsureDotEnvTemplate() error {
	p, err := DotEnvPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(p); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("cannot stat %s: %w", p, err)
	}

	var b strings.Builder
	b.WriteString("# Overrides for ~/.iconhash/config.yaml. Process environment variables win.\n")
	for _, o := range envOverrides {
		fmt.Fprintf(&b, "\n# %s\n%s=\n", o.help, o.key)
	}
	if err := os.WriteFile(p, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("cannot write %s: %w", p, err)
	}
	return nil
}
