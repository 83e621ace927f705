package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"kilometers.ai/bdv-viewer/internal/core/domain/install"
	"kilometers.ai/bdv-viewer/internal/core/domain/solution"
)

// Configuration sources, lowest precedence first.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Environment variables read by Load.
const (
	EnvConfigPath    = "BDV_CONFIG_PATH"
	EnvPackagePath   = "BDV_PACKAGE_PATH"
	EnvAppPath       = "BDV_APP_PATH"
	EnvLogLevel      = "BDV_LOG_LEVEL"
	EnvLogFile       = "BDV_LOG_FILE"
	EnvSocketTimeout = "BDV_SOCKET_TIMEOUT_MS"
	EnvConflict      = "BDV_CONFLICT_POLICY"
	EnvGradleOpts    = "BDV_GRADLE_OPTS"
)

// Config is the runner configuration: where the package and app live, how
// to log and how install treats an app directory it has seen before.
// GradleOpts is passed to the wrapper as GRADLE_OPTS.
type Config struct {
	PackagePath         string `yaml:"package_path"`
	AppPath             string `yaml:"app_path"`
	LogLevel            string `yaml:"log_level"`
	LogFile             string `yaml:"log_file,omitempty"`
	SocketTimeoutMillis int    `yaml:"socket_timeout_ms"`
	ConflictPolicy      string `yaml:"conflict_policy"`
	GradleOpts          string `yaml:"gradle_opts,omitempty"`

	// Sources records where each field's value came from.
	Sources map[string]string `yaml:"-"`
}

// Default returns the configuration used when nothing else is set.
func Default(sol solution.Solution) *Config {
	cfg := &Config{
		PackagePath:         defaultPackagePath(),
		AppPath:             defaultAppPath(sol),
		LogLevel:            "info",
		SocketTimeoutMillis: install.DefaultSocketTimeoutMillis,
		ConflictPolicy:      string(install.ConflictFail),
		Sources:             make(map[string]string),
	}
	for _, field := range Fields() {
		cfg.Sources[field] = SourceDefault
	}
	return cfg
}

// DefaultPath returns $HOME/.bdv/config.yml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "bdv-config.yml"
	}
	return filepath.Join(home, ".bdv", "config.yml")
}

// ResolvePath picks the config file: path if set, else BDV_CONFIG_PATH,
// else DefaultPath.
func ResolvePath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	return DefaultPath()
}

// Load builds the configuration from defaults, the YAML file at path and
// the BDV_* environment. An empty path falls back to BDV_CONFIG_PATH and
// then DefaultPath; a missing file is not an error.
func Load(path string, sol solution.Solution) (*Config, error) {
	cfg := Default(sol)

	if err := cfg.loadFile(ResolvePath(path)); err != nil {
		return nil, err
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if raw[key] == nil {
			continue
		}
		if err := c.Set(key, fmt.Sprint(raw[key]), SourceFile); err != nil {
			return fmt.Errorf("config: %s: %w", path, err)
		}
	}
	return nil
}

func (c *Config) loadEnv() error {
	envFields := []struct{ env, field string }{
		{EnvPackagePath, "package_path"},
		{EnvAppPath, "app_path"},
		{EnvLogLevel, "log_level"},
		{EnvLogFile, "log_file"},
		{EnvSocketTimeout, "socket_timeout_ms"},
		{EnvConflict, "conflict_policy"},
		{EnvGradleOpts, "gradle_opts"},
	}
	for _, ef := range envFields {
		v, ok := os.LookupEnv(ef.env)
		if !ok || v == "" {
			continue
		}
		if err := c.Set(ef.field, v, SourceEnv); err != nil {
			return fmt.Errorf("config: %s: %w", ef.env, err)
		}
	}
	return nil
}

// Fields returns the settable field names in display order.
func Fields() []string {
	return []string{"package_path", "app_path", "log_level", "log_file", "socket_timeout_ms", "conflict_policy", "gradle_opts"}
}

// Set assigns a single field by its YAML name and records its source.
func (c *Config) Set(field, value, source string) error {
	switch field {
	case "package_path":
		c.PackagePath = expandPath(value)
	case "app_path":
		c.AppPath = expandPath(value)
	case "log_level":
		c.LogLevel = strings.ToLower(strings.TrimSpace(value))
	case "log_file":
		c.LogFile = expandPath(value)
	case "socket_timeout_ms":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("socket_timeout_ms must be an integer: %w", err)
		}
		c.SocketTimeoutMillis = n
	case "conflict_policy":
		c.ConflictPolicy = strings.ToLower(strings.TrimSpace(value))
	case "gradle_opts":
		c.GradleOpts = strings.TrimSpace(value)
	default:
		return fmt.Errorf("unknown config field %q", field)
	}
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	c.Sources[field] = source
	return nil
}

// Get returns a field's value as a string.
func (c *Config) Get(field string) (string, error) {
	switch field {
	case "package_path":
		return c.PackagePath, nil
	case "app_path":
		return c.AppPath, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_file":
		return c.LogFile, nil
	case "socket_timeout_ms":
		return strconv.Itoa(c.SocketTimeoutMillis), nil
	case "conflict_policy":
		return c.ConflictPolicy, nil
	case "gradle_opts":
		return c.GradleOpts, nil
	default:
		return "", fmt.Errorf("unknown config field %q", field)
	}
}

// Validate checks values that cannot be defaulted away.
func (c *Config) Validate() error {
	if c.SocketTimeoutMillis <= 0 {
		return fmt.Errorf("config: socket_timeout_ms must be positive, got %d", c.SocketTimeoutMillis)
	}
	if _, err := install.ParseConflictPolicy(c.ConflictPolicy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	return nil
}

// Conflict returns the parsed conflict policy.
func (c *Config) Conflict() install.ConflictPolicy {
	policy, err := install.ParseConflictPolicy(c.ConflictPolicy)
	if err != nil {
		return install.ConflictFail
	}
	return policy
}

// SetInFile validates field=value and stores it in the YAML file at path,
// keeping the other settings already there.
func SetInFile(path, field, value string, sol solution.Solution) error {
	candidate := Default(sol)
	if err := candidate.Set(field, value, SourceFile); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := candidate.Validate(); err != nil {
		return err
	}

	raw := make(map[string]interface{})
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("config: decode %s: %w", path, err)
		}
		if raw == nil {
			raw = make(map[string]interface{})
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	stored, _ := candidate.Get(field)
	if field == "socket_timeout_ms" {
		raw[field] = candidate.SocketTimeoutMillis
	} else {
		raw[field] = stored
	}

	out, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func defaultPackagePath() string {
	exe, err := os.Executable()
	if err != nil {
		wd, _ := os.Getwd()
		return wd
	}
	return filepath.Dir(exe)
}

func defaultAppPath(sol solution.Solution) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".bdv", "apps", sol.Group, sol.Name, sol.Version)
}

// expandPath expands ~ in paths
func expandPath(path string) string {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
