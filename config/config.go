// Package config loads the optional ociaction.yaml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	projectConfigName = "ociaction.yaml"
	homeConfigDir     = ".ociaction"
	homeConfigName    = "config.yaml"
)

// Marker store kinds.
const (
	MarkerStoreFile   = "file"
	MarkerStoreSQLite = "sqlite"
	MarkerStoreMemory = "memory"
)

// Config is the full file shape. Zero values fall back to Default.
type Config struct {
	CLI       CLIConfig       `yaml:"cli"`
	Install   InstallConfig   `yaml:"install"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// CLIConfig describes the wrapped binary and how it is run.
type CLIConfig struct {
	Binary    string   `yaml:"binary"`
	Shell     string   `yaml:"shell"`
	ShellFlag string   `yaml:"shell_flag"`
	Env       []string `yaml:"env,omitempty"`
}

// InstallConfig describes the dependency install step.
type InstallConfig struct {
	Skip        bool     `yaml:"skip"`
	Tool        string   `yaml:"tool"`
	Command     []string `yaml:"command"`
	MarkerStore string   `yaml:"marker_store"`
	MarkerPath  string   `yaml:"marker_path,omitempty"`
	SQLitePath  string   `yaml:"sqlite_path,omitempty"`
	Refresh     string   `yaml:"refresh,omitempty"`
}

// TelemetryConfig enables OTLP trace export.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint,omitempty"`
	ServiceName string `yaml:"service_name,omitempty"`
}

// Default returns the settings that reproduce the stock OCI CLI action.
func Default() Config {
	return Config{
		CLI: CLIConfig{
			Binary:    "oci",
			Shell:     "sh",
			ShellFlag: "-c",
		},
		Install: InstallConfig{
			Tool:        "oci-cli",
			Command:     []string{"python", "-m", "pip", "install", "oci-cli"},
			MarkerStore: MarkerStoreFile,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "ociaction",
		},
	}
}

// Load reads path over Default, expands ${VAR} and ~ references and
// validates the result. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	clean := strings.TrimSpace(path)
	if clean == "" {
		return cfg, nil
	}

	// #nosec G304 -- path resolved from explicit local config discovery.
	data, err := os.ReadFile(clean)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %q: %w", clean, err)
	}
	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %q: %w", clean, err)
	}

	cfg = merge(cfg, fileCfg)
	cfg.expand()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %q: %w", clean, err)
	}
	return cfg, nil
}

func merge(base, override Config) Config {
	out := base
	if v := strings.TrimSpace(override.CLI.Binary); v != "" {
		out.CLI.Binary = v
	}
	if v := strings.TrimSpace(override.CLI.Shell); v != "" {
		out.CLI.Shell = v
	}
	if v := strings.TrimSpace(override.CLI.ShellFlag); v != "" {
		out.CLI.ShellFlag = v
	}
	if len(override.CLI.Env) > 0 {
		out.CLI.Env = append([]string(nil), override.CLI.Env...)
	}

	out.Install.Skip = override.Install.Skip
	if v := strings.TrimSpace(override.Install.Tool); v != "" {
		out.Install.Tool = v
	}
	if len(override.Install.Command) > 0 {
		out.Install.Command = append([]string(nil), override.Install.Command...)
	}
	if v := strings.TrimSpace(override.Install.MarkerStore); v != "" {
		out.Install.MarkerStore = strings.ToLower(v)
	}
	if v := strings.TrimSpace(override.Install.MarkerPath); v != "" {
		out.Install.MarkerPath = v
	}
	if v := strings.TrimSpace(override.Install.SQLitePath); v != "" {
		out.Install.SQLitePath = v
	}
	if v := strings.TrimSpace(override.Install.Refresh); v != "" {
		out.Install.Refresh = v
	}

	out.Telemetry.Enabled = override.Telemetry.Enabled
	if v := strings.TrimSpace(override.Telemetry.Endpoint); v != "" {
		out.Telemetry.Endpoint = v
	}
	if v := strings.TrimSpace(override.Telemetry.ServiceName); v != "" {
		out.Telemetry.ServiceName = v
	}
	return out
}

func (c *Config) expand() {
	c.Install.MarkerPath = expandPath(c.Install.MarkerPath)
	c.Install.SQLitePath = expandPath(c.Install.SQLitePath)
	c.Telemetry.Endpoint = os.ExpandEnv(c.Telemetry.Endpoint)
	for i := range c.CLI.Env {
		c.CLI.Env[i] = os.ExpandEnv(c.CLI.Env[i])
	}
}

func expandPath(value string) string {
	value = strings.TrimSpace(os.ExpandEnv(value))
	if value == "~" || strings.HasPrefix(value, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			value = filepath.Join(home, strings.TrimPrefix(value, "~"))
		}
	}
	return value
}

// Validate checks field values.
func (c Config) Validate() error {
	if strings.TrimSpace(c.CLI.Binary) == "" {
		return errors.New("cli.binary is required")
	}
	if strings.ContainsAny(c.CLI.Binary, " \t") {
		return fmt.Errorf("cli.binary %q must not contain whitespace", c.CLI.Binary)
	}
	for i, kv := range c.CLI.Env {
		if !strings.Contains(kv, "=") {
			return fmt.Errorf("cli.env[%d] %q must be KEY=VALUE", i, kv)
		}
	}
	if len(c.Install.Command) == 0 || strings.TrimSpace(c.Install.Command[0]) == "" {
		return errors.New("install.command is required")
	}
	switch c.Install.MarkerStore {
	case MarkerStoreFile, MarkerStoreSQLite, MarkerStoreMemory:
	default:
		return fmt.Errorf("install.marker_store %q must be one of file, sqlite, memory", c.Install.MarkerStore)
	}
	return nil
}

// Discover resolves the config location with first-match semantics.
func Discover(explicitPath string) (string, bool, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("resolve working directory: %w", err)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("resolve user home: %w", err)
	}
	return DiscoverFrom(explicitPath, cwd, homeDir)
}

// DiscoverFrom is a testable variant of Discover: explicit path, then
// ./ociaction.yaml, then ~/.ociaction/config.yaml.
func DiscoverFrom(explicitPath, cwd, homeDir string) (string, bool, error) {
	candidates := make([]string, 0, 2)
	if clean := strings.TrimSpace(explicitPath); clean != "" {
		candidates = append(candidates, filepath.Clean(clean))
	} else {
		candidates = append(candidates, filepath.Join(cwd, projectConfigName))
		candidates = append(candidates, filepath.Join(homeDir, homeConfigDir, homeConfigName))
	}

	for i, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			if i == 0 && strings.TrimSpace(explicitPath) != "" {
				return "", false, fmt.Errorf("config file %q not found", candidate)
			}
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("checking config path %q: %w", candidate, err)
		}
	}
	return "", false, nil
}
