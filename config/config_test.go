package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.CLI.Binary != "oci" || cfg.CLI.Shell != "sh" || cfg.CLI.ShellFlag != "-c" {
		t.Fatalf("cli defaults = %+v", cfg.CLI)
	}
	if !reflect.DeepEqual(cfg.Install.Command, []string{"python", "-m", "pip", "install", "oci-cli"}) {
		t.Fatalf("install command = %v", cfg.Install.Command)
	}
	if cfg.Install.MarkerStore != MarkerStoreFile {
		t.Fatalf("marker store = %q", cfg.Install.MarkerStore)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("OCIACTION_COLLECTOR", "http://collector:4318/v1/traces")

	path := writeConfig(t, t.TempDir(), "ociaction.yaml", `
cli:
  shell: bash
  env:
    - OCI_CLI_PROFILE=ci
install:
  marker_store: SQLite
  sqlite_path: ~/.cache/ociaction.db
  refresh: "0 3 * * 1"
telemetry:
  enabled: true
  endpoint: ${OCIACTION_COLLECTOR}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CLI.Binary != "oci" || cfg.CLI.Shell != "bash" || cfg.CLI.ShellFlag != "-c" {
		t.Fatalf("cli = %+v", cfg.CLI)
	}
	if !reflect.DeepEqual(cfg.CLI.Env, []string{"OCI_CLI_PROFILE=ci"}) {
		t.Fatalf("env = %v", cfg.CLI.Env)
	}
	if cfg.Install.MarkerStore != MarkerStoreSQLite {
		t.Fatalf("marker store = %q", cfg.Install.MarkerStore)
	}
	if cfg.Install.SQLitePath != filepath.Join(home, ".cache", "ociaction.db") {
		t.Fatalf("sqlite path = %q", cfg.Install.SQLitePath)
	}
	if cfg.Install.Refresh != "0 3 * * 1" {
		t.Fatalf("refresh = %q", cfg.Install.Refresh)
	}
	if len(cfg.Install.Command) != 5 {
		t.Fatalf("install command = %v, want default", cfg.Install.Command)
	}
	if !cfg.Telemetry.Enabled || cfg.Telemetry.Endpoint != "http://collector:4318/v1/traces" {
		t.Fatalf("telemetry = %+v", cfg.Telemetry)
	}
	if cfg.Telemetry.ServiceName != "ociaction" {
		t.Fatalf("service name = %q", cfg.Telemetry.ServiceName)
	}
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("Load(\"\") = %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "bad yaml", content: "cli: [", want: "parsing config"},
		{name: "bad store", content: "install:\n  marker_store: redis\n", want: "install.marker_store"},
		{name: "binary with space", content: "cli:\n  binary: oci cli\n", want: "cli.binary"},
		{name: "bad env", content: "cli:\n  env: [NOEQUALS]\n", want: "cli.env[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml", tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want %q", err, tt.want)
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDiscoverFrom(t *testing.T) {
	cwd := t.TempDir()
	home := t.TempDir()

	path, found, err := DiscoverFrom("", cwd, home)
	if err != nil || found || path != "" {
		t.Fatalf("empty dirs = %q %v %v", path, found, err)
	}

	homeCfg := writeConfig(t, home, filepath.Join(".ociaction", "config.yaml"), "cli: {}\n")
	path, found, err = DiscoverFrom("", cwd, home)
	if err != nil || !found || path != homeCfg {
		t.Fatalf("home config = %q %v %v", path, found, err)
	}

	projectCfg := writeConfig(t, cwd, "ociaction.yaml", "cli: {}\n")
	path, found, err = DiscoverFrom("", cwd, home)
	if err != nil || !found || path != projectCfg {
		t.Fatalf("project config = %q %v %v", path, found, err)
	}

	explicit := writeConfig(t, t.TempDir(), "custom.yaml", "cli: {}\n")
	path, found, err = DiscoverFrom(explicit, cwd, home)
	if err != nil || !found || path != explicit {
		t.Fatalf("explicit config = %q %v %v", path, found, err)
	}

	if _, _, err := DiscoverFrom(filepath.Join(cwd, "nope.yaml"), cwd, home); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}
