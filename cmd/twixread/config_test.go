package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samcharles93/twixread/internal/twix"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
log_level: debug
log_format: json
server_address: 0.0.0.0:9000
data_root: /srv/raw
extents:
  readout: 256
  phase1: 128
  channels: 32
`)
	cfg, err := loadConfig(path, true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Fatalf("logging: %+v", cfg)
	}
	if cfg.ServerAddress != "0.0.0.0:9000" || cfg.DataRoot != "/srv/raw" {
		t.Fatalf("server: %+v", cfg)
	}
	if cfg.Extents.Readout != 256 || cfg.Extents.Phase1 != 128 || cfg.Extents.Channels != 32 || cfg.Extents.Slices != 0 {
		t.Fatalf("extents: %+v", cfg.Extents)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.yaml")
	if _, err := loadConfig(missing, false); err != nil {
		t.Fatalf("missing default config should be ignored: %v", err)
	}
	if _, err := loadConfig(missing, true); err == nil {
		t.Fatal("missing explicit config should fail")
	}
	if _, err := loadConfig("", false); err != nil {
		t.Fatalf("empty path: %v", err)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "extents: [not, a, map]\n")
	if _, err := loadConfig(path, false); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestConfigSuppliesExtents(t *testing.T) {
	t.Parallel()

	in := writeContainer(t, twix.FormatVD)
	cfg := writeConfig(t, "extents:\n  readout: 4\n  phase1: 2\n  slices: 2\n  channels: 2\n")
	out := filepath.Join(t.TempDir(), "ksp")
	if _, _, err := runApp(t, "--config", cfg, in, out); err != nil {
		t.Fatalf("convert with config extents: %v", err)
	}
}

func TestFlagOverridesConfig(t *testing.T) {
	t.Parallel()

	in := writeContainer(t, twix.FormatVD)
	cfg := writeConfig(t, "extents:\n  readout: 4\n  phase1: 2\n  slices: 2\n  channels: 2\n")
	out := filepath.Join(t.TempDir(), "ksp")
	_, _, err := runApp(t, "--config", cfg, "-x", "8", in, out)
	if err == nil {
		t.Fatal("explicit readout should override the config and mismatch the container")
	}
}
