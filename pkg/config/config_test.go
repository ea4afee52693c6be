package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestLoadDefaultsWithEnvKey(t *testing.T) {
	t.Setenv("MOCKBAY_SIGNING_KEY", testKey)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MockAddr != ":8080" || cfg.AdminAddr != ":9090" {
		t.Errorf("default addresses = %s, %s", cfg.MockAddr, cfg.AdminAddr)
	}
	if !cfg.Seed {
		t.Error("Seed defaults to true")
	}
	if cfg.RetentionHours != 24 {
		t.Errorf("RetentionHours = %d, want 24", cfg.RetentionHours)
	}
}

func TestLoadRequiresSigningKey(t *testing.T) {
	t.Setenv("MOCKBAY_SIGNING_KEY", "")
	if _, err := Load(""); err == nil {
		t.Error("Load accepted a missing signing key")
	}
	t.Setenv("MOCKBAY_SIGNING_KEY", "short")
	if _, err := Load(""); err == nil {
		t.Error("Load accepted a short signing key")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
mockAddr: ":7000"
signingKey: "` + testKey + `"
seed: false
retentionHours: 48
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MockAddr != ":7000" {
		t.Errorf("MockAddr = %s", cfg.MockAddr)
	}
	if cfg.Seed {
		t.Error("Seed = true, file sets false")
	}
	if cfg.RetentionHours != 48 {
		t.Errorf("RetentionHours = %d", cfg.RetentionHours)
	}
	if cfg.AdminAddr != ":9090" {
		t.Errorf("AdminAddr = %s, unset file field keeps default", cfg.AdminAddr)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
mockAddr: ":7000"
signingKey: "` + testKey + `"
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MOCKBAY_MOCK_ADDR", ":7001")
	t.Setenv("MOCKBAY_IN_MEMORY", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MockAddr != ":7001" {
		t.Errorf("MockAddr = %s, env should win", cfg.MockAddr)
	}
	if !cfg.InMemory {
		t.Error("InMemory = false, env sets true")
	}
}
