package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultConfig spot-checks the defaults the handlers rely on.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Generator.DefaultRecords != 1000 {
		t.Errorf("default records = %d, want 1000", cfg.Generator.DefaultRecords)
	}
	if cfg.Clustering.DefaultClusters != 4 {
		t.Errorf("default clusters = %d, want 4", cfg.Clustering.DefaultClusters)
	}
	if cfg.Generator.Seed != 42 || cfg.Clustering.Seed != 42 {
		t.Error("fixed seeds should default to 42")
	}
}

// TestLoad_OverridesDefaults verifies YAML values land on top of defaults.
func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "server:\n  port: 9090\nclustering:\n  default_clusters: 6\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Clustering.DefaultClusters != 6 {
		t.Errorf("default clusters = %d, want 6", cfg.Clustering.DefaultClusters)
	}
	// Untouched sections keep their defaults.
	if cfg.Generator.DefaultRecords != 1000 {
		t.Errorf("generator defaults lost: %d", cfg.Generator.DefaultRecords)
	}
}

// TestLoad_MissingFile verifies the error for an absent config path.
func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load should fail for a missing file")
	}
}
