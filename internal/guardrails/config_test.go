package guardrails

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guardrails.yaml")
	content := "max_rows: 500\nmax_joins: 2\nknown_tables:\n  - orders\n  - customers\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}

	if cfg.MaxRows != 500 {
		t.Errorf("MaxRows: %d, want: 500", cfg.MaxRows)
	}
	if cfg.MaxJoins != 2 {
		t.Errorf("MaxJoins: %d, want: 2", cfg.MaxJoins)
	}
	if len(cfg.KnownTables) != 2 || cfg.KnownTables[0] != "orders" {
		t.Errorf("KnownTables: %v", cfg.KnownTables)
	}

	// Untouched keys keep their defaults.
	if cfg.MaxQueryLength != 5000 {
		t.Errorf("MaxQueryLength: %d, want: 5000", cfg.MaxQueryLength)
	}
	if !cfg.ValidateTables {
		t.Errorf("ValidateTables: false, want: true")
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	cfg, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if cfg.MaxRows != 10000 {
		t.Errorf("defaults not returned on error: %+v", cfg)
	}
}

func TestLoadConfigFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("max_rows: [not an int"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadConfigFile(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
