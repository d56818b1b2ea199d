package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// =============================================================================
// UNIFIED CONFIG TESTS
// =============================================================================

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "PATHWISE_MODEL", "PATHWISE_DB", "PATHWISE_DB_DRIVER", "PATHWISE_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "pathwise" {
		t.Errorf("expected Name=pathwise, got %s", cfg.Name)
	}
	if cfg.Generation.Provider != "gemini" {
		t.Errorf("expected Provider=gemini, got %s", cfg.Generation.Provider)
	}
	if cfg.Synthesis.AlertCount != 2 {
		t.Errorf("expected AlertCount=2, got %d", cfg.Synthesis.AlertCount)
	}
	if cfg.Store.Driver != "sqlite3" {
		t.Errorf("expected Driver=sqlite3, got %s", cfg.Store.Driver)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Generation.APIKey = "key-test"
	cfg.Generation.Model = "gemini-2.5-pro"
	cfg.Logging.Categories = map[string]bool{"store": false}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Generation.APIKey != "key-test" {
		t.Errorf("expected APIKey=key-test, got %s", loaded.Generation.APIKey)
	}
	if loaded.Generation.Model != "gemini-2.5-pro" {
		t.Errorf("expected Model=gemini-2.5-pro, got %s", loaded.Generation.Model)
	}
	if enabled, ok := loaded.Logging.Categories["store"]; !ok || enabled {
		t.Errorf("expected store category disabled, got %v (present=%v)", enabled, ok)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Store.Path != DefaultConfig().Store.Path {
		t.Errorf("expected default store path, got %s", cfg.Store.Path)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("generation: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	// Default has no API key
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for missing API key")
	}

	cfg.Generation.APIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.Store.Driver = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unsupported driver")
	}

	cfg.Store.Driver = "memory"
	cfg.Store.Path = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("memory driver needs no path: %v", err)
	}
}

func TestConfig_Timeouts(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.GetGenerationTimeout(); got != 90*time.Second {
		t.Errorf("expected 90s, got %v", got)
	}

	cfg.Generation.Timeout = "not-a-duration"
	if got := cfg.GetGenerationTimeout(); got != 90*time.Second {
		t.Errorf("expected fallback 90s, got %v", got)
	}

	cfg.Durability.Timeout = "5s"
	if got := cfg.GetDurabilityTimeout(); got != 5*time.Second {
		t.Errorf("expected 5s, got %v", got)
	}

	cfg.Synthesis.StepTimeout = "-1s"
	if got := cfg.GetStepTimeout(); got != 120*time.Second {
		t.Errorf("expected fallback 120s, got %v", got)
	}
}
