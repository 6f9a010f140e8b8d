package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reposnap/pkg/config"
)

func TestInitCreatesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reposnap", "config.yaml")

	output, err := executeCommand(t, "", "init", "--config", path)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if !strings.Contains(output, "Configuration file created at: "+path) {
		t.Errorf("Unexpected output: %s", output)
	}

	cfg, err := config.LoadConfigFromPath(path)
	if err != nil {
		t.Fatalf("Failed to load created config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Created config is invalid: %v", err)
	}
}

func TestInitPromptsBeforeOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	original := "log_level: debug\n"
	if err := os.WriteFile(path, []byte(original), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	output, err := executeCommand(t, "n\n", "init", "--config", path)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if !strings.Contains(output, "cancelled") {
		t.Errorf("Expected cancellation, got: %s", output)
	}

	data, _ := os.ReadFile(path)
	if string(data) != original {
		t.Errorf("Config was overwritten: %s", data)
	}

	output, err = executeCommand(t, "y\n", "init", "--config", path)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if !strings.Contains(output, "Configuration file created") {
		t.Errorf("Expected overwrite, got: %s", output)
	}
}

func TestInitForceReplacesInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("output:\n  format: xml\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := executeCommand(t, "", "init", "--config", path, "--force"); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, err := config.LoadConfigFromPath(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Output.Format != config.FormatJSON {
		t.Errorf("Expected default format, got %s", cfg.Output.Format)
	}
}
