package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

const (
	infoLevel  = "info"
	debugLevel = "debug"
)

func newTestLoader() *Loader {
	return NewLoaderWithViper(viper.New())
}

// TestNewLoader tests loader creation.
func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if loader.v == nil {
		t.Error("Loader viper instance is nil")
	}
}

// TestLoadWithNoConfigFile tests loading with no config file present.
func TestLoadWithNoConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := newTestLoader().Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.LogLevel != infoLevel {
		t.Errorf("Expected default log level '%s', got %s", infoLevel, cfg.LogLevel)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Engine.Preferred != EnginePdfcpu {
		t.Errorf("Expected default engine %s, got %s", EnginePdfcpu, cfg.Engine.Preferred)
	}
	if cfg.Preview.DefaultZoom != 100 {
		t.Errorf("Expected default zoom 100, got %d", cfg.Preview.DefaultZoom)
	}
}

// TestLoadWithValidYAMLFile tests loading from a valid YAML file.
func TestLoadWithValidYAMLFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "pdfmerge.yaml")

	yamlContent := `
log_level: debug
verbose: true
engine:
  preferred: gofpdi
  fallback_enabled: false
convert:
  text:
    font_size: 10
    line_height: 12
  word:
    command: /opt/libreoffice/program/soffice
server:
  host: 0.0.0.0
  port: 9090
`
	if err := os.WriteFile(configFile, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := newTestLoader().LoadWithFile(configFile)
	if err != nil {
		t.Fatalf("LoadWithFile() unexpected error: %v", err)
	}
	if cfg.LogLevel != debugLevel {
		t.Errorf("Expected log level '%s', got %s", debugLevel, cfg.LogLevel)
	}
	if !cfg.Verbose {
		t.Error("Expected verbose to be true")
	}
	if cfg.Engine.Preferred != EngineGofpdi {
		t.Errorf("Expected engine gofpdi, got %s", cfg.Engine.Preferred)
	}
	if cfg.Engine.FallbackEnabled {
		t.Error("Expected fallback to be disabled")
	}
	if cfg.Convert.Text.FontSize != 10 || cfg.Convert.Text.LineHeight != 12 {
		t.Errorf("Expected text layout 10/12, got %v/%v", cfg.Convert.Text.FontSize, cfg.Convert.Text.LineHeight)
	}
	if cfg.Convert.Word.Command != "/opt/libreoffice/program/soffice" {
		t.Errorf("Unexpected word command %q", cfg.Convert.Word.Command)
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9090 {
		t.Errorf("Expected 0.0.0.0:9090, got %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	// Unset keys keep their defaults
	if cfg.Convert.Image.Margin != 20 {
		t.Errorf("Expected default image margin 20, got %v", cfg.Convert.Image.Margin)
	}
}

// TestLoadWithInvalidYAMLFile tests loading from an invalid YAML file.
func TestLoadWithInvalidYAMLFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "pdfmerge.yaml")

	invalidYAML := `
log_level: debug
  invalid indentation
    more bad indentation
`
	if err := os.WriteFile(configFile, []byte(invalidYAML), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := newTestLoader().LoadWithFile(configFile); err == nil {
		t.Error("LoadWithFile() expected error for invalid YAML, got nil")
	}
}

// TestLoadWithNonExistentFile tests loading from a non-existent file.
func TestLoadWithNonExistentFile(t *testing.T) {
	if _, err := newTestLoader().LoadWithFile("/nonexistent/path/to/config.yaml"); err == nil {
		t.Error("LoadWithFile() expected error for non-existent file, got nil")
	}
}

// TestLoadWithValidationFailure tests loading with validation failure.
func TestLoadWithValidationFailure(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "pdfmerge.yaml")

	yamlContent := `
engine:
  preferred: ghostscript
`
	if err := os.WriteFile(configFile, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := newTestLoader().LoadWithFile(configFile); err == nil {
		t.Error("LoadWithFile() expected validation error, got nil")
	}
}

// TestLoadWithoutValidation tests loading without validation.
func TestLoadWithoutValidation(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "pdfmerge.yaml")

	yamlContent := `
log_level: invalid_level
server:
  port: -1
`
	if err := os.WriteFile(configFile, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := newTestLoader().LoadWithFileWithoutValidation(configFile)
	if err != nil {
		t.Fatalf("LoadWithFileWithoutValidation() unexpected error: %v", err)
	}

	if cfg.LogLevel != "invalid_level" {
		t.Errorf("Expected log level 'invalid_level', got %s", cfg.LogLevel)
	}
	if cfg.Server.Port != -1 {
		t.Errorf("Expected port -1, got %d", cfg.Server.Port)
	}
}

// TestEnvironmentVariableOverride tests environment variable override.
func TestEnvironmentVariableOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PDFMERGE_LOG_LEVEL", "debug")
	t.Setenv("PDFMERGE_SERVER_PORT", "9999")
	t.Setenv("PDFMERGE_ENGINE_PREFERRED", "gofpdi")
	t.Setenv("PDFMERGE_CONVERT_TEXT_MARGIN", "30")

	cfg, err := newTestLoader().Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.LogLevel != debugLevel {
		t.Errorf("Expected log level from env 'debug', got %s", cfg.LogLevel)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Expected port from env 9999, got %d", cfg.Server.Port)
	}
	if cfg.Engine.Preferred != EngineGofpdi {
		t.Errorf("Expected engine from env gofpdi, got %s", cfg.Engine.Preferred)
	}
	if cfg.Convert.Text.Margin != 30 {
		t.Errorf("Expected text margin from env 30, got %v", cfg.Convert.Text.Margin)
	}
}

// TestConfigFileInSearchPath tests discovery of pdfmerge.yaml in the working directory.
func TestConfigFileInSearchPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := os.WriteFile(filepath.Join(dir, "pdfmerge.yaml"), []byte("preview:\n  default_zoom: 150\n"), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	loader := newTestLoader()
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Preview.DefaultZoom != 150 {
		t.Errorf("Expected default zoom 150, got %d", cfg.Preview.DefaultZoom)
	}
	if loader.GetConfigFileUsed() == "" {
		t.Error("Expected config file to be reported as used")
	}
}

// TestGenerateDefaultConfigFile tests default config file generation.
func TestGenerateDefaultConfigFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "generated.yaml")

	if err := GenerateDefaultConfigFile(configFile); err != nil {
		t.Fatalf("GenerateDefaultConfigFile() unexpected error: %v", err)
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		t.Fatal("Generated config file does not exist")
	}

	cfg, err := newTestLoader().LoadWithFile(configFile)
	if err != nil {
		t.Fatalf("Failed to load generated config: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected port 8080 in generated config, got %d", cfg.Server.Port)
	}
	if len(cfg.Preview.ZoomLevels) != 6 {
		t.Errorf("Expected 6 zoom levels in generated config, got %v", cfg.Preview.ZoomLevels)
	}
}

// TestGetConfigSearchPaths tests the search path list.
func TestGetConfigSearchPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	paths := GetConfigSearchPaths()
	if len(paths) == 0 || paths[0] != "." {
		t.Fatalf("Expected current directory first, got %v", paths)
	}

	want := filepath.Join("/tmp/xdg", "pdfmerge")
	found := false
	for _, p := range paths {
		if p == want {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected %s in search paths %v", want, paths)
	}
}
