package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "pdfmerge"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "PDFMERGE"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	// Use the global viper instance to ensure flag bindings work
	return &Loader{v: viper.GetViper()}
}

// NewLoaderWithViper creates a loader backed by the given viper instance.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// Load loads configuration from files, environment variables, and sets defaults.
// It returns the loaded configuration and any error encountered.
func (l *Loader) Load() (*Config, error) {
	cfg, err := l.LoadWithoutValidation()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadWithoutValidation loads configuration from files, environment variables, and sets defaults.
// It returns the loaded configuration without validation.
func (l *Loader) LoadWithoutValidation() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")

	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		// Missing config files fall back to defaults and env vars
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return l.unmarshal()
}

// LoadWithFile loads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}

	cfg, err := l.LoadWithFileWithoutValidation(configFile)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadWithFileWithoutValidation loads configuration from a specific file path without validation.
func (l *Loader) LoadWithFileWithoutValidation(configFile string) (*Config, error) {
	if configFile == "" {
		return l.LoadWithoutValidation()
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// Get returns a value from the configuration.
func (l *Loader) Get(key string) interface{} {
	return l.v.Get(key)
}

// GetString returns a string value from the configuration.
func (l *Loader) GetString(key string) string {
	return l.v.GetString(key)
}

// Set sets a value in the configuration.
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance for advanced usage.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// addConfigPaths adds the standard configuration search paths.
func (l *Loader) addConfigPaths() {
	for _, p := range GetConfigSearchPaths() {
		l.v.AddConfigPath(p)
	}
}

// setupEnvironmentVariables configures environment variable handling.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()

	// PDFMERGE_SERVER_PORT maps to server.port
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults sets default values for all configuration options.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	// Global settings
	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)

	// Engine defaults
	l.v.SetDefault("engine.preferred", defaults.Engine.Preferred)
	l.v.SetDefault("engine.fallback_enabled", defaults.Engine.FallbackEnabled)
	l.v.SetDefault("engine.relaxed_validation", defaults.Engine.RelaxedValidation)

	// Conversion defaults
	l.v.SetDefault("convert.temp_dir", defaults.Convert.TempDir)
	l.v.SetDefault("convert.images_enabled", defaults.Convert.ImagesEnabled)
	l.v.SetDefault("convert.text_enabled", defaults.Convert.TextEnabled)
	l.v.SetDefault("convert.image.margin", defaults.Convert.Image.Margin)
	l.v.SetDefault("convert.image.jpeg_quality", defaults.Convert.Image.JPEGQuality)
	l.v.SetDefault("convert.text.font_size", defaults.Convert.Text.FontSize)
	l.v.SetDefault("convert.text.line_height", defaults.Convert.Text.LineHeight)
	l.v.SetDefault("convert.text.margin", defaults.Convert.Text.Margin)
	l.v.SetDefault("convert.text.font_candidates", defaults.Convert.Text.FontCandidates)
	l.v.SetDefault("convert.word.enabled", defaults.Convert.Word.Enabled)
	l.v.SetDefault("convert.word.command", defaults.Convert.Word.Command)
	l.v.SetDefault("convert.word.timeout_sec", defaults.Convert.Word.TimeoutSec)

	// Credentials are empty unless configured
	l.v.SetDefault("pdf.user_password", defaults.PDF.UserPassword)
	l.v.SetDefault("pdf.owner_password", defaults.PDF.OwnerPassword)

	// Preview defaults
	l.v.SetDefault("preview.zoom_levels", defaults.Preview.ZoomLevels)
	l.v.SetDefault("preview.default_zoom", defaults.Preview.DefaultZoom)

	// Server defaults
	l.v.SetDefault("server.host", defaults.Server.Host)
	l.v.SetDefault("server.port", defaults.Server.Port)
	l.v.SetDefault("server.cors_origin", defaults.Server.CORSOrigin)
	l.v.SetDefault("server.max_upload_mb", defaults.Server.MaxUploadMB)
	l.v.SetDefault("server.timeout_sec", defaults.Server.TimeoutSec)
	l.v.SetDefault("server.shutdown_timeout", defaults.Server.ShutdownTimeout)
	l.v.SetDefault("server.rate_limit.enabled", defaults.Server.RateLimit.Enabled)
	l.v.SetDefault("server.rate_limit.requests_per_minute", defaults.Server.RateLimit.RequestsPerMinute)
	l.v.SetDefault("server.rate_limit.requests_per_hour", defaults.Server.RateLimit.RequestsPerHour)
	l.v.SetDefault("server.rate_limit.max_requests_per_day", defaults.Server.RateLimit.MaxRequestsPerDay)
	l.v.SetDefault("server.rate_limit.max_data_per_day_mb", defaults.Server.RateLimit.MaxDataPerDayMB)
}

// GetResolvedConfig returns the current resolved configuration for debugging.
func (l *Loader) GetResolvedConfig() map[string]interface{} {
	return l.v.AllSettings()
}

// WriteConfigToFile writes the current configuration to a file.
func (l *Loader) WriteConfigToFile(filename string) error {
	return l.v.WriteConfigAs(filename)
}

// GenerateDefaultConfigFile generates a default configuration file.
func GenerateDefaultConfigFile(filename string) error {
	loader := NewLoaderWithViper(viper.New())
	loader.setDefaults()

	if filename == "" {
		filename = ConfigFileName + ".yaml"
	}

	return loader.WriteConfigToFile(filename)
}

// GetConfigSearchPaths returns the paths where configuration files are searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}

	paths = append(paths, "/etc/pdfmerge")

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, "pdfmerge"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "pdfmerge"))
	}

	return paths
}

// PrintConfigInfo prints information about configuration loading for debugging.
func (l *Loader) PrintConfigInfo() {
	fmt.Printf("Configuration file used: %s\n", l.GetConfigFileUsed())
	fmt.Printf("Configuration search paths: %v\n", GetConfigSearchPaths())
	fmt.Printf("Environment prefix: %s\n", EnvPrefix)
}
