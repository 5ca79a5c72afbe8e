//nolint:lll
package config

// Config represents the complete configuration for the pdfmerge application.
// It covers every command (merge, convert, validate, info, preview, serve) and
// supports loading from configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// PDF engine selection
	Engine EngineConfig `mapstructure:"engine" yaml:"engine" json:"engine"`

	// Format conversion settings
	Convert ConvertConfig `mapstructure:"convert" yaml:"convert" json:"convert"`

	// Credentials for protected inputs
	PDF PDFConfig `mapstructure:"pdf" yaml:"pdf" json:"pdf"`

	// Page preview settings
	Preview PreviewConfig `mapstructure:"preview" yaml:"preview" json:"preview"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// EngineConfig selects the PDF engines used for reading and merging.
type EngineConfig struct {
	Preferred         string `mapstructure:"preferred" yaml:"preferred" json:"preferred"`
	FallbackEnabled   bool   `mapstructure:"fallback_enabled" yaml:"fallback_enabled" json:"fallback_enabled"`
	RelaxedValidation bool   `mapstructure:"relaxed_validation" yaml:"relaxed_validation" json:"relaxed_validation"`
}

// ConvertConfig contains settings for converting non-PDF inputs.
type ConvertConfig struct {
	TempDir       string      `mapstructure:"temp_dir" yaml:"temp_dir" json:"temp_dir"`
	ImagesEnabled bool        `mapstructure:"images_enabled" yaml:"images_enabled" json:"images_enabled"`
	TextEnabled   bool        `mapstructure:"text_enabled" yaml:"text_enabled" json:"text_enabled"`
	Image         ImageConfig `mapstructure:"image" yaml:"image" json:"image"`
	Text          TextConfig  `mapstructure:"text" yaml:"text" json:"text"`
	Word          WordConfig  `mapstructure:"word" yaml:"word" json:"word"`
}

// ImageConfig contains image-to-PDF layout settings.
type ImageConfig struct {
	Margin      float64 `mapstructure:"margin" yaml:"margin" json:"margin"`
	JPEGQuality int     `mapstructure:"jpeg_quality" yaml:"jpeg_quality" json:"jpeg_quality"`
}

// TextConfig contains text-to-PDF layout settings.
type TextConfig struct {
	FontSize       float64  `mapstructure:"font_size" yaml:"font_size" json:"font_size"`
	LineHeight     float64  `mapstructure:"line_height" yaml:"line_height" json:"line_height"`
	Margin         float64  `mapstructure:"margin" yaml:"margin" json:"margin"`
	FontCandidates []string `mapstructure:"font_candidates" yaml:"font_candidates" json:"font_candidates"`
}

// WordConfig contains settings for the external Word converter.
type WordConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Command    string `mapstructure:"command" yaml:"command" json:"command"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
}

// PDFConfig holds passwords applied to encrypted inputs.
type PDFConfig struct {
	UserPassword  string `mapstructure:"user_password" yaml:"user_password" json:"-"`
	OwnerPassword string `mapstructure:"owner_password" yaml:"owner_password" json:"-"`
}

// PreviewConfig contains page preview settings.
type PreviewConfig struct {
	ZoomLevels  []int `mapstructure:"zoom_levels" yaml:"zoom_levels" json:"zoom_levels"`
	DefaultZoom int   `mapstructure:"default_zoom" yaml:"default_zoom" json:"default_zoom"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
}

// RateLimitConfig limits uploads per client. Zero disables a limit.
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	RequestsPerHour   int  `mapstructure:"requests_per_hour" yaml:"requests_per_hour" json:"requests_per_hour"`
	MaxRequestsPerDay int  `mapstructure:"max_requests_per_day" yaml:"max_requests_per_day" json:"max_requests_per_day"`
	MaxDataPerDayMB   int  `mapstructure:"max_data_per_day_mb" yaml:"max_data_per_day_mb" json:"max_data_per_day_mb"`
}
