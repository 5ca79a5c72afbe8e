package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"
)

const (
	// EnginePdfcpu selects pdfcpu as the preferred PDF engine.
	EnginePdfcpu = "pdfcpu"
	// EngineGofpdi selects the gofpdf/gofpdi page-copy engine.
	EngineGofpdi = "gofpdi"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Engine: EngineConfig{
			Preferred:         EnginePdfcpu,
			FallbackEnabled:   true,
			RelaxedValidation: true,
		},
		Convert: ConvertConfig{
			TempDir:       os.TempDir(),
			ImagesEnabled: true,
			TextEnabled:   true,
			Image: ImageConfig{
				Margin:      20,
				JPEGQuality: 92,
			},
			Text: TextConfig{
				FontSize:       12,
				LineHeight:     14,
				Margin:         40,
				FontCandidates: DefaultFontCandidates(runtime.GOOS),
			},
			Word: WordConfig{
				Enabled:    true,
				Command:    "",
				TimeoutSec: 120,
			},
		},
		Preview: PreviewConfig{
			ZoomLevels:  []int{50, 75, 100, 125, 150, 200},
			DefaultZoom: 100,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     50,
			TimeoutSec:      120,
			ShutdownTimeout: 10,
			RateLimit: RateLimitConfig{
				RequestsPerMinute: 60,
				RequestsPerHour:   1000,
				MaxRequestsPerDay: 5000,
				MaxDataPerDayMB:   500,
			},
		},
	}
}

// DefaultFontCandidates returns the ordered list of system fonts with Cyrillic
// coverage probed for text conversion on the given platform.
func DefaultFontCandidates(goos string) []string {
	switch goos {
	case "windows":
		return []string{
			"C:/Windows/Fonts/arial.ttf",
			"C:/Windows/Fonts/calibri.ttf",
			"C:/Windows/Fonts/tahoma.ttf",
			"C:/Windows/Fonts/verdana.ttf",
		}
	case "darwin":
		return []string{
			"/System/Library/Fonts/Supplemental/Arial.ttf",
			"/Library/Fonts/Arial.ttf",
			"/System/Library/Fonts/Supplemental/Verdana.ttf",
		}
	default:
		return []string{
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
			"/usr/share/fonts/TTF/DejaVuSans.ttf",
			"/usr/share/fonts/TTF/arial.ttf",
			"/usr/share/fonts/dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/truetype/ttf-dejavu/DejaVuSans.ttf",
		}
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validEngines := []string{EnginePdfcpu, EngineGofpdi}
	if !slices.Contains(validEngines, c.Engine.Preferred) {
		return fmt.Errorf("invalid preferred engine: %s (must be one of: %s)",
			c.Engine.Preferred, strings.Join(validEngines, ", "))
	}

	if c.Convert.Text.FontSize <= 0 {
		return fmt.Errorf("invalid text font size: %v (must be positive)", c.Convert.Text.FontSize)
	}
	if c.Convert.Text.LineHeight < c.Convert.Text.FontSize {
		return fmt.Errorf("invalid text line height: %v (must be at least the font size %v)",
			c.Convert.Text.LineHeight, c.Convert.Text.FontSize)
	}
	if c.Convert.Text.Margin < 0 || c.Convert.Image.Margin < 0 {
		return fmt.Errorf("invalid margins: text %v, image %v (must not be negative)",
			c.Convert.Text.Margin, c.Convert.Image.Margin)
	}
	if c.Convert.Image.JPEGQuality < 1 || c.Convert.Image.JPEGQuality > 100 {
		return fmt.Errorf("invalid jpeg quality: %d (must be between 1 and 100)", c.Convert.Image.JPEGQuality)
	}
	if c.Convert.Word.TimeoutSec <= 0 {
		return fmt.Errorf("invalid word conversion timeout: %d (must be positive)", c.Convert.Word.TimeoutSec)
	}

	if len(c.Preview.ZoomLevels) == 0 {
		return fmt.Errorf("invalid zoom levels: at least one level is required")
	}
	for _, z := range c.Preview.ZoomLevels {
		if z <= 0 {
			return fmt.Errorf("invalid zoom level: %d (must be positive)", z)
		}
	}
	if !slices.Contains(c.Preview.ZoomLevels, c.Preview.DefaultZoom) {
		return fmt.Errorf("invalid default zoom: %d (must be one of the zoom levels)", c.Preview.DefaultZoom)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	rl := c.Server.RateLimit
	if rl.RequestsPerMinute < 0 || rl.RequestsPerHour < 0 || rl.MaxRequestsPerDay < 0 || rl.MaxDataPerDayMB < 0 {
		return errors.New("invalid rate limit: limits must not be negative")
	}

	return nil
}
