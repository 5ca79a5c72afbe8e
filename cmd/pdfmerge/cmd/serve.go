package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/pdfmerge/internal/capability"
	"github.com/MeKo-Tech/pdfmerge/internal/config"
	"github.com/MeKo-Tech/pdfmerge/internal/server"
	"github.com/MeKo-Tech/pdfmerge/internal/version"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the merge API",
	Long: `Start an HTTP server that provides REST and WebSocket endpoints for merging.

The server provides the following endpoints:
  POST /merge        - Merge uploaded files (multipart field "files")
  POST /info         - Page count and validity of an uploaded file
  POST /preview      - Render a page of an uploaded file to PNG
  GET  /ws           - WebSocket merge with progress events
  GET  /capabilities - Available conversions and supported extensions
  GET  /health       - Health check endpoint
  GET  /metrics      - Prometheus metrics

Examples:
  pdfmerge serve
  pdfmerge serve --port 8080
  pdfmerge serve --host 0.0.0.0 --port 3000 --rate-limit-enabled`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		applyServeFlags(cmd, &cfg.Server)

		host, port := cfg.Server.Host, cfg.Server.Port
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", port)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ver, _, _ := version.Info()
		mergeServer, err := server.NewServer(server.Config{
			App:     *cfg,
			Caps:    capability.Detect(*cfg),
			Version: ver,
			Logger:  slog.Default(),
		})
		if err != nil {
			return fmt.Errorf("failed to initialize server: %w", err)
		}

		mux := http.NewServeMux()
		mergeServer.SetupRoutes(mux)

		timeout := time.Duration(cfg.Server.TimeoutSec) * time.Second
		httpServer := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       timeout,
			WriteTimeout:      timeout,
		}

		go func() {
			slog.Info("Starting merge server", "host", host, "port", port)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Server error", "error", err)
				cancel()
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal", "signal", sig.String())
		case <-ctx.Done():
			slog.Info("Context cancelled, initiating shutdown")
		}

		shutdownTimeout := cfg.Server.ShutdownTimeout
		slog.Info("Starting graceful shutdown", "timeout", fmt.Sprintf("%ds", shutdownTimeout))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
			time.Duration(shutdownTimeout)*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		} else {
			slog.Info("HTTP server shutdown completed")
		}

		if err := mergeServer.Close(); err != nil {
			slog.Error("Server cleanup error", "error", err)
		}

		slog.Info("Graceful shutdown completed")
		return nil
	},
}

// applyServeFlags overrides server settings with explicitly set flags.
func applyServeFlags(cmd *cobra.Command, sc *config.ServerConfig) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		sc.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		sc.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("cors-origin") {
		sc.CORSOrigin, _ = flags.GetString("cors-origin")
	}
	if flags.Changed("max-upload-size") {
		sc.MaxUploadMB, _ = flags.GetInt("max-upload-size")
	}
	if flags.Changed("timeout") {
		sc.TimeoutSec, _ = flags.GetInt("timeout")
	}
	if flags.Changed("shutdown-timeout") {
		sc.ShutdownTimeout, _ = flags.GetInt("shutdown-timeout")
	}

	rl := &sc.RateLimit
	if flags.Changed("rate-limit-enabled") {
		rl.Enabled, _ = flags.GetBool("rate-limit-enabled")
	}
	if flags.Changed("requests-per-minute") {
		rl.RequestsPerMinute, _ = flags.GetInt("requests-per-minute")
	}
	if flags.Changed("requests-per-hour") {
		rl.RequestsPerHour, _ = flags.GetInt("requests-per-hour")
	}
	if flags.Changed("max-requests-per-day") {
		rl.MaxRequestsPerDay, _ = flags.GetInt("max-requests-per-day")
	}
	if flags.Changed("max-data-per-day") {
		rl.MaxDataPerDayMB, _ = flags.GetInt("max-data-per-day")
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origins")
	serveCmd.Flags().Int("max-upload-size", 50, "maximum upload size in MB")
	serveCmd.Flags().Int("timeout", 120, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	// Rate limiting flags
	serveCmd.Flags().Bool("rate-limit-enabled", false, "enable rate limiting")
	serveCmd.Flags().Int("requests-per-minute", 60, "maximum requests per minute per client")
	serveCmd.Flags().Int("requests-per-hour", 1000, "maximum requests per hour per client")
	serveCmd.Flags().Int("max-requests-per-day", 5000, "maximum requests per day per client")
	serveCmd.Flags().Int("max-data-per-day", 500, "maximum data uploaded per day per client (MB)")
}
