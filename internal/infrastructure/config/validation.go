package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// validateConfig performs validation of configuration values
func validateConfig(config *Config) error {
	var validationErrors []string

	validationErrors = append(validationErrors, validateLogging(config)...)
	validationErrors = append(validationErrors, validateThumbnail(config)...)
	validationErrors = append(validationErrors, validateHeadless(config)...)
	validationErrors = append(validationErrors, validateWindow(config)...)
	validationErrors = append(validationErrors, validateServer(config)...)

	if len(validationErrors) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidConfig, strings.Join(validationErrors, "\n  - "))
	}

	return nil
}

func validateLogging(config *Config) []string {
	var validationErrors []string
	switch config.Logging.Level {
	case "trace", "debug", "info", "warn", "warning", "error", "disabled", "off":
	default:
		validationErrors = append(validationErrors, fmt.Sprintf("logging.level %q is not a known level", config.Logging.Level))
	}
	if config.Logging.Format != "console" && config.Logging.Format != "json" {
		validationErrors = append(validationErrors, "logging.format must be 'console' or 'json'")
	}
	if config.Logging.MaxSizeMB <= 0 {
		validationErrors = append(validationErrors, "logging.max_size_mb must be positive")
	}
	if config.Logging.MaxBackups < 0 || config.Logging.MaxAgeDays < 0 {
		validationErrors = append(validationErrors, "logging.max_backups and logging.max_age_days cannot be negative")
	}
	return validationErrors
}

func validateThumbnail(config *Config) []string {
	if config.Thumbnail.Quality < 1 || config.Thumbnail.Quality > 100 {
		return []string{"thumbnail.quality must be between 1 and 100"}
	}
	return nil
}

func validateHeadless(config *Config) []string {
	var validationErrors []string
	if config.Headless.Width <= 0 {
		validationErrors = append(validationErrors, "headless.width must be positive")
	}
	if config.Headless.Height <= 0 {
		validationErrors = append(validationErrors, "headless.height must be positive")
	}
	if config.Headless.TimeoutSeconds <= 0 {
		validationErrors = append(validationErrors, "headless.timeout_seconds must be positive")
	}
	if config.Headless.Concurrency <= 0 {
		validationErrors = append(validationErrors, "headless.concurrency must be positive")
	}
	if url := config.Headless.RemoteURL; url != "" && !hasAnyPrefix(url, "ws://", "wss://", "http://", "https://") {
		validationErrors = append(validationErrors, "headless.remote_url must be a ws://, wss://, http:// or https:// URL")
	}
	return validationErrors
}

func validateWindow(config *Config) []string {
	var validationErrors []string
	if config.Window.Width <= 0 {
		validationErrors = append(validationErrors, "window.width must be positive")
	}
	if config.Window.Height <= 0 {
		validationErrors = append(validationErrors, "window.height must be positive")
	}
	if config.Window.ToolbarHeight < 0 {
		validationErrors = append(validationErrors, "window.toolbar_height must be non-negative")
	}
	if config.Window.ToolbarHeight >= config.Window.Height && config.Window.Height > 0 {
		validationErrors = append(validationErrors, "window.toolbar_height must be smaller than window.height")
	}
	return validationErrors
}

func validateServer(config *Config) []string {
	var validationErrors []string
	if _, port, err := net.SplitHostPort(config.Server.Addr); err != nil || port == "" {
		validationErrors = append(validationErrors, fmt.Sprintf("server.addr must be host:port, got %q", config.Server.Addr))
	}
	if config.Server.ShutdownSeconds <= 0 {
		validationErrors = append(validationErrors, "server.shutdown_seconds must be positive")
	}
	return validationErrors
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
