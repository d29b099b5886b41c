package config

// Default configuration constants
const (
	// Logging defaults
	defaultLogLevel  = "info"
	defaultLogFormat = "console"

	// Log file rotation defaults
	defaultLogMaxSizeMB  = 25
	defaultLogMaxBackups = 10
	defaultLogMaxAgeDays = 14

	// Thumbnail defaults
	defaultThumbnailQuality = 75

	// Headless defaults
	defaultHeadlessWidth       = 1280
	defaultHeadlessHeight      = 800
	defaultHeadlessTimeoutSecs = 30
	defaultHeadlessConcurrency = 4

	// Window defaults
	defaultWindowWidth   = 1024
	defaultWindowHeight  = 768
	defaultToolbarHeight = 48

	// Server defaults
	defaultServerAddr            = "127.0.0.1:8787"
	defaultServerShutdownSeconds = 10
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      defaultLogLevel,
			Format:     defaultLogFormat,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
		Thumbnail: ThumbnailConfig{
			Quality: defaultThumbnailQuality,
		},
		Headless: HeadlessConfig{
			Width:          defaultHeadlessWidth,
			Height:         defaultHeadlessHeight,
			TimeoutSeconds: defaultHeadlessTimeoutSecs,
			Concurrency:    defaultHeadlessConcurrency,
		},
		Window: WindowConfig{
			Width:         defaultWindowWidth,
			Height:        defaultWindowHeight,
			ToolbarHeight: defaultToolbarHeight,
		},
		Server: ServerConfig{
			Addr:            defaultServerAddr,
			ShutdownSeconds: defaultServerShutdownSeconds,
		},
	}
}
