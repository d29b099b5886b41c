package config

// Config represents the complete configuration for webpage.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" toml:"logging" json:"logging"`
	// Thumbnail controls where and how page previews are written.
	Thumbnail ThumbnailConfig `mapstructure:"thumbnail" toml:"thumbnail" json:"thumbnail"`
	// Headless configures the Chromium engine used by the capture command.
	Headless HeadlessConfig `mapstructure:"headless" toml:"headless" json:"headless"`
	// Window configures the GTK window used by the browse command.
	Window WindowConfig `mapstructure:"window" toml:"window" json:"window"`
	// Runtime points at a manually installed GTK/WebKitGTK tree.
	Runtime RuntimeConfig `mapstructure:"runtime" toml:"runtime" json:"runtime"`
	// Server configures the HTTP API started by the serve command.
	Server ServerConfig `mapstructure:"server" toml:"server" json:"server"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" toml:"level" json:"level" jsonschema:"enum=trace,enum=debug,enum=info,enum=warn,enum=error,enum=disabled"`
	Format string `mapstructure:"format" toml:"format" json:"format" jsonschema:"enum=console,enum=json"`
	// File additionally writes JSON lines to a size-rotated file when non-empty.
	File       string `mapstructure:"file" toml:"file" json:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" toml:"max_size_mb" json:"max_size_mb" jsonschema:"minimum=1,default=25"`
	MaxBackups int    `mapstructure:"max_backups" toml:"max_backups" json:"max_backups" jsonschema:"minimum=0,default=10"`
	MaxAgeDays int    `mapstructure:"max_age_days" toml:"max_age_days" json:"max_age_days" jsonschema:"minimum=0,default=14"`
}

// ThumbnailConfig holds thumbnail output settings.
type ThumbnailConfig struct {
	// CacheDir overrides the XDG cache directory when non-empty.
	CacheDir string `mapstructure:"cache_dir" toml:"cache_dir" json:"cache_dir"`
	// Quality is the JPEG quality (1-100).
	Quality int `mapstructure:"quality" toml:"quality" json:"quality" jsonschema:"minimum=1,maximum=100,default=75"`
}

// HeadlessConfig holds headless Chromium settings.
type HeadlessConfig struct {
	// Width and Height are the emulated viewport in CSS pixels.
	Width  int `mapstructure:"width" toml:"width" json:"width" jsonschema:"minimum=1"`
	Height int `mapstructure:"height" toml:"height" json:"height" jsonschema:"minimum=1"`
	// TimeoutSeconds bounds a single page load plus capture.
	TimeoutSeconds int `mapstructure:"timeout_seconds" toml:"timeout_seconds" json:"timeout_seconds" jsonschema:"minimum=1"`
	// ExecPath points at a Chromium binary; empty lets chromedp search PATH.
	ExecPath string `mapstructure:"exec_path" toml:"exec_path" json:"exec_path"`
	// RemoteURL attaches to a running browser's DevTools websocket instead
	// of launching ExecPath.
	RemoteURL string `mapstructure:"remote_url" toml:"remote_url" json:"remote_url"`
	// Concurrency is the number of tabs captured in parallel.
	Concurrency int `mapstructure:"concurrency" toml:"concurrency" json:"concurrency" jsonschema:"minimum=1"`
}

// WindowConfig holds GTK window geometry.
type WindowConfig struct {
	Width         int `mapstructure:"width" toml:"width" json:"width" jsonschema:"minimum=1"`
	Height        int `mapstructure:"height" toml:"height" json:"height" jsonschema:"minimum=1"`
	ToolbarHeight int `mapstructure:"toolbar_height" toml:"toolbar_height" json:"toolbar_height" jsonschema:"minimum=0"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	// Addr is the host:port to listen on.
	Addr string `mapstructure:"addr" toml:"addr" json:"addr" jsonschema:"default=127.0.0.1:8787"`
	// ShutdownSeconds bounds graceful shutdown of in-flight requests.
	ShutdownSeconds int `mapstructure:"shutdown_seconds" toml:"shutdown_seconds" json:"shutdown_seconds" jsonschema:"minimum=1,default=10"`
}

// RuntimeConfig holds native runtime lookup settings.
type RuntimeConfig struct {
	// Prefix is prepended to pkg-config and library search paths, e.g. /opt/webkitgtk.
	Prefix string `mapstructure:"prefix" toml:"prefix" json:"prefix"`
}
