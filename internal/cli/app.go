// Package cli wires configuration, logging and use cases for the commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/bnema/webpage/internal/application/usecase"
	"github.com/bnema/webpage/internal/cli/styles"
	"github.com/bnema/webpage/internal/infrastructure/config"
	"github.com/bnema/webpage/internal/infrastructure/thumbnail"
	"github.com/bnema/webpage/internal/infrastructure/xdg"
	"github.com/bnema/webpage/internal/logging"
)

// App holds CLI dependencies.
type App struct {
	Config  *config.Config
	Manager *config.Manager
	Theme   *styles.Theme
	Paths   *xdg.Adapter

	// Use cases
	SaveThumbnailUC *usecase.SaveThumbnailUseCase

	// Services
	Thumbnails *thumbnail.Store

	// Context with logger
	ctx     context.Context
	logOut  io.Writer
	logFile *lumberjack.Logger
}

// NewApp loads the configuration file and builds every dependency from it.
func NewApp() (*App, error) {
	manager, err := config.NewManager()
	if err != nil {
		return nil, fmt.Errorf("create config manager: %w", err)
	}
	if err := manager.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewAppWithConfig(manager, manager.Get(), os.Stderr), nil
}

// NewAppWithConfig builds an App from an already loaded configuration.
// manager may be nil when live reload is not needed.
func NewAppWithConfig(manager *config.Manager, cfg *config.Config, logOut io.Writer) *App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	logFile, fileErr := openLogFile(cfg.Logging)
	logger := newLogger(cfg, logOut, logFile)
	if fileErr != nil {
		logger.Warn().Err(fileErr).Msg("log file disabled")
	}
	ctx := logging.WithContext(context.Background(), logger)

	paths := xdg.NewWithCacheDir(cfg.Thumbnail.CacheDir)

	return &App{
		Config:          cfg,
		Manager:         manager,
		Theme:           styles.NewTheme(),
		Paths:           paths,
		SaveThumbnailUC: usecase.NewSaveThumbnailUseCase(paths, cfg.Thumbnail.Quality),
		Thumbnails:      thumbnail.NewStore(paths),
		ctx:             ctx,
		logOut:          logOut,
		logFile:         logFile,
	}
}

func openLogFile(cfg config.LoggingConfig) (*lumberjack.Logger, error) {
	if cfg.File == "" {
		return nil, nil
	}
	return logging.NewFileWriter(logging.FileConfig{
		Path:       cfg.File,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
		Compress:   true,
	})
}

func newLogger(cfg *config.Config, out io.Writer, file *lumberjack.Logger) zerolog.Logger {
	lc := logging.Config{
		Level:      logging.ParseLevel(cfg.Logging.Level),
		Format:     cfg.Logging.Format,
		TimeFormat: "15:04:05",
		Output:     out,
	}
	if file != nil {
		lc.File = file
	}
	return logging.New(lc)
}

// Ctx returns the context carrying the application logger.
func (a *App) Ctx() context.Context {
	return a.ctx
}

// WatchConfig reloads the configuration file on change. The new logging
// level becomes zerolog's global floor; onReload, when set, runs after each
// successful reload.
func (a *App) WatchConfig(onReload func(*config.Config)) error {
	if a.Manager == nil {
		return fmt.Errorf("config manager not available")
	}
	a.Manager.OnConfigChange(func(cfg *config.Config) {
		logger := newLogger(cfg, a.logOut, a.logFile)
		logger.Info().Str("level", cfg.Logging.Level).Msg("configuration reloaded")
		zerolog.SetGlobalLevel(logging.ParseLevel(cfg.Logging.Level))
		if onReload != nil {
			onReload(cfg)
		}
	})
	return a.Manager.Watch()
}

// Close releases resources held by the App.
func (a *App) Close() error {
	if a.logFile == nil {
		return nil
	}
	return a.logFile.Close()
}
