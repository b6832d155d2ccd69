// Package cmd runs the bot process: config, bootstrap, Telegram runtime and
// graceful shutdown on SIGINT or SIGTERM.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m3rciful/applybot/core/buildinfo"
	coreconfig "github.com/m3rciful/applybot/core/config"
	"github.com/m3rciful/applybot/core/logger"
	coretelegram "github.com/m3rciful/applybot/core/telegram"
)

// DefaultConfigPath is used when neither the env var nor Options name a file.
const DefaultConfigPath = "configs/config.yaml"

// TelegramApp is the minimal interface required to run a Telegram bot.
type TelegramApp interface {
	TelegramRunOptions() (coretelegram.RunOptions, error)
}

// Options describe how to load configuration, bootstrap the app, and run the bot.
// Only Bootstrap is required.
type Options struct {
	// ConfigEnvVar names the variable holding the config path; default CONFIG_PATH.
	ConfigEnvVar      string
	DefaultConfigPath string

	LoadConfig func(path string) (*coreconfig.Config, error)
	Bootstrap  func(ctx context.Context, cfg *coreconfig.Config) (TelegramApp, error)

	ShutdownLogger func() error
	RunTelegram    func(ctx context.Context, opts coretelegram.RunOptions) error
}

func (o *Options) defaults() error {
	if o.Bootstrap == nil {
		return errors.New("cmd: Bootstrap is required")
	}
	if o.ConfigEnvVar == "" {
		o.ConfigEnvVar = "CONFIG_PATH"
	}
	if o.DefaultConfigPath == "" {
		o.DefaultConfigPath = DefaultConfigPath
	}
	if o.LoadConfig == nil {
		o.LoadConfig = coreconfig.Load
	}
	if o.ShutdownLogger == nil {
		o.ShutdownLogger = logger.Shutdown
	}
	if o.RunTelegram == nil {
		o.RunTelegram = coretelegram.RunTelegram
	}
	return nil
}

func (o *Options) configPath() string {
	if p := os.Getenv(o.ConfigEnvVar); p != "" {
		return p
	}
	return o.DefaultConfigPath
}

// Run loads configuration, bootstraps the app and serves updates until a
// termination signal arrives.
func Run(opts Options) error {
	if err := opts.defaults(); err != nil {
		return err
	}

	path := opts.configPath()
	log.Printf("%s: loading config %s", buildinfo.String(), path)
	cfg, err := opts.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("cmd: failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startedAt := time.Now()
	app, err := opts.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap failed: %w", err)
	}
	defer func() {
		if err := opts.ShutdownLogger(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	runOpts, err := app.TelegramRunOptions()
	if err != nil {
		return fmt.Errorf("cmd: telegram options build failed: %w", err)
	}
	return opts.RunTelegram(ctx, withLifecycleLogs(runOpts, startedAt))
}

// withLifecycleLogs chains "ready" and "shutdown" log lines after the app's
// own hooks. The shutdown line reports sends still queued at that moment.
func withLifecycleLogs(ro coretelegram.RunOptions, startedAt time.Time) coretelegram.RunOptions {
	onStart, onStop := ro.OnStart, ro.OnStop
	ro.OnStart = func(ctx context.Context, rt coretelegram.Runtime) error {
		if onStart != nil {
			if err := onStart(ctx, rt); err != nil {
				return err
			}
		}
		logger.Info(ctx, "app", "ready", slog.Duration("startup_duration", time.Since(startedAt)))
		return nil
	}
	ro.OnStop = func(ctx context.Context, rt coretelegram.Runtime) error {
		pending := 0
		if rt.Dispatcher != nil {
			pending = rt.Dispatcher.Pending()
		}
		logger.Info(ctx, "app", "shutdown", slog.Int("pending", pending))
		if onStop != nil {
			return onStop(ctx, rt)
		}
		return nil
	}
	return ro
}
