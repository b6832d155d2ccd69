// Package logger provides the bot's structured slog logger: flat JSON or
// key=value lines, written asynchronously to stdout and an optional file.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/applybot/core/buildinfo"
	coreconfig "github.com/m3rciful/applybot/core/config"
)

var (
	initOnce sync.Once
	stopOnce sync.Once

	out     *asyncWriter
	closers []io.Closer

	levelVar      slog.LevelVar
	debugSampler  = newRatioSampler(1, 50)
	traceOverride bool

	// L is the base logger; nil until InitLogger runs. Prefer the
	// package-level Debug/Info/Warn/Error helpers, which tolerate that.
	L *slog.Logger
)

// settings is the resolved logging section of the config.
type settings struct {
	format  logFormat
	order   []string
	level   slog.Level
	sample  [2]int
	profile string
	file    string
}

func settingsFrom(cfg *coreconfig.Config) settings {
	s := settings{format: formatJSON, order: defaultKeyOrder, level: slog.LevelInfo, sample: [2]int{1, 50}, profile: "prod"}
	if cfg == nil {
		return s
	}
	lc := cfg.Logging
	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		s.profile = p
	}
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		s.format = formatKV
	case "json":
	default:
		if s.profile == "debug" || s.profile == "dev" {
			s.format = formatKV
		}
	}
	if raw := strings.TrimSpace(lc.KeysOrder); raw != "" && raw != "default" {
		var order []string
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				order = append(order, k)
			}
		}
		if len(order) > 0 {
			s.order = order
		}
	}
	s.level = parseLevel(lc.Level)
	if raw := strings.TrimSpace(lc.DebugSample); raw != "" {
		num, den := parseRatio(raw)
		s.sample = [2]int{num, den}
	}
	if dir, name := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile); dir != "" && name != "" {
		s.file = filepath.Join(dir, name)
	}
	return s
}

// InitLogger configures the global logger from cfg. Only the first call has
// an effect. A log file that cannot be opened is reported on stderr and
// skipped so the bot still starts.
func InitLogger(cfg *coreconfig.Config) error {
	initOnce.Do(func() {
		s := settingsFrom(cfg)
		levelVar.Set(s.level)
		SetDebugSample(s.sample[0], s.sample[1])
		traceOverride = isTruthy(os.Getenv("TRACE")) || isTruthy(os.Getenv("LOG_TRACE"))

		sinks := []io.Writer{os.Stdout}
		if s.file != "" {
			if f, err := openLogFile(s.file); err != nil {
				fmt.Fprintf(os.Stderr, "logger: %v\n", err)
			} else {
				sinks = append(sinks, f)
				closers = append(closers, f)
			}
		}
		out = newAsyncWriter(sinks, 64<<10)

		L = slog.New(newStructuredHandler(handlerConfig{
			level:    &levelVar,
			writer:   out,
			format:   s.format,
			keyOrder: s.order,
		}))
		slog.SetDefault(L)

		attrs := []slog.Attr{
			slog.String("go_version", runtime.Version()),
			slog.String("build", buildinfo.String()),
			slog.String("cfg_profile", s.profile),
		}
		if cfg != nil {
			attrs = append(attrs,
				slog.String("mode", cfg.Telegram.RunMode),
				slog.Int("admins", len(cfg.Telegram.AdminIDs)),
			)
		}
		Info(context.Background(), "app", "startup", attrs...)
	})
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// Shutdown flushes pending lines and closes the log file. Safe to call more than once.
func Shutdown() error {
	var err error
	stopOnce.Do(func() {
		var errs []error
		if out != nil {
			errs = append(errs, out.Close())
		}
		for _, c := range closers {
			errs = append(errs, c.Close())
		}
		err = errors.Join(errs...)
	})
	return err
}

// Background returns context.Background().
func Background() context.Context {
	return context.Background()
}

// Component returns L scoped to name, or nil before InitLogger.
func Component(name string) *slog.Logger {
	if L == nil {
		return nil
	}
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// LogEvent writes event through logg, falling back to the context logger and
// then L. It is a no-op while no logger is configured.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if logg == nil {
		return
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Event logs event for component at level.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), level, event, attrs...)
}

func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

// SetDebugSample lets num of every den high-volume debug lines through.
// A zero ratio lets every line through.
func SetDebugSample(num, den int) {
	debugSampler.Set(num, den)
}

// ShouldSampleDebug reports whether a high-volume debug line should be written.
// TRACE=1 or LOG_TRACE=1 in the environment lets every line through.
func ShouldSampleDebug() bool {
	return traceOverride || debugSampler.Allow()
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
