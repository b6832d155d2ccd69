package logger

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"log/slog"
)

// renderLine runs emit against a fresh handler and returns the single flushed line.
func renderLine(t *testing.T, format logFormat, component string, emit func(log *slog.Logger)) string {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelDebug,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	emit(slog.New(handler).With("component", component))
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log line")
	}
	return line
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	ctx := WithRID(Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	line := renderLine(t, formatKV, "workflow", func(log *slog.Logger) {
		LogEvent(ctx, log, slog.LevelInfo, "step.advanced",
			slog.String("status", "ok"),
			slog.String("step", "apply.experience"),
		)
	})
	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=workflow", "event=step.advanced", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9", "step=apply.experience"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	ctx := WithRID(Background(), "rid-json")
	ctx = WithHandler(ctx, "callback.approve")

	line := renderLine(t, formatJSON, "tg", func(log *slog.Logger) {
		LogEvent(ctx, log, slog.LevelError, "handler.handled",
			slog.String("status", "fail"),
			slog.String("err", "boom"),
			slog.String("err_code", "MALFORMED_PAYLOAD"),
		)
	})
	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"tg"`, `"event":"handler.handled"`, `"status":"fail"`, `"rid":"rid-json"`, `"handler":"callback.approve"`, `"err":"boom"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	rawRID := "123:456:789"
	ctx := WithRID(Background(), rawRID)

	kv := renderLine(t, formatKV, "app", func(log *slog.Logger) {
		LogEvent(ctx, log, slog.LevelInfo, "rid.test")
	})
	if !strings.Contains(kv, "rid="+CompactRID(rawRID)) {
		t.Fatalf("expected compact rid, got %s", kv)
	}
	if strings.Contains(kv, "rid_full=") {
		t.Fatalf("rid_full should be omitted in KV output, got %s", kv)
	}

	js := renderLine(t, formatJSON, "app", func(log *slog.Logger) {
		LogEvent(ctx, log, slog.LevelInfo, "rid.test")
	})
	if !strings.Contains(js, `"rid":"`+CompactRID(rawRID)+`"`) {
		t.Fatalf("expected compact rid in JSON, got %s", js)
	}
	if !strings.Contains(js, `"rid_full":"`+rawRID+`"`) {
		t.Fatalf("expected rid_full in JSON output, got %s", js)
	}
}

func TestStructuredHandlerDurationAndOutcome(t *testing.T) {
	line := renderLine(t, formatKV, "tg.sender", func(log *slog.Logger) {
		log.LogAttrs(context.Background(), slog.LevelInfo, "send.success",
			slog.Duration("duration", 1499*time.Microsecond),
			slog.String("outcome", "exploded"),
		)
	})
	if !strings.Contains(line, "duration_ms=1") {
		t.Fatalf("expected duration_ms=1, got %s", line)
	}
	if strings.Contains(line, "outcome=") {
		t.Fatalf("unknown outcome must be dropped, got %s", line)
	}
	if !strings.Contains(line, "event=send.success") {
		t.Fatalf("message should become event, got %s", line)
	}
}

func TestHelpersTolerateUninitializedLogger(t *testing.T) {
	if L != nil {
		t.Skip("global logger already initialized")
	}
	// must not panic before InitLogger
	Info(Background(), "workflow", "noop")
	LogEvent(Background(), nil, slog.LevelWarn, "noop")
	if Component("tg") != nil {
		t.Fatal("component logger should be nil before init")
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	got := []bool{s.Allow(), s.Allow(), s.Allow(), s.Allow()}
	want := []bool{true, false, false, true}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("allow #%d = %v, want %v", i, got[i], want[i])
		}
	}
	if num, den := parseRatio("10"); num != 1 || den != 10 {
		t.Fatalf("parseRatio(10) = %d/%d", num, den)
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("a\x00b​c\nd", 10); got != "abc\nd" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
	if got := SanitizeLimit("привет", 3); got != "при" {
		t.Fatalf("SanitizeLimit runes = %q", got)
	}
}
