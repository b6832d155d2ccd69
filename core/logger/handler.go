package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeLayout = "2006-01-02T15:04:05.000Z07:00"
)

type handlerConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

type field struct {
	key string
	val any
}

// structuredHandler writes one flat line per record. Groups become dotted
// keys, durations become integer *_ms keys and identifiers stored in the
// context fill in whatever the call site did not pass.
type structuredHandler struct {
	cfg    handlerConfig
	group  string
	preset []field
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if len(cfg.keyOrder) == 0 {
		cfg.keyOrder = defaultKeyOrder
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return errors.New("logger: writer not initialized")
	}
	ts := r.Time.UTC()
	rec := map[string]any{
		"ts":    ts.Truncate(time.Millisecond).Format(timeLayout),
		"level": levelName(r.Level),
	}
	if h.cfg.format == formatJSON {
		rec["ts_unix_nano"] = ts.UnixNano()
	}
	for _, f := range h.preset {
		rec[f.key] = f.val
	}
	r.Attrs(func(a slog.Attr) bool {
		flatten(h.group, a, func(f field) { rec[f.key] = f.val })
		return true
	})
	fillFromContext(ctx, rec)
	h.finish(rec, r.Message)

	line, err := encode(h.cfg.format, rec, h.cfg.keyOrder)
	if err != nil {
		return err
	}
	return h.cfg.writer.Write(append(line, '\n'))
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.preset = slices.Clone(h.preset)
	for _, a := range attrs {
		flatten(h.group, a, func(f field) { clone.preset = append(clone.preset, f) })
	}
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = joinKey(h.group, name)
	return &clone
}

// finish applies the line conventions: compact rid (full value kept in JSON),
// mandatory event and component, normalized enumerations, no empty values.
func (h *structuredHandler) finish(rec map[string]any, msg string) {
	if rid, _ := rec["rid"].(string); rid != "" {
		if short := CompactRID(rid); short != rid {
			if h.cfg.format == formatJSON {
				if _, ok := rec["rid_full"]; !ok {
					rec["rid_full"] = rid
				}
			}
			rec["rid"] = short
		}
	}
	if ev, _ := rec["event"].(string); ev == "" {
		rec["event"] = orDefault(msg, "unknown")
	}
	if c, _ := rec["component"].(string); c == "" {
		rec["component"] = "app"
	}
	if s, ok := rec["status"].(string); ok {
		rec["status"] = strings.ToLower(s)
	}
	if o, ok := rec["outcome"].(string); ok && !outcomes[strings.ToLower(o)] {
		delete(rec, "outcome")
	}
	for k, v := range rec {
		if v == nil || v == "" {
			delete(rec, k)
		}
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	}
	return prefix + "." + key
}

func flatten(prefix string, a slog.Attr, emit func(field)) {
	v := a.Value.Resolve()
	key := joinKey(prefix, a.Key)
	if v.Kind() == slog.KindGroup {
		for _, child := range v.Group() {
			flatten(key, child, emit)
		}
		return
	}
	if key == "" {
		return
	}
	if f, ok := normalize(key, v); ok {
		emit(f)
	}
}

func normalize(key string, v slog.Value) (field, bool) {
	switch v.Kind() {
	case slog.KindString:
		return field{key, strings.TrimSpace(v.String())}, true
	case slog.KindBool:
		return field{key, v.Bool()}, true
	case slog.KindInt64:
		return field{key, v.Int64()}, true
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return field{key, int64(u)}, true
		}
		return field{key, v.Uint64()}, true
	case slog.KindFloat64:
		return field{key, v.Float64()}, true
	case slog.KindDuration:
		return millis(key, v.Duration()), true
	case slog.KindTime:
		return field{key, v.Time().UTC().Format(time.RFC3339Nano)}, true
	}
	switch x := v.Any().(type) {
	case nil:
		return field{}, false
	case error:
		return field{key, x.Error()}, true
	case string:
		return field{key, strings.TrimSpace(x)}, true
	case time.Duration:
		return millis(key, x), true
	case fmt.Stringer:
		return field{key, x.String()}, true
	default:
		return field{key, fmt.Sprint(x)}, true
	}
}

// millis renames duration keys with an _ms suffix ("duration" -> "duration_ms").
func millis(key string, d time.Duration) field {
	if !strings.HasSuffix(key, "_ms") {
		key += "_ms"
	}
	return field{key, RoundMS(d).Milliseconds()}
}

// orderedKeys lists keys found in order first, then the rest sorted.
func orderedKeys(rec map[string]any, order []string) []string {
	keys := make([]string, 0, len(rec))
	listed := make(map[string]bool, len(order))
	for _, k := range order {
		if _, ok := rec[k]; ok && !listed[k] {
			keys = append(keys, k)
		}
		listed[k] = true
	}
	for _, k := range slices.Sorted(maps.Keys(rec)) {
		if !listed[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

func encode(format logFormat, rec map[string]any, order []string) ([]byte, error) {
	var b bytes.Buffer
	keys := orderedKeys(rec, order)
	if format != formatJSON {
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(kvValue(rec[k]))
		}
		return b.Bytes(), nil
	}
	b.WriteByte('{')
	for i, k := range keys {
		val, err := json.Marshal(rec[k])
		if err != nil {
			return nil, fmt.Errorf("logger: encode %q: %w", k, err)
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(k))
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func kvValue(v any) string {
	s := fmt.Sprint(v)
	if strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}
