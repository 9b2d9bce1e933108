package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/helixml/bookshelf/internal/config"
)

func TestNewLogger(t *testing.T) {
	for _, format := range []config.LogFormat{config.LogFormatPretty, config.LogFormatJSON} {
		cfg := config.NewAppConfigWithOptions(config.WithLogFormat(format))
		logger := NewLogger(cfg)
		if logger == nil || logger.Slog() == nil {
			t.Fatalf("NewLogger(%s) returned an unusable logger", format)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "WARN")

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %q", len(lines), buf.String())
	}
	for i, line := range lines {
		var data map[string]any
		if err := json.Unmarshal([]byte(line), &data); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	ctx := WithCorrelationID(context.Background(), "corr-1")
	ctx = WithRequestID(ctx, "req-9")
	logger.InfoContext(ctx, "review created", "rating", 4)

	var data map[string]any
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if data["correlation_id"] != "corr-1" {
		t.Errorf("correlation_id = %v, want corr-1", data["correlation_id"])
	}
	if data["request_id"] != "req-9" {
		t.Errorf("request_id = %v, want req-9", data["request_id"])
	}
	if data["rating"] != float64(4) {
		t.Errorf("rating = %v, want 4", data["rating"])
	}
}

func TestLogger_WithContextWithoutIDs(t *testing.T) {
	logger := Discard()
	if logger.WithContext(context.Background()) != logger {
		t.Error("expected the same logger when context carries no IDs")
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO").With("component", "enrichment")
	logger.Info("attempt")

	var data map[string]any
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if data["component"] != "enrichment" {
		t.Errorf("component = %v, want enrichment", data["component"])
	}
}

func TestContextAccessors(t *testing.T) {
	ctx := context.Background()
	if CorrelationID(ctx) != "" || RequestID(ctx) != "" {
		t.Error("expected empty IDs on a bare context")
	}
	ctx = WithCorrelationID(ctx, "abc")
	if CorrelationID(ctx) != "abc" {
		t.Errorf("CorrelationID = %q, want abc", CorrelationID(ctx))
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("dropped")
	if logger.Slog().Enabled(context.Background(), slog.LevelError) {
		t.Error("discard logger should not enable error level")
	}
}

func TestSlogLogger_CarriesContextIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO").Slog()

	ctx := WithCorrelationID(context.Background(), "corr-7")
	logger.InfoContext(ctx, "AI processing completed successfully")

	var data map[string]any
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if data["correlation_id"] != "corr-7" {
		t.Errorf("correlation_id = %v, want corr-7", data["correlation_id"])
	}
	if _, ok := data["request_id"]; ok {
		t.Errorf("unexpected request_id in %v", data)
	}
}
