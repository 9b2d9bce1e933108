package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestTerminalHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	h := newTerminalHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})

	ts := time.Date(2026, 1, 15, 10, 30, 45, 123000000, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "server started", 0)
	r.AddAttrs(slog.Int("port", 3000), slog.String("title", "The Great Gatsby"))

	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"10:30:45.123", "INF", "server started", "port=", "3000", `"The Great Gatsby"`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output: %s", want, output)
		}
	}
	if !strings.HasSuffix(output, "\n") {
		t.Error("expected trailing newline")
	}
}

func TestTerminalHandler_Levels(t *testing.T) {
	tests := []struct {
		level    slog.Level
		expected string
	}{
		{slog.LevelDebug, "DBG"},
		{slog.LevelInfo, "INF"},
		{slog.LevelWarn, "WRN"},
		{slog.LevelError, "ERR"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		h := newTerminalHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
		_ = h.Handle(context.Background(), slog.NewRecord(time.Now(), tt.level, "msg", 0))
		if !strings.Contains(buf.String(), tt.expected) {
			t.Errorf("level %v: expected %s in %q", tt.level, tt.expected, buf.String())
		}
	}
}

func TestTerminalHandler_Enabled(t *testing.T) {
	h := newTerminalHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestTerminalHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newTerminalHandler(&buf, nil)).
		With("component", "api").
		WithGroup("http").
		With("method", "POST")

	logger.Info("request", "status", 201, slog.Group("route", "path", "/books"))

	output := buf.String()
	for _, want := range []string{"component=", "http.method=", "http.status=", "http.route.path="} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output: %s", want, output)
		}
	}
}

func TestTerminalHandler_EmptyGroupName(t *testing.T) {
	h := newTerminalHandler(&bytes.Buffer{}, nil)
	if h.WithGroup("") != h {
		t.Error("empty group should return the same handler")
	}
}

func TestAttrValue_QuotesEmptyAndSpaced(t *testing.T) {
	if got := attrValue(slog.StringValue("")); got != `""` {
		t.Errorf("attrValue(empty) = %s", got)
	}
	if got := attrValue(slog.StringValue("plain")); got != "plain" {
		t.Errorf("attrValue(plain) = %s", got)
	}
}
