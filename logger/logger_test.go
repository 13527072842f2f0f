package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", line, err)
	}
	return m
}

func TestNew_DefaultsOnNilConfig(t *testing.T) {
	l := New(nil, "gopocket")
	if l == nil {
		t.Fatal("expected logger")
	}
	if !l.Enabled(zerolog.InfoLevel) {
		t.Error("expected info level to be enabled by default")
	}
	if l.Enabled(zerolog.DebugLevel) {
		t.Error("expected debug level to be disabled by default")
	}
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	l := New(&Config{Level: "loud", Format: FormatJSON, Output: "discard"}, "svc")
	if !l.Enabled(zerolog.InfoLevel) || l.Enabled(zerolog.DebugLevel) {
		t.Error("expected info level fallback")
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_OUTPUT", "discard")
	l := NewFromEnv("svc")
	if !l.Enabled(zerolog.DebugLevel) {
		t.Error("expected debug level from env")
	}
}

func TestWithFieldsAndComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug").
		WithComponent("records").
		WithFields(Fields(FieldCollection, "posts"))

	l.Info("record created", Fields(FieldStatusCode, 200))

	m := decodeLine(t, &buf)
	if m[FieldComponent] != "records" {
		t.Errorf("expected component records, got %v", m[FieldComponent])
	}
	if m[FieldCollection] != "posts" {
		t.Errorf("expected collection posts, got %v", m[FieldCollection])
	}
	if m[FieldStatusCode] != float64(200) {
		t.Errorf("expected status_code 200, got %v", m[FieldStatusCode])
	}
	if m["message"] != "record created" {
		t.Errorf("expected message, got %v", m["message"])
	}
}

func TestWithContext_RequestID(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithTrace(ctx, "trace-1", "span-1")

	NewWithWriter(&buf, "debug").WithContext(ctx).Debug("dispatch")

	m := decodeLine(t, &buf)
	if m[FieldRequestID] != "req-1" {
		t.Errorf("expected request_id req-1, got %v", m[FieldRequestID])
	}
	if m[FieldTraceID] != "trace-1" || m[FieldSpanID] != "span-1" {
		t.Errorf("expected trace fields, got %v", m)
	}
	if RequestIDFromContext(ctx) != "req-1" {
		t.Errorf("expected req-1, got %q", RequestIDFromContext(ctx))
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, "debug").WithError(errors.New("boom")).Error("failed")
	m := decodeLine(t, &buf)
	if m["error"] != "boom" {
		t.Errorf("expected error boom, got %v", m["error"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}
	l.Warn("shown")
	if buf.Len() == 0 {
		t.Fatal("expected warn to be written")
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("discarded")
	if l.Enabled(zerolog.ErrorLevel) {
		t.Error("nop logger should not be enabled")
	}
}

func TestGlobalLogger(t *testing.T) {
	if GetGlobalLogger() == nil {
		t.Fatal("expected a non-nil default global logger")
	}
	var buf bytes.Buffer
	custom := NewWithWriter(&buf, "info")
	SetGlobalLogger(custom)
	defer SetGlobalLogger(nil)
	if GetGlobalLogger() != custom {
		t.Error("expected installed logger")
	}
}

func TestConsoleFormatWritesServiceTag(t *testing.T) {
	var buf bytes.Buffer
	zl := newConsoleLogger(&buf, true, "gopocket")
	zl.Info().Msg("hello")
	out := buf.String()
	if !strings.Contains(out, "[GOP][INF]") {
		t.Errorf("expected service and level tag, got %q", out)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	var c Config
	c.ApplyDefaults()
	if c.Level != "info" || c.Format != FormatConsole || c.Output != "stdout" {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if !c.Timestamp {
		t.Error("expected timestamp enabled")
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Config{Level: "debug", Format: FormatJSON}
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
	bad := Config{Level: "verbose", Format: FormatJSON}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for invalid level")
	}
	badFormat := Config{Level: "info", Format: "xml"}
	if err := badFormat.Validate(); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two", 3, "ignored", "dangling")
	if len(m) != 2 {
		t.Fatalf("expected 2 fields, got %d: %v", len(m), m)
	}
	if m["a"] != 1 || m["b"] != "two" {
		t.Errorf("unexpected fields %v", m)
	}
}
