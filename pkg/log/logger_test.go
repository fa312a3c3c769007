package log

import (
	"bytes"
	"encoding/json"
	stdlog "log"
	"strings"
	"testing"
)

func newBufferLogger(level Level, f Formatter) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewLogger(WithLevel(level), WithFormatter(f), WithOutput(NewWriterOutput(&buf)))
	return l, &buf
}

func TestTextFormatterFieldsSorted(t *testing.T) {
	l, buf := newBufferLogger(InfoLevel, &TextFormatter{})
	l.With(Component("ingest")).Info("written", Str("key", "123:1"), Int("n", 2))

	line := buf.String()
	if !strings.Contains(line, "INFO  written") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "component=ingest key=123:1 n=2") {
		t.Fatalf("fields not sorted or missing: %q", line)
	}
}

func TestLevelGate(t *testing.T) {
	l, buf := newBufferLogger(WarnLevel, &TextFormatter{})
	l.Info("hidden")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected warn entry")
	}

	// derived loggers share the level
	child := l.With(Str("a", "b"))
	l.SetLevel(DebugLevel)
	buf.Reset()
	child.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Fatalf("derived logger did not follow SetLevel: %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	l, buf := newBufferLogger(InfoLevel, &JSONFormatter{})
	l.Error("write failed", Str("key", "k1"), Err(errString("boom")))

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal: %v (%q)", err, buf.String())
	}
	if m["msg"] != "write failed" || m["level"] != "ERROR" || m["error"] != "boom" || m["key"] != "k1" {
		t.Fatalf("unexpected entry: %v", m)
	}
}

func TestRedaction(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithFormatter(&TextFormatter{}), WithOutput(NewWriterOutput(&buf)), WithRedactions("password"))
	l.Info("login", Str("password", "hunter2"))
	if strings.Contains(buf.String(), "hunter2") || !strings.Contains(buf.String(), "[REDACTED]") {
		t.Fatalf("expected redaction: %q", buf.String())
	}
}

func TestFatalExits(t *testing.T) {
	code := 0
	orig := exit
	exit = func(c int) { code = c }
	t.Cleanup(func() { exit = orig })

	l, buf := newBufferLogger(InfoLevel, &TextFormatter{})
	l.Fatal("cannot open store")
	if code != 1 {
		t.Fatalf("want exit 1, got %d", code)
	}
	if !strings.Contains(buf.String(), "FATAL") {
		t.Fatalf("expected FATAL entry: %q", buf.String())
	}
}

func TestStdLogger(t *testing.T) {
	l, buf := newBufferLogger(InfoLevel, &TextFormatter{})
	std := ToStdLogger(l, WarnLevel)
	std.Printf("pebble says %d", 42)
	if !strings.Contains(buf.String(), "WARN  pebble says 42") {
		t.Fatalf("unexpected: %q", buf.String())
	}
	var _ *stdlog.Logger = std
}

func TestApplyConfig(t *testing.T) {
	if _, err := ApplyConfig(&Config{Level: "loud"}); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := ApplyConfig(&Config{Format: "xml"}); err == nil {
		t.Fatalf("expected format error")
	}
	l, err := ApplyConfig(&Config{Level: "debug", Format: "json", Output: "null"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if l.GetLevel() != DebugLevel {
		t.Fatalf("level not applied")
	}
}

type errString string

func (e errString) Error() string { return string(e) }
