package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"warn":    WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		" fatal ": FatalLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(
		WithLevel(WarnLevel),
		WithFormatter(&TextFormatter{}),
		WithOutput(NewWriterOutput(&buf)),
	)
	logger.Info("dropped")
	logger.Warn("kept")
	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info leaked past warn level:\n%s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn entry missing:\n%s", out)
	}
}

func TestTextFormatterFieldsSortedAndQuoted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(
		WithLevel(DebugLevel),
		WithFormatter(&TextFormatter{}),
		WithOutput(NewWriterOutput(&buf)),
	)
	logger.Info("started",
		Str("zone", "us-east"),
		Int("attempt", 2),
		Str("cmd", "npm run dev"),
	)
	line := buf.String()
	if !strings.Contains(line, `cmd="npm run dev"`) {
		t.Fatalf("value with spaces not quoted: %s", line)
	}
	if strings.Index(line, "attempt=") > strings.Index(line, "cmd=") {
		t.Fatalf("fields not sorted: %s", line)
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(
		WithLevel(InfoLevel),
		WithFormatter(&JSONFormatter{}),
		WithOutput(NewWriterOutput(&buf)),
	)
	logger.Error("append failed", Err(errors.New("disk full")), Uint64("seq", 7))

	var obj map[string]any
	if err := json.Unmarshal(buf.Bytes(), &obj); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if obj["msg"] != "append failed" || obj["level"] != "ERROR" {
		t.Fatalf("entry = %v", obj)
	}
	if obj["error"] != "disk full" {
		t.Fatalf("error field = %v", obj["error"])
	}
}

func TestWithAttachesContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(
		WithLevel(InfoLevel),
		WithFormatter(&TextFormatter{}),
		WithOutput(NewWriterOutput(&buf)),
	)
	child := logger.With(Component("chunker"))
	child.Info("flush")
	if !strings.Contains(buf.String(), "component=chunker") {
		t.Fatalf("context field missing: %s", buf.String())
	}
}
