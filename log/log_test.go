package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestTerminalHandlerFormatsKeyValues(t *testing.T) {
	out := new(bytes.Buffer)
	l := NewLogger(NewTerminalHandler(out, false))
	l.Info("processed batch", "size", 1000, "block", 7)

	have := out.String()
	if !strings.Contains(have, "processed batch") {
		t.Fatalf("expected message in output, got %q", have)
	}
	if !strings.Contains(have, "size=1000") || !strings.Contains(have, "block=7") {
		t.Fatalf("expected key=value pairs in output, got %q", have)
	}
	if !strings.HasPrefix(have, "INFO ") {
		t.Fatalf("expected INFO level tag, got %q", have)
	}
}

func TestTerminalHandlerRespectsWithAttrs(t *testing.T) {
	out := new(bytes.Buffer)
	h := NewTerminalHandler(out, false).WithAttrs(nil)
	l := NewLogger(h)
	l.Warn("backpressure")
	if !strings.Contains(out.String(), "backpressure") {
		t.Fatalf("expected message, got %q", out.String())
	}
}

func TestDefaultLoggerIsSettable(t *testing.T) {
	out := new(bytes.Buffer)
	prev := Default()
	defer SetDefault(prev)

	SetDefault(NewLogger(NewTerminalHandler(out, false)))
	Error("mined block failed validation", "reason", "bad hash")
	if !strings.Contains(out.String(), "mined block failed validation") {
		t.Fatalf("expected message via package-level Error, got %q", out.String())
	}
}
