package observability

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestStdLoggerEmitsFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdLogger(log.New(&buf, "", 0))

	l.Info("order book refreshed", F("pending", 3), F("suppressed", false))

	line := strings.TrimSpace(buf.String())
	for _, want := range []string{"INFO", "order book refreshed", "pending=3", "suppressed=false"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestStdLoggerSkipsEmptyKeys(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdLogger(log.New(&buf, "", 0))

	l.Error("poll failed", F("", "dropped"), F("err", "timeout"))

	line := buf.String()
	if strings.Contains(line, "dropped") {
		t.Errorf("empty-key field leaked into %q", line)
	}
	if !strings.Contains(line, "err=timeout") {
		t.Errorf("line %q missing err field", line)
	}
}

func TestNopLoggerIsSilent(t *testing.T) {
	var l Logger = NopLogger{}
	l.Debug("x")
	l.Info("x")
	l.Error("x")
}
