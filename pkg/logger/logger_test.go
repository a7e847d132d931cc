
package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewWithWriterLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")
	l.Info().Msg("hidden")
	l.Warn().Str("term", "ai").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "term=ai") {
		t.Fatalf("missing warn line: %q", out)
	}
}

func TestNewWithWriterDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "nonsense")
	l.Debug().Msg("debug")
	l.Info().Msg("info")
	if strings.Contains(buf.String(), "debug") || !strings.Contains(buf.String(), "info") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
