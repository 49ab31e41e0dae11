package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"DEBUG", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{" error ", log.ErrorLevel},
		{"verbose", log.InfoLevel},
		{"", log.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: log.WarnLevel, Output: &buf, Prefix: "test"})

	logger.Info("hidden")
	logger.Warn("shown", "target", "web")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("output %q contains a message below the level", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "target=web") || !strings.Contains(out, "test") {
		t.Errorf("output %q, want message, prefix and fields", out)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: log.InfoLevel, Output: &buf, JSON: true})

	logger.Info("resolved", "name", "api")

	out := buf.String()
	if !strings.Contains(out, `"msg":"resolved"`) || !strings.Contains(out, `"name":"api"`) {
		t.Errorf("output %q, want JSON fields", out)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Level != log.InfoLevel || opts.Prefix != "buildtarget" || opts.Output == nil || opts.JSON {
		t.Errorf("DefaultOptions() = %+v", opts)
	}

	var buf bytes.Buffer
	opts.Output = &buf
	New(opts).Info("ready")
	if !strings.Contains(buf.String(), "buildtarget") {
		t.Errorf("output %q, want the default prefix", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("nothing happens")
}
