package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("prod", "info", &buf)
	log.Info().Str("key", "value").Msg("hello")

	if buf.Len() == 0 {
		t.Fatal("expected log output, got nothing")
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"message":"hello"`)) {
		t.Errorf("expected JSON message field, got: %s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"key":"value"`)) {
		t.Errorf("expected structured field, got: %s", buf.String())
	}
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("prod", "error", &buf)
	log.Info().Msg("quiet")

	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered at error level, got: %s", buf.String())
	}
}

func TestNewWithWriter_DevConsole(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("dev", "info", &buf)
	log.Info().Msg("hello")

	// Console output is plain text, not JSON.
	if bytes.Contains(buf.Bytes(), []byte(`"message"`)) {
		t.Errorf("expected console output in dev, got JSON: %s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("hello")) {
		t.Errorf("expected message text, got: %s", buf.String())
	}
}
