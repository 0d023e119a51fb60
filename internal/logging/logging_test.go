package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestComponentTagsChildLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	Component(base, "crawler").Info("pass finished")

	if !strings.Contains(buf.String(), "component=crawler") {
		t.Fatalf("expected component attribute, got %q", buf.String())
	}
}

func TestComponentNilBase(t *testing.T) {
	t.Parallel()

	if Component(nil, "crawler") == nil {
		t.Fatal("expected a usable logger for a nil base")
	}
}

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for input, want := range cases {
		if got := levelFromString(input); got != want {
			t.Fatalf("levelFromString(%q) = %v, want %v", input, got, want)
		}
	}
}
