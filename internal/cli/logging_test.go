package cli

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLogFilter(t *testing.T) {
	tests := []struct {
		filter string
		name   string
		want   zapcore.Level
	}{
		{"warn,melia=info", "melia", zapcore.InfoLevel},
		{"warn,melia=info", "melia.server", zapcore.InfoLevel},
		{"warn,melia=info", "meliad", zapcore.WarnLevel},
		{"warn,melia=info", "other", zapcore.WarnLevel},
		{"melia=debug", "other", zapcore.ErrorLevel},
		{"info", "melia", zapcore.InfoLevel},
		{"melia", "melia", zapcore.DebugLevel},
		{"melia=trace", "melia", zapcore.DebugLevel},
		{"melia=off", "melia", levelOff},
		{"debug,melia=info,melia.server=error", "melia.server", zapcore.ErrorLevel},
		{"debug,melia=info,melia.server=error", "melia.ctl", zapcore.InfoLevel},
		{" warn , melia=INFO ", "melia", zapcore.InfoLevel},
		{"", "melia", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.filter+"/"+tt.name, func(t *testing.T) {
			f, err := parseLogFilter(tt.filter)
			if err != nil {
				t.Fatalf("parseLogFilter(%q): %v", tt.filter, err)
			}
			if got := f.levelFor(tt.name); got != tt.want {
				t.Errorf("levelFor(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestParseLogFilterErrors(t *testing.T) {
	for _, filter := range []string{"melia=loud", "=info", "warn,melia="} {
		if _, err := parseLogFilter(filter); err == nil {
			t.Errorf("parseLogFilter(%q) succeeded, want error", filter)
		}
	}
}

func TestFilterCore(t *testing.T) {
	f, err := parseLogFilter("warn,melia=info")
	if err != nil {
		t.Fatal(err)
	}
	obs, logs := observer.New(zapcore.DebugLevel)
	core := &filterCore{Core: obs, filter: f}

	melia := slog.New(zapslog.NewHandler(core, zapslog.WithName("melia")))
	other := slog.New(zapslog.NewHandler(core, zapslog.WithName("other")))

	melia.Debug("dropped")
	melia.Info("kept", "k", "v")
	other.Info("dropped")
	other.Warn("kept")
	melia.With("conn", 1).Info("kept")

	if got := logs.Len(); got != 3 {
		t.Fatalf("got %d entries, want 3: %v", got, logs.All())
	}
	for _, e := range logs.All() {
		if e.Message != "kept" {
			t.Errorf("unexpected entry %q from %q", e.Message, e.LoggerName)
		}
	}
	if !core.Enabled(zapcore.InfoLevel) || core.Enabled(zapcore.DebugLevel) {
		t.Error("Enabled does not follow the most verbose target")
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger("warn,melia=info", FormatJSON, &buf)
	if err != nil {
		t.Fatal(err)
	}

	l.Debug("quiet")
	l.Info("hello", "answer", 42)

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("debug entry written: %s", out)
	}
	for _, want := range []string{`"msg":"hello"`, `"logger":"melia"`, `"answer":42`, `"level":"info"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %s missing %s", out, want)
		}
	}
}

func TestNewLoggerFormats(t *testing.T) {
	for _, format := range []string{FormatCompact, FormatFull, FormatPretty} {
		var buf bytes.Buffer
		l, err := newLogger("info", format, &buf)
		if err != nil {
			t.Fatalf("newLogger(%q): %v", format, err)
		}
		l.Info("hello")
		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("%s: output %q missing message", format, buf.String())
		}
	}

	if _, err := newLogger("info", "xml", &bytes.Buffer{}); err == nil {
		t.Error("newLogger accepted unknown format")
	}
	if _, err := newLogger("melia=loud", FormatJSON, &bytes.Buffer{}); err == nil {
		t.Error("newLogger accepted invalid filter")
	}
}
