package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/signalgarden/melia/internal"
)

// Log output formats accepted by --log-format.
const (
	FormatCompact = "compact"
	FormatFull    = "full"
	FormatPretty  = "pretty"
	FormatJSON    = "json"
)

// Disables a target entirely.
const levelOff = zapcore.FatalLevel + 1

// Per-target log levels parsed from a filter such as "warn,melia=debug".
//
// A bare level sets the default. A "target=level" directive applies to
// loggers whose name equals the target or starts with the target followed by
// a dot; the longest matching target wins.
type logFilter struct {
	fallback zapcore.Level
	targets  map[string]zapcore.Level
}

// Parses a comma-separated log filter. Levels are trace, debug, info, warn,
// error, and off. A target without a level enables everything for it.
func parseLogFilter(s string) (logFilter, error) {
	f := logFilter{fallback: zapcore.ErrorLevel, targets: map[string]zapcore.Level{}}
	for _, directive := range strings.Split(s, ",") {
		directive = strings.TrimSpace(directive)
		if directive == "" {
			continue
		}
		target, level, hasLevel := strings.Cut(directive, "=")
		if !hasLevel {
			if lvl, err := parseLevel(directive); err == nil {
				f.fallback = lvl
				continue
			}
			f.targets[directive] = zapcore.DebugLevel
			continue
		}
		lvl, err := parseLevel(level)
		if err != nil {
			return logFilter{}, fmt.Errorf("log filter directive %q: %w", directive, err)
		}
		if target == "" {
			return logFilter{}, fmt.Errorf("log filter directive %q: empty target", directive)
		}
		f.targets[target] = lvl
	}
	return f, nil
}

func parseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(s) {
	case "trace", "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "off":
		return levelOff, nil
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

// Level in effect for the named logger.
func (f logFilter) levelFor(name string) zapcore.Level {
	best, lvl := -1, f.fallback
	for target, l := range f.targets {
		if (name == target || strings.HasPrefix(name, target+".")) && len(target) > best {
			best, lvl = len(target), l
		}
	}
	return lvl
}

// Most verbose level any logger may use.
func (f logFilter) lowest() zapcore.Level {
	lvl := f.fallback
	for _, l := range f.targets {
		lvl = min(lvl, l)
	}
	return lvl
}

// Core that drops entries below the level configured for their logger.
type filterCore struct {
	zapcore.Core
	filter logFilter
}

func (c *filterCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.filter.lowest() && c.Core.Enabled(lvl)
}

func (c *filterCore) With(fields []zapcore.Field) zapcore.Core {
	return &filterCore{Core: c.Core.With(fields), filter: c.filter}
}

func (c *filterCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if ent.Level < c.filter.levelFor(ent.LoggerName) {
		return ce
	}
	return c.Core.Check(ent, ce)
}

// Builds the daemon's logger.
//
// Output goes to w through a zap core; call sites use log/slog. Colors are
// used by the pretty format when w is a terminal.
func newLogger(filter, format string, w io.Writer) (*slog.Logger, error) {
	f, err := parseLogFilter(filter)
	if err != nil {
		return nil, err
	}

	var enc zapcore.Encoder
	caller := false
	switch format {
	case FormatCompact:
		cfg := encoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		cfg.EncodeName = func(string, zapcore.PrimitiveArrayEncoder) {}
		enc = zapcore.NewConsoleEncoder(cfg)
	case FormatFull:
		caller = true
		enc = zapcore.NewConsoleEncoder(encoderConfig())
	case FormatPretty, "":
		cfg := encoderConfig()
		if isTerminal(w) {
			cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		enc = zapcore.NewConsoleEncoder(cfg)
	case FormatJSON:
		caller = true
		cfg := encoderConfig()
		cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		cfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	core := &filterCore{
		Core:   zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.DebugLevel),
		filter: f,
	}
	handler := zapslog.NewHandler(core, zapslog.WithName(internal.Name), zapslog.WithCaller(caller))
	return slog.New(handler), nil
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "logger",
		CallerKey:        "caller",
		MessageKey:       "msg",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		ConsoleSeparator: " ",
	}
}

// Whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Logger used before flags are parsed, seeded from build-time defaults.
func DefaultLogger() *slog.Logger {
	l, err := newLogger(internal.DefaultLogFilter(), FormatPretty, os.Stderr)
	if err != nil {
		return slog.Default()
	}
	return l
}

// Replaces the default logger according to the parsed flags.
func configureLogger(filter, format string) error {
	l, err := newLogger(filter, format, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(l)
	return nil
}
