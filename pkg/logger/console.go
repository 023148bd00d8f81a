package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type consoleLogger struct {
	base zerolog.Logger
}

func newConsoleLogger(output io.Writer, level slog.Level) Logger {
	_, isFile := output.(*os.File)
	writer := zerolog.ConsoleWriter{
		Out:        output,
		NoColor:    !isFile,
		TimeFormat: time.Kitchen,
		FormatLevel: func(value any) string {
			label, _ := value.(string)
			if label == zerolog.LevelFatalValue {
				return "CRT"
			}
			return fmt.Sprintf("%-3.3s", strings.ToUpper(label))
		},
	}
	base := zerolog.New(writer).Level(zerologLevel(level)).With().Timestamp().Logger()
	return &consoleLogger{base: base}
}

func (l *consoleLogger) Debug(message string, args ...any) {
	l.base.Debug().Fields(fieldsFromArgs(args)).Msg(message)
}

func (l *consoleLogger) Info(message string, args ...any) {
	l.base.Info().Fields(fieldsFromArgs(args)).Msg(message)
}

func (l *consoleLogger) Warn(message string, args ...any) {
	l.base.Warn().Fields(fieldsFromArgs(args)).Msg(message)
}

func (l *consoleLogger) Error(message string, args ...any) {
	l.base.Error().Fields(fieldsFromArgs(args)).Msg(message)
}

// Critical is written at zerolog's fatal level without exiting the process.
func (l *consoleLogger) Critical(message string, args ...any) {
	l.base.WithLevel(zerolog.FatalLevel).Fields(fieldsFromArgs(args)).Msg(message)
}

func (l *consoleLogger) BusinessError(message string, err error, args ...any) {
	if err == nil {
		return
	}
	l.base.Warn().Err(err).Fields(fieldsFromArgs(args)).Msg(message)
}

func (l *consoleLogger) InternalError(message string, err error, args ...any) {
	if err == nil {
		return
	}
	l.base.Error().Err(err).Fields(fieldsFromArgs(args)).Msg(message)
}

func (l *consoleLogger) With(args ...any) Logger {
	return &consoleLogger{base: l.base.With().Fields(fieldsFromArgs(args)).Logger()}
}

func zerologLevel(level slog.Level) zerolog.Level {
	switch {
	case level >= LevelCritical:
		return zerolog.FatalLevel
	case level >= slog.LevelError:
		return zerolog.ErrorLevel
	case level >= slog.LevelWarn:
		return zerolog.WarnLevel
	case level >= slog.LevelInfo:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}

// fieldsFromArgs pairs slog-style key/value arguments. A dangling value is
// kept under "!BADKEY" like slog does.
func fieldsFromArgs(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	fields := make(map[string]any, len(args)/2+1)
	for i := 0; i < len(args); i++ {
		key, ok := args[i].(string)
		if !ok || i+1 >= len(args) {
			fields["!BADKEY"] = args[i]
			continue
		}
		fields[key] = args[i+1]
		i++
	}
	return fields
}
