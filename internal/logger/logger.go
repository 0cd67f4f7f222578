package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

func levelFromString(s string) (l zapcore.Level, ok bool) {
	switch strings.ToLower(s) {
	case "debug", "dbg":
		return zapcore.DebugLevel, true
	case "info", "inf":
		return zapcore.InfoLevel, true
	case "warn", "wrn", "":
		return zapcore.WarnLevel, true
	case "error", "err":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.WarnLevel, false
	}
}

// New returns a logger at the given level. It logs JSON to a rotating file if
// path is set, and human readable lines to stderr otherwise.
func New(path, level string, stderr io.Writer) (*zap.Logger, error) {
	lvl, ok := levelFromString(level)
	if !ok {
		return nil, errors.Newf("unknown log level %q", level)
	}

	if path == "" {
		encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(stderr), lvl)), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create log directory")
	}

	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(sink), lvl)), nil
}
