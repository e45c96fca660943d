package logger

import (
	"io"
	"strings"

	"github.com/mattn/go-colorable"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func New(level, format string) *zap.Logger {
	return NewWithWriter(level, format, colorable.NewColorableStdout())
}

func NewWithWriter(level, format string, w io.Writer) *zap.Logger {
	return zap.New(zapcore.NewCore(
		buildEncoder(format),
		zapcore.AddSync(w),
		ParseLevel(level),
	))
}

func buildEncoder(format string) zapcore.Encoder {
	if strings.EqualFold(format, "json") {
		config := zap.NewProductionEncoderConfig()
		config.EncodeTime = zapcore.ISO8601TimeEncoder
		config.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewJSONEncoder(config)
	}

	config := zap.NewDevelopmentEncoderConfig()
	config.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(config)
}

func ParseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "INFO":
		return zapcore.InfoLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.DebugLevel
	}
}
