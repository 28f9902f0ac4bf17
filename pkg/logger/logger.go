// Package logger builds the zap.Logger a spatial index uses for its
// diagnostic output (node splits, root promotions, store growth).
// There is no server here and no config file to load from — callers
// construct a Config literal and get back a ready logger.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls level and encoding only; a library writes its logs
// to stderr and lets the embedding process redirect them.
type Config struct {
	// Level sets the minimum log level (e.g., "debug", "info", "warn", "error").
	Level string
	// Format selects "console" or "json" encoding. Empty defaults to console.
	Format string
}

// New builds a *zap.Logger from config. An unparseable Level falls
// back to Info rather than failing the caller's Create/Open.
func New(config Config) *zap.Logger {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(config.Level)); err != nil {
		level.SetLevel(zap.InfoLevel)
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if strings.ToLower(config.Format) == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), level)
	return zap.New(core).WithOptions(zap.Fields(zap.String("component", "spatialidx")))
}

// Nop returns a logger that discards everything, for callers that
// don't want the index's diagnostics.
func Nop() *zap.Logger { return zap.NewNop() }
