package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/evolveapp/statusprobe/internal/config"
)

// newLogger builds the diagnostics logger. It always writes to stderr;
// stdout belongs to the status document.
func newLogger(conf config.Log) (*zap.Logger, error) {
	var c zap.Config
	if conf.Pretty || isatty.IsTerminal(os.Stderr.Fd()) {
		c = zap.NewDevelopmentConfig()
	} else {
		c = zap.NewProductionConfig()
	}

	level := new(zapcore.Level)
	if err := level.Set(conf.Level); err != nil {
		*level = zapcore.InfoLevel
	}
	c.Level = zap.NewAtomicLevelAt(*level)

	c.OutputPaths = []string{"stderr"}
	c.ErrorOutputPaths = []string{"stderr"}
	c.EncoderConfig.TimeKey = "ts"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return c.Build(zap.Fields(
		zap.String("service", "statusprobe"),
		zap.String("version", version),
	))
}
