package main

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the console logger. ARMSIM_DEBUG=1 lowers the level to
// debug; ARMSIM_DEBUG_RUNTIME=1 enables the per-second frame statistics.
func newLogger() (logger, runtime *zap.Logger, err error) {
	level := zapcore.InfoLevel
	if os.Getenv("ARMSIM_DEBUG") == "1" {
		level = zapcore.DebugLevel
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	logger, err = config.Build()
	if err != nil {
		return nil, nil, err
	}

	runtime = zap.NewNop()
	if os.Getenv("ARMSIM_DEBUG_RUNTIME") == "1" {
		runtime = logger.WithOptions(zap.IncreaseLevel(zapcore.InfoLevel)).Named("runtime")
	}
	return logger, runtime, nil
}
