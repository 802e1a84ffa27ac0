package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It discards everything until Init is
// called so packages can log unconditionally, including under test.
var Log = zap.NewNop().Sugar()

// Init points Log at logFilePath as JSON lines. The interactive terminal is
// never a log destination.
func Init(logFilePath string, verbose bool) error {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{logFilePath}
	config.ErrorOutputPaths = []string{logFilePath}
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Sampling = nil
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	l, err := config.Build()
	if err != nil {
		return err
	}
	Log = l.Sugar()
	Log.Infow("Logger initialized.", "path", logFilePath, "verbose", verbose)
	return nil
}

// Sync flushes buffered entries. Call it on exit.
func Sync() {
	_ = Log.Sync()
}
