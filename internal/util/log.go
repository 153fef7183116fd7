package util

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	level     = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	useColors = true
	logger    = newLogger()
	quiet     bool
)

func newLogger() *zap.SugaredLogger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if useColors {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.CallerKey = ""

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stderr), level)
	return zap.New(core).Sugar()
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
	}
}

// SetQuiet enables quiet mode (errors only)
func SetQuiet(q bool) {
	quiet = q
	if q {
		level.SetLevel(zapcore.ErrorLevel)
	}
}

// IsQuiet reports whether quiet mode is on
func IsQuiet() bool {
	return quiet
}

// SetColors enables or disables colored output
func SetColors(enabled bool) {
	useColors = enabled
	logger = newLogger()
}

// Logger returns the shared structured logger
func Logger() *zap.Logger {
	return logger.Desugar()
}

// DebugLog logs debug messages
func DebugLog(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// InfoLog logs informational messages
func InfoLog(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// WarnLog logs warning messages
func WarnLog(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// ErrorLog logs error messages
func ErrorLog(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

// SuccessLog logs success messages (shown unless quiet)
func SuccessLog(format string, args ...interface{}) {
	logger.Infof("✓ "+format, args...)
}

// Sync flushes buffered log output
func Sync() {
	_ = logger.Sync()
}
