package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L is the process-wide logger. Init must be called before use.
var L *zap.Logger

// Init builds the production logger at the given level.
func Init(level string) {
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level.SetLevel(lvl)
	L, _ = cfg.Build()
}

// Sync flushes buffered log entries.
func Sync() {
	if L != nil {
		_ = L.Sync()
	}
}
