package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Sugar *zap.SugaredLogger

// InitLogger builds a production logger at the given level. An unknown level
// falls back to info.
func InitLogger(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	Sugar = logger.Sugar()
	return nil
}

func GetLogger() *zap.SugaredLogger {
	if Sugar == nil {
		logger, _ := zap.NewDevelopment()
		Sugar = logger.Sugar()
	}
	return Sugar
}

func Sync() {
	if Sugar != nil {
		Sugar.Sync()
	}
}
