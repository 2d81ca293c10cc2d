// Package logger holds the process-wide structured logger built on zap.
package logger

import "go.uber.org/zap"

// Log is the shared SugaredLogger. It defaults to a no-op logger so packages
// may log before Init runs (mainly in tests).
var Log = zap.NewNop().Sugar()

// Init replaces Log with a development logger at the given level.
func Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = zl.Sugar()
	return nil
}
