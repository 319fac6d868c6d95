package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// envOr returns the environment variable envKey's value if set and
// non-empty, or defaultValue otherwise.
func envOr(envKey, defaultValue string) string {
	val, ok := os.LookupEnv(envKey)
	if !ok || val == "" {
		return defaultValue
	}
	return val
}

// envToBool parses envKey as a boolean ("1"/"0", "true"/"false",
// case-insensitive). The second return value reports whether envKey
// was set to a recognized boolean value at all.
func envToBool(envKey string) (bool, bool) {
	val, ok := os.LookupEnv(envKey)
	if !ok {
		return false, false
	}
	switch strings.ToLower(val) {
	case "1", "true":
		return true, true
	case "0", "false":
		return false, true
	default:
		return false, false
	}
}

// envToInt parses envKey as a non-negative integer no larger than
// 65535. The second return value reports whether envKey held a valid
// one.
func envToInt(envKey string) (int, bool) {
	val, ok := os.LookupEnv(envKey)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(val, 10, 16)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// buildLogger maps a CLI verbosity count (0=Warn, 1=Info, 2+=Debug)
// onto a zap leveled logger writing to stderr.
func buildLogger(verbosity int) (*zap.SugaredLogger, error) {
	level := zap.WarnLevel
	switch {
	case verbosity >= 2:
		level = zap.DebugLevel
	case verbosity == 1:
		level = zap.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger.Sugar(), nil
}
