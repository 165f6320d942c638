package util

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Debug is the highest DPrintf level that is logged.
var Debug uint64 = 0

var logger = zap.NewNop().Sugar()

// SetLogger directs DPrintf output to l.
func SetLogger(l *zap.SugaredLogger) {
	logger = l
}

// NewLogger builds a zap logger; format "json" selects the production
// encoder, anything else a human-readable console.
func NewLogger(format string, debug bool) (*zap.Logger, error) {
	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.OutputPaths = []string{"stderr"}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

func DPrintf(level uint64, format string, a ...interface{}) {
	if level <= Debug {
		logger.Debugf(format, a...)
	}
}

func RoundUp(n uint64, sz uint64) uint64 {
	return (n + sz - 1) / sz
}

func Min(n uint64, m uint64) uint64 {
	if n < m {
		return n
	} else {
		return m
	}
}

// Pack32 places two 32-bit fields in one little-endian 64-bit word, lo first.
func Pack32(lo uint32, hi uint32) uint64 {
	return uint64(lo) | uint64(hi)<<32
}

func Unpack32(v uint64) (uint32, uint32) {
	return uint32(v), uint32(v >> 32)
}
