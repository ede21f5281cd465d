package config

import (
	"git.home.luguber.info/inful/docsite/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer("log level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer("log format", map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

func NormalizeLogFormat(raw string) LogFormat {
	return logFormatNormalizer.Normalize(raw)
}

// RootPolicy mirrors content.RootPolicy for the configuration layer.
type RootPolicy string

const (
	RootPolicyNotFound RootPolicy = "not_found"
	RootPolicyIndex    RootPolicy = "index"
)

var rootPolicyNormalizer = normalization.NewNormalizer("root policy", map[string]RootPolicy{
	"not_found": RootPolicyNotFound,
	"notfound":  RootPolicyNotFound,
	"index":     RootPolicyIndex,
}, RootPolicyNotFound)

// SinkKind names a feedback sink.
type SinkKind string

const (
	SinkLog    SinkKind = "log"
	SinkNATS   SinkKind = "nats"
	SinkSQLite SinkKind = "sqlite"
)

var sinkKindNormalizer = normalization.NewNormalizer("feedback sink", map[string]SinkKind{
	"log":    SinkLog,
	"nats":   SinkNATS,
	"sqlite": SinkSQLite,
}, SinkLog)
