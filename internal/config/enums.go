package config

import (
	"log/slog"

	"git.home.luguber.info/inful/pwabuilder/internal/foundation/normalization"
)

// BuildMode selects production or development bundling.
type BuildMode string

const (
	ModeProduction  BuildMode = "production"
	ModeDevelopment BuildMode = "development"
)

var buildModeNormalizer = normalization.NewNormalizer("build mode", map[string]BuildMode{
	"production":  ModeProduction,
	"prod":        ModeProduction,
	"development": ModeDevelopment,
	"dev":         ModeDevelopment,
}, ModeProduction)

// ParseBuildMode parses NODE_ENV style values. Empty means production.
func ParseBuildMode(raw string) (BuildMode, error) { return buildModeNormalizer.Parse(raw) }

// ScannerKind selects how script references are found in legacy pages.
type ScannerKind string

const (
	// ScannerPattern matches <script src> with a regular expression.
	ScannerPattern ScannerKind = "pattern"
	// ScannerMarkup tokenizes the page as HTML. It also finds tags with unusual whitespace
	// or quoting, so it can rewrite references the pattern scanner leaves alone.
	ScannerMarkup ScannerKind = "markup"
)

var scannerNormalizer = normalization.NewNormalizer("rewrite scanner", map[string]ScannerKind{
	"pattern": ScannerPattern,
	"regex":   ScannerPattern,
	"markup":  ScannerMarkup,
	"html":    ScannerMarkup,
}, ScannerPattern)

func ParseScannerKind(raw string) (ScannerKind, error) { return scannerNormalizer.Parse(raw) }

// LegacyCompilerKind selects the legacy module compiler implementation.
type LegacyCompilerKind string

const (
	LegacyCompilerEsbuild LegacyCompilerKind = "esbuild"
	LegacyCompilerCommand LegacyCompilerKind = "command"
)

var legacyCompilerNormalizer = normalization.NewNormalizer("legacy compiler", map[string]LegacyCompilerKind{
	"esbuild": LegacyCompilerEsbuild,
	"command": LegacyCompilerCommand,
}, LegacyCompilerEsbuild)

func ParseLegacyCompiler(raw string) (LegacyCompilerKind, error) {
	return legacyCompilerNormalizer.Parse(raw)
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

var logFormatNormalizer = normalization.NewNormalizer("log format", map[string]LogFormat{
	"text": LogFormatText,
	"json": LogFormatJSON,
}, LogFormatText)

var logLevelNormalizer = normalization.NewNormalizer("log level", map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}, slog.LevelInfo)
