package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/pwabuilder/internal/foundation/errors"
)

// Environment variable names.
const (
	EnvNodeEnv           = "NODE_ENV"
	EnvRelease           = "RELEASE_VERSION"
	EnvEmailUser         = "EMAIL_USER"
	EnvEmailPassword     = "EMAIL_PASSWORD"
	EnvTelemetryDisabled = "TELEMETRY_DISABLED"
	EnvDoNotTrack        = "DO_NOT_TRACK"

	EnvSourceDir       = "PWABUILDER_SOURCE_DIR"
	EnvOutputDir       = "PWABUILDER_OUTPUT_DIR"
	EnvConfigFile      = "PWABUILDER_CONFIG"
	EnvLogLevel        = "PWABUILDER_LOG_LEVEL"
	EnvLogFormat       = "PWABUILDER_LOG_FORMAT"
	EnvScanner         = "PWABUILDER_REWRITE_SCANNER"
	EnvCopyConcurrency = "PWABUILDER_COPY_CONCURRENCY"
	EnvLegacyCompiler  = "PWABUILDER_LEGACY_COMPILER"
	EnvMetricsFile     = "PWABUILDER_METRICS_FILE"
	EnvHistoryDB       = "PWABUILDER_HISTORY_DB"
	EnvReportFile      = "PWABUILDER_REPORT_FILE"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load reads .env files from the working directory into the process environment (existing
// variables win) and builds the configuration from it.
func Load() (*Config, error) {
	LoadEnvFiles(".")
	return FromEnv(os.LookupEnv)
}

// LoadEnvFiles loads .env and .env.local from dir when present and returns the files applied.
// Variables already set in the process environment are not overridden.
func LoadEnvFiles(dir string) []string {
	var loaded []string
	for _, name := range []string{".env", ".env.local"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			fmt.Fprintf(os.Stderr, "Note: could not load %s: %v\n", p, err)
			continue
		}
		loaded = append(loaded, p)
	}
	return loaded
}

// FromEnv builds a configuration from lookup. It resolves directories to absolute paths,
// applies the optional YAML manifest file (expanding ${VAR} references through lookup) and
// validates the result.
func FromEnv(lookup LookupFunc) (*Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := Default()

	var err error
	if cfg.Mode, err = ParseBuildMode(get(EnvNodeEnv)); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid "+EnvNodeEnv).Fatal().Build()
	}
	if cfg.Scanner, err = ParseScannerKind(get(EnvScanner)); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid "+EnvScanner).Fatal().Build()
	}

	cfg.Release = get(EnvRelease)
	cfg.Email = EmailConfig{User: get(EnvEmailUser), Password: get(EnvEmailPassword)}
	cfg.TelemetryDisabled = truthy(get(EnvTelemetryDisabled)) || truthy(get(EnvDoNotTrack))
	cfg.Logging.Level = logLevelNormalizer.Normalize(get(EnvLogLevel))
	cfg.Logging.Format = logFormatNormalizer.Normalize(get(EnvLogFormat))
	cfg.MetricsFile = get(EnvMetricsFile)
	cfg.HistoryDB = get(EnvHistoryDB)
	cfg.ReportFile = get(EnvReportFile)

	if raw := get(EnvCopyConcurrency); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 1 {
			return nil, ferrors.ConfigError(EnvCopyConcurrency + " must be a positive integer").
				WithContext("value", raw).Build()
		}
		cfg.CopyConcurrency = n
	}

	sourceDir := get(EnvSourceDir)
	if sourceDir == "" {
		sourceDir = "."
	}
	if cfg.SourceDir, err = filepath.Abs(sourceDir); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "resolve source directory").Fatal().Build()
	}

	outputDir := get(EnvOutputDir)
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(cfg.SourceDir, outputDir)
	}
	cfg.OutputDir = filepath.Clean(outputDir)

	configFile := get(EnvConfigFile)
	explicit := configFile != ""
	if !explicit {
		configFile = DefaultConfigFile
	}
	if !filepath.IsAbs(configFile) {
		configFile = filepath.Join(cfg.SourceDir, configFile)
	}
	if err := cfg.applyFile(configFile, explicit, lookup); err != nil {
		return nil, err
	}

	// The environment wins over the file for the compiler selection.
	if raw := get(EnvLegacyCompiler); raw != "" {
		if cfg.Tools.LegacyCompiler, err = ParseLegacyCompiler(raw); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid "+EnvLegacyCompiler).Fatal().Build()
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fileConfig is the shape of the optional YAML file. Decoding happens on top of the defaults,
// so omitted keys keep their default value and a given list replaces the default list.
type fileConfig struct {
	Tools  *ToolsConfig  `yaml:"tools"`
	Assets *AssetsConfig `yaml:"assets"`
}

func (c *Config) applyFile(configPath string, required bool, lookup LookupFunc) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").
			Fatal().WithContext("path", configPath).Build()
	}

	expanded := os.Expand(string(data), func(key string) string {
		v, _ := lookup(key)
		return v
	})
	fc := fileConfig{Tools: &c.Tools, Assets: &c.Assets}
	if err := yaml.Unmarshal([]byte(expanded), &fc); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse config file").
			Fatal().WithContext("path", configPath).Build()
	}
	c.ConfigFile = configPath
	return nil
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
