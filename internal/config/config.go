package config

import (
	"log/slog"
	"path"
	"path/filepath"
	"strings"
)

// Config is the complete build configuration. It is constructed once at process start
// (see Load) and passed to every component; nothing below the CLI reads the environment.
type Config struct {
	// SourceDir is the absolute project root; external tools run here.
	SourceDir string
	// OutputDir is the absolute output tree root (dist/).
	OutputDir string
	// ConfigFile is the optional YAML manifest file that was applied, if any.
	ConfigFile string

	Mode              BuildMode
	Release           string
	TelemetryDisabled bool
	Email             EmailConfig

	Tools  ToolsConfig
	Assets AssetsConfig

	Scanner         ScannerKind
	CopyConcurrency int
	Logging         LoggingConfig

	MetricsFile string
	HistoryDB   string
	ReportFile  string
}

// EmailConfig holds the credentials of the serverless email function. They are checked for
// presence only and never forwarded into client bundles.
type EmailConfig struct {
	User     string
	Password string
}

// Configured reports whether both credentials are present.
func (e EmailConfig) Configured() bool { return e.User != "" && e.Password != "" }

// ToolCommand is an external program plus its fixed arguments.
type ToolCommand struct {
	Program string   `yaml:"program"`
	Args    []string `yaml:"args,omitempty"`
}

// String renders the command line for logs.
func (c ToolCommand) String() string {
	return strings.TrimSpace(c.Program + " " + strings.Join(c.Args, " "))
}

// ToolsConfig configures the external compilers.
type ToolsConfig struct {
	Stylesheet     ToolCommand        `yaml:"stylesheet"`
	Bundler        ToolCommand        `yaml:"bundler"`
	LegacyCompiler LegacyCompilerKind `yaml:"legacy_compiler"`
	// LegacyCommand is used when LegacyCompiler is "command". Args may reference the
	// {source} file and the {outdir} directory.
	LegacyCommand ToolCommand `yaml:"legacy_command"`
	// Generated lists the project-relative files the tools write into the source tree (the
	// compiled stylesheet). Watch mode ignores changes to them.
	Generated []string `yaml:"generated"`
}

// EntryKind distinguishes file and directory copy entries.
type EntryKind string

const (
	KindFile      EntryKind = "file"
	KindDirectory EntryKind = "directory"
)

// CopyManifestEntry is one hand-authored static asset to mirror. Source is relative to the
// project root, Destination to the output root.
type CopyManifestEntry struct {
	Source      string    `yaml:"source"`
	Destination string    `yaml:"destination"`
	Kind        EntryKind `yaml:"kind"`
}

// CompiledModuleSpec is one legacy module outside the bundler's entry graph. Source is relative
// to the project root, Destination (the desired compiled file) to the output root.
type CompiledModuleSpec struct {
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
}

// AssetsConfig holds the fixed manifests driving the post-bundler stages.
type AssetsConfig struct {
	// ScriptDir is the bundler's script output directory relative to the output root.
	ScriptDir string `yaml:"script_dir"`
	// ScriptURLPrefix is the public URL prefix of ScriptDir.
	ScriptURLPrefix string `yaml:"script_url_prefix"`
	// ArtifactManifest is the optional bundler manifest (logical name -> hashed file), relative
	// to the output root.
	ArtifactManifest string `yaml:"artifact_manifest"`
	// EntryPage is promoted to RootDocument when present in the output tree.
	EntryPage    string `yaml:"entry_page"`
	RootDocument string `yaml:"root_document"`

	Copy []CopyManifestEntry `yaml:"copy"`
	// PageSourceDir is the project-relative directory legacy pages and script dirs live in.
	// They are copied to the same relative path below the output root.
	PageSourceDir    string               `yaml:"page_source_dir"`
	LegacyPages      []string             `yaml:"legacy_pages"`
	LegacyScriptDirs []string             `yaml:"legacy_script_dirs"`
	LegacyModules    []CompiledModuleSpec `yaml:"legacy_modules"`
	// RewritePages are output-relative pages whose script references get rewritten.
	RewritePages []string `yaml:"rewrite_pages"`
}

// ScriptURL returns the public URL of a file inside ScriptDir.
func (a AssetsConfig) ScriptURL(name string) string {
	prefix := a.ScriptURLPrefix
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + path.Clean(filepath.ToSlash(name))
}

// GeneratedPaths returns the absolute paths of Tools.Generated.
func (c *Config) GeneratedPaths() []string {
	out := make([]string, 0, len(c.Tools.Generated))
	for _, p := range c.Tools.Generated {
		out = append(out, filepath.Join(c.SourceDir, filepath.FromSlash(p)))
	}
	return out
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  slog.Level
	Format LogFormat
}
