package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/pwabuilder/internal/foundation/errors"
)

func mapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := FromEnv(mapLookup(map[string]string{EnvSourceDir: dir}))
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.SourceDir)
	assert.Equal(t, filepath.Join(dir, "dist"), cfg.OutputDir)
	assert.Equal(t, ModeProduction, cfg.Mode)
	assert.Equal(t, ScannerPattern, cfg.Scanner)
	assert.Equal(t, DefaultCopyConcurrency, cfg.CopyConcurrency)
	assert.Equal(t, slog.LevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	assert.Empty(t, cfg.ConfigFile, "no YAML file exists in the temp dir")
	assert.False(t, cfg.TelemetryDisabled)
	assert.False(t, cfg.Email.Configured())
	assert.Equal(t, "sass", cfg.Tools.Stylesheet.Program)
	assert.Equal(t, "webpack", cfg.Tools.Bundler.Program)
	assert.NotEmpty(t, cfg.Assets.LegacyPages)
}

func TestFromEnv_ReadsApplicationVariables(t *testing.T) {
	dir := t.TempDir()
	cfg, err := FromEnv(mapLookup(map[string]string{
		EnvSourceDir:       dir,
		EnvOutputDir:       "public",
		EnvNodeEnv:         "development",
		EnvRelease:         "v1.4.0",
		EnvEmailUser:       "bookings@example.com",
		EnvEmailPassword:   "s3cret",
		EnvDoNotTrack:      "1",
		EnvLogLevel:        "debug",
		EnvLogFormat:       "JSON",
		EnvScanner:         "html",
		EnvCopyConcurrency: "8",
		EnvLegacyCompiler:  "command",
	}))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "public"), cfg.OutputDir)
	assert.Equal(t, ModeDevelopment, cfg.Mode)
	assert.Equal(t, "v1.4.0", cfg.Release)
	assert.True(t, cfg.Email.Configured())
	assert.True(t, cfg.TelemetryDisabled)
	assert.Equal(t, slog.LevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	assert.Equal(t, ScannerMarkup, cfg.Scanner)
	assert.Equal(t, 8, cfg.CopyConcurrency)
	assert.Equal(t, LegacyCompilerCommand, cfg.Tools.LegacyCompiler)
}

func TestFromEnv_RejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"node env":       {EnvNodeEnv: "staging"},
		"scanner":        {EnvScanner: "dom"},
		"concurrency":    {EnvCopyConcurrency: "zero"},
		"concurrency<1":  {EnvCopyConcurrency: "0"},
		"compiler":       {EnvLegacyCompiler: "tsc"},
		"output=source":  {EnvOutputDir: "."},
		"missing config": {EnvConfigFile: "does-not-exist.yaml"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			env[EnvSourceDir] = t.TempDir()
			_, err := FromEnv(mapLookup(env))
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig), "got %v", err)
		})
	}
}

func TestFromEnv_AppliesYAMLFile(t *testing.T) {
	dir := t.TempDir()
	yamlDoc := `
tools:
  bundler:
    program: npx
    args: [webpack, --config, webpack.prod.js]
assets:
  legacy_pages:
    - hero.html
    - auth/login.html
  rewrite_pages:
    - auth/login.html
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(yamlDoc), 0o600))

	cfg, err := FromEnv(mapLookup(map[string]string{EnvSourceDir: dir}))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, DefaultConfigFile), cfg.ConfigFile)
	assert.Equal(t, "npx", cfg.Tools.Bundler.Program)
	assert.Equal(t, []string{"webpack", "--config", "webpack.prod.js"}, cfg.Tools.Bundler.Args)
	// Keys the file leaves out keep their defaults.
	assert.Equal(t, "sass", cfg.Tools.Stylesheet.Program)
	assert.Equal(t, DefaultScriptDir, cfg.Assets.ScriptDir)
	// Lists given in the file replace the defaults.
	assert.Equal(t, []string{"hero.html", "auth/login.html"}, cfg.Assets.LegacyPages)
	assert.Equal(t, []string{"auth/login.html"}, cfg.Assets.RewritePages)
}

func TestFromEnv_ExpandsYAMLThroughLookup(t *testing.T) {
	dir := t.TempDir()
	yamlDoc := `
tools:
  bundler:
    program: ${PWA_BUNDLER}
    args: [--config, "${PWA_BUNDLER_CONFIG}"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(yamlDoc), 0o600))
	t.Setenv("PWA_BUNDLER", "from-process")

	cfg, err := FromEnv(mapLookup(map[string]string{
		EnvSourceDir:         dir,
		"PWA_BUNDLER":        "rspack",
		"PWA_BUNDLER_CONFIG": "rspack.config.js",
	}))
	require.NoError(t, err)
	assert.Equal(t, "rspack", cfg.Tools.Bundler.Program)
	assert.Equal(t, []string{"--config", "rspack.config.js"}, cfg.Tools.Bundler.Args)
}

func TestFromEnv_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte("tools: [unterminated"), 0o600))

	_, err := FromEnv(mapLookup(map[string]string{EnvSourceDir: dir, EnvConfigFile: "custom.yaml"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := Default()
		c.SourceDir = "/srv/app"
		c.OutputDir = "/srv/app/dist"
		return c
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"escaping destination", func(c *Config) { c.Assets.Copy[0].Destination = "../outside" }},
		{"absolute destination", func(c *Config) { c.Assets.Copy[0].Destination = "/etc/passwd" }},
		{"unknown kind", func(c *Config) { c.Assets.Copy[0].Kind = "symlink" }},
		{"empty copy source", func(c *Config) { c.Assets.Copy[0].Source = "" }},
		{"escaping legacy page", func(c *Config) { c.Assets.LegacyPages = []string{"../x.html"} }},
		{"escaping module destination", func(c *Config) { c.Assets.LegacyModules[0].Destination = "../../a.js" }},
		{"empty bundler", func(c *Config) { c.Tools.Bundler.Program = "" }},
		{"command without program", func(c *Config) {
			c.Tools.LegacyCompiler = LegacyCompilerCommand
			c.Tools.LegacyCommand.Program = ""
		}},
		{"zero concurrency", func(c *Config) { c.CopyConcurrency = 0 }},
		{"empty url prefix", func(c *Config) { c.Assets.ScriptURLPrefix = "" }},
		{"entry page is root document", func(c *Config) { c.Assets.EntryPage = "./index.html" }},
		{"escaping generated file", func(c *Config) { c.Tools.Generated = []string{"../main.css"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, ferrors.HasSeverity(err, ferrors.SeverityFatal))
		})
	}
}

func TestScriptURL(t *testing.T) {
	a := AssetsConfig{ScriptURLPrefix: "/js"}
	assert.Equal(t, "/js/login-1a2b3c4d.js", a.ScriptURL("login-1a2b3c4d.js"))
	a.ScriptURLPrefix = "/static/js/"
	assert.Equal(t, "/static/js/app.js", a.ScriptURL("app.js"))
}

func TestLoadEnvFiles_DoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PWABUILDER_TEST_A=fromfile\nPWABUILDER_TEST_B=fromfile\n"), 0o600))
	t.Setenv("PWABUILDER_TEST_A", "fromenv")
	t.Setenv("PWABUILDER_TEST_B", "")
	require.NoError(t, os.Unsetenv("PWABUILDER_TEST_B"))

	loaded := LoadEnvFiles(dir)
	require.Len(t, loaded, 1)
	assert.Equal(t, "fromenv", os.Getenv("PWABUILDER_TEST_A"))
	assert.Equal(t, "fromfile", os.Getenv("PWABUILDER_TEST_B"))
}

func TestGeneratedPaths(t *testing.T) {
	c := Default()
	c.SourceDir = filepath.Join(string(filepath.Separator), "srv", "app")
	assert.Equal(t, []string{filepath.Join(c.SourceDir, "src", "css", "main.css")}, c.GeneratedPaths())
}

func TestToolCommandString(t *testing.T) {
	assert.Equal(t, "webpack --config webpack.config.js", defaultTools().Bundler.String())
	assert.Equal(t, "sass", ToolCommand{Program: "sass"}.String())
}
