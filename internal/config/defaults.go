package config

// Defaults for the booking PWA. Every manifest below is hand-authored and may be replaced
// wholesale from the YAML file (a list given there replaces the default list).
const (
	DefaultOutputDir        = "dist"
	DefaultConfigFile       = "pwabuilder.yaml"
	DefaultScriptDir        = "js"
	DefaultScriptURLPrefix  = "/js/"
	DefaultArtifactManifest = "asset-manifest.json"
	DefaultEntryPage        = "hero.html"
	DefaultRootDocument     = "index.html"
	DefaultPageSourceDir    = "src"
	DefaultCopyConcurrency  = 4
)

func defaultTools() ToolsConfig {
	return ToolsConfig{
		Stylesheet: ToolCommand{
			Program: "sass",
			Args:    []string{"src/styles/main.scss", "src/css/main.css", "--no-source-map", "--style=compressed"},
		},
		Bundler: ToolCommand{
			Program: "webpack",
			Args:    []string{"--config", "webpack.config.js"},
		},
		LegacyCompiler: LegacyCompilerEsbuild,
		LegacyCommand: ToolCommand{
			Program: "babel",
			Args:    []string{"{source}", "--out-dir", "{outdir}", "--presets=@babel/preset-env"},
		},
		Generated: []string{"src/css/main.css"},
	}
}

func defaultAssets() AssetsConfig {
	return AssetsConfig{
		ScriptDir:        DefaultScriptDir,
		ScriptURLPrefix:  DefaultScriptURLPrefix,
		ArtifactManifest: DefaultArtifactManifest,
		EntryPage:        DefaultEntryPage,
		RootDocument:     DefaultRootDocument,
		Copy: []CopyManifestEntry{
			{Source: "src/images", Destination: "images", Kind: KindDirectory},
			{Source: "src/api", Destination: "api", Kind: KindDirectory},
			{Source: "src/css", Destination: "css", Kind: KindDirectory},
			{Source: "src/fonts", Destination: "fonts", Kind: KindDirectory},
			{Source: "src/manifest.json", Destination: "manifest.json", Kind: KindFile},
			{Source: "src/sw.js", Destination: "sw.js", Kind: KindFile},
			{Source: "src/favicon.ico", Destination: "favicon.ico", Kind: KindFile},
			{Source: "src/robots.txt", Destination: "robots.txt", Kind: KindFile},
		},
		PageSourceDir: DefaultPageSourceDir,
		LegacyPages: []string{
			"hero.html",
			"offline.html",
			"auth/login.html",
			"auth/register.html",
			"auth/reset-password.html",
			"events/list.html",
			"events/detail.html",
			"booking/checkout.html",
			"booking/confirmation.html",
			"profile/index.html",
		},
		LegacyScriptDirs: []string{
			"js/legacy",
			"js/vendor",
		},
		LegacyModules: []CompiledModuleSpec{
			{Source: "src/js/modules/auth.ts", Destination: "js/auth.js"},
			{Source: "src/js/modules/booking-form.ts", Destination: "js/booking-form.js"},
			{Source: "src/js/modules/event-filters.js", Destination: "js/event-filters.js"},
			{Source: "src/js/modules/date-utils.js", Destination: "js/date-utils.js"},
		},
		RewritePages: []string{
			"auth/login.html",
			"auth/register.html",
			"events/detail.html",
			"booking/checkout.html",
		},
	}
}

// Default returns a configuration with all defaults applied and no paths resolved.
func Default() *Config {
	return &Config{
		OutputDir:       DefaultOutputDir,
		Mode:            ModeProduction,
		Tools:           defaultTools(),
		Assets:          defaultAssets(),
		Scanner:         ScannerPattern,
		CopyConcurrency: DefaultCopyConcurrency,
		Logging:         LoggingConfig{Format: LogFormatText},
	}
}
