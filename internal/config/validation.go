package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/pwabuilder/internal/foundation/errors"
)

// Validate checks the configuration for internal consistency. The first problem found is
// returned as a fatal config error.
func (c *Config) Validate() error {
	v := configurationValidator{config: c}
	if err := v.validate(); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid configuration").Fatal().Build()
	}
	return nil
}

type configurationValidator struct {
	config *Config
}

func (cv configurationValidator) validate() error {
	if err := cv.validatePaths(); err != nil {
		return err
	}
	if err := cv.validateTools(); err != nil {
		return err
	}
	if err := cv.validateAssets(); err != nil {
		return err
	}
	if cv.config.CopyConcurrency < 1 {
		return fmt.Errorf("copy concurrency must be at least 1, got %d", cv.config.CopyConcurrency)
	}
	return nil
}

func (cv configurationValidator) validatePaths() error {
	c := cv.config
	if c.SourceDir == "" {
		return errors.New("source directory cannot be empty")
	}
	if c.OutputDir == "" {
		return errors.New("output directory cannot be empty")
	}
	if filepath.Clean(c.OutputDir) == filepath.Clean(c.SourceDir) {
		return errors.New("output directory must differ from the source directory")
	}
	return nil
}

func (cv configurationValidator) validateTools() error {
	t := cv.config.Tools
	if strings.TrimSpace(t.Stylesheet.Program) == "" {
		return errors.New("stylesheet compiler program cannot be empty")
	}
	if strings.TrimSpace(t.Bundler.Program) == "" {
		return errors.New("bundler program cannot be empty")
	}
	for i, g := range t.Generated {
		if err := requireLocal(fmt.Sprintf("generated[%d]", i), g); err != nil {
			return err
		}
	}
	switch t.LegacyCompiler {
	case LegacyCompilerEsbuild:
	case LegacyCompilerCommand:
		if strings.TrimSpace(t.LegacyCommand.Program) == "" {
			return errors.New("legacy_command.program is required when legacy_compiler is \"command\"")
		}
	default:
		return fmt.Errorf("unsupported legacy compiler %q", t.LegacyCompiler)
	}
	return nil
}

func (cv configurationValidator) validateAssets() error {
	a := cv.config.Assets
	if err := requireLocal("script_dir", a.ScriptDir); err != nil {
		return err
	}
	if a.ScriptURLPrefix == "" {
		return errors.New("script_url_prefix cannot be empty")
	}
	if a.ArtifactManifest != "" {
		if err := requireLocal("artifact_manifest", a.ArtifactManifest); err != nil {
			return err
		}
	}
	if err := requireLocal("entry_page", a.EntryPage); err != nil {
		return err
	}
	if err := requireLocal("root_document", a.RootDocument); err != nil {
		return err
	}
	if SamePath(a.EntryPage, a.RootDocument) {
		return fmt.Errorf("entry_page and root_document must differ, both are %q", a.RootDocument)
	}
	if err := requireLocal("page_source_dir", a.PageSourceDir); err != nil {
		return err
	}

	for i, e := range a.Copy {
		field := fmt.Sprintf("copy[%d]", i)
		if e.Source == "" {
			return fmt.Errorf("%s: source cannot be empty", field)
		}
		if err := requireLocal(field+".destination", e.Destination); err != nil {
			return err
		}
		if e.Kind != KindFile && e.Kind != KindDirectory {
			return fmt.Errorf("%s: kind must be %q or %q, got %q", field, KindFile, KindDirectory, e.Kind)
		}
	}
	for i, p := range a.LegacyPages {
		if err := requireLocal(fmt.Sprintf("legacy_pages[%d]", i), p); err != nil {
			return err
		}
	}
	for i, d := range a.LegacyScriptDirs {
		if err := requireLocal(fmt.Sprintf("legacy_script_dirs[%d]", i), d); err != nil {
			return err
		}
	}
	for i, m := range a.LegacyModules {
		field := fmt.Sprintf("legacy_modules[%d]", i)
		if m.Source == "" {
			return fmt.Errorf("%s: source cannot be empty", field)
		}
		if err := requireLocal(field+".destination", m.Destination); err != nil {
			return err
		}
	}
	for i, p := range a.RewritePages {
		if err := requireLocal(fmt.Sprintf("rewrite_pages[%d]", i), p); err != nil {
			return err
		}
	}
	return nil
}

// SamePath reports whether two tree-relative paths name the same file.
func SamePath(a, b string) bool {
	return filepath.Clean(filepath.FromSlash(a)) == filepath.Clean(filepath.FromSlash(b))
}

// requireLocal rejects empty, absolute and escaping paths. Everything the build writes must
// stay inside the output tree.
func requireLocal(field, p string) error {
	if p == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	if !filepath.IsLocal(filepath.FromSlash(p)) {
		return fmt.Errorf("%s must be a relative path inside the tree, got %q", field, p)
	}
	return nil
}
