package htmlrefs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"git.home.luguber.info/inful/pwabuilder/internal/artifacts"
	"git.home.luguber.info/inful/pwabuilder/internal/logfields"
)

// Edit is one substitution applied to a page.
type Edit struct {
	Page      string
	Original  string
	Rewritten string
}

// Resolver maps a logical name to its hashed artifact.
type Resolver interface {
	Lookup(logical string) (artifacts.Name, bool)
}

// Rewriter rewrites pages in the output tree.
type Rewriter struct {
	fs      billy.Filesystem
	scanner Scanner
	index   Resolver
	url     func(file string) string
}

// NewRewriter creates a rewriter. url turns a hashed file name into its public URL.
func NewRewriter(fs billy.Filesystem, scanner Scanner, index Resolver, url func(file string) string) *Rewriter {
	return &Rewriter{fs: fs, scanner: scanner, index: index, url: url}
}

// Summary aggregates a RewriteAll run.
type Summary struct {
	Scanned    int
	Rewritten  int
	Missing    int
	Unresolved int
	Edits      []Edit
}

// RewriteAll rewrites every page. Missing pages are skipped; per-page failures are returned
// together without stopping the remaining pages.
func (r *Rewriter) RewriteAll(ctx context.Context, pages []string) (Summary, error) {
	var (
		s    Summary
		errs []error
	)
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		if _, err := r.fs.Stat(page); errors.Is(err, os.ErrNotExist) {
			slog.Debug("Rewrite page not present, skipped", logfields.Path(page))
			s.Missing++
			continue
		}
		edits, unresolved, err := r.RewritePage(page)
		s.Scanned++
		s.Unresolved += unresolved
		if err != nil {
			slog.Warn("Failed to rewrite page", logfields.Path(page), logfields.Error(err))
			errs = append(errs, err)
			continue
		}
		if len(edits) > 0 {
			s.Rewritten++
			s.Edits = append(s.Edits, edits...)
		}
	}
	return s, errors.Join(errs...)
}

// RewritePage rewrites one page and returns the edits applied plus the number of references
// that had no hashed artifact. The page is written back only when its text changed, so a
// second run over the same tree is a no-op.
func (r *Rewriter) RewritePage(page string) ([]Edit, int, error) {
	info, err := r.fs.Stat(page)
	if err != nil {
		return nil, 0, fmt.Errorf("stat %s: %w", page, err)
	}
	data, err := util.ReadFile(r.fs, page)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", page, err)
	}

	content := string(data)
	updated := content
	var (
		edits      []Edit
		unresolved int
	)
	for _, ref := range r.scanner.Scan(content) {
		logical, _ := artifacts.LogicalName(ref)
		hashed, ok := r.index.Lookup(logical)
		if !ok {
			unresolved++
			slog.Debug("No hashed artifact for script reference", logfields.Path(page), logfields.LogicalName(logical))
			continue
		}
		target := r.url(hashed.File)
		if target == ref {
			continue
		}
		next := ReplaceSrc(updated, ref, target)
		if next == updated {
			continue
		}
		updated = next
		edits = append(edits, Edit{Page: page, Original: ref, Rewritten: target})
		slog.Debug("Rewrote script reference", logfields.Path(page), logfields.Source(ref), logfields.Destination(target))
	}

	if updated == content {
		return nil, unresolved, nil
	}
	if err := util.WriteFile(r.fs, page, []byte(updated), info.Mode().Perm()); err != nil {
		return nil, unresolved, fmt.Errorf("write %s: %w", page, err)
	}
	return edits, unresolved, nil
}

// ReplaceSrc replaces every src attribute whose value is exactly from (double-quoted,
// single-quoted or unquoted) with src="to".
func ReplaceSrc(content, from, to string) string {
	q := regexp.QuoteMeta(from)
	re := regexp.MustCompile(`(?i)(^|\s)src\s*=\s*(?:"` + q + `"|'` + q + `'|` + q + `([\s/>]))`)
	return re.ReplaceAllStringFunc(content, func(m string) string {
		sub := re.FindStringSubmatch(m)
		return sub[1] + `src="` + to + `"` + sub[2]
	})
}
