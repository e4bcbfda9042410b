package artifacts

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"

	"git.home.luguber.info/inful/pwabuilder/internal/logfields"
)

// IndexSource tells where an index came from.
type IndexSource string

const (
	SourceManifest IndexSource = "manifest"
	SourceScan     IndexSource = "scan"
)

// Index maps logical names to their canonical hashed artifact.
type Index struct {
	source    IndexSource
	byLogical map[string]Name
}

func newIndex(source IndexSource) *Index {
	return &Index{source: source, byLogical: map[string]Name{}}
}

// Lookup returns the canonical hashed artifact for an exact logical name.
func (i *Index) Lookup(logical string) (Name, bool) {
	if i == nil {
		return Name{}, false
	}
	n, ok := i.byLogical[logical]
	return n, ok
}

func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.byLogical)
}

func (i *Index) Source() IndexSource {
	if i == nil {
		return ""
	}
	return i.source
}

// Entries returns logical name -> hashed file name, for reports.
func (i *Index) Entries() map[string]string {
	out := make(map[string]string, i.Len())
	if i == nil {
		return out
	}
	for k, v := range i.byLogical {
		out[k] = v.File
	}
	return out
}

// Build returns the manifest index when manifestPath names a usable bundler manifest, and a
// directory scan of scriptDir otherwise.
func Build(fsys billy.Filesystem, manifestPath, scriptDir string) (*Index, error) {
	if manifestPath != "" {
		idx, err := LoadManifest(fsys, manifestPath, scriptDir)
		switch {
		case err == nil && idx.Len() > 0:
			return idx, nil
		case err == nil:
			slog.Warn("Artifact manifest has no usable entries, scanning script directory", logfields.Path(manifestPath))
		case errors.Is(err, os.ErrNotExist):
			slog.Debug("No artifact manifest, scanning script directory", logfields.Path(manifestPath))
		default:
			slog.Warn("Artifact manifest unusable, scanning script directory", logfields.Path(manifestPath), logfields.Error(err))
		}
	}
	return ScanIndex(fsys, scriptDir)
}

// ScanIndex indexes the hashed scripts at the top level of scriptDir. When several hashed files
// share a logical name the most recently modified wins and equal times fall back to the
// lexicographically smallest name; each such ambiguity is logged. A missing directory yields
// an empty index.
func ScanIndex(fsys billy.Filesystem, scriptDir string) (*Index, error) {
	idx := newIndex(SourceScan)
	entries, err := fsys.ReadDir(scriptDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return idx, nil
		}
		return nil, fmt.Errorf("list %s: %w", scriptDir, err)
	}

	candidates := map[string][]os.FileInfo{}
	parsed := map[string]Name{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n, ok := ParseName(e.Name())
		if !ok || !n.Hashed() {
			continue
		}
		candidates[n.Logical] = append(candidates[n.Logical], e)
		parsed[e.Name()] = n
	}

	for logical, infos := range candidates {
		sort.Slice(infos, func(a, b int) bool {
			ta, tb := infos[a].ModTime(), infos[b].ModTime()
			if !ta.Equal(tb) {
				return ta.After(tb)
			}
			return infos[a].Name() < infos[b].Name()
		})
		winner := parsed[infos[0].Name()]
		idx.byLogical[logical] = winner
		if len(infos) > 1 {
			names := make([]string, len(infos))
			for i, fi := range infos {
				names[i] = fi.Name()
			}
			slog.Warn("Multiple hashed artifacts share a logical name, using newest",
				logfields.LogicalName(logical),
				logfields.Artifact(winner.File),
				slog.String("candidates", strings.Join(names, ",")))
		}
	}
	return idx, nil
}
