package artifacts

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5"

	"git.home.luguber.info/inful/pwabuilder/internal/logfields"
)

// PruneResult lists the files removed and the files that could not be removed.
type PruneResult struct {
	Removed []string
	Failed  []string
}

// Prune deletes every un-hashed script at the top level of scriptDir whose logical name also has
// a hashed file there. Un-hashed files without a hashed counterpart and source maps are left
// alone. Deletion failures are logged and do not stop the run. Only a listing failure (other
// than a missing directory) returns an error.
func Prune(fsys billy.Filesystem, scriptDir string) (PruneResult, error) {
	var res PruneResult
	entries, err := fsys.ReadDir(scriptDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return res, nil
		}
		return res, fmt.Errorf("list %s: %w", scriptDir, err)
	}

	hashed := map[string]bool{}
	var unhashed []Name
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n, ok := ParseName(e.Name())
		if !ok {
			continue
		}
		if n.Hashed() {
			hashed[n.Logical] = true
		} else {
			unhashed = append(unhashed, n)
		}
	}
	sort.Slice(unhashed, func(i, j int) bool { return unhashed[i].File < unhashed[j].File })

	for _, n := range unhashed {
		if !hashed[n.Logical] {
			continue
		}
		p := filepath.Join(scriptDir, n.File)
		if err := fsys.Remove(p); err != nil {
			slog.Warn("Failed to remove duplicate script", logfields.Path(p), logfields.Error(err))
			res.Failed = append(res.Failed, p)
			continue
		}
		slog.Debug("Removed un-hashed duplicate", logfields.Path(p), logfields.LogicalName(n.Logical))
		res.Removed = append(res.Removed, p)
	}
	return res, nil
}
