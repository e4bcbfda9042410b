package artifacts

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"git.home.luguber.info/inful/pwabuilder/internal/logfields"
)

// LoadManifest reads the bundler's asset manifest. Both the flat shape
//
//	{"login.js": "/js/login-9f8e7d6c.js"}
//
// and the nested {"files": {...}} shape are accepted. Entries that are not hashed scripts, or
// whose file is not present at the top level of scriptDir, are ignored. A missing manifest
// returns an error matching os.ErrNotExist.
func LoadManifest(fsys billy.Filesystem, manifestPath, scriptDir string) (*Index, error) {
	data, err := util.ReadFile(fsys, manifestPath)
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", manifestPath, err)
	}
	entries := map[string]string{}
	if files, ok := raw["files"]; ok {
		if err := json.Unmarshal(files, &entries); err != nil {
			return nil, fmt.Errorf("parse %s files: %w", manifestPath, err)
		}
	} else {
		for k, v := range raw {
			var s string
			if json.Unmarshal(v, &s) == nil {
				entries[k] = s
			}
		}
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	idx := newIndex(SourceManifest)
	for _, key := range keys {
		logical, ok := LogicalName(key)
		if !ok {
			continue
		}
		target, ok := ParseName(path.Base(entries[key]))
		if !ok || !target.Hashed() {
			continue
		}
		if _, err := fsys.Stat(filepath.Join(scriptDir, target.File)); err != nil {
			slog.Warn("Artifact manifest entry points at a missing file",
				logfields.LogicalName(logical), logfields.Artifact(target.File))
			continue
		}
		idx.byLogical[logical] = target
	}
	return idx, nil
}
