// Package artifacts understands the bundler's content-hashed script output: it parses artifact
// names, indexes logical names to their canonical hashed file and prunes superseded un-hashed
// duplicates.
package artifacts

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// MinHashLength is the shortest hex fingerprint recognized as a content hash.
const MinHashLength = 8

var (
	hashedName   = regexp.MustCompile(`^(.+)-([0-9a-f]{8,})\.(m?js)$`)
	unhashedName = regexp.MustCompile(`^(.+)\.(m?js)$`)
)

// Name is a parsed script artifact file name.
type Name struct {
	// File is the base file name, e.g. "login-9f8e7d6c.js".
	File string
	// Logical is the stable module name, e.g. "login".
	Logical string
	// Hash is the hex fingerprint, empty for un-hashed files.
	Hash string
	// Ext is "js" or "mjs".
	Ext string
}

// Hashed reports whether the file carries a content hash.
func (n Name) Hashed() bool { return n.Hash != "" }

// ParseName classifies a script file name. Directories in file are ignored. Source maps and
// non-script files are rejected.
func ParseName(file string) (Name, bool) {
	base := path.Base(filepath.ToSlash(file))
	if strings.HasSuffix(base, ".map") {
		return Name{}, false
	}
	if m := hashedName.FindStringSubmatch(base); m != nil {
		return Name{File: base, Logical: m[1], Hash: m[2], Ext: m[3]}, true
	}
	if m := unhashedName.FindStringSubmatch(base); m != nil {
		return Name{File: base, Logical: m[1], Ext: m[2]}, true
	}
	return Name{}, false
}

// LogicalName derives the logical name of a script reference such as "/js/login.js",
// "../js/login-1a2b3c4d.js?v=2" or "login.mjs". Query strings and fragments are dropped.
func LogicalName(ref string) (string, bool) {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	n, ok := ParseName(ref)
	if !ok {
		return "", false
	}
	return n.Logical, true
}
