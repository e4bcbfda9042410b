package artifacts

import (
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, fs billy.Filesystem, files ...string) {
	t.Helper()
	for _, f := range files {
		require.NoError(t, util.WriteFile(fs, f, []byte(f), 0o644))
	}
}

func exists(fs billy.Filesystem, name string) bool {
	_, err := fs.Stat(name)
	return err == nil
}

func TestPrune_RemovesSupersededOnly(t *testing.T) {
	fs := memfs.New()
	seed(t, fs,
		"js/app.js", "js/app-1a2b3c4d.js", "js/app-1a2b3c4d.js.map",
		"js/auth.js", // legacy output, no hashed counterpart
		"js/sw.js",
		"js/login-form.js", "js/login-1a2b3c4d.js",
		"js/legacy/app.js", // nested, untouched
	)

	res, err := Prune(fs, "js")
	require.NoError(t, err)
	assert.Equal(t, []string{"js/app.js"}, res.Removed)
	assert.Empty(t, res.Failed)

	assert.False(t, exists(fs, "js/app.js"))
	for _, kept := range []string{"js/app-1a2b3c4d.js", "js/app-1a2b3c4d.js.map", "js/auth.js", "js/sw.js", "js/login-form.js", "js/legacy/app.js"} {
		assert.True(t, exists(fs, kept), kept)
	}
}

func TestPrune_Idempotent(t *testing.T) {
	fs := memfs.New()
	seed(t, fs, "js/app.js", "js/app-1a2b3c4d.js", "js/vendor.mjs", "js/vendor-0123456789abcdef.mjs")

	first, err := Prune(fs, "js")
	require.NoError(t, err)
	assert.Len(t, first.Removed, 2)

	second, err := Prune(fs, "js")
	require.NoError(t, err)
	assert.Empty(t, second.Removed)
	assert.True(t, exists(fs, "js/app-1a2b3c4d.js"))
	assert.True(t, exists(fs, "js/vendor-0123456789abcdef.mjs"))
}

func TestPrune_MissingDirectory(t *testing.T) {
	res, err := Prune(memfs.New(), "js")
	require.NoError(t, err)
	assert.Empty(t, res.Removed)
}
