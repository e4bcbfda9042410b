package htmlrefs

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pwabuilder/internal/artifacts"
	"git.home.luguber.info/inful/pwabuilder/internal/config"
)

func indexFor(t *testing.T, fs billy.Filesystem, files ...string) *artifacts.Index {
	t.Helper()
	for _, f := range files {
		require.NoError(t, util.WriteFile(fs, "js/"+f, []byte(f), 0o644))
	}
	idx, err := artifacts.ScanIndex(fs, "js")
	require.NoError(t, err)
	return idx
}

func read(t *testing.T, fs billy.Filesystem, name string) string {
	t.Helper()
	b, err := util.ReadFile(fs, name)
	require.NoError(t, err)
	return string(b)
}

func newTestRewriter(fs billy.Filesystem, scanner Scanner, idx Resolver) *Rewriter {
	return NewRewriter(fs, scanner, idx, config.Default().Assets.ScriptURL)
}

func TestRewritePage_LoginScenario(t *testing.T) {
	fs := memfs.New()
	idx := indexFor(t, fs, "login-9f8e7d6c.js")
	require.NoError(t, util.WriteFile(fs, "auth/login.html", []byte(`<script src="/js/login.js"></script>`), 0o644))

	edits, unresolved, err := newTestRewriter(fs, PatternScanner{}, idx).RewritePage("auth/login.html")
	require.NoError(t, err)
	assert.Equal(t, 0, unresolved)
	assert.Equal(t, []Edit{{Page: "auth/login.html", Original: "/js/login.js", Rewritten: "/js/login-9f8e7d6c.js"}}, edits)
	assert.Equal(t, `<script src="/js/login-9f8e7d6c.js"></script>`, read(t, fs, "auth/login.html"))
}

func TestRewritePage_Idempotent(t *testing.T) {
	fs := memfs.New()
	idx := indexFor(t, fs, "login-9f8e7d6c.js", "vendor-0123abcd.mjs")
	page := `<script src="/js/login.js"></script><script src='/js/vendor.mjs'></script><p>/js/login.js</p>`
	require.NoError(t, util.WriteFile(fs, "p.html", []byte(page), 0o644))

	for _, scanner := range []Scanner{PatternScanner{}, MarkupScanner{}} {
		r := newTestRewriter(fs, scanner, idx)
		_, _, err := r.RewritePage("p.html")
		require.NoError(t, err)
		once := read(t, fs, "p.html")

		edits, _, err := r.RewritePage("p.html")
		require.NoError(t, err)
		assert.Empty(t, edits)
		assert.Equal(t, once, read(t, fs, "p.html"))
	}

	assert.Equal(t, `<script src="/js/login-9f8e7d6c.js"></script><script src="/js/vendor-0123abcd.mjs"></script><p>/js/login.js</p>`,
		read(t, fs, "p.html"), "text outside src attributes is left alone")
}

func TestRewritePage_UnresolvedLeftUntouched(t *testing.T) {
	fs := memfs.New()
	idx := indexFor(t, fs, "login-form-1a2b3c4d.js")
	page := `<script src="/js/login.js"></script>`
	require.NoError(t, util.WriteFile(fs, "auth/login.html", []byte(page), 0o644))

	edits, unresolved, err := newTestRewriter(fs, PatternScanner{}, idx).RewritePage("auth/login.html")
	require.NoError(t, err)
	assert.Empty(t, edits)
	assert.Equal(t, 1, unresolved)
	assert.Equal(t, page, read(t, fs, "auth/login.html"))
}

func TestRewritePage_UpdatesStaleHash(t *testing.T) {
	fs := memfs.New()
	idx := indexFor(t, fs, "login-bbbbbbbb.js")
	require.NoError(t, util.WriteFile(fs, "p.html", []byte(`<script src="/js/login-aaaaaaaa.js"></script>`), 0o644))

	_, _, err := newTestRewriter(fs, PatternScanner{}, idx).RewritePage("p.html")
	require.NoError(t, err)
	assert.Equal(t, `<script src="/js/login-bbbbbbbb.js"></script>`, read(t, fs, "p.html"))
}

func TestRewriteAll_SkipsMissingPages(t *testing.T) {
	fs := memfs.New()
	idx := indexFor(t, fs, "login-9f8e7d6c.js", "booking-form-12345678.js")
	require.NoError(t, util.WriteFile(fs, "auth/login.html", []byte(`<script src="/js/login.js"></script>`), 0o644))
	require.NoError(t, util.WriteFile(fs, "booking/checkout.html", []byte(`<script src="../js/booking-form.js"></script>`), 0o644))

	s, err := newTestRewriter(fs, PatternScanner{}, idx).RewriteAll(context.Background(), config.Default().Assets.RewritePages)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Scanned)
	assert.Equal(t, 2, s.Rewritten)
	assert.Equal(t, 2, s.Missing)
	assert.Len(t, s.Edits, 2)
	assert.Equal(t, `<script src="/js/booking-form-12345678.js"></script>`, read(t, fs, "booking/checkout.html"))
}

func TestReplaceSrc(t *testing.T) {
	tests := []struct{ name, in, want string }{
		{"double", `<script src="/js/a.js">`, `<script src="/js/a-12345678.js">`},
		{"single", `<script src='/js/a.js'>`, `<script src="/js/a-12345678.js">`},
		{"spaced", `<script src = "/js/a.js">`, `<script src="/js/a-12345678.js">`},
		{"unquoted", `<script src=/js/a.js>`, `<script src="/js/a-12345678.js">`},
		{"prefix only", `<script src="/js/a.jsx">`, `<script src="/js/a.jsx">`},
		{"data attribute", `<script data-src="/js/a.js">`, `<script data-src="/js/a.js">`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReplaceSrc(tt.in, "/js/a.js", "/js/a-12345678.js"))
		})
	}
}
