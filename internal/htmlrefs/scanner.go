// Package htmlrefs rewrites <script src> references in hand-authored pages so they point at the
// bundler's content-hashed artifacts.
package htmlrefs

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/pwabuilder/internal/artifacts"
	"git.home.luguber.info/inful/pwabuilder/internal/config"
)

// Scanner extracts script references from page text. Results are distinct, in document order,
// and limited to values naming a script file.
type Scanner interface {
	Scan(content string) []string
}

// NewScanner returns the scanner for kind.
func NewScanner(kind config.ScannerKind) Scanner {
	if kind == config.ScannerMarkup {
		return MarkupScanner{}
	}
	return PatternScanner{}
}

var scriptSrcPattern = regexp.MustCompile(`(?i)<script\b[^>]*?\ssrc\s*=\s*["']([^"']+)["'][^>]*>`)

// PatternScanner finds quoted src attributes of script tags with a regular expression.
type PatternScanner struct{}

func (PatternScanner) Scan(content string) []string {
	var refs []string
	for _, m := range scriptSrcPattern.FindAllStringSubmatch(content, -1) {
		refs = appendRef(refs, m[1])
	}
	return refs
}

// MarkupScanner tokenizes the page as HTML, so it also sees unquoted attribute values and
// unusual whitespace inside tags.
type MarkupScanner struct{}

func (MarkupScanner) Scan(content string) []string {
	var refs []string
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a tokenizer error; either way the page is done.
			return refs
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.DataAtom != atom.Script {
				continue
			}
			for _, a := range tok.Attr {
				if strings.EqualFold(a.Key, "src") {
					refs = appendRef(refs, a.Val)
				}
			}
		}
	}
}

func appendRef(refs []string, ref string) []string {
	ref = strings.TrimSpace(ref)
	if _, ok := artifacts.LogicalName(ref); !ok {
		return refs
	}
	for _, r := range refs {
		if r == ref {
			return refs
		}
	}
	return append(refs, ref)
}
