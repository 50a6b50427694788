package kb

import (
	"strings"

	"golang.org/x/net/html"
)

// StripHTML flattens markup that knowledge-base answers sometimes carry into
// plain text suitable for any channel.
func StripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(tokenizer.Text())
		}
	}
}
