package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

const maxSanitizePasses = 8

// SanitizeText strips every HTML tag from s, including tags hidden behind entities, and trims it.
// Values are served as JSON text, so the result is returned unescaped once it no longer changes
// under the policy. Input that does not settle is returned in escaped form.
func SanitizeText(s string) string {
	cur := html.UnescapeString(s)
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(textPolicy.Sanitize(cur))
		if next == cur {
			return strings.TrimSpace(cur)
		}
		cur = next
	}
	return strings.TrimSpace(textPolicy.Sanitize(cur))
}
