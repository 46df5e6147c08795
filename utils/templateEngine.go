package utils

import (
	"html"
	"regexp"
	"strings"
)

// Email templates use {{token}} placeholders and {{#if token}}...{{/if}}
// conditional blocks. Every substituted value is HTML-escaped; there is no
// raw-interpolation opt-in.

var conditionalBlock = regexp.MustCompile(`(?s){{#if\s+([a-zA-Z_]+)}}(.*?){{/if}}`)
var tokenPlaceholder = regexp.MustCompile(`{{\s*([a-zA-Z_]+)\s*}}`)

// RenderEmailTemplate substitutes tokens into an email template string.
// Conditional blocks are kept when the token is a non-empty string and
// stripped otherwise. Unknown tokens render as empty.
func RenderEmailTemplate(template string, tokens map[string]string) string {
	// Conditionals first so their bodies get normal token substitution
	out := conditionalBlock.ReplaceAllStringFunc(template, func(block string) string {
		m := conditionalBlock.FindStringSubmatch(block)
		if tokens[m[1]] == "" {
			return ""
		}
		return m[2]
	})

	out = tokenPlaceholder.ReplaceAllStringFunc(out, func(ph string) string {
		m := tokenPlaceholder.FindStringSubmatch(ph)
		return html.EscapeString(tokens[m[1]])
	})

	return strings.TrimSpace(out)
}
