package htmlutil

import "html"

// Escape HTML-escapes s. Existing entities are decoded first, so escaping an
// already escaped value returns it unchanged.
//
// The cost is that entity text a user typed on purpose is not preserved: the
// input "&lt;" is stored as "&lt;" and later displayed as "<", not as the four
// characters the user entered. Callers that need literal entity text must not
// run it through Escape.
func Escape(s string) string {
	return html.EscapeString(html.UnescapeString(s))
}
