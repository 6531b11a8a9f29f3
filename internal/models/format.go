// internal/models/format.go
package models

import "strings"

const (
	// ExcerptLimit bounds news and search item bodies.
	ExcerptLimit = 300
	// InlineExcerptLimit bounds bodies in the inline search rendering.
	InlineExcerptLimit = 400

	ellipsis = "..."
)

// Excerpt cuts body to limit characters and marks the cut with "...".
// Bodies that already fit are returned as is.
func Excerpt(body string, limit int) string {
	body = strings.TrimSpace(body)
	if limit <= 0 {
		return ""
	}
	runes := []rune(body)
	if len(runes) <= limit {
		return body
	}
	return string(runes[:limit]) + ellipsis
}

// Truncate cuts s to limit characters without adding a marker.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if limit < 0 || len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
