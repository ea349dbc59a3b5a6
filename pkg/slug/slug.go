// Package slug derives URL-safe identifiers from display names.
package slug

import (
	"fmt"
	"strings"
	"time"
)

const maxLen = 120

// Make lowercases the name, strips everything outside [a-z0-9 space -],
// collapses whitespace runs to single hyphens, collapses repeated hyphens
// and truncates to 120 characters. An empty result falls back to
// business-<unix millis> so a slug is always produced.
func Make(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r':
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	s = strings.Join(fields, "-")

	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")

	if len(s) > maxLen {
		s = s[:maxLen]
		s = strings.TrimRight(s, "-")
	}

	if s == "" {
		return Fallback()
	}
	return s
}

// Fallback is the timestamp slug used when a name yields nothing usable.
func Fallback() string {
	return fmt.Sprintf("business-%d", time.Now().UnixMilli())
}

// WithSuffix appends the collision counter: base, base-1, base-2, ...
func WithSuffix(base string, attempt int) string {
	if attempt <= 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, attempt)
}
