// Package strings provides small string and slice helpers
package strings

import std "strings"

// IfEmpty returns def if in is empty, otherwise returns in
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// FirstNonEmpty returns the first argument with non whitespace content
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if std.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Mask hides all but the last four characters of a secret
func Mask(secret string) string {
	const keep = 4
	if len(secret) <= keep {
		return std.Repeat("*", len(secret))
	}
	return std.Repeat("*", len(secret)-keep) + secret[len(secret)-keep:]
}
