// Package filename provides utilities for sanitizing strings into safe filenames.
package filename

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultMaxLen is the cap applied when Sanitize is called with maxLen <= 0.
const DefaultMaxLen = 200

// invalidCharsRe matches characters not safe for filenames across all major OSes.
var invalidCharsRe = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f\x7f]`)

// whitespaceRe matches runs of whitespace.
var whitespaceRe = regexp.MustCompile(`\s+`)

// Sanitize converts an arbitrary title into a filename stem.
// Unsafe characters become spaces, whitespace runs collapse to one space, and
// leading/trailing spaces and dots are stripped. The result is NFC-normalised
// and truncated to maxLen characters. An empty result means nothing usable
// was left; callers pick their own default.
func Sanitize(name string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	s := norm.NFC.String(name)
	s = invalidCharsRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = trim(s)

	// Truncate on a rune boundary.
	if utf8.RuneCountInString(s) > maxLen {
		s = trim(string([]rune(s)[:maxLen]))
	}

	return s
}

// WithExtension sanitizes name and appends ext, falling back to fallback when
// the sanitized stem is empty.
func WithExtension(name string, ext string, fallback string) string {
	stem := Sanitize(name, DefaultMaxLen)
	if stem == "" {
		stem = fallback
	}
	return stem + "." + strings.TrimPrefix(ext, ".")
}

// trim strips spaces and dots (avoid hidden files / trailing dots on Windows).
func trim(s string) string {
	return strings.Trim(s, " .")
}
