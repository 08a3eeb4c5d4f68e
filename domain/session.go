package domain

import "strings"

// NormalizeUsername trims the identity label supplied at sign-in. The result
// is stored verbatim; an empty result means the caller must refuse to sign in.
func NormalizeUsername(raw string) string {
	return strings.TrimSpace(raw)
}

// ColorScheme is the binary theme preference.
type ColorScheme string

const (
	SchemeLight ColorScheme = "light"
	SchemeDark  ColorScheme = "dark"
)

// ParseColorScheme maps a stored value onto a ColorScheme.
func ParseColorScheme(raw string) (ColorScheme, bool) {
	switch ColorScheme(raw) {
	case SchemeLight:
		return SchemeLight, true
	case SchemeDark:
		return SchemeDark, true
	default:
		return "", false
	}
}

// Flip returns the opposite scheme.
func (c ColorScheme) Flip() ColorScheme {
	if c == SchemeDark {
		return SchemeLight
	}
	return SchemeDark
}
