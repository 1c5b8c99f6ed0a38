// Package keycase converts object keys between camelCase and snake_case.
package keycase

import (
	"strings"
	"unicode"
)

// ToSnake converts camelCase to snake_case: githubUrl -> github_url.
// Keys already in snake_case are returned unchanged.
func ToSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			// break before an upper rune unless it continues an acronym
			if i > 0 && runes[i-1] != '_' &&
				(unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
					(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToCamel converts snake_case to camelCase: date_of_birth -> dateOfBirth.
// Leading underscores are preserved.
func ToCamel(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	upper := false
	leading := true
	for _, r := range s {
		if r == '_' {
			if leading {
				b.WriteRune(r)
				continue
			}
			upper = true
			continue
		}
		leading = false
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Transform rewrites every object key of a decoded JSON value with fn,
// recursing through nested objects and arrays. Scalars pass through.
func Transform(v any, fn func(string) string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fn(k)] = Transform(val, fn)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Transform(val, fn)
		}
		return out
	default:
		return v
	}
}

// Segments converts a loc-style segment list with fn
func Segments(segs []string, fn func(string) string) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = fn(s)
	}
	return out
}
