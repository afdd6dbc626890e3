// Package style converts between structured style records and inline CSS
// strings. Both the parser and the generator go through this codec, so the
// two sides agree on property naming: records use camelCase keys, the wire
// form uses kebab-case. Nested one-level groups (padding, border) flatten
// into dashed compound properties ("padding" + "top" -> "padding-top").
package style

import (
	"sort"
	"strings"
)

// Record is a structured style record. Values are either plain strings or
// one-level nested groups (map[string]string). Nil and empty values are
// skipped during encoding; the model represents "not set" as absence.
type Record map[string]any

// Encode renders a record as a trimmed inline CSS string. Keys are emitted
// in sorted order so identical records always produce identical strings.
func Encode(r Record) string {
	if len(r) == 0 {
		return ""
	}

	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		switch v := r[key].(type) {
		case string:
			if v != "" {
				parts = append(parts, kebab(key)+": "+v)
			}
		case map[string]string:
			subKeys := make([]string, 0, len(v))
			for sk := range v {
				subKeys = append(subKeys, sk)
			}
			sort.Strings(subKeys)
			for _, sk := range subKeys {
				if v[sk] != "" {
					parts = append(parts, kebab(key)+"-"+kebab(sk)+": "+v[sk])
				}
			}
		}
	}

	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "; ") + ";"
}

// Decode parses an inline CSS string into a flat camelCase record. Malformed
// fragments (missing key or value) are silently skipped; decoding never fails
// on garbage input.
func Decode(s string) map[string]string {
	record := make(map[string]string)

	for _, fragment := range strings.Split(s, ";") {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		key, value, ok := strings.Cut(fragment, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		record[camel(key)] = value
	}

	return record
}

// kebab converts a camelCase property name to kebab-case.
func kebab(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// camel converts a kebab-case property name to camelCase.
func camel(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	upper := false
	for _, r := range s {
		if r == '-' {
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			b.WriteRune(r - ('a' - 'A'))
			upper = false
			continue
		}
		upper = false
		b.WriteRune(r)
	}
	return b.String()
}
