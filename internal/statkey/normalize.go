// Package statkey canonicalizes raw statistic names into the stable metric
// key namespace shared by every ingestion source, and derives display labels
// for discovered keys.
package statkey

import (
	"regexp"
	"strings"
)

var nonAlnumRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize maps an arbitrary raw statistic name onto the canonical key
// namespace. The result is lowercase, underscore-joined, never starts with a
// digit, and is stable under repeated application. An empty result means the
// raw name is unrepresentable and the caller must drop it.
func Normalize(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return ""
	}

	key = strings.ReplaceAll(key, "%", "pct")
	key = nonAlnumRegex.ReplaceAllString(key, "_")
	key = strings.Trim(key, "_")
	if key == "" {
		return ""
	}
	if key[0] >= '0' && key[0] <= '9' {
		return "v_" + key
	}

	return key
}

// NormalizeName reduces a player display name to the search form used for
// cross-source identity matching: lowercase alphanumerics only, with a single
// trailing generational suffix trimmed.
func NormalizeName(value string) string {
	var b strings.Builder
	for _, ch := range strings.ToLower(value) {
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
		}
	}

	raw := b.String()
	for _, suffix := range []string{"jr", "sr", "ii", "iii", "iv"} {
		if strings.HasSuffix(raw, suffix) {
			return raw[:len(raw)-len(suffix)]
		}
	}
	return raw
}
