package app

import (
	"regexp"
	"strings"
)

// Queries attached to spans are flattened to one line and truncated so the
// trace backend never stores multi-KB SQL blobs.
const maxTracedQueryLength = 512

var sqlWhitespace = regexp.MustCompile(`\s+`)

func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	flat := sqlWhitespace.ReplaceAllString(query, " ")
	if len(flat) <= maxTracedQueryLength {
		return flat
	}

	return flat[:maxTracedQueryLength] + "..."
}
