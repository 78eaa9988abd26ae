package parser

import (
	"strings"
	"time"
)

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// olderThan reports whether a known posting time precedes since.
// Postings without a time are kept and stamped later by the normalizer.
func olderThan(postedAt, since time.Time) bool {
	return !postedAt.IsZero() && !since.IsZero() && postedAt.Before(since)
}

func companyOr(board, site string) string {
	if board != "" {
		return board
	}
	return site
}
