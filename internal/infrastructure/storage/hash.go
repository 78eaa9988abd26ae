package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"JobFeed/internal/domain"
)

// Hash is the dedup identity of a listing: sha256 over the lower-cased,
// trimmed title, company and location joined with "|".
func Hash(l domain.Listing) string {
	key := strings.Join([]string{
		canonical(l.Title),
		canonical(l.Company),
		canonical(l.Location),
	}, "|")
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func canonical(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
