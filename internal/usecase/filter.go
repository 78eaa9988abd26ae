package usecase

import (
	"strings"

	"JobFeed/internal/domain"
)

// Keep reports whether listing passes policy. Every check is a
// case-insensitive OR over its set, the checks are ANDed, and an empty
// set never rejects.
func Keep(listing domain.Listing, policy domain.FilterPolicy) bool {
	// fields are space-separated; a keyword never spans two fields
	haystack := strings.ToLower(strings.Join([]string{listing.Title, listing.Company, listing.Location}, " "))
	if len(policy.IncludeKeywords) > 0 && !containsAny(haystack, policy.IncludeKeywords) {
		return false
	}

	titleCompany := strings.ToLower(listing.Title + " " + listing.Company)
	if len(policy.ExcludeKeywords) > 0 && containsAny(titleCompany, policy.ExcludeKeywords) {
		return false
	}

	if len(policy.Locations) > 0 && !containsAny(strings.ToLower(listing.Location), policy.Locations) {
		return false
	}

	if len(policy.Seniorities) > 0 && listing.Seniority != domain.SeniorityUnknown {
		matched := false
		for _, s := range policy.Seniorities {
			if strings.EqualFold(strings.TrimSpace(s), string(listing.Seniority)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

func containsAny(lowerText string, needles []string) bool {
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && strings.Contains(lowerText, n) {
			return true
		}
	}
	return false
}
