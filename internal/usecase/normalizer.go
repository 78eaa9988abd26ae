package usecase

import (
	"strings"
	"time"

	"JobFeed/internal/domain"
)

const defaultLocation = "Remote"

// seniorityVocabulary is checked in order; the first level with a matching
// term wins, so "Senior" beats "Mid" in "Senior/Mid Backend Engineer".
var seniorityVocabulary = []struct {
	level domain.Seniority
	terms []string
}{
	{domain.SenioritySenior, []string{"senior", "sr.", "sr "}},
	{domain.SeniorityJunior, []string{"junior", "jr.", "jr ", "entry level", "entry-level"}},
	{domain.SeniorityMid, []string{"mid-level", "mid level", "middle", "mid"}},
}

// Normalizer maps raw postings to canonical listings.
type Normalizer struct {
	fallbacks map[string]string
	now       func() time.Time
}

// NewNormalizer builds a normalizer with per-source location fallbacks.
// Sources without an entry fall back to "Remote".
func NewNormalizer(fallbacks map[string]string) *Normalizer {
	return &Normalizer{fallbacks: fallbacks, now: time.Now}
}

// Normalize returns the canonical listing for raw, or false when the posting
// has no usable title or company.
func (n *Normalizer) Normalize(platform string, raw domain.RawPosting) (domain.Listing, bool) {
	// only the ends are trimmed; the dedup key is lower(trim(field))
	title := strings.TrimSpace(raw.Title)
	company := strings.TrimSpace(raw.Company)
	if title == "" || company == "" {
		return domain.Listing{}, false
	}

	location := strings.TrimSpace(raw.Location)
	if location == "" {
		location = n.fallbackFor(platform)
	}

	postedAt := raw.PostedAt
	if postedAt.IsZero() {
		postedAt = n.now()
	}

	return domain.Listing{
		Title:          title,
		Company:        company,
		Location:       location,
		Platform:       platform,
		URL:            strings.TrimSpace(raw.URL),
		PostedAt:       postedAt.UTC(),
		Seniority:      DetectSeniority(raw.Seniority + " " + title),
		TechStack:      dedupe(raw.Tags),
		EmploymentType: collapse(raw.EmploymentType),
	}, true
}

func (n *Normalizer) fallbackFor(platform string) string {
	if v := strings.TrimSpace(n.fallbacks[platform]); v != "" {
		return v
	}
	return defaultLocation
}

// DetectSeniority matches text case-insensitively against the vocabulary.
func DetectSeniority(text string) domain.Seniority {
	lower := strings.ToLower(text) + " "
	for _, entry := range seniorityVocabulary {
		for _, term := range entry.terms {
			if strings.Contains(lower, term) {
				return entry.level
			}
		}
	}
	return domain.SeniorityUnknown
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func dedupe(items []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = collapse(item)
		key := strings.ToLower(item)
		if item == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
