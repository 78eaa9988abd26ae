package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"JobFeed/internal/domain"
)

func sampleListing() domain.Listing {
	return domain.Listing{
		Title:     "Senior Backend Engineer",
		Company:   "Acme",
		Location:  "Remote - Europe",
		Platform:  "greenhouse",
		Seniority: domain.SenioritySenior,
	}
}

func TestKeep(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		policy domain.FilterPolicy
		mutate func(*domain.Listing)
		want   bool
	}{
		{name: "empty policy", want: true},
		{name: "include matches title", policy: domain.FilterPolicy{IncludeKeywords: []string{"BACKEND"}}, want: true},
		{name: "include matches location", policy: domain.FilterPolicy{IncludeKeywords: []string{"europe"}}, want: true},
		{name: "include misses", policy: domain.FilterPolicy{IncludeKeywords: []string{"frontend"}}, want: false},
		{name: "include never spans fields", policy: domain.FilterPolicy{IncludeKeywords: []string{"engineeracme"}}, want: false},
		{name: "include spans words of one field", policy: domain.FilterPolicy{IncludeKeywords: []string{"backend engineer"}}, want: true},
		{name: "exclude hits company", policy: domain.FilterPolicy{ExcludeKeywords: []string{"acme"}}, want: false},
		{name: "exclude ignores location", policy: domain.FilterPolicy{ExcludeKeywords: []string{"europe"}}, want: true},
		{name: "location matches", policy: domain.FilterPolicy{Locations: []string{"berlin", "remote"}}, want: true},
		{name: "location misses", policy: domain.FilterPolicy{Locations: []string{"berlin"}}, want: false},
		{name: "seniority matches", policy: domain.FilterPolicy{Seniorities: []string{"Senior"}}, want: true},
		{name: "seniority mismatch", policy: domain.FilterPolicy{Seniorities: []string{"junior"}}, want: false},
		{
			name:   "unknown seniority passes",
			policy: domain.FilterPolicy{Seniorities: []string{"junior"}},
			mutate: func(l *domain.Listing) { l.Seniority = domain.SeniorityUnknown },
			want:   true,
		},
		{
			name: "all checks anded",
			policy: domain.FilterPolicy{
				IncludeKeywords: []string{"engineer"},
				ExcludeKeywords: []string{"intern"},
				Locations:       []string{"remote"},
				Seniorities:     []string{"senior"},
			},
			want: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := sampleListing()
			if tc.mutate != nil {
				tc.mutate(&l)
			}
			assert.Equal(t, tc.want, Keep(l, tc.policy))
		})
	}
}

func TestKeepIncludeOnlyNarrows(t *testing.T) {
	t.Parallel()

	listings := []domain.Listing{
		sampleListing(),
		{Title: "Frontend Developer", Company: "Globex", Location: "Berlin"},
		{Title: "Data Engineer", Company: "Initech", Location: "Remote"},
	}
	base := domain.FilterPolicy{Locations: []string{"remote", "berlin"}}
	narrowed := base
	narrowed.IncludeKeywords = []string{"kubernetes"}

	for _, l := range listings {
		before := Keep(l, base)
		after := Keep(l, narrowed)
		assert.True(t, before, l.Title)
		assert.False(t, after, l.Title)
	}
}
