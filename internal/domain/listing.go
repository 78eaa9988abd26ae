package domain

import "time"

// RawPosting is a job posting as produced by a source strategy, before normalization.
type RawPosting struct {
	Title          string
	Company        string
	Location       string
	URL            string
	PostedAt       time.Time
	Seniority      string
	Tags           []string
	EmploymentType string
}

// Seniority enumerates the recognised experience levels.
type Seniority string

const (
	SeniorityUnknown Seniority = ""
	SenioritySenior  Seniority = "senior"
	SeniorityJunior  Seniority = "junior"
	SeniorityMid     Seniority = "mid"
)

// Listing is the canonical job posting produced by the normalizer.
type Listing struct {
	Title          string
	Company        string
	Location       string
	Platform       string
	URL            string
	PostedAt       time.Time
	Seniority      Seniority
	TechStack      []string
	EmploymentType string
}

// ListingRecord is a stored listing identified by its content hash.
type ListingRecord struct {
	Listing   Listing
	Hash      string
	CreatedAt time.Time
}

// BatchResult partitions a batch insert by outcome.
type BatchResult struct {
	InsertedHashes  []string
	DuplicateHashes []string
}

// FilterPolicy is the static keep/drop policy applied to every listing.
type FilterPolicy struct {
	IncludeKeywords []string `yaml:"includeKeywords"`
	ExcludeKeywords []string `yaml:"excludeKeywords"`
	Locations       []string `yaml:"locations"`
	Seniorities     []string `yaml:"seniorities"`
}

// SourceRunStats counts what a single source contributed to one run.
type SourceRunStats struct {
	Fetched  int `json:"fetched"`
	Retained int `json:"retained"`
	Errors   int `json:"errors"`
}

// RunSummary is returned to whoever triggered a run.
type RunSummary struct {
	RunID             string                    `json:"runId"`
	Fetched           int                       `json:"fetched"`
	Retained          int                       `json:"retained"`
	Stored            int                       `json:"stored"`
	Duplicates        int                       `json:"duplicates"`
	NotificationsSent int                       `json:"notificationsSent"`
	UsersProcessed    int                       `json:"usersProcessed"`
	UserErrors        int                       `json:"userErrors"`
	Sources           map[string]SourceRunStats `json:"sources"`
	DurationMS        int64                     `json:"durationMs"`
}
