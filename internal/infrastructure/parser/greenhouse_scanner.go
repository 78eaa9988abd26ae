package parser

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"JobFeed/internal/domain"
	"JobFeed/internal/scanner"
)

// GreenhouseScanner reads the public boards API
// (https://boards-api.greenhouse.io/v1/boards/<slug>/jobs).
type GreenhouseScanner struct {
	fetcher *HTTPFetcher
}

// NewGreenhouseScanner wires the shared fetcher.
func NewGreenhouseScanner(fetcher *HTTPFetcher) *GreenhouseScanner {
	return &GreenhouseScanner{fetcher: fetcher}
}

// Name identifies the strategy inside the registry.
func (g *GreenhouseScanner) Name() string {
	return "greenhouse"
}

type greenhouseBoard struct {
	Jobs []greenhouseJob `json:"jobs"`
}

type greenhouseJob struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	AbsoluteURL string `json:"absolute_url"`
	UpdatedAt   string `json:"updated_at"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
	Departments []struct {
		Name string `json:"name"`
	} `json:"departments"`
}

// Scan returns the board jobs updated since req.Since. Board name is the company.
func (g *GreenhouseScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawPosting, error) {
	if len(req.Boards) == 0 {
		return nil, errors.Newf("no boards provided for site %s", req.SiteName)
	}

	var out []domain.RawPosting
	for _, board := range req.Boards {
		var payload greenhouseBoard
		if err := g.fetcher.JSON(ctx, board.URL, &payload); err != nil {
			return nil, errors.Wrapf(err, "board %s", board.Name)
		}

		for _, job := range payload.Jobs {
			var postedAt time.Time
			if job.UpdatedAt != "" {
				if parsed, err := time.Parse(time.RFC3339, job.UpdatedAt); err == nil {
					postedAt = parsed
				}
			}
			if olderThan(postedAt, req.Since) {
				continue
			}

			var tags []string
			for _, d := range job.Departments {
				if d.Name != "" {
					tags = append(tags, d.Name)
				}
			}

			out = append(out, domain.RawPosting{
				Title:    cleanText(job.Title),
				Company:  companyOr(board.Name, req.SiteName),
				Location: cleanText(job.Location.Name),
				URL:      job.AbsoluteURL,
				PostedAt: postedAt,
				Tags:     tags,
			})
		}
	}

	return out, nil
}
