package parser

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"JobFeed/internal/domain"
	"JobFeed/internal/scanner"
)

// LeverScanner reads the public postings API
// (https://api.lever.co/v0/postings/<slug>?mode=json).
type LeverScanner struct {
	fetcher *HTTPFetcher
}

// NewLeverScanner wires the shared fetcher.
func NewLeverScanner(fetcher *HTTPFetcher) *LeverScanner {
	return &LeverScanner{fetcher: fetcher}
}

// Name identifies the strategy inside the registry.
func (l *LeverScanner) Name() string {
	return "lever"
}

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	HostedURL  string `json:"hostedUrl"`
	CreatedAt  int64  `json:"createdAt"`
	Categories struct {
		Location   string `json:"location"`
		Commitment string `json:"commitment"`
		Team       string `json:"team"`
	} `json:"categories"`
}

// Scan returns postings created since req.Since.
func (l *LeverScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawPosting, error) {
	if len(req.Boards) == 0 {
		return nil, errors.Newf("no boards provided for site %s", req.SiteName)
	}

	var out []domain.RawPosting
	for _, board := range req.Boards {
		var postings []leverPosting
		if err := l.fetcher.JSON(ctx, board.URL, &postings); err != nil {
			return nil, errors.Wrapf(err, "board %s", board.Name)
		}

		for _, p := range postings {
			if p.HostedURL == "" || strings.TrimSpace(p.Text) == "" {
				continue
			}

			var postedAt time.Time
			if p.CreatedAt > 0 {
				postedAt = time.UnixMilli(p.CreatedAt).UTC()
			}
			if olderThan(postedAt, req.Since) {
				continue
			}

			var tags []string
			if team := cleanText(p.Categories.Team); team != "" {
				tags = append(tags, team)
			}

			out = append(out, domain.RawPosting{
				Title:          cleanText(p.Text),
				Company:        companyOr(board.Name, req.SiteName),
				Location:       cleanText(p.Categories.Location),
				URL:            p.HostedURL,
				PostedAt:       postedAt,
				Tags:           tags,
				EmploymentType: cleanText(p.Categories.Commitment),
			})
		}
	}

	return out, nil
}
