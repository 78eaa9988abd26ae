package parser

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mmcdole/gofeed"

	"JobFeed/internal/domain"
	"JobFeed/internal/scanner"
)

// RSSScanner reads job feeds whose item titles follow the
// "Company: Title" convention (We Work Remotely and similar boards).
type RSSScanner struct {
	fetcher *HTTPFetcher
}

// NewRSSScanner wires the shared fetcher.
func NewRSSScanner(fetcher *HTTPFetcher) *RSSScanner {
	return &RSSScanner{fetcher: fetcher}
}

// Name identifies the strategy inside the registry.
func (r *RSSScanner) Name() string {
	return "rss"
}

// Scan returns feed items published since req.Since.
func (r *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawPosting, error) {
	if len(req.Boards) == 0 {
		return nil, errors.Newf("no boards provided for site %s", req.SiteName)
	}

	var out []domain.RawPosting
	for _, board := range req.Boards {
		feed, err := r.fetchFeed(ctx, board.URL)
		if err != nil {
			return nil, errors.Wrapf(err, "feed %s", board.Name)
		}

		for _, item := range feed.Items {
			posting, ok := rssPosting(item, board.Name, req.SiteName)
			if !ok || olderThan(posting.PostedAt, req.Since) {
				continue
			}
			out = append(out, posting)
		}
	}

	return out, nil
}

func (r *RSSScanner) fetchFeed(ctx context.Context, rawURL string) (*gofeed.Feed, error) {
	body, err := r.fetcher.Open(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, errors.Wrap(err, "parse feed")
	}
	return feed, nil
}

func rssPosting(item *gofeed.Item, boardName, siteName string) (domain.RawPosting, bool) {
	if item == nil {
		return domain.RawPosting{}, false
	}

	company, title := splitCompanyTitle(cleanText(item.Title))
	if company == "" && item.Author != nil {
		company = cleanText(item.Author.Name)
	}
	if company == "" {
		company = companyOr(boardName, siteName)
	}

	var postedAt time.Time
	switch {
	case item.PublishedParsed != nil:
		postedAt = item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		postedAt = item.UpdatedParsed.UTC()
	}

	link := strings.TrimSpace(item.Link)
	if link == "" {
		link = strings.TrimSpace(item.GUID)
	}

	return domain.RawPosting{
		Title:    title,
		Company:  company,
		URL:      link,
		PostedAt: postedAt,
		Tags:     item.Categories,
	}, true
}

// splitCompanyTitle splits "Acme: Senior Go Engineer" into its parts.
// Titles without the separator have no company.
func splitCompanyTitle(s string) (company, title string) {
	idx := strings.Index(s, ": ")
	if idx <= 0 {
		return "", s
	}
	return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+2:])
}
