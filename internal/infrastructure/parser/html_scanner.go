package parser

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"

	"JobFeed/internal/domain"
	"JobFeed/internal/scanner"
)

// Site options understood by the html strategy.
const (
	optItem       = "item"
	optTitle      = "title"
	optCompany    = "company"
	optLocation   = "location"
	optLink       = "link"
	optDate       = "date"
	optDateLayout = "dateLayout"
	optPageParam  = "pageParam"
	optMaxPages   = "maxPages"
)

// HTMLScanner crawls listing pages using CSS selectors taken from site options.
type HTMLScanner struct {
	fetcher *HTTPFetcher
}

// NewHTMLScanner wires the shared fetcher.
func NewHTMLScanner(fetcher *HTTPFetcher) *HTMLScanner {
	return &HTMLScanner{fetcher: fetcher}
}

// Name identifies the strategy inside the registry.
func (h *HTMLScanner) Name() string {
	return "html"
}

type selectors struct {
	item, title, company, location, link, date string
	dateLayout                                 string
}

func selectorsFrom(req scanner.Request) (selectors, error) {
	sel := selectors{
		item:       req.Option(optItem, ""),
		title:      req.Option(optTitle, ""),
		company:    req.Option(optCompany, ""),
		location:   req.Option(optLocation, ""),
		link:       req.Option(optLink, "a"),
		date:       req.Option(optDate, ""),
		dateLayout: req.Option(optDateLayout, time.RFC3339),
	}
	if sel.item == "" || sel.title == "" {
		return selectors{}, errors.Newf("site %s: html scanner needs %q and %q options", req.SiteName, optItem, optTitle)
	}
	return sel, nil
}

// Scan walks every board, following pagination when pageParam is set, and
// stops paging once a page yields no items.
func (h *HTMLScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawPosting, error) {
	if len(req.Boards) == 0 {
		return nil, errors.Newf("no boards provided for site %s", req.SiteName)
	}
	sel, err := selectorsFrom(req)
	if err != nil {
		return nil, err
	}

	pageParam := req.Option(optPageParam, "")
	maxPages := 1
	if pageParam != "" {
		if n, err := strconv.Atoi(req.Option(optMaxPages, "1")); err == nil && n > 0 {
			maxPages = n
		}
	}

	var results []domain.RawPosting
	seen := map[string]struct{}{}

	for _, board := range req.Boards {
		for page := 1; page <= maxPages; page++ {
			pageURL := board.URL
			if pageParam != "" {
				pageURL, err = buildPageURL(board.URL, pageParam, page)
				if err != nil {
					return nil, errors.Wrapf(err, "board %s", board.Name)
				}
			}

			doc, err := h.fetcher.Document(ctx, pageURL)
			if err != nil {
				return nil, errors.Wrapf(err, "board %s", board.Name)
			}

			items := extractPostings(doc, sel, pageURL, companyOr(board.Name, req.SiteName))
			if len(items) == 0 {
				break
			}

			for _, item := range items {
				if olderThan(item.PostedAt, req.Since) {
					continue
				}
				key := item.URL
				if key == "" {
					key = item.Title + "|" + item.Company
				}
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				results = append(results, item)
			}
		}
	}

	return results, nil
}

func extractPostings(doc *goquery.Document, sel selectors, pageURL, fallbackCompany string) []domain.RawPosting {
	base, _ := url.Parse(pageURL)

	var out []domain.RawPosting
	doc.Find(sel.item).Each(func(_ int, item *goquery.Selection) {
		title := cleanText(item.Find(sel.title).First().Text())
		if title == "" {
			return
		}

		company := fallbackCompany
		if sel.company != "" {
			if c := cleanText(item.Find(sel.company).First().Text()); c != "" {
				company = c
			}
		}

		var location string
		if sel.location != "" {
			location = cleanText(item.Find(sel.location).First().Text())
		}

		var link string
		if href, ok := item.Find(sel.link).First().Attr("href"); ok {
			link = resolveLink(base, href)
		} else if href, ok := item.Attr("href"); ok {
			link = resolveLink(base, href)
		}

		var postedAt time.Time
		if sel.date != "" {
			postedAt = parseDate(item.Find(sel.date).First(), sel.dateLayout)
		}

		out = append(out, domain.RawPosting{
			Title:    title,
			Company:  company,
			Location: location,
			URL:      link,
			PostedAt: postedAt,
		})
	})

	return out
}

// parseDate prefers a machine readable datetime attribute over the text.
func parseDate(node *goquery.Selection, layout string) time.Time {
	raw, ok := node.Attr("datetime")
	if !ok || strings.TrimSpace(raw) == "" {
		raw = node.Text()
	}
	raw = cleanText(raw)
	if raw == "" {
		return time.Time{}
	}

	for _, l := range []string{layout, time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(l, raw); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

func buildPageURL(base, param string, page int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", errors.Wrapf(err, "invalid board url %s", base)
	}

	query := parsed.Query()
	query.Set(param, strconv.Itoa(page))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
