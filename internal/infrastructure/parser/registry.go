package parser

import "JobFeed/internal/scanner"

// NewRegistry registers every built-in strategy over one shared fetcher.
func NewRegistry(fetcher *HTTPFetcher) *scanner.Registry {
	return scanner.NewRegistry(
		NewHTMLScanner(fetcher),
		NewGreenhouseScanner(fetcher),
		NewLeverScanner(fetcher),
		NewRSSScanner(fetcher),
	)
}
