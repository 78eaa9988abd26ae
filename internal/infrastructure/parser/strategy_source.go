package parser

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"JobFeed/internal/config"
	"JobFeed/internal/domain"
	"JobFeed/internal/logging"
	"JobFeed/internal/ports"
	"JobFeed/internal/scanner"
)

// SiteSource binds one configured site to its scanner strategy.
type SiteSource struct {
	site     config.SiteConfig
	strategy scanner.Scanner
	logger   *logging.Logger
}

var _ ports.SourceAdapter = (*SiteSource)(nil)

// NewSiteSource wires a site with an already resolved strategy.
func NewSiteSource(site config.SiteConfig, strategy scanner.Scanner, log *logging.Logger) *SiteSource {
	return &SiteSource{
		site:     site,
		strategy: strategy,
		logger:   log.With("site", site.Name, "scanner", strategy.Name()),
	}
}

// BuildSources resolves a strategy for every enabled site.
func BuildSources(reg *scanner.Registry, sites []config.SiteConfig, log *logging.Logger) ([]*SiteSource, error) {
	if reg == nil {
		return nil, errors.New("scanner registry is not configured")
	}

	var out []*SiteSource
	for _, site := range sites {
		if !site.IsEnabled() {
			log.Debug("site disabled", "site", site.Name)
			continue
		}
		strategy, err := reg.Resolve(site.Scanner)
		if err != nil {
			return nil, errors.Wrapf(err, "site %s", site.Name)
		}
		out = append(out, NewSiteSource(site, strategy, log))
	}
	return out, nil
}

// ID is the platform identifier stamped on every listing of this site.
func (s *SiteSource) ID() string {
	return s.site.Name
}

// LocationFallback is used by the normalizer for postings without a location.
func (s *SiteSource) LocationFallback() string {
	return s.site.LocationFallbackOrDefault()
}

// Fetch executes the site's strategy for postings since the given time.
func (s *SiteSource) Fetch(ctx context.Context, since time.Time) ([]domain.RawPosting, error) {
	s.logger.Debug("fetch site", "boards", len(s.site.Boards), "since", since.Format(time.RFC3339))

	req := scanner.Request{
		Since:    since,
		SiteName: s.site.Name,
		Options:  s.site.Options,
		Boards:   toScannerBoards(s.site.Boards),
	}

	results, err := s.strategy.Scan(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(err, "scan site %s", s.site.Name)
	}

	s.logger.Debug("site produced postings", "count", len(results))
	return results, nil
}

func toScannerBoards(cfg []config.BoardConfig) []scanner.Board {
	boards := make([]scanner.Board, 0, len(cfg))
	for _, b := range cfg {
		boards = append(boards, scanner.Board{
			Name: b.Name,
			URL:  b.URL,
		})
	}
	return boards
}
