package scanner

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"JobFeed/internal/domain"
)

// ErrUnknownScanner is returned by Resolve for names nobody registered.
var ErrUnknownScanner = errors.New("scanner is not registered")

// Board describes a concrete listing endpoint provided by config.
type Board struct {
	Name string
	URL  string
}

// Request carries all parameters required to execute a scan.
type Request struct {
	Since    time.Time
	SiteName string
	Boards   []Board
	Options  map[string]string
}

// Option returns a site option or fallback when it is unset.
func (r Request) Option(key, fallback string) string {
	if v, ok := r.Options[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Scanner captures a single strategy implementation (greenhouse, lever, rss, html).
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) ([]domain.RawPosting, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds a registry with the given scanners registered.
func NewRegistry(scanners ...Scanner) *Registry {
	r := &Registry{scanners: map[string]Scanner{}}
	for _, s := range scanners {
		r.Register(s)
	}
	return r
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or ErrUnknownScanner.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, errors.Wrapf(ErrUnknownScanner, "scanner %q", name)
}
