package parser

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
)

const (
	defaultUserAgent = "JobFeed/1.0 (+https://github.com/jobfeed)"
	maxBodyBytes     = 8 << 20
)

// HTTPFetcher is shared by every scanner strategy.
type HTTPFetcher struct {
	client    *http.Client
	limiter   *HostLimiter
	userAgent string
}

// NewHTTPFetcher wires an HTTP client and optional per-host limiter.
func NewHTTPFetcher(client *http.Client, limiter *HostLimiter) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTTPFetcher{client: client, limiter: limiter, userAgent: defaultUserAgent}
}

// Open performs a rate-limited GET and returns the body of a 2xx response.
// The caller closes it.
func (f *HTTPFetcher) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	if err := f.limiter.WaitURL(ctx, rawURL); err != nil {
		return nil, errors.Wrap(err, "rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", rawURL)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		_ = resp.Body.Close()
		return nil, errors.Newf("get %s: status %s", rawURL, resp.Status)
	}

	return struct {
		io.Reader
		io.Closer
	}{io.LimitReader(resp.Body, maxBodyBytes), resp.Body}, nil
}

// JSON decodes a JSON document into v.
func (f *HTTPFetcher) JSON(ctx context.Context, rawURL string, v any) error {
	body, err := f.Open(ctx, rawURL)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return errors.Wrapf(err, "decode %s", rawURL)
	}
	return nil
}

// Document parses an HTML page.
func (f *HTTPFetcher) Document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, err := f.Open(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, errors.Wrapf(err, "parse document %s", rawURL)
	}
	return doc, nil
}
