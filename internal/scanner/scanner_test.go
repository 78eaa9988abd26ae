package scanner

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"JobFeed/internal/domain"
)

type namedScanner struct {
	name  string
	title string
}

func (n namedScanner) Name() string { return n.name }

func (n namedScanner) Scan(context.Context, Request) ([]domain.RawPosting, error) {
	return []domain.RawPosting{{Title: n.title}}, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(namedScanner{name: "rss", title: "first"})
	reg.Register(namedScanner{name: "rss", title: "second"})

	s, err := reg.Resolve("rss")
	require.NoError(t, err)
	got, err := s.Scan(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "second", got[0].Title)

	_, err = reg.Resolve("workday")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownScanner))
	assert.Contains(t, err.Error(), "workday")
}

func TestZeroRegistryRegister(t *testing.T) {
	t.Parallel()

	var reg Registry
	reg.Register(namedScanner{name: "html"})
	_, err := reg.Resolve("html")
	assert.NoError(t, err)
}

func TestRequestOption(t *testing.T) {
	t.Parallel()

	req := Request{Options: map[string]string{"item": ".job", "empty": ""}}
	assert.Equal(t, ".job", req.Option("item", "li"))
	assert.Equal(t, "li", req.Option("empty", "li"))
	assert.Equal(t, "a", req.Option("link", "a"))
	assert.Equal(t, "a", Request{}.Option("link", "a"))
}
