package options

import (
	"context"
	"errors"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
)

// ErrUnknownURL is returned by Static when the URL has no registered list.
var ErrUnknownURL = errors.New("options: no option list registered for url")

// Fetcher loads the option list published at url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]model.Option, error)
}

// FetcherFunc adapts a function into a Fetcher.
type FetcherFunc func(ctx context.Context, url string) ([]model.Option, error)

// Fetch calls fn.
func (fn FetcherFunc) Fetch(ctx context.Context, url string) ([]model.Option, error) {
	return fn(ctx, url)
}

// Static serves fixed option lists keyed by URL. It is handy for tests and
// offline fills.
type Static map[string][]model.Option

// Fetch returns the list registered for url.
func (s Static) Fetch(_ context.Context, url string) ([]model.Option, error) {
	opts, ok := s[url]
	if !ok {
		return nil, ErrUnknownURL
	}
	return append([]model.Option(nil), opts...), nil
}
