package github

import (
	"context"
	"errors"
	"iter"
	"net/http"

	gh "github.com/google/go-github/v68/github"
	"github.com/stahnma/gh-starneighbours/internal/metrics"
)

// MaxPerPage is the largest page size GitHub accepts for listing endpoints.
const MaxPerPage = 100

// ErrMalformedPayload is returned when a page entry lacks the fields an
// extraction rule needs.
var ErrMalformedPayload = errors.New("malformed payload")

// PageOptions bounds a paginated listing.
type PageOptions struct {
	PerPage  int
	MaxPages int
}

// DefaultPageOptions returns 100 items per page and a five page ceiling.
func DefaultPageOptions() PageOptions {
	return PageOptions{PerPage: MaxPerPage, MaxPages: 5}
}

func (o PageOptions) perPage() int {
	if o.PerPage <= 0 || o.PerPage > MaxPerPage {
		return MaxPerPage
	}
	return o.PerPage
}

// PageFunc fetches one raw page of a listing.
type PageFunc[R any] func(ctx context.Context, opts gh.ListOptions) ([]R, *gh.Response, error)

// ExtractFunc maps one raw page to the items it carries, in order.
type ExtractFunc[R, T any] func(page []R) ([]T, error)

// Paginate walks a listing page by page, starting at page 1, and yields the
// extracted items lazily. It stops without error once MaxPages requests have
// been made, on a 404, on an empty page, or after a page shorter than
// PerPage. Any other failure is yielded once as the final pair.
//
// endpoint only labels metrics.
func Paginate[R, T any](ctx context.Context, endpoint string, fetch PageFunc[R], extract ExtractFunc[R, T], opts PageOptions) iter.Seq2[T, error] {
	perPage := opts.perPage()
	return func(yield func(T, error) bool) {
		var zero T
		for page := 1; page <= opts.MaxPages; page++ {
			raw, resp, err := fetch(ctx, gh.ListOptions{Page: page, PerPage: perPage})
			if resp != nil && resp.StatusCode == http.StatusNotFound {
				metrics.UpstreamPages.WithLabelValues(endpoint, "not_found").Inc()
				return
			}
			if err != nil {
				metrics.UpstreamPages.WithLabelValues(endpoint, "error").Inc()
				yield(zero, err)
				return
			}
			metrics.UpstreamPages.WithLabelValues(endpoint, "ok").Inc()
			if len(raw) == 0 {
				return
			}

			items, err := extract(raw)
			if err != nil {
				yield(zero, err)
				return
			}
			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}
			if len(items) < perPage {
				return
			}
		}
	}
}

// Collect drains seq into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
