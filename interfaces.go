package pagequery

import (
	"context"
	"net/url"
)

// Lister fetches one page of a list endpoint.
// values is the unprefixed wire form of a Request (see Request.Values).
//
// Type parameter T is the item type being listed.
//
// Implementations:
//   - client.Resource: HTTP list endpoint of the console's backend
//   - sqlboiler.Fetcher: the backend side, answering from a database
//   - ListerFunc: adapter for plain functions, used by tests and views
type Lister[T any] interface {
	List(ctx context.Context, values url.Values) (*Page[T], error)
}

// ListerFunc adapts a function to the Lister interface.
type ListerFunc[T any] func(ctx context.Context, values url.Values) (*Page[T], error)

// List implements Lister.
func (f ListerFunc[T]) List(ctx context.Context, values url.Values) (*Page[T], error) {
	return f(ctx, values)
}

// FilterFunc is a client-side filter applied to each fetched page.
// It receives a batch of items and returns the subset to keep.
//
// Common use cases:
//   - Hiding autogenerated policies from a chooser
//   - Excluding the item currently being edited
//   - Matching on fields the backend filter grammar can't express
//
// Example:
//
//	keep := func(ctx context.Context, ps []AccessPolicy) ([]AccessPolicy, error) {
//	    out := make([]AccessPolicy, 0, len(ps))
//	    for _, p := range ps {
//	        if !p.IsAutogenerated {
//	            out = append(out, p)
//	        }
//	    }
//	    return out, nil
//	}
type FilterFunc[T any] func(ctx context.Context, items []T) ([]T, error)
