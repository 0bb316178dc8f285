package client

import (
	"context"

	"github.com/friendsofgo/errors"
	"golang.org/x/sync/errgroup"
)

// Outcome classifies a bulk operation.
type Outcome int

const (
	AllSucceeded Outcome = iota
	PartialFailure
	AllFailed
)

func (o Outcome) String() string {
	switch o {
	case AllSucceeded:
		return "all succeeded"
	case PartialFailure:
		return "partial failure"
	case AllFailed:
		return "all failed"
	}
	return "unknown"
}

// BulkResult is the all-settled join of a bulk operation.
type BulkResult struct {
	Outcome   Outcome
	Succeeded []string
	Failed    map[string]error
}

// Err summarizes failures, or returns nil when every item succeeded.
func (r *BulkResult) Err() error {
	if r == nil || len(r.Failed) == 0 {
		return nil
	}
	return errors.Errorf("%s: %d of %d failed", r.Outcome, len(r.Failed), len(r.Failed)+len(r.Succeeded))
}

// RunAll calls fn for every id concurrently and waits for all of them,
// whatever their result. One failure never cancels the others. An empty
// ids list succeeds trivially.
func RunAll(ctx context.Context, ids []string, fn func(ctx context.Context, id string) error) *BulkResult {
	errs := make([]error, len(ids))

	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			errs[i] = fn(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	result := &BulkResult{Failed: map[string]error{}}
	for i, id := range ids {
		if errs[i] != nil {
			result.Failed[id] = errs[i]
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}

	switch {
	case len(result.Failed) == 0:
		result.Outcome = AllSucceeded
	case len(result.Succeeded) == 0:
		result.Outcome = AllFailed
	default:
		result.Outcome = PartialFailure
	}

	return result
}

// BulkDelete deletes ids of resource concurrently. Callers re-fetch the
// current page afterwards whatever the outcome.
func BulkDelete(ctx context.Context, c *Client, resource string, ids []string) *BulkResult {
	return RunAll(ctx, ids, func(ctx context.Context, id string) error {
		return Delete(ctx, c, resource, id)
	})
}
