package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nrfta/pagequery"
)

// List fetches one page of resource. values is the unprefixed wire form of
// a request; version is added when missing.
func List[T any](ctx context.Context, c *Client, resource string, values url.Values) (*pagequery.Page[T], error) {
	u := c.resolve(resource)

	q := pagequery.CloneValues(values)
	if q.Get(pagequery.KeyVersion) == "" {
		q.Set(pagequery.KeyVersion, pagequery.PaginationAPIVersion)
	}
	u.RawQuery = q.Encode()

	page := &pagequery.Page[T]{}
	if err := c.do(ctx, "list "+resource, http.MethodGet, u, page); err != nil {
		return nil, err
	}
	if page.Data == nil {
		page.Data = []T{}
	}

	return page, nil
}

// Delete deletes the item id of resource.
func Delete(ctx context.Context, c *Client, resource, id string) error {
	return c.do(ctx, "delete "+resource, http.MethodDelete, c.resolve(resource, id), nil)
}

// Resource is a list endpoint bound to a client. It implements
// pagequery.Lister.
type Resource[T any] struct {
	client *Client
	path   string
}

// NewResource binds the list endpoint at path.
func NewResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{client: c, path: path}
}

// List implements pagequery.Lister.
func (r *Resource[T]) List(ctx context.Context, values url.Values) (*pagequery.Page[T], error) {
	return List[T](ctx, r.client, r.path, values)
}

// Delete deletes one item.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	return Delete(ctx, r.client, r.path, id)
}

// BulkDelete deletes ids concurrently. See RunAll.
func (r *Resource[T]) BulkDelete(ctx context.Context, ids []string) *BulkResult {
	return BulkDelete(ctx, r.client, r.path, ids)
}

var _ pagequery.Lister[struct{}] = (*Resource[struct{}])(nil)
