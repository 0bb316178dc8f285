// Package sqlboiler serves list endpoints from SQLBoiler models.
//
// It turns a list request into query mods (filters, keyset WHERE, ORDER BY
// and LIMIT n+1) and the fetched rows into a response page, so a handler
// only has to supply the query:
//
//	fetcher := sqlboiler.NewFetcher(
//	    func(ctx context.Context, mods ...qm.QueryMod) ([]*models.Policy, error) {
//	        return models.Policies(mods...).All(ctx, db)
//	    },
//	    policySchema,
//	)
//
//	page, err := fetcher.List(ctx, r.URL.Query())
package sqlboiler

import (
	"context"
	"net/url"

	"github.com/aarondl/sqlboiler/v4/queries/qm"
	"github.com/friendsofgo/errors"
	"github.com/rs/zerolog"

	"github.com/nrfta/pagequery"
	"github.com/nrfta/pagequery/cursor"
	"github.com/nrfta/pagequery/filter"
)

// ErrUnsupportedVersion is returned for requests carrying a pagination API
// version other than pagequery.PaginationAPIVersion.
var ErrUnsupportedVersion = errors.New("unsupported pagination api version")

// QueryFunc executes a SQLBoiler query and returns results.
//
// Type parameter T is the SQLBoiler model type (e.g., *models.Policy).
type QueryFunc[T any] func(ctx context.Context, mods ...qm.QueryMod) ([]T, error)

// Fetcher answers list requests for one SQLBoiler model.
type Fetcher[T any] struct {
	queryFunc QueryFunc[T]
	schema    *cursor.Schema[T]
	config    *pagequery.PageConfig
	baseMods  []qm.QueryMod
	logger    zerolog.Logger
}

// Option configures a Fetcher.
type Option[T any] func(*Fetcher[T])

// WithPageConfig sets the page size defaults and limits.
func WithPageConfig[T any](config *pagequery.PageConfig) Option[T] {
	return func(f *Fetcher[T]) {
		if config != nil {
			f.config = config
		}
	}
}

// WithQueryMods adds mods applied to every query, e.g. tenant scoping.
func WithQueryMods[T any](mods ...qm.QueryMod) Option[T] {
	return func(f *Fetcher[T]) {
		f.baseMods = append(f.baseMods, mods...)
	}
}

// WithLogger sets the logger used for query tracing.
func WithLogger[T any](logger zerolog.Logger) Option[T] {
	return func(f *Fetcher[T]) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher running queryFunc over the keys of schema.
func NewFetcher[T any](queryFunc QueryFunc[T], schema *cursor.Schema[T], opts ...Option[T]) *Fetcher[T] {
	f := &Fetcher[T]{
		queryFunc: queryFunc,
		schema:    schema,
		config:    pagequery.NewPageConfig(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Schema returns the key schema the fetcher pages over.
func (f *Fetcher[T]) Schema() *cursor.Schema[T] {
	return f.schema
}

// Fetch answers a typed list request.
func (f *Fetcher[T]) Fetch(ctx context.Context, req pagequery.Request) (*pagequery.Page[T], error) {
	if req.Version != "" && req.Version != pagequery.PaginationAPIVersion {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "%q", req.Version)
	}

	limit := cursor.Limit(req, f.config)
	if req.SortKey == "" {
		req.SortKey = f.config.SortKey
	}
	if !req.SortOrder.Valid() {
		req.SortOrder = f.config.SortOrder
	}

	mods, err := RequestToQueryMods(req, f.schema, limit)
	if err != nil {
		return nil, err
	}
	mods = append(append([]qm.QueryMod{}, f.baseMods...), mods...)

	f.logger.Debug().
		Str("filter", req.Filter).
		Str("sort_key", req.SortKey).
		Str("sort_order", string(req.SortOrder)).
		Str("cursor", string(req.Cursor())).
		Bool("forward", req.IsForward()).
		Int("limit", limit).
		Msg("list query")

	rows, err := f.queryFunc(ctx, mods...)
	if err != nil {
		return nil, errors.Wrap(err, "list query")
	}

	return cursor.BuildPage(rows, req, limit, f.schema)
}

// List answers a list request in wire form. Limits above the configured
// maximum are rejected with a *pagequery.PageSizeError.
func (f *Fetcher[T]) List(ctx context.Context, values url.Values) (*pagequery.Page[T], error) {
	if err := f.config.Validate(values.Get(pagequery.KeyLimit)); err != nil {
		return nil, err
	}
	return f.Fetch(ctx, pagequery.RequestFromValues(values))
}

// IsInvalidRequest reports whether err was caused by the request rather
// than the database: a malformed or disjunctive filter, a filter on an
// unknown column, an unsupported sort key or version, a foreign cursor or
// an oversized limit. Handlers answer these with 400.
func IsInvalidRequest(err error) bool {
	var (
		syntaxErr *filter.SyntaxError
		sizeErr   *pagequery.PageSizeError
	)

	switch {
	case errors.As(err, &syntaxErr), errors.As(err, &sizeErr):
		return true
	}

	for _, target := range []error{
		filter.ErrNotConjunctive,
		filter.ErrUnknownColumn,
		filter.ErrInvalidValue,
		cursor.ErrInvalidCursor,
		cursor.ErrInvalidSortKey,
		ErrUnsupportedVersion,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

var _ pagequery.Lister[struct{}] = (*Fetcher[struct{}])(nil)
