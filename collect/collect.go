// Package collect walks a list endpoint page by page, applying a
// client-side filter, until enough items have been kept.
//
// List endpoints filter on the server only as far as the filter grammar
// reaches. Views that hide items the grammar cannot describe (autogenerated
// policies, the item being edited) would otherwise show short pages. Fill
// keeps fetching, following the backend's next cursors, until the quota is
// met or a safeguard fires.
//
// Fill only walks forward. A starting_after cursor resumes a previous walk;
// an ending_before cursor is dropped and the walk starts at the beginning.
//
// Cursor handling: cursors are backend-issued and only valid at page
// boundaries, so Fill never trims a page. Result.Items may exceed the quota
// by less than one page, and Result.Next always resumes right after the last
// page examined.
package collect

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/rs/zerolog"

	"github.com/nrfta/pagequery"
)

// Default configuration values
const (
	defaultMaxPages    = 10
	defaultMaxItems    = 10 * pagequery.DefaultMaxPageSize
	defaultTimeout     = 30 * time.Second
	defaultPageSize    = pagequery.DefaultPageSize
	defaultMaxPageSize = pagequery.DefaultMaxPageSize
	strategyName       = "collect"
	safeguardTimeout   = "timeout"
	safeguardMaxItems  = "max_items"
	safeguardMaxPages  = "max_pages"
)

// Default adaptive backoff multipliers (Fibonacci-like progression)
var defaultBackoffMultipliers = []int{1, 2, 3, 5, 8}

// Metadata describes how a result was collected.
type Metadata struct {
	Strategy      string
	Elapsed       time.Duration
	PagesFetched  int
	ItemsExamined int

	// SafeguardHit names the safeguard that stopped collection early:
	// "timeout", "max_items" or "max_pages". Empty when collection
	// stopped because the quota was met or the list ended.
	SafeguardHit string
}

// Result is the outcome of Fill.
type Result[T any] struct {
	Items []T

	// Next resumes collection after the last page examined. It is
	// pagequery.CursorEnd when the list was exhausted.
	Next pagequery.Cursor

	Metadata Metadata
}

// HasMore reports whether the list continues after Next.
func (r *Result[T]) HasMore() bool {
	return pagequery.CursorPair{Next: r.Next}.HasNext()
}

// Option configures Fill.
type Option func(*config)

type config struct {
	quota              int
	pageSize           int
	maxPageSize        int
	maxPages           int
	maxItems           int
	timeout            time.Duration
	backoffMultipliers []int
	logger             zerolog.Logger
}

// WithQuota sets the number of kept items to collect. Default: 0, collect
// until the list ends or a safeguard fires.
func WithQuota(n int) Option {
	return func(c *config) {
		c.quota = n
	}
}

// WithPageConfig takes the page size bounds from a PageConfig.
func WithPageConfig(pc *pagequery.PageConfig) Option {
	return func(c *config) {
		if pc == nil {
			return
		}
		if pc.DefaultSize > 0 {
			c.pageSize = pc.DefaultSize
		}
		if pc.MaxSize > 0 {
			c.maxPageSize = pc.MaxSize
		}
	}
}

// WithMaxPages sets the maximum number of pages fetched.
// Default: 10
func WithMaxPages(n int) Option {
	return func(c *config) {
		c.maxPages = n
	}
}

// WithMaxItems sets the maximum number of items examined.
// Default: 15000
func WithMaxItems(n int) Option {
	return func(c *config) {
		c.maxItems = n
	}
}

// WithTimeout bounds the whole collection. When it fires, the items kept
// so far are returned with SafeguardHit "timeout".
// Default: 30s
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithBackoffMultipliers sets how much more than the remaining quota each
// successive page asks for.
// Default: 1, 2, 3, 5, 8
func WithBackoffMultipliers(multipliers []int) Option {
	return func(c *config) {
		if len(multipliers) > 0 {
			c.backoffMultipliers = multipliers
		}
	}
}

// WithLogger sets the logger for per-page tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func (c *config) multiplier(iteration int) int {
	return c.backoffMultipliers[min(iteration, len(c.backoffMultipliers)-1)]
}

// limitFor returns the page size to request on the given iteration.
func (c *config) limitFor(iteration, kept int) int {
	if c.quota <= 0 {
		return c.maxPageSize
	}
	remaining := max(c.quota-kept, 1)
	return min(max(remaining*c.multiplier(iteration), c.pageSize), c.maxPageSize)
}

// Fill fetches pages of lister starting at the position values describe,
// keeps the items keep returns, and stops once the quota is met, the list
// ends or a safeguard fires. A nil keep keeps everything. values holds the
// unprefixed request; it is not modified. Any ending_before in values is
// ignored.
func Fill[T any](
	ctx context.Context,
	lister pagequery.Lister[T],
	values url.Values,
	keep pagequery.FilterFunc[T],
	opts ...Option,
) (*Result[T], error) {
	cfg := &config{
		pageSize:           defaultPageSize,
		maxPageSize:        defaultMaxPageSize,
		maxPages:           defaultMaxPages,
		maxItems:           defaultMaxItems,
		timeout:            defaultTimeout,
		backoffMultipliers: defaultBackoffMultipliers,
		logger:             zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	startTime := time.Now()

	timeoutCtx := ctx
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		timeoutCtx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	req := pagequery.CloneValues(values)
	req.Set(pagequery.KeyVersion, pagequery.PaginationAPIVersion)
	req.Del(pagequery.KeyEndingBefore)

	state := &collectState[T]{
		items: []T{},
		next:  pagequery.Cursor(req.Get(pagequery.KeyStartingAfter)),
	}

	for cfg.quota <= 0 || len(state.items) < cfg.quota {
		safeguard, err := fetchPage(ctx, timeoutCtx, lister, req, keep, cfg, state)
		if err != nil {
			return nil, err
		}
		if safeguard != "" {
			state.safeguardHit = safeguard
			break
		}
		if state.exhausted {
			break
		}
	}

	return &Result[T]{
		Items: state.items,
		Next:  state.next,
		Metadata: Metadata{
			Strategy:      strategyName,
			Elapsed:       time.Since(startTime),
			PagesFetched:  state.pages,
			ItemsExamined: state.examined,
			SafeguardHit:  state.safeguardHit,
		},
	}, nil
}

// collectState tracks state across pages.
type collectState[T any] struct {
	items        []T
	pages        int
	examined     int
	next         pagequery.Cursor
	exhausted    bool
	safeguardHit string
}

func fetchPage[T any](
	parent, ctx context.Context,
	lister pagequery.Lister[T],
	req url.Values,
	keep pagequery.FilterFunc[T],
	cfg *config,
	state *collectState[T],
) (string, error) {
	if state.pages >= cfg.maxPages {
		return safeguardMaxPages, nil
	}

	select {
	case <-ctx.Done():
		if parent.Err() != nil {
			return "", parent.Err()
		}
		return safeguardTimeout, nil
	default:
	}

	limit := cfg.limitFor(state.pages, len(state.items))
	if room := cfg.maxItems - state.examined; limit > room {
		if room <= 0 {
			return safeguardMaxItems, nil
		}
		limit = room
	}
	req.Set(pagequery.KeyLimit, strconv.Itoa(limit))

	page, err := lister.List(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil {
			return safeguardTimeout, nil
		}
		return "", errors.Wrapf(err, "fetch page %d", state.pages+1)
	}
	if page == nil {
		page = pagequery.NewEmptyPage[T]()
	}

	state.pages++
	state.examined += page.Len()

	kept := page.Data
	if keep != nil {
		kept, err = keep(ctx, page.Data)
		if err != nil {
			return "", errors.Wrapf(err, "apply filter (page %d)", state.pages)
		}
	}
	state.items = append(state.items, kept...)

	cfg.logger.Debug().
		Int("page", state.pages).
		Int("limit", limit).
		Int("examined", page.Len()).
		Int("kept", len(kept)).
		Msg("collected page")

	pair := page.Cursors()
	if !pair.HasNext() {
		state.next = pagequery.CursorEnd
		state.exhausted = true
		return "", nil
	}

	state.next = pair.Next
	req.Set(pagequery.KeyStartingAfter, string(pair.Next))
	return "", nil
}
