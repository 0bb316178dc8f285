// Package view tracks the fetch state of one paginated list view.
//
// A view moves Idle → Loading → {Loaded | Errored} and back to Loading
// whenever its prefix-scoped parameters change. There is no retry state: a
// failed fetch stays Errored until the parameters change or the caller
// refreshes. Responses are applied in arrival order, so a stale response
// that lands last wins.
package view

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nrfta/pagequery"
	"github.com/nrfta/pagequery/client"
)

// State of a list view.
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Errored:
		return "errored"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Snapshot is a consistent copy of a view's state.
type Snapshot[T any] struct {
	State  State
	Page   *pagequery.Page[T]
	Error  string
	Notice string
	Params map[string]string
}

type options struct {
	config *pagequery.PageConfig
	logger zerolog.Logger
}

// Option configures a ListView.
type Option func(*options)

// WithPageConfig sets the defaults applied to extracted parameters.
func WithPageConfig(config *pagequery.PageConfig) Option {
	return func(o *options) {
		if config != nil {
			o.config = config
		}
	}
}

// WithLogger sets the logger for state transitions.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// ListView is the fetch state of one list namespaced by a prefix.
type ListView[T any] struct {
	lister pagequery.Lister[T]
	prefix string
	opts   options

	mu     sync.Mutex
	state  State
	page   *pagequery.Page[T]
	errMsg string
	notice string
	params map[string]string
}

// New creates an Idle view over lister.
func New[T any](lister pagequery.Lister[T], prefix string, opts ...Option) *ListView[T] {
	o := options{
		config: pagequery.NewPageConfig(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &ListView[T]{
		lister: lister,
		prefix: prefix,
		opts:   o,
		state:  Idle,
	}
}

// Prefix returns the view's parameter namespace.
func (v *ListView[T]) Prefix() string {
	return v.prefix
}

// Load extracts the view's parameters from params and fetches the page
// they describe.
func (v *ListView[T]) Load(ctx context.Context, params url.Values) error {
	extracted := v.opts.config.WithDefaults(pagequery.Extract(v.prefix, params))
	return v.fetch(ctx, extracted, "")
}

// Sync loads only when the view has never loaded or its prefix-scoped
// parameters differ from the last load. It reports whether a fetch ran.
func (v *ListView[T]) Sync(ctx context.Context, params url.Values) (bool, error) {
	extracted := v.opts.config.WithDefaults(pagequery.Extract(v.prefix, params))

	v.mu.Lock()
	unchanged := v.state != Idle && maps.Equal(extracted, v.params)
	v.mu.Unlock()

	if unchanged {
		return false, nil
	}
	return true, v.fetch(ctx, extracted, "")
}

// Refresh reloads the last parameters. A view that never loaded fetches
// the first page.
func (v *ListView[T]) Refresh(ctx context.Context) error {
	v.mu.Lock()
	params := v.params
	v.mu.Unlock()

	if params == nil {
		params = v.opts.config.WithDefaults(map[string]string{})
	}
	return v.fetch(ctx, params, "")
}

// AfterBulk re-fetches the current page whatever the bulk outcome, so the
// view reflects server state. Failures are kept as a notice next to the
// refreshed page.
func (v *ListView[T]) AfterBulk(ctx context.Context, result *client.BulkResult) error {
	notice := ""
	if result != nil {
		switch result.Outcome {
		case client.AllFailed:
			notice = fmt.Sprintf("failed to process all %d items", len(result.Failed))
		case client.PartialFailure:
			notice = fmt.Sprintf("failed to process %d of %d items", len(result.Failed), len(result.Failed)+len(result.Succeeded))
		}
	}

	v.mu.Lock()
	params := v.params
	v.mu.Unlock()

	if params == nil {
		params = v.opts.config.WithDefaults(map[string]string{})
	}
	return v.fetch(ctx, params, notice)
}

func (v *ListView[T]) fetch(ctx context.Context, params map[string]string, notice string) error {
	v.mu.Lock()
	from := v.state
	v.state = Loading
	v.params = params
	v.notice = notice
	v.mu.Unlock()

	v.opts.logger.Debug().
		Str("prefix", v.prefix).
		Stringer("from", from).
		Stringer("to", Loading).
		Msg("list view transition")

	page, err := v.lister.List(ctx, pagequery.RequestFromParams(params).Values())

	v.mu.Lock()
	defer v.mu.Unlock()

	if err != nil {
		v.state = Errored
		v.page = nil
		v.errMsg = client.ErrorMessage(err)
		v.opts.logger.Debug().Str("prefix", v.prefix).Err(err).Msg("list view errored")
		return err
	}

	if page == nil {
		page = pagequery.NewEmptyPage[T]()
	}

	v.state = Loaded
	v.page = page
	v.errMsg = ""
	v.opts.logger.Debug().Str("prefix", v.prefix).Int("items", page.Len()).Msg("list view loaded")
	return nil
}

// State returns the current state.
func (v *ListView[T]) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Snapshot returns a copy of the view's state.
func (v *ListView[T]) Snapshot() Snapshot[T] {
	v.mu.Lock()
	defer v.mu.Unlock()

	params := make(map[string]string, len(v.params))
	for k, val := range v.params {
		params[k] = val
	}

	return Snapshot[T]{
		State:  v.state,
		Page:   v.page,
		Error:  v.errMsg,
		Notice: v.notice,
		Params: params,
	}
}

// Cursors returns the navigation pair of the loaded page.
func (v *ListView[T]) Cursors() pagequery.CursorPair {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page.Cursors()
}
