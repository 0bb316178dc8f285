package pagequery

import (
	"fmt"
	"strconv"

	"github.com/friendsofgo/errors"
)

const (
	// DefaultPageSize is the number of items per page when the request does
	// not carry a limit.
	DefaultPageSize = 50

	// DefaultMaxPageSize is the largest limit a list request may carry.
	// Views that need "everything" (e.g. policy pickers) ask for exactly this.
	DefaultMaxPageSize = 1500

	// DefaultSortKey sorts by id, which is always a valid final sort key.
	DefaultSortKey = "id"
)

// PageConfig holds the caller-side defaults applied to extracted parameters.
// Extract never defaults anything; views call WithDefaults themselves.
//
// Example:
//
//	config := pagequery.NewPageConfig().WithDefaultSize(20).WithSortKey("name,id")
//	params := config.WithDefaults(pagequery.Extract(prefix, query))
type PageConfig struct {
	// DefaultSize is the limit used when none is present.
	DefaultSize int

	// MaxSize caps limits. Larger requests are capped, not rejected.
	MaxSize int

	// SortKey is used when sort_key is absent.
	SortKey string

	// SortOrder is used when sort_order is absent.
	SortOrder SortOrder
}

// NewPageConfig creates a PageConfig with defaults:
// - DefaultSize: 50
// - MaxSize: 1500
// - SortKey: "id"
// - SortOrder: ascending
func NewPageConfig() *PageConfig {
	return &PageConfig{
		DefaultSize: DefaultPageSize,
		MaxSize:     DefaultMaxPageSize,
		SortKey:     DefaultSortKey,
		SortOrder:   OrderAscending,
	}
}

// WithDefaultSize sets the default page size and returns the config for chaining.
func (c *PageConfig) WithDefaultSize(size int) *PageConfig {
	if size > 0 {
		c.DefaultSize = size
	}
	return c
}

// WithMaxSize sets the maximum page size and returns the config for chaining.
func (c *PageConfig) WithMaxSize(size int) *PageConfig {
	if size > 0 {
		c.MaxSize = size
	}
	return c
}

// WithSortKey sets the default sort key and returns the config for chaining.
func (c *PageConfig) WithSortKey(key string) *PageConfig {
	if key != "" {
		c.SortKey = key
	}
	return c
}

// WithSortOrder sets the default sort order and returns the config for chaining.
func (c *PageConfig) WithSortOrder(order SortOrder) *PageConfig {
	if order.Valid() {
		c.SortOrder = order
	}
	return c
}

// EffectiveLimit returns the page size to use for a raw limit value.
// - Empty, unparseable or non-positive values return DefaultSize
// - Values above MaxSize return MaxSize
func (c *PageConfig) EffectiveLimit(raw string) int {
	if c == nil {
		c = NewPageConfig()
	}

	defaultSize := c.DefaultSize
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}

	maxSize := c.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxPageSize
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultSize
	}

	if n > maxSize {
		return maxSize
	}

	return n
}

// Validate rejects a raw limit above MaxSize. Unlike EffectiveLimit, which
// caps silently, Validate is meant for servers that refuse such requests.
func (c *PageConfig) Validate(raw string) error {
	if c == nil {
		c = NewPageConfig()
	}

	if raw == "" {
		return nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return errors.Errorf("limit %q is not an integer", raw)
	}

	maxSize := c.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxPageSize
	}

	if n > maxSize {
		return &PageSizeError{
			Requested: n,
			Maximum:   maxSize,
		}
	}

	return nil
}

// WithDefaults returns a copy of params with limit, sort_key and sort_order
// filled in when missing and the limit capped to MaxSize.
func (c *PageConfig) WithDefaults(params map[string]string) map[string]string {
	if c == nil {
		c = NewPageConfig()
	}

	out := make(map[string]string, len(params)+3)
	for k, v := range params {
		out[k] = v
	}

	out[KeyLimit] = strconv.Itoa(c.EffectiveLimit(out[KeyLimit]))

	if out[KeySortKey] == "" {
		key := c.SortKey
		if key == "" {
			key = DefaultSortKey
		}
		out[KeySortKey] = key
	}

	if out[KeySortOrder] == "" {
		order := c.SortOrder
		if !order.Valid() {
			order = OrderAscending
		}
		out[KeySortOrder] = string(order)
	}

	return out
}

// PageSizeError is returned when the requested page size exceeds the maximum allowed.
type PageSizeError struct {
	Requested int
	Maximum   int
}

func (e *PageSizeError) Error() string {
	return fmt.Sprintf("requested page size %d exceeds maximum allowed page size of %d",
		e.Requested, e.Maximum)
}
