package pagequery

import (
	"net/url"
	"strings"
)

// SortOrder is the value carried by sort_order.
type SortOrder string

const (
	OrderAscending  SortOrder = "ascending"
	OrderDescending SortOrder = "descending"
)

// Valid reports whether o is one of the two recognized orders.
func (o SortOrder) Valid() bool {
	return o == OrderAscending || o == OrderDescending
}

// Flip returns the opposite order. Anything that is not descending flips to
// descending.
func (o SortOrder) Flip() SortOrder {
	if o == OrderDescending {
		return OrderAscending
	}
	return OrderDescending
}

// SortDirection drives a column header's sort indicator.
type SortDirection string

const (
	SortedAscending  SortDirection = "sorted-asc"
	SortedDescending SortDirection = "sorted-desc"
	Sortable         SortDirection = "sortable"
)

// tieBreakKey is appended to every user-chosen sort key so that ordering is
// total.
const tieBreakKey = "id"

// PrimarySortKey returns the part of a sort key before the first comma.
func PrimarySortKey(sortKey string) string {
	primary, _, _ := strings.Cut(sortKey, ",")
	return primary
}

// SortKeyFor returns the sort key used when a column header is clicked:
// column followed by ",id", or just "id" for the id column.
func SortKeyFor(column string) string {
	if column == tieBreakKey {
		return tieBreakKey
	}
	return column + "," + tieBreakKey
}

// ApplySort computes the parameters to navigate to after clicking the header
// of column. Clicking the current primary sort column flips the order and
// keeps the sort key; any other column sorts ascending on "column,id".
//
// The result is a fresh parameter set: only company_id and tenant_id are
// carried over, so cursors and filters are dropped. params is not modified.
func ApplySort(prefix string, params url.Values, column string) url.Values {
	p := Prefix(prefix)
	out := url.Values{}

	for _, key := range []string{ParamCompanyID, ParamTenantID} {
		if v := params.Get(key); v != "" {
			out.Set(key, v)
		}
	}

	currentKey := params.Get(p.Key(KeySortKey))
	currentOrder := SortOrder(params.Get(p.Key(KeySortOrder)))

	if currentKey != "" && PrimarySortKey(currentKey) == column {
		out.Set(p.Key(KeySortKey), currentKey)
		out.Set(p.Key(KeySortOrder), string(currentOrder.Flip()))
		return out
	}

	out.Set(p.Key(KeySortKey), SortKeyFor(column))
	out.Set(p.Key(KeySortOrder), string(OrderAscending))
	return out
}

// ApplySortQuery is ApplySort rendered as a navigable query string.
func ApplySortQuery(prefix string, params url.Values, column string) string {
	return "?" + ApplySort(prefix, params, column).Encode()
}

// ColumnSortDirection reports how column is currently sorted.
func ColumnSortDirection(prefix string, params url.Values, column string) SortDirection {
	p := Prefix(prefix)

	currentKey := params.Get(p.Key(KeySortKey))
	if currentKey == "" || PrimarySortKey(currentKey) != column {
		return Sortable
	}

	if SortOrder(params.Get(p.Key(KeySortOrder))) == OrderDescending {
		return SortedDescending
	}
	return SortedAscending
}
