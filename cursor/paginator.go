package cursor

import (
	"strconv"

	"github.com/nrfta/pagequery"
)

// SeeksGreater reports whether a request looks for rows after its cursor
// in ascending key order: paging forward through an ascending list, or
// backward through a descending one.
func SeeksGreater(req pagequery.Request) bool {
	ascending := req.SortOrder != pagequery.OrderDescending
	return ascending == req.IsForward()
}

// QueryOrder is the order rows must be fetched in so that the LIMIT keeps
// the rows nearest the cursor. Backward requests fetch in reverse and
// BuildPage restores the requested order.
func QueryOrder(req pagequery.Request) pagequery.SortOrder {
	order := req.SortOrder
	if !order.Valid() {
		order = pagequery.OrderAscending
	}
	if req.IsForward() {
		return order
	}
	return order.Flip()
}

// IsInitial reports whether req starts at an end of the list: forward from
// the beginning, or backward from the end.
func IsInitial(req pagequery.Request) bool {
	if req.IsForward() {
		return req.StartingAfter == pagequery.CursorBegin
	}
	return req.EndingBefore == pagequery.CursorEnd
}

// Limit returns the page size of req under config.
func Limit(req pagequery.Request, config *pagequery.PageConfig) int {
	return config.EffectiveLimit(strconv.Itoa(req.Limit))
}

// BuildPage turns rows fetched for req into a response page.
//
// items must be in QueryOrder and may hold up to limit+1 rows; the extra
// row only signals that the list continues (N+1 pattern). The page is
// trimmed to limit, put back in the requested order and given cursors:
// next resumes after the last item, prev before the first. When the list
// ends in the paging direction the corresponding cursor is the end
// sentinel (next) or empty (prev).
func BuildPage[T any](items []T, req pagequery.Request, limit int, schema *Schema[T]) (*pagequery.Page[T], error) {
	sortKey := req.SortKey
	if sortKey == "" {
		sortKey = pagequery.DefaultSortKey
	}

	more := len(items) > limit
	if more {
		items = items[:limit]
	}

	data := make([]T, len(items))
	if req.IsForward() {
		copy(data, items)
	} else {
		for i, item := range items {
			data[len(items)-1-i] = item
		}
	}

	page := &pagequery.Page[T]{Data: data, Next: pagequery.CursorEnd}

	if req.IsForward() {
		page.HasNext = more
		page.HasPrev = !IsInitial(req) && len(data) > 0
	} else {
		page.HasPrev = more
		page.HasNext = !IsInitial(req) && len(data) > 0
	}

	if len(data) == 0 {
		return page, nil
	}

	if page.HasNext {
		next, err := schema.Encode(data[len(data)-1], sortKey)
		if err != nil {
			return nil, err
		}
		page.Next = next
	}

	if page.HasPrev {
		prev, err := schema.Encode(data[0], sortKey)
		if err != nil {
			return nil, err
		}
		page.Prev = prev
	}

	return page, nil
}
