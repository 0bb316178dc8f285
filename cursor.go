package pagequery

import "net/url"

// Cursor is an opaque, backend-issued pagination token. Clients never decode
// it; they store it and send it back as starting_after or ending_before.
type Cursor string

const (
	// CursorBegin is the empty cursor: no page has been fetched yet.
	CursorBegin Cursor = ""

	// CursorEnd is the sentinel the backend returns as next when there is no
	// further page. It behaves exactly like an absent cursor.
	CursorEnd Cursor = "end"
)

// CursorPair holds the cursors returned with the last page.
type CursorPair struct {
	Prev Cursor
	Next Cursor
}

// HasNext reports whether forward navigation is possible.
func (c CursorPair) HasNext() bool {
	return c.Next != CursorBegin && c.Next != CursorEnd
}

// HasPrev reports whether backward navigation is possible.
func (c CursorPair) HasPrev() bool {
	return c.Prev != CursorBegin && c.Prev != CursorEnd
}

// NextPage returns a copy of params positioned on the next page: it sets
// prefix+starting_after and deletes prefix+ending_before. The boolean is
// false, and params is returned unchanged (copied), when there is no next
// page.
func NextPage(prefix string, params url.Values, pair CursorPair) (url.Values, bool) {
	out := CloneValues(params)
	if !pair.HasNext() {
		return out, false
	}

	p := Prefix(prefix)
	out.Set(p.Key(KeyStartingAfter), string(pair.Next))
	out.Del(p.Key(KeyEndingBefore))
	return out, true
}

// PrevPage returns a copy of params positioned on the previous page: it
// sets prefix+ending_before and deletes prefix+starting_after.
func PrevPage(prefix string, params url.Values, pair CursorPair) (url.Values, bool) {
	out := CloneValues(params)
	if !pair.HasPrev() {
		return out, false
	}

	p := Prefix(prefix)
	out.Set(p.Key(KeyEndingBefore), string(pair.Prev))
	out.Del(p.Key(KeyStartingAfter))
	return out, true
}
