package pagequery

// Page is one page of a list endpoint's response:
//
//	{"data": [...], "has_next": true, "next": "...", "has_prev": false, "prev": ""}
//
// Type parameter T is the item type (e.g. AccessPolicy, Transformer).
type Page[T any] struct {
	Data    []T    `json:"data"`
	HasNext bool   `json:"has_next"`
	Next    Cursor `json:"next,omitempty"`
	HasPrev bool   `json:"has_prev"`
	Prev    Cursor `json:"prev,omitempty"`
}

// Cursors returns the navigation pair for the page. Cursors the backend
// flags as unusable (has_next / has_prev false) are dropped so the pair
// disables the matching control.
func (p *Page[T]) Cursors() CursorPair {
	if p == nil {
		return CursorPair{}
	}

	pair := CursorPair{}
	if p.HasNext {
		pair.Next = p.Next
	}
	if p.HasPrev {
		pair.Prev = p.Prev
	}
	return pair
}

// Len returns the number of items on the page.
func (p *Page[T]) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Data)
}

// NewEmptyPage returns a page with no items and no navigation.
func NewEmptyPage[T any]() *Page[T] {
	return &Page[T]{
		Data: []T{},
		Next: CursorEnd,
	}
}
