package pagequery

import (
	"net/url"
	"strconv"
)

// PaginationAPIVersion is sent with every list request.
const PaginationAPIVersion = "3"

// Request is the typed form of the parameters sent to a list endpoint.
// Zero-valued fields are omitted from the wire form.
type Request struct {
	Filter        string
	StartingAfter Cursor
	EndingBefore  Cursor
	Limit         int
	SortKey       string
	SortOrder     SortOrder
	Version       string
}

// RequestFromParams builds a Request from extracted parameters. An
// unparseable limit is dropped.
func RequestFromParams(params map[string]string) Request {
	req := Request{
		Filter:        params[KeyFilter],
		StartingAfter: Cursor(params[KeyStartingAfter]),
		EndingBefore:  Cursor(params[KeyEndingBefore]),
		SortKey:       params[KeySortKey],
		SortOrder:     SortOrder(params[KeySortOrder]),
	}

	if n, err := strconv.Atoi(params[KeyLimit]); err == nil {
		req.Limit = n
	}

	return req
}

// RequestFromValues reads an unprefixed request, as a list endpoint
// receives it.
func RequestFromValues(values url.Values) Request {
	req := RequestFromParams(Extract("", values))
	req.Version = values.Get(KeyVersion)
	return req
}

// IsForward reports whether the request pages forward. A request with
// neither cursor starts at the beginning and pages forward.
func (r Request) IsForward() bool {
	return r.EndingBefore == CursorBegin
}

// Cursor returns the cursor that positions the request.
func (r Request) Cursor() Cursor {
	if r.IsForward() {
		return r.StartingAfter
	}
	return r.EndingBefore
}

// Values encodes the request. At most one cursor is emitted: ending_before
// wins when both are set. version defaults to PaginationAPIVersion.
func (r Request) Values() url.Values {
	v := url.Values{}

	if r.Filter != "" {
		v.Set(KeyFilter, r.Filter)
	}

	if r.EndingBefore != CursorBegin {
		v.Set(KeyEndingBefore, string(r.EndingBefore))
	} else if r.StartingAfter != CursorBegin {
		v.Set(KeyStartingAfter, string(r.StartingAfter))
	}

	if r.Limit > 0 {
		v.Set(KeyLimit, strconv.Itoa(r.Limit))
	}

	if r.SortKey != "" {
		v.Set(KeySortKey, r.SortKey)
	}

	if r.SortOrder != "" {
		v.Set(KeySortOrder, string(r.SortOrder))
	}

	version := r.Version
	if version == "" {
		version = PaginationAPIVersion
	}
	v.Set(KeyVersion, version)

	return v
}
