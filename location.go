package pagequery

import (
	"net/url"
	"strings"
)

// Location splits a URL into the two places list parameters can live.
// Page-level lists use the query string; lists inside dialogs use the
// fragment so the host page's navigable state is left alone.
type Location struct {
	Query    url.Values
	Fragment url.Values
}

// ParseLocation reads the query string and the fragment of u. Only the
// key=value pairs of the fragment are list parameters: a plain anchor such
// as "#section" yields no values, and a fragment that does not parse as a
// query string yields empty values.
func ParseLocation(u *url.URL) Location {
	loc := Location{Query: url.Values{}, Fragment: url.Values{}}
	if u == nil {
		return loc
	}

	loc.Query = u.Query()
	if u.Fragment != "" {
		if frag, err := url.ParseQuery(fragmentPairs(u.EscapedFragment())); err == nil {
			loc.Fragment = frag
		}
	}

	return loc
}

// Params returns the values a list reads from: the query string when
// updateURL is true, the fragment otherwise.
func (l Location) Params(updateURL bool) url.Values {
	if updateURL {
		return l.Query
	}
	return l.Fragment
}

// NavigateNext returns a copy of u pointing at the next page of the list
// namespaced by prefix. When updateURL is false the cursor is written to
// the fragment and the query string is kept as is.
func NavigateNext(u *url.URL, prefix string, pair CursorPair, updateURL bool) (*url.URL, bool) {
	return navigate(u, updateURL, func(params url.Values) (url.Values, bool) {
		return NextPage(prefix, params, pair)
	})
}

// NavigatePrev is NavigateNext for the previous page.
func NavigatePrev(u *url.URL, prefix string, pair CursorPair, updateURL bool) (*url.URL, bool) {
	return navigate(u, updateURL, func(params url.Values) (url.Values, bool) {
		return PrevPage(prefix, params, pair)
	})
}

func navigate(u *url.URL, updateURL bool, step func(url.Values) (url.Values, bool)) (*url.URL, bool) {
	params, ok := step(ParseLocation(u).Params(updateURL))
	if !ok {
		return WithParams(u, nil, updateURL), false
	}
	return WithParams(u, params, updateURL), true
}

// WithParams returns a copy of u with params written to the query string
// when updateURL is true, to the fragment otherwise. Either part is replaced
// as a whole, so a plain anchor in the fragment does not survive. A nil
// params returns an unchanged copy.
func WithParams(u *url.URL, params url.Values, updateURL bool) *url.URL {
	out := &url.URL{}
	if u != nil {
		copied := *u
		out = &copied
	}

	if params == nil {
		return out
	}

	encoded := params.Encode()
	if updateURL {
		out.RawQuery = encoded
		return out
	}

	fragment, err := url.PathUnescape(encoded)
	if err != nil {
		fragment = encoded
	}
	out.Fragment = fragment
	out.RawFragment = encoded
	return out
}

// fragmentPairs keeps the '&'-separated parts of an escaped fragment that
// carry a '='.
func fragmentPairs(fragment string) string {
	parts := strings.Split(fragment, "&")
	pairs := parts[:0]
	for _, p := range parts {
		if strings.Contains(p, "=") {
			pairs = append(pairs, p)
		}
	}
	return strings.Join(pairs, "&")
}
