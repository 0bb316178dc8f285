package filter

import (
	"net/url"

	"github.com/nrfta/pagequery"
)

// FromParams decodes the filter token of the list namespaced by prefix.
// A malformed token yields an empty list.
func FromParams(prefix string, params url.Values) []Filter {
	return Parse(params.Get(pagequery.Prefix(prefix).Key(pagequery.KeyFilter)))
}

// Set returns a copy of params carrying filters under prefix+filter, or
// without that key when filters is empty. Both cursors are cleared: a
// cursor from the old result set is meaningless under a new filter.
func Set(prefix string, params url.Values, filters []Filter) url.Values {
	out := pagequery.CloneValues(params)
	key := pagequery.Prefix(prefix).Key(pagequery.KeyFilter)

	if token := Serialize(filters); token != "" {
		out.Set(key, token)
	} else {
		out.Del(key)
	}

	pagequery.ClearCursors(prefix, out)
	return out
}

// Add returns a copy of params with f appended to the filter list of the
// list namespaced by prefix. LIKE values are wrapped in % markers; column
// kinds are not consulted (see Schema.Add for that).
func Add(prefix string, params url.Values, f Filter) url.Values {
	f = wrapLike(f)
	filters := append(FromParams(prefix, params), f)
	return Set(prefix, params, filters)
}

// Merge replaces the first filter on f's column in the token existing, or
// appends f when no filter targets that column. Later filters on the same
// column are dropped.
func Merge(f Filter, existing string) string {
	current := Parse(existing)
	out := make([]Filter, 0, len(current)+1)

	replaced := false
	for _, c := range current {
		if c.ColumnName != f.ColumnName {
			out = append(out, c)
			continue
		}
		if !replaced {
			out = append(out, f)
			replaced = true
		}
	}

	if !replaced {
		out = append(out, f)
	}

	return Serialize(out)
}

// Remove drops the first plain predicate equal to (column, op, value) from
// filters. When the triple is one bound of a range filter, only that bound
// is dropped. The boolean reports whether anything was removed.
func Remove(filters []Filter, column string, op Operator, value string) ([]Filter, bool) {
	out := make([]Filter, 0, len(filters))
	removed := false

	for _, f := range filters {
		if removed {
			out = append(out, f)
			continue
		}

		switch {
		case f.Matches(column, op, value):
			removed = true
		case f.IsRange() && f.ColumnName == column && f.Operator == op && f.Value == value:
			out = append(out, Filter{ColumnName: column, Operator: f.Operator2, Value: f.Value2})
			removed = true
		case f.IsRange() && f.ColumnName == column && f.Operator2 == op && f.Value2 == value:
			out = append(out, Filter{ColumnName: column, Operator: f.Operator, Value: f.Value})
			removed = true
		default:
			out = append(out, f)
		}
	}

	return out, removed
}

// Clear returns a copy of params without the predicate (column, op, value).
// Removing the last filter deletes the filter key. When the triple is not
// present the copy is unchanged, cursors included, and the boolean is
// false.
func Clear(column string, op Operator, value string, prefix string, params url.Values) (url.Values, bool) {
	filters, removed := Remove(FromParams(prefix, params), column, op, value)
	if !removed {
		return pagequery.CloneValues(params), false
	}
	return Set(prefix, params, filters), true
}

func wrapLike(f Filter) Filter {
	if f.Operator.IsLike() {
		f.Value = WrapWildcards(f.Value)
	}
	if f.Operator2.IsLike() {
		f.Value2 = WrapWildcards(f.Value2)
	}
	return f
}
