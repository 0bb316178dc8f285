// Package cursor implements the backend side of the list protocol's
// keyset pagination.
//
// A cursor names the position of one item in a sorted result set by the
// values of the sort key's columns:
//
//	name:Alice,id:4b3a2d1e-0000-4000-8000-000000000001
//
// Values are query-escaped so they may contain ',' and ':'. A NULL value is
// written as the bare key name with no ':', which keeps it apart from the
// empty string:
//
//	description,id:4b3a2d1e-0000-4000-8000-000000000001
//	description:,id:4b3a2d1e-0000-4000-8000-000000000001
//
// The final key is always id, which makes ordering total.
//
// Clients treat cursors as opaque tokens; only the backend that issued a
// cursor decodes it, against the same sort key.
package cursor

import (
	"net/url"
	"strings"

	"github.com/friendsofgo/errors"

	"github.com/nrfta/pagequery"
)

// KeyValue is one column of a decoded cursor. Value is nil for NULL.
type KeyValue struct {
	Name  string
	Type  KeyType
	Value any
}

// Position is a decoded cursor: the sort key columns in order.
type Position struct {
	Keys []KeyValue
}

// Encode returns the cursor naming item's position under sortKey.
func (s *Schema[T]) Encode(item T, sortKey string) (pagequery.Cursor, error) {
	if err := s.Validate(sortKey); err != nil {
		return pagequery.CursorBegin, err
	}

	var b strings.Builder
	for i, name := range SplitSortKey(sortKey) {
		spec := s.keys[name]
		value, isNull, err := formatValue(name, spec.keyType, spec.extractor(item))
		if err != nil {
			return pagequery.CursorBegin, err
		}

		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(name)
		if isNull {
			continue
		}
		b.WriteByte(':')
		b.WriteString(url.QueryEscape(value))
	}

	return pagequery.Cursor(b.String()), nil
}

// Decode parses a cursor issued for sortKey. The begin and end sentinels
// decode to a nil position. A key without a value decodes as NULL. A cursor whose keys do not match sortKey in
// order, or whose values do not parse, returns ErrInvalidCursor.
func (s *Schema[T]) Decode(c pagequery.Cursor, sortKey string) (*Position, error) {
	if c == pagequery.CursorBegin || c == pagequery.CursorEnd {
		return nil, nil
	}

	if err := s.Validate(sortKey); err != nil {
		return nil, err
	}

	names := SplitSortKey(sortKey)
	pairs := strings.Split(string(c), ",")
	if len(pairs) != len(names) {
		return nil, errors.Wrapf(ErrInvalidCursor, "cursor has %d keys, sort key %q has %d", len(pairs), sortKey, len(names))
	}

	pos := &Position{Keys: make([]KeyValue, 0, len(names))}
	for i, pair := range pairs {
		name, raw, hasValue := strings.Cut(pair, ":")
		if name != names[i] {
			return nil, errors.Wrapf(ErrInvalidCursor, "key %q does not match sort key %q", name, sortKey)
		}

		keyType := s.keys[name].keyType
		if !hasValue {
			if !keyType.Nullable() {
				return nil, errors.Wrapf(ErrInvalidCursor, "key %q has no value", name)
			}
			pos.Keys = append(pos.Keys, KeyValue{Name: name, Type: keyType})
			continue
		}

		unescaped, err := url.QueryUnescape(raw)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidCursor, "key %q: %v", name, err)
		}

		value, err := s.ParseValue(name, unescaped)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidCursor, "%v", err)
		}

		pos.Keys = append(pos.Keys, KeyValue{Name: name, Type: keyType, Value: value})
	}

	return pos, nil
}
