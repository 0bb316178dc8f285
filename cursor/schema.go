package cursor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/google/uuid"

	"github.com/nrfta/pagequery/filter"
)

// KeyType is the value type of a pagination key. It decides how cursor
// values are encoded and whether the key may be NULL.
type KeyType int

const (
	UUIDKey KeyType = iota
	StringKey
	NullableStringKey
	IntKey
	NullableIntKey
	TimestampKey
	NullableTimestampKey

	// UUIDArrayKey columns can be filtered with HAS but never sorted on.
	UUIDArrayKey
)

func (t KeyType) String() string {
	switch t {
	case UUIDKey:
		return "uuid"
	case StringKey:
		return "string"
	case NullableStringKey:
		return "nullable string"
	case IntKey:
		return "int"
	case NullableIntKey:
		return "nullable int"
	case TimestampKey:
		return "timestamp"
	case NullableTimestampKey:
		return "nullable timestamp"
	case UUIDArrayKey:
		return "uuid array"
	}
	return "unknown"
}

// Nullable reports whether values of t may be NULL.
func (t KeyType) Nullable() bool {
	return t == NullableStringKey || t == NullableIntKey || t == NullableTimestampKey
}

// Sortable reports whether t can appear in a sort key.
func (t KeyType) Sortable() bool {
	return t != UUIDArrayKey
}

// filterKind maps t to the filter column kind search forms use.
func (t KeyType) filterKind() filter.Kind {
	switch t {
	case UUIDKey:
		return filter.KindUUID
	case TimestampKey, NullableTimestampKey:
		return filter.KindDate
	case UUIDArrayKey:
		return filter.KindArray
	}
	return filter.KindString
}

// FinalKey must end every sort key so that ordering is total.
const FinalKey = "id"

var (
	// ErrInvalidSortKey is returned for sort keys the schema cannot serve.
	ErrInvalidSortKey = errors.New("invalid sort key")

	// ErrInvalidCursor is returned for cursors that do not match the sort key.
	ErrInvalidCursor = errors.New("invalid cursor")
)

// keySpec defines a single pagination key in a schema.
type keySpec[T any] struct {
	name      string
	keyType   KeyType
	extractor func(T) any
}

// Schema lists the pagination keys of one result type: the columns a
// request may sort and filter on, their types, and how to read their
// values from an item.
//
// Example:
//
//	var policySchema = cursor.NewSchema[*models.Policy]().
//	    Key("name", cursor.StringKey, func(p *models.Policy) any { return p.Name }).
//	    Key("created", cursor.TimestampKey, func(p *models.Policy) any { return p.Created }).
//	    Key("id", cursor.UUIDKey, func(p *models.Policy) any { return p.ID })
type Schema[T any] struct {
	keys  map[string]*keySpec[T]
	order []string
}

// NewSchema creates an empty schema.
func NewSchema[T any]() *Schema[T] {
	return &Schema[T]{keys: make(map[string]*keySpec[T])}
}

// Key registers a pagination key. extractor returns the item's value for
// the key: a string, an integer, a time.Time, a uuid.UUID, a
// null/v8 value or nil for NULL.
func (s *Schema[T]) Key(name string, keyType KeyType, extractor func(T) any) *Schema[T] {
	if _, exists := s.keys[name]; !exists {
		s.order = append(s.order, name)
	}
	s.keys[name] = &keySpec[T]{name: name, keyType: keyType, extractor: extractor}
	return s
}

// Names returns the registered keys in declaration order.
func (s *Schema[T]) Names() []string {
	return append([]string(nil), s.order...)
}

// Type returns the type of key name.
func (s *Schema[T]) Type(name string) (KeyType, bool) {
	spec, ok := s.keys[name]
	if !ok {
		return 0, false
	}
	return spec.keyType, true
}

// FilterSchema returns the filter columns matching the schema's keys, so
// filter tokens can be validated against the same key set.
func (s *Schema[T]) FilterSchema() *filter.Schema {
	fs := filter.NewSchema()
	for _, name := range s.order {
		fs.Column(name, s.keys[name].keyType.filterKind())
	}
	return fs
}

// SplitSortKey splits a sort key into its column names.
func SplitSortKey(sortKey string) []string {
	return strings.Split(sortKey, ",")
}

// Validate checks that every key of sortKey is registered and sortable,
// that no key repeats and that the final key is id.
func (s *Schema[T]) Validate(sortKey string) error {
	if _, ok := s.keys[FinalKey]; !ok {
		return errors.Wrapf(ErrInvalidSortKey, "schema has no %q key", FinalKey)
	}

	names := SplitSortKey(sortKey)
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		spec, ok := s.keys[name]
		if !ok {
			return errors.Wrapf(ErrInvalidSortKey, "unsupported key %q", name)
		}
		if !spec.keyType.Sortable() {
			return errors.Wrapf(ErrInvalidSortKey, "key %q is not sortable", name)
		}
		if seen[name] {
			return errors.Wrapf(ErrInvalidSortKey, "key %q repeated", name)
		}
		seen[name] = true
	}

	if names[len(names)-1] != FinalKey {
		return errors.Wrapf(ErrInvalidSortKey, "%q must end with %q", sortKey, FinalKey)
	}
	if s.keys[FinalKey].keyType.Nullable() {
		return errors.Wrapf(ErrInvalidSortKey, "final key %q must not be nullable", FinalKey)
	}

	return nil
}

// ParseValue converts the wire form of a value for key name into its Go
// value: uuid.UUID, string, int64 or time.Time. An empty string is only
// valid for string keys. Timestamps travel as epoch microseconds. NULL has
// no value form; cursors mark it by omitting the value entirely.
func (s *Schema[T]) ParseValue(name, raw string) (any, error) {
	spec, ok := s.keys[name]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidSortKey, "unsupported key %q", name)
	}

	if raw == "" && spec.keyType != StringKey && spec.keyType != NullableStringKey {
		return nil, errors.Errorf("key %q: empty value", name)
	}

	switch spec.keyType {
	case UUIDKey, UUIDArrayKey:
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "key %q", name)
		}
		return id, nil
	case IntKey, NullableIntKey:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "key %q", name)
		}
		return n, nil
	case TimestampKey, NullableTimestampKey:
		micros, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "key %q", name)
		}
		return time.UnixMicro(micros).UTC(), nil
	}

	return raw, nil
}

// formatValue renders an extracted value in wire form. The boolean is true
// for NULL, which has no wire value.
func formatValue(name string, keyType KeyType, v any) (string, bool, error) {
	v = unwrapNull(v)
	if v == nil {
		if keyType.Nullable() {
			return "", true, nil
		}
		return "", false, errors.Errorf("key %q: NULL value for non-nullable key", name)
	}

	switch val := v.(type) {
	case string:
		return val, false, nil
	case uuid.UUID:
		return val.String(), false, nil
	case time.Time:
		return strconv.FormatInt(val.UnixMicro(), 10), false, nil
	case int:
		return strconv.Itoa(val), false, nil
	case int32:
		return strconv.FormatInt(int64(val), 10), false, nil
	case int64:
		return strconv.FormatInt(val, 10), false, nil
	case fmt.Stringer:
		return val.String(), false, nil
	}

	return "", false, errors.Errorf("key %q: unsupported value type %T", name, v)
}
