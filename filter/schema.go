package filter

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/google/uuid"
)

// Kind is the value kind of a filterable column. It decides the input
// pattern search forms validate against and how values are encoded.
type Kind int

const (
	KindString Kind = iota
	KindDate
	KindUUID
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindUUID:
		return "uuid"
	case KindArray:
		return "array"
	}
	return "unknown"
}

// Input patterns, in the anchored form HTML pattern attributes accept.
const (
	StringPattern = `^.+$`
	DatePattern   = `^(` +
		`(0?[1-9]|1[0-2])/(0?[1-9]|[12][0-9]|3[01])/(\d{4}|\d{2})` +
		`|` +
		`\d{4}/(0?[1-9]|1[0-2])/(0?[1-9]|[12][0-9]|3[01])` +
		`)` +
		`( ([01]?[0-9]|2[0-3]):[0-5][0-9](:[0-5][0-9](\.\d+)?)?)?$`
	UUIDPattern  = `^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`
	ArrayPattern = `^(\(.*\))?$`
)

var (
	stringRE = regexp.MustCompile(StringPattern)
	dateRE   = regexp.MustCompile(DatePattern)
	uuidRE   = regexp.MustCompile(UUIDPattern)
	arrayRE  = regexp.MustCompile(ArrayPattern)
	digitsRE = regexp.MustCompile(`^-?\d+$`)
)

// Pattern returns the input pattern for values of kind k.
func (k Kind) Pattern() string {
	switch k {
	case KindDate:
		return DatePattern
	case KindUUID:
		return UUIDPattern
	case KindArray:
		return ArrayPattern
	}
	return StringPattern
}

// MatchString reports whether the raw input s is acceptable for kind k.
func (k Kind) MatchString(s string) bool {
	switch k {
	case KindDate:
		return dateRE.MatchString(s)
	case KindUUID:
		return uuidRE.MatchString(s)
	case KindArray:
		return arrayRE.MatchString(s)
	}
	return stringRE.MatchString(s)
}

var (
	// ErrUnknownColumn is returned for filters on columns a schema does not list.
	ErrUnknownColumn = errors.New("column is not filterable")

	// ErrInvalidValue is returned for values that do not fit their column kind.
	ErrInvalidValue = errors.New("invalid filter value")
)

// Column is one filterable column.
type Column struct {
	Name string
	Kind Kind
}

// Schema lists the filterable columns of one list view, in the order search
// forms offer them.
//
// Example:
//
//	var policies = filter.NewSchema().
//	    String("name").
//	    UUID("id").
//	    Date("created").
//	    Array("tag_ids")
type Schema struct {
	columns []Column
	kinds   map[string]Kind
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{kinds: make(map[string]Kind)}
}

// Column adds a column of the given kind. Re-adding a column changes its
// kind but keeps its position.
func (s *Schema) Column(name string, kind Kind) *Schema {
	if _, ok := s.kinds[name]; !ok {
		s.columns = append(s.columns, Column{Name: name})
	}
	for i := range s.columns {
		if s.columns[i].Name == name {
			s.columns[i].Kind = kind
		}
	}
	s.kinds[name] = kind
	return s
}

// String adds a string column.
func (s *Schema) String(name string) *Schema { return s.Column(name, KindString) }

// Date adds a date column. Values are sent as epoch microseconds.
func (s *Schema) Date(name string) *Schema { return s.Column(name, KindDate) }

// UUID adds a UUID column.
func (s *Schema) UUID(name string) *Schema { return s.Column(name, KindUUID) }

// Array adds an array column, matched with HAS.
func (s *Schema) Array(name string) *Schema { return s.Column(name, KindArray) }

// Columns returns the filterable columns in order.
func (s *Schema) Columns() []Column {
	return append([]Column(nil), s.columns...)
}

// Kind returns the kind of column name.
func (s *Schema) Kind(name string) (Kind, bool) {
	k, ok := s.kinds[name]
	return k, ok
}

// Allowed reports whether name is filterable.
func (s *Schema) Allowed(name string) bool {
	_, ok := s.kinds[name]
	return ok
}

// PatternFor returns the input pattern for column name. Unknown columns get
// the string pattern.
func (s *Schema) PatternFor(name string) string {
	k, _ := s.Kind(name)
	return k.Pattern()
}

// Default returns the filter a blank search form starts from: the first
// column, EQ, empty value.
func (s *Schema) Default() Filter {
	if len(s.columns) == 0 {
		return Filter{Operator: OpEqual}
	}
	return Filter{ColumnName: s.columns[0].Name, Operator: OpEqual}
}

// FormatValue converts raw form input for column into its wire value:
// dates become epoch microseconds (UTC), LIKE values gain % markers, UUIDs
// compared for (in)equality are validated.
func (s *Schema) FormatValue(column string, op Operator, raw string) (string, error) {
	kind, ok := s.Kind(column)
	if !ok {
		return "", errors.Wrapf(ErrUnknownColumn, "%q", column)
	}

	switch kind {
	case KindDate:
		micros, err := ParseDate(raw)
		if err != nil {
			return "", errors.Wrapf(err, "column %q", column)
		}
		return strconv.FormatInt(micros, 10), nil
	case KindUUID:
		if !op.IsLike() {
			if _, err := uuid.Parse(raw); err != nil {
				return "", errors.Wrapf(ErrInvalidValue, "column %q: %q is not a uuid", column, raw)
			}
		}
	case KindArray:
		if !arrayRE.MatchString(raw) {
			return "", errors.Wrapf(ErrInvalidValue, "column %q: %q is not an array literal", column, raw)
		}
	}

	if op.IsLike() {
		return WrapWildcards(raw), nil
	}
	return raw, nil
}

// DisplayValue renders a wire value for column the way search forms show
// it: dates as "2006/01/02 15:04:05" UTC, LIKE values without % markers.
func (s *Schema) DisplayValue(f Filter) string {
	if kind, ok := s.Kind(f.ColumnName); ok && kind == KindDate {
		if micros, err := strconv.ParseInt(f.Value, 10, 64); err == nil {
			return time.UnixMicro(micros).UTC().Format(displayDateLayout)
		}
	}
	return f.DisplayValue()
}

// Validate checks wire-form filters against the schema, as a backend would
// before building a query.
func (s *Schema) Validate(filters []Filter) error {
	for _, f := range filters {
		if !f.Valid() {
			return errors.Wrapf(ErrInvalidValue, "malformed filter on column %q", f.ColumnName)
		}

		kind, ok := s.Kind(f.ColumnName)
		if !ok {
			return errors.Wrapf(ErrUnknownColumn, "%q", f.ColumnName)
		}

		for _, leaf := range f.Leaves() {
			if err := validateWire(kind, leaf); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateWire(kind Kind, f Filter) error {
	switch kind {
	case KindDate:
		if !digitsRE.MatchString(f.Value) {
			return errors.Wrapf(ErrInvalidValue, "column %q: %q is not epoch microseconds", f.ColumnName, f.Value)
		}
	case KindUUID:
		if !f.Operator.IsLike() {
			if _, err := uuid.Parse(f.Value); err != nil {
				return errors.Wrapf(ErrInvalidValue, "column %q: %q is not a uuid", f.ColumnName, f.Value)
			}
		}
	case KindArray:
		if f.Operator != OpHas && !arrayRE.MatchString(f.Value) {
			return errors.Wrapf(ErrInvalidValue, "column %q: %q is not an array literal", f.ColumnName, f.Value)
		}
	}
	return nil
}

// Add formats f's values for their column kind and appends it to the filter
// list of the list namespaced by prefix. Both cursors are cleared.
func (s *Schema) Add(prefix string, params url.Values, f Filter) (url.Values, error) {
	value, err := s.FormatValue(f.ColumnName, f.Operator, f.Value)
	if err != nil {
		return nil, err
	}
	f.Value = value

	if f.IsRange() {
		value2, err := s.FormatValue(f.ColumnName, f.Operator2, f.Value2)
		if err != nil {
			return nil, err
		}
		f.Value2 = value2
	}

	return Add(prefix, params, f), nil
}

const displayDateLayout = "2006/01/02 15:04:05"

var dateLayouts = []string{
	"1/2/2006",
	"1/2/06",
	"2006/1/2",
}

var timeLayouts = []string{
	"",
	" 15:04",
	" 15:04:05",
}

// ParseDate converts date input to epoch microseconds, interpreting it in
// UTC. Accepted forms are MM/DD/YY, MM/DD/YYYY and YYYY/MM/DD, each with an
// optional HH:MM[:SS[.frac]] time. A value that is already an integer is
// taken as epoch microseconds.
func ParseDate(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)

	if digitsRE.MatchString(raw) {
		return strconv.ParseInt(raw, 10, 64)
	}

	if !dateRE.MatchString(raw) {
		return 0, errors.Wrapf(ErrInvalidValue, "%q is not a date", raw)
	}

	for _, dl := range dateLayouts {
		for _, tl := range timeLayouts {
			if t, err := time.ParseInLocation(dl+tl, raw, time.UTC); err == nil {
				return t.UnixMicro(), nil
			}
		}
	}

	return 0, errors.Wrapf(ErrInvalidValue, "%q is not a date", raw)
}
