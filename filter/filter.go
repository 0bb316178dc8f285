// Package filter implements the column filters of the console's list views
// and the codec that carries an ordered set of them in a single query
// parameter.
//
// Wire format, one leaf per predicate, left-nested with AND:
//
//	('name',EQ,'Alice')
//	(('alias',LK,'%text%'),AND,('created',GE,'1007164800000000'))
//	((('a',EQ,'x'),AND,('b',EQ,'y')),AND,('c',EQ,'z'))
//	((('created',GE,'1'),AND,('created',LE,'9')))
//
// Percent-encoding is left to the URL layer.
package filter

import "strings"

// Filter is one column predicate. Range filters (typically on date columns)
// carry a second operator and value, combined with the first as a
// conjunctive bound.
type Filter struct {
	ColumnName string   `json:"column_name"`
	Operator   Operator `json:"operator"`
	Value      string   `json:"value"`
	Operator2  Operator `json:"operator2,omitempty"`
	Value2     string   `json:"value2,omitempty"`
}

// IsRange reports whether f carries a second bound.
func (f Filter) IsRange() bool {
	return f.Operator2 != ""
}

// Equal reports whether f and other describe the same predicate.
func (f Filter) Equal(other Filter) bool {
	return f == other
}

// Matches reports whether f is exactly the plain predicate (column, op, value).
func (f Filter) Matches(column string, op Operator, value string) bool {
	return !f.IsRange() && f.ColumnName == column && f.Operator == op && f.Value == value
}

// Valid reports whether f can be serialized.
func (f Filter) Valid() bool {
	if f.ColumnName == "" || !f.Operator.Valid() {
		return false
	}
	if f.IsRange() && !f.Operator2.Valid() {
		return false
	}
	return true
}

// Leaves expands f into its plain predicates: one for a plain filter, two
// for a range.
func (f Filter) Leaves() []Filter {
	if !f.IsRange() {
		return []Filter{f}
	}
	return []Filter{
		{ColumnName: f.ColumnName, Operator: f.Operator, Value: f.Value},
		{ColumnName: f.ColumnName, Operator: f.Operator2, Value: f.Value2},
	}
}

// DisplayValue returns the value with LIKE wildcard markers stripped.
func (f Filter) DisplayValue() string {
	if f.Operator.IsLike() {
		return StripWildcards(f.Value)
	}
	return f.Value
}

// StripWildcards removes % markers from a LIKE value.
func StripWildcards(v string) string {
	return strings.ReplaceAll(v, "%", "")
}

// WrapWildcards surrounds v with % markers unless it already carries some.
func WrapWildcards(v string) string {
	if strings.Contains(v, "%") {
		return v
	}
	return "%" + v + "%"
}
