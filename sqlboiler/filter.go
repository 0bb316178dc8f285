package sqlboiler

import (
	"fmt"

	"github.com/aarondl/sqlboiler/v4/queries/qm"
	"github.com/aarondl/strmangle"
	"github.com/friendsofgo/errors"

	"github.com/nrfta/pagequery/cursor"
	"github.com/nrfta/pagequery/filter"
)

// quote quotes a column name for PostgreSQL.
func quote(column string) string {
	return strmangle.IdentQuote('"', '"', column)
}

// comparison maps operators to SQL comparison operators.
var comparison = map[filter.Operator]string{
	filter.OpEqual:          "=",
	filter.OpNotEqual:       "<>",
	filter.OpLessThan:       "<",
	filter.OpLessOrEqual:    "<=",
	filter.OpGreaterThan:    ">",
	filter.OpGreaterOrEqual: ">=",
}

// FilterToQueryMods converts a filter list into WHERE query mods, one per
// predicate, combined with AND. Only columns registered in schema may be
// filtered; values are converted to the column's type first.
//
// The conversion follows these rules:
//   - EQ, NE, LT, LE, GT, GE → "col" op ?
//   - EQ / NE with an empty value on a nullable column → IS [NOT] NULL
//   - LK → "col"::text LIKE ?, NL → "col"::text NOT LIKE ?
//   - HAS → ? = ANY("col")
func FilterToQueryMods[T any](filters []filter.Filter, schema *cursor.Schema[T]) ([]qm.QueryMod, error) {
	if err := schema.FilterSchema().Validate(filters); err != nil {
		return nil, err
	}

	mods := []qm.QueryMod{}
	for _, f := range filters {
		for _, leaf := range f.Leaves() {
			mod, err := leafToQueryMod(leaf, schema)
			if err != nil {
				return nil, err
			}
			mods = append(mods, mod)
		}
	}

	return mods, nil
}

func leafToQueryMod[T any](f filter.Filter, schema *cursor.Schema[T]) (qm.QueryMod, error) {
	col := quote(f.ColumnName)
	keyType, _ := schema.Type(f.ColumnName)

	switch f.Operator {
	case filter.OpLike:
		return qm.Where(col+"::text LIKE ?", f.Value), nil
	case filter.OpNotLike:
		return qm.Where(col+"::text NOT LIKE ?", f.Value), nil
	case filter.OpHas:
		value, err := schema.ParseValue(f.ColumnName, f.Value)
		if err != nil {
			return nil, errors.Wrapf(filter.ErrInvalidValue, "%v", err)
		}
		return qm.Where("? = ANY("+col+")", value), nil
	}

	op, ok := comparison[f.Operator]
	if !ok {
		return nil, errors.Errorf("filter: unsupported operator %q", f.Operator)
	}

	if f.Value == "" && keyType.Nullable() {
		switch f.Operator {
		case filter.OpEqual:
			return qm.Where(col + " IS NULL"), nil
		case filter.OpNotEqual:
			return qm.Where(col + " IS NOT NULL"), nil
		}
	}

	value, err := schema.ParseValue(f.ColumnName, f.Value)
	if err != nil {
		return nil, errors.Wrapf(filter.ErrInvalidValue, "%v", err)
	}

	return qm.Where(fmt.Sprintf("%s %s ?", col, op), value), nil
}
