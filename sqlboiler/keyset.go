package sqlboiler

import (
	"strings"

	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/aarondl/sqlboiler/v4/queries/qm"

	"github.com/nrfta/pagequery"
	"github.com/nrfta/pagequery/cursor"
)

// KeysetToQueryMod builds the WHERE clause selecting rows past pos.
//
// NULL sorts before every value. With greater set, for keys k1..kn and
// cursor values v1..vn the clause is the expanded comparison
//
//	(k1 = v1 AND ... AND kn-1 = vn-1 AND kn > vn)
//	OR ...
//	OR (k1 > v1)
//
// where "k = NULL" becomes "k IS NULL" and "k > NULL" becomes
// "k IS NOT NULL". Without greater, "k < v" also admits NULL on nullable
// keys and "k < NULL" drops the disjunct.
//
// Returns nil when pos is nil.
func KeysetToQueryMod(pos *cursor.Position, greater bool) qm.QueryMod {
	if pos == nil || len(pos.Keys) == 0 {
		return nil
	}

	var (
		parts []string
		args  []interface{}
	)

	for i := len(pos.Keys) - 1; i >= 0; i-- {
		cmp, cmpArgs, ok := compare(pos.Keys[i], greater)
		if !ok {
			continue
		}

		var conds []string
		for j := 0; j < i; j++ {
			eq, eqArgs := equal(pos.Keys[j])
			conds = append(conds, eq)
			args = append(args, eqArgs...)
		}
		conds = append(conds, cmp)
		args = append(args, cmpArgs...)

		parts = append(parts, "("+strings.Join(conds, " AND ")+")")
	}

	if len(parts) == 0 {
		return qm.Where("FALSE")
	}

	clause := "(" + strings.Join(parts, " OR ") + ")"
	return rawWhereClause(clause, args)
}

func equal(kv cursor.KeyValue) (string, []interface{}) {
	if kv.Value == nil {
		return quote(kv.Name) + " IS NULL", nil
	}
	return quote(kv.Name) + " = ?", []interface{}{kv.Value}
}

func compare(kv cursor.KeyValue, greater bool) (string, []interface{}, bool) {
	col := quote(kv.Name)

	if greater {
		if kv.Value == nil {
			return col + " IS NOT NULL", nil, true
		}
		return col + " > ?", []interface{}{kv.Value}, true
	}

	if kv.Value == nil {
		return "", nil, false
	}
	if kv.Type.Nullable() {
		return "(" + col + " < ? OR " + col + " IS NULL)", []interface{}{kv.Value}, true
	}
	return col + " < ?", []interface{}{kv.Value}, true
}

// rawWhereClause creates a custom query mod that injects a WHERE clause
// directly, keeping the clause's parentheses and argument order intact.
func rawWhereClause(clause string, args []interface{}) qm.QueryMod {
	return qm.QueryModFunc(func(q *queries.Query) {
		queries.AppendWhere(q, clause, args...)
	})
}

// OrderByClause renders the ORDER BY for sortKey in order, with NULLs
// sorting first in ascending order to match KeysetToQueryMod.
//
// Example:
//
//	OrderByClause("name,id", pagequery.OrderDescending)
//	→ "name" DESC NULLS LAST, "id" DESC NULLS LAST
func OrderByClause(sortKey string, order pagequery.SortOrder) string {
	suffix := " ASC NULLS FIRST"
	if order == pagequery.OrderDescending {
		suffix = " DESC NULLS LAST"
	}

	keys := cursor.SplitSortKey(sortKey)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = quote(k) + suffix
	}
	return strings.Join(parts, ", ")
}
