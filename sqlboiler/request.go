package sqlboiler

import (
	"github.com/aarondl/sqlboiler/v4/queries/qm"

	"github.com/nrfta/pagequery"
	"github.com/nrfta/pagequery/cursor"
	"github.com/nrfta/pagequery/filter"
)

// RequestToQueryMods converts a list request into SQLBoiler query mods:
// the request's filters, the keyset WHERE for its cursor, ORDER BY over
// the sort key in fetch order, and LIMIT limit+1.
//
// A malformed filter token, an unsupported sort key or a cursor that does
// not match the sort key is an error; the backend rejects such requests
// rather than ignore them.
//
// Example:
//
//	mods, err := sqlboiler.RequestToQueryMods(req, policies, 50)
//	rows, err := models.Policies(mods...).All(ctx, db)
//	page, err := cursor.BuildPage(rows, req, 50, policies)
func RequestToQueryMods[T any](req pagequery.Request, schema *cursor.Schema[T], limit int) ([]qm.QueryMod, error) {
	sortKey := req.SortKey
	if sortKey == "" {
		sortKey = pagequery.DefaultSortKey
	}
	if err := schema.Validate(sortKey); err != nil {
		return nil, err
	}

	filters, err := filter.Decode(req.Filter)
	if err != nil {
		return nil, err
	}

	mods, err := FilterToQueryMods(filters, schema)
	if err != nil {
		return nil, err
	}

	// Nothing follows the end of the list.
	if req.IsForward() && req.StartingAfter == pagequery.CursorEnd {
		mods = append(mods, qm.Where("FALSE"))
	}

	pos, err := schema.Decode(req.Cursor(), sortKey)
	if err != nil {
		return nil, err
	}
	if mod := KeysetToQueryMod(pos, cursor.SeeksGreater(req)); mod != nil {
		mods = append(mods, mod)
	}

	mods = append(mods,
		qm.OrderBy(OrderByClause(sortKey, cursor.QueryOrder(req))),
		qm.Limit(limit+1),
	)

	return mods, nil
}
