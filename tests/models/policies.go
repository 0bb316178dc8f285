package models

import (
	"context"
	"database/sql"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/aarondl/sqlboiler/v4/queries/qm"
	"github.com/friendsofgo/errors"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Policy is an object representing the database table.
type Policy struct {
	ID              uuid.UUID      `boil:"id" json:"id"`
	Name            string         `boil:"name" json:"name"`
	Description     null.String    `boil:"description" json:"description"`
	Version         int64          `boil:"version" json:"version"`
	Created         time.Time      `boil:"created" json:"created"`
	IsAutogenerated bool           `boil:"is_autogenerated" json:"is_autogenerated"`
	TagIds          pq.StringArray `boil:"tag_ids" json:"tag_ids"`
}

var PolicyColumns = struct {
	ID              string
	Name            string
	Description     string
	Version         string
	Created         string
	IsAutogenerated string
	TagIds          string
}{
	ID:              "id",
	Name:            "name",
	Description:     "description",
	Version:         "version",
	Created:         "created",
	IsAutogenerated: "is_autogenerated",
	TagIds:          "tag_ids",
}

var TableNames = struct {
	Policies string
}{
	Policies: "policies",
}

type policyQuery struct {
	*queries.Query
}

// Policies retrieves all the records using an executor.
func Policies(mods ...qm.QueryMod) policyQuery {
	mods = append(mods, qm.From("\"policies\""))
	q := NewQuery(mods...)
	if len(queries.GetSelect(q)) == 0 {
		queries.SetSelect(q, []string{"\"policies\".*"})
	}

	return policyQuery{q}
}

// All returns all Policy records from the query.
func (q policyQuery) All(ctx context.Context, exec boil.ContextExecutor) ([]*Policy, error) {
	var o []*Policy

	err := q.Bind(ctx, exec, &o)
	if err != nil {
		return nil, errors.Wrap(err, "models: failed to assign all query results to Policy slice")
	}

	return o, nil
}

// Count returns the count of all Policy records in the query.
func (q policyQuery) Count(ctx context.Context, exec boil.ContextExecutor) (int64, error) {
	var count int64

	queries.SetSelect(q.Query, nil)
	queries.SetCount(q.Query)

	err := q.Query.QueryRowContext(ctx, exec).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "models: failed to count policies rows")
	}

	return count, nil
}

// DeleteAll deletes all matching rows.
func (q policyQuery) DeleteAll(ctx context.Context, exec boil.ContextExecutor) (int64, error) {
	queries.SetDelete(q.Query)

	result, err := q.Query.ExecContext(ctx, exec)
	if err != nil {
		return 0, errors.Wrap(err, "models: unable to delete all from policies")
	}

	rowsAff, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "models: failed to get rows affected by deleteall for policies")
	}

	return rowsAff, nil
}

// Insert a single record using an executor.
func (o *Policy) Insert(ctx context.Context, exec boil.ContextExecutor) error {
	if o == nil {
		return errors.New("models: no policies provided for insertion")
	}

	_, err := exec.ExecContext(ctx,
		`INSERT INTO "policies" ("id","name","description","version","created","is_autogenerated","tag_ids") VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		o.ID, o.Name, o.Description, o.Version, o.Created, o.IsAutogenerated, o.TagIds,
	)
	if err != nil {
		return errors.Wrap(err, "models: unable to insert into policies")
	}

	return nil
}

// FindPolicy retrieves a single record by ID with an executor.
func FindPolicy(ctx context.Context, exec boil.ContextExecutor, id uuid.UUID) (*Policy, error) {
	policyObj := &Policy{}

	err := Policies(qm.Where("\"id\" = ?", id)).Bind(ctx, exec, policyObj)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, errors.Wrap(err, "models: unable to select from policies")
	}

	return policyObj, nil
}
