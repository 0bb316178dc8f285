package sqlboiler_test

import (
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/pagequery"
	"github.com/nrfta/pagequery/cursor"
	"github.com/nrfta/pagequery/sqlboiler"
)

var _ = Describe("KeysetToQueryMod", func() {
	id := uuid.MustParse("00000000-0000-4000-8000-000000000001")

	It("should return nil without a position", func() {
		Expect(sqlboiler.KeysetToQueryMod(nil, true)).To(BeNil())
	})

	It("should expand a single key", func() {
		pos := &cursor.Position{Keys: []cursor.KeyValue{
			{Name: "id", Type: cursor.UUIDKey, Value: id},
		}}

		mod := sqlboiler.KeysetToQueryMod(pos, true)
		Expect(modTypeName(mod)).To(whereModMatcher())

		sql, args := buildSQL(mod)
		Expect(sql).To(ContainSubstring(`(("id" > $1))`))
		Expect(args).To(Equal([]interface{}{id}))
	})

	It("should expand composite keys most specific first", func() {
		pos := &cursor.Position{Keys: []cursor.KeyValue{
			{Name: "name", Type: cursor.StringKey, Value: "Alice"},
			{Name: "id", Type: cursor.UUIDKey, Value: id},
		}}

		sql, args := buildSQL(sqlboiler.KeysetToQueryMod(pos, false))

		Expect(sql).To(ContainSubstring(`(("name" = $1 AND "id" < $2) OR ("name" < $3))`))
		Expect(args).To(Equal([]interface{}{"Alice", id, "Alice"}))
	})

	It("should treat NULL as the smallest value when seeking greater", func() {
		pos := &cursor.Position{Keys: []cursor.KeyValue{
			{Name: "description", Type: cursor.NullableStringKey, Value: nil},
			{Name: "id", Type: cursor.UUIDKey, Value: id},
		}}

		sql, args := buildSQL(sqlboiler.KeysetToQueryMod(pos, true))

		Expect(sql).To(ContainSubstring(`(("description" IS NULL AND "id" > $1) OR ("description" IS NOT NULL))`))
		Expect(args).To(Equal([]interface{}{id}))
	})

	It("should compare an empty string as a value, not as NULL", func() {
		pos := &cursor.Position{Keys: []cursor.KeyValue{
			{Name: "description", Type: cursor.NullableStringKey, Value: ""},
			{Name: "id", Type: cursor.UUIDKey, Value: id},
		}}

		sql, args := buildSQL(sqlboiler.KeysetToQueryMod(pos, true))

		Expect(sql).To(ContainSubstring(`(("description" = $1 AND "id" > $2) OR ("description" > $3))`))
		Expect(sql).ToNot(ContainSubstring("IS NULL"))
		Expect(args).To(Equal([]interface{}{"", id, ""}))
	})

	It("should drop the impossible disjunct when seeking below NULL", func() {
		pos := &cursor.Position{Keys: []cursor.KeyValue{
			{Name: "description", Type: cursor.NullableStringKey, Value: nil},
			{Name: "id", Type: cursor.UUIDKey, Value: id},
		}}

		sql, _ := buildSQL(sqlboiler.KeysetToQueryMod(pos, false))

		Expect(sql).To(ContainSubstring(`(("description" IS NULL AND "id" < $1))`))
		Expect(sql).ToNot(ContainSubstring("IS NOT NULL"))
	})

	It("should admit NULL below a value on nullable keys", func() {
		pos := &cursor.Position{Keys: []cursor.KeyValue{
			{Name: "description", Type: cursor.NullableStringKey, Value: "x"},
			{Name: "id", Type: cursor.UUIDKey, Value: id},
		}}

		sql, _ := buildSQL(sqlboiler.KeysetToQueryMod(pos, false))

		Expect(sql).To(ContainSubstring(`("description" < $3 OR "description" IS NULL)`))
	})
})

var _ = Describe("OrderByClause", func() {
	It("should order ascending with NULLs first", func() {
		Expect(sqlboiler.OrderByClause("name,id", pagequery.OrderAscending)).
			To(Equal(`"name" ASC NULLS FIRST, "id" ASC NULLS FIRST`))
	})

	It("should order descending with NULLs last", func() {
		Expect(sqlboiler.OrderByClause("id", pagequery.OrderDescending)).
			To(Equal(`"id" DESC NULLS LAST`))
	})
})
