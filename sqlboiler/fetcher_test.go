package sqlboiler_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/aarondl/sqlboiler/v4/queries/qm"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/pagequery"
	"github.com/nrfta/pagequery/sqlboiler"
)

var _ = Describe("Fetcher", func() {
	var (
		ctx     context.Context
		rows    []*policy
		gotMods []qm.QueryMod
		query   sqlboiler.QueryFunc[*policy]
	)

	BeforeEach(func() {
		ctx = context.Background()
		rows = make([]*policy, 4)
		for i := range rows {
			rows[i] = &policy{
				ID:   uuid.MustParse(fmt.Sprintf("00000000-0000-4000-8000-%012d", i)),
				Name: fmt.Sprintf("p%d", i),
			}
		}
		gotMods = nil
		query = func(ctx context.Context, mods ...qm.QueryMod) ([]*policy, error) {
			gotMods = mods
			return rows, nil
		}
	})

	It("should build a page from N+1 rows", func() {
		fetcher := sqlboiler.NewFetcher(query, policySchema())

		page, err := fetcher.Fetch(ctx, pagequery.Request{Limit: 3})

		Expect(err).ToNot(HaveOccurred())
		Expect(page.Data).To(HaveLen(3))
		Expect(page.HasNext).To(BeTrue())
		Expect(page.Next).To(Equal(pagequery.Cursor("id:00000000-0000-4000-8000-000000000002")))
		Expect(page.HasPrev).To(BeFalse())
	})

	It("should apply the configured defaults", func() {
		config := pagequery.NewPageConfig().WithDefaultSize(2).WithSortKey("name,id")
		fetcher := sqlboiler.NewFetcher(query, policySchema(), sqlboiler.WithPageConfig[*policy](config))

		page, err := fetcher.Fetch(ctx, pagequery.Request{})
		Expect(err).ToNot(HaveOccurred())
		Expect(page.Data).To(HaveLen(2))
		Expect(string(page.Next)).To(HavePrefix("name:p1,"))

		sql, _ := buildSQL(gotMods...)
		Expect(sql).To(ContainSubstring(`ORDER BY "name" ASC NULLS FIRST, "id" ASC NULLS FIRST`))
		Expect(sql).To(ContainSubstring("LIMIT 3"))
	})

	It("should prepend the base query mods", func() {
		fetcher := sqlboiler.NewFetcher(query, policySchema(),
			sqlboiler.WithQueryMods[*policy](qm.Where("tenant_id = ?", "t1")))

		_, err := fetcher.Fetch(ctx, pagequery.Request{})
		Expect(err).ToNot(HaveOccurred())

		sql, args := buildSQL(gotMods...)
		Expect(sql).To(ContainSubstring("tenant_id = $1"))
		Expect(args).To(Equal([]interface{}{"t1"}))
	})

	It("should reject other API versions", func() {
		fetcher := sqlboiler.NewFetcher(query, policySchema())

		_, err := fetcher.Fetch(ctx, pagequery.Request{Version: "2"})

		Expect(err).To(MatchError(sqlboiler.ErrUnsupportedVersion))
	})

	It("should wrap query errors", func() {
		boom := errors.New("connection refused")
		fetcher := sqlboiler.NewFetcher(func(ctx context.Context, mods ...qm.QueryMod) ([]*policy, error) {
			return nil, boom
		}, policySchema())

		_, err := fetcher.Fetch(ctx, pagequery.Request{})

		Expect(err).To(MatchError(boom))
		Expect(err.Error()).To(ContainSubstring("list query"))
	})

	Describe("IsInvalidRequest", func() {
		It("should classify request errors", func() {
			fetcher := sqlboiler.NewFetcher(query, policySchema())

			for _, req := range []pagequery.Request{
				{Filter: "('name',EQ"},
				{Filter: "('secret',EQ,'x')"},
				{SortKey: "name"},
				{StartingAfter: "garbage"},
				{Version: "1"},
			} {
				_, err := fetcher.Fetch(ctx, req)
				Expect(sqlboiler.IsInvalidRequest(err)).To(BeTrue(), "%+v", req)
			}
		})

		It("should not classify database errors", func() {
			Expect(sqlboiler.IsInvalidRequest(errors.New("connection reset"))).To(BeFalse())
			Expect(sqlboiler.IsInvalidRequest(nil)).To(BeFalse())
		})
	})

	Describe("List", func() {
		It("should answer wire-form requests", func() {
			fetcher := sqlboiler.NewFetcher(query, policySchema())
			values := pagequery.Request{Limit: 10}.Values()

			page, err := fetcher.List(ctx, values)

			Expect(err).ToNot(HaveOccurred())
			Expect(page.Data).To(HaveLen(4))
			Expect(page.HasNext).To(BeFalse())
			Expect(page.Next).To(Equal(pagequery.CursorEnd))
		})

		It("should reject limits above the maximum", func() {
			config := pagequery.NewPageConfig().WithMaxSize(100)
			fetcher := sqlboiler.NewFetcher(query, policySchema(), sqlboiler.WithPageConfig[*policy](config))

			_, err := fetcher.List(ctx, url.Values{"limit": {"101"}})

			var sizeErr *pagequery.PageSizeError
			Expect(errors.As(err, &sizeErr)).To(BeTrue())
			Expect(sizeErr.Maximum).To(Equal(100))
		})
	})
})
