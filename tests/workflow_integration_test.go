package integration_test

import (
	"context"
	"net/http/httptest"
	"net/url"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/pagequery"
	"github.com/nrfta/pagequery/client"
	"github.com/nrfta/pagequery/collect"
	"github.com/nrfta/pagequery/tests/models"
	"github.com/nrfta/pagequery/view"
)

var _ = Describe("Console workflows", func() {
	var (
		seeded   []*models.Policy
		c        *client.Client
		resource *client.Resource[*models.Policy]
	)

	BeforeEach(func() {
		Expect(CleanupTables(ctx, container.DB)).To(Succeed())

		var err error
		seeded, err = SeedPolicies(ctx, container.DB, 25)
		Expect(err).ToNot(HaveOccurred())

		server := httptest.NewServer(newBackend(container.DB, pagequery.NewPageConfig()))
		DeferCleanup(server.Close)

		c, err = client.New(server.URL)
		Expect(err).ToNot(HaveOccurred())
		resource = client.NewResource[*models.Policy](c, "policies")
	})

	Describe("collecting a chooser list", func() {
		hideAutogenerated := func(ctx context.Context, ps []*models.Policy) ([]*models.Policy, error) {
			out := make([]*models.Policy, 0, len(ps))
			for _, p := range ps {
				if !p.IsAutogenerated {
					out = append(out, p)
				}
			}
			return out, nil
		}

		It("should fill the quota across pages and resume where it stopped", func() {
			values := pagequery.Request{SortKey: "name,id"}.Values()

			first, err := collect.Fill[*models.Policy](ctx, resource, values, hideAutogenerated,
				collect.WithQuota(12),
				collect.WithPageConfig(pagequery.NewPageConfig().WithDefaultSize(5)),
			)
			Expect(err).ToNot(HaveOccurred())
			Expect(len(first.Items)).To(BeNumerically(">=", 12))
			Expect(first.HasMore()).To(BeTrue())
			Expect(first.Metadata.SafeguardHit).To(BeEmpty())
			for _, p := range first.Items {
				Expect(p.IsAutogenerated).To(BeFalse())
			}

			values.Set(pagequery.KeyStartingAfter, string(first.Next))
			rest, err := collect.Fill[*models.Policy](ctx, resource, values, hideAutogenerated,
				collect.WithPageConfig(pagequery.NewPageConfig().WithDefaultSize(5)),
			)
			Expect(err).ToNot(HaveOccurred())
			Expect(rest.HasMore()).To(BeFalse())

			all := append(first.Items, rest.Items...)
			Expect(all).To(HaveLen(20))
			Expect(ids(all)).To(ContainElements(ids(seeded[1:5])))
		})

		It("should stop at the page safeguard", func() {
			result, err := collect.Fill[*models.Policy](ctx, resource, url.Values{}, hideAutogenerated,
				collect.WithQuota(100),
				collect.WithMaxPages(2),
				collect.WithPageConfig(pagequery.NewPageConfig().WithDefaultSize(5).WithMaxSize(5)),
			)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Metadata.SafeguardHit).To(Equal("max_pages"))
			Expect(result.Metadata.PagesFetched).To(Equal(2))
			Expect(result.HasMore()).To(BeTrue())
		})
	})

	Describe("bulk delete from a list view", func() {
		It("should refresh the view and report partial failures", func() {
			page := url.Values{"ap_limit": {"10"}, "ap_sort_key": {"name,id"}}
			lv := view.New[*models.Policy](resource, "ap_")

			Expect(lv.Load(ctx, page)).To(Succeed())
			Expect(lv.State()).To(Equal(view.Loaded))
			before := lv.Snapshot().Page
			Expect(before.Len()).To(Equal(10))

			targets := append(ids(before.Data[:3]), uuid.NewString())
			result := resource.BulkDelete(ctx, targets)

			Expect(result.Outcome).To(Equal(client.PartialFailure))
			Expect(result.Succeeded).To(HaveLen(3))
			Expect(result.Failed).To(HaveLen(1))
			for _, err := range result.Failed {
				Expect(client.IsNotFound(err)).To(BeTrue())
			}

			Expect(lv.AfterBulk(ctx, result)).To(Succeed())

			snap := lv.Snapshot()
			Expect(snap.State).To(Equal(view.Loaded))
			Expect(snap.Notice).To(Equal("failed to process 1 of 4 items"))
			Expect(snap.Page.Len()).To(Equal(10))
			Expect(ids(snap.Page.Data)).ToNot(ContainElements(targets[:3]))

			remaining, err := models.Policies().Count(ctx, container.DB)
			Expect(err).ToNot(HaveOccurred())
			Expect(remaining).To(Equal(int64(22)))
		})
	})

	Describe("navigating a list view", func() {
		It("should follow next and prev through the URL", func() {
			lv := view.New[*models.Policy](resource, "ap_", view.WithPageConfig(pagequery.NewPageConfig().WithDefaultSize(10).WithSortKey("name,id")))
			u, err := url.Parse("/policies?company_id=acme")
			Expect(err).ToNot(HaveOccurred())

			fetched, err := lv.Sync(ctx, u.Query())
			Expect(err).ToNot(HaveOccurred())
			Expect(fetched).To(BeTrue())
			Expect(lv.Snapshot().Page.Data[0].Name).To(Equal("policy-00"))

			fetched, err = lv.Sync(ctx, u.Query())
			Expect(err).ToNot(HaveOccurred())
			Expect(fetched).To(BeFalse())

			u, ok := pagequery.NavigateNext(u, "ap_", lv.Cursors(), true)
			Expect(ok).To(BeTrue())
			Expect(u.Query().Get("company_id")).To(Equal("acme"))

			fetched, err = lv.Sync(ctx, u.Query())
			Expect(err).ToNot(HaveOccurred())
			Expect(fetched).To(BeTrue())
			Expect(lv.Snapshot().Page.Data[0].Name).To(Equal("policy-10"))

			u, ok = pagequery.NavigatePrev(u, "ap_", lv.Cursors(), true)
			Expect(ok).To(BeTrue())

			_, err = lv.Sync(ctx, u.Query())
			Expect(err).ToNot(HaveOccurred())
			Expect(lv.Snapshot().Page.Data[0].Name).To(Equal("policy-00"))
			Expect(lv.Cursors().HasPrev()).To(BeFalse())
		})

		It("should surface backend errors as a message", func() {
			lv := view.New[*models.Policy](resource, "")

			err := lv.Load(ctx, url.Values{"filter": {"('name',EQ"}})

			Expect(err).To(HaveOccurred())
			snap := lv.Snapshot()
			Expect(snap.State).To(Equal(view.Errored))
			Expect(snap.Error).To(ContainSubstring("syntax"))
			Expect(snap.Page).To(BeNil())
		})
	})
})
