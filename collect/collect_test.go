package collect_test

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/pagequery"
	"github.com/nrfta/pagequery/collect"
)

// sliceLister serves items in order, using the index of the last item on a
// page as its next cursor.
type sliceLister struct {
	items    []int
	requests []url.Values
	err      error
	delay    time.Duration
}

func (l *sliceLister) List(ctx context.Context, values url.Values) (*pagequery.Page[int], error) {
	l.requests = append(l.requests, pagequery.CloneValues(values))
	if l.err != nil {
		return nil, l.err
	}
	if l.delay > 0 {
		select {
		case <-time.After(l.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	start := 0
	if after := values.Get("starting_after"); after != "" {
		n, err := strconv.Atoi(after)
		if err != nil {
			return nil, err
		}
		start = n + 1
	}
	limit, _ := strconv.Atoi(values.Get("limit"))

	end := min(start+limit, len(l.items))
	page := &pagequery.Page[int]{Data: l.items[start:end]}
	if end < len(l.items) {
		page.HasNext = true
		page.Next = pagequery.Cursor(strconv.Itoa(end - 1))
	} else {
		page.Next = pagequery.CursorEnd
	}
	return page, nil
}

func numbers(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func evens(_ context.Context, items []int) ([]int, error) {
	out := make([]int, 0, len(items))
	for _, i := range items {
		if i%2 == 0 {
			out = append(out, i)
		}
	}
	return out, nil
}

var _ = Describe("Fill", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("should collect everything when no quota is set", func() {
		lister := &sliceLister{items: numbers(30)}

		result, err := collect.Fill[int](ctx, lister, url.Values{}, nil, collect.WithPageConfig(pagequery.NewPageConfig().WithMaxSize(10)))

		Expect(err).ToNot(HaveOccurred())
		Expect(result.Items).To(Equal(numbers(30)))
		Expect(result.HasMore()).To(BeFalse())
		Expect(result.Next).To(Equal(pagequery.CursorEnd))
		Expect(result.Metadata.PagesFetched).To(Equal(3))
		Expect(result.Metadata.SafeguardHit).To(BeEmpty())
		Expect(result.Metadata.Strategy).To(Equal("collect"))
	})

	It("should follow next cursors until the quota is met", func() {
		lister := &sliceLister{items: numbers(100)}
		pc := pagequery.NewPageConfig().WithDefaultSize(4).WithMaxSize(4)

		result, err := collect.Fill[int](ctx, lister, url.Values{"sort_key": {"id"}}, evens,
			collect.WithQuota(5), collect.WithPageConfig(pc))

		Expect(err).ToNot(HaveOccurred())
		Expect(result.Items).To(Equal([]int{0, 2, 4, 6, 8, 10}))
		Expect(result.HasMore()).To(BeTrue())
		Expect(result.Next).To(Equal(pagequery.Cursor("11")))
		Expect(result.Metadata.ItemsExamined).To(Equal(12))

		Expect(lister.requests[0].Get("sort_key")).To(Equal("id"))
		Expect(lister.requests[0].Get("version")).To(Equal("3"))
		Expect(lister.requests[0].Has("starting_after")).To(BeFalse())
		Expect(lister.requests[1].Get("starting_after")).To(Equal("3"))
	})

	It("should resume from a starting cursor without modifying values", func() {
		lister := &sliceLister{items: numbers(10)}
		values := url.Values{"starting_after": {"4"}, "ending_before": {"9"}}

		result, err := collect.Fill[int](ctx, lister, values, nil)

		Expect(err).ToNot(HaveOccurred())
		Expect(values.Get("ending_before")).To(Equal("9"))
		Expect(values.Has("limit")).To(BeFalse())
		Expect(result.Metadata.PagesFetched).To(Equal(1))
	})

	It("should walk forward from the beginning when given ending_before", func() {
		lister := &sliceLister{items: numbers(6)}
		pc := pagequery.NewPageConfig().WithDefaultSize(2).WithMaxSize(2)

		result, err := collect.Fill[int](ctx, lister, url.Values{"ending_before": {"4"}}, nil,
			collect.WithPageConfig(pc))

		Expect(err).ToNot(HaveOccurred())
		Expect(result.Items).To(Equal(numbers(6)))
		for _, req := range lister.requests {
			Expect(req.Has("ending_before")).To(BeFalse())
		}
	})

	It("should treat a nil page as the end of the list", func() {
		lister := pagequery.ListerFunc[int](func(context.Context, url.Values) (*pagequery.Page[int], error) {
			return nil, nil
		})

		result, err := collect.Fill[int](ctx, lister, url.Values{}, nil, collect.WithQuota(5))

		Expect(err).ToNot(HaveOccurred())
		Expect(result.Items).To(BeEmpty())
		Expect(result.HasMore()).To(BeFalse())
		Expect(result.Metadata.PagesFetched).To(Equal(1))
	})

	It("should stop at the page limit", func() {
		lister := &sliceLister{items: numbers(100)}
		pc := pagequery.NewPageConfig().WithDefaultSize(2).WithMaxSize(2)

		result, err := collect.Fill[int](ctx, lister, url.Values{}, nil,
			collect.WithPageConfig(pc), collect.WithMaxPages(3))

		Expect(err).ToNot(HaveOccurred())
		Expect(result.Items).To(HaveLen(6))
		Expect(result.Metadata.SafeguardHit).To(Equal("max_pages"))
		Expect(result.HasMore()).To(BeTrue())
	})

	It("should stop at the item limit", func() {
		lister := &sliceLister{items: numbers(100)}

		result, err := collect.Fill[int](ctx, lister, url.Values{}, nil, collect.WithMaxItems(25))

		Expect(err).ToNot(HaveOccurred())
		Expect(result.Metadata.ItemsExamined).To(Equal(25))
		Expect(result.Metadata.SafeguardHit).To(Equal("max_items"))
	})

	It("should return partial results on timeout", func() {
		lister := &sliceLister{items: numbers(100), delay: 50 * time.Millisecond}

		result, err := collect.Fill[int](ctx, lister, url.Values{}, nil, collect.WithTimeout(10*time.Millisecond))

		Expect(err).ToNot(HaveOccurred())
		Expect(result.Items).To(BeEmpty())
		Expect(result.Metadata.SafeguardHit).To(Equal("timeout"))
	})

	It("should return caller cancellation as an error", func() {
		lister := &sliceLister{items: numbers(10)}
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := collect.Fill[int](cancelled, lister, url.Values{}, nil)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})

	It("should wrap fetch errors", func() {
		lister := &sliceLister{err: errors.New("backend down")}

		_, err := collect.Fill[int](ctx, lister, url.Values{}, nil)

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("fetch page 1"))
		Expect(err.Error()).To(ContainSubstring("backend down"))
	})

	It("should wrap filter errors", func() {
		lister := &sliceLister{items: numbers(10)}
		failing := func(context.Context, []int) ([]int, error) { return nil, errors.New("bad filter") }

		_, err := collect.Fill[int](ctx, lister, url.Values{}, failing)

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("apply filter"))
	})

	It("should grow page sizes with the backoff multipliers", func() {
		lister := &sliceLister{items: numbers(1000)}
		none := func(context.Context, []int) ([]int, error) { return nil, nil }
		pc := pagequery.NewPageConfig().WithDefaultSize(1)

		_, err := collect.Fill[int](ctx, lister, url.Values{}, none,
			collect.WithQuota(10), collect.WithPageConfig(pc),
			collect.WithBackoffMultipliers([]int{1, 2, 4}), collect.WithMaxPages(4))

		Expect(err).ToNot(HaveOccurred())
		limits := []string{}
		for _, r := range lister.requests {
			limits = append(limits, r.Get("limit"))
		}
		Expect(limits).To(Equal([]string{"10", "20", "40", "40"}))
	})
})
