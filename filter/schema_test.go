package filter_test

import (
	"errors"
	"net/url"
	"strconv"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/pagequery/filter"
)

var _ = Describe("Schema", func() {
	var schema *filter.Schema

	BeforeEach(func() {
		schema = filter.NewSchema().
			String("name").
			UUID("id").
			Date("created").
			Array("tag_ids")
	})

	It("should list columns in declaration order", func() {
		Expect(schema.Columns()).To(Equal([]filter.Column{
			{Name: "name", Kind: filter.KindString},
			{Name: "id", Kind: filter.KindUUID},
			{Name: "created", Kind: filter.KindDate},
			{Name: "tag_ids", Kind: filter.KindArray},
		}))
	})

	It("should default to the first column with EQ", func() {
		Expect(schema.Default()).To(Equal(filter.Filter{ColumnName: "name", Operator: filter.OpEqual}))
	})

	It("should return the input pattern for each column", func() {
		Expect(schema.PatternFor("created")).To(Equal(filter.DatePattern))
		Expect(schema.PatternFor("id")).To(Equal(filter.UUIDPattern))
		Expect(schema.PatternFor("unknown")).To(Equal(filter.StringPattern))
	})

	DescribeTable("date input",
		func(input string, valid bool) {
			Expect(filter.KindDate.MatchString(input)).To(Equal(valid))
		},
		Entry("MM/DD/YYYY", "12/31/2024", true),
		Entry("MM/DD/YY", "01/01/99", true),
		Entry("YYYY/MM/DD", "2024/08/10", true),
		Entry("with time", "2024/08/10 14:45:30", true),
		Entry("with fractional seconds", "2024/08/10 14:45:30.1234", true),
		Entry("bad month", "13/01/2024", false),
		Entry("bad ISO month", "2024/13/10", false),
		Entry("bad day", "2024/08/32", false),
		Entry("bad hour", "2024/08/10 25:00:00", false),
		Entry("bad minute", "2024/08/10 14:60:00", false),
	)

	DescribeTable("array input",
		func(input string, valid bool) {
			Expect(filter.KindArray.MatchString(input)).To(Equal(valid))
		},
		Entry("empty", "", true),
		Entry("parenthesized", "(item1,item2)", true),
		Entry("bare list", "item1,item2", false),
		Entry("unclosed", "(item1,item2", false),
		Entry("unopened", "item1,item2)", false),
	)

	It("should require non-empty strings", func() {
		Expect(filter.KindString.MatchString("abc")).To(BeTrue())
		Expect(filter.KindString.MatchString("")).To(BeFalse())
	})

	Describe("FormatValue", func() {
		It("should encode dates as UTC epoch microseconds", func() {
			v, err := schema.FormatValue("created", filter.OpGreaterOrEqual, "2024/08/10 14:45:30")
			Expect(err).ToNot(HaveOccurred())

			expected := time.Date(2024, 8, 10, 14, 45, 30, 0, time.UTC).UnixMicro()
			Expect(v).To(Equal(strconv.FormatInt(expected, 10)))
		})

		It("should accept US dates with two-digit years", func() {
			v, err := schema.FormatValue("created", filter.OpLessThan, "01/02/99")
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(strconv.FormatInt(time.Date(1999, 1, 2, 0, 0, 0, 0, time.UTC).UnixMicro(), 10)))
		})

		It("should keep fractional seconds", func() {
			micros, err := filter.ParseDate("12/31/2024 23:59:59.5")
			Expect(err).ToNot(HaveOccurred())
			Expect(micros).To(Equal(time.Date(2024, 12, 31, 23, 59, 59, 500000000, time.UTC).UnixMicro()))
		})

		It("should reject impossible dates", func() {
			_, err := schema.FormatValue("created", filter.OpEqual, "02/31/2024")
			Expect(errors.Is(err, filter.ErrInvalidValue)).To(BeTrue())
		})

		It("should wrap LIKE values", func() {
			v, err := schema.FormatValue("name", filter.OpLike, "ali")
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal("%ali%"))
		})

		It("should validate UUIDs compared for equality", func() {
			_, err := schema.FormatValue("id", filter.OpEqual, "not-a-uuid")
			Expect(errors.Is(err, filter.ErrInvalidValue)).To(BeTrue())

			v, err := schema.FormatValue("id", filter.OpLike, "1234")
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal("%1234%"))
		})

		It("should reject unknown columns", func() {
			_, err := schema.FormatValue("secret", filter.OpEqual, "x")
			Expect(errors.Is(err, filter.ErrUnknownColumn)).To(BeTrue())
		})
	})

	Describe("DisplayValue", func() {
		It("should render dates back in UTC", func() {
			micros := time.Date(2024, 8, 10, 14, 45, 30, 0, time.UTC).UnixMicro()
			f := filter.Filter{ColumnName: "created", Operator: filter.OpGreaterOrEqual, Value: strconv.FormatInt(micros, 10)}
			Expect(schema.DisplayValue(f)).To(Equal("2024/08/10 14:45:30"))
		})

		It("should strip wildcards", func() {
			f := filter.Filter{ColumnName: "name", Operator: filter.OpLike, Value: "%ali%"}
			Expect(schema.DisplayValue(f)).To(Equal("ali"))
		})
	})

	Describe("Validate", func() {
		It("should accept wire-form filters", func() {
			Expect(schema.Validate([]filter.Filter{
				{ColumnName: "name", Operator: filter.OpLike, Value: "%a%"},
				{ColumnName: "id", Operator: filter.OpEqual, Value: "8f7ad5a4-3b5e-4b7e-9d4a-2c1f0e9b8a7d"},
				{ColumnName: "created", Operator: filter.OpGreaterThan, Value: "1", Operator2: filter.OpLessThan, Value2: "2"},
				{ColumnName: "tag_ids", Operator: filter.OpHas, Value: "8f7ad5a4-3b5e-4b7e-9d4a-2c1f0e9b8a7d"},
			})).To(Succeed())
		})

		It("should reject unknown columns", func() {
			err := schema.Validate([]filter.Filter{{ColumnName: "password", Operator: filter.OpEqual, Value: "x"}})
			Expect(errors.Is(err, filter.ErrUnknownColumn)).To(BeTrue())
		})

		It("should reject date values that are not microseconds", func() {
			err := schema.Validate([]filter.Filter{{ColumnName: "created", Operator: filter.OpEqual, Value: "yesterday"}})
			Expect(errors.Is(err, filter.ErrInvalidValue)).To(BeTrue())
		})
	})

	Describe("Add", func() {
		It("should format the value and clear cursors", func() {
			params := url.Values{"starting_after": {"abc"}}

			out, err := schema.Add("", params, filter.Filter{ColumnName: "created", Operator: filter.OpGreaterOrEqual, Value: "2024/01/01"})

			Expect(err).ToNot(HaveOccurred())
			micros := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMicro()
			Expect(out.Get("filter")).To(Equal("('created',GE,'" + strconv.FormatInt(micros, 10) + "')"))
			Expect(out.Has("starting_after")).To(BeFalse())
		})

		It("should format both bounds of a range", func() {
			out, err := schema.Add("", url.Values{}, filter.Filter{
				ColumnName: "created",
				Operator:   filter.OpGreaterOrEqual,
				Value:      "2024/01/01",
				Operator2:  filter.OpLessThan,
				Value2:     "2024/02/01",
			})
			Expect(err).ToNot(HaveOccurred())

			filters := filter.FromParams("", out)
			Expect(filters).To(HaveLen(1))
			Expect(filters[0].IsRange()).To(BeTrue())
			Expect(filters[0].Value2).To(Equal(strconv.FormatInt(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).UnixMicro(), 10)))
		})

		It("should return the error for invalid input", func() {
			_, err := schema.Add("", url.Values{}, filter.Filter{ColumnName: "created", Operator: filter.OpEqual, Value: "nope"})
			Expect(err).To(HaveOccurred())
		})
	})
})
