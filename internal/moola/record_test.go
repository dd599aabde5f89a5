package moola_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/moola-sync/internal/moola"
)

var _ = Describe("Record", func() {
	Describe("Str", func() {
		It("should stringify integral floats without a fraction", func() {
			rec := moola.Record{"id": 12345.0}
			Expect(rec.Str("id")).To(Equal("12345"))
		})

		It("should return empty for missing or nil values", func() {
			rec := moola.Record{"nothing": nil}
			Expect(rec.Str("nothing")).To(BeEmpty())
			Expect(rec.Str("absent")).To(BeEmpty())
		})
	})

	Describe("Decimal", func() {
		It("should parse numeric strings", func() {
			rec := moola.Record{"total": " 116.50 "}
			Expect(rec.Decimal("total").Equal(decimal.NewFromFloat(116.5))).To(BeTrue())
		})

		It("should return zero for garbage", func() {
			rec := moola.Record{"total": "lots"}
			Expect(rec.Decimal("total").IsZero()).To(BeTrue())
		})
	})

	Describe("Truthy", func() {
		It("should treat common false spellings as false", func() {
			rec := moola.Record{"a": false, "b": 0.0, "c": "0", "d": "false", "e": ""}
			for _, key := range []string{"a", "b", "c", "d", "e"} {
				Expect(rec.Truthy(key)).To(BeFalse(), key)
			}
		})

		It("should treat non-zero values as true", func() {
			rec := moola.Record{"a": true, "b": 1.0, "c": "yes"}
			for _, key := range []string{"a", "b", "c"} {
				Expect(rec.Truthy(key)).To(BeTrue(), key)
			}
		})
	})

	Describe("Tags", func() {
		It("should normalize the tags array", func() {
			rec := moola.Record{
				"tags": []any{
					map[string]any{"tagName": "Department", "tagValueId": "7", "tagValueName": "Engineering"},
				},
			}
			tags := rec.Tags()
			Expect(tags).To(HaveLen(1))
			Expect(tags[0].Name).To(Equal("Department"))
			Expect(tags[0].ValueID).To(Equal("7"))
			Expect(tags[0].ValueName).To(Equal("Engineering"))
		})

		It("should accept the tagList spelling with alternate keys", func() {
			rec := moola.Record{
				"tagList": []any{
					map[string]any{"name": "Project", "valueId": 42.0, "valueName": "Apollo"},
				},
			}
			tags := rec.Tags()
			Expect(tags).To(HaveLen(1))
			Expect(tags[0].Name).To(Equal("Project"))
			Expect(tags[0].ValueID).To(Equal("42"))
		})

		It("should return nothing for malformed tag lists", func() {
			rec := moola.Record{"tags": "not-a-list"}
			Expect(rec.Tags()).To(BeEmpty())
		})
	})
})
