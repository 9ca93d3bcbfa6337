package mon

import (
	"encoding/json"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Roll registration and formatting", func() {
	var r *Roll

	BeforeEach(func() {
		r = NewRoll()
	})

	Describe("a set with nested objects, arrays and text", func() {
		var (
			ops  *Counter
			name *Text
		)

		BeforeEach(func() {
			b := NewBuilder()
			ops = b.Counter("ops", KindUint64)
			b.BegArray("client")
			name = b.Text("name")
			b.EndArray("client")

			_, err := r.Register("xrootd", KindAddOn, b)
			Expect(err).NotTo(HaveOccurred())

			ops.Add(7)
			name.Set("reader-1")
		})

		It("should render the registered counters under stats_<name> in JSON", func() {
			jsonOut, _ := r.Snapshot()

			var got map[string]interface{}
			Expect(json.Unmarshal([]byte("{"+string(jsonOut)+"}"), &got)).To(Succeed())

			stats, ok := got["stats_xrootd"].(map[string]interface{})
			Expect(ok).To(BeTrue())
			Expect(stats["ops"]).To(BeEquivalentTo(7))
		})

		It("should tag array elements with the array's own key in XML", func() {
			_, xmlOut := r.Snapshot()
			Expect(string(xmlOut)).To(ContainSubstring("<client>reader-1</client>"))
		})
	})

	Describe("registering the same set name twice", func() {
		It("should reject the duplicate", func() {
			_, err := r.Register("dup", KindAddOn, NewBuilder())
			Expect(err).NotTo(HaveOccurred())

			_, err = r.Register("dup", KindAddOn, NewBuilder())
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("a builder left with an open scope", func() {
		It("should fail Register rather than silently truncating the tree", func() {
			b := NewBuilder()
			b.BegObject("open")
			_, err := r.Register("unbalanced", KindAddOn, b)
			Expect(err).To(HaveOccurred())
		})
	})
})
