package langid_test

import (
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/oscar-corpus/corpusbuild/internal/langid"
)

// fakePredictor maps a line prefix to a raw fastText label and probability;
// lines with no recognized prefix return no predictions (simulating a
// model that abstains below threshold).
type fakePredictor struct {
	byPrefix map[string]langid.RawPrediction
}

func (f fakePredictor) Predict(text string, k int, threshold float64) ([]langid.RawPrediction, error) {
	for prefix, pred := range f.byPrefix {
		if strings.HasPrefix(text, prefix) && pred.Prob >= threshold {
			return []langid.RawPrediction{pred}, nil
		}
	}
	return nil, nil
}

var _ = Describe("Adapter", func() {
	model := fakePredictor{byPrefix: map[string]langid.RawPrediction{
		"EN": {LabelRaw: "__label__eng", Prob: 0.95},
		"FR": {LabelRaw: "__label__fra", Prob: 0.9},
	}}
	cfg := langid.DefaultConfig()
	adapter := langid.New(model, cfg)

	Describe("IdentifyLine", func() {
		It("normalizes the winning raw label to BCP-47", func() {
			id, err := adapter.IdentifyLine("EN hello world")
			Expect(err).NotTo(HaveOccurred())
			Expect(id).NotTo(BeNil())
			Expect(id.Label).To(Equal("en"))
			Expect(id.Prob).To(Equal(0.95))
		})

		It("returns nil when nothing clears the threshold", func() {
			id, err := adapter.IdentifyLine("xx totally unrecognized")
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(BeNil())
		})

		It("strips embedded NUL before prediction", func() {
			id, err := adapter.IdentifyLine("EN\x00 hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(id).NotTo(BeNil())
			Expect(id.Label).To(Equal("en"))
		})
	})

	Describe("WeightedIDs and DocumentLabel", func() {
		It("picks the label with maximum bytes_for_lang", func() {
			// en: 12 bytes at 0.95, fr: 4 bytes; confidence 11.4/16 clears 0.6
			lines := []string{"EN one", "EN two", "FR x"}
			di, err := adapter.WeightedIDs(lines)
			Expect(err).NotTo(HaveOccurred())

			label, ok := adapter.DocumentLabel(di)
			Expect(ok).To(BeTrue())
			Expect(label.Label).To(Equal("en"))
		})

		It("rejects when the winning bin is unknown", func() {
			lines := []string{"zz unrecognized line of text"}
			di, _ := adapter.WeightedIDs(lines)
			_, ok := adapter.DocumentLabel(di)
			Expect(ok).To(BeFalse())
		})

		It("rejects when confidence is below the floor", func() {
			lowConf := fakePredictor{byPrefix: map[string]langid.RawPrediction{
				"EN": {LabelRaw: "__label__eng", Prob: 0.81},
			}}
			a := langid.New(lowConf, langid.Config{K: 1, Threshold: 0.8, DocConfidenceFloor: 0.9})
			di, _ := a.WeightedIDs([]string{"EN text here"})
			_, ok := a.DocumentLabel(di)
			Expect(ok).To(BeFalse())
		})

		It("is deterministic for the same byte distribution", func() {
			lines := []string{"EN a", "FR b", "EN c"}
			di1, _ := adapter.WeightedIDs(lines)
			di2, _ := adapter.WeightedIDs(lines)
			l1, ok1 := adapter.DocumentLabel(di1)
			l2, ok2 := adapter.DocumentLabel(di2)
			Expect(ok1).To(Equal(ok2))
			Expect(l1).To(Equal(l2))
		})
	})

	Describe("IsMultilingual", func() {
		multiModel := fakePredictor{byPrefix: map[string]langid.RawPrediction{
			"EN": {LabelRaw: "__label__eng", Prob: 0.95},
			"FR": {LabelRaw: "__label__fra", Prob: 0.95},
		}}
		a := langid.New(multiModel, langid.DefaultConfig())

		It("detects a balanced two-language document", func() {
			lines := make([]string, 0, 12)
			// equal byte lengths keep both language bins at exactly half
			// of the total, on the floor(total/distinct) boundary
			for i := 0; i < 6; i++ {
				lines = append(lines, "EN some english words here")
			}
			for i := 0; i < 6; i++ {
				lines = append(lines, "FR quelques mots francaise")
			}
			di, _ := a.WeightedIDs(lines)
			Expect(a.IsMultilingual(di)).To(BeTrue())
		})

		It("rejects fewer than 10 kept lines", func() {
			lines := []string{"EN a", "FR b"}
			di, _ := a.WeightedIDs(lines)
			Expect(a.IsMultilingual(di)).To(BeFalse())
		})
	})
})
