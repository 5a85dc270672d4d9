package annotate

import (
	"math"
	"unicode"
	"unicode/utf8"

	"github.com/oscar-corpus/corpusbuild/internal/document"
)

// Noisy tags "noisy" when the count of non-letter/non-mark runes exceeds
// half of the document's total rune count, short-circuiting a single
// forward scan as soon as either counter crosses the half-threshold.
type Noisy struct{ Threshold float64 } // 0.5

func (Noisy) Name() string { return "noisy" }

func (n Noisy) Annotate(doc *document.Document, _ []string) error {
	threshold := n.Threshold
	if threshold == 0 {
		threshold = 0.5
	}
	nChars := utf8.RuneCountInString(doc.Content)
	limit := int(math.Floor(float64(nChars) * threshold))

	var nonLetter, letter int
	for _, r := range doc.Content {
		if unicode.IsLetter(r) || unicode.IsMark(r) {
			letter++
			if letter > limit {
				return nil
			}
		} else {
			nonLetter++
			if nonLetter > limit {
				doc.MetadataBlob.AddAnnotation("noisy")
				return nil
			}
		}
	}
	return nil
}
