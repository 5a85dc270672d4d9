package annotate

import (
	"github.com/oscar-corpus/corpusbuild/internal/document"
	"github.com/oscar-corpus/corpusbuild/internal/filter"
)

// ShortSentences tags "short_sentences" when more than 50% of kept lines
// are shorter than the long-line threshold.
type ShortSentences struct{}

func (ShortSentences) Name() string { return "short_sentences" }

func (ShortSentences) Annotate(doc *document.Document, kept []string) error {
	if len(kept) == 0 {
		return nil
	}
	short := 0
	for _, l := range kept {
		if filter.RuneCount(l) < filter.LongLineThreshold {
			short++
		}
	}
	if float64(short)/float64(len(kept)) > 0.5 {
		doc.MetadataBlob.AddAnnotation("short_sentences")
	}
	return nil
}
