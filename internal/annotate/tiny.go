package annotate

import "github.com/oscar-corpus/corpusbuild/internal/document"

// TinyDocument tags "tiny" when the kept-line count is below the
// threshold (default 5).
type TinyDocument struct{ Threshold int }

func (TinyDocument) Name() string { return "tiny" }

func (t TinyDocument) Annotate(doc *document.Document, kept []string) error {
	threshold := t.Threshold
	if threshold == 0 {
		threshold = 5
	}
	if len(kept) < threshold {
		doc.MetadataBlob.AddAnnotation("tiny")
	}
	return nil
}
