package annotate

import (
	"fmt"

	"github.com/oscar-corpus/corpusbuild/internal/document"
)

// PerplexityScorer is the external n-gram perplexity scorer interface,
// keyed by language so a caller can route to a per-language KenLM-style
// model. The scorer itself lives outside this repo.
type PerplexityScorer interface {
	Score(lang, content string) (float64, error)
}

// unwiredScorer satisfies PerplexityScorer but always fails, mirroring
// langid.Stub: it lets a binary validate that a perplexity-model path was
// configured without a real n-gram model bound in its place.
type unwiredScorer struct{ path string }

func (s unwiredScorer) Score(string, string) (float64, error) {
	return 0, fmt.Errorf("annotate: no PerplexityScorer wired for model path %s", s.path)
}

// PerplexityStub returns a PerplexityScorer that records modelPath was
// configured but defers actual scoring to whatever concrete scorer a
// deployment wires in its place.
func PerplexityStub(modelPath string) PerplexityScorer {
	return unwiredScorer{path: modelPath}
}

// HarmfulPerplexity scores content against a harmful-content perplexity
// model and records the result in metadata.harmful_pp; it never itself
// adds an annotation tag.
type HarmfulPerplexity struct {
	Scorer PerplexityScorer
}

func (HarmfulPerplexity) Name() string { return "harmful_perplexity" }

func (h HarmfulPerplexity) Annotate(doc *document.Document, _ []string) error {
	if h.Scorer == nil {
		return nil
	}
	score, err := h.Scorer.Score(doc.MetadataBlob.Identification.Label, doc.Content)
	if err != nil {
		return err
	}
	doc.MetadataBlob.HarmfulPP = &score
	return nil
}
