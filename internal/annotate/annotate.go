// Package annotate runs an ordered chain of stateless transformers that
// each add zero or more tags to a document's metadata.
package annotate

import (
	"fmt"

	"github.com/oscar-corpus/corpusbuild/cmn/nlog"
	"github.com/oscar-corpus/corpusbuild/internal/document"
)

// Vocabulary is the fixed, closed set of tags any annotator may attach.
// blocklistKinds and the "tlsh:" prefix extend it: ContentDetector tags
// with the matched blocklist's kind, LSH with a hex fingerprint suffix.
var Vocabulary = map[string]struct{}{
	"tiny": {}, "short_sentences": {}, "header": {}, "footer": {}, "noisy": {},
}

// blocklistKinds are the recognized ContentDetector tag values; a closed
// list keeps the vocabulary invariant checkable.
var blocklistKinds = map[string]struct{}{
	"adult": {}, "gambling": {}, "phishing": {}, "malware": {},
}

const lshPrefix = "tlsh:"

// IsValidAnnotation reports whether tag is drawn from the fixed vocabulary:
// a static tag, a recognized blocklist kind, or an "tlsh:<hex>" fingerprint.
func IsValidAnnotation(tag string) bool {
	if _, ok := Vocabulary[tag]; ok {
		return true
	}
	if _, ok := blocklistKinds[tag]; ok {
		return true
	}
	return len(tag) > len(lshPrefix) && tag[:len(lshPrefix)] == lshPrefix
}

// Annotator is the shared capability every chain member implements: look
// at (and possibly mutate) a document's metadata. Failures are recovered
// by Chain.Run and logged, never fatal.
type Annotator interface {
	Name() string
	Annotate(doc *document.Document, kept []string) error
}

// Chain runs annotators in a fixed order; each sees tags accumulated by
// earlier ones.
type Chain struct {
	annotators []Annotator
}

// DefaultChain runs TinyDocument, ShortSentences, HeaderFooter, Noisy,
// then whatever extras the caller configured (content detectors,
// HarmfulPerplexity, LSH), in that order.
func DefaultChain(extra ...Annotator) *Chain {
	c := &Chain{annotators: []Annotator{
		TinyDocument{},
		ShortSentences{},
		HeaderFooter{},
	}}
	c.annotators = append(c.annotators, Noisy{})
	c.annotators = append(c.annotators, extra...)
	return c
}

// Run executes every annotator in order; an individual annotator error is
// logged and skipped, and the document is still emitted.
func (c *Chain) Run(doc *document.Document, kept []string, shardID uint64, loc uint64) {
	for _, a := range c.annotators {
		if err := safeAnnotate(a, doc, kept); err != nil {
			nlog.Warningf("annotator %s failed shard=%d loc=%d: %v", a.Name(), shardID, loc, err)
		}
	}
}

func safeAnnotate(a Annotator, doc *document.Document, kept []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicToErr(r)
		}
	}()
	return a.Annotate(doc, kept)
}

func panicToErr(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}

// PostFilterDrop reports whether a document's annotation set is exactly
// {noisy, tiny} (order-insensitive); such documents are dropped.
func PostFilterDrop(doc *document.Document) bool {
	ann := doc.MetadataBlob.Annotation
	if len(ann) != 2 {
		return false
	}
	hasTiny, hasNoisy := false, false
	for _, a := range ann {
		switch a {
		case "tiny":
			hasTiny = true
		case "noisy":
			hasNoisy = true
		}
	}
	return hasTiny && hasNoisy
}
