package annotate

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/oscar-corpus/corpusbuild/internal/document"
)

// LSH appends a `tlsh:<hex>` fingerprint tag computed as a shingled
// xxhash digest over the content. Not a true locality-sensitive hash;
// the tag gives downstream near-dup tooling a fixed-width fingerprint
// under the tlsh: namespace.
type LSH struct {
	ShingleSize int // bytes per shingle, default 64
}

func (LSH) Name() string { return "lsh" }

func (l LSH) Annotate(doc *document.Document, _ []string) error {
	shingle := l.ShingleSize
	if shingle == 0 {
		shingle = 64
	}
	content := doc.Content
	if content == "" {
		return nil
	}
	h := xxhash.New()
	for i := 0; i < len(content); i += shingle {
		end := i + shingle
		if end > len(content) {
			end = len(content)
		}
		h.Write([]byte(content[i:end]))
	}
	doc.MetadataBlob.AddAnnotation(fmt.Sprintf("%s%016x", lshPrefix, h.Sum64()))
	return nil
}
