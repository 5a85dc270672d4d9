package annotate

import (
	"net/url"

	"github.com/oscar-corpus/corpusbuild/internal/document"
)

// Blocklist is the external lookup predicate: domain/URL membership plus
// a "kind" label used as the annotation tag. internal/blocklist provides
// a cuckoo-filter-backed implementation.
type Blocklist interface {
	DetectDomain(host string) bool
	DetectURL(u string) bool
	Kind() string
}

// ContentDetector tags the document with the blocklist's Kind() when the
// target URI's domain or full URL matches.
type ContentDetector struct {
	BL Blocklist
}

func (ContentDetector) Name() string { return "content_detector" }

func (c ContentDetector) Annotate(doc *document.Document, _ []string) error {
	if c.BL == nil {
		return nil
	}
	raw, ok := doc.WarcHeaders.Get(document.HeaderTargetURI)
	if !ok {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil // malformed target URI: nothing to match against
	}
	if c.BL.DetectDomain(u.Hostname()) || c.BL.DetectURL(raw) {
		doc.MetadataBlob.AddAnnotation(c.BL.Kind())
	}
	return nil
}
