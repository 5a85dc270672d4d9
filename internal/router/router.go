// Package router groups the documents a shard produced by their
// identified language label. A Batch belongs to one shard task and is
// not safe for concurrent use; concurrency lives one layer up, in the
// writer pool.
package router

import "github.com/oscar-corpus/corpusbuild/internal/document"

// Batch groups one shard's admitted documents by language label.
// Insertion order within a language's slice is preserved; the map itself
// has no ordering guarantee.
type Batch struct {
	byLang map[string][]*document.Placed
}

// New returns an empty Batch.
func New() *Batch {
	return &Batch{byLang: make(map[string][]*document.Placed)}
}

// Add routes p under its own identification label.
func (b *Batch) Add(p *document.Placed) {
	lang := p.Doc.MetadataBlob.Identification.Label
	b.byLang[lang] = append(b.byLang[lang], p)
}

// Languages returns the set of language labels present in this batch, in
// no particular order.
func (b *Batch) Languages() []string {
	out := make([]string, 0, len(b.byLang))
	for lang := range b.byLang {
		out = append(out, lang)
	}
	return out
}

// For returns the documents routed to lang, in insertion order.
func (b *Batch) For(lang string) []*document.Placed {
	return b.byLang[lang]
}

// Len returns the number of distinct languages in this batch.
func (b *Batch) Len() int { return len(b.byLang) }
