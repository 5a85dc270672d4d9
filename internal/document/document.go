// Package document defines the corpus's output data model: Identification,
// Document, and the Location that ties a document back to its source
// shard coordinate.
package document

import "fmt"

// Identification is a (label, prob) pair: label is a normalized BCP-47
// language tag (see internal/langtag), prob is a confidence in [0, 1].
type Identification struct {
	Label string  `json:"label"`
	Prob  float64 `json:"prob"`
}

// MultiLabel is the distinguished label for multilingual documents.
const MultiLabel = "multi"

// Metadata is the per-document metadata block. Assemble sets the
// identifications; the annotator chain then adds Annotation and HarmfulPP.
type Metadata struct {
	Identification          Identification    `json:"identification"`
	Annotation              []string          `json:"annotation,omitempty"`
	SentenceIdentifications []*Identification `json:"sentence_identifications"`
	HarmfulPP               *float64          `json:"harmful_pp,omitempty"`
}

// HasAnnotation reports whether tag is present in Metadata.Annotation.
func (m *Metadata) HasAnnotation(tag string) bool {
	for _, a := range m.Annotation {
		if a == tag {
			return true
		}
	}
	return false
}

// AddAnnotation appends tag if not already present; order of first
// insertion is preserved (the annotator chain runs in a fixed order).
func (m *Metadata) AddAnnotation(tag string) {
	if !m.HasAnnotation(tag) {
		m.Annotation = append(m.Annotation, tag)
	}
}

// Document is only changed by the annotator chain after assembly.
// WarcHeaders preserves the original header order verbatim: it is NOT a
// plain map, because headers must round-trip byte-for-byte and a Go map
// marshals with its keys sorted, not in header order.
type Document struct {
	Content      string       `json:"content"`
	WarcHeaders  HeaderList   `json:"warc_headers"`
	MetadataBlob Metadata     `json:"metadata"`
}

// Lines splits Content on "\n"; its length always equals the length of
// Metadata.SentenceIdentifications for an assembled document.
func (d *Document) Lines() []string {
	if d.Content == "" {
		return nil
	}
	return splitLines(d.Content)
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}

// Location is the exact source coordinate of a document: enough to find
// and re-decode it from the original shard.
type Location struct {
	ShardID    uint64 `json:"shard_id"`
	RecordID   string `json:"record_id"`
	LineStart  uint64 `json:"line_start"`
	LineEnd    uint64 `json:"line_end"`
	LocInShard uint64 `json:"loc_in_shard"`
}

func (l Location) String() string {
	return fmt.Sprintf("shard=%d loc=%d record=%s lines=[%d,%d]",
		l.ShardID, l.LocInShard, l.RecordID, l.LineStart, l.LineEnd)
}

// Placed is the (Document, Location) pair produced by Assemble and
// carried through the language router to the sinks.
type Placed struct {
	Doc *Document
	Loc Location
}
