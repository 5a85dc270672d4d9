// Package rebuild writes the rebuild index: one snappy-compressed Avro
// Object Container File per language under rebuild/<lang>.avro, one
// record per (shard, language) pair, mapping every emitted document back
// to its exact shard coordinates. Files are append-only for the lifetime
// of one run; every Append writes its record as one complete Avro block.
package rebuild

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/linkedin/goavro/v2"
	"github.com/pkg/errors"

	"github.com/oscar-corpus/corpusbuild/internal/document"
)

const schemaJSON = `
{
  "type": "record",
  "name": "ShardLanguageBatch",
  "fields": [
    {"name": "shard_id", "type": "long"},
    {"name": "locations", "type": {"type": "array", "items": {
      "type": "record",
      "name": "Location",
      "fields": [
        {"name": "shard_id", "type": "long"},
        {"name": "record_id", "type": "string"},
        {"name": "line_start", "type": "long"},
        {"name": "line_end", "type": "long"},
        {"name": "loc_in_shard", "type": "long"},
        {"name": "metadata", "type": {
          "type": "record",
          "name": "LocationMetadata",
          "fields": [
            {"name": "identification", "type": {
              "type": "record",
              "name": "Identification",
              "fields": [
                {"name": "label", "type": "string"},
                {"name": "prob", "type": "double"}
              ]
            }},
            {"name": "annotation", "type": ["null", {"type": "array", "items": "string"}]},
            {"name": "sentence_identifications", "type": {"type": "array", "items": ["null", "Identification"]}}
          ]
        }}
      ]
    }}}
  ]
}
`

// Pool is process-wide rebuild-index state, analogous to writerpool.Pool.
type Pool struct {
	root string

	mu      sync.RWMutex
	writers map[string]*langIndex
}

// New returns an empty Pool rooted at root (typically <dest>/rebuild).
func New(root string) *Pool {
	return &Pool{root: root, writers: make(map[string]*langIndex)}
}

// Append writes one ShardLanguageBatch record for (shardID, lang),
// creating lang's Avro OCF writer on first use (double-checked under the
// pool lock). Appends against the same language serialize on the entry's
// own mutex; distinct languages proceed in parallel.
func (p *Pool) Append(shardID uint64, lang string, docs []*document.Placed) error {
	if len(docs) == 0 {
		return nil
	}
	idx, err := p.indexFor(lang)
	if err != nil {
		return errors.Wrapf(err, "rebuild: open %s", lang)
	}
	locations := make([]map[string]any, 0, len(docs))
	for _, pl := range docs {
		locations = append(locations, locationRecord(pl))
	}
	record := map[string]any{
		"shard_id":  int64(shardID),
		"locations": locations,
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.writer.Append([]map[string]any{record})
}

func (p *Pool) indexFor(lang string) (*langIndex, error) {
	p.mu.RLock()
	idx, ok := p.writers[lang]
	p.mu.RUnlock()
	if ok {
		return idx, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if idx, ok := p.writers[lang]; ok {
		return idx, nil
	}

	if err := os.MkdirAll(p.root, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(p.root, lang+".avro")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	codec, err := goavro.NewCodec(schemaJSON)
	if err != nil {
		f.Close()
		return nil, err
	}
	w, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               f,
		Codec:           codec,
		CompressionName: goavro.CompressionSnappyLabel,
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	idx = &langIndex{file: f, writer: w}
	p.writers[lang] = idx
	return idx, nil
}

// Close closes every open index file. Each Append has already written a
// complete Avro block, so Close writes nothing further to the files.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	for lang, idx := range p.writers {
		idx.mu.Lock()
		err := idx.file.Close()
		idx.mu.Unlock()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", lang, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("rebuild: close errors: %v", errs)
	}
	return nil
}

type langIndex struct {
	mu     sync.Mutex
	file   *os.File
	writer *goavro.OCFWriter
}

func locationRecord(p *document.Placed) map[string]any {
	sentIDs := make([]any, len(p.Doc.MetadataBlob.SentenceIdentifications))
	for i, id := range p.Doc.MetadataBlob.SentenceIdentifications {
		if id == nil {
			sentIDs[i] = nil
			continue
		}
		sentIDs[i] = goavro.Union("Identification", map[string]any{
			"label": id.Label,
			"prob":  id.Prob,
		})
	}

	var annotation any
	if len(p.Doc.MetadataBlob.Annotation) > 0 {
		tags := make([]any, len(p.Doc.MetadataBlob.Annotation))
		for i, t := range p.Doc.MetadataBlob.Annotation {
			tags[i] = t
		}
		annotation = goavro.Union("array", tags)
	} else {
		annotation = goavro.Union("null", nil)
	}

	return map[string]any{
		"shard_id":     int64(p.Loc.ShardID),
		"record_id":    p.Loc.RecordID,
		"line_start":   int64(p.Loc.LineStart),
		"line_end":     int64(p.Loc.LineEnd),
		"loc_in_shard": int64(p.Loc.LocInShard),
		"metadata": map[string]any{
			"identification": map[string]any{
				"label": p.Doc.MetadataBlob.Identification.Label,
				"prob":  p.Doc.MetadataBlob.Identification.Prob,
			},
			"annotation":               annotation,
			"sentence_identifications": sentIDs,
		},
	}
}
