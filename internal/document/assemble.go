package document

import (
	"fmt"
)

// Assemble builds the final (Document, Location) pair from a trimmed
// record, enforcing:
//   - content line count == sentence-identification count
//   - line_start <= line_end
//   - warc_headers contains a record-id, else the document is dropped
func Assemble(
	shardID uint64,
	locInShard uint64,
	headers HeaderList,
	content string,
	lineIDs []*Identification,
	lineStart, lineEnd int,
	id Identification,
) (*Placed, error) {
	recordID, ok := headers.Get(HeaderRecordID)
	if !ok || recordID == "" {
		return nil, fmt.Errorf("record missing %s: dropped", HeaderRecordID)
	}
	if lineStart > lineEnd {
		return nil, fmt.Errorf("invalid kept range [%d,%d]", lineStart, lineEnd)
	}

	doc := &Document{
		Content:     content,
		WarcHeaders: headers,
		MetadataBlob: Metadata{
			Identification:          id,
			SentenceIdentifications: lineIDs,
		},
	}
	lines := doc.Lines()
	if len(lines) != len(lineIDs) {
		return nil, fmt.Errorf("content line count %d != sentence_identifications count %d",
			len(lines), len(lineIDs))
	}

	loc := Location{
		ShardID:    shardID,
		RecordID:   recordID,
		LineStart:  uint64(lineStart),
		LineEnd:    uint64(lineEnd),
		LocInShard: locInShard,
	}
	return &Placed{Doc: doc, Loc: loc}, nil
}
