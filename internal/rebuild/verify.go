package rebuild

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/linkedin/goavro/v2"

	"github.com/oscar-corpus/corpusbuild/internal/wetio"
)

// Entry is one decoded rebuild record: a shard's locations for one
// language batch.
type Entry struct {
	ShardID   uint64
	Locations []EntryLocation
}

type EntryLocation struct {
	RecordID   string
	LineStart  uint64
	LineEnd    uint64
	LocInShard uint64
}

// ReadEntries decodes every record in a rebuild/<lang>.avro file, for use
// by Verify and by offline auditing tools.
func ReadEntries(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ocf, err := goavro.NewOCFReader(bufio.NewReader(f))
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for ocf.Scan() {
		native, err := ocf.Read()
		if err != nil {
			return nil, err
		}
		rec, ok := native.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("rebuild: unexpected record shape %T", native)
		}
		e := Entry{ShardID: uint64(rec["shard_id"].(int64))}
		for _, raw := range rec["locations"].([]any) {
			loc := raw.(map[string]any)
			e.Locations = append(e.Locations, EntryLocation{
				RecordID:   loc["record_id"].(string),
				LineStart:  uint64(loc["line_start"].(int64)),
				LineEnd:    uint64(loc["line_end"].(int64)),
				LocInShard: uint64(loc["loc_in_shard"].(int64)),
			})
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Verify replays one rebuild entry against its original shard: decoding
// the shard record at loc.LocInShard, stripping U+0000, and taking lines
// [loc.LineStart..loc.LineEnd] must reproduce wantLines exactly.
func Verify(shardPath string, loc EntryLocation, wantLines []string) error {
	r, err := wetio.Open(shardPath)
	if err != nil {
		return err
	}
	defer r.Close()

	var idx uint64
	for {
		res := r.Next()
		if res == nil {
			return fmt.Errorf("rebuild: verify: loc_in_shard %d not found in %s", loc.LocInShard, shardPath)
		}
		if res.Err != nil {
			idx++
			continue
		}
		if idx == loc.LocInShard {
			body := strings.ReplaceAll(string(res.Record.Body), "\x00", "")
			lines := strings.Split(body, "\n")
			if loc.LineEnd >= uint64(len(lines)) {
				return fmt.Errorf("rebuild: verify: line_end %d out of range (%d lines)", loc.LineEnd, len(lines))
			}
			kept := lines[loc.LineStart : loc.LineEnd+1]
			if len(kept) != len(wantLines) {
				return fmt.Errorf("rebuild: verify: line count mismatch: shard has %d, document has %d", len(kept), len(wantLines))
			}
			for i := range kept {
				if kept[i] != wantLines[i] {
					return fmt.Errorf("rebuild: verify: line %d mismatch: shard %q != document %q", i, kept[i], wantLines[i])
				}
			}
			return nil
		}
		idx++
	}
}
