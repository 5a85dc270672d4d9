package pipeline_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/oscar-corpus/corpusbuild/internal/document"
	"github.com/oscar-corpus/corpusbuild/internal/langid"
	"github.com/oscar-corpus/corpusbuild/internal/pipeline"
	"github.com/oscar-corpus/corpusbuild/internal/rebuild"
	"github.com/oscar-corpus/corpusbuild/internal/router"
	"github.com/oscar-corpus/corpusbuild/internal/writerpool"
)

// englishPredictor recognizes one fixed phrase as English, simulating
// the fastText model contract without a real binding.
type englishPredictor struct{}

func (englishPredictor) Predict(text string, k int, threshold float64) ([]langid.RawPrediction, error) {
	if strings.Contains(text, "perfectly innocent") && threshold <= 0.9 {
		return []langid.RawPrediction{{LabelRaw: "__label__eng", Prob: 0.95}}, nil
	}
	return nil, nil
}

func writeShardFile(path, recordID string, body string) {
	var raw bytes.Buffer
	fmt.Fprintf(&raw, "WARC/1.0\r\n")
	fmt.Fprintf(&raw, "WARC-Record-ID: %s\r\n", recordID)
	fmt.Fprintf(&raw, "WARC-Target-URI: http://example.com\r\n")
	fmt.Fprintf(&raw, "Content-Length: %d\r\n", len(body))
	raw.WriteString("\r\n")
	raw.WriteString(body)
	raw.WriteString("\r\n\r\n")

	f, err := os.Create(path)
	Expect(err).NotTo(HaveOccurred())
	defer f.Close()
	zw := gzip.NewWriter(f)
	_, err = zw.Write(raw.Bytes())
	Expect(err).NotTo(HaveOccurred())
	Expect(zw.Close()).To(Succeed())
}

var _ = Describe("Scheduler", func() {
	It("routes two shards of the same language to one writer and one rebuild entry each", func() {
		src, err := os.MkdirTemp("", "pipeline-src-")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(src)
		dest, err := os.MkdirTemp("", "pipeline-dest-")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dest)

		paragraph := strings.Repeat("This is a perfectly innocent phrase ", 4)
		writeShardFile(filepath.Join(src, "1.warc.wet.gz"), "<urn:uuid:shard1>", paragraph)
		writeShardFile(filepath.Join(src, "2.warc.wet.gz"), "<urn:uuid:shard2>", paragraph)

		writers := writerpool.New(writerpool.Options{Root: dest})
		rebuildIdx := rebuild.New(filepath.Join(dest, "rebuild"))

		sched := &pipeline.Scheduler{
			Model:    englishPredictor{},
			IDConfig: langid.DefaultConfig(),
			Sinks: pipeline.Sinks{
				Writers: writers,
				Rebuild: rebuildIdx,
			},
			Workers: 2,
		}

		Expect(sched.Run(context.Background(), src)).To(Succeed())
		Expect(writers.Close()).To(Succeed())
		Expect(rebuildIdx.Close()).To(Succeed())

		jsonlBytes, err := os.ReadFile(filepath.Join(dest, "en", "en.jsonl"))
		Expect(err).NotTo(HaveOccurred())
		lines := strings.Split(strings.TrimRight(string(jsonlBytes), "\n"), "\n")
		Expect(lines).To(HaveLen(2))

		entries, err := rebuild.ReadEntries(filepath.Join(dest, "rebuild", "en.avro"))
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(2))

		gotShardIDs := map[uint64]bool{}
		for _, e := range entries {
			gotShardIDs[e.ShardID] = true
		}
		Expect(gotShardIDs).To(HaveKey(uint64(1)))
		Expect(gotShardIDs).To(HaveKey(uint64(2)))

		for _, e := range entries {
			Expect(e.Locations).To(HaveLen(1))
			loc := e.Locations[0]
			shardPath := filepath.Join(src, fmt.Sprintf("%d.warc.wet.gz", e.ShardID))
			err := rebuild.Verify(shardPath, rebuild.EntryLocation{
				RecordID:   loc.RecordID,
				LineStart:  loc.LineStart,
				LineEnd:    loc.LineEnd,
				LocInShard: loc.LocInShard,
			}, []string{paragraph})
			Expect(err).NotTo(HaveOccurred())
		}
	})
})

var _ = Describe("router.Batch", func() {
	It("groups a shard's documents by language, preserving per-language insertion order, the contract processShard relies on before handing a batch to the writer pool and rebuild index", func() {
		mkPlaced := func(lang, recordID string) *document.Placed {
			return &document.Placed{
				Doc: &document.Document{
					MetadataBlob: document.Metadata{Identification: document.Identification{Label: lang}},
				},
				Loc: document.Location{RecordID: recordID},
			}
		}

		b := router.New()
		b.Add(mkPlaced("en", "r1"))
		b.Add(mkPlaced("fr", "r2"))
		b.Add(mkPlaced("en", "r3"))

		Expect(b.Len()).To(Equal(2))
		Expect(b.Languages()).To(ConsistOf("en", "fr"))
		Expect(b.For("en")).To(HaveLen(2))
		Expect(b.For("en")[0].Loc.RecordID).To(Equal("r1"))
		Expect(b.For("en")[1].Loc.RecordID).To(Equal("r3"))
		Expect(b.For("fr")).To(HaveLen(1))
	})
})
