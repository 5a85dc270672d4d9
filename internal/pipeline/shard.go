package pipeline

import (
	"context"
	"sync"

	"github.com/oscar-corpus/corpusbuild/cmn/nlog"
	"github.com/oscar-corpus/corpusbuild/internal/annotate"
	"github.com/oscar-corpus/corpusbuild/internal/document"
	"github.com/oscar-corpus/corpusbuild/internal/filter"
	"github.com/oscar-corpus/corpusbuild/internal/langid"
	"github.com/oscar-corpus/corpusbuild/internal/router"
	"github.com/oscar-corpus/corpusbuild/internal/wetio"
)

// runShard opens path and drives every record through the read → filter →
// trim → identify → annotate → emit stages, fanning out one goroutine per
// record within the shard. Records are consumed from the wetio.Reader
// sequentially (it is not safe for concurrent use) and dispatched to
// worker goroutines; the router batch is assembled under a mutex since
// the grouping is shared shard-wide.
func runShard(ctx context.Context, s *Scheduler, shardID uint64, path string) (*router.Batch, error) {
	r, err := wetio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	chain := annotate.DefaultChain(perAnnotatorExtras(s)...)
	batch := router.New()
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		loc uint64
	)

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return batch, nil
		default:
		}

		res := r.Next()
		if res == nil {
			break
		}
		locInShard := loc
		loc++

		if res.Err != nil {
			nlog.Errorf("pipeline: shard %d: loc %d: decode: %v", shardID, locInShard, res.Err)
			s.Stats.addDropped()
			continue
		}

		rec := res.Record
		wg.Add(1)
		go func() {
			defer wg.Done()
			placed := processRecord(s, chain, shardID, locInShard, rec)
			if placed == nil {
				s.Stats.addDropped()
				return
			}
			mu.Lock()
			batch.Add(placed)
			mu.Unlock()
		}()
	}
	wg.Wait()
	return batch, nil
}

// processRecord runs one record through the filter, trimmer, identifier,
// and annotator stages, returning nil at whichever stage drops it.
func processRecord(s *Scheduler, chain *annotate.Chain, shardID, locInShard uint64, rec *wetio.Record) *document.Placed {
	body := stripNUL(string(rec.Body))
	lines := splitLinesPreserve(body)

	if !filter.Admit(lines) {
		return nil
	}

	ranges := filter.Trim(lines)
	if len(ranges) == 0 {
		return nil
	}
	kr := ranges[0]
	content, kept := filter.Apply(lines, ranges)
	if len(kept) == 0 {
		return nil
	}

	adapter := langid.New(s.Model, s.IDConfig)
	di, err := adapter.WeightedIDs(kept)
	if err != nil {
		nlog.Errorf("pipeline: shard %d: loc %d: identify: %v", shardID, locInShard, err)
		return nil
	}
	lineIDs := di.LineIDs

	var label document.Identification
	var ok bool
	if s.IDConfig.DetectMultilingual && adapter.IsMultilingual(di) {
		label, ok = document.Identification{Label: document.MultiLabel, Prob: 0.5}, true
	} else {
		label, ok = adapter.DocumentLabel(di)
	}
	if !ok {
		return nil
	}

	placed, err := document.Assemble(shardID, locInShard, rec.Headers, content, lineIDs, kr.Start, kr.End, label)
	if err != nil {
		nlog.Errorf("pipeline: shard %d: loc %d: assemble: %v", shardID, locInShard, err)
		return nil
	}

	chain.Run(placed.Doc, kept, shardID, placed.Loc.LocInShard)
	if annotate.PostFilterDrop(placed.Doc) {
		return nil
	}
	return placed
}

func perAnnotatorExtras(s *Scheduler) []annotate.Annotator {
	var extras []annotate.Annotator
	for _, bl := range s.Blocklists {
		extras = append(extras, annotate.ContentDetector{BL: bl})
	}
	if s.Perplexity != nil {
		extras = append(extras, annotate.HarmfulPerplexity{Scorer: s.Perplexity})
	}
	if s.EnableLSH {
		extras = append(extras, annotate.LSH{})
	}
	return extras
}

func stripNUL(s string) string {
	if !containsNUL(s) {
		return s
	}
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != 0 {
			b = append(b, s[i])
		}
	}
	return string(b)
}

func containsNUL(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return true
		}
	}
	return false
}

func splitLinesPreserve(s string) []string {
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
