// Package pipeline schedules the corpus build: it enumerates shard paths,
// fans out parallel shard processing and, within each shard, parallel
// record processing, and drives every record through the
// read → filter → trim → identify → annotate → emit stages.
package pipeline

import (
	"context"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/karrick/godirwalk"
	"golang.org/x/sync/errgroup"

	"github.com/oscar-corpus/corpusbuild/cmn/cos"
	"github.com/oscar-corpus/corpusbuild/cmn/nlog"
	"github.com/oscar-corpus/corpusbuild/internal/annotate"
	"github.com/oscar-corpus/corpusbuild/internal/langid"
	"github.com/oscar-corpus/corpusbuild/internal/rebuild"
	"github.com/oscar-corpus/corpusbuild/internal/router"
	"github.com/oscar-corpus/corpusbuild/internal/writerpool"
)

// Sinks groups the two process-wide stateful outputs a run writes to;
// they are the only state that outlives a single shard.
type Sinks struct {
	Writers *writerpool.Pool
	Rebuild *rebuild.Pool
}

// Stats accumulates run-wide counters for the caller to report; nothing
// here affects control flow. A partial corpus is still a valid run.
type Stats struct {
	mu             sync.Mutex
	ShardsOpened   int
	ShardsFailed   int
	RecordsEmitted int
	RecordsDropped int

	// Errs holds up to a handful of distinct shard/writer/index errors
	// for a one-line end-of-run summary, without growing unbounded over
	// a long run.
	Errs cos.Errs
}

func (s *Stats) addShardOpened()  { s.mu.Lock(); s.ShardsOpened++; s.mu.Unlock() }
func (s *Stats) addShardFailed(err error) {
	s.mu.Lock()
	s.ShardsFailed++
	s.mu.Unlock()
	s.Errs.Add(err)
}
func (s *Stats) addEmitted(n int) { s.mu.Lock(); s.RecordsEmitted += n; s.mu.Unlock() }
func (s *Stats) addDropped()      { s.mu.Lock(); s.RecordsDropped++; s.mu.Unlock() }

// Scheduler wires the reader, filters, identifier, annotators, and sinks
// together and drives them over every shard in a source directory.
type Scheduler struct {
	Model      langid.Predictor
	IDConfig   langid.Config
	Blocklists []annotate.Blocklist
	Perplexity annotate.PerplexityScorer
	EnableLSH  bool
	Sinks      Sinks
	Workers    int // 0 defaults to runtime.NumCPU()

	Stats Stats
}

// shardPath is one discovered shard, its integer id parsed from the
// filename stem <n>.<ext>.
type shardPath struct {
	id   uint64
	path string
}

// Run enumerates shardDir and processes every shard, bounded by a worker
// pool sized Workers (default runtime.NumCPU()). It returns an error only
// when the directory itself cannot be enumerated; all per-shard and
// per-record errors are logged and absorbed.
func (s *Scheduler) Run(ctx context.Context, shardDir string) error {
	shards, err := discoverShards(shardDir)
	if err != nil {
		return err
	}

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, sp := range shards {
		sp := sp
		g.Go(func() error {
			s.processShard(gctx, sp)
			return nil
		})
	}
	return g.Wait()
}

// discoverShards walks shardDir non-recursively, skipping unreadable
// entries with a warning and directories, and parses each file's numeric
// stem as the shard id.
func discoverShards(shardDir string) ([]shardPath, error) {
	var shards []shardPath
	err := godirwalk.Walk(shardDir, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if path == shardDir {
				return nil
			}
			if de.IsDir() {
				return godirwalk.SkipThis
			}
			stem := filepath.Base(path)
			if dot := strings.IndexByte(stem, '.'); dot > 0 {
				stem = stem[:dot]
			}
			id, err := strconv.ParseUint(stem, 10, 64)
			if err != nil {
				nlog.Warningf("pipeline: skip %s: non-numeric shard stem", path)
				return nil
			}
			shards = append(shards, shardPath{id: id, path: path})
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			nlog.Warningf("pipeline: unreadable entry %s: %v", path, err)
			return godirwalk.SkipNode
		},
	})
	if err != nil {
		return nil, err
	}
	return shards, nil
}

// processShard runs one shard end to end and hands the resulting
// per-language batches to the writer pool and rebuild index. A shard that
// cannot be opened is logged and skipped.
func (s *Scheduler) processShard(ctx context.Context, sp shardPath) {
	rt := &recordTask{
		scheduler: s,
		shardID:   sp.id,
	}
	batch, err := rt.run(ctx, sp.path)
	if err != nil {
		s.Stats.addShardFailed(cos.NewErrNotFound("shard %d (%s)", sp.id, sp.path))
		nlog.Errorf("pipeline: shard %d (%s): %v", sp.id, sp.path, err)
		return
	}
	s.Stats.addShardOpened()

	var wg sync.WaitGroup
	for _, lang := range batch.Languages() {
		lang := lang
		docs := batch.For(lang)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Sinks.Writers.Write(lang, docs); err != nil {
				nlog.Errorf("pipeline: shard %d: write %s: %v", sp.id, lang, err)
				s.Stats.Errs.Add(err)
				return
			}
			if err := s.Sinks.Rebuild.Append(sp.id, lang, docs); err != nil {
				nlog.Errorf("pipeline: shard %d: rebuild %s: %v", sp.id, lang, err)
				s.Stats.Errs.Add(err)
			}
			s.Stats.addEmitted(len(docs))
		}()
	}
	wg.Wait()
}

// recordTask is the per-shard state shared by every record's pass through
// the processing stages.
type recordTask struct {
	scheduler *Scheduler
	shardID   uint64
}

func (rt *recordTask) run(ctx context.Context, path string) (*router.Batch, error) {
	return runShard(ctx, rt.scheduler, rt.shardID, path)
}
