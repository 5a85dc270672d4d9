// Command corpusbuild converts a CommonCrawl WET corpus into a
// language-partitioned, document-oriented corpus with a rebuild index
// that lets the corpus be reconstructed from the original shards.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/oscar-corpus/corpusbuild/cmn/cos"
	"github.com/oscar-corpus/corpusbuild/cmn/nlog"
	"github.com/oscar-corpus/corpusbuild/internal/annotate"
	"github.com/oscar-corpus/corpusbuild/internal/blocklist"
	"github.com/oscar-corpus/corpusbuild/internal/config"
	"github.com/oscar-corpus/corpusbuild/internal/langid"
	"github.com/oscar-corpus/corpusbuild/internal/pipeline"
	"github.com/oscar-corpus/corpusbuild/internal/rebuild"
	"github.com/oscar-corpus/corpusbuild/internal/writerpool"
)

// exitConfigError is not referenced directly: cos.ExitLogf exits with
// status 1 itself on the configuration-error path below, before run()
// ever returns to main's I/O-error branch.
const (
	exitOK          = 0
	exitConfigError = 1
	exitIOError     = 2
)

func main() {
	app := &cli.App{
		Name:  "corpusbuild",
		Usage: "build a language-partitioned corpus with rebuild index from CommonCrawl WET shards",
		Flags: []cli.Flag{
			// source/dest/model are mandatory but not cli-Required: a
			// missing one must exit 1 through config.Validate and
			// cos.ExitLogf, not 2 through cli/v2's usage error.
			&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "directory of WET shards"},
			&cli.StringFlag{Name: "dest", Aliases: []string{"d"}, Usage: "destination directory (must exist and be empty)"},
			&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "path to the language identification model"},
			&cli.StringFlag{Name: "blocklist", Usage: "path to a blocklist root directory (optional)"},
			&cli.StringFlag{Name: "perplexity-model", Usage: "path to a perplexity model directory (optional)"},
			&cli.Int64Flag{Name: "part-size", Usage: "rotate a language's output after this many bytes (0 disables rotation)"},
			&cli.BoolFlag{Name: "compress", Usage: "write zstd-compressed .jsonl.zst output"},
			&cli.BoolFlag{Name: "multilingual", Usage: "enable multilingual document detection (disabled by default)"},
			&cli.BoolFlag{Name: "lsh", Usage: "fingerprint each document with a tlsh:<hex> annotation"},
			&cli.IntFlag{Name: "workers", Usage: "parallel shard workers (0 = number of CPUs)"},
			&cli.BoolFlag{Name: "logtostderr", Usage: "log to standard error instead of a log file"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitIOError)
	}
	os.Exit(exitOK)
}

func run(c *cli.Context) error {
	cfg := &config.Config{
		SourceDir:          c.String("source"),
		DestDir:            c.String("dest"),
		ModelPath:          c.String("model"),
		BlocklistDir:       c.String("blocklist"),
		PerplexityDir:      c.String("perplexity-model"),
		PartSizeBytes:      c.Int64("part-size"),
		Compress:           c.Bool("compress"),
		DetectMultilingual: c.Bool("multilingual"),
		EnableLSH:          c.Bool("lsh"),
		Workers:            c.Int("workers"),
	}
	if err := cfg.Validate(); err != nil {
		cos.ExitLogf("%v", err)
	}

	nlog.SetTitle("corpusbuild")
	if !c.Bool("logtostderr") {
		nlog.SetLogDirRole(filepath.Join(cfg.DestDir, "logs"), "")
	}

	var blocklists []annotate.Blocklist
	if cfg.BlocklistDir != "" {
		pool, err := blocklist.Load(cfg.BlocklistDir)
		if err != nil {
			cos.ExitLogf("loading blocklists: %v", err)
		}
		for _, set := range pool.Sets() {
			blocklists = append(blocklists, set)
		}
	}

	writers := writerpool.New(writerpool.Options{
		Root:          cfg.DestDir,
		PartSizeBytes: cfg.PartSizeBytes,
		Compress:      cfg.Compress,
	})
	rebuildIdx := rebuild.New(filepath.Join(cfg.DestDir, "rebuild"))

	idCfg := langid.DefaultConfig()
	idCfg.DetectMultilingual = cfg.DetectMultilingual

	var scorer annotate.PerplexityScorer
	if cfg.PerplexityDir != "" {
		scorer = annotate.PerplexityStub(cfg.PerplexityDir)
	}

	sched := &pipeline.Scheduler{
		Model:      langid.Stub(cfg.ModelPath),
		IDConfig:   idCfg,
		Blocklists: blocklists,
		Perplexity: scorer,
		EnableLSH:  cfg.EnableLSH,
		Sinks: pipeline.Sinks{
			Writers: writers,
			Rebuild: rebuildIdx,
		},
		Workers: cfg.Workers,
	}

	runErr := sched.Run(context.Background(), cfg.SourceDir)

	// Writers and the rebuild index must be closed on every path, normal
	// or aborted; compressed output is incomplete until its zstd encoder
	// is closed.
	closeErr := writers.Close()
	if err := rebuildIdx.Close(); err != nil && closeErr == nil {
		closeErr = err
	}

	nlog.Infof("corpusbuild: shards opened=%d failed=%d records emitted=%d dropped=%d",
		sched.Stats.ShardsOpened, sched.Stats.ShardsFailed, sched.Stats.RecordsEmitted, sched.Stats.RecordsDropped)
	if n, err := sched.Stats.Errs.JoinErr(); n > 0 {
		nlog.Warningf("corpusbuild: %d shard error(s), e.g.: %v", n, err)
	}
	nlog.Flush(true)

	if runErr != nil {
		return runErr
	}
	return closeErr
}
