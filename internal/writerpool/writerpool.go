// Package writerpool holds the process-wide, per-language append-only
// JSONL writers, with size-bounded part rotation and optional zstd
// compression. Writers are created lazily and race-free on the first
// document routed to a language.
package writerpool

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/oscar-corpus/corpusbuild/cmn/nlog"
	"github.com/oscar-corpus/corpusbuild/internal/document"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Options configures the pool.
type Options struct {
	Root          string // destination directory; one subdir per language
	PartSizeBytes int64  // 0 disables rotation
	Compress      bool   // zstd when true
}

// Pool is process-wide writer state: created at pipeline start,
// referenced through a shared handle, finalized at pipeline end.
type Pool struct {
	opts Options

	mu      sync.RWMutex // guards writers map membership (rare exclusive acquisition on first-seen language)
	writers map[string]*langWriter
	group   singleflight.Group
}

// New returns an empty Pool rooted at opts.Root. The caller must ensure
// opts.Root exists (internal/config validates this at startup).
func New(opts Options) *Pool {
	return &Pool{
		opts:    opts,
		writers: make(map[string]*langWriter),
	}
}

// Write serializes docs (one JSON object per line) to lang's writer,
// creating it on first use. Concurrent first-use from distinct shard
// tasks for the same lang collapses onto exactly one creation via
// singleflight.
func (p *Pool) Write(lang string, docs []*document.Placed) error {
	if len(docs) == 0 {
		return nil
	}
	w, err := p.writerFor(lang)
	if err != nil {
		return errors.Wrapf(err, "writerpool: open %s", lang)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, pl := range docs {
		if err := w.writeLocked(pl.Doc); err != nil {
			return errors.Wrapf(err, "writerpool: write %s", lang)
		}
	}
	return nil
}

func (p *Pool) writerFor(lang string) (*langWriter, error) {
	p.mu.RLock()
	w, ok := p.writers[lang]
	p.mu.RUnlock()
	if ok {
		return w, nil
	}

	v, err, _ := p.group.Do(lang, func() (any, error) {
		p.mu.RLock()
		if w, ok := p.writers[lang]; ok {
			p.mu.RUnlock()
			return w, nil
		}
		p.mu.RUnlock()

		dir := filepath.Join(p.opts.Root, lang)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		nw := &langWriter{
			dir:      dir,
			lang:     lang,
			partSize: p.opts.PartSizeBytes,
			compress: p.opts.Compress,
			partNum:  1,
		}
		if err := nw.openCurrent(); err != nil {
			return nil, err
		}

		p.mu.Lock()
		p.writers[lang] = nw
		p.mu.Unlock()
		return nw, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*langWriter), nil
}

// Flush flushes every open writer. Idempotent.
func (p *Pool) Flush() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var errs []error
	for lang, w := range p.writers {
		if err := w.flush(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", lang, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("writerpool: flush errors: %v", errs)
	}
	return nil
}

// Close flushes and closes every writer. Must run on pipeline shutdown,
// normal or aborted, so zstd trailers are finalized.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	for lang, w := range p.writers {
		if err := w.close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", lang, err))
			nlog.Errorf("writerpool: close %s: %v", lang, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("writerpool: close errors: %v", errs)
	}
	return nil
}

// langWriter is one language's append-only, optionally part-rotated,
// optionally compressed JSONL sink. All state mutation happens under mu;
// writes against distinct languages never contend.
type langWriter struct {
	mu sync.Mutex

	dir      string
	lang     string
	partSize int64
	compress bool

	partNum  int
	curBytes int64
	file     *os.File
	zw       *zstd.Encoder
	bw       *bufio.Writer
}

func (w *langWriter) currentName() string {
	ext := "jsonl"
	if w.compress {
		ext = "jsonl.zst"
	}
	if w.partNum == 1 {
		return fmt.Sprintf("%s.%s", w.lang, ext)
	}
	return fmt.Sprintf("%s_part_%d.%s", w.lang, w.partNum, ext)
}

func (w *langWriter) openCurrent() error {
	path := filepath.Join(w.dir, w.currentName())
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	w.file = f
	w.curBytes = 0
	if w.compress {
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return err
		}
		w.zw = zw
		w.bw = bufio.NewWriterSize(zw, 64*1024)
	} else {
		w.zw = nil
		w.bw = bufio.NewWriterSize(f, 64*1024)
	}
	return nil
}

// writeLocked serializes doc as one compact JSON line, rotating to a new
// part first if writing it would cross partSize. An individual document
// that alone exceeds partSize still gets its own oversize part; a
// document is never split across parts.
func (w *langWriter) writeLocked(doc *document.Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	b = append(b, '\n')

	if w.partSize > 0 && w.curBytes > 0 && w.curBytes+int64(len(b)) > w.partSize {
		if err := w.rotateLocked(); err != nil {
			return err
		}
	}

	n, err := w.bw.Write(b)
	w.curBytes += int64(n)
	return err
}

func (w *langWriter) rotateLocked() error {
	if err := w.closeCurrentLocked(); err != nil {
		return err
	}
	w.partNum++
	return w.openCurrent()
}

func (w *langWriter) closeCurrentLocked() error {
	if err := w.bw.Flush(); err != nil {
		return err
	}
	if w.zw != nil {
		if err := w.zw.Close(); err != nil {
			return err
		}
	}
	return w.file.Close()
}

func (w *langWriter) flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.bw.Flush(); err != nil {
		return err
	}
	if w.zw != nil {
		return w.zw.Flush()
	}
	return nil
}

func (w *langWriter) close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeCurrentLocked()
}
