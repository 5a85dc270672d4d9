// Package wetio reads WET shards: a lazy, finite, non-restartable
// sequence of WARC/1.0 (WET profile) records decoded from one
// gzip-compressed shard path. WET shards are concatenated-gzip files;
// the gzip reader's multistream mode continues transparently past member
// boundaries.
package wetio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/oscar-corpus/corpusbuild/internal/document"
)

// Record is one parsed WARC record: its header fields (order preserved)
// and raw body bytes.
type Record struct {
	Headers document.HeaderList
	Body    []byte

	// Offset is the decoded-stream byte offset of this record's start,
	// used for parse-error logging.
	Offset int64
}

// Result is what Reader.Next yields: either a Record or a parse error.
// Parse errors do not terminate the sequence; the caller logs and
// continues.
type Result struct {
	Record *Record
	Err    error
}

// Reader is a lazy, finite, non-restartable WARC record sequence over one
// gzip shard path.
type Reader struct {
	f      *os.File
	gz     *gzip.Reader
	br     *bufio.Reader
	offset int64
	done   bool
}

// Open opens path for reading, validating the gzip header of the first
// member. Fails if the path cannot be opened or isn't valid gzip.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "wetio: open %s", path)
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "wetio: %s: invalid gzip header", path)
	}
	// Multistream defaults to true: the reader continues past
	// concatenated-gzip member boundaries without special handling.
	return &Reader{f: f, gz: gz, br: bufio.NewReaderSize(gz, 1<<20)}, nil
}

// Close releases the underlying file and decompressor.
func (r *Reader) Close() error {
	gzErr := r.gz.Close()
	fErr := r.f.Close()
	if gzErr != nil {
		return gzErr
	}
	return fErr
}

// Next returns the next record, or nil once the sequence is exhausted.
// A non-nil Result.Err with a nil Result is never returned for EOF; EOF
// is signaled by a nil *Result return.
func (r *Reader) Next() *Result {
	if r.done {
		return nil
	}
	startOffset := r.offset
	rec, err := r.readOne()
	if err == io.EOF {
		r.done = true
		return nil
	}
	if err != nil {
		return &Result{Err: fmt.Errorf("wetio: offset %d: %w", startOffset, err)}
	}
	rec.Offset = startOffset
	return &Result{Record: rec}
}

// readOne parses exactly one "WARC/1.0\r\n" block: a header section
// terminated by a blank line, then Content-Length body bytes, then the
// record-terminating blank line.
func (r *Reader) readOne() (*Record, error) {
	line, err := r.readLine()
	if err != nil {
		return nil, err
	}
	for strings.TrimSpace(line) == "" {
		// tolerate stray blank lines between records
		line, err = r.readLine()
		if err != nil {
			return nil, err
		}
	}
	if !strings.HasPrefix(line, "WARC/1") {
		return nil, fmt.Errorf("expected WARC version line, got %q", line)
	}

	var headers document.HeaderList
	for {
		line, err = r.readLine()
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed header line %q", line)
		}
		headers = append(headers, document.HeaderField{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}

	length, ok := headers.Get(document.HeaderContentLen)
	if !ok {
		return nil, fmt.Errorf("record missing %s", document.HeaderContentLen)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(length), 10, 64)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("invalid %s %q", document.HeaderContentLen, length)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(r.br, body); err != nil {
		return nil, fmt.Errorf("short body: %w", err)
	}

	// trailing CRLFCRLF between records
	if _, err := r.readLine(); err != nil && err != io.EOF {
		return nil, err
	}

	return &Record{Headers: headers, Body: body}, nil
}

func (r *Reader) readLine() (string, error) {
	line, err := r.br.ReadString('\n')
	r.offset += int64(len(line))
	if err != nil {
		if err == io.EOF && line != "" {
			return line, nil
		}
		return line, err
	}
	return line, nil
}
