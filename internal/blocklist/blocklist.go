// Package blocklist loads URL/domain blocklists and answers membership
// lookups through the annotate.Blocklist interface. Each blocklist kind
// is backed by a pair of cuckoo filters, an approximate-membership
// structure that holds hundreds of thousands of entries at fixed memory.
package blocklist

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	cuckoo "github.com/seiflotfy/cuckoofilter"

	"github.com/oscar-corpus/corpusbuild/cmn/nlog"
)

// Set is one named blocklist kind (e.g. "adult"), backed by two cuckoo
// filters: one for bare domains, one for full URLs.
type Set struct {
	kind    string
	domains *cuckoo.Filter
	urls    *cuckoo.Filter
}

func newSet(kind string, capacity uint) *Set {
	return &Set{
		kind:    kind,
		domains: cuckoo.NewFilter(capacity),
		urls:    cuckoo.NewFilter(capacity),
	}
}

func (s *Set) Kind() string { return s.kind }

func (s *Set) DetectDomain(host string) bool {
	if host == "" {
		return false
	}
	return s.domains.Lookup([]byte(strings.ToLower(host)))
}

func (s *Set) DetectURL(u string) bool {
	if u == "" {
		return false
	}
	return s.urls.Lookup([]byte(u))
}

// Pool loads one Set per subdirectory of root; each subdirectory name is
// a blocklist kind holding "domains" and "urls" files (the UT1 layout,
// e.g. root/adult/domains, root/adult/urls).
type Pool struct {
	sets map[string]*Set
}

// Load walks root, one directory per kind, reading "domains" and "urls"
// files (one entry per line) into cuckoo filters.
func Load(root string) (*Pool, error) {
	p := &Pool{sets: make(map[string]*Set)}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		kind := e.Name()
		set := newSet(kind, 1<<16)
		if err := loadLines(filepath.Join(root, kind, "domains"), func(line string) {
			set.domains.InsertUnique([]byte(strings.ToLower(line)))
		}); err != nil {
			nlog.Warningf("blocklist %s: domains: %v", kind, err)
		}
		if err := loadLines(filepath.Join(root, kind, "urls"), func(line string) {
			set.urls.InsertUnique([]byte(line))
		}); err != nil {
			nlog.Warningf("blocklist %s: urls: %v", kind, err)
		}
		p.sets[kind] = set
	}
	return p, nil
}

func loadLines(path string, f func(string)) error {
	fh, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	sc := bufio.NewScanner(fh)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f(line)
	}
	return sc.Err()
}

// Sets returns every loaded kind's Set, in no particular order; the
// ContentDetector annotator is instantiated once per Set so a single
// URL/domain can match more than one kind.
func (p *Pool) Sets() []*Set {
	out := make([]*Set, 0, len(p.sets))
	for _, s := range p.sets {
		out = append(out, s)
	}
	return out
}
