package writerpool_test

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oscar-corpus/corpusbuild/internal/document"
	"github.com/oscar-corpus/corpusbuild/internal/writerpool"
)

func placedDoc(t *testing.T, recordID, content string) *document.Placed {
	t.Helper()
	headers := document.HeaderList{{Name: document.HeaderRecordID, Value: recordID}}
	lineIDs := make([]*document.Identification, len(strings.Split(content, "\n")))
	p, err := document.Assemble(1, 0, headers, content, lineIDs, 0, len(lineIDs)-1, document.Identification{Label: "en", Prob: 0.9})
	require.NoError(t, err)
	return p
}

func TestWrite_CreatesOneFilePerLanguage(t *testing.T) {
	dest := t.TempDir()
	p := writerpool.New(writerpool.Options{Root: dest})

	require.NoError(t, p.Write("en", []*document.Placed{placedDoc(t, "<urn:uuid:1>", "hello")}))
	require.NoError(t, p.Write("fr", []*document.Placed{placedDoc(t, "<urn:uuid:2>", "bonjour")}))
	require.NoError(t, p.Close())

	enBytes, err := os.ReadFile(filepath.Join(dest, "en", "en.jsonl"))
	require.NoError(t, err)
	require.Contains(t, string(enBytes), `"content":"hello"`)

	frBytes, err := os.ReadFile(filepath.Join(dest, "fr", "fr.jsonl"))
	require.NoError(t, err)
	require.Contains(t, string(frBytes), `"content":"bonjour"`)
}

func TestWrite_EmptyDocsIsNoop(t *testing.T) {
	dest := t.TempDir()
	p := writerpool.New(writerpool.Options{Root: dest})
	require.NoError(t, p.Write("en", nil))
	require.NoError(t, p.Close())
	_, err := os.Stat(filepath.Join(dest, "en"))
	require.True(t, os.IsNotExist(err))
}

func TestWrite_RotatesPartsWithoutSplittingADocument(t *testing.T) {
	dest := t.TempDir()
	// Each serialized line is comfortably over 40 bytes; a part size of 50
	// forces a new part after the first document rather than splitting it.
	p := writerpool.New(writerpool.Options{Root: dest, PartSizeBytes: 50})

	docs := []*document.Placed{
		placedDoc(t, "<urn:uuid:1>", "first document body text"),
		placedDoc(t, "<urn:uuid:2>", "second document body text"),
		placedDoc(t, "<urn:uuid:3>", "third document body text"),
	}
	for _, d := range docs {
		require.NoError(t, p.Write("en", []*document.Placed{d}))
	}
	require.NoError(t, p.Close())

	entries, err := os.ReadDir(filepath.Join(dest, "en"))
	require.NoError(t, err)
	require.Greater(t, len(entries), 1, "expected more than one part file")

	var totalLines int
	for _, e := range entries {
		b, err := os.ReadFile(filepath.Join(dest, "en", e.Name()))
		require.NoError(t, err)
		lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
		for _, l := range lines {
			if l != "" {
				totalLines++
			}
		}
	}
	require.Equal(t, 3, totalLines)
}

func TestWrite_ConcurrentFirstUseCreatesWriterOnce(t *testing.T) {
	dest := t.TempDir()
	p := writerpool.New(writerpool.Options{Root: dest})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc := placedDoc(t, "<urn:uuid:concurrent>", "line")
			_ = i
			require.NoError(t, p.Write("en", []*document.Placed{doc}))
		}()
	}
	wg.Wait()
	require.NoError(t, p.Close())

	b, err := os.ReadFile(filepath.Join(dest, "en", "en.jsonl"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	require.Len(t, lines, 16)
}
