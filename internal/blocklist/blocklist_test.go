package blocklist_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oscar-corpus/corpusbuild/internal/blocklist"
)

func writeList(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_DomainAndURLMembership(t *testing.T) {
	root := t.TempDir()
	kindDir := filepath.Join(root, "adult")
	writeList(t, kindDir, "domains", "example.com", "# comment", "", "OTHER.example")
	writeList(t, kindDir, "urls", "http://example.com/x")

	pool, err := blocklist.Load(root)
	require.NoError(t, err)
	sets := pool.Sets()
	require.Len(t, sets, 1)
	require.Equal(t, "adult", sets[0].Kind())

	require.True(t, sets[0].DetectDomain("example.com"))
	require.True(t, sets[0].DetectDomain("other.example"))
	require.False(t, sets[0].DetectDomain("safe.example"))
	require.True(t, sets[0].DetectURL("http://example.com/x"))
	require.False(t, sets[0].DetectURL("http://safe.example/x"))
}

func TestLoad_EmptyHostAndURLNeverMatch(t *testing.T) {
	root := t.TempDir()
	writeList(t, filepath.Join(root, "adult"), "domains", "example.com")

	pool, err := blocklist.Load(root)
	require.NoError(t, err)
	set := pool.Sets()[0]
	require.False(t, set.DetectDomain(""))
	require.False(t, set.DetectURL(""))
}

func TestLoad_MultipleKinds(t *testing.T) {
	root := t.TempDir()
	writeList(t, filepath.Join(root, "adult"), "domains", "a.example")
	writeList(t, filepath.Join(root, "gambling"), "domains", "b.example")

	pool, err := blocklist.Load(root)
	require.NoError(t, err)
	require.Len(t, pool.Sets(), 2)
}

func TestLoad_MissingRootErrors(t *testing.T) {
	_, err := blocklist.Load(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestLoad_MissingListFilesToleratedAsEmptySet(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "malware"), 0o755))

	pool, err := blocklist.Load(root)
	require.NoError(t, err)
	sets := pool.Sets()
	require.Len(t, sets, 1)
	require.False(t, sets[0].DetectDomain("anything.example"))
}
