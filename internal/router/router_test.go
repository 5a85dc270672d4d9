package router_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oscar-corpus/corpusbuild/internal/document"
	"github.com/oscar-corpus/corpusbuild/internal/router"
)

func placed(lang, recordID string) *document.Placed {
	return &document.Placed{
		Doc: &document.Document{
			MetadataBlob: document.Metadata{Identification: document.Identification{Label: lang}},
		},
		Loc: document.Location{RecordID: recordID},
	}
}

func TestBatch_GroupsByLanguagePreservingOrder(t *testing.T) {
	b := router.New()
	b.Add(placed("en", "r1"))
	b.Add(placed("fr", "r2"))
	b.Add(placed("en", "r3"))

	require.Len(t, b.For("en"), 2)
	require.Equal(t, "r1", b.For("en")[0].Loc.RecordID)
	require.Equal(t, "r3", b.For("en")[1].Loc.RecordID)
	require.Len(t, b.For("fr"), 1)
	require.ElementsMatch(t, []string{"en", "fr"}, b.Languages())
	require.Equal(t, 2, b.Len())
}

func TestBatch_UnknownLanguageReturnsEmpty(t *testing.T) {
	b := router.New()
	require.Empty(t, b.For("de"))
}
