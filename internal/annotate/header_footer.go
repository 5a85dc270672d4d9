package annotate

import (
	"math"

	"github.com/oscar-corpus/corpusbuild/internal/document"
	"github.com/oscar-corpus/corpusbuild/internal/filter"
)

// HeaderFooter examines the first/last 20% of kept lines and tags
// "header" and/or "footer" when more than 50% of that slice is short.
type HeaderFooter struct {
	SlicePct     float64 // 0.2
	ThresholdPct float64 // 0.5
}

func (HeaderFooter) Name() string { return "header_footer" }

func (h HeaderFooter) Annotate(doc *document.Document, kept []string) error {
	slicePct := h.SlicePct
	if slicePct == 0 {
		slicePct = 0.2
	}
	thresholdPct := h.ThresholdPct
	if thresholdPct == 0 {
		thresholdPct = 0.5
	}

	n := len(kept)
	sliceLen := int(math.Floor(float64(n) * slicePct))
	thresholdLines := int(math.Floor(float64(sliceLen) * thresholdPct))

	if countShort(kept[:min(sliceLen, n)]) > thresholdLines {
		doc.MetadataBlob.AddAnnotation("header")
	}
	footer := kept[max(n-sliceLen, 0):]
	if countShort(footer) > thresholdLines {
		doc.MetadataBlob.AddAnnotation("footer")
	}
	return nil
}

func countShort(lines []string) int {
	n := 0
	for _, l := range lines {
		if filter.RuneCount(l) < filter.LongLineThreshold {
			n++
		}
	}
	return n
}
