package langid

import (
	"math"

	"github.com/oscar-corpus/corpusbuild/internal/document"
)

// LangBin accumulates, for one label (or "unknown" when nil), the total
// byte length of lines attributed to it and the probability-weighted byte
// sum.
type LangBin struct {
	BytesForLang  int64
	WeightedBytes float64 // sum(bytes * prob)
}

// DocIdentification is WeightedIDs's output.
type DocIdentification struct {
	LineIDs    []*document.Identification // same length as input lines
	LangBins   map[string]*LangBin        // "" key == the unknown bin
	TotalBytes int64
}

// unknownKey is the internal map key for lines with no identification.
const unknownKey = ""

// WeightedIDs identifies every line and aggregates byte-weighted bins.
// A per-line identification error leaves that line unknown rather than
// failing the document.
func (a *Adapter) WeightedIDs(lines []string) (*DocIdentification, error) {
	di := &DocIdentification{
		LineIDs:  make([]*document.Identification, len(lines)),
		LangBins: make(map[string]*LangBin),
	}
	for i, line := range lines {
		nBytes := int64(len(line))
		di.TotalBytes += nBytes

		id, err := a.IdentifyLine(line)
		if err != nil {
			id = nil // identification failed: treat this line as unknown
		}
		di.LineIDs[i] = id

		key := unknownKey
		prob := 0.0
		if id != nil {
			key = id.Label
			prob = id.Prob
		}
		bin := di.LangBins[key]
		if bin == nil {
			bin = &LangBin{}
			di.LangBins[key] = bin
		}
		bin.BytesForLang += nBytes
		bin.WeightedBytes += float64(nBytes) * prob
	}
	return di, nil
}

// DocumentLabel picks the document-level identification: the label with
// the most attributed bytes wins; its confidence is that label's
// probability-weighted bytes over the document's total bytes. Rejects
// (ok=false) when the winning confidence is below DocConfidenceFloor,
// when the winning bin is unknown, or when total bytes is zero.
func (a *Adapter) DocumentLabel(di *DocIdentification) (id document.Identification, ok bool) {
	if di.TotalBytes == 0 {
		return id, false
	}
	var winLabel string
	var winBytes int64 = -1
	for label, bin := range di.LangBins {
		if bin.BytesForLang > winBytes {
			winBytes = bin.BytesForLang
			winLabel = label
		}
	}
	if winLabel == unknownKey {
		return id, false
	}
	bin := di.LangBins[winLabel]
	conf := bin.WeightedBytes / float64(di.TotalBytes)
	if conf < a.cfg.DocConfidenceFloor {
		return id, false
	}
	return document.Identification{Label: winLabel, Prob: conf}, true
}

// IsMultilingual reports whether a document should carry the "multi"
// label: kept lines >= 10, >= 90% of lines identified, >= 2 distinct
// labels each covering >= floor(total_bytes/distinct_langs) bytes, and
// unknown bytes <= that same floor. distinct_langs counts only
// identified labels; the unknown bin is excluded from the denominator.
func (a *Adapter) IsMultilingual(di *DocIdentification) bool {
	const (
		minLines         = 10
		minIdentifiedPct = 0.9
	)
	n := len(di.LineIDs)
	if n < minLines {
		return false
	}
	identified := 0
	for _, id := range di.LineIDs {
		if id != nil {
			identified++
		}
	}
	if float64(identified)/float64(n) < minIdentifiedPct {
		return false
	}

	distinctLangs := 0
	for label := range di.LangBins {
		if label != unknownKey {
			distinctLangs++
		}
	}
	if distinctLangs < 2 {
		return false
	}
	floor := int64(math.Floor(float64(di.TotalBytes) / float64(distinctLangs)))

	for label, bin := range di.LangBins {
		if label == unknownKey {
			if bin.BytesForLang > floor {
				return false
			}
			continue
		}
		if bin.BytesForLang < floor {
			return false
		}
	}
	return true
}
