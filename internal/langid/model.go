// Package langid adapts an external language-identification model: the
// model contract is the Predict primitive; this package builds per-line
// identification and document-level byte-weighted aggregation on top of
// it. The fastText model itself lives outside this repo; Predictor is the
// interface the pipeline consumes.
package langid

import (
	"strings"

	"github.com/oscar-corpus/corpusbuild/cmn/nlog"
	"github.com/oscar-corpus/corpusbuild/internal/document"
	"github.com/oscar-corpus/corpusbuild/internal/langtag"
)

// RawPrediction is one (label_raw, prob) result from the underlying model,
// label_raw still in fastText's "__label__xxx" form.
type RawPrediction struct {
	LabelRaw string
	Prob     float64
}

// Predictor is the external language-identification model contract.
// Implementations return at most k results with prob >= threshold.
type Predictor interface {
	Predict(text string, k int, threshold float64) ([]RawPrediction, error)
}

// Config holds the adapter's tunables.
type Config struct {
	K                  int
	Threshold          float64
	DocConfidenceFloor float64
	DetectMultilingual bool
}

func DefaultConfig() Config {
	return Config{K: 1, Threshold: 0.8, DocConfidenceFloor: 0.6, DetectMultilingual: false}
}

// Adapter wraps a Predictor with label normalization and document-level
// aggregation.
type Adapter struct {
	model Predictor
	cfg   Config
}

func New(model Predictor, cfg Config) *Adapter {
	return &Adapter{model: model, cfg: cfg}
}

// stripNUL removes U+0000 before prediction; fastText treats NUL as a
// token boundary and misclassifies around it.
func stripNUL(s string) string {
	if !strings.ContainsRune(s, 0) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
}

// IdentifyLine predicts with k=1 and the configured threshold and
// normalizes the winning raw label to BCP-47. Returns a nil
// identification and no error if the model returned nothing above
// threshold, or if the normalized label is outside the recognized output
// registry (logged here). Returns the error if the model fails or the
// winning label fails normalization.
func (a *Adapter) IdentifyLine(line string) (*document.Identification, error) {
	clean := stripNUL(line)
	preds, err := a.model.Predict(clean, 1, a.cfg.Threshold)
	if err != nil {
		return nil, err
	}
	if len(preds) == 0 {
		return nil, nil
	}
	label, err := langtag.Normalize(preds[0].LabelRaw)
	if err != nil {
		return nil, err
	}
	if !langtag.IsRegistered(label) {
		nlog.Warningf("langid: label %s not in the output registry, treating as unknown", label)
		return nil, nil
	}
	return &document.Identification{Label: label, Prob: preds[0].Prob}, nil
}
