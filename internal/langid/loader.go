package langid

import "fmt"

// ErrModelNotWired is returned by the default Predictor stub: the
// fastText-based model itself lives outside this repo. Callers embedding
// this package into a full deployment supply their own Predictor (a cgo
// binding, an RPC client, whatever fastText integration they run) and
// never need this stub.
var ErrModelNotWired = fmt.Errorf("langid: no Predictor wired; model path is a placeholder at this layer")

// unwiredPredictor satisfies Predictor but always fails, so a binary can
// link and validate its configuration (including that the model path
// exists, see internal/config) without a real fastText binding present.
type unwiredPredictor struct{ path string }

// Stub returns a Predictor that reports modelPath was configured but
// defers the actual prediction to whatever concrete Predictor the
// deployment wires in its place.
func Stub(modelPath string) Predictor {
	return unwiredPredictor{path: modelPath}
}

func (p unwiredPredictor) Predict(string, int, float64) ([]RawPrediction, error) {
	return nil, ErrModelNotWired
}
