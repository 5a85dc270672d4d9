package document

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
)

// HeaderList is an order-preserving WARC header mapping. WARC allows
// repeated header names; we preserve that, and preserve original
// insertion order, by storing pairs instead of a map.
type HeaderList []HeaderField

type HeaderField struct {
	Name  string
	Value string
}

// Get returns the first value for name, case-sensitively (WARC header
// names are canonical-cased on the wire), and whether it was found.
func (h HeaderList) Get(name string) (string, bool) {
	for _, f := range h {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// MarshalJSON renders the headers as a JSON object with keys in original
// insertion order; marshaling a Go map would sort the keys
// alphabetically and lose the original header order.
func (h HeaderList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range h {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := jsoniter.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		v, err := jsoniter.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses a JSON object back into an order-preserving header
// list, used when replaying a rebuild entry (internal/rebuild.Verify).
func (h *HeaderList) UnmarshalJSON(b []byte) error {
	iter := jsoniter.ParseBytes(jsoniter.ConfigDefault, b)
	*h = (*h)[:0]
	iter.ReadObjectCB(func(it *jsoniter.Iterator, field string) bool {
		val := it.ReadString()
		*h = append(*h, HeaderField{Name: field, Value: val})
		return true
	})
	return iter.Error
}

// WARC header names the pipeline consumes as mandatory signals.
const (
	HeaderRecordID   = "WARC-Record-ID"
	HeaderTargetURI  = "WARC-Target-URI"
	HeaderContentLen = "Content-Length"
	HeaderContentTyp = "Content-Type"
)
