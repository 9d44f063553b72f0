package httpclient

import (
	"bytes"
	"encoding/json"
)

// Serializer encodes request bodies and decodes response bodies.
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONSerializer is the default Serializer. HTML characters are not
// escaped so that the signed body matches what callers expect to send.
type JSONSerializer struct {
	// Indent, when set, pretty-prints bodies with this indent string.
	Indent string
	// EscapeHTML restores encoding/json's default escaping of <, > and &.
	EscapeHTML bool
}

// Marshal encodes v without a trailing newline.
func (s JSONSerializer) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(s.EscapeHTML)
	if s.Indent != "" {
		enc.SetIndent("", s.Indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Unmarshal decodes data into v.
func (s JSONSerializer) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
