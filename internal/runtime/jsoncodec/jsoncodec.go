// Package jsoncodec centralizes JSON handling for the declaration loader
// and the jsonl debug sink behind sonic's stdlib-compatible configuration.
package jsoncodec

import (
	"io"

	"github.com/bytedance/sonic"
)

var defaultConfig = sonic.ConfigStd

func Marshal(v any) ([]byte, error) {
	return defaultConfig.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	return defaultConfig.Unmarshal(data, v)
}

func Encode(w io.Writer, v any) error {
	enc := defaultConfig.NewEncoder(w)
	return enc.Encode(v)
}

// LineEncoder streams newline-terminated JSON documents to one writer.
type LineEncoder struct {
	enc sonic.Encoder
}

// NewLineEncoder returns an encoder for line-oriented output. HTML escaping
// is off: the lines end up in log files and terminals, and escaped field
// values defeat grep.
func NewLineEncoder(w io.Writer) *LineEncoder {
	enc := defaultConfig.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &LineEncoder{enc: enc}
}

func (l *LineEncoder) Encode(v any) error {
	return l.enc.Encode(v)
}

func Decode(r io.Reader, v any) error {
	dec := defaultConfig.NewDecoder(r)
	return dec.Decode(v)
}
