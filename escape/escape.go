// Package escape implements backslash-mnemonic byte escaping as a pair of Encoders.
//
// # Wire Format
//
// Exactly three bytes are escaped, each as a backslash followed by a mnemonic:
//
//	newline   (0x0A) -> '\' 'n'
//	backspace (0x08) -> '\' 'b'
//	backslash (0x5C) -> '\' '\'
//
// Every other byte, including space and other control characters, passes through
// unchanged. The escaped output therefore never contains a raw newline, which makes
// it suitable for line-oriented channels.
//
// # Decoding
//
// The Decoder is a two-state machine. In StatePassthrough it copies bytes until it
// sees a backslash, which it retains and moves to StatePendingEscape. The next byte,
// possibly delivered by a later Encode call, resolves the pair: a known mnemonic
// yields the original byte, anything else yields the backslash and that byte
// literally. Flush and Finish emit a still-pending backslash literally.
//
// Flushing a decoder between two halves of an escape pair therefore splits the pair;
// feed all chunks with Encode and flush once at the end when chunk boundaries are
// arbitrary.
package escape

import (
	"github.com/arloliu/bytecodec/buffer"
	"github.com/arloliu/bytecodec/encoder"
)

// Backslash is the escape introducer.
const Backslash = '\\'

// mnemonics maps each must-escape byte to the character that follows the backslash.
var mnemonics = [256]byte{
	'\n':      'n',
	'\b':      'b',
	Backslash: Backslash,
}

// originals is the inverse of mnemonics; zero marks an unknown mnemonic.
var originals = [256]byte{
	'n':       '\n',
	'b':       '\b',
	Backslash: Backslash,
}

// MustEscape reports whether c is escaped by the Encoder.
func MustEscape(c byte) bool {
	return mnemonics[c] != 0
}

// Mnemonic returns the character written after the backslash for c, and whether c
// is escaped at all.
func Mnemonic(c byte) (byte, bool) {
	m := mnemonics[c]
	return m, m != 0
}

// Original returns the byte encoded by mnemonic m, and whether m is known.
func Original(m byte) (byte, bool) {
	c := originals[m]

	return c, c != 0
}

// Escape returns data with every must-escape byte replaced by its escape pair.
func Escape(data []byte) []byte {
	out := make([]byte, 0, len(data)+len(data)/8)
	for _, c := range data {
		if m, ok := Mnemonic(c); ok {
			out = append(out, Backslash, m)
			continue
		}
		out = append(out, c)
	}

	return out
}

// Unescape reverses Escape. A trailing lone backslash and unknown escape pairs are
// kept literally.
func Unescape(data []byte) []byte {
	d := NewDecoder()
	out := make([]byte, 0, len(data))
	for _, c := range data {
		out = d.step(out, c)
	}

	return d.drain(out)
}

// Encoder escapes its input. It keeps no state between calls: every input byte maps
// independently to one or two output bytes.
type Encoder struct {
	encoder.Status
}

var _ encoder.Encoder = (*Encoder)(nil)

// NewEncoder creates a new escaping Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode escapes all of in into out.
func (e *Encoder) Encode(in, out *buffer.Buffer) error {
	if err := e.Check(); err != nil {
		return err
	}

	data := in.Get(in.Avail())
	start := 0
	for i, c := range data {
		m, ok := Mnemonic(c)
		if !ok {
			continue
		}
		out.Put(data[start:i])
		out.PutByte(Backslash)
		out.PutByte(m)
		start = i + 1
	}
	out.Put(data[start:])

	return nil
}

// Flush is a no-op; the Encoder never retains bytes.
func (e *Encoder) Flush(*buffer.Buffer) error {
	return e.Check()
}

func (e *Encoder) Finish(*buffer.Buffer) error {
	if err := e.Check(); err != nil {
		return err
	}
	e.MarkFinished()

	return nil
}

func (e *Encoder) Reset() error {
	e.Clear()
	return nil
}
