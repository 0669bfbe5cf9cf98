package serial

import (
	"fmt"
	"math"
	"strings"

	"github.com/arloliu/bytecodec/buffer"
	"github.com/arloliu/bytecodec/errs"
)

// SizeWidth is the width of every length and count prefix.
const SizeWidth = 8

func putSize(b *buffer.Buffer, n int) {
	_ = Uint64.Serialize(b, uint64(n))
}

// getSize consumes a length prefix. On error nothing is consumed.
func getSize(b *buffer.Buffer, what string) (int, error) {
	if b.Avail() < SizeWidth {
		return 0, underflow(what+" length", SizeWidth, b.Avail())
	}

	u, _ := Uint64.Deserialize(b)
	if u > math.MaxInt {
		b.Unget(SizeWidth)
		return 0, fmt.Errorf("%w: %s length %d", errs.ErrLengthOverflow, what, u)
	}

	return int(u), nil
}

// getPayloadSize consumes a length prefix and checks the payload is fully present.
// On error nothing is consumed.
func getPayloadSize(b *buffer.Buffer, what string) (int, error) {
	n, err := getSize(b, what)
	if err != nil {
		return 0, err
	}
	if b.Avail() < n {
		avail := b.Avail()
		b.Unget(SizeWidth)

		return 0, underflow(what, n, avail)
	}

	return n, nil
}

type text struct{}

// String encodes text as its bytes followed by a zero terminator.
//
// Serialize returns errs.ErrEmbeddedZero for text containing a zero byte. An empty
// string encodes as the lone terminator.
var String Serializer[string] = text{}

func (text) Serialize(b *buffer.Buffer, v string) error {
	if i := strings.IndexByte(v, 0); i >= 0 {
		return fmt.Errorf("%w: at offset %d", errs.ErrEmbeddedZero, i)
	}
	b.PutString(v)
	b.PutByte(0)

	return nil
}

func (text) Deserialize(b *buffer.Buffer) (string, error) {
	i := b.IndexByte(0)
	if i < 0 {
		return "", fmt.Errorf("%w: text terminator not found in %d bytes", errs.ErrUnderflow, b.Avail())
	}
	s := string(b.Get(i))
	b.Skip(1)

	return s, nil
}

type byteSlice struct{}

// Bytes encodes a byte slice with a length prefix. Deserialize always returns a
// non-nil slice.
var Bytes Serializer[[]byte] = byteSlice{}

func (byteSlice) Serialize(b *buffer.Buffer, v []byte) error {
	putSize(b, len(v))
	b.Put(v)

	return nil
}

func (byteSlice) Deserialize(b *buffer.Buffer) ([]byte, error) {
	n, err := getPayloadSize(b, "bytes")
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b.Get(n))

	return out, nil
}

type nested struct{}

// Buffer encodes the unread bytes of a buffer with a length prefix. Serialize does
// not consume the source; a nil source encodes as empty. Deserialize returns a new
// buffer which the caller may Release.
var Buffer Serializer[*buffer.Buffer] = nested{}

func (nested) Serialize(b *buffer.Buffer, v *buffer.Buffer) error {
	if v == nil {
		putSize(b, 0)
		return nil
	}
	n := v.Avail()
	putSize(b, n)
	b.Put(v.Peek(0, n))

	return nil
}

func (nested) Deserialize(b *buffer.Buffer) (*buffer.Buffer, error) {
	n, err := getPayloadSize(b, "buffer")
	if err != nil {
		return nil, err
	}
	out := buffer.New(n)
	out.Merge(b, n)

	return out, nil
}
