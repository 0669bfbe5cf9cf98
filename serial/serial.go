// Package serial converts typed values to and from a portable byte representation
// held in a buffer.Buffer.
//
// # Wire Format
//
// All multi-byte numbers are big-endian (network order). Int and Uint always use
// 8 bytes regardless of the host word size. Text is written as its bytes followed
// by a single zero byte. Byte slices, nested buffers and lists carry an 8-byte
// length or count prefix.
//
//	b := buffer.New(0)
//	_ = serial.Int32.Serialize(b, 7)      // 00 00 00 07
//	_ = serial.String.Serialize(b, "hi")  // 68 69 00
//	n, _ := serial.Int32.Deserialize(b)   // 7
//
// # Atomicity
//
// Deserialize never consumes a partial value. When the buffer holds fewer bytes
// than the value needs, it returns the zero value and an error wrapping
// errs.ErrUnderflow, and the buffer is left exactly as it was. A stream reader can
// therefore retry once more bytes arrive. Serialize of composite values is atomic
// in the same way: a failing element rolls back everything written for the value.
//
// # Ownership
//
// Deserialized values are fresh Go values owned by the caller. They never alias
// the source buffer.
package serial

import (
	"fmt"

	"github.com/arloliu/bytecodec/buffer"
	"github.com/arloliu/bytecodec/endian"
	"github.com/arloliu/bytecodec/errs"
)

// Serializer converts values of type T to and from the wire format.
type Serializer[T any] interface {
	// Serialize appends the wire form of v to b.
	Serialize(b *buffer.Buffer, v T) error
	// Deserialize consumes one value from b. On error nothing is consumed.
	Deserialize(b *buffer.Buffer) (T, error)
}

var engine = endian.GetNetworkEngine()

// Marshal serializes v with s and returns the bytes.
func Marshal[T any](s Serializer[T], v T) ([]byte, error) {
	b := buffer.New(0)
	defer b.Release()

	if err := s.Serialize(b, v); err != nil {
		return nil, err
	}

	return b.Drain(), nil
}

// Unmarshal deserializes exactly one value from data.
//
// Returns errs.ErrTrailingData if data holds more than one value.
func Unmarshal[T any](s Serializer[T], data []byte) (T, error) {
	b := buffer.NewFromBytes(data)
	defer b.Release()

	v, err := s.Deserialize(b)
	if err != nil {
		var zero T
		return zero, err
	}
	if b.Avail() > 0 {
		var zero T
		return zero, fmt.Errorf("%w: %d bytes", errs.ErrTrailingData, b.Avail())
	}

	return v, nil
}

func underflow(what string, need, avail int) error {
	return fmt.Errorf("%w: %s needs %d bytes, %d available", errs.ErrUnderflow, what, need, avail)
}

// rollback returns the bytes consumed since the read position held before unread
// bytes.
func rollback(b *buffer.Buffer, before int) {
	b.Unget(before - b.Avail())
}

// truncate drops the bytes written since the buffer held before unread bytes.
func truncate(b *buffer.Buffer, before int) {
	b.Unput(b.Avail() - before)
}
