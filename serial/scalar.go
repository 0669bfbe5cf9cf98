package serial

import (
	"math"
	"reflect"

	"github.com/arloliu/bytecodec/buffer"
)

// Integer is the set of integer types Scalar can encode.
type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

// Scalar encodes an integer type as a fixed-width big-endian value. The zero value
// is ready to use.
type Scalar[T Integer] struct {
	width int
}

var _ Serializer[int32] = Scalar[int32]{}

// NewScalar returns the Scalar for T. Types whose underlying kind is int or uint
// are encoded with 8 bytes; the others use their natural size.
func NewScalar[T Integer]() Scalar[T] {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Int, reflect.Uint:
		return Scalar[T]{width: 8}
	default:
		return Scalar[T]{width: int(reflect.TypeFor[T]().Size())}
	}
}

// Predeclared scalar serializers.
var (
	Int8   = NewScalar[int8]()
	Int16  = NewScalar[int16]()
	Int32  = NewScalar[int32]()
	Int64  = NewScalar[int64]()
	Int    = NewScalar[int]()
	Uint8  = NewScalar[uint8]()
	Uint16 = NewScalar[uint16]()
	Uint32 = NewScalar[uint32]()
	Uint64 = NewScalar[uint64]()
	Uint   = NewScalar[uint]()
	Byte   = Uint8
)

// Width returns the encoded size in bytes.
func (s Scalar[T]) Width() int {
	if s.width == 0 {
		return NewScalar[T]().width
	}

	return s.width
}

func (s Scalar[T]) Serialize(b *buffer.Buffer, v T) error {
	var tmp [8]byte

	switch s.Width() {
	case 1:
		b.PutByte(byte(v))
	case 2:
		b.Put(engine.AppendUint16(tmp[:0], uint16(v)))
	case 4:
		b.Put(engine.AppendUint32(tmp[:0], uint32(v)))
	default:
		b.Put(engine.AppendUint64(tmp[:0], uint64(v)))
	}

	return nil
}

func (s Scalar[T]) Deserialize(b *buffer.Buffer) (T, error) {
	width := s.Width()
	if b.Avail() < width {
		return 0, underflow("integer", width, b.Avail())
	}

	data := b.Get(width)
	switch width {
	case 1:
		return T(data[0]), nil
	case 2:
		return T(engine.Uint16(data)), nil
	case 4:
		return T(engine.Uint32(data)), nil
	default:
		return T(engine.Uint64(data)), nil
	}
}

type boolean struct{}

// Bool encodes false as 0x00 and true as 0x01. Any nonzero byte decodes as true.
var Bool Serializer[bool] = boolean{}

func (boolean) Serialize(b *buffer.Buffer, v bool) error {
	if v {
		b.PutByte(1)
	} else {
		b.PutByte(0)
	}

	return nil
}

func (boolean) Deserialize(b *buffer.Buffer) (bool, error) {
	if b.Avail() < 1 {
		return false, underflow("bool", 1, 0)
	}

	return b.GetByte() != 0, nil
}

type float32Codec struct{}

type float64Codec struct{}

// Float32 and Float64 encode IEEE 754 bit patterns big-endian.
var (
	Float32 Serializer[float32] = float32Codec{}
	Float64 Serializer[float64] = float64Codec{}
)

func (float32Codec) Serialize(b *buffer.Buffer, v float32) error {
	return Uint32.Serialize(b, math.Float32bits(v))
}

func (float32Codec) Deserialize(b *buffer.Buffer) (float32, error) {
	u, err := Uint32.Deserialize(b)
	if err != nil {
		return 0, err
	}

	return math.Float32frombits(u), nil
}

func (float64Codec) Serialize(b *buffer.Buffer, v float64) error {
	return Uint64.Serialize(b, math.Float64bits(v))
}

func (float64Codec) Deserialize(b *buffer.Buffer) (float64, error) {
	u, err := Uint64.Deserialize(b)
	if err != nil {
		return 0, err
	}

	return math.Float64frombits(u), nil
}
