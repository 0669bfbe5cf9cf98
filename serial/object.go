package serial

import "github.com/arloliu/bytecodec/buffer"

// Wire is implemented by user types that know their own wire form. Methods are
// called on a pointer so DeserializeFrom can fill the receiver.
//
//	type Point struct{ X, Y int32 }
//
//	func (p *Point) SerializeTo(b *buffer.Buffer) error {
//		_ = serial.Int32.Serialize(b, p.X)
//		return serial.Int32.Serialize(b, p.Y)
//	}
//
//	func (p *Point) DeserializeFrom(b *buffer.Buffer) (err error) {
//		if p.X, err = serial.Int32.Deserialize(b); err != nil {
//			return err
//		}
//		p.Y, err = serial.Int32.Deserialize(b)
//		return err
//	}
//
//	points := serial.List(serial.Object[Point]())
type Wire interface {
	SerializeTo(b *buffer.Buffer) error
	DeserializeFrom(b *buffer.Buffer) error
}

type object[T any, PT interface {
	*T
	Wire
}] struct{}

// Object adapts a type whose pointer implements Wire into a Serializer. The adapter
// makes the user type atomic: a failed Serialize or Deserialize leaves the buffer
// unchanged even when the methods themselves stop halfway.
//
// A type may have an empty wire form. Lists and maps of such values are limited to
// MaxZeroWidthCount elements once the announced count exceeds the remaining input.
func Object[T any, PT interface {
	*T
	Wire
}]() Serializer[T] {
	return object[T, PT]{}
}

func (object[T, PT]) Serialize(b *buffer.Buffer, v T) error {
	before := b.Avail()
	if err := PT(&v).SerializeTo(b); err != nil {
		truncate(b, before)
		return err
	}

	return nil
}

func (object[T, PT]) Deserialize(b *buffer.Buffer) (T, error) {
	var v T

	before := b.Avail()
	if err := PT(&v).DeserializeFrom(b); err != nil {
		rollback(b, before)

		var zero T
		return zero, err
	}

	return v, nil
}
