package serial

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/bytecodec/buffer"
	"github.com/arloliu/bytecodec/errs"
)

type point struct {
	X, Y  int32
	Label string
}

func (p *point) SerializeTo(b *buffer.Buffer) error {
	_ = Int32.Serialize(b, p.X)
	_ = Int32.Serialize(b, p.Y)

	return String.Serialize(b, p.Label)
}

func (p *point) DeserializeFrom(b *buffer.Buffer) (err error) {
	if p.X, err = Int32.Deserialize(b); err != nil {
		return err
	}
	if p.Y, err = Int32.Deserialize(b); err != nil {
		return err
	}
	p.Label, err = String.Deserialize(b)

	return err
}

func TestObject_RoundTrip(t *testing.T) {
	s := Object[point]()

	roundTrip(t, s, point{X: -1, Y: 2, Label: "origin"})
	roundTrip(t, List(s), []point{{X: 1}, {Y: 2, Label: "b"}})
}

func TestObject_DeserializeRollsBack(t *testing.T) {
	s := Object[point]()
	full, err := Marshal(s, point{X: 5, Y: 6, Label: "lbl"})
	require.NoError(t, err)

	// both integers decode; the label has no terminator yet
	b := buffer.NewFromBytes(full[:len(full)-1])
	p, err := s.Deserialize(b)
	require.ErrorIs(t, err, errs.ErrUnderflow)
	require.Equal(t, point{}, p)
	require.Equal(t, len(full)-1, b.Avail())
}

func TestObject_SerializeRollsBack(t *testing.T) {
	b := buffer.New(0)

	err := Object[point]().Serialize(b, point{X: 1, Label: "a\x00b"})
	require.ErrorIs(t, err, errs.ErrEmbeddedZero)
	require.Zero(t, b.Avail(), "partially written integers are removed")
}

type failing struct{}

func (*failing) SerializeTo(*buffer.Buffer) error     { return errors.New("refused") }
func (*failing) DeserializeFrom(*buffer.Buffer) error { return errors.New("refused") }

func TestObject_PropagatesErrors(t *testing.T) {
	_, err := Marshal(Object[failing](), failing{})
	require.EqualError(t, err, "refused")

	_, err = Unmarshal(Object[failing](), nil)
	require.EqualError(t, err, "refused")
}

func ExampleList() {
	data, _ := Marshal(List(Uint16), []uint16{1, 2})
	got, _ := Unmarshal(List(Uint16), data)
	fmt.Println(len(data), got)
	// Output: 12 [1 2]
}
