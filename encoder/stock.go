package encoder

import (
	"github.com/arloliu/bytecodec/buffer"
)

// Passthrough copies its input unchanged and counts the bytes it has seen.
type Passthrough struct {
	Status
	total int64
}

var _ Encoder = (*Passthrough)(nil)

// NewPassthrough creates a new Passthrough encoder.
func NewPassthrough() *Passthrough {
	return &Passthrough{}
}

func (p *Passthrough) Encode(in, out *buffer.Buffer) error {
	if err := p.Check(); err != nil {
		return err
	}

	p.total += int64(in.Avail())
	out.MergeAll(in)

	return nil
}

func (p *Passthrough) Flush(*buffer.Buffer) error {
	return p.Check()
}

func (p *Passthrough) Finish(*buffer.Buffer) error {
	if err := p.Check(); err != nil {
		return err
	}
	p.MarkFinished()

	return nil
}

// Reset clears the state but keeps the byte count; use ResetTotal to zero it.
func (p *Passthrough) Reset() error {
	p.Clear()
	return nil
}

// Total returns the number of bytes passed through since creation or ResetTotal.
func (p *Passthrough) Total() int64 {
	return p.total
}

// ResetTotal zeroes the byte count.
func (p *Passthrough) ResetTotal() {
	p.total = 0
}

// Null consumes and discards all input.
type Null struct {
	Status
}

var _ Encoder = (*Null)(nil)

// NewNull creates a new Null encoder.
func NewNull() *Null {
	return &Null{}
}

func (n *Null) Encode(in, _ *buffer.Buffer) error {
	if err := n.Check(); err != nil {
		return err
	}
	in.Skip(in.Avail())

	return nil
}

func (n *Null) Flush(*buffer.Buffer) error {
	return n.Check()
}

func (n *Null) Finish(*buffer.Buffer) error {
	if err := n.Check(); err != nil {
		return err
	}
	n.MarkFinished()

	return nil
}

func (n *Null) Reset() error {
	n.Clear()
	return nil
}

// TransformFunc transforms all of in into out.
type TransformFunc func(in, out *buffer.Buffer) error

// Func is a stateless Encoder backed by a TransformFunc.
//
// Because it keeps no state across calls, Flush and Finish emit nothing.
type Func struct {
	Status
	fn TransformFunc
}

var _ Encoder = (*Func)(nil)

// NewFunc creates an Encoder that calls fn for every Encode.
func NewFunc(fn TransformFunc) *Func {
	return &Func{fn: fn}
}

func (f *Func) Encode(in, out *buffer.Buffer) error {
	if err := f.Check(); err != nil {
		return err
	}
	if err := f.fn(in, out); err != nil {
		return f.Fail(err)
	}

	return nil
}

func (f *Func) Flush(*buffer.Buffer) error {
	return f.Check()
}

func (f *Func) Finish(*buffer.Buffer) error {
	if err := f.Check(); err != nil {
		return err
	}
	f.MarkFinished()

	return nil
}

func (f *Func) Reset() error {
	f.Clear()
	return nil
}
