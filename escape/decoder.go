package escape

import (
	"github.com/arloliu/bytecodec/buffer"
	"github.com/arloliu/bytecodec/encoder"
)

// State is the position of the Decoder state machine.
type State uint8

const (
	// StatePassthrough copies bytes until a backslash arrives.
	StatePassthrough State = iota
	// StatePendingEscape holds a backslash until the following byte arrives.
	StatePendingEscape
)

func (s State) String() string {
	switch s {
	case StatePassthrough:
		return "passthrough"
	case StatePendingEscape:
		return "pending-escape"
	default:
		return "unknown"
	}
}

// Decoder reverses the Encoder. Its only cross-call state is whether a backslash
// is pending.
type Decoder struct {
	encoder.Status
	state State
}

var _ encoder.Encoder = (*Decoder)(nil)

// NewDecoder creates a new Decoder in StatePassthrough.
func NewDecoder() *Decoder {
	return &Decoder{state: StatePassthrough}
}

// State returns the current state of the decoder.
func (d *Decoder) State() State {
	return d.state
}

// step feeds one byte through the state machine and appends the produced bytes.
func (d *Decoder) step(out []byte, c byte) []byte {
	switch d.state {
	case StatePendingEscape:
		d.state = StatePassthrough
		if orig, ok := Original(c); ok {
			return append(out, orig)
		}

		return append(out, Backslash, c)
	default:
		if c == Backslash {
			d.state = StatePendingEscape
			return out
		}

		return append(out, c)
	}
}

// drain appends a pending backslash literally and returns to StatePassthrough.
func (d *Decoder) drain(out []byte) []byte {
	if d.state == StatePendingEscape {
		d.state = StatePassthrough
		return append(out, Backslash)
	}

	return out
}

// Encode decodes all of in into out. A trailing backslash is retained until the
// next call.
func (d *Decoder) Encode(in, out *buffer.Buffer) error {
	if err := d.Check(); err != nil {
		return err
	}

	data := in.Get(in.Avail())
	start := 0
	for i, c := range data {
		if d.state == StatePassthrough && c != Backslash {
			continue
		}
		out.Put(data[start:i])
		start = i + 1

		var pair [2]byte
		out.Put(d.step(pair[:0], c))
	}
	out.Put(data[start:])

	return nil
}

// Flush emits a pending backslash literally.
func (d *Decoder) Flush(out *buffer.Buffer) error {
	if err := d.Check(); err != nil {
		return err
	}

	if d.state == StatePendingEscape {
		out.PutByte(Backslash)
		d.state = StatePassthrough
	}

	return nil
}

// Finish flushes and ends the stream.
func (d *Decoder) Finish(out *buffer.Buffer) error {
	if err := d.Flush(out); err != nil {
		return err
	}
	d.MarkFinished()

	return nil
}

// Reset drops a pending backslash and returns to StatePassthrough.
func (d *Decoder) Reset() error {
	d.state = StatePassthrough
	d.Clear()

	return nil
}
