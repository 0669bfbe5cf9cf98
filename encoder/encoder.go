// Package encoder defines the single-pass streaming transform contract shared by every
// bytecodec stage, and the Chain that composes stages into one.
//
// # Contract
//
// An Encoder consumes bytes from an input buffer and appends transformed bytes to an
// output buffer. It may keep partial state between calls, for example a lookahead
// byte that cannot be translated until the next byte arrives.
//
//	enc := escape.NewDecoder()
//	in := buffer.NewFromString(`line\`)
//	out := buffer.New(0)
//	_ = enc.Encode(in, out) // out: "line", one backslash retained
//	in.PutString("n")
//	_ = enc.Encode(in, out) // out: "line\n"
//
// Flush emits retained partial state without declaring end of input. Finish flushes
// and declares end of input; afterwards Encode and Flush return errs.ErrFinished.
//
// An Encoder that returns an error from Encode, Flush or Finish enters a terminal
// failed state. Every later call returns errs.ErrEncoderFailed (wrapping the original
// error) until Reset succeeds.
//
// # Thread Safety
//
// Encoders are not reentrant. A single instance must not be used by two goroutines
// at the same time.
package encoder

import (
	"fmt"

	"github.com/arloliu/bytecodec/buffer"
	"github.com/arloliu/bytecodec/errs"
)

// Encoder is a stateful single-pass byte transform.
type Encoder interface {
	// Encode consumes zero or more bytes of in and appends the transformed bytes to out.
	// Bytes that cannot be transformed yet are either left in in or retained internally.
	Encode(in, out *buffer.Buffer) error

	// Flush appends any retained partial state to out without ending the stream.
	Flush(out *buffer.Buffer) error

	// Finish flushes and marks the end of the stream. Only Reset makes the encoder
	// usable again.
	Finish(out *buffer.Buffer) error

	// Reset discards all internal state and clears the failed and finished states.
	// Encoders that cannot be reused return errs.ErrResetUnsupported.
	Reset() error

	// Err returns the error that put the encoder into the failed state, or nil.
	Err() error

	// IsFinished reports whether Finish has completed.
	IsFinished() bool
}

// Status tracks the failed and finished states of an Encoder.
//
// Encoder implementations embed Status and call Check at the top of Encode, Flush
// and Finish:
//
//	func (e *MyEncoder) Encode(in, out *buffer.Buffer) error {
//		if err := e.Check(); err != nil {
//			return err
//		}
//		if err := e.transform(in, out); err != nil {
//			return e.Fail(err)
//		}
//
//		return nil
//	}
type Status struct {
	err      error
	finished bool
}

// Err returns the recorded failure, or nil.
func (s *Status) Err() error {
	return s.err
}

// IsFinished reports whether MarkFinished was called since the last Clear.
func (s *Status) IsFinished() bool {
	return s.finished
}

// Check returns an error if the encoder may not process more data.
func (s *Status) Check() error {
	if s.err != nil {
		return fmt.Errorf("%w: %w", errs.ErrEncoderFailed, s.err)
	}
	if s.finished {
		return errs.ErrFinished
	}

	return nil
}

// Fail records err as the terminal failure and returns it.
// The first recorded failure wins.
func (s *Status) Fail(err error) error {
	if s.err == nil {
		s.err = err
	}

	return err
}

// MarkFinished records that the stream has ended.
func (s *Status) MarkFinished() {
	s.finished = true
}

// Clear forgets the failed and finished states.
func (s *Status) Clear() {
	s.err = nil
	s.finished = false
}

// Process feeds data through e, flushes it, and returns the produced bytes.
//
// It is a convenience for one-shot transforms; the encoder keeps its state and may
// be used for further data afterwards.
func Process(e Encoder, data []byte) ([]byte, error) {
	in := buffer.NewFromBytes(data)
	defer in.Release()

	out := buffer.New(len(data))
	defer out.Release()

	if err := e.Encode(in, out); err != nil {
		return nil, err
	}
	if err := e.Flush(out); err != nil {
		return nil, err
	}

	return out.Drain(), nil
}

// ProcessString is Process for string input and output.
func ProcessString(e Encoder, s string) (string, error) {
	out, err := Process(e, []byte(s))
	if err != nil {
		return "", err
	}

	return string(out), nil
}
