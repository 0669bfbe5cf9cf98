package encoder

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/bytecodec/buffer"
	"github.com/arloliu/bytecodec/errs"
)

// holdLast retains the last byte of every Encode call until the next call or Flush,
// which makes it a minimal stateful stage for cascade tests.
type holdLast struct {
	Status
	pending []byte
	closed  int
}

func (h *holdLast) Encode(in, out *buffer.Buffer) error {
	if err := h.Check(); err != nil {
		return err
	}
	if in.Avail() == 0 {
		return nil
	}
	out.Put(h.pending)
	data := in.Get(in.Avail())
	out.Put(data[:len(data)-1])
	h.pending = []byte{data[len(data)-1]}

	return nil
}

func (h *holdLast) Flush(out *buffer.Buffer) error {
	if err := h.Check(); err != nil {
		return err
	}
	out.Put(h.pending)
	h.pending = nil

	return nil
}

func (h *holdLast) Finish(out *buffer.Buffer) error {
	if err := h.Flush(out); err != nil {
		return err
	}
	h.MarkFinished()

	return nil
}

func (h *holdLast) Reset() error {
	h.pending = nil
	h.Clear()

	return nil
}

func (h *holdLast) Close() error {
	h.closed++
	return nil
}

func newTestChain(t *testing.T) *Chain {
	t.Helper()
	c, err := NewChain(WithName("test"), WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	return c
}

func TestChain_Empty(t *testing.T) {
	c := newTestChain(t)

	out, err := ProcessString(c, "unchanged")
	require.NoError(t, err)
	require.Equal(t, "unchanged", out)
	require.Equal(t, "test", c.Name())
	require.Zero(t, c.Len())
}

func TestChain_OrderLeftToRight(t *testing.T) {
	c := newTestChain(t)
	wrap := func(l, r string) *Func {
		return NewFunc(func(in, out *buffer.Buffer) error {
			out.PutString(l)
			out.MergeAll(in)
			out.PutString(r)

			return nil
		})
	}

	c.Append(wrap("(", ")"), true)
	c.Append(wrap("[", "]"), true)
	c.Prepend(upperFunc(), true)

	out, err := ProcessString(c, "abc")
	require.NoError(t, err)
	require.Equal(t, "[(ABC)]", out)
	require.Equal(t, 3, c.Len())
}

func TestChain_FlushCascades(t *testing.T) {
	c := newTestChain(t)
	first := &holdLast{}
	second := &holdLast{}
	c.Append(first, false)
	c.Append(second, false)

	in := buffer.NewFromString("abcd")
	out := buffer.New(0)

	require.NoError(t, c.Encode(in, out))
	require.Equal(t, "ab", out.String(), "each stage holds one byte back")

	require.NoError(t, c.Flush(out))
	require.Equal(t, "abcd", out.String())

	in.PutString("ef")
	require.NoError(t, c.Encode(in, out))
	require.NoError(t, c.Finish(out))
	require.Equal(t, "abcdef", out.String())
	require.True(t, c.IsFinished())
	require.True(t, first.IsFinished())
	require.True(t, second.IsFinished())

	require.ErrorIs(t, c.Encode(in, out), errs.ErrFinished)
	require.NoError(t, c.Reset())
	require.False(t, first.IsFinished())
}

func TestChain_StopsOnFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	c := newTestChain(t)
	after := NewPassthrough()
	c.Append(NewPassthrough(), true)
	c.Append(NewFunc(func(in, out *buffer.Buffer) error { return boom }), true)
	c.Append(after, false)

	_, err := ProcessString(c, "data")
	require.ErrorIs(t, err, errs.ErrStageFailed)
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "test stage 1")
	require.Zero(t, after.Total(), "stages after the failing one must not run")

	_, err = ProcessString(c, "more")
	require.ErrorIs(t, err, errs.ErrEncoderFailed)
	require.Error(t, c.Err())

	require.NoError(t, c.Reset())
	require.NoError(t, c.Err())
}

func TestChain_OwnershipOnClose(t *testing.T) {
	c := newTestChain(t)
	owned := &holdLast{}
	borrowed := &holdLast{}
	c.Append(owned, true)
	c.Append(borrowed, false)

	require.True(t, c.IsOwned(owned))
	require.False(t, c.IsOwned(borrowed))
	require.False(t, c.IsOwned(NewNull()))

	require.NoError(t, c.Close())
	require.Equal(t, 1, owned.closed)
	require.Zero(t, borrowed.closed, "borrowed stages are never released by the chain")
	require.Zero(t, c.Len())

	out, err := ProcessString(borrowed, "still usable")
	require.NoError(t, err)
	require.Equal(t, "still usable", out)
}

type failingCloser struct {
	Null
	err error
}

func (f *failingCloser) Close() error { return f.err }

func TestChain_CloseAggregatesErrors(t *testing.T) {
	c := newTestChain(t)
	errA := errors.New("a")
	errB := errors.New("b")
	c.Append(&failingCloser{err: errA}, true)
	c.Append(&failingCloser{err: errB}, true)
	c.Append(&failingCloser{err: errors.New("ignored")}, false)

	err := c.Close()
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errB)
	require.NotContains(t, err.Error(), "ignored")
}

func TestChain_Unlink(t *testing.T) {
	c := newTestChain(t)
	owned := &holdLast{}
	upper := upperFunc()
	c.Append(owned, true)
	c.Append(upper, false)

	in := buffer.NewFromString("xyz")
	out := buffer.New(0)
	require.NoError(t, c.Encode(in, out))
	require.Equal(t, "XY", out.String())

	found, err := c.Unlink(owned)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 1, owned.closed)
	require.Equal(t, []Encoder{upper}, c.Stages())

	found, err = c.Unlink(owned)
	require.NoError(t, err)
	require.False(t, found)

	in.PutString("q")
	require.NoError(t, c.Encode(in, out))
	require.Equal(t, "XYQ", out.String())
}

func TestChain_UnlinkKeepsQueuedOutput(t *testing.T) {
	c := newTestChain(t)
	first := NewPassthrough()
	second := &holdLast{}
	third := upperFunc()
	c.Append(first, false)
	c.Append(second, false)
	c.Append(third, false)

	in := buffer.NewFromString("ab")
	out := buffer.New(0)
	require.NoError(t, c.Encode(in, out))
	require.Equal(t, "A", out.String())

	// the held byte of the new first stage still reaches the last stage
	_, err := c.Unlink(first)
	require.NoError(t, err)
	require.NoError(t, c.Flush(out))
	require.Equal(t, "AB", out.String())
}

func TestChain_Nested(t *testing.T) {
	inner := newTestChain(t)
	inner.Append(upperFunc(), true)

	outer := newTestChain(t)
	held := &holdLast{}
	outer.Append(held, true)
	outer.Append(inner, true)

	out, err := ProcessString(outer, "nested")
	require.NoError(t, err)
	require.Equal(t, "NESTED", out)

	require.NoError(t, outer.Close())
	require.Equal(t, 1, held.closed)
	require.Zero(t, inner.Len(), "owned nested chains are closed recursively")
}

func TestChain_Logging(t *testing.T) {
	var logs bytes.Buffer
	c, err := NewChain(WithName("logged"), WithLogger(zerolog.New(&logs).Level(zerolog.DebugLevel)))
	require.NoError(t, err)

	c.Append(NewFunc(func(in, out *buffer.Buffer) error { return errors.New("bad input") }), true)
	_, err = ProcessString(c, "x")
	require.Error(t, err)

	require.Contains(t, logs.String(), `"chain":"logged"`)
	require.Contains(t, logs.String(), "stage failed")
	require.Contains(t, logs.String(), "bad input")
}
