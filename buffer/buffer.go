// Package buffer provides the growable byte container every bytecodec stage reads from
// and writes to.
//
// A Buffer is a byte sequence with an implicit read cursor. Writes append after the
// last byte, consuming reads advance the cursor, and Peek inspects bytes without
// moving it. Consumed bytes stay retained until the next compaction so that Unget
// can put them back, which lets decoders roll back a partially read value.
//
// # Contract
//
// Get, GetByte, Merge and Unget have preconditions (enough unread bytes, enough
// consumed bytes). Violating them is a programming error and panics; check Avail or
// Ungettable first when the amount of input is not known.
//
// # Thread Safety
//
// Buffer is not safe for concurrent use.
package buffer

import (
	"io"

	"github.com/arloliu/bytecodec/internal/pool"
)

// Buffer is a growable byte container with consuming and non-consuming reads.
//
// The zero value is an empty buffer ready to use. Storage is taken from an internal
// pool on first write and can be handed back with Release.
type Buffer struct {
	bb  *pool.ByteBuffer
	off int // read cursor into bb.B
}

var (
	_ io.Reader     = (*Buffer)(nil)
	_ io.Writer     = (*Buffer)(nil)
	_ io.ByteReader = (*Buffer)(nil)
	_ io.ByteWriter = (*Buffer)(nil)
	_ io.WriterTo   = (*Buffer)(nil)
)

// New creates an empty buffer able to hold at least capacity bytes without growing.
func New(capacity int) *Buffer {
	if capacity <= pool.BufferDefaultSize {
		return &Buffer{bb: pool.GetBuffer()}
	}

	return &Buffer{bb: pool.NewByteBuffer(capacity)}
}

// NewFromBytes creates a buffer holding a copy of data as unread bytes.
func NewFromBytes(data []byte) *Buffer {
	b := New(len(data))
	b.Put(data)

	return b
}

// NewFromString creates a buffer holding s as unread bytes.
func NewFromString(s string) *Buffer {
	b := New(len(s))
	b.PutString(s)

	return b
}

func (b *Buffer) storage() *pool.ByteBuffer {
	if b.bb == nil {
		b.bb = pool.GetBuffer()
	}

	return b.bb
}

// Avail returns the number of unread bytes.
func (b *Buffer) Avail() int {
	if b.bb == nil {
		return 0
	}

	return len(b.bb.B) - b.off
}

// Ungettable returns how many consumed bytes are still retained and may be
// re-queued with Unget.
func (b *Buffer) Ungettable() int {
	return b.off
}

// Put appends data after the last unread byte.
func (b *Buffer) Put(data []byte) {
	if len(data) == 0 {
		return
	}

	bb := b.storage()
	b.reserve(bb, len(data))
	bb.MustWrite(data)
}

// PutByte appends a single byte.
func (b *Buffer) PutByte(c byte) {
	bb := b.storage()
	b.reserve(bb, 1)
	bb.MustWriteByte(c)
}

// PutString appends the bytes of s.
func (b *Buffer) PutString(s string) {
	if len(s) == 0 {
		return
	}

	bb := b.storage()
	b.reserve(bb, len(s))
	bb.B = append(bb.B, s...)
}

// reserve makes room for n more bytes. When the consumed prefix is at least as
// large as the unread region and growing would otherwise be required, the
// consumed prefix is dropped instead, which also drops the ability to Unget it.
func (b *Buffer) reserve(bb *pool.ByteBuffer, n int) {
	if cap(bb.B)-len(bb.B) >= n {
		return
	}

	if b.off > 0 && b.off >= len(bb.B)-b.off {
		bb.Discard(b.off)
		b.off = 0
	}

	bb.Grow(n)
}

// Get consumes and returns exactly n bytes.
//
// The returned slice aliases the buffer storage and is only valid until the next
// write to the buffer. Panics if Avail() < n.
func (b *Buffer) Get(n int) []byte {
	if n < 0 || n > b.Avail() {
		panic("buffer: Get beyond available bytes")
	}
	if n == 0 {
		return nil
	}

	p := b.bb.B[b.off : b.off+n : b.off+n]
	b.off += n

	return p
}

// GetByte consumes and returns one byte. Panics if the buffer is empty.
func (b *Buffer) GetByte() byte {
	if b.Avail() < 1 {
		panic("buffer: GetByte on empty buffer")
	}

	c := b.bb.B[b.off]
	b.off++

	return c
}

// Peek returns n bytes starting offset bytes after the read cursor without
// consuming them. A negative offset reaches back into the ungettable region.
//
// The returned slice aliases the buffer storage and must not be modified.
// Panics if the requested range is not retained.
func (b *Buffer) Peek(offset, n int) []byte {
	if n < 0 || offset < -b.off || offset+n > b.Avail() {
		panic("buffer: Peek out of range")
	}
	if n == 0 {
		return nil
	}

	start := b.off + offset

	return b.bb.B[start : start+n : start+n]
}

// Unget re-queues the last n consumed bytes so they are read again.
// Panics if n > Ungettable().
func (b *Buffer) Unget(n int) {
	if n < 0 || n > b.off {
		panic("buffer: Unget beyond consumed bytes")
	}

	b.off -= n
}

// Unput removes the last n unread bytes, undoing the most recent writes.
// Panics if n > Avail().
func (b *Buffer) Unput(n int) {
	if n < 0 || n > b.Avail() {
		panic("buffer: Unput beyond available bytes")
	}
	if n == 0 {
		return
	}

	b.bb.B = b.bb.B[:len(b.bb.B)-n]
}

// Skip consumes n bytes without returning them. Panics if Avail() < n.
func (b *Buffer) Skip(n int) {
	if n < 0 || n > b.Avail() {
		panic("buffer: Skip beyond available bytes")
	}

	b.off += n
}

// Merge moves n unread bytes from other into b. The bytes are consumed from
// other and appended to b with a single copy. Panics if other.Avail() < n.
func (b *Buffer) Merge(other *Buffer, n int) {
	if n < 0 || n > other.Avail() {
		panic("buffer: Merge beyond available bytes")
	}
	if n == 0 {
		return
	}

	b.Put(other.bb.B[other.off : other.off+n])
	other.off += n
}

// MergeAll moves every unread byte of other into b.
func (b *Buffer) MergeAll(other *Buffer) {
	b.Merge(other, other.Avail())
}

// IndexByte returns the offset of the first unread occurrence of c, or -1.
func (b *Buffer) IndexByte(c byte) int {
	for i, v := range b.Bytes() {
		if v == c {
			return i
		}
	}

	return -1
}

// Bytes returns the unread bytes without consuming them.
// The returned slice aliases the buffer storage.
func (b *Buffer) Bytes() []byte {
	if b.bb == nil {
		return nil
	}

	return b.bb.B[b.off:]
}

// String returns the unread bytes as a string without consuming them.
func (b *Buffer) String() string {
	return string(b.Bytes())
}

// Drain consumes all unread bytes and returns a copy of them.
func (b *Buffer) Drain() []byte {
	n := b.Avail()
	if n == 0 {
		return []byte{}
	}

	out := make([]byte, n)
	copy(out, b.Get(n))

	return out
}

// DrainString consumes all unread bytes and returns them as a string.
func (b *Buffer) DrainString() string {
	return string(b.Get(b.Avail()))
}

// Zap discards all bytes, read and unread, keeping the storage.
func (b *Buffer) Zap() {
	if b.bb != nil {
		b.bb.Reset()
	}
	b.off = 0
}

// Release empties the buffer and returns its storage to the pool.
// The buffer remains usable and takes fresh storage on the next write.
func (b *Buffer) Release() {
	if b.bb != nil {
		pool.PutBuffer(b.bb)
		b.bb = nil
	}
	b.off = 0
}

// Read implements io.Reader by consuming up to len(p) bytes.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.Avail() == 0 {
		if len(p) == 0 {
			return 0, nil
		}

		return 0, io.EOF
	}

	n := min(len(p), b.Avail())
	copy(p, b.Get(n))

	return n, nil
}

// ReadByte implements io.ByteReader.
func (b *Buffer) ReadByte() (byte, error) {
	if b.Avail() == 0 {
		return 0, io.EOF
	}

	return b.GetByte(), nil
}

// Write implements io.Writer. It always succeeds.
func (b *Buffer) Write(p []byte) (int, error) {
	b.Put(p)
	return len(p), nil
}

// WriteByte implements io.ByteWriter. It always succeeds.
func (b *Buffer) WriteByte(c byte) error {
	b.PutByte(c)
	return nil
}

// WriteString appends s. It always succeeds.
func (b *Buffer) WriteString(s string) (int, error) {
	b.PutString(s)
	return len(s), nil
}

// WriteTo implements io.WriterTo. Bytes accepted by w are consumed; on a short
// write the rest stays unread.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	if b.Avail() == 0 {
		return 0, nil
	}

	n, err := w.Write(b.Bytes())
	b.off += n
	if err == nil && b.Avail() > 0 {
		err = io.ErrShortWrite
	}

	return int64(n), err
}

// Fill performs a single Read of at most limit bytes from r and appends the result.
func (b *Buffer) Fill(r io.Reader, limit int) (int, error) {
	if limit <= 0 {
		return 0, nil
	}

	bb := b.storage()
	b.reserve(bb, limit)
	start := len(bb.B)
	n, err := r.Read(bb.B[start : start+limit])
	bb.B = bb.B[:start+n]

	return n, err
}
