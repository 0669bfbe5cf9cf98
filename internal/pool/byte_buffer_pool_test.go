package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, 1024, bb.Cap())
}

func TestByteBuffer_MustWrite(t *testing.T) {
	bb := NewByteBuffer(BufferDefaultSize)

	bb.MustWrite([]byte("hello"))
	bb.MustWriteByte(' ')
	bb.MustWrite([]byte("world"))
	bb.MustWrite(nil)

	assert.Equal(t, []byte("hello world"), bb.Bytes())
}

func TestByteBuffer_Reset(t *testing.T) {
	bb := NewByteBuffer(BufferDefaultSize)
	bb.MustWrite([]byte("some data"))
	originalCap := bb.Cap()

	bb.Reset()

	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, originalCap, bb.Cap(), "Reset should preserve capacity")
}

func TestByteBuffer_Discard(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want string
	}{
		{"none", 0, "abcdef"},
		{"prefix", 2, "cdef"},
		{"all", 6, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bb := NewByteBuffer(16)
			bb.MustWrite([]byte("abcdef"))

			bb.Discard(tt.n)

			assert.Equal(t, tt.want, string(bb.Bytes()))
		})
	}
}

func TestByteBuffer_Discard_Invalid(t *testing.T) {
	bb := NewByteBuffer(16)
	bb.MustWrite([]byte("abc"))

	assert.Panics(t, func() { bb.Discard(4) })
	assert.Panics(t, func() { bb.Discard(-1) })
}

func TestByteBuffer_Grow(t *testing.T) {
	t.Run("sufficient capacity", func(t *testing.T) {
		bb := NewByteBuffer(BufferDefaultSize)
		originalCap := bb.Cap()

		bb.Grow(100)

		assert.Equal(t, originalCap, bb.Cap())
	})

	t.Run("small buffer grows by default size", func(t *testing.T) {
		bb := NewByteBuffer(BufferDefaultSize)
		bb.MustWrite(make([]byte, BufferDefaultSize))

		bb.Grow(1)

		assert.GreaterOrEqual(t, bb.Cap(), 2*BufferDefaultSize)
		assert.Equal(t, BufferDefaultSize, bb.Len())
	})

	t.Run("large request", func(t *testing.T) {
		bb := NewByteBuffer(BufferDefaultSize)
		bb.MustWrite(make([]byte, BufferDefaultSize))

		bb.Grow(BufferDefaultSize * 10)

		assert.GreaterOrEqual(t, bb.Cap(), BufferDefaultSize*11)
	})

	t.Run("preserves data", func(t *testing.T) {
		bb := NewByteBuffer(8)
		bb.MustWrite([]byte("keep me"))

		bb.Grow(BufferDefaultSize * 2)

		assert.Equal(t, "keep me", string(bb.Bytes()))
	})
}

func TestByteBufferPool_MaxThreshold(t *testing.T) {
	p := NewByteBufferPool(1024, 4096)

	bb := p.Get()
	bb.Grow(10000)
	require.Greater(t, bb.Cap(), 4096)
	p.Put(bb)

	bb2 := p.Get()
	assert.LessOrEqual(t, bb2.Cap(), 4096, "oversized buffers must not be pooled")
	assert.Equal(t, 0, bb2.Len())
}

func TestPool_ResetsOnPut(t *testing.T) {
	bb := GetBuffer()
	bb.MustWrite([]byte("sensitive data"))

	PutBuffer(bb)

	assert.Equal(t, 0, bb.Len(), "PutBuffer should reset the buffer")
	assert.NotPanics(t, func() { PutBuffer(nil) })
}

func TestFramePool(t *testing.T) {
	bb := GetFrameBuffer()
	require.NotNil(t, bb)
	assert.GreaterOrEqual(t, bb.Cap(), FrameDefaultSize)
	assert.Equal(t, 0, bb.Len())
	PutFrameBuffer(bb)
}

func TestPool_ConcurrentAccess(t *testing.T) {
	const numGoroutines = 50
	const numIterations = 500

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for range numGoroutines {
		go func() {
			defer wg.Done()
			for range numIterations {
				bb := GetBuffer()
				bb.MustWrite([]byte("data"))
				assert.Equal(t, 4, bb.Len())
				PutBuffer(bb)
			}
		}()
	}

	wg.Wait()
}
