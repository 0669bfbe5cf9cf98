package compress

import (
	"fmt"

	"github.com/arloliu/bytecodec/errs"
	"github.com/arloliu/bytecodec/format"
)

// NoOpCompressor frames blocks without compressing them. The frames still carry
// a checksum, so a NoOp block stage is a cheap integrity layer.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation compressor.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

func (c NoOpCompressor) Type() format.CompressionType {
	return format.CompressionNone
}

// Compress returns the input slice as-is, without copying.
//
// Note: The returned slice shares the same underlying memory as the input.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the input slice as-is, without copying.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

func (c NoOpCompressor) DecompressBounded(data []byte, limit int) ([]byte, error) {
	if len(data) > limit {
		return nil, fmt.Errorf("%w: stored block of %d bytes, limit %d", errs.ErrFrameTooLarge, len(data), limit)
	}

	return data, nil
}
