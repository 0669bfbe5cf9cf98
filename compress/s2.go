package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/bytecodec/errs"
	"github.com/arloliu/bytecodec/format"
)

type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 compressor.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

func (c S2Compressor) Type() format.CompressionType {
	return format.CompressionS2
}

// Compress compresses the input data using S2 compression.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress decompresses the input data using S2 decompression.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}

// DecompressBounded reads the decoded length from the block preamble and rejects
// the block before decoding when it exceeds limit.
func (c S2Compressor) DecompressBounded(data []byte, limit int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, err
	}
	if n > limit {
		return nil, fmt.Errorf("%w: s2 block decodes to %d bytes, limit %d", errs.ErrFrameTooLarge, n, limit)
	}

	return s2.Decode(make([]byte, n), data)
}
