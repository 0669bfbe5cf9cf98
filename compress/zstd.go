package compress

import "github.com/arloliu/bytecodec/format"

// ZstdCompressor provides Zstandard block compression. It gives the best ratio of
// the built-in codecs and suits links where bandwidth costs more than CPU.
//
// The default build uses the pure-Go klauspost/compress implementation. Building
// with cgo and the gozstd tag switches to the libzstd binding from valyala/gozstd;
// both produce standard zstd frames, so either side can decode the other.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Example:
//
//	compressor := NewZstdCompressor()
//	compressed, err := compressor.Compress(data)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

func (c ZstdCompressor) Type() format.CompressionType {
	return format.CompressionZstd
}
