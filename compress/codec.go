package compress

import (
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/bytecodec/errs"
	"github.com/arloliu/bytecodec/format"
)

// Compressor compresses one block at a time.
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// Memory management:
	//   - Returned slice may alias the input (NoOp) and must be copied before the input is reused
	//   - Input slice is not modified
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor.
//
// Example:
//
//	codec, _ := compress.GetCodec(format.CompressionS2)
//	block, err := codec.Decompress(payload)
//	if err != nil {
//	    return fmt.Errorf("decompression failed: %w", err)
//	}
//
// Thread Safety: the built-in implementations are safe for concurrent use.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original block.
	//
	// Error conditions:
	//   - Returns error if input data is corrupted or invalid
	//   - Returns error if data was compressed with a different algorithm
	Decompress(data []byte) ([]byte, error)
}

// BoundedDecompressor decompresses a block whose original size is known up front.
type BoundedDecompressor interface {
	// DecompressBounded decompresses data and fails with errs.ErrFrameTooLarge as
	// soon as the output would exceed limit bytes. At most limit bytes are allocated
	// for the output.
	DecompressBounded(data []byte, limit int) ([]byte, error)
}

// Codec combines both directions and reports which algorithm it implements. The
// type is recorded in every frame header so a decoder can pick the matching codec.
type Codec interface {
	Compressor
	Decompressor
	BoundedDecompressor
	Type() format.CompressionType
}

// readBounded reads r to the end into a buffer of at most limit bytes.
func readBounded(r io.Reader, limit int) ([]byte, error) {
	out := make([]byte, limit+1)
	n, err := io.ReadFull(r, out)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: block decompresses beyond %d bytes", errs.ErrFrameTooLarge, limit)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return out[:n], nil
	default:
		return nil, err
	}
}

// CompressionStats accumulates the work done by a block stage.
type CompressionStats struct {
	// Algorithm identifies the compression algorithm used
	Algorithm format.CompressionType

	// Frames is the number of frames written or read
	Frames int64

	// OriginalSize is the size of the blocks before compression
	OriginalSize int64

	// CompressedSize is the size of the payloads after compression, headers excluded
	CompressedSize int64

	// CompressionTimeNs is the time spent compressing
	CompressionTimeNs int64

	// DecompressionTimeNs is the time spent decompressing
	DecompressionTimeNs int64
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Values less than 1.0 indicate successful compression.
// Values greater than 1.0 indicate the payloads grew, which is typical for
// random or already-compressed input.
//
// Returns:
//   - float64: Compression ratio (0.0 if original size is zero)
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage.
//
// Returns:
//   - float64: Space savings percentage, negative when payloads grew
func (s CompressionStats) SpaceSavings() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return (1.0 - s.CompressionRatio()) * 100.0
}

// CreateCodec is a factory function that creates a Codec based on the specified compression type.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, or LZ4)
//   - target: Description of target usage (for error messages)
//
// Returns:
//   - Codec: Codec instance for the specified type
//   - error: ErrInvalidCompression for an unknown type
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("%w: %s compression %s", errs.ErrInvalidCompression, target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrInvalidCompression, compressionType)
}
