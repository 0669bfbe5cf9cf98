// Package bytecodec provides composable single-pass byte transforms over a shared
// buffer type, a stream adapter that runs them on an io.ReadWriter, and a typed
// serialization layer for building wire formats.
//
// # Core Features
//
//   - buffer.Buffer: a growable byte queue with put/get ends and unget support
//   - encoder.Encoder: a stateful transform that accepts arbitrarily split input
//   - encoder.Chain: stages applied left to right, with per-stage ownership
//   - escape: backslash escaping of newline, backspace and backslash
//   - compress: checksummed block compression (None, Zstd, S2, LZ4)
//   - stream.Stream: an io.ReadWriteCloser that encodes through chains
//   - serial: big-endian typed serialization with atomic underflow handling
//
// # Basic Usage
//
// Escaping chunks as they arrive:
//
//	chain, _ := bytecodec.NewEscapeChain()
//	out, _ := encoder.ProcessString(chain, "line one\n") // `line one\n`
//
// Escaping and compressing everything written to a connection:
//
//	s, _ := bytecodec.NewStream(conn, stream.WithAutoFlush(true))
//	comp, _ := bytecodec.NewCompressor(format.CompressionS2)
//	s.WriteChain().Append(escape.NewEncoder(), true)
//	s.WriteChain().Append(comp, true)
//	defer s.Close()
//
// Serializing typed values:
//
//	data, _ := bytecodec.Marshal(serial.List(serial.String), []string{"a", "b"})
//	names, _ := bytecodec.Unmarshal(serial.List(serial.String), data)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the sub-packages for
// the most common use cases. For fine-grained control use them directly.
package bytecodec

import (
	"io"

	"github.com/arloliu/bytecodec/compress"
	"github.com/arloliu/bytecodec/encoder"
	"github.com/arloliu/bytecodec/escape"
	"github.com/arloliu/bytecodec/format"
	"github.com/arloliu/bytecodec/internal/hash"
	"github.com/arloliu/bytecodec/serial"
	"github.com/arloliu/bytecodec/stream"
)

// NewChain creates an empty encoder chain.
//
// Example:
//
//	chain, err := bytecodec.NewChain(encoder.WithName("outbound"))
func NewChain(opts ...encoder.ChainOption) (*encoder.Chain, error) {
	return encoder.NewChain(opts...)
}

// NewEscapeChain creates a chain holding one owned escaping stage.
func NewEscapeChain(opts ...encoder.ChainOption) (*encoder.Chain, error) {
	chain, err := encoder.NewChain(opts...)
	if err != nil {
		return nil, err
	}
	chain.Append(escape.NewEncoder(), true)

	return chain, nil
}

// NewUnescapeChain creates a chain holding one owned unescaping stage.
func NewUnescapeChain(opts ...encoder.ChainOption) (*encoder.Chain, error) {
	chain, err := encoder.NewChain(opts...)
	if err != nil {
		return nil, err
	}
	chain.Append(escape.NewDecoder(), true)

	return chain, nil
}

// NewCompressor creates a block compression stage for the given codec.
//
// Parameters:
//   - compressionType: Codec of the frames (None, Zstd, S2, or LZ4)
//   - opts: Optional configuration (compress.WithBlockSize, compress.WithEncoderLogger)
//
// Returns:
//   - *compress.BlockEncoder: The created stage
//   - error: ErrInvalidCompression or an option error
func NewCompressor(compressionType format.CompressionType, opts ...compress.EncoderOption) (*compress.BlockEncoder, error) {
	codec, err := compress.CreateCodec(compressionType, "block")
	if err != nil {
		return nil, err
	}

	return compress.NewBlockEncoder(codec, opts...)
}

// NewDecompressor creates a block decompression stage that reads frames of any codec.
func NewDecompressor(opts ...compress.DecoderOption) (*compress.BlockDecoder, error) {
	return compress.NewBlockDecoder(opts...)
}

// NewStream wraps ch in a stream with empty chains.
func NewStream(ch io.ReadWriter, opts ...stream.Option) (*stream.Stream, error) {
	return stream.New(ch, opts...)
}

// Escape returns data with newline, backspace and backslash escaped.
func Escape(data []byte) []byte {
	return escape.Escape(data)
}

// Unescape reverses Escape.
func Unescape(data []byte) []byte {
	return escape.Unescape(data)
}

// Marshal serializes v with s.
func Marshal[T any](s serial.Serializer[T], v T) ([]byte, error) {
	return serial.Marshal(s, v)
}

// Unmarshal deserializes exactly one value from data with s.
func Unmarshal[T any](s serial.Serializer[T], data []byte) (T, error) {
	return serial.Unmarshal(s, data)
}

// Checksum returns the xxHash64 that frame headers record for a block.
func Checksum(data []byte) uint64 {
	return hash.Checksum(data)
}
