// Package compress provides block codecs and the block compression stages that
// plug them into an encoder chain.
//
// # Overview
//
// A Codec compresses a whole block in one call. The supported algorithms are:
//   - None: No compression, frames still carry a checksum
//   - Zstd: Best ratio, moderate speed
//   - S2: Balanced compression and speed
//   - LZ4: Fastest decompression, moderate ratio
//
// # Block Stages
//
// BlockEncoder and BlockDecoder are encoder.Encoder stages. The encoder groups the
// byte stream into blocks and writes each block as a frame (see package section);
// the decoder reverses it and verifies every block against its xxHash64.
//
//	codec, _ := compress.GetCodec(format.CompressionS2)
//	enc, _ := compress.NewBlockEncoder(codec, compress.WithBlockSize(16*1024))
//	dec, _ := compress.NewBlockDecoder()
//
//	chain, _ := encoder.NewChain()
//	chain.Append(escape.NewEncoder(), true)
//	chain.Append(enc, true)
//
// Frame boundaries follow Flush calls, so a Flush after every message trades ratio
// for latency. Input is never held back longer than the next Flush.
//
// # Zstd Implementations
//
// The default build uses klauspost/compress/zstd. Building with cgo and the
// gozstd tag swaps in valyala/gozstd:
//
//	go build -tags gozstd ./...
//
// # Thread Safety
//
// Codecs are safe for concurrent use. Block stages follow the encoder contract and
// must not be shared between goroutines.
//
// # Error Handling
//
// Decoding fails with errs.ErrInvalidFrameMagic for input that is not a frame,
// errs.ErrChecksumMismatch for a corrupted block, errs.ErrFrameTooLarge for frames
// above the configured limit and errs.ErrTruncatedFrame when Finish finds an
// incomplete frame. Codec errors are wrapped with the algorithm name.
package compress
