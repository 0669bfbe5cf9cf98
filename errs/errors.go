// Package errs defines the sentinel errors shared by every bytecodec package.
//
// Callers should match them with errors.Is; packages wrap them with additional
// context using fmt.Errorf("...: %w", err).
package errs

import "errors"

var (
	// ErrUnderflow is returned when a decode needs more bytes than the buffer holds.
	ErrUnderflow = errors.New("buffer underflow")
	// ErrEmbeddedZero is returned when serializing text that contains a zero byte.
	ErrEmbeddedZero = errors.New("text contains embedded zero byte")
	// ErrLengthOverflow is returned when a decoded size prefix does not fit in an int.
	ErrLengthOverflow = errors.New("length prefix overflows int")
)

var (
	// ErrFinished is returned when an encoder is used after Finish without Reset.
	ErrFinished = errors.New("encoder finished")
	// ErrEncoderFailed is returned when an encoder in the failed state is used without Reset.
	ErrEncoderFailed = errors.New("encoder failed")
	// ErrStageFailed wraps the error of the chain stage that failed.
	ErrStageFailed = errors.New("chain stage failed")
	// ErrResetUnsupported is returned by encoders that cannot be reused.
	ErrResetUnsupported = errors.New("encoder reset not supported")
)

var (
	ErrInvalidFrameMagic  = errors.New("invalid frame magic number")
	ErrInvalidHeaderSize  = errors.New("invalid frame header size")
	ErrTruncatedFrame     = errors.New("truncated frame")
	ErrChecksumMismatch   = errors.New("frame checksum mismatch")
	ErrFrameTooLarge      = errors.New("frame exceeds maximum size")
	ErrInvalidCompression = errors.New("invalid compression type")
	ErrUnknownStage       = errors.New("unknown pipeline stage")
	ErrStreamClosed       = errors.New("stream closed")
	ErrInvalidBlockSize   = errors.New("invalid block size")
	ErrInvalidMinReadSize = errors.New("invalid minimum read size")
)

// ErrTrailingData is returned by one-shot decoders when input remains after the value.
var ErrTrailingData = errors.New("trailing data after value")
