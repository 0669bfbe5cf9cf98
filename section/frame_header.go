package section

import (
	"fmt"

	"github.com/arloliu/bytecodec/endian"
	"github.com/arloliu/bytecodec/errs"
	"github.com/arloliu/bytecodec/format"
	"github.com/arloliu/bytecodec/internal/hash"
)

// FrameHeader is the fixed-size header in front of every compressed frame.
type FrameHeader struct {
	// RawLength is the size of the block before compression.
	RawLength uint32 // byte offset 2-5
	// PayloadLength is the size of the payload that follows the header.
	PayloadLength uint32 // byte offset 6-9
	// Checksum is the xxHash64 of the uncompressed block.
	Checksum uint64 // byte offset 10-17

	// Flag is a packed field for the compression type and magic number.
	Flag FrameFlag // byte offset 0-1
}

// NewFrameHeader creates the header describing payload, the compressed form of raw.
//
// Returns:
//   - FrameHeader: header with lengths and checksum filled in
//   - error: ErrFrameTooLarge if either length exceeds MaxFramePayload
func NewFrameHeader(compression format.CompressionType, raw, payload []byte) (FrameHeader, error) {
	if uint64(len(raw)) > MaxFramePayload || uint64(len(payload)) > MaxFramePayload {
		return FrameHeader{}, fmt.Errorf("%w: raw %d, payload %d bytes", errs.ErrFrameTooLarge, len(raw), len(payload))
	}

	return FrameHeader{
		Flag:          NewFrameFlag(compression),
		RawLength:     uint32(len(raw)),
		PayloadLength: uint32(len(payload)),
		Checksum:      hash.Checksum(raw),
	}, nil
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing header (must be exactly FrameHeaderSize bytes)
//
// Returns:
//   - error: ErrInvalidHeaderSize if data has the wrong size, or flag validation errors
func (h *FrameHeader) Parse(data []byte) error {
	if len(data) != FrameHeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	engine := endian.GetNetworkEngine()

	h.Flag.Options = engine.Uint16(data[flagOffset:rawLengthOffset])
	h.RawLength = engine.Uint32(data[rawLengthOffset:payloadLenOffset])
	h.PayloadLength = engine.Uint32(data[payloadLenOffset:checksumOffset])
	h.Checksum = engine.Uint64(data[checksumOffset:FrameHeaderSize])

	return h.Flag.Validate()
}

// Bytes serializes the FrameHeader into a byte slice.
func (h *FrameHeader) Bytes() []byte {
	return h.AppendTo(make([]byte, 0, FrameHeaderSize))
}

// AppendTo appends the serialized header to dst.
func (h *FrameHeader) AppendTo(dst []byte) []byte {
	engine := endian.GetNetworkEngine()

	dst = engine.AppendUint16(dst, h.Flag.Options)
	dst = engine.AppendUint32(dst, h.RawLength)
	dst = engine.AppendUint32(dst, h.PayloadLength)

	return engine.AppendUint64(dst, h.Checksum)
}

// FrameSize returns the size of the whole frame, header included.
func (h *FrameHeader) FrameSize() int {
	return FrameHeaderSize + int(h.PayloadLength)
}

// Verify checks that raw matches the recorded length and checksum.
func (h *FrameHeader) Verify(raw []byte) error {
	if len(raw) != int(h.RawLength) {
		return fmt.Errorf("%w: raw length %d, header says %d", errs.ErrChecksumMismatch, len(raw), h.RawLength)
	}

	if sum := hash.Checksum(raw); sum != h.Checksum {
		return fmt.Errorf("%w: got %016x, want %016x", errs.ErrChecksumMismatch, sum, h.Checksum)
	}

	return nil
}

// ParseFrameHeader parses a FrameHeader from the front of a byte slice.
//
// Parameters:
//   - data: Byte slice starting with a header (must be at least FrameHeaderSize bytes)
//
// Returns:
//   - FrameHeader: Parsed header struct
//   - error: ErrInvalidHeaderSize or flag validation errors
func ParseFrameHeader(data []byte) (FrameHeader, error) {
	if len(data) < FrameHeaderSize {
		return FrameHeader{}, errs.ErrInvalidHeaderSize
	}

	h := FrameHeader{}
	if err := h.Parse(data[:FrameHeaderSize]); err != nil {
		return FrameHeader{}, err
	}

	return h, nil
}
