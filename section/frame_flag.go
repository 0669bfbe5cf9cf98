package section

import (
	"fmt"

	"github.com/arloliu/bytecodec/errs"
	"github.com/arloliu/bytecodec/format"
)

// FrameFlag is the packed first field of a frame header.
type FrameFlag struct {
	// Options is a packed field.
	// Bit 0-3 hold the compression type of the payload.
	// Bit 4-15 are the magic number identifying the frame format:
	//   - 0xBC10 (0b1011_1100_0001_0000): frame format v1
	Options uint16
}

// NewFrameFlag creates a v1 flag for the given compression.
func NewFrameFlag(compression format.CompressionType) FrameFlag {
	f := FrameFlag{Options: MagicFrameV1}
	f.SetCompression(compression)

	return f
}

// GetMagicNumber returns the magic number from the Options field.
func (f FrameFlag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// IsValidMagicNumber checks if the magic number is valid.
func (f FrameFlag) IsValidMagicNumber() bool {
	return f.GetMagicNumber() == MagicFrameV1
}

// Compression returns the compression type from bits 0-3.
func (f FrameFlag) Compression() format.CompressionType {
	return format.CompressionType(f.Options & CompressionMask)
}

// SetCompression sets the compression type in bits 0-3.
func (f *FrameFlag) SetCompression(compression format.CompressionType) {
	f.Options &^= CompressionMask
	f.Options |= uint16(compression) & CompressionMask
}

// Validate checks the magic number and the compression type.
func (f FrameFlag) Validate() error {
	if !f.IsValidMagicNumber() {
		return fmt.Errorf("%w: 0x%04x", errs.ErrInvalidFrameMagic, f.GetMagicNumber())
	}

	if !f.Compression().Valid() {
		return fmt.Errorf("%w: %d", errs.ErrInvalidCompression, uint8(f.Compression()))
	}

	return nil
}
