package section

const (
	// Bit masks of the frame flag
	CompressionMask = 0x000F // Mask for compression type (bits 0-3)
	MagicNumberMask = 0xFFF0 // Mask for magic number (bits 4-15)

	// Magic numbers (bits 4-15)
	MagicFrameV1 = 0xBC10 // MagicFrameV1 is the version 1 magic number of a compressed frame.
)

// frame layout
const (
	FrameHeaderSize  = 18        // fixed frame header size in bytes
	flagOffset       = 0         // byte offset of the flag
	rawLengthOffset  = 2         // byte offset of the raw length
	payloadLenOffset = 6         // byte offset of the payload length
	checksumOffset   = 10        // byte offset of the checksum
	MaxFramePayload  = 1<<32 - 1 // largest raw or payload length a frame can describe
)
