// Package section defines the binary layout of the frames written by the block
// compression stages.
//
// # Frame Format
//
// Every frame is a fixed 18-byte header followed by the payload:
//
//	Bytes  | Field          | Type   | Description
//	-------|----------------|--------|-----------------------------------------
//	0-1    | Flag           | uint16 | magic number (bits 4-15), compression (bits 0-3)
//	2-5    | RawLength      | uint32 | block size before compression
//	6-9    | PayloadLength  | uint32 | payload size after the header
//	10-17  | Checksum       | uint64 | xxHash64 of the uncompressed block
//
// All fields are big-endian. A reader that has fewer than FrameHeaderSize bytes,
// or fewer than FrameSize bytes after parsing the header, must wait for more input.
//
// # Usage
//
//	h, _ := section.NewFrameHeader(format.CompressionS2, raw, payload)
//	frame := append(h.Bytes(), payload...)
//
//	parsed, err := section.ParseFrameHeader(frame)
//	if err != nil {
//	    return err
//	}
//	raw, _ := codec.Decompress(frame[section.FrameHeaderSize:parsed.FrameSize()])
//	err = parsed.Verify(raw)
package section
