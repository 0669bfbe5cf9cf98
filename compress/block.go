package compress

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/arloliu/bytecodec/buffer"
	"github.com/arloliu/bytecodec/encoder"
	"github.com/arloliu/bytecodec/errs"
	"github.com/arloliu/bytecodec/format"
	"github.com/arloliu/bytecodec/internal/options"
	"github.com/arloliu/bytecodec/internal/pool"
	"github.com/arloliu/bytecodec/section"
)

// DefaultBlockSize is the largest raw block a BlockEncoder buffers before it emits
// a frame on its own.
const DefaultBlockSize = pool.FrameDefaultSize

// EncoderOption configures a BlockEncoder.
type EncoderOption = options.Option[*BlockEncoder]

// DecoderOption configures a BlockDecoder.
type DecoderOption = options.Option[*BlockDecoder]

// WithBlockSize sets the raw size at which a BlockEncoder emits a frame without
// waiting for Flush.
//
// Returns ErrInvalidBlockSize when size is not positive or exceeds
// section.MaxFramePayload.
func WithBlockSize(size int) EncoderOption {
	return options.New(func(e *BlockEncoder) error {
		if size <= 0 || uint64(size) > section.MaxFramePayload {
			return fmt.Errorf("%w: %d", errs.ErrInvalidBlockSize, size)
		}
		e.blockSize = size

		return nil
	})
}

// WithEncoderLogger sets the logger that receives per-frame debug events.
func WithEncoderLogger(logger zerolog.Logger) EncoderOption {
	return options.NoError(func(e *BlockEncoder) {
		e.logger = logger
	})
}

// WithMaxFrameSize bounds the raw and payload length a BlockDecoder accepts.
// Frames announcing more fail with ErrFrameTooLarge before any payload is buffered.
func WithMaxFrameSize(size int) DecoderOption {
	return options.New(func(d *BlockDecoder) error {
		if size <= 0 {
			return fmt.Errorf("%w: max frame size %d", errs.ErrInvalidBlockSize, size)
		}
		d.maxFrameSize = uint64(size)

		return nil
	})
}

// WithExpectedCompression makes a BlockDecoder reject frames of any other type.
func WithExpectedCompression(compressionType format.CompressionType) DecoderOption {
	return options.New(func(d *BlockDecoder) error {
		if !compressionType.Valid() {
			return fmt.Errorf("%w: %d", errs.ErrInvalidCompression, uint8(compressionType))
		}
		d.expected = compressionType

		return nil
	})
}

// WithDecoderLogger sets the logger that receives per-frame debug events.
func WithDecoderLogger(logger zerolog.Logger) DecoderOption {
	return options.NoError(func(d *BlockDecoder) {
		d.logger = logger
	})
}

// BlockEncoder is an Encoder stage that groups its input into blocks and writes
// each block as a checksummed, compressed frame.
//
// A frame is emitted when the pending block reaches the block size, on Flush, and
// on Finish. Flush with nothing pending writes nothing.
type BlockEncoder struct {
	encoder.Status
	codec     Codec
	blockSize int
	pending   *pool.ByteBuffer
	stats     CompressionStats
	logger    zerolog.Logger
}

var _ encoder.Encoder = (*BlockEncoder)(nil)

// NewBlockEncoder creates a BlockEncoder compressing with codec.
//
// Parameters:
//   - codec: Block codec, typically from GetCodec
//   - opts: Optional configuration (WithBlockSize, WithEncoderLogger)
//
// Returns:
//   - *BlockEncoder: New encoder stage
//   - error: Option validation error
func NewBlockEncoder(codec Codec, opts ...EncoderOption) (*BlockEncoder, error) {
	e := &BlockEncoder{
		codec:     codec,
		blockSize: DefaultBlockSize,
		logger:    zerolog.Nop(),
	}
	e.stats.Algorithm = codec.Type()

	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}

	return e, nil
}

// BlockSize returns the configured block size.
func (e *BlockEncoder) BlockSize() int {
	return e.blockSize
}

// Stats returns the totals since creation.
func (e *BlockEncoder) Stats() CompressionStats {
	return e.stats
}

// Pending returns the number of raw bytes waiting for the next frame.
func (e *BlockEncoder) Pending() int {
	if e.pending == nil {
		return 0
	}

	return e.pending.Len()
}

func (e *BlockEncoder) buf() *pool.ByteBuffer {
	if e.pending == nil {
		e.pending = pool.GetFrameBuffer()
	}

	return e.pending
}

func (e *BlockEncoder) Encode(in, out *buffer.Buffer) error {
	if err := e.Check(); err != nil {
		return err
	}

	pending := e.buf()
	for in.Avail() > 0 {
		take := min(in.Avail(), e.blockSize-pending.Len())
		pending.MustWrite(in.Get(take))

		if pending.Len() == e.blockSize {
			if err := e.emit(out); err != nil {
				return err
			}
		}
	}

	return nil
}

func (e *BlockEncoder) Flush(out *buffer.Buffer) error {
	if err := e.Check(); err != nil {
		return err
	}

	return e.emit(out)
}

func (e *BlockEncoder) Finish(out *buffer.Buffer) error {
	if err := e.Flush(out); err != nil {
		return err
	}
	e.MarkFinished()

	return nil
}

// Reset drops the pending block. Stats are kept.
func (e *BlockEncoder) Reset() error {
	if e.pending != nil {
		e.pending.Reset()
	}
	e.Clear()

	return nil
}

// Close returns the pending block storage to the pool. The encoder stays usable.
func (e *BlockEncoder) Close() error {
	if e.pending != nil {
		pool.PutFrameBuffer(e.pending)
		e.pending = nil
	}

	return nil
}

// emit writes the pending block as one frame.
func (e *BlockEncoder) emit(out *buffer.Buffer) error {
	if e.pending == nil || e.pending.Len() == 0 {
		return nil
	}
	raw := e.pending.Bytes()

	start := time.Now()
	payload, err := e.codec.Compress(raw)
	if err != nil {
		return e.Fail(fmt.Errorf("%s compress %d bytes: %w", e.codec.Type(), len(raw), err))
	}
	elapsed := time.Since(start)

	header, err := section.NewFrameHeader(e.codec.Type(), raw, payload)
	if err != nil {
		return e.Fail(err)
	}

	var hdr [section.FrameHeaderSize]byte
	out.Put(header.AppendTo(hdr[:0]))
	out.Put(payload)

	e.stats.Frames++
	e.stats.OriginalSize += int64(len(raw))
	e.stats.CompressedSize += int64(len(payload))
	e.stats.CompressionTimeNs += elapsed.Nanoseconds()

	e.logger.Debug().
		Stringer("codec", e.codec.Type()).
		Int("raw", len(raw)).
		Int("payload", len(payload)).
		Msg("frame written")

	e.pending.Reset()

	return nil
}

// BlockDecoder is an Encoder stage that reads frames written by a BlockEncoder and
// emits the decompressed blocks. Each frame is verified against its checksum.
//
// The codec of each frame is taken from its header, so one decoder reads frames
// of any compression type unless WithExpectedCompression restricts it. Bytes of
// an incomplete frame are retained until the rest arrives; Finish with an
// incomplete frame fails with ErrTruncatedFrame.
type BlockDecoder struct {
	encoder.Status
	expected     format.CompressionType
	maxFrameSize uint64
	pending      *pool.ByteBuffer
	stats        CompressionStats
	logger       zerolog.Logger
}

var _ encoder.Encoder = (*BlockDecoder)(nil)

// NewBlockDecoder creates a BlockDecoder.
//
// Parameters:
//   - opts: Optional configuration (WithMaxFrameSize, WithExpectedCompression, WithDecoderLogger)
//
// Returns:
//   - *BlockDecoder: New decoder stage
//   - error: Option validation error
func NewBlockDecoder(opts ...DecoderOption) (*BlockDecoder, error) {
	d := &BlockDecoder{
		maxFrameSize: section.MaxFramePayload,
		logger:       zerolog.Nop(),
	}

	if err := options.Apply(d, opts...); err != nil {
		return nil, err
	}
	d.stats.Algorithm = d.expected

	return d, nil
}

// Stats returns the totals since creation. OriginalSize counts decompressed bytes.
func (d *BlockDecoder) Stats() CompressionStats {
	return d.stats
}

// Pending returns the number of bytes of an incomplete frame held by the decoder.
func (d *BlockDecoder) Pending() int {
	if d.pending == nil {
		return 0
	}

	return d.pending.Len()
}

func (d *BlockDecoder) Encode(in, out *buffer.Buffer) error {
	if err := d.Check(); err != nil {
		return err
	}
	if in.Avail() == 0 {
		return nil
	}

	if d.pending == nil {
		d.pending = pool.GetFrameBuffer()
	}
	d.pending.MustWrite(in.Get(in.Avail()))

	data := d.pending.Bytes()
	pos := 0
	for len(data)-pos >= section.FrameHeaderSize {
		n, err := d.decodeFrame(data[pos:], out)
		if err != nil {
			return d.Fail(err)
		}
		if n == 0 {
			break
		}
		pos += n
	}
	d.pending.Discard(pos)

	return nil
}

// decodeFrame decodes the frame at the start of data. It returns 0 when the frame
// is not complete yet.
func (d *BlockDecoder) decodeFrame(data []byte, out *buffer.Buffer) (int, error) {
	header, err := section.ParseFrameHeader(data)
	if err != nil {
		return 0, err
	}

	if uint64(header.RawLength) > d.maxFrameSize || uint64(header.PayloadLength) > d.maxFrameSize {
		return 0, fmt.Errorf("%w: raw %d, payload %d, limit %d",
			errs.ErrFrameTooLarge, header.RawLength, header.PayloadLength, d.maxFrameSize)
	}

	compressionType := header.Flag.Compression()
	if d.expected != 0 && compressionType != d.expected {
		return 0, fmt.Errorf("%w: frame uses %s, expected %s", errs.ErrInvalidCompression, compressionType, d.expected)
	}

	size := header.FrameSize()
	if len(data) < size {
		return 0, nil
	}

	codec, err := GetCodec(compressionType)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	raw, err := codec.DecompressBounded(data[section.FrameHeaderSize:size], int(header.RawLength))
	if err != nil {
		return 0, fmt.Errorf("%s decompress frame: %w", compressionType, err)
	}
	elapsed := time.Since(start)

	if err := header.Verify(raw); err != nil {
		return 0, err
	}
	out.Put(raw)

	d.stats.Frames++
	d.stats.OriginalSize += int64(len(raw))
	d.stats.CompressedSize += int64(header.PayloadLength)
	d.stats.DecompressionTimeNs += elapsed.Nanoseconds()

	d.logger.Debug().
		Stringer("codec", compressionType).
		Int("raw", len(raw)).
		Int("payload", int(header.PayloadLength)).
		Msg("frame read")

	return size, nil
}

// Flush has nothing to emit: a frame is decoded as soon as it is complete.
func (d *BlockDecoder) Flush(*buffer.Buffer) error {
	return d.Check()
}

func (d *BlockDecoder) Finish(*buffer.Buffer) error {
	if err := d.Check(); err != nil {
		return err
	}
	if n := d.Pending(); n > 0 {
		return d.Fail(fmt.Errorf("%w: %d bytes left", errs.ErrTruncatedFrame, n))
	}
	d.MarkFinished()

	return nil
}

// Reset drops any incomplete frame. Stats are kept.
func (d *BlockDecoder) Reset() error {
	if d.pending != nil {
		d.pending.Reset()
	}
	d.Clear()

	return nil
}

// Close returns the frame storage to the pool. The decoder stays usable.
func (d *BlockDecoder) Close() error {
	if d.pending != nil {
		pool.PutFrameBuffer(d.pending)
		d.pending = nil
	}

	return nil
}
