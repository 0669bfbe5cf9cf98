// Package stream adapts an io.ReadWriter so that everything written passes through
// a write Chain before it reaches the channel, and everything read passes through
// a read Chain before it reaches the caller.
//
//	s, _ := stream.New(conn, stream.WithAutoFlush(true))
//	s.WriteChain().Append(escape.NewEncoder(), true)
//	s.ReadChain().Append(escape.NewDecoder(), true)
//
//	s.Write([]byte("line\n")) // conn receives `line\n` escaped
//
// # Flushing
//
// Write encodes its input and hands whatever the write chain has produced to the
// channel. Stages may keep partial state, for example a block encoder holding an
// incomplete block; Flush drains it. With auto-flush enabled every Write is
// followed by Flush.
//
// # Ownership
//
// Close finishes the write chain and writes its final output. Unless the stream
// was configured with WithDisassociateOnClose, it then closes both chains, which
// closes their owned stages, and the channel if it implements io.Closer.
//
// A Stream is not safe for concurrent use.
package stream

import (
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/arloliu/bytecodec/buffer"
	"github.com/arloliu/bytecodec/encoder"
	"github.com/arloliu/bytecodec/errs"
	"github.com/arloliu/bytecodec/internal/options"
	"github.com/arloliu/bytecodec/internal/pool"
)

// DefaultMinReadSize is the smallest read issued to the channel.
const DefaultMinReadSize = pool.BufferDefaultSize

// maxEmptyReads bounds consecutive (0, nil) reads from the channel.
const maxEmptyReads = 100

// Option configures a Stream.
type Option = options.Option[*Stream]

// WithAutoFlush makes every Write flush the write chain.
func WithAutoFlush(enabled bool) Option {
	return options.NoError(func(s *Stream) {
		s.autoFlush = enabled
	})
}

// WithDisassociateOnClose makes Close leave the chains and the channel open.
func WithDisassociateOnClose(enabled bool) Option {
	return options.NoError(func(s *Stream) {
		s.disassociate = enabled
	})
}

// WithMinReadSize sets the smallest read issued to the channel.
func WithMinReadSize(size int) Option {
	return options.New(func(s *Stream) error {
		if size <= 0 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidMinReadSize, size)
		}
		s.minReadSize = size

		return nil
	})
}

// WithLogger sets the logger used by the stream and its chains.
func WithLogger(logger zerolog.Logger) Option {
	return options.NoError(func(s *Stream) {
		s.logger = logger
	})
}

// Stream is an io.ReadWriteCloser that encodes through chains.
type Stream struct {
	ch         io.ReadWriter
	writeChain *encoder.Chain
	readChain  *encoder.Chain

	autoFlush    bool
	disassociate bool
	minReadSize  int
	logger       zerolog.Logger

	plain   *buffer.Buffer // written by the caller, not yet encoded
	encoded *buffer.Buffer // produced by the write chain, not yet on the channel
	raw     *buffer.Buffer // read from the channel, not yet decoded
	decoded *buffer.Buffer // produced by the read chain, not yet returned by Read

	eof    bool
	closed bool
}

var _ io.ReadWriteCloser = (*Stream)(nil)

// New wraps ch in a Stream with empty chains.
//
// Parameters:
//   - ch: Underlying channel
//   - opts: Optional configuration (WithAutoFlush, WithDisassociateOnClose, WithMinReadSize, WithLogger)
//
// Returns:
//   - *Stream: New stream
//   - error: Option validation error
func New(ch io.ReadWriter, opts ...Option) (*Stream, error) {
	s := &Stream{
		ch:          ch,
		minReadSize: DefaultMinReadSize,
		logger:      zerolog.Nop(),
		plain:       buffer.New(0),
		encoded:     buffer.New(0),
		raw:         buffer.New(0),
		decoded:     buffer.New(0),
	}

	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	var err error
	if s.writeChain, err = encoder.NewChain(encoder.WithName("write"), encoder.WithLogger(s.logger)); err != nil {
		return nil, err
	}
	if s.readChain, err = encoder.NewChain(encoder.WithName("read"), encoder.WithLogger(s.logger)); err != nil {
		return nil, err
	}

	return s, nil
}

// WriteChain returns the chain applied to written bytes.
func (s *Stream) WriteChain() *encoder.Chain {
	return s.writeChain
}

// ReadChain returns the chain applied to bytes read from the channel.
func (s *Stream) ReadChain() *encoder.Chain {
	return s.readChain
}

// Write encodes p and writes the available output to the channel. It flushes the
// write chain first when auto-flush is enabled.
//
// Once the write chain has accepted p, Write reports len(p) even when writing to the
// channel fails; the unwritten output stays pending for the next Flush or Close.
// Only a write chain failure returns 0, and then none of p is kept.
func (s *Stream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, errs.ErrStreamClosed
	}

	before := s.plain.Avail()
	s.plain.Put(p)
	if err := s.writeChain.Encode(s.plain, s.encoded); err != nil {
		if left := s.plain.Avail() - before; left > 0 {
			s.plain.Unput(left)
		}

		return 0, fmt.Errorf("stream write: %w", err)
	}

	if s.autoFlush {
		return len(p), s.Flush()
	}

	return len(p), s.drain()
}

// Flush flushes the write chain and writes all pending output to the channel.
func (s *Stream) Flush() error {
	if s.closed {
		return errs.ErrStreamClosed
	}

	if err := s.writeChain.Flush(s.encoded); err != nil {
		return fmt.Errorf("stream flush: %w", err)
	}

	return s.drain()
}

// drain writes the encoded output to the channel.
func (s *Stream) drain() error {
	if s.encoded.Avail() == 0 {
		return nil
	}
	if _, err := s.encoded.WriteTo(s.ch); err != nil {
		return fmt.Errorf("stream write to channel: %w", err)
	}

	return nil
}

// Read returns decoded bytes, reading from the channel as needed. When the channel
// reports io.EOF the read chain is finished and its final output is returned
// before io.EOF.
func (s *Stream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, errs.ErrStreamClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	for empty := 0; ; {
		if s.decoded.Avail() > 0 {
			return s.decoded.Read(p)
		}
		if s.eof {
			return 0, io.EOF
		}

		n, err := s.raw.Fill(s.ch, max(s.minReadSize, len(p)))
		if n > 0 {
			empty = 0
			if encErr := s.readChain.Encode(s.raw, s.decoded); encErr != nil {
				return 0, fmt.Errorf("stream read: %w", encErr)
			}
		}

		switch {
		case errors.Is(err, io.EOF):
			s.eof = true
			if finErr := s.readChain.Finish(s.decoded); finErr != nil {
				return 0, fmt.Errorf("stream read: %w", finErr)
			}
		case err != nil:
			return 0, err
		case n == 0:
			empty++
			if empty >= maxEmptyReads {
				return 0, io.ErrNoProgress
			}
		}
	}
}

// Close finishes the write chain and writes its output. Unless disassociated it
// then closes both chains and the channel. All errors are returned together.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}

	var result *multierror.Error

	if err := s.writeChain.Finish(s.encoded); err != nil {
		result = multierror.Append(result, fmt.Errorf("stream finish: %w", err))
	}
	if err := s.drain(); err != nil {
		result = multierror.Append(result, err)
	}
	s.closed = true

	if !s.disassociate {
		if err := s.writeChain.Close(); err != nil {
			result = multierror.Append(result, err)
		}
		if err := s.readChain.Close(); err != nil {
			result = multierror.Append(result, err)
		}
		if c, ok := s.ch.(io.Closer); ok {
			if err := c.Close(); err != nil {
				result = multierror.Append(result, fmt.Errorf("close channel: %w", err))
			}
		}
	}

	s.plain.Release()
	s.encoded.Release()
	s.raw.Release()

	s.logger.Debug().
		Bool("disassociated", s.disassociate).
		Int("unread", s.decoded.Avail()).
		Msg("stream closed")

	return result.ErrorOrNil()
}
