package encoder

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/arloliu/bytecodec/buffer"
	"github.com/arloliu/bytecodec/errs"
	"github.com/arloliu/bytecodec/internal/options"
)

// ChainOption configures a Chain.
type ChainOption = options.Option[*Chain]

// WithName sets the name used in chain errors and log events.
func WithName(name string) ChainOption {
	return options.NoError(func(c *Chain) {
		c.name = name
	})
}

// WithLogger sets the logger used to report stage failures and lifecycle events.
// The default logger discards everything.
func WithLogger(logger zerolog.Logger) ChainOption {
	return options.NoError(func(c *Chain) {
		c.logger = logger
	})
}

type stage struct {
	enc   Encoder
	owned bool
	// in holds bytes produced by the previous stage that this stage has not
	// consumed yet. Unused for the first stage, which reads the caller's input.
	in *buffer.Buffer
}

// Chain is an ordered composition of Encoders that behaves as a single Encoder.
//
// Data flows through the stages left to right. The first stage that fails stops
// processing and puts the chain into the failed state; Reset resets every stage
// and clears it.
//
// Each stage is either owned or borrowed, fixed when it is added. Close (and Zap,
// Unlink) release owned stages by calling their Close method when they implement
// io.Closer; borrowed stages are left alone and remain usable by their owner.
//
// Thread Safety: Chain is not safe for concurrent use.
type Chain struct {
	Status
	stages []*stage
	name   string
	logger zerolog.Logger
}

var (
	_ Encoder   = (*Chain)(nil)
	_ io.Closer = (*Chain)(nil)
)

// NewChain creates an empty chain. An empty chain copies its input unchanged.
func NewChain(opts ...ChainOption) (*Chain, error) {
	c := &Chain{
		name:   "chain",
		logger: zerolog.Nop(),
	}

	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// Name returns the chain name.
func (c *Chain) Name() string {
	return c.name
}

// Append adds e as the last stage. If owned is true the chain releases e when the
// stage is removed or the chain is closed.
func (c *Chain) Append(e Encoder, owned bool) {
	c.stages = append(c.stages, &stage{enc: e, owned: owned})
	c.logger.Debug().Str("chain", c.name).Int("stage", len(c.stages)-1).
		Str("encoder", fmt.Sprintf("%T", e)).Bool("owned", owned).Msg("stage appended")
}

// Prepend adds e as the first stage. Ownership follows the same rule as Append.
//
// Bytes that the previous first stage left unconsumed stay in the caller's input
// buffer and are now read by e.
func (c *Chain) Prepend(e Encoder, owned bool) {
	c.stages = append([]*stage{{enc: e, owned: owned}}, c.stages...)
	c.logger.Debug().Str("chain", c.name).Int("stage", 0).
		Str("encoder", fmt.Sprintf("%T", e)).Bool("owned", owned).Msg("stage prepended")
}

// Unlink removes the first stage holding e and reports whether one was found.
// An owned stage is released. Input queued for that stage and any state it
// retains are dropped, so callers normally Flush before unlinking. Output the
// stage already produced stays queued for its successor.
func (c *Chain) Unlink(e Encoder) (bool, error) {
	for i, st := range c.stages {
		if st.enc != e {
			continue
		}

		c.stages = append(c.stages[:i], c.stages[i+1:]...)
		c.logger.Debug().Str("chain", c.name).Int("stage", i).Msg("stage unlinked")

		return true, st.release()
	}

	return false, nil
}

// Len returns the number of stages.
func (c *Chain) Len() int {
	return len(c.stages)
}

// Stages returns the stages in order.
func (c *Chain) Stages() []Encoder {
	out := make([]Encoder, len(c.stages))
	for i, st := range c.stages {
		out[i] = st.enc
	}

	return out
}

// IsOwned reports whether e is present in the chain as an owned stage.
func (c *Chain) IsOwned(e Encoder) bool {
	for _, st := range c.stages {
		if st.enc == e {
			return st.owned
		}
	}

	return false
}

type runMode uint8

const (
	modeEncode runMode = iota
	modeFlush
	modeFinish
)

func (m runMode) String() string {
	switch m {
	case modeFlush:
		return "flush"
	case modeFinish:
		return "finish"
	default:
		return "encode"
	}
}

// Encode runs in through every stage and appends the result to out.
func (c *Chain) Encode(in, out *buffer.Buffer) error {
	return c.run(in, out, modeEncode)
}

// Flush flushes every stage in order, feeding each stage's flushed output to the
// next stage before flushing it.
func (c *Chain) Flush(out *buffer.Buffer) error {
	return c.run(nil, out, modeFlush)
}

// Finish finishes every stage in order, cascading like Flush.
func (c *Chain) Finish(out *buffer.Buffer) error {
	if err := c.run(nil, out, modeFinish); err != nil {
		return err
	}
	c.MarkFinished()

	return nil
}

func (c *Chain) run(in, out *buffer.Buffer, mode runMode) error {
	if err := c.Check(); err != nil {
		return err
	}

	if len(c.stages) == 0 {
		if in != nil {
			out.MergeAll(in)
		}

		return nil
	}

	last := len(c.stages) - 1
	src := in
	for i, st := range c.stages {
		dst := out
		if i < last {
			next := c.stages[i+1]
			if next.in == nil {
				next.in = buffer.New(0)
			}
			dst = next.in
		}
		if i > 0 {
			src = st.in
		} else if st.in != nil && st.in.Avail() > 0 {
			// left behind by an unlinked predecessor
			if err := st.enc.Encode(st.in, dst); err != nil {
				return c.Fail(fmt.Errorf("%w: %s stage %d (%T): %w", errs.ErrStageFailed, c.name, i, st.enc, err))
			}
		}

		if err := st.step(src, dst, mode); err != nil {
			c.logger.Warn().Str("chain", c.name).Int("stage", i).Stringer("mode", mode).
				Err(err).Msg("stage failed")

			return c.Fail(fmt.Errorf("%w: %s stage %d (%T): %w", errs.ErrStageFailed, c.name, i, st.enc, err))
		}
	}

	return nil
}

func (st *stage) step(src, dst *buffer.Buffer, mode runMode) error {
	if src != nil && src.Avail() > 0 {
		if err := st.enc.Encode(src, dst); err != nil {
			return err
		}
	}

	switch mode {
	case modeFlush:
		return st.enc.Flush(dst)
	case modeFinish:
		return st.enc.Finish(dst)
	default:
		return nil
	}
}

// Reset resets every stage, drops bytes queued between stages and clears the
// failed and finished states of the chain.
func (c *Chain) Reset() error {
	var result *multierror.Error
	for i, st := range c.stages {
		if st.in != nil {
			st.in.Zap()
		}
		if err := st.enc.Reset(); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s stage %d: %w", c.name, i, err))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return c.Fail(err)
	}

	c.Clear()

	return nil
}

// Zap removes every stage, releasing the owned ones. The chain stays usable.
func (c *Chain) Zap() error {
	var result *multierror.Error
	for _, st := range c.stages {
		if err := st.release(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	c.stages = nil

	return result.ErrorOrNil()
}

// Close releases all owned stages and empties the chain.
func (c *Chain) Close() error {
	c.logger.Debug().Str("chain", c.name).Int("stages", len(c.stages)).Msg("closing chain")

	return c.Zap()
}

func (st *stage) release() error {
	if st.in != nil {
		st.in.Release()
		st.in = nil
	}

	if !st.owned {
		return nil
	}

	if closer, ok := st.enc.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
