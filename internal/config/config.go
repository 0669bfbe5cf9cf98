// Package config loads the pipeline description used by the bytecodec CLI.
//
// A pipeline file is TOML:
//
//	[write]
//	stages = ["escape", "zstd"]
//	block_size = 65536
//
//	[read]
//	stages = ["zstd-decode", "unescape"]
//	max_frame_size = 1048576
//
//	[stream]
//	auto_flush = true
//	min_read_size = 4096
//
// Stage names:
//   - escape, unescape: backslash escaping
//   - passthrough: copies bytes unchanged
//   - none, zstd, s2, lz4: block compression with the named codec
//   - decompress: block decompression of any codec
//   - none-decode, zstd-decode, s2-decode, lz4-decode: block decompression that
//     rejects frames of other codecs
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/arloliu/bytecodec/compress"
	"github.com/arloliu/bytecodec/encoder"
	"github.com/arloliu/bytecodec/errs"
	"github.com/arloliu/bytecodec/escape"
	"github.com/arloliu/bytecodec/format"
	"github.com/arloliu/bytecodec/stream"
)

const decodeSuffix = "-decode"

// Direction describes the chain of one stream direction.
type Direction struct {
	Stages       []string
	BlockSize    int
	MaxFrameSize int
}

// Pipeline is a parsed pipeline file.
type Pipeline struct {
	Write       Direction
	Read        Direction
	AutoFlush   bool
	MinReadSize int
}

type writeConfig struct {
	Stages    []string `toml:"stages"`
	BlockSize int      `toml:"block_size"`
}

type readConfig struct {
	Stages       []string `toml:"stages"`
	MaxFrameSize int      `toml:"max_frame_size"`
}

type streamConfig struct {
	AutoFlush   bool `toml:"auto_flush"`
	MinReadSize int  `toml:"min_read_size"`
}

type fileConfig struct {
	Write  writeConfig  `toml:"write"`
	Read   readConfig   `toml:"read"`
	Stream streamConfig `toml:"stream"`
}

// Default returns the pipeline used when no file is given: escaping on write,
// unescaping on read.
func Default() Pipeline {
	return Pipeline{
		Write:       Direction{Stages: []string{"escape"}, BlockSize: compress.DefaultBlockSize},
		Read:        Direction{Stages: []string{"unescape"}},
		AutoFlush:   true,
		MinReadSize: stream.DefaultMinReadSize,
	}
}

// Load reads and validates a pipeline file.
func Load(path string) (Pipeline, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Pipeline{}, fmt.Errorf("load pipeline config: %w", err)
	}

	return fromFile(meta, raw)
}

// Parse reads and validates a pipeline document.
func Parse(data []byte) (Pipeline, error) {
	var raw fileConfig
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return Pipeline{}, fmt.Errorf("parse pipeline config: %w", err)
	}

	return fromFile(meta, raw)
}

func fromFile(meta toml.MetaData, raw fileConfig) (Pipeline, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Pipeline{}, fmt.Errorf("unknown pipeline config key %q", undecoded[0].String())
	}

	cfg := Default()

	if meta.IsDefined("write", "stages") {
		cfg.Write.Stages = normalizeStages(raw.Write.Stages)
	}
	if meta.IsDefined("write", "block_size") {
		cfg.Write.BlockSize = raw.Write.BlockSize
	}
	if meta.IsDefined("read", "stages") {
		cfg.Read.Stages = normalizeStages(raw.Read.Stages)
	}
	if meta.IsDefined("read", "max_frame_size") {
		cfg.Read.MaxFrameSize = raw.Read.MaxFrameSize
	}
	if meta.IsDefined("stream", "auto_flush") {
		cfg.AutoFlush = raw.Stream.AutoFlush
	}
	if meta.IsDefined("stream", "min_read_size") {
		cfg.MinReadSize = raw.Stream.MinReadSize
	}

	if err := cfg.Validate(); err != nil {
		return Pipeline{}, err
	}

	return cfg, nil
}

func normalizeStages(in []string) []string {
	out := make([]string, 0, len(in))
	for _, name := range in {
		v := strings.ToLower(strings.TrimSpace(name))
		if v == "" {
			continue
		}
		out = append(out, v)
	}

	return out
}

// Validate checks every stage name and size.
func (p Pipeline) Validate() error {
	for _, name := range slices.Concat(p.Write.Stages, p.Read.Stages) {
		if !KnownStage(name) {
			return fmt.Errorf("%w: %q", errs.ErrUnknownStage, name)
		}
	}
	if p.Write.BlockSize <= 0 {
		return fmt.Errorf("%w: %d", errs.ErrInvalidBlockSize, p.Write.BlockSize)
	}
	if p.Read.MaxFrameSize < 0 {
		return fmt.Errorf("%w: max frame size %d", errs.ErrInvalidBlockSize, p.Read.MaxFrameSize)
	}
	if p.MinReadSize <= 0 {
		return fmt.Errorf("%w: %d", errs.ErrInvalidMinReadSize, p.MinReadSize)
	}

	return nil
}

// KnownStage reports whether name is a valid stage name.
func KnownStage(name string) bool {
	switch name {
	case "escape", "unescape", "passthrough", "decompress":
		return true
	}
	if _, ok := format.ParseCompressionType(name); ok {
		return true
	}
	_, ok := format.ParseCompressionType(strings.TrimSuffix(name, decodeSuffix))

	return ok && strings.HasSuffix(name, decodeSuffix)
}

// BuildWrite creates the write chain. Every stage is owned by the chain.
func (p Pipeline) BuildWrite(logger zerolog.Logger) (*encoder.Chain, error) {
	return build("write", p.Write, logger)
}

// BuildRead creates the read chain. Every stage is owned by the chain.
func (p Pipeline) BuildRead(logger zerolog.Logger) (*encoder.Chain, error) {
	return build("read", p.Read, logger)
}

// StreamOptions returns the stream settings of the pipeline.
func (p Pipeline) StreamOptions(logger zerolog.Logger) []stream.Option {
	return []stream.Option{
		stream.WithAutoFlush(p.AutoFlush),
		stream.WithMinReadSize(p.MinReadSize),
		stream.WithLogger(logger),
	}
}

func build(name string, dir Direction, logger zerolog.Logger) (*encoder.Chain, error) {
	chain, err := encoder.NewChain(encoder.WithName(name), encoder.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := AppendStages(chain, dir, logger); err != nil {
		return nil, err
	}

	return chain, nil
}

// AppendStages appends the stages of dir to chain as owned stages. On error the
// stages appended so far stay in the chain; Close the chain to release them.
func AppendStages(chain *encoder.Chain, dir Direction, logger zerolog.Logger) error {
	for _, name := range dir.Stages {
		stage, err := newStage(name, dir, logger)
		if err != nil {
			return err
		}
		chain.Append(stage, true)
	}

	return nil
}

func newStage(name string, dir Direction, logger zerolog.Logger) (encoder.Encoder, error) {
	switch name {
	case "escape":
		return escape.NewEncoder(), nil
	case "unescape":
		return escape.NewDecoder(), nil
	case "passthrough":
		return encoder.NewPassthrough(), nil
	case "decompress":
		return newBlockDecoder(dir, logger)
	}

	if ct, ok := format.ParseCompressionType(name); ok {
		codec, err := compress.CreateCodec(ct, "stage "+name)
		if err != nil {
			return nil, err
		}

		return compress.NewBlockEncoder(codec,
			compress.WithBlockSize(dir.BlockSize),
			compress.WithEncoderLogger(logger),
		)
	}

	if codecName, found := strings.CutSuffix(name, decodeSuffix); found {
		if ct, ok := format.ParseCompressionType(codecName); ok {
			return newBlockDecoder(dir, logger, compress.WithExpectedCompression(ct))
		}
	}

	return nil, fmt.Errorf("%w: %q", errs.ErrUnknownStage, name)
}

func newBlockDecoder(dir Direction, logger zerolog.Logger, opts ...compress.DecoderOption) (*compress.BlockDecoder, error) {
	opts = append(opts, compress.WithDecoderLogger(logger))
	if dir.MaxFrameSize > 0 {
		opts = append(opts, compress.WithMaxFrameSize(dir.MaxFrameSize))
	}

	return compress.NewBlockDecoder(opts...)
}
