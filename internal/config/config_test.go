package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/bytecodec/compress"
	"github.com/arloliu/bytecodec/encoder"
	"github.com/arloliu/bytecodec/errs"
	"github.com/arloliu/bytecodec/escape"
)

const fullConfig = `
[write]
stages = ["escape", " ZSTD "]
block_size = 128

[read]
stages = ["zstd-decode", "unescape"]
max_frame_size = 4096

[stream]
auto_flush = false
min_read_size = 64
`

func TestParse_Full(t *testing.T) {
	cfg, err := Parse([]byte(fullConfig))
	require.NoError(t, err)

	require.Equal(t, []string{"escape", "zstd"}, cfg.Write.Stages)
	require.Equal(t, 128, cfg.Write.BlockSize)
	require.Equal(t, []string{"zstd-decode", "unescape"}, cfg.Read.Stages)
	require.Equal(t, 4096, cfg.Read.MaxFrameSize)
	require.False(t, cfg.AutoFlush)
	require.Equal(t, 64, cfg.MinReadSize)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`[read]
stages = ["decompress"]
`))
	require.NoError(t, err)

	def := Default()
	require.Equal(t, def.Write, cfg.Write)
	require.Equal(t, []string{"decompress"}, cfg.Read.Stages)
	require.True(t, cfg.AutoFlush)
	require.Equal(t, def.MinReadSize, cfg.MinReadSize)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		err  error
	}{
		{name: "unknown stage", doc: "[write]\nstages = [\"rot13\"]", err: errs.ErrUnknownStage},
		{name: "decode of unknown codec", doc: "[read]\nstages = [\"brotli-decode\"]", err: errs.ErrUnknownStage},
		{name: "zero block size", doc: "[write]\nblock_size = 0", err: errs.ErrInvalidBlockSize},
		{name: "negative frame size", doc: "[read]\nmax_frame_size = -1", err: errs.ErrInvalidBlockSize},
		{name: "zero min read", doc: "[stream]\nmin_read_size = 0", err: errs.ErrInvalidMinReadSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.ErrorIs(t, err, tt.err)
		})
	}

	_, err := Parse([]byte("not = [toml"))
	require.ErrorContains(t, err, "parse pipeline config")
}

func TestParse_UnknownKeys(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		key  string
	}{
		{name: "misspelled", doc: "[write]\nstagez = []", key: "write.stagez"},
		{name: "block size on read", doc: "[read]\nblock_size = 1024", key: "read.block_size"},
		{name: "frame size on write", doc: "[write]\nmax_frame_size = 1024", key: "write.max_frame_size"},
		{name: "unknown section", doc: "[compress]\nlevel = 3", key: "compress"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.ErrorContains(t, err, "unknown pipeline config key")
			require.ErrorContains(t, err, tt.key)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.toml")
	require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"escape", "zstd"}, cfg.Write.Stages)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorContains(t, err, "load pipeline config")
}

func TestKnownStage(t *testing.T) {
	tests := []struct {
		name  string
		known bool
	}{
		{"escape", true},
		{"unescape", true},
		{"passthrough", true},
		{"decompress", true},
		{"none", true},
		{"lz4", true},
		{"s2-decode", true},
		{"none-decode", true},
		{"", false},
		{"-decode", false},
		{"decode", false},
		{"zstd-", false},
		{"escape-decode", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.name), func(t *testing.T) {
			require.Equal(t, tt.known, KnownStage(tt.name))
		})
	}
}

func TestBuild_RoundTrip(t *testing.T) {
	cfg, err := Parse([]byte(fullConfig))
	require.NoError(t, err)

	write, err := cfg.BuildWrite(zerolog.Nop())
	require.NoError(t, err)
	defer write.Close()
	read, err := cfg.BuildRead(zerolog.Nop())
	require.NoError(t, err)
	defer read.Close()

	require.Equal(t, "write", write.Name())
	require.Equal(t, "read", read.Name())
	require.IsType(t, &escape.Encoder{}, write.Stages()[0])
	require.IsType(t, &compress.BlockEncoder{}, write.Stages()[1])
	require.Equal(t, 128, write.Stages()[1].(*compress.BlockEncoder).BlockSize())
	for _, st := range write.Stages() {
		require.True(t, write.IsOwned(st))
	}

	message := "line one\nline two with \\ backslash\n"
	framed, err := encoder.ProcessString(write, message)
	require.NoError(t, err)

	plain, err := encoder.ProcessString(read, framed)
	require.NoError(t, err)
	require.Equal(t, message, plain)
}

func TestBuild_DecodeRejectsOtherCodec(t *testing.T) {
	write, err := Pipeline{Write: Direction{Stages: []string{"s2"}, BlockSize: 64}}.BuildWrite(zerolog.Nop())
	require.NoError(t, err)
	read, err := Pipeline{Read: Direction{Stages: []string{"lz4-decode"}}}.BuildRead(zerolog.Nop())
	require.NoError(t, err)

	framed, err := encoder.ProcessString(write, "s2 data")
	require.NoError(t, err)

	_, err = encoder.ProcessString(read, framed)
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
}

func TestStreamOptions(t *testing.T) {
	cfg := Default()
	require.Len(t, cfg.StreamOptions(zerolog.Nop()), 3)
}
