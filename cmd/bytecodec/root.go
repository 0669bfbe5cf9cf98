package main

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arloliu/bytecodec/compress"
	"github.com/arloliu/bytecodec/internal/config"
	"github.com/arloliu/bytecodec/stream"
)

// globalFlags holds the flags shared by every subcommand.
type globalFlags struct {
	Verbose bool
}

// channel joins the standard streams into the io.ReadWriter a stream wraps.
type channel struct {
	io.Reader
	io.Writer
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:   "bytecodec",
		Short: "Stream bytes through encoder chains",
		Long: `bytecodec reads standard input, passes it through a chain of encoders and
writes the result to standard output.

Chains are built from stages: escape, unescape, passthrough, block compression
(none, zstd, s2, lz4) and block decompression (decompress, <codec>-decode).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "log debug output to stderr")

	logger := func(cmd *cobra.Command) zerolog.Logger {
		level := zerolog.InfoLevel
		if flags.Verbose {
			level = zerolog.DebugLevel
		}

		return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.TimeOnly}).
			Level(level).
			With().
			Timestamp().
			Logger()
	}

	root.AddCommand(
		newEscapeCmd(logger),
		newUnescapeCmd(logger),
		newCompressCmd(logger),
		newDecompressCmd(logger),
		newRunCmd(logger),
	)

	return root
}

type loggerFunc func(cmd *cobra.Command) zerolog.Logger

func newEscapeCmd(logger loggerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "escape",
		Short: "Escape newline, backspace and backslash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			cfg.Write.Stages = []string{"escape"}

			return runWrite(cmd, cfg, logger(cmd))
		},
	}
}

func newUnescapeCmd(logger loggerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "unescape",
		Short: "Reverse escape",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			cfg.Read.Stages = []string{"unescape"}

			return runRead(cmd, cfg, logger(cmd))
		},
	}
}

func newCompressCmd(logger loggerFunc) *cobra.Command {
	var (
		codec     string
		blockSize int
	)

	cmd := &cobra.Command{
		Use:   "compress",
		Short: "Write input as checksummed compressed frames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			cfg.Write = config.Direction{Stages: []string{codec}, BlockSize: blockSize}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return runWrite(cmd, cfg, logger(cmd))
		},
	}
	cmd.Flags().StringVar(&codec, "codec", "zstd", "codec: none|zstd|s2|lz4")
	cmd.Flags().IntVar(&blockSize, "block-size", compress.DefaultBlockSize, "raw bytes per frame")

	return cmd
}

func newDecompressCmd(logger loggerFunc) *cobra.Command {
	var maxFrameSize int

	cmd := &cobra.Command{
		Use:   "decompress",
		Short: "Read compressed frames and verify their checksums",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			cfg.Read = config.Direction{Stages: []string{"decompress"}, MaxFrameSize: maxFrameSize}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return runRead(cmd, cfg, logger(cmd))
		},
	}
	cmd.Flags().IntVar(&maxFrameSize, "max-frame-size", 0, "reject frames larger than this (0 for no limit)")

	return cmd
}

func newRunCmd(logger loggerFunc) *cobra.Command {
	var (
		path string
		read bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline described by a TOML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if path != "" {
				var err error
				if cfg, err = config.Load(path); err != nil {
					return err
				}
			}

			if read {
				return runRead(cmd, cfg, logger(cmd))
			}

			return runWrite(cmd, cfg, logger(cmd))
		},
	}
	cmd.Flags().StringVarP(&path, "config", "c", "", "pipeline file (default: escape/unescape)")
	cmd.Flags().BoolVar(&read, "read", false, "run the read chain instead of the write chain")

	return cmd
}

// runWrite copies stdin into a stream whose write chain is built from cfg.
func runWrite(cmd *cobra.Command, cfg config.Pipeline, logger zerolog.Logger) error {
	s, err := stream.New(channel{Writer: cmd.OutOrStdout()}, cfg.StreamOptions(logger)...)
	if err != nil {
		return err
	}
	if err := config.AppendStages(s.WriteChain(), cfg.Write, logger); err != nil {
		_ = s.Close()
		return err
	}

	n, copyErr := io.Copy(s, cmd.InOrStdin())
	if err := s.Close(); err != nil && copyErr == nil {
		copyErr = err
	}
	if copyErr != nil {
		return fmt.Errorf("write pipeline: %w", copyErr)
	}

	logger.Debug().Strs("stages", cfg.Write.Stages).Int64("bytes", n).Msg("write pipeline done")

	return nil
}

// runRead copies a stream whose read chain is built from cfg to stdout.
func runRead(cmd *cobra.Command, cfg config.Pipeline, logger zerolog.Logger) error {
	s, err := stream.New(channel{Reader: cmd.InOrStdin()}, cfg.StreamOptions(logger)...)
	if err != nil {
		return err
	}
	if err := config.AppendStages(s.ReadChain(), cfg.Read, logger); err != nil {
		_ = s.Close()
		return err
	}

	n, copyErr := io.Copy(cmd.OutOrStdout(), s)
	if err := s.Close(); err != nil && copyErr == nil {
		copyErr = err
	}
	if copyErr != nil {
		return fmt.Errorf("read pipeline: %w", copyErr)
	}

	logger.Debug().Strs("stages", cfg.Read.Stages).Int64("bytes", n).Msg("read pipeline done")

	return nil
}
