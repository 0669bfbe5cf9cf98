package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompressionType_String(t *testing.T) {
	tests := []struct {
		ct   CompressionType
		want string
	}{
		{CompressionNone, "None"},
		{CompressionZstd, "Zstd"},
		{CompressionS2, "S2"},
		{CompressionLZ4, "LZ4"},
		{CompressionType(0), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, tt.ct.String())
		})
	}
}

func TestParseCompressionType(t *testing.T) {
	tests := []struct {
		name string
		want CompressionType
		ok   bool
	}{
		{name: "none", want: CompressionNone, ok: true},
		{name: "zstd", want: CompressionZstd, ok: true},
		{name: "s2", want: CompressionS2, ok: true},
		{name: "lz4", want: CompressionLZ4, ok: true},
		{name: "gzip", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, ok := ParseCompressionType(tt.name)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, tt.want, ct)
				require.True(t, ct.Valid())
			}
		})
	}

	require.False(t, CompressionType(0x9).Valid())
}
