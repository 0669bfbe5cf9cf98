package escape

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/bytecodec/buffer"
	"github.com/arloliu/bytecodec/encoder"
	"github.com/arloliu/bytecodec/errs"
)

var (
	plainChunks   = []string{"encode this!\n", "baroofey\n", "\\", "\nmagoo\b", " "}
	escapedChunks = []string{"encode this!\\n", "baroofey\\n", "\\\\", "\\nmagoo\\b", " "}
)

func TestEncoder_Chunks(t *testing.T) {
	enc := NewEncoder()

	for i, chunk := range plainChunks {
		out, err := encoder.ProcessString(enc, chunk)
		require.NoError(t, err)
		require.Equal(t, escapedChunks[i], out, "chunk %d", i)
	}
}

func TestDecoder_Chunks(t *testing.T) {
	dec := NewDecoder()

	for i, chunk := range escapedChunks {
		out, err := encoder.ProcessString(dec, chunk)
		require.NoError(t, err)
		require.Equal(t, plainChunks[i], out, "chunk %d", i)
		require.Equal(t, StatePassthrough, dec.State())
	}
}

func TestEncoder_OnlyThreeBytesEscaped(t *testing.T) {
	for c := range 256 {
		b := byte(c)
		out := Escape([]byte{b})

		switch b {
		case '\n':
			require.Equal(t, []byte(`\n`), out)
		case '\b':
			require.Equal(t, []byte(`\b`), out)
		case '\\':
			require.Equal(t, []byte(`\\`), out)
		default:
			require.Equal(t, []byte{b}, out, "byte 0x%02x must pass through", b)
			require.False(t, MustEscape(b))
		}
	}
}

func TestMnemonicTable(t *testing.T) {
	tests := []struct {
		name     string
		c        byte
		mnemonic byte
	}{
		{name: "newline", c: '\n', mnemonic: 'n'},
		{name: "backspace", c: '\b', mnemonic: 'b'},
		{name: "backslash", c: '\\', mnemonic: '\\'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Mnemonic(tt.c)
			require.True(t, ok)
			require.Equal(t, tt.mnemonic, m)

			orig, ok := Original(m)
			require.True(t, ok)
			require.Equal(t, tt.c, orig)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, ok := Original('t')
		require.False(t, ok)
		_, ok = Mnemonic('t')
		require.False(t, ok)
	})
}

func TestDecoder_StateMachine(t *testing.T) {
	dec := NewDecoder()
	in := buffer.New(0)
	out := buffer.New(0)

	require.Equal(t, StatePassthrough, dec.State())

	in.PutString(`abc\`)
	require.NoError(t, dec.Encode(in, out))
	require.Equal(t, "abc", out.String())
	require.Equal(t, StatePendingEscape, dec.State())
	require.Zero(t, in.Avail(), "the pending backslash is retained internally")

	in.PutString("n")
	require.NoError(t, dec.Encode(in, out))
	require.Equal(t, "abc\n", out.String())
	require.Equal(t, StatePassthrough, dec.State())

	in.PutString(`\`)
	require.NoError(t, dec.Encode(in, out))
	require.NoError(t, dec.Encode(in, out), "an empty call keeps the pending state")
	require.Equal(t, StatePendingEscape, dec.State())
	in.PutString(`\`)
	require.NoError(t, dec.Encode(in, out))
	require.Equal(t, "abc\n\\", out.String())
	require.Equal(t, StatePassthrough, dec.State())
}

func TestDecoder_UnknownMnemonicIsLiteral(t *testing.T) {
	out, err := encoder.ProcessString(NewDecoder(), `tab\there \q`)
	require.NoError(t, err)
	require.Equal(t, `tab\there \q`, out)

	require.Equal(t, []byte(`\x\`), Unescape([]byte(`\x\`)))
}

func TestDecoder_FlushEmitsPendingBackslash(t *testing.T) {
	dec := NewDecoder()
	in := buffer.NewFromString(`end\`)
	out := buffer.New(0)

	require.NoError(t, dec.Encode(in, out))
	require.Equal(t, "end", out.String())

	require.NoError(t, dec.Flush(out))
	require.Equal(t, `end\`, out.String())
	require.Equal(t, StatePassthrough, dec.State())

	in.PutString(`n`)
	require.NoError(t, dec.Encode(in, out))
	require.Equal(t, `end\n`, out.String(), "a flushed backslash no longer pairs with later input")
}

func TestDecoder_FinishAndReset(t *testing.T) {
	dec := NewDecoder()
	in := buffer.NewFromString(`x\`)
	out := buffer.New(0)

	require.NoError(t, dec.Encode(in, out))
	require.NoError(t, dec.Finish(out))
	require.Equal(t, `x\`, out.String())
	require.True(t, dec.IsFinished())
	require.ErrorIs(t, dec.Encode(in, out), errs.ErrFinished)

	in.PutString(`\`)
	require.NoError(t, dec.Reset())
	require.NoError(t, dec.Encode(in, out))
	require.Equal(t, StatePendingEscape, dec.State())
	require.NoError(t, dec.Reset())
	require.Equal(t, StatePassthrough, dec.State(), "Reset drops a pending backslash")

	enc := NewEncoder()
	require.NoError(t, enc.Finish(out))
	require.ErrorIs(t, enc.Flush(out), errs.ErrFinished)
	require.NoError(t, enc.Reset())
	require.NoError(t, enc.Flush(out))
}

func TestState_String(t *testing.T) {
	require.Equal(t, "passthrough", StatePassthrough.String())
	require.Equal(t, "pending-escape", StatePendingEscape.String())
	require.Equal(t, "unknown", State(9).String())
}

// feed pushes data through e split at the given boundaries, flushing only at the end.
func feed(t *testing.T, e encoder.Encoder, data []byte, cuts []int) []byte {
	t.Helper()

	in := buffer.New(0)
	out := buffer.New(0)
	prev := 0
	for _, cut := range append(cuts, len(data)) {
		in.Put(data[prev:cut])
		require.NoError(t, e.Encode(in, out))
		prev = cut
	}
	require.NoError(t, e.Flush(out))

	return out.Drain()
}

func TestRoundTrip_SplitAfterEscapeTrigger(t *testing.T) {
	data := []byte("a\nb\\c\bd")

	for cut := 0; cut <= len(data); cut++ {
		t.Run(fmt.Sprintf("cut=%d", cut), func(t *testing.T) {
			escaped := feed(t, NewEncoder(), data, []int{cut})
			require.Equal(t, Escape(data), escaped)

			for ecut := 0; ecut <= len(escaped); ecut++ {
				decoded := feed(t, NewDecoder(), escaped, []int{ecut})
				require.Equal(t, data, decoded, "escaped cut %d", ecut)
			}
		})
	}
}

func TestRoundTrip_RandomChunks(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []byte{'\n', '\b', '\\', 'n', 'b', ' ', 'x', 0x00, 0xFF}

	for iter := range 300 {
		data := make([]byte, rng.Intn(64))
		for i := range data {
			if rng.Intn(2) == 0 {
				data[i] = alphabet[rng.Intn(len(alphabet))]
			} else {
				data[i] = byte(rng.Intn(256))
			}
		}

		escaped := feed(t, NewEncoder(), data, randomCuts(rng, len(data)))
		require.NotContains(t, string(escaped), "\n")

		decoded := feed(t, NewDecoder(), escaped, randomCuts(rng, len(escaped)))
		require.True(t, bytes.Equal(data, decoded), "iteration %d: %q != %q", iter, data, decoded)
		require.Equal(t, data, Unescape(Escape(data)))
	}
}

func randomCuts(rng *rand.Rand, n int) []int {
	cuts := []int{}
	for pos := 0; pos < n; {
		pos += 1 + rng.Intn(4)
		if pos < n {
			cuts = append(cuts, pos)
		}
	}

	return cuts
}

func BenchmarkEncoder(b *testing.B) {
	data := bytes.Repeat([]byte("line of text\\with escapes\n"), 256)
	enc := NewEncoder()
	in := buffer.New(len(data))
	out := buffer.New(len(data) * 2)

	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for b.Loop() {
		in.Put(data)
		_ = enc.Encode(in, out)
		out.Zap()
		in.Zap()
	}
}

func BenchmarkDecoder(b *testing.B) {
	data := Escape(bytes.Repeat([]byte("line of text\\with escapes\n"), 256))
	dec := NewDecoder()
	in := buffer.New(len(data))
	out := buffer.New(len(data))

	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for b.Loop() {
		in.Put(data)
		_ = dec.Encode(in, out)
		out.Zap()
		in.Zap()
	}
}
