package cipher

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"
)

func printableASCII() string {
	var b strings.Builder
	for r := rune(0x20); r < 0x7f; r++ {
		b.WriteRune(r)
	}
	return b.String()
}

func TestEncode_KnownVectors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		shift    int
		expected string
	}{
		{"greeting", "Hello, World!", 3, "Khoor, Zruog!"},
		{"lowercase wrap", "z", 1, "a"},
		{"uppercase wrap", "Z", 1, "A"},
		{"non ascii letter untouched", "café", 3, "fdfé"},
		{"cyrillic untouched", "привет abc", 3, "привет def"},
		{"negative shift", "abc", -1, "zab"},
		{"shift larger than alphabet", "abc", 29, "def"},
		{"full rotation is identity", "Hello", 26, "Hello"},
		{"empty", "", 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Encode(tt.input, tt.shift))
		})
	}
}

func TestDecode_KnownVectors(t *testing.T) {
	require.Equal(t, "Hello, World!", Decode("Khoor, Zruog!", 3))
	require.Equal(t, "z", Decode("a", 1))
	require.Equal(t, "Z", Decode("A", 1))
	require.Equal(t, "café", Decode("fdfé", 3))
	require.Equal(t, "", Decode("", 3))
}

func TestRoundTrip_AllShifts(t *testing.T) {
	input := printableASCII()
	for k := 0; k < alphabetSize; k++ {
		encoded := Encode(input, k)
		require.Equal(t, input, Decode(encoded, k), "shift %d", k)
	}
}

func TestRoundTrip_OutOfRangeShifts(t *testing.T) {
	input := "The quick brown fox jumps over the lazy dog 0123!"
	for _, k := range []int{-53, -27, -1, 27, 52, 1000} {
		require.Equal(t, input, Decode(Encode(input, k), k), "shift %d", k)
	}
}

func TestEncode_PreservesCase(t *testing.T) {
	input := printableASCII()
	for k := 0; k < alphabetSize; k++ {
		encoded := []rune(Encode(input, k))
		for i, r := range []rune(input) {
			require.Equal(t, unicode.IsUpper(r), unicode.IsUpper(encoded[i]))
			require.Equal(t, unicode.IsLower(r), unicode.IsLower(encoded[i]))
		}
	}
}

func TestEncode_IdentityOnNonLetters(t *testing.T) {
	input := "0123456789 \t\n!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
	for k := 0; k < alphabetSize; k++ {
		require.Equal(t, input, Encode(input, k))
		require.Equal(t, input, Decode(input, k))
	}
}

func TestEncode_PreservesLength(t *testing.T) {
	input := "naïve façade — ok"
	require.Equal(t, len([]rune(input)), len([]rune(Encode(input, 5))))
}

func TestCodec(t *testing.T) {
	req := require.New(t)

	codec := NewCodec(DefaultShift)
	req.Equal(3, codec.Shift())
	req.Equal("Khoor", codec.Encode("Hello"))
	req.Equal("Hello", codec.Decode("Khoor"))

	req.Equal(25, NewCodec(-1).Shift())
	req.Equal(0, NewCodec(52).Shift())

	var zero Codec
	req.Equal("Hello", zero.Encode("Hello"))
}

func BenchmarkEncode(b *testing.B) {
	text := strings.Repeat("Hello, World! ", 64)
	codec := NewCodec(DefaultShift)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = codec.Encode(text)
	}
}

func TestEncode_InvalidUTF8BecomesReplacementChar(t *testing.T) {
	out := Encode("a\xffb", 3)
	require.Equal(t, "d�e", out)
	require.Equal(t, "a�b", Decode(out, 3))
}
