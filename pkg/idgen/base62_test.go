package idgen

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		input    uint64
		expected string
	}{
		{0, "0"},
		{9, "9"},
		{10, "A"},
		{35, "Z"},
		{36, "a"},
		{61, "z"},
		{62, "10"},
		{125, "21"},
		{12345, "3D7"},
		{916132831, "zzzzz"}, // 62^5 - 1
		{math.MaxUint64, "LygHa16AHYF"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Encode(tt.input), "Encode(%d)", tt.input)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		input    uint64
		expected string
	}{
		{0, "0"},
		{62, "10"},
		{125, "21"},
		{12345, "3D7"},
		{916132831, "zzzzz"},
	}

	for _, tt := range tests {
		got, err := Decode(tt.expected)
		require.NoError(t, err)
		assert.Equal(t, tt.input, got, "Decode(%s)", tt.expected)
	}
}

func TestDecode_Invalid(t *testing.T) {
	for _, s := range []string{"", "ab-c", "zz zz", "zzzzzzzzzzzz"} {
		_, err := Decode(s)
		assert.ErrorIs(t, err, ErrInvalidCode, "Decode(%q)", s)
	}
}

func TestEncodeDecodeRoundtrip(t *testing.T) {
	r := rand.New(rand.NewSource(62))
	seen := make(map[string]uint64)
	check := func(n uint64) {
		code := Encode(n)
		require.NotEmpty(t, code)
		decoded, err := Decode(code)
		require.NoError(t, err)
		require.Equal(t, n, decoded)
		if prev, ok := seen[code]; ok && prev != n {
			t.Fatalf("Encode(%d) and Encode(%d) both produced %q", prev, n, code)
		}
		seen[code] = n
	}

	for i := uint64(0); i < 100000; i += 1234 {
		check(i)
	}
	for i := 0; i < 5000; i++ {
		check(r.Uint64())
	}
	check(math.MaxUint64)
}
