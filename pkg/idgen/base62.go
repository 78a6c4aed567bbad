package idgen

import (
	"github.com/pkg/errors"
)

// Alphabet is the persisted short code alphabet. Codes already issued depend on
// this exact ordering: digits are 0-9, A-Z are 10-35, a-z are 36-61.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const base = uint64(len(Alphabet))

// maxLen is the encoded length of the largest uint64.
const maxLen = 11

var ErrInvalidCode = errors.New("invalid base62 code")

var charIndex = func() [256]int8 {
	var m [256]int8
	for i := range m {
		m[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		m[Alphabet[i]] = int8(i)
	}
	return m
}()

// Encode maps an identifier to its short code. Digits are filled from the
// right of a fixed buffer so the returned string is the only allocation.
func Encode(n uint64) string {
	if n == 0 {
		return Alphabet[:1]
	}
	var buf [maxLen]byte
	i := maxLen
	for n > 0 {
		i--
		buf[i] = Alphabet[n%base]
		n /= base
	}
	return string(buf[i:])
}

// Decode is the positional inverse of Encode. The service never needs it,
// codes are matched against the stored column.
func Decode(s string) (uint64, error) {
	if s == "" || len(s) > maxLen {
		return 0, errors.Wrapf(ErrInvalidCode, "length %d", len(s))
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		v := charIndex[s[i]]
		if v < 0 {
			return 0, errors.Wrapf(ErrInvalidCode, "character %q", s[i])
		}
		next := n*base + uint64(v)
		if next/base != n {
			return 0, errors.Wrap(ErrInvalidCode, "overflow")
		}
		n = next
	}
	return n, nil
}
