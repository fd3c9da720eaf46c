// Package vlq implements [Variable-length quantity] encoding as used by the
// high-tag-number form and OBJECT IDENTIFIER subidentifiers of BER. A VLQ is
// essentially a base-128 big-endian representation of an unsigned integer
// with the eighth bit of each octet marking continuation.
//
// [Variable-length quantity]: https://en.wikipedia.org/wiki/Variable-length_quantity
package vlq

import (
	"errors"

	"golang.org/x/exp/constraints"
)

var (
	// ErrNotMinimal reports a VLQ with a leading 0x80 padding octet.
	ErrNotMinimal = errors.New("vlq is not minimally encoded")
	// ErrOverflow reports a VLQ too large for the target type.
	ErrOverflow = errors.New("vlq too large for target type")
	// ErrTruncated reports a VLQ whose final octet still has the
	// continuation bit set.
	ErrTruncated = errors.New("vlq is truncated")
)

// Read parses a minimally-encoded unsigned VLQ from the start of b. It
// returns the decoded value and the number of octets consumed. The maximum
// allowed value is limited by the size of T.
func Read[T constraints.Unsigned](b []byte) (T, int, error) {
	if len(b) == 0 {
		return 0, 0, ErrTruncated
	}
	if b[0] == 0x80 {
		return 0, 0, ErrNotMinimal
	}

	var ret T
	var numBits uint
	for n := 0; n < len(b); n++ {
		c := b[n] & 0x7f
		if numBits == 0 {
			numBits = bitLen7(c)
		} else {
			numBits += 7
		}
		if numBits > bitSizeOf[T]() {
			return 0, 0, ErrOverflow
		}
		ret = ret<<7 | T(c)
		if b[n]&0x80 == 0 {
			return ret, n + 1, nil
		}
	}
	return 0, 0, ErrTruncated
}

// bitLen7 returns the number of significant bits in the low 7 bits of b.
func bitLen7(b byte) uint {
	var n uint
	for ; b > 0; b >>= 1 {
		n++
	}
	return n
}

// bitSizeOf returns the width of T in bits.
func bitSizeOf[T constraints.Unsigned]() uint {
	var n uint
	for v := ^T(0); v > 0; v >>= 1 {
		n++
	}
	return n
}

// Length returns the number of octets needed to encode n as a VLQ.
func Length[T constraints.Unsigned](n T) int {
	if n == 0 {
		return 1
	}
	l := 0
	for i := n; i > 0; i >>= 7 {
		l++
	}
	return l
}

// Append appends the VLQ encoding of n to dst and returns the extended slice.
func Append[T constraints.Unsigned](dst []byte, n T) []byte {
	l := Length(n)
	for j := l - 1; j >= 0; j-- {
		b := byte(n>>(uint(j)*7)) & 0x7f
		if j > 0 {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}
