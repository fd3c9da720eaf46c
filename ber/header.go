// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"math"
	"math/bits"

	"x690.dev/asn1"
	"x690.dev/asn1/internal/vlq"
)

// lengthIndefinite is the magic length of a header that uses the constructed
// indefinite-length form.
const lengthIndefinite = -1

// header represents the identifier and length octets of a data value
// encoding. The length is lengthIndefinite if the indefinite-length form is
// used; in that case constructed is always true.
type header struct {
	tag         asn1.Tag
	constructed bool
	length      int
}

// errAt builds a decode error of the given kind located at offset off.
func errAt(k asn1.Kind, off int, msg string) *asn1.Error {
	return &asn1.Error{Kind: k, Offset: off, Msg: msg}
}

// decodeHeader parses the identifier and length octets starting at data[off].
// It returns the parsed header and the number of octets it occupies. The
// strictness profile of rules decides whether the indefinite-length form and
// non-minimal definite lengths are acceptable.
func decodeHeader(rules EncodingRules, data []byte, off int) (h header, n int, err error) {
	if off >= len(data) {
		return h, 0, errAt(asn1.KindTruncation, off, "missing identifier octet")
	}
	b := data[off]
	h.tag.Class = asn1.Class(b >> 6)
	h.constructed = b&0x20 != 0
	h.tag.Number = uint(b & 0x1f)
	n = 1

	// A low tag field of all ones announces the high-tag-number form.
	if b&0x1f == 0x1f {
		num, vn, verr := vlq.Read[uint](data[off+n:])
		if verr != nil {
			switch verr {
			case vlq.ErrNotMinimal:
				return h, 0, errAt(asn1.KindTagPadding, off+n, "leading 0x80 in tag number")
			case vlq.ErrOverflow:
				return h, 0, errAt(asn1.KindTagOverflow, off+n, "tag number exceeds platform word")
			default:
				return h, 0, errAt(asn1.KindTruncation, off+n, "truncated tag number")
			}
		}
		if num < 31 {
			return h, 0, errAt(asn1.KindTagPadding, off+1, "high-tag-number form for a low tag number")
		}
		h.tag.Number = num
		n += vn
	}

	if off+n >= len(data) {
		return h, 0, errAt(asn1.KindTruncation, off+n, "missing length octet")
	}
	b = data[off+n]
	n++
	switch {
	case b&0x80 == 0:
		// Short form: the length is the low 7 bits.
		h.length = int(b)
	case b == 0x80:
		if !rules.allowsIndefinite() {
			return h, 0, errAt(asn1.KindLengthNonMinimal, off+n-1, "indefinite length under "+rules.String())
		}
		if !h.constructed {
			return h, 0, errAt(asn1.KindConstructionWrong, off+n-1, "indefinite length on primitive encoding")
		}
		h.length = lengthIndefinite
	case b == 0xFF:
		return h, 0, errAt(asn1.KindLengthUndefined, off+n-1, "reserved length octet 0xFF")
	default:
		// Long form: the low 7 bits give the number of length octets.
		numBytes := int(b & 0x7f)
		if off+n+numBytes > len(data) {
			return h, 0, errAt(asn1.KindTruncation, off+n, "truncated length")
		}
		if rules.canonicalLengths() && data[off+n] == 0x00 {
			return h, 0, errAt(asn1.KindLengthNonMinimal, off+n, "leading zero in length")
		}
		for i := 0; i < numBytes; i++ {
			if h.length > math.MaxInt>>8 {
				return h, 0, errAt(asn1.KindLengthOverflow, off+n-1, "length exceeds platform word")
			}
			h.length = h.length<<8 | int(data[off+n+i])
		}
		n += numBytes
		if rules.canonicalLengths() && h.length < 0x80 {
			return h, 0, errAt(asn1.KindLengthNonMinimal, off+n-numBytes-1, "long form where short form suffices")
		}
	}
	return h, n, nil
}

// isEOC reports whether the end-of-contents octets start at data[off].
func isEOC(data []byte, off int) bool {
	return off+2 <= len(data) && data[off] == 0x00 && data[off+1] == 0x00
}

// findEOC locates the end-of-contents octets terminating the
// indefinite-length value whose content octets start at data[off]. It walks
// the nested data value encodings and returns the offset of the terminating
// EOC. depth counts the nesting of indefinite-length forms entered so far and
// is bounded by maxDepth.
func findEOC(rules EncodingRules, data []byte, off, depth, maxDepth int) (int, error) {
	if depth >= maxDepth {
		return 0, errAt(asn1.KindRecursionLimit, off, "nesting exceeds depth limit")
	}
	for {
		if isEOC(data, off) {
			return off, nil
		}
		if off >= len(data) {
			return 0, errAt(asn1.KindTruncation, off, "missing end-of-contents")
		}
		h, n, err := decodeHeader(rules, data, off)
		if err != nil {
			return 0, err
		}
		off += n
		if h.length == lengthIndefinite {
			end, err := findEOC(rules, data, off, depth+1, maxDepth)
			if err != nil {
				return 0, err
			}
			off = end + 2
		} else {
			if h.length > len(data)-off {
				return 0, errAt(asn1.KindTruncation, off, "content octets exceed input")
			}
			off += h.length
		}
	}
}

// headerLen computes the number of octets appendHeader will write for the
// given tag and length.
func headerLen(tag asn1.Tag, length int) int {
	n := 2
	if tag.Number >= 31 {
		n += vlq.Length(tag.Number)
	}
	if length >= 128 {
		n += (bits.Len(uint(length)) + 7) / 8
	}
	return n
}

// appendHeader appends the identifier and length octets for a data value
// encoding to dst. A length of lengthIndefinite selects the
// indefinite-length form; definite lengths always use the fewest possible
// octets, which is valid under all three transfer syntaxes.
func appendHeader(dst []byte, tag asn1.Tag, constructed bool, length int) []byte {
	b := byte(tag.Class) << 6
	if constructed {
		b |= 0x20
	}
	if tag.Number < 31 {
		dst = append(dst, b|byte(tag.Number))
	} else {
		dst = append(dst, b|0x1f)
		dst = vlq.Append(dst, tag.Number)
	}

	switch {
	case length == lengthIndefinite:
		dst = append(dst, 0x80)
	case length < 128:
		dst = append(dst, byte(length))
	default:
		numBytes := (bits.Len(uint(length)) + 7) / 8
		dst = append(dst, 0x80|byte(numBytes))
		for ; numBytes > 0; numBytes-- {
			dst = append(dst, byte(length>>uint((numBytes-1)*8)))
		}
	}
	return dst
}
