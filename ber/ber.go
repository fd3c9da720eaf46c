// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ber implements the ASN.1 Basic Encoding Rules (BER) and their
// canonical subsets, the Canonical Encoding Rules (CER) and the Distinguished
// Encoding Rules (DER), as defined in [Rec. ITU-T X.690].
// See also “[A Layman's Guide to a Subset of ASN.1, BER, and DER]”.
//
// The package exposes a dynamic tag-length-value model: every encoded data
// value is an [Element] carrying its tag, its construction and its content
// octets. Typed accessors on Element translate between content octets and Go
// values for every universal ASN.1 type of X.690 (07/2002). The accessors are
// getter/setter pairs: getters validate the content octets against the type's
// invariants, setters always serialize the canonical form.
//
// Which of the three transfer syntaxes an Element belongs to is fixed when
// the Element is created, either by one of the [DecodeBER], [DecodeCER] and
// [DecodeDER] entry points or by [New]. The [EncodingRules] value of an
// Element selects the strictness profile applied by all accessors: the
// canonical rules reject the non-canonical forms BER tolerates (redundant
// INTEGER padding, BOOLEAN values other than 0x00 and 0xFF, non-minimal
// lengths, unsorted SET OF and so on) and the setters produce the canonical
// forms mandated by CER and DER.
//
// Decoding is a pure function of the input bytes: no input is consumed on
// failure, malformed input is reported through [*asn1.Error] values and never
// through panics, and the nesting depth of the indefinite-length form is
// bounded (see [DefaultMaxDepth]).
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
// [A Layman's Guide to a Subset of ASN.1, BER, and DER]: http://luca.ntop.org/Teaching/Appunti/asn1.html
package ber

// EncodingRules selects one of the three transfer syntaxes implemented by
// this package. The zero value is BER.
//
//go:generate go tool stringer -type=EncodingRules
type EncodingRules uint8

// The supported transfer syntaxes.
const (
	BER EncodingRules = iota
	CER
	DER
)

// IsValid reports whether r is one of the supported transfer syntaxes.
func (r EncodingRules) IsValid() bool {
	return r <= DER
}

// allowsIndefinite reports whether r permits the indefinite-length form for
// constructed encodings.
func (r EncodingRules) allowsIndefinite() bool {
	return r != DER
}

// canonicalLengths reports whether definite lengths must use the fewest
// possible octets.
func (r EncodingRules) canonicalLengths() bool {
	return r != BER
}

// canonicalValues reports whether the canonical content rules apply: minimal
// INTEGER and ENUMERATED, BOOLEAN restricted to 0x00/0xFF, zero BIT STRING
// padding bits, REAL with odd mantissa and zero scale factor, NR3-only
// character REAL, and sorted SET OF.
func (r EncodingRules) canonicalValues() bool {
	return r != BER
}

// constructedStrings reports whether string types may use the constructed
// encoding. Under DER strings are always primitive; under CER strings above
// [MaxStringSegment] octets are segmented (see segmentedStrings).
func (r EncodingRules) constructedStrings() bool {
	return r != DER
}

// segmentedStrings reports whether string types longer than
// [MaxStringSegment] octets must be split into primitive segments of at most
// [MaxStringSegment] octets inside a constructed, indefinite-length encoding.
func (r EncodingRules) segmentedStrings() bool {
	return r == CER
}

// MaxStringSegment is the largest number of content octets a single segment
// of a segmented string encoding may carry under CER. See Rec. ITU-T X.690,
// Section 9.2.
const MaxStringSegment = 1000

// DefaultMaxDepth is the nesting depth limit applied by the Decode entry
// points. Use [DecodeDepth] to decode with a different limit.
const DefaultMaxDepth = 16
