// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asn1

import "strconv"

// Kind discriminates the failure modes of the codec. Every decoding error
// maps to exactly one Kind. The kinds form a flat taxonomy covering the
// syntactic layer (tags and lengths) as well as the per-type content rules.
type Kind int

const (
	// KindTruncation indicates that the input ended before a complete field
	// could be read.
	KindTruncation Kind = iota + 1
	// KindTagPadding indicates a long-form tag number starting with a 0x80
	// continuation octet, or the high-tag-number form used for a tag number
	// below 31.
	KindTagPadding
	// KindTagOverflow indicates a tag number that exceeds the platform word.
	KindTagOverflow
	// KindLengthOverflow indicates a length that exceeds the platform word.
	KindLengthOverflow
	// KindLengthUndefined indicates the reserved length octet 0xFF.
	KindLengthUndefined
	// KindLengthNonMinimal indicates a definite length that is not encoded in
	// the fewest possible octets where the encoding rules require it, or the
	// indefinite-length form under encoding rules that forbid it.
	KindLengthNonMinimal
	// KindConstructionWrong indicates a primitive-only type encoded as
	// constructed, or vice versa.
	KindConstructionWrong
	// KindValueSize indicates content octets whose count is outside the
	// permitted range for the type.
	KindValueSize
	// KindValueInvalid indicates content octets that violate a type
	// invariant.
	KindValueInvalid
	// KindValuePadding indicates a non-minimal encoding within the content
	// octets, such as redundant leading octets of an INTEGER.
	KindValuePadding
	// KindValueOverflow indicates a decoded numeric value that exceeds the
	// target width.
	KindValueOverflow
	// KindValueCharacters indicates a forbidden code unit in a restricted
	// character string.
	KindValueCharacters
	// KindTagClass indicates an unexpected tag class in a composite type.
	KindTagClass
	// KindTagNumber indicates an unexpected tag number in a composite type.
	KindTagNumber
	// KindRecursionLimit indicates nesting beyond the configured depth.
	KindRecursionLimit
)

var kindNames = map[Kind]string{
	KindTruncation:        "truncation",
	KindTagPadding:        "tag-padding",
	KindTagOverflow:       "tag-overflow",
	KindLengthOverflow:    "length-overflow",
	KindLengthUndefined:   "length-undefined",
	KindLengthNonMinimal:  "length-non-minimal",
	KindConstructionWrong: "construction-wrong",
	KindValueSize:         "value-size",
	KindValueInvalid:      "value-invalid",
	KindValuePadding:      "value-padding",
	KindValueOverflow:     "value-overflow",
	KindValueCharacters:   "value-characters",
	KindTagClass:          "tag-class",
	KindTagNumber:         "tag-number",
	KindRecursionLimit:    "recursion-limit",
}

// String returns the hyphenated name of k.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Error describes a failure of the codec. The Offset locates the first octet
// of the field that caused the failure, counted from the start of the octets
// the failing call examined: the data passed to a decode function, or the
// content octets of the element whose accessor failed. It is -1 if no
// location can be attributed.
//
// Decoders report every malformed input through an *Error; they never panic
// and never partially consume input on failure. Encoders fail on values that
// have no valid encoding (for example an object identifier with out-of-range
// components or a string with forbidden characters) and with
// [KindValueOverflow] when a value cannot be represented at all.
type Error struct {
	Kind   Kind
	Offset int
	Msg    string
}

// Error implements the error interface.
func (e *Error) Error() string {
	s := "asn1: " + e.Kind.String()
	if e.Offset >= 0 {
		s += " at offset " + strconv.Itoa(e.Offset)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

// Is reports whether target matches e. Two *Error values match if they agree
// on their Kind. This makes errors.Is(err, &asn1.Error{Kind: k}) usable as a
// kind test.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
