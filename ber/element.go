// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"bytes"
	"slices"
	"strconv"

	"x690.dev/asn1"
)

// Element is a single decoded or to-be-encoded data value: one node of the
// tag-length-value structure. An Element owns its content octets; the slices
// passed to setters and returned by getters are copied so that no buffer is
// ever shared between an Element and its caller or between two Elements.
//
// Every Element belongs to exactly one of the three transfer syntaxes. The
// typed accessor methods apply the strictness profile of that syntax, so a
// value decoded through [DecodeDER] cannot accidentally accept BER-only
// forms.
type Element struct {
	// Tag is the tag of the data value.
	Tag asn1.Tag
	// Constructed reports whether the content octets are a concatenation of
	// nested data value encodings rather than raw contents.
	Constructed bool

	rules      EncodingRules
	indefinite bool
	value      []byte
}

// New returns an empty primitive Element with the given tag, belonging to the
// given transfer syntax.
func New(rules EncodingRules, tag asn1.Tag) *Element {
	return &Element{Tag: tag, rules: rules}
}

// Rules returns the transfer syntax the element belongs to.
func (e *Element) Rules() EncodingRules {
	return e.rules
}

// Len returns the number of content octets.
func (e *Element) Len() int {
	return len(e.value)
}

// Value returns a copy of the content octets.
func (e *Element) Value() []byte {
	return bytes.Clone(e.value)
}

// SetValue replaces the content octets with a copy of value. The tag and
// construction of e are left untouched; use the typed setters to produce
// well-formed contents for a universal type.
func (e *Element) SetValue(value []byte) {
	e.value = bytes.Clone(value)
}

// Indefinite reports whether the element was decoded from (or will encode
// to) the constructed indefinite-length form.
func (e *Element) Indefinite() bool {
	return e.useIndefinite()
}

// SetIndefinite selects the indefinite-length form for encoding. The request
// is ignored where the form is unavailable: on primitive encodings and under
// DER.
func (e *Element) SetIndefinite(indefinite bool) {
	e.indefinite = indefinite
}

// String returns a short diagnostic representation of e.
func (e *Element) String() string {
	s := e.Tag.String()
	if e.Constructed {
		s += "/c"
	} else {
		s += "/p"
	}
	return s + ":" + strconv.Itoa(len(e.value)) + " (" + e.rules.String() + ")"
}

// Equal reports whether e and other agree on transfer syntax, tag,
// construction and content octets.
func (e *Element) Equal(other *Element) bool {
	return e.rules == other.rules &&
		e.Tag == other.Tag &&
		e.Constructed == other.Constructed &&
		bytes.Equal(e.value, other.value)
}

//region decoding

// DecodeBER decodes a single data value encoding from the start of data
// using the Basic Encoding Rules. It returns the decoded element and the
// number of octets it occupied. Remaining octets are not touched.
func DecodeBER(data []byte) (*Element, int, error) {
	return Decode(BER, data)
}

// DecodeCER decodes a single data value encoding from the start of data
// using the Canonical Encoding Rules.
func DecodeCER(data []byte) (*Element, int, error) {
	return Decode(CER, data)
}

// DecodeDER decodes a single data value encoding from the start of data
// using the Distinguished Encoding Rules.
func DecodeDER(data []byte) (*Element, int, error) {
	return Decode(DER, data)
}

// Decode decodes a single data value encoding from the start of data using
// the given transfer syntax and the [DefaultMaxDepth] nesting limit.
func Decode(rules EncodingRules, data []byte) (*Element, int, error) {
	return DecodeDepth(rules, data, DefaultMaxDepth)
}

// DecodeDepth decodes a single data value encoding from the start of data.
// maxDepth bounds the nesting of indefinite-length forms; exceeding it fails
// with [asn1.KindRecursionLimit].
//
// On failure no part of data counts as consumed. The content octets of the
// returned element are copied out of data, so data may be reused afterwards.
func DecodeDepth(rules EncodingRules, data []byte, maxDepth int) (*Element, int, error) {
	h, n, err := decodeHeader(rules, data, 0)
	if err != nil {
		return nil, 0, err
	}
	e := &Element{Tag: h.tag, Constructed: h.constructed, rules: rules}
	if h.length == lengthIndefinite {
		end, err := findEOC(rules, data, n, 0, maxDepth)
		if err != nil {
			return nil, 0, err
		}
		e.indefinite = true
		e.value = bytes.Clone(data[n:end])
		return e, end + 2, nil
	}
	if h.length > len(data)-n {
		return nil, 0, errAt(asn1.KindTruncation, n, "content octets exceed input")
	}
	e.value = bytes.Clone(data[n : n+h.length])
	return e, n + h.length, nil
}

//endregion

//region encoding

// Encode serializes e into its complete data value encoding consisting of
// identifier, length and content octets. The definite-length form with a
// minimal length is used unless the indefinite-length form was selected (and
// is available under the element's transfer syntax).
func (e *Element) Encode() []byte {
	if e.useIndefinite() {
		dst := make([]byte, 0, headerLen(e.Tag, lengthIndefinite)+len(e.value)+2)
		dst = appendHeader(dst, e.Tag, e.Constructed, lengthIndefinite)
		dst = append(dst, e.value...)
		return append(dst, 0x00, 0x00)
	}
	dst := make([]byte, 0, headerLen(e.Tag, len(e.value))+len(e.value))
	dst = appendHeader(dst, e.Tag, e.Constructed, len(e.value))
	return append(dst, e.value...)
}

// useIndefinite reports whether Encode emits the indefinite-length form.
func (e *Element) useIndefinite() bool {
	return e.indefinite && e.Constructed && e.rules.allowsIndefinite()
}

//endregion

//region SEQUENCE, SET, SEQUENCE OF, SET OF

// Children decodes the content octets of a constructed element into its
// nested elements. The nested elements belong to the same transfer syntax as
// e.
//
// For a universal SET encoding under CER or DER, Children verifies that the
// nested encodings are sorted as required for SET OF by Rec. ITU-T X.690,
// Section 11.6 and fails with [asn1.KindValueInvalid] if they are not.
func (e *Element) Children() ([]*Element, error) {
	if !e.Constructed {
		return nil, errAt(asn1.KindConstructionWrong, -1, "primitive encoding has no nested elements")
	}
	var children []*Element
	var prev []byte
	checkOrder := e.rules.canonicalValues() && e.Tag == asn1.Universal(asn1.TagSet)
	for off := 0; off < len(e.value); {
		if e.indefinite && isEOC(e.value, off) {
			// nested EOC closing a child that was itself indefinite has
			// already been consumed with that child
			return nil, errAt(asn1.KindValueInvalid, off, "stray end-of-contents")
		}
		child, n, err := Decode(e.rules, e.value[off:])
		if err != nil {
			if ee, ok := err.(*asn1.Error); ok && ee.Offset >= 0 {
				ee.Offset += off
			}
			return nil, err
		}
		if checkOrder {
			enc := e.value[off : off+n]
			if prev != nil && bytes.Compare(prev, enc) > 0 {
				return nil, errAt(asn1.KindValueInvalid, off, "SET OF components not sorted")
			}
			prev = enc
		}
		children = append(children, child)
		off += n
	}
	return children, nil
}

// SetChildren replaces the content octets of e with the concatenated
// encodings of the given elements and marks e constructed. All children must
// belong to the same transfer syntax as e.
//
// For a universal SET encoding under CER or DER the children are sorted by
// their complete encodings as required for SET OF by Rec. ITU-T X.690,
// Section 11.6.
func (e *Element) SetChildren(children ...*Element) error {
	encs := make([][]byte, len(children))
	for i, c := range children {
		if c.rules != e.rules {
			return errAt(asn1.KindValueInvalid, -1, "child uses "+c.rules.String()+", parent uses "+e.rules.String())
		}
		encs[i] = c.Encode()
	}
	if e.rules.canonicalValues() && e.Tag == asn1.Universal(asn1.TagSet) {
		slices.SortStableFunc(encs, bytes.Compare)
	}
	var n int
	for _, enc := range encs {
		n += len(enc)
	}
	v := make([]byte, 0, n)
	for _, enc := range encs {
		v = append(v, enc...)
	}
	e.Constructed = true
	e.indefinite = false
	e.value = v
	return nil
}

//endregion
