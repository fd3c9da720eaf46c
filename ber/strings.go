// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"strings"
	"unicode/utf8"

	"x690.dev/asn1"
)

//region segmentation

// stringLeaves collects the content octets of a string encoding. A primitive
// encoding yields a single leaf. A constructed encoding (permitted under BER
// and CER, forbidden under DER) is walked recursively; every segment must
// repeat the tag of the outer element. Under CER each primitive segment is
// limited to [MaxStringSegment] content octets.
func (e *Element) stringLeaves() ([][]byte, error) {
	if !e.Constructed {
		if e.rules.segmentedStrings() && len(e.value) > MaxStringSegment {
			return nil, errAt(asn1.KindValueSize, -1, "primitive string exceeds 1000 octets under CER")
		}
		return [][]byte{e.value}, nil
	}
	if !e.rules.constructedStrings() {
		return nil, errAt(asn1.KindConstructionWrong, -1, "constructed string under DER")
	}
	return e.appendStringLeaves(nil, 0)
}

// appendStringLeaves appends the leaf segments of a constructed string
// encoding to leaves.
func (e *Element) appendStringLeaves(leaves [][]byte, depth int) ([][]byte, error) {
	if depth >= DefaultMaxDepth {
		return nil, errAt(asn1.KindRecursionLimit, -1, "string nesting exceeds depth limit")
	}
	children, err := e.Children()
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		if c.Tag.Class != e.Tag.Class {
			return nil, errAt(asn1.KindTagClass, -1, "segment class does not match "+e.Tag.String())
		}
		if c.Tag.Number != e.Tag.Number {
			return nil, errAt(asn1.KindTagNumber, -1, "segment tag does not match "+e.Tag.String())
		}
		if c.Constructed {
			if e.rules.segmentedStrings() {
				return nil, errAt(asn1.KindConstructionWrong, -1, "nested constructed segment under CER")
			}
			if leaves, err = c.appendStringLeaves(leaves, depth+1); err != nil {
				return nil, err
			}
			continue
		}
		if e.rules.segmentedStrings() && len(c.value) > MaxStringSegment {
			return nil, errAt(asn1.KindValueSize, -1, "string segment exceeds 1000 octets under CER")
		}
		leaves = append(leaves, c.value)
	}
	return leaves, nil
}

// setSegments turns e into a constructed, indefinite-length encoding whose
// content octets are the given segments, each encoded primitively with the
// tag of e. This is the segmented form CER mandates for long strings.
func (e *Element) setSegments(segs [][]byte) {
	var v []byte
	for _, seg := range segs {
		v = appendHeader(v, e.Tag, false, len(seg))
		v = append(v, seg...)
	}
	e.Constructed = true
	e.indefinite = true
	e.value = v
}

//endregion

//region charset policies

// isTextTag reports whether number designates one of the restricted (or
// unrestricted UTF-8) character string types handled by the Text accessors.
func isTextTag(number uint) bool {
	switch number {
	case asn1.TagUTF8String, asn1.TagNumericString, asn1.TagPrintableString,
		asn1.TagT61String, asn1.TagVideotexString, asn1.TagIA5String,
		asn1.TagGraphicString, asn1.TagVisibleString, asn1.TagGeneralString,
		asn1.TagUniversalString, asn1.TagBMPString, asn1.TagObjectDescriptor:
		return true
	}
	return false
}

// checkCharset validates the octets of a single-octet-per-character string
// type against the alphabet of the type identified by number. Multi-octet
// types (UniversalString, BMPString) are handled by their dedicated
// conversion routines instead.
func checkCharset(number uint, b []byte) error {
	valid := true
	switch number {
	case asn1.TagNumericString:
		valid = asn1.NumericString(b).IsValid()
	case asn1.TagPrintableString:
		valid = asn1.PrintableString(b).IsValid()
	case asn1.TagVisibleString:
		valid = asn1.VisibleString(b).IsValid()
	case asn1.TagGraphicString, asn1.TagObjectDescriptor:
		valid = asn1.GraphicString(b).IsValid()
	case asn1.TagIA5String:
		valid = asn1.IA5String(b).IsValid()
	case asn1.TagGeneralString:
		valid = asn1.GeneralString(b).IsValid()
	case asn1.TagUTF8String:
		valid = utf8.Valid(b)
	case asn1.TagT61String, asn1.TagVideotexString:
		// opaque octets, no alphabet to enforce
	}
	if !valid {
		return errAt(asn1.KindValueCharacters, -1, "forbidden character in "+asn1.Universal(number).String())
	}
	return nil
}

//endregion

//region Text accessors

// Text decodes the content octets as the character string type named by the
// element's universal tag, applying that type's alphabet. Constructed string
// encodings are assembled from their segments under BER and CER. For
// implicitly tagged strings whose element carries a non-universal tag, use
// [Element.TextAs].
func (e *Element) Text() (string, error) {
	if e.Tag.Class != asn1.ClassUniversal {
		return "", errAt(asn1.KindTagClass, -1, "element is not universally tagged; use TextAs")
	}
	return e.TextAs(e.Tag.Number)
}

// TextAs decodes the content octets as the character string type designated
// by the universal tag number, irrespective of the element's own tag.
func (e *Element) TextAs(number uint) (string, error) {
	if !isTextTag(number) {
		return "", errAt(asn1.KindTagNumber, -1, asn1.Universal(number).String()+" is not a character string type")
	}
	leaves, err := e.stringLeaves()
	if err != nil {
		return "", err
	}
	var n int
	for _, leaf := range leaves {
		n += len(leaf)
	}
	buf := make([]byte, 0, n)
	for _, leaf := range leaves {
		buf = append(buf, leaf...)
	}
	switch number {
	case asn1.TagUniversalString:
		return decodeUTF32(buf)
	case asn1.TagBMPString:
		return decodeUTF16(buf)
	}
	if err := checkCharset(number, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// SetText replaces the content octets with the encoding of s as the
// character string type named by the element's universal tag. For implicitly
// tagged strings use [Element.SetTextAs].
func (e *Element) SetText(s string) error {
	if e.Tag.Class != asn1.ClassUniversal {
		return errAt(asn1.KindTagClass, -1, "element is not universally tagged; use SetTextAs")
	}
	return e.SetTextAs(e.Tag.Number, s)
}

// SetTextAs replaces the content octets with the encoding of s as the
// character string type designated by the universal tag number. The tag of
// the element is left untouched. Under CER strings longer than
// [MaxStringSegment] octets are segmented.
func (e *Element) SetTextAs(number uint, s string) error {
	if !isTextTag(number) {
		return errAt(asn1.KindTagNumber, -1, asn1.Universal(number).String()+" is not a character string type")
	}
	var wire []byte
	var err error
	switch number {
	case asn1.TagUniversalString:
		wire, err = encodeUTF32(s)
	case asn1.TagBMPString:
		wire, err = encodeUTF16(s)
	default:
		wire = []byte(s)
		err = checkCharset(number, wire)
	}
	if err != nil {
		return err
	}
	e.SetOctetString(wire) // same primitive/segmented layout as OCTET STRING
	return nil
}

//endregion

//region UTF-32 and UTF-16

// decodeUTF32 converts big-endian UTF-32 octets into a Go string.
func decodeUTF32(b []byte) (string, error) {
	if len(b)%4 != 0 {
		return "", errAt(asn1.KindValueSize, -1, "UniversalString length is no multiple of 4")
	}
	var sb strings.Builder
	sb.Grow(len(b) / 4)
	for i := 0; i < len(b); i += 4 {
		x := uint32(b[i])<<24 | uint32(b[i+1])<<16 | uint32(b[i+2])<<8 | uint32(b[i+3])
		if x > 0x10FFFF || !utf8.ValidRune(rune(x)) {
			return "", errAt(asn1.KindValueCharacters, i, "invalid character in UniversalString")
		}
		sb.WriteRune(rune(x))
	}
	return sb.String(), nil
}

// encodeUTF32 converts a Go string into big-endian UTF-32 octets.
func encodeUTF32(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, errAt(asn1.KindValueCharacters, -1, "string is not valid UTF-8")
	}
	buf := make([]byte, 0, 4*utf8.RuneCountInString(s))
	for _, r := range s {
		buf = append(buf, byte(r>>24), byte(r>>16), byte(r>>8), byte(r))
	}
	return buf, nil
}

// decodeUTF16 converts big-endian UTF-16 octets into a Go string. Only
// characters of the Basic Multilingual Plane are permitted, so surrogate
// code units are rejected.
func decodeUTF16(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", errAt(asn1.KindValueSize, -1, "BMPString length is no multiple of 2")
	}
	var sb strings.Builder
	sb.Grow(len(b) / 2)
	for i := 0; i < len(b); i += 2 {
		x := rune(b[i])<<8 | rune(b[i+1])
		if x >= 0xD800 && x < 0xE000 {
			return "", errAt(asn1.KindValueCharacters, i, "surrogate code unit in BMPString")
		}
		sb.WriteRune(x)
	}
	return sb.String(), nil
}

// encodeUTF16 converts a Go string into big-endian UTF-16 octets. Characters
// outside the Basic Multilingual Plane are rejected.
func encodeUTF16(s string) ([]byte, error) {
	if !asn1.BMPString(s).IsValid() {
		return nil, errAt(asn1.KindValueCharacters, -1, "string contains characters outside the BMP")
	}
	buf := make([]byte, 0, 2*utf8.RuneCountInString(s))
	for _, r := range s {
		buf = append(buf, byte(r>>8), byte(r))
	}
	return buf, nil
}
