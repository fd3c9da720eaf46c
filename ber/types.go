// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"bytes"
	"math/big"

	"golang.org/x/exp/constraints"

	"x690.dev/asn1"
	"x690.dev/asn1/internal/vlq"
)

// primitive fails with [asn1.KindConstructionWrong] unless e uses the
// primitive encoding. It guards the accessors of types that X.690 forbids to
// be constructed.
func (e *Element) primitive() error {
	if e.Constructed {
		return errAt(asn1.KindConstructionWrong, -1, "constructed encoding of a primitive-only type")
	}
	return nil
}

//region [UNIVERSAL 1] BOOLEAN

// Bool decodes the content octets as an ASN.1 BOOLEAN. Under BER any non-zero
// content octet decodes as true. Under CER and DER only 0x00 and 0xFF are
// accepted.
func (e *Element) Bool() (bool, error) {
	if err := e.primitive(); err != nil {
		return false, err
	}
	if len(e.value) != 1 {
		return false, errAt(asn1.KindValueSize, -1, "BOOLEAN must be exactly one octet")
	}
	b := e.value[0]
	if e.rules.canonicalValues() && b != 0x00 && b != 0xFF {
		return false, errAt(asn1.KindValueInvalid, -1, "BOOLEAN octet must be 0x00 or 0xFF under "+e.rules.String())
	}
	return b != 0, nil
}

// SetBool replaces the content octets with the canonical encoding of v: 0xFF
// for true and 0x00 for false.
func (e *Element) SetBool(v bool) {
	e.Constructed = false
	e.indefinite = false
	if v {
		e.value = []byte{0xFF}
	} else {
		e.value = []byte{0x00}
	}
}

//endregion

//region [UNIVERSAL 2] INTEGER and [UNIVERSAL 10] ENUMERATED

// checkIntContents validates the shared content rules of INTEGER and
// ENUMERATED. Redundant leading octets are only rejected under the canonical
// profiles.
func (e *Element) checkIntContents() error {
	if err := e.primitive(); err != nil {
		return err
	}
	v := e.value
	if len(v) == 0 {
		return errAt(asn1.KindValueSize, -1, "INTEGER must have at least one content octet")
	}
	if e.rules.canonicalValues() && len(v) > 1 {
		if v[0] == 0x00 && v[1]&0x80 == 0 || v[0] == 0xFF && v[1]&0x80 != 0 {
			return errAt(asn1.KindValuePadding, -1, "INTEGER not minimally encoded")
		}
	}
	return nil
}

// Int64 decodes the content octets as a two's-complement integer. Values
// outside the int64 range fail with [asn1.KindValueOverflow].
func (e *Element) Int64() (int64, error) {
	if err := e.checkIntContents(); err != nil {
		return 0, err
	}
	v := e.value
	if len(v) > 8 {
		return 0, errAt(asn1.KindValueOverflow, -1, "INTEGER exceeds 64 bits")
	}
	var ret int64
	for _, b := range v {
		ret = ret<<8 | int64(b)
	}
	// Shift up and down in order to sign extend the result.
	ret <<= 64 - uint(len(v))*8
	ret >>= 64 - uint(len(v))*8
	return ret, nil
}

// SetInt64 replaces the content octets with the minimal two's-complement
// encoding of v.
func (e *Element) SetInt64(v int64) {
	e.Constructed = false
	e.indefinite = false
	e.value = appendInt64(nil, v)
}

// appendInt64 appends the minimal two's-complement encoding of v to dst.
func appendInt64(dst []byte, v int64) []byte {
	n := 1
	for i := v; i > 127; i >>= 8 {
		n++
	}
	for i := v; i < -128; i >>= 8 {
		n++
	}
	for j := n - 1; j >= 0; j-- {
		dst = append(dst, byte(v>>uint(j*8)))
	}
	return dst
}

// BigInt decodes the content octets as an arbitrary-precision
// two's-complement integer.
func (e *Element) BigInt() (*big.Int, error) {
	if err := e.checkIntContents(); err != nil {
		return nil, err
	}
	bs := bytes.Clone(e.value)
	i := new(big.Int)
	if bs[0]&0x80 != 0 {
		// negative integer, calculate two's complement
		for j := range bs {
			bs[j] = ^bs[j]
		}
		i.SetBytes(bs)
		i.Add(i, bigOne)
		i.Neg(i)
	} else {
		i.SetBytes(bs)
	}
	return i, nil
}

var bigOne = big.NewInt(1)

// SetBigInt replaces the content octets with the minimal two's-complement
// encoding of v. A sign octet is prepended where the most significant bit of
// the magnitude would misrepresent the sign.
func (e *Element) SetBigInt(v *big.Int) {
	e.Constructed = false
	e.indefinite = false
	switch {
	case v.Sign() == 0:
		e.value = []byte{0x00}
	case v.Sign() < 0:
		// Invert and subtract 1, then flip all octets. If the most
		// significant bit is clear afterwards, pad with 0xFF to keep the
		// number negative.
		n := new(big.Int).Neg(v)
		n.Sub(n, bigOne)
		bs := n.Bytes()
		for i := range bs {
			bs[i] ^= 0xFF
		}
		if len(bs) == 0 || bs[0]&0x80 == 0 {
			bs = append([]byte{0xFF}, bs...)
		}
		e.value = bs
	default:
		bs := v.Bytes()
		if bs[0]&0x80 != 0 {
			bs = append([]byte{0x00}, bs...)
		}
		e.value = bs
	}
}

// Enumerated decodes the content octets as an ASN.1 ENUMERATED value. The
// content rules are those of INTEGER.
func (e *Element) Enumerated() (int64, error) {
	return e.Int64()
}

// SetEnumerated replaces the content octets with the minimal encoding of v.
func (e *Element) SetEnumerated(v int64) {
	e.SetInt64(v)
}

// DecodeInteger decodes the content octets of e as an integer of type T. The
// decode fails with [asn1.KindValueOverflow] if the value does not fit T.
func DecodeInteger[T constraints.Integer](e *Element) (T, error) {
	i, err := e.BigInt()
	if err != nil {
		return 0, err
	}
	var zero T
	if ^zero > 0 { // unsigned T
		if i.Sign() < 0 || !i.IsUint64() {
			return 0, errAt(asn1.KindValueOverflow, -1, "INTEGER does not fit target type")
		}
		u := i.Uint64()
		if uint64(T(u)) != u {
			return 0, errAt(asn1.KindValueOverflow, -1, "INTEGER does not fit target type")
		}
		return T(u), nil
	}
	if !i.IsInt64() {
		return 0, errAt(asn1.KindValueOverflow, -1, "INTEGER does not fit target type")
	}
	s := i.Int64()
	if int64(T(s)) != s {
		return 0, errAt(asn1.KindValueOverflow, -1, "INTEGER does not fit target type")
	}
	return T(s), nil
}

//endregion

//region [UNIVERSAL 3] BIT STRING

// BitString decodes the content octets as an ASN.1 BIT STRING. Under BER and
// CER the constructed encoding is assembled from its segments; under DER only
// the primitive encoding is accepted. Under the canonical profiles all unused
// bits of the final octet must be zero.
func (e *Element) BitString() (asn1.BitString, error) {
	leaves, err := e.stringLeaves()
	if err != nil {
		return asn1.BitString{}, err
	}
	var buf []byte
	var unused byte
	for _, leaf := range leaves {
		if unused != 0 {
			return asn1.BitString{}, errAt(asn1.KindValueInvalid, -1, "BIT STRING segment with unused bits before the final segment")
		}
		if len(leaf) == 0 {
			return asn1.BitString{}, errAt(asn1.KindValueSize, -1, "BIT STRING must carry an unused-bits octet")
		}
		unused = leaf[0]
		if unused > 7 {
			return asn1.BitString{}, errAt(asn1.KindValueInvalid, -1, "more than 7 unused bits")
		}
		if len(leaf) == 1 && unused > 0 {
			return asn1.BitString{}, errAt(asn1.KindValueInvalid, -1, "unused bits in empty BIT STRING")
		}
		buf = append(buf, leaf[1:]...)
	}
	if len(leaves) == 0 {
		return asn1.BitString{}, errAt(asn1.KindValueSize, -1, "BIT STRING must carry an unused-bits octet")
	}
	if unused > 0 && e.rules.canonicalValues() {
		if buf[len(buf)-1]&(1<<unused-1) != 0 {
			return asn1.BitString{}, errAt(asn1.KindValuePadding, -1, "unused bits are not zero under "+e.rules.String())
		}
	}
	bs := asn1.BitString{Bytes: buf, BitLength: len(buf)*8 - int(unused)}
	if len(buf) > 0 {
		// padding bits read back as zero bits
		bs.Bytes[len(buf)-1] &= ^byte(1<<unused - 1)
	}
	return bs, nil
}

// SetBitString replaces the content octets with the encoding of v. Unused
// bits of the final octet are encoded as zero. Under CER a long bit string is
// segmented into an indefinite-length constructed encoding.
func (e *Element) SetBitString(v asn1.BitString) error {
	if !v.IsValid() {
		return errAt(asn1.KindValueInvalid, -1, "BitString is not valid")
	}
	numBytes := (v.BitLength + 8 - 1) / 8
	unused := byte((8 - v.BitLength%8) % 8)
	data := make([]byte, numBytes)
	copy(data, v.Bytes[:numBytes])
	if numBytes > 0 {
		// zero out any padding bits
		data[numBytes-1] &= ^byte(1<<unused - 1)
	}

	if e.rules.segmentedStrings() && numBytes+1 > MaxStringSegment {
		// Each segment is a primitive BIT STRING of at most MaxStringSegment
		// content octets: one unused-bits octet plus up to
		// MaxStringSegment-1 data octets.
		const segData = MaxStringSegment - 1
		var segs [][]byte
		for off := 0; off < len(data); off += segData {
			end := min(off+segData, len(data))
			segUnused := byte(0)
			if end == len(data) {
				segUnused = unused
			}
			seg := make([]byte, 1+end-off)
			seg[0] = segUnused
			copy(seg[1:], data[off:end])
			segs = append(segs, seg)
		}
		e.setSegments(segs)
		return nil
	}
	e.Constructed = false
	e.indefinite = false
	e.value = append([]byte{unused}, data...)
	return nil
}

//endregion

//region [UNIVERSAL 4] OCTET STRING

// OctetString decodes the content octets as an ASN.1 OCTET STRING. Under BER
// and CER the constructed encoding is assembled from its segments; under DER
// only the primitive encoding is accepted.
func (e *Element) OctetString() ([]byte, error) {
	leaves, err := e.stringLeaves()
	if err != nil {
		return nil, err
	}
	var n int
	for _, leaf := range leaves {
		n += len(leaf)
	}
	buf := make([]byte, 0, n)
	for _, leaf := range leaves {
		buf = append(buf, leaf...)
	}
	return buf, nil
}

// SetOctetString replaces the content octets with a copy of v. Under CER a
// string longer than [MaxStringSegment] octets is segmented into an
// indefinite-length constructed encoding of primitive segments.
func (e *Element) SetOctetString(v []byte) {
	if e.rules.segmentedStrings() && len(v) > MaxStringSegment {
		var segs [][]byte
		for off := 0; off < len(v); off += MaxStringSegment {
			end := min(off+MaxStringSegment, len(v))
			segs = append(segs, bytes.Clone(v[off:end]))
		}
		e.setSegments(segs)
		return
	}
	e.Constructed = false
	e.indefinite = false
	e.value = bytes.Clone(v)
}

//endregion

//region [UNIVERSAL 5] NULL

// Null validates that e is a well-formed encoding of the ASN.1 NULL type: a
// primitive encoding with no content octets.
func (e *Element) Null() error {
	if err := e.primitive(); err != nil {
		return err
	}
	if len(e.value) != 0 {
		return errAt(asn1.KindValueSize, -1, "NULL must be empty")
	}
	return nil
}

// SetNull replaces the content octets with the encoding of NULL.
func (e *Element) SetNull() {
	e.Constructed = false
	e.indefinite = false
	e.value = nil
}

//endregion

//region [UNIVERSAL 6] OBJECT IDENTIFIER

// OID decodes the content octets as an ASN.1 OBJECT IDENTIFIER. The first two
// components are packed into the leading subidentifier; the remaining
// components are base-128 encoded.
func (e *Element) OID() (asn1.ObjectIdentifier, error) {
	if err := e.primitive(); err != nil {
		return nil, err
	}
	if len(e.value) == 0 {
		return nil, errAt(asn1.KindValueSize, -1, "OBJECT IDENTIFIER must have at least one content octet")
	}
	v, n, err := readSubidentifier(e.value, 0)
	if err != nil {
		return nil, err
	}
	// In the worst case we get two components from the leading subidentifier
	// and then every subidentifier is a single octet.
	oid := make(asn1.ObjectIdentifier, 2, len(e.value)+1)
	if v < 40 {
		oid[0], oid[1] = 0, v
	} else if v < 80 {
		oid[0], oid[1] = 1, v-40
	} else {
		oid[0], oid[1] = 2, v-80
	}
	for off := n; off < len(e.value); {
		v, n, err = readSubidentifier(e.value, off)
		if err != nil {
			return nil, err
		}
		oid = append(oid, v)
		off += n
	}
	return oid, nil
}

// readSubidentifier reads one base-128 subidentifier at data[off], mapping
// the vlq failure modes onto the error taxonomy.
func readSubidentifier(data []byte, off int) (uint, int, error) {
	v, n, err := vlq.Read[uint](data[off:])
	switch err {
	case nil:
		return v, n, nil
	case vlq.ErrNotMinimal:
		return 0, 0, errAt(asn1.KindValuePadding, off, "leading 0x80 in subidentifier")
	case vlq.ErrOverflow:
		return 0, 0, errAt(asn1.KindValueOverflow, off, "subidentifier exceeds platform word")
	default:
		return 0, 0, errAt(asn1.KindValueInvalid, off, "truncated subidentifier")
	}
}

// SetOID replaces the content octets with the encoding of v.
func (e *Element) SetOID(v asn1.ObjectIdentifier) error {
	if !v.IsValid() {
		return errAt(asn1.KindValueInvalid, -1, "invalid object identifier components")
	}
	e.Constructed = false
	e.indefinite = false
	dst := vlq.Append(nil, 40*v[0]+v[1])
	for _, c := range v[2:] {
		dst = vlq.Append(dst, c)
	}
	e.value = dst
	return nil
}

//endregion

//region [UNIVERSAL 13] RELATIVE-OID

// RelativeOID decodes the content octets as an ASN.1 RELATIVE-OID: a plain
// sequence of base-128 subidentifiers without the packed prelude of an
// OBJECT IDENTIFIER.
func (e *Element) RelativeOID() (asn1.RelativeOID, error) {
	if err := e.primitive(); err != nil {
		return nil, err
	}
	if len(e.value) == 0 {
		return nil, errAt(asn1.KindValueSize, -1, "RELATIVE-OID must have at least one content octet")
	}
	oid := make(asn1.RelativeOID, 0, len(e.value))
	for off := 0; off < len(e.value); {
		v, n, err := readSubidentifier(e.value, off)
		if err != nil {
			return nil, err
		}
		oid = append(oid, v)
		off += n
	}
	return oid, nil
}

// SetRelativeOID replaces the content octets with the encoding of v.
func (e *Element) SetRelativeOID(v asn1.RelativeOID) error {
	if len(v) == 0 {
		return errAt(asn1.KindValueInvalid, -1, "RELATIVE-OID must have at least one component")
	}
	e.Constructed = false
	e.indefinite = false
	var dst []byte
	for _, c := range v {
		dst = vlq.Append(dst, c)
	}
	e.value = dst
	return nil
}

//endregion
