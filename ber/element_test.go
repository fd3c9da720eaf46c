// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"bytes"
	"errors"
	"testing"

	"x690.dev/asn1"
)

func TestDecode(t *testing.T) {
	tt := map[string]struct {
		rules    EncodingRules
		data     []byte
		wantTag  asn1.Tag
		wantVal  []byte
		wantN    int
		wantKind asn1.Kind
	}{
		"Primitive": {BER, []byte{0x02, 0x01, 0x1B},
			asn1.Universal(asn1.TagInteger), []byte{0x1B}, 3, 0},
		"TrailingData": {DER, []byte{0x02, 0x01, 0x1B, 0xAA, 0xBB},
			asn1.Universal(asn1.TagInteger), []byte{0x1B}, 3, 0},
		"Empty": {DER, []byte{0x05, 0x00},
			asn1.Universal(asn1.TagNull), []byte{}, 2, 0},
		"Indefinite": {BER, []byte{0x30, 0x80, 0x02, 0x01, 0x15, 0x00, 0x00},
			asn1.Universal(asn1.TagSequence), []byte{0x02, 0x01, 0x15}, 7, 0},
		"Truncated":     {BER, []byte{0x04, 0x05, 0x01}, asn1.Tag{}, nil, 0, asn1.KindTruncation},
		"IndefiniteDER": {DER, []byte{0x30, 0x80, 0x00, 0x00}, asn1.Tag{}, nil, 0, asn1.KindLengthNonMinimal},
		"MissingEOC":    {BER, []byte{0x30, 0x80, 0x02, 0x01, 0x15}, asn1.Tag{}, nil, 0, asn1.KindTruncation},
	}
	for name, tc := range tt {
		t.Run(name, func(t *testing.T) {
			e, n, err := Decode(tc.rules, tc.data)
			if tc.wantKind != 0 {
				if !errors.Is(err, &asn1.Error{Kind: tc.wantKind}) {
					t.Fatalf("Decode() error = %v, want kind %v", err, tc.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if e.Tag != tc.wantTag || !bytes.Equal(e.Value(), tc.wantVal) || n != tc.wantN {
				t.Errorf("Decode() = (%v % X, %d)", e, e.Value(), n)
			}
		})
	}
}

func TestElement_Encode(t *testing.T) {
	t.Run("Definite", func(t *testing.T) {
		e := New(DER, asn1.Universal(asn1.TagInteger))
		e.SetInt64(27)
		if got := e.Encode(); !bytes.Equal(got, []byte{0x02, 0x01, 0x1B}) {
			t.Errorf("Encode() = % X", got)
		}
	})
	t.Run("Indefinite", func(t *testing.T) {
		e, _, err := DecodeBER([]byte{0x30, 0x80, 0x02, 0x01, 0x15, 0x00, 0x00})
		if err != nil {
			t.Fatal(err)
		}
		if !e.Indefinite() {
			t.Fatal("Indefinite() = false")
		}
		if got := e.Encode(); !bytes.Equal(got, []byte{0x30, 0x80, 0x02, 0x01, 0x15, 0x00, 0x00}) {
			t.Errorf("Encode() = % X", got)
		}
	})
	t.Run("IndefiniteIgnoredUnderDER", func(t *testing.T) {
		e := New(DER, asn1.Universal(asn1.TagSequence))
		e.Constructed = true
		e.SetIndefinite(true)
		if got := e.Encode(); !bytes.Equal(got, []byte{0x30, 0x00}) {
			t.Errorf("Encode() = % X", got)
		}
	})
}

// TestDecodeEncodeDER checks the canonicality law: every input that decodes
// under DER re-encodes to the identical octets.
func TestDecodeEncodeDER(t *testing.T) {
	inputs := [][]byte{
		{0x01, 0x01, 0xFF},
		{0x02, 0x01, 0x1B},
		{0x03, 0x03, 0x07, 0xF0, 0x80},
		{0x04, 0x82, 0x01, 0x00, /* 256 bytes follow */},
		{0x06, 0x04, 0x2B, 0x06, 0x04, 0x01},
		{0x09, 0x03, 0x80, 0xFB, 0x05},
		{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x02},
	}
	inputs[3] = append(inputs[3], make([]byte, 256)...)
	for _, in := range inputs {
		e, n, err := DecodeDER(in)
		if err != nil {
			t.Errorf("DecodeDER(% X) error = %v", in, err)
			continue
		}
		if got := e.Encode(); !bytes.Equal(got, in[:n]) {
			t.Errorf("Encode() = % X, want % X", got, in[:n])
		}
	}
}

func TestElement_Children(t *testing.T) {
	t.Run("Sequence", func(t *testing.T) {
		e, _, err := DecodeDER([]byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x02})
		if err != nil {
			t.Fatal(err)
		}
		children, err := e.Children()
		if err != nil {
			t.Fatal(err)
		}
		if len(children) != 2 {
			t.Fatalf("len(children) = %d", len(children))
		}
		if v, err := children[1].Int64(); err != nil || v != 2 {
			t.Errorf("children[1].Int64() = (%d, %v)", v, err)
		}
	})
	t.Run("Primitive", func(t *testing.T) {
		e := New(BER, asn1.Universal(asn1.TagInteger))
		if _, err := e.Children(); !errors.Is(err, &asn1.Error{Kind: asn1.KindConstructionWrong}) {
			t.Errorf("Children() error = %v", err)
		}
	})

	// an unsorted SET OF decodes under BER and fails under the canonical rules
	unsorted := []byte{0x31, 0x06, 0x02, 0x01, 0x02, 0x02, 0x01, 0x01}
	t.Run("UnsortedSetBER", func(t *testing.T) {
		e, _, err := DecodeBER(unsorted)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := e.Children(); err != nil {
			t.Errorf("Children() error = %v", err)
		}
	})
	t.Run("UnsortedSetDER", func(t *testing.T) {
		e, _, err := DecodeDER(unsorted)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := e.Children(); !errors.Is(err, &asn1.Error{Kind: asn1.KindValueInvalid}) {
			t.Errorf("Children() error = %v", err)
		}
	})
}

func TestElement_SetChildren(t *testing.T) {
	newInt := func(rules EncodingRules, v int64) *Element {
		e := New(rules, asn1.Universal(asn1.TagInteger))
		e.SetInt64(v)
		return e
	}

	t.Run("Sequence", func(t *testing.T) {
		e := New(DER, asn1.Universal(asn1.TagSequence))
		if err := e.SetChildren(newInt(DER, 2), newInt(DER, 1)); err != nil {
			t.Fatal(err)
		}
		// SEQUENCE preserves order
		if got := e.Encode(); !bytes.Equal(got, []byte{0x30, 0x06, 0x02, 0x01, 0x02, 0x02, 0x01, 0x01}) {
			t.Errorf("Encode() = % X", got)
		}
	})
	t.Run("SetOfSortedDER", func(t *testing.T) {
		e := New(DER, asn1.Universal(asn1.TagSet))
		if err := e.SetChildren(newInt(DER, 2), newInt(DER, 1)); err != nil {
			t.Fatal(err)
		}
		if got := e.Encode(); !bytes.Equal(got, []byte{0x31, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x02}) {
			t.Errorf("Encode() = % X", got)
		}
	})
	t.Run("SetOfUnsortedBER", func(t *testing.T) {
		e := New(BER, asn1.Universal(asn1.TagSet))
		if err := e.SetChildren(newInt(BER, 2), newInt(BER, 1)); err != nil {
			t.Fatal(err)
		}
		if got := e.Encode(); !bytes.Equal(got, []byte{0x31, 0x06, 0x02, 0x01, 0x02, 0x02, 0x01, 0x01}) {
			t.Errorf("Encode() = % X", got)
		}
	})
	t.Run("MixedRules", func(t *testing.T) {
		e := New(DER, asn1.Universal(asn1.TagSequence))
		if err := e.SetChildren(newInt(BER, 1)); err == nil {
			t.Error("SetChildren() error = nil")
		}
	})
}

func TestElement_ValueOwnership(t *testing.T) {
	buf := []byte{0x02, 0x01, 0x1B}
	e, _, err := DecodeDER(buf)
	if err != nil {
		t.Fatal(err)
	}
	buf[2] = 0xFF
	if v, _ := e.Int64(); v != 27 {
		t.Errorf("element shares memory with the input buffer")
	}

	v := e.Value()
	v[0] = 0x00
	if got, _ := e.Int64(); got != 27 {
		t.Errorf("Value() shares memory with the element")
	}

	set := []byte{0x2A}
	e.SetValue(set)
	set[0] = 0x00
	if got, _ := e.Int64(); got != 42 {
		t.Errorf("SetValue() shares memory with the caller")
	}
}

func TestDecodeDepth(t *testing.T) {
	var data []byte
	for i := 0; i < 8; i++ {
		data = append(data, 0x30, 0x80)
	}
	data = append(data, 0x02, 0x01, 0x15)
	for i := 0; i < 8; i++ {
		data = append(data, 0x00, 0x00)
	}
	if _, _, err := DecodeDepth(BER, data, 4); !errors.Is(err, &asn1.Error{Kind: asn1.KindRecursionLimit}) {
		t.Errorf("DecodeDepth(4) error = %v", err)
	}
	if _, _, err := DecodeDepth(BER, data, 10); err != nil {
		t.Errorf("DecodeDepth(10) error = %v", err)
	}
}

// FuzzDecode exercises the decoder with arbitrary input. Decoding must
// terminate without panics and anything that decodes under DER must
// re-encode to the identical octets.
func FuzzDecode(f *testing.F) {
	f.Add([]byte{0x02, 0x01, 0x1B})
	f.Add([]byte{0x30, 0x80, 0x02, 0x01, 0x15, 0x00, 0x00})
	f.Add([]byte{0x1F, 0x84, 0x01, 0x82, 0xFF, 0xFF})
	f.Add([]byte{0x09, 0x03, 0x80, 0xFB, 0x05})
	f.Fuzz(func(t *testing.T, data []byte) {
		for _, rules := range []EncodingRules{BER, CER, DER} {
			e, n, err := Decode(rules, data)
			if err != nil {
				var ee *asn1.Error
				if !errors.As(err, &ee) {
					t.Errorf("Decode() returned untyped error %v", err)
				}
				continue
			}
			if n > len(data) {
				t.Fatalf("Decode() consumed %d of %d bytes", n, len(data))
			}
			if rules == DER {
				if got := e.Encode(); !bytes.Equal(got, data[:n]) {
					t.Errorf("Encode() = % X, want % X", got, data[:n])
				}
			}
		}
	})
}
