// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"testing"

	"x690.dev/asn1"
)

func BenchmarkDecode(b *testing.B) {
	data := []byte{0x30, 0x0E,
		0x02, 0x01, 0x1B,
		0x04, 0x03, 0x01, 0x02, 0x03,
		0x06, 0x04, 0x2B, 0x06, 0x04, 0x01,
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		e, _, err := DecodeDER(data)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := e.Children(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncode(b *testing.B) {
	e := New(DER, asn1.Universal(asn1.TagSequence))
	n := New(DER, asn1.Universal(asn1.TagInteger))
	n.SetInt64(1 << 40)
	s := New(DER, asn1.Universal(asn1.TagUTF8String))
	if err := s.SetText("benchmark"); err != nil {
		b.Fatal(err)
	}
	if err := e.SetChildren(n, s); err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = e.Encode()
	}
}

func BenchmarkDecodeSegmented(b *testing.B) {
	e := New(CER, asn1.Universal(asn1.TagOctetString))
	e.SetOctetString(make([]byte, 5000))
	data := e.Encode()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		e, _, err := DecodeCER(data)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := e.OctetString(); err != nil {
			b.Fatal(err)
		}
	}
}
