// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"bytes"
	"math"
	"testing"

	"x690.dev/asn1"
)

func TestElement_Real(t *testing.T) {
	tt := map[string]struct {
		data []byte
		want float64
	}{
		"Zero":        {[]byte{0x09, 0x00}, 0},
		"PlusInf":     {[]byte{0x09, 0x01, 0x40}, math.Inf(1)},
		"MinusInf":    {[]byte{0x09, 0x01, 0x41}, math.Inf(-1)},
		"Fraction":    {[]byte{0x09, 0x03, 0x80, 0xFB, 0x05}, 0.15625},
		"One":         {[]byte{0x09, 0x03, 0x80, 0x00, 0x01}, 1},
		"MinusTen":    {[]byte{0x09, 0x03, 0xC0, 0x01, 0x05}, -10},
		"LargeExp":    {[]byte{0x09, 0x04, 0x81, 0x01, 0x00, 0x01}, math.Ldexp(1, 256)},
		"NegativeExp": {[]byte{0x09, 0x04, 0x81, 0xFB, 0xCE, 0x03}, math.Ldexp(3, -1074)},
	}
	for name, tc := range tt {
		t.Run(name, func(t *testing.T) {
			for _, rules := range []EncodingRules{BER, CER, DER} {
				got, err := decodeValue(t, rules, tc.data).Real()
				if err != nil || got != tc.want {
					t.Errorf("%v: Real() = (%g, %v), want %g", rules, got, err, tc.want)
				}
			}
		})
	}

	t.Run("NaN", func(t *testing.T) {
		got, err := decodeValue(t, DER, []byte{0x09, 0x01, 0x42}).Real()
		if err != nil || !math.IsNaN(got) {
			t.Errorf("Real() = (%g, %v), want NaN", got, err)
		}
	})
	t.Run("MinusZero", func(t *testing.T) {
		got, err := decodeValue(t, DER, []byte{0x09, 0x01, 0x43}).Real()
		if err != nil || got != 0 || !math.Signbit(got) {
			t.Errorf("Real() = (%g, %v), want -0", got, err)
		}
	})
	t.Run("UnknownSpecial", func(t *testing.T) {
		_, err := decodeValue(t, BER, []byte{0x09, 0x01, 0x44}).Real()
		wantKind(t, err, asn1.KindValueInvalid)
	})
	t.Run("Base8", func(t *testing.T) {
		// 3 × 8^1 = 24 under BER
		got, err := decodeValue(t, BER, []byte{0x09, 0x03, 0x90, 0x01, 0x03}).Real()
		if err != nil || got != 24 {
			t.Errorf("Real() = (%g, %v), want 24", got, err)
		}
	})
	t.Run("Base16", func(t *testing.T) {
		// 5 × 16^(-1) = 0.3125
		got, err := decodeValue(t, BER, []byte{0x09, 0x03, 0xA0, 0xFF, 0x05}).Real()
		if err != nil || got != 0.3125 {
			t.Errorf("Real() = (%g, %v), want 0.3125", got, err)
		}
	})
	t.Run("ReservedBase", func(t *testing.T) {
		_, err := decodeValue(t, BER, []byte{0x09, 0x03, 0xB0, 0x00, 0x01}).Real()
		wantKind(t, err, asn1.KindValueInvalid)
	})
	t.Run("ScaleFactor", func(t *testing.T) {
		// 5 × 2^2 × 2^0 = 20 with scaling factor F=2
		data := []byte{0x09, 0x03, 0x88, 0x00, 0x05}
		got, err := decodeValue(t, BER, data).Real()
		if err != nil || got != 20 {
			t.Errorf("BER: Real() = (%g, %v), want 20", got, err)
		}
		_, err = decodeValue(t, DER, data).Real()
		wantKind(t, err, asn1.KindValueInvalid)
	})
	t.Run("EvenMantissa", func(t *testing.T) {
		// 10 × 2^-6: BER accepts, DER requires the mantissa be odd
		data := []byte{0x09, 0x03, 0x80, 0xFA, 0x0A}
		got, err := decodeValue(t, BER, data).Real()
		if err != nil || got != 0.15625 {
			t.Errorf("BER: Real() = (%g, %v)", got, err)
		}
		_, err = decodeValue(t, DER, data).Real()
		wantKind(t, err, asn1.KindValuePadding)
		_, err = decodeValue(t, CER, data).Real()
		wantKind(t, err, asn1.KindValuePadding)
	})
	t.Run("NonMinimalExponent", func(t *testing.T) {
		data := []byte{0x09, 0x04, 0x81, 0x00, 0x05, 0x05}
		if _, err := decodeValue(t, BER, data).Real(); err != nil {
			t.Errorf("BER: Real() error = %v", err)
		}
		_, err := decodeValue(t, DER, data).Real()
		wantKind(t, err, asn1.KindValuePadding)
	})
	t.Run("ZeroMantissa", func(t *testing.T) {
		_, err := decodeValue(t, BER, []byte{0x09, 0x03, 0x80, 0x00, 0x00}).Real()
		wantKind(t, err, asn1.KindValueInvalid)
	})
	t.Run("TruncatedExponent", func(t *testing.T) {
		_, err := decodeValue(t, BER, []byte{0x09, 0x02, 0x81, 0x01}).Real()
		wantKind(t, err, asn1.KindValueSize)
	})
	t.Run("Overflow", func(t *testing.T) {
		_, err := decodeValue(t, BER, []byte{0x09, 0x04, 0x81, 0x7F, 0xFF, 0x01}).Real()
		wantKind(t, err, asn1.KindValueOverflow)
	})
	t.Run("Constructed", func(t *testing.T) {
		e := New(BER, asn1.Universal(asn1.TagReal))
		e.Constructed = true
		_, err := e.Real()
		wantKind(t, err, asn1.KindConstructionWrong)
	})
}

func TestElement_RealDecimal(t *testing.T) {
	nr := func(form byte, s string) []byte {
		v := append([]byte{form}, s...)
		return append([]byte{0x09, byte(len(v))}, v...)
	}

	t.Run("NR1", func(t *testing.T) {
		got, err := decodeValue(t, BER, nr(0x01, " 42")).Real()
		if err != nil || got != 42 {
			t.Errorf("Real() = (%g, %v), want 42", got, err)
		}
	})
	t.Run("NR2", func(t *testing.T) {
		got, err := decodeValue(t, BER, nr(0x02, "-3,14")).Real()
		if err != nil || got != -3.14 {
			t.Errorf("Real() = (%g, %v), want -3.14", got, err)
		}
	})
	t.Run("NR3", func(t *testing.T) {
		got, err := decodeValue(t, BER, nr(0x03, "15.E-1")).Real()
		if err != nil || got != 1.5 {
			t.Errorf("Real() = (%g, %v), want 1.5", got, err)
		}
	})
	t.Run("MalformedNR1", func(t *testing.T) {
		_, err := decodeValue(t, BER, nr(0x01, "4.2")).Real()
		wantKind(t, err, asn1.KindValueInvalid)
	})
	t.Run("UnknownForm", func(t *testing.T) {
		_, err := decodeValue(t, BER, nr(0x04, "42")).Real()
		wantKind(t, err, asn1.KindValueInvalid)
	})

	// The canonical profiles only accept the restricted NR3 shape.
	t.Run("CanonicalNR3", func(t *testing.T) {
		good := nr(0x03, "15.E-1")
		got, err := decodeValue(t, DER, good).Real()
		if err != nil || got != 1.5 {
			t.Errorf("DER: Real() = (%g, %v), want 1.5", got, err)
		}
		if got, err := decodeValue(t, DER, nr(0x03, "15.E+0")).Real(); err != nil || got != 15 {
			t.Errorf("DER: Real() = (%g, %v), want 15", got, err)
		}
	})
	t.Run("CanonicalRejections", func(t *testing.T) {
		bad := []string{
			" 15.E-1", // whitespace
			"015.E-1", // leading zero on mantissa
			"15.E-01", // leading zero on exponent
			"15.5E-1", // digits after the decimal point
			"1.50E-1", // trailing zero in the fraction
			"15E-1",   // missing decimal point
			"15.E+1",  // plus sign on a non-zero exponent
			"15.E-0",  // minus zero exponent
		}
		for _, s := range bad {
			if _, err := decodeValue(t, DER, nr(0x03, s)).Real(); err == nil {
				t.Errorf("Real(%q) error = nil, want canonical rejection", s)
			}
		}
		if got, err := decodeValue(t, DER, nr(0x03, "15.E1")).Real(); err != nil || got != 150 {
			t.Errorf("DER: Real() = (%g, %v), want 150", got, err)
		}
	})
	t.Run("NR1UnderDER", func(t *testing.T) {
		_, err := decodeValue(t, DER, nr(0x01, "42")).Real()
		wantKind(t, err, asn1.KindValueInvalid)
	})
}

func TestElement_SetReal(t *testing.T) {
	tt := map[string]struct {
		val  float64
		want []byte
	}{
		"Zero":      {0, []byte{0x09, 0x00}},
		"MinusZero": {math.Copysign(0, -1), []byte{0x09, 0x01, 0x43}},
		"PlusInf":   {math.Inf(1), []byte{0x09, 0x01, 0x40}},
		"MinusInf":  {math.Inf(-1), []byte{0x09, 0x01, 0x41}},
		"NaN":       {math.NaN(), []byte{0x09, 0x01, 0x42}},
		"Fraction":  {0.15625, []byte{0x09, 0x03, 0x80, 0xFB, 0x05}},
		"One":       {1, []byte{0x09, 0x03, 0x80, 0x00, 0x01}},
		"MinusTen":  {-10, []byte{0x09, 0x03, 0xC0, 0x01, 0x05}},
	}
	for name, tc := range tt {
		t.Run(name, func(t *testing.T) {
			e := New(DER, asn1.Universal(asn1.TagReal))
			e.SetReal(tc.val)
			if got := e.Encode(); !bytes.Equal(got, tc.want) {
				t.Errorf("Encode() = % X, want % X", got, tc.want)
			}
		})
	}

	t.Run("RoundTrip", func(t *testing.T) {
		values := []float64{0, 1, -1, 0.1, -0.1, 3.141592653589793, 1e308, -1e-308,
			math.SmallestNonzeroFloat64, math.MaxFloat64, 123456789.123456789}
		for _, rules := range []EncodingRules{BER, CER, DER} {
			for _, v := range values {
				e := New(rules, asn1.Universal(asn1.TagReal))
				e.SetReal(v)
				e2, _, err := Decode(rules, e.Encode())
				if err != nil {
					t.Fatalf("%v: %v", rules, err)
				}
				got, err := e2.Real()
				if err != nil || got != v {
					t.Errorf("%v: round trip of %g = (%g, %v)", rules, v, got, err)
				}
			}
		}
	})
}
