// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"time"

	"x690.dev/asn1"
)

// atoiN parses exactly n leading decimal digits of s. It returns -1 if s is
// too short or contains a non-digit.
func atoiN[T ~int](s string, n int) (i T) {
	if len(s) < n {
		return -1
	}
	for j := 0; j < n; j++ {
		if s[j] < '0' || '9' < s[j] {
			return -1
		}
		i = i*10 + T(s[j]-'0')
	}
	return i
}

//region [UNIVERSAL 23] UTCTime

// UTCTime decodes the content octets as an ASN.1 UTCTime. Only the
// 13-octet form YYMMDDhhmmssZ is accepted: the seconds component and the
// terminating Z are mandatory and local-offset forms are rejected. Two-digit
// years 00 through 49 map to 2000 through 2049, years 50 through 99 map to
// 1950 through 1999.
func (e *Element) UTCTime() (asn1.UTCTime, error) {
	leaves, err := e.stringLeaves()
	if err != nil {
		return asn1.UTCTime{}, err
	}
	s := joinLeaves(leaves)
	if len(s) != 13 {
		return asn1.UTCTime{}, errAt(asn1.KindValueSize, -1, "UTCTime must be exactly 13 octets")
	}
	if s[12] != 'Z' {
		return asn1.UTCTime{}, errAt(asn1.KindValueInvalid, -1, "UTCTime must end in Z")
	}
	year := atoiN[int](s, 2)
	month := atoiN[time.Month](s[2:], 2)
	day := atoiN[int](s[4:], 2)
	hour := atoiN[int](s[6:], 2)
	minute := atoiN[int](s[8:], 2)
	second := atoiN[int](s[10:], 2)
	if year < 0 || month < 0 || day < 0 || hour < 0 || minute < 0 || second < 0 {
		return asn1.UTCTime{}, errAt(asn1.KindValueInvalid, -1, "malformed UTCTime")
	}
	if year <= 49 {
		year += 2000
	} else {
		year += 1900
	}
	ret := time.Date(year, month, day, hour, minute, second, 0, time.UTC)
	if ret.Year() != year || ret.Month() != month || ret.Day() != day ||
		ret.Hour() != hour || ret.Minute() != minute || ret.Second() != second {
		return asn1.UTCTime{}, errAt(asn1.KindValueInvalid, -1, "UTCTime components out of range")
	}
	return asn1.UTCTime(ret), nil
}

// SetUTCTime replaces the content octets with the 13-octet encoding of t.
// Times outside the representable range 1950 through 2049 fail with
// [asn1.KindValueOverflow].
func (e *Element) SetUTCTime(t asn1.UTCTime) error {
	if !t.IsValid() {
		return errAt(asn1.KindValueOverflow, -1, "year not representable as UTCTime")
	}
	e.Constructed = false
	e.indefinite = false
	e.value = []byte(t.String())
	return nil
}

//endregion

//region [UNIVERSAL 24] GeneralizedTime

// GeneralizedTime decodes the content octets as an ASN.1 GeneralizedTime in
// its canonical shape: YYYYMMDDhhmmss, an optional fraction introduced by a
// full stop and carrying no trailing zeros, and the terminating Z. The comma
// separator and local-offset forms are rejected. Fractional digits beyond
// nanosecond resolution are truncated.
func (e *Element) GeneralizedTime() (asn1.GeneralizedTime, error) {
	leaves, err := e.stringLeaves()
	if err != nil {
		return asn1.GeneralizedTime{}, err
	}
	s := joinLeaves(leaves)
	if len(s) < 15 {
		return asn1.GeneralizedTime{}, errAt(asn1.KindValueSize, -1, "GeneralizedTime must be at least 15 octets")
	}
	if len(s) == 16 {
		// would require a decimal point with no fractional digits
		return asn1.GeneralizedTime{}, errAt(asn1.KindValueInvalid, -1, "malformed GeneralizedTime")
	}
	if s[len(s)-1] != 'Z' {
		return asn1.GeneralizedTime{}, errAt(asn1.KindValueInvalid, -1, "GeneralizedTime must end in Z")
	}
	year := atoiN[int](s, 4)
	month := atoiN[time.Month](s[4:], 2)
	day := atoiN[int](s[6:], 2)
	hour := atoiN[int](s[8:], 2)
	minute := atoiN[int](s[10:], 2)
	second := atoiN[int](s[12:], 2)
	if year < 0 || month < 0 || day < 0 || hour < 0 || minute < 0 || second < 0 {
		return asn1.GeneralizedTime{}, errAt(asn1.KindValueInvalid, -1, "malformed GeneralizedTime")
	}

	nanos := 0
	if len(s) > 15 {
		if s[14] != '.' {
			return asn1.GeneralizedTime{}, errAt(asn1.KindValueInvalid, -1, "GeneralizedTime fraction must start with a full stop")
		}
		frac := s[15 : len(s)-1]
		if frac[len(frac)-1] == '0' {
			return asn1.GeneralizedTime{}, errAt(asn1.KindValueInvalid, -1, "trailing zero in GeneralizedTime fraction")
		}
		unit := int(time.Second)
		for i := 0; i < len(frac); i++ {
			if frac[i] < '0' || '9' < frac[i] {
				return asn1.GeneralizedTime{}, errAt(asn1.KindValueInvalid, -1, "malformed GeneralizedTime fraction")
			}
			// digits beyond nanosecond resolution are truncated
			if unit > 1 {
				unit /= 10
				nanos += int(frac[i]-'0') * unit
			}
		}
	}

	ret := time.Date(year, month, day, hour, minute, second, nanos, time.UTC)
	if ret.Year() != year || ret.Month() != month || ret.Day() != day ||
		ret.Hour() != hour || ret.Minute() != minute || ret.Second() != second {
		return asn1.GeneralizedTime{}, errAt(asn1.KindValueInvalid, -1, "GeneralizedTime components out of range")
	}
	return asn1.GeneralizedTime(ret), nil
}

// SetGeneralizedTime replaces the content octets with the canonical encoding
// of t. Years outside 1 through 9999 fail with [asn1.KindValueOverflow].
// Sub-nanosecond precision cannot occur in a [time.Time] so the emitted
// fraction is always exact.
func (e *Element) SetGeneralizedTime(t asn1.GeneralizedTime) error {
	if !t.IsValid() {
		return errAt(asn1.KindValueOverflow, -1, "year not representable as GeneralizedTime")
	}
	e.Constructed = false
	e.indefinite = false
	e.value = []byte(t.String())
	return nil
}

//endregion

// joinLeaves concatenates string segments into a single string.
func joinLeaves(leaves [][]byte) string {
	if len(leaves) == 1 {
		return string(leaves[0])
	}
	var n int
	for _, leaf := range leaves {
		n += len(leaf)
	}
	buf := make([]byte, 0, n)
	for _, leaf := range leaves {
		buf = append(buf, leaf...)
	}
	return string(buf)
}
