// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"bytes"

	"x690.dev/asn1"
)

// The context-switching types EXTERNAL, EMBEDDED PDV and CHARACTER STRING are
// constructed types built from the same identification CHOICE. Their
// accessors frame and unframe the nested elements; the scalar components go
// through the ordinary typed accessors.

//region identification CHOICE

// decodeIdentification interprets el as one alternative of the
// identification CHOICE of EMBEDDED PDV and CHARACTER STRING. The
// alternatives are distinguished by context-specific tags 0 through 5.
func decodeIdentification(el *Element) (asn1.Identification, error) {
	var id asn1.Identification
	if el.Tag.Class != asn1.ClassContextSpecific {
		return id, errAt(asn1.KindTagClass, -1, "identification alternative must be context-specific")
	}
	switch el.Tag.Number {
	case uint(asn1.IdentificationSyntaxes):
		id.Kind = asn1.IdentificationSyntaxes
		children, err := el.Children()
		if err != nil {
			return id, err
		}
		if len(children) != 2 {
			return id, errAt(asn1.KindValueSize, -1, "syntaxes must hold two object identifiers")
		}
		for i, want := range []uint{0, 1} {
			if children[i].Tag.Class != asn1.ClassContextSpecific {
				return id, errAt(asn1.KindTagClass, -1, "syntaxes component must be context-specific")
			}
			if children[i].Tag.Number != want {
				return id, errAt(asn1.KindTagNumber, -1, "unexpected tag in syntaxes")
			}
		}
		if id.Syntaxes.Abstract, err = children[0].OID(); err != nil {
			return id, err
		}
		if id.Syntaxes.Transfer, err = children[1].OID(); err != nil {
			return id, err
		}
	case uint(asn1.IdentificationSyntax):
		id.Kind = asn1.IdentificationSyntax
		oid, err := el.OID()
		if err != nil {
			return id, err
		}
		id.Syntax = oid
	case uint(asn1.IdentificationPresentationContextID):
		id.Kind = asn1.IdentificationPresentationContextID
		v, err := el.Int64()
		if err != nil {
			return id, err
		}
		id.PresentationContextID = v
	case uint(asn1.IdentificationContextNegotiation):
		id.Kind = asn1.IdentificationContextNegotiation
		children, err := el.Children()
		if err != nil {
			return id, err
		}
		if len(children) != 2 {
			return id, errAt(asn1.KindValueSize, -1, "context-negotiation must hold two components")
		}
		for i, want := range []uint{0, 1} {
			if children[i].Tag.Class != asn1.ClassContextSpecific {
				return id, errAt(asn1.KindTagClass, -1, "context-negotiation component must be context-specific")
			}
			if children[i].Tag.Number != want {
				return id, errAt(asn1.KindTagNumber, -1, "unexpected tag in context-negotiation")
			}
		}
		if id.ContextNegotiation.PresentationContextID, err = children[0].Int64(); err != nil {
			return id, err
		}
		if id.ContextNegotiation.TransferSyntax, err = children[1].OID(); err != nil {
			return id, err
		}
	case uint(asn1.IdentificationTransferSyntax):
		id.Kind = asn1.IdentificationTransferSyntax
		oid, err := el.OID()
		if err != nil {
			return id, err
		}
		id.TransferSyntax = oid
	case uint(asn1.IdentificationFixed):
		id.Kind = asn1.IdentificationFixed
		if err := el.Null(); err != nil {
			return id, err
		}
	default:
		return id, errAt(asn1.KindTagNumber, -1, "unknown identification alternative")
	}
	return id, nil
}

// encodeIdentification builds the element for one alternative of the
// identification CHOICE. Under CER and DER the OSI-only alternatives
// presentation-context-id and context-negotiation are silently downgraded to
// the fixed alternative.
func (e *Element) encodeIdentification(id asn1.Identification) (*Element, error) {
	kind := id.Kind
	if e.rules.canonicalValues() &&
		(kind == asn1.IdentificationPresentationContextID || kind == asn1.IdentificationContextNegotiation) {
		kind = asn1.IdentificationFixed
	}
	el := New(e.rules, asn1.Tag{Class: asn1.ClassContextSpecific, Number: uint(kind)})
	switch kind {
	case asn1.IdentificationSyntaxes:
		abstract := New(e.rules, asn1.Tag{Class: asn1.ClassContextSpecific, Number: 0})
		if err := abstract.SetOID(id.Syntaxes.Abstract); err != nil {
			return nil, err
		}
		transfer := New(e.rules, asn1.Tag{Class: asn1.ClassContextSpecific, Number: 1})
		if err := transfer.SetOID(id.Syntaxes.Transfer); err != nil {
			return nil, err
		}
		if err := el.SetChildren(abstract, transfer); err != nil {
			return nil, err
		}
	case asn1.IdentificationSyntax:
		if err := el.SetOID(id.Syntax); err != nil {
			return nil, err
		}
	case asn1.IdentificationPresentationContextID:
		el.SetInt64(id.PresentationContextID)
	case asn1.IdentificationContextNegotiation:
		pci := New(e.rules, asn1.Tag{Class: asn1.ClassContextSpecific, Number: 0})
		pci.SetInt64(id.ContextNegotiation.PresentationContextID)
		ts := New(e.rules, asn1.Tag{Class: asn1.ClassContextSpecific, Number: 1})
		if err := ts.SetOID(id.ContextNegotiation.TransferSyntax); err != nil {
			return nil, err
		}
		if err := el.SetChildren(pci, ts); err != nil {
			return nil, err
		}
	case asn1.IdentificationTransferSyntax:
		if err := el.SetOID(id.TransferSyntax); err != nil {
			return nil, err
		}
	case asn1.IdentificationFixed:
		el.SetNull()
	default:
		return nil, errAt(asn1.KindValueInvalid, -1, "unknown identification alternative")
	}
	return el, nil
}

//endregion

//region [UNIVERSAL 11] EMBEDDED PDV

// EmbeddedPDV decodes the nested elements of a constructed encoding as an
// ASN.1 EMBEDDED PDV: the explicitly tagged identification CHOICE followed
// by the data-value OCTET STRING.
func (e *Element) EmbeddedPDV() (asn1.EmbeddedPDV, error) {
	var pdv asn1.EmbeddedPDV
	ident, payload, err := e.contextSwitched()
	if err != nil {
		return pdv, err
	}
	pdv.Identification = ident
	pdv.DataValue = payload
	return pdv, nil
}

// SetEmbeddedPDV replaces the contents of e with the encoding of pdv and
// marks e constructed. Under CER and DER forbidden identification
// alternatives are downgraded to fixed.
func (e *Element) SetEmbeddedPDV(pdv asn1.EmbeddedPDV) error {
	return e.setContextSwitched(pdv.Identification, pdv.DataValue)
}

//endregion

//region [UNIVERSAL 29] CHARACTER STRING

// CharacterString decodes the nested elements of a constructed encoding as
// an unrestricted ASN.1 CHARACTER STRING. The shape is identical to EMBEDDED
// PDV; the payload carries the encoded characters.
func (e *Element) CharacterString() (asn1.CharacterString, error) {
	var cs asn1.CharacterString
	ident, payload, err := e.contextSwitched()
	if err != nil {
		return cs, err
	}
	cs.Identification = ident
	cs.StringValue = payload
	return cs, nil
}

// SetCharacterString replaces the contents of e with the encoding of cs and
// marks e constructed.
func (e *Element) SetCharacterString(cs asn1.CharacterString) error {
	return e.setContextSwitched(cs.Identification, cs.StringValue)
}

//endregion

//region shared EMBEDDED PDV / CHARACTER STRING framing

// contextSwitched unframes the two components shared by EMBEDDED PDV and
// CHARACTER STRING: identification [0] (explicit) and the payload [2]
// (implicit OCTET STRING).
func (e *Element) contextSwitched() (asn1.Identification, []byte, error) {
	var id asn1.Identification
	children, err := e.Children()
	if err != nil {
		return id, nil, err
	}
	if len(children) != 2 {
		return id, nil, errAt(asn1.KindValueSize, -1, "expected identification and data-value components")
	}
	wrapper, payload := children[0], children[1]
	if wrapper.Tag.Class != asn1.ClassContextSpecific || payload.Tag.Class != asn1.ClassContextSpecific {
		return id, nil, errAt(asn1.KindTagClass, -1, "components must be context-specific")
	}
	if wrapper.Tag.Number != 0 {
		return id, nil, errAt(asn1.KindTagNumber, -1, "identification must use tag [0]")
	}
	if payload.Tag.Number != 2 {
		return id, nil, errAt(asn1.KindTagNumber, -1, "data-value must use tag [2]")
	}
	alts, err := wrapper.Children()
	if err != nil {
		return id, nil, err
	}
	if len(alts) != 1 {
		return id, nil, errAt(asn1.KindValueSize, -1, "identification must hold exactly one alternative")
	}
	if id, err = decodeIdentification(alts[0]); err != nil {
		return id, nil, err
	}
	data, err := payload.OctetString()
	if err != nil {
		return id, nil, err
	}
	return id, data, nil
}

// setContextSwitched frames the identification and payload into e.
func (e *Element) setContextSwitched(id asn1.Identification, payload []byte) error {
	alt, err := e.encodeIdentification(id)
	if err != nil {
		return err
	}
	wrapper := New(e.rules, asn1.Tag{Class: asn1.ClassContextSpecific, Number: 0})
	wrapper.Constructed = true
	if err := wrapper.SetChildren(alt); err != nil {
		return err
	}
	data := New(e.rules, asn1.Tag{Class: asn1.ClassContextSpecific, Number: 2})
	data.SetOctetString(payload)
	return e.SetChildren(wrapper, data)
}

//endregion

//region [UNIVERSAL 8] EXTERNAL

// External decodes the nested elements of a constructed encoding as an ASN.1
// EXTERNAL in its pre-1994 wire form: the optional direct and indirect
// references, the optional data-value descriptor, and the encoding CHOICE
// with context-specific tags [0] single-ASN1-type, [1] octet-aligned and [2]
// arbitrary. All three encoding alternatives are accepted under every
// transfer syntax.
func (e *Element) External() (asn1.External, error) {
	var ext asn1.External
	children, err := e.Children()
	if err != nil {
		return ext, err
	}
	if len(children) < 1 || len(children) > 4 {
		return ext, errAt(asn1.KindValueSize, -1, "EXTERNAL must hold one to four components")
	}

	i := 0
	if i < len(children) && children[i].Tag == asn1.Universal(asn1.TagOID) {
		if ext.DirectReference, err = children[i].OID(); err != nil {
			return ext, err
		}
		i++
	}
	if i < len(children) && children[i].Tag == asn1.Universal(asn1.TagInteger) {
		v, err := children[i].Int64()
		if err != nil {
			return ext, err
		}
		ext.IndirectReference = &v
		i++
	}
	if i < len(children) && children[i].Tag == asn1.Universal(asn1.TagObjectDescriptor) {
		s, err := children[i].TextAs(asn1.TagObjectDescriptor)
		if err != nil {
			return ext, err
		}
		ext.DataValueDescriptor = asn1.ObjectDescriptor(s)
		i++
	}
	if ext.DirectReference == nil && ext.IndirectReference == nil {
		return ext, errAt(asn1.KindValueInvalid, -1, "EXTERNAL requires a direct or indirect reference")
	}
	if e.rules.canonicalValues() && ext.DirectReference == nil {
		return ext, errAt(asn1.KindValueInvalid, -1, "EXTERNAL requires a direct reference under "+e.rules.String())
	}
	if i != len(children)-1 {
		return ext, errAt(asn1.KindValueSize, -1, "unexpected EXTERNAL components")
	}

	enc := children[i]
	if enc.Tag.Class != asn1.ClassContextSpecific {
		return ext, errAt(asn1.KindTagClass, -1, "EXTERNAL encoding must be context-specific")
	}
	switch enc.Tag.Number {
	case uint(asn1.ExternalSingleASN1Type):
		ext.Encoding = asn1.ExternalSingleASN1Type
		inner, err := enc.Children()
		if err != nil {
			return ext, err
		}
		if len(inner) != 1 {
			return ext, errAt(asn1.KindValueSize, -1, "single-ASN1-type must hold exactly one encoding")
		}
		ext.DataValue = inner[0].Encode()
	case uint(asn1.ExternalOctetAligned):
		ext.Encoding = asn1.ExternalOctetAligned
		if ext.DataValue, err = enc.OctetString(); err != nil {
			return ext, err
		}
	case uint(asn1.ExternalArbitrary):
		ext.Encoding = asn1.ExternalArbitrary
		bs, err := enc.BitString()
		if err != nil {
			return ext, err
		}
		if bs.BitLength%8 != 0 {
			return ext, errAt(asn1.KindValueInvalid, -1, "arbitrary EXTERNAL encoding must be octet-aligned")
		}
		ext.DataValue = bs.Bytes
	default:
		return ext, errAt(asn1.KindTagNumber, -1, "unknown EXTERNAL encoding alternative")
	}
	return ext, nil
}

// SetExternal replaces the contents of e with the encoding of ext and marks
// e constructed. Under CER and DER the direct reference is mandatory.
func (e *Element) SetExternal(ext asn1.External) error {
	if ext.DirectReference == nil && ext.IndirectReference == nil {
		return errAt(asn1.KindValueInvalid, -1, "EXTERNAL requires a direct or indirect reference")
	}
	if e.rules.canonicalValues() && ext.DirectReference == nil {
		return errAt(asn1.KindValueInvalid, -1, "EXTERNAL requires a direct reference under "+e.rules.String())
	}
	var children []*Element
	if ext.DirectReference != nil {
		ref := New(e.rules, asn1.Universal(asn1.TagOID))
		if err := ref.SetOID(ext.DirectReference); err != nil {
			return err
		}
		children = append(children, ref)
	}
	if ext.IndirectReference != nil {
		ref := New(e.rules, asn1.Universal(asn1.TagInteger))
		ref.SetInt64(*ext.IndirectReference)
		children = append(children, ref)
	}
	if ext.DataValueDescriptor != "" {
		desc := New(e.rules, asn1.Universal(asn1.TagObjectDescriptor))
		if err := desc.SetTextAs(asn1.TagObjectDescriptor, string(ext.DataValueDescriptor)); err != nil {
			return err
		}
		children = append(children, desc)
	}

	enc := New(e.rules, asn1.Tag{Class: asn1.ClassContextSpecific, Number: uint(ext.Encoding)})
	switch ext.Encoding {
	case asn1.ExternalSingleASN1Type:
		// the data value must already be a complete data value encoding
		if _, n, err := Decode(e.rules, ext.DataValue); err != nil {
			return err
		} else if n != len(ext.DataValue) {
			return errAt(asn1.KindValueInvalid, -1, "single-ASN1-type data value must be one complete encoding")
		}
		enc.Constructed = true
		enc.value = bytes.Clone(ext.DataValue)
	case asn1.ExternalOctetAligned:
		enc.SetOctetString(ext.DataValue)
	case asn1.ExternalArbitrary:
		if err := enc.SetBitString(asn1.BitString{Bytes: ext.DataValue, BitLength: len(ext.DataValue) * 8}); err != nil {
			return err
		}
	default:
		return errAt(asn1.KindValueInvalid, -1, "unknown EXTERNAL encoding alternative")
	}
	children = append(children, enc)
	return e.SetChildren(children...)
}

//endregion
