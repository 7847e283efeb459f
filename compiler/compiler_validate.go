// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package compiler

import (
	"github.com/mattmanj17-forks/gecko-dev/xpcom/idl-parser/syntax"
)

type xpcomMember interface {
	Name() string
	Kind() Kind
	Location() syntax.Location
	Flags() MemberFlags
	Interface() *Interface
	RealType() Type
	IsScriptable() bool
}

var (
	_ xpcomMember = (*Attribute)(nil)
	_ xpcomMember = (*Method)(nil)
)

func validateMember(m xpcomMember) error {
	if err := checkInfallible(m); err != nil {
		return err
	}
	if err := checkNeedsBuiltinclass(m); err != nil {
		return err
	}
	return checkNeedsNoscript(m)
}

func isScriptable(iface *Interface, flags MemberFlags) bool {
	if !iface.attrs.Scriptable {
		return false
	}
	return !(flags.NoScript || flags.NotXPCOM || flags.NoStdCall)
}

// [infallible] getters return their value directly, so the type must be
// returnable without an out-param and the implementation can't be JS.
func checkInfallible(m xpcomMember) error {
	flags := m.Flags()
	if !flags.Infallible {
		return nil
	}
	loc := m.Location()
	switch m.RealType().Kind() {
	case KindBuiltin, KindInterface, KindForward, KindWebIDL, KindCEnum:
	default:
		return errInfallibleType(loc)
	}
	ifaceAttrs := m.Interface().attrs
	if ifaceAttrs.Scriptable && !ifaceAttrs.BuiltinClass {
		return errInfallibleScriptable(loc)
	}
	if flags.NotXPCOM {
		return errInfallibleNotXPCOM(loc)
	}
	return nil
}

// A scriptable interface that JS could implement can't use calling
// conventions or by-value natives that xptcall does not understand.
func checkNeedsBuiltinclass(m xpcomMember) error {
	iface := m.Interface()
	if !iface.attrs.Scriptable || iface.attrs.BuiltinClass {
		return nil
	}
	if iface.name == "nsISupports" {
		return nil
	}
	loc := m.Location()
	flags := m.Flags()
	if flags.NotXPCOM {
		return errNeedsBuiltinclass(iface.name, "notxpcom", m.Kind(), m.Name(), loc)
	}
	if flags.NoStdCall {
		return errNeedsBuiltinclass(iface.name, "nostdcall", m.Kind(), m.Name(), loc)
	}

	switch m := m.(type) {
	case *Method:
		for _, p := range m.params {
			if p.direction == DirIn && isByValueNative(p.realType) {
				return errNeedsBuiltinclassParam(iface.name, m.name, p.name, loc)
			}
		}
	case *Attribute:
		if !m.readOnly && isByValueNative(m.realType) {
			return errNeedsBuiltinclassAttribute(iface.name, m.name, loc)
		}
	}
	return nil
}

func isByValueNative(t Type) bool {
	n, ok := unaliasType(t).(*Native)
	return ok && n.specialType == SpecialNone && n.modifier == ModifierNone
}

// Scriptable members can't expose types that XPConnect can't reflect.
// Forward declarations are not checked since their scriptability is not
// known here.
func checkNeedsNoscript(m xpcomMember) error {
	if !m.IsScriptable() {
		return nil
	}
	loc := m.Location()
	if needsNoscript(m.RealType()) {
		return errNeedsNoscript(m.Kind(), m.Name(), loc)
	}
	if method, ok := m.(*Method); ok {
		for _, p := range method.params {
			// The type of an iid_is parameter is ignored.
			if p.flags.IIDIs == "" && needsNoscript(p.realType) {
				return errNeedsNoscriptParam(method.name, p.name, loc)
			}
		}
	}
	return nil
}

func needsNoscript(t Type) bool {
	switch t := t.(type) {
	case *Array:
		return needsNoscript(t.elem)
	case *LegacyArray:
		return needsNoscript(t.elem)
	case *Typedef:
		return needsNoscript(t.realType)
	case *Native:
		return t.specialType == SpecialNone
	case *Interface:
		return !t.attrs.Scriptable
	}
	return false
}
