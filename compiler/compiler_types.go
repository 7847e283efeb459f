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
	"strings"

	"github.com/mattmanj17-forks/gecko-dev/xpcom/idl-parser/syntax"
)

// Direction is the position a type is spelled in: a parameter direction, or
// an element of an Array<T> or of an [array] parameter.
type Direction uint8

const (
	DirIn Direction = iota
	DirOut
	DirInOut
	DirElement
	DirLegacyElement
)

func (d Direction) String() string {
	switch d {
	case DirOut:
		return "out"
	case DirInOut:
		return "inout"
	case DirElement:
		return "element"
	case DirLegacyElement:
		return "legacyelement"
	}
	return "in"
}

func (d Direction) isOut() bool {
	return d == DirOut || d == DirInOut
}

func (d Direction) isElement() bool {
	return d == DirElement || d == DirLegacyElement
}

func directionOf(d syntax.ParamDirection) Direction {
	switch d {
	case syntax.ParamOut:
		return DirOut
	case syntax.ParamInOut:
		return DirInOut
	}
	return DirIn
}

// TypeConfig selects how a type is spelled. Const and Shared come from the
// [const] and [shared] parameter attributes; types that do not accept one of
// them report "Unexpected parameter attribute".
type TypeConfig struct {
	Direction Direction
	Const     bool
	Shared    bool

	// OnWarning receives non-fatal diagnostics. May be nil.
	OnWarning func(*syntax.Error)
}

func (cfg TypeConfig) warn(w *syntax.Error) {
	if cfg.OnWarning != nil {
		cfg.OnWarning(w)
	}
}

func (cfg TypeConfig) outStar() string {
	if cfg.Direction.isOut() {
		return "*"
	}
	return ""
}

func (cfg TypeConfig) rustOutPrefix() string {
	if cfg.Direction.isOut() {
		return "*mut "
	}
	return ""
}

func (cfg TypeConfig) constPrefix() string {
	if cfg.Const {
		return "const "
	}
	return ""
}

func (cfg TypeConfig) checkModifiers(allowConst, allowShared bool, loc syntax.Location) error {
	if (cfg.Const && !allowConst) || (cfg.Shared && !allowShared) {
		return errUnexpectedParamAttr(loc)
	}
	return nil
}

func (cfg TypeConfig) element(dir Direction) TypeConfig {
	return TypeConfig{Direction: dir, OnWarning: cfg.OnWarning}
}

// Type is a resolved type that can be spelled in C++, Rust and TypeScript.
//
// NativeType and RustType return a *syntax.Error for misuse and a
// *NoncompatError when the type has no spelling in the target. TSType only
// returns *NoncompatError.
type Type interface {
	Name() string
	Kind() Kind
	Location() syntax.Location
	NativeType(cfg TypeConfig) (string, error)
	RustType(cfg TypeConfig) (string, error)
	TSType() (string, error)
}

var (
	_ Type = (*Builtin)(nil)
	_ Type = (*Typedef)(nil)
	_ Type = (*Forward)(nil)
	_ Type = (*Native)(nil)
	_ Type = (*WebIDL)(nil)
	_ Type = (*Interface)(nil)
	_ Type = (*CEnum)(nil)
	_ Type = (*Array)(nil)
	_ Type = (*LegacyArray)(nil)
)

// docComments is embedded by declarations that carry `/** ... */` comments.
type docComments struct {
	docComments []string
}

func (d *docComments) DocComments() []string {
	return d.docComments
}

func (d *docComments) prependDocComments(comments []string) {
	if len(comments) == 0 {
		return
	}
	d.docComments = append(append([]string(nil), comments...), d.docComments...)
}

type docCommented interface {
	prependDocComments(comments []string)
}

type Typedef struct {
	docComments
	name     string
	typ      *syntax.TypeID
	loc      syntax.Location
	realType Type
}

func (t *Typedef) Name() string              { return t.name }
func (t *Typedef) Kind() Kind                { return KindTypedef }
func (t *Typedef) Location() syntax.Location { return t.loc }
func (t *Typedef) TypeID() *syntax.TypeID    { return t.typ }

// RealType is the aliased type. Nil until resolved.
func (t *Typedef) RealType() Type {
	return t.realType
}

func (t *Typedef) setName(name string) { t.name = name }

func (t *Typedef) resolve(idl *IDL) error {
	if err := idl.setName(t); err != nil {
		return err
	}
	real, err := idl.getName(t.typ, t.loc)
	if err != nil {
		return err
	}
	switch real.Kind() {
	case KindBuiltin, KindCEnum, KindNative, KindTypedef:
	default:
		return errTypedefTarget(t.loc)
	}
	t.realType = real
	return nil
}

func (t *Typedef) NativeType(cfg TypeConfig) (string, error) {
	if err := cfg.checkModifiers(false, false, t.loc); err != nil {
		return "", err
	}
	return t.name + " " + cfg.outStar(), nil
}

func (t *Typedef) RustType(cfg TypeConfig) (string, error) {
	if err := cfg.checkModifiers(false, false, t.loc); err != nil {
		return "", err
	}
	return cfg.rustOutPrefix() + t.name, nil
}

func (t *Typedef) TSType() (string, error) {
	if _, err := t.realType.TSType(); err != nil {
		return "", err
	}
	return t.name, nil
}

// Forward is a forward-declared interface.
type Forward struct {
	docComments
	name string
	loc  syntax.Location
}

func (f *Forward) Name() string              { return f.name }
func (f *Forward) Kind() Kind                { return KindForward }
func (f *Forward) Location() syntax.Location { return f.loc }

func (f *Forward) setName(name string) { f.name = name }

// Interfaces that are forward-declared but never defined in IDL.
var rustPreventForward = map[string]bool{
	"nsIFrame":           true,
	"nsSubDocumentFrame": true,
}

func (f *Forward) resolve(idl *IDL, index int) error {
	if idl.namemap.Has(f.name) {
		// Already declared: hand the comments to the next declaration.
		for _, prod := range idl.productions[index+1:] {
			if dc, ok := prod.(docCommented); ok {
				dc.prependDocComments(f.docComments.docComments)
				break
			}
		}
	}
	return idl.setName(f)
}

func (f *Forward) NativeType(cfg TypeConfig) (string, error) {
	if err := cfg.checkModifiers(false, false, f.loc); err != nil {
		return "", err
	}
	if cfg.Direction == DirElement {
		return "RefPtr<" + f.name + ">", nil
	}
	return f.name + " *" + cfg.outStar(), nil
}

func (f *Forward) RustType(cfg TypeConfig) (string, error) {
	if err := cfg.checkModifiers(false, false, f.loc); err != nil {
		return "", err
	}
	if rustPreventForward[f.name] {
		return "", rustNoncompat("forward declaration %s is unsupported", f.name)
	}
	if cfg.Direction == DirElement {
		return "Option<RefPtr<" + f.name + ">>", nil
	}
	prefix := ""
	if cfg.Direction.isOut() {
		prefix = "*mut"
	}
	return prefix + "*const " + f.name, nil
}

func (f *Forward) TSType() (string, error) {
	return f.name, nil
}

type NativeModifier uint8

const (
	ModifierNone NativeModifier = iota
	ModifierPtr
	ModifierRef
)

func (m NativeModifier) String() string {
	switch m {
	case ModifierPtr:
		return "ptr"
	case ModifierRef:
		return "ref"
	}
	return ""
}

// SpecialType marks natives that bindings understand, such as strings and
// JS values.
type SpecialType uint8

const (
	SpecialNone SpecialType = iota
	SpecialNsID
	SpecialUTF8String
	SpecialCString
	SpecialAString
	SpecialJSVal
	SpecialPromise
)

var specialTypeNames = [...]string{
	SpecialNone:       "",
	SpecialNsID:       "nsid",
	SpecialUTF8String: "utf8string",
	SpecialCString:    "cstring",
	SpecialAString:    "astring",
	SpecialJSVal:      "jsval",
	SpecialPromise:    "promise",
}

func (s SpecialType) String() string {
	return specialTypeNames[s]
}

// Spellings used in place of the written native type: in, out or inout,
// and array element.
var specialForms = map[SpecialType][3]string{
	SpecialUTF8String: {"const nsACString&", "nsACString&", "nsCString"},
	SpecialCString:    {"const nsACString&", "nsACString&", "nsCString"},
	SpecialAString:    {"const nsAString&", "nsAString&", "nsString"},
	SpecialJSVal:      {"JS::Handle<JS::Value>", "JS::MutableHandle<JS::Value>", "JS::Value"},
}

var specialTSTypes = map[SpecialType]string{
	SpecialAString:    "string",
	SpecialCString:    "string",
	SpecialJSVal:      "any",
	SpecialNsID:       "nsID",
	SpecialPromise:    "Promise<any>",
	SpecialUTF8String: "string",
}

type Native struct {
	name        string
	signature   string
	nativeName  string
	modifier    NativeModifier
	specialType SpecialType
	loc         syntax.Location
}

func newNative(node *syntax.Native) (*Native, error) {
	n := &Native{
		name:       node.Name(),
		signature:  node.Signature(),
		nativeName: node.Signature(),
		loc:        node.Location(),
	}
	attrs, err := decodeAttrs(attrCtxNative, node.Attrs(), node.Location())
	if err != nil {
		return nil, err
	}
	for _, attr := range attrs {
		switch attr.kind {
		case attrPtr, attrRef:
			if n.modifier != ModifierNone {
				return nil, errNativeModifierTwice(attr.loc)
			}
			n.modifier = ModifierPtr
			if attr.kind == attrRef {
				n.modifier = ModifierRef
			}
		default:
			if n.specialType != SpecialNone {
				return nil, errNativeSpecialTypeTwice(attr.loc)
			}
			n.specialType = specialTypeFor(attr.kind)
			if _, ok := specialForms[n.specialType]; ok {
				n.nativeName = ""
			} else if n.specialType == SpecialPromise {
				n.nativeName = "::mozilla::dom::Promise"
			}
		}
	}
	return n, nil
}

func specialTypeFor(kind attrKind) SpecialType {
	switch kind {
	case attrNsID:
		return SpecialNsID
	case attrUTF8String:
		return SpecialUTF8String
	case attrCString:
		return SpecialCString
	case attrAString:
		return SpecialAString
	case attrJSVal:
		return SpecialJSVal
	case attrPromise:
		return SpecialPromise
	}
	return SpecialNone
}

func (n *Native) Name() string              { return n.name }
func (n *Native) Kind() Kind                { return KindNative }
func (n *Native) Location() syntax.Location { return n.loc }
func (n *Native) Signature() string         { return n.signature }
func (n *Native) Modifier() NativeModifier  { return n.modifier }
func (n *Native) SpecialType() SpecialType  { return n.specialType }
func (n *Native) setName(name string)       { n.name = name }
func (n *Native) resolve(idl *IDL) error    { return idl.setName(n) }
func (n *Native) isPtr() bool               { return n.modifier == ModifierPtr }
func (n *Native) isRef() bool               { return n.modifier == ModifierRef }

func (n *Native) specialForms() ([3]string, bool) {
	forms, ok := specialForms[n.specialType]
	return forms, ok
}

func (n *Native) NativeType(cfg TypeConfig) (string, error) {
	isConst := cfg.Const
	if cfg.Shared {
		if cfg.Direction != DirOut {
			return "", errSharedNotOut(n.loc)
		}
		isConst = true
	}

	if forms, ok := n.specialForms(); ok {
		switch {
		case cfg.Direction == DirIn:
			return forms[0] + " ", nil
		case cfg.Direction.isOut():
			return forms[1] + " ", nil
		}
		return forms[2] + " ", nil
	}

	if n.specialType == SpecialNsID && cfg.Direction == DirIn {
		isConst = true
	}

	if cfg.Direction == DirElement {
		if n.specialType == SpecialNsID {
			if n.isPtr() {
				return "", errNsIDPtrArray(n.loc)
			}
			return n.nativeName, nil
		}
		if n.isRef() {
			return "", errRefArray(n.loc)
		}
		if n.specialType == SpecialPromise {
			return "RefPtr<mozilla::dom::Promise>", nil
		}
	}

	var m string
	if n.isRef() {
		m = "& "
	} else {
		if cfg.Direction.isOut() {
			m = "* "
		}
		if n.isPtr() {
			m += "* "
		}
	}
	prefix := ""
	if isConst {
		prefix = "const "
	}
	return prefix + n.nativeName + " " + m, nil
}

func (n *Native) RustType(cfg TypeConfig) (string, error) {
	if n.modifier == ModifierNone {
		return "", rustNoncompat("Rust only supports [ref] / [ptr] native types")
	}

	isConst := cfg.Const
	if cfg.Shared {
		if cfg.Direction != DirOut {
			return "", errSharedNotOut(n.loc)
		}
		isConst = true
	}
	if n.specialType == SpecialNsID && cfg.Direction == DirIn {
		isConst = true
	}

	prefix := "*mut "
	if isConst {
		prefix = "*const "
	}
	if cfg.Direction.isOut() && n.isPtr() {
		prefix = "*mut " + prefix
	}

	switch n.specialType {
	case SpecialNone:
	case SpecialCString, SpecialUTF8String:
		return rustStringType(cfg.Direction, "nsACString", "nsCString"), nil
	case SpecialAString:
		return rustStringType(cfg.Direction, "nsAString", "nsString"), nil
	case SpecialNsID:
		if cfg.Direction.isElement() {
			if n.isPtr() {
				return "", errNsIDPtrArray(n.loc)
			}
			return n.nativeName, nil
		}
		return prefix + n.nativeName, nil
	default:
		return "", rustNoncompat("special type %s unsupported", n.specialType)
	}

	switch n.nativeName {
	case "void":
		return prefix + "libc::c_void", nil
	case "char":
		return prefix + "libc::c_char", nil
	case "char16_t":
		return prefix + "u16", nil
	}
	return "", rustNoncompat("native type %s unsupported", n.nativeName)
}

func rustStringType(dir Direction, borrowed, owned string) string {
	switch {
	case dir == DirIn:
		return "*const ::nsstring::" + borrowed
	case dir.isOut():
		return "*mut ::nsstring::" + borrowed
	}
	return "::nsstring::" + owned
}

func (n *Native) TSType() (string, error) {
	if ts, ok := specialTSTypes[n.specialType]; ok {
		return ts, nil
	}
	return "", tsNoncompat("Native type %s unsupported in TypeScript", n.name)
}

// WebIDL names a WebIDL interface. Its C++ type and header come from the
// [WebIDLConfig] passed to [IDL.Resolve].
type WebIDL struct {
	name       string
	native     string
	headerFile string
	loc        syntax.Location
}

func (w *WebIDL) Name() string              { return w.name }
func (w *WebIDL) Kind() Kind                { return KindWebIDL }
func (w *WebIDL) Location() syntax.Location { return w.loc }
func (w *WebIDL) NativeName() string        { return w.native }
func (w *WebIDL) HeaderFile() string        { return w.headerFile }
func (w *WebIDL) setName(name string)       { w.name = name }

func (w *WebIDL) resolve(idl *IDL, config WebIDLConfig) error {
	entry := config[w.name]
	w.native = entry.NativeType
	if w.native == "" {
		w.native = "mozilla::dom::" + w.name
	}
	w.headerFile = entry.HeaderFile
	if w.headerFile == "" {
		w.headerFile = strings.ReplaceAll(w.native, "::", "/") + ".h"
	}
	return idl.setName(w)
}

func (w *WebIDL) NativeType(cfg TypeConfig) (string, error) {
	if err := cfg.checkModifiers(true, false, w.loc); err != nil {
		return "", err
	}
	if cfg.Direction == DirElement {
		return "RefPtr<" + cfg.constPrefix() + w.native + ">", nil
	}
	return cfg.constPrefix() + w.native + " *" + cfg.outStar(), nil
}

func (w *WebIDL) RustType(cfg TypeConfig) (string, error) {
	if err := cfg.checkModifiers(true, false, w.loc); err != nil {
		return "", err
	}
	return cfg.rustOutPrefix() + "*const libc::c_void", nil
}

func (w *WebIDL) TSType() (string, error) {
	return w.name, nil
}

// Array is the Array<T> generic.
type Array struct {
	elem Type
	loc  syntax.Location
}

func (a *Array) Name() string              { return "Array<" + a.elem.Name() + ">" }
func (a *Array) Kind() Kind                { return KindArray }
func (a *Array) Location() syntax.Location { return a.loc }
func (a *Array) Elem() Type                { return a.elem }

func (a *Array) NativeType(cfg TypeConfig) (string, error) {
	if err := cfg.checkModifiers(false, false, a.loc); err != nil {
		return "", err
	}
	if cfg.Direction == DirLegacyElement {
		return "", errLegacyArrayOfArray(a.loc)
	}
	elem, err := a.elem.NativeType(cfg.element(DirElement))
	if err != nil {
		return "", err
	}
	base := "nsTArray<" + elem + ">"
	switch {
	case cfg.Direction.isOut():
		return base + "& ", nil
	case cfg.Direction == DirIn:
		return "const " + base + "& ", nil
	}
	return base, nil
}

func (a *Array) RustType(cfg TypeConfig) (string, error) {
	if err := cfg.checkModifiers(false, false, a.loc); err != nil {
		return "", err
	}
	if cfg.Direction == DirLegacyElement {
		return "", errLegacyArrayOfArray(a.loc)
	}
	elem, err := a.elem.RustType(cfg.element(DirElement))
	if err != nil {
		return "", err
	}
	base := "thin_vec::ThinVec<" + elem + ">"
	switch {
	case cfg.Direction.isOut():
		return "*mut " + base, nil
	case cfg.Direction == DirIn:
		return "*const " + base, nil
	}
	return base, nil
}

func (a *Array) TSType() (string, error) {
	elem, err := a.elem.TSType()
	if err != nil {
		return "", err
	}
	return elem + "[]", nil
}

// LegacyArray is the type of an [array] parameter: a pointer to elements
// whose length is given by a size_is parameter.
type LegacyArray struct {
	elem Type
}

func (a *LegacyArray) Name() string              { return "[array] " + a.elem.Name() }
func (a *LegacyArray) Kind() Kind                { return KindLegacyArray }
func (a *LegacyArray) Location() syntax.Location { return a.elem.Location() }
func (a *LegacyArray) Elem() Type                { return a.elem }

func (a *LegacyArray) NativeType(cfg TypeConfig) (string, error) {
	if err := cfg.checkModifiers(true, false, a.Location()); err != nil {
		return "", err
	}
	if cfg.Direction.isElement() {
		return "", errNestedLegacyArray(a.Location())
	}
	// Arrays of `string` and `wstring` are always const on input.
	if b, ok := a.elem.(*Builtin); ok && cfg.Direction == DirIn && b.IsPointer() {
		cfg.Const = true
	}
	elem, err := a.elem.NativeType(cfg.element(DirLegacyElement))
	if err != nil {
		return "", err
	}
	return cfg.constPrefix() + elem + "*" + cfg.outStar(), nil
}

func (a *LegacyArray) RustType(cfg TypeConfig) (string, error) {
	if err := cfg.checkModifiers(true, false, a.Location()); err != nil {
		return "", err
	}
	elem, err := a.elem.RustType(cfg.element(DirLegacyElement))
	if err != nil {
		return "", err
	}
	ptr := "*mut "
	if cfg.Const {
		ptr = "*const "
	}
	return cfg.rustOutPrefix() + ptr + elem, nil
}

func (a *LegacyArray) TSType() (string, error) {
	elem, err := a.elem.TSType()
	if err != nil {
		return "", err
	}
	return elem + "[]", nil
}

func unaliasType(t Type) Type {
	for {
		td, ok := t.(*Typedef)
		if !ok {
			return t
		}
		t = td.realType
	}
}

// builtinOrNativeTypeName returns "uint32_t" style names for builtins and
// "[nsid]" style names for special natives.
func builtinOrNativeTypeName(t Type) string {
	switch t := unaliasType(t).(type) {
	case *Builtin:
		return t.name
	case *Native:
		if t.specialType != SpecialNone {
			return "[" + t.specialType.String() + "]"
		}
	}
	return ""
}
