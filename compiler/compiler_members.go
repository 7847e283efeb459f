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
	"errors"
	"slices"
	"strings"

	"github.com/mattmanj17-forks/gecko-dev/xpcom/idl-parser/syntax"
)

type Attribute struct {
	docComments
	flags    MemberFlags
	readOnly bool
	name     string
	typ      *syntax.TypeID
	attrs    []*syntax.Attr
	loc      syntax.Location
	iface    *Interface
	realType Type

	explicitSetterCanRunScript bool
	explicitGetterCanRunScript bool
}

func newAttribute(node *syntax.Attribute) (*Attribute, error) {
	attr := &Attribute{
		docComments: docComments{slices.Clone(node.DocComments())},
		readOnly:    node.ReadOnly(),
		name:        node.Name(),
		typ:         node.Type(),
		attrs:       node.Attrs(),
		loc:         node.Location(),
	}
	decoded, err := decodeAttrs(attrCtxAttribute, node.Attrs(), node.Location())
	if err != nil {
		return nil, err
	}
	for _, a := range decoded {
		if attr.flags.apply(a) {
			continue
		}
		switch a.kind {
		case attrCanRunScript:
			if attr.explicitSetterCanRunScript || attr.explicitGetterCanRunScript {
				return nil, errRedundantCanRunScript(a.name, a.loc)
			}
			attr.explicitSetterCanRunScript = true
			attr.explicitGetterCanRunScript = true
		case attrSetterCanRunScript:
			if attr.explicitSetterCanRunScript {
				return nil, errRedundantCanRunScript(a.name, a.loc)
			}
			attr.explicitSetterCanRunScript = true
		case attrGetterCanRunScript:
			if attr.explicitGetterCanRunScript {
				return nil, errRedundantCanRunScript(a.name, a.loc)
			}
			attr.explicitGetterCanRunScript = true
		}
	}
	return attr, nil
}

func (a *Attribute) Name() string              { return a.name }
func (a *Attribute) Kind() Kind                { return KindAttribute }
func (a *Attribute) Location() syntax.Location { return a.loc }
func (a *Attribute) Flags() MemberFlags        { return a.flags }
func (a *Attribute) ReadOnly() bool            { return a.readOnly }
func (a *Attribute) TypeID() *syntax.TypeID    { return a.typ }
func (a *Attribute) Interface() *Interface     { return a.iface }
func (a *Attribute) setName(name string)       { a.name = name }

// RealType is the resolved attribute type. Nil until resolved.
func (a *Attribute) RealType() Type {
	return a.realType
}

func (a *Attribute) SetterCanRunScript() bool { return a.explicitSetterCanRunScript }
func (a *Attribute) GetterCanRunScript() bool { return a.explicitGetterCanRunScript }

// Count is 1 for a readonly attribute (getter only), otherwise 2.
func (a *Attribute) Count() int {
	if a.readOnly {
		return 1
	}
	return 2
}

func (a *Attribute) IsScriptable() bool {
	return isScriptable(a.iface, a.flags)
}

func (a *Attribute) resolve(iface *Interface) error {
	realType, err := iface.idl.getName(a.typ, a.loc)
	if err != nil {
		return err
	}
	a.realType = realType
	return validateMember(a)
}

func (a *Attribute) ToIDL() string {
	var sb strings.Builder
	sb.WriteString(attrsToIDL(a.attrs))
	if a.readOnly {
		sb.WriteString("readonly ")
	}
	sb.WriteString("attribute ")
	sb.WriteString(a.typ.String())
	sb.WriteString(" ")
	sb.WriteString(a.name)
	sb.WriteString(";")
	return sb.String()
}

type Method struct {
	docComments
	flags    MemberFlags
	name     string
	typ      *syntax.TypeID
	attrs    []*syntax.Attr
	params   []*Param
	raises   []string
	loc      syntax.Location
	namemap  *NameMap
	iface    *Interface
	realType Type

	optionalArgc         bool
	explicitCanRunScript bool
}

func newMethod(node *syntax.Method) (*Method, error) {
	method := &Method{
		docComments: docComments{slices.Clone(node.DocComments())},
		name:        node.Name(),
		typ:         node.Type(),
		attrs:       node.Attrs(),
		raises:      node.Raises(),
		loc:         node.Location(),
		namemap:     NewNameMap(),
	}
	decoded, err := decodeAttrs(attrCtxMethod, node.Attrs(), node.Location())
	if err != nil {
		return nil, err
	}
	for _, a := range decoded {
		if method.flags.apply(a) {
			continue
		}
		switch a.kind {
		case attrOptionalArgc:
			method.optionalArgc = true
		case attrCanRunScript:
			method.explicitCanRunScript = true
		}
	}
	for _, paramNode := range node.Params() {
		param, err := newParam(paramNode)
		if err != nil {
			return nil, err
		}
		param.method = method
		method.params = append(method.params, param)
		if err := method.namemap.set(param); err != nil {
			return nil, err
		}
	}
	return method, nil
}

func (m *Method) Name() string              { return m.name }
func (m *Method) Kind() Kind                { return KindMethod }
func (m *Method) Location() syntax.Location { return m.loc }
func (m *Method) Count() int                { return 1 }
func (m *Method) Flags() MemberFlags        { return m.flags }
func (m *Method) TypeID() *syntax.TypeID    { return m.typ }
func (m *Method) Params() []*Param          { return m.params }
func (m *Method) Raises() []string          { return m.raises }
func (m *Method) Interface() *Interface     { return m.iface }
func (m *Method) OptionalArgc() bool        { return m.optionalArgc }
func (m *Method) CanRunScript() bool        { return m.explicitCanRunScript }
func (m *Method) setName(name string)       { m.name = name }

// RealType is the resolved return type. Nil until resolved.
func (m *Method) RealType() Type {
	return m.realType
}

func (m *Method) IsScriptable() bool {
	return isScriptable(m.iface, m.flags)
}

func (m *Method) resolve(iface *Interface) error {
	realType, err := iface.idl.getName(m.typ, m.loc)
	if err != nil {
		return err
	}
	m.realType = realType

	for _, p := range m.params {
		if err := p.resolve(iface.idl); err != nil {
			return err
		}
	}
	for ii, p := range m.params {
		if p.flags.Retval && ii != len(m.params)-1 {
			return errRetvalNotLast(p.name, m.loc)
		}
		if p.flags.SizeIs != "" {
			sizeParam, err := m.param(p.flags.SizeIs, p.loc)
			if err != nil {
				return err
			}
			if p.isInput() && !sizeParam.isInput() {
				return errSizeIsDirection(p.loc)
			}
			if builtinOrNativeTypeName(sizeParam.realType) != "uint32_t" {
				return errSizeIsType(p.loc)
			}
		}
		if p.flags.IIDIs != "" {
			iidParam, err := m.param(p.flags.IIDIs, p.loc)
			if err != nil {
				return err
			}
			if p.isInput() && !iidParam.isInput() {
				return errIIDIsDirection(p.loc)
			}
			if builtinOrNativeTypeName(iidParam.realType) != "[nsid]" {
				return errIIDIsType(m.loc)
			}
		}
	}
	return validateMember(m)
}

func (m *Method) param(name string, loc syntax.Location) (*Param, error) {
	decl, err := m.namemap.Get(name, loc)
	if err != nil {
		return nil, err
	}
	p, ok := decl.(*Param)
	if !ok {
		return nil, errNameNotFound(name, loc)
	}
	return p, nil
}

// NeedsJSTypes reports whether calling the method involves a JSContext or
// JS values.
func (m *Method) NeedsJSTypes() bool {
	if m.flags.ImplicitJSContext || isJSValTypeID(m.typ) {
		return true
	}
	for _, p := range m.params {
		if n, ok := p.realType.(*Native); ok && n.specialType == SpecialJSVal {
			return true
		}
	}
	return false
}

func (m *Method) ToIDL() string {
	params := make([]string, 0, len(m.params))
	for _, p := range m.params {
		params = append(params, p.ToIDL())
	}
	var raises string
	if len(m.raises) > 0 {
		raises = " raises (" + strings.Join(m.raises, ",") + ")"
	}
	return attrsToIDL(m.attrs) + m.typ.String() + " " + m.name +
		" (" + strings.Join(params, ", ") + ")" + raises + ";"
}

type Param struct {
	flags     ParamFlags
	direction Direction
	name      string
	typ       *syntax.TypeID
	attrs     []*syntax.Attr
	loc       syntax.Location
	method    *Method
	realType  Type
}

func newParam(node *syntax.Param) (*Param, error) {
	flags, err := newParamFlags(node.Attrs(), node.Location())
	if err != nil {
		return nil, err
	}
	return &Param{
		flags:     flags,
		direction: directionOf(node.Direction()),
		name:      node.Name(),
		typ:       node.Type(),
		attrs:     node.Attrs(),
		loc:       node.Location(),
	}, nil
}

func (p *Param) Name() string              { return p.name }
func (p *Param) Kind() Kind                { return KindParam }
func (p *Param) Location() syntax.Location { return p.loc }
func (p *Param) Flags() ParamFlags         { return p.flags }
func (p *Param) Direction() Direction      { return p.direction }
func (p *Param) TypeID() *syntax.TypeID    { return p.typ }
func (p *Param) Method() *Method           { return p.method }
func (p *Param) setName(name string)       { p.name = name }

// RealType is the resolved type, wrapped in a [LegacyArray] for [array]
// parameters. Nil until resolved.
func (p *Param) RealType() Type {
	return p.realType
}

// in and inout parameters are inputs.
func (p *Param) isInput() bool {
	return p.direction == DirIn || p.direction == DirInOut
}

func (p *Param) resolve(idl *IDL) error {
	realType, err := idl.getName(p.typ, p.loc)
	if err != nil {
		return err
	}
	if p.flags.Array {
		realType = &LegacyArray{elem: realType}
	}
	p.realType = realType
	return nil
}

func (p *Param) typeConfig() TypeConfig {
	cfg := TypeConfig{
		Direction: p.direction,
		Const:     p.flags.Const,
		Shared:    p.flags.Shared,
	}
	if p.method != nil && p.method.iface != nil && p.method.iface.idl != nil {
		idl := p.method.iface.idl
		cfg.OnWarning = func(w *syntax.Error) { idl.warn(w.At(p.loc)) }
	}
	return cfg
}

// NativeType spells the parameter type in C++, applying its direction and
// its [const] and [shared] attributes.
func (p *Param) NativeType() (string, error) {
	s, err := p.realType.NativeType(p.typeConfig())
	return s, p.relocate(err)
}

func (p *Param) RustType() (string, error) {
	s, err := p.realType.RustType(p.typeConfig())
	return s, p.relocate(err)
}

func (p *Param) TSType() (string, error) {
	// Generic retval, typed by its iid_is companion.
	if p.flags.Retval && p.flags.IIDIs != "" {
		return "nsQIResult", nil
	}
	ts, err := p.realType.TSType()
	if err != nil {
		return "", err
	}
	switch {
	case p.direction == DirInOut:
		return "InOutParam<" + ts + ">", nil
	case p.direction == DirOut && !p.flags.Retval:
		return "OutParam<" + ts + ">", nil
	}
	return ts, nil
}

// Diagnostics from the underlying type are reported at the parameter.
func (p *Param) relocate(err error) error {
	var diag *syntax.Error
	if errors.As(err, &diag) {
		return diag.At(p.loc)
	}
	return err
}

func (p *Param) ToIDL() string {
	return paramAttrsToIDL(p.attrs) + p.direction.String() + " " + p.typ.String() + " " + p.name
}

func attrsToIDL(attrs []*syntax.Attr) string {
	if len(attrs) == 0 {
		return ""
	}
	sorted := slices.Clone(attrs)
	slices.SortStableFunc(sorted, func(a, b *syntax.Attr) int {
		return strings.Compare(a.Name(), b.Name())
	})
	parts := make([]string, 0, len(sorted))
	for _, attr := range sorted {
		parts = append(parts, syntax.Unparse(attr))
	}
	return "[" + strings.Join(parts, ",") + "] "
}

// Parameter attribute order for lists of two and three attributes, as
// emitted by the historical xpidl compiler.
var paramAttrOrder = map[int][]string{
	2: {"array", "shared", "iid_is", "size_is", "retval"},
	3: {"array", "size_is", "const"},
}

func paramAttrsToIDL(attrs []*syntax.Attr) string {
	if len(attrs) == 0 {
		return ""
	}
	rest := slices.Clone(attrs)
	var sorted []*syntax.Attr
	for _, name := range paramAttrOrder[len(attrs)] {
		rest = slices.DeleteFunc(rest, func(attr *syntax.Attr) bool {
			if attr.Name() == name {
				sorted = append(sorted, attr)
				return true
			}
			return false
		})
	}
	sorted = append(sorted, rest...)

	parts := make([]string, 0, len(sorted))
	for _, attr := range sorted {
		if value, ok := attr.Value(); ok {
			parts = append(parts, attr.Name()+" ("+value+")")
		} else {
			parts = append(parts, attr.Name())
		}
	}
	return "[" + strings.Join(parts, ", ") + "] "
}
