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
	"iter"
	"regexp"
	"slices"
	"strconv"

	"github.com/mattmanj17-forks/gecko-dev/xpcom/idl-parser/syntax"
)

// Interfaces past this many vtable entries must be [builtinclass]. The
// xptcall stubs are generated for at most this many entries.
const maxInterfaceEntries = 250

// Member is a declaration inside an interface body.
type Member interface {
	Kind() Kind
	Location() syntax.Location

	// Count is the number of vtable entries the member occupies.
	Count() int

	resolve(iface *Interface) error
}

// Production is a top-level declaration of an [IDL].
type Production interface {
	Kind() Kind
	Location() syntax.Location
}

type CDATA struct {
	data string
	loc  syntax.Location
}

func (c *CDATA) Kind() Kind                { return KindCDATA }
func (c *CDATA) Location() syntax.Location { return c.loc }
func (c *CDATA) Data() string              { return c.data }
func (c *CDATA) Count() int                { return 0 }

var virtualWord = regexp.MustCompile(`\bvirtual\b`)

// Virtual members would shift the vtable layout that XPConnect and the
// Rust bindings compute from the IDL.
func (c *CDATA) resolve(*Interface) error {
	if virtualWord.MatchString(c.data) {
		return errCDATAVirtual(c.loc)
	}
	return nil
}

type Interface struct {
	docComments
	name    string
	attrs   InterfaceAttributes
	base    string
	members []Member
	namemap *NameMap
	loc     syntax.Location
	idl     *IDL
}

func newInterface(node *syntax.Interface) (*Interface, error) {
	attrs, err := newInterfaceAttributes(node.Attrs(), node.Location())
	if err != nil {
		return nil, err
	}
	iface := &Interface{
		docComments: docComments{slices.Clone(node.DocComments())},
		name:        node.Name(),
		attrs:       attrs,
		base:        node.Base(),
		namemap:     NewNameMap(),
		loc:         node.Location(),
	}
	var cenums []*CEnum
	for _, memberNode := range node.Members() {
		member, err := lowerMember(memberNode)
		if err != nil {
			return nil, err
		}
		iface.members = append(iface.members, member)
		if decl, ok := member.(Decl); ok {
			if err := iface.namemap.set(decl); err != nil {
				return nil, err
			}
		}
		if cenum, ok := member.(*CEnum); ok {
			cenums = append(cenums, cenum)
		}
		setMemberInterface(member, iface)
	}
	// Variants act as interface-level constants.
	for _, cenum := range cenums {
		for _, variant := range cenum.variants {
			if err := iface.namemap.set(variant); err != nil {
				return nil, err
			}
		}
	}
	return iface, nil
}

func lowerMember(node syntax.Member) (Member, error) {
	switch node := node.(type) {
	case *syntax.CDATA:
		return &CDATA{data: node.Data(), loc: node.Location()}, nil
	case *syntax.Const:
		return newConstMember(node), nil
	case *syntax.CEnum:
		return newCEnum(node), nil
	case *syntax.Attribute:
		return newAttribute(node)
	case *syntax.Method:
		return newMethod(node)
	}
	panic("unreachable")
}

func setMemberInterface(member Member, iface *Interface) {
	switch member := member.(type) {
	case *ConstMember:
		member.iface = iface
	case *CEnum:
		member.iface = iface
	case *Attribute:
		member.iface = iface
	case *Method:
		member.iface = iface
	}
}

func (iface *Interface) Name() string               { return iface.name }
func (iface *Interface) Kind() Kind                 { return KindInterface }
func (iface *Interface) Location() syntax.Location  { return iface.loc }
func (iface *Interface) Attrs() InterfaceAttributes { return iface.attrs }
func (iface *Interface) Members() []Member          { return iface.members }
func (iface *Interface) NameMap() *NameMap          { return iface.namemap }
func (iface *Interface) setName(name string)        { iface.name = name }

// Base is the name of the base interface, or "" for nsISupports.
func (iface *Interface) Base() string {
	return iface.base
}

// BaseInterface returns the resolved base interface, or nil.
func (iface *Interface) BaseInterface() *Interface {
	if iface.base == "" || iface.idl == nil {
		return nil
	}
	base, err := iface.idl.getName(syntax.NewTypeID(iface.base, iface.loc), iface.loc)
	if err != nil {
		return nil
	}
	realBase, _ := base.(*Interface)
	return realBase
}

func (iface *Interface) Consts() []*ConstMember   { return membersOf[*ConstMember](iface) }
func (iface *Interface) CEnums() []*CEnum         { return membersOf[*CEnum](iface) }
func (iface *Interface) Attributes() []*Attribute { return membersOf[*Attribute](iface) }
func (iface *Interface) Methods() []*Method       { return membersOf[*Method](iface) }

func membersOf[T Member](iface *Interface) []T {
	var out []T
	for _, member := range iface.members {
		if m, ok := member.(T); ok {
			out = append(out, m)
		}
	}
	return out
}

func (iface *Interface) resolve(idl *IDL) error {
	iface.idl = idl
	attrs := iface.attrs

	if !attrs.Scriptable && attrs.BuiltinClass {
		return errBuiltinclassNotScriptable(iface.name, iface.loc)
	}

	if prev, ok := idl.namemap.Lookup(iface.name); ok {
		if fwd, ok := prev.(*Forward); ok {
			iface.takeForwardDocComments(fwd)
		}
	}

	if attrs.Function {
		methods := 0
		for _, member := range iface.members {
			if member.Kind() == KindMethod {
				methods++
			}
		}
		if methods > 1 {
			return errFunctionMultipleMethods(iface.name, iface.loc)
		}
	}

	if err := idl.setName(iface); err != nil {
		return err
	}

	if iface.base != "" {
		if err := iface.checkBase(); err != nil {
			return err
		}
	} else if iface.name != "nsISupports" {
		return errNoBase(iface.name, iface.loc)
	}

	for _, member := range iface.members {
		if err := member.resolve(iface); err != nil {
			return err
		}
	}

	if !attrs.BuiltinClass && iface.CountEntries() > maxInterfaceEntries {
		return errTooManyEntries(iface.name, iface.loc)
	}
	return nil
}

// Comments written on an earlier forward declaration go to the first member
// that can carry comments, or to the interface itself if there is none.
func (iface *Interface) takeForwardDocComments(fwd *Forward) {
	for _, member := range iface.members {
		if dc, ok := member.(docCommented); ok {
			dc.prependDocComments(fwd.docComments.docComments)
			return
		}
	}
	iface.prependDocComments(fwd.docComments.docComments)
}

func (iface *Interface) checkBase() error {
	realBase, err := iface.idl.getName(syntax.NewTypeID(iface.base, iface.loc), iface.loc)
	if err != nil {
		return err
	}
	base, ok := realBase.(*Interface)
	if !ok {
		return errBaseNotInterface(iface.name, iface.base, iface.loc)
	}
	if base == iface {
		return errBaseSelf(iface.name, iface.loc)
	}
	attrs := iface.attrs
	if attrs.Scriptable && !base.attrs.Scriptable {
		return errScriptableBase(iface.name, iface.base, iface.loc)
	}
	if attrs.Scriptable && base.attrs.BuiltinClass && !attrs.BuiltinClass {
		return errBuiltinclassBase(iface.name, iface.base, iface.loc)
	}
	if base.attrs.RustSync && !attrs.RustSync {
		return errRustSyncBase(iface.name, iface.base, iface.loc)
	}
	if attrs.RustSync && attrs.Scriptable && !attrs.BuiltinClass {
		return errRustSyncBuiltinclass(iface.name, iface.loc)
	}
	return nil
}

// CountEntries returns the number of vtable entries of the interface,
// including those inherited from its base.
func (iface *Interface) CountEntries() int {
	total := 0
	for cur := range iface.chain() {
		for _, member := range cur.members {
			total += member.Count()
		}
	}
	return total
}

// chain yields iface followed by its resolved bases. It stops early at an
// interface already yielded.
func (iface *Interface) chain() iter.Seq[*Interface] {
	return func(yield func(*Interface) bool) {
		seen := make(map[*Interface]bool)
		for cur := iface; cur != nil && !seen[cur]; cur = cur.BaseInterface() {
			seen[cur] = true
			if !yield(cur) {
				return
			}
		}
	}
}

// LookupConst finds a constant or cenum variant by name in the interface or
// its bases, evaluating it if needed.
func (iface *Interface) LookupConst(name string, loc syntax.Location) (int64, error) {
	for cur := range iface.chain() {
		decl, ok := cur.namemap.Lookup(name)
		if !ok {
			continue
		}
		c, ok := decl.(interface{ Value() (int64, error) })
		if !ok || decl.Kind() != KindConst {
			return 0, errSymbolNotConst(name, loc)
		}
		return c.Value()
	}
	return 0, errSymbolNotFound(name, loc)
}

// NeedsJSTypes reports whether any member uses jsval or needs a JSContext.
func (iface *Interface) NeedsJSTypes() bool {
	for _, member := range iface.members {
		switch m := member.(type) {
		case *Attribute:
			if isJSValTypeID(m.typ) {
				return true
			}
		case *Method:
			if m.NeedsJSTypes() {
				return true
			}
		}
	}
	return false
}

func isJSValTypeID(id *syntax.TypeID) bool {
	return id.Name() == "jsval" && len(id.Params()) == 0
}

func (iface *Interface) NativeType(cfg TypeConfig) (string, error) {
	if err := cfg.checkModifiers(true, false, iface.loc); err != nil {
		return "", err
	}
	if cfg.Direction == DirElement {
		return "RefPtr<" + iface.name + ">", nil
	}
	return cfg.constPrefix() + iface.name + " *" + cfg.outStar(), nil
}

func (iface *Interface) RustType(cfg TypeConfig) (string, error) {
	if err := cfg.checkModifiers(true, false, iface.loc); err != nil {
		return "", err
	}
	if cfg.Direction == DirElement {
		return "Option<RefPtr<" + iface.name + ">>", nil
	}
	return cfg.rustOutPrefix() + "*const " + iface.name, nil
}

func (iface *Interface) TSType() (string, error) {
	return iface.name, nil
}

type evalState uint8

const (
	evalPending evalState = iota
	evalRunning
	evalDone
)

type ConstMember struct {
	docComments
	node     *syntax.Const
	name     string
	loc      syntax.Location
	iface    *Interface
	realType Type
	baseType *Builtin

	state evalState
	value int64
	err   error
}

func newConstMember(node *syntax.Const) *ConstMember {
	return &ConstMember{
		docComments: docComments{slices.Clone(node.DocComments())},
		node:        node,
		name:        node.Name(),
		loc:         node.Location(),
	}
}

func (c *ConstMember) Name() string              { return c.name }
func (c *ConstMember) Kind() Kind                { return KindConst }
func (c *ConstMember) Location() syntax.Location { return c.loc }
func (c *ConstMember) Count() int                { return 0 }
func (c *ConstMember) TypeID() *syntax.TypeID    { return c.node.Type() }
func (c *ConstMember) Expr() syntax.Expr         { return c.node.Value() }
func (c *ConstMember) Interface() *Interface     { return c.iface }
func (c *ConstMember) RealType() Type            { return c.realType }
func (c *ConstMember) BaseType() *Builtin        { return c.baseType }
func (c *ConstMember) setName(name string)       { c.name = name }

func (c *ConstMember) resolve(*Interface) error {
	_, err := c.Value()
	return err
}

// Value evaluates the constant on first use. Constants may refer to
// constants declared later in the interface, but not to themselves.
func (c *ConstMember) Value() (int64, error) {
	switch c.state {
	case evalDone:
		return c.value, c.err
	case evalRunning:
		return 0, errConstCycle(c.name, c.loc)
	}
	c.state = evalRunning
	c.value, c.err = c.evaluate()
	c.state = evalDone
	return c.value, c.err
}

func (c *ConstMember) evaluate() (int64, error) {
	realType, err := c.iface.idl.getName(c.node.Type(), c.loc)
	if err != nil {
		return 0, err
	}
	c.realType = realType
	base, ok := unaliasType(realType).(*Builtin)
	if !ok || !base.maybeConst {
		return 0, errConstType(c.node.Type().Name(), c.loc)
	}
	c.baseType = base

	value, err := c.node.Value().Eval(c.iface)
	if err != nil {
		return 0, err
	}
	minValue, maxValue := int64(0), int64(1<<32-1)
	if base.signed {
		minValue, maxValue = -1<<31, 1<<31-1
	}
	if value < minValue || value > maxValue {
		return 0, errConstRange(base.signed, c.loc)
	}
	return value, nil
}

// ToIDL re-serializes the declaration.
func (c *ConstMember) ToIDL() string {
	return syntax.Unparse(c.node)
}

// CEnum is a C-style enum. Its type name is namespaced under the owning
// interface once resolved ("nsIFoo_Color"), while [CEnum.BaseName] keeps
// the declared name.
type CEnum struct {
	docComments
	name     string
	baseName string
	width    int
	variants []*CEnumVariant
	loc      syntax.Location
	iface    *Interface

	state evalState
	err   error
}

func newCEnum(node *syntax.CEnum) *CEnum {
	cenum := &CEnum{
		docComments: docComments{slices.Clone(node.DocComments())},
		name:        node.Name(),
		baseName:    node.Name(),
		width:       node.Width(),
		loc:         node.Location(),
	}
	for _, v := range node.Variants() {
		cenum.variants = append(cenum.variants, &CEnumVariant{
			name: v.Name(),
			expr: v.Value(),
			loc:  v.Location(),
			enum: cenum,
		})
	}
	return cenum
}

func (e *CEnum) Name() string              { return e.name }
func (e *CEnum) Kind() Kind                { return KindCEnum }
func (e *CEnum) Location() syntax.Location { return e.loc }
func (e *CEnum) Count() int                { return 0 }
func (e *CEnum) BaseName() string          { return e.baseName }
func (e *CEnum) Width() int                { return e.width }
func (e *CEnum) Variants() []*CEnumVariant { return e.variants }
func (e *CEnum) Interface() *Interface     { return e.iface }

func (e *CEnum) setName(name string) {
	if e.name == e.baseName {
		e.baseName = name
	}
	e.name = name
}

func (e *CEnum) resolve(iface *Interface) error {
	e.name = iface.name + "_" + e.baseName
	if err := iface.idl.setName(e); err != nil {
		return err
	}
	return e.evalVariants()
}

// evalVariants assigns every variant its value. A variant without an
// explicit value is one more than the previous variant, starting at 0.
func (e *CEnum) evalVariants() error {
	switch e.state {
	case evalDone:
		return e.err
	case evalRunning:
		return errConstCycle(e.baseName, e.loc)
	}
	e.state = evalRunning
	e.err = func() error {
		next := int64(0)
		for _, v := range e.variants {
			if v.expr != nil {
				value, err := v.expr.Eval(e.iface)
				if err != nil {
					return err
				}
				next = value
			}
			v.value = next
			v.resolved = true
			next++
		}
		return nil
	}()
	e.state = evalDone
	return e.err
}

func (e *CEnum) NativeType(cfg TypeConfig) (string, error) {
	if err := cfg.checkModifiers(false, false, e.loc); err != nil {
		return "", err
	}
	name := e.iface.name + "::" + e.baseName
	if cfg.Direction.isOut() {
		return name + " *", nil
	}
	return name + " ", nil
}

func (e *CEnum) RustType(cfg TypeConfig) (string, error) {
	if err := cfg.checkModifiers(false, false, e.loc); err != nil {
		return "", err
	}
	prefix := ""
	if cfg.Direction.isOut() {
		prefix = "*mut"
	}
	return prefix + " u" + strconv.Itoa(e.width), nil
}

func (e *CEnum) TSType() (string, error) {
	return e.iface.name + "." + e.baseName, nil
}

type CEnumVariant struct {
	name     string
	expr     syntax.Expr
	loc      syntax.Location
	enum     *CEnum
	value    int64
	resolved bool
}

func (v *CEnumVariant) Name() string              { return v.name }
func (v *CEnumVariant) Kind() Kind                { return KindConst }
func (v *CEnumVariant) Location() syntax.Location { return v.loc }
func (v *CEnumVariant) Enum() *CEnum              { return v.enum }
func (v *CEnumVariant) setName(name string)       { v.name = name }

// Expr is nil if the variant has an implicit value.
func (v *CEnumVariant) Expr() syntax.Expr {
	return v.expr
}

func (v *CEnumVariant) Value() (int64, error) {
	if !v.resolved {
		if err := v.enum.evalVariants(); err != nil {
			return 0, err
		}
	}
	return v.value, nil
}
