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
	"strings"

	"github.com/mattmanj17-forks/gecko-dev/xpcom/idl-parser/syntax"
)

type Kind uint8

const (
	KindBuiltin Kind = iota
	KindTypedef
	KindForward
	KindNative
	KindWebIDL
	KindInterface
	KindConst
	KindCEnum
	KindAttribute
	KindMethod
	KindParam
	KindArray
	KindLegacyArray
	KindInclude
	KindCDATA
)

var kindNames = [...]string{
	KindBuiltin:     "builtin",
	KindTypedef:     "typedef",
	KindForward:     "forward",
	KindNative:      "native",
	KindWebIDL:      "webidl",
	KindInterface:   "interface",
	KindConst:       "const",
	KindCEnum:       "cenum",
	KindAttribute:   "attribute",
	KindMethod:      "method",
	KindParam:       "param",
	KindArray:       "array",
	KindLegacyArray: "legacyarray",
	KindInclude:     "include",
	KindCDATA:       "cdata",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Decl is anything that can be registered in a [NameMap].
type Decl interface {
	Name() string
	Kind() Kind
	Location() syntax.Location
	setName(name string)
}

// NameMap maps names to declarations. Builtin types are visible in every
// NameMap and cannot be redeclared.
type NameMap struct {
	decls map[string]Decl
	order []string
}

func NewNameMap() *NameMap {
	return &NameMap{decls: make(map[string]Decl)}
}

// Lookup returns the declaration named name, including builtins.
func (m *NameMap) Lookup(name string) (Decl, bool) {
	if b, ok := builtinMap[name]; ok {
		return b, true
	}
	decl, ok := m.decls[name]
	return decl, ok
}

func (m *NameMap) Has(name string) bool {
	_, ok := m.Lookup(name)
	return ok
}

// Get is like Lookup, but reports a missing name as an error at loc.
func (m *NameMap) Get(name string, loc syntax.Location) (Decl, error) {
	if decl, ok := m.Lookup(name); ok {
		return decl, nil
	}
	return nil, errNameNotFound(name, loc)
}

// All yields the declared (non-builtin) entries in insertion order.
func (m *NameMap) All() iter.Seq[Decl] {
	return func(yield func(Decl) bool) {
		for _, name := range m.order {
			if !yield(m.decls[name]) {
				return
			}
		}
	}
}

func (m *NameMap) Len() int {
	return len(m.order)
}

func (m *NameMap) set(decl Decl) error {
	name := decl.Name()
	if _, ok := builtinMap[name]; ok {
		return errBuiltinRedeclared(name, decl.Location())
	}
	if strings.HasPrefix(name, "_") {
		name = name[1:]
		decl.setName(name)
	}
	old, ok := m.decls[name]
	if !ok {
		m.decls[name] = decl
		m.order = append(m.order, name)
		return nil
	}
	if sameDecl(old, decl) {
		return nil
	}
	_, oldFwd := old.(*Forward)
	_, oldIface := old.(*Interface)
	_, newFwd := decl.(*Forward)
	_, newIface := decl.(*Interface)
	switch {
	case oldFwd && newIface:
		m.decls[name] = decl
		return nil
	case oldIface && newFwd:
		return nil
	}
	return errNameSpecifiedTwice(name, old.Location(), decl.Location())
}

// sameDecl reports whether a redeclaration of old as decl is harmless, as
// happens when two included files declare the same thing.
func sameDecl(old, decl Decl) bool {
	if old == decl {
		return true
	}
	switch old := old.(type) {
	case *Typedef:
		other, ok := decl.(*Typedef)
		return ok && old.name == other.name && old.typ.String() == other.typ.String()
	case *Forward:
		return decl.Kind() == KindForward && decl.Name() == old.name
	case *Native:
		other, ok := decl.(*Native)
		return ok && old.name == other.name &&
			old.nativeName == other.nativeName &&
			old.modifier == other.modifier &&
			old.specialType == other.specialType
	case *WebIDL:
		return decl.Kind() == KindWebIDL && decl.Name() == old.name
	case *Interface:
		return decl.Name() == old.name && decl.Location().Equal(old.loc)
	}
	return false
}
