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


package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattmanj17-forks/gecko-dev/xpcom/idl-parser/compiler"
)

const targetNative = "native"

type interfaceTypes struct {
	Name         string        `json:"name"`
	Base         string        `json:"base,omitempty"`
	UUID         string        `json:"uuid"`
	Scriptable   bool          `json:"scriptable,omitempty"`
	BuiltinClass bool          `json:"builtinclass,omitempty"`
	Entries      int           `json:"entries"`
	Consts       []constValue  `json:"consts,omitempty"`
	CEnums       []cenumValues `json:"cenums,omitempty"`
	Attributes   []attrTypes   `json:"attributes,omitempty"`
	Methods      []methodTypes `json:"methods,omitempty"`
}

type constValue struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type cenumValues struct {
	Name     string       `json:"name"`
	Width    int          `json:"width"`
	Variants []constValue `json:"variants"`
}

type attrTypes struct {
	Name     string    `json:"name"`
	ReadOnly bool      `json:"readonly,omitempty"`
	Type     *spelling `json:"type"`
}

type methodTypes struct {
	Name   string       `json:"name"`
	Return *spelling    `json:"return,omitempty"`
	Params []paramTypes `json:"params,omitempty"`
}

type paramTypes struct {
	Name      string    `json:"name"`
	Direction string    `json:"direction"`
	Type      *spelling `json:"type"`
}

// spelling is a type as written for each binding target. Targets that
// cannot represent the type have a reason in Noncompat instead.
type spelling struct {
	Native    string            `json:"native"`
	Rust      string            `json:"rust,omitempty"`
	TS        string            `json:"ts,omitempty"`
	Noncompat map[string]string `json:"noncompat,omitempty"`
}

func (s *spelling) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "native %q", s.Native)
	for _, target := range []struct {
		name  string
		value string
	}{
		{compiler.TargetRust, s.Rust},
		{compiler.TargetTypeScript, s.TS},
	} {
		if reason, ok := s.Noncompat[target.name]; ok {
			fmt.Fprintf(&sb, " %s (noncompat: %s)", target.name, reason)
		} else {
			fmt.Fprintf(&sb, " %s %q", target.name, target.value)
		}
	}
	return sb.String()
}

func (s *spelling) set(target string, dst *string, text string, err error) error {
	if err == nil {
		*dst = text
		return nil
	}
	var nc *compiler.NoncompatError
	if target != targetNative && errors.As(err, &nc) {
		if s.Noncompat == nil {
			s.Noncompat = make(map[string]string)
		}
		s.Noncompat[target] = nc.Reason
		return nil
	}
	return err
}

type spellable interface {
	NativeType() (string, error)
	RustType() (string, error)
	TSType() (string, error)
}

// typeAt spells a type in a fixed position, such as an attribute getter.
type typeAt struct {
	typ compiler.Type
	cfg compiler.TypeConfig
}

func (t typeAt) NativeType() (string, error) { return t.typ.NativeType(t.cfg) }
func (t typeAt) RustType() (string, error)   { return t.typ.RustType(t.cfg) }
func (t typeAt) TSType() (string, error)     { return t.typ.TSType() }

func spell(typ spellable) (*spelling, error) {
	s := &spelling{}
	native, err := typ.NativeType()
	if err := s.set(targetNative, &s.Native, native, err); err != nil {
		return nil, err
	}
	rust, err := typ.RustType()
	if err := s.set(compiler.TargetRust, &s.Rust, rust, err); err != nil {
		return nil, err
	}
	ts, err := typ.TSType()
	if err := s.set(compiler.TargetTypeScript, &s.TS, ts, err); err != nil {
		return nil, err
	}
	return s, nil
}

// describeIDL spells every member type of the interfaces defined in a
// resolved file. Parameter attributes that do not apply to their type are
// only detected here, so errors are collected rather than returned early.
func describeIDL(idl *compiler.IDL) ([]*interfaceTypes, []error) {
	var out []*interfaceTypes
	var errs []error
	for _, iface := range idl.Interfaces() {
		desc, ifaceErrs := describeInterface(iface)
		out = append(out, desc)
		errs = append(errs, ifaceErrs...)
	}
	return out, errs
}

func describeInterface(iface *compiler.Interface) (*interfaceTypes, []error) {
	attrs := iface.Attrs()
	desc := &interfaceTypes{
		Name:         iface.Name(),
		Base:         iface.Base(),
		UUID:         attrs.UUID,
		Scriptable:   attrs.Scriptable,
		BuiltinClass: attrs.BuiltinClass,
		Entries:      iface.CountEntries(),
	}
	var errs []error
	for _, member := range iface.Members() {
		switch member := member.(type) {
		case *compiler.ConstMember:
			value, err := member.Value()
			if err != nil {
				errs = append(errs, err)
				continue
			}
			desc.Consts = append(desc.Consts, constValue{member.Name(), value})
		case *compiler.CEnum:
			values := cenumValues{Name: member.Name(), Width: member.Width()}
			for _, variant := range member.Variants() {
				value, err := variant.Value()
				if err != nil {
					errs = append(errs, err)
					break
				}
				values.Variants = append(values.Variants, constValue{variant.Name(), value})
			}
			desc.CEnums = append(desc.CEnums, values)
		case *compiler.Attribute:
			getter := typeAt{member.RealType(), compiler.TypeConfig{Direction: compiler.DirOut}}
			typ, err := spell(getter)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			desc.Attributes = append(desc.Attributes, attrTypes{
				Name:     member.Name(),
				ReadOnly: member.ReadOnly(),
				Type:     typ,
			})
		case *compiler.Method:
			method, methodErrs := describeMethod(member)
			errs = append(errs, methodErrs...)
			desc.Methods = append(desc.Methods, method)
		}
	}
	return desc, errs
}

func describeMethod(m *compiler.Method) (methodTypes, []error) {
	desc := methodTypes{Name: m.Name()}
	var errs []error
	if m.TypeID().Name() != "void" {
		retval := typeAt{m.RealType(), compiler.TypeConfig{Direction: compiler.DirOut}}
		typ, err := spell(retval)
		if err != nil {
			errs = append(errs, err)
		}
		desc.Return = typ
	}
	for _, param := range m.Params() {
		typ, err := spell(param)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		desc.Params = append(desc.Params, paramTypes{
			Name:      param.Name(),
			Direction: param.Direction().String(),
			Type:      typ,
		})
	}
	return desc, errs
}
