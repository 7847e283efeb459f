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

// Builtin is one of the primitive types that every IDL file can name
// without declaring it.
type Builtin struct {
	name       string
	nativeName string
	rustName   string
	tsName     string
	signed     bool
	maybeConst bool
}

var builtins = []*Builtin{
	{name: "boolean", nativeName: "bool", rustName: "bool", tsName: "boolean"},
	{name: "void", nativeName: "void", rustName: "libc::c_void", tsName: "void"},
	{name: "int8_t", nativeName: "int8_t", rustName: "i8", tsName: "i8", signed: true, maybeConst: true},
	{name: "int16_t", nativeName: "int16_t", rustName: "i16", tsName: "i16", signed: true, maybeConst: true},
	{name: "int32_t", nativeName: "int32_t", rustName: "i32", tsName: "i32", signed: true, maybeConst: true},
	{name: "int64_t", nativeName: "int64_t", rustName: "i64", tsName: "i64", signed: true, maybeConst: true},
	{name: "uint8_t", nativeName: "uint8_t", rustName: "u8", tsName: "u8", maybeConst: true},
	{name: "uint16_t", nativeName: "uint16_t", rustName: "u16", tsName: "u16", maybeConst: true},
	{name: "uint32_t", nativeName: "uint32_t", rustName: "u32", tsName: "u32", maybeConst: true},
	{name: "uint64_t", nativeName: "uint64_t", rustName: "u64", tsName: "u64", maybeConst: true},
	{name: "nsresult", nativeName: "nsresult", rustName: "nserror::nsresult", tsName: "nsresult"},
	{name: "float", nativeName: "float", rustName: "libc::c_float", tsName: "float"},
	{name: "double", nativeName: "double", rustName: "libc::c_double", tsName: "double"},
	{name: "char", nativeName: "char", rustName: "libc::c_char", tsName: "string"},
	{name: "string", nativeName: "char *", rustName: "*const libc::c_char", tsName: "string"},
	{name: "wchar", nativeName: "char16_t", rustName: "u16", tsName: "string"},
	{name: "wstring", nativeName: "char16_t *", rustName: "*const u16", tsName: "string"},
	// Same native type as wchar, but reflected into script as an integer.
	{name: "char16_t", nativeName: "char16_t", rustName: "u16", tsName: "u16", maybeConst: true},
	// No TypeScript spelling.
	{name: "MozExternalRefCountType", nativeName: "MozExternalRefCountType", rustName: "MozExternalRefCountType"},
}

var builtinAliases = map[string]string{
	"octet":              "uint8_t",
	"unsigned short":     "uint16_t",
	"unsigned long":      "uint32_t",
	"unsigned long long": "uint64_t",
	"short":              "int16_t",
	"long":               "int32_t",
	"long long":          "int64_t",
}

var builtinMap = func() map[string]*Builtin {
	m := make(map[string]*Builtin, len(builtins)+len(builtinAliases))
	for _, b := range builtins {
		m[b.name] = b
	}
	for alias, name := range builtinAliases {
		m[alias] = m[name]
	}
	return m
}()

// LookupBuiltin finds a builtin type by name or C-style alias.
func LookupBuiltin(name string) (*Builtin, bool) {
	b, ok := builtinMap[name]
	return b, ok
}

func (b *Builtin) Name() string              { return b.name }
func (b *Builtin) Kind() Kind                { return KindBuiltin }
func (b *Builtin) Location() syntax.Location { return syntax.BuiltinLocation() }
func (b *Builtin) NativeName() string        { return b.nativeName }
func (b *Builtin) Signed() bool              { return b.signed }

// MaybeConst reports whether constants may have this type.
func (b *Builtin) MaybeConst() bool {
	return b.maybeConst
}

func (b *Builtin) IsPointer() bool {
	return strings.HasSuffix(b.nativeName, "*")
}

func (b *Builtin) setName(string) {}

func (b *Builtin) NativeType(cfg TypeConfig) (string, error) {
	if (b.name == "string" || b.name == "wstring") && cfg.Direction == DirElement {
		return "", errStringArrayElement(b.Location())
	}

	var prefix string
	switch {
	case cfg.Const:
		cfg.warn(warnConstOnBuiltin(b.Location()))
		prefix = "const "
	case cfg.Direction == DirIn && b.IsPointer():
		prefix = "const "
	case cfg.Shared:
		if !b.IsPointer() {
			return "", errSharedNonPointer(b.Location())
		}
		prefix = "const "
	}
	return prefix + b.nativeName + " " + cfg.outStar(), nil
}

func (b *Builtin) RustType(cfg TypeConfig) (string, error) {
	isConst := cfg.Const || cfg.Shared || (!cfg.Direction.isOut() && b.IsPointer())
	rustName := b.rustName
	if isConst && b.IsPointer() {
		rustName = strings.ReplaceAll(rustName, "*mut", "*const")
	}
	return cfg.rustOutPrefix() + rustName, nil
}

func (b *Builtin) TSType() (string, error) {
	if b.tsName == "" {
		return "", tsNoncompat("Builtin type %s unsupported in TypeScript", b.name)
	}
	return b.tsName, nil
}
