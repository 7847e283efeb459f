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
	"fmt"
	"io"
	"strings"
)

// Dump writes a readable outline of a resolved IDL file, one line per
// declaration and member.
func Dump(w io.Writer, idl *IDL) error {
	d := dumper{w: w}
	for _, prod := range idl.productions {
		if d.err != nil {
			break
		}
		d.visitProduction(prod)
	}
	return d.err
}

func DumpString(idl *IDL) string {
	var buf strings.Builder
	Dump(&buf, idl)
	return buf.String()
}

type dumper struct {
	w      io.Writer
	indent int
	err    error
}

func (d *dumper) line(s string) {
	if d.err != nil {
		return
	}
	if indent := strings.Repeat("\t", d.indent); indent != "" {
		if _, err := io.WriteString(d.w, indent); err != nil {
			d.err = err
			return
		}
	}
	if _, err := io.WriteString(d.w, s); err != nil {
		d.err = err
		return
	}
	if _, err := io.WriteString(d.w, "\n"); err != nil {
		d.err = err
		return
	}
}

func (d *dumper) linef(format string, a ...any) {
	d.line(fmt.Sprintf(format, a...))
}

func (d *dumper) visitProduction(prod Production) {
	switch prod := prod.(type) {
	case *Include:
		d.linef("include '%s'", prod.filename)
	case *CDATA:
		d.visitCDATA(prod)
	case *Typedef:
		d.linef("typedef %s %s", prod.typ, prod.name)
	case *Forward:
		d.linef("forward-declared %s", prod.name)
	case *Native:
		d.linef("native %s(%s)", prod.name, prod.signature)
	case *WebIDL:
		d.linef("webidl %s", prod.name)
	case *Interface:
		d.visitInterface(prod)
	}
}

func (d *dumper) visitCDATA(cdata *CDATA) {
	d.linef("cdata: %s", cdata.loc.Get())
	d.indent += 1
	d.line(quote(cdata.data))
	d.indent -= 1
}

func (d *dumper) visitInterface(iface *Interface) {
	d.linef("interface %s", iface.name)
	d.indent += 1
	if iface.base != "" {
		d.linef("base %s", iface.base)
	}
	attrs := iface.attrs
	d.linef("uuid: %s", attrs.UUID)
	for _, flag := range []struct {
		name string
		set  bool
	}{
		{"scriptable", attrs.Scriptable},
		{"builtinclass", attrs.BuiltinClass},
		{"function", attrs.Function},
		{"main_process_scriptable_only", attrs.MainProcessScriptableOnly},
		{"rust_sync", attrs.RustSync},
	} {
		if flag.set {
			d.line(flag.name)
		}
	}
	for _, member := range iface.members {
		d.visitMember(member)
	}
	d.indent -= 1
}

func (d *dumper) visitMember(member Member) {
	switch m := member.(type) {
	case *CDATA:
		d.visitCDATA(m)
	case *ConstMember:
		value, err := m.Value()
		if err != nil {
			d.linef("const %s %s = <%v>", m.TypeID(), m.name, err)
			return
		}
		d.linef("const %s %s = %d", m.TypeID(), m.name, value)
	case *CEnum:
		variants := make([]string, 0, len(m.variants))
		for _, v := range m.variants {
			value, _ := v.Value()
			variants = append(variants, fmt.Sprintf("%s = %d", v.name, value))
		}
		d.linef("cenum %s : %d { %s };", m.name, m.width, strings.Join(variants, ", "))
	case *Attribute:
		readonly := ""
		if m.readOnly {
			readonly = "readonly "
		}
		d.linef("%sattribute %s %s", readonly, m.typ, m.name)
	case *Method:
		params := make([]string, 0, len(m.params))
		for _, p := range m.params {
			params = append(params, p.name)
		}
		d.linef("%s %s(%s)", m.typ, m.name, strings.Join(params, ", "))
	}
}

func quote(text string) string {
	var buf strings.Builder
	buf.WriteByte('"')
	for _, c := range text {
		if c == '\\' || c == '"' {
			buf.WriteByte('\\')
			buf.WriteRune(c)
			continue
		}
		if c == '\t' {
			buf.WriteString("\\t")
			continue
		}
		if c == '\n' {
			buf.WriteString("\\n")
			continue
		}
		if c < 0x20 || c == 0x7F {
			fmt.Fprintf(&buf, "\\x%02X", c)
			continue
		}
		buf.WriteRune(c)
	}
	buf.WriteByte('"')
	return buf.String()
}
