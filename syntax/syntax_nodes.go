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

package syntax

import (
	"bytes"
	"regexp"
	"strings"
)

type Node interface {
	Location() Location
}

// Unparser is implemented by nodes that can be written back as IDL text.
type Unparser interface {
	UnparseTo(buf *bytes.Buffer)
}

func Unparse(node Unparser) string {
	var buf bytes.Buffer
	node.UnparseTo(&buf)
	return buf.String()
}

// Production is a top-level declaration of a [File].
type Production interface {
	Node
	isProduction()
}

// Member is a declaration inside an interface body.
type Member interface {
	Node
	isMember()
}

type File struct {
	source      *Source
	productions []Production
}

func (f *File) Source() *Source {
	return f.source
}

func (f *File) Productions() []Production {
	return f.productions
}

type Include struct {
	path string
	loc  Location
}

func (*Include) isProduction() {}

func (n *Include) Path() string {
	return n.path
}

func (n *Include) Location() Location {
	return n.loc
}

var newlineRuns = regexp.MustCompile(`\n+`)

type CDATA struct {
	data string
	loc  Location
}

func newCDATA(tok *Token) *CDATA {
	return &CDATA{
		data: newlineRuns.ReplaceAllString(tok.Text, "\n"),
		loc:  tok.Location,
	}
}

func (*CDATA) isProduction() {}

func (*CDATA) isMember() {}

func (n *CDATA) Data() string {
	return n.data
}

func (n *CDATA) Location() Location {
	return n.loc
}

type Typedef struct {
	attrs       []*Attr
	typ         *TypeID
	name        string
	loc         Location
	docComments []string
}

func (*Typedef) isProduction() {}

func (n *Typedef) Attrs() []*Attr        { return n.attrs }
func (n *Typedef) Type() *TypeID         { return n.typ }
func (n *Typedef) Name() string          { return n.name }
func (n *Typedef) Location() Location    { return n.loc }
func (n *Typedef) DocComments() []string { return n.docComments }

type Native struct {
	attrs     []*Attr
	name      string
	signature string
	loc       Location
}

func (*Native) isProduction() {}

func (n *Native) Attrs() []*Attr     { return n.attrs }
func (n *Native) Name() string       { return n.name }
func (n *Native) Location() Location { return n.loc }

// Signature is the raw native type between the parentheses.
func (n *Native) Signature() string {
	return n.signature
}

type WebIDL struct {
	name string
	loc  Location
}

func (*WebIDL) isProduction() {}

func (n *WebIDL) Name() string       { return n.name }
func (n *WebIDL) Location() Location { return n.loc }

// Interface is either a definition with a body or, if [Interface.IsForward],
// a forward declaration.
type Interface struct {
	attrs       []*Attr
	name        string
	base        string
	members     []Member
	forward     bool
	loc         Location
	docComments []string
}

func (*Interface) isProduction() {}

func (n *Interface) Attrs() []*Attr        { return n.attrs }
func (n *Interface) Name() string          { return n.name }
func (n *Interface) Base() string          { return n.base }
func (n *Interface) Members() []Member     { return n.members }
func (n *Interface) IsForward() bool       { return n.forward }
func (n *Interface) Location() Location    { return n.loc }
func (n *Interface) DocComments() []string { return n.docComments }

type Const struct {
	typ         *TypeID
	name        string
	value       Expr
	loc         Location
	docComments []string
}

func (*Const) isMember() {}

func (n *Const) Type() *TypeID         { return n.typ }
func (n *Const) Name() string          { return n.name }
func (n *Const) Value() Expr           { return n.value }
func (n *Const) Location() Location    { return n.loc }
func (n *Const) DocComments() []string { return n.docComments }

func (n *Const) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString("const ")
	n.typ.UnparseTo(buf)
	buf.WriteString(" ")
	buf.WriteString(n.name)
	buf.WriteString(" = ")
	n.value.UnparseTo(buf)
	buf.WriteString(";")
}

type CEnum struct {
	name        string
	width       int
	variants    []*CEnumVariant
	loc         Location
	docComments []string
}

func (*CEnum) isMember() {}

func (n *CEnum) Name() string              { return n.name }
func (n *CEnum) Width() int                { return n.width }
func (n *CEnum) Variants() []*CEnumVariant { return n.variants }
func (n *CEnum) Location() Location        { return n.loc }
func (n *CEnum) DocComments() []string     { return n.docComments }

type CEnumVariant struct {
	name  string
	value Expr
	loc   Location
}

func (n *CEnumVariant) Name() string { return n.name }

// Value is nil for variants without an explicit value.
func (n *CEnumVariant) Value() Expr {
	return n.value
}

func (n *CEnumVariant) Location() Location { return n.loc }

type Attribute struct {
	attrs       []*Attr
	readonly    bool
	typ         *TypeID
	name        string
	loc         Location
	docComments []string
}

func (*Attribute) isMember() {}

func (n *Attribute) Attrs() []*Attr        { return n.attrs }
func (n *Attribute) ReadOnly() bool        { return n.readonly }
func (n *Attribute) Type() *TypeID         { return n.typ }
func (n *Attribute) Name() string          { return n.name }
func (n *Attribute) Location() Location    { return n.loc }
func (n *Attribute) DocComments() []string { return n.docComments }

type Method struct {
	attrs       []*Attr
	typ         *TypeID
	name        string
	params      []*Param
	raises      []string
	loc         Location
	docComments []string
}

func (*Method) isMember() {}

func (n *Method) Attrs() []*Attr        { return n.attrs }
func (n *Method) Type() *TypeID         { return n.typ }
func (n *Method) Name() string          { return n.name }
func (n *Method) Params() []*Param      { return n.params }
func (n *Method) Raises() []string      { return n.raises }
func (n *Method) Location() Location    { return n.loc }
func (n *Method) DocComments() []string { return n.docComments }

type ParamDirection uint8

const (
	ParamIn ParamDirection = iota
	ParamOut
	ParamInOut
)

func (d ParamDirection) String() string {
	switch d {
	case ParamOut:
		return "out"
	case ParamInOut:
		return "inout"
	}
	return "in"
}

type Param struct {
	attrs     []*Attr
	direction ParamDirection
	typ       *TypeID
	name      string
	loc       Location
}

func (n *Param) Attrs() []*Attr            { return n.attrs }
func (n *Param) Direction() ParamDirection { return n.direction }
func (n *Param) Type() *TypeID             { return n.typ }
func (n *Param) Name() string              { return n.name }
func (n *Param) Location() Location        { return n.loc }

// Attr is one entry of a bracketed attribute list, such as `scriptable`
// or `uuid(...)`.
type Attr struct {
	name     string
	value    string
	hasValue bool
	loc      Location
}

func (a *Attr) Name() string       { return a.name }
func (a *Attr) Location() Location { return a.loc }

func (a *Attr) Value() (string, bool) {
	return a.value, a.hasValue
}

func (a *Attr) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(a.name)
	if a.hasValue {
		buf.WriteString("(")
		buf.WriteString(a.value)
		buf.WriteString(")")
	}
}

// TypeID is an unresolved reference to a type, with optional generic
// parameters.
type TypeID struct {
	name   string
	params []*TypeID
	loc    Location
}

func NewTypeID(name string, loc Location) *TypeID {
	return &TypeID{name: name, loc: loc}
}

func (t *TypeID) Name() string       { return t.name }
func (t *TypeID) Params() []*TypeID  { return t.params }
func (t *TypeID) Location() Location { return t.loc }

func (t *TypeID) String() string {
	return Unparse(t)
}

func (t *TypeID) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(t.name)
	if len(t.params) == 0 {
		return
	}
	buf.WriteString("<")
	for ii, param := range t.params {
		if ii > 0 {
			buf.WriteString(", ")
		}
		param.UnparseTo(buf)
	}
	buf.WriteString(">")
}

func joinDocComments(lists ...[]string) []string {
	var out []string
	for _, list := range lists {
		out = append(out, list...)
	}
	return out
}

// AttrsString renders attrs as written, without brackets.
func AttrsString(attrs []*Attr) string {
	parts := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		parts = append(parts, Unparse(attr))
	}
	return strings.Join(parts, ", ")
}
