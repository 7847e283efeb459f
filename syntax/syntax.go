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

// Package syntax implements the lexer and parser for XPIDL files.
package syntax

import (
	"strconv"
)

type ParseOption interface {
	apply(*ParseOptions)
}

type parseOption func(*ParseOptions)

func (fn parseOption) apply(opts *ParseOptions) {
	fn(opts)
}

// WithFilename sets the file name reported in locations.
func WithFilename(filename string) ParseOption {
	return parseOption(func(opts *ParseOptions) {
		opts.filename = filename
	})
}

func Parse(src []byte, opts ...ParseOption) (*File, error) {
	return NewParseOptions(opts...).ParseFile(src)
}

type ParseOptions struct {
	filename string
}

func NewParseOptions(opts ...ParseOption) *ParseOptions {
	parseOpts := &ParseOptions{}
	for _, opt := range opts {
		opt.apply(parseOpts)
	}
	return parseOpts
}

func (opts *ParseOptions) Filename() string {
	return opts.filename
}

func (opts *ParseOptions) ParseFile(src []byte) (*File, error) {
	ctx, err := newParseCtx(opts, src)
	if err != nil {
		return nil, err
	}
	return parseFile(ctx)
}

// ParseMember parses a single interface member, such as a method or
// attribute declaration.
func (opts *ParseOptions) ParseMember(src []byte) (Member, error) {
	ctx, err := newParseCtx(opts, src)
	if err != nil {
		return nil, err
	}
	member := parseMember(ctx)
	ctx.expect(T_EOF, "end of input")
	if ctx.err != nil {
		return nil, ctx.err
	}
	return member, nil
}

// ParseExpr parses a constant expression.
func (opts *ParseOptions) ParseExpr(src []byte) (Expr, error) {
	ctx, err := newParseCtx(opts, src)
	if err != nil {
		return nil, err
	}
	expr := parseExpr(ctx, 1)
	ctx.expect(T_EOF, "end of input")
	if ctx.err != nil {
		return nil, ctx.err
	}
	return expr, nil
}

type parseCtx struct {
	source    *Source
	tokens    *Tokens
	haveToken bool
	token     Token
	err       error
}

func newParseCtx(opts *ParseOptions, src []byte) (*parseCtx, error) {
	source := NewSource(opts.filename, src)
	tokens, err := NewTokens(source)
	if err != nil {
		return nil, err
	}
	return &parseCtx{
		source: source,
		tokens: tokens,
	}, nil
}

func (ctx *parseCtx) ensureToken() error {
	if ctx.err != nil {
		return ctx.err
	}
	if ctx.haveToken {
		return nil
	}
	if err := ctx.tokens.Next(&ctx.token); err != nil {
		ctx.err = err
		return ctx.err
	}
	ctx.haveToken = true
	return nil
}

func (ctx *parseCtx) peek() TokenKind {
	if err := ctx.ensureToken(); err != nil {
		return T_EOF
	}
	return ctx.token.Kind
}

func (ctx *parseCtx) consumeToken() Token {
	ctx.haveToken = false
	return ctx.token
}

func (ctx *parseCtx) fail(want string) {
	if ctx.err != nil {
		return
	}
	if ctx.token.Kind == T_EOF {
		ctx.err = errUnexpectedEOF()
		return
	}
	ctx.err = errInvalidSyntax(&ctx.token, want)
}

// expect consumes a token of the given kind, or records a syntax error.
func (ctx *parseCtx) expect(kind TokenKind, want string) Token {
	if err := ctx.ensureToken(); err != nil {
		return Token{}
	}
	if ctx.token.Kind != kind {
		ctx.fail(want)
		return Token{}
	}
	return ctx.consumeToken()
}

func (ctx *parseCtx) sigil(kind TokenKind) Token {
	return ctx.expect(kind, kind.String())
}

func (ctx *parseCtx) trySigil(kind TokenKind) (Token, bool) {
	if ctx.peek() != kind || ctx.err != nil {
		return Token{}, false
	}
	return ctx.consumeToken(), true
}

func (ctx *parseCtx) ident() Token {
	return ctx.expect(T_IDENT, "IDENTIFIER")
}

func parseFile(ctx *parseCtx) (*File, error) {
	file := &File{source: ctx.source}
	for ctx.err == nil {
		var prod Production
		switch ctx.peek() {
		case T_EOF:
			if ctx.err != nil {
				return nil, ctx.err
			}
			return file, nil
		case T_CDATA:
			tok := ctx.consumeToken()
			prod = newCDATA(&tok)
		case T_INCLUDE:
			tok := ctx.consumeToken()
			prod = &Include{path: tok.Text, loc: tok.Location}
		case T_WEBIDL:
			prod = parseWebIDL(ctx)
		default:
			prod = parseDeclaration(ctx)
		}
		if ctx.err == nil {
			file.productions = append(file.productions, prod)
		}
	}
	return nil, ctx.err
}

type attrList struct {
	attrs       []*Attr
	present     bool
	docComments []string
}

// [attr, attr(value), ...]
func parseAttrList(ctx *parseCtx) attrList {
	open, ok := ctx.trySigil(T_OPEN_SQUARE)
	if !ok {
		return attrList{}
	}
	list := attrList{
		present:     true,
		docComments: open.DocComments,
	}
	for ctx.err == nil {
		list.attrs = append(list.attrs, parseAttr(ctx))
		if _, ok := ctx.trySigil(T_COMMA); ok {
			continue
		}
		ctx.expect(T_CLOSE_SQUARE, "',' or ']'")
		break
	}
	return list
}

func parseAttr(ctx *parseCtx) *Attr {
	var nameTok Token
	switch ctx.peek() {
	case T_IDENT, T_CONST:
		nameTok = ctx.consumeToken()
	default:
		ctx.fail("attribute name")
		return nil
	}
	attr := &Attr{name: nameTok.Text, loc: nameTok.Location}
	if _, ok := ctx.trySigil(T_OPEN_PAREN); ok {
		switch ctx.peek() {
		case T_IDENT, T_IID:
			attr.value = ctx.consumeToken().Text
			attr.hasValue = true
		default:
			ctx.fail("attribute value")
			return nil
		}
		ctx.sigil(T_CLOSE_PAREN)
	}
	return attr
}

func parseDeclaration(ctx *parseCtx) Production {
	attrs := parseAttrList(ctx)
	switch ctx.peek() {
	case T_TYPEDEF:
		return parseTypedef(ctx, attrs)
	case T_NATIVE:
		return parseNative(ctx, attrs)
	case T_INTERFACE:
		return parseInterface(ctx, attrs)
	}
	ctx.fail("'typedef', 'native', or 'interface'")
	return nil
}

// typedef Type Name;
func parseTypedef(ctx *parseCtx, attrs attrList) *Typedef {
	kw := ctx.consumeToken()
	typ := parseType(ctx)
	name := ctx.ident()
	ctx.sigil(T_SEMICOLON)
	return &Typedef{
		attrs:       attrs.attrs,
		typ:         typ,
		name:        name.Text,
		loc:         kw.Location,
		docComments: joinDocComments(attrs.docComments, kw.DocComments),
	}
}

// native Name(signature);
func parseNative(ctx *parseCtx, attrs attrList) *Native {
	kw := ctx.consumeToken()
	name := ctx.ident()
	ctx.sigil(T_OPEN_PAREN)
	if ctx.err != nil {
		return nil
	}
	ctx.tokens.BeginNativeSignature()
	sig := ctx.expect(T_NATIVEID, "native type")
	ctx.sigil(T_CLOSE_PAREN)
	ctx.sigil(T_SEMICOLON)
	return &Native{
		attrs:     attrs.attrs,
		name:      name.Text,
		signature: sig.Text,
		loc:       kw.Location,
	}
}

// webidl Name;
func parseWebIDL(ctx *parseCtx) *WebIDL {
	ctx.consumeToken()
	name := ctx.ident()
	ctx.sigil(T_SEMICOLON)
	return &WebIDL{name: name.Text, loc: name.Location}
}

// interface Name : Base { members };
// interface Name;
func parseInterface(ctx *parseCtx, attrs attrList) *Interface {
	kw := ctx.consumeToken()
	name := ctx.ident()
	iface := &Interface{
		attrs:       attrs.attrs,
		name:        name.Text,
		loc:         kw.Location,
		docComments: joinDocComments(attrs.docComments, kw.DocComments),
	}
	if _, ok := ctx.trySigil(T_COLON); ok {
		iface.base = ctx.ident().Text
	}
	if _, ok := ctx.trySigil(T_OPEN_CURL); ok {
		iface.members = []Member{}
		for ctx.err == nil && ctx.peek() != T_CLOSE_CURL {
			if member := parseMember(ctx); ctx.err == nil {
				iface.members = append(iface.members, member)
			}
		}
		ctx.sigil(T_CLOSE_CURL)
	} else {
		iface.forward = true
	}
	ctx.sigil(T_SEMICOLON)
	if ctx.err != nil || !iface.forward {
		return iface
	}
	if len(iface.attrs) != 0 {
		ctx.err = errForwardHasAttributes(iface.loc)
	} else if iface.base != "" {
		ctx.err = errForwardHasBase(iface.loc)
	}
	return iface
}

func parseMember(ctx *parseCtx) Member {
	switch ctx.peek() {
	case T_CDATA:
		tok := ctx.consumeToken()
		return newCDATA(&tok)
	case T_CONST:
		return parseConst(ctx)
	case T_CENUM:
		return parseCEnum(ctx)
	}
	attrs := parseAttrList(ctx)
	switch ctx.peek() {
	case T_READONLY, T_ATTRIBUTE:
		return parseAttribute(ctx, attrs)
	case T_IDENT:
		return parseMethod(ctx, attrs)
	}
	ctx.fail("interface member")
	return nil
}

// const Type Name = expr;
func parseConst(ctx *parseCtx) *Const {
	kw := ctx.consumeToken()
	typ := parseType(ctx)
	name := ctx.ident()
	ctx.sigil(T_EQ)
	value := parseExpr(ctx, 1)
	ctx.sigil(T_SEMICOLON)
	return &Const{
		typ:         typ,
		name:        name.Text,
		value:       value,
		loc:         kw.Location,
		docComments: kw.DocComments,
	}
}

// cenum Name : width { A, B = expr, ... };
func parseCEnum(ctx *parseCtx) *CEnum {
	kw := ctx.consumeToken()
	name := ctx.ident()
	ctx.sigil(T_COLON)
	widthTok := ctx.expect(T_NUMBER, "NUMBER")
	if ctx.err != nil {
		return nil
	}
	width, err := strconv.Atoi(widthTok.Text)
	if err != nil {
		ctx.err = errIntLitInvalid(widthTok.Location, widthTok.Text)
		return nil
	}
	cenum := &CEnum{
		name:        name.Text,
		width:       width,
		loc:         kw.Location,
		docComments: kw.DocComments,
	}
	ctx.sigil(T_OPEN_CURL)
	for ctx.err == nil && ctx.peek() == T_IDENT {
		tok := ctx.consumeToken()
		variant := &CEnumVariant{name: tok.Text, loc: tok.Location}
		if _, ok := ctx.trySigil(T_EQ); ok {
			variant.value = parseExpr(ctx, 1)
		}
		cenum.variants = append(cenum.variants, variant)
		if _, ok := ctx.trySigil(T_COMMA); !ok {
			break
		}
	}
	ctx.sigil(T_CLOSE_CURL)
	ctx.sigil(T_SEMICOLON)
	if ctx.err == nil && width != 8 && width != 16 && width != 32 {
		ctx.err = errCEnumWidth(cenum.loc)
	}
	return cenum
}

// [attrs] readonly attribute Type Name;
func parseAttribute(ctx *parseCtx, attrs attrList) *Attribute {
	attr := &Attribute{attrs: attrs.attrs}
	var readonlyDocs []string
	if tok, ok := ctx.trySigil(T_READONLY); ok {
		attr.readonly = true
		readonlyDocs = tok.DocComments
	}
	kw := ctx.expect(T_ATTRIBUTE, "'attribute'")
	attr.typ = parseType(ctx)
	attr.name = ctx.ident().Text
	attr.loc = kw.Location
	ctx.sigil(T_SEMICOLON)

	switch {
	case attrs.present:
		attr.docComments = attrs.docComments
	case attr.readonly:
		attr.docComments = readonlyDocs
	default:
		attr.docComments = kw.DocComments
	}
	return attr
}

// [attrs] Type Name(params) raises(A, B);
func parseMethod(ctx *parseCtx, attrs attrList) *Method {
	typeDocs := ctx.token.DocComments
	method := &Method{attrs: attrs.attrs}
	method.typ = parseType(ctx)
	name := ctx.ident()
	method.name = name.Text
	method.loc = name.Location

	ctx.sigil(T_OPEN_PAREN)
	if ctx.peek() != T_CLOSE_PAREN {
		for ctx.err == nil {
			method.params = append(method.params, parseParam(ctx))
			if _, ok := ctx.trySigil(T_COMMA); !ok {
				break
			}
		}
	}
	ctx.expect(T_CLOSE_PAREN, "',' or ')'")

	if _, ok := ctx.trySigil(T_RAISES); ok {
		ctx.sigil(T_OPEN_PAREN)
		for ctx.err == nil {
			method.raises = append(method.raises, ctx.ident().Text)
			if _, ok := ctx.trySigil(T_COMMA); !ok {
				break
			}
		}
		ctx.expect(T_CLOSE_PAREN, "',' or ')'")
	}
	ctx.sigil(T_SEMICOLON)

	if attrs.present {
		method.docComments = attrs.docComments
	} else {
		method.docComments = typeDocs
	}
	return method
}

// [attrs] in|out|inout Type Name
func parseParam(ctx *parseCtx) *Param {
	attrs := parseAttrList(ctx)
	param := &Param{attrs: attrs.attrs}
	switch ctx.peek() {
	case T_IN:
		param.direction = ParamIn
	case T_OUT:
		param.direction = ParamOut
	case T_INOUT:
		param.direction = ParamInOut
	default:
		ctx.fail("'in', 'out', or 'inout'")
		return nil
	}
	ctx.consumeToken()
	param.typ = parseType(ctx)
	name := ctx.ident()
	param.name = name.Text
	param.loc = name.Location
	return param
}

// Name
// Name<Type, ...>
func parseType(ctx *parseCtx) *TypeID {
	name := ctx.ident()
	if ctx.err != nil {
		return nil
	}
	typ := &TypeID{name: name.Text, loc: name.Location}
	if _, ok := ctx.trySigil(T_LT); ok {
		for ctx.err == nil {
			typ.params = append(typ.params, parseType(ctx))
			if _, ok := ctx.trySigil(T_COMMA); !ok {
				break
			}
		}
		ctx.expect(T_GT, "',' or '>'")
	}
	return typ
}

// parseExpr parses a binary expression whose operators bind at least as
// tightly as minPrec. Operators are left-associative.
func parseExpr(ctx *parseCtx, minPrec int) Expr {
	left := parseUnary(ctx)
	for ctx.err == nil {
		op, ok := binaryOpFor(ctx.peek())
		if !ok || op.precedence() < minPrec {
			break
		}
		opTok := ctx.consumeToken()
		right := parseExpr(ctx, op.precedence()+1)
		if ctx.err != nil {
			return nil
		}
		left = &BinaryExpr{
			op:    op,
			left:  left,
			right: right,
			loc:   opTok.Location,
		}
	}
	return left
}

func parseUnary(ctx *parseCtx) Expr {
	if tok, ok := ctx.trySigil(T_MINUS); ok {
		operand := parseUnary(ctx)
		if ctx.err != nil {
			return nil
		}
		return &UnaryExpr{operand: operand, loc: tok.Location}
	}
	switch ctx.peek() {
	case T_NUMBER, T_HEXNUM:
		tok := ctx.consumeToken()
		lit, err := newIntLit(&tok)
		if err != nil {
			ctx.err = err
			return nil
		}
		return lit
	case T_IDENT:
		tok := ctx.consumeToken()
		return &NameRef{name: tok.Text, loc: tok.Location}
	case T_OPEN_PAREN:
		ctx.consumeToken()
		expr := parseExpr(ctx, 1)
		ctx.sigil(T_CLOSE_PAREN)
		return expr
	}
	ctx.fail("constant expression")
	return nil
}
