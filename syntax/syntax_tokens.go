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
	"fmt"
)

const (
	maxSrcLen = 0x7FFFFFFF // (2**31)-1

	iidLen = 36
)

type Token struct {
	Kind TokenKind

	// Text is the token's value: the identifier, the number as written,
	// the include path, the CDATA body, or the native signature.
	Text string

	Location Location

	// DocComments are the `/** ... */` comments seen since the previous
	// token. CDATA tokens never take doc comments.
	DocComments []string
}

func (tok *Token) describe() string {
	switch tok.Kind {
	case T_EOF:
		return "EOF"
	case T_IDENT, T_NUMBER, T_HEXNUM, T_IID:
		return fmt.Sprintf("%s %q", tok.Kind, tok.Text)
	}
	return tok.Kind.String()
}

type TokenKind uint8

const (
	T_EOF TokenKind = iota

	T_IDENT
	T_IID
	T_NUMBER
	T_HEXNUM
	T_CDATA
	T_INCLUDE
	T_NATIVEID

	T_LSHIFT
	T_RSHIFT

	T_QUOTE
	T_OPEN_PAREN
	T_CLOSE_PAREN
	T_OPEN_CURL
	T_CLOSE_CURL
	T_OPEN_SQUARE
	T_CLOSE_SQUARE
	T_LT
	T_GT
	T_COMMA
	T_SEMICOLON
	T_COLON
	T_EQ
	T_PIPE
	T_PLUS
	T_MINUS
	T_STAR

	T_CENUM
	T_CONST
	T_INTERFACE
	T_IN
	T_INOUT
	T_OUT
	T_ATTRIBUTE
	T_RAISES
	T_READONLY
	T_NATIVE
	T_TYPEDEF
	T_WEBIDL
)

var keywords = map[string]TokenKind{
	"cenum":     T_CENUM,
	"const":     T_CONST,
	"interface": T_INTERFACE,
	"in":        T_IN,
	"inout":     T_INOUT,
	"out":       T_OUT,
	"attribute": T_ATTRIBUTE,
	"raises":    T_RAISES,
	"readonly":  T_READONLY,
	"native":    T_NATIVE,
	"typedef":   T_TYPEDEF,
	"webidl":    T_WEBIDL,
}

var sigils = [256]TokenKind{
	'"': T_QUOTE,
	'(': T_OPEN_PAREN,
	')': T_CLOSE_PAREN,
	'{': T_OPEN_CURL,
	'}': T_CLOSE_CURL,
	'[': T_OPEN_SQUARE,
	']': T_CLOSE_SQUARE,
	'<': T_LT,
	'>': T_GT,
	',': T_COMMA,
	';': T_SEMICOLON,
	':': T_COLON,
	'=': T_EQ,
	'|': T_PIPE,
	'+': T_PLUS,
	'-': T_MINUS,
	'*': T_STAR,
}

// Multi-word builtin aliases lex as a single identifier.
var multiWordIdents = []string{
	"unsigned long long",
	"unsigned short",
	"unsigned long",
	"long long",
}

func (k TokenKind) String() string {
	switch k {
	case T_EOF:
		return "EOF"
	case T_IDENT:
		return "IDENTIFIER"
	case T_IID:
		return "IID"
	case T_NUMBER:
		return "NUMBER"
	case T_HEXNUM:
		return "HEXNUM"
	case T_CDATA:
		return "CDATA"
	case T_INCLUDE:
		return "INCLUDE"
	case T_NATIVEID:
		return "NATIVEID"
	case T_LSHIFT:
		return "'<<'"
	case T_RSHIFT:
		return "'>>'"
	}
	for c, kind := range sigils {
		if kind == k && kind != T_EOF {
			return fmt.Sprintf("'%c'", c)
		}
	}
	for word, kind := range keywords {
		if kind == k {
			return fmt.Sprintf("'%s'", word)
		}
	}
	return fmt.Sprintf("TokenKind(%d)", uint8(k))
}

type Tokens struct {
	src    *Source
	text   []byte
	offset uint32
	line   uint32

	nativeSignature bool
	docComments     []string
}

func NewTokens(src *Source) (*Tokens, error) {
	if len(src.text) > maxSrcLen {
		return nil, errSourceTooLong(len(src.text))
	}
	return &Tokens{
		src:  src,
		text: src.text,
		line: 1,
	}, nil
}

// BeginNativeSignature makes the next call to Next capture a raw native
// signature, up to but not including the closing parenthesis.
func (t *Tokens) BeginNativeSignature() {
	t.nativeSignature = true
}

// PendingDocComments returns doc comments not yet attached to a token.
func (t *Tokens) PendingDocComments() []string {
	return t.docComments
}

func (t *Tokens) ClearDocComments() {
	t.docComments = nil
}

func (t *Tokens) location() Location {
	return Location{src: t.src, offset: t.offset, line: t.line}
}

func (t *Tokens) advance(n int) {
	t.line += uint32(bytes.Count(t.text[:n], []byte{'\n'}))
	t.offset += uint32(n)
	t.text = t.text[n:]
}

func (t *Tokens) Next(token *Token) error {
	if t.nativeSignature {
		t.nativeSignature = false
		if err := t.nextNativeSignature(token); err != nil {
			return err
		}
		token.DocComments = t.docComments
		t.docComments = nil
		return nil
	}
	for {
		if len(t.text) == 0 {
			*token = Token{
				Kind:     T_EOF,
				Location: t.location(),
			}
			return nil
		}
		skipped, err := t.skipIgnored()
		if err != nil {
			return err
		}
		if !skipped {
			break
		}
	}

	if err := t.next(token); err != nil {
		return err
	}
	if token.Kind != T_CDATA {
		token.DocComments = t.docComments
		t.docComments = nil
	}
	return nil
}

// skipIgnored consumes one run of blanks, newlines, or comments.
func (t *Tokens) skipIgnored() (bool, error) {
	switch t.text[0] {
	case ' ', '\t', '\r', '\n':
		n := 0
		for n < len(t.text) {
			c := t.text[n]
			if c != ' ' && c != '\t' && c != '\r' && c != '\n' {
				break
			}
			n++
		}
		t.advance(n)
		return true, nil
	case '/':
		if len(t.text) < 2 {
			return false, errUnrecognizedInput(t.location())
		}
		switch t.text[1] {
		case '*':
			end := bytes.Index(t.text[2:], []byte("*/"))
			if end < 0 {
				return false, errUnrecognizedInput(t.location())
			}
			n := end + 4
			if bytes.HasPrefix(t.text, []byte("/**")) {
				t.docComments = append(t.docComments, string(t.text[:n]))
			}
			t.advance(n)
			return true, nil
		case '/':
			n := bytes.IndexByte(t.text, '\n')
			if n < 0 {
				n = len(t.text)
			}
			t.advance(n)
			return true, nil
		}
		return false, errUnrecognizedInput(t.location())
	}
	return false, nil
}

func (t *Tokens) next(token *Token) error {
	loc := t.location()
	c := t.text[0]

	if isHexDigit(c) && isIID(t.text) {
		*token = Token{Kind: T_IID, Text: string(t.text[:iidLen]), Location: loc}
		t.advance(iidLen)
		return nil
	}

	if isAlpha(c) || c == '_' {
		if n := identLen(t.text); n > 0 {
			text := string(t.text[:n])
			kind, ok := keywords[text]
			if !ok {
				kind = T_IDENT
			}
			*token = Token{Kind: kind, Text: text, Location: loc}
			t.advance(n)
			return nil
		}
		return errUnrecognizedInput(loc)
	}

	switch c {
	case '%':
		return t.nextCDATA(token)
	case '#':
		return t.nextDirective(token)
	case '0':
		if len(t.text) > 2 && t.text[1] == 'x' && isHexDigit(t.text[2]) {
			n := 3
			for n < len(t.text) && isHexDigit(t.text[n]) {
				n++
			}
			*token = Token{Kind: T_HEXNUM, Text: string(t.text[:n]), Location: loc}
			t.advance(n)
			return nil
		}
	case '<':
		if len(t.text) > 1 && t.text[1] == '<' {
			*token = Token{Kind: T_LSHIFT, Text: "<<", Location: loc}
			t.advance(2)
			return nil
		}
	case '>':
		if len(t.text) > 1 && t.text[1] == '>' {
			*token = Token{Kind: T_RSHIFT, Text: ">>", Location: loc}
			t.advance(2)
			return nil
		}
	}

	if isDigit(c) || (c == '-' && len(t.text) > 1 && isDigit(t.text[1])) {
		n := 1
		for n < len(t.text) && isDigit(t.text[n]) {
			n++
		}
		*token = Token{Kind: T_NUMBER, Text: string(t.text[:n]), Location: loc}
		t.advance(n)
		return nil
	}

	if kind := sigils[c]; kind != T_EOF {
		*token = Token{Kind: kind, Text: string(c), Location: loc}
		t.advance(1)
		return nil
	}
	return errUnrecognizedInput(loc)
}

// %{C++
// ...
// %}
func (t *Tokens) nextCDATA(token *Token) error {
	loc := t.location()
	src := t.text
	if !bytes.HasPrefix(src, []byte("%{")) {
		return errUnrecognizedInput(loc)
	}
	n := skipSpaces(src, 2)
	if !bytes.HasPrefix(src[n:], []byte("C++")) {
		return errUnrecognizedInput(loc)
	}
	n = skipSpaces(src, n+3)
	if n >= len(src) || src[n] != '\n' {
		return errUnrecognizedInput(loc)
	}
	bodyStart := n + 1
	bodyLen := bytes.Index(src[bodyStart:], []byte("%}"))
	if bodyLen < 0 {
		return errUnrecognizedInput(loc)
	}
	n = skipSpaces(src, bodyStart+bodyLen+2)
	if bytes.HasPrefix(src[n:], []byte("C++")) {
		n += 3
	}
	*token = Token{
		Kind:     T_CDATA,
		Text:     string(src[bodyStart : bodyStart+bodyLen]),
		Location: loc,
	}
	t.advance(n)
	return nil
}

func (t *Tokens) nextDirective(token *Token) error {
	loc := t.location()
	src := t.text
	const include = "#include"
	if bytes.HasPrefix(src, []byte(include)) {
		n := len(include)
		for n < len(src) && (src[n] == ' ' || src[n] == '\t') {
			n++
		}
		if n > len(include) && n < len(src) && src[n] == '"' {
			pathStart := n + 1
			pathLen := bytes.IndexAny(src[pathStart:], "\"\n")
			if pathLen > 0 && src[pathStart+pathLen] == '"' {
				*token = Token{
					Kind:     T_INCLUDE,
					Text:     string(src[pathStart : pathStart+pathLen]),
					Location: loc,
				}
				t.advance(pathStart + pathLen + 1)
				return nil
			}
		}
	}
	n := 1
	for n < len(src) && isAlpha(src[n]) {
		n++
	}
	if n > 1 {
		return errUnrecognizedDirective(loc, string(src[1:n]))
	}
	return errUnrecognizedInput(loc)
}

// A native signature is a run of non-parenthesis characters, optionally
// containing one balanced parenthesized group with text on both sides (as
// in `std::function<void(int)>`). It must be followed by ')'.
func (t *Tokens) nextNativeSignature(token *Token) error {
	loc := t.location()
	src := t.text
	run := func(start int) int {
		n := start
		for n < len(src) && src[n] != '(' && src[n] != ')' && src[n] != '\n' {
			n++
		}
		return n - start
	}

	n := run(0)
	if n == 0 {
		return errUnrecognizedInput(loc)
	}
	if n < len(src) && src[n] == '(' {
		if inner := run(n + 1); inner > 0 {
			closing := n + 1 + inner
			if closing < len(src) && src[closing] == ')' {
				if after := run(closing + 1); after > 0 {
					n = closing + 1 + after
				}
			}
		}
	}
	if n >= len(src) || src[n] != ')' {
		return errUnrecognizedInput(loc)
	}
	*token = Token{
		Kind:     T_NATIVEID,
		Text:     string(src[:n]),
		Location: loc,
	}
	t.advance(n)
	return nil
}

func identLen(src []byte) int {
	for _, word := range multiWordIdents {
		if bytes.HasPrefix(src, []byte(word)) && !startsIdent(src[len(word):]) {
			return len(word)
		}
	}
	n := 0
	if src[0] == '_' {
		n = 1
	}
	if n >= len(src) || !isAlpha(src[n]) {
		return 0
	}
	n++
	for n < len(src) && (isAlpha(src[n]) || isDigit(src[n]) || src[n] == '_') {
		n++
	}
	return n
}

func startsIdent(src []byte) bool {
	if len(src) > 0 && src[0] == '_' {
		src = src[1:]
	}
	return len(src) > 0 && isAlpha(src[0])
}

func isIID(src []byte) bool {
	if len(src) < iidLen {
		return false
	}
	for ii, c := range src[:iidLen] {
		switch ii {
		case 8, 13, 18, 23:
			if c != '-' {
				return false
			}
		default:
			if !isHexDigit(c) {
				return false
			}
		}
	}
	return true
}

func skipSpaces(src []byte, n int) int {
	for n < len(src) && src[n] == ' ' {
		n++
	}
	return n
}

func isAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
