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
	"math"
	"strconv"
)

// Expr is a constant expression. Names are looked up when the expression is
// evaluated, so an expression may refer to constants declared after it or
// inherited from a base interface.
type Expr interface {
	Node
	Unparser
	Eval(scope ConstScope) (int64, error)
}

// ConstScope resolves named constants during [Expr.Eval].
type ConstScope interface {
	LookupConst(name string, loc Location) (int64, error)
}

type IntLit struct {
	text  string
	value int64
	loc   Location
}

func newIntLit(tok *Token) (*IntLit, error) {
	var value int64
	var err error
	if tok.Kind == T_HEXNUM {
		var u uint64
		u, err = strconv.ParseUint(tok.Text[2:], 16, 64)
		if err == nil && u > math.MaxInt64 {
			err = strconv.ErrRange
		}
		value = int64(u)
	} else {
		value, err = strconv.ParseInt(tok.Text, 10, 64)
	}
	if err != nil {
		return nil, errIntLitInvalid(tok.Location, tok.Text)
	}
	return &IntLit{text: tok.Text, value: value, loc: tok.Location}, nil
}

func (e *IntLit) Location() Location { return e.loc }
func (e *IntLit) Text() string       { return e.text }

func (e *IntLit) Eval(ConstScope) (int64, error) {
	return e.value, nil
}

func (e *IntLit) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(e.text)
}

type NameRef struct {
	name string
	loc  Location
}

func (e *NameRef) Location() Location { return e.loc }
func (e *NameRef) Name() string       { return e.name }

func (e *NameRef) Eval(scope ConstScope) (int64, error) {
	return scope.LookupConst(e.name, e.loc)
}

func (e *NameRef) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(e.name)
}

// UnaryExpr is a negation.
type UnaryExpr struct {
	operand Expr
	loc     Location
}

func (e *UnaryExpr) Location() Location { return e.loc }
func (e *UnaryExpr) Operand() Expr      { return e.operand }

func (e *UnaryExpr) Eval(scope ConstScope) (int64, error) {
	v, err := e.operand.Eval(scope)
	if err != nil {
		return 0, err
	}
	if v == math.MinInt64 {
		return 0, errConstOverflow(e.loc)
	}
	return -v, nil
}

func (e *UnaryExpr) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString("-")
	if _, ok := e.operand.(*NameRef); ok {
		e.operand.UnparseTo(buf)
		return
	}
	buf.WriteString("(")
	e.operand.UnparseTo(buf)
	buf.WriteString(")")
}

type BinaryOp uint8

const (
	OpOr BinaryOp = iota
	OpShiftLeft
	OpShiftRight
	OpAdd
	OpSub
	OpMul
)

func (op BinaryOp) String() string {
	switch op {
	case OpOr:
		return "|"
	case OpShiftLeft:
		return "<<"
	case OpShiftRight:
		return ">>"
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	}
	return "?"
}

// precedence is 1 for the loosest-binding operator.
func (op BinaryOp) precedence() int {
	switch op {
	case OpOr:
		return 1
	case OpShiftLeft, OpShiftRight:
		return 2
	case OpAdd, OpSub:
		return 3
	}
	return 4
}

func binaryOpFor(kind TokenKind) (BinaryOp, bool) {
	switch kind {
	case T_PIPE:
		return OpOr, true
	case T_LSHIFT:
		return OpShiftLeft, true
	case T_RSHIFT:
		return OpShiftRight, true
	case T_PLUS:
		return OpAdd, true
	case T_MINUS:
		return OpSub, true
	case T_STAR:
		return OpMul, true
	}
	return 0, false
}

type BinaryExpr struct {
	op    BinaryOp
	left  Expr
	right Expr
	loc   Location
}

func (e *BinaryExpr) Location() Location { return e.loc }
func (e *BinaryExpr) Op() BinaryOp       { return e.op }
func (e *BinaryExpr) Left() Expr         { return e.left }
func (e *BinaryExpr) Right() Expr        { return e.right }

func (e *BinaryExpr) Eval(scope ConstScope) (int64, error) {
	a, err := e.left.Eval(scope)
	if err != nil {
		return 0, err
	}
	b, err := e.right.Eval(scope)
	if err != nil {
		return 0, err
	}
	switch e.op {
	case OpOr:
		return a | b, nil
	case OpShiftLeft:
		if b < 0 {
			return 0, errNegativeShift(e.loc, b)
		}
		if a == 0 {
			return 0, nil
		}
		if b >= 63 || (a<<b)>>b != a {
			return 0, errConstOverflow(e.loc)
		}
		return a << b, nil
	case OpShiftRight:
		if b < 0 {
			return 0, errNegativeShift(e.loc, b)
		}
		if b >= 63 {
			b = 63
		}
		return a >> b, nil
	case OpAdd:
		if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
			return 0, errConstOverflow(e.loc)
		}
		return a + b, nil
	case OpSub:
		if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
			return 0, errConstOverflow(e.loc)
		}
		return a - b, nil
	case OpMul:
		if a == 0 || b == 0 {
			return 0, nil
		}
		c := a * b
		if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
			return 0, errConstOverflow(e.loc)
		}
		return c, nil
	}
	panic("unreachable")
}

func (e *BinaryExpr) UnparseTo(buf *bytes.Buffer) {
	unparseOperand(buf, e.left)
	buf.WriteString(" ")
	buf.WriteString(e.op.String())
	buf.WriteString(" ")
	unparseOperand(buf, e.right)
}

func unparseOperand(buf *bytes.Buffer, e Expr) {
	if _, ok := e.(*BinaryExpr); ok {
		buf.WriteString("(")
		e.UnparseTo(buf)
		buf.WriteString(")")
		return
	}
	e.UnparseTo(buf)
}
