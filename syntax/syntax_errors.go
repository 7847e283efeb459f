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
	"fmt"
	"math"
	"strings"
)

// Error is a diagnostic with an optional source location. Warnings share the
// same type and are distinguished by [Error.IsWarning].
//
// Codes 1000-1999 are lexical, 2000-2999 are syntactic. Higher ranges are
// allocated by the compiler package.
type Error struct {
	code     uint32
	message  string
	location Location
	warning  bool
	notes    []string
}

var _ error = (*Error)(nil)

func NewError(code uint32, message string, loc Location, notes ...string) *Error {
	return &Error{
		code:     code,
		message:  message,
		location: loc,
		notes:    notes,
	}
}

func NewWarning(code uint32, message string, loc Location) *Error {
	return &Error{
		code:     code,
		message:  message,
		location: loc,
		warning:  true,
	}
}

func (err *Error) Error() string {
	return err.render(err.location.Get())
}

// Detail is like Error, but includes the offending source line with a caret.
func (err *Error) Detail() string {
	return err.render(err.location.String())
}

func (err *Error) render(loc string) string {
	var sb strings.Builder
	if err.warning {
		sb.WriteString("warning: ")
	} else {
		sb.WriteString("error: ")
	}
	sb.WriteString(err.message)
	if loc != "" {
		sb.WriteString(", ")
		sb.WriteString(loc)
	}
	for _, note := range err.notes {
		sb.WriteString("\nnote: ")
		sb.WriteString(note)
	}
	return sb.String()
}

func (err *Error) Code() uint32 {
	return err.code
}

func (err *Error) Message() string {
	return err.message
}

func (err *Error) Location() Location {
	return err.location
}

func (err *Error) IsWarning() bool {
	return err.warning
}

func (err *Error) Notes() []string {
	return err.notes
}

// At returns a copy of err reported at loc.
func (err *Error) At(loc Location) *Error {
	cp := *err
	cp.location = loc
	return &cp
}

func errSourceTooLong(srcLen int) error {
	return &Error{
		code: 1000,
		message: fmt.Sprintf(
			"Source file size (%d bytes) exceeds maximum (%d bytes)",
			srcLen, maxSrcLen,
		),
	}
}

func errUnrecognizedInput(loc Location) error {
	return &Error{
		code:     1001,
		message:  "unrecognized input",
		location: loc,
	}
}

func errUnrecognizedDirective(loc Location, directive string) error {
	return &Error{
		code:     1002,
		message:  fmt.Sprintf("Unrecognized directive %s", directive),
		location: loc,
	}
}

func errIntLitInvalid(loc Location, text string) error {
	return &Error{
		code:     1003,
		message:  fmt.Sprintf("Invalid integer literal %q", text),
		location: loc,
	}
}

func errUnexpectedEOF() error {
	return &Error{
		code:    2000,
		message: "Syntax Error at end of file. Possibly due to missing semicolon(;), braces(}) or both",
	}
}

func errInvalidSyntax(tok *Token, want string) error {
	return &Error{
		code:     2001,
		message:  fmt.Sprintf("invalid syntax: expected %s, got %s", want, tok.describe()),
		location: tok.Location,
	}
}

func errForwardHasAttributes(loc Location) error {
	return &Error{
		code:     2002,
		message:  "Forward declarations cannot have attributes",
		location: loc,
	}
}

func errForwardHasBase(loc Location) error {
	return &Error{
		code:     2003,
		message:  "Forward declarations cannot have a base",
		location: loc,
	}
}

func errCEnumWidth(loc Location) error {
	return &Error{
		code:     2004,
		message:  "Width must be one of {8, 16, 32}",
		location: loc,
	}
}

func errConstOverflow(loc Location) error {
	return &Error{
		code:     2100,
		message:  fmt.Sprintf("constant expression overflows the range [%d, %d]", int64(math.MinInt64), int64(math.MaxInt64)),
		location: loc,
	}
}

func errNegativeShift(loc Location, count int64) error {
	return &Error{
		code:     2101,
		message:  fmt.Sprintf("negative shift count %d in constant expression", count),
		location: loc,
	}
}
