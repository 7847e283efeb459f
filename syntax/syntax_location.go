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
	"strings"
)

const (
	unknownFilename = "<unknown>"
	builtinFilename = "<builtin type>"

	maxContextLen = 80
)

// Source is the text of one IDL file, shared by every [Location] in it.
type Source struct {
	name    string
	text    []byte
	builtin bool
}

func NewSource(name string, text []byte) *Source {
	if name == "" {
		name = unknownFilename
	}
	return &Source{name: name, text: text}
}

func (src *Source) Name() string {
	return src.name
}

func (src *Source) Text() []byte {
	return src.text
}

var builtinSource = &Source{name: builtinFilename, builtin: true}

// Location is a position in a [Source]. Two locations are equal if they
// share a file name and byte offset.
type Location struct {
	src    *Source
	offset uint32
	line   uint32
}

// BuiltinLocation is the location reported for builtin types.
func BuiltinLocation() Location {
	return Location{src: builtinSource}
}

func (loc Location) IsZero() bool {
	return loc.src == nil
}

func (loc Location) IsBuiltin() bool {
	return loc.src != nil && loc.src.builtin
}

func (loc Location) Filename() string {
	if loc.src == nil {
		return ""
	}
	return loc.src.name
}

func (loc Location) Offset() uint32 {
	return loc.offset
}

// Line is 1-based.
func (loc Location) Line() uint32 {
	return loc.line
}

// Column is the 0-based byte offset from the start of the line.
func (loc Location) Column() uint32 {
	if loc.src == nil || loc.src.builtin {
		return 0
	}
	start := bytes.LastIndexByte(loc.src.text[:loc.offset], '\n') + 1
	return loc.offset - uint32(start)
}

func (loc Location) Equal(other Location) bool {
	return loc.Filename() == other.Filename() && loc.offset == other.offset
}

// Get renders "file line L:C".
func (loc Location) Get() string {
	if loc.src == nil {
		return ""
	}
	if loc.src.builtin {
		return builtinFilename
	}
	return fmt.Sprintf("%s line %d:%d", loc.src.name, loc.line, loc.Column())
}

// String renders [Location.Get] followed by the source line and a caret
// under the location's column.
func (loc Location) String() string {
	if loc.src == nil || loc.src.builtin {
		return loc.Get()
	}
	text := loc.src.text
	start := bytes.LastIndexByte(text[:loc.offset], '\n') + 1
	end := len(text)
	limit := int(loc.offset) + maxContextLen
	if limit < end {
		end = limit
	}
	if nl := bytes.IndexByte(text[loc.offset:end], '\n'); nl >= 0 {
		end = int(loc.offset) + nl
	}
	col := int(loc.offset) - start
	return fmt.Sprintf(
		"%s\n%s\n%s^",
		loc.Get(),
		text[start:end],
		strings.Repeat(" ", col),
	)
}
