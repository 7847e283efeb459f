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

package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mattmanj17-forks/gecko-dev/xpcom/idl-parser/syntax"
)

// DumpTokens lexes src and renders one "KIND text" line per token. Doc
// comments attached to a token are rendered on "  doc" lines after it.
func DumpTokens(src string) (string, error) {
	tokens, err := syntax.NewTokens(syntax.NewSource("test.idl", []byte(src)))
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for {
		var token syntax.Token
		if err := tokens.Next(&token); err != nil {
			return sb.String(), err
		}
		if token.Kind == syntax.T_EOF {
			return sb.String(), nil
		}
		fmt.Fprintf(&sb, "%s %q\n", token.Kind, token.Text)
		for _, doc := range token.DocComments {
			fmt.Fprintf(&sb, "  doc %q\n", doc)
		}
		if token.Kind == syntax.T_NATIVE {
			// Mirror the parser: `native Name(` switches the lexer.
			if err := tokens.Next(&token); err != nil {
				return sb.String(), err
			}
			fmt.Fprintf(&sb, "%s %q\n", token.Kind, token.Text)
			if err := tokens.Next(&token); err != nil {
				return sb.String(), err
			}
			fmt.Fprintf(&sb, "%s %q\n", token.Kind, token.Text)
			tokens.BeginNativeSignature()
		}
	}
}

func MustParse(t *testing.T, src string) *syntax.File {
	t.Helper()
	file, err := syntax.Parse([]byte(src), syntax.WithFilename("test.idl"))
	if err != nil {
		t.Fatalf("syntax.Parse: %v", err)
	}
	return file
}

// MustParseMember parses a single interface member.
func MustParseMember(t *testing.T, src string) syntax.Member {
	t.Helper()
	member, err := syntax.NewParseOptions().ParseMember([]byte(src))
	if err != nil {
		t.Fatalf("ParseMember(%q): %v", src, err)
	}
	return member
}
