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

package syntax_test

import (
	"testing"

	"github.com/mattmanj17-forks/gecko-dev/xpcom/idl-parser/internal/testutil"
	"github.com/mattmanj17-forks/gecko-dev/xpcom/idl-parser/syntax"
)

func TestTokensInterface(t *testing.T) {
	t.Parallel()
	got, err := testutil.DumpTokens(`/** Doc */
[scriptable, uuid(0f3e2b1c-1234-4abc-8def-0123456789ab)]
interface nsIFoo : nsISupports {
  const unsigned long X = 0x10 << 2; // trailing
};
`)
	testutil.AssertNoError(t, err)
	testutil.ExpectNoDiff(t, `'[' "["
  doc "/** Doc */"
IDENTIFIER "scriptable"
',' ","
IDENTIFIER "uuid"
'(' "("
IID "0f3e2b1c-1234-4abc-8def-0123456789ab"
')' ")"
']' "]"
'interface' "interface"
IDENTIFIER "nsIFoo"
':' ":"
IDENTIFIER "nsISupports"
'{' "{"
'const' "const"
IDENTIFIER "unsigned long"
IDENTIFIER "X"
'=' "="
HEXNUM "0x10"
'<<' "<<"
NUMBER "2"
';' ";"
'}' "}"
';' ";"
`, got)
}

func TestTokensMultiWordIdents(t *testing.T) {
	t.Parallel()
	got, err := testutil.DumpTokens(
		"unsigned long long unsigned short unsigned long longer long long_x long long")
	testutil.AssertNoError(t, err)
	testutil.ExpectNoDiff(t, `IDENTIFIER "unsigned long long"
IDENTIFIER "unsigned short"
IDENTIFIER "unsigned long"
IDENTIFIER "longer"
IDENTIFIER "long"
IDENTIFIER "long_x"
IDENTIFIER "long long"
`, got)
}

func TestTokensNumbers(t *testing.T) {
	t.Parallel()
	got, err := testutil.DumpTokens("a -5 - 5 0xFF 0x 12>>3")
	testutil.AssertNoError(t, err)
	testutil.ExpectNoDiff(t, `IDENTIFIER "a"
NUMBER "-5"
'-' "-"
NUMBER "5"
HEXNUM "0xFF"
NUMBER "0"
IDENTIFIER "x"
NUMBER "12"
'>>' ">>"
NUMBER "3"
`, got)
}

func TestTokensCDATA(t *testing.T) {
	t.Parallel()
	got, err := testutil.DumpTokens("/** kept */\n%{ C++ \nint x;\n\n%} C++\ninterface")
	testutil.AssertNoError(t, err)
	testutil.ExpectNoDiff(t, `CDATA "int x;\n\n"
'interface' "interface"
  doc "/** kept */"
`, got)
}

func TestTokensNativeSignature(t *testing.T) {
	t.Parallel()
	got, err := testutil.DumpTokens("native nsFoo(std::function<void(int)>);\nnative Bar(Bar*);")
	testutil.AssertNoError(t, err)
	testutil.ExpectNoDiff(t, `'native' "native"
IDENTIFIER "nsFoo"
'(' "("
NATIVEID "std::function<void(int)>"
')' ")"
';' ";"
'native' "native"
IDENTIFIER "Bar"
'(' "("
NATIVEID "Bar*"
')' ")"
';' ";"
`, got)
}

func TestTokensInclude(t *testing.T) {
	t.Parallel()
	got, err := testutil.DumpTokens("#include \"nsISupports.idl\"\r\n#include\t\"a/b.idl\"")
	testutil.AssertNoError(t, err)
	testutil.ExpectNoDiff(t, `INCLUDE "nsISupports.idl"
INCLUDE "a/b.idl"
`, got)
}

func TestTokensErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src     string
		code    uint32
		message string
		line    uint32
		column  uint32
	}{
		{"\n#pragma once", 1002, "Unrecognized directive pragma", 2, 0},
		{"a @", 1001, "unrecognized input", 1, 2},
		{"/* never closed", 1001, "unrecognized input", 1, 0},
		{"x\n  %{ C\n", 1001, "unrecognized input", 2, 2},
		{"__x", 1001, "unrecognized input", 1, 0},
	}
	for _, test := range tests {
		_, err := testutil.DumpTokens(test.src)
		diag := testutil.AssertDiagnostic(t, err, test.code)
		testutil.ExpectEq(t, test.message, diag.Message())
		testutil.ExpectEq(t, test.line, diag.Location().Line())
		testutil.ExpectEq(t, test.column, diag.Location().Column())
	}
}

func TestTokensDocCommentBuffer(t *testing.T) {
	t.Parallel()
	tokens, err := syntax.NewTokens(syntax.NewSource("", []byte("/** a */ /* b */ /** c */")))
	testutil.AssertNoError(t, err)

	var token syntax.Token
	testutil.AssertNoError(t, tokens.Next(&token))
	testutil.ExpectEq(t, syntax.T_EOF, token.Kind)
	testutil.ExpectSliceEq(t, []string{"/** a */", "/** c */"}, tokens.PendingDocComments())

	tokens.ClearDocComments()
	testutil.ExpectEq(t, 0, len(tokens.PendingDocComments()))
}

func TestLocationString(t *testing.T) {
	t.Parallel()
	_, err := syntax.Parse([]byte("typedef long A;\ntypedef long B\n"), syntax.WithFilename("t.idl"))
	diag := testutil.AssertDiagnostic(t, err, 2000)
	testutil.ExpectTrue(t, diag.Location().IsZero())

	_, err = syntax.Parse([]byte("typedef long A;\n  typedef long = B;\n"), syntax.WithFilename("t.idl"))
	diag = testutil.AssertDiagnostic(t, err, 2001)
	testutil.ExpectEq(t, "t.idl line 2:15", diag.Location().Get())
	testutil.ExpectNoDiff(t, "t.idl line 2:15\n  typedef long = B;\n               ^", diag.Location().String())
	testutil.ExpectEq(t,
		`error: invalid syntax: expected IDENTIFIER, got '=', t.idl line 2:15`,
		diag.Error())
}
