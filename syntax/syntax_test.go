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

const exampleFile = `#include "nsISupports.idl"

%{C++
#include "nsString.h"
%}

/** A typedef. */
typedef unsigned long nsFooFlags;

[ptr] native FooPtr(Foo*);
webidl Document;

interface nsIBar;

/**
 * The foo interface.
 */
[scriptable, uuid(0f3e2b1c-1234-4abc-8def-0123456789ab)]
interface nsIFoo : nsISupports
{
  /** First. */
  const long A = 1 << 3;

  cenum Color : 8 {
    Red,
    Green = 4,
  };

  /** Size. */
  readonly attribute unsigned long size;

  [noscript] attribute FooPtr foo;

  /** Do it. */
  Array<AString> doIt(in long a, [array, size_is(a)] out octet b, [const] in string c)
    raises (NS_ERROR_FAILURE, NS_ERROR_ABORT);
};
`

func TestParseFile(t *testing.T) {
	t.Parallel()
	file := testutil.MustParse(t, exampleFile)
	prods := file.Productions()
	testutil.ExpectEq(t, 7, len(prods))

	inc := prods[0].(*syntax.Include)
	testutil.ExpectEq(t, "nsISupports.idl", inc.Path())

	cdata := prods[1].(*syntax.CDATA)
	testutil.ExpectEq(t, "#include \"nsString.h\"\n", cdata.Data())

	td := prods[2].(*syntax.Typedef)
	testutil.ExpectEq(t, "nsFooFlags", td.Name())
	testutil.ExpectEq(t, "unsigned long", td.Type().Name())
	testutil.ExpectSliceEq(t, []string{"/** A typedef. */"}, td.DocComments())

	native := prods[3].(*syntax.Native)
	testutil.ExpectEq(t, "FooPtr", native.Name())
	testutil.ExpectEq(t, "Foo*", native.Signature())
	testutil.ExpectEq(t, "ptr", syntax.AttrsString(native.Attrs()))

	webidl := prods[4].(*syntax.WebIDL)
	testutil.ExpectEq(t, "Document", webidl.Name())

	fwd := prods[5].(*syntax.Interface)
	testutil.ExpectTrue(t, fwd.IsForward())
	testutil.ExpectEq(t, "nsIBar", fwd.Name())

	iface := prods[6].(*syntax.Interface)
	testutil.ExpectFalse(t, iface.IsForward())
	testutil.ExpectEq(t, "nsIFoo", iface.Name())
	testutil.ExpectEq(t, "nsISupports", iface.Base())
	testutil.ExpectEq(t,
		"scriptable, uuid(0f3e2b1c-1234-4abc-8def-0123456789ab)",
		syntax.AttrsString(iface.Attrs()))
	testutil.ExpectSliceEq(t,
		[]string{"/**\n * The foo interface.\n */"},
		iface.DocComments())
	testutil.ExpectEq(t, uint32(19), iface.Location().Line())

	members := iface.Members()
	testutil.ExpectEq(t, 5, len(members))

	c := members[0].(*syntax.Const)
	testutil.ExpectEq(t, "const long A = 1 << 3;", syntax.Unparse(c))
	testutil.ExpectSliceEq(t, []string{"/** First. */"}, c.DocComments())

	cenum := members[1].(*syntax.CEnum)
	testutil.ExpectEq(t, "Color", cenum.Name())
	testutil.ExpectEq(t, 8, cenum.Width())
	testutil.ExpectEq(t, 2, len(cenum.Variants()))
	testutil.ExpectTrue(t, cenum.Variants()[0].Value() == nil)
	testutil.ExpectEq(t, "4", syntax.Unparse(cenum.Variants()[1].Value()))

	size := members[2].(*syntax.Attribute)
	testutil.ExpectTrue(t, size.ReadOnly())
	testutil.ExpectEq(t, "unsigned long", size.Type().Name())
	testutil.ExpectSliceEq(t, []string{"/** Size. */"}, size.DocComments())

	foo := members[3].(*syntax.Attribute)
	testutil.ExpectFalse(t, foo.ReadOnly())
	testutil.ExpectEq(t, "noscript", syntax.AttrsString(foo.Attrs()))

	doIt := members[4].(*syntax.Method)
	testutil.ExpectEq(t, "doIt", doIt.Name())
	testutil.ExpectEq(t, "Array<AString>", doIt.Type().String())
	testutil.ExpectSliceEq(t, []string{"/** Do it. */"}, doIt.DocComments())
	testutil.ExpectSliceEq(t, []string{"NS_ERROR_FAILURE", "NS_ERROR_ABORT"}, doIt.Raises())

	params := doIt.Params()
	testutil.ExpectEq(t, 3, len(params))
	testutil.ExpectEq(t, syntax.ParamIn, params[0].Direction())
	testutil.ExpectEq(t, syntax.ParamOut, params[1].Direction())
	testutil.ExpectEq(t, "array, size_is(a)", syntax.AttrsString(params[1].Attrs()))
	testutil.ExpectEq(t, "const", syntax.AttrsString(params[2].Attrs()))
}

func TestParseDocCommentSources(t *testing.T) {
	t.Parallel()
	file := testutil.MustParse(t, `
interface nsIA : nsISupports {
  /** ro */ readonly /** kw */ attribute long a;
  [noscript] /** ignored */ attribute long b;
  /** type */ long c();
};`)
	members := file.Productions()[0].(*syntax.Interface).Members()
	testutil.ExpectSliceEq(t, []string{"/** ro */"}, members[0].(*syntax.Attribute).DocComments())
	testutil.ExpectEq(t, 0, len(members[1].(*syntax.Attribute).DocComments()))
	testutil.ExpectSliceEq(t, []string{"/** type */"}, members[2].(*syntax.Method).DocComments())
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		src     string
		code    uint32
		message string
	}{
		{
			name:    "missing semicolon at EOF",
			src:     "interface nsIA : nsISupports {}",
			code:    2000,
			message: "Syntax Error at end of file. Possibly due to missing semicolon(;), braces(}) or both",
		},
		{
			name:    "forward with attributes",
			src:     "[scriptable] interface nsIA;",
			code:    2002,
			message: "Forward declarations cannot have attributes",
		},
		{
			name:    "forward with base",
			src:     "interface nsIA : nsISupports;",
			code:    2003,
			message: "Forward declarations cannot have a base",
		},
		{
			name:    "cenum width",
			src:     "interface nsIA : nsISupports { cenum E : 12 { A }; };",
			code:    2004,
			message: "Width must be one of {8, 16, 32}",
		},
		{
			name:    "negative literal after operand",
			src:     "interface nsIA : nsISupports { const long A = 2 -1; };",
			code:    2001,
			message: "invalid syntax: expected ';', got NUMBER \"-1\"",
		},
		{
			name:    "webidl with attributes",
			src:     "[x] webidl Foo;",
			code:    2001,
			message: "invalid syntax: expected 'typedef', 'native', or 'interface', got 'webidl'",
		},
		{
			name:    "attribute list trailing comma",
			src:     "[scriptable,] interface nsIA : nsISupports {};",
			code:    2001,
			message: "invalid syntax: expected attribute name, got ']'",
		},
		{
			name:    "literal too large",
			src:     "interface nsIA : nsISupports { const long A = 0xFFFFFFFFFFFFFFFFF; };",
			code:    1003,
			message: "Invalid integer literal \"0xFFFFFFFFFFFFFFFFF\"",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := syntax.Parse([]byte(test.src))
			testutil.ExpectDiagnostic(t, err, test.code, test.message)
		})
	}
}

func TestParseMember(t *testing.T) {
	t.Parallel()
	tests := []string{
		"const long A = 1 << 3;",
		"const unsigned long B = (A | 2) * -(4);",
		"[infallible] readonly attribute long foo;",
		"[binaryname(Bar), noscript] void foo([array, size_is(n)] in octet a, in unsigned long n) raises (E1, E2);",
	}
	for _, src := range tests {
		member := testutil.MustParseMember(t, src)
		switch member := member.(type) {
		case *syntax.Const:
			testutil.ExpectEq(t, src, syntax.Unparse(member))
		case *syntax.Attribute:
			testutil.ExpectEq(t, "infallible", syntax.AttrsString(member.Attrs()))
			testutil.ExpectEq(t, "foo", member.Name())
		case *syntax.Method:
			testutil.ExpectEq(t, 2, len(member.Params()))
			testutil.ExpectEq(t, "unsigned long", member.Params()[1].Type().Name())
		default:
			t.Fatalf("unexpected member %T", member)
		}
	}
}

func TestNativeNoSignature(t *testing.T) {
	t.Parallel()
	_, err := syntax.Parse([]byte("native Foo();"))
	testutil.ExpectDiagnostic(t, err, 1001, "unrecognized input")
}
