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


package compiler_test

import (
	"testing"

	"github.com/mattmanj17-forks/gecko-dev/xpcom/idl-parser/compiler"
	"github.com/mattmanj17-forks/gecko-dev/xpcom/idl-parser/internal/testutil"
	"github.com/mattmanj17-forks/gecko-dev/xpcom/idl-parser/syntax"
)

func TestMemberAttributeErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		body    string
		code    uint32
		message string
	}{
		{"unknown attribute", "[bogus] readonly attribute long x;", 3010, "Unexpected attribute 'bogus'"},
		{"optional_argc on attribute", "[optional_argc] readonly attribute long x;", 3010, "Unexpected attribute 'optional_argc'"},
		{"binaryname without value", "[binaryname] void f();", 3011, "binaryname attribute requires a value"},
		{"noscript with value", "[noscript(x)] void f();", 3012, "Unexpected attribute value"},
		{"size_is without value", "void f([size_is] in long a);", 3011, "'size_is' must specify a parameter"},
		{"default without value", "void f([default] in long a);", 3011, "'default' must specify a default value"},
		{"retval with value", "void f([retval(x)] out long a);", 3012, "Unexpected value for attribute 'retval'"},
		{"unknown param attribute", "void f([bogus] in long a);", 3010, "Unexpected attribute 'bogus'"},
		{
			"setter after can_run_script",
			"[can_run_script, setter_can_run_script] attribute long x;",
			3015, "Redundant setter_can_run_script annotation on attribute",
		},
		{
			"getter twice",
			"[getter_can_run_script, getter_can_run_script] attribute long x;",
			3015, "Redundant getter_can_run_script annotation on attribute",
		},
		{
			"can_run_script after getter",
			"[getter_can_run_script, can_run_script] attribute long x;",
			3015, "Redundant getter_can_run_script or setter_can_run_script annotation on attribute",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := testutil.ResolveIDL(ifaceSrc("", test.body), nil)
			testutil.ExpectDiagnostic(t, err, test.code, test.message)
		})
	}
}

func TestNativeAttributeErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src     string
		code    uint32
		message string
	}{
		{"[bogus] native Foo(Foo);", 3010, "Unexpected attribute"},
		{"[ptr(x)] native Foo(Foo);", 3012, "Unexpected attribute value"},
		{"[ptr, ref] native Foo(Foo);", 3013, "More than one ptr/ref modifier"},
		{"[astring, cstring] native Foo(Foo);", 3014, "More than one special type"},
	}
	for _, test := range tests {
		_, err := testutil.ResolveIDL(test.src, nil)
		testutil.ExpectDiagnostic(t, err, test.code, test.message)
	}
}

func TestNative(t *testing.T) {
	t.Parallel()
	idl := testutil.MustResolve(t, `
[ref, utf8string] native AUTF8String(ignored);
[ptr] native nsIFrame(nsIFrame);
native Opaque(Opaque);
`)
	tests := []struct {
		name     string
		modifier compiler.NativeModifier
		special  compiler.SpecialType
		sig      string
	}{
		{"AUTF8String", compiler.ModifierRef, compiler.SpecialUTF8String, "ignored"},
		{"nsIFrame", compiler.ModifierPtr, compiler.SpecialNone, "nsIFrame"},
		{"Opaque", compiler.ModifierNone, compiler.SpecialNone, "Opaque"},
	}
	for _, test := range tests {
		decl, ok := idl.Lookup(test.name)
		testutil.ExpectTrue(t, ok)
		n := decl.(*compiler.Native)
		testutil.ExpectEq(t, test.modifier, n.Modifier())
		testutil.ExpectEq(t, test.special, n.SpecialType())
		testutil.ExpectEq(t, test.sig, n.Signature())
	}
	testutil.ExpectEq(t, "utf8string", compiler.SpecialUTF8String.String())
	testutil.ExpectEq(t, "ref", compiler.ModifierRef.String())
}

func TestMethodErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		decl    string
		code    uint32
		message string
	}{
		{
			"retval not last",
			"[retval] out long a, in long b",
			3040, "'retval' parameter 'a' is not the last parameter",
		},
		{
			"size_is output for input",
			"[array, size_is(n)] in long a, out unsigned long n",
			3041, "size_is parameter of an input must also be an input",
		},
		{
			"size_is signed",
			"[array, size_is(n)] in long a, in long n",
			3042, "size_is parameter must have type 'uint32_t'",
		},
		{
			"size_is missing",
			"[array, size_is(m)] in long a",
			3002, "Name 'm' not found",
		},
		{
			"iid_is output for input",
			"out nsIIDRef iid, [iid_is(iid)] in nsISupports a",
			3043, "iid_is parameter of an input must also be an input",
		},
		{
			"iid_is not an IID",
			"in long iid, [iid_is(iid), retval] out nsQIResult a",
			3044, "iid_is parameter must be an nsIID",
		},
		{
			"param type missing",
			"in nsIMissing a",
			3003, "type 'nsIMissing' not found",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := testutil.ResolveIDL(ifaceSrc("", "void f("+test.decl+");"), nil)
			testutil.ExpectDiagnostic(t, err, test.code, test.message)
		})
	}
}

func TestDuplicateParam(t *testing.T) {
	t.Parallel()
	_, err := testutil.ResolveIDL(ifaceSrc("", "void f(in long a, in short a);"), nil)
	diag := testutil.AssertDiagnostic(t, err, 3001)
	testutil.ExpectMatch(t, `^name 'a' specified twice\.`, diag.Message())
}

func TestValidateMembers(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		attrs   string
		body    string
		code    uint32
		message string
	}{
		{
			name:    "infallible native",
			body:    "[infallible] readonly attribute AString s;",
			code:    3050,
			message: "[infallible] only works on interfaces, domobjects, and builtin types (numbers, booleans, cenum, and raw char types)",
		},
		{
			name:    "infallible notxpcom",
			attrs:   "scriptable, builtinclass, ",
			body:    "[infallible, notxpcom] readonly attribute long x;",
			code:    3052,
			message: "[infallible] does not make sense for a [notxpcom] method or attribute",
		},
		{
			name:    "notxpcom method",
			attrs:   "scriptable, ",
			body:    "[notxpcom] void f();",
			code:    3053,
			message: "scriptable interface 'nsITest' must be marked [builtinclass] because it contains a [notxpcom] method 'f'",
		},
		{
			name:    "nostdcall attribute",
			attrs:   "scriptable, ",
			body:    "[nostdcall] readonly attribute long x;",
			code:    3053,
			message: "scriptable interface 'nsITest' must be marked [builtinclass] because it contains a [nostdcall] attribute 'x'",
		},
		{
			name:    "writable by-value native",
			attrs:   "scriptable, ",
			body:    "[noscript] attribute Opaque o;",
			code:    3055,
			message: "scriptable interface 'nsITest' must be marked [builtinclass] because it contains writable attribute 'o' with a by-value custom native type",
		},
		{
			name:    "native attribute",
			attrs:   "scriptable, ",
			body:    "readonly attribute OpaquePtr p;",
			code:    3056,
			message: "attribute 'p' must be marked [noscript] because it has a non-scriptable type",
		},
		{
			name:    "non-scriptable return",
			attrs:   "scriptable, ",
			body:    "nsIHidden get();",
			code:    3056,
			message: "method 'get' must be marked [noscript] because it has a non-scriptable type",
		},
		{
			name:    "native array param",
			attrs:   "scriptable, ",
			body:    "void f(in Array<OpaquePtr> a);",
			code:    3057,
			message: "method 'f' must be marked [noscript] because it has a non-scriptable parameter 'a'",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := testutil.ResolveIDL(ifaceSrc(test.attrs, test.body), nil)
			testutil.ExpectDiagnostic(t, err, test.code, test.message)
		})
	}
}

func TestValidateMembersOK(t *testing.T) {
	t.Parallel()
	for _, src := range []string{
		ifaceSrc("", "[infallible] readonly attribute long x;\n[infallible] readonly attribute nsISupports y;"),
		ifaceSrc("scriptable, builtinclass, ", "[infallible] readonly attribute long x;\n[notxpcom] void f();"),
		ifaceSrc("scriptable, ", "[noscript] readonly attribute Opaque o;\n[noscript] void f(in OpaquePtr p);"),
		ifaceSrc("scriptable, ", "void getIface(in nsIIDRef iid, [iid_is(iid), retval] out nsQIResult result);"),
		ifaceSrc("", "attribute Opaque o;\nvoid f(in Opaque a);"),
	} {
		_, err := testutil.ResolveIDL(src, nil)
		testutil.AssertNoError(t, err)
	}
}

func TestMemberFlags(t *testing.T) {
	t.Parallel()
	iface := testutil.MustInterface(t, ifaceSrc("scriptable, builtinclass, ", `
  [noscript, notxpcom, symbol, implicit_jscontext, nostdcall, must_use, binaryname(Bar)]
  void g();
  [can_run_script] attribute long both;
  [getter_can_run_script] readonly attribute long getter;
  readonly attribute long plain;
  [can_run_script, optional_argc] void h([optional] in long a);
`), "nsITest")

	methods := iface.Methods()
	testutil.ExpectEq(t, compiler.MemberFlags{
		NoScript:          true,
		NotXPCOM:          true,
		Symbol:            true,
		ImplicitJSContext: true,
		NoStdCall:         true,
		MustUse:           true,
		BinaryName:        "Bar",
	}, methods[0].Flags())
	testutil.ExpectFalse(t, methods[0].IsScriptable())

	h := methods[1]
	testutil.ExpectTrue(t, h.CanRunScript())
	testutil.ExpectTrue(t, h.OptionalArgc())
	testutil.ExpectTrue(t, h.IsScriptable())
	testutil.ExpectTrue(t, h.Params()[0].Flags().Optional)
	testutil.ExpectTrue(t, h.Params()[0].Method() == h)

	attrs := iface.Attributes()
	testutil.ExpectTrue(t, attrs[0].GetterCanRunScript())
	testutil.ExpectTrue(t, attrs[0].SetterCanRunScript())
	testutil.ExpectEq(t, 2, attrs[0].Count())
	testutil.ExpectTrue(t, attrs[1].GetterCanRunScript())
	testutil.ExpectFalse(t, attrs[1].SetterCanRunScript())
	testutil.ExpectEq(t, 1, attrs[1].Count())
	testutil.ExpectFalse(t, attrs[2].GetterCanRunScript())
	testutil.ExpectTrue(t, attrs[2].IsScriptable())
	testutil.ExpectEq(t, "long", attrs[2].TypeID().Name())
	testutil.ExpectEq(t, compiler.KindBuiltin, attrs[2].RealType().Kind())
}

func TestMemberToIDL(t *testing.T) {
	t.Parallel()
	iface := testutil.MustInterface(t, ifaceSrc("", `
  [noscript, binaryname(Foo)] readonly attribute long foo;
  [noscript] Array<AString> doIt([array, size_is(n)] in long a, in unsigned long n, [optional] inout string s)
    raises (NS_ERROR_FAILURE, NS_ERROR_ABORT);
  void g([const, size_is(n), array] in string a, in unsigned long n);
`), "nsITest")

	attr := iface.Attributes()[0]
	testutil.ExpectEq(t, "[binaryname(Foo),noscript] readonly attribute long foo;", attr.ToIDL())

	doIt := iface.Methods()[0]
	text := doIt.ToIDL()
	testutil.ExpectEq(t,
		"[noscript] Array<AString> doIt ([array, size_is (n)] in long a, in unsigned long n,"+
			" [optional] inout string s) raises (NS_ERROR_FAILURE,NS_ERROR_ABORT);",
		text)

	reparsed := testutil.MustParseMember(t, text).(*syntax.Method)
	testutil.ExpectEq(t, "doIt", reparsed.Name())
	testutil.ExpectEq(t, "Array<AString>", reparsed.Type().String())
	testutil.ExpectSliceEq(t, []string{"NS_ERROR_FAILURE", "NS_ERROR_ABORT"}, reparsed.Raises())
	params := reparsed.Params()
	testutil.ExpectEq(t, 3, len(params))
	testutil.ExpectEq(t, "array, size_is(n)", syntax.AttrsString(params[0].Attrs()))
	testutil.ExpectEq(t, syntax.ParamInOut, params[2].Direction())

	g := iface.Methods()[1]
	testutil.ExpectEq(t, "[array, size_is (n), const] in string a", g.Params()[0].ToIDL())
	testutil.ExpectEq(t, "void g ([array, size_is (n), const] in string a, in unsigned long n);", g.ToIDL())
}
