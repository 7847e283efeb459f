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
	"io/fs"
	"os"
	"path"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/mattmanj17-forks/gecko-dev/xpcom/idl-parser/compiler"
	"github.com/mattmanj17-forks/gecko-dev/xpcom/idl-parser/internal/testutil"
)

var testdata = os.DirFS("testdata")

// Each directory under testdata/resolve holds a test.idl and the files it
// includes, plus either expect_ok.txt (the dumped IDL) or expect_err.json.
type expectedError struct {
	Code    uint32 `json:"code"`
	Message string `json:"message"`
	Pattern string `json:"pattern"`
}

func TestResolve(t *testing.T) {
	t.Parallel()

	testDirs, err := fs.ReadDir(testdata, "resolve")
	testutil.AssertNoError(t, err)

	for _, testDir := range testDirs {
		if testDir.IsDir() {
			testName := testDir.Name()
			t.Run(testName, func(t *testing.T) {
				resolveTest(t, path.Join("resolve", testName))
			})
		}
	}
}

func resolveTest(t *testing.T, dir string) {
	t.Parallel()

	entries, err := fs.ReadDir(testdata, dir)
	testutil.AssertNoError(t, err)
	files := make(map[string]string)
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".idl") {
			continue
		}
		data, err := fs.ReadFile(testdata, path.Join(dir, entry.Name()))
		testutil.AssertNoError(t, err)
		files[entry.Name()] = string(data)
	}
	src, ok := files["test.idl"]
	if !ok {
		t.Fatalf("%s: missing test.idl", dir)
	}

	idl, err := testutil.ResolveIDL(src, files)

	errPath := path.Join(dir, "expect_err.json")
	if _, statErr := fs.Stat(testdata, errPath); statErr == nil {
		data, readErr := fs.ReadFile(testdata, errPath)
		testutil.AssertNoError(t, readErr)
		var want expectedError
		testutil.AssertNoError(t, json.Unmarshal(data, &want))

		diag := testutil.AssertDiagnostic(t, err, want.Code)
		if want.Pattern != "" {
			testutil.ExpectMatch(t, want.Pattern, diag.Message())
		} else {
			testutil.ExpectEq(t, want.Message, diag.Message())
		}
		return
	}

	testutil.AssertNoError(t, err)
	expectText, err := fs.ReadFile(testdata, path.Join(dir, "expect_ok.txt"))
	testutil.AssertNoError(t, err)
	testutil.ExpectNoDiff(t, string(expectText), compiler.DumpString(idl))
}

func TestResolveTwice(t *testing.T) {
	t.Parallel()
	idl := testutil.MustResolve(t, `#include "nsISupports.idl"
typedef long nsFlags;`)
	testutil.AssertNoError(t, idl.Resolve())
	testutil.ExpectEq(t, 2, len(collect(idl)))
}

func TestResolveTwiceAfterError(t *testing.T) {
	t.Parallel()
	idl, err := testutil.ResolveIDL(`#include "nsISupports.idl"
[uuid(1a2b3c4d-0000-4000-8000-000000000120)]
interface nsITest : nsISupports { attribute Missing x; };`, nil)
	testutil.ExpectDiagnostic(t, err, 3003, "type 'Missing' not found")

	again := idl.Resolve()
	testutil.ExpectDiagnostic(t, again, 3003, "type 'Missing' not found")
	testutil.ExpectTrue(t, err == again)
}

func TestIncludeCacheShared(t *testing.T) {
	t.Parallel()
	fsys := testutil.IncludeFS(map[string]string{
		"inc/common.idl": `#include "nsISupports.idl"
typedef long nsCommon;`,
	})
	cache := compiler.NewIncludeCache()

	var included []*compiler.IDL
	for _, name := range []string{"a.idl", "b.idl"} {
		idl, err := compiler.Parse([]byte(`#include "common.idl"`), name)
		testutil.AssertNoError(t, err)
		err = idl.Resolve(
			compiler.WithFileSystem(fsys),
			compiler.WithIncludeDirs("inc"),
			compiler.WithIncludeCache(cache),
		)
		testutil.AssertNoError(t, err)
		testutil.ExpectSliceEq(t,
			[]string{name, "inc/common.idl", "nsISupports.idl"},
			idl.Deps())
		included = append(included, idl.Includes()[0].IDL())
	}

	testutil.ExpectTrue(t, included[0] == included[1])
	testutil.ExpectSliceEq(t,
		[]string{"a.idl", "b.idl", "inc/common.idl", "nsISupports.idl"},
		cache.Paths())
	common, ok := cache.Get("inc/common.idl")
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, "inc/common.idl", common.Filename())
}

func TestIncludeNsTArray(t *testing.T) {
	t.Parallel()
	idl := testutil.MustResolve(t, `#include "nsISupports.idl"
[uuid(1a2b3c4d-0000-4000-8000-000000000020)]
interface nsIList : nsISupports {
  readonly attribute Array<long> items;
};`)
	includes := idl.Includes()
	testutil.ExpectEq(t, 2, len(includes))
	testutil.ExpectEq(t, "nsISupports.idl", includes[0].Filename())
	testutil.ExpectEq(t, "nsTArray.h", includes[1].Filename())
	testutil.ExpectTrue(t, includes[1].IDL() == nil)
}

func TestWebIDLConfig(t *testing.T) {
	t.Parallel()
	config, err := compiler.ParseWebIDLConfig([]byte(`{
		"Document": {"nativeType": "mozilla::dom::Document"},
		"Window": {"nativeType": "nsGlobalWindowInner", "headerFile": "nsGlobalWindow.h"}
	}`))
	testutil.AssertNoError(t, err)

	idl := testutil.MustResolve(t, `
webidl Document;
webidl Window;
webidl Element;
`, compiler.WithWebIDLConfig(config))

	tests := []struct {
		name   string
		native string
		header string
	}{
		{"Document", "mozilla::dom::Document", "mozilla/dom/Document.h"},
		{"Window", "nsGlobalWindowInner", "nsGlobalWindow.h"},
		{"Element", "mozilla::dom::Element", "mozilla/dom/Element.h"},
	}
	for _, test := range tests {
		decl, ok := idl.Lookup(test.name)
		testutil.ExpectTrue(t, ok)
		w := decl.(*compiler.WebIDL)
		testutil.ExpectEq(t, test.native, w.NativeName())
		testutil.ExpectEq(t, test.header, w.HeaderFile())
	}

	_, err = compiler.ParseWebIDLConfig([]byte(`{"Document": 1}`))
	testutil.AssertError(t, err)
}

func TestNeedsJSTypes(t *testing.T) {
	t.Parallel()
	idl := testutil.MustResolve(t, `#include "nsISupports.idl"
[ref, jsval] native jsval(jsval);

[uuid(1a2b3c4d-0000-4000-8000-000000000021)]
interface nsIPlain : nsISupports {
  long f(in long a);
};

[uuid(1a2b3c4d-0000-4000-8000-000000000022)]
interface nsIJS : nsISupports {
  [implicit_jscontext] void g();
};
`)
	ifaces := idl.Interfaces()
	testutil.ExpectEq(t, 2, len(ifaces))
	testutil.ExpectFalse(t, ifaces[0].NeedsJSTypes())
	testutil.ExpectTrue(t, ifaces[1].NeedsJSTypes())
	testutil.ExpectTrue(t, idl.NeedsJSTypes())

	attr := testutil.MustInterface(t, `#include "nsISupports.idl"
[ref, jsval] native jsval(jsval);
[uuid(1a2b3c4d-0000-4000-8000-000000000023)]
interface nsIAttr : nsISupports {
  readonly attribute jsval value;
};`, "nsIAttr")
	testutil.ExpectTrue(t, attr.NeedsJSTypes())
}

func TestDumpCDATA(t *testing.T) {
	t.Parallel()
	idl := testutil.MustResolve(t, "%{C++\n#include \"a.h\"\n\tint x;\n%}\n")
	testutil.ExpectNoDiff(t,
		"cdata: test.idl line 1:0\n\t\"#include \\\"a.h\\\"\\n\\tint x;\\n\"\n",
		compiler.DumpString(idl))
}

func collect(idl *compiler.IDL) []compiler.Decl {
	var out []compiler.Decl
	for decl := range idl.Names() {
		out = append(out, decl)
	}
	return out
}
