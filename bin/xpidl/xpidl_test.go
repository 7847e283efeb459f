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


package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nsISupportsIDL = `[scriptable, uuid(00000000-0000-0000-c000-000000000046)]
interface nsISupports {};
`

const fooIDL = `#include "nsISupports.idl"

native Opaque(Opaque);
webidl Window;

[scriptable, builtinclass, uuid(0f3e2b1c-1234-4abc-8def-0123456789ab)]
interface nsIFoo : nsISupports
{
  const long A = 1 << 3;
  cenum Color : 8 { Red, Green = 4 };
  readonly attribute long size;
  readonly attribute Window win;
  long g(in long a);
  [noscript] void h(in Opaque o);
};
`

// writeTree writes files into a new temporary directory and returns it.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func runXPIDL(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = runMain(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestCheck(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, map[string]string{
		"nsISupports.idl": nsISupportsIDL,
		"nsIFoo.idl":      fooIDL,
	})
	foo := filepath.Join(dir, "nsIFoo.idl")

	code, stdout, stderr := runXPIDL(t, "check", "--deps", foo)
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stderr)
	assert.Equal(t, foo+": "+filepath.Join(dir, "nsISupports.idl")+"\n", stdout)
}

func TestCheckIncludeDir(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, map[string]string{
		"inc/nsISupports.idl": nsISupportsIDL,
		"src/nsIFoo.idl":      fooIDL,
	})

	code, _, stderr := runXPIDL(t, "check", filepath.Join(dir, "src", "nsIFoo.idl"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "error: File 'nsISupports.idl' not found")

	code, _, stderr = runXPIDL(t, "check",
		"-I", filepath.Join(dir, "inc"),
		filepath.Join(dir, "src", "nsIFoo.idl"))
	assert.Equal(t, 0, code, stderr)
}

func TestCheckErrors(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, map[string]string{
		"nsISupports.idl": nsISupportsIDL,
		"no_uuid.idl": `#include "nsISupports.idl"
[scriptable]
interface nsIBad : nsISupports {};
`,
		"bad_param.idl": `#include "nsISupports.idl"
[uuid(0f3e2b1c-1234-4abc-8def-0123456789ab)]
interface nsIBad : nsISupports {
  void f([shared] out long a);
};
`,
		"ok.idl": `#include "nsISupports.idl"
`,
	})

	code, _, stderr := runXPIDL(t, "check",
		filepath.Join(dir, "no_uuid.idl"),
		filepath.Join(dir, "bad_param.idl"),
		filepath.Join(dir, "ok.idl"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "error: interface has no uuid")
	assert.Contains(t, stderr, "error: [shared] not applicable to non-pointer types.")
	assert.Contains(t, stderr, "bad_param.idl line 4:")
}

func TestCheckWarnings(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, map[string]string{
		"nsISupports.idl": nsISupportsIDL,
		"warn.idl": `#include "nsISupports.idl"
[uuid(0f3e2b1c-1234-4abc-8def-0123456789ab)]
interface nsIWarn : nsISupports {
  void f([const] in long a);
};
`,
	})

	code, _, stderr := runXPIDL(t, "check", filepath.Join(dir, "warn.idl"))
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "warning: [const] doesn't make sense on builtin types.")
}

func TestCheckSyntaxError(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, map[string]string{
		"broken.idl": "typedef long A;\n  typedef long = B;\n",
	})

	code, _, stderr := runXPIDL(t, "check", filepath.Join(dir, "broken.idl"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "error: invalid syntax: expected IDENTIFIER, got '='")
	assert.Contains(t, stderr, "  typedef long = B;\n               ^")
}

func TestTypesJSON(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, map[string]string{
		"nsISupports.idl": nsISupportsIDL,
		"nsIFoo.idl":      fooIDL,
		"webidl.json":     `{"Window": {"nativeType": "nsGlobalWindowInner"}}`,
	})

	code, stdout, stderr := runXPIDL(t, "types", "--format=json",
		"--webidl-config", filepath.Join(dir, "webidl.json"),
		filepath.Join(dir, "nsIFoo.idl"))
	require.Equal(t, 0, code, stderr)

	var ifaces []interfaceTypes
	require.NoError(t, json.Unmarshal([]byte(stdout), &ifaces))
	require.Len(t, ifaces, 1)

	foo := ifaces[0]
	assert.Equal(t, "nsIFoo", foo.Name)
	assert.Equal(t, "nsISupports", foo.Base)
	assert.Equal(t, "0f3e2b1c-1234-4abc-8def-0123456789ab", foo.UUID)
	assert.True(t, foo.Scriptable)
	assert.True(t, foo.BuiltinClass)
	assert.Equal(t, 4, foo.Entries)
	assert.Equal(t, []constValue{{"A", 8}}, foo.Consts)
	assert.Equal(t, []cenumValues{{
		Name:     "nsIFoo_Color",
		Width:    8,
		Variants: []constValue{{"Red", 0}, {"Green", 4}},
	}}, foo.CEnums)

	require.Len(t, foo.Attributes, 2)
	assert.Equal(t, attrTypes{
		Name:     "size",
		ReadOnly: true,
		Type:     &spelling{Native: "int32_t *", Rust: "*mut i32", TS: "i32"},
	}, foo.Attributes[0])
	assert.Equal(t, &spelling{
		Native: "nsGlobalWindowInner **",
		Rust:   "*mut *const libc::c_void",
		TS:     "Window",
	}, foo.Attributes[1].Type)

	require.Len(t, foo.Methods, 2)
	g := foo.Methods[0]
	assert.Equal(t, "g", g.Name)
	assert.Equal(t, &spelling{Native: "int32_t *", Rust: "*mut i32", TS: "i32"}, g.Return)
	assert.Equal(t, []paramTypes{{
		Name:      "a",
		Direction: "in",
		Type:      &spelling{Native: "int32_t ", Rust: "i32", TS: "i32"},
	}}, g.Params)

	h := foo.Methods[1]
	assert.Nil(t, h.Return)
	require.Len(t, h.Params, 1)
	opaque := h.Params[0].Type
	assert.Equal(t, "Opaque ", opaque.Native)
	assert.Empty(t, opaque.Rust)
	assert.Contains(t, opaque.Noncompat, "rust")
	assert.Contains(t, opaque.Noncompat, "typescript")
}

func TestTypesText(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, map[string]string{
		"nsISupports.idl": nsISupportsIDL,
		"nsIFoo.idl":      fooIDL,
	})

	code, stdout, stderr := runXPIDL(t, "types", filepath.Join(dir, "nsIFoo.idl"))
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "interface nsIFoo : nsISupports uuid(0f3e2b1c-1234-4abc-8def-0123456789ab) entries=4\n")
	assert.Contains(t, stdout, "\tconst A = 8\n")
	assert.Contains(t, stdout, "\tcenum nsIFoo_Color : 8\n\t\tRed = 0\n\t\tGreen = 4\n")
	assert.Contains(t, stdout, "\tattribute size: native \"int32_t *\" rust \"*mut i32\" typescript \"i32\"\n")
	assert.Contains(t, stdout, "\tattribute win: native \"mozilla::dom::Window **\"")
	assert.Contains(t, stdout, "\tmethod g\n\t\treturn: native \"int32_t *\"")
	assert.Contains(t, stdout, "\t\tin o: native \"Opaque \" rust (noncompat: ")
}

func TestTypesUnsupportedFormat(t *testing.T) {
	t.Parallel()
	code, stdout, stderr := runXPIDL(t, "types", "--format=yaml", "unused.idl")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Equal(t, "Unsupported output format \"yaml\"\n", stderr)
}

func TestDump(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, map[string]string{
		"nsISupports.idl": nsISupportsIDL,
		"nsIFoo.idl":      fooIDL,
	})

	code, stdout, stderr := runXPIDL(t, "dump", filepath.Join(dir, "nsIFoo.idl"))
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "include 'nsISupports.idl'\n")
	assert.Contains(t, stdout, "interface nsIFoo\n\tbase nsISupports\n")
	assert.Contains(t, stdout, "\tconst long A = 8\n")
}

func TestMissingFile(t *testing.T) {
	t.Parallel()
	missing := filepath.Join(t.TempDir(), "missing.idl")
	code, _, stderr := runXPIDL(t, "dump", missing)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "missing.idl")
}

func TestUsage(t *testing.T) {
	t.Parallel()
	code, _, stderr := runXPIDL(t)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "xpidl [options] COMMAND")

	code, _, stderr = runXPIDL(t, "check")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "requires at least 1 arg(s)")
}

func TestLogFormat(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, map[string]string{
		"nsISupports.idl": nsISupportsIDL,
		"nsIFoo.idl":      fooIDL,
	})
	foo := filepath.Join(dir, "nsIFoo.idl")

	code, _, stderr := runXPIDL(t, "--log-format=xml", "check", foo)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `unsupported log format "xml"`)

	code, _, stderr = runXPIDL(t, "-v", "--log-format=json", "check", foo)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, `"msg":"parsing include"`)
}
