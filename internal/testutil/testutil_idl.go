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
	"testing"
	"testing/fstest"

	"github.com/mattmanj17-forks/gecko-dev/xpcom/idl-parser/compiler"
)

// NSISupports is the root interface, available to [ResolveIDL] sources as
// "nsISupports.idl".
const NSISupports = `[scriptable, uuid(00000000-0000-0000-c000-000000000046)]
interface nsISupports {};
`

// IncludeFS builds an in-memory include tree from files, which always
// contains nsISupports.idl.
func IncludeFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{
		"nsISupports.idl": &fstest.MapFile{Data: []byte(NSISupports)},
	}
	for name, data := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(data)}
	}
	return fsys
}

// ResolveIDL parses src as "test.idl" and resolves it with includes read
// from [IncludeFS]. The IDL is returned along with resolution errors so
// tests can inspect warnings.
func ResolveIDL(
	src string,
	files map[string]string,
	opts ...compiler.ResolveOption,
) (*compiler.IDL, error) {
	idl, err := compiler.Parse([]byte(src), "test.idl")
	if err != nil {
		return nil, err
	}
	opts = append([]compiler.ResolveOption{
		compiler.WithFileSystem(IncludeFS(files)),
	}, opts...)
	return idl, idl.Resolve(opts...)
}

func MustResolve(t *testing.T, src string, opts ...compiler.ResolveOption) *compiler.IDL {
	t.Helper()
	idl, err := ResolveIDL(src, nil, opts...)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return idl
}

// MustInterface resolves src and returns the interface named name.
func MustInterface(t *testing.T, src, name string) *compiler.Interface {
	t.Helper()
	idl := MustResolve(t, src)
	for _, iface := range idl.Interfaces() {
		if iface.Name() == name {
			return iface
		}
	}
	t.Fatalf("interface %q not found", name)
	return nil
}
