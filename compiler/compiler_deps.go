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

package compiler

import (
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/mattmanj17-forks/gecko-dev/xpcom/idl-parser/syntax"
)

// FileSystem is where included files are read from. [fstest.MapFS] and
// other [fs.StatFS] + [fs.ReadFileFS] implementations satisfy it.
type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
}

type osFileSystem struct{}

func (osFileSystem) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }
func (osFileSystem) ReadFile(name string) ([]byte, error)  { return os.ReadFile(name) }

// IncludeCache holds resolved included files by the path they were found
// at. Sharing one cache between the files of a build parses each included
// file once. Not safe for concurrent use.
type IncludeCache struct {
	entries map[string]*includeEntry
}

type includeEntry struct {
	idl  *IDL
	done bool
}

func NewIncludeCache() *IncludeCache {
	return &IncludeCache{entries: make(map[string]*includeEntry)}
}

// Get returns the resolved file found at path, if any.
func (c *IncludeCache) Get(path string) (*IDL, bool) {
	entry, ok := c.entries[path]
	if !ok || !entry.done {
		return nil, false
	}
	return entry.idl, true
}

// Paths returns the cached paths in sorted order.
func (c *IncludeCache) Paths() []string {
	var paths []string
	for _, path := range slices.Sorted(maps.Keys(c.entries)) {
		if c.entries[path].done {
			paths = append(paths, path)
		}
	}
	return paths
}

func (c *IncludeCache) begin(path string) {
	c.entries[path] = &includeEntry{}
}

func (c *IncludeCache) inProgress(path string) bool {
	entry, ok := c.entries[path]
	return ok && !entry.done
}

func (c *IncludeCache) finish(path string, idl *IDL) {
	c.entries[path] = &includeEntry{idl: idl, done: true}
}

func (c *IncludeCache) abort(path string) {
	delete(c.entries, path)
}

type Include struct {
	filename string
	loc      syntax.Location
	idl      *IDL
}

func (inc *Include) Kind() Kind                { return KindInclude }
func (inc *Include) Location() syntax.Location { return inc.loc }
func (inc *Include) Filename() string          { return inc.filename }

// IDL is the included file. Nil until resolved, and for the implicit
// nsTArray.h include.
func (inc *Include) IDL() *IDL {
	return inc.idl
}

func (inc *Include) candidates(dirs []string) []string {
	paths := []string{inc.filename}
	for _, dir := range dirs {
		paths = append(paths, filepath.Join(dir, inc.filename))
	}
	return paths
}

// resolve finds the included file on the literal path or in an include
// directory, resolves it, and merges its names into idl.
func (inc *Include) resolve(idl *IDL, opts *ResolveOptions) error {
	for _, path := range inc.candidates(opts.includeDirs) {
		if _, err := opts.fs.Stat(path); err != nil {
			continue
		}
		included, err := opts.loadInclude(path, inc.loc)
		if err != nil {
			return err
		}
		inc.idl = included
		for decl := range included.namemap.All() {
			if err := idl.setName(decl); err != nil {
				return err
			}
		}
		idl.deps = append(idl.deps, included.deps...)
		return nil
	}
	return errFileNotFound(inc.filename, inc.loc)
}

func (opts *ResolveOptions) loadInclude(path string, loc syntax.Location) (*IDL, error) {
	cache := opts.cache
	if included, ok := cache.Get(path); ok {
		opts.logger.Debug("include cache hit", "path", path)
		return included, nil
	}
	if cache.inProgress(path) {
		return nil, errIncludeCycle(path, loc)
	}

	opts.logger.Debug("parsing include", "path", path)
	src, err := opts.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	included, err := Parse(src, path, opts.parseOpts...)
	if err != nil {
		return nil, err
	}
	cache.begin(path)
	if err := included.resolve(opts); err != nil {
		cache.abort(path)
		return nil, err
	}
	cache.finish(path, included)
	return included, nil
}
