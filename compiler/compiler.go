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

// Package compiler resolves parsed XPIDL files: it binds type names to
// declarations, follows #include directives, checks the XPCOM rules for
// interfaces and their members, and spells resolved types in C++, Rust and
// TypeScript.
package compiler

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"

	json "github.com/goccy/go-json"

	"github.com/mattmanj17-forks/gecko-dev/xpcom/idl-parser/syntax"
)

// WebIDLConfig maps WebIDL interface names to their C++ bindings. Missing
// entries default to "mozilla::dom::Name" declared in
// "mozilla/dom/Name.h".
type WebIDLConfig map[string]WebIDLEntry

type WebIDLEntry struct {
	NativeType string `json:"nativeType,omitempty"`
	HeaderFile string `json:"headerFile,omitempty"`
}

// ParseWebIDLConfig decodes a JSON object of WebIDL entries.
func ParseWebIDLConfig(data []byte) (WebIDLConfig, error) {
	var config WebIDLConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid WebIDL config: %w", err)
	}
	return config, nil
}

type ResolveOption interface {
	apply(*ResolveOptions)
}

type resolveOption func(*ResolveOptions)

func (f resolveOption) apply(opts *ResolveOptions) { f(opts) }

type ResolveOptions struct {
	includeDirs []string
	webidl      WebIDLConfig
	cache       *IncludeCache
	fs          FileSystem
	parseOpts   []syntax.ParseOption
	logger      *slog.Logger
}

// WithIncludeDirs sets the directories searched for #include targets that
// are not found on their literal path.
func WithIncludeDirs(dirs ...string) ResolveOption {
	return resolveOption(func(opts *ResolveOptions) {
		opts.includeDirs = append(opts.includeDirs, dirs...)
	})
}

func WithWebIDLConfig(config WebIDLConfig) ResolveOption {
	return resolveOption(func(opts *ResolveOptions) {
		opts.webidl = config
	})
}

// WithIncludeCache shares resolved includes across calls to Resolve.
func WithIncludeCache(cache *IncludeCache) ResolveOption {
	return resolveOption(func(opts *ResolveOptions) {
		opts.cache = cache
	})
}

// WithFileSystem sets where includes are read from. The default is the OS
// file system.
func WithFileSystem(fsys FileSystem) ResolveOption {
	return resolveOption(func(opts *ResolveOptions) {
		opts.fs = fsys
	})
}

// WithParseOptions sets options used when parsing included files.
func WithParseOptions(parseOpts ...syntax.ParseOption) ResolveOption {
	return resolveOption(func(opts *ResolveOptions) {
		opts.parseOpts = append(opts.parseOpts, parseOpts...)
	})
}

func WithLogger(logger *slog.Logger) ResolveOption {
	return resolveOption(func(opts *ResolveOptions) {
		opts.logger = logger
	})
}

func NewResolveOptions(opts ...ResolveOption) *ResolveOptions {
	resolveOpts := &ResolveOptions{}
	for _, opt := range opts {
		opt.apply(resolveOpts)
	}
	if resolveOpts.cache == nil {
		resolveOpts.cache = NewIncludeCache()
	}
	if resolveOpts.fs == nil {
		resolveOpts.fs = osFileSystem{}
	}
	if resolveOpts.logger == nil {
		resolveOpts.logger = slog.Default()
	}
	return resolveOpts
}

// IDL is one parsed file. It is resolved at most once; after that its names
// and types are fully bound, or every later Resolve returns the same error.
type IDL struct {
	filename    string
	productions []Production
	namemap     *NameMap
	deps        []string
	hasSequence bool
	warnings    []*syntax.Error
	logger      *slog.Logger
	resolveErr  error
}

// Parse parses and lowers an IDL file. A non-empty filename is used in
// locations and recorded as a dependency.
func Parse(src []byte, filename string, opts ...syntax.ParseOption) (*IDL, error) {
	if filename != "" {
		opts = append(opts, syntax.WithFilename(filename))
	}
	file, err := syntax.Parse(src, opts...)
	if err != nil {
		return nil, err
	}
	idl, err := NewIDL(file)
	if err != nil {
		return nil, err
	}
	if filename != "" {
		idl.filename = filename
		idl.deps = append(idl.deps, filename)
	}
	return idl, nil
}

// NewIDL lowers a syntax tree. Attribute lists are checked here; names are
// bound by [IDL.Resolve].
func NewIDL(file *syntax.File) (*IDL, error) {
	idl := &IDL{logger: slog.Default()}
	for _, node := range file.Productions() {
		prod, err := lowerProduction(node)
		if err != nil {
			return nil, err
		}
		idl.productions = append(idl.productions, prod)
	}
	return idl, nil
}

func lowerProduction(node syntax.Production) (Production, error) {
	switch node := node.(type) {
	case *syntax.Include:
		return &Include{filename: node.Path(), loc: node.Location()}, nil
	case *syntax.CDATA:
		return &CDATA{data: node.Data(), loc: node.Location()}, nil
	case *syntax.Typedef:
		return &Typedef{
			docComments: docComments{slices.Clone(node.DocComments())},
			name:        node.Name(),
			typ:         node.Type(),
			loc:         node.Location(),
		}, nil
	case *syntax.Native:
		return newNative(node)
	case *syntax.WebIDL:
		return &WebIDL{name: node.Name(), loc: node.Location()}, nil
	case *syntax.Interface:
		if node.IsForward() {
			return &Forward{
				docComments: docComments{slices.Clone(node.DocComments())},
				name:        node.Name(),
				loc:         node.Location(),
			}, nil
		}
		return newInterface(node)
	}
	panic("unreachable")
}

func (idl *IDL) Filename() string          { return idl.filename }
func (idl *IDL) Productions() []Production { return idl.productions }

// Deps lists this file and every file it includes, directly or not.
func (idl *IDL) Deps() []string {
	return idl.deps
}

// Warnings returns the non-fatal diagnostics reported so far, including
// those reported while spelling types after resolution.
func (idl *IDL) Warnings() []*syntax.Error {
	return idl.warnings
}

// Names yields every declaration visible in the file, including included
// ones, in the order they were declared.
func (idl *IDL) Names() iter.Seq[Decl] {
	if idl.namemap == nil {
		return func(func(Decl) bool) {}
	}
	return idl.namemap.All()
}

func (idl *IDL) Lookup(name string) (Decl, bool) {
	if idl.namemap == nil {
		return nil, false
	}
	return idl.namemap.Lookup(name)
}

// Interfaces returns the interfaces defined in this file.
func (idl *IDL) Interfaces() []*Interface {
	var out []*Interface
	for _, prod := range idl.productions {
		if iface, ok := prod.(*Interface); ok {
			out = append(out, iface)
		}
	}
	return out
}

// Includes lists the file's #include directives, followed by nsTArray.h if
// any Array<T> type was used.
func (idl *IDL) Includes() []*Include {
	var out []*Include
	for _, prod := range idl.productions {
		if inc, ok := prod.(*Include); ok {
			out = append(out, inc)
		}
	}
	if idl.hasSequence {
		out = append(out, &Include{filename: "nsTArray.h", loc: syntax.BuiltinLocation()})
	}
	return out
}

func (idl *IDL) NeedsJSTypes() bool {
	for _, iface := range idl.Interfaces() {
		if iface.NeedsJSTypes() {
			return true
		}
	}
	return false
}

func (idl *IDL) Resolve(opts ...ResolveOption) error {
	return NewResolveOptions(opts...).Resolve(idl)
}

func (opts *ResolveOptions) Resolve(idl *IDL) error {
	path := idl.filename
	if path == "" || opts.cache.inProgress(path) {
		return idl.resolve(opts)
	}
	if _, ok := opts.cache.Get(path); ok {
		return idl.resolve(opts)
	}
	opts.cache.begin(path)
	if err := idl.resolve(opts); err != nil {
		opts.cache.abort(path)
		return err
	}
	opts.cache.finish(path, idl)
	return nil
}

// resolve runs at most once. A failure is kept and returned by later calls,
// since the model is left partly bound.
func (idl *IDL) resolve(opts *ResolveOptions) error {
	if idl.namemap != nil {
		return idl.resolveErr
	}
	idl.namemap = NewNameMap()
	idl.logger = opts.logger
	idl.resolveErr = idl.resolveProductions(opts)
	return idl.resolveErr
}

func (idl *IDL) resolveProductions(opts *ResolveOptions) error {
	for ii, prod := range idl.productions {
		var err error
		switch prod := prod.(type) {
		case *Include:
			err = prod.resolve(idl, opts)
		case *Typedef:
			err = prod.resolve(idl)
		case *Forward:
			err = prod.resolve(idl, ii)
		case *Native:
			err = prod.resolve(idl)
		case *WebIDL:
			err = prod.resolve(idl, opts.webidl)
		case *Interface:
			err = prod.resolve(idl)
		}
		if err != nil {
			return err
		}
	}
	opts.logger.Debug("resolved IDL",
		"file", idl.filename,
		"names", idl.namemap.Len(),
		"deps", len(idl.deps),
	)
	return nil
}

func (idl *IDL) setName(decl Decl) error {
	return idl.namemap.set(decl)
}

// getName resolves a type reference, instantiating Array<T> on demand.
func (idl *IDL) getName(id *syntax.TypeID, loc syntax.Location) (Type, error) {
	if id.Name() == "Array" {
		if len(id.Params()) != 1 {
			return nil, errArrayParams(loc)
		}
		idl.hasSequence = true
		elem, err := idl.getName(id.Params()[0], loc)
		if err != nil {
			return nil, err
		}
		return &Array{elem: elem, loc: loc}, nil
	}
	if len(id.Params()) > 0 {
		return nil, errGenericUnrecognized(id.Name(), loc)
	}
	decl, ok := idl.namemap.Lookup(id.Name())
	if !ok {
		return nil, errTypeNotFound(id.Name(), loc)
	}
	t, ok := decl.(Type)
	if !ok {
		return nil, errTypeNotFound(id.Name(), loc)
	}
	return t, nil
}

func (idl *IDL) warn(w *syntax.Error) {
	idl.warnings = append(idl.warnings, w)
	idl.logger.Warn(w.Message(), "code", w.Code(), "location", w.Location().Get())
}
