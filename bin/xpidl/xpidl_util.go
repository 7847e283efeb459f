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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/pflag"

	"github.com/mattmanj17-forks/gecko-dev/xpcom/idl-parser/compiler"
	"github.com/mattmanj17-forks/gecko-dev/xpcom/idl-parser/syntax"
)

type logFlags struct {
	verbose bool
	format  string
}

func (f *logFlags) register(flags *pflag.FlagSet) {
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "Log include resolution at debug level")
	flags.StringVar(&f.format, "log-format", "text", "Log output format (text or json)")
}

// Diagnostics are printed by the commands themselves, so the logger stays
// quiet below LevelError unless -v is set.
func (f *logFlags) newLogger(w io.Writer) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelError}
	if f.verbose {
		opts.Level = slog.LevelDebug
	}
	switch f.format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unsupported log format %q", f.format)
}

type resolveFlags struct {
	includeDirs  []string
	webidlConfig string
}

func (f *resolveFlags) register(flags *pflag.FlagSet) {
	flags.StringArrayVarP(&f.includeDirs, "include-dir", "I", nil, "Search `DIR` for included files")
	flags.StringVar(&f.webidlConfig, "webidl-config", "", "JSON `FILE` mapping WebIDL interfaces to native types")
}

// loader resolves IDL files from disk. Files loaded by one loader share
// their parsed includes.
type loader struct {
	opts []compiler.ResolveOption
}

func (f *resolveFlags) newLoader(logger *slog.Logger) (*loader, error) {
	opts := []compiler.ResolveOption{
		compiler.WithIncludeCache(compiler.NewIncludeCache()),
		compiler.WithIncludeDirs(f.includeDirs...),
		compiler.WithLogger(logger),
	}
	if f.webidlConfig != "" {
		data, err := os.ReadFile(f.webidlConfig)
		if err != nil {
			return nil, err
		}
		config, err := compiler.ParseWebIDLConfig(data)
		if err != nil {
			return nil, err
		}
		opts = append(opts, compiler.WithWebIDLConfig(config))
	}
	return &loader{opts: opts}, nil
}

// load parses and resolves one file. Includes are also searched for next
// to the file, after any -I directories. The returned IDL is non-nil
// whenever parsing succeeded, so warnings can be reported on failure.
func (l *loader) load(path string) (*compiler.IDL, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	idl, err := compiler.Parse(src, path)
	if err != nil {
		return nil, err
	}
	opts := append(slices.Clone(l.opts), compiler.WithIncludeDirs(filepath.Dir(path)))
	return idl, idl.Resolve(opts...)
}

func reportError(w io.Writer, err error) {
	var diag *syntax.Error
	if errors.As(err, &diag) {
		fmt.Fprintln(w, diag.Detail())
		return
	}
	fmt.Fprintln(w, err)
}

func reportWarnings(w io.Writer, idl *compiler.IDL) {
	for _, warning := range idl.Warnings() {
		fmt.Fprintln(w, warning.Detail())
	}
}
