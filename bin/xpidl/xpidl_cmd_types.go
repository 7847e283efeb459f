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
	"context"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/spf13/pflag"
)

type cmdTypes struct {
	resolve resolveFlags
	format  string
}

func (*cmdTypes) help() *commandHelp {
	return &commandHelp{
		usage:   "types [options] FILE...",
		summary: "Print the native, Rust, and TypeScript spelling of each member type",
	}
}

func (cmd *cmdTypes) flags(flags *pflag.FlagSet) {
	cmd.resolve.register(flags)
	flags.StringVarP(&cmd.format, "format", "f", "text", "Output format (text or json)")
}

func (cmd *cmdTypes) run(ctx context.Context, env *cmdEnv, argv []string) int {
	var write func(io.Writer, []*interfaceTypes) error
	switch cmd.format {
	case "text":
		write = writeTypesText
	case "json":
		write = writeTypesJSON
	default:
		fmt.Fprintf(env.stderr, "Unsupported output format %q\n", cmd.format)
		return 1
	}

	ld, err := cmd.resolve.newLoader(env.logger)
	if err != nil {
		fmt.Fprintln(env.stderr, err)
		return 1
	}
	var all []*interfaceTypes
	for _, path := range argv {
		idl, err := ld.load(path)
		if err != nil {
			reportError(env.stderr, err)
			return 1
		}
		ifaces, errs := describeIDL(idl)
		reportWarnings(env.stderr, idl)
		if len(errs) > 0 {
			for _, err := range errs {
				reportError(env.stderr, err)
			}
			return 1
		}
		all = append(all, ifaces...)
	}

	if err := write(env.stdout, all); err != nil {
		fmt.Fprintln(env.stderr, err)
		return 1
	}
	return 0
}

func writeTypesJSON(w io.Writer, ifaces []*interfaceTypes) error {
	if ifaces == nil {
		ifaces = []*interfaceTypes{}
	}
	buf, err := json.MarshalIndent(ifaces, "", "  ")
	if err != nil {
		return err
	}
	buf = append(buf, '\n')
	_, err = w.Write(buf)
	return err
}

func writeTypesText(w io.Writer, ifaces []*interfaceTypes) error {
	for _, iface := range ifaces {
		if _, err := fmt.Fprintf(w, "interface %s : %s uuid(%s) entries=%d\n",
			iface.Name, iface.Base, iface.UUID, iface.Entries); err != nil {
			return err
		}
		for _, c := range iface.Consts {
			fmt.Fprintf(w, "\tconst %s = %d\n", c.Name, c.Value)
		}
		for _, e := range iface.CEnums {
			fmt.Fprintf(w, "\tcenum %s : %d\n", e.Name, e.Width)
			for _, v := range e.Variants {
				fmt.Fprintf(w, "\t\t%s = %d\n", v.Name, v.Value)
			}
		}
		for _, attr := range iface.Attributes {
			fmt.Fprintf(w, "\tattribute %s: %s\n", attr.Name, attr.Type)
		}
		for _, m := range iface.Methods {
			fmt.Fprintf(w, "\tmethod %s\n", m.Name)
			if m.Return != nil {
				fmt.Fprintf(w, "\t\treturn: %s\n", m.Return)
			}
			for _, p := range m.Params {
				fmt.Fprintf(w, "\t\t%s %s: %s\n", p.Direction, p.Name, p.Type)
			}
		}
	}
	return nil
}
