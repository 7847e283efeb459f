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

	"github.com/spf13/pflag"

	"github.com/mattmanj17-forks/gecko-dev/xpcom/idl-parser/compiler"
)

type cmdDump struct {
	resolve resolveFlags
}

func (*cmdDump) help() *commandHelp {
	return &commandHelp{
		usage:   "dump [options] FILE...",
		summary: "Print an outline of each resolved IDL file",
	}
}

func (cmd *cmdDump) flags(flags *pflag.FlagSet) {
	cmd.resolve.register(flags)
}

func (cmd *cmdDump) run(ctx context.Context, env *cmdEnv, argv []string) int {
	ld, err := cmd.resolve.newLoader(env.logger)
	if err != nil {
		fmt.Fprintln(env.stderr, err)
		return 1
	}
	for _, path := range argv {
		idl, err := ld.load(path)
		if err != nil {
			reportError(env.stderr, err)
			return 1
		}
		if err := compiler.Dump(env.stdout, idl); err != nil {
			fmt.Fprintln(env.stderr, err)
			return 1
		}
	}
	return 0
}
