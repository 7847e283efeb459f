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
	"strings"

	"github.com/spf13/pflag"
)

type cmdCheck struct {
	resolve resolveFlags
	deps    bool
}

func (*cmdCheck) help() *commandHelp {
	return &commandHelp{
		usage:   "check [options] FILE...",
		summary: "Parse, resolve, and validate IDL files",
	}
}

func (cmd *cmdCheck) flags(flags *pflag.FlagSet) {
	cmd.resolve.register(flags)
	flags.BoolVar(&cmd.deps, "deps", false, "Print the files each input depends on")
}

func (cmd *cmdCheck) run(ctx context.Context, env *cmdEnv, argv []string) int {
	ld, err := cmd.resolve.newLoader(env.logger)
	if err != nil {
		fmt.Fprintln(env.stderr, err)
		return 1
	}

	exitCode := 0
	for _, path := range argv {
		idl, err := ld.load(path)
		if err != nil {
			if idl != nil {
				reportWarnings(env.stderr, idl)
			}
			reportError(env.stderr, err)
			exitCode = 1
			continue
		}
		_, errs := describeIDL(idl)
		reportWarnings(env.stderr, idl)
		for _, err := range errs {
			reportError(env.stderr, err)
			exitCode = 1
		}
		if cmd.deps {
			fmt.Fprintf(env.stdout, "%s: %s\n", path, strings.Join(idl.Deps()[1:], " "))
		}
	}
	return exitCode
}
