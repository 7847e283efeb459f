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
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type command interface {
	help() *commandHelp
	flags(flags *pflag.FlagSet)
	run(ctx context.Context, env *cmdEnv, argv []string) int
}

type commandHelp struct {
	usage   string
	summary string
}

// cmdEnv is where a command writes its output and logs.
type cmdEnv struct {
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

func main() {
	os.Exit(runMain(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func runMain(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	env := &cmdEnv{stdout: stdout, stderr: stderr}
	var logging logFlags
	exitCode := 0

	xpidlCmd := &cobra.Command{
		Use: "xpidl [options] COMMAND",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(*cobra.Command, []string) error {
			logger, err := logging.newLogger(stderr)
			if err != nil {
				return err
			}
			env.logger = logger
			return nil
		},
	}
	xpidlCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		fmt.Fprint(stderr, cmd.UsageString())
		exitCode = 1
		return nil
	}
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	xpidlCmd.SetArgs(args)
	xpidlCmd.SetOut(stdout)
	xpidlCmd.SetErr(stderr)
	logging.register(xpidlCmd.PersistentFlags())

	commands := []command{
		&cmdCheck{},
		&cmdTypes{},
		&cmdDump{},
	}
	for _, cmd := range commands {
		help := cmd.help()
		cobraCmd := &cobra.Command{
			Use:   help.usage,
			Short: help.summary,
			Args:  cobra.MinimumNArgs(1),
			RunE: func(_ *cobra.Command, argv []string) error {
				exitCode = cmd.run(ctx, env, argv)
				return nil
			},
		}
		xpidlCmd.AddCommand(cobraCmd)
		cmd.flags(cobraCmd.Flags())
	}

	if err := xpidlCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return exitCode
}
