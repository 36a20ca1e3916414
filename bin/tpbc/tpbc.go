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
	stdflag "flag"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Exit codes.
const (
	EXIT_OK    = 0
	EXIT_IO    = 1
	EXIT_PARSE = 2
	EXIT_USAGE = 3
)

type command interface {
	help() *commandHelp
	flags(flags *pflag.FlagSet)
	run(ctx context.Context, argv []string) int
}

type commandHelp struct {
	usage   string
	summary string
}

var (
	stdout io.Writer = os.Stdout
	logger           = log.New(os.Stderr, "tpbc: ", 0)
)

func main() {
	os.Exit(tpbcMain(context.Background(), os.Args[1:]))
}

func tpbcMain(ctx context.Context, args []string) int {
	exitCode := EXIT_USAGE

	tpbcCmd := &cobra.Command{
		Use: "tpbc [options] COMMAND",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	tpbcCmd.RunE = func(cmd *cobra.Command, args []string) error {
		logger.Print(tpbcCmd.UsageString())
		return nil
	}

	commands := []command{
		&cmdGenerate{},
		&cmdYaml{},
		&cmdFormat{},
		&cmdDecode{},
		&cmdPlugin{},
	}
	for _, cmd := range commands {
		help := cmd.help()
		cobraCmd := &cobra.Command{
			Use:   help.usage,
			Short: help.summary,
			RunE: func(_ *cobra.Command, args []string) error {
				exitCode = cmd.run(ctx, args)
				return nil
			},
		}
		tpbcCmd.AddCommand(cobraCmd)
		cmd.flags(cobraCmd.Flags())
	}

	tpbcCmd.Flags().AddGoFlagSet(stdflag.CommandLine)
	tpbcCmd.SetArgs(args)
	if _, err := tpbcCmd.ExecuteC(); err != nil {
		logger.Printf("[ERROR] %v", err)
		return EXIT_USAGE
	}
	return exitCode
}
