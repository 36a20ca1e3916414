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

	"github.com/spf13/pflag"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

type cmdFormat struct {
	input  string
	output string
}

func (*cmdFormat) help() *commandHelp {
	return &commandHelp{
		usage:   "fmt",
		summary: "Print a schema in canonical form",
	}
}

func (cmd *cmdFormat) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.input, "input", "i", "", "Schema file to format")
	flags.StringVarP(&cmd.output, "output", "o", "-", "Output path, or - for stdout")
}

func (cmd *cmdFormat) run(ctx context.Context, argv []string) int {
	if len(argv) != 0 {
		return usage("unexpected arguments: %q", argv)
	}
	if cmd.input == "" {
		return usage("no input schema specified (set --input=)")
	}
	file, _, rc := parseSchema(cmd.input)
	if rc != EXIT_OK {
		return rc
	}
	warn(file.Warnings())
	if err := writeOutput(cmd.output, []byte(syntax.Format(file))); err != nil {
		return fail(err)
	}
	return EXIT_OK
}
