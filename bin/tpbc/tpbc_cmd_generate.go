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

	tpb "github.com/tech-paws/tech-paws-buffers-generator-sub000"
)

type cmdGenerate struct {
	input  string
	output string
	lang   string
	indent int
}

func (*cmdGenerate) help() *commandHelp {
	return &commandHelp{
		usage:   "generate",
		summary: "Generate target source for a schema",
	}
}

func (cmd *cmdGenerate) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.input, "input", "i", "", "Schema file to compile")
	flags.StringVarP(&cmd.output, "output", "o", "", "Output path, or - for stdout")
	flags.StringVarP(&cmd.lang, "lang", "l", "", fmt.Sprintf("Target language (%s)", langList()))
	flags.IntVar(&cmd.indent, "indent", 0, "Indentation width (default: per target)")
}

func (cmd *cmdGenerate) run(ctx context.Context, argv []string) int {
	if len(argv) != 0 {
		return usage("unexpected arguments: %q", argv)
	}
	if cmd.input == "" {
		return usage("no input schema specified (set --input=)")
	}
	if cmd.output == "" {
		return usage("no output path specified (set --output=)")
	}
	lang, ok := tpb.ParseLang(cmd.lang)
	if !ok {
		return usage("unknown language %q, expected one of %s", cmd.lang, langList())
	}

	file, _, rc := parseSchema(cmd.input)
	if rc != EXIT_OK {
		return rc
	}
	out, err := tpb.GenerateFile(file, lang, tpb.WithIndent(cmd.indent))
	if err != nil {
		return fail(err)
	}
	warn(out.Warnings)
	if err := writeOutput(cmd.output, []byte(out.Source)); err != nil {
		return fail(err)
	}
	return EXIT_OK
}

func langList() string {
	names := make([]string, 0, len(tpb.Langs))
	for _, lang := range tpb.Langs {
		names = append(names, lang.String())
	}
	return strings.Join(names, "|")
}
