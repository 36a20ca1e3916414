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
	"encoding/hex"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/encoding/tpbbin"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/encoding/tpbtext"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

type cmdDecode struct {
	input    string
	typeName string
	hexData  string
	dataPath string
}

func (*cmdDecode) help() *commandHelp {
	return &commandHelp{
		usage:   "decode",
		summary: "Decode a buffer against a schema type",
	}
}

func (cmd *cmdDecode) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.input, "input", "i", "", "Schema file declaring the type")
	flags.StringVarP(&cmd.typeName, "type", "t", "", "Type to decode, for example Vec<Point>")
	flags.StringVar(&cmd.hexData, "hex", "", "Buffer bytes in hex")
	flags.StringVar(&cmd.dataPath, "file", "", "File holding the raw buffer bytes")
}

func (cmd *cmdDecode) run(ctx context.Context, argv []string) int {
	if len(argv) != 0 {
		return usage("unexpected arguments: %q", argv)
	}
	if cmd.input == "" {
		return usage("no input schema specified (set --input=)")
	}
	if cmd.typeName == "" {
		return usage("no type specified (set --type=)")
	}
	if (cmd.hexData == "") == (cmd.dataPath == "") {
		return usage("exactly one of --hex or --file is required")
	}

	file, _, rc := parseSchema(cmd.input)
	if rc != EXIT_OK {
		return rc
	}
	warn(file.Warnings())
	typ, err := syntax.ParseType(cmd.typeName)
	if err != nil {
		return fail(err)
	}

	var data []byte
	if cmd.hexData != "" {
		data, err = hex.DecodeString(strings.Join(strings.Fields(cmd.hexData), ""))
		if err != nil {
			return usage("invalid --hex value: %v", err)
		}
	} else {
		data, err = os.ReadFile(cmd.dataPath)
		if err != nil {
			return fail(err)
		}
	}

	value, err := tpbbin.NewSchema(file).Decode(typ, data)
	if err != nil {
		return fail(err)
	}
	text := tpbtext.Encode(value)
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if _, err := stdout.Write([]byte(text)); err != nil {
		return fail(err)
	}
	return EXIT_OK
}
