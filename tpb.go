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

// Package tpb compiles tech-paws buffers schemas into target language
// sources.
package tpb

import (
	"fmt"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen/dart"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen/kotlin"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen/rust"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen/swift"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

// FileExtension is the conventional extension of schema sources.
const FileExtension = ".tpb"

type Lang uint8

const (
	LANG_RUST Lang = iota
	LANG_SWIFT
	LANG_KOTLIN
	LANG_DART
)

// Langs lists every target in the order batch configurations are
// processed.
var Langs = []Lang{LANG_RUST, LANG_SWIFT, LANG_KOTLIN, LANG_DART}

var langNames = map[Lang]string{
	LANG_RUST:   "rust",
	LANG_SWIFT:  "swift",
	LANG_KOTLIN: "kotlin",
	LANG_DART:   "dart",
}

func (l Lang) String() string {
	if name, ok := langNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Lang(%d)", uint8(l))
}

func ParseLang(name string) (Lang, bool) {
	for _, l := range Langs {
		if langNames[l] == name {
			return l, true
		}
	}
	return 0, false
}

type generateFunc func(*syntax.File, codegen.Options) (string, error)

var generators = map[Lang]generateFunc{
	LANG_RUST:   rust.Generate,
	LANG_SWIFT:  swift.Generate,
	LANG_KOTLIN: kotlin.Generate,
	LANG_DART:   dart.Generate,
}

type GenerateOption interface {
	apply(*codegen.Options)
}

type generateOption func(*codegen.Options)

func (f generateOption) apply(opts *codegen.Options) { f(opts) }

// WithIndent overrides the target's indentation width.
func WithIndent(size int) GenerateOption {
	return generateOption(func(opts *codegen.Options) {
		opts.IndentSize = size
	})
}

type Output struct {
	Source   string
	Warnings []*syntax.Warning
}

// Generate parses src and emits it for lang. The source is only returned
// when the whole file was generated.
func Generate(src []byte, lang Lang, opts ...GenerateOption) (*Output, error) {
	file, err := syntax.Parse(src)
	if err != nil {
		return nil, err
	}
	return GenerateFile(file, lang, opts...)
}

func GenerateFile(file *syntax.File, lang Lang, opts ...GenerateOption) (*Output, error) {
	generate, ok := generators[lang]
	if !ok {
		return nil, fmt.Errorf("unknown target language %v", lang)
	}
	var options codegen.Options
	for _, opt := range opts {
		opt.apply(&options)
	}
	source, err := generate(file, options)
	if err != nil {
		return nil, err
	}
	return &Output{Source: source, Warnings: file.Warnings()}, nil
}
