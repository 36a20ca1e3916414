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

package tpb_test

import (
	"strings"
	"testing"

	tpb "github.com/tech-paws/tech-paws-buffers-generator-sub000"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/internal/testutil"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

const pointSrc = `
struct Point {
    x: f32,
    y: f32,
}
`

func TestParseLang(t *testing.T) {
	for _, lang := range tpb.Langs {
		parsed, ok := tpb.ParseLang(lang.String())
		testutil.ExpectTrue(t, ok)
		testutil.ExpectEq(t, lang, parsed)
	}
	_, ok := tpb.ParseLang("go")
	testutil.ExpectFalse(t, ok)
	testutil.ExpectEq(t, "Lang(9)", tpb.Lang(9).String())
}

func TestGenerateEveryLang(t *testing.T) {
	for _, lang := range tpb.Langs {
		t.Run(lang.String(), func(t *testing.T) {
			out, err := tpb.Generate([]byte(pointSrc), lang)
			testutil.AssertNoError(t, err)
			testutil.ExpectTrue(t, strings.Contains(out.Source, codegen.GeneratedHeader))
			testutil.ExpectTrue(t, strings.Contains(out.Source, "Point"))
			testutil.ExpectEq(t, 0, len(out.Warnings))
		})
	}
}

func TestGenerateIndent(t *testing.T) {
	out, err := tpb.Generate([]byte(pointSrc), tpb.LANG_KOTLIN, tpb.WithIndent(2))
	testutil.AssertNoError(t, err)
	testutil.ExpectContains(t, out.Source, "data class Point(\n  val x: Float,\n")
}

func TestGenerateParseError(t *testing.T) {
	out, err := tpb.Generate([]byte("struct {"), tpb.LANG_RUST)
	testutil.AssertError(t, err)
	testutil.ExpectTrue(t, out == nil)
	_, isSyntax := err.(*syntax.Error)
	testutil.ExpectTrue(t, isSyntax)
}

func TestGenerateWarnings(t *testing.T) {
	out, err := tpb.Generate([]byte("#[bogus]\nstruct Point { x: f32 }\n"), tpb.LANG_SWIFT)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 1, len(out.Warnings))
	testutil.ExpectEq(t, uint32(4001), out.Warnings[0].Code())
}
