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

package plugin_test

import (
	"testing"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/internal/plugin"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/internal/testutil"
)

func TestNewRequest(t *testing.T) {
	src := `
#[id = "723ca727-6a66-43a7-bfcc-b8ad94eac9be"]
#[namespace = "counter"]

const limits { max: u32 = 10; }

/// A point.
struct Point { x: f32 }

enum Shape { Empty }

fn reset();
`
	req := plugin.NewRequest(testutil.MustParse(t, src), []byte(src), []string{"schema", "counter.tpb"})
	testutil.ExpectEq(t, src, req.Source)
	testutil.ExpectContains(t, req.Formatted, "struct Point {\n    x: f32,\n}")
	testutil.ExpectEq(t, 4, len(req.Declarations))

	var kinds, names []string
	for _, decl := range req.Declarations {
		kinds = append(kinds, decl.Kind)
		names = append(names, decl.Name)
	}
	testutil.ExpectSliceEq(t, []string{"const", "struct", "enum", "fn"}, kinds)
	testutil.ExpectSliceEq(t, []string{"limits", "Point", "Shape", "reset"}, names)
	testutil.ExpectSliceEq(t, []string{"A point."}, req.Declarations[1].Doc)
	testutil.ExpectSliceEq(t, []string{"schema", "counter.tpb"}, req.SourcePath)
}

func TestCheckPath(t *testing.T) {
	testutil.ExpectNoError(t, plugin.CheckPath([]string{"gen", "counter.rs"}))
	for _, bad := range [][]string{
		nil,
		{""},
		{"."},
		{"gen", ".."},
		{"/etc"},
		{"a/b"},
		{`a\b`},
	} {
		testutil.ExpectTrue(t, plugin.CheckPath(bad) != nil)
	}
}

func TestSplitPath(t *testing.T) {
	testutil.ExpectSliceEq(t, []string{"schema", "counter.tpb"}, plugin.SplitPath("schema/./counter.tpb"))
	testutil.ExpectSliceEq(t, []string{"counter.tpb"}, plugin.SplitPath("counter.tpb"))
	testutil.ExpectEq(t, 0, len(plugin.SplitPath("/abs/counter.tpb")))
}
