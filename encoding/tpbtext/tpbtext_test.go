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

package tpbtext_test

import (
	"testing"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/encoding/tpbbin"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/encoding/tpbtext"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/internal/testutil"
)

func TestEncodeRecord(t *testing.T) {
	value := &tpbbin.Record{Name: "Drawing", Fields: []tpbbin.FieldValue{
		{Name: "name", Value: "a \"b\"\n"},
		{Name: "origin", Value: &tpbbin.Record{Name: "Point", Fields: []tpbbin.FieldValue{
			{Name: "x", Value: float32(1.5)},
			{Name: "y", Value: float32(-2)},
		}}},
		{Name: "shapes", Value: []any{
			&tpbbin.Variant{Enum: "Shape", Case: "Circle", Fields: []tpbbin.FieldValue{{Name: "0", Value: float32(2)}}},
			&tpbbin.Variant{Enum: "Shape", Case: "Nothing"},
		}},
		{Name: "tag", Value: tpbbin.Some(uint8(9))},
		{Name: "label", Value: tpbbin.None()},
		{Name: "empty", Value: []any{}},
		{Name: "marker", Value: tpbbin.Char('x')},
		{Name: "visible", Value: true},
		{Name: "weight", Value: int64(-3)},
	}}

	testutil.ExpectNoDiff(t, `name = "a \"b\"\n"
origin = Point {
	x = 1.5
	y = -2
}
shapes = [
	Shape::Circle {
		0 = 2
	},
	Shape::Nothing,
]
tag = Some(9)
label = None
empty = []
marker = 'x'
visible = true
weight = -3
`, tpbtext.Encode(value))
}

func TestEncodeScalar(t *testing.T) {
	testutil.ExpectEq(t, "value = 42\n", tpbtext.Encode(uint32(42)))
	testutil.ExpectEq(t, "value = Some(Point)\n", tpbtext.Encode(tpbbin.Some(&tpbbin.Record{Name: "Point"})))
}
