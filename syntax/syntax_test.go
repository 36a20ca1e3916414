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

package syntax_test

import (
	"testing"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/internal/testutil"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

func positions(fields []*syntax.Field) []uint32 {
	var out []uint32
	for _, field := range fields {
		out = append(out, field.Position())
	}
	return out
}

func warningCodes(file *syntax.File) []uint32 {
	var out []uint32
	for _, w := range file.Warnings() {
		out = append(out, w.Code())
	}
	return out
}

func TestParseStructPositions(t *testing.T) {
	file := testutil.MustParse(t, `
struct Point { #[0] x: f32, #[1] y: f32 }

struct Mixed {
    #[1] a: i32,
    b: i32,
    #[0] c: i32,
    d: i32,
}
`)
	structs := file.Structs()
	testutil.ExpectEq(t, 2, len(structs))
	testutil.ExpectSliceEq(t, []uint32{0, 1}, positions(structs[0].Fields()))

	mixed := structs[1]
	testutil.ExpectSliceEq(t, []uint32{1, 2, 0, 3}, positions(mixed.Fields()))
	testutil.ExpectTrue(t, mixed.Fields()[0].ExplicitPosition())
	testutil.ExpectFalse(t, mixed.Fields()[1].ExplicitPosition())
	testutil.ExpectEq(t, "b", mixed.Fields()[1].Name())
	testutil.ExpectEq(t, "i32", mixed.Fields()[1].Type().String())
}

func TestParseUnitStruct(t *testing.T) {
	file := testutil.MustParse(t, "struct Empty;")
	s := file.Struct("Empty")
	testutil.ExpectTrue(t, s != nil)
	testutil.ExpectTrue(t, s.Unit())
	testutil.ExpectEq(t, 0, len(s.Fields()))
}

func TestParseEnum(t *testing.T) {
	file := testutil.MustParse(t, `
enum Shape {
    #[1] Circle(f32),
    #[2] Square { side: f32 },
    Point,
}
`)
	shape := file.Enum("Shape")
	cases := shape.Cases()
	testutil.ExpectEq(t, 3, len(cases))

	testutil.ExpectEq(t, "Circle", cases[0].Name())
	testutil.ExpectEq(t, syntax.CASE_TUPLE, cases[0].Style())
	testutil.ExpectEq(t, uint32(1), cases[0].Position())
	testutil.ExpectEq(t, "f32", cases[0].Fields()[0].Type().String())
	testutil.ExpectEq(t, "", cases[0].Fields()[0].Name())

	testutil.ExpectEq(t, syntax.CASE_NAMED, cases[1].Style())
	testutil.ExpectEq(t, uint32(2), cases[1].Position())
	testutil.ExpectEq(t, "side", cases[1].Fields()[0].Name())

	testutil.ExpectEq(t, syntax.CASE_UNIT, cases[2].Style())
	testutil.ExpectEq(t, uint32(0), cases[2].Position())
}

func TestParseTypes(t *testing.T) {
	file := testutil.MustParse(t, `
struct Types {
    a: i8,
    b: u64,
    c: f64,
    d: bool,
    e: char,
    f: String,
    g: Option<Vec<u8>>,
    h: Map<String, i32>,
    i: GroupAddress,
}
`)
	fields := file.Struct("Types").Fields()
	want := []string{"i8", "u64", "f64", "bool", "char", "String", "Option<Vec<u8>>", "Map<String, i32>", "GroupAddress"}
	var got []string
	for _, field := range fields {
		got = append(got, field.Type().String())
	}
	testutil.ExpectSliceEq(t, want, got)

	testutil.ExpectEq(t, syntax.TYPE_INTEGER, fields[0].Type().Kind())
	testutil.ExpectTrue(t, fields[0].Type().Signed())
	testutil.ExpectEq(t, uint8(8), fields[1].Type().Width())
	testutil.ExpectEq(t, syntax.TYPE_NUMBER, fields[2].Type().Kind())
	testutil.ExpectTrue(t, fields[6].Type().IsOption())
	testutil.ExpectTrue(t, fields[6].Type().Elem().IsVec())
	testutil.ExpectEq(t, syntax.TYPE_GENERIC, fields[7].Type().Kind())
	testutil.ExpectEq(t, 2, len(fields[7].Type().Args()))
	testutil.ExpectTrue(t, syntax.IsAddressType(fields[8].Type()))
}

func TestParseFns(t *testing.T) {
	file := testutil.MustParse(t, `
#[id = "723ca727-6a66-43a7-bfcc-b8ad94eac9be"]
#[namespace = "counter"]

signal fn counter() -> i32;

async fn say_hello(name: String) -> String;

#[7]
fn reset();

signal async fn ticks() -> u64;
`)
	fns := file.Fns()
	testutil.ExpectEq(t, 4, len(fns))
	for ii, fn := range fns {
		testutil.ExpectEq(t, uint32(ii), fn.Position())
	}
	testutil.ExpectTrue(t, fns[0].Signal())
	testutil.ExpectFalse(t, fns[0].Async())
	testutil.ExpectEq(t, "i32", fns[0].Return().String())

	testutil.ExpectTrue(t, fns[1].Async())
	testutil.ExpectEq(t, "name", fns[1].Args()[0].Name())
	testutil.ExpectEq(t, "String", fns[1].Args()[0].Type().String())

	testutil.ExpectTrue(t, fns[2].Return() == nil)
	testutil.ExpectTrue(t, fns[3].Signal() && fns[3].Async())

	testutil.ExpectEq(t, "723ca727-6a66-43a7-bfcc-b8ad94eac9be", file.ID())
	testutil.ExpectEq(t, "counter", file.Namespace())
	testutil.ExpectSliceEq(t, []uint32{diagnostics["position_ignored"].Code()}, warningCodes(file))
}

func TestParseDocComments(t *testing.T) {
	file := testutil.MustParse(t, `//! Shared models.

/// A point.
/// In 2D.
struct Point {
    /// Horizontal.
    x: f32,
    y: f32,
}

/// Detached.

struct Other;
`)
	testutil.ExpectSliceEq(t, []string{"Shared models."}, file.Doc())
	point := file.Struct("Point")
	testutil.ExpectSliceEq(t, []string{"A point.", "In 2D."}, point.Doc())
	testutil.ExpectSliceEq(t, []string{"Horizontal."}, point.Fields()[0].Doc())
	testutil.ExpectEq(t, 0, len(point.Fields()[1].Doc()))
	testutil.ExpectEq(t, 0, len(file.Struct("Other").Doc()))
	testutil.ExpectSliceEq(t, []uint32{diagnostics["dangling_doc_comment"].Code()}, warningCodes(file))
}

func TestParseDirectives(t *testing.T) {
	file := testutil.MustParse(t, `
#[swift(import = "Combine", import = "Foundation")]
#[kotlin.package = "com.example.counter"]
#[dart(import = "package:collection/collection.dart", strict)]
#[version = 3]

struct Unit;
`)
	testutil.ExpectSliceEq(t, []string{"Combine", "Foundation"}, file.GroupValues("swift", "import"))
	testutil.ExpectSliceEq(t, []string{"com.example.counter"}, file.GroupValues("kotlin", "package"))
	testutil.ExpectTrue(t, file.GroupFlag("dart", "strict"))
	testutil.ExpectFalse(t, file.GroupFlag("dart", "loose"))
	testutil.ExpectEq(t, 0, len(file.Group("unknown")))

	version := file.Directive("version")
	testutil.ExpectEq(t, syntax.LIT_INT, version.Value().Kind())
	testutil.ExpectEq(t, int64(3), version.Value().Int64())
}

func TestParseAttributes(t *testing.T) {
	file := testutil.MustParse(t, `
#[emplace]
#[into_buffers]
struct Buffers { data: Vec<u8> }

#[bogus]
struct Plain;
`)
	buffers := file.Struct("Buffers")
	testutil.ExpectTrue(t, buffers.Emplace())
	testutil.ExpectTrue(t, buffers.IntoBuffers())
	testutil.ExpectFalse(t, file.Struct("Plain").Emplace())
	testutil.ExpectSliceEq(t, []uint32{diagnostics["unknown_attribute"].Code()}, warningCodes(file))
}

func TestParseConstBlocks(t *testing.T) {
	file := testutil.MustParse(t, `
enum Shape {
    #[1] Circle(f32),
    #[2] Square { side: f32 },
    Empty,
}

const Config {
    max_items: u32 = 100;
    ratio: f32 = 0.5;
    name: String = "demo";
    enabled: bool = true;
    mask: u64 = 0xFF;
    group: GroupAddress = 2;

    const Shapes {
        unit: Shape = Shape::Circle(1.5);
        square: Shape = Shape::Square { side: 2.0 };
        empty: Shape = Shape::Empty;
    }
}
`)
	blocks := file.ConstBlocks()
	testutil.ExpectEq(t, 1, len(blocks))
	items := blocks[0].Items()
	testutil.ExpectEq(t, 7, len(items))

	maxItems := items[0].(*syntax.Const)
	testutil.ExpectEq(t, uint64(100), maxItems.Literal().Uint64())
	testutil.ExpectEq(t, "u32", maxItems.Type().String())
	testutil.ExpectEq(t, "demo", items[2].(*syntax.Const).Literal().Text())
	testutil.ExpectEq(t, uint64(255), items[4].(*syntax.Const).Literal().Uint64())

	nested := items[6].(*syntax.ConstBlock)
	testutil.ExpectEq(t, "Shapes", nested.Name())
	unit := nested.Items()[0].(*syntax.Const).Variant()
	testutil.ExpectEq(t, "Circle", unit.Resolved().Name())
	testutil.ExpectEq(t, "1.5", unit.Args()[0].Raw())
	square := nested.Items()[1].(*syntax.Const).Variant()
	testutil.ExpectEq(t, syntax.CASE_NAMED, square.Style())
	testutil.ExpectEq(t, "side", square.Fields()[0].Name())
	testutil.ExpectEq(t, syntax.CASE_UNIT, nested.Items()[2].(*syntax.Const).Variant().Style())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		error string
	}{
		{"expected declaration", "foo", "expected_declaration"},
		{"missing colon", "struct A { x f32 }", "expected_symbol"},
		{"missing type", "struct A { x: }", "expected_type"},
		{"duplicate position", "struct A { #[1] x: u8, #[1] y: u8 }", "duplicate_position"},
		{"duplicate field", "struct A { x: u8, x: u8 }", "duplicate_name"},
		{"duplicate case", "enum A { X, X }", "duplicate_name"},
		{"duplicate declaration", "struct A;\nenum A { X }", "duplicate_declaration"},
		{"unknown primitive", "struct A { x: i16 }", "unknown_primitive"},
		{"option arity", "struct A { x: Option<u8, u8> }", "generic_arity"},
		{"vec without args", "struct A { x: Vec }", "generic_arity"},
		{"int into float", "const C { x: f32 = 1; }", "const_type_mismatch"},
		{"float into int", "const C { x: i32 = 1.0; }", "const_type_mismatch"},
		{"string into int", "const C { x: u8 = \"1\"; }", "const_type_mismatch"},
		{"bool into string", "const C { x: String = true; }", "const_type_mismatch"},
		{"identifier value", "const C { x: u8 = other; }", "expected_const_value"},
		{"struct constant", "struct P { x: u8 }\nconst C { p: P = P { x: 1 }; }", "struct_const_unsupported"},
		{"unknown enum", "const C { s: Shape = Shape::Circle; }", "unknown_enum"},
		{"unknown case", "enum S { A }\nconst C { s: S = S::B; }", "unknown_case"},
		{"case shape", "enum S { A(u8) }\nconst C { s: S = S::A; }", "variant_shape"},
		{"case arity", "enum S { A(u8) }\nconst C { s: S = S::A(1, 2); }", "variant_shape"},
		{"case fields", "enum S { A { x: u8 } }\nconst C { s: S = S::A { y: 1 }; }", "variant_fields"},
		{"case field type", "enum S { A(u8) }\nconst C { s: S = S::A(1.5); }", "const_type_mismatch"},
		{"variant type", "enum S { A }\nconst C { s: u8 = S::A; }", "variant_type_mismatch"},
		{"missing id", "#[namespace = \"x\"]\nfn f();", "missing_directive"},
		{"missing namespace", "#[id = \"x\"]\nfn f();", "missing_directive"},
		{"duplicate id", "#[id = \"x\"]\n#[id = \"y\"]\n#[namespace = \"x\"]\nfn f();", "duplicate_directive"},
		{"namespace case", "#[id = \"x\"]\n#[namespace = \"MyService\"]\nfn f();", "namespace_not_snake_case"},
		{"id type", "#[id = 1]\n#[namespace = \"x\"]\nfn f();", "directive_value_type"},
		{"signal args", "#[id = \"x\"]\n#[namespace = \"x\"]\nsignal fn f(a: u8) -> u8;", "signal_signature"},
		{"signal unit", "#[id = \"x\"]\n#[namespace = \"x\"]\nsignal fn f();", "signal_signature"},
		{"modifier without fn", "async struct A;", "expected_keyword_fn"},
		{"bad position", "struct A { #[x] a: u8 }", "expected_position"},
		{"position range", "struct A { #[0x100000000] a: u8 }", "position_out_of_range"},
		{"int range", "const C { x: u64 = 18446744073709551616; }", "int_lit_out_of_range"},
		{"inner doc", "struct A {\n//! no\n}", "inner_doc_placement"},
		{"directive value", "#[x = ]", "expected_directive_value"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			expect, ok := diagnostics[test.error]
			if !ok {
				t.Fatalf("unknown diagnostic name %q", test.error)
			}
			_, err := syntax.Parse([]byte(test.src))
			testutil.AssertErrorCode(t, expect.Code(), err)
			if pattern := expect.MessagePattern(); pattern != nil {
				testutil.ExpectMatch(t, pattern, err.(*syntax.Error).Message())
			}
		})
	}
}

func TestParseErrorSpan(t *testing.T) {
	_, err := syntax.Parse([]byte("struct A;\n  foo"))
	testutil.AssertError(t, err)
	testutil.ExpectEq(t, syntax.NewSpan(12, 3), err.(*syntax.Error).Span())
	testutil.ExpectEq(t, `E2002: Expected one of [directive, const, struct, enum, fn, signal, async], got (IDENT "foo")`, err.Error())
}

func TestUnusedDirectiveWarning(t *testing.T) {
	file := testutil.MustParse(t, "#[id = \"x\"]\nstruct A;")
	testutil.ExpectSliceEq(t, []uint32{diagnostics["unused_directive"].Code()}, warningCodes(file))
}
