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

package rust_test

import (
	"strings"
	"testing"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen/rust"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/internal/testutil"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	out, err := rust.Generate(testutil.MustParse(t, src), codegen.Options{})
	testutil.AssertNoError(t, err)
	return out
}

func TestUnitStruct(t *testing.T) {
	out := generate(t, "struct Empty;\n")
	testutil.ExpectContains(t, out,
		"#[derive(Debug, Clone, PartialEq)]\npub struct Empty;\n",
		`impl Default for Empty {
    fn default() -> Self {
        Self
    }
}`,
		`impl IntoVMBuffers for Empty {
    fn read_from_buffers(_reader: &mut BytesReader) -> Self {
        Self
    }

    fn write_to_buffers(&self, _writer: &mut BytesWriter) {}

    fn skip_in_buffers(_reader: &mut BytesReader, _count: u64) {}
}`,
	)
}

func TestStructCodec(t *testing.T) {
	out := generate(t, `
/// A point.
struct Point {
    x: f32,
    y: f32,
}

struct Path {
    name: String,
    points: Vec<Point>,
    tag: Option<u8>,
}
`)
	testutil.ExpectContains(t, out,
		`/// A point.
#[derive(Debug, Clone, PartialEq)]
pub struct Point {
    pub x: f32,
    pub y: f32,
}`,
		"Point { x: 0.0, y: 0.0 }",
		"Point { x: reader.read_f32(), y: reader.read_f32() }",
		"        writer.write_f32(self.x);\n        writer.write_f32(self.y);\n",
		"        for _ in 0..count {\n            reader.skip(4);\n            reader.skip(4);\n        }\n",
		"writer.write_string(&self.name);",
		"writer.write_u64(self.points.len() as u64);",
		"for item in &self.points {\n            item.write_to_buffers(writer);\n        }",
		"if let Some(inner) = &self.tag {\n            writer.write_bool(true);\n            writer.write_u8(*inner);\n        } else {\n            writer.write_bool(false);\n        }",
		"Point::skip_in_buffers(reader, 1);",
	)
}

func TestEnumCodec(t *testing.T) {
	out := generate(t, `
enum Shape {
    Circle(f32),
    Rect { w: f32, h: f32 },
    Empty,
}
`)
	testutil.ExpectContains(t, out,
		`pub enum Shape {
    Circle(f32),
    Rect {
        w: f32,
        h: f32,
    },
    Empty,
}`,
		"Shape::Circle(0.0)",
		"let discriminant = reader.read_u32();",
		"0 => {\n                return Shape::Circle(reader.read_f32());\n            }",
		"Shape::Rect { w: reader.read_f32(), h: reader.read_f32() }",
		`panic!("Unknown discriminant for enum Shape");`,
		"Shape::Circle(v0) => {\n                writer.write_u32(0);\n                writer.write_f32(*v0);\n            }",
		"Shape::Rect { w, h } => {",
		"2 => {}",
	)
}

func TestEnumCaseScopes(t *testing.T) {
	out := generate(t, `
enum Event {
    Click(u32),
    Drop(u32),
    Moved { id: u32 },
    Lost { id: u32 },
}

struct Blob {
    data: Vec<u8>,
    words: Vec<u16>,
}
`)
	testutil.ExpectContains(t, out,
		"Event::Drop(v0) => {\n                writer.write_u32(1);\n                writer.write_u32(*v0);\n            }",
		"Event::Lost { id } => {\n                writer.write_u32(3);\n                writer.write_u32(*id);\n            }",
		"let len = reader.read_u64();\n            reader.skip(len);\n",
		"reader.skip(len1 * 2);",
	)
	testutil.ExpectNotContains(t, out, "_value", "* 1)")
}

func TestConstBlocks(t *testing.T) {
	out := generate(t, `
enum Shape { Circle(f32), Empty }

const Config {
    max_items: u32 = 100;
    name: String = "demo";
    mask: u64 = 0xFF;
    group: GroupAddress = 2;

    const Shapes {
        unit: Shape = Shape::Circle(1.5);
    }
}
`)
	testutil.ExpectContains(t, out,
		"pub mod config {\n    use super::*;\n",
		"pub const MAX_ITEMS: u32 = 100;",
		`pub const NAME: &str = "demo";`,
		"pub const MASK: u64 = 255;",
		"pub const GROUP: GroupAddress = GroupAddress(2);",
		"    pub mod shapes {\n        use super::*;\n\n        pub const UNIT: Shape = Shape::Circle(1.5);\n",
		"use tech_paws_runtime::GroupAddress;",
	)
}

const counterSrc = `
#[id = "723ca727-6a66-43a7-bfcc-b8ad94eac9be"]
#[namespace = "counter"]

signal fn counter() -> i32;
async fn say_hello(name: String) -> String;
fn reset();
`

func TestRpc(t *testing.T) {
	out := generate(t, counterSrc)
	testutil.ExpectContains(t, out,
		"use std::future::Future;\nuse std::sync::Arc;\n\n",
		`pub const SCOPE_ID: &str = "723ca727-6a66-43a7-bfcc-b8ad94eac9be";`,
		"pub trait CounterRpc: Send + Sync + 'static {",
		"    fn counter(&self) -> SignalResult<i32>;",
		"    fn say_hello(&self, name: String) -> impl Future<Output = String> + Send;",
		"    fn reset(&self);",
		"pub struct __say_hello_rpc_args__ {\n    pub __method_id__: i64,\n    pub name: String,\n}",
		"pub fn handle_counter<S: CounterRpc>(service: &Arc<S>, ctx: &mut HandlerContext) {",
		"if let SignalResult::Data(result) = service.counter() {",
		"writer.write_i32(result);",
		"let method_id = args.__method_id__;",
		"let result = service.say_hello(args.name).await;",
		"writer.write_i64(method_id);",
		"writer.write_string(&result);",
		"if ctx.reader(BufferKind::Server).read_u8() != BUFFER_STATUS_DATA {",
		"service.reset();",
		"runtime.declare_scope(SCOPE_ID);",
		"runtime.bind(SCOPE_ID, addresses, 0, PayloadSize::Medium, move |ctx| {\n        handle_counter(&service_counter, ctx);\n    });",
		"PayloadSize::Zero",
	)
}

func TestGenerateDeterministic(t *testing.T) {
	first := generate(t, counterSrc)
	second := generate(t, counterSrc)
	testutil.ExpectNoDiff(t, first, second)
	testutil.ExpectFalse(t, strings.Contains(first, "\n\n\n"))
	testutil.ExpectTrue(t, strings.HasPrefix(first, "// "+codegen.GeneratedHeader+"\n"))
	testutil.ExpectTrue(t, strings.HasSuffix(first, "}\n"))
}

func TestKeywordEscape(t *testing.T) {
	out := generate(t, "struct Item { type: u8, match: bool }\n")
	testutil.ExpectContains(t, out,
		"pub r#type: u8,",
		"writer.write_u8(self.r#type);",
	)
}

func TestIndentOption(t *testing.T) {
	file := testutil.MustParse(t, "struct Point { x: f32 }\n")
	out, err := rust.Generate(file, codegen.Options{IndentSize: 2})
	testutil.AssertNoError(t, err)
	testutil.ExpectContains(t, out, "pub struct Point {\n  pub x: f32,\n}")
}
