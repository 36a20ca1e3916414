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

package dart_test

import (
	"strings"
	"testing"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen/dart"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/internal/testutil"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	out, err := dart.Generate(testutil.MustParse(t, src), codegen.Options{})
	testutil.AssertNoError(t, err)
	return out
}

func TestStructModel(t *testing.T) {
	out := generate(t, `
struct Point {
    x: f32,
    y: f32,
}

struct Empty;
`)
	testutil.ExpectContains(t, out,
		"// ignore_for_file: non_constant_identifier_names, camel_case_types\n\nimport 'package:tech_paws_buffers/tech_paws_buffers.dart';\n",
		`final class Point {
  const Point({
    required this.x,
    required this.y,
  });

  final double x;
  final double y;

  static Point createBuffersDefault() {
    return Point(x: 0.0, y: 0.0);
  }

  static Point readFromBuffers(BytesReader reader) {
    return Point(x: reader.readF32(), y: reader.readF32());
  }

  static void skipInBuffers(BytesReader reader, int count) {
    for (var i = 0; i < count; i++) {
      reader.skip(4);
      reader.skip(4);
    }
  }

  void writeToBuffers(BytesWriter writer) {
    writer.writeF32(this.x);
    writer.writeF32(this.y);
  }

  @override
  bool operator ==(Object other) {
    return other is Point && other.x == this.x && other.y == this.y;
  }

  @override
  int get hashCode {
    return Object.hashAll([this.x, this.y]);
  }
}`,
		"final class Empty {\n  const Empty();\n\n  static Empty createBuffersDefault() {\n    return Empty();\n  }\n",
		"static void skipInBuffers(BytesReader reader, int count) {}",
		"  bool operator ==(Object other) {\n    return other is Empty;\n  }\n\n  @override\n  int get hashCode {\n    return runtimeType.hashCode;\n  }\n}",
	)
	testutil.ExpectNotContains(t, out, "package:collection")
}

func TestCollections(t *testing.T) {
	out := generate(t, `
struct Point { x: f32 }

#[into_buffers]
struct Path {
    points: Vec<Point>,
    tag: Option<String>,
}
`)
	testutil.ExpectContains(t, out,
		"import 'dart:typed_data';\n",
		"final List<Point> points;",
		"final String? tag;",
		"points: List.generate(reader.readU64(), (_) => Point.readFromBuffers(reader))",
		"tag: reader.readBool() ? reader.readString() : null",
		"writer.writeU64(this.points.length);",
		"for (final item in this.points) {\n      item.writeToBuffers(writer);\n    }",
		"if (this.tag case final inner?) {\n      writer.writeBool(true);\n      writer.writeString(inner);\n    } else {\n      writer.writeBool(false);\n    }",
		"Point.skipInBuffers(reader, 1);",
		"return Path(points: [], tag: null);",
		"import 'dart:typed_data';\nimport 'package:collection/collection.dart';\nimport 'package:tech_paws_buffers/tech_paws_buffers.dart';\n",
		"return other is Path && const DeepCollectionEquality().equals(other.points, this.points) && other.tag == this.tag;",
		"return Object.hashAll([const DeepCollectionEquality().hash(this.points), this.tag]);",
		"  Uint8List toBuffers() {\n    final writer = BytesWriter();\n    this.writeToBuffers(writer);\n    return writer.toBytes();\n  }",
	)
}

func TestEnumModel(t *testing.T) {
	out := generate(t, `
enum Shape {
    Circle(f32),
    Rect { w: f32, h: f32 },
    Empty,
}
`)
	testutil.ExpectContains(t, out,
		"sealed class Shape {\n  const Shape();\n\n  static Shape createBuffersDefault() {\n    return ShapeCircle(0.0);\n  }\n",
		"    final discriminant = reader.readU32();\n    switch (discriminant) {\n      case 0:\n        return ShapeCircle(reader.readF32());\n      case 1:\n        return ShapeRect(w: reader.readF32(), h: reader.readF32());\n      case 2:\n        return const ShapeEmpty();\n      default:\n        throw StateError('Unknown discriminant for enum Shape');\n    }\n",
		"        case 2:\n          break;\n",
		"    switch (this) {\n      case final ShapeCircle value:\n        writer.writeU32(0);\n        writer.writeF32(value.v0);\n",
		"writer.writeF32(value.h);",
		"      case final ShapeEmpty value:\n        writer.writeU32(2);\n",
		"final class ShapeCircle extends Shape {\n  const ShapeCircle(this.v0);\n\n  final double v0;\n\n  @override\n  bool operator ==(Object other) {\n    return other is ShapeCircle && other.v0 == this.v0;\n  }\n\n  @override\n  int get hashCode {\n    return Object.hashAll([this.v0]);\n  }\n}",
		"final class ShapeRect extends Shape {\n  const ShapeRect({\n    required this.w,\n    required this.h,\n  });\n\n  final double w;\n  final double h;\n\n  @override\n",
		"return other is ShapeRect && other.w == this.w && other.h == this.h;",
		"final class ShapeEmpty extends Shape {\n  const ShapeEmpty();\n\n  @override\n  bool operator ==(Object other) {\n    return other is ShapeEmpty;\n  }\n",
	)
}

func TestConstBlocks(t *testing.T) {
	out := generate(t, `
enum Shape { Circle(f32), Empty }

const config {
    max_items: u32 = 100;
    name: String = "cost $5";
    group: GroupAddress = 2;

    const shapes {
        unit: Shape = Shape::Circle(1.5);
        none: Shape = Shape::Empty;
    }
}
`)
	testutil.ExpectContains(t, out,
		"import 'package:tech_paws_runtime/tech_paws_runtime.dart';\n",
		"abstract final class Config {\n  static const int maxItems = 100;\n  static const String name = 'cost \\$5';\n  static final GroupAddress group = GroupAddress(2);\n}\n\nabstract final class ConfigShapes {\n",
		"  static const Shape unit = ShapeCircle(1.5);\n",
		"  static const Shape none = const ShapeEmpty();\n",
	)
}

const counterSrc = `
#[id = "723ca727-6a66-43a7-bfcc-b8ad94eac9be"]
#[namespace = "counter"]
#[dart(import = "package:counter_kit/counter_kit.dart")]

signal fn counter() -> i32;
async fn say_hello(name: String) -> String;
fn reset();
`

func TestClient(t *testing.T) {
	out := generate(t, counterSrc)
	testutil.ExpectContains(t, out,
		"import 'dart:async';\nimport 'package:tech_paws_buffers/tech_paws_buffers.dart';\nimport 'package:tech_paws_runtime/tech_paws_runtime.dart';\nimport 'package:counter_kit/counter_kit.dart';\n",
		"final class __say_hello_rpc_args__ {\n  const __say_hello_rpc_args__({\n    required this.rpcMethodId,\n    required this.name,\n  });\n\n  final int rpcMethodId;\n",
		"writer.writeI64(this.rpcMethodId);",
		`final class CounterRpcClient {
  static const String scopeId = '723ca727-6a66-43a7-bfcc-b8ad94eac9be';

  final TechPawsRuntime _runtime;
  final GroupAddress _addresses;
  int _methodId = 0;
  final _readTasks = <ReadTask>[];
  final _counterController = StreamController<int>.broadcast();
  final _sayHelloCalls = <int, Completer<String>>{};

  Stream<int> get counter => _counterController.stream;

  CounterRpcClient(this._runtime, this._addresses) {
    _readTasks.add(_runtime.onRead(scopeId, _addresses, 0, BufferKind.client, (reader) => _readCounter(reader)));
    _readTasks.add(_runtime.onRead(scopeId, _addresses, 1, BufferKind.client, (reader) => _readSayHello(reader)));
  }

  void disconnect() {
    for (final task in _readTasks) {
      task.cancel();
    }
    _readTasks.clear();
    _counterController.close();
    for (final completer in _sayHelloCalls.values) {
      completer.completeError(StateError('CounterRpcClient disconnected'));
    }
    _sayHelloCalls.clear();
  }
`,
		"  void _readCounter(BytesReader reader) {\n    if (reader.readU8() != bufferStatusData) {\n      return;\n    }\n    _counterController.add(reader.readI32());\n  }",
		`  Future<String> sayHello(String name) {
    _methodId = (_methodId + 1) & 0x7FFFFFFFFFFFFFFF;
    final id = _methodId;
    final completer = Completer<String>();
    _sayHelloCalls[id] = completer;
    final writer = _runtime.writer(scopeId, _addresses, 1, BufferKind.server);
    writer.writeU8(bufferStatusData);
    __say_hello_rpc_args__(rpcMethodId: id, name: name).writeToBuffers(writer);
    return completer.future;
  }`,
		"    final id = reader.readI64();\n    final result = reader.readString();\n    _sayHelloCalls.remove(id)?.complete(result);\n",
		"  void reset() {\n",
		"_runtime.loopSyncGroup(_addresses);\n\n    final reader = _runtime.reader(scopeId, _addresses, 2, BufferKind.client);\n",
		"throw StateError('Empty reply for reset');",
		"  static CounterRpcClient registerRpc(TechPawsRuntime runtime, GroupAddress addresses) {\n    runtime.declareScope(scopeId);\n",
		"runtime.bind(scopeId, addresses, 0, PayloadSize.medium);",
		"runtime.bind(scopeId, addresses, 2, PayloadSize.zero);",
		"return CounterRpcClient(runtime, addresses);",
	)
}

func TestAsyncUnitReply(t *testing.T) {
	out := generate(t, `
#[id = "723ca727-6a66-43a7-bfcc-b8ad94eac9be"]
#[namespace = "jobs"]

async fn flush();
`)
	testutil.ExpectContains(t, out,
		"final _flushCalls = <int, Completer<void>>{};",
		"Future<void> flush() {",
		"_flushCalls.remove(id)?.complete();",
	)
	testutil.ExpectFalse(t, strings.Contains(out, "StreamController"))
}

func TestStrictFlag(t *testing.T) {
	out := generate(t, "#[dart(strict)]\n\nstruct Point { x: f32 }\n")
	testutil.ExpectFalse(t, strings.Contains(out, "ignore_for_file"))
}

func TestSkipLoopNames(t *testing.T) {
	out := generate(t, "struct Paths { names: Vec<String>, raw: Vec<u8> }\n")
	testutil.ExpectContains(t, out,
		"    for (var i = 0; i < count; i++) {\n      final len = reader.readU64();\n      for (var i1 = 0; i1 < len; i1++) {\n        final len1 = reader.readU64();\n        reader.skip(len1);\n      }\n",
		"      final len2 = reader.readU64();\n      reader.skip(len2);\n",
	)
}

func TestNestedOptionRejected(t *testing.T) {
	_, err := dart.Generate(testutil.MustParse(t, "enum Slot { Filled(Option<Option<i32>>), Free }\n"), codegen.Options{})
	testutil.AssertErrorCode(t, 5000, err)

	generate(t, "struct Holder { x: Option<Vec<Option<u8>>> }\n")
}

func TestKeywordEscape(t *testing.T) {
	out := generate(t, "struct Item { default: u8 }\n")
	testutil.ExpectContains(t, out,
		"required this.default_,",
		"final int default_;",
		"writer.writeU8(this.default_);",
	)
}

func TestGenerateDeterministic(t *testing.T) {
	first := generate(t, counterSrc)
	testutil.ExpectNoDiff(t, first, generate(t, counterSrc))
	testutil.ExpectFalse(t, strings.Contains(first, "\n\n\n"))
}
