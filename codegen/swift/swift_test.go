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

package swift_test

import (
	"strings"
	"testing"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen/swift"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/internal/testutil"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	out, err := swift.Generate(testutil.MustParse(t, src), codegen.Options{})
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
		"import Foundation\nimport TechPawsBuffers\n",
		`public struct Point: Equatable {
    public var x: Float
    public var y: Float

    public init(x: Float, y: Float) {
        self.x = x
        self.y = y
    }
}`,
		`extension Point: BuffersCodable {
    public static func createBuffersDefault() -> Point {
        return Point(x: 0.0, y: 0.0)
    }

    public static func readFromBuffers(_ reader: BytesReader) -> Point {
        return Point(x: reader.readF32(), y: reader.readF32())
    }

    public func writeToBuffers(_ writer: BytesWriter) {
        writer.writeF32(self.x)
        writer.writeF32(self.y)
    }
`,
		"        for _ in 0..<count {\n            reader.skip(4)\n            reader.skip(4)\n        }",
		"public struct Empty: Equatable {\n    public init() {}\n}",
		"return Empty()",
		"public static func skipInBuffers(_ reader: BytesReader, _ count: UInt64) {}",
	)
}

func TestCollections(t *testing.T) {
	out := generate(t, `
struct Point { x: f32 }

struct Path {
    points: Vec<Point>,
    tag: Option<String>,
}
`)
	testutil.ExpectContains(t, out,
		"public var points: [Point]",
		"public var tag: String?",
		"points: (0..<reader.readU64()).map { _ in Point.readFromBuffers(reader) }",
		"tag: reader.readBool() ? reader.readString() : nil",
		"writer.writeU64(UInt64(self.points.count))",
		"for item in self.points {\n            item.writeToBuffers(writer)\n        }",
		"if let inner = self.tag {\n            writer.writeBool(true)\n            writer.writeString(inner)\n        } else {\n            writer.writeBool(false)\n        }",
		"Point.skipInBuffers(reader, 1)",
		"return Path(points: [], tag: nil)",
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
		"public enum Shape: Equatable {\n    case circle(Float)\n    case rect(w: Float, h: Float)\n    case empty\n}",
		"return Shape.circle(0.0)",
		"        switch discriminant {\n        case 0:\n            return Shape.circle(reader.readF32())\n",
		"return Shape.rect(w: reader.readF32(), h: reader.readF32())",
		"return Shape.empty",
		"        default:\n            fatalError(\"Unknown discriminant for enum Shape\")\n",
		"        case .circle(let v0):\n            writer.writeU32(0)\n            writer.writeF32(v0)\n",
		"case .rect(let w, let h):",
		"            case 2:\n                break\n",
	)
}

func TestConstBlocks(t *testing.T) {
	out := generate(t, `
enum Shape { Circle(f32), Empty }

const config {
    max_items: u32 = 100;
    name: String = "demo";
    group: GroupAddress = 2;

    const shapes {
        unit: Shape = Shape::Circle(1.5);
    }
}
`)
	testutil.ExpectContains(t, out,
		"import TechPawsRuntime",
		"public enum Config {",
		"    public static let maxItems: UInt32 = 100",
		`    public static let name: String = "demo"`,
		"    public static let group: GroupAddress = GroupAddress(2)",
		"    public enum Shapes {\n        public static let unit: Shape = Shape.circle(1.5)\n    }",
	)
}

const counterSrc = `
#[id = "723ca727-6a66-43a7-bfcc-b8ad94eac9be"]
#[namespace = "counter"]
#[swift(import = "Combine", import = "CounterKit")]

signal fn counter() -> i32;
async fn say_hello(name: String) -> String;
fn reset();
`

func TestClient(t *testing.T) {
	out := generate(t, counterSrc)
	testutil.ExpectContains(t, out,
		"import Foundation\nimport Combine\nimport TechPawsBuffers\nimport TechPawsRuntime\nimport CounterKit\n",
		"public final class CounterRpcClient {\n    public static let scopeId = \"723ca727-6a66-43a7-bfcc-b8ad94eac9be\"\n\n    private let runtime: TechPawsRuntime\n",
		"private var methodId: Int64 = 0",
		"public let counterSubject = PassthroughSubject<Int32, Never>()",
		"private var sayHelloCalls: [Int64: CheckedContinuation<String, Error>] = [:]",
		"self.readTasks.append(self.runtime.onRead(scopeId: Self.scopeId, addresses: self.addresses, method: 0, kind: .client, { [weak self] reader in self?.readCounter(reader) }))",
		"self.counterSubject.send(completion: .finished)",
		"        for continuation in self.sayHelloCalls.values {\n            continuation.resume(throwing: CancellationError())\n        }\n        self.sayHelloCalls.removeAll()\n",
		"public func sayHello(name: String) async throws -> String {",
		"self.methodId = (self.methodId &+ 1) & Int64.max",
		"return try await withCheckedThrowingContinuation { continuation in",
		"self.sayHelloCalls[id] = continuation",
		"writer.writeU8(bufferStatusData)",
		"__say_hello_rpc_args__(__method_id__: id, name: name).writeToBuffers(writer)",
		"if let continuation = self.sayHelloCalls.removeValue(forKey: id) {",
		"continuation.resume(returning: result)",
		"self.counterSubject.send(reader.readI32())",
		"public func reset() {",
		"public func disconnect() {",
		"self.runtime.loopSyncGroup(self.addresses)",
		"fatalError(\"Empty reply for reset\")",
		"public static func registerRpc(runtime: TechPawsRuntime, addresses: GroupAddress) -> CounterRpcClient {",
		"runtime.declareScope(scopeId)",
		"runtime.bind(scopeId: scopeId, addresses: addresses, method: 0, payloadSize: .medium)",
		"runtime.bind(scopeId: scopeId, addresses: addresses, method: 2, payloadSize: .zero)",
		"return CounterRpcClient(runtime: runtime, addresses: addresses)",
	)
	testutil.ExpectEq(t, 1, strings.Count(out, "import Combine\n"))
}

func TestKeywordEscape(t *testing.T) {
	out := generate(t, "struct Item { default: u8 }\n")
	testutil.ExpectContains(t, out,
		"public var `default`: UInt8",
		"writer.writeU8(self.`default`)",
	)
}

func TestGenerateDeterministic(t *testing.T) {
	first := generate(t, counterSrc)
	testutil.ExpectNoDiff(t, first, generate(t, counterSrc))
	testutil.ExpectFalse(t, strings.Contains(first, "\n\n\n"))
}
