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

package kotlin_test

import (
	"strings"
	"testing"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen/kotlin"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/internal/testutil"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	out, err := kotlin.Generate(testutil.MustParse(t, src), codegen.Options{})
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
		"import com.techpaws.buffers.BytesReader\nimport com.techpaws.buffers.BytesWriter\n",
		`data class Point(
    val x: Float,
    val y: Float,
) {
    fun writeToBuffers(writer: BytesWriter) {
        writer.writeF32(this.x)
        writer.writeF32(this.y)
    }

    companion object {
        fun createBuffersDefault(): Point {
            return Point(x = 0f, y = 0f)
        }

        fun readFromBuffers(reader: BytesReader): Point {
            return Point(x = reader.readF32(), y = reader.readF32())
        }

        fun skipInBuffers(reader: BytesReader, count: ULong) {
            repeat(count.toInt()) {
                reader.skip(4UL)
                reader.skip(4UL)
            }
        }
    }
}`,
		"class Empty {\n    fun writeToBuffers(writer: BytesWriter) {}\n",
		"    override fun equals(other: Any?): Boolean {\n        return other is Empty\n    }\n\n    override fun hashCode(): Int {\n        return Empty::class.hashCode()\n    }\n",
		"return Empty()",
		"fun skipInBuffers(reader: BytesReader, count: ULong) {}",
	)
	testutil.ExpectNotContains(t, out, "override fun equals(other: Any?): Boolean {\n        return other is Point")
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
		"val points: List<Point>,",
		"val tag: String?,",
		"points = List(reader.readU64().toInt()) { Point.readFromBuffers(reader) }",
		"tag = if (reader.readBool()) reader.readString() else null",
		"writer.writeU64(this.points.size.toULong())",
		"for (item in this.points) {\n            item.writeToBuffers(writer)\n        }",
		"val inner = this.tag\n        if (inner != null) {\n            writer.writeBool(true)\n            writer.writeString(inner)\n        } else {\n            writer.writeBool(false)\n        }",
		"Point.skipInBuffers(reader, 1UL)",
		"return Path(points = listOf(), tag = null)",
		"fun toBuffers(): ByteArray {\n        val writer = BytesWriter()\n        this.writeToBuffers(writer)\n        return writer.toByteArray()\n    }",
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
		"sealed class Shape {\n    data class Circle(val v0: Float) : Shape()\n    data class Rect(val w: Float, val h: Float) : Shape()\n    object Empty : Shape()\n\n    fun writeToBuffers(writer: BytesWriter) {\n",
		"        when (val value = this) {\n            is Shape.Circle -> {\n                writer.writeU32(0U)\n                writer.writeF32(value.v0)\n            }\n",
		"writer.writeF32(value.h)",
		"            is Shape.Empty -> {\n                writer.writeU32(2U)\n            }\n",
		"return Shape.Circle(0f)",
		"            when (discriminant) {\n                0U -> {\n                    return Shape.Circle(reader.readF32())\n                }\n",
		"return Shape.Rect(w = reader.readF32(), h = reader.readF32())",
		"return Shape.Empty\n",
		"                else -> {\n                    throw IllegalStateException(\"Unknown discriminant for enum Shape\")\n                }\n",
		"                    2U -> {}\n",
	)
}

func TestConstBlocks(t *testing.T) {
	out := generate(t, `
enum Shape { Circle(f32), Empty }

const config {
    max_items: u32 = 100;
    offset: i64 = -3;
    limit: u64 = 7;
    ratio: f32 = 0.5;
    name: String = "cost $5";
    group: GroupAddress = 2;

    const shapes {
        unit: Shape = Shape::Circle(1.5);
        none: Shape = Shape::Empty;
    }
}
`)
	testutil.ExpectContains(t, out,
		"import com.techpaws.runtime.GroupAddress\n",
		"object Config {\n",
		"    const val MAX_ITEMS: UInt = 100U\n",
		"    const val OFFSET: Long = -3L\n",
		"    const val LIMIT: ULong = 7UL\n",
		"    const val RATIO: Float = 0.5f\n",
		"    const val NAME: String = \"cost \\$5\"\n",
		"    val GROUP: GroupAddress = GroupAddress(2UL)\n\n",
		"    object Shapes {\n        val UNIT: Shape = Shape.Circle(1.5f)\n        val NONE: Shape = Shape.Empty\n    }\n",
	)
}

const counterSrc = `
#[id = "723ca727-6a66-43a7-bfcc-b8ad94eac9be"]
#[namespace = "counter"]
#[kotlin.package = "com.example.counter"]

signal fn counter() -> i32;
async fn say_hello(name: String) -> String;
fn reset();
`

func TestClient(t *testing.T) {
	out := generate(t, counterSrc)
	testutil.ExpectContains(t, out,
		"package com.example.counter\n\nimport com.techpaws.buffers.BytesReader\n",
		"import com.techpaws.runtime.BUFFER_STATUS_DATA\nimport com.techpaws.runtime.BufferKind\n",
		"import kotlinx.coroutines.CompletableDeferred\nimport kotlinx.coroutines.flow.MutableSharedFlow\nimport kotlinx.coroutines.flow.SharedFlow\n",
		"@Suppress(\"ClassName\")\ndata class __say_hello_rpc_args__(\n    val __method_id__: Long,\n    val name: String,\n) {",
		"class CounterRpcClient(\n    private val runtime: TechPawsRuntime,\n    private val addresses: GroupAddress,\n) {\n    private var methodId: Long = 0L\n",
		"private val readTasks = mutableListOf<ReadTask>()",
		"private val counterFlow = MutableSharedFlow<Int>(extraBufferCapacity = 64)\n    val counter: SharedFlow<Int> = counterFlow\n",
		"private val sayHelloCalls = mutableMapOf<Long, CompletableDeferred<String>>()",
		"    init {\n        readTasks.add(runtime.onRead(SCOPE_ID, addresses, 0, BufferKind.CLIENT) { reader -> readCounter(reader) })\n",
		"readTasks.add(runtime.onRead(SCOPE_ID, addresses, 1, BufferKind.CLIENT) { reader -> readSayHello(reader) })",
		"    fun disconnect() {\n        for (task in readTasks) {\n            task.cancel()\n        }\n        readTasks.clear()\n        for (deferred in sayHelloCalls.values) {\n            deferred.completeExceptionally(IllegalStateException(\"CounterRpcClient disconnected\"))\n        }\n        sayHelloCalls.clear()\n    }",
		"    suspend fun sayHello(name: String): String {\n        methodId = (methodId + 1) and Long.MAX_VALUE\n        val id = methodId\n        val deferred = CompletableDeferred<String>()\n        sayHelloCalls[id] = deferred\n",
		"val writer = runtime.writer(SCOPE_ID, addresses, 1, BufferKind.SERVER)",
		"writer.writeU8(BUFFER_STATUS_DATA)",
		"__say_hello_rpc_args__(__method_id__ = id, name = name).writeToBuffers(writer)\n        return deferred.await()\n",
		"    private fun readSayHello(reader: BytesReader) {\n        if (reader.readU8() != BUFFER_STATUS_DATA) {\n            return\n        }\n        val id = reader.readI64()\n        val result = reader.readString()\n        sayHelloCalls.remove(id)?.complete(result)\n    }",
		"counterFlow.tryEmit(reader.readI32())",
		"    fun reset() {\n",
		"runtime.loopSyncGroup(addresses)\n\n        val reader = runtime.reader(SCOPE_ID, addresses, 2, BufferKind.CLIENT)\n",
		"throw IllegalStateException(\"Empty reply for reset\")",
		"    companion object {\n        const val SCOPE_ID: String = \"723ca727-6a66-43a7-bfcc-b8ad94eac9be\"\n\n        fun registerRpc(runtime: TechPawsRuntime, addresses: GroupAddress): CounterRpcClient {\n            runtime.declareScope(SCOPE_ID)\n",
		"runtime.bind(SCOPE_ID, addresses, 0, PayloadSize.MEDIUM)",
		"runtime.bind(SCOPE_ID, addresses, 2, PayloadSize.ZERO)",
		"return CounterRpcClient(runtime, addresses)",
	)
}

func TestNestedOptionRejected(t *testing.T) {
	_, err := kotlin.Generate(testutil.MustParse(t, "struct Holder { x: Option<Option<u8>> }\n"), codegen.Options{})
	testutil.AssertErrorCode(t, 5000, err)

	_, err = kotlin.Generate(testutil.MustParse(t, "enum Slot { Filled(Vec<Option<Option<String>>>), Free }\n"), codegen.Options{})
	testutil.AssertErrorCode(t, 5000, err)

	generate(t, "struct Holder { x: Option<Vec<Option<u8>>> }\n")
}

func TestKeywordEscape(t *testing.T) {
	out := generate(t, "struct Item { object: u8 }\n")
	testutil.ExpectContains(t, out,
		"val `object`: UByte,",
		"writer.writeU8(this.`object`)",
		"return Item(`object` = 0U.toUByte())",
	)
}

func TestGenerateDeterministic(t *testing.T) {
	first := generate(t, counterSrc)
	testutil.ExpectNoDiff(t, first, generate(t, counterSrc))
	testutil.ExpectFalse(t, strings.Contains(first, "\n\n\n"))
	testutil.ExpectTrue(t, strings.HasPrefix(first, "// "+codegen.GeneratedHeader+"\n"))
}
