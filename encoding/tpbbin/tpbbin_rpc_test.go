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

package tpbbin_test

import (
	"testing"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/encoding/tpbbin"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/internal/testutil"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

const counterSrc = `
#[id = "723ca727-6a66-43a7-bfcc-b8ad94eac9be"]
#[namespace = "counter"]

struct Point { x: f32, y: f32 }

signal fn counter() -> i32;
async fn say_hello(name: String) -> String;
fn reset();
fn flag() -> bool;
fn move_to(target: Point) -> Point;
`

func fnNamed(t *testing.T, file *syntax.File, name string) *syntax.Fn {
	t.Helper()
	for _, fn := range file.Fns() {
		if fn.Name() == name {
			return fn
		}
	}
	t.Fatalf("no fn %q", name)
	return nil
}

func TestSignalReply(t *testing.T) {
	file := testutil.MustParse(t, counterSrc)
	schema := tpbbin.NewSchema(file)
	counter := fnNamed(t, file, "counter")

	testutil.ExpectEq(t, uint32(0), counter.Position())
	testutil.ExpectEq(t, tpbbin.PAYLOAD_MEDIUM, schema.MethodPayloadSize(counter))

	reply, err := schema.EncodeReply(counter, 0, int32(5))
	testutil.AssertNoError(t, err)
	testutil.ExpectBytesEq(t, []byte{0xFF, 0x05, 0x00, 0x00, 0x00}, reply)

	_, result, err := schema.DecodeReply(counter, reply)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq[any](t, int32(5), result)

	request, err := schema.EncodeRequest(counter, 0, nil)
	testutil.AssertNoError(t, err)
	testutil.ExpectBytesEq(t, []byte{0xFF}, request)
}

func TestAsyncRequest(t *testing.T) {
	file := testutil.MustParse(t, counterSrc)
	schema := tpbbin.NewSchema(file)
	sayHello := fnNamed(t, file, "say_hello")

	request, err := schema.EncodeRequest(sayHello, 7, []tpbbin.FieldValue{{Name: "name", Value: "hi"}})
	testutil.AssertNoError(t, err)
	testutil.ExpectBytesEq(t, []byte{
		0xFF,
		0x07, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		'h', 'i',
	}, request)

	methodID, args, err := schema.DecodeRequest(sayHello, request)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, int64(7), methodID)
	testutil.ExpectEq(t, 1, len(args))
	testutil.ExpectEq[any](t, "hi", args[0].Value)

	reply, err := schema.EncodeReply(sayHello, 7, "hello, hi")
	testutil.AssertNoError(t, err)
	methodID, result, err := schema.DecodeReply(sayHello, reply)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, int64(7), methodID)
	testutil.ExpectEq[any](t, "hello, hi", result)

	testutil.ExpectEq(t, tpbbin.PAYLOAD_LARGE, schema.MethodPayloadSize(sayHello))
}

func TestPayloadSizes(t *testing.T) {
	file := testutil.MustParse(t, counterSrc)
	schema := tpbbin.NewSchema(file)

	testutil.ExpectEq(t, tpbbin.PAYLOAD_ZERO, schema.MethodPayloadSize(fnNamed(t, file, "reset")))
	testutil.ExpectEq(t, tpbbin.PAYLOAD_SMALL, schema.MethodPayloadSize(fnNamed(t, file, "flag")))
	testutil.ExpectEq(t, tpbbin.PAYLOAD_MEDIUM, schema.MethodPayloadSize(fnNamed(t, file, "move_to")))
	testutil.ExpectEq(t, "Medium", tpbbin.PAYLOAD_MEDIUM.String())
}

func TestReplyStatus(t *testing.T) {
	file := testutil.MustParse(t, counterSrc)
	schema := tpbbin.NewSchema(file)
	_, _, err := schema.DecodeReply(fnNamed(t, file, "flag"), []byte{0x00, 0x01})
	testutil.AssertErrorCode(t, 6007, err)
}
