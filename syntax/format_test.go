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

const canonicalSrc = `//! Counter service.

#[id = "723ca727-6a66-43a7-bfcc-b8ad94eac9be"]
#[namespace = "counter"]
#[swift(import = "Combine")]

/// A point.
struct Point {
    #[0] x: f32,
    #[1] y: f32,
}

struct Empty;

#[emplace]
struct Buffer {
    data: Vec<u8>,
    label: Option<String>,
}

enum Shape {
    #[1] Circle(f32),
    #[2] Square {
        side: f32,
    },
    Nothing,
}

const Limits {
    max: u32 = 10;
    scale: f64 = -1.5e3;
    const Nested {
        flag: bool = false;
        shape: Shape = Shape::Square { side: 2.0 };
    }
}

signal fn counter() -> i32;

async fn say_hello(name: String) -> String;

fn reset(point: Point, shapes: Vec<Shape>);
`

func TestFormatCanonical(t *testing.T) {
	file := testutil.MustParse(t, canonicalSrc)
	testutil.ExpectNoDiff(t, canonicalSrc, syntax.Format(file))
}

func TestFormatIdempotent(t *testing.T) {
	file := testutil.MustParse(t, `
struct   Point{x:f32,y:f32}
enum E{A,B(u8,u8,),C{v:i64}}
fn ping ( ) ;
#[id="x"] #[namespace="svc"]
`)
	once := syntax.Format(file)
	again := syntax.Format(testutil.MustParse(t, once))
	testutil.ExpectNoDiff(t, once, again)
}

// The tokens of a canonical file survive a format round-trip.
func TestFormatTokenRoundTrip(t *testing.T) {
	want, err := testutil.DumpTokens(canonicalSrc)
	testutil.AssertNoError(t, err)

	file := testutil.MustParse(t, canonicalSrc)
	got, err := testutil.DumpTokens(syntax.Format(file))
	testutil.AssertNoError(t, err)

	testutil.ExpectEq(t, len(want), len(got))
	for ii := range want {
		if ii < len(got) && want[ii] != got[ii] {
			t.Fatalf("token %d: want %v, got %v", ii, want[ii], got[ii])
		}
	}
}
