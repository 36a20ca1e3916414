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

package main

import (
	"encoding/json"
	"testing"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/internal/plugin"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/internal/testutil"
)

func TestHandle(t *testing.T) {
	file := testutil.MustParse(t, "struct Point {\n    x: f32,\n    y: f32,\n}\n")
	req := plugin.NewRequest(file, nil, []string{"schema", "point.tpb"})

	resp := handle(req)
	testutil.ExpectEq(t, "", resp.Error)
	if len(resp.Files) != 1 {
		t.Fatalf("expected one output file, got %d", len(resp.Files))
	}
	testutil.ExpectSliceEq(t, []string{"point.tpb"}, resp.Files[0].Path)
	testutil.ExpectEq(t, req.Formatted, resp.Files[0].Content)
	testutil.ExpectContains(t, resp.Files[0].Content, "struct Point")
}

func TestHandleOptions(t *testing.T) {
	file := testutil.MustParse(t, "struct Empty;\n")
	req := plugin.NewRequest(file, nil, nil)
	req.Options = map[string]string{
		"suffix": ".txt",
		"header": "formatted",
	}

	resp := handle(req)
	testutil.ExpectSliceEq(t, []string{"schema.tpb.txt"}, resp.Files[0].Path)
	testutil.ExpectContains(t, resp.Files[0].Content, "// formatted\n\nstruct Empty;")
}

func TestHandleJSON(t *testing.T) {
	buf, ok := handleJSON([]byte("{not json"))
	testutil.ExpectFalse(t, ok)

	var resp plugin.Response
	testutil.AssertNoError(t, json.Unmarshal(buf, &resp))
	testutil.ExpectContains(t, resp.Error, "decode request")
	testutil.ExpectEq(t, 0, len(resp.Files))
}
