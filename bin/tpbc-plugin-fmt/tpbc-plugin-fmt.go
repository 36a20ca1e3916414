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

// tpbc-plugin-fmt is a codegen plugin that writes the schema back out in
// canonical form. It runs under tpbc as tpbc-plugin-fmt.wasm, or natively
// with a JSON request on stdin.
package main

//go:generate go run ../../internal/build --output=tpbc-plugin-fmt.wasm

import (
	"encoding/json"
	"fmt"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/internal/plugin"
)

const defaultFileName = "schema.tpb"

func handle(req *plugin.Request) *plugin.Response {
	if req.Formatted == "" {
		return &plugin.Response{Error: "request has no formatted schema"}
	}
	name := defaultFileName
	if n := len(req.SourcePath); n > 0 && req.SourcePath[n-1] != "" {
		name = req.SourcePath[n-1]
	}
	if suffix := req.Options["suffix"]; suffix != "" {
		name += suffix
	}
	content := req.Formatted
	if header := req.Options["header"]; header != "" {
		content = fmt.Sprintf("// %s\n\n%s", header, content)
	}
	return &plugin.Response{
		Files: []plugin.OutputFile{{
			Path:    []string{name},
			Content: content,
		}},
	}
}

// handleJSON decodes a request, runs it, and encodes the response. The
// boolean result is false when the response carries an error.
func handleJSON(requestBuf []byte) ([]byte, bool) {
	var req plugin.Request
	var resp *plugin.Response
	if err := json.Unmarshal(requestBuf, &req); err != nil {
		resp = &plugin.Response{Error: fmt.Sprintf("decode request: %v", err)}
	} else {
		resp = handle(&req)
	}
	buf, err := json.Marshal(resp)
	if err != nil {
		resp = &plugin.Response{Error: fmt.Sprintf("encode response: %v", err)}
		buf, _ = json.Marshal(resp)
	}
	return buf, resp.Error == ""
}
