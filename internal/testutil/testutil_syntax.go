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

package testutil

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"regexp"
	"testing"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

//go:embed testdata
var testdataFS embed.FS

func TestdataFS() (fs.FS, error) {
	return fs.Sub(testdataFS, "testdata")
}

type Diagnostic struct {
	code    uint32
	message string
	pattern *regexp.Regexp
}

func (d *Diagnostic) Code() uint32 {
	return d.code
}

func (d *Diagnostic) Message() string {
	return d.message
}

func (d *Diagnostic) MessagePattern() *regexp.Regexp {
	return d.pattern
}

// LoadDiagnostics reads the table of named error and warning codes.
func LoadDiagnostics(testdata fs.FS) (map[string]*Diagnostic, error) {
	type diagnostic struct {
		Code    uint32 `json:"code"`
		Message string `json:"message"`
		Pattern string `json:"message_pattern"`
	}

	jsonData, err := fs.ReadFile(testdata, "diagnostics.json")
	if err != nil {
		return nil, err
	}

	var raw map[string]diagnostic
	decoder := json.NewDecoder(bytes.NewReader(jsonData))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return nil, err
	}

	out := make(map[string]*Diagnostic, len(raw))
	codes := make(map[uint32]string, len(raw))
	for key, d := range raw {
		if d.Code == 0 {
			return nil, fmt.Errorf("diagnostic %q has no code", key)
		}
		if other, conflict := codes[d.Code]; conflict {
			return nil, fmt.Errorf("diagnostics %q and %q share code %d", key, other, d.Code)
		}
		codes[d.Code] = key

		var pattern *regexp.Regexp
		if d.Pattern != "" {
			pattern, err = regexp.Compile("(?i)" + d.Pattern)
			if err != nil {
				return nil, err
			}
		}
		out[key] = &Diagnostic{
			code:    d.Code,
			message: d.Message,
			pattern: pattern,
		}
	}
	return out, nil
}

func SpanOrDie(t *testing.T, raw any) syntax.Span {
	t.Helper()
	obj, ok := raw.(map[string]any)
	if !ok {
		t.Fatalf("invalid span %#v", raw)
	}
	start, err := obj["start"].(json.Number).Int64()
	AssertNoError(t, err)
	spanLen, err := obj["len"].(json.Number).Int64()
	AssertNoError(t, err)
	return syntax.NewSpan(uint32(start), uint32(spanLen))
}

// StrToken is a token rendered as its kind name and source text.
type StrToken struct {
	Kind    string
	Content string
}

func DumpTokens(src string) ([]StrToken, error) {
	tokens, err := syntax.Tokenize([]byte(src))
	if err != nil {
		return nil, err
	}
	var out []StrToken
	for ii := 0; ii < tokens.Len(); ii++ {
		token := tokens.At(ii)
		if token.Kind == syntax.T_EOF {
			break
		}
		out = append(out, StrToken{
			Kind:    token.Kind.String(),
			Content: tokens.Text(token),
		})
	}
	return out, nil
}

func MustParse(t *testing.T, src string) *syntax.File {
	t.Helper()
	file, err := syntax.Parse([]byte(src))
	AssertNoError(t, err)
	return file
}
