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
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"testing"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/internal/testutil"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

var (
	testdata    fs.FS
	diagnostics map[string]*testutil.Diagnostic
)

func init() {
	var err error
	testdata, err = testutil.TestdataFS()
	if err != nil {
		panic(err)
	}
	diagnostics, err = testutil.LoadDiagnostics(testdata)
	if err != nil {
		panic(err)
	}
}

func TestTokens(t *testing.T) {
	t.Parallel()

	testsJSON, err := fs.ReadFile(testdata, "tokens.json")
	testutil.AssertNoError(t, err)

	tests := make(map[string][]map[string]any)
	decoder := json.NewDecoder(bytes.NewReader(testsJSON))
	decoder.UseNumber()
	testutil.AssertNoError(t, decoder.Decode(&tests))

	for ii, test := range tests["expect_ok"] {
		src := test["source"].(string)
		var tokens []testutil.StrToken
		for _, iface := range test["tokens"].([]any) {
			raw := iface.([]any)
			tokens = append(tokens, testutil.StrToken{
				Kind:    raw[0].(string),
				Content: raw[1].(string),
			})
		}
		t.Run(fmt.Sprintf("expect_ok/%d", ii), func(t *testing.T) {
			t.Logf("source: %q", src)
			got, err := testutil.DumpTokens(src)
			testutil.AssertNoError(t, err)
			testutil.ExpectSliceEq(t, tokens, got)
		})
	}

	for ii, test := range tests["expect_err"] {
		t.Run(fmt.Sprintf("expect_err/%d", ii), func(t *testing.T) {
			testTokensErr(t, test)
		})
	}
}

func testTokensErr(t *testing.T, test map[string]any) {
	src := test["source"].(string)
	t.Logf("source: %q", src)

	errorName := test["error"].(string)
	expectErr, ok := diagnostics[errorName]
	if !ok {
		t.Fatalf("unknown diagnostic name %q", errorName)
	}

	_, err := syntax.Tokenize([]byte(src))
	testutil.AssertError(t, err)

	lexErr := err.(*syntax.Error)
	testutil.ExpectEq(t, expectErr.Code(), lexErr.Code())
	if pattern := expectErr.MessagePattern(); pattern != nil {
		testutil.ExpectMatch(t, pattern, lexErr.Message())
	} else if message := expectErr.Message(); message != "" {
		testutil.ExpectEq(t, message, lexErr.Message())
	}

	expectSpan := testutil.SpanOrDie(t, test["error_span"])
	testutil.ExpectEq(t, expectSpan, lexErr.Span())
}

func TestTokensPastEnd(t *testing.T) {
	tokens, err := syntax.Tokenize([]byte("x"))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 2, tokens.Len())
	testutil.ExpectEq(t, syntax.T_IDENT, tokens.At(0).Kind)
	testutil.ExpectEq(t, syntax.T_EOF, tokens.At(1).Kind)
	testutil.ExpectEq(t, syntax.T_EOF, tokens.At(100).Kind)
}

func TestTokensBlankLine(t *testing.T) {
	src := "/// a\n\nstruct X;\n// comment\nstruct Y;\n  \nstruct Z;"
	tokens, err := syntax.Tokenize([]byte(src))
	testutil.AssertNoError(t, err)

	var blank []bool
	for ii := 0; ii < tokens.Len(); ii++ {
		if token := tokens.At(ii); token.Kind == syntax.T_STRUCT {
			blank = append(blank, token.BlankLineBefore())
		}
	}
	testutil.ExpectSliceEq(t, []bool{true, false, true}, blank)
}

func TestTokensInvalidUtf8(t *testing.T) {
	_, err := syntax.Tokenize([]byte("ab\xffc"))
	testutil.AssertErrorCode(t, diagnostics["invalid_utf8"].Code(), err)
	testutil.ExpectEq(t, syntax.NewSpan(2, 1), err.(*syntax.Error).Span())
}

func TestDocText(t *testing.T) {
	testutil.ExpectEq(t, "hello", syntax.DocText("/// hello"))
	testutil.ExpectEq(t, " indented", syntax.DocText("///  indented"))
	testutil.ExpectEq(t, "", syntax.DocText("///"))
	testutil.ExpectEq(t, "file", syntax.DocText("//! file"))
}
