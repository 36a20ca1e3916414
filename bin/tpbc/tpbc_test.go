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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/internal/testutil"
)

const pointSrc = `/// A point on the canvas.
struct Point {
    x: f32,
    y: f32,
}
`

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	prevStdout, prevLog := stdout, logger.Writer()
	stdout = &outBuf
	logger.SetOutput(&errBuf)
	t.Cleanup(func() {
		stdout = prevStdout
		logger.SetOutput(prevLog)
	})
	code := tpbcMain(context.Background(), args)
	return cliResult{code, outBuf.String(), errBuf.String()}
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	testutil.AssertNoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	testutil.AssertNoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	buf, err := os.ReadFile(path)
	testutil.AssertNoError(t, err)
	return string(buf)
}

func TestGenerateStdout(t *testing.T) {
	input := writeFile(t, filepath.Join(t.TempDir(), "point.tpb"), pointSrc)

	res := runCLI(t, "generate", "--input", input, "--output", "-", "--lang", "rust")
	testutil.ExpectEq(t, EXIT_OK, res.code)
	testutil.ExpectContains(t, res.stdout,
		"Code generated by tpbc. DO NOT EDIT.",
		"pub struct Point {",
	)
	testutil.ExpectEq(t, "", res.stderr)
}

func TestGenerateFile(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, filepath.Join(dir, "point.tpb"), pointSrc)
	output := filepath.Join(dir, "out", "kotlin", "Point.kt")

	res := runCLI(t, "generate", "-i", input, "-o", output, "-l", "kotlin")
	testutil.ExpectEq(t, EXIT_OK, res.code)
	testutil.ExpectEq(t, "", res.stdout)
	testutil.ExpectContains(t, readFile(t, output), "data class Point(")

	entries, err := os.ReadDir(filepath.Dir(output))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 1, len(entries))
}

func TestGenerateIndent(t *testing.T) {
	input := writeFile(t, filepath.Join(t.TempDir(), "point.tpb"), pointSrc)

	res := runCLI(t, "generate", "-i", input, "-o", "-", "-l", "swift", "--indent", "2")
	testutil.ExpectEq(t, EXIT_OK, res.code)
	testutil.ExpectContains(t, res.stdout, "\n  public var x: Float")
}

func TestGenerateWarnings(t *testing.T) {
	input := writeFile(t, filepath.Join(t.TempDir(), "point.tpb"), "#[bogus]\n"+pointSrc)

	res := runCLI(t, "generate", "-i", input, "-o", "-", "-l", "dart")
	testutil.ExpectEq(t, EXIT_OK, res.code)
	testutil.ExpectContains(t, res.stderr, "tpbc: [WARN ] W4001: ")
}

func TestGenerateParseError(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, filepath.Join(dir, "broken.tpb"), "struct Point {\n    x: f32\n")
	output := filepath.Join(dir, "Broken.swift")

	res := runCLI(t, "generate", "-i", input, "-o", output, "-l", "swift")
	testutil.ExpectEq(t, EXIT_PARSE, res.code)
	testutil.ExpectMatch(t, `^tpbc: \[ERROR\] E2\d{3}: `, res.stderr)
	testutil.ExpectEq(t, 1, strings.Count(res.stderr, "\n"))

	_, err := os.Stat(output)
	testutil.ExpectTrue(t, os.IsNotExist(err))
}

func TestGenerateMissingInput(t *testing.T) {
	res := runCLI(t, "generate", "-i", filepath.Join(t.TempDir(), "missing.tpb"), "-o", "-", "-l", "rust")
	testutil.ExpectEq(t, EXIT_IO, res.code)
}

func TestUsageErrors(t *testing.T) {
	input := writeFile(t, filepath.Join(t.TempDir(), "point.tpb"), pointSrc)

	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"compile"}},
		{"unknown flag", []string{"generate", "--bogus"}},
		{"unknown lang", []string{"generate", "-i", input, "-o", "-", "-l", "cobol"}},
		{"missing output", []string{"generate", "-i", input, "-l", "rust"}},
		{"missing input", []string{"generate", "-o", "-", "-l", "rust"}},
		{"yaml without config", []string{"yaml"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			res := runCLI(t, test.args...)
			testutil.ExpectEq(t, EXIT_USAGE, res.code)
			testutil.ExpectEq(t, "", res.stdout)
		})
	}
}

func TestYaml(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "schema", "point.tpb"), pointSrc)
	config := writeFile(t, filepath.Join(dir, "tpbc.yaml"), `
rust:
  - src: schema/point.tpb
    dest: gen/rust/point.rs
kotlin:
  - src: schema/point.tpb
    dest: gen/kotlin/Point.kt
dart:
  - src: schema/point.tpb
    dest: gen/dart/point.dart
`)

	res := runCLI(t, "yaml", config)
	testutil.ExpectEq(t, EXIT_OK, res.code)
	testutil.ExpectContains(t, readFile(t, filepath.Join(dir, "gen", "rust", "point.rs")), "pub struct Point")
	testutil.ExpectContains(t, readFile(t, filepath.Join(dir, "gen", "kotlin", "Point.kt")), "data class Point(")
	testutil.ExpectContains(t, readFile(t, filepath.Join(dir, "gen", "dart", "point.dart")), "final class Point {")
}

func TestYamlAbortsBeforeWriting(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "point.tpb"), pointSrc)
	writeFile(t, filepath.Join(dir, "broken.tpb"), "enum {")
	config := writeFile(t, filepath.Join(dir, "tpbc.yaml"), `
rust:
  - src: point.tpb
    dest: point.rs
swift:
  - src: broken.tpb
    dest: Broken.swift
`)

	res := runCLI(t, "yaml", config)
	testutil.ExpectEq(t, EXIT_PARSE, res.code)
	_, err := os.Stat(filepath.Join(dir, "point.rs"))
	testutil.ExpectTrue(t, os.IsNotExist(err))
}

func TestYamlUnknownKey(t *testing.T) {
	config := writeFile(t, filepath.Join(t.TempDir(), "tpbc.yaml"), "cobol:\n  - src: a.tpb\n    dest: a.cbl\n")

	res := runCLI(t, "yaml", config)
	testutil.ExpectEq(t, EXIT_PARSE, res.code)
	testutil.ExpectContains(t, res.stderr, "cobol")
}

func TestYamlMissingConfig(t *testing.T) {
	res := runCLI(t, "yaml", filepath.Join(t.TempDir(), "missing.yaml"))
	testutil.ExpectEq(t, EXIT_IO, res.code)
}

func TestFormat(t *testing.T) {
	input := writeFile(t, filepath.Join(t.TempDir(), "point.tpb"), "struct   Point{x:f32,y:f32}")

	res := runCLI(t, "fmt", "-i", input)
	testutil.ExpectEq(t, EXIT_OK, res.code)
	testutil.ExpectNoDiff(t, "struct Point {\n    x: f32,\n    y: f32,\n}\n", res.stdout)
}

func TestDecode(t *testing.T) {
	input := writeFile(t, filepath.Join(t.TempDir(), "point.tpb"), pointSrc)

	res := runCLI(t, "decode", "-i", input, "-t", "Point", "--hex", "0000803f 00000040")
	testutil.ExpectEq(t, EXIT_OK, res.code)
	testutil.ExpectEq(t, "x = 1\ny = 2\n", res.stdout)
}

func TestDecodeTrailingBytes(t *testing.T) {
	input := writeFile(t, filepath.Join(t.TempDir(), "point.tpb"), pointSrc)

	res := runCLI(t, "decode", "-i", input, "-t", "Point", "--hex", "0000803f0000004000")
	testutil.ExpectEq(t, EXIT_PARSE, res.code)
	testutil.ExpectContains(t, res.stderr, "E600")
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, filepath.Join(dir, "point.tpb"), pointSrc)
	data := writeFile(t, filepath.Join(dir, "point.bin"), "\x00\x00\x80\x3f\x00\x00\x00\x40")

	res := runCLI(t, "decode", "-i", input, "-t", "Point", "--file", data)
	testutil.ExpectEq(t, EXIT_OK, res.code)
	testutil.ExpectEq(t, "x = 1\ny = 2\n", res.stdout)
}

func TestPluginNotFound(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, filepath.Join(dir, "point.tpb"), pointSrc)

	res := runCLI(t, "plugin", "-i", input, "-o", filepath.Join(dir, "out"), "-n", "fmt", "--plugin-path", dir)
	testutil.ExpectEq(t, EXIT_IO, res.code)
	testutil.ExpectContains(t, res.stderr, "tpbc-plugin-fmt.wasm not found")
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b.txt")
	testutil.AssertNoError(t, writeFileAtomic(path, []byte("one")))
	testutil.AssertNoError(t, writeFileAtomic(path, []byte("two")))
	testutil.ExpectEq(t, "two", readFile(t, path))

	entries, err := os.ReadDir(filepath.Dir(path))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 1, len(entries))
}
