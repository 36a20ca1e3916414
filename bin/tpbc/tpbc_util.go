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
	"errors"
	"os"
	"path/filepath"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/encoding/tpbbin"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

// fail reports err and returns the exit code for its kind. Errors found
// in the input itself exit with EXIT_PARSE, anything else with EXIT_IO.
func fail(err error) int {
	logger.Printf("[ERROR] %v", err)
	var (
		syntaxErr  *syntax.Error
		codegenErr *codegen.Error
		wireErr    *tpbbin.Error
	)
	switch {
	case errors.As(err, &syntaxErr),
		errors.As(err, &codegenErr),
		errors.As(err, &wireErr):
		return EXIT_PARSE
	}
	return EXIT_IO
}

func usage(format string, args ...any) int {
	logger.Printf("[ERROR] "+format, args...)
	return EXIT_USAGE
}

func warn(warnings []*syntax.Warning) {
	for _, w := range warnings {
		logger.Printf("[WARN ] %v", w)
	}
}

// writeOutput writes content to stdout when path is "-", otherwise
// replaces the file at path.
func writeOutput(path string, content []byte) error {
	if path == "-" {
		_, err := stdout.Write(content)
		return err
	}
	return writeFileAtomic(path, content)
}

// writeFileAtomic writes content to a temporary file next to path and
// renames it into place, so readers never observe a partial file.
func writeFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_, writeErr := tmp.Write(content)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func parseSchema(path string) (*syntax.File, []byte, int) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fail(err)
	}
	file, err := syntax.Parse(src)
	if err != nil {
		return nil, nil, fail(err)
	}
	return file, src, EXIT_OK
}
