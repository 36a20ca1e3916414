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

// Package plugin defines the messages exchanged between tpbc and a
// WebAssembly codegen plugin.
//
// The host writes a JSON Request into memory obtained from the plugin's
// allocate export, then calls the generate export with the request's
// address and length and the address of a 4-byte slot. The plugin stores
// the address of its response in that slot; the response is a
// little-endian u32 length followed by a JSON Response. A non-zero return
// code means Response.Error is set.
package plugin

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

const (
	AllocateExport   = "tpbc_plugin_allocate"
	DeallocateExport = "tpbc_plugin_deallocate"
	GenerateExport   = "tpbc_plugin_generate"
)

type Request struct {
	// SourcePath is the schema path relative to the working directory,
	// split into components. It is empty for absolute paths.
	SourcePath   []string          `json:"source_path,omitempty"`
	Source       string            `json:"source"`
	Formatted    string            `json:"formatted"`
	Declarations []Declaration     `json:"declarations"`
	Options      map[string]string `json:"options,omitempty"`
}

type Declaration struct {
	Kind string   `json:"kind"`
	Name string   `json:"name"`
	Doc  []string `json:"doc,omitempty"`
}

type Response struct {
	Error string       `json:"error,omitempty"`
	Files []OutputFile `json:"files,omitempty"`
}

type OutputFile struct {
	Path    []string `json:"path"`
	Content string   `json:"content"`
}

// NewRequest describes a parsed schema to a plugin.
func NewRequest(file *syntax.File, src []byte, sourcePath []string) *Request {
	req := &Request{
		SourcePath: sourcePath,
		Source:     string(src),
		Formatted:  syntax.Format(file),
	}
	for _, node := range file.Nodes() {
		var decl Declaration
		switch node := node.(type) {
		case *syntax.ConstBlock:
			decl = Declaration{Kind: "const", Name: node.Name()}
		case *syntax.Struct:
			decl = Declaration{Kind: "struct", Name: node.Name()}
		case *syntax.Enum:
			decl = Declaration{Kind: "enum", Name: node.Name()}
		case *syntax.Fn:
			decl = Declaration{Kind: "fn", Name: node.Name()}
		default:
			continue
		}
		decl.Doc = node.Doc()
		req.Declarations = append(req.Declarations, decl)
	}
	return req
}

// CheckPath rejects output paths that could escape the output directory.
func CheckPath(parts []string) error {
	if len(parts) == 0 {
		return fmt.Errorf("Invalid output path %#v: empty", parts)
	}
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("Invalid output path %#v: bad path component %q", parts, part)
		}
		if part[0] == '/' || filepath.IsAbs(part) {
			return fmt.Errorf("Invalid output path %#v: absolute path component %q", parts, part)
		}
		if strings.ContainsAny(part, `/\`) {
			return fmt.Errorf("Invalid output path %#v: component %q contains a separator", parts, part)
		}
	}
	return nil
}

// SplitPath splits a relative path into its components.
func SplitPath(path string) []string {
	if filepath.IsAbs(path) {
		return nil
	}
	return strings.Split(filepath.ToSlash(filepath.Clean(path)), "/")
}
