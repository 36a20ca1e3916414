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

// Package codegen holds what the target generators share: naming,
// codec and RPC synthesis over the ir package.
package codegen

import (
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

// GeneratedHeader opens every generated file.
const GeneratedHeader = "Code generated by tpbc. DO NOT EDIT."

type Options struct {
	// IndentSize overrides the target's default indentation width.
	IndentSize int
}

func (o Options) Indent(fallback int) int {
	if o.IndentSize > 0 {
		return o.IndentSize
	}
	return fallback
}

// CheckNames rejects names that the target cannot keep distinct.
func CheckNames(target string, file *syntax.File, names *Namer) error {
	scope := func(convert func(string) string, items []named) error {
		seen := make(map[string]string, len(items))
		for _, item := range items {
			if item.name == "" {
				continue
			}
			if Reserved(item.name) {
				return errReservedName(item.name, item.span)
			}
			converted := convert(item.name)
			if prev, ok := seen[converted]; ok {
				return errNameCollision(target, prev, item.name, converted, item.span)
			}
			seen[converted] = item.name
		}
		return nil
	}

	var types []named
	for _, s := range file.Structs() {
		types = append(types, named{s.Name(), s.Span()})
		if err := scope(names.Value, fieldNames(s.Fields())); err != nil {
			return err
		}
	}
	for _, e := range file.Enums() {
		types = append(types, named{e.Name(), e.Span()})
		var cases []named
		for _, kase := range e.Cases() {
			cases = append(cases, named{kase.Name(), kase.Span()})
			if err := scope(names.Value, fieldNames(kase.Fields())); err != nil {
				return err
			}
		}
		if err := scope(names.Case, cases); err != nil {
			return err
		}
	}
	if err := scope(names.Type, types); err != nil {
		return err
	}

	var fns []named
	for _, fn := range file.Fns() {
		fns = append(fns, named{fn.Name(), fn.Span()})
		if err := scope(names.Value, fieldNames(fn.Args())); err != nil {
			return err
		}
	}
	return scope(names.Value, fns)
}

type named struct {
	name string
	span syntax.Span
}

func fieldNames(fields []*syntax.Field) []named {
	out := make([]named, len(fields))
	for ii, field := range fields {
		out[ii] = named{field.Name(), field.Span()}
	}
	return out
}

// DeclaredType reports whether t names a struct or enum of the file.
func DeclaredType(file *syntax.File, t *syntax.TypeID) bool {
	if t.Kind() != syntax.TYPE_OTHER {
		return false
	}
	return file.Struct(t.ID()) != nil || file.Enum(t.ID()) != nil
}

// UsedTypes returns the ids of every nominal and generic type the file
// refers to.
func UsedTypes(file *syntax.File) map[string]bool {
	used := map[string]bool{}
	var visit func(t *syntax.TypeID)
	visit = func(t *syntax.TypeID) {
		if t == nil {
			return
		}
		if id := t.ID(); id != "" {
			used[id] = true
		}
		for _, arg := range t.Args() {
			visit(arg)
		}
	}
	eachType(file, visit)
	return used
}

// CheckNestedOptions rejects Option<Option<T>> for targets whose nullable
// types cannot tell Some(None) apart from None.
func CheckNestedOptions(target string, file *syntax.File) error {
	var err error
	var visit func(t *syntax.TypeID)
	visit = func(t *syntax.TypeID) {
		if t == nil || err != nil {
			return
		}
		if elem := t.Elem(); t.IsOption() && elem != nil && elem.IsOption() {
			err = ErrUnsupportedType(target, t)
			return
		}
		for _, arg := range t.Args() {
			visit(arg)
		}
	}
	eachType(file, visit)
	return err
}

// eachType calls visit with every type written in the file, in
// declaration order.
func eachType(file *syntax.File, visit func(t *syntax.TypeID)) {
	fields := func(fields []*syntax.Field) {
		for _, field := range fields {
			visit(field.Type())
		}
	}
	var consts func(block *syntax.ConstBlock)
	consts = func(block *syntax.ConstBlock) {
		for _, item := range block.Items() {
			switch item := item.(type) {
			case *syntax.Const:
				visit(item.Type())
			case *syntax.ConstBlock:
				consts(item)
			}
		}
	}
	for _, node := range file.Nodes() {
		switch node := node.(type) {
		case *syntax.Struct:
			fields(node.Fields())
		case *syntax.Enum:
			for _, kase := range node.Cases() {
				fields(kase.Fields())
			}
		case *syntax.Fn:
			fields(node.Args())
			visit(node.Return())
		case *syntax.ConstBlock:
			consts(node)
		}
	}
}
