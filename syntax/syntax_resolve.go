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

package syntax

import (
	"slices"
)

func validateFile(file *File) error {
	if err := checkDeclarationNames(file); err != nil {
		return err
	}

	fns := file.Fns()
	for ii, fn := range fns {
		fn.position = uint32(ii)
		if fn.signal && (len(fn.args) > 0 || fn.ret == nil) {
			return errSignalSignature(fn.name, fn.span)
		}
	}

	for _, name := range []string{"id", "namespace"} {
		var found []*Directive
		for _, d := range file.Directives() {
			if !d.group && d.name == name {
				found = append(found, d)
			}
		}
		if len(found) > 1 {
			return errDuplicateDirective(name, found[1].span)
		}
		if len(fns) == 0 {
			if len(found) == 1 {
				file.warnings = append(file.warnings, warnUnusedDirective(name, found[0].span))
			}
			continue
		}
		if len(found) == 0 {
			return errMissingDirective(name)
		}
		d := found[0]
		if d.value.kind != LIT_STRING {
			return errDirectiveValueType(name, "string", d.value.span)
		}
		if name == "namespace" && !isSnakeCase(d.value.Text()) {
			return errNamespaceNotSnakeCase(d.value.Text(), d.value.span)
		}
	}

	for _, block := range file.ConstBlocks() {
		if err := resolveConstBlock(file, block); err != nil {
			return err
		}
	}
	return nil
}

func checkDeclarationNames(file *File) error {
	types := make(map[string]bool)
	fns := make(map[string]bool)
	for _, node := range file.nodes {
		var name string
		var seen map[string]bool
		switch node := node.(type) {
		case *Struct:
			name, seen = node.name, types
		case *Enum:
			name, seen = node.name, types
		case *ConstBlock:
			name, seen = node.name, types
		case *Fn:
			name, seen = node.name, fns
		default:
			continue
		}
		if seen[name] {
			return errDuplicateDeclaration(name, node.Span())
		}
		seen[name] = true
	}
	return nil
}

func resolveConstBlock(file *File, block *ConstBlock) error {
	for _, item := range block.items {
		switch item := item.(type) {
		case *ConstBlock:
			if err := resolveConstBlock(file, item); err != nil {
				return err
			}
		case *Const:
			if item.variant != nil {
				if err := resolveVariant(file, item); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func resolveVariant(file *File, c *Const) error {
	v := c.variant
	enum := file.Enum(v.enum)
	if enum == nil {
		return errUnknownEnum(v.enum, v.span)
	}
	if c.typ.kind != TYPE_OTHER || c.typ.id != v.enum {
		return errVariantTypeMismatch(v.enum, c.typ, c.typ.span)
	}
	kase := enum.Case(v.kase)
	if kase == nil {
		return errUnknownCase(v.enum, v.kase, v.span)
	}
	if kase.style != v.style {
		return errVariantShape(v.enum, v.kase, kase.style, v.span)
	}

	switch kase.style {
	case CASE_TUPLE:
		if len(v.args) != len(kase.fields) {
			return errVariantShape(v.enum, v.kase, kase.style, v.span)
		}
		for ii, arg := range v.args {
			if !literalFits(kase.fields[ii].typ, arg) {
				return errConstTypeMismatch(c.name, kase.fields[ii].typ, arg)
			}
		}
	case CASE_NAMED:
		given := make(map[string]*Literal, len(v.fields))
		var unknown []string
		for _, field := range v.fields {
			given[field.name] = field.value
			if !slices.ContainsFunc(kase.fields, func(f *Field) bool { return f.name == field.name }) {
				unknown = append(unknown, field.name)
			}
		}
		var missing []string
		for _, field := range kase.fields {
			if _, ok := given[field.name]; !ok {
				missing = append(missing, field.name)
			}
		}
		if len(missing) > 0 || len(unknown) > 0 || len(given) != len(v.fields) {
			return errVariantFields(v.enum, v.kase, missing, unknown, v.span)
		}
		for _, field := range kase.fields {
			if lit := given[field.name]; !literalFits(field.typ, lit) {
				return errConstTypeMismatch(c.name, field.typ, lit)
			}
		}
	}
	v.resolved = kase
	return nil
}

func isSnakeCase(s string) bool {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return false
	}
	for ii := 0; ii < len(s); ii++ {
		c := s[ii]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			continue
		}
		if c == '_' && ii+1 < len(s) && s[ii+1] != '_' {
			continue
		}
		return false
	}
	return true
}
