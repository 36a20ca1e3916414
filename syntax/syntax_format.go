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
	"fmt"
	"strings"
)

// Format renders a file in canonical IDL layout. Ordinary comments are
// not preserved.
func Format(file *File) string {
	f := &formatter{}
	for _, line := range file.doc {
		f.doc("//!", line)
	}
	if len(file.doc) > 0 && len(file.nodes) > 0 {
		f.buf.WriteString("\n")
	}
	var prev Node
	for _, node := range file.nodes {
		if prev != nil {
			_, prevDirective := prev.(*Directive)
			_, directive := node.(*Directive)
			if !prevDirective || !directive {
				f.buf.WriteString("\n")
			}
		}
		f.node(node)
		prev = node
	}
	return f.buf.String()
}

type formatter struct {
	buf    strings.Builder
	indent int
}

func (f *formatter) line(s string) {
	f.buf.WriteString(strings.Repeat("    ", f.indent))
	f.buf.WriteString(s)
	f.buf.WriteString("\n")
}

func (f *formatter) linef(format string, a ...any) {
	f.line(fmt.Sprintf(format, a...))
}

func (f *formatter) doc(marker, text string) {
	if text == "" {
		f.line(marker)
	} else {
		f.line(marker + " " + text)
	}
}

func (f *formatter) docs(lines []string) {
	for _, line := range lines {
		f.doc("///", line)
	}
}

func (f *formatter) node(node Node) {
	f.docs(node.Doc())
	switch node := node.(type) {
	case *Directive:
		f.directive(node)
	case *ConstBlock:
		f.constBlock(node)
	case *Struct:
		f.structDecl(node)
	case *Enum:
		f.enumDecl(node)
	case *Fn:
		f.fn(node)
	}
}

func (f *formatter) directive(d *Directive) {
	if !d.group {
		f.linef("#[%s = %s]", d.name, d.value.raw)
		return
	}
	items := make([]string, len(d.items))
	for ii, item := range d.items {
		if item.value == nil {
			items[ii] = item.name
		} else {
			items[ii] = item.name + " = " + item.value.raw
		}
	}
	f.linef("#[%s(%s)]", d.name, strings.Join(items, ", "))
}

func (f *formatter) constBlock(block *ConstBlock) {
	f.linef("const %s {", block.name)
	f.indent++
	for _, item := range block.items {
		f.docs(item.Doc())
		switch item := item.(type) {
		case *ConstBlock:
			f.constBlock(item)
		case *Const:
			f.linef("%s: %s = %s;", item.name, item.typ, formatConstValue(item))
		}
	}
	f.indent--
	f.line("}")
}

func formatConstValue(c *Const) string {
	if c.lit != nil {
		return c.lit.raw
	}
	v := c.variant
	name := v.enum + "::" + v.kase
	switch v.style {
	case CASE_TUPLE:
		args := make([]string, len(v.args))
		for ii, arg := range v.args {
			args[ii] = arg.raw
		}
		return name + "(" + strings.Join(args, ", ") + ")"
	case CASE_NAMED:
		fields := make([]string, len(v.fields))
		for ii, field := range v.fields {
			fields[ii] = field.name + ": " + field.value.raw
		}
		return name + " { " + strings.Join(fields, ", ") + " }"
	}
	return name
}

func positionPrefix(hdr *Header) string {
	if !hdr.explicit {
		return ""
	}
	return fmt.Sprintf("#[%d] ", hdr.position)
}

func (f *formatter) fields(fields []*Field) {
	for _, field := range fields {
		f.docs(field.doc)
		f.linef("%s%s: %s,", positionPrefix(&field.Header), field.name, field.typ)
	}
}

func (f *formatter) structDecl(s *Struct) {
	if s.emplace {
		f.line("#[emplace]")
	}
	if s.intoBuffers {
		f.line("#[into_buffers]")
	}
	if s.unit {
		f.linef("struct %s;", s.name)
		return
	}
	if len(s.fields) == 0 {
		f.linef("struct %s {}", s.name)
		return
	}
	f.linef("struct %s {", s.name)
	f.indent++
	f.fields(s.fields)
	f.indent--
	f.line("}")
}

func (f *formatter) enumDecl(e *Enum) {
	f.linef("enum %s {", e.name)
	f.indent++
	for _, c := range e.cases {
		f.docs(c.doc)
		prefix := positionPrefix(&c.Header) + c.name
		switch c.style {
		case CASE_UNIT:
			f.line(prefix + ",")
		case CASE_TUPLE:
			types := make([]string, len(c.fields))
			for ii, field := range c.fields {
				types[ii] = field.typ.String()
			}
			f.linef("%s(%s),", prefix, strings.Join(types, ", "))
		case CASE_NAMED:
			if len(c.fields) == 0 {
				f.line(prefix + " {},")
				continue
			}
			f.line(prefix + " {")
			f.indent++
			f.fields(c.fields)
			f.indent--
			f.line("},")
		}
	}
	f.indent--
	f.line("}")
}

func (f *formatter) fn(fn *Fn) {
	var buf strings.Builder
	if fn.signal {
		buf.WriteString("signal ")
	}
	if fn.async {
		buf.WriteString("async ")
	}
	buf.WriteString("fn ")
	buf.WriteString(fn.name)
	buf.WriteString("(")
	for ii, arg := range fn.args {
		if ii > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(arg.name)
		buf.WriteString(": ")
		buf.WriteString(arg.typ.String())
	}
	buf.WriteString(")")
	if fn.ret != nil {
		buf.WriteString(" -> ")
		buf.WriteString(fn.ret.String())
	}
	buf.WriteString(";")
	f.line(buf.String())
}
