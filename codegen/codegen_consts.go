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

package codegen

import (
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/ir"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

// ConstValue returns the value of a constant: a typed literal, or an enum
// case built from typed literals in declaration order.
func (c *Codec) ConstValue(konst *syntax.Const) ir.Expr {
	if lit := konst.Literal(); lit != nil {
		return &ir.Literal{Type: konst.Type(), Lit: lit, Const: true}
	}
	v := konst.Variant()
	e := c.file.Enum(v.Enum())
	kase := v.Resolved()
	given := make(map[string]*syntax.Literal, len(v.Fields()))
	for _, field := range v.Fields() {
		given[field.Name()] = field.Value()
	}
	next := 0
	return c.Variant(e, kase, func(t *syntax.TypeID) ir.Expr {
		field := kase.Fields()[next]
		var lit *syntax.Literal
		if kase.Style() == syntax.CASE_TUPLE {
			lit = v.Args()[next]
		} else {
			lit = given[field.Name()]
		}
		next += 1
		return &ir.Literal{Type: t, Lit: lit, Const: true}
	})
}

// ConstKind classifies the declared type of a constant.
type ConstKind uint8

const (
	CONST_PRIMITIVE ConstKind = iota
	CONST_STRING
	CONST_ADDRESS
	CONST_VARIANT
)

func ClassifyConst(target string, file *syntax.File, konst *syntax.Const) (ConstKind, error) {
	t := konst.Type()
	switch {
	case konst.Variant() != nil && file.Enum(t.ID()) != nil:
		return CONST_VARIANT, nil
	case t.IsPrimitive():
		return CONST_PRIMITIVE, nil
	case t.IsString():
		return CONST_STRING, nil
	case syntax.IsAddressType(t):
		return CONST_ADDRESS, nil
	}
	return 0, ErrUnsupportedConstType(target, konst.Name(), t)
}
