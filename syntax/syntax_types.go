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
	"strings"
)

type TypeKind uint8

const (
	TYPE_INTEGER TypeKind = iota
	TYPE_NUMBER
	TYPE_BOOL
	TYPE_CHAR
	TYPE_GENERIC
	TYPE_OTHER
)

func (k TypeKind) String() string {
	switch k {
	case TYPE_INTEGER:
		return "Integer"
	case TYPE_NUMBER:
		return "Number"
	case TYPE_BOOL:
		return "Bool"
	case TYPE_CHAR:
		return "Char"
	case TYPE_GENERIC:
		return "Generic"
	default:
		return "Other"
	}
}

// TypeID identifies the type of a field, argument, return value or
// constant. Widths are in bytes.
type TypeID struct {
	kind   TypeKind
	signed bool
	width  uint8
	id     string
	args   []*TypeID
	span   Span
}

func IntegerType(signed bool, width uint8) *TypeID {
	return &TypeID{kind: TYPE_INTEGER, signed: signed, width: width}
}

func NumberType(width uint8) *TypeID {
	return &TypeID{kind: TYPE_NUMBER, width: width}
}

func BoolType() *TypeID {
	return &TypeID{kind: TYPE_BOOL, width: 1}
}

func CharType() *TypeID {
	return &TypeID{kind: TYPE_CHAR, width: 4}
}

func GenericType(id string, args ...*TypeID) *TypeID {
	return &TypeID{kind: TYPE_GENERIC, id: id, args: args}
}

func OtherType(id string) *TypeID {
	return &TypeID{kind: TYPE_OTHER, id: id}
}

func (t *TypeID) Kind() TypeKind {
	return t.kind
}

func (t *TypeID) Signed() bool {
	return t.signed
}

// Width is the wire size in bytes of a primitive type, or zero.
func (t *TypeID) Width() uint8 {
	return t.width
}

// ID is the nominal name of a generic or other type.
func (t *TypeID) ID() string {
	return t.id
}

func (t *TypeID) Args() []*TypeID {
	return t.args
}

func (t *TypeID) Span() Span {
	return t.span
}

func (t *TypeID) IsOption() bool {
	return t.kind == TYPE_GENERIC && t.id == "Option"
}

func (t *TypeID) IsVec() bool {
	return t.kind == TYPE_GENERIC && t.id == "Vec"
}

func (t *TypeID) IsString() bool {
	return t.kind == TYPE_OTHER && t.id == "String"
}

// IsPrimitive reports whether the type has a fixed-width wire encoding.
func (t *TypeID) IsPrimitive() bool {
	switch t.kind {
	case TYPE_INTEGER, TYPE_NUMBER, TYPE_BOOL, TYPE_CHAR:
		return true
	}
	return false
}

// Elem returns the first type argument of a generic type.
func (t *TypeID) Elem() *TypeID {
	if len(t.args) == 0 {
		return nil
	}
	return t.args[0]
}

func (t *TypeID) Equal(other *TypeID) bool {
	if t.kind != other.kind || t.signed != other.signed || t.width != other.width || t.id != other.id {
		return false
	}
	if len(t.args) != len(other.args) {
		return false
	}
	for ii := range t.args {
		if !t.args[ii].Equal(other.args[ii]) {
			return false
		}
	}
	return true
}

// String renders the type in IDL syntax.
func (t *TypeID) String() string {
	var buf strings.Builder
	t.writeTo(&buf)
	return buf.String()
}

func (t *TypeID) writeTo(buf *strings.Builder) {
	switch t.kind {
	case TYPE_INTEGER:
		if t.signed {
			buf.WriteByte('i')
		} else {
			buf.WriteByte('u')
		}
		buf.WriteString(bitsOf(t.width))
	case TYPE_NUMBER:
		buf.WriteByte('f')
		buf.WriteString(bitsOf(t.width))
	case TYPE_BOOL:
		buf.WriteString("bool")
	case TYPE_CHAR:
		buf.WriteString("char")
	case TYPE_GENERIC:
		buf.WriteString(t.id)
		buf.WriteByte('<')
		for ii, arg := range t.args {
			if ii > 0 {
				buf.WriteString(", ")
			}
			arg.writeTo(buf)
		}
		buf.WriteByte('>')
	default:
		buf.WriteString(t.id)
	}
}

func bitsOf(width uint8) string {
	switch width {
	case 1:
		return "8"
	case 2:
		return "16"
	case 4:
		return "32"
	case 8:
		return "64"
	}
	return "?"
}

var primitiveTypes = map[string]func() *TypeID{
	"i8":   func() *TypeID { return IntegerType(true, 1) },
	"u8":   func() *TypeID { return IntegerType(false, 1) },
	"i32":  func() *TypeID { return IntegerType(true, 4) },
	"u32":  func() *TypeID { return IntegerType(false, 4) },
	"i64":  func() *TypeID { return IntegerType(true, 8) },
	"u64":  func() *TypeID { return IntegerType(false, 8) },
	"f32":  func() *TypeID { return NumberType(4) },
	"f64":  func() *TypeID { return NumberType(8) },
	"bool": BoolType,
	"char": CharType,
}

// Names that look like primitives but have no wire encoding.
var unsupportedPrimitives = map[string]bool{
	"i16":   true,
	"u16":   true,
	"i128":  true,
	"u128":  true,
	"isize": true,
	"usize": true,
	"f16":   true,
	"f128":  true,
}

// Nominal types the runtime provides as addresses; integer constants may
// be declared with these types.
var addressTypes = map[string]bool{
	"GroupAddress":          true,
	"CommandsBufferAddress": true,
}

func IsAddressType(t *TypeID) bool {
	return t.kind == TYPE_OTHER && addressTypes[t.id]
}

func resolveTypeName(name string, args []*TypeID, span Span) (*TypeID, error) {
	if ctor, ok := primitiveTypes[name]; ok {
		if len(args) > 0 {
			return nil, errGenericArity(name, 0, len(args), span)
		}
		t := ctor()
		t.span = span
		return t, nil
	}
	if unsupportedPrimitives[name] {
		return nil, errUnknownPrimitive(name, span)
	}
	if len(args) == 0 {
		if name == "Option" || name == "Vec" {
			return nil, errGenericArity(name, 1, 0, span)
		}
		return &TypeID{kind: TYPE_OTHER, id: name, span: span}, nil
	}
	if (name == "Option" || name == "Vec") && len(args) != 1 {
		return nil, errGenericArity(name, 1, len(args), span)
	}
	return &TypeID{kind: TYPE_GENERIC, id: name, args: args, span: span}, nil
}
