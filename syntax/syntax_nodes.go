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
	"strconv"
	"strings"
)

type Span struct {
	start, len uint32
}

func NewSpan(start, len uint32) Span {
	return Span{start, len}
}

func (s Span) Start() uint32 {
	return s.start
}

func (s Span) End() uint32 {
	return s.start + s.len
}

func (s Span) Len() uint32 {
	return s.len
}

func joinSpans(a, b Span) Span {
	return Span{a.start, b.End() - a.start}
}

// Header holds the attributes every declaration carries.
type Header struct {
	doc      []string
	position uint32
	explicit bool
	span     Span
}

func (h *Header) Doc() []string {
	return h.doc
}

// Position is the wire discriminant of a field or case, or the method
// address of a function.
func (h *Header) Position() uint32 {
	return h.position
}

// ExplicitPosition reports whether the author wrote a #[N] tag.
func (h *Header) ExplicitPosition() bool {
	return h.explicit
}

func (h *Header) Span() Span {
	return h.span
}

func (h *Header) header() *Header {
	return h
}

// Node is a top-level declaration: *Directive, *ConstBlock, *Struct, *Enum
// or *Fn.
type Node interface {
	Doc() []string
	Span() Span
	header() *Header
}

var (
	_ Node = (*Directive)(nil)
	_ Node = (*ConstBlock)(nil)
	_ Node = (*Struct)(nil)
	_ Node = (*Enum)(nil)
	_ Node = (*Fn)(nil)
)

type File struct {
	doc      []string
	nodes    []Node
	warnings []*Warning
}

// Doc returns the file-level //! comment lines.
func (f *File) Doc() []string {
	return f.doc
}

func (f *File) Nodes() []Node {
	return f.nodes
}

func (f *File) Warnings() []*Warning {
	return f.warnings
}

type LitKind uint8

const (
	LIT_STRING LitKind = iota
	LIT_INT
	LIT_FLOAT
	LIT_BOOL
	LIT_IDENT
)

func (k LitKind) String() string {
	switch k {
	case LIT_STRING:
		return "string"
	case LIT_INT:
		return "integer"
	case LIT_FLOAT:
		return "number"
	case LIT_BOOL:
		return "bool"
	default:
		return "identifier"
	}
}

type Literal struct {
	kind LitKind
	raw  string
	span Span

	neg bool
	mag uint64
}

func (l *Literal) Kind() LitKind {
	return l.kind
}

// Raw returns the literal as written, including quotes for strings.
func (l *Literal) Raw() string {
	return l.raw
}

func (l *Literal) Span() Span {
	return l.span
}

// Text returns the content of a string literal or the name of an
// identifier.
func (l *Literal) Text() string {
	if l.kind == LIT_STRING {
		return l.raw[1 : len(l.raw)-1]
	}
	return l.raw
}

func (l *Literal) Bool() bool {
	return l.raw == "true"
}

// Negative reports whether an integer literal is below zero.
func (l *Literal) Negative() bool {
	return l.neg
}

// Magnitude returns the absolute value of an integer literal.
func (l *Literal) Magnitude() uint64 {
	return l.mag
}

func (l *Literal) Int64() int64 {
	if l.neg {
		return -int64(l.mag)
	}
	return int64(l.mag)
}

func (l *Literal) Uint64() uint64 {
	return l.mag
}

// Decimal renders an integer literal in base 10.
func (l *Literal) Decimal() string {
	s := strconv.FormatUint(l.mag, 10)
	if l.neg {
		return "-" + s
	}
	return s
}

func (l *Literal) Float64() float64 {
	f, _ := strconv.ParseFloat(l.raw, 64)
	return f
}

func newIntLit(token string, hex bool, span Span) (*Literal, error) {
	digits := token
	neg := false
	if strings.HasPrefix(digits, "-") {
		neg = true
		digits = digits[1:]
	}
	base := 10
	if hex {
		base = 16
		digits = digits[2:]
	}
	mag, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return nil, errIntLitOutOfRange(token, span)
	}
	if neg && mag > 1<<63 {
		return nil, errIntLitOutOfRange(token, span)
	}
	if neg && mag == 0 {
		neg = false
	}
	return &Literal{kind: LIT_INT, raw: token, span: span, neg: neg, mag: mag}, nil
}

type Directive struct {
	Header
	name  string
	value *Literal
	group bool
	items []*DirectiveItem
}

func (d *Directive) Name() string {
	return d.name
}

// IsGroup reports whether the directive is a named group of items.
func (d *Directive) IsGroup() bool {
	return d.group
}

// Value of a single-value directive.
func (d *Directive) Value() *Literal {
	return d.value
}

func (d *Directive) Items() []*DirectiveItem {
	return d.items
}

type DirectiveItem struct {
	name  string
	value *Literal
	span  Span
}

func (it *DirectiveItem) Name() string {
	return it.name
}

// Value is nil for a bare flag item.
func (it *DirectiveItem) Value() *Literal {
	return it.value
}

func (it *DirectiveItem) Span() Span {
	return it.span
}

type ConstBlock struct {
	Header
	name  string
	items []ConstItem
}

func (b *ConstBlock) Name() string {
	return b.name
}

func (b *ConstBlock) Items() []ConstItem {
	return b.items
}

// ConstItem is either a *Const or a nested *ConstBlock.
type ConstItem interface {
	Name() string
	Doc() []string
	Span() Span
}

var (
	_ ConstItem = (*Const)(nil)
	_ ConstItem = (*ConstBlock)(nil)
)

type Const struct {
	Header
	name    string
	typ     *TypeID
	lit     *Literal
	variant *VariantLit
}

func (c *Const) Name() string {
	return c.name
}

func (c *Const) Type() *TypeID {
	return c.typ
}

// Literal is the value of a primitive constant, or nil for a variant
// constant.
func (c *Const) Literal() *Literal {
	return c.lit
}

func (c *Const) Variant() *VariantLit {
	return c.variant
}

// VariantLit is a constant value of the form Enum::Case, Enum::Case(...)
// or Enum::Case { ... }.
type VariantLit struct {
	enum   string
	kase   string
	style  CaseStyle
	args   []*Literal
	fields []*VariantFieldLit
	span   Span

	resolved *Case
}

func (v *VariantLit) Enum() string {
	return v.enum
}

func (v *VariantLit) Case() string {
	return v.kase
}

func (v *VariantLit) Style() CaseStyle {
	return v.style
}

func (v *VariantLit) Args() []*Literal {
	return v.args
}

func (v *VariantLit) Fields() []*VariantFieldLit {
	return v.fields
}

// Resolved returns the enum case the literal refers to.
func (v *VariantLit) Resolved() *Case {
	return v.resolved
}

type VariantFieldLit struct {
	name  string
	value *Literal
}

func (f *VariantFieldLit) Name() string {
	return f.name
}

func (f *VariantFieldLit) Value() *Literal {
	return f.value
}

type Struct struct {
	Header
	name        string
	fields      []*Field
	unit        bool
	emplace     bool
	intoBuffers bool
}

// NewStruct builds a struct outside of any source file, numbering the
// fields in order.
func NewStruct(name string, fields []*Field) *Struct {
	s := &Struct{name: name, fields: fields}
	for ii, field := range fields {
		field.position = uint32(ii)
	}
	return s
}

func (s *Struct) Name() string {
	return s.name
}

func (s *Struct) Fields() []*Field {
	return s.fields
}

// Unit reports whether the struct was declared as `struct Name;`.
func (s *Struct) Unit() bool {
	return s.unit
}

func (s *Struct) Emplace() bool {
	return s.emplace
}

func (s *Struct) IntoBuffers() bool {
	return s.intoBuffers
}

// Field is a struct field, a case field, or a function argument. Tuple
// case fields have no name.
type Field struct {
	Header
	name string
	typ  *TypeID
}

func NewField(name string, typ *TypeID) *Field {
	return &Field{name: name, typ: typ}
}

func (f *Field) Name() string {
	return f.name
}

func (f *Field) Type() *TypeID {
	return f.typ
}

type CaseStyle uint8

const (
	CASE_UNIT CaseStyle = iota
	CASE_TUPLE
	CASE_NAMED
)

func (s CaseStyle) String() string {
	switch s {
	case CASE_UNIT:
		return "unit"
	case CASE_TUPLE:
		return "tuple"
	case CASE_NAMED:
		return "named"
	default:
		return fmt.Sprintf("CaseStyle(%d)", uint8(s))
	}
}

type Enum struct {
	Header
	name  string
	cases []*Case
}

func (e *Enum) Name() string {
	return e.name
}

func (e *Enum) Cases() []*Case {
	return e.cases
}

func (e *Enum) Case(name string) *Case {
	for _, c := range e.cases {
		if c.name == name {
			return c
		}
	}
	return nil
}

type Case struct {
	Header
	name   string
	style  CaseStyle
	fields []*Field
}

func (c *Case) Name() string {
	return c.name
}

func (c *Case) Style() CaseStyle {
	return c.style
}

func (c *Case) Fields() []*Field {
	return c.fields
}

type Fn struct {
	Header
	name   string
	args   []*Field
	ret    *TypeID
	signal bool
	async  bool
}

func (fn *Fn) Name() string {
	return fn.name
}

func (fn *Fn) Args() []*Field {
	return fn.args
}

// Return is nil for functions returning unit.
func (fn *Fn) Return() *TypeID {
	return fn.ret
}

func (fn *Fn) Signal() bool {
	return fn.signal
}

func (fn *Fn) Async() bool {
	return fn.async
}
