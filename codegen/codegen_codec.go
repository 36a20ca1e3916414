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
	"fmt"
	"strconv"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/ir"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

// Parameter names of generated codec functions.
const (
	ReaderVar = "reader"
	WriterVar = "writer"
	CountVar  = "count"
)

var (
	u32Type = syntax.IntegerType(false, 4)
	u64Type = syntax.IntegerType(false, 8)
)

// Codec synthesizes the bodies of read, write and skip functions. Every
// target shares one wire layout, so the statement trees are the same and
// only their rendering differs.
type Codec struct {
	file        *syntax.File
	names       *Namer
	refs        bool
	destructure bool
	fresh       map[string]int
	taken       map[string]bool
}

type CodecOption func(*Codec)

// RefBindings marks targets where pattern and loop bindings are
// references, so primitive values are dereferenced before being written.
func RefBindings() CodecOption {
	return func(c *Codec) { c.refs = true }
}

// DestructurePatterns marks targets that bind enum case fields in the
// case pattern instead of reading them from the matched value.
func DestructurePatterns() CodecOption {
	return func(c *Codec) { c.destructure = true }
}

func NewCodec(file *syntax.File, names *Namer, opts ...CodecOption) *Codec {
	c := &Codec{file: file, names: names}
	for _, opt := range opts {
		opt(c)
	}
	c.Begin()
	return c
}

// Begin starts a new function scope for local names.
func (c *Codec) Begin() {
	c.fresh = map[string]int{}
	c.taken = map[string]bool{
		ReaderVar: true,
		WriterVar: true,
		CountVar:  true,
	}
}

// Fresh returns a local variable name unused in the current scope.
func (c *Codec) Fresh(base string) string {
	for {
		n := c.fresh[base]
		c.fresh[base] = n + 1
		name := c.names.Value(base)
		if n > 0 {
			name += strconv.Itoa(n)
		}
		if !c.taken[name] {
			c.taken[name] = true
			return name
		}
	}
}

func (c *Codec) method(name string) string {
	return c.names.Method(name)
}

func (c *Codec) reader() ir.Expr {
	return ir.Ident(ReaderVar)
}

func (c *Codec) writer() ir.Expr {
	return ir.Ident(WriterVar)
}

func PrimitiveName(t *syntax.TypeID) string {
	switch t.Kind() {
	case syntax.TYPE_BOOL:
		return "bool"
	case syntax.TYPE_CHAR:
		return "char"
	case syntax.TYPE_NUMBER:
		return fmt.Sprintf("f%d", int(t.Width())*8)
	case syntax.TYPE_INTEGER:
		if t.Signed() {
			return fmt.Sprintf("i%d", int(t.Width())*8)
		}
		return fmt.Sprintf("u%d", int(t.Width())*8)
	}
	return ""
}

func u32Lit(v uint32) ir.Expr {
	return &ir.Int{Type: u32Type, Value: int64(v)}
}

func u64Lit(v int) ir.Expr {
	return &ir.Int{Type: u64Type, Value: int64(v)}
}

// Read returns an expression that decodes one value of type t.
func (c *Codec) Read(t *syntax.TypeID) ir.Expr {
	switch {
	case t.IsPrimitive():
		return ir.Method(c.reader(), c.method("read_"+PrimitiveName(t)))
	case t.IsString():
		return ir.Method(c.reader(), c.method("read_string"))
	case t.IsOption():
		return &ir.Ternary{
			Cond: ir.Method(c.reader(), c.method("read_bool")),
			Then: &ir.Some{Value: c.Read(t.Elem())},
			Else: &ir.Null{},
		}
	case t.IsVec():
		return &ir.Range{
			Count: ir.Method(c.reader(), c.method("read_u64")),
			Item:  c.Read(t.Elem()),
			Elem:  t.Elem(),
		}
	}
	return &ir.Call{
		Static: ir.TypeOf(t),
		Name:   c.method("read_from_buffers"),
		Args:   ir.Args(c.reader()),
	}
}

// Write returns statements that encode value. ref is set when value is
// a binding produced by a pattern or loop rather than a field access.
func (c *Codec) Write(t *syntax.TypeID, value ir.Expr, ref bool) []ir.Node {
	w := c.writer()
	switch {
	case t.IsPrimitive():
		if ref && c.refs {
			value = &ir.Deref{Value: value}
		}
		return []ir.Node{ir.Stmt(ir.Method(w, c.method("write_"+PrimitiveName(t)), value))}
	case t.IsString():
		if !ref && c.refs {
			value = &ir.Ref{Value: value}
		}
		return []ir.Node{ir.Stmt(ir.Method(w, c.method("write_string"), value))}
	case t.IsOption():
		bind := c.Fresh("inner")
		then := []ir.Node{ir.Stmt(ir.Method(w, c.method("write_bool"), &ir.Bool{Value: true}))}
		then = append(then, c.Write(t.Elem(), ir.Ident(bind), true)...)
		return []ir.Node{&ir.IfLet{
			Bind:  bind,
			Value: value,
			Then:  then,
			Else:  []ir.Node{ir.Stmt(ir.Method(w, c.method("write_bool"), &ir.Bool{Value: false}))},
		}}
	case t.IsVec():
		item := c.Fresh("item")
		iterable := value
		if c.refs && !ref {
			iterable = &ir.Ref{Value: value}
		}
		return []ir.Node{
			ir.Stmt(ir.Method(w, c.method("write_u64"), &ir.Len{Value: value})),
			&ir.ForLoop{
				Var:      item,
				Iterable: iterable,
				Body:     c.Write(t.Elem(), ir.Ident(item), true),
			},
		}
	}
	return []ir.Node{ir.Stmt(ir.Method(value, c.method("write_to_buffers"), w))}
}

// Skip returns statements that advance the reader past one value of
// type t.
func (c *Codec) Skip(t *syntax.TypeID) []ir.Node {
	r := c.reader()
	skip := c.method("skip")
	switch {
	case t.IsPrimitive():
		return []ir.Node{ir.Stmt(ir.Method(r, skip, u64Lit(int(t.Width()))))}
	case t.IsString():
		n := c.Fresh("len")
		return []ir.Node{
			ir.Let(n, ir.Method(r, c.method("read_u64"))),
			ir.Stmt(ir.Method(r, skip, ir.Ident(n))),
		}
	case t.IsOption():
		return []ir.Node{&ir.If{
			Cond: ir.Method(r, c.method("read_bool")),
			Then: c.Skip(t.Elem()),
		}}
	case t.IsVec():
		n := c.Fresh("len")
		out := []ir.Node{ir.Let(n, ir.Method(r, c.method("read_u64")))}
		if elem := t.Elem(); elem.IsPrimitive() {
			var size ir.Expr = ir.Ident(n)
			if elem.Width() > 1 {
				size = &ir.Binary{Op: "*", Left: size, Right: u64Lit(int(elem.Width()))}
			}
			return append(out, ir.Stmt(ir.Method(r, skip, size)))
		}
		return append(out, &ir.ForLoop{
			Var:   c.Fresh("i"),
			Count: ir.Ident(n),
			Body:  c.Skip(t.Elem()),
		})
	}
	return []ir.Node{ir.Stmt(&ir.Call{
		Static: ir.TypeOf(t),
		Name:   c.method("skip_in_buffers"),
		Args:   ir.Args(r, u64Lit(1)),
	})}
}

func (c *Codec) selfField(field *syntax.Field) ir.Expr {
	return ir.Field(&ir.Self{}, c.names.Value(field.Name()))
}

func (c *Codec) instance(s *syntax.Struct, value func(*syntax.TypeID) ir.Expr) ir.Expr {
	args := &ir.NamedArguments{}
	for _, field := range s.Fields() {
		args.Items = append(args.Items, ir.NamedArgument{
			Name:  c.names.Value(field.Name()),
			Value: value(field.Type()),
		})
	}
	return &ir.NewInstance{Type: ir.Named(c.names.Type(s.Name())), Args: args}
}

func (c *Codec) StructRead(s *syntax.Struct) []ir.Node {
	c.Begin()
	return []ir.Node{&ir.Return{Value: c.instance(s, c.Read)}}
}

func (c *Codec) StructWrite(s *syntax.Struct) []ir.Node {
	c.Begin()
	var out []ir.Node
	for _, field := range s.Fields() {
		out = append(out, c.Write(field.Type(), c.selfField(field), false)...)
	}
	return out
}

// StructSkip advances past `count` consecutive values. It is empty for
// structs without fields.
func (c *Codec) StructSkip(s *syntax.Struct) []ir.Node {
	c.Begin()
	if len(s.Fields()) == 0 {
		return nil
	}
	loopVar := c.Fresh("i")
	var body []ir.Node
	for _, field := range s.Fields() {
		body = append(body, c.Skip(field.Type())...)
	}
	return []ir.Node{&ir.ForLoop{Var: loopVar, Count: ir.Ident(CountVar), Body: body}}
}

// StructEmplace reads each field into the receiver.
func (c *Codec) StructEmplace(s *syntax.Struct) []ir.Node {
	c.Begin()
	var out []ir.Node
	for _, field := range s.Fields() {
		out = append(out, &ir.Set{Target: c.selfField(field), Value: c.Read(field.Type())})
	}
	return out
}

func (c *Codec) StructDefault(s *syntax.Struct) []ir.Node {
	c.Begin()
	return []ir.Node{&ir.Return{Value: c.instance(s, defaultOf)}}
}

func defaultOf(t *syntax.TypeID) ir.Expr {
	return &ir.Default{Type: t}
}

// TupleField names the n'th field of a tuple case where the target needs
// a name for it.
func TupleField(n int) string {
	return "v" + strconv.Itoa(n)
}

func (c *Codec) caseFieldName(field *syntax.Field, index int) string {
	if field.Name() == "" {
		return c.names.Value(TupleField(index))
	}
	return c.names.Value(field.Name())
}

// Variant builds an enum case value from per-field expressions.
func (c *Codec) Variant(e *syntax.Enum, kase *syntax.Case, value func(*syntax.TypeID) ir.Expr) *ir.NewVariant {
	v := &ir.NewVariant{
		Enum:  c.names.Type(e.Name()),
		Case:  c.names.Case(kase.Name()),
		Style: kase.Style(),
	}
	switch kase.Style() {
	case syntax.CASE_TUPLE:
		args := &ir.PositionalArguments{}
		for _, field := range kase.Fields() {
			args.Items = append(args.Items, value(field.Type()))
		}
		v.Args = args
	case syntax.CASE_NAMED:
		args := &ir.NamedArguments{}
		for ii, field := range kase.Fields() {
			args.Items = append(args.Items, ir.NamedArgument{
				Name:  c.caseFieldName(field, ii),
				Value: value(field.Type()),
			})
		}
		v.Args = args
	}
	return v
}

func (c *Codec) unknownDiscriminant(e *syntax.Enum) *ir.DefaultCase {
	return &ir.DefaultCase{Body: []ir.Node{
		&ir.Fatal{Message: "Unknown discriminant for enum " + e.Name()},
	}}
}

func (c *Codec) EnumRead(e *syntax.Enum) []ir.Node {
	c.Begin()
	d := c.Fresh("discriminant")
	sw := &ir.Switch{Subject: ir.Ident(d), Default: c.unknownDiscriminant(e)}
	for _, kase := range e.Cases() {
		sw.Cases = append(sw.Cases, &ir.Case{
			Pattern: u32Lit(kase.Position()),
			Body:    []ir.Node{&ir.Return{Value: c.Variant(e, kase, c.Read)}},
		})
	}
	return []ir.Node{ir.Let(d, ir.Method(c.reader(), c.method("read_u32"))), sw}
}

// MatchedValue is the name targets without destructuring give the value
// matched by a switch over an enum.
const MatchedValue = "value"

// EnumWrite gives each case its own scope, as every arm binds its own
// fields.
func (c *Codec) EnumWrite(e *syntax.Enum) []ir.Node {
	sw := &ir.Switch{Subject: &ir.Self{}, Bind: c.names.Value(MatchedValue)}
	for _, kase := range e.Cases() {
		c.Begin()
		c.taken[sw.Bind] = true
		pattern := &ir.VariantPattern{
			Enum:  c.names.Type(e.Name()),
			Case:  c.names.Case(kase.Name()),
			Style: kase.Style(),
		}
		var values []ir.Expr
		for ii, field := range kase.Fields() {
			name := c.caseFieldName(field, ii)
			pattern.Fields = append(pattern.Fields, name)
			if !c.destructure {
				values = append(values, ir.Field(ir.Ident(sw.Bind), name))
				continue
			}
			binding := name
			if c.taken[binding] {
				binding = c.Fresh(name + "_value")
			}
			c.taken[binding] = true
			pattern.Bindings = append(pattern.Bindings, binding)
			values = append(values, ir.Ident(binding))
		}
		body := []ir.Node{ir.Stmt(ir.Method(c.writer(), c.method("write_u32"), u32Lit(kase.Position())))}
		for ii, field := range kase.Fields() {
			body = append(body, c.Write(field.Type(), values[ii], c.destructure)...)
		}
		sw.Cases = append(sw.Cases, &ir.Case{Pattern: pattern, Body: body})
	}
	return []ir.Node{sw}
}

func (c *Codec) EnumSkip(e *syntax.Enum) []ir.Node {
	c.Begin()
	loopVar := c.Fresh("i")
	d := c.Fresh("discriminant")
	sw := &ir.Switch{Subject: ir.Ident(d), Default: c.unknownDiscriminant(e)}
	for _, kase := range e.Cases() {
		var body []ir.Node
		for _, field := range kase.Fields() {
			body = append(body, c.Skip(field.Type())...)
		}
		sw.Cases = append(sw.Cases, &ir.Case{Pattern: u32Lit(kase.Position()), Body: body})
	}
	return []ir.Node{&ir.ForLoop{
		Var:   loopVar,
		Count: ir.Ident(CountVar),
		Body:  []ir.Node{ir.Let(d, ir.Method(c.reader(), c.method("read_u32"))), sw},
	}}
}

// EnumDefault returns the first case, with default field values.
func (c *Codec) EnumDefault(e *syntax.Enum) []ir.Node {
	c.Begin()
	if len(e.Cases()) == 0 {
		return []ir.Node{&ir.Fatal{Message: "Enum " + e.Name() + " has no cases"}}
	}
	return []ir.Node{&ir.Return{Value: c.Variant(e, e.Cases()[0], defaultOf)}}
}
