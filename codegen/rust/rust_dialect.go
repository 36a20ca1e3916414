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

package rust

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/ir"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

const targetName = "Rust"

var keywords = []string{
	"as", "async", "await", "break", "const", "continue", "crate", "dyn",
	"else", "enum", "extern", "false", "fn", "for", "if", "impl", "in",
	"let", "loop", "match", "mod", "move", "mut", "pub", "ref", "return",
	"self", "Self", "static", "struct", "super", "trait", "true", "type",
	"unsafe", "use", "where", "while", "abstract", "become", "box", "do",
	"final", "macro", "override", "priv", "try", "typeof", "unsized",
	"virtual", "yield",
}

func newNamer() *codegen.Namer {
	return codegen.NewNamer(keywords, func(name string) string {
		return "r#" + name
	}, codegen.ValueStyle(codegen.Snake), codegen.ConstStyle(codegen.Screaming))
}

type dialect struct{}

func (dialect) Spacing() ir.Spacing {
	return ir.DeclarationSpacing().With(
		[2]ir.Kind{ir.KIND_CONST_FIELD, ir.KIND_OBJECT},
		[2]ir.Kind{ir.KIND_LINE, ir.KIND_CONST_FIELD},
	)
}

func (d dialect) Emit(p *ir.Printer, node ir.Node) {
	switch node := node.(type) {
	case *ir.DocComment:
		d.doc(p, node.Lines)
	case *ir.Struct:
		d.structDecl(p, node)
	case *ir.Enum:
		d.enumDecl(p, node)
	case *ir.Interface:
		d.doc(p, node.Doc)
		header := "pub trait " + node.Name
		if len(node.Extends) > 0 {
			header += ": " + strings.Join(node.Extends, " + ")
		}
		p.Block(header+" {", func() { p.EmitAll(node.Members) }, "}")
	case *ir.Object:
		d.doc(p, node.Doc)
		p.Block("pub mod "+node.Name+" {", func() { p.EmitAll(node.Members) }, "}")
	case *ir.Extension:
		header := "impl" + node.Generics + " "
		if node.Trait != "" {
			header += node.Trait + " for "
		}
		p.Block(header+node.Target+" {", func() { p.EmitAll(node.Members) }, "}")
	case *ir.ConstField:
		d.doc(p, node.Doc)
		p.Linef("pub const %s: %s = %s;", node.Name, d.constType(p, node.Type), p.Expr(node.Value))
	case *ir.StaticVarDeclaration:
		d.doc(p, node.Doc)
		p.Linef("pub static %s: %s = %s;", node.Name, d.typeRef(p, node.Type), p.Expr(node.Value))
	case *ir.VarDeclaration:
		d.let(p, node)
	case *ir.Func:
		d.fn(p, node)
	case *ir.Return:
		if node.Value == nil {
			p.Line("return;")
		} else {
			p.Line("return " + p.Expr(node.Value) + ";")
		}
	case *ir.Continue:
		p.Line("continue;")
	case *ir.ExprStatement:
		p.Line(p.Expr(node.Expr) + ";")
	case *ir.Set:
		p.Line(p.Expr(node.Target) + " = " + p.Expr(node.Value) + ";")
	case *ir.If:
		d.ifElse(p, "if "+p.Expr(node.Cond)+" {", node.Then, node.Else)
	case *ir.IfLet:
		if node.Case != "" {
			d.ifElse(p, fmt.Sprintf("if let %s(%s) = %s {", node.Case, node.Bind, p.Expr(node.Value)), node.Then, node.Else)
		} else {
			d.ifElse(p, fmt.Sprintf("if let Some(%s) = &%s {", node.Bind, p.Expr(node.Value)), node.Then, node.Else)
		}
	case *ir.ForLoop:
		if node.Count != nil {
			p.Block("for _ in 0.."+p.Expr(node.Count)+" {", func() { p.EmitAll(node.Body) }, "}")
		} else {
			p.Block("for "+node.Var+" in "+p.Expr(node.Iterable)+" {", func() { p.EmitAll(node.Body) }, "}")
		}
	case *ir.Switch:
		d.match(p, node)
	case *ir.TrailingCall:
		d.trailingCall(p, node)
	case *ir.Fatal:
		p.Linef("panic!(%s);", quote(node.Message))
	default:
		p.Fail(fmt.Errorf("rust: unsupported node %T", node))
	}
}

func (dialect) doc(p *ir.Printer, lines []string) {
	for _, line := range lines {
		p.Line(strings.TrimRight("/// "+line, " "))
	}
}

func (d dialect) structDecl(p *ir.Printer, node *ir.Struct) {
	d.doc(p, node.Doc)
	for _, attr := range node.Attributes {
		p.Line(attr)
	}
	if node.Unit {
		p.Linef("pub struct %s;", node.Name)
		return
	}
	if len(node.Fields) == 0 {
		p.Linef("pub struct %s {}", node.Name)
		return
	}
	p.Block("pub struct "+node.Name+" {", func() {
		for _, field := range node.Fields {
			d.doc(p, field.Doc)
			p.Linef("pub %s: %s,", field.Name, d.typeRef(p, field.Type))
		}
	}, "}")
}

func (d dialect) enumDecl(p *ir.Printer, node *ir.Enum) {
	d.doc(p, node.Doc)
	for _, attr := range node.Attributes {
		p.Line(attr)
	}
	if len(node.Cases) == 0 {
		p.Linef("pub enum %s {}", node.Name)
		return
	}
	p.Block("pub enum "+node.Name+" {", func() {
		for _, kase := range node.Cases {
			d.doc(p, kase.Doc)
			switch kase.Style {
			case syntax.CASE_UNIT:
				p.Line(kase.Name + ",")
			case syntax.CASE_TUPLE:
				types := make([]string, len(kase.Fields))
				for ii, field := range kase.Fields {
					types[ii] = d.typeRef(p, field.Type)
				}
				p.Linef("%s(%s),", kase.Name, strings.Join(types, ", "))
			case syntax.CASE_NAMED:
				p.Block(kase.Name+" {", func() {
					for _, field := range kase.Fields {
						p.Linef("%s: %s,", field.Name, d.typeRef(p, field.Type))
					}
				}, "},")
			}
		}
	}, "}")
}

func (d dialect) let(p *ir.Printer, node *ir.VarDeclaration) {
	decl := "let "
	if node.Mutable {
		decl += "mut "
	}
	decl += node.Name
	if !node.Type.IsZero() {
		decl += ": " + d.typeRef(p, node.Type)
	}
	if node.Value != nil {
		decl += " = " + p.Expr(node.Value)
	}
	p.Line(decl + ";")
}

func (d dialect) signature(p *ir.Printer, node *ir.Func) string {
	var buf strings.Builder
	if node.Public {
		buf.WriteString("pub ")
	}
	if node.Async {
		buf.WriteString("async ")
	}
	buf.WriteString("fn ")
	buf.WriteString(node.Name)
	buf.WriteString(node.Generics)
	buf.WriteByte('(')
	var args []string
	if node.Receiver != "" {
		args = append(args, node.Receiver)
	}
	for _, arg := range node.Args {
		args = append(args, arg.Name+": "+d.typeRef(p, arg.Type))
	}
	buf.WriteString(strings.Join(args, ", "))
	buf.WriteByte(')')
	if !node.Return.IsZero() {
		buf.WriteString(" -> ")
		buf.WriteString(d.typeRef(p, node.Return))
	}
	return buf.String()
}

func (d dialect) fn(p *ir.Printer, node *ir.Func) {
	d.doc(p, node.Doc)
	for _, annotation := range node.Annotations {
		p.Line(annotation)
	}
	sig := d.signature(p, node)
	if node.Abstract {
		p.Line(sig + ";")
		return
	}
	if len(node.Body) == 0 {
		p.Line(sig + " {}")
		return
	}
	p.Block(sig+" {", func() { d.body(p, node.Body) }, "}")
}

// body writes a function body, turning a final return into the tail
// expression.
func (d dialect) body(p *ir.Printer, body []ir.Node) {
	last := len(body) - 1
	if ret, ok := body[last].(*ir.Return); ok && ret.Value != nil {
		p.EmitAll(body[:last])
		if last > 0 {
			p.Blank()
		}
		p.Line(p.Expr(ret.Value))
		return
	}
	p.EmitAll(body)
}

func (d dialect) ifElse(p *ir.Printer, header string, then, otherwise []ir.Node) {
	p.Line(header)
	p.PushTab()
	p.EmitAll(then)
	p.PopTab()
	if len(otherwise) == 0 {
		p.Line("}")
		return
	}
	p.Line("} else {")
	p.PushTab()
	p.EmitAll(otherwise)
	p.PopTab()
	p.Line("}")
}

func (d dialect) match(p *ir.Printer, node *ir.Switch) {
	arm := func(pattern string, body []ir.Node) {
		if len(body) == 0 {
			p.Line(pattern + " => {}")
			return
		}
		p.Block(pattern+" => {", func() { p.EmitAll(body) }, "}")
	}
	p.Block("match "+p.Expr(node.Subject)+" {", func() {
		for _, kase := range node.Cases {
			arm(p.Expr(kase.Pattern), kase.Body)
		}
		if node.Default != nil {
			arm("_", node.Default.Body)
		}
	}, "}")
}

func (d dialect) trailingCall(p *ir.Printer, node *ir.TrailingCall) {
	call := p.Expr(node.Call)
	call = strings.TrimSuffix(call, ")")
	if !strings.HasSuffix(call, "(") {
		call += ", "
	}
	closure := "|" + strings.Join(node.Params, ", ") + "| {"
	if node.Move {
		closure = "move " + closure
	}
	if node.Async {
		closure = "async move {"
	}
	p.Block(call+closure, func() { p.EmitAll(node.Body) }, "});")
}

func (d dialect) Expr(p *ir.Printer, expr ir.Expr) string {
	switch e := expr.(type) {
	case *ir.Id:
		return e.Name
	case *ir.Self:
		return "self"
	case *ir.Verbatim:
		return e.Text
	case *ir.Call:
		return d.call(p, e)
	case *ir.ChainedCalls:
		return p.Join(e.Calls, ".")
	case *ir.FieldAccess:
		return p.Expr(e.Receiver) + "." + e.Field
	case *ir.Index:
		return p.Expr(e.Receiver) + "[" + p.Expr(e.Index) + "]"
	case *ir.NewInstance:
		return d.construct(p, d.typeRef(p, e.Type), e.Args)
	case *ir.NewVariant:
		return d.construct(p, e.Enum+"::"+e.Case, e.Args)
	case *ir.VariantPattern:
		return d.pattern(e)
	case *ir.PositionalArguments:
		return p.Join(e.Items, ", ")
	case *ir.NamedArguments:
		return d.namedArgs(p, e)
	case *ir.Literal:
		return d.literal(p, e.Type, e.Lit)
	case *ir.Int:
		return strconv.FormatInt(e.Value, 10)
	case *ir.StringLit:
		return quote(e.Value)
	case *ir.Bool:
		return strconv.FormatBool(e.Value)
	case *ir.Default:
		return d.defaultValue(p, e.Type)
	case *ir.Null:
		return "None"
	case *ir.Some:
		return "Some(" + p.Expr(e.Value) + ")"
	case *ir.Ternary:
		return fmt.Sprintf("if %s { %s } else { %s }", p.Expr(e.Cond), p.Expr(e.Then), p.Expr(e.Else))
	case *ir.Range:
		return fmt.Sprintf("(0..%s).map(|_| %s).collect::<Vec<_>>()", p.Expr(e.Count), p.Expr(e.Item))
	case *ir.Len:
		return p.Expr(e.Value) + ".len() as u64"
	case *ir.Binary:
		return p.Expr(e.Left) + " " + e.Op + " " + p.Expr(e.Right)
	case *ir.Ref:
		if e.Mut {
			return "&mut " + p.Expr(e.Value)
		}
		return "&" + p.Expr(e.Value)
	case *ir.Deref:
		return "*" + p.Expr(e.Value)
	case *ir.Await:
		return p.Expr(e.Value) + ".await"
	case *ir.Closure:
		closure := "|" + strings.Join(e.Params, ", ") + "| " + p.Expr(e.Body)
		if e.Move {
			closure = "move " + closure
		}
		return closure
	case *ir.ListLit:
		return "vec![" + p.Join(e.Items, ", ") + "]"
	}
	p.Fail(fmt.Errorf("rust: unsupported expression %T", expr))
	return ""
}

func (d dialect) call(p *ir.Printer, e *ir.Call) string {
	args := ""
	if e.Args != nil {
		args = p.Expr(e.Args)
	}
	name := e.Name
	if len(e.Generics) > 0 {
		generics := make([]string, len(e.Generics))
		for ii, g := range e.Generics {
			generics[ii] = d.typeRef(p, g)
		}
		name += "::<" + strings.Join(generics, ", ") + ">"
	}
	switch {
	case e.Receiver != nil:
		return p.Expr(e.Receiver) + "." + name + "(" + args + ")"
	case !e.Static.IsZero():
		owner := d.typeRef(p, e.Static)
		if strings.Contains(owner, "<") {
			owner = "<" + owner + ">"
		}
		return owner + "::" + name + "(" + args + ")"
	}
	return name + "(" + args + ")"
}

func (d dialect) construct(p *ir.Printer, name string, args ir.Arguments) string {
	switch args := args.(type) {
	case *ir.NamedArguments:
		if len(args.Items) == 0 {
			return name + " {}"
		}
		return name + " { " + d.namedArgs(p, args) + " }"
	case *ir.PositionalArguments:
		return name + "(" + p.Join(args.Items, ", ") + ")"
	}
	return name
}

func (d dialect) namedArgs(p *ir.Printer, args *ir.NamedArguments) string {
	parts := make([]string, len(args.Items))
	for ii, item := range args.Items {
		value := p.Expr(item.Value)
		if value == item.Name {
			parts[ii] = item.Name
		} else {
			parts[ii] = item.Name + ": " + value
		}
	}
	return strings.Join(parts, ", ")
}

func (d dialect) pattern(e *ir.VariantPattern) string {
	name := e.Enum + "::" + e.Case
	switch e.Style {
	case syntax.CASE_TUPLE:
		return name + "(" + strings.Join(e.Bindings, ", ") + ")"
	case syntax.CASE_NAMED:
		parts := make([]string, len(e.Fields))
		for ii, field := range e.Fields {
			binding := field
			if ii < len(e.Bindings) {
				binding = e.Bindings[ii]
			}
			if binding == field {
				parts[ii] = field
			} else {
				parts[ii] = field + ": " + binding
			}
		}
		return name + " { " + strings.Join(parts, ", ") + " }"
	}
	return name
}

func (d dialect) typeRef(p *ir.Printer, t ir.TypeRef) string {
	if t.ID == nil {
		return t.Name
	}
	return d.typeID(p, t.ID)
}

func (d dialect) typeID(p *ir.Printer, t *syntax.TypeID) string {
	return typeName(t)
}

func typeName(t *syntax.TypeID) string {
	switch t.Kind() {
	case syntax.TYPE_INTEGER, syntax.TYPE_NUMBER, syntax.TYPE_BOOL, syntax.TYPE_CHAR:
		return codegen.PrimitiveName(t)
	case syntax.TYPE_GENERIC:
		args := make([]string, len(t.Args()))
		for ii, arg := range t.Args() {
			args[ii] = typeName(arg)
		}
		return t.ID() + "<" + strings.Join(args, ", ") + ">"
	}
	return t.ID()
}

// constType is the type of a constant declaration, where strings are
// borrowed.
func (d dialect) constType(p *ir.Printer, t ir.TypeRef) string {
	if t.ID != nil && t.ID.IsString() {
		return "&str"
	}
	return d.typeRef(p, t)
}

func (d dialect) defaultValue(p *ir.Printer, t *syntax.TypeID) string {
	switch t.Kind() {
	case syntax.TYPE_INTEGER:
		return "0"
	case syntax.TYPE_NUMBER:
		return "0.0"
	case syntax.TYPE_BOOL:
		return "false"
	case syntax.TYPE_CHAR:
		return `'\0'`
	}
	switch {
	case t.IsOption():
		return "None"
	case t.IsVec():
		return "Vec::new()"
	case t.IsString():
		return "String::new()"
	case t.Kind() == syntax.TYPE_GENERIC:
		return "Default::default()"
	}
	return t.ID() + "::default()"
}

func (d dialect) literal(p *ir.Printer, t *syntax.TypeID, lit *syntax.Literal) string {
	switch lit.Kind() {
	case syntax.LIT_STRING:
		return quote(lit.Text())
	case syntax.LIT_BOOL:
		return strconv.FormatBool(lit.Bool())
	case syntax.LIT_FLOAT:
		return lit.Raw()
	case syntax.LIT_INT:
		switch {
		case t.Kind() == syntax.TYPE_CHAR:
			return fmt.Sprintf(`'\u{%x}'`, lit.Uint64())
		case syntax.IsAddressType(t):
			return t.ID() + "(" + lit.Decimal() + ")"
		}
		return lit.Decimal()
	}
	p.Fail(codegen.ErrUnsupportedType(targetName, t))
	return ""
}

func quote(text string) string {
	var buf strings.Builder
	buf.WriteByte('"')
	for _, c := range text {
		switch c {
		case '\\', '"':
			buf.WriteByte('\\')
			buf.WriteRune(c)
		case '\t':
			buf.WriteString(`\t`)
		case '\n':
			buf.WriteString(`\n`)
		default:
			buf.WriteRune(c)
		}
	}
	buf.WriteByte('"')
	return buf.String()
}
