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

package kotlin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/ir"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

const targetName = "Kotlin"

var keywords = []string{
	"as", "break", "class", "continue", "do", "else", "false", "for", "fun",
	"if", "in", "interface", "is", "null", "object", "package", "return",
	"super", "this", "throw", "true", "try", "typealias", "typeof", "val",
	"var", "when", "while",
}

func newNamer() *codegen.Namer {
	return codegen.NewNamer(keywords, func(name string) string {
		return "`" + name + "`"
	}, codegen.ConstStyle(codegen.Screaming))
}

type dialect struct{}

func (dialect) Spacing() ir.Spacing {
	return ir.DeclarationSpacing().With(
		[2]ir.Kind{ir.KIND_CONST_FIELD, ir.KIND_OBJECT},
	)
}

func (d dialect) Emit(p *ir.Printer, node ir.Node) {
	switch node := node.(type) {
	case *ir.DocComment:
		d.doc(p, node.Lines)
	case *ir.Struct:
		d.structDecl(p, node)
	case *ir.Class:
		d.classDecl(p, node)
	case *ir.Enum:
		d.enumDecl(p, node)
	case *ir.Object:
		d.doc(p, node.Doc)
		header := "object " + node.Name
		if node.Companion {
			header = "companion object"
		}
		p.Block(header+" {", func() { p.EmitAll(node.Members) }, "}")
	case *ir.ConstField:
		d.doc(p, node.Doc)
		decl := "val "
		if node.Const {
			decl = "const val "
		}
		p.Line(decl + node.Name + ": " + d.typeRef(node.Type) + " = " + p.Expr(node.Value))
	case *ir.VarDeclaration:
		d.doc(p, node.Doc)
		p.Line(d.declare(p, node.Name, node.Type, node.Value, node.Mutable, node.Private, node.Override))
	case *ir.Func:
		d.fn(p, node)
	case *ir.Return:
		if node.Value == nil {
			p.Line("return")
		} else {
			p.Line("return " + p.Expr(node.Value))
		}
	case *ir.Continue:
		p.Line("continue")
	case *ir.ExprStatement:
		p.Line(p.Expr(node.Expr))
	case *ir.Set:
		p.Line(p.Expr(node.Target) + " = " + p.Expr(node.Value))
	case *ir.If:
		d.ifElse(p, "if ("+p.Expr(node.Cond)+") {", node.Then, node.Else)
	case *ir.IfLet:
		p.Line("val " + node.Bind + " = " + p.Expr(node.Value))
		d.ifElse(p, "if ("+node.Bind+" != null) {", node.Then, node.Else)
	case *ir.ForLoop:
		if node.Count != nil {
			p.Block("repeat("+p.Expr(node.Count)+".toInt()) {", func() { p.EmitAll(node.Body) }, "}")
		} else {
			p.Block("for ("+node.Var+" in "+p.Expr(node.Iterable)+") {", func() { p.EmitAll(node.Body) }, "}")
		}
	case *ir.Switch:
		d.when(p, node)
	case *ir.TrailingCall:
		header := p.Expr(node.Call) + " {"
		if len(node.Params) > 0 {
			header += " " + strings.Join(node.Params, ", ") + " ->"
		}
		p.Block(header, func() { p.EmitAll(node.Body) }, "}")
	case *ir.Fatal:
		p.Line("throw IllegalStateException(" + quote(node.Message) + ")")
	default:
		p.Fail(fmt.Errorf("kotlin: unsupported node %T", node))
	}
}

func (dialect) doc(p *ir.Printer, lines []string) {
	if len(lines) == 0 {
		return
	}
	p.Line("/**")
	for _, line := range lines {
		p.Line(strings.TrimRight(" * "+line, " "))
	}
	p.Line(" */")
}

func (d dialect) declare(p *ir.Printer, name string, typ ir.TypeRef, value ir.Expr, mutable, private, override bool) string {
	var buf strings.Builder
	if private {
		buf.WriteString("private ")
	}
	if override {
		buf.WriteString("override ")
	}
	if mutable {
		buf.WriteString("var ")
	} else {
		buf.WriteString("val ")
	}
	buf.WriteString(name)
	if !typ.IsZero() {
		buf.WriteString(": " + d.typeRef(typ))
	}
	if value != nil {
		buf.WriteString(" = " + p.Expr(value))
	}
	return buf.String()
}

// params writes a primary constructor, one property per line.
func (d dialect) params(p *ir.Printer, header string, fields []*ir.VarDeclaration, tail string) {
	p.Line(header + "(")
	p.PushTab()
	for _, field := range fields {
		d.doc(p, field.Doc)
		p.Line(d.declare(p, field.Name, field.Type, nil, field.Mutable, field.Private, false) + ",")
	}
	p.PopTab()
	p.Line(")" + tail)
}

func (d dialect) structDecl(p *ir.Printer, node *ir.Struct) {
	d.doc(p, node.Doc)
	for _, attr := range node.Attributes {
		p.Line(attr)
	}
	if len(node.Fields) == 0 {
		p.Block("class "+node.Name+" {", func() { p.EmitAll(node.Members) }, "}")
		return
	}
	d.params(p, "data class "+node.Name, node.Fields, " {")
	p.PushTab()
	p.EmitAll(node.Members)
	p.PopTab()
	p.Line("}")
}

func (d dialect) classDecl(p *ir.Printer, node *ir.Class) {
	d.doc(p, node.Doc)
	header := strings.Join(append(append([]string{}, node.Modifiers...), "class", node.Name), " ")
	var fields []*ir.VarDeclaration
	for _, param := range node.Params {
		fields = append(fields, &ir.VarDeclaration{Name: param.Name, Type: param.Type, Private: true})
	}
	tail := " {"
	if node.Extends != "" {
		tail = " : " + node.Extends + "() {"
	}
	if len(fields) == 0 {
		p.Block(header+tail, func() { p.EmitAll(node.Members) }, "}")
		return
	}
	d.params(p, header, fields, tail)
	p.PushTab()
	p.EmitAll(node.Members)
	p.PopTab()
	p.Line("}")
}

// enumDecl writes a sealed class with one nested subclass per case.
func (d dialect) enumDecl(p *ir.Printer, node *ir.Enum) {
	d.doc(p, node.Doc)
	p.Block("sealed class "+node.Name+" {", func() {
		for _, kase := range node.Cases {
			d.doc(p, kase.Doc)
			parent := " : " + node.Name + "()"
			if len(kase.Fields) == 0 {
				p.Line("object " + kase.Name + parent)
				continue
			}
			params := make([]string, len(kase.Fields))
			for ii, field := range kase.Fields {
				params[ii] = "val " + field.Name + ": " + d.typeRef(field.Type)
			}
			p.Linef("data class %s(%s)%s", kase.Name, strings.Join(params, ", "), parent)
		}
		if len(node.Cases) > 0 && len(node.Members) > 0 {
			p.Blank()
		}
		p.EmitAll(node.Members)
	}, "}")
}

func (d dialect) fn(p *ir.Printer, node *ir.Func) {
	d.doc(p, node.Doc)
	for _, annotation := range node.Annotations {
		p.Line(annotation)
	}
	var buf strings.Builder
	if node.Private {
		buf.WriteString("private ")
	}
	if node.Override {
		buf.WriteString("override ")
	}
	if node.Async {
		buf.WriteString("suspend ")
	}
	buf.WriteString("fun " + node.Generics + node.Name + "(")
	args := make([]string, len(node.Args))
	for ii, arg := range node.Args {
		args[ii] = arg.Name + ": " + d.typeRef(arg.Type)
	}
	buf.WriteString(strings.Join(args, ", ") + ")")
	if !node.Return.IsZero() {
		buf.WriteString(": " + d.typeRef(node.Return))
	}
	sig := buf.String()
	switch {
	case node.Abstract:
		p.Line(sig)
	case len(node.Body) == 0:
		p.Line(sig + " {}")
	default:
		p.Block(sig+" {", func() { p.EmitAll(node.Body) }, "}")
	}
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

func (d dialect) when(p *ir.Printer, node *ir.Switch) {
	subject := p.Expr(node.Subject)
	if node.Bind != "" {
		subject = "val " + node.Bind + " = " + subject
	}
	arm := func(label string, body []ir.Node) {
		if len(body) == 0 {
			p.Line(label + " -> {}")
			return
		}
		p.Block(label+" -> {", func() { p.EmitAll(body) }, "}")
	}
	p.Block("when ("+subject+") {", func() {
		for _, kase := range node.Cases {
			arm(p.Expr(kase.Pattern), kase.Body)
		}
		if node.Default != nil {
			arm("else", node.Default.Body)
		}
	}, "}")
}

func (d dialect) Expr(p *ir.Printer, expr ir.Expr) string {
	switch e := expr.(type) {
	case *ir.Id:
		return e.Name
	case *ir.Self:
		return "this"
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
		return d.typeRef(e.Type) + "(" + d.args(p, e.Args) + ")"
	case *ir.NewVariant:
		if e.Style == syntax.CASE_UNIT {
			return e.Enum + "." + e.Case
		}
		return e.Enum + "." + e.Case + "(" + d.args(p, e.Args) + ")"
	case *ir.VariantPattern:
		return "is " + e.Enum + "." + e.Case
	case *ir.PositionalArguments, *ir.NamedArguments:
		return d.args(p, e.(ir.Arguments))
	case *ir.Literal:
		return d.literal(p, e.Type, e.Lit)
	case *ir.Int:
		return intLiteral(e.Type, strconv.FormatInt(e.Value, 10))
	case *ir.StringLit:
		return quote(e.Value)
	case *ir.Bool:
		return strconv.FormatBool(e.Value)
	case *ir.Default:
		return d.defaultValue(e.Type)
	case *ir.Null:
		return "null"
	case *ir.Some:
		return p.Expr(e.Value)
	case *ir.Ternary:
		return "if (" + p.Expr(e.Cond) + ") " + p.Expr(e.Then) + " else " + p.Expr(e.Else)
	case *ir.Range:
		return "List(" + p.Expr(e.Count) + ".toInt()) { " + p.Expr(e.Item) + " }"
	case *ir.Len:
		return p.Expr(e.Value) + ".size.toULong()"
	case *ir.Binary:
		return p.Expr(e.Left) + " " + e.Op + " " + p.Expr(e.Right)
	case *ir.Ref:
		return p.Expr(e.Value)
	case *ir.Deref:
		return p.Expr(e.Value)
	case *ir.Await:
		return p.Expr(e.Value) + ".await()"
	case *ir.Closure:
		if len(e.Params) == 0 {
			return "{ " + p.Expr(e.Body) + " }"
		}
		return "{ " + strings.Join(e.Params, ", ") + " -> " + p.Expr(e.Body) + " }"
	case *ir.ListLit:
		if len(e.Items) == 0 {
			return "mutableListOf()"
		}
		return "listOf(" + p.Join(e.Items, ", ") + ")"
	}
	p.Fail(fmt.Errorf("kotlin: unsupported expression %T", expr))
	return ""
}

func (d dialect) args(p *ir.Printer, args ir.Arguments) string {
	switch args := args.(type) {
	case *ir.PositionalArguments:
		if args == nil {
			return ""
		}
		return p.Join(args.Items, ", ")
	case *ir.NamedArguments:
		if args == nil {
			return ""
		}
		parts := make([]string, len(args.Items))
		for ii, item := range args.Items {
			parts[ii] = item.Name + " = " + p.Expr(item.Value)
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// call moves a final closure argument out of the parentheses.
func (d dialect) call(p *ir.Printer, e *ir.Call) string {
	var lambda string
	args := e.Args
	if list, ok := args.(*ir.PositionalArguments); ok && list.Len() == 1 {
		if inner, ok := list.Items[0].(*ir.PositionalArguments); ok {
			args = inner
		}
	}
	if list, ok := args.(*ir.PositionalArguments); ok && list.Len() > 0 {
		if closure, ok := list.Items[len(list.Items)-1].(*ir.Closure); ok {
			lambda = " " + p.Expr(closure)
			args = ir.Args(list.Items[:len(list.Items)-1]...)
		}
	}
	text := ""
	if args != nil {
		text = d.args(p, args)
	}
	name := e.Name + "(" + text + ")"
	switch {
	case e.Receiver != nil:
		name = p.Expr(e.Receiver) + "." + name
	case !e.Static.IsZero():
		name = d.typeRef(e.Static) + "." + name
	}
	return name + lambda
}

func (d dialect) typeRef(t ir.TypeRef) string {
	if t.ID == nil {
		return t.Name
	}
	return typeName(t.ID)
}

var integerNames = map[uint8][2]string{
	1: {"Byte", "UByte"},
	2: {"Short", "UShort"},
	4: {"Int", "UInt"},
	8: {"Long", "ULong"},
}

func typeName(t *syntax.TypeID) string {
	switch t.Kind() {
	case syntax.TYPE_INTEGER:
		names := integerNames[t.Width()]
		if t.Signed() {
			return names[0]
		}
		return names[1]
	case syntax.TYPE_NUMBER:
		if t.Width() == 8 {
			return "Double"
		}
		return "Float"
	case syntax.TYPE_BOOL:
		return "Boolean"
	case syntax.TYPE_CHAR:
		return "Char"
	}
	switch {
	case t.IsOption():
		return typeName(t.Elem()) + "?"
	case t.IsVec():
		return "List<" + typeName(t.Elem()) + ">"
	case t.Kind() == syntax.TYPE_GENERIC:
		args := make([]string, len(t.Args()))
		for ii, arg := range t.Args() {
			args[ii] = typeName(arg)
		}
		return t.ID() + "<" + strings.Join(args, ", ") + ">"
	}
	return t.ID()
}

// intLiteral adds the suffix that gives a literal its declared type.
func intLiteral(t *syntax.TypeID, digits string) string {
	if t == nil || t.Kind() != syntax.TYPE_INTEGER {
		return digits
	}
	switch {
	case t.Signed() && t.Width() == 8:
		return digits + "L"
	case t.Signed():
		return digits
	case t.Width() == 8:
		return digits + "UL"
	}
	return digits + "U"
}

func (d dialect) defaultValue(t *syntax.TypeID) string {
	switch t.Kind() {
	case syntax.TYPE_INTEGER:
		switch {
		case t.Width() == 1 && t.Signed():
			return "0.toByte()"
		case t.Width() == 1:
			return "0U.toUByte()"
		case t.Width() == 2 && t.Signed():
			return "0.toShort()"
		case t.Width() == 2:
			return "0U.toUShort()"
		}
		return intLiteral(t, "0")
	case syntax.TYPE_NUMBER:
		if t.Width() == 8 {
			return "0.0"
		}
		return "0f"
	case syntax.TYPE_BOOL:
		return "false"
	case syntax.TYPE_CHAR:
		return `'\u0000'`
	}
	switch {
	case t.IsOption():
		return "null"
	case t.IsVec():
		return "listOf()"
	case t.IsString():
		return `""`
	}
	return typeName(t) + ".createBuffersDefault()"
}

func (d dialect) literal(p *ir.Printer, t *syntax.TypeID, lit *syntax.Literal) string {
	switch lit.Kind() {
	case syntax.LIT_STRING:
		return quote(lit.Text())
	case syntax.LIT_BOOL:
		return strconv.FormatBool(lit.Bool())
	case syntax.LIT_FLOAT:
		if t.Width() == 4 {
			return lit.Raw() + "f"
		}
		return lit.Raw()
	case syntax.LIT_INT:
		switch {
		case t.Kind() == syntax.TYPE_CHAR:
			if lit.Uint64() > 0xFFFF {
				break
			}
			return fmt.Sprintf(`'\u%04x'`, lit.Uint64())
		case syntax.IsAddressType(t):
			return t.ID() + "(" + lit.Decimal() + "UL)"
		default:
			return intLiteral(t, lit.Decimal())
		}
	}
	p.Fail(codegen.ErrUnsupportedType(targetName, t))
	return ""
}

func quote(text string) string {
	var buf strings.Builder
	buf.WriteByte('"')
	for _, c := range text {
		switch c {
		case '\\', '"', '$':
			buf.WriteByte('\\')
			buf.WriteRune(c)
		case '\t':
			buf.WriteString(`\t`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		default:
			buf.WriteRune(c)
		}
	}
	buf.WriteByte('"')
	return buf.String()
}
