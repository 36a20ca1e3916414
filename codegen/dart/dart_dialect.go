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

package dart

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/ir"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

const targetName = "Dart"

var keywords = []string{
	"assert", "break", "case", "catch", "class", "const", "continue",
	"default", "do", "else", "enum", "extends", "false", "final", "finally",
	"for", "if", "in", "is", "new", "null", "rethrow", "return", "super",
	"switch", "this", "throw", "true", "try", "var", "void", "while", "with",
}

// valueName maps synthesized names onto public identifiers, since a Dart
// named parameter cannot begin with an underscore.
func valueName(name string) string {
	if codegen.Reserved(name) {
		return "rpc" + codegen.Pascal(strings.Trim(name, "_"))
	}
	return codegen.Camel(name)
}

func newNamer() *codegen.Namer {
	return codegen.NewNamer(keywords, func(name string) string {
		return name + "_"
	}, codegen.ValueStyle(valueName))
}

// caseClass names the subclass that carries one enum case.
func caseClass(enum, kase string) string {
	return enum + kase
}

type dialect struct{}

func (dialect) Spacing() ir.Spacing {
	return ir.DeclarationSpacing().With(
		[2]ir.Kind{ir.KIND_CONST_FIELD, ir.KIND_VAR},
		[2]ir.Kind{ir.KIND_VAR, ir.KIND_LINE},
		[2]ir.Kind{ir.KIND_VAR, ir.KIND_NAMED_BLOCK},
		[2]ir.Kind{ir.KIND_LINE, ir.KIND_NAMED_BLOCK},
	)
}

func (d dialect) Emit(p *ir.Printer, node ir.Node) {
	switch node := node.(type) {
	case *ir.DocComment:
		d.doc(p, node.Lines)
	case *ir.Struct:
		d.structDecl(p, node)
	case *ir.Class:
		d.doc(p, node.Doc)
		header := strings.Join(append(append([]string{}, node.Modifiers...), "class", node.Name), " ")
		if node.Extends != "" {
			header += " extends " + node.Extends
		}
		if len(node.Implements) > 0 {
			header += " implements " + strings.Join(node.Implements, ", ")
		}
		p.Block(header+" {", func() { p.EmitAll(node.Members) }, "}")
	case *ir.Enum:
		d.enumDecl(p, node)
	case *ir.Object:
		d.doc(p, node.Doc)
		p.Block("abstract final class "+node.Name+" {", func() { p.EmitAll(node.Members) }, "}")
	case *ir.ConstField:
		d.doc(p, node.Doc)
		decl := "static final "
		if node.Const {
			decl = "static const "
		}
		p.Line(decl + d.typeRef(node.Type) + " " + node.Name + " = " + p.Expr(node.Value) + ";")
	case *ir.VarDeclaration:
		d.doc(p, node.Doc)
		p.Line(d.declare(p, node) + ";")
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
		d.ifElse(p, "if ("+p.Expr(node.Cond)+") {", node.Then, node.Else)
	case *ir.IfLet:
		d.ifElse(p, "if ("+p.Expr(node.Value)+" case final "+node.Bind+"?) {", node.Then, node.Else)
	case *ir.ForLoop:
		var header string
		if node.Count != nil {
			header = fmt.Sprintf("for (var %s = 0; %s < %s; %s++) {", node.Var, node.Var, p.Expr(node.Count), node.Var)
		} else {
			header = "for (final " + node.Var + " in " + p.Expr(node.Iterable) + ") {"
		}
		p.Block(header, func() { p.EmitAll(node.Body) }, "}")
	case *ir.Switch:
		d.switchStmt(p, node)
	case *ir.Fatal:
		p.Line("throw StateError(" + quote(node.Message) + ");")
	default:
		p.Fail(fmt.Errorf("dart: unsupported node %T", node))
	}
}

func (dialect) doc(p *ir.Printer, lines []string) {
	for _, line := range lines {
		p.Line(strings.TrimRight("/// "+line, " "))
	}
}

func (d dialect) declare(p *ir.Printer, node *ir.VarDeclaration) string {
	var buf strings.Builder
	switch {
	case !node.Mutable:
		buf.WriteString("final ")
	case node.Type.IsZero():
		buf.WriteString("var ")
	}
	if !node.Type.IsZero() {
		buf.WriteString(d.typeRef(node.Type) + " ")
	}
	buf.WriteString(node.Name)
	if node.Value != nil {
		buf.WriteString(" = " + p.Expr(node.Value))
	}
	return buf.String()
}

// constructor writes a const constructor taking every field by name.
func (d dialect) constructor(p *ir.Printer, name string, fields []string, named bool) {
	switch {
	case len(fields) == 0:
		p.Line("const " + name + "();")
	case !named:
		params := make([]string, len(fields))
		for ii, field := range fields {
			params[ii] = "this." + field
		}
		p.Line("const " + name + "(" + strings.Join(params, ", ") + ");")
	default:
		p.Line("const " + name + "({")
		p.PushTab()
		for _, field := range fields {
			p.Line("required this." + field + ",")
		}
		p.PopTab()
		p.Line("});")
	}
}

func (d dialect) structDecl(p *ir.Printer, node *ir.Struct) {
	d.doc(p, node.Doc)
	p.Block("final class "+node.Name+" {", func() {
		names := make([]string, len(node.Fields))
		for ii, field := range node.Fields {
			names[ii] = field.Name
		}
		d.constructor(p, node.Name, names, true)
		if len(node.Fields) > 0 {
			p.Blank()
			for _, field := range node.Fields {
				d.doc(p, field.Doc)
				p.Line("final " + d.typeRef(field.Type) + " " + field.Name + ";")
			}
		}
		if len(node.Members) > 0 {
			p.Blank()
			p.EmitAll(node.Members)
		}
	}, "}")
}

// enumDecl writes a sealed base class followed by one final subclass per
// case.
func (d dialect) enumDecl(p *ir.Printer, node *ir.Enum) {
	d.doc(p, node.Doc)
	p.Block("sealed class "+node.Name+" {", func() {
		p.Line("const " + node.Name + "();")
		if len(node.Members) > 0 {
			p.Blank()
			p.EmitAll(node.Members)
		}
	}, "}")
	for _, kase := range node.Cases {
		p.Blank()
		d.doc(p, kase.Doc)
		name := caseClass(node.Name, kase.Name)
		p.Block("final class "+name+" extends "+node.Name+" {", func() {
			names := make([]string, len(kase.Fields))
			for ii, field := range kase.Fields {
				names[ii] = field.Name
			}
			d.constructor(p, name, names, kase.Style == syntax.CASE_NAMED)
			if len(kase.Fields) > 0 {
				p.Blank()
				for _, field := range kase.Fields {
					p.Line("final " + d.typeRef(field.Type) + " " + field.Name + ";")
				}
			}
			if len(kase.Members) > 0 {
				p.Blank()
				p.EmitAll(kase.Members)
			}
		}, "}")
	}
}

func (d dialect) fn(p *ir.Printer, node *ir.Func) {
	d.doc(p, node.Doc)
	for _, annotation := range node.Annotations {
		p.Line(annotation)
	}
	var buf strings.Builder
	if node.Static {
		buf.WriteString("static ")
	}
	ret := "void"
	if !node.Return.IsZero() {
		ret = d.typeRef(node.Return)
	}
	if node.Async {
		ret = "Future<" + ret + ">"
	}
	if node.Getter {
		buf.WriteString(ret + " get " + node.Name)
	} else {
		buf.WriteString(ret + " " + node.Name + "(")
		args := make([]string, len(node.Args))
		for ii, arg := range node.Args {
			args[ii] = d.typeRef(arg.Type) + " " + arg.Name
		}
		buf.WriteString(strings.Join(args, ", ") + ")")
	}
	if node.Async {
		buf.WriteString(" async")
	}
	sig := buf.String()
	switch {
	case node.Abstract:
		p.Line(sig + ";")
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

// switchStmt writes a switch statement. An empty case body would fall
// through to the next case, so it breaks explicitly.
func (d dialect) switchStmt(p *ir.Printer, node *ir.Switch) {
	arm := func(label string, body []ir.Node) {
		p.Line(label)
		p.PushTab()
		if len(body) == 0 {
			p.Line("break;")
		} else {
			p.EmitAll(body)
		}
		p.PopTab()
	}
	p.Block("switch ("+p.Expr(node.Subject)+") {", func() {
		for _, kase := range node.Cases {
			label := p.Expr(kase.Pattern)
			if pattern, ok := kase.Pattern.(*ir.VariantPattern); ok && node.Bind != "" {
				label = "final " + caseClass(pattern.Enum, pattern.Case) + " " + node.Bind
			}
			arm("case "+label+":", kase.Body)
		}
		if node.Default != nil {
			arm("default:", node.Default.Body)
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
		name := caseClass(e.Enum, e.Case)
		if e.Style == syntax.CASE_UNIT {
			return "const " + name + "()"
		}
		return name + "(" + d.args(p, e.Args) + ")"
	case *ir.VariantPattern:
		return caseClass(e.Enum, e.Case) + "()"
	case *ir.PositionalArguments, *ir.NamedArguments:
		return d.args(p, e.(ir.Arguments))
	case *ir.Literal:
		return d.literal(p, e.Type, e.Lit)
	case *ir.Int:
		return strconv.FormatInt(e.Value, 10)
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
		return p.Expr(e.Cond) + " ? " + p.Expr(e.Then) + " : " + p.Expr(e.Else)
	case *ir.Range:
		return "List.generate(" + p.Expr(e.Count) + ", (_) => " + p.Expr(e.Item) + ")"
	case *ir.Len:
		return p.Expr(e.Value) + ".length"
	case *ir.Binary:
		return p.Expr(e.Left) + " " + e.Op + " " + p.Expr(e.Right)
	case *ir.Ref:
		return p.Expr(e.Value)
	case *ir.Deref:
		return p.Expr(e.Value)
	case *ir.Await:
		return "await " + p.Expr(e.Value)
	case *ir.Closure:
		return "(" + strings.Join(e.Params, ", ") + ") => " + p.Expr(e.Body)
	case *ir.ListLit:
		return "[" + p.Join(e.Items, ", ") + "]"
	}
	p.Fail(fmt.Errorf("dart: unsupported expression %T", expr))
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
			if item.Name == "" {
				parts[ii] = p.Expr(item.Value)
			} else {
				parts[ii] = item.Name + ": " + p.Expr(item.Value)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func (d dialect) call(p *ir.Printer, e *ir.Call) string {
	text := ""
	if e.Args != nil {
		text = d.args(p, e.Args)
	}
	name := e.Name + "(" + text + ")"
	switch {
	case e.Receiver != nil:
		return p.Expr(e.Receiver) + "." + name
	case !e.Static.IsZero():
		return d.typeRef(e.Static) + "." + name
	}
	return name
}

func (d dialect) typeRef(t ir.TypeRef) string {
	if t.ID == nil {
		return t.Name
	}
	return typeName(t.ID)
}

func typeName(t *syntax.TypeID) string {
	switch t.Kind() {
	case syntax.TYPE_INTEGER, syntax.TYPE_CHAR:
		return "int"
	case syntax.TYPE_NUMBER:
		return "double"
	case syntax.TYPE_BOOL:
		return "bool"
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

func (d dialect) defaultValue(t *syntax.TypeID) string {
	switch t.Kind() {
	case syntax.TYPE_INTEGER, syntax.TYPE_CHAR:
		return "0"
	case syntax.TYPE_NUMBER:
		return "0.0"
	case syntax.TYPE_BOOL:
		return "false"
	}
	switch {
	case t.IsOption():
		return "null"
	case t.IsVec():
		return "[]"
	case t.IsString():
		return "''"
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
		return lit.Raw()
	case syntax.LIT_INT:
		if syntax.IsAddressType(t) {
			return t.ID() + "(" + lit.Decimal() + ")"
		}
		if t.Kind() == syntax.TYPE_NUMBER {
			return lit.Decimal() + ".0"
		}
		return lit.Decimal()
	}
	p.Fail(codegen.ErrUnsupportedType(targetName, t))
	return ""
}

func quote(text string) string {
	var buf strings.Builder
	buf.WriteByte('\'')
	for _, c := range text {
		switch c {
		case '\\', '\'', '$':
			buf.WriteByte('\\')
			buf.WriteRune(c)
		case '\t':
			buf.WriteString(`\t`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case 0:
			buf.WriteString(`\x00`)
		default:
			buf.WriteRune(c)
		}
	}
	buf.WriteByte('\'')
	return buf.String()
}
