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

package swift

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/ir"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

const targetName = "Swift"

var keywords = []string{
	"associatedtype", "class", "deinit", "enum", "extension", "fileprivate",
	"func", "import", "init", "inout", "internal", "let", "open", "operator",
	"private", "precedencegroup", "protocol", "public", "rethrows", "static",
	"struct", "subscript", "typealias", "var", "break", "case", "catch",
	"continue", "default", "defer", "do", "else", "fallthrough", "for",
	"guard", "if", "in", "repeat", "return", "throw", "switch", "where",
	"while", "Any", "as", "await", "false", "is", "nil", "self", "Self",
	"super", "throws", "true", "try",
}

func newNamer() *codegen.Namer {
	return codegen.NewNamer(keywords, func(name string) string {
		return "`" + name + "`"
	}, codegen.CaseStyle(codegen.Camel))
}

type dialect struct{}

func (dialect) Spacing() ir.Spacing {
	return ir.DeclarationSpacing().With(
		[2]ir.Kind{ir.KIND_CONST_FIELD, ir.KIND_OBJECT},
		[2]ir.Kind{ir.KIND_STATIC_VAR, ir.KIND_VAR},
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
		if node.Extends != "" || len(node.Implements) > 0 {
			var parents []string
			if node.Extends != "" {
				parents = append(parents, node.Extends)
			}
			header += ": " + strings.Join(append(parents, node.Implements...), ", ")
		}
		p.Block(header+" {", func() { p.EmitAll(node.Members) }, "}")
	case *ir.Enum:
		d.enumDecl(p, node)
	case *ir.Interface:
		d.doc(p, node.Doc)
		header := "public protocol " + node.Name
		if len(node.Extends) > 0 {
			header += ": " + strings.Join(node.Extends, ", ")
		}
		p.Block(header+" {", func() { p.EmitAll(node.Members) }, "}")
	case *ir.Object:
		d.doc(p, node.Doc)
		p.Block("public enum "+node.Name+" {", func() { p.EmitAll(node.Members) }, "}")
	case *ir.Extension:
		header := "extension " + node.Target
		if node.Trait != "" {
			header += ": " + node.Trait
		}
		p.Block(header+" {", func() { p.EmitAll(node.Members) }, "}")
	case *ir.ConstField:
		d.doc(p, node.Doc)
		p.Linef("public static let %s: %s = %s", node.Name, d.typeRef(node.Type), p.Expr(node.Value))
	case *ir.StaticVarDeclaration:
		d.doc(p, node.Doc)
		decl := "let"
		if node.Mutable {
			decl = "var"
		}
		p.Line(d.access(node.Public, node.Private) + "static " + decl + " " + d.binding(p, node.Name, node.Type, node.Value))
	case *ir.VarDeclaration:
		d.doc(p, node.Doc)
		decl := "let "
		if node.Mutable {
			decl = "var "
		}
		p.Line(d.access(node.Public, node.Private) + decl + d.binding(p, node.Name, node.Type, node.Value))
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
		d.ifElse(p, "if "+p.Expr(node.Cond)+" {", node.Then, node.Else)
	case *ir.IfLet:
		d.ifElse(p, "if let "+node.Bind+" = "+p.Expr(node.Value)+" {", node.Then, node.Else)
	case *ir.ForLoop:
		if node.Count != nil {
			p.Block("for _ in 0..<"+p.Expr(node.Count)+" {", func() { p.EmitAll(node.Body) }, "}")
		} else {
			p.Block("for "+node.Var+" in "+p.Expr(node.Iterable)+" {", func() { p.EmitAll(node.Body) }, "}")
		}
	case *ir.Switch:
		d.switchStmt(p, node)
	case *ir.TrailingCall:
		d.trailingCall(p, node)
	case *ir.Fatal:
		p.Linef("fatalError(%s)", quote(node.Message))
	default:
		p.Fail(fmt.Errorf("swift: unsupported node %T", node))
	}
}

func (dialect) doc(p *ir.Printer, lines []string) {
	for _, line := range lines {
		p.Line(strings.TrimRight("/// "+line, " "))
	}
}

func (dialect) access(public, private bool) string {
	switch {
	case public:
		return "public "
	case private:
		return "private "
	}
	return ""
}

func (d dialect) binding(p *ir.Printer, name string, typ ir.TypeRef, value ir.Expr) string {
	out := name
	if !typ.IsZero() {
		out += ": " + d.typeRef(typ)
	}
	if value != nil {
		out += " = " + p.Expr(value)
	}
	return out
}

func conformances(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return ": " + strings.Join(names, ", ")
}

func (d dialect) structDecl(p *ir.Printer, node *ir.Struct) {
	d.doc(p, node.Doc)
	p.Block("public struct "+node.Name+conformances(node.Conforms)+" {", func() {
		for _, field := range node.Fields {
			d.Emit(p, field)
		}
		if len(node.Fields) > 0 && len(node.Members) > 0 {
			p.Blank()
		}
		p.EmitAll(node.Members)
	}, "}")
}

func (d dialect) enumDecl(p *ir.Printer, node *ir.Enum) {
	d.doc(p, node.Doc)
	p.Block("public enum "+node.Name+conformances(node.Conforms)+" {", func() {
		for _, kase := range node.Cases {
			d.doc(p, kase.Doc)
			switch kase.Style {
			case syntax.CASE_UNIT:
				p.Line("case " + kase.Name)
			case syntax.CASE_TUPLE:
				types := make([]string, len(kase.Fields))
				for ii, field := range kase.Fields {
					types[ii] = d.typeRef(field.Type)
				}
				p.Linef("case %s(%s)", kase.Name, strings.Join(types, ", "))
			case syntax.CASE_NAMED:
				fields := make([]string, len(kase.Fields))
				for ii, field := range kase.Fields {
					fields[ii] = field.Name + ": " + d.typeRef(field.Type)
				}
				p.Linef("case %s(%s)", kase.Name, strings.Join(fields, ", "))
			}
		}
		if len(node.Cases) > 0 && len(node.Members) > 0 {
			p.Blank()
		}
		p.EmitAll(node.Members)
	}, "}")
}

func (d dialect) signature(p *ir.Printer, node *ir.Func) string {
	var buf strings.Builder
	buf.WriteString(d.access(node.Public, node.Private))
	if node.Override {
		buf.WriteString("override ")
	}
	if node.Static {
		buf.WriteString("static ")
	}
	if node.Mutating {
		buf.WriteString("mutating ")
	}
	if node.Name != "init" {
		buf.WriteString("func ")
	}
	buf.WriteString(node.Name)
	buf.WriteString(node.Generics)
	args := make([]string, len(node.Args))
	for ii, arg := range node.Args {
		label := ""
		if arg.Label != "" {
			label = arg.Label + " "
		}
		args[ii] = label + arg.Name + ": " + d.typeRef(arg.Type)
		if arg.Default != nil {
			args[ii] += " = " + p.Expr(arg.Default)
		}
	}
	buf.WriteString("(" + strings.Join(args, ", ") + ")")
	if node.Async {
		buf.WriteString(" async")
	}
	if node.Throws {
		buf.WriteString(" throws")
	}
	if !node.Return.IsZero() {
		buf.WriteString(" -> " + d.typeRef(node.Return))
	}
	return buf.String()
}

func (d dialect) fn(p *ir.Printer, node *ir.Func) {
	d.doc(p, node.Doc)
	for _, annotation := range node.Annotations {
		p.Line(annotation)
	}
	sig := d.signature(p, node)
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

func (d dialect) switchStmt(p *ir.Printer, node *ir.Switch) {
	clause := func(label string, body []ir.Node) {
		p.Line(label)
		p.PushTab()
		if len(body) == 0 {
			p.Line("break")
		} else {
			p.EmitAll(body)
		}
		p.PopTab()
	}
	p.Line("switch " + p.Expr(node.Subject) + " {")
	for _, kase := range node.Cases {
		clause("case "+p.Expr(kase.Pattern)+":", kase.Body)
	}
	if node.Default != nil {
		clause("default:", node.Default.Body)
	}
	p.Line("}")
}

func (d dialect) trailingCall(p *ir.Printer, node *ir.TrailingCall) {
	header := p.Expr(node.Call) + " {"
	if node.Weak {
		header += " [weak self]"
	}
	if len(node.Params) > 0 {
		header += " " + strings.Join(node.Params, ", ") + " in"
	}
	p.Block(header, func() { p.EmitAll(node.Body) }, "}")
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
		return d.typeRef(e.Type) + "(" + d.args(p, e.Args) + ")"
	case *ir.NewVariant:
		if e.Args == nil || e.Args.Len() == 0 {
			return e.Enum + "." + e.Case
		}
		return e.Enum + "." + e.Case + "(" + d.args(p, e.Args) + ")"
	case *ir.VariantPattern:
		return d.pattern(e)
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
		return "nil"
	case *ir.Some:
		return p.Expr(e.Value)
	case *ir.Ternary:
		return p.Expr(e.Cond) + " ? " + p.Expr(e.Then) + " : " + p.Expr(e.Else)
	case *ir.Range:
		return fmt.Sprintf("(0..<%s).map { _ in %s }", p.Expr(e.Count), p.Expr(e.Item))
	case *ir.Len:
		return "UInt64(" + p.Expr(e.Value) + ".count)"
	case *ir.Binary:
		return p.Expr(e.Left) + " " + e.Op + " " + p.Expr(e.Right)
	case *ir.Ref:
		return p.Expr(e.Value)
	case *ir.Deref:
		return p.Expr(e.Value)
	case *ir.Await:
		return "await " + p.Expr(e.Value)
	case *ir.Closure:
		head := "{ "
		if e.Weak {
			head += "[weak self] "
		}
		if len(e.Params) > 0 {
			head += strings.Join(e.Params, ", ") + " in "
		}
		return head + p.Expr(e.Body) + " }"
	case *ir.ListLit:
		return "[" + p.Join(e.Items, ", ") + "]"
	}
	p.Fail(fmt.Errorf("swift: unsupported expression %T", expr))
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
	args := ""
	if e.Args != nil {
		args = d.args(p, e.Args)
	}
	switch {
	case e.Receiver != nil:
		return p.Expr(e.Receiver) + "." + e.Name + "(" + args + ")"
	case !e.Static.IsZero():
		return d.typeRef(e.Static) + "." + e.Name + "(" + args + ")"
	}
	return e.Name + "(" + args + ")"
}

func (d dialect) pattern(e *ir.VariantPattern) string {
	name := "." + e.Case
	if e.Style == syntax.CASE_UNIT {
		return name
	}
	bindings := make([]string, len(e.Bindings))
	for ii, binding := range e.Bindings {
		bindings[ii] = "let " + binding
	}
	return name + "(" + strings.Join(bindings, ", ") + ")"
}

func (d dialect) typeRef(t ir.TypeRef) string {
	if t.ID == nil {
		return t.Name
	}
	return typeName(t.ID)
}

func typeName(t *syntax.TypeID) string {
	switch t.Kind() {
	case syntax.TYPE_INTEGER:
		if t.Signed() {
			return fmt.Sprintf("Int%d", int(t.Width())*8)
		}
		return fmt.Sprintf("UInt%d", int(t.Width())*8)
	case syntax.TYPE_NUMBER:
		if t.Width() == 8 {
			return "Double"
		}
		return "Float"
	case syntax.TYPE_BOOL:
		return "Bool"
	case syntax.TYPE_CHAR:
		return "Character"
	}
	switch {
	case t.IsOption():
		return typeName(t.Elem()) + "?"
	case t.IsVec():
		return "[" + typeName(t.Elem()) + "]"
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
	case syntax.TYPE_INTEGER:
		return "0"
	case syntax.TYPE_NUMBER:
		return "0.0"
	case syntax.TYPE_BOOL:
		return "false"
	case syntax.TYPE_CHAR:
		return `"\0"`
	}
	switch {
	case t.IsOption():
		return "nil"
	case t.IsVec():
		return "[]"
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
		return lit.Raw()
	case syntax.LIT_INT:
		switch {
		case t.Kind() == syntax.TYPE_CHAR:
			return fmt.Sprintf(`"\u{%x}"`, lit.Uint64())
		case syntax.IsAddressType(t):
			return t.ID() + "(" + lit.Decimal() + ")"
		case t.Kind() == syntax.TYPE_NUMBER:
			return lit.Decimal() + ".0"
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
		case '\r':
			buf.WriteString(`\r`)
		case 0:
			buf.WriteString(`\0`)
		default:
			buf.WriteRune(c)
		}
	}
	buf.WriteByte('"')
	return buf.String()
}
