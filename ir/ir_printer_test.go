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

package ir_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/internal/testutil"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/ir"
)

type toyDialect struct{}

func (toyDialect) Spacing() ir.Spacing {
	return ir.NewSpacing(
		[2]ir.Kind{ir.KIND_STRUCT, ir.KIND_STRUCT},
		[2]ir.Kind{ir.KIND_FUNC, ir.KIND_STRUCT},
		[2]ir.Kind{ir.KIND_STATEMENTS, ir.KIND_RETURN},
	)
}

func (d toyDialect) Emit(p *ir.Printer, node ir.Node) {
	switch node := node.(type) {
	case *ir.Struct:
		p.Block("struct "+node.Name+" {", func() {
			for _, field := range node.Fields {
				p.Linef("%s,", field.Name)
			}
		}, "}")
	case *ir.Func:
		p.Block("fn "+node.Name+"() {", func() { p.EmitAll(node.Body) }, "}")
	case *ir.Return:
		p.Line("return " + p.Expr(node.Value) + ";")
	case *ir.ExprStatement:
		p.Line(p.Expr(node.Expr) + ";")
	case *ir.Fatal:
		p.Fail(errors.New(node.Message))
	}
}

func (toyDialect) Expr(p *ir.Printer, expr ir.Expr) string {
	switch expr := expr.(type) {
	case *ir.Id:
		return expr.Name
	case *ir.Call:
		return p.Expr(expr.Receiver) + "." + expr.Name + "(" + p.Join(expr.Args.(*ir.PositionalArguments).Items, ", ") + ")"
	}
	return "?"
}

func printToy(t *testing.T, nodes ...ir.Node) string {
	t.Helper()
	out, err := ir.Print(&ir.TopLevelDeclarations{Nodes: nodes}, toyDialect{}, 4)
	testutil.AssertNoError(t, err)
	return out
}

func TestPrintSpacing(t *testing.T) {
	got := printToy(t,
		&ir.Struct{Name: "A", Fields: []*ir.VarDeclaration{{Name: "x"}}},
		&ir.Struct{Name: "B"},
		&ir.Func{Name: "f", Body: []ir.Node{
			&ir.Statements{Nodes: []ir.Node{
				ir.Stmt(ir.Method(ir.Ident("w"), "a")),
				ir.Stmt(ir.Method(ir.Ident("w"), "b", ir.Ident("x"))),
			}},
			&ir.Return{Value: ir.Ident("w")},
		}},
	)
	testutil.ExpectNoDiff(t, `struct A {
    x,
}

struct B {
}

fn f() {
    w.a();
    w.b(x);

    return w;
}
`, got)
}

func TestPrintSpacingSymmetric(t *testing.T) {
	got := printToy(t,
		&ir.Func{Name: "f"},
		&ir.Struct{Name: "A"},
		&ir.Func{Name: "g"},
	)
	testutil.ExpectEq(t, 2, strings.Count(got, "\n\n"))
}

func TestPrintGaps(t *testing.T) {
	got := printToy(t,
		&ir.Gap{},
		&ir.Line{Text: "a"},
		&ir.Gap{},
		&ir.Gap{},
		&ir.Line{Text: "b\n\n\nc"},
		&ir.NamedBlock{Header: "{", Body: []ir.Node{
			&ir.Gap{},
			&ir.Line{Text: "d"},
			&ir.Gap{},
		}, Footer: "}"},
		&ir.Gap{},
	)
	testutil.ExpectNoDiff(t, "a\n\nb\n\nc\n{\n    d\n}\n", got)
	testutil.ExpectFalse(t, strings.Contains(got, "\n\n\n"))
}

func TestPrintNestedIndent(t *testing.T) {
	got := printToy(t, &ir.NamedBlock{
		Header: "outer {",
		Body: []ir.Node{
			&ir.NamedBlock{Header: "inner {", Body: []ir.Node{
				&ir.Line{Text: "x"},
			}, Footer: "}"},
		},
		Footer: "}",
	})
	testutil.ExpectNoDiff(t, "outer {\n    inner {\n        x\n    }\n}\n", got)
}

func TestPrintFailure(t *testing.T) {
	_, err := ir.Print(&ir.TopLevelDeclarations{Nodes: []ir.Node{
		&ir.Line{Text: "a"},
		&ir.Fatal{Message: "unsupported"},
		&ir.Line{Text: "b"},
	}}, toyDialect{}, 4)
	testutil.AssertError(t, err)
	testutil.ExpectEq(t, "unsupported", err.Error())
}

func TestSpacingHelpers(t *testing.T) {
	s := ir.DeclarationSpacing()
	testutil.ExpectTrue(t, s.Blank(ir.KIND_FUNC, ir.KIND_STRUCT))
	testutil.ExpectTrue(t, s.Blank(ir.KIND_STRUCT, ir.KIND_VAR))
	testutil.ExpectFalse(t, s.Blank(ir.KIND_LINE, ir.KIND_LINE))
	testutil.ExpectFalse(t, s.Blank(ir.KIND_VAR, ir.KIND_VAR))

	more := s.With([2]ir.Kind{ir.KIND_VAR, ir.KIND_VAR})
	testutil.ExpectTrue(t, more.Blank(ir.KIND_VAR, ir.KIND_VAR))
	testutil.ExpectFalse(t, s.Blank(ir.KIND_VAR, ir.KIND_VAR))
}
