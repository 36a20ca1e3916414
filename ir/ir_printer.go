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

package ir

import (
	"fmt"
	"strings"
)

// Dialect renders the nodes and expressions of one target language.
type Dialect interface {
	Spacing() Spacing
	// Emit writes a declaration or statement. Structural nodes (Gap, Line,
	// Statements, TopLevelDeclarations, NamedBlock) never reach it.
	Emit(p *Printer, node Node)
	Expr(p *Printer, expr Expr) string
}

type Printer struct {
	dialect Dialect
	spacing Spacing
	buf     strings.Builder
	unit    string
	depth   int
	blank   bool
	fresh   bool
	err     error
}

// Print renders root with the given dialect, indenting nested blocks by
// indentSize spaces.
func Print(root Node, dialect Dialect, indentSize int) (string, error) {
	p := &Printer{
		dialect: dialect,
		spacing: dialect.Spacing(),
		unit:    strings.Repeat(" ", indentSize),
		fresh:   true,
	}
	p.Emit(root)
	if p.err != nil {
		return "", p.err
	}
	return p.buf.String(), nil
}

func (p *Printer) Err() error {
	return p.err
}

// Fail records the first error; later output is discarded by Print.
func (p *Printer) Fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *Printer) IndentUnit() string {
	return p.unit
}

// Line writes text at the current indentation, one output line per line
// of text. Empty lines are treated as Blank.
func (p *Printer) Line(text string) {
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			p.Blank()
			continue
		}
		if p.blank {
			p.buf.WriteByte('\n')
			p.blank = false
		}
		for ii := 0; ii < p.depth; ii++ {
			p.buf.WriteString(p.unit)
		}
		p.buf.WriteString(line)
		p.buf.WriteByte('\n')
		p.fresh = false
	}
}

func (p *Printer) Linef(format string, a ...any) {
	p.Line(fmt.Sprintf(format, a...))
}

// Blank requests a blank line before the next line. Requests collapse,
// and are dropped at the start and end of a block.
func (p *Printer) Blank() {
	if !p.fresh {
		p.blank = true
	}
}

func (p *Printer) PushTab() {
	p.depth += 1
	p.fresh = true
	p.blank = false
}

func (p *Printer) PopTab() {
	p.depth -= 1
	p.fresh = false
	p.blank = false
}

// Block writes header, the indented body, then footer.
func (p *Printer) Block(header string, body func(), footer string) {
	p.Line(header)
	p.PushTab()
	body()
	p.PopTab()
	if footer != "" {
		p.Line(footer)
	}
}

// EmitAll writes nodes in order, separating adjacent pairs that the
// dialect's spacing marks.
func (p *Printer) EmitAll(nodes []Node) {
	var prev Node
	for _, node := range nodes {
		if node == nil {
			continue
		}
		if prev != nil && p.spacing.Blank(prev.Kind(), node.Kind()) {
			p.Blank()
		}
		p.Emit(node)
		prev = node
	}
}

func (p *Printer) Emit(node Node) {
	if p.err != nil {
		return
	}
	switch node := node.(type) {
	case *Gap:
		p.Blank()
	case *Line:
		p.Line(node.Text)
	case *Statements:
		p.EmitAll(node.Nodes)
	case *TopLevelDeclarations:
		p.EmitAll(node.Nodes)
	case *NamedBlock:
		p.Block(node.Header, func() { p.EmitAll(node.Body) }, node.Footer)
	default:
		p.dialect.Emit(p, node)
	}
}

func (p *Printer) Expr(expr Expr) string {
	if expr == nil {
		return ""
	}
	return p.dialect.Expr(p, expr)
}

// Join renders exprs separated by sep.
func (p *Printer) Join(exprs []Expr, sep string) string {
	parts := make([]string, len(exprs))
	for ii, expr := range exprs {
		parts[ii] = p.Expr(expr)
	}
	return strings.Join(parts, sep)
}
