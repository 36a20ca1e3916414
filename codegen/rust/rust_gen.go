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

// Package rust generates the server side of a schema: models, codecs,
// constants, the service trait and its dispatch handlers.
package rust

import (
	"slices"
	"strings"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/ir"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

const (
	buffersCrate = "tech_paws_buffers"
	runtimeCrate = "tech_paws_runtime"
	codecTrait   = "IntoVMBuffers"
	emplaceTrait = "EmplaceFromVMBuffers"
	readerType   = "&mut BytesReader"
	writerType   = "&mut BytesWriter"
)

var modelDerive = "#[derive(Debug, Clone, PartialEq)]"

func Generate(file *syntax.File, opts codegen.Options) (string, error) {
	names := newNamer()
	if err := codegen.CheckNames(targetName, file, names); err != nil {
		return "", err
	}
	g := &generator{
		file:  file,
		names: names,
		codec: codegen.NewCodec(file, names, codegen.RefBindings(), codegen.DestructurePatterns()),
	}
	root := g.build()
	if g.err != nil {
		return "", g.err
	}
	return ir.Print(root, dialect{}, opts.Indent(4))
}

type generator struct {
	file  *syntax.File
	names *codegen.Namer
	codec *codegen.Codec
	err   error
}

func (g *generator) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}

func (g *generator) build() ir.Node {
	root := &ir.TopLevelDeclarations{}
	add := func(nodes ...ir.Node) {
		root.Nodes = append(root.Nodes, nodes...)
	}

	add(&ir.Line{Text: "// " + codegen.GeneratedHeader})
	if doc := g.file.Doc(); len(doc) > 0 {
		add(&ir.Gap{})
		for _, line := range doc {
			add(&ir.Line{Text: strings.TrimRight("//! "+line, " ")})
		}
	}
	add(&ir.Gap{})
	for _, line := range g.imports() {
		add(&ir.Line{Text: line})
	}
	add(&ir.Gap{})

	for _, node := range g.file.Nodes() {
		switch node := node.(type) {
		case *syntax.ConstBlock:
			add(g.constBlock(node))
		case *syntax.Struct:
			add(g.structModel(node, false)...)
		case *syntax.Enum:
			add(g.enumModel(node)...)
		}
	}
	if g.file.HasRPC() {
		add(g.rpc()...)
	}
	return root
}

func (g *generator) imports() []string {
	var buffers []string
	buffers = append(buffers, "BytesReader", "BytesWriter", codecTrait)
	for _, s := range g.file.Structs() {
		if s.Emplace() {
			buffers = append(buffers, emplaceTrait)
			break
		}
	}

	var runtime []string
	used := codegen.UsedTypes(g.file)
	for _, name := range []string{"CommandsBufferAddress", "GroupAddress"} {
		if used[name] {
			runtime = append(runtime, name)
		}
	}

	var lines []string
	if g.file.HasRPC() {
		if slices.ContainsFunc(g.file.Fns(), (*syntax.Fn).Async) {
			lines = append(lines, "use std::future::Future;")
		}
		lines = append(lines, "use std::sync::Arc;", "")
		runtime = append(runtime,
			"BufferKind", "HandlerContext", "PayloadSize", "Runtime",
			"SignalResult", "BUFFER_STATUS_DATA",
		)
		if !slices.Contains(runtime, "GroupAddress") {
			runtime = append(runtime, "GroupAddress")
		}
	}
	lines = append(lines, useLine(buffersCrate, buffers))
	if len(runtime) > 0 {
		slices.SortFunc(runtime, compareImports)
		lines = append(lines, useLine(runtimeCrate, runtime))
	}
	for _, path := range g.file.GroupValues("rust", "use") {
		lines = append(lines, "use "+path+";")
	}
	return lines
}

// Types sort before constants, as rustfmt orders them.
func compareImports(a, b string) int {
	aConst := strings.ToUpper(a) == a
	bConst := strings.ToUpper(b) == b
	if aConst != bConst {
		if aConst {
			return 1
		}
		return -1
	}
	return strings.Compare(a, b)
}

func useLine(crate string, items []string) string {
	if len(items) == 1 {
		return "use " + crate + "::" + items[0] + ";"
	}
	return "use " + crate + "::{" + strings.Join(items, ", ") + "};"
}

func (g *generator) constBlock(block *syntax.ConstBlock) ir.Node {
	obj := &ir.Object{Name: codegen.Snake(block.Name()), Doc: block.Doc()}
	needsParent := false
	for _, item := range block.Items() {
		switch item := item.(type) {
		case *syntax.Const:
			kind, err := codegen.ClassifyConst(targetName, g.file, item)
			if err != nil {
				g.fail(err)
				continue
			}
			if kind == codegen.CONST_VARIANT || kind == codegen.CONST_ADDRESS {
				needsParent = true
			}
			obj.Members = append(obj.Members, &ir.ConstField{
				Name:  g.names.Const(item.Name()),
				Doc:   item.Doc(),
				Type:  ir.TypeOf(item.Type()),
				Value: g.codec.ConstValue(item),
				Const: true,
			})
		case *syntax.ConstBlock:
			needsParent = true
			obj.Members = append(obj.Members, g.constBlock(item))
		}
	}
	if needsParent {
		obj.Members = append([]ir.Node{&ir.Line{Text: "use super::*;"}}, obj.Members...)
	}
	return obj
}

func fields(names *codegen.Namer, decls []*syntax.Field) []*ir.VarDeclaration {
	out := make([]*ir.VarDeclaration, len(decls))
	for ii, field := range decls {
		out[ii] = &ir.VarDeclaration{
			Name:   names.Value(field.Name()),
			Doc:    field.Doc(),
			Type:   ir.TypeOf(field.Type()),
			Public: true,
		}
	}
	return out
}

func arg(name, typ string) *ir.FunctionArgument {
	return &ir.FunctionArgument{Name: name, Type: ir.Named(typ)}
}

// unused prefixes a parameter the body never reads.
func unused(name string, body []ir.Node) string {
	if len(body) == 0 {
		return "_" + name
	}
	return name
}

func (g *generator) structModel(s *syntax.Struct, internal bool) []ir.Node {
	name := g.names.Type(s.Name())
	attrs := []string{modelDerive}
	if internal {
		attrs = append([]string{"#[allow(non_camel_case_types)]"}, attrs...)
	}
	decl := &ir.Struct{
		Name:       name,
		Doc:        s.Doc(),
		Attributes: attrs,
		Fields:     fields(g.names, s.Fields()),
		Unit:       s.Unit(),
	}

	empty := len(s.Fields()) == 0
	selfValue := func() []ir.Node {
		if s.Unit() {
			return []ir.Node{&ir.Return{Value: ir.Raw("Self")}}
		}
		return nil
	}

	defaultBody := g.codec.StructDefault(s)
	readBody := g.codec.StructRead(s)
	if empty {
		if body := selfValue(); body != nil {
			defaultBody, readBody = body, body
		} else {
			defaultBody = []ir.Node{&ir.Return{Value: ir.Raw("Self {}")}}
			readBody = defaultBody
		}
	}
	writeBody := g.codec.StructWrite(s)
	skipBody := g.codec.StructSkip(s)

	out := []ir.Node{
		decl,
		&ir.Extension{Target: name, Trait: "Default", Members: []ir.Node{
			&ir.Func{Name: "default", Return: ir.Named("Self"), Body: defaultBody},
		}},
		&ir.Extension{Target: name, Trait: codecTrait, Members: []ir.Node{
			&ir.Func{
				Name:   "read_from_buffers",
				Args:   []*ir.FunctionArgument{arg(unused(codegen.ReaderVar, skipBody), readerType)},
				Return: ir.Named("Self"),
				Body:   readBody,
			},
			&ir.Func{
				Name:     "write_to_buffers",
				Receiver: "&self",
				Args:     []*ir.FunctionArgument{arg(unused(codegen.WriterVar, writeBody), writerType)},
				Body:     writeBody,
			},
			&ir.Func{
				Name: "skip_in_buffers",
				Args: []*ir.FunctionArgument{
					arg(unused(codegen.ReaderVar, skipBody), readerType),
					arg(unused(codegen.CountVar, skipBody), "u64"),
				},
				Body: skipBody,
			},
		}},
	}
	if s.Emplace() {
		emplaceBody := g.codec.StructEmplace(s)
		out = append(out, &ir.Extension{Target: name, Trait: emplaceTrait, Members: []ir.Node{
			&ir.Func{
				Name:     "read_emplace_from_buffers",
				Receiver: "&mut self",
				Args:     []*ir.FunctionArgument{arg(unused(codegen.ReaderVar, emplaceBody), readerType)},
				Body:     emplaceBody,
			},
		}})
	}
	if s.IntoBuffers() {
		out = append(out, &ir.Extension{Target: name, Members: []ir.Node{toBuffers()}})
	}
	return out
}

func toBuffers() *ir.Func {
	writer := ir.Ident(codegen.WriterVar)
	return &ir.Func{
		Name:     "to_buffers",
		Public:   true,
		Receiver: "&self",
		Return:   ir.Named("Vec<u8>"),
		Body: []ir.Node{
			ir.LetMut(codegen.WriterVar, ir.Raw("BytesWriter::new()")),
			ir.Stmt(ir.Method(&ir.Self{}, "write_to_buffers", &ir.Ref{Value: writer, Mut: true})),
			&ir.Return{Value: ir.Method(writer, "into_bytes")},
		},
	}
}

func (g *generator) enumModel(e *syntax.Enum) []ir.Node {
	name := g.names.Type(e.Name())
	decl := &ir.Enum{Name: name, Doc: e.Doc(), Attributes: []string{modelDerive}}
	for _, kase := range e.Cases() {
		c := &ir.EnumCase{Name: g.names.Case(kase.Name()), Doc: kase.Doc(), Style: kase.Style()}
		for _, field := range kase.Fields() {
			c.Fields = append(c.Fields, &ir.FunctionArgument{
				Name: g.names.Value(field.Name()),
				Type: ir.TypeOf(field.Type()),
			})
		}
		decl.Cases = append(decl.Cases, c)
	}

	skipBody := g.codec.EnumSkip(e)
	return []ir.Node{
		decl,
		&ir.Extension{Target: name, Trait: "Default", Members: []ir.Node{
			&ir.Func{Name: "default", Return: ir.Named("Self"), Body: g.codec.EnumDefault(e)},
		}},
		&ir.Extension{Target: name, Trait: codecTrait, Members: []ir.Node{
			&ir.Func{
				Name:   "read_from_buffers",
				Args:   []*ir.FunctionArgument{arg(codegen.ReaderVar, readerType)},
				Return: ir.Named("Self"),
				Body:   g.codec.EnumRead(e),
			},
			&ir.Func{
				Name:     "write_to_buffers",
				Receiver: "&self",
				Args:     []*ir.FunctionArgument{arg(codegen.WriterVar, writerType)},
				Body:     g.codec.EnumWrite(e),
			},
			&ir.Func{
				Name: "skip_in_buffers",
				Args: []*ir.FunctionArgument{
					arg(codegen.ReaderVar, readerType),
					arg(codegen.CountVar, "u64"),
				},
				Body: skipBody,
			},
		}},
	}
}
