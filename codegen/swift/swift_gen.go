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

// Package swift generates the client side of a schema for Swift: value
// types with their codecs, constants and the RPC client class.
package swift

import (
	"slices"
	"strings"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/ir"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

const (
	buffersModule = "TechPawsBuffers"
	runtimeModule = "TechPawsRuntime"
	codecProtocol = "BuffersCodable"
	emplaceProto  = "BuffersEmplaceable"
	readerType    = "BytesReader"
	writerType    = "BytesWriter"
	equatable     = "Equatable"
)

func Generate(file *syntax.File, opts codegen.Options) (string, error) {
	names := newNamer()
	if err := codegen.CheckNames(targetName, file, names); err != nil {
		return "", err
	}
	g := &generator{
		file:  file,
		names: names,
		codec: codegen.NewCodec(file, names, codegen.DestructurePatterns()),
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
			add(&ir.Line{Text: strings.TrimRight("// "+line, " ")})
		}
	}
	add(&ir.Gap{})
	for _, module := range g.imports() {
		add(&ir.Line{Text: "import " + module})
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
	modules := []string{"Foundation"}
	if slices.ContainsFunc(g.file.Fns(), (*syntax.Fn).Signal) {
		modules = append(modules, "Combine")
	}
	modules = append(modules, buffersModule)
	used := codegen.UsedTypes(g.file)
	if g.file.HasRPC() || used["GroupAddress"] || used["CommandsBufferAddress"] {
		modules = append(modules, runtimeModule)
	}
	for _, module := range g.file.GroupValues("swift", "import") {
		if !slices.Contains(modules, module) {
			modules = append(modules, module)
		}
	}
	return modules
}

func (g *generator) constBlock(block *syntax.ConstBlock) ir.Node {
	obj := &ir.Object{Name: g.names.Type(codegen.Pascal(block.Name())), Doc: block.Doc()}
	for _, item := range block.Items() {
		switch item := item.(type) {
		case *syntax.Const:
			if _, err := codegen.ClassifyConst(targetName, g.file, item); err != nil {
				g.fail(err)
				continue
			}
			obj.Members = append(obj.Members, &ir.ConstField{
				Name:  g.names.Const(item.Name()),
				Doc:   item.Doc(),
				Type:  ir.TypeOf(item.Type()),
				Value: g.codec.ConstValue(item),
				Const: true,
			})
		case *syntax.ConstBlock:
			obj.Members = append(obj.Members, g.constBlock(item))
		}
	}
	return obj
}

func readerArg() *ir.FunctionArgument {
	return &ir.FunctionArgument{Label: "_", Name: codegen.ReaderVar, Type: ir.Named(readerType)}
}

func writerArg() *ir.FunctionArgument {
	return &ir.FunctionArgument{Label: "_", Name: codegen.WriterVar, Type: ir.Named(writerType)}
}

func countArg() *ir.FunctionArgument {
	return &ir.FunctionArgument{Label: "_", Name: codegen.CountVar, Type: ir.Named("UInt64")}
}

// codecMembers are the members every model type implements for the
// codec protocol.
func codecMembers(name string, defaults, read, write, skip []ir.Node) []ir.Node {
	return []ir.Node{
		&ir.Func{
			Name:   "createBuffersDefault",
			Public: true,
			Static: true,
			Return: ir.Named(name),
			Body:   defaults,
		},
		&ir.Func{
			Name:   "readFromBuffers",
			Public: true,
			Static: true,
			Args:   []*ir.FunctionArgument{readerArg()},
			Return: ir.Named(name),
			Body:   read,
		},
		&ir.Func{
			Name:   "writeToBuffers",
			Public: true,
			Args:   []*ir.FunctionArgument{writerArg()},
			Body:   write,
		},
		&ir.Func{
			Name:   "skipInBuffers",
			Public: true,
			Static: true,
			Args:   []*ir.FunctionArgument{readerArg(), countArg()},
			Body:   skip,
		},
	}
}

func (g *generator) structModel(s *syntax.Struct, internal bool) []ir.Node {
	name := g.names.Type(s.Name())
	decl := &ir.Struct{
		Name:     name,
		Doc:      s.Doc(),
		Conforms: []string{equatable},
	}
	init := &ir.Func{Name: "init", Public: !internal}
	for _, field := range s.Fields() {
		fieldName := g.names.Value(field.Name())
		decl.Fields = append(decl.Fields, &ir.VarDeclaration{
			Name:    fieldName,
			Doc:     field.Doc(),
			Type:    ir.TypeOf(field.Type()),
			Mutable: true,
			Public:  !internal,
		})
		init.Args = append(init.Args, &ir.FunctionArgument{Name: fieldName, Type: ir.TypeOf(field.Type())})
		init.Body = append(init.Body, &ir.Set{
			Target: ir.Field(&ir.Self{}, fieldName),
			Value:  ir.Ident(fieldName),
		})
	}
	decl.Members = []ir.Node{init}

	out := []ir.Node{
		decl,
		&ir.Extension{Target: name, Trait: codecProtocol, Members: codecMembers(name,
			g.codec.StructDefault(s),
			g.codec.StructRead(s),
			g.codec.StructWrite(s),
			g.codec.StructSkip(s),
		)},
	}
	if s.Emplace() {
		out = append(out, &ir.Extension{Target: name, Trait: emplaceProto, Members: []ir.Node{
			&ir.Func{
				Name:     "readEmplaceFromBuffers",
				Public:   true,
				Mutating: true,
				Args:     []*ir.FunctionArgument{readerArg()},
				Body:     g.codec.StructEmplace(s),
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
		Name:   "toBuffers",
		Public: true,
		Return: ir.Named("[UInt8]"),
		Body: []ir.Node{
			ir.Let(codegen.WriterVar, ir.Raw(writerType+"()")),
			ir.Stmt(ir.Method(&ir.Self{}, "writeToBuffers", writer)),
			&ir.Return{Value: ir.Field(writer, "bytes")},
		},
	}
}

func (g *generator) enumModel(e *syntax.Enum) []ir.Node {
	name := g.names.Type(e.Name())
	decl := &ir.Enum{Name: name, Doc: e.Doc(), Conforms: []string{equatable}}
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
	return []ir.Node{
		decl,
		&ir.Extension{Target: name, Trait: codecProtocol, Members: codecMembers(name,
			g.codec.EnumDefault(e),
			g.codec.EnumRead(e),
			g.codec.EnumWrite(e),
			g.codec.EnumSkip(e),
		)},
	}
}
