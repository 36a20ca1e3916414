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

// Package kotlin generates the client side of a schema for Kotlin: data
// classes and sealed classes with companion codecs, constant objects and
// the RPC client class.
package kotlin

import (
	"slices"
	"strings"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/ir"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

const (
	buffersPackage = "com.techpaws.buffers"
	runtimePackage = "com.techpaws.runtime"
	readerType     = "BytesReader"
	writerType     = "BytesWriter"
)

func Generate(file *syntax.File, opts codegen.Options) (string, error) {
	names := newNamer()
	if err := codegen.CheckNames(targetName, file, names); err != nil {
		return "", err
	}
	if err := codegen.CheckNestedOptions(targetName, file); err != nil {
		return "", err
	}
	g := &generator{
		file:  file,
		names: names,
		codec: codegen.NewCodec(file, names),
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
	if pkg := g.file.GroupValues("kotlin", "package"); len(pkg) > 0 {
		add(&ir.Gap{}, &ir.Line{Text: "package " + pkg[0]})
	}
	add(&ir.Gap{})
	for _, path := range g.imports() {
		add(&ir.Line{Text: "import " + path})
	}
	add(&ir.Gap{})

	for _, node := range g.file.Nodes() {
		switch node := node.(type) {
		case *syntax.ConstBlock:
			add(g.constBlock(node))
		case *syntax.Struct:
			add(g.structModel(node))
		case *syntax.Enum:
			add(g.enumModel(node))
		}
	}
	if g.file.HasRPC() {
		add(g.rpc()...)
	}
	return root
}

func (g *generator) imports() []string {
	paths := []string{
		buffersPackage + "." + readerType,
		buffersPackage + "." + writerType,
	}
	used := codegen.UsedTypes(g.file)
	for _, name := range []string{"CommandsBufferAddress", "GroupAddress"} {
		if used[name] {
			paths = append(paths, runtimePackage+"."+name)
		}
	}
	if g.file.HasRPC() {
		for _, name := range []string{"BUFFER_STATUS_DATA", "BufferKind", "PayloadSize", "ReadTask", runtimeType} {
			paths = append(paths, runtimePackage+"."+name)
		}
		if !used["GroupAddress"] {
			paths = append(paths, runtimePackage+".GroupAddress")
		}
		if slices.ContainsFunc(g.file.Fns(), func(fn *syntax.Fn) bool { return fn.Async() && !fn.Signal() }) {
			paths = append(paths, "kotlinx.coroutines.CompletableDeferred")
		}
		if slices.ContainsFunc(g.file.Fns(), (*syntax.Fn).Signal) {
			paths = append(paths, "kotlinx.coroutines.flow.MutableSharedFlow", "kotlinx.coroutines.flow.SharedFlow")
		}
	}
	for _, path := range g.file.GroupValues("kotlin", "import") {
		if !slices.Contains(paths, path) {
			paths = append(paths, path)
		}
	}
	slices.Sort(paths)
	return paths
}

func (g *generator) constBlock(block *syntax.ConstBlock) ir.Node {
	obj := &ir.Object{Name: g.names.Type(codegen.Pascal(block.Name())), Doc: block.Doc()}
	for _, item := range block.Items() {
		switch item := item.(type) {
		case *syntax.Const:
			kind, err := codegen.ClassifyConst(targetName, g.file, item)
			if err != nil {
				g.fail(err)
				continue
			}
			obj.Members = append(obj.Members, &ir.ConstField{
				Name:  g.names.Const(item.Name()),
				Doc:   item.Doc(),
				Type:  ir.TypeOf(item.Type()),
				Value: g.codec.ConstValue(item),
				Const: kind == codegen.CONST_PRIMITIVE || kind == codegen.CONST_STRING,
			})
		case *syntax.ConstBlock:
			obj.Members = append(obj.Members, g.constBlock(item))
		}
	}
	return obj
}

func arg(name, typ string) *ir.FunctionArgument {
	return &ir.FunctionArgument{Name: name, Type: ir.Named(typ)}
}

// companion holds the static half of a codec.
func companion(name string, defaults, read, skip []ir.Node) *ir.Object {
	return &ir.Object{Companion: true, Members: []ir.Node{
		&ir.Func{
			Name:   "createBuffersDefault",
			Return: ir.Named(name),
			Body:   defaults,
		},
		&ir.Func{
			Name:   "readFromBuffers",
			Args:   []*ir.FunctionArgument{arg(codegen.ReaderVar, readerType)},
			Return: ir.Named(name),
			Body:   read,
		},
		&ir.Func{
			Name: "skipInBuffers",
			Args: []*ir.FunctionArgument{
				arg(codegen.ReaderVar, readerType),
				arg(codegen.CountVar, "ULong"),
			},
			Body: skip,
		},
	}}
}

func writeFunc(body []ir.Node) *ir.Func {
	return &ir.Func{
		Name: "writeToBuffers",
		Args: []*ir.FunctionArgument{arg(codegen.WriterVar, writerType)},
		Body: body,
	}
}

func toBuffers() *ir.Func {
	writer := ir.Ident(codegen.WriterVar)
	return &ir.Func{
		Name:   "toBuffers",
		Return: ir.Named("ByteArray"),
		Body: []ir.Node{
			ir.Let(codegen.WriterVar, ir.Raw(writerType+"()")),
			ir.Stmt(ir.Method(&ir.Self{}, "writeToBuffers", writer)),
			&ir.Return{Value: ir.Method(writer, "toByteArray")},
		},
	}
}

// unitEquality makes every instance of a fieldless class equal, as a data
// class would be.
func unitEquality(name string) []ir.Node {
	return []ir.Node{
		&ir.Func{
			Name:     "equals",
			Override: true,
			Args:     []*ir.FunctionArgument{arg("other", "Any?")},
			Return:   ir.Named("Boolean"),
			Body:     []ir.Node{&ir.Return{Value: ir.Raw("other is " + name)}},
		},
		&ir.Func{
			Name:     "hashCode",
			Override: true,
			Return:   ir.Named("Int"),
			Body:     []ir.Node{&ir.Return{Value: ir.Raw(name + "::class.hashCode()")}},
		},
	}
}

func (g *generator) structModel(s *syntax.Struct) ir.Node {
	name := g.names.Type(s.Name())
	decl := &ir.Struct{Name: name, Doc: s.Doc()}
	for _, field := range s.Fields() {
		decl.Fields = append(decl.Fields, &ir.VarDeclaration{
			Name: g.names.Value(field.Name()),
			Doc:  field.Doc(),
			Type: ir.TypeOf(field.Type()),
		})
	}
	if codegen.Reserved(s.Name()) {
		decl.Attributes = []string{`@Suppress("ClassName")`}
	}
	decl.Members = append(decl.Members, writeFunc(g.codec.StructWrite(s)))
	if s.IntoBuffers() {
		decl.Members = append(decl.Members, toBuffers())
	}
	if len(decl.Fields) == 0 {
		decl.Members = append(decl.Members, unitEquality(name)...)
	}
	decl.Members = append(decl.Members, companion(name,
		g.codec.StructDefault(s),
		g.codec.StructRead(s),
		g.codec.StructSkip(s),
	))
	return decl
}

func (g *generator) enumModel(e *syntax.Enum) ir.Node {
	name := g.names.Type(e.Name())
	decl := &ir.Enum{Name: name, Doc: e.Doc()}
	for _, kase := range e.Cases() {
		c := &ir.EnumCase{Name: g.names.Case(kase.Name()), Doc: kase.Doc(), Style: kase.Style()}
		for jj, field := range kase.Fields() {
			fieldName := field.Name()
			if fieldName == "" {
				fieldName = codegen.TupleField(jj)
			}
			c.Fields = append(c.Fields, &ir.FunctionArgument{
				Name: g.names.Value(fieldName),
				Type: ir.TypeOf(field.Type()),
			})
		}
		decl.Cases = append(decl.Cases, c)
	}
	decl.Members = []ir.Node{
		writeFunc(g.codec.EnumWrite(e)),
		companion(name,
			g.codec.EnumDefault(e),
			g.codec.EnumRead(e),
			g.codec.EnumSkip(e),
		),
	}
	return decl
}
