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

// Package dart generates the client side of a schema for Dart: immutable
// classes and sealed hierarchies with their codecs, constant classes and
// the RPC client class.
package dart

import (
	"slices"
	"strings"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/ir"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

const (
	collectionImport = "package:collection/collection.dart"
	buffersImport    = "package:tech_paws_buffers/tech_paws_buffers.dart"
	runtimeImport    = "package:tech_paws_runtime/tech_paws_runtime.dart"
	readerType       = "BytesReader"
	writerType       = "BytesWriter"

	// ignoreLints relaxes the lints that generated names trip, unless the
	// schema sets the dart(strict) flag.
	ignoreLints = "// ignore_for_file: non_constant_identifier_names, camel_case_types"
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
	return ir.Print(root, dialect{}, opts.Indent(2))
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
	if !g.file.GroupFlag("dart", "strict") {
		add(&ir.Gap{}, &ir.Line{Text: ignoreLints})
	}
	add(&ir.Gap{})
	for _, path := range g.imports() {
		add(&ir.Line{Text: "import '" + path + "';"})
	}
	add(&ir.Gap{})

	for _, node := range g.file.Nodes() {
		switch node := node.(type) {
		case *syntax.ConstBlock:
			add(g.constBlock(node, "")...)
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
	var paths []string
	if slices.ContainsFunc(g.file.Fns(), func(fn *syntax.Fn) bool { return fn.Async() || fn.Signal() }) {
		paths = append(paths, "dart:async")
	}
	if slices.ContainsFunc(g.file.Structs(), (*syntax.Struct).IntoBuffers) {
		paths = append(paths, "dart:typed_data")
	}
	used := codegen.UsedTypes(g.file)
	if used["Vec"] {
		paths = append(paths, collectionImport)
	}
	paths = append(paths, buffersImport)
	if g.file.HasRPC() || used["GroupAddress"] || used["CommandsBufferAddress"] {
		paths = append(paths, runtimeImport)
	}
	for _, path := range g.file.GroupValues("dart", "import") {
		if !slices.Contains(paths, path) {
			paths = append(paths, path)
		}
	}
	return paths
}

// constBlock flattens nested blocks into sibling classes whose names carry
// the path of enclosing blocks, since Dart classes do not nest.
func (g *generator) constBlock(block *syntax.ConstBlock, prefix string) []ir.Node {
	name := prefix + codegen.Pascal(block.Name())
	obj := &ir.Object{Name: g.names.Type(name), Doc: block.Doc()}
	out := []ir.Node{obj}
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
				Const: kind != codegen.CONST_ADDRESS,
			})
		case *syntax.ConstBlock:
			out = append(out, g.constBlock(item, name)...)
		}
	}
	return out
}

func arg(name, typ string) *ir.FunctionArgument {
	return &ir.FunctionArgument{Name: name, Type: ir.Named(typ)}
}

func codecMembers(name string, defaults, read, write, skip []ir.Node) []ir.Node {
	return []ir.Node{
		&ir.Func{
			Name:   "createBuffersDefault",
			Static: true,
			Return: ir.Named(name),
			Body:   defaults,
		},
		&ir.Func{
			Name:   "readFromBuffers",
			Static: true,
			Args:   []*ir.FunctionArgument{arg(codegen.ReaderVar, readerType)},
			Return: ir.Named(name),
			Body:   read,
		},
		&ir.Func{
			Name:   "skipInBuffers",
			Static: true,
			Args: []*ir.FunctionArgument{
				arg(codegen.ReaderVar, readerType),
				arg(codegen.CountVar, "int"),
			},
			Body: skip,
		},
		&ir.Func{
			Name: "writeToBuffers",
			Args: []*ir.FunctionArgument{arg(codegen.WriterVar, writerType)},
			Body: write,
		},
	}
}

func toBuffers() *ir.Func {
	writer := ir.Ident(codegen.WriterVar)
	return &ir.Func{
		Name:   "toBuffers",
		Return: ir.Named("Uint8List"),
		Body: []ir.Node{
			ir.Let(codegen.WriterVar, ir.Raw(writerType+"()")),
			ir.Stmt(ir.Method(&ir.Self{}, "writeToBuffers", writer)),
			&ir.Return{Value: ir.Method(writer, "toBytes")},
		},
	}
}

// deepEquality compares lists element by element.
const deepEquality = "const DeepCollectionEquality()"

// equality gives a model class value semantics. Fields holding a list
// compare through package:collection.
func equality(name string, fields []*ir.FunctionArgument) []ir.Node {
	test := []string{"other is " + name}
	hashed := make([]string, len(fields))
	for ii, field := range fields {
		self := "this." + field.Name
		if hasList(field.Type.ID) {
			test = append(test, deepEquality+".equals(other."+field.Name+", "+self+")")
			hashed[ii] = deepEquality + ".hash(" + self + ")"
			continue
		}
		test = append(test, "other."+field.Name+" == "+self)
		hashed[ii] = self
	}
	hash := "runtimeType.hashCode"
	if len(hashed) > 0 {
		hash = "Object.hashAll([" + strings.Join(hashed, ", ") + "])"
	}
	return []ir.Node{
		&ir.Func{
			Name:        "operator ==",
			Annotations: []string{"@override"},
			Args:        []*ir.FunctionArgument{arg("other", "Object")},
			Return:      ir.Named("bool"),
			Body:        []ir.Node{&ir.Return{Value: ir.Raw(strings.Join(test, " && "))}},
		},
		&ir.Func{
			Name:        "hashCode",
			Annotations: []string{"@override"},
			Getter:      true,
			Return:      ir.Named("int"),
			Body:        []ir.Node{&ir.Return{Value: ir.Raw(hash)}},
		},
	}
}

func hasList(t *syntax.TypeID) bool {
	if t == nil {
		return false
	}
	if t.IsVec() {
		return true
	}
	return slices.ContainsFunc(t.Args(), hasList)
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
	decl.Members = codecMembers(name,
		g.codec.StructDefault(s),
		g.codec.StructRead(s),
		g.codec.StructWrite(s),
		g.codec.StructSkip(s),
	)
	if s.IntoBuffers() {
		decl.Members = append(decl.Members, toBuffers())
	}
	fields := make([]*ir.FunctionArgument, len(decl.Fields))
	for ii, field := range decl.Fields {
		fields[ii] = &ir.FunctionArgument{Name: field.Name, Type: field.Type}
	}
	decl.Members = append(decl.Members, equality(name, fields)...)
	return decl
}

func (g *generator) enumModel(e *syntax.Enum) ir.Node {
	name := g.names.Type(e.Name())
	decl := &ir.Enum{Name: name, Doc: e.Doc()}
	for _, kase := range e.Cases() {
		c := &ir.EnumCase{Name: g.names.Case(kase.Name()), Doc: kase.Doc(), Style: kase.Style()}
		for ii, field := range kase.Fields() {
			fieldName := field.Name()
			if fieldName == "" {
				fieldName = codegen.TupleField(ii)
			}
			c.Fields = append(c.Fields, &ir.FunctionArgument{
				Name: g.names.Value(fieldName),
				Type: ir.TypeOf(field.Type()),
			})
		}
		c.Members = equality(caseClass(name, c.Name), c.Fields)
		decl.Cases = append(decl.Cases, c)
	}
	decl.Members = codecMembers(name,
		g.codec.EnumDefault(e),
		g.codec.EnumRead(e),
		g.codec.EnumWrite(e),
		g.codec.EnumSkip(e),
	)
	return decl
}
