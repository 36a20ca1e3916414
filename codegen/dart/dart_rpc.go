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
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/ir"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

const (
	runtimeType  = "TechPawsRuntime"
	addressType  = "GroupAddress"
	taskType     = "ReadTask"
	statusData   = "bufferStatusData"
	serverBuffer = "BufferKind.server"
	clientBuffer = "BufferKind.client"
	runtimeVar   = "runtime"
	addressesVar = "addresses"
	runtimeField = "_runtime"
	addressField = "_addresses"
	methodIDVar  = "_methodId"
	readTasksVar = "_readTasks"
	idVar        = "id"
	resultVar    = "result"
	completerVar = "completer"
	scopeIDConst = "scopeId"

	// maxMethodID keeps rotating ids within the positive i64 range.
	maxMethodID = "0x7FFFFFFFFFFFFFFF"
)

func (g *generator) clientName() string {
	return codegen.Pascal(g.file.Namespace()) + "RpcClient"
}

func (g *generator) controllerName(m *codegen.Method) string {
	return "_" + g.names.Value(m.Name()) + "Controller"
}

func (g *generator) pendingName(m *codegen.Method) string {
	return "_" + g.names.Value(m.Name()) + "Calls"
}

func (g *generator) readerName(m *codegen.Method) string {
	return "_read" + codegen.Pascal(m.Name())
}

func returnTypeName(fn *syntax.Fn) string {
	if fn.Return() == nil {
		return "void"
	}
	return typeName(fn.Return())
}

func (g *generator) rpc() []ir.Node {
	methods := codegen.Methods(g.file)
	var out []ir.Node
	for _, m := range methods {
		if m.Args != nil {
			out = append(out, g.structModel(m.Args))
		}
	}
	return append(out, g.client(methods))
}

func listens(m *codegen.Method) bool {
	return m.Flavor != codegen.FLAVOR_SYNC
}

func signal(m *codegen.Method) bool {
	return m.Flavor == codegen.FLAVOR_SIGNAL || m.Flavor == codegen.FLAVOR_ASYNC_SIGNAL
}

func (g *generator) client(methods []*codegen.Method) *ir.Class {
	class := &ir.Class{
		Name:      g.clientName(),
		Modifiers: []string{"final"},
	}
	add := func(nodes ...ir.Node) {
		class.Members = append(class.Members, nodes...)
	}
	add(
		&ir.ConstField{
			Name:  scopeIDConst,
			Type:  ir.Named("String"),
			Value: &ir.StringLit{Value: codegen.ScopeID(g.file)},
			Const: true,
		},
		&ir.VarDeclaration{Name: runtimeField, Type: ir.Named(runtimeType)},
		&ir.VarDeclaration{Name: addressField, Type: ir.Named(addressType)},
		&ir.VarDeclaration{Name: methodIDVar, Type: ir.Named("int"), Value: &ir.Int{Value: 0}, Mutable: true},
		&ir.VarDeclaration{Name: readTasksVar, Value: ir.Raw("<" + taskType + ">[]")},
	)
	var getters []ir.Node
	for _, m := range methods {
		switch {
		case signal(m):
			elem := typeName(m.Fn.Return())
			add(&ir.VarDeclaration{
				Name:  g.controllerName(m),
				Value: ir.Raw("StreamController<" + elem + ">.broadcast()"),
			})
			for _, line := range m.Fn.Doc() {
				getters = append(getters, &ir.Line{Text: "/// " + line})
			}
			getters = append(getters, &ir.Line{
				Text: "Stream<" + elem + "> get " + g.names.Value(m.Name()) + " => " + g.controllerName(m) + ".stream;",
			})
		case m.Flavor == codegen.FLAVOR_ASYNC:
			add(&ir.VarDeclaration{
				Name:  g.pendingName(m),
				Value: ir.Raw("<int, Completer<" + returnTypeName(m.Fn) + ">>{}"),
			})
		}
	}
	add(getters...)
	add(g.constructor(methods), g.disconnect(methods))
	templates := &rpcTemplates{g: g}
	for _, m := range methods {
		add(codegen.Dispatch(templates, m)...)
	}
	add(g.register(methods))
	return class
}

// constructor stores the runtime and registers a reader on the Client
// buffer of every method whose replies arrive outside of a call.
func (g *generator) constructor(methods []*codegen.Method) ir.Node {
	signature := g.clientName() + "(this." + runtimeField + ", this." + addressField + ")"
	block := &ir.NamedBlock{Header: signature + " {", Footer: "}"}
	for _, m := range methods {
		if !listens(m) {
			continue
		}
		handler := &ir.Closure{
			Params: []string{codegen.ReaderVar},
			Body:   ir.FreeCall(g.readerName(m), ir.Ident(codegen.ReaderVar)),
		}
		task := ir.Method(ir.Ident(runtimeField), "onRead", bufferArgs(m, clientBuffer, handler))
		block.Body = append(block.Body, ir.Stmt(ir.Method(ir.Ident(readTasksVar), "add", task)))
	}
	if len(block.Body) == 0 {
		return &ir.Line{Text: signature + ";"}
	}
	return block
}

// disconnect stops listening, fails every pending call and closes every
// signal stream.
func (g *generator) disconnect(methods []*codegen.Method) *ir.Func {
	fn := &ir.Func{
		Name: "disconnect",
		Body: []ir.Node{
			&ir.ForLoop{
				Var:      "task",
				Iterable: ir.Ident(readTasksVar),
				Body:     []ir.Node{ir.Stmt(ir.Method(ir.Ident("task"), "cancel"))},
			},
			ir.Stmt(ir.Method(ir.Ident(readTasksVar), "clear")),
		},
	}
	for _, m := range methods {
		if m.Flavor == codegen.FLAVOR_ASYNC {
			pending := ir.Ident(g.pendingName(m))
			fn.Body = append(fn.Body,
				&ir.ForLoop{
					Var:      completerVar,
					Iterable: ir.Field(pending, "values"),
					Body: []ir.Node{ir.Stmt(ir.Method(ir.Ident(completerVar), "completeError",
						ir.Raw("StateError('"+g.clientName()+" disconnected')")))},
				},
				ir.Stmt(ir.Method(pending, "clear")),
			)
		}
		if signal(m) {
			fn.Body = append(fn.Body, ir.Stmt(ir.Method(ir.Ident(g.controllerName(m)), "close")))
		}
	}
	return fn
}

func bufferArgs(m *codegen.Method, kind string, extra ...ir.Expr) *ir.PositionalArguments {
	return ir.Args(append([]ir.Expr{
		ir.Ident(scopeIDConst),
		ir.Ident(addressField),
		&ir.Int{Value: int64(m.Address)},
		ir.Raw(kind),
	}, extra...)...)
}

type rpcTemplates struct {
	g *generator
}

var _ codegen.RpcTemplates = (*rpcTemplates)(nil)

func (t *rpcTemplates) stub(m *codegen.Method, ret ir.TypeRef, body []ir.Node) *ir.Func {
	fn := &ir.Func{
		Name:   t.g.names.Value(m.Name()),
		Doc:    m.Fn.Doc(),
		Return: ret,
		Body:   body,
	}
	for _, a := range m.UserArgs() {
		fn.Args = append(fn.Args, &ir.FunctionArgument{
			Name: t.g.names.Value(a.Name()),
			Type: ir.TypeOf(a.Type()),
		})
	}
	return fn
}

// request writes the status byte and the argument struct to the Server
// buffer.
func (t *rpcTemplates) request(m *codegen.Method, methodID ir.Expr) []ir.Node {
	writer := ir.Ident(codegen.WriterVar)
	out := []ir.Node{
		ir.Let(codegen.WriterVar, ir.Method(ir.Ident(runtimeField), "writer", bufferArgs(m, serverBuffer))),
		ir.Stmt(ir.Method(writer, "writeU8", ir.Raw(statusData))),
	}
	if m.Args == nil || len(m.Args.Fields()) == 0 {
		return out
	}
	args := &ir.NamedArguments{}
	if methodID != nil {
		args.Items = append(args.Items, ir.NamedArgument{Name: t.g.names.Value(codegen.MethodIDField), Value: methodID})
	}
	for _, a := range m.UserArgs() {
		name := t.g.names.Value(a.Name())
		args.Items = append(args.Items, ir.NamedArgument{Name: name, Value: ir.Ident(name)})
	}
	value := &ir.NewInstance{Type: ir.Named(t.g.names.Type(m.Args.Name())), Args: args}
	return append(out, ir.Stmt(ir.Method(value, "writeToBuffers", writer)))
}

func statusCheck(otherwise ir.Node) ir.Node {
	return &ir.If{
		Cond: &ir.Binary{Op: "!=", Left: ir.Method(ir.Ident(codegen.ReaderVar), "readU8"), Right: ir.Raw(statusData)},
		Then: []ir.Node{otherwise},
	}
}

func (t *rpcTemplates) Sync(m *codegen.Method) []ir.Node {
	t.g.codec.Begin()
	body := t.request(m, nil)
	body = append(body,
		ir.Stmt(ir.Method(ir.Ident(runtimeField), "loopSyncGroup", ir.Ident(addressField))),
		&ir.Gap{},
		ir.Let(codegen.ReaderVar, ir.Method(ir.Ident(runtimeField), "reader", bufferArgs(m, clientBuffer))),
		statusCheck(&ir.Fatal{Message: "Empty reply for " + m.Name()}),
	)
	var ret ir.TypeRef
	if r := m.Fn.Return(); r != nil {
		ret = ir.TypeOf(r)
		body = append(body, &ir.Return{Value: t.g.codec.Read(r)})
	}
	return []ir.Node{t.stub(m, ret, body)}
}

// Async returns the future of a completer that the reply reader resolves
// by method id.
func (t *rpcTemplates) Async(m *codegen.Method) []ir.Node {
	t.g.codec.Begin()
	pending := ir.Ident(t.g.pendingName(m))
	body := []ir.Node{
		&ir.Set{Target: ir.Ident(methodIDVar), Value: ir.Raw("(" + methodIDVar + " + 1) & " + maxMethodID)},
		ir.Let(idVar, ir.Ident(methodIDVar)),
		ir.Let(completerVar, ir.Raw("Completer<"+returnTypeName(m.Fn)+">()")),
		&ir.Set{Target: &ir.Index{Receiver: pending, Index: ir.Ident(idVar)}, Value: ir.Ident(completerVar)},
	}
	body = append(body, t.request(m, ir.Ident(idVar))...)
	body = append(body, &ir.Return{Value: ir.Field(ir.Ident(completerVar), "future")})
	stub := t.stub(m, ir.Named("Future<"+returnTypeName(m.Fn)+">"), body)

	t.g.codec.Begin()
	reply := []ir.Node{
		statusCheck(&ir.Return{}),
		ir.Let(idVar, ir.Method(ir.Ident(codegen.ReaderVar), "readI64")),
	}
	var value []ir.Expr
	if ret := m.Fn.Return(); ret != nil {
		reply = append(reply, ir.Let(resultVar, t.g.codec.Read(ret)))
		value = append(value, ir.Ident(resultVar))
	}
	removed := ir.Raw(t.g.pendingName(m) + ".remove(" + idVar + ")?")
	reply = append(reply, ir.Stmt(ir.Method(removed, "complete", value...)))
	return []ir.Node{stub, t.replyReader(m, reply)}
}

func (t *rpcTemplates) replyReader(m *codegen.Method, body []ir.Node) *ir.Func {
	return &ir.Func{
		Name: t.g.readerName(m),
		Args: []*ir.FunctionArgument{arg(codegen.ReaderVar, readerType)},
		Body: body,
	}
}

func (t *rpcTemplates) Signal(m *codegen.Method) []ir.Node {
	t.g.codec.Begin()
	return []ir.Node{t.replyReader(m, []ir.Node{
		statusCheck(&ir.Return{}),
		ir.Stmt(ir.Method(ir.Ident(t.g.controllerName(m)), "add", t.g.codec.Read(m.Fn.Return()))),
	})}
}

// AsyncSignal is read like a signal; the producer's busy flag lives on
// the serving side.
func (t *rpcTemplates) AsyncSignal(m *codegen.Method) []ir.Node {
	return t.Signal(m)
}

func (g *generator) register(methods []*codegen.Method) *ir.Func {
	fn := &ir.Func{
		Name:   "registerRpc",
		Static: true,
		Args: []*ir.FunctionArgument{
			arg(runtimeVar, runtimeType),
			arg(addressesVar, addressType),
		},
		Return: ir.Named(g.clientName()),
		Body: []ir.Node{
			ir.Stmt(ir.Method(ir.Ident(runtimeVar), "declareScope", ir.Ident(scopeIDConst))),
		},
	}
	for _, m := range methods {
		fn.Body = append(fn.Body, ir.Stmt(ir.Method(ir.Ident(runtimeVar), "bind",
			ir.Ident(scopeIDConst),
			ir.Ident(addressesVar),
			&ir.Int{Value: int64(m.Address)},
			ir.Raw("PayloadSize."+codegen.Camel(m.PayloadSize.String())),
		)))
	}
	fn.Body = append(fn.Body, &ir.Return{Value: &ir.NewInstance{
		Type: ir.Named(g.clientName()),
		Args: ir.Args(ir.Ident(runtimeVar), ir.Ident(addressesVar)),
	}})
	return fn
}
