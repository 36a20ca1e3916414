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
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/ir"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

const (
	runtimeType  = "TechPawsRuntime"
	addressType  = "GroupAddress"
	taskType     = "ReadTask"
	statusData   = "BUFFER_STATUS_DATA"
	serverBuffer = "BufferKind.SERVER"
	clientBuffer = "BufferKind.CLIENT"
	runtimeVar   = "runtime"
	addressesVar = "addresses"
	methodIDVar  = "methodId"
	readTasksVar = "readTasks"
	idVar        = "id"
	resultVar    = "result"
	deferredVar  = "deferred"
	scopeIDConst = "SCOPE_ID"
)

func (g *generator) clientName() string {
	return codegen.Pascal(g.file.Namespace()) + "RpcClient"
}

func (g *generator) flowName(m *codegen.Method) string {
	return g.names.Value(m.Name()) + "Flow"
}

func (g *generator) pendingName(m *codegen.Method) string {
	return g.names.Value(m.Name()) + "Calls"
}

func (g *generator) readerName(m *codegen.Method) string {
	return "read" + codegen.Pascal(m.Name())
}

func returnTypeName(fn *syntax.Fn) string {
	if fn.Return() == nil {
		return "Unit"
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
		Name: g.clientName(),
		Params: []*ir.FunctionArgument{
			{Name: runtimeVar, Type: ir.Named(runtimeType)},
			{Name: addressesVar, Type: ir.Named(addressType)},
		},
	}
	add := func(nodes ...ir.Node) {
		class.Members = append(class.Members, nodes...)
	}
	add(
		&ir.VarDeclaration{Name: methodIDVar, Type: ir.Named("Long"), Value: ir.Raw("0L"), Mutable: true, Private: true},
		&ir.VarDeclaration{Name: readTasksVar, Value: ir.Raw("mutableListOf<" + taskType + ">()"), Private: true},
	)
	for _, m := range methods {
		switch {
		case signal(m):
			elem := typeName(m.Fn.Return())
			add(
				&ir.VarDeclaration{
					Name:    g.flowName(m),
					Value:   ir.Raw("MutableSharedFlow<" + elem + ">(extraBufferCapacity = 64)"),
					Private: true,
				},
				&ir.VarDeclaration{
					Name:  g.names.Value(m.Name()),
					Doc:   m.Fn.Doc(),
					Type:  ir.Named("SharedFlow<" + elem + ">"),
					Value: ir.Ident(g.flowName(m)),
				},
			)
		case m.Flavor == codegen.FLAVOR_ASYNC:
			add(&ir.VarDeclaration{
				Name:    g.pendingName(m),
				Value:   ir.Raw("mutableMapOf<Long, CompletableDeferred<" + returnTypeName(m.Fn) + ">>()"),
				Private: true,
			})
		}
	}

	add(&ir.Gap{}, g.init(methods), g.disconnect(methods))
	templates := &rpcTemplates{g: g}
	for _, m := range methods {
		add(codegen.Dispatch(templates, m)...)
	}
	add(g.companion(methods))
	return class
}

// init registers a reader on the Client buffer of every method whose
// replies arrive outside of a call.
func (g *generator) init(methods []*codegen.Method) *ir.NamedBlock {
	block := &ir.NamedBlock{Header: "init {", Footer: "}"}
	for _, m := range methods {
		if !listens(m) {
			continue
		}
		handler := &ir.Closure{
			Params: []string{codegen.ReaderVar},
			Body:   ir.FreeCall(g.readerName(m), ir.Ident(codegen.ReaderVar)),
		}
		task := &ir.Call{
			Receiver: ir.Ident(runtimeVar),
			Name:     "onRead",
			Args:     bufferArgs(m, ir.Ident(addressesVar), clientBuffer, handler),
		}
		block.Body = append(block.Body, ir.Stmt(ir.Method(ir.Ident(readTasksVar), "add", task)))
	}
	return block
}

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
					Var:      "deferred",
					Iterable: ir.Field(pending, "values"),
					Body: []ir.Node{ir.Stmt(ir.Method(ir.Ident("deferred"), "completeExceptionally",
						ir.Raw("IllegalStateException("+quote(g.clientName()+" disconnected")+")")))},
				},
				ir.Stmt(ir.Method(pending, "clear")),
			)
		}
	}
	return fn
}

func bufferArgs(m *codegen.Method, addresses ir.Expr, kind string, extra ...ir.Expr) *ir.PositionalArguments {
	return ir.Args(append([]ir.Expr{
		ir.Ident(scopeIDConst),
		addresses,
		&ir.Int{Value: int64(m.Address)},
		ir.Raw(kind),
	}, extra...)...)
}

type rpcTemplates struct {
	g *generator
}

var _ codegen.RpcTemplates = (*rpcTemplates)(nil)

func (t *rpcTemplates) stub(m *codegen.Method, body []ir.Node) *ir.Func {
	fn := &ir.Func{
		Name:  t.g.names.Value(m.Name()),
		Doc:   m.Fn.Doc(),
		Async: m.Flavor == codegen.FLAVOR_ASYNC,
		Body:  body,
	}
	for _, a := range m.UserArgs() {
		fn.Args = append(fn.Args, &ir.FunctionArgument{
			Name: t.g.names.Value(a.Name()),
			Type: ir.TypeOf(a.Type()),
		})
	}
	if ret := m.Fn.Return(); ret != nil {
		fn.Return = ir.TypeOf(ret)
	}
	return fn
}

// request writes the status byte and the argument struct to the Server
// buffer.
func (t *rpcTemplates) request(m *codegen.Method, methodID ir.Expr) []ir.Node {
	writer := ir.Ident(codegen.WriterVar)
	out := []ir.Node{
		ir.Let(codegen.WriterVar, ir.Method(ir.Ident(runtimeVar), "writer", bufferArgs(m, ir.Ident(addressesVar), serverBuffer))),
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
		ir.Stmt(ir.Method(ir.Ident(runtimeVar), "loopSyncGroup", ir.Ident(addressesVar))),
		&ir.Gap{},
		ir.Let(codegen.ReaderVar, ir.Method(ir.Ident(runtimeVar), "reader", bufferArgs(m, ir.Ident(addressesVar), clientBuffer))),
		statusCheck(&ir.Fatal{Message: "Empty reply for " + m.Name()}),
	)
	if ret := m.Fn.Return(); ret != nil {
		body = append(body, &ir.Return{Value: t.g.codec.Read(ret)})
	}
	return []ir.Node{t.stub(m, body)}
}

func (t *rpcTemplates) Async(m *codegen.Method) []ir.Node {
	t.g.codec.Begin()
	pending := ir.Ident(t.g.pendingName(m))
	body := []ir.Node{
		&ir.Set{Target: ir.Ident(methodIDVar), Value: ir.Raw("(methodId + 1) and Long.MAX_VALUE")},
		ir.Let(idVar, ir.Ident(methodIDVar)),
		ir.Let(deferredVar, ir.Raw("CompletableDeferred<"+returnTypeName(m.Fn)+">()")),
		&ir.Set{Target: &ir.Index{Receiver: pending, Index: ir.Ident(idVar)}, Value: ir.Ident(deferredVar)},
	}
	body = append(body, t.request(m, ir.Ident(idVar))...)
	wait := &ir.Await{Value: ir.Ident(deferredVar)}
	if m.Fn.Return() != nil {
		body = append(body, &ir.Return{Value: wait})
	} else {
		body = append(body, ir.Stmt(wait))
	}
	stub := t.stub(m, body)

	t.g.codec.Begin()
	reply := []ir.Node{
		statusCheck(&ir.Return{}),
		ir.Let(idVar, ir.Method(ir.Ident(codegen.ReaderVar), "readI64")),
	}
	value := ir.Expr(ir.Raw("Unit"))
	if ret := m.Fn.Return(); ret != nil {
		reply = append(reply, ir.Let(resultVar, t.g.codec.Read(ret)))
		value = ir.Ident(resultVar)
	}
	reply = append(reply, ir.Stmt(ir.Method(
		ir.Raw(t.g.pendingName(m)+".remove("+idVar+")?"),
		"complete",
		value,
	)))
	return []ir.Node{stub, t.replyReader(m, reply)}
}

func (t *rpcTemplates) replyReader(m *codegen.Method, body []ir.Node) *ir.Func {
	return &ir.Func{
		Name:    t.g.readerName(m),
		Private: true,
		Args:    []*ir.FunctionArgument{arg(codegen.ReaderVar, readerType)},
		Body:    body,
	}
}

func (t *rpcTemplates) Signal(m *codegen.Method) []ir.Node {
	t.g.codec.Begin()
	return []ir.Node{t.replyReader(m, []ir.Node{
		statusCheck(&ir.Return{}),
		ir.Stmt(ir.Method(ir.Ident(t.g.flowName(m)), "tryEmit", t.g.codec.Read(m.Fn.Return()))),
	})}
}

// AsyncSignal is read like a signal; the producer's busy flag lives on
// the serving side.
func (t *rpcTemplates) AsyncSignal(m *codegen.Method) []ir.Node {
	return t.Signal(m)
}

// companion holds the scope id and the function that declares the scope
// and binds every method before handing out a client.
func (g *generator) companion(methods []*codegen.Method) *ir.Object {
	register := &ir.Func{
		Name: "registerRpc",
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
		register.Body = append(register.Body, ir.Stmt(ir.Method(ir.Ident(runtimeVar), "bind",
			ir.Ident(scopeIDConst),
			ir.Ident(addressesVar),
			&ir.Int{Value: int64(m.Address)},
			ir.Raw("PayloadSize."+codegen.Screaming(m.PayloadSize.String())),
		)))
	}
	register.Body = append(register.Body, &ir.Return{Value: &ir.NewInstance{
		Type: ir.Named(g.clientName()),
		Args: ir.Args(ir.Ident(runtimeVar), ir.Ident(addressesVar)),
	}})
	return &ir.Object{Companion: true, Members: []ir.Node{
		&ir.ConstField{
			Name:  scopeIDConst,
			Type:  ir.Named("String"),
			Value: &ir.StringLit{Value: codegen.ScopeID(g.file)},
			Const: true,
		},
		register,
	}}
}
