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
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/ir"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

const (
	runtimeType  = "TechPawsRuntime"
	addressType  = "GroupAddress"
	taskType     = "ReadTask"
	statusData   = "bufferStatusData"
	runtimeVar   = "runtime"
	addressesVar = "addresses"
	methodIDVar  = "methodId"
	idVar        = "id"
	resultVar    = "result"
	scopeIDVar   = "scopeId"
)

func (g *generator) clientName() string {
	return codegen.Pascal(g.file.Namespace()) + "RpcClient"
}

func member(name string) ir.Expr {
	return ir.Field(&ir.Self{}, name)
}

func (g *generator) subjectName(m *codegen.Method) string {
	return g.names.Value(m.Name()) + "Subject"
}

func (g *generator) pendingName(m *codegen.Method) string {
	return g.names.Value(m.Name()) + "Calls"
}

func (g *generator) readerName(m *codegen.Method) string {
	return "read" + codegen.Pascal(m.Name())
}

func returnType(fn *syntax.Fn) ir.TypeRef {
	if fn.Return() == nil {
		return ir.Named("Void")
	}
	return ir.TypeOf(fn.Return())
}

func (g *generator) rpc() []ir.Node {
	methods := codegen.Methods(g.file)
	var out []ir.Node
	for _, m := range methods {
		if m.Args != nil {
			out = append(out, g.structModel(m.Args, true)...)
		}
	}
	return append(out, g.client(methods))
}

// listens reports whether the client reads the Client buffer of m
// outside of a call.
func listens(m *codegen.Method) bool {
	return m.Flavor != codegen.FLAVOR_SYNC
}

func signal(m *codegen.Method) bool {
	return m.Flavor == codegen.FLAVOR_SIGNAL || m.Flavor == codegen.FLAVOR_ASYNC_SIGNAL
}

func (g *generator) client(methods []*codegen.Method) *ir.Class {
	class := &ir.Class{
		Name:      g.clientName(),
		Modifiers: []string{"public", "final"},
	}
	add := func(nodes ...ir.Node) {
		class.Members = append(class.Members, nodes...)
	}
	add(&ir.StaticVarDeclaration{
		Name:   scopeIDVar,
		Value:  &ir.StringLit{Value: codegen.ScopeID(g.file)},
		Public: true,
	})
	add(
		&ir.VarDeclaration{Name: runtimeVar, Type: ir.Named(runtimeType), Private: true},
		&ir.VarDeclaration{Name: addressesVar, Type: ir.Named(addressType), Private: true},
		&ir.VarDeclaration{Name: methodIDVar, Type: ir.Named("Int64"), Value: &ir.Int{Value: 0}, Mutable: true, Private: true},
		&ir.VarDeclaration{Name: "readTasks", Type: ir.Named("[" + taskType + "]"), Value: &ir.ListLit{}, Mutable: true, Private: true},
	)
	for _, m := range methods {
		switch {
		case signal(m):
			add(&ir.VarDeclaration{
				Name:   g.subjectName(m),
				Value:  ir.Raw("PassthroughSubject<" + typeName(m.Fn.Return()) + ", Never>()"),
				Public: true,
			})
		case m.Flavor == codegen.FLAVOR_ASYNC:
			continuation := "CheckedContinuation<" + g.typeRef(returnType(m.Fn)) + ", Error>"
			add(&ir.VarDeclaration{
				Name:    g.pendingName(m),
				Type:    ir.Named("[Int64: " + continuation + "]"),
				Value:   ir.Raw("[:]"),
				Mutable: true,
				Private: true,
			})
		}
	}

	add(g.init(methods), g.disconnect(methods))
	templates := &rpcTemplates{g: g}
	for _, m := range methods {
		add(codegen.Dispatch(templates, m)...)
	}
	add(g.register(methods))
	return class
}

func (g *generator) typeRef(t ir.TypeRef) string {
	return dialect{}.typeRef(t)
}

func (g *generator) init(methods []*codegen.Method) *ir.Func {
	fn := &ir.Func{
		Name:   "init",
		Public: true,
		Args: []*ir.FunctionArgument{
			{Name: runtimeVar, Type: ir.Named(runtimeType)},
			{Name: addressesVar, Type: ir.Named(addressType)},
		},
		Body: []ir.Node{
			&ir.Set{Target: member(runtimeVar), Value: ir.Ident(runtimeVar)},
			&ir.Set{Target: member(addressesVar), Value: ir.Ident(addressesVar)},
		},
	}
	for _, m := range methods {
		if !listens(m) {
			continue
		}
		handler := &ir.Closure{
			Params: []string{codegen.ReaderVar},
			Weak:   true,
			Body:   ir.Raw("self?." + g.readerName(m) + "(" + codegen.ReaderVar + ")"),
		}
		task := ir.Method(member(runtimeVar), "onRead", g.bufferArgs(m, ".client", handler))
		fn.Body = append(fn.Body, ir.Stmt(ir.Method(member("readTasks"), "append", task)))
	}
	return fn
}

// disconnect stops listening, fails every pending call and finishes every
// subject.
func (g *generator) disconnect(methods []*codegen.Method) *ir.Func {
	fn := &ir.Func{
		Name:   "disconnect",
		Public: true,
		Body: []ir.Node{
			&ir.ForLoop{
				Var:      "task",
				Iterable: member("readTasks"),
				Body:     []ir.Node{ir.Stmt(ir.Method(ir.Ident("task"), "cancel"))},
			},
			ir.Stmt(ir.Method(member("readTasks"), "removeAll")),
		},
	}
	for _, m := range methods {
		if m.Flavor == codegen.FLAVOR_ASYNC {
			pending := member(g.pendingName(m))
			fn.Body = append(fn.Body,
				&ir.ForLoop{
					Var:      "continuation",
					Iterable: ir.Field(pending, "values"),
					Body: []ir.Node{ir.Stmt(ir.Method(ir.Ident("continuation"), "resume",
						&ir.NamedArguments{Items: []ir.NamedArgument{{Name: "throwing", Value: ir.Raw("CancellationError()")}}}))},
				},
				ir.Stmt(ir.Method(pending, "removeAll")),
			)
		}
		if signal(m) {
			fn.Body = append(fn.Body, ir.Stmt(ir.Method(member(g.subjectName(m)), "send",
				&ir.NamedArguments{Items: []ir.NamedArgument{{Name: "completion", Value: ir.Raw(".finished")}}})))
		}
	}
	return fn
}

func (g *generator) bufferArgs(m *codegen.Method, kind string, extra ...ir.Expr) *ir.NamedArguments {
	args := &ir.NamedArguments{Items: []ir.NamedArgument{
		{Name: scopeIDVar, Value: ir.Raw("Self." + scopeIDVar)},
		{Name: addressesVar, Value: member(addressesVar)},
		{Name: "method", Value: &ir.Int{Value: int64(m.Address)}},
		{Name: "kind", Value: ir.Raw(kind)},
	}}
	for _, e := range extra {
		args.Items = append(args.Items, ir.NamedArgument{Value: e})
	}
	return args
}

type rpcTemplates struct {
	g *generator
}

var _ codegen.RpcTemplates = (*rpcTemplates)(nil)

func (t *rpcTemplates) stub(m *codegen.Method, body []ir.Node) *ir.Func {
	fn := &ir.Func{
		Name:   t.g.names.Value(m.Name()),
		Doc:    m.Fn.Doc(),
		Public: true,
		Async:  m.Flavor == codegen.FLAVOR_ASYNC,
		Throws: m.Flavor == codegen.FLAVOR_ASYNC,
		Body:   body,
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
		ir.Let(codegen.WriterVar, ir.Method(member(runtimeVar), "writer", t.g.bufferArgs(m, ".server"))),
		ir.Stmt(ir.Method(writer, "writeU8", ir.Raw(statusData))),
	}
	if m.Args == nil || len(m.Args.Fields()) == 0 {
		return out
	}
	args := &ir.NamedArguments{}
	if methodID != nil {
		args.Items = append(args.Items, ir.NamedArgument{Name: codegen.MethodIDField, Value: methodID})
	}
	for _, a := range m.UserArgs() {
		name := t.g.names.Value(a.Name())
		args.Items = append(args.Items, ir.NamedArgument{Name: name, Value: ir.Ident(name)})
	}
	value := &ir.NewInstance{Type: ir.Named(m.Args.Name()), Args: args}
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
		ir.Stmt(ir.Method(member(runtimeVar), "loopSyncGroup", member(addressesVar))),
		&ir.Gap{},
		ir.Let(codegen.ReaderVar, ir.Method(member(runtimeVar), "reader", t.g.bufferArgs(m, ".client"))),
		statusCheck(&ir.Fatal{Message: "Empty reply for " + m.Name()}),
	)
	if ret := m.Fn.Return(); ret != nil {
		body = append(body, &ir.Return{Value: t.g.codec.Read(ret)})
	}
	return []ir.Node{t.stub(m, body)}
}

func (t *rpcTemplates) Async(m *codegen.Method) []ir.Node {
	t.g.codec.Begin()
	pending := member(t.g.pendingName(m))
	send := []ir.Node{&ir.Set{Target: &ir.Index{Receiver: pending, Index: ir.Ident(idVar)}, Value: ir.Ident("continuation")}}
	send = append(send, t.request(m, ir.Ident(idVar))...)
	header := "try await withCheckedThrowingContinuation { continuation in"
	if m.Fn.Return() != nil {
		header = "return " + header
	}
	stub := t.stub(m, []ir.Node{
		&ir.Set{Target: member(methodIDVar), Value: ir.Raw("(self.methodId &+ 1) & Int64.max")},
		ir.Let(idVar, member(methodIDVar)),
		&ir.NamedBlock{Header: header, Body: send, Footer: "}"},
	})

	t.g.codec.Begin()
	reply := []ir.Node{
		statusCheck(&ir.Return{}),
		ir.Let(idVar, ir.Method(ir.Ident(codegen.ReaderVar), "readI64")),
	}
	value := ir.Expr(ir.Raw("()"))
	if ret := m.Fn.Return(); ret != nil {
		reply = append(reply, ir.Let(resultVar, t.g.codec.Read(ret)))
		value = ir.Ident(resultVar)
	}
	remove := ir.Method(pending, "removeValue", &ir.NamedArguments{Items: []ir.NamedArgument{{Name: "forKey", Value: ir.Ident(idVar)}}})
	reply = append(reply, &ir.IfLet{
		Bind:  "continuation",
		Value: remove,
		Then: []ir.Node{ir.Stmt(ir.Method(ir.Ident("continuation"), "resume",
			&ir.NamedArguments{Items: []ir.NamedArgument{{Name: "returning", Value: value}}}))},
	})
	return []ir.Node{stub, t.replyReader(m, reply)}
}

func (t *rpcTemplates) replyReader(m *codegen.Method, body []ir.Node) *ir.Func {
	return &ir.Func{
		Name:    t.g.readerName(m),
		Private: true,
		Args:    []*ir.FunctionArgument{readerArg()},
		Body:    body,
	}
}

func (t *rpcTemplates) Signal(m *codegen.Method) []ir.Node {
	t.g.codec.Begin()
	return []ir.Node{t.replyReader(m, []ir.Node{
		statusCheck(&ir.Return{}),
		ir.Stmt(ir.Method(member(t.g.subjectName(m)), "send", t.g.codec.Read(m.Fn.Return()))),
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
		Public: true,
		Static: true,
		Args: []*ir.FunctionArgument{
			{Name: runtimeVar, Type: ir.Named(runtimeType)},
			{Name: addressesVar, Type: ir.Named(addressType)},
		},
		Return: ir.Named(g.clientName()),
		Body: []ir.Node{
			ir.Stmt(ir.Method(ir.Ident(runtimeVar), "declareScope", ir.Ident(scopeIDVar))),
		},
	}
	for _, m := range methods {
		fn.Body = append(fn.Body, ir.Stmt(ir.Method(ir.Ident(runtimeVar), "bind", &ir.NamedArguments{Items: []ir.NamedArgument{
			{Name: scopeIDVar, Value: ir.Ident(scopeIDVar)},
			{Name: addressesVar, Value: ir.Ident(addressesVar)},
			{Name: "method", Value: &ir.Int{Value: int64(m.Address)}},
			{Name: "payloadSize", Value: ir.Raw("." + codegen.Camel(m.PayloadSize.String()))},
		}})))
	}
	fn.Body = append(fn.Body, &ir.Return{Value: &ir.NewInstance{
		Type: ir.Named(g.clientName()),
		Args: &ir.NamedArguments{Items: []ir.NamedArgument{
			{Name: runtimeVar, Value: ir.Ident(runtimeVar)},
			{Name: addressesVar, Value: ir.Ident(addressesVar)},
		}},
	}})
	return fn
}
