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

package rust

import (
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/codegen"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/ir"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

const (
	statusData    = "BUFFER_STATUS_DATA"
	serverBuffer  = "BufferKind::Server"
	clientBuffer  = "BufferKind::Client"
	resultVar     = "result"
	methodIDVar   = "method_id"
	serviceVar    = "service"
	contextVar    = "ctx"
	handleVar     = "handle"
	argsVar       = "args"
	scopeIDConst  = "SCOPE_ID"
	signalWrapper = "SignalResult"
)

func (g *generator) traitName() string {
	return codegen.Pascal(g.file.Namespace()) + "Rpc"
}

func (g *generator) rpc() []ir.Node {
	methods := codegen.Methods(g.file)
	out := []ir.Node{&ir.ConstField{
		Name:  scopeIDConst,
		Type:  ir.TypeOf(syntax.OtherType("String")),
		Value: &ir.StringLit{Value: codegen.ScopeID(g.file)},
		Const: true,
	}}
	for _, m := range methods {
		if m.Args != nil {
			out = append(out, g.structModel(m.Args, true)...)
		}
	}
	out = append(out, g.trait(methods))
	templates := &rpcTemplates{g: g}
	for _, m := range methods {
		out = append(out, codegen.Dispatch(templates, m)...)
	}
	out = append(out, g.register(methods))
	return out
}

func returnType(fn *syntax.Fn) string {
	if fn.Return() == nil {
		return "()"
	}
	return typeName(fn.Return())
}

func (g *generator) trait(methods []*codegen.Method) *ir.Interface {
	trait := &ir.Interface{
		Name:    g.traitName(),
		Extends: []string{"Send", "Sync", "'static"},
	}
	for _, m := range methods {
		fn := &ir.Func{
			Name:     g.names.Value(m.Name()),
			Doc:      m.Fn.Doc(),
			Receiver: "&self",
			Abstract: true,
		}
		for _, a := range m.UserArgs() {
			fn.Args = append(fn.Args, &ir.FunctionArgument{
				Name: g.names.Value(a.Name()),
				Type: ir.TypeOf(a.Type()),
			})
		}
		ret := returnType(m.Fn)
		if m.Fn.Signal() {
			ret = signalWrapper + "<" + ret + ">"
		}
		if m.Fn.Async() {
			ret = "impl Future<Output = " + ret + "> + Send"
		}
		if ret != "()" {
			fn.Return = ir.Named(ret)
		}
		trait.Members = append(trait.Members, fn)
	}
	return trait
}

func (g *generator) handlerName(m *codegen.Method) string {
	return "handle_" + g.names.Value(m.Name())
}

func (g *generator) handler(m *codegen.Method, body []ir.Node) *ir.Func {
	return &ir.Func{
		Name:     g.handlerName(m),
		Public:   true,
		Generics: "<S: " + g.traitName() + ">",
		Args: []*ir.FunctionArgument{
			arg(serviceVar, "&Arc<S>"),
			arg(contextVar, "&mut HandlerContext"),
		},
		Body: body,
	}
}

type rpcTemplates struct {
	g *generator
}

var _ codegen.RpcTemplates = (*rpcTemplates)(nil)

// readArgs consumes the request: it returns early unless the Server
// buffer holds data, then decodes the argument struct and clears the
// buffer.
func (t *rpcTemplates) readArgs(m *codegen.Method) []ir.Node {
	return []ir.Node{
		&ir.NamedBlock{
			Header: "let " + argsVar + " = {",
			Body: []ir.Node{
				ir.Let(codegen.ReaderVar, ir.Raw("&mut "+contextVar+".reader("+serverBuffer+")")),
				&ir.If{
					Cond: &ir.Binary{Op: "!=", Left: ir.Method(ir.Ident(codegen.ReaderVar), "read_u8"), Right: ir.Raw(statusData)},
					Then: []ir.Node{&ir.Return{}},
				},
				&ir.Line{Text: m.Args.Name() + "::read_from_buffers(" + codegen.ReaderVar + ")"},
			},
			Footer: "};",
		},
		ir.Stmt(ir.Method(ir.Ident(contextVar), "reset", ir.Raw(serverBuffer))),
	}
}

func (t *rpcTemplates) call(m *codegen.Method) ir.Expr {
	var args []ir.Expr
	for _, a := range m.UserArgs() {
		args = append(args, ir.Field(ir.Ident(argsVar), t.g.names.Value(a.Name())))
	}
	return ir.Method(ir.Ident(serviceVar), t.g.names.Value(m.Name()), args...)
}

// reply writes the Client buffer from `source`.
func (t *rpcTemplates) reply(m *codegen.Method, source string, methodID bool) []ir.Node {
	writer := ir.Ident(codegen.WriterVar)
	out := []ir.Node{
		ir.Let(codegen.WriterVar, ir.Raw("&mut "+source+".writer("+clientBuffer+")")),
		ir.Stmt(ir.Method(writer, "write_u8", ir.Raw(statusData))),
	}
	if methodID {
		out = append(out, ir.Stmt(ir.Method(writer, "write_i64", ir.Ident(methodIDVar))))
	}
	if ret := m.Fn.Return(); ret != nil {
		t.g.codec.Begin()
		out = append(out, t.g.codec.Write(ret, ir.Ident(resultVar), false)...)
	}
	return out
}

func (t *rpcTemplates) invoke(m *codegen.Method, call ir.Expr) ir.Node {
	if m.Fn.Return() == nil {
		return ir.Stmt(call)
	}
	return ir.Let(resultVar, call)
}

func spawn(body []ir.Node) []ir.Node {
	return []ir.Node{
		ir.Let(serviceVar, ir.Method(ir.Ident(serviceVar), "clone")),
		ir.Let(handleVar, ir.Method(ir.Ident(contextVar), "handle")),
		&ir.TrailingCall{
			Call:  ir.Method(ir.Ident(contextVar), "spawn"),
			Async: true,
			Body:  body,
		},
	}
}

func (t *rpcTemplates) statusGuard() ir.Node {
	return &ir.If{
		Cond: &ir.Binary{
			Op:    "!=",
			Left:  ir.Raw(contextVar + ".reader(" + serverBuffer + ").read_u8()"),
			Right: ir.Raw(statusData),
		},
		Then: []ir.Node{&ir.Return{}},
	}
}

func (t *rpcTemplates) Sync(m *codegen.Method) []ir.Node {
	var body []ir.Node
	if len(m.UserArgs()) == 0 {
		body = append(body,
			t.statusGuard(),
			ir.Stmt(ir.Method(ir.Ident(contextVar), "reset", ir.Raw(serverBuffer))),
		)
	} else {
		body = append(body, t.readArgs(m)...)
	}
	body = append(body, t.invoke(m, t.call(m)))
	body = append(body, &ir.Gap{})
	body = append(body, t.reply(m, contextVar, false)...)
	return []ir.Node{t.g.handler(m, body)}
}

func (t *rpcTemplates) Async(m *codegen.Method) []ir.Node {
	body := t.readArgs(m)
	task := []ir.Node{
		ir.Let(methodIDVar, ir.Field(ir.Ident(argsVar), codegen.MethodIDField)),
		t.invoke(m, &ir.Await{Value: t.call(m)}),
		&ir.Gap{},
	}
	task = append(task, t.reply(m, handleVar, true)...)
	body = append(body, spawn(task)...)
	return []ir.Node{t.g.handler(m, body)}
}

func (t *rpcTemplates) signalResult(m *codegen.Method, call ir.Expr, then []ir.Node) ir.Node {
	bind := resultVar
	if m.Fn.Return() == nil {
		bind = "_"
	}
	return &ir.IfLet{
		Bind:  bind,
		Case:  signalWrapper + "::Data",
		Value: call,
		Then:  then,
	}
}

func (t *rpcTemplates) Signal(m *codegen.Method) []ir.Node {
	body := []ir.Node{t.signalResult(m, t.call(m), t.reply(m, contextVar, false))}
	return []ir.Node{t.g.handler(m, body)}
}

// AsyncSignal uses the Server buffer as a busy flag so that one producer
// task at most runs per method.
func (t *rpcTemplates) AsyncSignal(m *codegen.Method) []ir.Node {
	body := []ir.Node{
		&ir.If{
			Cond: &ir.Binary{
				Op:    "==",
				Left:  ir.Raw(contextVar + ".reader(" + serverBuffer + ").read_u8()"),
				Right: ir.Raw(statusData),
			},
			Then: []ir.Node{&ir.Return{}},
		},
		ir.Stmt(ir.Raw(contextVar + ".writer(" + serverBuffer + ").write_u8(" + statusData + ")")),
	}
	task := []ir.Node{
		t.signalResult(m, &ir.Await{Value: t.call(m)}, t.reply(m, handleVar, false)),
		ir.Stmt(ir.Method(ir.Ident(handleVar), "reset", ir.Raw(serverBuffer))),
	}
	body = append(body, spawn(task)...)
	return []ir.Node{t.g.handler(m, body)}
}

func (g *generator) register(methods []*codegen.Method) *ir.Func {
	body := []ir.Node{
		ir.Stmt(ir.Method(ir.Ident("runtime"), "declare_scope", ir.Ident(scopeIDConst))),
	}
	for _, m := range methods {
		service := serviceVar + "_" + g.names.Value(m.Name())
		body = append(body,
			&ir.Gap{},
			ir.Let(service, ir.Method(ir.Ident(serviceVar), "clone")),
			&ir.TrailingCall{
				Call: ir.Method(ir.Ident("runtime"), "bind",
					ir.Ident(scopeIDConst),
					ir.Ident("addresses"),
					&ir.Int{Value: int64(m.Address)},
					ir.Raw("PayloadSize::"+m.PayloadSize.String()),
				),
				Params: []string{contextVar},
				Move:   true,
				Body: []ir.Node{
					ir.Stmt(ir.FreeCall(g.handlerName(m), &ir.Ref{Value: ir.Ident(service)}, ir.Ident(contextVar))),
				},
			},
		)
	}
	return &ir.Func{
		Name:     "register_rpc",
		Public:   true,
		Generics: "<S: " + g.traitName() + ">",
		Args: []*ir.FunctionArgument{
			arg("runtime", "&mut Runtime"),
			arg("addresses", "GroupAddress"),
			arg(serviceVar, "Arc<S>"),
		},
		Body: body,
	}
}
