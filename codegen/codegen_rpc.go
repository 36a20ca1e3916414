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

package codegen

import (
	"github.com/google/uuid"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/encoding/tpbbin"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/ir"
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

// MethodIDField is prepended to the arguments of async methods.
const MethodIDField = "__method_id__"

type Flavor uint8

const (
	FLAVOR_SYNC Flavor = iota
	FLAVOR_ASYNC
	FLAVOR_SIGNAL
	FLAVOR_ASYNC_SIGNAL
)

func (f Flavor) String() string {
	switch f {
	case FLAVOR_SYNC:
		return "sync"
	case FLAVOR_ASYNC:
		return "async"
	case FLAVOR_SIGNAL:
		return "signal"
	}
	return "async signal"
}

func FlavorOf(fn *syntax.Fn) Flavor {
	switch {
	case fn.Signal() && fn.Async():
		return FLAVOR_ASYNC_SIGNAL
	case fn.Signal():
		return FLAVOR_SIGNAL
	case fn.Async():
		return FLAVOR_ASYNC
	}
	return FLAVOR_SYNC
}

// Method is an RPC function with everything its stubs and handlers need.
type Method struct {
	Fn      *syntax.Fn
	Address uint32
	Flavor  Flavor
	// Args is the synthesized argument struct. It is nil for signals,
	// which take no arguments.
	Args        *syntax.Struct
	PayloadSize tpbbin.PayloadSize
}

func (m *Method) Name() string {
	return m.Fn.Name()
}

// UserArgs are the declared arguments, without the method id.
func (m *Method) UserArgs() []*syntax.Field {
	return m.Fn.Args()
}

func ArgsStructName(fn *syntax.Fn) string {
	return "__" + fn.Name() + "_rpc_args__"
}

func Methods(file *syntax.File) []*Method {
	schema := tpbbin.NewSchema(file)
	var out []*Method
	for _, fn := range file.Fns() {
		m := &Method{
			Fn:          fn,
			Address:     fn.Position(),
			Flavor:      FlavorOf(fn),
			PayloadSize: schema.MethodPayloadSize(fn),
		}
		if !fn.Signal() {
			var fields []*syntax.Field
			if m.Flavor == FLAVOR_ASYNC {
				fields = append(fields, syntax.NewField(MethodIDField, syntax.IntegerType(true, 8)))
			}
			for _, arg := range fn.Args() {
				fields = append(fields, syntax.NewField(arg.Name(), arg.Type()))
			}
			m.Args = syntax.NewStruct(ArgsStructName(fn), fields)
		}
		out = append(out, m)
	}
	return out
}

// RpcTemplates builds the nodes for one method of each flavor.
type RpcTemplates interface {
	Sync(m *Method) []ir.Node
	Async(m *Method) []ir.Node
	Signal(m *Method) []ir.Node
	AsyncSignal(m *Method) []ir.Node
}

func Dispatch(t RpcTemplates, m *Method) []ir.Node {
	switch m.Flavor {
	case FLAVOR_ASYNC:
		return t.Async(m)
	case FLAVOR_SIGNAL:
		return t.Signal(m)
	case FLAVOR_ASYNC_SIGNAL:
		return t.AsyncSignal(m)
	}
	return t.Sync(m)
}

// scopeNamespace seeds the name-based UUIDs of scopes whose id directive
// is not itself a UUID.
var scopeNamespace = uuid.MustParse("5c3a5d1e-8f0b-4c57-9d2a-7e6b1f0c4a93")

// ScopeID derives the runtime scope id from the id directive: a UUID is
// used as written (in canonical form), anything else is hashed into a
// name-based UUID so that the same directive always yields the same id.
func ScopeID(file *syntax.File) string {
	id := file.ID()
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed.String()
	}
	return uuid.NewSHA1(scopeNamespace, []byte(id)).String()
}
