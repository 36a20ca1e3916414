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
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

type Expr interface {
	expr()
}

type Id struct {
	Name string
}

type Self struct{}

// Call invokes Name on Receiver, on the static scope of Static, or as a
// free function when both are unset.
type Call struct {
	Receiver Expr
	Static   TypeRef
	Name     string
	Generics []TypeRef
	Args     Arguments
}

// ChainedCalls joins expressions with member access.
type ChainedCalls struct {
	Calls []Expr
}

type FieldAccess struct {
	Receiver Expr
	Field    string
}

type Index struct {
	Receiver Expr
	Index    Expr
}

type NewInstance struct {
	Type TypeRef
	Args Arguments
}

type NewVariant struct {
	Enum  string
	Case  string
	Style syntax.CaseStyle
	Args  Arguments
}

// VariantPattern matches one enum case in a Switch, binding its fields.
type VariantPattern struct {
	Enum     string
	Case     string
	Style    syntax.CaseStyle
	Fields   []string
	Bindings []string
}

type Arguments interface {
	Expr
	Len() int
}

type NamedArgument struct {
	Name  string
	Value Expr
}

type NamedArguments struct {
	Items []NamedArgument
}

type PositionalArguments struct {
	Items []Expr
}

func (a *NamedArguments) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Items)
}

func (a *PositionalArguments) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Items)
}

func Args(items ...Expr) *PositionalArguments {
	return &PositionalArguments{Items: items}
}

// Literal renders an IDL literal as a value of the given type.
type Literal struct {
	Type *syntax.TypeID
	Lit  *syntax.Literal
	// Const selects the constant-declaration rendering where targets
	// distinguish it.
	Const bool
}

// Int is an integer literal of the given type.
type Int struct {
	Type  *syntax.TypeID
	Value int64
}

type StringLit struct {
	Value string
}

type Bool struct {
	Value bool
}

type Default struct {
	Type *syntax.TypeID
}

type Null struct{}

type Some struct {
	Value Expr
}

type Ternary struct {
	Cond Expr
	Then Expr
	Else Expr
}

// Range builds a list of Count elements, each evaluated from Item.
type Range struct {
	Count Expr
	Item  Expr
	Elem  *syntax.TypeID
}

type Len struct {
	Value Expr
}

type Binary struct {
	Op    string
	Left  Expr
	Right Expr
}

type Ref struct {
	Value Expr
	Mut   bool
}

type Deref struct {
	Value Expr
}

type Await struct {
	Value Expr
}

// Closure is an inline function value. Weak captures the receiver
// weakly where the target distinguishes it.
type Closure struct {
	Params []string
	Body   Expr
	Move   bool
	Weak   bool
}

type Verbatim struct {
	Text string
}

type ListLit struct {
	Items []Expr
}

func (*Id) expr()                  {}
func (*Self) expr()                {}
func (*Call) expr()                {}
func (*ChainedCalls) expr()        {}
func (*FieldAccess) expr()         {}
func (*Index) expr()               {}
func (*NewInstance) expr()         {}
func (*NewVariant) expr()          {}
func (*VariantPattern) expr()      {}
func (*NamedArguments) expr()      {}
func (*PositionalArguments) expr() {}
func (*Literal) expr()             {}
func (*Int) expr()                 {}
func (*StringLit) expr()           {}
func (*Bool) expr()                {}
func (*Default) expr()             {}
func (*Null) expr()                {}
func (*Some) expr()                {}
func (*Ternary) expr()             {}
func (*Range) expr()               {}
func (*Len) expr()                 {}
func (*Binary) expr()              {}
func (*Ref) expr()                 {}
func (*Deref) expr()               {}
func (*Await) expr()               {}
func (*Closure) expr()             {}
func (*Verbatim) expr()            {}
func (*ListLit) expr()             {}

func Ident(name string) *Id {
	return &Id{Name: name}
}

func Method(receiver Expr, name string, args ...Expr) *Call {
	return &Call{Receiver: receiver, Name: name, Args: Args(args...)}
}

func StaticCall(typ TypeRef, name string, args ...Expr) *Call {
	return &Call{Static: typ, Name: name, Args: Args(args...)}
}

func FreeCall(name string, args ...Expr) *Call {
	return &Call{Name: name, Args: Args(args...)}
}

func Field(receiver Expr, name string) *FieldAccess {
	return &FieldAccess{Receiver: receiver, Field: name}
}

func Raw(text string) *Verbatim {
	return &Verbatim{Text: text}
}
