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

// Package ir is the tree of target-language constructs that code
// generators build and the printer renders.
package ir

import (
	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

type Kind uint8

const (
	KIND_STRUCT Kind = iota
	KIND_CLASS
	KIND_ENUM
	KIND_INTERFACE
	KIND_OBJECT
	KIND_EXTENSION
	KIND_VAR
	KIND_STATIC_VAR
	KIND_CONST_FIELD
	KIND_FUNC
	KIND_STATEMENTS
	KIND_TOP_LEVEL
	KIND_NAMED_BLOCK
	KIND_LINE
	KIND_DOC_COMMENT
	KIND_GAP
	KIND_RETURN
	KIND_CONTINUE
	KIND_SWITCH
	KIND_FOR_LOOP
	KIND_SET
	KIND_IF
	KIND_IF_LET
	KIND_EXPR_STATEMENT
	KIND_TRAILING_CALL
	KIND_FATAL
)

type Node interface {
	Kind() Kind
}

// TypeRef names a type either by its IDL TypeID, rendered per target, or
// by a verbatim target-language name.
type TypeRef struct {
	ID   *syntax.TypeID
	Name string
}

func TypeOf(id *syntax.TypeID) TypeRef {
	return TypeRef{ID: id}
}

func Named(name string) TypeRef {
	return TypeRef{Name: name}
}

func (t TypeRef) IsZero() bool {
	return t.ID == nil && t.Name == ""
}

// Declarations.

type Struct struct {
	Name       string
	Doc        []string
	Attributes []string
	Conforms   []string
	Fields     []*VarDeclaration
	Members    []Node
	Unit       bool
}

type Class struct {
	Name       string
	Doc        []string
	Modifiers  []string
	Params     []*FunctionArgument
	Extends    string
	Implements []string
	Members    []Node
}

type Enum struct {
	Name       string
	Doc        []string
	Attributes []string
	Conforms   []string
	Cases      []*EnumCase
	Members    []Node
}

type EnumCase struct {
	Name   string
	Doc    []string
	Style  syntax.CaseStyle
	Fields []*FunctionArgument
	Value  Expr
	// Members are declared on the case itself, in targets that give each
	// case its own class.
	Members []Node
}

type Interface struct {
	Name     string
	Doc      []string
	Generics string
	Extends  []string
	Members  []Node
}

// Object groups static members under a name: a Kotlin object, a Rust
// module, a caseless Swift enum or a Dart class with static members.
type Object struct {
	Name      string
	Doc       []string
	Companion bool
	Members   []Node
}

// Extension adds members to an existing type, optionally conforming it to
// a trait or protocol.
type Extension struct {
	Target   string
	Trait    string
	Generics string
	Members  []Node
}

type VarDeclaration struct {
	Name     string
	Doc      []string
	Type     TypeRef
	Value    Expr
	Mutable  bool
	Public   bool
	Private  bool
	Override bool
}

type StaticVarDeclaration struct {
	Name    string
	Doc     []string
	Type    TypeRef
	Value   Expr
	Mutable bool
	Public  bool
	Private bool
}

type ConstField struct {
	Name string
	Doc  []string
	Type TypeRef
	// Value is rendered in a constant context.
	Value Expr
	// Const is false when the target cannot declare the value as a
	// compile-time constant.
	Const bool
}

type Func struct {
	Name        string
	Doc         []string
	Generics    string
	Receiver    string
	Args        []*FunctionArgument
	Return      TypeRef
	Body        []Node
	Abstract    bool
	Static      bool
	Override    bool
	Public      bool
	Private     bool
	Async       bool
	// Throws marks a function that can fail where the target declares it.
	Throws bool
	// Getter renders an argumentless function as a property getter where
	// the target has them.
	Getter      bool
	Mutating    bool
	Annotations []string
}

type FunctionArgument struct {
	Name    string
	Label   string
	Type    TypeRef
	Default Expr
}

// Structural nodes.

type Statements struct {
	Nodes []Node
}

type TopLevelDeclarations struct {
	Nodes []Node
}

type NamedBlock struct {
	Header string
	Body   []Node
	Footer string
}

type Line struct {
	Text string
}

type DocComment struct {
	Lines []string
}

// Gap requests a blank line.
type Gap struct{}

// Statements.

type Return struct {
	Value Expr
}

type Continue struct{}

type Switch struct {
	Subject Expr
	// Bind names the matched value in targets that cannot destructure
	// variant patterns.
	Bind    string
	Cases   []*Case
	Default *DefaultCase
}

type Case struct {
	Pattern Expr
	Body    []Node
}

type DefaultCase struct {
	Body []Node
}

type ForLoop struct {
	Var      string
	Iterable Expr
	// Count, when set, repeats the body Count times instead of iterating.
	Count Expr
	Body  []Node
}

type Set struct {
	Target Expr
	Value  Expr
}

type If struct {
	Cond Expr
	Then []Node
	Else []Node
}

// IfLet binds the unwrapped value of an optional expression. Case, when
// set, names the enum case to match instead of a present optional.
type IfLet struct {
	Bind  string
	Case  string
	Value Expr
	Then  []Node
	Else  []Node
}

type ExprStatement struct {
	Expr Expr
}

// TrailingCall is a call whose last argument is a closure.
type TrailingCall struct {
	Call   Expr
	Params []string
	Body   []Node
	Move   bool
	Async  bool
	// Weak captures the receiver weakly where the target supports it.
	Weak bool
}

type Fatal struct {
	Message string
}

func (*Struct) Kind() Kind               { return KIND_STRUCT }
func (*Class) Kind() Kind                { return KIND_CLASS }
func (*Enum) Kind() Kind                 { return KIND_ENUM }
func (*Interface) Kind() Kind            { return KIND_INTERFACE }
func (*Object) Kind() Kind               { return KIND_OBJECT }
func (*Extension) Kind() Kind            { return KIND_EXTENSION }
func (*VarDeclaration) Kind() Kind       { return KIND_VAR }
func (*StaticVarDeclaration) Kind() Kind { return KIND_STATIC_VAR }
func (*ConstField) Kind() Kind           { return KIND_CONST_FIELD }
func (*Func) Kind() Kind                 { return KIND_FUNC }
func (*Statements) Kind() Kind           { return KIND_STATEMENTS }
func (*TopLevelDeclarations) Kind() Kind { return KIND_TOP_LEVEL }
func (*NamedBlock) Kind() Kind           { return KIND_NAMED_BLOCK }
func (*Line) Kind() Kind                 { return KIND_LINE }
func (*DocComment) Kind() Kind           { return KIND_DOC_COMMENT }
func (*Gap) Kind() Kind                  { return KIND_GAP }
func (*Return) Kind() Kind               { return KIND_RETURN }
func (*Continue) Kind() Kind             { return KIND_CONTINUE }
func (*Switch) Kind() Kind               { return KIND_SWITCH }
func (*ForLoop) Kind() Kind              { return KIND_FOR_LOOP }
func (*Set) Kind() Kind                  { return KIND_SET }
func (*If) Kind() Kind                   { return KIND_IF }
func (*IfLet) Kind() Kind                { return KIND_IF_LET }
func (*ExprStatement) Kind() Kind        { return KIND_EXPR_STATEMENT }
func (*TrailingCall) Kind() Kind         { return KIND_TRAILING_CALL }
func (*Fatal) Kind() Kind                { return KIND_FATAL }

func Stmt(e Expr) *ExprStatement {
	return &ExprStatement{Expr: e}
}

func Let(name string, value Expr) *VarDeclaration {
	return &VarDeclaration{Name: name, Value: value}
}

func LetMut(name string, value Expr) *VarDeclaration {
	return &VarDeclaration{Name: name, Value: value, Mutable: true}
}
