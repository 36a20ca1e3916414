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

package syntax

// Directive returns the first single-value directive with the given name.
func (f *File) Directive(name string) *Directive {
	for _, node := range f.nodes {
		if d, ok := node.(*Directive); ok && !d.group && d.name == name {
			return d
		}
	}
	return nil
}

// DirectiveText returns the text of a single-value directive, or "" if it
// is absent.
func (f *File) DirectiveText(name string) string {
	if d := f.Directive(name); d != nil && d.value != nil {
		return d.value.Text()
	}
	return ""
}

// Group returns the items of every group directive with the given name,
// in source order.
func (f *File) Group(name string) []*DirectiveItem {
	var items []*DirectiveItem
	for _, node := range f.nodes {
		if d, ok := node.(*Directive); ok && d.group && d.name == name {
			items = append(items, d.items...)
		}
	}
	return items
}

// GroupValues returns the text of every item named key in the named
// group, in source order.
func (f *File) GroupValues(group, key string) []string {
	var values []string
	for _, item := range f.Group(group) {
		if item.name == key && item.value != nil {
			values = append(values, item.value.Text())
		}
	}
	return values
}

// GroupFlag reports whether a bare or boolean item is set in a group.
func (f *File) GroupFlag(group, key string) bool {
	for _, item := range f.Group(group) {
		if item.name != key {
			continue
		}
		if item.value == nil {
			return true
		}
		if item.value.kind == LIT_BOOL {
			return item.value.Bool()
		}
	}
	return false
}

// ID returns the scope id directive.
func (f *File) ID() string {
	return f.DirectiveText("id")
}

// Namespace returns the namespace directive.
func (f *File) Namespace() string {
	return f.DirectiveText("namespace")
}

func (f *File) Fns() []*Fn {
	return collect[*Fn](f.nodes)
}

func (f *File) Structs() []*Struct {
	return collect[*Struct](f.nodes)
}

func (f *File) Enums() []*Enum {
	return collect[*Enum](f.nodes)
}

func (f *File) ConstBlocks() []*ConstBlock {
	return collect[*ConstBlock](f.nodes)
}

func (f *File) Directives() []*Directive {
	return collect[*Directive](f.nodes)
}

func (f *File) HasRPC() bool {
	return len(f.Fns()) > 0
}

func (f *File) Struct(name string) *Struct {
	for _, s := range f.Structs() {
		if s.name == name {
			return s
		}
	}
	return nil
}

func (f *File) Enum(name string) *Enum {
	for _, e := range f.Enums() {
		if e.name == name {
			return e
		}
	}
	return nil
}

func collect[T Node](nodes []Node) []T {
	var out []T
	for _, node := range nodes {
		if n, ok := node.(T); ok {
			out = append(out, n)
		}
	}
	return out
}
