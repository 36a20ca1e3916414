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
	"strings"
	"unicode"
)

// Words splits an identifier at underscores and at lower-to-upper case
// boundaries. A run of capitals is one word, except for its last letter
// when that begins a capitalized word ("HTTPServer" is HTTP, Server).
func Words(s string) []string {
	var words []string
	runes := []rune(s)
	start := 0
	flush := func(end int) {
		if end > start {
			words = append(words, string(runes[start:end]))
		}
	}
	for ii, r := range runes {
		if r == '_' {
			flush(ii)
			start = ii + 1
			continue
		}
		if ii == start {
			continue
		}
		prev := runes[ii-1]
		switch {
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush(ii)
			start = ii
		case unicode.IsUpper(r) && unicode.IsUpper(prev) && ii+1 < len(runes) && unicode.IsLower(runes[ii+1]):
			flush(ii)
			start = ii
		}
	}
	flush(len(runes))
	return words
}

// Reserved reports whether a name is synthesized by the generator, such
// as `__method_id__`. Reserved names are never case converted.
func Reserved(s string) bool {
	return strings.HasPrefix(s, "__")
}

func Snake(s string) string {
	if Reserved(s) {
		return s
	}
	words := Words(s)
	for ii, word := range words {
		words[ii] = strings.ToLower(word)
	}
	return strings.Join(words, "_")
}

func Screaming(s string) string {
	if Reserved(s) {
		return s
	}
	return strings.ToUpper(Snake(s))
}

func Camel(s string) string {
	if Reserved(s) {
		return s
	}
	words := Words(s)
	for ii, word := range words {
		if ii == 0 {
			words[ii] = strings.ToLower(word)
		} else {
			words[ii] = title(word)
		}
	}
	return strings.Join(words, "")
}

func Pascal(s string) string {
	if Reserved(s) {
		return s
	}
	words := Words(s)
	for ii, word := range words {
		words[ii] = title(word)
	}
	return strings.Join(words, "")
}

func title(word string) string {
	if word == "" {
		return word
	}
	runes := []rune(strings.ToLower(word))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Namer applies one target's naming conventions. It is the only place
// generators convert the case of IDL names.
type Namer struct {
	keywords map[string]bool
	escape   func(string) string
	value    func(string) string
	konst    func(string) string
	kase     func(string) string
}

type NamerOption func(*Namer)

// ValueStyle sets the case of fields, arguments, functions and locals.
func ValueStyle(style func(string) string) NamerOption {
	return func(n *Namer) { n.value = style }
}

func ConstStyle(style func(string) string) NamerOption {
	return func(n *Namer) { n.konst = style }
}

// CaseStyle sets the case of enum case names.
func CaseStyle(style func(string) string) NamerOption {
	return func(n *Namer) { n.kase = style }
}

func NewNamer(keywords []string, escape func(string) string, opts ...NamerOption) *Namer {
	n := &Namer{
		keywords: make(map[string]bool, len(keywords)),
		escape:   escape,
		value:    Camel,
		konst:    Camel,
		kase:     Pascal,
	}
	for _, kw := range keywords {
		n.keywords[kw] = true
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Namer) Escape(name string) string {
	if n.keywords[name] {
		return n.escape(name)
	}
	return name
}

func (n *Namer) IsKeyword(name string) bool {
	return n.keywords[name]
}

func (n *Namer) Value(name string) string {
	return n.Escape(n.value(name))
}

// Type keeps the author's spelling of a type name.
func (n *Namer) Type(name string) string {
	return n.Escape(name)
}

func (n *Namer) Const(name string) string {
	return n.Escape(n.konst(name))
}

func (n *Namer) Case(name string) string {
	return n.Escape(n.kase(name))
}

// Method names a runtime method given in snake case, such as read_u32.
func (n *Namer) Method(name string) string {
	return n.value(name)
}
