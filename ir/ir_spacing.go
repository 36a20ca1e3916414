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

// Spacing is the set of node kind pairs that are separated by a blank
// line when emitted next to each other. Pairs are unordered.
type Spacing map[[2]Kind]bool

func NewSpacing(pairs ...[2]Kind) Spacing {
	s := make(Spacing, len(pairs))
	for _, pair := range pairs {
		s[pair] = true
	}
	return s
}

func (s Spacing) Blank(prev, next Kind) bool {
	return s[[2]Kind{prev, next}] || s[[2]Kind{next, prev}]
}

// Between returns every pair with one kind from a and one from b.
func Between(a []Kind, b []Kind) [][2]Kind {
	pairs := make([][2]Kind, 0, len(a)*len(b))
	for _, x := range a {
		for _, y := range b {
			pairs = append(pairs, [2]Kind{x, y})
		}
	}
	return pairs
}

func (s Spacing) With(pairs ...[2]Kind) Spacing {
	out := make(Spacing, len(s)+len(pairs))
	for pair := range s {
		out[pair] = true
	}
	for _, pair := range pairs {
		out[pair] = true
	}
	return out
}

var declarationKinds = []Kind{
	KIND_STRUCT,
	KIND_CLASS,
	KIND_ENUM,
	KIND_INTERFACE,
	KIND_OBJECT,
	KIND_EXTENSION,
	KIND_FUNC,
}

// DeclarationSpacing sets every declaration apart from its neighbours.
// Targets extend it with their own pairs.
func DeclarationSpacing() Spacing {
	s := NewSpacing(Between(declarationKinds, declarationKinds)...)
	for _, kind := range declarationKinds {
		s[[2]Kind{KIND_VAR, kind}] = true
		s[[2]Kind{KIND_STATIC_VAR, kind}] = true
		s[[2]Kind{KIND_CONST_FIELD, kind}] = true
		s[[2]Kind{KIND_LINE, kind}] = true
		s[[2]Kind{KIND_NAMED_BLOCK, kind}] = true
	}
	s[[2]Kind{KIND_NAMED_BLOCK, KIND_NAMED_BLOCK}] = true
	s[[2]Kind{KIND_STATEMENTS, KIND_RETURN}] = true
	s[[2]Kind{KIND_FOR_LOOP, KIND_RETURN}] = true
	return s
}
