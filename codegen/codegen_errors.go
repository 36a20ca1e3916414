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
	"fmt"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

// Error is a failure to express a valid file in one target language.
type Error struct {
	code    uint32
	message string
	span    syntax.Span
}

var _ error = (*Error)(nil)

func (err *Error) Error() string {
	return fmt.Sprintf("E%d: %s", err.code, err.message)
}

func (err *Error) Code() uint32 {
	return err.code
}

func (err *Error) Message() string {
	return err.message
}

func (err *Error) Span() syntax.Span {
	return err.span
}

func ErrUnsupportedType(target string, t *syntax.TypeID) error {
	return &Error{
		code:    5000,
		message: fmt.Sprintf("Type %s has no %s representation", t, target),
		span:    t.Span(),
	}
}

func ErrUnsupportedConstType(target, name string, t *syntax.TypeID) error {
	return &Error{
		code:    5001,
		message: fmt.Sprintf("Constant '%s' of type %s cannot be declared in %s", name, t, target),
		span:    t.Span(),
	}
}

func errReservedName(name string, span syntax.Span) error {
	return &Error{
		code:    5002,
		message: fmt.Sprintf("Name '%s' is reserved for generated code", name),
		span:    span,
	}
}

func errNameCollision(target, a, b, converted string, span syntax.Span) error {
	return &Error{
		code: 5003,
		message: fmt.Sprintf(
			"Names '%s' and '%s' both become '%s' in %s",
			a, b, converted, target,
		),
		span: span,
	}
}
