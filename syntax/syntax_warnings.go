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

import (
	"fmt"
)

type Warning struct {
	code    uint32
	message string
	span    Span
}

func (w *Warning) String() string {
	return fmt.Sprintf("W%d: %s", w.code, w.message)
}

func (w *Warning) Code() uint32 {
	return w.code
}

func (w *Warning) Message() string {
	return w.message
}

func (w *Warning) Span() Span {
	return w.span
}

func warnPositionIgnored(what string, span Span) *Warning {
	return &Warning{
		code:    4000,
		message: fmt.Sprintf("Position tag on %s is ignored", what),
		span:    span,
	}
}

func warnUnknownAttribute(name string, span Span) *Warning {
	return &Warning{
		code:    4001,
		message: fmt.Sprintf("Unknown attribute #[%s]", name),
		span:    span,
	}
}

func warnAttributeIgnored(name, what string, span Span) *Warning {
	return &Warning{
		code:    4002,
		message: fmt.Sprintf("Attribute #[%s] has no effect on %s", name, what),
		span:    span,
	}
}

func warnUnusedDirective(name string, span Span) *Warning {
	return &Warning{
		code:    4003,
		message: fmt.Sprintf("Directive #[%s] is unused (file declares no RPC functions)", name),
		span:    span,
	}
}

func warnDanglingDocComment(span Span) *Warning {
	return &Warning{
		code:    4004,
		message: "Doc comment is not attached to any declaration",
		span:    span,
	}
}
