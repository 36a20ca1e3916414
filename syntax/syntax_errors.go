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
	"math"
	"strings"
	"unicode/utf8"
)

type Error struct {
	code    uint32
	message string
	span    Span
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

func (err *Error) Span() Span {
	return err.span
}

func spanOf(start uint32, token []byte) Span {
	tokenLen := uint32(math.MaxUint32)
	if uint64(len(token)) < math.MaxUint32 {
		tokenLen = uint32(len(token))
	}
	return Span{start, tokenLen}
}

func errSourceTooLong(srcLen int) error {
	lenUint32 := uint32(math.MaxUint32)
	if uint64(srcLen) < math.MaxUint32 {
		lenUint32 = uint32(srcLen)
	}
	return &Error{
		code: 1000,
		message: fmt.Sprintf(
			"Source file size (%d bytes) exceeds maximum (%d bytes)",
			srcLen, maxSrcLen,
		),
		span: Span{0, lenUint32},
	}
}

func errInvalidUtf8(src []byte) error {
	var off uint32
	for len(src) > 0 {
		r, size := utf8.DecodeRune(src)
		if r == utf8.RuneError {
			break
		}
		off += uint32(size)
		src = src[size:]
	}
	return &Error{
		code:    1001,
		message: "Source file contains invalid UTF-8",
		span:    Span{off, 1},
	}
}

func errUnexpectedCharacter(start uint32, r rune) error {
	return &Error{
		code:    1002,
		message: fmt.Sprintf("Unexpected character '%s' (U+%04X)", string(r), r),
		span:    Span{start, uint32(utf8.RuneLen(r))},
	}
}

func errForbiddenControlCharacter(start uint32, c byte) error {
	return &Error{
		code:    1003,
		message: fmt.Sprintf("Forbidden control character U+%04X", c),
		span:    Span{start, 1},
	}
}

func errHexLitUnterminated(start uint32, token []byte) error {
	return &Error{
		code:    1004,
		message: fmt.Sprintf("Unterminated hex literal %q", token),
		span:    spanOf(start, token),
	}
}

func errStringLitUnterminated(start, tokenLen uint32) error {
	return &Error{
		code:    1005,
		message: "Unterminated string literal",
		span:    Span{start, tokenLen},
	}
}

func errNumLitMalformed(start uint32, token []byte) error {
	return &Error{
		code:    1006,
		message: fmt.Sprintf("Malformed number literal %q", token),
		span:    spanOf(start, token),
	}
}

func describeToken(kind TokenKind, text string) string {
	if kind == T_EOF {
		return "(EOF)"
	}
	return fmt.Sprintf("(%s %q)", kind, text)
}

func errExpectedSymbol(want string, gotKind TokenKind, gotToken string, span Span) error {
	return &Error{
		code:    2000,
		message: fmt.Sprintf("Expected '%s', got %s", want, describeToken(gotKind, gotToken)),
		span:    span,
	}
}

func errExpectedIdent(gotKind TokenKind, gotToken string, span Span) error {
	return &Error{
		code:    2001,
		message: fmt.Sprintf("Expected identifier, got %s", describeToken(gotKind, gotToken)),
		span:    span,
	}
}

func errExpectedDeclaration(gotKind TokenKind, gotToken string, span Span) error {
	return &Error{
		code: 2002,
		message: fmt.Sprintf(
			"Expected one of [directive, const, struct, enum, fn, signal, async], got %s",
			describeToken(gotKind, gotToken),
		),
		span: span,
	}
}

func errExpectedType(gotKind TokenKind, gotToken string, span Span) error {
	return &Error{
		code:    2003,
		message: fmt.Sprintf("Expected type, got %s", describeToken(gotKind, gotToken)),
		span:    span,
	}
}

func errExpectedConstValue(gotKind TokenKind, gotToken string, span Span) error {
	return &Error{
		code: 2004,
		message: fmt.Sprintf(
			"Expected one of [string, integer, number, bool, Enum::Case], got %s",
			describeToken(gotKind, gotToken),
		),
		span: span,
	}
}

func errExpectedDirectiveValue(gotKind TokenKind, gotToken string, span Span) error {
	return &Error{
		code: 2005,
		message: fmt.Sprintf(
			"Expected one of [string, integer, number, bool, identifier], got %s",
			describeToken(gotKind, gotToken),
		),
		span: span,
	}
}

func errExpectedKeywordFn(gotKind TokenKind, gotToken string, span Span) error {
	return &Error{
		code:    2006,
		message: fmt.Sprintf("Expected keyword 'fn', got %s", describeToken(gotKind, gotToken)),
		span:    span,
	}
}

func errDuplicatePosition(position uint32, span Span) error {
	return &Error{
		code:    2007,
		message: fmt.Sprintf("Duplicate position #[%d]", position),
		span:    span,
	}
}

func errDuplicateName(kind, name string, span Span) error {
	return &Error{
		code:    2008,
		message: fmt.Sprintf("Duplicate %s name '%s'", kind, name),
		span:    span,
	}
}

func errIntLitOutOfRange(token string, span Span) error {
	return &Error{
		code: 2009,
		message: fmt.Sprintf(
			"Integer literal %s out of range (must be >= %d and <= %d)",
			token, int64(math.MinInt64), uint64(math.MaxUint64),
		),
		span: span,
	}
}

func errPositionOutOfRange(token string, span Span) error {
	return &Error{
		code:    2010,
		message: fmt.Sprintf("Position %s out of range (must be <= %d)", token, uint32(math.MaxUint32)),
		span:    span,
	}
}

func errStructConstUnsupported(name string, span Span) error {
	return &Error{
		code:    2011,
		message: fmt.Sprintf("Struct constant literal '%s { ... }' is not supported", name),
		span:    span,
	}
}

func errConstTypeMismatch(name string, typ *TypeID, lit *Literal) error {
	return &Error{
		code: 3000,
		message: fmt.Sprintf(
			"Constant '%s' of type %s cannot hold a %s literal",
			name, typ, lit.kind,
		),
		span: lit.span,
	}
}

func errUnknownPrimitive(name string, span Span) error {
	return &Error{
		code:    3001,
		message: fmt.Sprintf("Unsupported primitive type '%s'", name),
		span:    span,
	}
}

func errGenericArity(name string, want, got int, span Span) error {
	return &Error{
		code:    3002,
		message: fmt.Sprintf("Generic type '%s' takes %d type argument(s), got %d", name, want, got),
		span:    span,
	}
}

func errMissingDirective(name string) error {
	return &Error{
		code:    3003,
		message: fmt.Sprintf("Missing required directive #[%s = ...] (file declares RPC functions)", name),
	}
}

func errDuplicateDirective(name string, span Span) error {
	return &Error{
		code:    3004,
		message: fmt.Sprintf("Duplicate directive #[%s]", name),
		span:    span,
	}
}

func errDirectiveValueType(name, want string, span Span) error {
	return &Error{
		code:    3005,
		message: fmt.Sprintf("Directive #[%s] requires a %s value", name, want),
		span:    span,
	}
}

func errNamespaceNotSnakeCase(namespace string, span Span) error {
	return &Error{
		code:    3006,
		message: fmt.Sprintf("Namespace %q is not snake_case", namespace),
		span:    span,
	}
}

func errDuplicateDeclaration(name string, span Span) error {
	return &Error{
		code:    3007,
		message: fmt.Sprintf("Duplicate declaration '%s'", name),
		span:    span,
	}
}

func errSignalSignature(name string, span Span) error {
	return &Error{
		code:    3008,
		message: fmt.Sprintf("Signal function '%s' must take no arguments and declare a return type", name),
		span:    span,
	}
}

func errUnknownEnum(name string, span Span) error {
	return &Error{
		code:    3009,
		message: fmt.Sprintf("Unknown enum '%s' in variant constant", name),
		span:    span,
	}
}

func errUnknownCase(enum, name string, span Span) error {
	return &Error{
		code:    3010,
		message: fmt.Sprintf("Enum '%s' has no case '%s'", enum, name),
		span:    span,
	}
}

func errVariantShape(enum, name string, want CaseStyle, span Span) error {
	return &Error{
		code:    3011,
		message: fmt.Sprintf("Constant for '%s::%s' must use %s syntax", enum, name, want),
		span:    span,
	}
}

func errVariantFields(enum, name string, missing, unknown []string, span Span) error {
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing ["+strings.Join(missing, ", ")+"]")
	}
	if len(unknown) > 0 {
		parts = append(parts, "unknown ["+strings.Join(unknown, ", ")+"]")
	}
	return &Error{
		code:    3012,
		message: fmt.Sprintf("Constant for '%s::%s' has mismatched fields: %s", enum, name, strings.Join(parts, ", ")),
		span:    span,
	}
}

func errVariantTypeMismatch(enum string, typ *TypeID, span Span) error {
	return &Error{
		code:    3013,
		message: fmt.Sprintf("Variant constant of enum '%s' cannot have declared type %s", enum, typ),
		span:    span,
	}
}

func errExpectedPosition(gotKind TokenKind, gotToken string, span Span) error {
	return &Error{
		code:    2012,
		message: fmt.Sprintf("Expected position integer, got %s", describeToken(gotKind, gotToken)),
		span:    span,
	}
}

func errInnerDocPlacement(span Span) error {
	return &Error{
		code:    2013,
		message: "File doc comment (//!) is only allowed at the top level",
		span:    span,
	}
}
