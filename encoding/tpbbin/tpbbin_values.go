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

// Package tpbbin is a schema-driven implementation of the binary wire
// format that generated codecs read and write.
package tpbbin

import (
	"fmt"
)

// Values are represented with Go types: int8, uint8, int32, uint32,
// int64, uint64, float32, float64, bool, Char, string, Optional, []any
// (Vec), *Record (struct) and *Variant (enum). Address types are uint64.

type Char rune

type Optional struct {
	Valid bool
	Value any
}

func Some(value any) Optional {
	return Optional{Valid: true, Value: value}
}

func None() Optional {
	return Optional{}
}

type FieldValue struct {
	Name  string
	Value any
}

type Record struct {
	Name   string
	Fields []FieldValue
}

func (r *Record) Field(name string) (any, bool) {
	for _, field := range r.Fields {
		if field.Name == name {
			return field.Value, true
		}
	}
	return nil, false
}

// Variant is one case of an enum. Tuple case fields are named by their
// index ("0", "1", ...).
type Variant struct {
	Enum   string
	Case   string
	Fields []FieldValue
}

type Error struct {
	code    uint32
	message string
}

func (err *Error) Error() string {
	return fmt.Sprintf("E%d: %s", err.code, err.message)
}

func (err *Error) Code() uint32 {
	return err.code
}

func (err *Error) Message() string {
	return err.message
}

const (
	codeUnknownType         uint32 = 6000
	codeValueMismatch       uint32 = 6001
	codeTruncated           uint32 = 6002
	codeUnknownDiscriminant uint32 = 6003
	codeTrailingBytes       uint32 = 6004
	codeInvalidTag          uint32 = 6005
	codeInvalidString       uint32 = 6006
	codeInvalidStatus       uint32 = 6007
	codeUnknownCase         uint32 = 6008
	codeCountLimit          uint32 = 6009
)

func errUnknownType(name string) error {
	return &Error{codeUnknownType, fmt.Sprintf("Type '%s' is not declared in the schema", name)}
}

func errValueMismatch(want string, got any) error {
	return &Error{codeValueMismatch, fmt.Sprintf("Expected a value of type %s, got %T", want, got)}
}

func errTruncated(need, have int) error {
	return &Error{codeTruncated, fmt.Sprintf("Buffer truncated: need %d bytes, have %d", need, have)}
}

func errUnknownDiscriminant(enum string, discriminant uint32) error {
	return &Error{codeUnknownDiscriminant, fmt.Sprintf("Unknown discriminant %d for enum '%s'", discriminant, enum)}
}

func errTrailingBytes(count int) error {
	return &Error{codeTrailingBytes, fmt.Sprintf("%d bytes remain after the decoded value", count)}
}

func errInvalidTag(what string, tag uint8) error {
	return &Error{codeInvalidTag, fmt.Sprintf("Invalid %s byte 0x%02X", what, tag)}
}

func errInvalidString() error {
	return &Error{codeInvalidString, "String is not valid UTF-8"}
}

func errInvalidStatus(status uint8) error {
	return &Error{codeInvalidStatus, fmt.Sprintf("Buffer status is 0x%02X, expected 0x%02X", status, StatusData)}
}

func errUnknownCase(enum, kase string) error {
	return &Error{codeUnknownCase, fmt.Sprintf("Enum '%s' has no case '%s'", enum, kase)}
}

func errCountLimit(count uint64, limit int) error {
	return &Error{codeCountLimit, fmt.Sprintf("Vec of %d empty items exceeds the limit of %d", count, limit)}
}
