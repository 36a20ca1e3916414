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

// Package tpbtext renders decoded wire values as indented text.
package tpbtext

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/encoding/tpbbin"
)

func Encode(value any) string {
	var buf strings.Builder
	EncodeTo(value, &buf)
	return buf.String()
}

// EncodeTo writes value to w. The fields of a top-level struct are
// written without an enclosing block.
func EncodeTo(value any, w io.Writer) error {
	e := encoder{w: w}
	if record, ok := value.(*tpbbin.Record); ok {
		e.visitFields(record.Fields)
	} else {
		e.visitNamed("value", value)
	}
	return e.err
}

type encoder struct {
	w      io.Writer
	indent int
	err    error
}

func (e *encoder) line(s string) {
	if e.err != nil {
		return
	}
	if indent := strings.Repeat("\t", e.indent); indent != "" {
		if _, err := io.WriteString(e.w, indent); err != nil {
			e.err = err
			return
		}
	}
	if _, err := io.WriteString(e.w, s); err != nil {
		e.err = err
		return
	}
	if _, err := io.WriteString(e.w, "\n"); err != nil {
		e.err = err
	}
}

func (e *encoder) linef(format string, a ...any) {
	e.line(fmt.Sprintf(format, a...))
}

func (e *encoder) visitFields(fields []tpbbin.FieldValue) {
	for _, field := range fields {
		e.visitNamed(field.Name, field.Value)
	}
}

func (e *encoder) visitNamed(name string, value any) {
	e.visit(name+" = ", value, "")
}

// visit writes value, opening its first line with prefix and closing its
// last line with suffix.
func (e *encoder) visit(prefix string, value any, suffix string) {
	if scalar, ok := fmtScalar(value); ok {
		e.line(prefix + scalar + suffix)
		return
	}
	switch value := value.(type) {
	case tpbbin.Optional:
		if !value.Valid {
			e.line(prefix + "None" + suffix)
			return
		}
		e.visit(prefix+"Some(", value.Value, ")"+suffix)
	case []any:
		if len(value) == 0 {
			e.line(prefix + "[]" + suffix)
			return
		}
		e.line(prefix + "[")
		e.indent += 1
		for _, item := range value {
			e.visit("", item, ",")
		}
		e.indent -= 1
		e.line("]" + suffix)
	case *tpbbin.Record:
		e.block(prefix+value.Name, value.Fields, suffix)
	case *tpbbin.Variant:
		e.block(prefix+value.Enum+"::"+value.Case, value.Fields, suffix)
	default:
		e.err = fmt.Errorf("tpbtext: unhandled value %v (%T)", value, value)
	}
}

func (e *encoder) block(header string, fields []tpbbin.FieldValue, suffix string) {
	if len(fields) == 0 {
		e.line(header + suffix)
		return
	}
	e.line(header + " {")
	e.indent += 1
	e.visitFields(fields)
	e.indent -= 1
	e.line("}" + suffix)
}

func fmtScalar(value any) (string, bool) {
	switch value := value.(type) {
	case bool:
		if value {
			return "true", true
		}
		return "false", true
	case uint8:
		return strconv.FormatUint(uint64(value), 10), true
	case uint32:
		return strconv.FormatUint(uint64(value), 10), true
	case uint64:
		return strconv.FormatUint(value, 10), true
	case int8:
		return strconv.FormatInt(int64(value), 10), true
	case int32:
		return strconv.FormatInt(int64(value), 10), true
	case int64:
		return strconv.FormatInt(value, 10), true
	case float32:
		return strconv.FormatFloat(float64(value), 'g', -1, 32), true
	case float64:
		return strconv.FormatFloat(value, 'g', -1, 64), true
	case tpbbin.Char:
		return strconv.QuoteRune(rune(value)), true
	case string:
		return quote(value), true
	}
	return "", false
}

func quote(text string) string {
	var buf strings.Builder
	buf.WriteByte('"')
	for _, c := range text {
		if c == '\\' || c == '"' {
			buf.WriteByte('\\')
			buf.WriteRune(c)
			continue
		}
		if c == '\t' {
			buf.WriteString("\\t")
			continue
		}
		if c == '\n' {
			buf.WriteString("\\n")
			continue
		}
		if c < 0x20 || c == 0x7F {
			fmt.Fprintf(&buf, "\\x%02X", c)
			continue
		}
		buf.WriteRune(c)
	}
	buf.WriteByte('"')
	return buf.String()
}
