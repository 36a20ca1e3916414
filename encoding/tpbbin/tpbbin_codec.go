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

package tpbbin

import (
	"encoding/binary"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

// Schema encodes and decodes values of the types declared in one file.
type Schema struct {
	file *syntax.File
}

func NewSchema(file *syntax.File) *Schema {
	return &Schema{file: file}
}

func (s *Schema) File() *syntax.File {
	return s.file
}

func (s *Schema) Encode(t *syntax.TypeID, value any) ([]byte, error) {
	return s.Append(nil, t, value)
}

// Append encodes value onto the end of buf.
func (s *Schema) Append(buf []byte, t *syntax.TypeID, value any) ([]byte, error) {
	e := encoder{schema: s, buf: buf}
	e.value(t, value)
	if e.err != nil {
		return nil, e.err
	}
	return e.buf, nil
}

// Decode reads one value of type t, which must span all of data.
func (s *Schema) Decode(t *syntax.TypeID, data []byte) (any, error) {
	r := &Reader{schema: s, buf: data}
	value, err := r.Read(t)
	if err != nil {
		return nil, err
	}
	if rest := r.Remaining(); rest > 0 {
		return nil, errTrailingBytes(rest)
	}
	return value, nil
}

// Skip returns the encoded length of the value of type t at the start of
// data, without materializing it.
func (s *Schema) Skip(t *syntax.TypeID, data []byte) (int, error) {
	r := &Reader{schema: s, buf: data}
	if err := r.Skip(t, 1); err != nil {
		return 0, err
	}
	return r.off, nil
}

func (s *Schema) NewReader(data []byte) *Reader {
	return &Reader{schema: s, buf: data}
}

type encoder struct {
	schema *Schema
	buf    []byte
	err    error
}

func (e *encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *encoder) u32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *encoder) u64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

func (e *encoder) value(t *syntax.TypeID, value any) {
	if e.err != nil {
		return
	}
	switch t.Kind() {
	case syntax.TYPE_INTEGER:
		e.integer(t, value)
	case syntax.TYPE_NUMBER:
		switch v := value.(type) {
		case float32:
			if t.Width() == 4 {
				e.u32(math.Float32bits(v))
				return
			}
		case float64:
			if t.Width() == 8 {
				e.u64(math.Float64bits(v))
				return
			}
		}
		e.fail(errValueMismatch(t.String(), value))
	case syntax.TYPE_BOOL:
		v, ok := value.(bool)
		if !ok {
			e.fail(errValueMismatch(t.String(), value))
			return
		}
		if v {
			e.buf = append(e.buf, 1)
		} else {
			e.buf = append(e.buf, 0)
		}
	case syntax.TYPE_CHAR:
		v, ok := value.(Char)
		if !ok {
			e.fail(errValueMismatch(t.String(), value))
			return
		}
		e.u32(uint32(v))
	case syntax.TYPE_GENERIC:
		e.generic(t, value)
	default:
		e.other(t, value)
	}
}

func (e *encoder) integer(t *syntax.TypeID, value any) {
	switch v := value.(type) {
	case int8:
		if t.Signed() && t.Width() == 1 {
			e.buf = append(e.buf, uint8(v))
			return
		}
	case uint8:
		if !t.Signed() && t.Width() == 1 {
			e.buf = append(e.buf, v)
			return
		}
	case int32:
		if t.Signed() && t.Width() == 4 {
			e.u32(uint32(v))
			return
		}
	case uint32:
		if !t.Signed() && t.Width() == 4 {
			e.u32(v)
			return
		}
	case int64:
		if t.Signed() && t.Width() == 8 {
			e.u64(uint64(v))
			return
		}
	case uint64:
		if !t.Signed() && t.Width() == 8 {
			e.u64(v)
			return
		}
	}
	e.fail(errValueMismatch(t.String(), value))
}

func (e *encoder) generic(t *syntax.TypeID, value any) {
	switch {
	case t.IsOption():
		v, ok := value.(Optional)
		if !ok {
			e.fail(errValueMismatch(t.String(), value))
			return
		}
		if !v.Valid {
			e.buf = append(e.buf, 0)
			return
		}
		e.buf = append(e.buf, 1)
		e.value(t.Elem(), v.Value)
	case t.IsVec():
		items, ok := value.([]any)
		if !ok {
			e.fail(errValueMismatch(t.String(), value))
			return
		}
		e.u64(uint64(len(items)))
		for _, item := range items {
			e.value(t.Elem(), item)
		}
	default:
		e.fail(errUnknownType(t.String()))
	}
}

func (e *encoder) other(t *syntax.TypeID, value any) {
	switch {
	case t.IsString():
		v, ok := value.(string)
		if !ok {
			e.fail(errValueMismatch(t.String(), value))
			return
		}
		e.u64(uint64(len(v)))
		e.buf = append(e.buf, v...)
		return
	case syntax.IsAddressType(t):
		v, ok := value.(uint64)
		if !ok {
			e.fail(errValueMismatch(t.String(), value))
			return
		}
		e.u64(v)
		return
	}
	file := e.schema.file
	if decl := file.Struct(t.ID()); decl != nil {
		v, ok := value.(*Record)
		if !ok || v.Name != decl.Name() {
			e.fail(errValueMismatch(t.String(), value))
			return
		}
		e.fields(decl.Fields(), v.Fields, t.String())
		return
	}
	if decl := file.Enum(t.ID()); decl != nil {
		v, ok := value.(*Variant)
		if !ok || v.Enum != decl.Name() {
			e.fail(errValueMismatch(t.String(), value))
			return
		}
		kase := decl.Case(v.Case)
		if kase == nil {
			e.fail(errUnknownCase(decl.Name(), v.Case))
			return
		}
		e.u32(kase.Position())
		e.fields(kase.Fields(), v.Fields, t.String())
		return
	}
	e.fail(errUnknownType(t.ID()))
}

// Fields are written in declaration order, whatever order the value
// lists them in.
func (e *encoder) fields(decls []*syntax.Field, values []FieldValue, typeName string) {
	for ii, decl := range decls {
		name := fieldName(decl, ii)
		found := false
		for _, fv := range values {
			if fv.Name == name {
				e.value(decl.Type(), fv.Value)
				found = true
				break
			}
		}
		if !found {
			e.fail(errValueMismatch(typeName+"."+name, nil))
			return
		}
	}
}

func fieldName(field *syntax.Field, index int) string {
	if field.Name() == "" {
		return strconv.Itoa(index)
	}
	return field.Name()
}

// Reader decodes consecutive values from a buffer.
type Reader struct {
	schema *Schema
	buf    []byte
	off    int
}

func (r *Reader) Offset() int {
	return r.off
}

func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, errTruncated(n, r.Remaining())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) length() (int, error) {
	n, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	if n > uint64(r.Remaining()) {
		return 0, errTruncated(int(min(n, math.MaxInt32)), r.Remaining())
	}
	return int(n), nil
}

func (r *Reader) Read(t *syntax.TypeID) (any, error) {
	switch t.Kind() {
	case syntax.TYPE_INTEGER:
		return r.readInteger(t)
	case syntax.TYPE_NUMBER:
		if t.Width() == 4 {
			v, err := r.ReadU32()
			return math.Float32frombits(v), err
		}
		v, err := r.ReadU64()
		return math.Float64frombits(v), err
	case syntax.TYPE_BOOL:
		v, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		if v > 1 {
			return nil, errInvalidTag("bool", v)
		}
		return v == 1, nil
	case syntax.TYPE_CHAR:
		v, err := r.ReadU32()
		return Char(v), err
	case syntax.TYPE_GENERIC:
		return r.readGeneric(t)
	}
	return r.readOther(t)
}

func (r *Reader) readInteger(t *syntax.TypeID) (any, error) {
	switch t.Width() {
	case 1:
		v, err := r.ReadU8()
		if t.Signed() {
			return int8(v), err
		}
		return v, err
	case 4:
		v, err := r.ReadU32()
		if t.Signed() {
			return int32(v), err
		}
		return v, err
	}
	v, err := r.ReadU64()
	if t.Signed() {
		return int64(v), err
	}
	return v, err
}

func (r *Reader) readGeneric(t *syntax.TypeID) (any, error) {
	switch {
	case t.IsOption():
		tag, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		switch tag {
		case 0:
			return None(), nil
		case 1:
			v, err := r.Read(t.Elem())
			if err != nil {
				return nil, err
			}
			return Some(v), nil
		}
		return nil, errInvalidTag("option", tag)
	case t.IsVec():
		count, err := r.ReadU64()
		if err != nil {
			return nil, err
		}
		if err := r.checkCount(t.Elem(), count); err != nil {
			return nil, err
		}
		items := make([]any, 0, min(count, uint64(r.Remaining())))
		for ii := uint64(0); ii < count; ii++ {
			item, err := r.Read(t.Elem())
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	}
	return nil, errUnknownType(t.String())
}

func (r *Reader) readOther(t *syntax.TypeID) (any, error) {
	switch {
	case t.IsString():
		n, err := r.length()
		if err != nil {
			return nil, err
		}
		b, _ := r.take(n)
		if !utf8.Valid(b) {
			return nil, errInvalidString()
		}
		return string(b), nil
	case syntax.IsAddressType(t):
		return r.ReadU64()
	}
	file := r.schema.file
	if decl := file.Struct(t.ID()); decl != nil {
		fields, err := r.readFields(decl.Fields())
		if err != nil {
			return nil, err
		}
		return &Record{Name: decl.Name(), Fields: fields}, nil
	}
	if decl := file.Enum(t.ID()); decl != nil {
		discriminant, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		kase := caseAt(decl, discriminant)
		if kase == nil {
			return nil, errUnknownDiscriminant(decl.Name(), discriminant)
		}
		fields, err := r.readFields(kase.Fields())
		if err != nil {
			return nil, err
		}
		return &Variant{Enum: decl.Name(), Case: kase.Name(), Fields: fields}, nil
	}
	return nil, errUnknownType(t.ID())
}

func (r *Reader) readFields(decls []*syntax.Field) ([]FieldValue, error) {
	fields := make([]FieldValue, 0, len(decls))
	for ii, decl := range decls {
		v, err := r.Read(decl.Type())
		if err != nil {
			return nil, err
		}
		fields = append(fields, FieldValue{Name: fieldName(decl, ii), Value: v})
	}
	return fields, nil
}

func caseAt(decl *syntax.Enum, discriminant uint32) *syntax.Case {
	for _, kase := range decl.Cases() {
		if kase.Position() == discriminant {
			return kase
		}
	}
	return nil
}

// maxEmptyItems bounds a decoded Vec whose items take no bytes, since the
// buffer length cannot.
const maxEmptyItems = 1 << 16

// checkCount rejects a Vec length that the rest of the buffer cannot hold.
// Every value of a type without a static size takes at least one byte.
func (r *Reader) checkCount(elem *syntax.TypeID, count uint64) error {
	if size, ok := r.schema.StaticSize(elem); ok && size == 0 {
		if count > maxEmptyItems {
			return errCountLimit(count, maxEmptyItems)
		}
		return nil
	}
	if count > uint64(r.Remaining()) {
		return errTruncated(int(min(count, math.MaxInt32)), r.Remaining())
	}
	return nil
}

// Skip advances past count consecutive values of type t.
func (r *Reader) Skip(t *syntax.TypeID, count uint64) error {
	size, static := r.schema.StaticSize(t)
	if static && size == 0 {
		return nil
	}
	if static && (t.IsPrimitive() || syntax.IsAddressType(t)) {
		if count > uint64(r.Remaining()/size) {
			need := math.MaxInt32
			if count <= uint64(math.MaxInt32/size) {
				need = int(count) * size
			}
			return errTruncated(need, r.Remaining())
		}
		r.off += int(count) * size
		return nil
	}
	if count > uint64(r.Remaining()) {
		return errTruncated(int(min(count, math.MaxInt32)), r.Remaining())
	}
	for ii := uint64(0); ii < count; ii++ {
		if err := r.skipOne(t); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) skipOne(t *syntax.TypeID) error {
	switch {
	case t.IsOption():
		tag, err := r.ReadU8()
		if err != nil {
			return err
		}
		switch tag {
		case 0:
			return nil
		case 1:
			return r.Skip(t.Elem(), 1)
		}
		return errInvalidTag("option", tag)
	case t.IsVec():
		count, err := r.ReadU64()
		if err != nil {
			return err
		}
		return r.Skip(t.Elem(), count)
	case t.IsString():
		n, err := r.length()
		if err != nil {
			return err
		}
		r.off += n
		return nil
	case t.Kind() != syntax.TYPE_OTHER:
		return errUnknownType(t.String())
	}
	file := r.schema.file
	if decl := file.Struct(t.ID()); decl != nil {
		for _, field := range decl.Fields() {
			if err := r.Skip(field.Type(), 1); err != nil {
				return err
			}
		}
		return nil
	}
	if decl := file.Enum(t.ID()); decl != nil {
		discriminant, err := r.ReadU32()
		if err != nil {
			return err
		}
		kase := caseAt(decl, discriminant)
		if kase == nil {
			return errUnknownDiscriminant(decl.Name(), discriminant)
		}
		for _, field := range kase.Fields() {
			if err := r.Skip(field.Type(), 1); err != nil {
				return err
			}
		}
		return nil
	}
	return errUnknownType(t.ID())
}

// StaticSize reports the encoded size of t when every value of t has the
// same size.
func (s *Schema) StaticSize(t *syntax.TypeID) (int, bool) {
	return s.staticSize(t, map[string]bool{})
}

func (s *Schema) staticSize(t *syntax.TypeID, visiting map[string]bool) (int, bool) {
	switch t.Kind() {
	case syntax.TYPE_INTEGER, syntax.TYPE_NUMBER, syntax.TYPE_CHAR:
		return int(t.Width()), true
	case syntax.TYPE_BOOL:
		return 1, true
	case syntax.TYPE_GENERIC:
		return 0, false
	}
	if t.IsString() {
		return 0, false
	}
	if syntax.IsAddressType(t) {
		return 8, true
	}
	if visiting[t.ID()] {
		return 0, false
	}
	visiting[t.ID()] = true
	defer delete(visiting, t.ID())
	if decl := s.file.Struct(t.ID()); decl != nil {
		return s.fieldsSize(decl.Fields(), visiting)
	}
	if decl := s.file.Enum(t.ID()); decl != nil {
		size := -1
		for _, kase := range decl.Cases() {
			caseSize, ok := s.fieldsSize(kase.Fields(), visiting)
			if !ok || (size >= 0 && caseSize != size) {
				return 0, false
			}
			size = caseSize
		}
		return 4 + max(size, 0), true
	}
	return 0, false
}

func (s *Schema) fieldsSize(fields []*syntax.Field, visiting map[string]bool) (int, bool) {
	total := 0
	for _, field := range fields {
		size, ok := s.staticSize(field.Type(), visiting)
		if !ok {
			return 0, false
		}
		total += size
	}
	return total, true
}

// Default returns the value generated code produces for an unset value
// of type t. The default of an enum is its first case.
func (s *Schema) Default(t *syntax.TypeID) (any, error) {
	return s.defaultOf(t, map[string]bool{})
}

func (s *Schema) defaultOf(t *syntax.TypeID, visiting map[string]bool) (any, error) {
	switch t.Kind() {
	case syntax.TYPE_INTEGER:
		switch {
		case t.Width() == 1 && t.Signed():
			return int8(0), nil
		case t.Width() == 1:
			return uint8(0), nil
		case t.Width() == 4 && t.Signed():
			return int32(0), nil
		case t.Width() == 4:
			return uint32(0), nil
		case t.Signed():
			return int64(0), nil
		}
		return uint64(0), nil
	case syntax.TYPE_NUMBER:
		if t.Width() == 4 {
			return float32(0), nil
		}
		return float64(0), nil
	case syntax.TYPE_BOOL:
		return false, nil
	case syntax.TYPE_CHAR:
		return Char(0), nil
	case syntax.TYPE_GENERIC:
		switch {
		case t.IsOption():
			return None(), nil
		case t.IsVec():
			return []any{}, nil
		}
		return nil, errUnknownType(t.String())
	}
	switch {
	case t.IsString():
		return "", nil
	case syntax.IsAddressType(t):
		return uint64(0), nil
	case visiting[t.ID()]:
		return nil, errUnknownType(t.ID())
	}
	visiting[t.ID()] = true
	defer delete(visiting, t.ID())
	if decl := s.file.Struct(t.ID()); decl != nil {
		fields, err := s.defaultFields(decl.Fields(), visiting)
		if err != nil {
			return nil, err
		}
		return &Record{Name: decl.Name(), Fields: fields}, nil
	}
	if decl := s.file.Enum(t.ID()); decl != nil && len(decl.Cases()) > 0 {
		kase := decl.Cases()[0]
		fields, err := s.defaultFields(kase.Fields(), visiting)
		if err != nil {
			return nil, err
		}
		return &Variant{Enum: decl.Name(), Case: kase.Name(), Fields: fields}, nil
	}
	return nil, errUnknownType(t.ID())
}

func (s *Schema) defaultFields(decls []*syntax.Field, visiting map[string]bool) ([]FieldValue, error) {
	fields := make([]FieldValue, 0, len(decls))
	for ii, decl := range decls {
		v, err := s.defaultOf(decl.Type(), visiting)
		if err != nil {
			return nil, err
		}
		fields = append(fields, FieldValue{Name: fieldName(decl, ii), Value: v})
	}
	return fields, nil
}
