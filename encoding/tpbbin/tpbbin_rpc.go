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

	"github.com/tech-paws/tech-paws-buffers-generator-sub000/syntax"
)

// Every RPC buffer starts with a status byte.
const (
	StatusEmpty uint8 = 0x00
	StatusData  uint8 = 0xFF
)

// PayloadSize is the size class the runtime uses to pre-size the buffers
// of a method.
type PayloadSize uint8

const (
	PAYLOAD_ZERO PayloadSize = iota
	PAYLOAD_SMALL
	PAYLOAD_MEDIUM
	PAYLOAD_LARGE
)

const (
	smallPayloadLimit  = 4
	mediumPayloadLimit = 1024
)

func (s PayloadSize) String() string {
	switch s {
	case PAYLOAD_ZERO:
		return "Zero"
	case PAYLOAD_SMALL:
		return "Small"
	case PAYLOAD_MEDIUM:
		return "Medium"
	}
	return "Large"
}

// HasMethodID reports whether the request and reply of fn carry a
// correlation id after the status byte.
func HasMethodID(fn *syntax.Fn) bool {
	return fn.Async() && !fn.Signal()
}

// BufferSizes returns the encoded sizes of the Server (request) and
// Client (reply) buffers of fn, status byte included. fixed is false when
// either buffer has a variable size.
func (s *Schema) BufferSizes(fn *syntax.Fn) (server, client int, fixed bool) {
	server, client, fixed = 1, 1, true
	if HasMethodID(fn) {
		server += 8
		client += 8
	}
	if !fn.Signal() {
		for _, arg := range fn.Args() {
			size, ok := s.StaticSize(arg.Type())
			if !ok {
				fixed = false
			}
			server += size
		}
	}
	if ret := fn.Return(); ret != nil {
		size, ok := s.StaticSize(ret)
		if !ok {
			fixed = false
		}
		client += size
	}
	return server, client, fixed
}

func (s *Schema) MethodPayloadSize(fn *syntax.Fn) PayloadSize {
	server, client, fixed := s.BufferSizes(fn)
	size := max(server, client)
	switch {
	case !fixed || size > mediumPayloadLimit:
		return PAYLOAD_LARGE
	case size == 1:
		return PAYLOAD_ZERO
	case size <= smallPayloadLimit:
		return PAYLOAD_SMALL
	}
	return PAYLOAD_MEDIUM
}

// EncodeRequest builds the Server buffer a client writes to invoke fn.
// Signals have no arguments; their request is the status byte alone.
func (s *Schema) EncodeRequest(fn *syntax.Fn, methodID int64, args []FieldValue) ([]byte, error) {
	buf := []byte{StatusData}
	if HasMethodID(fn) {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(methodID))
	}
	if fn.Signal() {
		return buf, nil
	}
	e := encoder{schema: s, buf: buf}
	e.fields(fn.Args(), args, fn.Name())
	if e.err != nil {
		return nil, e.err
	}
	return e.buf, nil
}

// DecodeRequest is the handler side of EncodeRequest.
func (s *Schema) DecodeRequest(fn *syntax.Fn, data []byte) (methodID int64, args []FieldValue, err error) {
	r := s.NewReader(data)
	if err := r.status(); err != nil {
		return 0, nil, err
	}
	if HasMethodID(fn) {
		id, err := r.ReadU64()
		if err != nil {
			return 0, nil, err
		}
		methodID = int64(id)
	}
	if !fn.Signal() {
		if args, err = r.readFields(fn.Args()); err != nil {
			return 0, nil, err
		}
	}
	if rest := r.Remaining(); rest > 0 {
		return 0, nil, errTrailingBytes(rest)
	}
	return methodID, args, nil
}

// EncodeReply builds the Client buffer a handler writes with the result
// of fn. result is ignored when fn returns nothing.
func (s *Schema) EncodeReply(fn *syntax.Fn, methodID int64, result any) ([]byte, error) {
	buf := []byte{StatusData}
	if HasMethodID(fn) {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(methodID))
	}
	if fn.Return() == nil {
		return buf, nil
	}
	return s.Append(buf, fn.Return(), result)
}

func (s *Schema) DecodeReply(fn *syntax.Fn, data []byte) (methodID int64, result any, err error) {
	r := s.NewReader(data)
	if err := r.status(); err != nil {
		return 0, nil, err
	}
	if HasMethodID(fn) {
		id, err := r.ReadU64()
		if err != nil {
			return 0, nil, err
		}
		methodID = int64(id)
	}
	if fn.Return() != nil {
		if result, err = r.Read(fn.Return()); err != nil {
			return 0, nil, err
		}
	}
	if rest := r.Remaining(); rest > 0 {
		return 0, nil, errTrailingBytes(rest)
	}
	return methodID, result, nil
}

func (r *Reader) status() error {
	status, err := r.ReadU8()
	if err != nil {
		return err
	}
	if status != StatusData {
		return errInvalidStatus(status)
	}
	return nil
}
