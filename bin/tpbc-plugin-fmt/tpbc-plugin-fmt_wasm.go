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

//go:build tinygo

package main

import (
	"encoding/binary"
	"math"
	"unsafe"
)

var buffers = make(map[*uint8][]uint8)

func main() {}

//go:export tpbc_plugin_allocate
func tpbcPluginAllocate(len uint32) *uint8 {
	if len > math.MaxInt32 {
		return nil
	}
	buf := make([]uint8, int(len))
	ptr := unsafe.SliceData(buf)
	buffers[ptr] = buf
	return ptr
}

//go:export tpbc_plugin_deallocate
func tpbcPluginDeallocate(ptr *uint8) {
	delete(buffers, ptr)
}

//go:export tpbc_plugin_generate
func tpbcPluginGenerate(requestPtr *uint8, requestLen uint32, responsePtrPtr **uint8) uint32 {
	requestBuf := unsafe.Slice(requestPtr, requestLen)
	responseBuf, ok := handleJSON(requestBuf)

	message := make([]uint8, 4+len(responseBuf))
	binary.LittleEndian.PutUint32(message, uint32(len(responseBuf)))
	copy(message[4:], responseBuf)
	responsePtr := unsafe.SliceData(message)
	buffers[responsePtr] = message
	*responsePtrPtr = responsePtr
	if !ok {
		return 1
	}
	return 0
}
