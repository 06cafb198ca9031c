package wasm

import (
	"github.com/tetratelabs/wabin/leb128"
	wabin "github.com/tetratelabs/wabin/wasm"
)

// blockTypeEmpty marks a block with no result.
const blockTypeEmpty byte = 0x40

// Code accumulates a function body. Methods return the receiver so bodies
// read top to bottom:
//
//	var c wasm.Code
//	c.LocalGet(0).LocalGet(1).I32Sub()
//
// The final end opcode is added by Module.Encode.
type Code struct {
	buf []byte
}

// Bytes returns the instructions written so far.
func (c *Code) Bytes() []byte { return c.buf }

func (c *Code) op(b wabin.Opcode, immediates ...[]byte) *Code {
	c.buf = append(c.buf, b)
	for _, imm := range immediates {
		c.buf = append(c.buf, imm...)
	}
	return c
}

func (c *Code) Unreachable() *Code { return c.op(wabin.OpcodeUnreachable) }
func (c *Code) Drop() *Code        { return c.op(wabin.OpcodeDrop) }
func (c *Code) Select() *Code      { return c.op(wabin.OpcodeSelect) }
func (c *Code) Else() *Code        { return c.op(wabin.OpcodeElse) }
func (c *Code) End() *Code         { return c.op(wabin.OpcodeEnd) }

func (c *Code) I32Eqz() *Code  { return c.op(wabin.OpcodeI32Eqz) }
func (c *Code) I32Eq() *Code   { return c.op(wabin.OpcodeI32Eq) }
func (c *Code) I32Ne() *Code   { return c.op(wabin.OpcodeI32Ne) }
func (c *Code) I32LtS() *Code  { return c.op(wabin.OpcodeI32LtS) }
func (c *Code) I32GtS() *Code  { return c.op(wabin.OpcodeI32GtS) }
func (c *Code) I32Add() *Code  { return c.op(wabin.OpcodeI32Add) }
func (c *Code) I32Sub() *Code  { return c.op(wabin.OpcodeI32Sub) }
func (c *Code) I32And() *Code  { return c.op(wabin.OpcodeI32And) }
func (c *Code) I32Or() *Code   { return c.op(wabin.OpcodeI32Or) }
func (c *Code) I32Shl() *Code  { return c.op(wabin.OpcodeI32Shl) }
func (c *Code) I32ShrS() *Code { return c.op(wabin.OpcodeI32ShrS) }

// I32Const pushes v.
func (c *Code) I32Const(v int32) *Code {
	return c.op(wabin.OpcodeI32Const, leb128.EncodeInt32(v))
}

// LocalGet pushes local (or parameter) i.
func (c *Code) LocalGet(i uint32) *Code {
	return c.op(wabin.OpcodeLocalGet, leb128.EncodeUint32(i))
}

// LocalSet pops into local i.
func (c *Code) LocalSet(i uint32) *Code {
	return c.op(wabin.OpcodeLocalSet, leb128.EncodeUint32(i))
}

// Call calls function index fn. Imported functions come first in the index
// space; see Module.FuncIndex.
func (c *Code) Call(fn uint32) *Code {
	return c.op(wabin.OpcodeCall, leb128.EncodeUint32(fn))
}

// If opens a conditional producing one value of type result.
func (c *Code) If(result ValType) *Code {
	return c.op(wabin.OpcodeIf, []byte{result})
}

// IfVoid opens a conditional producing nothing.
func (c *Code) IfVoid() *Code {
	return c.op(wabin.OpcodeIf, []byte{blockTypeEmpty})
}

// I32Load loads a word from linear memory at the popped address plus offset.
func (c *Code) I32Load(offset uint32) *Code {
	// natural alignment is 2^2
	return c.op(wabin.OpcodeI32Load, leb128.EncodeUint32(2), leb128.EncodeUint32(offset))
}
