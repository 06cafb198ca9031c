// Package value implements the tagged word representation used by compiled
// Scheme programs.
//
// Every Scheme value crosses module boundaries as a single 32-bit word. The
// low-order bits of the word select the variant; the remaining bits carry the
// payload. Tag fields overlap at different mask widths, so a Layout is always
// consulted in a fixed priority order:
//
//	Fixnum   mask 0x03  tag 0x00  payload w >> 2
//	Char     mask 0xFF  tag 0x07  payload byte(w >> 8)
//	Boolean  mask 0xFF  tag 0x0F  payload (w >> 8) != 0
//	Pair     mask 0x07  tag 0x01  payload w &^ 7 (heap address)
//	Vector   mask 0x07  tag 0x02
//	String   mask 0x07  tag 0x03
//	Symbol   mask 0x07  tag 0x05
//	Closure  mask 0x07  tag 0x06
package value

// Word is a tagged machine word as produced by compiled code.
type Word int32

// Tag is one row of the tag table. A word belongs to the row when
// w&Mask == Value. Shift is the distance the payload sits above the tag.
type Tag struct {
	Mask  Word
	Value Word
	Shift uint
}

// Match reports whether w carries this tag.
func (t Tag) Match(w Word) bool {
	return w&t.Mask == t.Value
}

// Layout is the complete tag table. It is built once and never mutated, so
// it can be shared freely.
type Layout struct {
	Fixnum Tag
	Char   Tag
	Bool   Tag

	// Heap-tagged values share the pointer mask.
	Pair    Tag
	Vector  Tag
	String  Tag
	Symbol  Tag
	Closure Tag
}

// Tag constants of the default layout.
const (
	fixnumMask  Word = 0x03
	fixnumTag   Word = 0x00
	fixnumShift      = 2

	charMask  Word = 0xFF
	charTag   Word = 0x07
	charShift      = 8

	boolMask  Word = 0xFF
	boolTag   Word = 0x0F
	boolShift      = 8

	ptrMask    Word = 0x07
	pairTag    Word = 0x01
	vectorTag  Word = 0x02
	stringTag  Word = 0x03
	symbolTag  Word = 0x05
	closureTag Word = 0x06
)

// Fixnum range: 30 bits of signed payload survive the shift.
const (
	FixnumMax int32 = 1<<(31-fixnumShift) - 1
	FixnumMin int32 = -(1 << (31 - fixnumShift))
)

var defaultLayout = Layout{
	Fixnum:  Tag{Mask: fixnumMask, Value: fixnumTag, Shift: fixnumShift},
	Char:    Tag{Mask: charMask, Value: charTag, Shift: charShift},
	Bool:    Tag{Mask: boolMask, Value: boolTag, Shift: boolShift},
	Pair:    Tag{Mask: ptrMask, Value: pairTag},
	Vector:  Tag{Mask: ptrMask, Value: vectorTag},
	String:  Tag{Mask: ptrMask, Value: stringTag},
	Symbol:  Tag{Mask: ptrMask, Value: symbolTag},
	Closure: Tag{Mask: ptrMask, Value: closureTag},
}

// DefaultLayout returns the tag table emitted by the compiler.
func DefaultLayout() Layout {
	return defaultLayout
}

type heapRow struct {
	tag  Tag
	kind Kind
}

// heapRows lists the pointer-tagged rows in decode order.
func (l Layout) heapRows() [5]heapRow {
	return [5]heapRow{
		{l.Pair, KindPair},
		{l.Vector, KindVector},
		{l.String, KindString},
		{l.Symbol, KindSymbol},
		{l.Closure, KindClosure},
	}
}
