package value

import "fmt"

// Kind identifies the variant a word decodes to.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindFixnum
	KindChar
	KindBool
	KindPair
	KindVector
	KindString
	KindSymbol
	KindClosure
)

var kindNames = [...]string{
	KindUnknown: "unknown",
	KindFixnum:  "fixnum",
	KindChar:    "char",
	KindBool:    "boolean",
	KindPair:    "pair",
	KindVector:  "vector",
	KindString:  "string",
	KindSymbol:  "symbol",
	KindClosure: "closure",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsHeap reports whether k is a pointer-tagged variant.
func (k Kind) IsHeap() bool {
	return k >= KindPair && k <= KindClosure
}

// Value is a decoded word. Only the payload field matching Kind is set.
type Value struct {
	Kind Kind
	Word Word

	Int  int32  // KindFixnum
	Char byte   // KindChar
	Bool bool   // KindBool
	Addr uint32 // heap kinds; opaque, never dereferenced here
}

func (v Value) String() string {
	switch v.Kind {
	case KindFixnum:
		return fmt.Sprintf("fixnum(%d)", v.Int)
	case KindChar:
		return fmt.Sprintf("char(%q)", rune(v.Char))
	case KindBool:
		return fmt.Sprintf("boolean(%t)", v.Bool)
	case KindUnknown:
		return fmt.Sprintf("unknown(%#x)", uint32(v.Word))
	default:
		return fmt.Sprintf("%s@%#x", v.Kind, v.Addr)
	}
}

// Decode interprets w under l. It never fails: a word matching no row comes
// back as KindUnknown.
//
// The fixnum row is tested first because its two-bit mask is the narrowest;
// char and boolean share the eight-bit mask and are told apart by tag value.
func (l Layout) Decode(w Word) Value {
	switch {
	case l.Fixnum.Match(w):
		return Value{Kind: KindFixnum, Word: w, Int: int32(w >> l.Fixnum.Shift)}
	case l.Char.Match(w):
		return Value{Kind: KindChar, Word: w, Char: byte(w >> l.Char.Shift)}
	case l.Bool.Match(w):
		return Value{Kind: KindBool, Word: w, Bool: w>>l.Bool.Shift != 0}
	}
	for _, h := range l.heapRows() {
		if h.tag.Match(w) {
			return Value{Kind: h.kind, Word: w, Addr: uint32(w &^ h.tag.Mask)}
		}
	}
	return Value{Kind: KindUnknown, Word: w}
}

// Decode interprets w under the default layout.
func Decode(w Word) Value {
	return defaultLayout.Decode(w)
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// EncodeFixnum tags n as a fixnum. Values outside [FixnumMin, FixnumMax]
// lose their high bits.
func (l Layout) EncodeFixnum(n int32) Word {
	return Word(n)<<l.Fixnum.Shift | l.Fixnum.Value
}

// EncodeChar tags c as a character.
func (l Layout) EncodeChar(c byte) Word {
	return Word(c)<<l.Char.Shift | l.Char.Value
}

// EncodeBool tags b as a boolean.
func (l Layout) EncodeBool(b bool) Word {
	var payload Word
	if b {
		payload = 1
	}
	return payload<<l.Bool.Shift | l.Bool.Value
}

// EncodeFixnum tags n under the default layout.
func EncodeFixnum(n int32) Word { return defaultLayout.EncodeFixnum(n) }

// EncodeChar tags c under the default layout.
func EncodeChar(c byte) Word { return defaultLayout.EncodeChar(c) }

// EncodeBool tags b under the default layout.
func EncodeBool(b bool) Word { return defaultLayout.EncodeBool(b) }
