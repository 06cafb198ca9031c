package value

import (
	"fmt"
	"strconv"
)

// UnsupportedVariantError is returned by Render for words that have no
// printed form: heap-tagged values and words matching no tag.
type UnsupportedVariantError struct {
	Word Word
	Kind Kind
}

func (e *UnsupportedVariantError) Error() string {
	return fmt.Sprintf("cannot print %s value (word %#08x)", e.Kind, uint32(e.Word))
}

// Render returns the external representation of w: decimal for fixnums,
// #\c for characters, #t or #f for booleans.
func (l Layout) Render(w Word) (string, error) {
	v := l.Decode(w)
	switch v.Kind {
	case KindFixnum:
		return strconv.FormatInt(int64(v.Int), 10), nil
	case KindChar:
		return `#\` + string(rune(v.Char)), nil
	case KindBool:
		if v.Bool {
			return "#t", nil
		}
		return "#f", nil
	}
	return "", &UnsupportedVariantError{Word: w, Kind: v.Kind}
}

// Render prints w under the default layout.
func Render(w Word) (string, error) {
	return defaultLayout.Render(w)
}
