package model

import (
	"fmt"
	"unicode/utf16"
)

// Character offsets in text properties are counted in UTF-16 code units, like
// the selections reported by browsers. An emoji usually counts as 2.

// TextLength returns the length of s in UTF-16 code units.
func TextLength(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// TextSlice returns the text between start and end.
func TextSlice(s string, start, end int) (string, error) {
	units := utf16.Encode([]rune(s))
	if err := checkTextRange(units, start, end); err != nil {
		return "", err
	}
	return string(utf16.Decode(units[start:end])), nil
}

func textInsert(s string, offset int, value string) (string, error) {
	units := utf16.Encode([]rune(s))
	if err := checkTextRange(units, offset, offset); err != nil {
		return "", err
	}
	inserted := utf16.Encode([]rune(value))
	result := make([]uint16, 0, len(units)+len(inserted))
	result = append(result, units[:offset]...)
	result = append(result, inserted...)
	result = append(result, units[offset:]...)
	return string(utf16.Decode(result)), nil
}

// textDelete removes the text between start and end, and returns the new
// text and the removed part.
func textDelete(s string, start, end int) (string, string, error) {
	units := utf16.Encode([]rune(s))
	if err := checkTextRange(units, start, end); err != nil {
		return "", "", err
	}
	removed := string(utf16.Decode(units[start:end]))
	result := make([]uint16, 0, len(units)-(end-start))
	result = append(result, units[:start]...)
	result = append(result, units[end:]...)
	return string(utf16.Decode(result)), removed, nil
}

func checkTextRange(units []uint16, start, end int) error {
	if start < 0 || end < start || end > len(units) {
		return fmt.Errorf("%w: [%d, %d] for a text of length %d", ErrInvalidPosition, start, end, len(units))
	}
	if splitsSurrogate(units, start) || splitsSurrogate(units, end) {
		return fmt.Errorf("%w: offset inside a surrogate pair", ErrInvalidPosition)
	}
	return nil
}

func splitsSurrogate(units []uint16, pos int) bool {
	if pos <= 0 || pos >= len(units) {
		return false
	}
	prev := units[pos-1]
	return prev >= 0xD800 && prev < 0xDC00
}
