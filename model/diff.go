package model

import "fmt"

// DiffTarget tells if a diff applies to a text or to an array.
type DiffTarget string

// DiffOp is the kind of change of a diff.
type DiffOp string

// Targets and operations of diffs.
const (
	DiffText  DiffTarget = "text"
	DiffArray DiffTarget = "array"

	DiffInsert DiffOp = "insert"
	DiffDelete DiffOp = "delete"
)

// Diff is a structural change of a text or array property.
//
//   - text insert: Value (a string) is inserted at Start
//   - text delete: the characters between Start and End are removed
//   - array insert: Value is inserted at index Start
//   - array delete: the element at index Start is removed
//
// For deletions, Value holds the removed text or element once the diff has
// been applied, which makes the diff invertible.
type Diff struct {
	Target DiffTarget  `json:"target"`
	Op     DiffOp      `json:"op"`
	Start  int         `json:"start"`
	End    int         `json:"end,omitempty"`
	Value  interface{} `json:"value,omitempty"`
}

// TextInsert returns a diff inserting text at the given offset.
func TextInsert(offset int, text string) Diff {
	return Diff{Target: DiffText, Op: DiffInsert, Start: offset, End: offset, Value: text}
}

// TextDelete returns a diff removing the text between start and end.
func TextDelete(start, end int) Diff {
	return Diff{Target: DiffText, Op: DiffDelete, Start: start, End: end}
}

// ArrayInsert returns a diff inserting a value at the given index.
func ArrayInsert(offset int, value interface{}) Diff {
	return Diff{Target: DiffArray, Op: DiffInsert, Start: offset, Value: value}
}

// ArrayDelete returns a diff removing the value at the given index.
func ArrayDelete(offset int) Diff {
	return Diff{Target: DiffArray, Op: DiffDelete, Start: offset}
}

// IsInsert returns true for insertions.
func (d Diff) IsInsert() bool { return d.Op == DiffInsert }

// IsDelete returns true for deletions.
func (d Diff) IsDelete() bool { return d.Op == DiffDelete }

// Invert returns the diff undoing this one. A deletion must have been
// applied (so that Value holds what was removed) before being inverted.
func (d Diff) Invert() Diff {
	switch {
	case d.Target == DiffText && d.Op == DiffInsert:
		s, _ := d.Value.(string)
		inv := TextDelete(d.Start, d.Start+TextLength(s))
		inv.Value = s
		return inv
	case d.Target == DiffText && d.Op == DiffDelete:
		s, _ := d.Value.(string)
		return TextInsert(d.Start, s)
	case d.Target == DiffArray && d.Op == DiffInsert:
		inv := ArrayDelete(d.Start)
		inv.Value = d.Value
		return inv
	case d.Target == DiffArray && d.Op == DiffDelete:
		return ArrayInsert(d.Start, d.Value)
	}
	return d
}

func (d Diff) String() string {
	if d.Target == DiffText && d.Op == DiffDelete {
		return fmt.Sprintf("%s-%s[%d:%d]", d.Target, d.Op, d.Start, d.End)
	}
	return fmt.Sprintf("%s-%s@%d(%v)", d.Target, d.Op, d.Start, d.Value)
}

// apply returns the new value of the property, and the applied diff (with
// the removed value for deletions).
func (d Diff) apply(value interface{}) (interface{}, Diff, error) {
	switch d.Target {
	case DiffText:
		s, ok := value.(string)
		if !ok {
			return nil, d, fmt.Errorf("%w: text diff on a %T", ErrUnsupportedDiff, value)
		}
		return d.applyText(s)
	case DiffArray:
		return d.applyArray(value)
	}
	return nil, d, fmt.Errorf("%w: unknown target %q", ErrUnsupportedDiff, d.Target)
}

func (d Diff) applyText(s string) (interface{}, Diff, error) {
	switch d.Op {
	case DiffInsert:
		text, ok := d.Value.(string)
		if !ok {
			return nil, d, fmt.Errorf("%w: text insert of a %T", ErrUnsupportedDiff, d.Value)
		}
		result, err := textInsert(s, d.Start, text)
		if err != nil {
			return nil, d, err
		}
		d.End = d.Start
		return result, d, nil
	case DiffDelete:
		result, removed, err := textDelete(s, d.Start, d.End)
		if err != nil {
			return nil, d, err
		}
		d.Value = removed
		return result, d, nil
	}
	return nil, d, fmt.Errorf("%w: unknown operation %q", ErrUnsupportedDiff, d.Op)
}

func (d Diff) applyArray(value interface{}) (interface{}, Diff, error) {
	switch arr := value.(type) {
	case []string:
		switch d.Op {
		case DiffInsert:
			s, ok := d.Value.(string)
			if !ok {
				return nil, d, fmt.Errorf("%w: insert of a %T in a list of ids", ErrUnsupportedDiff, d.Value)
			}
			if d.Start < 0 || d.Start > len(arr) {
				return nil, d, fmt.Errorf("%w: index %d in an array of length %d", ErrInvalidPosition, d.Start, len(arr))
			}
			result := make([]string, 0, len(arr)+1)
			result = append(result, arr[:d.Start]...)
			result = append(result, s)
			result = append(result, arr[d.Start:]...)
			return result, d, nil
		case DiffDelete:
			if d.Start < 0 || d.Start >= len(arr) {
				return nil, d, fmt.Errorf("%w: index %d in an array of length %d", ErrInvalidPosition, d.Start, len(arr))
			}
			d.Value = arr[d.Start]
			result := make([]string, 0, len(arr)-1)
			result = append(result, arr[:d.Start]...)
			result = append(result, arr[d.Start+1:]...)
			return result, d, nil
		}
	case []interface{}:
		switch d.Op {
		case DiffInsert:
			if d.Start < 0 || d.Start > len(arr) {
				return nil, d, fmt.Errorf("%w: index %d in an array of length %d", ErrInvalidPosition, d.Start, len(arr))
			}
			result := make([]interface{}, 0, len(arr)+1)
			result = append(result, arr[:d.Start]...)
			result = append(result, CloneValue(d.Value))
			result = append(result, arr[d.Start:]...)
			return result, d, nil
		case DiffDelete:
			if d.Start < 0 || d.Start >= len(arr) {
				return nil, d, fmt.Errorf("%w: index %d in an array of length %d", ErrInvalidPosition, d.Start, len(arr))
			}
			d.Value = arr[d.Start]
			result := make([]interface{}, 0, len(arr)-1)
			result = append(result, arr[:d.Start]...)
			result = append(result, arr[d.Start+1:]...)
			return result, d, nil
		}
	default:
		return nil, d, fmt.Errorf("%w: array diff on a %T", ErrUnsupportedDiff, value)
	}
	return nil, d, fmt.Errorf("%w: unknown operation %q", ErrUnsupportedDiff, d.Op)
}
