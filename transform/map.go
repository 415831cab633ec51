package transform

import (
	"fmt"

	"github.com/cozy/substance-go/model"
)

// MapResult is a position mapped through a StepMap, with extra information.
type MapResult struct {
	// The mapped version of the position.
	Pos int
	// Tells whether the characters around the position were removed.
	Deleted bool
}

// StepMap describes the insertions and deletions made in a text, and maps
// the offsets in the text before the change to offsets in the text after
// it. The annotations use it to follow the text they cover.
type StepMap struct {
	// Groups of three numbers: [start, oldSize, newSize].
	Ranges   []int
	Inverted bool
}

// NewStepMap creates a position map from [start, oldSize, newSize] groups.
func NewStepMap(ranges []int, inverted ...bool) *StepMap {
	inv := false
	if len(inverted) > 0 {
		inv = inverted[0]
	}
	return &StepMap{Ranges: ranges, Inverted: inv}
}

// DiffMap returns the map of a text diff. Array diffs and empty diffs give
// EmptyStepMap.
func DiffMap(diff model.Diff) *StepMap {
	if diff.Target != model.DiffText {
		return EmptyStepMap
	}
	switch {
	case diff.IsInsert():
		text, _ := diff.Value.(string)
		if size := model.TextLength(text); size > 0 {
			return NewStepMap([]int{diff.Start, 0, size})
		}
	case diff.IsDelete():
		if diff.End > diff.Start {
			return NewStepMap([]int{diff.Start, diff.End - diff.Start, 0})
		}
	}
	return EmptyStepMap
}

// Map maps a position. assoc (-1 or 1, defaults to 1) tells on which side
// the position sticks when text is inserted at it: with -1 it stays before
// the inserted text, with 1 it moves after it.
func (sm *StepMap) Map(pos int, assoc ...int) int {
	return sm.MapResult(pos, assoc...).Pos
}

// MapResult maps a position, and tells if it was deleted. When text on only
// one side is removed, the position is deleted only if assoc points toward
// the removed text.
func (sm *StepMap) MapResult(pos int, assoc ...int) MapResult {
	a := 1
	if len(assoc) > 0 {
		a = assoc[0]
	}
	diff := 0
	oldIndex, newIndex := 1, 2
	if sm.Inverted {
		oldIndex, newIndex = 2, 1
	}
	for i := 0; i+2 < len(sm.Ranges); i += 3 {
		start := sm.Ranges[i]
		if sm.Inverted {
			start -= diff
		}
		if start > pos {
			break
		}
		oldSize := sm.Ranges[i+oldIndex]
		newSize := sm.Ranges[i+newIndex]
		end := start + oldSize
		if pos <= end {
			var side int
			switch {
			case oldSize == 0:
				side = a
			case pos == start:
				side = -1
			case pos == end:
				side = 1
			default:
				side = a
			}
			result := start + diff
			if side >= 0 {
				result += newSize
			}
			deleted := pos != end
			if a < 0 {
				deleted = pos != start
			}
			return MapResult{Pos: result, Deleted: deleted}
		}
		diff += newSize - oldSize
	}
	return MapResult{Pos: pos + diff}
}

// Invert returns a map from the positions after the change to the positions
// before it.
func (sm *StepMap) Invert() *StepMap {
	return NewStepMap(sm.Ranges, !sm.Inverted)
}

func (sm *StepMap) String() string {
	prefix := ""
	if sm.Inverted {
		prefix = "-"
	}
	return fmt.Sprintf("%s%v", prefix, sm.Ranges)
}

// EmptyStepMap maps every position to itself.
var EmptyStepMap = NewStepMap(nil)
