package model

import "sort"

// A Fragment is a run of text of a property covered by the same set of
// annotations. Exporters walk the fragments of a text to render its marks.
type Fragment struct {
	Start int
	End   int
	Text  string
	// The annotations covering the fragment, the ones with the widest range
	// first.
	Annotations []*Node
}

// Fragments splits a text at the boundaries of the given annotations.
// Collapsed annotations are ignored.
func Fragments(text string, annos []*Node) []Fragment {
	length := TextLength(text)
	bounds := map[int]bool{0: true, length: true}
	var ranged []*Node
	for _, anno := range annos {
		start, end := clamp(anno.StartOffset(), length), clamp(anno.EndOffset(), length)
		if start >= end {
			continue
		}
		bounds[start] = true
		bounds[end] = true
		ranged = append(ranged, anno)
	}
	sort.SliceStable(ranged, func(i, j int) bool {
		a, b := ranged[i], ranged[j]
		la, lb := a.EndOffset()-a.StartOffset(), b.EndOffset()-b.StartOffset()
		if la != lb {
			return la > lb
		}
		return a.Type.Name < b.Type.Name
	})
	offsets := make([]int, 0, len(bounds))
	for offset := range bounds {
		offsets = append(offsets, offset)
	}
	sort.Ints(offsets)

	var fragments []Fragment
	for i := 0; i+1 < len(offsets); i++ {
		start, end := offsets[i], offsets[i+1]
		slice, err := TextSlice(text, start, end)
		if err != nil {
			continue
		}
		frag := Fragment{Start: start, End: end, Text: slice}
		for _, anno := range ranged {
			if anno.StartOffset() <= start && anno.EndOffset() >= end {
				frag.Annotations = append(frag.Annotations, anno)
			}
		}
		fragments = append(fragments, frag)
	}
	return fragments
}

// Has returns true if an annotation of the given type covers the fragment.
func (f Fragment) Has(typeName string) bool {
	return f.Find(typeName) != nil
}

// Find returns the first annotation of the given type covering the fragment.
func (f Fragment) Find(typeName string) *Node {
	for _, anno := range f.Annotations {
		if anno.IsInstanceOf(typeName) {
			return anno
		}
	}
	return nil
}

func clamp(offset, length int) int {
	if offset < 0 {
		return 0
	}
	if offset > length {
		return length
	}
	return offset
}
