package model

import "sort"

// AnnotationIndex keeps the annotations of a graph grouped by the path of
// the text property they decorate, and by type.
type AnnotationIndex struct {
	byType *PathAdapter
	byPath *PathAdapter
}

// NewAnnotationIndex returns an empty AnnotationIndex.
func NewAnnotationIndex() *AnnotationIndex {
	return &AnnotationIndex{byType: NewPathAdapter(), byPath: NewPathAdapter()}
}

// Get returns the annotations on the given path. When a start offset is
// given, only the annotations with an end offset >= start are returned, and
// when an end offset is also given, only the ones with a start offset <= end.
// It means that an annotation that only touches the range is part of the
// result.
func (idx *AnnotationIndex) Get(path Path, bounds ...int) []*Node {
	return idx.GetOfType(path, "", bounds...)
}

// GetOfType is like Get, but returns only the annotations that are instances
// of the given type. An empty type name matches all the annotations.
func (idx *AnnotationIndex) GetOfType(path Path, typeName string, bounds ...int) []*Node {
	var result []*Node
	for _, id := range idx.byPath.Keys(Path{path.key()}) {
		anno, ok := idx.byPath.Get(Path{path.key(), id}).(*Node)
		if !ok {
			continue
		}
		if typeName != "" && !anno.IsInstanceOf(typeName) {
			continue
		}
		if len(bounds) > 0 && anno.EndOffset() < bounds[0] {
			continue
		}
		if len(bounds) > 1 && anno.StartOffset() > bounds[1] {
			continue
		}
		result = append(result, anno)
	}
	sortByRange(result)
	return result
}

// ByType returns all the annotations of the given type, sorted by id.
func (idx *AnnotationIndex) ByType(typeName string) []*Node {
	var result []*Node
	for _, id := range idx.byType.Keys(Path{typeName}) {
		if anno, ok := idx.byType.Get(Path{typeName, id}).(*Node); ok {
			result = append(result, anno)
		}
	}
	return result
}

// Select is a method of the Index interface.
func (idx *AnnotationIndex) Select(node *Node) bool {
	return node.HasRange()
}

// Create is a method of the Index interface.
func (idx *AnnotationIndex) Create(anno *Node) {
	idx.byType.Set(Path{anno.Type.Name, anno.ID}, anno)
	idx.byPath.Set(Path{anno.Path().key(), anno.ID}, anno)
}

// Delete is a method of the Index interface.
func (idx *AnnotationIndex) Delete(anno *Node) {
	idx.byType.Delete(Path{anno.Type.Name, anno.ID})
	idx.byPath.Delete(Path{anno.Path().key(), anno.ID})
}

// Update is a method of the Index interface. When the path of an annotation
// changes, the annotation is moved to the bucket of its new path.
func (idx *AnnotationIndex) Update(anno *Node, path Path, newValue, oldValue interface{}) {
	if len(path) != 2 || path.Property() != PropPath {
		return
	}
	if old, ok := PathFrom(oldValue); ok {
		idx.byPath.Delete(Path{old.key(), anno.ID})
	}
	idx.byPath.Set(Path{anno.Path().key(), anno.ID}, anno)
}

// Reset is a method of the Index interface.
func (idx *AnnotationIndex) Reset(graph *Graph) {
	idx.byType.Clear()
	idx.byPath.Clear()
	for _, node := range graph.NodeList() {
		if idx.Select(node) {
			idx.Create(node)
		}
	}
}

// Clone is a method of the Index interface.
func (idx *AnnotationIndex) Clone() Index {
	return NewAnnotationIndex()
}

var _ Index = &AnnotationIndex{}

func sortByRange(annos []*Node) {
	sort.Slice(annos, func(i, j int) bool {
		a, b := annos[i], annos[j]
		if a.StartOffset() != b.StartOffset() {
			return a.StartOffset() < b.StartOffset()
		}
		if a.EndOffset() != b.EndOffset() {
			return a.EndOffset() < b.EndOffset()
		}
		return a.ID < b.ID
	})
}
