package model

// ContainerAnnotationIndex keeps the annotations spanning several nodes of a
// container grouped by container and by type.
type ContainerAnnotationIndex struct {
	byType      *PathAdapter
	byContainer *PathAdapter
}

// NewContainerAnnotationIndex returns an empty ContainerAnnotationIndex.
func NewContainerAnnotationIndex() *ContainerAnnotationIndex {
	return &ContainerAnnotationIndex{byType: NewPathAdapter(), byContainer: NewPathAdapter()}
}

// Get returns the container annotations of a container, sorted by id. When
// types are given, only the instances of these types are returned.
func (idx *ContainerAnnotationIndex) Get(containerID string, types ...string) []*Node {
	var result []*Node
	for _, id := range idx.byContainer.Keys(Path{containerID}) {
		anno, ok := idx.byContainer.Get(Path{containerID, id}).(*Node)
		if !ok || !isInstanceOfAny(anno, types) {
			continue
		}
		result = append(result, anno)
	}
	return result
}

// ByType returns all the container annotations of the given type.
func (idx *ContainerAnnotationIndex) ByType(typeName string) []*Node {
	var result []*Node
	for _, id := range idx.byType.Keys(Path{typeName}) {
		if anno, ok := idx.byType.Get(Path{typeName, id}).(*Node); ok {
			result = append(result, anno)
		}
	}
	return result
}

// Select is a method of the Index interface.
func (idx *ContainerAnnotationIndex) Select(node *Node) bool {
	return node.HasContainer()
}

// Create is a method of the Index interface.
func (idx *ContainerAnnotationIndex) Create(anno *Node) {
	idx.byType.Set(Path{anno.Type.Name, anno.ID}, anno)
	idx.byContainer.Set(Path{anno.ContainerID(), anno.ID}, anno)
}

// Delete is a method of the Index interface.
func (idx *ContainerAnnotationIndex) Delete(anno *Node) {
	idx.byType.Delete(Path{anno.Type.Name, anno.ID})
	idx.byContainer.Delete(Path{anno.ContainerID(), anno.ID})
}

// Update is a method of the Index interface.
func (idx *ContainerAnnotationIndex) Update(anno *Node, path Path, newValue, oldValue interface{}) {
	if len(path) != 2 || path.Property() != PropContainer {
		return
	}
	if old, ok := oldValue.(string); ok {
		idx.byContainer.Delete(Path{old, anno.ID})
	}
	idx.byContainer.Set(Path{anno.ContainerID(), anno.ID}, anno)
}

// Reset is a method of the Index interface.
func (idx *ContainerAnnotationIndex) Reset(graph *Graph) {
	idx.byType.Clear()
	idx.byContainer.Clear()
	for _, node := range graph.NodeList() {
		if idx.Select(node) {
			idx.Create(node)
		}
	}
}

// Clone is a method of the Index interface.
func (idx *ContainerAnnotationIndex) Clone() Index {
	return NewContainerAnnotationIndex()
}

var _ Index = &ContainerAnnotationIndex{}

func isInstanceOfAny(node *Node, types []string) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if node.IsInstanceOf(t) {
			return true
		}
	}
	return false
}
