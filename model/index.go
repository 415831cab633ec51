package model

// Names of the indexes registered by NewGraph.
const (
	IndexType                 = "type"
	IndexAnnotations          = "annotations"
	IndexContainerAnnotations = "container-annotations"
)

// Index is a lookup structure derived from the nodes of a graph. The graph
// calls the hooks of an index for every node selected by it, so that the
// index stays in sync with the nodes.
type Index interface {
	// Select returns true if the index is interested in the node.
	Select(node *Node) bool
	// Create is called after a selected node has been added to the graph.
	Create(node *Node)
	// Delete is called after a selected node has been removed from the graph.
	Delete(node *Node)
	// Update is called after a property of a selected node has changed.
	Update(node *Node, path Path, newValue, oldValue interface{})
	// Reset rebuilds the index from the nodes of the graph.
	Reset(graph *Graph)
	// Clone returns an empty index of the same kind.
	Clone() Index
}

// PropertyIndex groups the nodes by the value of one of their string
// properties, like their type.
type PropertyIndex struct {
	property string
	byValue  *PathAdapter
}

// NewPropertyIndex returns an index on the given property.
func NewPropertyIndex(property string) *PropertyIndex {
	return &PropertyIndex{property: property, byValue: NewPathAdapter()}
}

func (idx *PropertyIndex) value(node *Node) string {
	s, _ := node.Get(idx.property).(string)
	return s
}

// Get returns the nodes with the given value, sorted by id.
func (idx *PropertyIndex) Get(value string) []*Node {
	var nodes []*Node
	for _, id := range idx.byValue.Keys(Path{value}) {
		if node, ok := idx.byValue.Get(Path{value, id}).(*Node); ok {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// Select is a method of the Index interface.
func (idx *PropertyIndex) Select(node *Node) bool {
	return idx.value(node) != ""
}

// Create is a method of the Index interface.
func (idx *PropertyIndex) Create(node *Node) {
	idx.byValue.Set(Path{idx.value(node), node.ID}, node)
}

// Delete is a method of the Index interface.
func (idx *PropertyIndex) Delete(node *Node) {
	idx.byValue.Delete(Path{idx.value(node), node.ID})
}

// Update is a method of the Index interface.
func (idx *PropertyIndex) Update(node *Node, path Path, newValue, oldValue interface{}) {
	if path.Property() != idx.property || len(path) != 2 {
		return
	}
	if old, ok := oldValue.(string); ok {
		idx.byValue.Delete(Path{old, node.ID})
	}
	if s, ok := newValue.(string); ok && s != "" {
		idx.byValue.Set(Path{s, node.ID}, node)
	}
}

// Reset is a method of the Index interface.
func (idx *PropertyIndex) Reset(graph *Graph) {
	idx.byValue.Clear()
	for _, node := range graph.NodeList() {
		if idx.Select(node) {
			idx.Create(node)
		}
	}
}

// Clone is a method of the Index interface.
func (idx *PropertyIndex) Clone() Index {
	return NewPropertyIndex(idx.property)
}

var _ Index = &PropertyIndex{}
