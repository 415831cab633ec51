package model

import (
	"fmt"
	"sort"
)

// Hooks are called by a graph when nodes are created or deleted, before the
// indexes are notified.
type Hooks struct {
	DidCreateNode func(node *Node)
	DidDeleteNode func(node *Node)
}

// Graph holds the nodes of a document by id, and dispatches the low-level
// mutations (create, delete, set, update) to its indexes.
type Graph struct {
	schema     *Schema
	nodes      map[string]*Node
	indexes    map[string]Index
	indexOrder []string
	hooks      Hooks
	version    int
}

// NewGraph returns an empty graph for the given schema, with an index of the
// nodes by type, an AnnotationIndex and a ContainerAnnotationIndex.
func NewGraph(schema *Schema) *Graph {
	g := &Graph{
		schema:  schema,
		nodes:   map[string]*Node{},
		indexes: map[string]Index{},
	}
	g.AddIndex(IndexType, NewPropertyIndex(PropType))
	g.AddIndex(IndexAnnotations, NewAnnotationIndex())
	g.AddIndex(IndexContainerAnnotations, NewContainerAnnotationIndex())
	return g
}

// Schema returns the schema of the graph.
func (g *Graph) Schema() *Schema {
	return g.schema
}

// SetHooks replaces the hooks of the graph.
func (g *Graph) SetHooks(hooks Hooks) {
	g.hooks = hooks
}

// AddIndex registers an index under the given name, and fills it with the
// current nodes.
func (g *Graph) AddIndex(name string, idx Index) {
	if _, ok := g.indexes[name]; !ok {
		g.indexOrder = append(g.indexOrder, name)
	}
	g.indexes[name] = idx
	idx.Reset(g)
}

// Index returns the index registered under the given name, or nil.
func (g *Graph) Index(name string) Index {
	return g.indexes[name]
}

// Types returns the index of the nodes by type.
func (g *Graph) Types() *PropertyIndex {
	idx, _ := g.indexes[IndexType].(*PropertyIndex)
	return idx
}

// Annotations returns the index of the annotations on text properties.
func (g *Graph) Annotations() *AnnotationIndex {
	idx, _ := g.indexes[IndexAnnotations].(*AnnotationIndex)
	return idx
}

// ContainerAnnotations returns the index of the container annotations.
func (g *Graph) ContainerAnnotations() *ContainerAnnotationIndex {
	idx, _ := g.indexes[IndexContainerAnnotations].(*ContainerAnnotationIndex)
	return idx
}

// Version is incremented by each mutation of the graph.
func (g *Graph) Version() int {
	return g.version
}

// Contains returns true if there is a node with this id.
func (g *Graph) Contains(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// GetNode returns the node with the given id, or nil.
func (g *Graph) GetNode(id string) *Node {
	return g.nodes[id]
}

// Get returns the node for a path of length 1, or the value of a property
// for a longer path. It returns nil if nothing is found.
func (g *Graph) Get(path Path) interface{} {
	if len(path) == 0 {
		return nil
	}
	node, ok := g.nodes[path[0]]
	if !ok {
		return nil
	}
	if len(path) == 1 {
		return node
	}
	return node.GetIn(path[1:])
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// NodeList returns the nodes, sorted by id.
func (g *Graph) NodeList() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, node := range g.nodes {
		nodes = append(nodes, node)
	}
	sortNodes(nodes)
	return nodes
}

// Create builds a node from plain data and adds it to the graph.
func (g *Graph) Create(data NodeData) (*Node, error) {
	if data.ID() == "" || data.Type() == "" {
		return nil, fmt.Errorf("%w: node data needs an id and a type", ErrInvalidNode)
	}
	if g.Contains(data.ID()) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, data.ID())
	}
	node, err := g.schema.CreateNode(data)
	if err != nil {
		return nil, err
	}
	g.nodes[node.ID] = node
	g.version++
	if g.hooks.DidCreateNode != nil {
		g.hooks.DidCreateNode(node)
	}
	for _, name := range g.indexOrder {
		if idx := g.indexes[name]; idx.Select(node) {
			idx.Create(node)
		}
	}
	return node, nil
}

// Delete removes the node with the given id from the graph, and returns it.
// Nothing happens if there is no such node, and nil is returned: it is up to
// the caller to check.
func (g *Graph) Delete(id string) *Node {
	node, ok := g.nodes[id]
	if !ok {
		return nil
	}
	delete(g.nodes, id)
	g.version++
	if g.hooks.DidDeleteNode != nil {
		g.hooks.DidDeleteNode(node)
	}
	for _, name := range g.indexOrder {
		if idx := g.indexes[name]; idx.Select(node) {
			idx.Delete(node)
		}
	}
	return node
}

// DeleteNode is like Delete, but takes the node instead of its id.
func (g *Graph) DeleteNode(node *Node) *Node {
	if node == nil {
		return nil
	}
	return g.Delete(node.ID)
}

// Set replaces the value of a property, and returns the old value.
func (g *Graph) Set(path Path, value interface{}) (interface{}, error) {
	node, err := g.nodeForPath(path)
	if err != nil {
		return nil, err
	}
	normalized := value
	if len(path) == 2 {
		normalized, err = node.Type.Normalize(path[1], value)
		if err != nil {
			return nil, err
		}
	} else {
		normalized = CloneValue(value)
	}
	old := setIn(node, path[1:], normalized)
	g.version++
	g.notifyUpdate(node, path, normalized, old)
	return old, nil
}

// Update applies a diff to a text or array property. It returns the applied
// diff, which holds the removed value for deletions.
func (g *Graph) Update(path Path, diff Diff) (Diff, error) {
	node, err := g.nodeForPath(path)
	if err != nil {
		return diff, err
	}
	old := node.GetIn(path[1:])
	if old == nil {
		return diff, fmt.Errorf("%w: no value at %s", ErrUnsupportedDiff, path)
	}
	value, applied, err := diff.apply(old)
	if err != nil {
		return diff, fmt.Errorf("%s: %w", path, err)
	}
	setIn(node, path[1:], value)
	g.version++
	g.notifyUpdate(node, path, value, old)
	return applied, nil
}

// Reset removes all the nodes, and clears the indexes.
func (g *Graph) Reset() {
	g.nodes = map[string]*Node{}
	g.version++
	for _, name := range g.indexOrder {
		g.indexes[name].Reset(g)
	}
}

// Clone returns a deep copy of the graph, with indexes of the same kinds.
// The hooks are not copied.
func (g *Graph) Clone() *Graph {
	cpy := &Graph{
		schema:  g.schema,
		nodes:   make(map[string]*Node, len(g.nodes)),
		indexes: map[string]Index{},
		version: g.version,
	}
	for id, node := range g.nodes {
		cpy.nodes[id] = &Node{ID: node.ID, Type: node.Type, Props: cloneMap(node.Props)}
	}
	for _, name := range g.indexOrder {
		cpy.AddIndex(name, g.indexes[name].Clone())
	}
	return cpy
}

func (g *Graph) nodeForPath(path Path) (*Node, error) {
	if len(path) < 2 {
		return nil, fmt.Errorf("%w: path %v has no property", ErrInvalidNode, path)
	}
	if path[1] == PropID || path[1] == PropType {
		return nil, fmt.Errorf("%w: %s can't be changed", ErrInvalidNode, path[1])
	}
	node, ok := g.nodes[path[0]]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, path[0])
	}
	return node, nil
}

func (g *Graph) notifyUpdate(node *Node, path Path, value, old interface{}) {
	for _, name := range g.indexOrder {
		if idx := g.indexes[name]; idx.Select(node) {
			idx.Update(node, path, value, old)
		}
	}
}

// setIn stores a value at a property path of the node, creating the nested
// maps when needed, and returns the previous value.
func setIn(node *Node, path Path, value interface{}) interface{} {
	if len(path) == 1 {
		old := node.Props[path[0]]
		if value == nil {
			delete(node.Props, path[0])
		} else {
			node.Props[path[0]] = value
		}
		return old
	}
	m, ok := node.Props[path[0]].(map[string]interface{})
	if !ok {
		m = map[string]interface{}{}
		node.Props[path[0]] = m
	}
	for _, key := range path[1 : len(path)-1] {
		next, ok := m[key].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			m[key] = next
		}
		m = next
	}
	last := path[len(path)-1]
	old := m[last]
	if value == nil {
		delete(m, last)
	} else {
		m[last] = value
	}
	return old
}

// SortedIDs returns the ids of a set, sorted.
func SortedIDs(set map[string]bool) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
