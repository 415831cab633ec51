package model

import (
	"fmt"
	"sort"
)

// Kind is the category of a node type. Components ask for capabilities with
// the Node methods (HasRange, HasContainer...) instead of looking at the
// type name.
type Kind int

// The node kinds.
const (
	// KindNode is a plain node, like an image or a table.
	KindNode Kind = iota + 1
	// KindText is a node with a text property named "content".
	KindText
	// KindContainer is a node with an ordered list of child ids named "nodes".
	KindContainer
	// KindAnnotation decorates a character range of a text property.
	KindAnnotation
	// KindContainerAnnotation decorates a range spanning several nodes of a
	// container.
	KindContainerAnnotation
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindText:
		return "text"
	case KindContainer:
		return "container"
	case KindAnnotation:
		return "annotation"
	case KindContainerAnnotation:
		return "container-annotation"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Well-known property names.
const (
	PropID          = "id"
	PropType        = "type"
	PropContent     = "content"
	PropNodes       = "nodes"
	PropPath        = "path"
	PropStartOffset = "startOffset"
	PropEndOffset   = "endOffset"
	PropContainer   = "container"
	PropStartPath   = "startPath"
	PropEndPath     = "endPath"
)

// NodeData is the plain representation of a node: an object with an id, a
// type and the properties of the node. It is what Graph.Create takes and
// what Node.ToData returns.
type NodeData map[string]interface{}

// ID returns the id of the node, or an empty string.
func (d NodeData) ID() string {
	id, _ := d[PropID].(string)
	return id
}

// Type returns the type name of the node, or an empty string.
func (d NodeData) Type() string {
	typ, _ := d[PropType].(string)
	return typ
}

// Clone makes a deep copy of the data.
func (d NodeData) Clone() NodeData {
	if d == nil {
		return nil
	}
	return NodeData(cloneMap(d))
}

// Node is a typed record of the document graph. Nodes reference other nodes
// by id only.
//
// Do not mutate the properties of a Node directly: use the operations of the
// graph, so that indexes stay in sync.
type Node struct {
	// The unique id of the node.
	ID string
	// The type of the node, registered in a Schema.
	Type *NodeType
	// The properties of the node, by name. It does not contain id and type.
	Props map[string]interface{}
}

// Kind returns the category of the node.
func (n *Node) Kind() Kind {
	return n.Type.Kind
}

// IsText is true for nodes with a text content.
func (n *Node) IsText() bool { return n.Type.Kind == KindText }

// IsContainer is true for nodes holding an ordered list of children.
func (n *Node) IsContainer() bool { return n.Type.Kind == KindContainer }

// HasRange is true for annotations on a single text property.
func (n *Node) HasRange() bool { return n.Type.Kind == KindAnnotation }

// HasContainer is true for annotations spanning several nodes of a container.
func (n *Node) HasContainer() bool { return n.Type.Kind == KindContainerAnnotation }

// IsInstanceOf returns true if the type of the node is typeName or inherits
// from it.
func (n *Node) IsInstanceOf(typeName string) bool {
	return n.Type.IsInstanceOf(typeName)
}

// Get returns the value of a property.
func (n *Node) Get(name string) interface{} {
	switch name {
	case PropID:
		return n.ID
	case PropType:
		return n.Type.Name
	}
	return n.Props[name]
}

// GetIn returns the value at a property path (without the node id).
func (n *Node) GetIn(path Path) interface{} {
	if len(path) == 0 {
		return nil
	}
	v := n.Get(path[0])
	for _, key := range path[1:] {
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil
		}
		v = m[key]
	}
	return v
}

// Text returns the text content of a text node.
func (n *Node) Text() string {
	s, _ := n.Props[PropContent].(string)
	return s
}

// ChildIDs returns the ids of the children of a container.
func (n *Node) ChildIDs() []string {
	ids, _ := n.Props[PropNodes].([]string)
	return ids
}

// ChildIndex returns the position of a child in a container, or -1.
func (n *Node) ChildIndex(id string) int {
	for i, child := range n.ChildIDs() {
		if child == id {
			return i
		}
	}
	return -1
}

// Path returns the path of the text property decorated by an annotation.
func (n *Node) Path() Path {
	p, _ := PathFrom(n.Props[PropPath])
	return p
}

// StartOffset returns the start of the range of an annotation.
func (n *Node) StartOffset() int {
	i, _ := ToInt(n.Props[PropStartOffset])
	return i
}

// EndOffset returns the end of the range of an annotation.
func (n *Node) EndOffset() int {
	i, _ := ToInt(n.Props[PropEndOffset])
	return i
}

// ContainerID returns the container of a container annotation.
func (n *Node) ContainerID() string {
	s, _ := n.Props[PropContainer].(string)
	return s
}

// StartPath returns the path where a container annotation starts.
func (n *Node) StartPath() Path {
	p, _ := PathFrom(n.Props[PropStartPath])
	return p
}

// EndPath returns the path where a container annotation ends.
func (n *Node) EndPath() Path {
	p, _ := PathFrom(n.Props[PropEndPath])
	return p
}

// ToData returns a deep copy of the node as plain data.
func (n *Node) ToData() NodeData {
	data := NodeData(cloneMap(n.Props))
	data[PropID] = n.ID
	data[PropType] = n.Type.Name
	return data
}

// String returns a representation of the node for debugging purposes.
func (n *Node) String() string {
	switch n.Type.Kind {
	case KindText:
		return fmt.Sprintf("%s#%s(%q)", n.Type.Name, n.ID, n.Text())
	case KindContainer:
		return fmt.Sprintf("%s#%s%v", n.Type.Name, n.ID, n.ChildIDs())
	case KindAnnotation:
		return fmt.Sprintf("%s#%s(%s, %d, %d)", n.Type.Name, n.ID, n.Path(), n.StartOffset(), n.EndOffset())
	}
	return fmt.Sprintf("%s#%s", n.Type.Name, n.ID)
}

func sortNodes(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID < nodes[j].ID
	})
}

// ToInt converts a number decoded from JSON or CBOR (or an int) to an int.
func ToInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	}
	return 0, false
}

// CloneValue makes a deep copy of a property value.
func CloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return cloneMap(val)
	case NodeData:
		return val.Clone()
	case []interface{}:
		cpy := make([]interface{}, len(val))
		for i, elem := range val {
			cpy[i] = CloneValue(elem)
		}
		return cpy
	case []string:
		cpy := make([]string, len(val))
		copy(cpy, val)
		return cpy
	case Path:
		return val.Clone()
	}
	return v
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	cpy := make(map[string]interface{}, len(m))
	for k, v := range m {
		cpy[k] = CloneValue(v)
	}
	return cpy
}
