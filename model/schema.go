package model

import (
	"fmt"
	"strings"
)

// PropertyType is the type of the values a property can hold.
type PropertyType int

// The property types.
const (
	TypeAny PropertyType = iota
	TypeString
	TypeNumber
	TypeBool
	// TypeIDs is an ordered list of node ids.
	TypeIDs
	// TypePath is a Path, stored as a []string.
	TypePath
	TypeArray
	TypeObject
)

// PropertySpec describes a property of a node type.
type PropertySpec struct {
	Type PropertyType
	// The value used when the node data doesn't have this property. When nil,
	// the property is required, unless Optional is true.
	Default  interface{}
	Optional bool
}

// Factory builds a node of the given type from plain data.
type Factory func(typ *NodeType, data NodeData) (*Node, error)

// NodeSpec is used to register a node type in a Schema.
type NodeSpec struct {
	Name string
	// The category of nodes. It can be omitted when Parent is set, and the
	// kind of the parent is used.
	Kind Kind
	// The name of the type this one inherits from. It must be registered
	// before this spec.
	Parent string
	// The properties of the nodes, in addition to the ones inherited from
	// the parent type and the ones implied by the kind.
	Properties map[string]*PropertySpec
	// For annotations: when true, text typed at the end of the annotation
	// is included in it (like bold text), otherwise it is not (like a link).
	Inclusive bool
	// For containers: a content expression constraining the types of the
	// children, like "(paragraph | heading)*". Empty accepts anything.
	Content string
	// The groups this type belongs to, separated by spaces. Content
	// expressions can refer to a group by its name.
	Group string
	// The factory to build the nodes. DefaultFactory is used if nil.
	Factory Factory
}

// NodeType is the type of a node: its name, its kind and its properties.
// There is one NodeType per name in a Schema.
type NodeType struct {
	Name       string
	Kind       Kind
	Parent     *NodeType
	Spec       *NodeSpec
	Properties map[string]*PropertySpec
	Groups     []string
	// The compiled content expression of a container type, nil when the
	// children are not constrained.
	ContentExpr *ContentExpr
	Schema      *Schema
}

// IsInstanceOf returns true if the type is name or inherits from it.
func (t *NodeType) IsInstanceOf(name string) bool {
	for cur := t; cur != nil; cur = cur.Parent {
		if cur.Name == name {
			return true
		}
	}
	return false
}

// IsAnnotation returns true for both kinds of annotations.
func (t *NodeType) IsAnnotation() bool {
	return t.Kind == KindAnnotation || t.Kind == KindContainerAnnotation
}

// Inclusive tells if an annotation grows when text is inserted at its end.
func (t *NodeType) Inclusive() bool {
	return t.Spec.Inclusive
}

// Create builds a node of this type from plain data.
func (t *NodeType) Create(data NodeData) (*Node, error) {
	factory := t.Spec.Factory
	if factory == nil {
		factory = DefaultFactory
	}
	node, err := factory(t, data)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("%w: the factory of %s returned no node", ErrInvalidNode, t.Name)
	}
	return node, nil
}

// Normalize converts a value to the representation used for the given
// property: ints for numbers, []string for ids and paths, etc.
func (t *NodeType) Normalize(property string, value interface{}) (interface{}, error) {
	spec, ok := t.Properties[property]
	if !ok || value == nil {
		return CloneValue(value), nil
	}
	invalid := fmt.Errorf("%w: %s.%s can't hold %T", ErrInvalidNode, t.Name, property, value)
	switch spec.Type {
	case TypeString:
		if _, ok := value.(string); !ok {
			return nil, invalid
		}
	case TypeNumber:
		i, ok := ToInt(value)
		if !ok {
			return nil, invalid
		}
		return i, nil
	case TypeBool:
		if _, ok := value.(bool); !ok {
			return nil, invalid
		}
	case TypeIDs, TypePath:
		p, ok := PathFrom(value)
		if !ok {
			return nil, invalid
		}
		ids := make([]string, len(p))
		copy(ids, p)
		return ids, nil
	case TypeArray:
		switch v := value.(type) {
		case []interface{}:
			return CloneValue(v), nil
		case []string:
			arr := make([]interface{}, len(v))
			for i, s := range v {
				arr[i] = s
			}
			return arr, nil
		}
		return nil, invalid
	case TypeObject:
		switch v := value.(type) {
		case map[string]interface{}:
			return cloneMap(v), nil
		case NodeData:
			return cloneMap(v), nil
		}
		return nil, invalid
	}
	return CloneValue(value), nil
}

// DefaultFactory builds a node by normalizing the declared properties,
// filling the defaults, and copying the other properties as is.
func DefaultFactory(typ *NodeType, data NodeData) (*Node, error) {
	id := data.ID()
	if id == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidNode)
	}
	props := make(map[string]interface{}, len(data))
	for name, spec := range typ.Properties {
		value, ok := data[name]
		if !ok || value == nil {
			if spec.Default != nil {
				props[name] = CloneValue(spec.Default)
			} else if !spec.Optional {
				return nil, fmt.Errorf("%w: %s is missing property %q", ErrInvalidNode, id, name)
			}
			continue
		}
		normalized, err := typ.Normalize(name, value)
		if err != nil {
			return nil, err
		}
		props[name] = normalized
	}
	for name, value := range data {
		if name == PropID || name == PropType {
			continue
		}
		if _, declared := typ.Properties[name]; !declared {
			props[name] = CloneValue(value)
		}
	}
	node := &Node{ID: id, Type: typ, Props: props}
	if err := checkRange(node); err != nil {
		return nil, err
	}
	return node, nil
}

func checkRange(node *Node) error {
	switch node.Kind() {
	case KindAnnotation:
	case KindContainerAnnotation:
		if !node.StartPath().Equal(node.EndPath()) {
			return nil
		}
	default:
		return nil
	}
	start, end := node.StartOffset(), node.EndOffset()
	if start < 0 || end < start {
		return fmt.Errorf("%w: invalid range [%d, %d] for %s", ErrInvalidNode, start, end, node.ID)
	}
	return nil
}

// kindProperties are the properties implied by the kind of a node type.
var kindProperties = map[Kind]map[string]*PropertySpec{
	KindText: {
		PropContent: {Type: TypeString, Default: ""},
	},
	KindContainer: {
		PropNodes: {Type: TypeIDs, Default: []string{}},
	},
	KindAnnotation: {
		PropPath:        {Type: TypePath},
		PropStartOffset: {Type: TypeNumber},
		PropEndOffset:   {Type: TypeNumber},
	},
	KindContainerAnnotation: {
		PropContainer:   {Type: TypeString},
		PropStartPath:   {Type: TypePath},
		PropStartOffset: {Type: TypeNumber},
		PropEndPath:     {Type: TypePath},
		PropEndOffset:   {Type: TypeNumber},
	},
}

// Schema is the registry of the node types of a document. Each document has
// its own schema value, there is no global registry.
type Schema struct {
	Name    string
	Version string
	nodes   map[string]*NodeType
	order   []string
}

// NewSchema creates a schema with the given node specs.
func NewSchema(name, version string, specs ...*NodeSpec) (*Schema, error) {
	s := &Schema{Name: name, Version: version, nodes: map[string]*NodeType{}}
	if err := s.AddNodes(specs...); err != nil {
		return nil, err
	}
	return s, nil
}

// AddNodes registers node types. The specs are validated: the names must be
// unique, the parent types must be known, and the kind must be compatible
// with the kind of the parent.
func (s *Schema) AddNodes(specs ...*NodeSpec) error {
	for _, spec := range specs {
		if err := s.addNode(spec); err != nil {
			return err
		}
	}
	return s.checkContentNames()
}

func (s *Schema) addNode(spec *NodeSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("%w: node spec without name", ErrInvalidSchema)
	}
	if _, ok := s.nodes[spec.Name]; ok {
		return fmt.Errorf("%w: %s is already registered", ErrInvalidSchema, spec.Name)
	}
	typ := &NodeType{
		Name:       spec.Name,
		Kind:       spec.Kind,
		Spec:       spec,
		Properties: map[string]*PropertySpec{},
		Groups:     strings.Fields(spec.Group),
		Schema:     s,
	}
	if spec.Parent != "" {
		parent, ok := s.nodes[spec.Parent]
		if !ok {
			return fmt.Errorf("%w: unknown parent %s for %s", ErrInvalidSchema, spec.Parent, spec.Name)
		}
		typ.Parent = parent
		if typ.Kind == 0 {
			typ.Kind = parent.Kind
		} else if parent.Kind != KindNode && parent.Kind != typ.Kind {
			return fmt.Errorf("%w: %s can't be a %s and inherit from %s", ErrInvalidSchema, spec.Name, typ.Kind, parent.Name)
		}
		for name, prop := range parent.Properties {
			typ.Properties[name] = prop
		}
	}
	if _, ok := kindProperties[typ.Kind]; !ok && typ.Kind != KindNode {
		return fmt.Errorf("%w: %s has no valid kind", ErrInvalidSchema, spec.Name)
	}
	for name, prop := range kindProperties[typ.Kind] {
		typ.Properties[name] = prop
	}
	if spec.Content != "" {
		if typ.Kind != KindContainer {
			return fmt.Errorf("%w: %s has a content expression but is not a container", ErrInvalidSchema, spec.Name)
		}
		expr, err := ParseContentExpr(spec.Content)
		if err != nil {
			return err
		}
		typ.ContentExpr = expr
	} else if typ.Parent != nil {
		typ.ContentExpr = typ.Parent.ContentExpr
	}
	for name, prop := range spec.Properties {
		if name == PropID || name == PropType {
			return fmt.Errorf("%w: %s can't redefine %s", ErrInvalidSchema, spec.Name, name)
		}
		typ.Properties[name] = prop
	}
	s.nodes[spec.Name] = typ
	s.order = append(s.order, spec.Name)
	return nil
}

// NodeType returns the type registered with the given name.
func (s *Schema) NodeType(name string) (*NodeType, bool) {
	typ, ok := s.nodes[name]
	return typ, ok
}

// NodeTypes returns the registered types, in registration order.
func (s *Schema) NodeTypes() []*NodeType {
	types := make([]*NodeType, len(s.order))
	for i, name := range s.order {
		types[i] = s.nodes[name]
	}
	return types
}

// IsAnnotationType returns true if name is the name of an annotation type
// (on a property or spanning a container).
func (s *Schema) IsAnnotationType(name string) bool {
	typ, ok := s.nodes[name]
	return ok && typ.IsAnnotation()
}

// IsInstanceOf returns true if the type name is ancestor or inherits from it.
func (s *Schema) IsInstanceOf(name, ancestor string) bool {
	typ, ok := s.nodes[name]
	return ok && typ.IsInstanceOf(ancestor)
}

// CreateNode builds a node from plain data, dispatching on its type.
func (s *Schema) CreateNode(data NodeData) (*Node, error) {
	name := data.Type()
	if name == "" || data.ID() == "" {
		return nil, fmt.Errorf("%w: node data needs an id and a type", ErrInvalidNode)
	}
	typ, ok := s.nodes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	return typ.Create(data)
}
