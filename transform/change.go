package transform

import (
	"fmt"
	"strings"
	"time"

	"github.com/cozy/substance-go/model"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// State is an opaque snapshot of the editor state (selection, surface id...)
// saved with a change. The document never looks inside.
type State map[string]interface{}

// Clone returns a shallow copy of the state.
func (s State) Clone() State {
	if s == nil {
		return nil
	}
	cpy := make(State, len(s))
	for k, v := range s {
		cpy[k] = v
	}
	return cpy
}

// DocumentChange is the record of a committed batch of operations, with the
// editor state before and after it. A change is never modified after its
// creation.
type DocumentChange struct {
	id        string
	ops       []Operation
	before    State
	after     State
	info      map[string]interface{}
	timestamp time.Time

	// updated maps [node id, property path] to the indexes of the operations
	// that touched this path.
	updated *model.PathAdapter
	created map[string]bool
	deleted map[string]bool
}

// NewDocumentChange creates a change for the given operations.
func NewDocumentChange(ops []Operation, before, after State, info map[string]interface{}) *DocumentChange {
	c := &DocumentChange{
		id:        uuid.NewString(),
		ops:       append([]Operation(nil), ops...),
		before:    before.Clone(),
		after:     after.Clone(),
		info:      State(info).Clone(),
		timestamp: time.Now(),
	}
	c.extractInformation()
	return c
}

func (c *DocumentChange) extractInformation() {
	c.updated = model.NewPathAdapter()
	c.created = map[string]bool{}
	c.deleted = map[string]bool{}
	for i, op := range c.ops {
		id := op.Path().NodeID()
		switch op.Type() {
		case OpCreate:
			c.created[id] = true
			delete(c.deleted, id)
		case OpDelete:
			if c.created[id] {
				delete(c.created, id)
			} else {
				c.deleted[id] = true
			}
			// A deleted node can't be affected by the previous operations.
			c.updated.Delete(model.Path{id})
		case OpSet, OpUpdate:
			key := updatedKey(op.Path())
			indexes, _ := c.updated.Get(key).([]int)
			c.updated.Set(key, append(indexes, i))
		}
	}
}

// keySeparator joins the property keys of a path. It can't appear in a key.
const keySeparator = "\x1f"

func updatedKey(path model.Path) model.Path {
	return model.Path{path.NodeID(), strings.Join(path[1:], keySeparator)}
}

// ID returns the unique id of the change.
func (c *DocumentChange) ID() string { return c.id }

// Ops returns the operations of the change.
func (c *DocumentChange) Ops() []Operation {
	return append([]Operation(nil), c.ops...)
}

// Len returns the number of operations.
func (c *DocumentChange) Len() int { return len(c.ops) }

// IsEmpty returns true if the change has no operations.
func (c *DocumentChange) IsEmpty() bool { return len(c.ops) == 0 }

// Before returns the editor state before the change.
func (c *DocumentChange) Before() State { return c.before.Clone() }

// After returns the editor state after the change.
func (c *DocumentChange) After() State { return c.after.Clone() }

// Info returns the data given by the editor when the change was saved.
func (c *DocumentChange) Info() map[string]interface{} { return State(c.info).Clone() }

// Timestamp returns the creation time of the change.
func (c *DocumentChange) Timestamp() time.Time { return c.timestamp }

// IsAffected returns true if an operation of the change has set or updated
// the given path. For a path with only a node id, it returns true if any
// property of this node was touched. Nodes deleted by the change are never
// affected.
func (c *DocumentChange) IsAffected(path model.Path) bool {
	switch len(path) {
	case 0:
		return false
	case 1:
		return len(c.updated.Keys(path)) > 0
	}
	return c.updated.Get(updatedKey(path)) != nil
}

// OpsAt returns the set and update operations on the given path.
func (c *DocumentChange) OpsAt(path model.Path) []Operation {
	indexes, _ := c.updated.Get(updatedKey(path)).([]int)
	ops := make([]Operation, len(indexes))
	for i, index := range indexes {
		ops[i] = c.ops[index]
	}
	return ops
}

// UpdatedPaths returns the paths touched by set and update operations, for
// the nodes that still exist after the change.
func (c *DocumentChange) UpdatedPaths() []model.Path {
	var paths []model.Path
	for _, id := range c.updated.Keys(nil) {
		for _, prop := range c.updated.Keys(model.Path{id}) {
			paths = append(paths, append(model.Path{id}, strings.Split(prop, keySeparator)...))
		}
	}
	return paths
}

// IsCreated returns true if the node was created by the change.
func (c *DocumentChange) IsCreated(id string) bool { return c.created[id] }

// IsDeleted returns true if the node was deleted by the change.
func (c *DocumentChange) IsDeleted(id string) bool { return c.deleted[id] }

// Created returns the sorted ids of the nodes created by the change.
func (c *DocumentChange) Created() []string { return model.SortedIDs(c.created) }

// Deleted returns the sorted ids of the nodes deleted by the change.
func (c *DocumentChange) Deleted() []string { return model.SortedIDs(c.deleted) }

// Invert returns the change undoing this one: the inverted operations in
// reverse order, with the before and after states swapped.
func (c *DocumentChange) Invert() *DocumentChange {
	return NewDocumentChange(InvertOps(c.ops), c.after, c.before, c.info)
}

func (c *DocumentChange) String() string {
	parts := make([]string, len(c.ops))
	for i, op := range c.ops {
		parts[i] = fmt.Sprint(op)
	}
	return fmt.Sprintf("change(%s)[%s]", c.id, strings.Join(parts, ", "))
}

// ToJSON returns a JSON-compatible representation of the change.
func (c *DocumentChange) ToJSON() map[string]interface{} {
	ops := make([]interface{}, len(c.ops))
	for i, op := range c.ops {
		ops[i] = op.ToJSON()
	}
	return map[string]interface{}{
		"id":        c.id,
		"ops":       ops,
		"before":    map[string]interface{}(c.before),
		"after":     map[string]interface{}(c.after),
		"info":      c.info,
		"timestamp": c.timestamp.UnixMilli(),
	}
}

// ChangeFromJSON builds a change from its JSON representation.
func ChangeFromJSON(obj map[string]interface{}) (*DocumentChange, error) {
	rawOps, ok := obj["ops"].([]interface{})
	if !ok && obj["ops"] != nil {
		return nil, fmt.Errorf("invalid input for DocumentChange: ops is a %T", obj["ops"])
	}
	ops := make([]Operation, 0, len(rawOps))
	for _, raw := range rawOps {
		m, ok := asMap(raw)
		if !ok {
			return nil, fmt.Errorf("invalid input for DocumentChange: op is a %T", raw)
		}
		op, err := OperationFromJSON(m)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	before, _ := asMap(obj["before"])
	after, _ := asMap(obj["after"])
	info, _ := asMap(obj["info"])
	c := NewDocumentChange(ops, before, after, info)
	if id, ok := obj["id"].(string); ok && id != "" {
		c.id = id
	}
	if ms, ok := model.ToInt(obj["timestamp"]); ok {
		c.timestamp = time.UnixMilli(int64(ms))
	}
	return c, nil
}

// MarshalJSON implements the json.Marshaler interface.
func (c *DocumentChange) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.ToJSON())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (c *DocumentChange) UnmarshalJSON(data []byte) error {
	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	decoded, err := ChangeFromJSON(obj)
	if err != nil {
		return err
	}
	*c = *decoded
	return nil
}
