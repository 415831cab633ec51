// Package transform implements the operations on a document graph, which are
// used by the editor to treat changes as first-class values, which can be
// inverted, saved, and replayed. It also implements the stage where the
// operations of a transaction are recorded before being committed.
package transform

import (
	"fmt"

	"github.com/cozy/substance-go/model"
	"github.com/google/uuid"
)

// OpType is the type of an operation.
type OpType string

// The operation types.
const (
	OpCreate OpType = "create"
	OpDelete OpType = "delete"
	OpSet    OpType = "set"
	OpUpdate OpType = "update"
)

// Operation is an atomic change of a graph. An operation carries everything
// needed to invert it: the node data for create and delete, the old value
// for set, and the removed value for the deletions of update.
type Operation interface {
	// Type returns the type of the operation.
	Type() OpType

	// Path returns the path affected by the operation. It is [id] for create
	// and delete.
	Path() model.Path

	// Apply applies the operation to the given graph.
	Apply(graph *model.Graph) error

	// Invert returns the operation undoing this one.
	Invert() Operation

	// ToJSON returns a JSON-compatible representation of the operation.
	ToJSON() map[string]interface{}

	isOperation()
}

// CreateOp creates a node.
type CreateOp struct {
	Data model.NodeData
}

// NewCreateOp is the constructor for CreateOp.
func NewCreateOp(data model.NodeData) *CreateOp {
	return &CreateOp{Data: data.Clone()}
}

// Type is a method of the Operation interface.
func (op *CreateOp) Type() OpType { return OpCreate }

// Path is a method of the Operation interface.
func (op *CreateOp) Path() model.Path { return model.Path{op.Data.ID()} }

// Apply is a method of the Operation interface.
func (op *CreateOp) Apply(graph *model.Graph) error {
	_, err := graph.Create(op.Data.Clone())
	return err
}

// Invert is a method of the Operation interface.
func (op *CreateOp) Invert() Operation {
	return NewDeleteOp(op.Data)
}

func (op *CreateOp) String() string {
	return fmt.Sprintf("create(%s)", op.Data.ID())
}

func (op *CreateOp) isOperation() {}

// DeleteOp deletes a node. It keeps the data of the deleted node, so that
// it can be created again.
type DeleteOp struct {
	Data model.NodeData
}

// NewDeleteOp is the constructor for DeleteOp.
func NewDeleteOp(data model.NodeData) *DeleteOp {
	return &DeleteOp{Data: data.Clone()}
}

// Type is a method of the Operation interface.
func (op *DeleteOp) Type() OpType { return OpDelete }

// Path is a method of the Operation interface.
func (op *DeleteOp) Path() model.Path { return model.Path{op.Data.ID()} }

// Apply is a method of the Operation interface.
func (op *DeleteOp) Apply(graph *model.Graph) error {
	if graph.Delete(op.Data.ID()) == nil {
		return fmt.Errorf("delete: %w: %s", model.ErrNodeNotFound, op.Data.ID())
	}
	return nil
}

// Invert is a method of the Operation interface.
func (op *DeleteOp) Invert() Operation {
	return NewCreateOp(op.Data)
}

func (op *DeleteOp) String() string {
	return fmt.Sprintf("delete(%s)", op.Data.ID())
}

func (op *DeleteOp) isOperation() {}

// SetOp replaces the value of a property.
type SetOp struct {
	At       model.Path
	Value    interface{}
	Original interface{}
}

// NewSetOp is the constructor for SetOp. original is the value before the
// change.
func NewSetOp(path model.Path, value, original interface{}) *SetOp {
	return &SetOp{
		At:       path.Clone(),
		Value:    model.CloneValue(value),
		Original: model.CloneValue(original),
	}
}

// Type is a method of the Operation interface.
func (op *SetOp) Type() OpType { return OpSet }

// Path is a method of the Operation interface.
func (op *SetOp) Path() model.Path { return op.At }

// Apply is a method of the Operation interface.
func (op *SetOp) Apply(graph *model.Graph) error {
	_, err := graph.Set(op.At, model.CloneValue(op.Value))
	return err
}

// Invert is a method of the Operation interface.
func (op *SetOp) Invert() Operation {
	return NewSetOp(op.At, op.Original, op.Value)
}

func (op *SetOp) String() string {
	return fmt.Sprintf("set(%s, %v)", op.At, op.Value)
}

func (op *SetOp) isOperation() {}

// UpdateOp applies a diff to a text or array property.
type UpdateOp struct {
	At   model.Path
	Diff model.Diff
}

// NewUpdateOp is the constructor for UpdateOp. For deletions, the diff must
// be the one returned by Graph.Update, so that it holds the removed value.
func NewUpdateOp(path model.Path, diff model.Diff) *UpdateOp {
	diff.Value = model.CloneValue(diff.Value)
	return &UpdateOp{At: path.Clone(), Diff: diff}
}

// Type is a method of the Operation interface.
func (op *UpdateOp) Type() OpType { return OpUpdate }

// Path is a method of the Operation interface.
func (op *UpdateOp) Path() model.Path { return op.At }

// Apply is a method of the Operation interface.
func (op *UpdateOp) Apply(graph *model.Graph) error {
	_, err := graph.Update(op.At, op.Diff)
	return err
}

// Invert is a method of the Operation interface.
func (op *UpdateOp) Invert() Operation {
	return NewUpdateOp(op.At, op.Diff.Invert())
}

func (op *UpdateOp) String() string {
	return fmt.Sprintf("update(%s, %s)", op.At, op.Diff)
}

func (op *UpdateOp) isOperation() {}

var (
	_ Operation = &CreateOp{}
	_ Operation = &DeleteOp{}
	_ Operation = &SetOp{}
	_ Operation = &UpdateOp{}
)

// InvertOps returns the operations undoing the given ones, in the order in
// which they must be applied.
func InvertOps(ops []Operation) []Operation {
	inverted := make([]Operation, len(ops))
	for i, op := range ops {
		inverted[len(ops)-1-i] = op.Invert()
	}
	return inverted
}

// NewID returns a new unique node id, prefixed by the type name.
func NewID(prefix string) string {
	if prefix == "" {
		return uuid.NewString()
	}
	return prefix + "-" + uuid.NewString()
}
