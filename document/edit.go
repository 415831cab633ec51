package document

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cozy/substance-go/model"
	"github.com/cozy/substance-go/transform"
)

// The direct edits apply an operation to the primary graph and to the stage,
// and notify it to the listeners, without recording it in the history. An
// edit leaving the document inconsistent is reverted with ErrIntegrity.
// During a transaction, they are made on the transaction instead.

func (d *Document) currentTransaction() *transform.Transaction {
	if d.stage.IsTransacting() {
		return d.stage.Current()
	}
	return nil
}

// Create creates a node. When the data has no id, one is generated from the
// type.
func (d *Document) Create(data model.NodeData) (*model.Node, error) {
	if tx := d.currentTransaction(); tx != nil {
		return tx.Create(data)
	}
	data = data.Clone()
	if data.ID() == "" && data.Type() != "" {
		data[model.PropID] = transform.NewID(data.Type())
	}
	node, err := d.graph.Create(data)
	if err != nil {
		return nil, err
	}
	if err := d.directChange(transform.NewCreateOp(node.ToData())); err != nil {
		return nil, err
	}
	return node, nil
}

// Delete deletes a node and returns it, or returns nil if there is no node
// with this id.
func (d *Document) Delete(id string) (*model.Node, error) {
	if tx := d.currentTransaction(); tx != nil {
		return tx.Delete(id)
	}
	node := d.graph.Delete(id)
	if node == nil {
		return nil, nil
	}
	if err := d.directChange(transform.NewDeleteOp(node.ToData())); err != nil {
		return nil, err
	}
	return node, nil
}

// Set replaces the value of a property and returns the old value.
func (d *Document) Set(path model.Path, value interface{}) (interface{}, error) {
	if tx := d.currentTransaction(); tx != nil {
		return tx.Set(path, value)
	}
	old, err := d.graph.Set(path, value)
	if err != nil {
		return nil, err
	}
	if err := d.directChange(transform.NewSetOp(path, d.graph.Get(path), old)); err != nil {
		return nil, err
	}
	return old, nil
}

// Update applies a diff to a text or array property, and returns the applied
// diff.
func (d *Document) Update(path model.Path, diff model.Diff) (model.Diff, error) {
	if tx := d.currentTransaction(); tx != nil {
		return tx.Update(path, diff)
	}
	applied, err := d.graph.Update(path, diff)
	if err != nil {
		return diff, err
	}
	if err := d.directChange(transform.NewUpdateOp(path, applied)); err != nil {
		return diff, err
	}
	return applied, nil
}

// directChange completes an operation already applied to the primary graph.
func (d *Document) directChange(op transform.Operation) error {
	if err := checkIntegrity(d.graph); err != nil {
		if rerr := op.Invert().Apply(d.graph); rerr != nil {
			d.logger.Error("can't revert an inconsistent edit", zap.String("op", fmt.Sprint(op)), zap.Error(rerr))
		}
		return err
	}
	if err := d.stage.Apply(op); err != nil {
		d.logger.Warn("stage out of sync, resetting it", zap.Error(err))
		d.stage.Reset()
	}
	d.version++
	change := transform.NewDocumentChange([]transform.Operation{op}, nil, nil, nil)
	d.notify(change, ChangeInfo{})
	return nil
}
