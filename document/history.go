package document

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cozy/substance-go/transform"
)

// TransformFunc makes the edits of a transaction. The returned state gives
// the values of the after state: only the keys of the before state are kept.
type TransformFunc func(tx *transform.Transaction) (transform.State, error)

// Transaction runs fn in a new transaction, and commits its operations as a
// single change of the document. If fn returns an error or panics, the
// transaction is abandoned and the document is left untouched.
//
// The after state has exactly the keys of before: for each of them, the
// value returned by fn if present, else the value from before.
//
// When fn makes no edit, nothing is committed and the returned change is nil.
// The history is left as it was: the changes that can be redone are only
// dropped by a transaction with edits.
func (d *Document) Transaction(before transform.State, info map[string]interface{}, fn TransformFunc) (*transform.DocumentChange, error) {
	tx, err := d.stage.StartTransaction(before, d.version)
	if err != nil {
		return nil, err
	}
	defer tx.Cleanup()

	result, err := fn(tx)
	if err != nil {
		d.logger.Debug("transaction abandoned", zap.Error(err))
		return nil, err
	}
	var after transform.State
	if before != nil {
		after = make(transform.State, len(before))
		for key, value := range before {
			if v, ok := result[key]; ok {
				value = v
			}
			after[key] = value
		}
	}
	return tx.Save(after, info)
}

// CommitTransaction implements transform.Committer: it replays the
// operations of the transaction on the primary graph, and records them in
// the history.
func (d *Document) CommitTransaction(tx *transform.Transaction) (*transform.DocumentChange, error) {
	if err := d.stage.BeginCommit(tx); err != nil {
		return nil, err
	}
	if tx.BaseVersion() != d.version {
		return nil, fmt.Errorf("%w: the transaction was started at version %d, the document is at version %d",
			transform.ErrIllegalState, tx.BaseVersion(), d.version)
	}
	ops := tx.Ops()
	if len(ops) == 0 {
		return nil, nil
	}
	if err := checkIntegrity(tx.Graph()); err != nil {
		return nil, err
	}
	change := transform.NewDocumentChange(ops, tx.Before(), tx.After(), tx.Info())
	if err := d.apply(change, true); err != nil {
		return nil, err
	}
	d.pushDone(change)
	d.undone = nil
	d.logger.Debug("change committed",
		zap.String("change", change.ID()),
		zap.Int("ops", change.Len()),
		zap.Int("version", d.version))
	d.notify(change, ChangeInfo{Info: change.Info()})
	return change, nil
}

// Undo reverts the last change of the history, and returns the change that
// was applied. It is a no-op if there is nothing to undo.
func (d *Document) Undo() (*transform.DocumentChange, error) {
	if len(d.done) == 0 {
		d.logger.Error("no change can be undone")
		return nil, nil
	}
	last := d.done[len(d.done)-1]
	inverted := last.Invert()
	if err := d.apply(inverted, false); err != nil {
		return nil, err
	}
	d.done = d.done[:len(d.done)-1]
	d.undone = append(d.undone, inverted)
	d.logger.Debug("change undone",
		zap.String("change", last.ID()),
		zap.Int("ops", inverted.Len()),
		zap.Int("version", d.version))
	d.notify(inverted, ChangeInfo{Replay: true, Info: inverted.Info()})
	return inverted, nil
}

// Redo applies again the last undone change, and returns the change that
// was applied. It is a no-op if there is nothing to redo.
func (d *Document) Redo() (*transform.DocumentChange, error) {
	if len(d.undone) == 0 {
		d.logger.Error("no change can be redone")
		return nil, nil
	}
	last := d.undone[len(d.undone)-1]
	forward := last.Invert()
	if err := d.apply(forward, false); err != nil {
		return nil, err
	}
	d.undone = d.undone[:len(d.undone)-1]
	d.pushDone(forward)
	d.logger.Debug("change redone",
		zap.String("change", forward.ID()),
		zap.Int("ops", forward.Len()),
		zap.Int("version", d.version))
	d.notify(forward, ChangeInfo{Replay: true, Info: forward.Info()})
	return forward, nil
}

// apply replays the operations of a change on the primary graph, and on the
// stage unless skipStage is true. If an operation fails, the previous ones
// are reverted and the primary graph is left as it was.
func (d *Document) apply(change *transform.DocumentChange, skipStage bool) error {
	if d.stage.IsTransacting() {
		return fmt.Errorf("%w: can't apply a change during a transaction", transform.ErrIllegalState)
	}
	ops := change.Ops()
	for i, op := range ops {
		if err := op.Apply(d.graph); err != nil {
			for _, inv := range transform.InvertOps(ops[:i]) {
				if rerr := inv.Apply(d.graph); rerr != nil {
					d.logger.Error("can't revert a partially applied change",
						zap.String("change", change.ID()), zap.Error(rerr))
				}
			}
			return fmt.Errorf("applying %s: %w", op, err)
		}
	}
	if !skipStage {
		for _, op := range ops {
			if err := d.stage.Apply(op); err != nil {
				d.logger.Warn("stage out of sync, resetting it", zap.Error(err))
				d.stage.Reset()
				break
			}
		}
	}
	d.version++
	return nil
}

func (d *Document) pushDone(change *transform.DocumentChange) {
	d.done = append(d.done, change)
	if d.historyLimit > 0 && len(d.done) > d.historyLimit {
		d.done = append([]*transform.DocumentChange(nil), d.done[len(d.done)-d.historyLimit:]...)
	}
}

// ApplyChange applies a change made elsewhere, like a change read from a
// change log, and records it in the history as if it was committed here.
//
// A change that would leave the document inconsistent, like a deleted node
// still listed in its container, is reverted and ErrIntegrity is returned.
func (d *Document) ApplyChange(change *transform.DocumentChange) error {
	if err := d.apply(change, false); err != nil {
		return err
	}
	if err := checkIntegrity(d.graph); err != nil {
		if rerr := d.apply(change.Invert(), false); rerr != nil {
			d.logger.Error("can't revert an inconsistent change",
				zap.String("change", change.ID()), zap.Error(rerr))
		}
		return err
	}
	d.pushDone(change)
	d.undone = nil
	d.logger.Debug("change applied",
		zap.String("change", change.ID()),
		zap.Int("ops", change.Len()),
		zap.Int("version", d.version))
	d.notify(change, ChangeInfo{Info: change.Info()})
	return nil
}
