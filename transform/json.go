package transform

import (
	"fmt"

	"github.com/cozy/substance-go/model"
)

// ToJSON is a method of the Operation interface.
func (op *CreateOp) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"type": string(OpCreate),
		"path": []string(op.Path()),
		"val":  map[string]interface{}(op.Data.Clone()),
	}
}

// ToJSON is a method of the Operation interface.
func (op *DeleteOp) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"type": string(OpDelete),
		"path": []string(op.Path()),
		"val":  map[string]interface{}(op.Data.Clone()),
	}
}

// ToJSON is a method of the Operation interface.
func (op *SetOp) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"type":     string(OpSet),
		"path":     []string(op.At),
		"val":      model.CloneValue(op.Value),
		"original": model.CloneValue(op.Original),
	}
}

// ToJSON is a method of the Operation interface.
func (op *UpdateOp) ToJSON() map[string]interface{} {
	diff := map[string]interface{}{
		"target": string(op.Diff.Target),
		"op":     string(op.Diff.Op),
		"start":  op.Diff.Start,
		"end":    op.Diff.End,
	}
	if op.Diff.Value != nil {
		diff["value"] = model.CloneValue(op.Diff.Value)
	}
	return map[string]interface{}{
		"type": string(OpUpdate),
		"path": []string(op.At),
		"diff": diff,
	}
}

// OperationFromJSON builds an operation from its JSON representation.
func OperationFromJSON(obj map[string]interface{}) (Operation, error) {
	typ, _ := obj["type"].(string)
	switch OpType(typ) {
	case OpCreate, OpDelete:
		val, ok := asMap(obj["val"])
		if !ok {
			return nil, fmt.Errorf("invalid input for %s operation: missing val", typ)
		}
		if OpType(typ) == OpCreate {
			return NewCreateOp(model.NodeData(val)), nil
		}
		return NewDeleteOp(model.NodeData(val)), nil
	case OpSet:
		path, ok := model.PathFrom(obj["path"])
		if !ok {
			return nil, fmt.Errorf("invalid input for set operation: bad path %v", obj["path"])
		}
		return NewSetOp(path, obj["val"], obj["original"]), nil
	case OpUpdate:
		path, ok := model.PathFrom(obj["path"])
		if !ok {
			return nil, fmt.Errorf("invalid input for update operation: bad path %v", obj["path"])
		}
		raw, ok := asMap(obj["diff"])
		if !ok {
			return nil, fmt.Errorf("invalid input for update operation: missing diff")
		}
		diff, err := diffFromJSON(raw)
		if err != nil {
			return nil, err
		}
		return NewUpdateOp(path, diff), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, typ)
}

func diffFromJSON(obj map[string]interface{}) (model.Diff, error) {
	target, _ := obj["target"].(string)
	op, _ := obj["op"].(string)
	diff := model.Diff{Target: model.DiffTarget(target), Op: model.DiffOp(op), Value: obj["value"]}
	var ok bool
	if diff.Start, ok = model.ToInt(obj["start"]); !ok {
		return diff, fmt.Errorf("%w: diff without start", model.ErrUnsupportedDiff)
	}
	diff.End, _ = model.ToInt(obj["end"])
	return diff, nil
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case model.NodeData:
		return m, true
	}
	return nil, false
}
