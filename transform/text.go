package transform

import (
	"fmt"

	"github.com/cozy/substance-go/model"
)

// InsertText inserts text in a text property, and moves the annotations of
// this property so that they still cover the same characters. Text inserted
// inside an annotation extends it, and text inserted at its end extends it
// only if its type is inclusive.
func InsertText(tx *Transaction, path model.Path, offset int, text string) error {
	if text == "" {
		return nil
	}
	diff := model.TextInsert(offset, text)
	if _, err := tx.Update(path, diff); err != nil {
		return err
	}
	mapping := DiffMap(diff)
	for _, anno := range tx.Annotations().Get(path) {
		start, end := anno.StartOffset(), anno.EndOffset()
		endAssoc := -1
		if anno.Type.Inclusive() || start == end {
			endAssoc = 1
		}
		if err := setRange(tx, anno, mapping.Map(start, 1), mapping.Map(end, endAssoc)); err != nil {
			return err
		}
	}
	return shiftContainerAnnotations(tx, path, func(pos int) int {
		return mapping.Map(pos, -1)
	})
}

// DeleteText removes the text between start and end in a text property.
// The annotations of this property are shrunk or moved, and the ones which
// only covered removed characters are deleted.
func DeleteText(tx *Transaction, path model.Path, start, end int) error {
	if start == end {
		return nil
	}
	diff := model.TextDelete(start, end)
	if _, err := tx.Update(path, diff); err != nil {
		return err
	}
	mapping := DiffMap(diff)
	for _, anno := range tx.Annotations().Get(path) {
		oldStart, oldEnd := anno.StartOffset(), anno.EndOffset()
		newStart, newEnd := mapping.Map(oldStart), mapping.Map(oldEnd)
		if newStart == newEnd && oldStart < oldEnd {
			if _, err := tx.Delete(anno.ID); err != nil {
				return err
			}
			continue
		}
		if err := setRange(tx, anno, newStart, newEnd); err != nil {
			return err
		}
	}
	return shiftContainerAnnotations(tx, path, func(pos int) int {
		return mapping.Map(pos)
	})
}

func setRange(tx *Transaction, anno *model.Node, start, end int) error {
	if start != anno.StartOffset() {
		if _, err := tx.Set(model.Path{anno.ID, model.PropStartOffset}, start); err != nil {
			return err
		}
	}
	if end != anno.EndOffset() {
		if _, err := tx.Set(model.Path{anno.ID, model.PropEndOffset}, end); err != nil {
			return err
		}
	}
	return nil
}

func shiftContainerAnnotations(tx *Transaction, path model.Path, mapPos func(int) int) error {
	for _, anno := range tx.ContainerAnnotations().Get(containerOf(tx, path.NodeID())) {
		if anno.StartPath().Equal(path) {
			if pos := mapPos(anno.StartOffset()); pos != anno.StartOffset() {
				if _, err := tx.Set(model.Path{anno.ID, model.PropStartOffset}, pos); err != nil {
					return err
				}
			}
		}
		if anno.EndPath().Equal(path) {
			if pos := mapPos(anno.EndOffset()); pos != anno.EndOffset() {
				if _, err := tx.Set(model.Path{anno.ID, model.PropEndOffset}, pos); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// containerOf returns the id of the first container having the node as a
// child.
func containerOf(tx *Transaction, id string) string {
	for _, node := range tx.Graph().NodeList() {
		if node.IsContainer() && node.ChildIndex(id) >= 0 {
			return node.ID
		}
	}
	return ""
}

// Annotate creates an annotation on a text property, after checking that its
// range fits in the text.
func Annotate(tx *Transaction, data model.NodeData) (*model.Node, error) {
	path, ok := model.PathFrom(data[model.PropPath])
	if !ok {
		return nil, fmt.Errorf("%w: annotation without path", model.ErrInvalidNode)
	}
	text, ok := tx.Get(path).(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a text property", model.ErrInvalidNode, path)
	}
	end, _ := model.ToInt(data[model.PropEndOffset])
	if end > model.TextLength(text) {
		return nil, fmt.Errorf("%w: annotation ends at %d after the end of %s", model.ErrInvalidPosition, end, path)
	}
	return tx.Create(data)
}

// DeleteNodeDeep deletes a node, with the annotations on its text properties
// and the container annotations anchored in it, after removing it from the
// containers it belongs to. The children of a container are deleted too.
func DeleteNodeDeep(tx *Transaction, id string) error {
	node := tx.GetNode(id)
	if node == nil {
		return nil
	}
	for name, value := range node.Props {
		if _, ok := value.(string); !ok {
			continue
		}
		for _, anno := range tx.Annotations().Get(model.Path{id, name}) {
			if _, err := tx.Delete(anno.ID); err != nil {
				return err
			}
		}
	}
	for _, parent := range tx.Graph().NodeList() {
		if !parent.IsContainer() {
			continue
		}
		if index := parent.ChildIndex(id); index >= 0 {
			if _, err := tx.Update(model.Path{parent.ID, model.PropNodes}, model.ArrayDelete(index)); err != nil {
				return err
			}
		}
	}
	if node.IsContainer() {
		for _, childID := range append([]string(nil), node.ChildIDs()...) {
			if err := DeleteNodeDeep(tx, childID); err != nil {
				return err
			}
		}
		for _, anno := range tx.ContainerAnnotations().Get(id) {
			if _, err := tx.Delete(anno.ID); err != nil {
				return err
			}
		}
	}
	for _, typ := range tx.Graph().Schema().NodeTypes() {
		if typ.Kind != model.KindContainerAnnotation {
			continue
		}
		for _, anno := range tx.ContainerAnnotations().ByType(typ.Name) {
			if anno.StartPath().NodeID() == id || anno.EndPath().NodeID() == id {
				if _, err := tx.Delete(anno.ID); err != nil {
					return err
				}
			}
		}
	}
	_, err := tx.Delete(id)
	return err
}
