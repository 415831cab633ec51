package document

import (
	"fmt"

	"github.com/cozy/substance-go/model"
	"github.com/cozy/substance-go/selection"
)

// CreateSelection builds a selection from its descriptor, and checks that it
// addresses existing nodes of the document.
func (d *Document) CreateSelection(desc selection.Descriptor) (selection.Selection, error) {
	sel, err := selection.FromDescriptor(desc)
	if err != nil {
		return nil, err
	}
	switch s := sel.(type) {
	case *selection.PropertySelection:
		if err := d.checkTextPosition(s.Path, s.EndOffset); err != nil {
			return nil, err
		}
	case *selection.ContainerSelection:
		container := d.graph.GetNode(s.ContainerID)
		if container == nil || !container.IsContainer() {
			return nil, fmt.Errorf("%w: %s is not a container", selection.ErrInvalidSelection, s.ContainerID)
		}
		if err := d.checkTextPosition(s.StartPath, s.StartOffset); err != nil {
			return nil, err
		}
		if err := d.checkTextPosition(s.EndPath, s.EndOffset); err != nil {
			return nil, err
		}
	case *selection.TableSelection:
		if !d.graph.Contains(s.TableID) {
			return nil, fmt.Errorf("%w: no table %s", selection.ErrInvalidSelection, s.TableID)
		}
	}
	return sel, nil
}

func (d *Document) checkTextPosition(path model.Path, offset int) error {
	text, ok := d.graph.Get(path).(string)
	if !ok {
		return fmt.Errorf("%w: %s is not a text property", selection.ErrInvalidSelection, path)
	}
	if offset > model.TextLength(text) {
		return fmt.Errorf("%w: offset %d is after the end of %s", selection.ErrInvalidSelection, offset, path)
	}
	return nil
}

// GetAnnotationsForSelection returns the annotations overlapping a property
// selection, optionally restricted to some types. It returns nothing for the
// other kinds of selections.
func (d *Document) GetAnnotationsForSelection(sel selection.Selection, types ...string) []*model.Node {
	s, ok := sel.(*selection.PropertySelection)
	if !ok {
		return nil
	}
	var result []*model.Node
	for _, anno := range d.graph.Annotations().Get(s.Path, s.StartOffset, s.EndOffset) {
		if len(types) == 0 || instanceOfAny(anno, types) {
			result = append(result, anno)
		}
	}
	return result
}

// GetContainerAnnotationsForSelection returns the container annotations of
// the given container that overlap the selection. It returns nothing when no
// container is given.
func (d *Document) GetContainerAnnotationsForSelection(sel selection.Selection, containerID string, types ...string) []*model.Node {
	if containerID == "" {
		return nil
	}
	container := d.graph.GetNode(containerID)
	if container == nil || !container.IsContainer() {
		return nil
	}
	var start, end coordinate
	switch s := sel.(type) {
	case *selection.PropertySelection:
		start = coordinate{container.ChildIndex(s.Path.NodeID()), s.StartOffset}
		end = coordinate{start.index, s.EndOffset}
	case *selection.ContainerSelection:
		start = coordinate{container.ChildIndex(s.StartPath.NodeID()), s.StartOffset}
		end = coordinate{container.ChildIndex(s.EndPath.NodeID()), s.EndOffset}
	default:
		return nil
	}
	if start.index < 0 || end.index < 0 {
		return nil
	}
	var result []*model.Node
	for _, anno := range d.graph.ContainerAnnotations().Get(containerID, types...) {
		annoStart := coordinate{container.ChildIndex(anno.StartPath().NodeID()), anno.StartOffset()}
		annoEnd := coordinate{container.ChildIndex(anno.EndPath().NodeID()), anno.EndOffset()}
		if annoStart.index < 0 || annoEnd.index < 0 {
			continue
		}
		if annoEnd.compare(start) >= 0 && annoStart.compare(end) <= 0 {
			result = append(result, anno)
		}
	}
	return result
}

// coordinate is a position in a container: the index of a child and an
// offset in its text.
type coordinate struct {
	index  int
	offset int
}

func (c coordinate) compare(other coordinate) int {
	switch {
	case c.index != other.index:
		return c.index - other.index
	case c.offset != other.offset:
		return c.offset - other.offset
	}
	return 0
}

func instanceOfAny(node *model.Node, types []string) bool {
	for _, typ := range types {
		if node.IsInstanceOf(typ) {
			return true
		}
	}
	return false
}
