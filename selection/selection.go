// Package selection defines the ranges of a document that an editor can
// address: a range in a text property, a range spanning several nodes of a
// container, or a rectangle of table cells.
package selection

import (
	"fmt"

	"github.com/cozy/substance-go/model"
)

// The types of selections.
const (
	TypeNull      = "null"
	TypeProperty  = "property"
	TypeContainer = "container"
	TypeTable     = "table"
)

// Selection is implemented by the different kinds of selections.
type Selection interface {
	Type() string
	IsNull() bool
	IsCollapsed() bool
	// Descriptor returns the plain form of the selection, as stored in the
	// editor state of a change.
	Descriptor() Descriptor
	String() string
}

// Null is the empty selection.
var Null Selection = NullSelection{}

// NullSelection is a selection that addresses nothing.
type NullSelection struct{}

func (NullSelection) Type() string           { return TypeNull }
func (NullSelection) IsNull() bool           { return true }
func (NullSelection) IsCollapsed() bool      { return true }
func (NullSelection) Descriptor() Descriptor { return Descriptor{Type: TypeNull} }
func (NullSelection) String() string         { return "null" }

// PropertySelection is a range of characters in a text property.
type PropertySelection struct {
	Path        model.Path `validate:"min=2,dive,required"`
	StartOffset int        `validate:"min=0"`
	EndOffset   int        `validate:"gtefield=StartOffset"`
	Reverse     bool
	SurfaceID   string
}

func (s *PropertySelection) Type() string      { return TypeProperty }
func (s *PropertySelection) IsNull() bool      { return false }
func (s *PropertySelection) IsCollapsed() bool { return s.StartOffset == s.EndOffset }

// Descriptor implements Selection.
func (s *PropertySelection) Descriptor() Descriptor {
	end := s.EndOffset
	return Descriptor{
		Type:        TypeProperty,
		Path:        s.Path.Clone(),
		StartOffset: s.StartOffset,
		EndOffset:   &end,
		Reverse:     s.Reverse,
		SurfaceID:   s.SurfaceID,
	}
}

func (s *PropertySelection) String() string {
	return fmt.Sprintf("PropertySelection(%s, %d, %d)", s.Path, s.StartOffset, s.EndOffset)
}

// ContainerSelection is a range going from a position in a text property to
// a position in another one, both nodes being children of the same
// container.
type ContainerSelection struct {
	ContainerID string     `validate:"required"`
	StartPath   model.Path `validate:"min=2,dive,required"`
	StartOffset int        `validate:"min=0"`
	EndPath     model.Path `validate:"min=2,dive,required"`
	EndOffset   int        `validate:"min=0"`
	Reverse     bool
	SurfaceID   string
}

func (s *ContainerSelection) Type() string { return TypeContainer }
func (s *ContainerSelection) IsNull() bool { return false }

func (s *ContainerSelection) IsCollapsed() bool {
	return s.StartPath.Equal(s.EndPath) && s.StartOffset == s.EndOffset
}

// Descriptor implements Selection.
func (s *ContainerSelection) Descriptor() Descriptor {
	end := s.EndOffset
	return Descriptor{
		Type:        TypeContainer,
		ContainerID: s.ContainerID,
		StartPath:   s.StartPath.Clone(),
		StartOffset: s.StartOffset,
		EndPath:     s.EndPath.Clone(),
		EndOffset:   &end,
		Reverse:     s.Reverse,
		SurfaceID:   s.SurfaceID,
	}
}

func (s *ContainerSelection) String() string {
	return fmt.Sprintf("ContainerSelection(%s, %s:%d, %s:%d)",
		s.ContainerID, s.StartPath, s.StartOffset, s.EndPath, s.EndOffset)
}

// TableSelection is a rectangle of cells in a table.
type TableSelection struct {
	TableID   string `validate:"required"`
	StartRow  int    `validate:"min=0"`
	StartCol  int    `validate:"min=0"`
	EndRow    int    `validate:"min=0"`
	EndCol    int    `validate:"min=0"`
	SurfaceID string
}

func (s *TableSelection) Type() string { return TypeTable }
func (s *TableSelection) IsNull() bool { return false }

func (s *TableSelection) IsCollapsed() bool {
	return s.StartRow == s.EndRow && s.StartCol == s.EndCol
}

// Descriptor implements Selection.
func (s *TableSelection) Descriptor() Descriptor {
	return Descriptor{
		Type:      TypeTable,
		TableID:   s.TableID,
		StartRow:  s.StartRow,
		StartCol:  s.StartCol,
		EndRow:    s.EndRow,
		EndCol:    s.EndCol,
		SurfaceID: s.SurfaceID,
	}
}

func (s *TableSelection) String() string {
	return fmt.Sprintf("TableSelection(%s, %d:%d, %d:%d)",
		s.TableID, s.StartRow, s.StartCol, s.EndRow, s.EndCol)
}

var (
	_ Selection = NullSelection{}
	_ Selection = (*PropertySelection)(nil)
	_ Selection = (*ContainerSelection)(nil)
	_ Selection = (*TableSelection)(nil)
)
