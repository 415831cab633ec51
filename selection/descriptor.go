package selection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cozy/substance-go/model"
)

var validate = validator.New()

// Descriptor is the plain form of a selection. Only the fields of its type
// are read. When EndOffset is missing, the selection is collapsed at
// StartOffset.
type Descriptor struct {
	Type        string   `json:"type"`
	Path        []string `json:"path,omitempty"`
	StartOffset int      `json:"startOffset,omitempty"`
	EndOffset   *int     `json:"endOffset,omitempty"`
	Reverse     bool     `json:"reverse,omitempty"`
	SurfaceID   string   `json:"surfaceId,omitempty"`
	ContainerID string   `json:"containerId,omitempty"`
	StartPath   []string `json:"startPath,omitempty"`
	EndPath     []string `json:"endPath,omitempty"`
	TableID     string   `json:"tableId,omitempty"`
	StartRow    int      `json:"startRow,omitempty"`
	StartCol    int      `json:"startCol,omitempty"`
	EndRow      int      `json:"endRow,omitempty"`
	EndCol      int      `json:"endCol,omitempty"`
}

func (d Descriptor) endOffset() int {
	if d.EndOffset == nil {
		return d.StartOffset
	}
	return *d.EndOffset
}

// FromDescriptor builds a selection from its plain form. A descriptor with
// an empty type gives the null selection.
func FromDescriptor(d Descriptor) (Selection, error) {
	var sel Selection
	switch d.Type {
	case "", TypeNull:
		return Null, nil
	case TypeProperty:
		sel = &PropertySelection{
			Path:        model.Path(d.Path).Clone(),
			StartOffset: d.StartOffset,
			EndOffset:   d.endOffset(),
			Reverse:     d.Reverse,
			SurfaceID:   d.SurfaceID,
		}
	case TypeContainer:
		endPath := d.EndPath
		if endPath == nil {
			endPath = d.StartPath
		}
		sel = &ContainerSelection{
			ContainerID: d.ContainerID,
			StartPath:   model.Path(d.StartPath).Clone(),
			StartOffset: d.StartOffset,
			EndPath:     model.Path(endPath).Clone(),
			EndOffset:   d.endOffset(),
			Reverse:     d.Reverse,
			SurfaceID:   d.SurfaceID,
		}
	case TypeTable:
		sel = &TableSelection{
			TableID:   d.TableID,
			StartRow:  d.StartRow,
			StartCol:  d.StartCol,
			EndRow:    d.EndRow,
			EndCol:    d.EndCol,
			SurfaceID: d.SurfaceID,
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSelectionType, d.Type)
	}
	if err := validate.Struct(sel); err != nil {
		return nil, formatValidationError(err)
	}
	return sel, nil
}

// FromState reads a selection stored in an editor state under the
// "selection" key. It accepts a Selection, a Descriptor, or the map decoded
// from JSON. It returns nil when there is no selection in the state.
func FromState(state map[string]interface{}) (Selection, error) {
	switch v := state["selection"].(type) {
	case nil:
		return nil, nil
	case Selection:
		return v, nil
	case Descriptor:
		return FromDescriptor(v)
	case map[string]interface{}:
		return FromDescriptor(descriptorFromMap(v))
	default:
		return nil, fmt.Errorf("%w: unexpected %T in state", ErrInvalidSelection, v)
	}
}

func descriptorFromMap(m map[string]interface{}) Descriptor {
	str := func(key string) string {
		s, _ := m[key].(string)
		return s
	}
	num := func(key string) int {
		n, _ := model.ToInt(m[key])
		return n
	}
	path := func(key string) []string {
		p, _ := model.PathFrom(m[key])
		return p
	}
	d := Descriptor{
		Type:        str("type"),
		Path:        path("path"),
		StartOffset: num("startOffset"),
		SurfaceID:   str("surfaceId"),
		ContainerID: str("containerId"),
		StartPath:   path("startPath"),
		EndPath:     path("endPath"),
		TableID:     str("tableId"),
		StartRow:    num("startRow"),
		StartCol:    num("startCol"),
		EndRow:      num("endRow"),
		EndCol:      num("endCol"),
	}
	d.Reverse, _ = m["reverse"].(bool)
	if _, ok := m["endOffset"]; ok {
		end := num("endOffset")
		d.EndOffset = &end
	}
	return d
}

func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, e.Param()))
		case "gtefield":
			msgs = append(msgs, fmt.Sprintf("%s must not be before %s", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidSelection, strings.Join(msgs, "; "))
}
