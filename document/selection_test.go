package document_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cozy/substance-go/model"
	"github.com/cozy/substance-go/selection"
	"github.com/cozy/substance-go/test/builder"
)

func offset(i int) *int { return &i }

func ids(nodes []*model.Node) []string {
	result := []string{}
	for _, n := range nodes {
		result = append(result, n.ID)
	}
	sort.Strings(result)
	return result
}

func TestCreateSelection(t *testing.T) {
	d := article()

	valid := func(desc selection.Descriptor) selection.Selection {
		t.Helper()
		sel, err := d.CreateSelection(desc)
		require.NoError(t, err)
		return sel
	}
	invalid := func(desc selection.Descriptor) {
		t.Helper()
		_, err := d.CreateSelection(desc)
		assert.ErrorIs(t, err, selection.ErrInvalidSelection)
	}

	assert.True(t, valid(selection.Descriptor{}).IsNull())
	sel := valid(selection.Descriptor{Type: selection.TypeProperty, Path: p1, StartOffset: 0, EndOffset: offset(11)})
	assert.Equal(t, selection.TypeProperty, sel.Type())
	valid(selection.Descriptor{
		Type:        selection.TypeContainer,
		ContainerID: builder.BodyID,
		StartPath:   p1,
		StartOffset: 2,
		EndPath:     p2,
		EndOffset:   offset(16),
	})

	// a missing node
	invalid(selection.Descriptor{Type: selection.TypeProperty, Path: []string{"nope", "content"}})
	// not a text
	invalid(selection.Descriptor{Type: selection.TypeProperty, Path: []string{"s1", "startOffset"}})
	// after the end of the text
	invalid(selection.Descriptor{Type: selection.TypeProperty, Path: p1, EndOffset: offset(12)})
	// not a container
	invalid(selection.Descriptor{Type: selection.TypeContainer, ContainerID: "p1", StartPath: p1, EndPath: p2})
	invalid(selection.Descriptor{Type: selection.TypeContainer, ContainerID: builder.BodyID, StartPath: p1, EndPath: p2, EndOffset: offset(17)})
	// no table
	invalid(selection.Descriptor{Type: selection.TypeTable, TableID: "t1"})
}

func TestGetAnnotationsForSelection(t *testing.T) {
	d := article()
	prop := func(path model.Path, start, end int) selection.Selection {
		t.Helper()
		sel, err := d.CreateSelection(selection.Descriptor{Type: selection.TypeProperty, Path: path, StartOffset: start, EndOffset: offset(end)})
		require.NoError(t, err)
		return sel
	}

	assert.Equal(t, []string{"s1"}, ids(d.GetAnnotationsForSelection(prop(p1, 0, 3))))
	assert.Equal(t, []string{"l1", "s1"}, ids(d.GetAnnotationsForSelection(prop(p1, 0, 11))))
	// the ends are included
	assert.Equal(t, []string{"l1", "s1"}, ids(d.GetAnnotationsForSelection(prop(p1, 5, 6))))
	assert.Equal(t, []string{"l1"}, ids(d.GetAnnotationsForSelection(prop(p1, 0, 11), "link")))
	assert.Equal(t, []string{"e1"}, ids(d.GetAnnotationsForSelection(prop(p2, 10, 10))))
	assert.Empty(t, d.GetAnnotationsForSelection(prop(p2, 0, 3)))
	assert.Empty(t, d.GetAnnotationsForSelection(selection.Null))
}

func TestGetContainerAnnotationsForSelection(t *testing.T) {
	d := article()
	prop := func(path model.Path, start, end int) selection.Selection {
		return &selection.PropertySelection{Path: path, StartOffset: start, EndOffset: end}
	}

	assert.Equal(t, []string{"c1"}, ids(d.GetContainerAnnotationsForSelection(prop(p1, 7, 8), builder.BodyID)))
	assert.Equal(t, []string{"c1"}, ids(d.GetContainerAnnotationsForSelection(prop(p2, 0, 1), builder.BodyID)))
	// the ends are included
	assert.Equal(t, []string{"c1"}, ids(d.GetContainerAnnotationsForSelection(prop(p1, 0, 6), builder.BodyID)))
	assert.Empty(t, d.GetContainerAnnotationsForSelection(prop(p2, 8, 9), builder.BodyID))
	assert.Empty(t, d.GetContainerAnnotationsForSelection(prop(p1, 0, 5), builder.BodyID))

	// a container selection around the comment
	around := &selection.ContainerSelection{
		ContainerID: builder.BodyID,
		StartPath:   model.Path{"h1", "content"},
		StartOffset: 0,
		EndPath:     p2,
		EndOffset:   16,
	}
	assert.Equal(t, []string{"c1"}, ids(d.GetContainerAnnotationsForSelection(around, builder.BodyID)))
	assert.Equal(t, []string{"c1"}, ids(d.GetContainerAnnotationsForSelection(around, builder.BodyID, "comment")))
	assert.Empty(t, d.GetContainerAnnotationsForSelection(around, builder.BodyID, "link"))

	assert.Empty(t, d.GetContainerAnnotationsForSelection(prop(p1, 7, 8), ""))
	assert.Empty(t, d.GetContainerAnnotationsForSelection(prop(p1, 7, 8), "p1"))
}
