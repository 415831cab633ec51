package transform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cozy/substance-go/model"
	"github.com/cozy/substance-go/test/builder"
	. "github.com/cozy/substance-go/transform"
)

// edit runs fn in a transaction on the article, and returns the stage graph
// before the transaction is cleaned up.
func edit(t *testing.T, fn func(tx *Transaction)) *model.Graph {
	c := article(t)
	tx, err := c.stage.StartTransaction(nil, 0)
	require.NoError(t, err)
	t.Cleanup(tx.Cleanup)
	fn(tx)
	return tx.Graph()
}

func rangeOf(g *model.Graph, id string) []int {
	node := g.GetNode(id)
	if node == nil {
		return nil
	}
	return []int{node.StartOffset(), node.EndOffset()}
}

func TestInsertText(t *testing.T) {
	// inside a strong annotation, at its inclusive end
	g := edit(t, func(tx *Transaction) {
		require.NoError(t, InsertText(tx, p1, 5, "!!"))
	})
	assert.Equal(t, "Hello!! world", g.Get(p1))
	assert.Equal(t, []int{0, 7}, rangeOf(g, "s1"))
	assert.Equal(t, []int{8, 13}, rangeOf(g, "l1"))
	assert.Equal(t, []int{8, 6}, rangeOf(g, "c1"))

	// before all the annotations
	g = edit(t, func(tx *Transaction) {
		require.NoError(t, InsertText(tx, p1, 0, "> "))
	})
	assert.Equal(t, "> Hello world", g.Get(p1))
	assert.Equal(t, []int{2, 7}, rangeOf(g, "s1"))
	assert.Equal(t, []int{8, 13}, rangeOf(g, "l1"))

	// at the end of a link, which is not inclusive
	g = edit(t, func(tx *Transaction) {
		require.NoError(t, InsertText(tx, p1, 11, "!"))
	})
	assert.Equal(t, "Hello world!", g.Get(p1))
	assert.Equal(t, []int{6, 11}, rangeOf(g, "l1"))

	// at the start of a link and of a comment
	g = edit(t, func(tx *Transaction) {
		require.NoError(t, InsertText(tx, p1, 6, "big "))
	})
	assert.Equal(t, "Hello big world", g.Get(p1))
	assert.Equal(t, []int{10, 15}, rangeOf(g, "l1"))
	assert.Equal(t, []int{6, 6}, rangeOf(g, "c1"))

	// in the paragraph where the comment ends
	g = edit(t, func(tx *Transaction) {
		require.NoError(t, InsertText(tx, p2, 0, "A "))
	})
	assert.Equal(t, []int{6, 8}, rangeOf(g, "c1"))
	assert.Equal(t, []int{0, 5}, rangeOf(g, "s1"))

	// with an emoji
	g = edit(t, func(tx *Transaction) {
		require.NoError(t, InsertText(tx, p1, 0, "😀"))
	})
	assert.Equal(t, []int{2, 7}, rangeOf(g, "s1"))

	g = edit(t, func(tx *Transaction) {
		assert.ErrorIs(t, InsertText(tx, p1, 40, "x"), model.ErrInvalidPosition)
		assert.NoError(t, InsertText(tx, p1, 3, ""))
		assert.Empty(t, tx.Ops())
	})
	assert.Equal(t, "Hello world", g.Get(p1))
}

func TestDeleteText(t *testing.T) {
	// across two annotations
	g := edit(t, func(tx *Transaction) {
		require.NoError(t, DeleteText(tx, p1, 3, 8))
	})
	assert.Equal(t, "Helrld", g.Get(p1))
	assert.Equal(t, []int{0, 3}, rangeOf(g, "s1"))
	assert.Equal(t, []int{3, 6}, rangeOf(g, "l1"))
	assert.Equal(t, []int{3, 6}, rangeOf(g, "c1"))

	// the whole link
	g = edit(t, func(tx *Transaction) {
		require.NoError(t, DeleteText(tx, p1, 5, 11))
	})
	assert.Equal(t, "Hello", g.Get(p1))
	assert.Nil(t, g.GetNode("l1"))
	assert.Equal(t, []int{0, 5}, rangeOf(g, "s1"))
	assert.Equal(t, []int{5, 6}, rangeOf(g, "c1"))

	// inside an annotation
	g = edit(t, func(tx *Transaction) {
		require.NoError(t, DeleteText(tx, p1, 1, 3))
	})
	assert.Equal(t, "Hlo world", g.Get(p1))
	assert.Equal(t, []int{0, 3}, rangeOf(g, "s1"))
	assert.Equal(t, []int{4, 9}, rangeOf(g, "l1"))

	edit(t, func(tx *Transaction) {
		assert.NoError(t, DeleteText(tx, p1, 2, 2))
		assert.Empty(t, tx.Ops())
		assert.ErrorIs(t, DeleteText(tx, p1, 2, 20), model.ErrInvalidPosition)
	})
}

func TestAnnotate(t *testing.T) {
	edit(t, func(tx *Transaction) {
		anno, err := Annotate(tx, builder.Em("e1", p2, 0, 6))
		require.NoError(t, err)
		assert.Equal(t, []string{"e1"}, []string{tx.Annotations().Get(p2)[0].ID})
		assert.Equal(t, "emphasis", anno.Type.Name)

		_, err = Annotate(tx, builder.Em("e2", p2, 0, 40))
		assert.ErrorIs(t, err, model.ErrInvalidPosition)
		_, err = Annotate(tx, builder.Em("e3", model.Path{"body", "nodes"}, 0, 1))
		assert.ErrorIs(t, err, model.ErrInvalidNode)
		_, err = Annotate(tx, model.NodeData{"id": "e4", "type": "emphasis"})
		assert.ErrorIs(t, err, model.ErrInvalidNode)
	})
}

func TestDeleteNodeDeep(t *testing.T) {
	g := edit(t, func(tx *Transaction) {
		require.NoError(t, DeleteNodeDeep(tx, "p1"))
	})
	assert.False(t, g.Contains("p1"))
	assert.False(t, g.Contains("s1"))
	assert.False(t, g.Contains("l1"))
	assert.False(t, g.Contains("c1"))
	assert.Equal(t, []string{"p2"}, g.Get(model.Path{builder.BodyID, "nodes"}))

	c := newStage(t, p("p1", "intro"), ul("list", "i1", "i2"), li("i1", "one"), li("i2", "two"), strong("s1", model.Path{"i2", "content"}, 0, 3))
	tx, err := c.stage.StartTransaction(nil, 0)
	require.NoError(t, err)
	defer tx.Cleanup()
	require.NoError(t, DeleteNodeDeep(tx, "list"))
	for _, id := range []string{"list", "i1", "i2", "s1"} {
		assert.False(t, tx.Contains(id), id)
	}
	assert.Equal(t, []string{"p1"}, tx.Get(model.Path{builder.BodyID, "nodes"}))

	// deleting a missing node is a no-op
	assert.NoError(t, DeleteNodeDeep(tx, "nope"))
}
