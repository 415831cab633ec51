package transform_test

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cozy/substance-go/model"
	. "github.com/cozy/substance-go/transform"
)

func TestDocumentChangeIsAffected(t *testing.T) {
	ops := []Operation{
		NewSetOp(p1, "Bye", "Hello"),
		NewUpdateOp(p2, model.TextInsert(0, ">")),
		NewSetOp(model.Path{"p3", "content"}, "x", "y"),
		NewDeleteOp(p("p3", "x")),
		NewCreateOp(p("p4", "new")),
		NewCreateOp(p("p5", "tmp")),
		NewDeleteOp(p("p5", "tmp")),
		NewSetOp(model.Path{"h1", "meta", "author"}, "Bob", nil),
	}
	change := NewDocumentChange(ops, State{"selection": "a"}, State{"selection": "b"}, nil)

	assert.True(t, change.IsAffected(p1))
	assert.True(t, change.IsAffected(model.Path{"p1"}))
	assert.True(t, change.IsAffected(p2))
	assert.False(t, change.IsAffected(model.Path{"p1", "level"}))
	assert.False(t, change.IsAffected(model.Path{"p9", "content"}))
	assert.False(t, change.IsAffected(nil))
	assert.True(t, change.IsAffected(model.Path{"h1", "meta", "author"}))
	assert.False(t, change.IsAffected(model.Path{"h1", "meta.author"}))
	assert.Empty(t, change.OpsAt(model.Path{"h1", "meta.author"}))

	// a deleted node is not affected
	assert.False(t, change.IsAffected(model.Path{"p3", "content"}))
	assert.False(t, change.IsAffected(model.Path{"p3"}))
	assert.True(t, change.IsDeleted("p3"))
	assert.Equal(t, []string{"p3"}, change.Deleted())

	// a node created then deleted is neither created nor deleted
	assert.Equal(t, []string{"p4"}, change.Created())
	assert.True(t, change.IsCreated("p4"))
	assert.False(t, change.IsDeleted("p5"))

	assert.Len(t, change.OpsAt(p1), 1)
	assert.Empty(t, change.OpsAt(model.Path{"p3", "content"}))
	assert.Equal(t, []model.Path{{"h1", "meta", "author"}, {"p1", "content"}, {"p2", "content"}}, change.UpdatedPaths())
	assert.Equal(t, 8, change.Len())
	assert.False(t, change.IsEmpty())
	assert.NotEmpty(t, change.ID())
}

func TestDocumentChangeInfo(t *testing.T) {
	info := map[string]interface{}{"source": "paste"}
	change := NewDocumentChange(nil, nil, nil, info)
	info["source"] = "typing"
	assert.Equal(t, "paste", change.Info()["source"])

	change.Info()["source"] = "typing"
	assert.Equal(t, map[string]interface{}{"source": "paste"}, change.Info())
	assert.Equal(t, change.Info(), change.Invert().Info())
	assert.Nil(t, NewDocumentChange(nil, nil, nil, nil).Info())
}

func TestDocumentChangeInvert(t *testing.T) {
	g := newGraph(t, p("p1", "Hello"))
	before := dump(g)
	ops := []Operation{
		NewUpdateOp(p1, model.TextInsert(5, " world")),
		NewCreateOp(strong("s1", p1, 0, 5)),
	}
	change := NewDocumentChange(ops, State{"selection": "before"}, State{"selection": "after"}, map[string]interface{}{"action": "type"})
	for _, op := range change.Ops() {
		require.NoError(t, op.Apply(g))
	}
	after := dump(g)

	inverted := change.Invert()
	assert.Equal(t, State{"selection": "after"}, inverted.Before())
	assert.Equal(t, State{"selection": "before"}, inverted.After())
	assert.Equal(t, change.Info(), inverted.Info())
	assert.NotEqual(t, change.ID(), inverted.ID())
	for _, op := range inverted.Ops() {
		require.NoError(t, op.Apply(g))
	}
	assert.Equal(t, before, dump(g))

	// inverting twice gives the change back
	for _, op := range inverted.Invert().Ops() {
		require.NoError(t, op.Apply(g))
	}
	assert.Equal(t, after, dump(g))
}

func TestDocumentChangeJSON(t *testing.T) {
	g := newGraph(t, p("p1", "Hello"), ul("list", "i1"), li("i1", "one"))
	ops := []Operation{
		NewUpdateOp(p1, model.TextInsert(5, " world")),
		NewCreateOp(strong("s1", p1, 0, 5)),
		NewSetOp(model.Path{"s1", "endOffset"}, 11, 5),
		NewCreateOp(li("i2", "two")),
		NewUpdateOp(model.Path{"list", "nodes"}, model.ArrayInsert(1, "i2")),
	}
	change := NewDocumentChange(ops, State{"selection": "before"}, nil, map[string]interface{}{"action": "type"})

	data, err := json.Marshal(change)
	require.NoError(t, err)
	var decoded DocumentChange
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, change.ID(), decoded.ID())
	assert.Equal(t, change.Timestamp().UnixMilli(), decoded.Timestamp().UnixMilli())
	assert.Equal(t, "before", decoded.Before()["selection"])
	assert.Equal(t, "type", decoded.Info()["action"])
	require.Equal(t, change.Len(), decoded.Len())

	// the decoded change has the same effect
	expected := g.Clone()
	for _, op := range change.Ops() {
		require.NoError(t, op.Apply(expected))
	}
	for _, op := range decoded.Ops() {
		require.NoError(t, op.Apply(g))
	}
	assert.Equal(t, dump(expected), dump(g))
	assert.True(t, decoded.IsAffected(model.Path{"list", "nodes"}))

	// and can still be inverted
	for _, op := range decoded.Invert().Ops() {
		require.NoError(t, op.Apply(g))
	}
	assert.Equal(t, "Hello", g.Get(p1))

	assert.Error(t, json.Unmarshal([]byte(`{"ops": "nope"}`), &decoded))
}
