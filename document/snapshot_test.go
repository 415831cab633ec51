package document_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/cozy/substance-go/document"
	"github.com/cozy/substance-go/model"
	"github.com/cozy/substance-go/test/builder"
	"github.com/cozy/substance-go/transform"
)

func TestLoadSeed(t *testing.T) {
	source := article()
	_, err := source.Transaction(nil, nil, insertText(p1, 0, ">"))
	require.NoError(t, err)
	snapshot := source.ToJSON()
	assert.Equal(t, [2]string{schema.Name, schema.Version}, snapshot.Schema)
	assert.Len(t, snapshot.Nodes, 8)

	d := New(schema)
	version := d.Version()
	require.NoError(t, d.LoadSeed(snapshot))
	assert.Equal(t, snapshot, d.ToJSON())
	assert.Equal(t, snapshot.Nodes, stageData(d))
	assert.Equal(t, version+1, d.Version())
	assert.Equal(t, ">Hello world", d.Get(p1))
	assert.Len(t, d.Annotations().Get(p1), 2)
	assert.Len(t, d.ContainerAnnotations().Get(builder.BodyID), 1)

	// loading a seed clears the history
	_, err = d.Transaction(nil, nil, insertText(p1, 0, ">"))
	require.NoError(t, err)
	require.NoError(t, d.LoadSeed(snapshot))
	assert.Empty(t, d.Done())
	assert.Equal(t, ">Hello world", d.Get(p1))
}

func TestLoadSeedErrors(t *testing.T) {
	d := article()
	snapshot := d.ToJSON()

	invalid := func(seed Snapshot, target error) {
		t.Helper()
		assert.ErrorIs(t, d.LoadSeed(seed), target)
		assert.Equal(t, snapshot, d.ToJSON())
	}

	// another schema
	seed := builder.Seed(p("p1", "x"))
	seed.Schema[0] = "other"
	invalid(seed, ErrSchemaMismatch)

	// a container pointing to a missing node
	seed = builder.Seed(p("p1", "x"))
	seed.Nodes[builder.BodyID][model.PropNodes] = []string{"p1", "nope"}
	invalid(seed, ErrIntegrity)

	// an annotation ending after its text
	invalid(builder.Seed(p("p1", "x"), strong("s1", p1, 0, 5)), ErrIntegrity)

	// an annotation on a node without text
	invalid(builder.Seed(img("i1", "a.png"), strong("s1", model.Path{"i1", "content"}, 0, 0)), ErrIntegrity)

	// a list item out of a list
	invalid(builder.Seed(li("i1", "item")), ErrIntegrity)

	// a comment in a missing container
	comment := builder.Comment("c1", p1, 0, p1, 1)
	comment[model.PropContainer] = "nope"
	invalid(builder.Seed(p("p1", "x"), comment), ErrIntegrity)

	// a node stored under another id
	seed = builder.Seed(p("p1", "x"))
	seed.Nodes["p2"] = p("p3", "y")
	invalid(seed, model.ErrInvalidNode)

	// an unknown type
	invalid(builder.Seed(model.NodeData{"id": "x", "type": "unknown"}), model.ErrUnknownType)

	// a list is fine
	require.NoError(t, d.LoadSeed(builder.Seed(ul("l1", "i1", "i2"), li("i1", "one"), li("i2", "two"))))
	assert.Equal(t, []string{"l1"}, d.GetNode(builder.BodyID).ChildIDs())
}

func TestLoadSeedInTransaction(t *testing.T) {
	d := article()
	_, err := d.Transaction(nil, nil, func(tx *transform.Transaction) (transform.State, error) {
		return nil, d.LoadSeed(builder.Seed(p("p1", "x")))
	})
	assert.ErrorIs(t, err, transform.ErrIllegalState)
	assert.Equal(t, "Hello world", d.Get(p1))
}
