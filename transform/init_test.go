package transform_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cozy/substance-go/model"
	"github.com/cozy/substance-go/test/builder"
	. "github.com/cozy/substance-go/transform"
)

var (
	schema  = builder.Schema
	p       = builder.P
	strong  = builder.Strong
	a       = builder.A
	ul      = builder.Ul
	li      = builder.Li
	comment = builder.Comment

	p1 = model.Path{"p1", "content"}
	p2 = model.Path{"p2", "content"}
)

// committer replays the saved transactions on its primary graph, like a
// document without history.
type committer struct {
	primary *model.Graph
	stage   *Stage
}

func (c *committer) CommitTransaction(tx *Transaction) (*DocumentChange, error) {
	if err := c.stage.BeginCommit(tx); err != nil {
		return nil, err
	}
	for _, op := range tx.Ops() {
		if err := op.Apply(c.primary); err != nil {
			return nil, err
		}
	}
	return NewDocumentChange(tx.Ops(), tx.Before(), tx.After(), tx.Info()), nil
}

func newGraph(t *testing.T, nodes ...model.NodeData) *model.Graph {
	g := model.NewGraph(schema)
	for _, data := range builder.Seed(nodes...).Nodes {
		_, err := g.Create(data)
		require.NoError(t, err)
	}
	return g
}

func newStage(t *testing.T, nodes ...model.NodeData) *committer {
	c := &committer{primary: newGraph(t, nodes...)}
	c.stage = NewStage(c.primary, c)
	return c
}

// article is a body with two paragraphs, two annotations on the first one,
// and a comment from the first paragraph to the second one.
func article(t *testing.T) *committer {
	return newStage(t,
		p("p1", "Hello world"),
		p("p2", "Second paragraph"),
		strong("s1", p1, 0, 5),
		a("l1", p1, 6, 11),
		comment("c1", p1, 6, p2, 6),
	)
}

// dump returns the data of all the nodes of a graph.
func dump(g *model.Graph) map[string]model.NodeData {
	result := map[string]model.NodeData{}
	for _, node := range g.NodeList() {
		result[node.ID] = node.ToData()
	}
	return result
}
