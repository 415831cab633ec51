package model_test

import (
	"testing"

	. "github.com/cozy/substance-go/model"
	"github.com/cozy/substance-go/test/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(nodes []*Node) []string {
	result := []string{}
	for _, node := range nodes {
		result = append(result, node.ID)
	}
	return result
}

func TestAnnotationIndexGet(t *testing.T) {
	path := Path{"p1", "content"}
	g := newGraph(t,
		p("p1", "0123456789abcdefghij"),
		strong("a1", path, 0, 5),
		em("a2", path, 10, 15),
	)
	idx := g.Annotations()

	get := func(start, end int, expected ...string) {
		if expected == nil {
			expected = []string{}
		}
		assert.Equal(t, expected, ids(idx.Get(path, start, end)), "get(%d, %d)", start, end)
	}

	// overlapping both
	get(3, 12, "a1", "a2")
	// between the two
	get(6, 9)
	// touching both ends
	get(5, 10, "a1", "a2")
	// after everything
	get(16, 18)

	assert.Equal(t, []string{"a1", "a2"}, ids(idx.Get(path)))
	// only a start offset
	assert.Equal(t, []string{"a2"}, ids(idx.Get(path, 6)))
	assert.Empty(t, idx.Get(Path{"p2", "content"}))

	assert.Equal(t, []string{"a2"}, ids(idx.GetOfType(path, "emphasis")))
	assert.Equal(t, []string{"a1", "a2"}, ids(idx.GetOfType(path, "annotation")))
	assert.Equal(t, []string{"a1"}, ids(idx.ByType("strong")))
}

func TestAnnotationIndexMove(t *testing.T) {
	p1, p2 := Path{"p1", "content"}, Path{"p2", "content"}
	g := newGraph(t,
		p("p1", "hello"),
		p("p2", "world"),
		strong("a1", p1, 0, 5),
	)

	_, err := g.Set(Path{"a1", "path"}, []interface{}{"p2", "content"})
	require.NoError(t, err)
	assert.Empty(t, g.Annotations().Get(p1))
	assert.Equal(t, []string{"a1"}, ids(g.Annotations().Get(p2)))

	// changing the range doesn't move it
	_, err = g.Set(Path{"a1", "endOffset"}, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, ids(g.Annotations().Get(p2, 0, 1)))
	assert.Empty(t, g.Annotations().Get(p2, 4, 5))

	g.Delete("a1")
	assert.Empty(t, g.Annotations().Get(p2))
	assert.Empty(t, g.Annotations().ByType("strong"))
}

func TestContainerAnnotationIndex(t *testing.T) {
	g := newGraph(t,
		p("p1", "hello"),
		p("p2", "world"),
		NodeData{"id": "other", "type": "container", "nodes": []string{}},
		builder.Comment("c1", Path{"p1", "content"}, 1, Path{"p2", "content"}, 3),
	)
	idx := g.ContainerAnnotations()

	assert.Equal(t, []string{"c1"}, ids(idx.Get(builder.BodyID)))
	assert.Equal(t, []string{"c1"}, ids(idx.Get(builder.BodyID, "container-annotation")))
	assert.Empty(t, idx.Get(builder.BodyID, "strong"))
	assert.Equal(t, []string{"c1"}, ids(idx.ByType("comment")))

	_, err := g.Set(Path{"c1", "container"}, "other")
	require.NoError(t, err)
	assert.Empty(t, idx.Get(builder.BodyID))
	assert.Equal(t, []string{"c1"}, ids(idx.Get("other")))

	g.Delete("c1")
	assert.Empty(t, idx.Get("other"))
}

func TestFragments(t *testing.T) {
	path := Path{"p1", "content"}
	g := newGraph(t,
		p("p1", "Hello world"),
		strong("s1", path, 0, 5),
		a("l1", path, 6, 11),
		em("e1", path, 0, 11),
		em("e2", path, 3, 3),
	)
	frags := Fragments("Hello world", g.Annotations().Get(path))
	require.Len(t, frags, 3)

	assert.Equal(t, "Hello", frags[0].Text)
	assert.Equal(t, []string{"e1", "s1"}, ids(frags[0].Annotations))
	assert.True(t, frags[0].Has("strong"))

	assert.Equal(t, " ", frags[1].Text)
	assert.Equal(t, 5, frags[1].Start)
	assert.Equal(t, 6, frags[1].End)
	assert.Equal(t, []string{"e1"}, ids(frags[1].Annotations))
	assert.False(t, frags[1].Has("strong"))

	assert.Equal(t, "world", frags[2].Text)
	assert.Equal(t, "l1", frags[2].Find("link").ID)

	// without annotations, there is a single fragment
	frags = Fragments("plain", nil)
	require.Len(t, frags, 1)
	assert.Equal(t, "plain", frags[0].Text)
	assert.Empty(t, Fragments("", nil))
}
