package model_test

import (
	"strings"
	"testing"

	. "github.com/cozy/substance-go/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func match(t *testing.T, expr, types string) bool {
	ce, err := ParseContentExpr(expr)
	require.NoError(t, err)
	var ts []*NodeType
	for _, name := range strings.Fields(types) {
		typ, ok := schema.NodeType(name)
		require.True(t, ok, name)
		ts = append(ts, typ)
	}
	return ce.Match(ts)
}

func TestContentExprMatch(t *testing.T) {
	valid := func(expr, types string) {
		assert.True(t, match(t, expr, types), "%q should match [%s]", expr, types)
	}
	invalid := func(expr, types string) {
		assert.False(t, match(t, expr, types), "%q should not match [%s]", expr, types)
	}

	// accepts anything for the empty expr
	valid("", "")
	valid("", "image paragraph")

	// matches nothing to an asterisk
	valid("image*", "")
	// matches one element to an asterisk
	valid("image*", "image")
	// matches multiple elements to an asterisk
	valid("image*", "image image image image")
	// only matches appropriate elements to an asterisk
	invalid("image*", "image paragraph")

	// matches group members to a group
	valid("block*", "image paragraph list")
	// doesn't match non-members to a group
	invalid("block*", "list-item")
	// matches subtypes to their parent type
	valid("annotation*", "strong link")
	invalid("annotation*", "comment")

	// matches an element to a choice expression
	valid("(paragraph | heading)", "paragraph")
	// doesn't match unmentioned elements to a choice expr
	invalid("(paragraph | heading)", "image")
	invalid("(paragraph | heading)", "")

	// matches a simple sequence
	valid("paragraph heading", "paragraph heading")
	// fails when a sequence is too short
	invalid("paragraph heading", "paragraph")
	// fails when a sequence is in the wrong order
	invalid("paragraph heading", "heading paragraph")

	// accepts a sequence followed by a star
	valid("heading paragraph*", "heading")
	valid("heading paragraph*", "heading paragraph paragraph")
	invalid("heading paragraph*", "paragraph")

	// requires at least one element for a plus
	invalid("paragraph+", "")
	valid("paragraph+", "paragraph paragraph")

	// accepts zero or one for an optional
	valid("image?", "")
	valid("image?", "image")
	invalid("image?", "image image")

	// matches exact ranges
	valid("paragraph{2}", "paragraph paragraph")
	invalid("paragraph{2}", "paragraph")
	invalid("paragraph{2}", "paragraph paragraph paragraph")
	// matches bounded ranges
	valid("paragraph{1,3}", "paragraph")
	valid("paragraph{1,3}", "paragraph paragraph paragraph")
	invalid("paragraph{1,3}", "paragraph paragraph paragraph paragraph")
	invalid("paragraph{1,3}", "")
	// matches open ranges
	valid("paragraph{2,}", "paragraph paragraph paragraph paragraph")
	invalid("paragraph{2,}", "paragraph")

	// matches nested repetitions
	valid("(paragraph heading?)+", "paragraph heading paragraph paragraph heading")
	invalid("(paragraph heading?)+", "heading")
	valid("(paragraph*)*", "paragraph paragraph")
	valid("(paragraph*)*", "")
}

func TestParseContentExprErrors(t *testing.T) {
	for _, expr := range []string{
		"paragraph{",
		"(paragraph",
		"paragraph |",
		"paragraph )",
		"paragraph{3,1}",
		"paragraph{x}",
		"*",
		"12",
	} {
		_, err := ParseContentExpr(expr)
		assert.ErrorIs(t, err, ErrInvalidSchema, expr)
	}

	ce, err := ParseContentExpr("heading (paragraph | list)*")
	require.NoError(t, err)
	assert.Equal(t, []string{"heading", "paragraph", "list"}, ce.Names())
	assert.Equal(t, "heading (paragraph | list)*", ce.String())
}

func TestValidContent(t *testing.T) {
	container, _ := schema.NodeType("container")
	paragraph, _ := schema.NodeType("paragraph")
	item, _ := schema.NodeType("list-item")
	list, _ := schema.NodeType("list")

	assert.NoError(t, container.ValidContent([]*NodeType{paragraph, list}))
	assert.ErrorIs(t, container.ValidContent([]*NodeType{paragraph, item}), ErrInvalidContent)
	assert.NoError(t, list.ValidContent([]*NodeType{item, item}))
	assert.ErrorIs(t, list.ValidContent([]*NodeType{paragraph}), ErrInvalidContent)
	// types without content expression accept anything
	assert.NoError(t, paragraph.ValidContent([]*NodeType{item}))
}
