package notion_test

import (
	"testing"

	"github.com/dstotijn/go-notion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cozy/substance-go/model"
	. "github.com/cozy/substance-go/notion"
	"github.com/cozy/substance-go/test/builder"
)

func plain(texts []notion.RichText) []string {
	result := []string{}
	for _, text := range texts {
		result = append(result, text.PlainText)
	}
	return result
}

func TestCreatePageContent(t *testing.T) {
	doc := builder.Article()
	blocks, err := CreatePageContent(doc.Graph(), builder.BodyID)
	require.NoError(t, err)
	require.Len(t, blocks, 3)

	assert.Equal(t, notion.BlockTypeHeading1, blocks[0].Type)
	require.NotNil(t, blocks[0].Heading1)
	assert.Equal(t, []string{"Title"}, plain(blocks[0].Heading1.Text))

	assert.Equal(t, notion.BlockTypeParagraph, blocks[1].Type)
	texts := blocks[1].Paragraph.Text
	assert.Equal(t, []string{"Hello", " ", "world"}, plain(texts))
	require.NotNil(t, texts[0].Annotations)
	assert.True(t, texts[0].Annotations.Bold)
	assert.Nil(t, texts[1].Annotations)
	assert.Nil(t, texts[1].Text.Link)
	require.NotNil(t, texts[2].Text.Link)
	assert.Equal(t, "foo", texts[2].Text.Link.URL)
	assert.Equal(t, "world", texts[2].Text.Content)

	texts = blocks[2].Paragraph.Text
	assert.Equal(t, []string{"Second ", "paragraph"}, plain(texts))
	require.NotNil(t, texts[1].Annotations)
	assert.True(t, texts[1].Annotations.Italic)
	assert.False(t, texts[1].Annotations.Bold)
}

func TestNotionBlocks(t *testing.T) {
	path := model.Path{"p1", model.PropContent}
	serialize := func(nodes ...model.NodeData) []notion.Block {
		t.Helper()
		doc := builder.Doc(nodes...)
		blocks, err := CreatePageContent(doc.Graph(), builder.BodyID)
		require.NoError(t, err)
		return blocks
	}

	// an empty paragraph has no rich text
	blocks := serialize(builder.P("p1", ""))
	require.Len(t, blocks, 1)
	assert.Empty(t, blocks[0].Paragraph.Text)

	// overlapping annotations
	blocks = serialize(builder.P("p1", "bold code"), builder.Strong("s1", path, 0, 9), builder.Code("c1", path, 5, 9))
	texts := blocks[0].Paragraph.Text
	assert.Equal(t, []string{"bold ", "code"}, plain(texts))
	assert.True(t, texts[1].Annotations.Bold)
	assert.True(t, texts[1].Annotations.Code)
	assert.False(t, texts[0].Annotations.Code)

	// headings of level 2 and more
	blocks = serialize(builder.H2("h2", "two"), builder.H3("h3", "three"))
	assert.Equal(t, notion.BlockTypeHeading2, blocks[0].Type)
	assert.Equal(t, notion.BlockTypeHeading3, blocks[1].Type)
	assert.Equal(t, []string{"three"}, plain(blocks[1].Heading3.Text))

	// a code block
	blocks = serialize(builder.Pre("c1", "x := 1"))
	require.Len(t, blocks, 1)
	assert.True(t, blocks[0].Paragraph.Text[0].Annotations.Code)
	assert.Equal(t, "x := 1", blocks[0].Paragraph.Text[0].PlainText)

	// a list gives a block per item
	blocks = serialize(builder.Ul("l1", "i1", "i2"), builder.Li("i1", "one"), builder.Li("i2", "two"))
	require.Len(t, blocks, 2)
	assert.Equal(t, notion.BlockTypeBulletedListItem, blocks[0].Type)
	assert.Equal(t, []string{"two"}, plain(blocks[1].BulletedListItem.Text))
	blocks = serialize(builder.Ol("l1", "i1"), builder.Li("i1", "one"))
	require.Len(t, blocks, 1)
	assert.Equal(t, notion.BlockTypeNumberedListItem, blocks[0].Type)

	// images are skipped
	blocks = serialize(builder.Img("i1", "a.png"), builder.P("p1", "after"))
	require.Len(t, blocks, 1)
	assert.Equal(t, []string{"after"}, plain(blocks[0].Paragraph.Text))
}

func TestNotionErrors(t *testing.T) {
	doc := builder.Article()
	_, err := CreatePageContent(doc.Graph(), "missing")
	assert.ErrorIs(t, err, model.ErrNodeNotFound)
	_, err = CreatePageContent(doc.Graph(), "p1")
	assert.ErrorIs(t, err, model.ErrInvalidNode)
}

func TestCustomNotionSerializer(t *testing.T) {
	serializer := DefaultSerializer()
	serializer.Annotations["link"] = func(anno *model.Node, text *notion.RichText) {
		text.Annotations = &notion.Annotations{Underline: true}
	}
	doc := builder.Article()
	blocks, err := serializer.SerializePage(doc.Graph(), builder.BodyID)
	require.NoError(t, err)
	texts := blocks[1].Paragraph.Text
	assert.True(t, texts[2].Annotations.Underline)
	assert.Nil(t, texts[2].Text.Link)
}
