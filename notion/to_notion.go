// Package notion converts the content of a document container to Notion
// blocks, ready to be sent to the Notion API.
package notion

import (
	"fmt"

	"github.com/dstotijn/go-notion"

	"github.com/cozy/substance-go/model"
)

// ToNotionBlocks converts a node to Notion blocks. A container, like a list,
// gives a block for each of its children.
type ToNotionBlocks = func(s *NotionSerializer, graph *model.Graph, node *model.Node) []notion.Block

// ToNotionAnnotation adds the style of an annotation to a rich text.
type ToNotionAnnotation = func(anno *model.Node, text *notion.RichText)

type NotionSerializer struct {
	// The node serialization functions.
	Nodes map[string]ToNotionBlocks

	// The annotation serialization functions.
	Annotations map[string]ToNotionAnnotation
}

// CreatePageContent returns the blocks for the children of a container,
// with the default serializer.
func CreatePageContent(graph *model.Graph, containerID string) ([]notion.Block, error) {
	return DefaultSerializer().SerializePage(graph, containerID)
}

func defaultParagraphBlockGenerator() ToNotionBlocks {
	return func(s *NotionSerializer, graph *model.Graph, n *model.Node) []notion.Block {
		return []notion.Block{{
			Type:      notion.BlockTypeParagraph,
			Paragraph: &notion.RichTextBlock{Text: s.RichText(graph, n)},
		}}
	}
}

func defaultHeadingBlockGenerator() ToNotionBlocks {
	return func(s *NotionSerializer, graph *model.Graph, n *model.Node) []notion.Block {
		heading := &notion.Heading{Text: s.RichText(graph, n)}
		level, _ := model.ToInt(n.Get("level"))
		switch {
		case level <= 1:
			return []notion.Block{{Type: notion.BlockTypeHeading1, Heading1: heading}}
		case level == 2:
			return []notion.Block{{Type: notion.BlockTypeHeading2, Heading2: heading}}
		}
		return []notion.Block{{Type: notion.BlockTypeHeading3, Heading3: heading}}
	}
}

// Code blocks become paragraphs in code font.
func defaultCodeBlockGenerator() ToNotionBlocks {
	return func(s *NotionSerializer, graph *model.Graph, n *model.Node) []notion.Block {
		text := plainText(n.Text())
		text.Annotations = &notion.Annotations{Code: true}
		return []notion.Block{{
			Type:      notion.BlockTypeParagraph,
			Paragraph: &notion.RichTextBlock{Text: []notion.RichText{text}},
		}}
	}
}

func defaultListBlockGenerator() ToNotionBlocks {
	return func(s *NotionSerializer, graph *model.Graph, n *model.Node) []notion.Block {
		ordered, _ := n.Get("ordered").(bool)
		var result []notion.Block
		for _, id := range n.ChildIDs() {
			item := graph.GetNode(id)
			if item == nil || !item.IsText() {
				continue
			}
			block := &notion.RichTextBlock{Text: s.RichText(graph, item)}
			if ordered {
				result = append(result, notion.Block{Type: notion.BlockTypeNumberedListItem, NumberedListItem: block})
			} else {
				result = append(result, notion.Block{Type: notion.BlockTypeBulletedListItem, BulletedListItem: block})
			}
		}
		return result
	}
}

// Default ToNotion functions
var (
	defaultToNotion = map[string]ToNotionBlocks{
		"paragraph": defaultParagraphBlockGenerator(),
		"heading":   defaultHeadingBlockGenerator(),
		"codeblock": defaultCodeBlockGenerator(),
		"list":      defaultListBlockGenerator(),
		"list-item": defaultParagraphBlockGenerator(),
	}
	defaultAnnotationToNotion = map[string]ToNotionAnnotation{
		"strong": func(_ *model.Node, text *notion.RichText) {
			annotations(text).Bold = true
		},
		"emphasis": func(_ *model.Node, text *notion.RichText) {
			annotations(text).Italic = true
		},
		"code": func(_ *model.Node, text *notion.RichText) {
			annotations(text).Code = true
		},
		"link": func(anno *model.Node, text *notion.RichText) {
			if url, ok := anno.Get("url").(string); ok && url != "" {
				text.Text.Link = &notion.Link{URL: url}
			}
		},
	}
)

func annotations(text *notion.RichText) *notion.Annotations {
	if text.Annotations == nil {
		text.Annotations = &notion.Annotations{}
	}
	return text.Annotations
}

func plainText(content string) notion.RichText {
	return notion.RichText{
		Type:      notion.RichTextTypeText,
		PlainText: content,
		Text: &notion.Text{
			Content: content,
		},
	}
}

// DefaultSerializer returns a serializer for the basic and list schemas.
// Images and tables are skipped.
func DefaultSerializer() *NotionSerializer {
	n := &NotionSerializer{
		Nodes:       map[string]ToNotionBlocks{},
		Annotations: map[string]ToNotionAnnotation{},
	}
	for name, fn := range defaultToNotion {
		n.Nodes[name] = fn
	}
	for name, fn := range defaultAnnotationToNotion {
		n.Annotations[name] = fn
	}
	return n
}

// SerializePage converts the children of a container to blocks.
func (n *NotionSerializer) SerializePage(graph *model.Graph, containerID string) ([]notion.Block, error) {
	container := graph.GetNode(containerID)
	if container == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrNodeNotFound, containerID)
	}
	if !container.IsContainer() {
		return nil, fmt.Errorf("%w: %s is not a container", model.ErrInvalidNode, containerID)
	}
	var result []notion.Block
	for _, id := range container.ChildIDs() {
		if node := graph.GetNode(id); node != nil {
			result = append(result, n.SerializeNode(graph, node)...)
		}
	}
	return result, nil
}

// SerializeNode converts a node to blocks. It returns nil for the nodes
// without a serialization function.
func (n *NotionSerializer) SerializeNode(graph *model.Graph, node *model.Node) []notion.Block {
	if notionFn := n.Nodes[node.Type.Name]; notionFn != nil {
		return notionFn(n, graph, node)
	}
	return nil
}

// RichText converts the text of a node to rich texts, one for each run of
// text with the same annotations.
func (n *NotionSerializer) RichText(graph *model.Graph, node *model.Node) []notion.RichText {
	var annos []*model.Node
	for _, anno := range graph.Annotations().Get(model.Path{node.ID, model.PropContent}) {
		if n.Annotations[anno.Type.Name] != nil {
			annos = append(annos, anno)
		}
	}
	result := []notion.RichText{}
	for _, frag := range model.Fragments(node.Text(), annos) {
		text := plainText(frag.Text)
		for _, anno := range frag.Annotations {
			n.Annotations[anno.Type.Name](anno, &text)
		}
		result = append(result, text)
	}
	return result
}
