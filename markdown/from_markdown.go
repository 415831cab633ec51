package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/cozy/substance-go/document"
	"github.com/cozy/substance-go/model"
)

// BodyID is the id of the container created by ParseMarkdown.
const BodyID = "body"

// KindStrong is the kind used in a NodeMapper for the emphasis of level 2.
var KindStrong = ast.NewNodeKind("Strong")

// NodeMapper gives the name of the node type to create for each kind of
// markdown element. Elements without a type are skipped, but the content of
// a blockquote is kept.
type NodeMapper map[ast.NodeKind]string

// DefaultNodeMapper maps the markdown elements to the basic and list
// schemas.
var DefaultNodeMapper = NodeMapper{
	ast.KindDocument:        "container",
	ast.KindParagraph:       "paragraph",
	ast.KindHeading:         "heading",
	ast.KindFencedCodeBlock: "codeblock",
	ast.KindCodeBlock:       "codeblock",
	ast.KindList:            "list",
	ast.KindListItem:        "list-item",
	ast.KindImage:           "image",
	ast.KindEmphasis:        "emphasis",
	KindStrong:              "strong",
	ast.KindCodeSpan:        "code",
	ast.KindLink:            "link",
	ast.KindAutoLink:        "link",
}

// ParseMarkdown parses CommonMark text into the snapshot of a document: a
// container with id BodyID holding the blocks, and annotations on their
// text. Nested lists are flattened into their top list, with the level of
// the items. An image alone in a paragraph becomes an image block.
func ParseMarkdown(p parser.Parser, mapper NodeMapper, source []byte, schema *model.Schema) (document.Snapshot, error) {
	state := &parseState{
		source: source,
		mapper: mapper,
		schema: schema,
		nodes:  map[string]model.NodeData{},
		ids:    map[string]int{},
	}
	root := p.Parse(text.NewReader(source))
	containerType, err := state.typeFor(ast.KindDocument)
	if err != nil {
		return document.Snapshot{}, err
	}
	children, err := state.blocks(root)
	if err != nil {
		return document.Snapshot{}, err
	}
	state.nodes[BodyID] = model.NodeData{
		model.PropID:    BodyID,
		model.PropType:  containerType,
		model.PropNodes: children,
	}
	return document.Snapshot{
		Schema: [2]string{schema.Name, schema.Version},
		Nodes:  state.nodes,
	}, nil
}

type parseState struct {
	source []byte
	mapper NodeMapper
	schema *model.Schema
	nodes  map[string]model.NodeData
	ids    map[string]int
}

func (s *parseState) newID(typ string) string {
	s.ids[typ]++
	return fmt.Sprintf("%s-%d", typ, s.ids[typ])
}

// typeFor returns the type name for a block element, which must exist in
// the schema.
func (s *parseState) typeFor(kind ast.NodeKind) (string, error) {
	name, ok := s.mapper[kind]
	if !ok {
		return "", fmt.Errorf("%w: no type for markdown %s", model.ErrUnknownType, kind)
	}
	if _, ok := s.schema.NodeType(name); !ok {
		return "", fmt.Errorf("%w: %s", model.ErrUnknownType, name)
	}
	return name, nil
}

func (s *parseState) blocks(parent ast.Node) ([]string, error) {
	ids := []string{}
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch n.Kind() {
		case ast.KindBlockquote:
			inner, err := s.blocks(n)
			if err != nil {
				return nil, err
			}
			ids = append(ids, inner...)
			continue
		case ast.KindThematicBreak, ast.KindHTMLBlock:
			continue
		}
		id, err := s.block(n)
		if err != nil {
			return nil, err
		}
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *parseState) block(n ast.Node) (string, error) {
	if img, ok := soleImage(n); ok {
		return s.image(img)
	}
	typ, err := s.typeFor(n.Kind())
	if err != nil {
		return "", err
	}
	id := s.newID(typ)
	data := model.NodeData{model.PropID: id, model.PropType: typ}
	switch node := n.(type) {
	case *ast.Heading:
		data["level"] = node.Level
		s.textContent(data, n)
	case *ast.FencedCodeBlock:
		if language := node.Language(s.source); len(language) > 0 {
			data["language"] = string(language)
		}
		data[model.PropContent] = s.lines(n)
	case *ast.CodeBlock:
		data[model.PropContent] = s.lines(n)
	case *ast.List:
		if node.IsOrdered() {
			data["ordered"] = true
		}
		if node.IsTight {
			data["tight"] = true
		}
		items, err := s.listItems(node, 1)
		if err != nil {
			return "", err
		}
		data[model.PropNodes] = items
	default:
		s.textContent(data, n)
	}
	s.nodes[id] = data
	return id, nil
}

// listItems creates the items of a list and of its nested lists.
func (s *parseState) listItems(list *ast.List, level int) ([]string, error) {
	typ, err := s.typeFor(ast.KindListItem)
	if err != nil {
		return nil, err
	}
	var ids []string
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		var texts []ast.Node
		var nested []*ast.List
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				nested = append(nested, sub)
			} else {
				texts = append(texts, c)
			}
		}
		id := s.newID(typ)
		data := model.NodeData{model.PropID: id, model.PropType: typ, "level": level}
		s.textContent(data, texts...)
		s.nodes[id] = data
		ids = append(ids, id)
		for _, sub := range nested {
			subIDs, err := s.listItems(sub, level+1)
			if err != nil {
				return nil, err
			}
			ids = append(ids, subIDs...)
		}
	}
	return ids, nil
}

func (s *parseState) image(img *ast.Image) (string, error) {
	typ, err := s.typeFor(ast.KindImage)
	if err != nil {
		return "", err
	}
	id := s.newID(typ)
	var alt inlineText
	s.inlines(img, &alt, false)
	s.nodes[id] = model.NodeData{
		model.PropID:   id,
		model.PropType: typ,
		"src":          string(img.Destination),
		"alt":          alt.buf.String(),
	}
	return id, nil
}

func (s *parseState) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		buf.Write(segment.Value(s.source))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// soleImage returns the image of a paragraph holding only an image.
func soleImage(n ast.Node) (*ast.Image, bool) {
	if n.Kind() != ast.KindParagraph || n.ChildCount() != 1 {
		return nil, false
	}
	img, ok := n.FirstChild().(*ast.Image)
	return img, ok
}

// inlineText collects the text of a block, and the ranges of its
// annotations. The offsets are in UTF-16 code units.
type inlineText struct {
	buf    strings.Builder
	length int
	annos  []inlineAnno
}

type inlineAnno struct {
	typ        string
	start, end int
	attrs      map[string]interface{}
}

func (t *inlineText) write(str string) {
	t.buf.WriteString(str)
	t.length += model.TextLength(str)
}

// textContent sets the content of a text node from the inlines of the given
// elements, and creates its annotations.
func (s *parseState) textContent(data model.NodeData, blocks ...ast.Node) {
	var t inlineText
	for i, b := range blocks {
		if i > 0 {
			t.write("\n")
		}
		s.inlines(b, &t, false)
	}
	id := data.ID()
	data[model.PropContent] = t.buf.String()
	for _, anno := range t.annos {
		if anno.end <= anno.start {
			continue
		}
		if _, ok := s.schema.NodeType(anno.typ); !ok {
			continue
		}
		annoID := s.newID(anno.typ)
		annoData := model.NodeData{
			model.PropID:          annoID,
			model.PropType:        anno.typ,
			model.PropPath:        []string{id, model.PropContent},
			model.PropStartOffset: anno.start,
			model.PropEndOffset:   anno.end,
		}
		for k, v := range anno.attrs {
			annoData[k] = v
		}
		s.nodes[annoID] = annoData
	}
}

func (s *parseState) inlines(parent ast.Node, t *inlineText, inCode bool) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Text:
			value := node.Segment.Value(s.source)
			if !inCode {
				value = util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(value)))
			}
			t.write(string(value))
			if node.HardLineBreak() {
				t.write("\n")
			} else if node.SoftLineBreak() {
				t.write(" ")
			}
		case *ast.String:
			t.write(string(node.Value))
		case *ast.AutoLink:
			start := t.length
			url := string(node.URL(s.source))
			t.write(string(node.Label(s.source)))
			s.annotate(t, ast.KindAutoLink, start, map[string]interface{}{"url": url})
		case *ast.Emphasis:
			kind := ast.KindEmphasis
			if node.Level >= 2 {
				kind = KindStrong
			}
			start := t.length
			s.inlines(n, t, inCode)
			s.annotate(t, kind, start, nil)
		case *ast.CodeSpan:
			start := t.length
			s.inlines(n, t, true)
			s.annotate(t, ast.KindCodeSpan, start, nil)
		case *ast.Link:
			start := t.length
			s.inlines(n, t, inCode)
			attrs := map[string]interface{}{"url": string(node.Destination)}
			if len(node.Title) > 0 {
				attrs["title"] = string(node.Title)
			}
			s.annotate(t, ast.KindLink, start, attrs)
		case *ast.Image:
			s.inlines(n, t, inCode)
		case *ast.RawHTML:
			continue
		default:
			s.inlines(n, t, inCode)
		}
	}
}

func (s *parseState) annotate(t *inlineText, kind ast.NodeKind, start int, attrs map[string]interface{}) {
	typ, ok := s.mapper[kind]
	if !ok {
		return
	}
	t.annos = append(t.annos, inlineAnno{typ: typ, start: start, end: t.length, attrs: attrs})
}
