// Package dom serializes the content of a document container to an HTML
// tree.
package dom

import (
	"bytes"
	"fmt"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/cozy/substance-go/model"
)

// ToDOM function type. It returns the element for a node or an annotation.
// For a node, the content is added to the innermost first child.
type ToDOM = func(*model.Node) *html.Node

func getAttrs(n *model.Node, selectedAttrs []string) []html.Attribute {
	result := []html.Attribute{}
	for _, key := range selectedAttrs {
		result = addAttr(key, n.Get(key), result)
	}
	return result
}

func addAttr(key string, value interface{}, attrs []html.Attribute) []html.Attribute {
	newAttr := html.Attribute{
		Key: key,
	}
	if attrInt, ok := model.ToInt(value); ok {
		newAttr.Val = strconv.Itoa(attrInt)
		return append(attrs, newAttr)
	}
	if attrString, ok := value.(string); ok {
		newAttr.Val = attrString
		return append(attrs, newAttr)
	}
	return attrs
}

func element(a atom.Atom, attrs []html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func defaultDOMGenerator(a atom.Atom, attrs []string) ToDOM {
	return func(n *model.Node) *html.Node {
		return element(a, getAttrs(n, attrs))
	}
}

func defaultCodeBlockDOMGenerator() ToDOM {
	return func(n *model.Node) *html.Node {
		var attrs []html.Attribute
		if language, ok := n.Get("language").(string); ok && language != "" {
			attrs = append(attrs, html.Attribute{Key: "class", Val: "language-" + language})
		}
		outerNode := element(atom.Pre, nil)
		outerNode.AppendChild(element(atom.Code, attrs))
		return outerNode
	}
}

var headingAtoms = []atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

func defaultHeadingDOMGenerator() ToDOM {
	return func(n *model.Node) *html.Node {
		level, _ := model.ToInt(n.Get("level"))
		if level < 1 || level > len(headingAtoms) {
			level = 1
		}
		return element(headingAtoms[level-1], nil)
	}
}

func defaultLinkDOMGenerator() ToDOM {
	return func(n *model.Node) *html.Node {
		attrs := []html.Attribute{}
		attrs = addAttr("href", n.Get("url"), attrs)
		attrs = addAttr("title", n.Get("title"), attrs)
		return element(atom.A, attrs)
	}
}

func defaultListDOMGenerator() ToDOM {
	return func(n *model.Node) *html.Node {
		if ordered, _ := n.Get("ordered").(bool); ordered {
			return element(atom.Ol, nil)
		}
		return element(atom.Ul, nil)
	}
}

// Default ToDOM functions
var (
	defaultToDOM = map[string]ToDOM{
		"paragraph":  defaultDOMGenerator(atom.P, nil),
		"image":      defaultDOMGenerator(atom.Img, []string{"src", "alt"}),
		"list":       defaultListDOMGenerator(),
		"list-item":  defaultDOMGenerator(atom.Li, nil),
		"codeblock":  defaultCodeBlockDOMGenerator(),
		"heading":    defaultHeadingDOMGenerator(),
		"table":      defaultDOMGenerator(atom.Table, nil),
		"table-cell": defaultDOMGenerator(atom.Td, nil),
	}
	defaultAnnotationToDOM = map[string]ToDOM{
		"emphasis": defaultDOMGenerator(atom.Em, nil),
		"strong":   defaultDOMGenerator(atom.Strong, nil),
		"code":     defaultDOMGenerator(atom.Code, nil),
		"link":     defaultLinkDOMGenerator(),
	}
)

// A DOMSerializer knows how to convert the nodes and the annotations of
// various types to DOM nodes.
type DOMSerializer struct {
	// The node serialization functions, by type name.
	Nodes map[string]ToDOM

	// The annotation serialization functions, by type name. Annotations
	// without a function are not rendered.
	Annotations map[string]ToDOM
}

// DefaultSerializer returns a serializer for the basic and list schemas.
func DefaultSerializer() *DOMSerializer {
	d := &DOMSerializer{
		Nodes:       map[string]ToDOM{},
		Annotations: map[string]ToDOM{},
	}
	for name, fn := range defaultToDOM {
		d.Nodes[name] = fn
	}
	for name, fn := range defaultAnnotationToDOM {
		d.Annotations[name] = fn
	}
	return d
}

// SerializeContainer serializes the children of a container, and appends
// them to target. A document node is created when target is nil.
func (d *DOMSerializer) SerializeContainer(graph *model.Graph, containerID string, target *html.Node) (*html.Node, error) {
	container := graph.GetNode(containerID)
	if container == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrNodeNotFound, containerID)
	}
	if !container.IsContainer() {
		return nil, fmt.Errorf("%w: %s is not a container", model.ErrInvalidNode, containerID)
	}
	if target == nil {
		target = &html.Node{
			Type: html.DocumentNode,
		}
	}
	for _, id := range container.ChildIDs() {
		node := graph.GetNode(id)
		if node == nil {
			continue
		}
		if child := d.SerializeNode(graph, node); child != nil {
			target.AppendChild(child)
		}
	}
	return target, nil
}

// SerializeNode serializes a node to a DOM node. It returns nil for the
// nodes without a serialization function.
func (d *DOMSerializer) SerializeNode(graph *model.Graph, node *model.Node) *html.Node {
	domFn := d.Nodes[node.Type.Name]
	if domFn == nil {
		return nil
	}
	topNode := domFn(node)
	contentNode := topNode
	for contentNode.FirstChild != nil {
		contentNode = contentNode.FirstChild
	}
	switch {
	case node.IsText():
		d.SerializeText(graph, node, contentNode)
	case node.IsContainer():
		_, _ = d.SerializeContainer(graph, node.ID, contentNode)
	case node.Type.Name == "table":
		d.serializeTable(graph, node, contentNode)
	}
	return topNode
}

// SerializeText appends the text of a node to target, with its annotations.
func (d *DOMSerializer) SerializeText(graph *model.Graph, node *model.Node, target *html.Node) {
	var annos []*model.Node
	for _, anno := range graph.Annotations().Get(model.Path{node.ID, model.PropContent}) {
		if d.Annotations[anno.Type.Name] != nil {
			annos = append(annos, anno)
		}
	}

	type activeAnno struct {
		anno *model.Node
		top  *html.Node
	}
	var active []activeAnno
	top := target
	for _, frag := range model.Fragments(node.Text(), annos) {
		keep := 0
		for keep < len(active) && keep < len(frag.Annotations) && active[keep].anno == frag.Annotations[keep] {
			keep++
		}
		for keep < len(active) {
			n := len(active)
			top, active = active[n-1].top, active[:n-1]
		}
		for _, anno := range frag.Annotations[len(active):] {
			annoDOM := d.Annotations[anno.Type.Name](anno)
			active = append(active, activeAnno{anno: anno, top: top})
			top.AppendChild(annoDOM)
			top = annoDOM
		}
		top.AppendChild(&html.Node{
			Type: html.TextNode,
			Data: frag.Text,
		})
	}
}

func (d *DOMSerializer) serializeTable(graph *model.Graph, node *model.Node, target *html.Node) {
	rows, _ := node.Get("cells").([]interface{})
	tbody := element(atom.Tbody, nil)
	for _, row := range rows {
		ids, _ := model.PathFrom(row)
		tr := element(atom.Tr, nil)
		for _, id := range ids {
			cell := graph.GetNode(id)
			if cell == nil {
				tr.AppendChild(element(atom.Td, nil))
				continue
			}
			if td := d.SerializeNode(graph, cell); td != nil {
				tr.AppendChild(td)
			}
		}
		tbody.AppendChild(tr)
	}
	target.AppendChild(tbody)
}

// Render serializes the children of a container to an HTML string.
func (d *DOMSerializer) Render(graph *model.Graph, containerID string) (string, error) {
	root, err := d.SerializeContainer(graph, containerID, nil)
	if err != nil {
		return "", err
	}
	buf := new(bytes.Buffer)
	if err := html.Render(buf, root); err != nil {
		return "", err
	}
	return buf.String(), nil
}
