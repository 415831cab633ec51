package markdown

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/cozy/substance-go/model"
)

// NodeSerializerFunc is the function to serialize a node.
type NodeSerializerFunc func(state *SerializerState, node, parent *model.Node, index int)

// AnnotationSerializerSpec is the serializer info for an annotation.
type AnnotationSerializerSpec struct {
	Open                     interface{} // Can be a string or a func
	Close                    interface{} // Can be a string or a func
	ExpelEnclosingWhitespace bool
	NoEscape                 bool
}

// AnnotationStringFunc computes the opening or closing string of an
// annotation. text is the text covered by the annotation.
type AnnotationStringFunc func(state *SerializerState, anno *model.Node, text string) string

// Serializer is a specification for serializing the content of a container
// as Markdown/CommonMark text.
type Serializer struct {
	Nodes       map[string]NodeSerializerFunc
	Annotations map[string]AnnotationSerializerSpec
}

// NewSerializer constructs a serializer with the given configuration. The
// `nodes` map gives, for each node type, the function that serializes a
// node of this type.
//
// The `annos` map holds, for each annotation type, the strings that should
// appear before and after a piece of text annotated that way, either
// directly or as an AnnotationStringFunc.
//
// To disable character escaping in an annotation, set NoEscape. Such an
// annotation should be the innermost one.
//
// ExpelEnclosingWhitespace moves the whitespace at the boundaries of the
// annotated text outside of the markup. CommonMark does not permit
// enclosing whitespace inside emphasis, see:
// http://spec.commonmark.org/0.26/#example-330
func NewSerializer(nodes map[string]NodeSerializerFunc, annos map[string]AnnotationSerializerSpec) *Serializer {
	return &Serializer{
		Nodes:       nodes,
		Annotations: annos,
	}
}

// Serialize the children of the given container to
// [CommonMark](http://commonmark.org/).
func (s *Serializer) Serialize(graph *model.Graph, containerID string, options ...map[string]interface{}) (string, error) {
	container := graph.GetNode(containerID)
	if container == nil {
		return "", fmt.Errorf("%w: %s", model.ErrNodeNotFound, containerID)
	}
	if !container.IsContainer() {
		return "", fmt.Errorf("%w: %s is not a container", model.ErrInvalidNode, containerID)
	}
	var opts map[string]interface{}
	if len(options) > 0 {
		opts = options[0]
	}
	state := NewSerializerState(graph, s.Nodes, s.Annotations, opts)
	state.RenderContent(container)
	return state.Out, nil
}

func getPropInt(node *model.Node, name string, defaultValue int) int {
	if v, ok := model.ToInt(node.Get(name)); ok {
		return v
	}
	return defaultValue
}

var backticksRegexp = regexp.MustCompile("`{3,}")

// DefaultSerializer is a serializer for the basic and list schemas.
var DefaultSerializer = NewSerializer(map[string]NodeSerializerFunc{
	"codeblock": func(state *SerializerState, node, _parent *model.Node, _index int) {
		fence := "```"
		content := node.Text()
		matches := backticksRegexp.FindAllString(content, -1)
		for _, backticks := range matches {
			if len(backticks) >= len(fence) {
				fence = backticks + "`"
			}
		}

		language, _ := node.Get("language").(string)
		state.Write(fence + language + "\n")
		state.Text(content, false)
		state.EnsureNewLine()
		state.Write(fence)
		state.CloseBlock(node)
	},
	"heading": func(state *SerializerState, node, _parent *model.Node, _index int) {
		level := getPropInt(node, "level", 1)
		state.Write(strings.Repeat("#", level) + " ")
		state.RenderInline(node)
		state.CloseBlock(node)
	},
	"list": func(state *SerializerState, node, _parent *model.Node, _index int) {
		if ordered, _ := node.Get("ordered").(bool); ordered {
			maxW := len(fmt.Sprintf("%d", len(node.ChildIDs())))
			space := strings.Repeat(" ", maxW+2)
			state.RenderList(node, space, func(i int) string {
				nStr := fmt.Sprintf("%d", i+1)
				return strings.Repeat(" ", maxW-len(nStr)) + nStr + ". "
			})
			return
		}
		state.RenderList(node, "  ", func(_ int) string { return "* " })
	},
	"list-item": func(state *SerializerState, node, _parent *model.Node, _index int) {
		state.RenderInline(node)
		state.CloseBlock(node)
	},
	"paragraph": func(state *SerializerState, node, _parent *model.Node, _index int) {
		state.RenderInline(node)
		state.CloseBlock(node)
	},
	"image": func(state *SerializerState, node, _parent *model.Node, _index int) {
		alt, _ := node.Get("alt").(string)
		src, _ := node.Get("src").(string)
		src = strings.ReplaceAll(src, "(", "\\(")
		src = strings.ReplaceAll(src, ")", "\\)")
		state.Write(fmt.Sprintf("![%s](%s)", state.Esc(alt), src))
		state.CloseBlock(node)
	},
	"table": func(state *SerializerState, node, _parent *model.Node, _index int) {
		state.RenderTable(node)
	},
}, map[string]AnnotationSerializerSpec{
	"emphasis": {Open: "*", Close: "*", ExpelEnclosingWhitespace: true},
	"strong":   {Open: "**", Close: "**", ExpelEnclosingWhitespace: true},
	"link": {
		Open: "[",
		Close: AnnotationStringFunc(func(state *SerializerState, anno *model.Node, _text string) string {
			url, _ := anno.Get("url").(string)
			url = strings.ReplaceAll(url, "(", "\\(")
			url = strings.ReplaceAll(url, ")", "\\)")
			url = strings.ReplaceAll(url, `"`, `\"`)
			title, _ := anno.Get("title").(string)
			if title != "" {
				title = " " + state.Quote(title)
			}
			return fmt.Sprintf("](%s%s)", url, title)
		}),
	},
	"code": {
		Open: AnnotationStringFunc(func(_state *SerializerState, _anno *model.Node, text string) string {
			return backticksFor(text, -1)
		}),
		Close: AnnotationStringFunc(func(_state *SerializerState, _anno *model.Node, text string) string {
			return backticksFor(text, 1)
		}),
		NoEscape: true,
	},
})

func backticksFor(text string, side int) string {
	length := 0
	ticks := strings.FieldsFunc(text, func(r rune) bool { return r != '`' })
	for _, t := range ticks {
		if l := len(t); l > length {
			length = l
		}
	}
	result := "`"
	if length > 0 && side > 0 {
		result = " `"
	}
	for i := 0; i < length; i++ {
		result += "`"
	}
	if length > 0 && side < 0 {
		result += " "
	}
	return result
}

// SerializerState is an object used to track state and expose methods related
// to markdown serialization. Instances are passed to node and annotation
// serialization functions.
type SerializerState struct {
	Graph        *model.Graph
	Nodes        map[string]NodeSerializerFunc
	Annotations  map[string]AnnotationSerializerSpec
	Delim        string
	Out          string
	Closed       *model.Node
	AtBlockStart bool
	InTightList  bool
	tightLists   bool
}

// NewSerializerState is the constructor for SerializerState.
//
// Options are the options passed to the serializer.
//
//	tightLists:: ?bool
//	Whether to render lists in a tight style. Defaults to false.
func NewSerializerState(
	graph *model.Graph,
	nodes map[string]NodeSerializerFunc,
	annos map[string]AnnotationSerializerSpec,
	options map[string]interface{},
) *SerializerState {
	tight := false
	if t, ok := options["tightLists"].(bool); ok {
		tight = t
	}
	return &SerializerState{
		Graph:       graph,
		Nodes:       nodes,
		Annotations: annos,
		tightLists:  tight,
	}
}

func (s *SerializerState) flushClose(size ...int) {
	if s.Closed == nil {
		return
	}
	s.EnsureNewLine()
	siz := 2
	if len(size) > 0 {
		siz = size[0]
	}
	if siz > 1 {
		delimMin := strings.TrimRightFunc(s.Delim, unicode.IsSpace)
		for i := 1; i < siz; i++ {
			s.Out += delimMin + "\n"
		}
	}
	s.Closed = nil
}

// WrapBlock renders a block, prefixing each line with `delim`, and the first
// line in `firstDelim`. `node` should be the node that is closed at the end of
// the block, and `f` is a function that renders the content of the block.
func (s *SerializerState) WrapBlock(delim string, firstDelim *string, node *model.Node, f func()) {
	old := s.Delim
	d := delim
	if firstDelim != nil {
		d = *firstDelim
	}
	s.Write(d)
	s.Delim += delim
	f()
	s.Delim = old
	s.CloseBlock(node)
}

func (s *SerializerState) atBlank() bool {
	if len(s.Out) == 0 {
		return true
	}
	return s.Out[len(s.Out)-1] == '\n'
}

// EnsureNewLine ensures the current content ends with a newline.
func (s *SerializerState) EnsureNewLine() {
	if !s.atBlank() {
		s.Out += "\n"
	}
}

// Write prepares the state for writing output (closing closed paragraphs,
// adding delimiters, and so on), and then optionally add content
// (unescaped) to the output.
func (s *SerializerState) Write(content ...string) {
	s.flushClose()
	if s.Delim != "" && s.atBlank() {
		s.Out += s.Delim
	}
	if len(content) > 0 {
		s.Out += content[0]
	}
}

// CloseBlock closes the block for the given node.
func (s *SerializerState) CloseBlock(node *model.Node) {
	s.Closed = node
}

// Text adds the given text to the document. When escape is not `false`, it
// will be escaped.
func (s *SerializerState) Text(text string, escape ...bool) {
	lines := strings.Split(text, "\n")
	esc := true
	if len(escape) > 0 {
		esc = escape[0]
	}
	for i, line := range lines {
		s.Write()
		if esc {
			s.Out += s.Esc(line, s.AtBlockStart)
		} else {
			s.Out += line
		}
		s.AtBlockStart = false
		if i != len(lines)-1 {
			s.Out += "\n"
		}
	}
}

// Render the given node as a block.
func (s *SerializerState) Render(node, parent *model.Node, index int) {
	if fn, ok := s.Nodes[node.Type.Name]; ok {
		fn(s, node, parent, index)
	}
}

// RenderContent renders the children of a container as block nodes.
// Missing children are skipped.
func (s *SerializerState) RenderContent(parent *model.Node) {
	for i, id := range parent.ChildIDs() {
		if node := s.Graph.GetNode(id); node != nil {
			s.Render(node, parent, i)
		}
	}
}

var inlineRegexp = regexp.MustCompile(`^(\s*)(.*?)(\s*)$`)

// RenderInline renders the text of a node with its annotations.
func (s *SerializerState) RenderInline(node *model.Node) {
	s.AtBlockStart = true
	path := model.Path{node.ID, model.PropContent}
	var annos []*model.Node
	for _, anno := range s.Graph.Annotations().Get(path) {
		if _, ok := s.Annotations[anno.Type.Name]; ok {
			annos = append(annos, anno)
		}
	}
	text := node.Text()
	fragments := model.Fragments(text, annos)

	var active []*model.Node
	closeTo := func(keep int) string {
		trailing := ""
		for keep < len(active) {
			anno := active[len(active)-1]
			if s.Annotations[anno.Type.Name].ExpelEnclosingWhitespace {
				trimmed := strings.TrimRight(s.Out, " \t")
				trailing = s.Out[len(trimmed):] + trailing
				s.Out = trimmed
			}
			s.Text(s.annotationString(anno, false, s.annotatedText(anno, text)), false)
			active = active[:len(active)-1]
		}
		return trailing
	}

	for _, frag := range fragments {
		keep := 0
		for keep < len(active) && keep < len(frag.Annotations) && active[keep] == frag.Annotations[keep] {
			keep++
		}
		if trailing := closeTo(keep); trailing != "" {
			s.Text(trailing)
		}
		content := frag.Text
		for len(active) < len(frag.Annotations) {
			anno := frag.Annotations[len(active)]
			if s.Annotations[anno.Type.Name].ExpelEnclosingWhitespace {
				if parts := inlineRegexp.FindStringSubmatch(content); len(parts) == 4 && parts[1] != "" {
					s.Text(parts[1])
					content = content[len(parts[1]):]
				}
			}
			active = append(active, anno)
			s.Text(s.annotationString(anno, true, s.annotatedText(anno, text)), false)
		}
		var inner *model.Node
		if len(active) > 0 {
			inner = active[len(active)-1]
		}
		if inner != nil && s.Annotations[inner.Type.Name].NoEscape {
			s.Text(content, false)
		} else {
			s.Text(content)
		}
	}
	if trailing := closeTo(0); trailing != "" {
		s.Text(trailing)
	}
	s.AtBlockStart = false
}

func (s *SerializerState) annotatedText(anno *model.Node, text string) string {
	slice, err := model.TextSlice(text, anno.StartOffset(), anno.EndOffset())
	if err != nil {
		return ""
	}
	return slice
}

// RenderList renders the children of a list container. `delim` should be the
// extra indentation added to all lines except the first in an item,
// `firstDelim` is a function going from an item index to a delimiter for the
// first line of the item.
func (s *SerializerState) RenderList(node *model.Node, delim string, firstDelim func(i int) string) {
	if s.Closed != nil && s.Closed.Type == node.Type {
		s.flushClose(3)
	} else if s.InTightList {
		s.flushClose(1)
	}

	isTight := s.tightLists
	if t, ok := node.Get("tight").(bool); ok {
		isTight = t
	}
	prevTight := s.InTightList
	s.InTightList = isTight
	for i, id := range node.ChildIDs() {
		child := s.Graph.GetNode(id)
		if child == nil {
			continue
		}
		if i > 0 && isTight {
			s.flushClose(1)
		}
		first := firstDelim(i)
		s.WrapBlock(delim, &first, node, func() { s.Render(child, node, i) })
	}
	s.InTightList = prevTight
}

// RenderTable renders a table as a GFM table, the first row being the
// header.
func (s *SerializerState) RenderTable(node *model.Node) {
	rows, _ := node.Get("cells").([]interface{})
	for i, row := range rows {
		ids, _ := model.PathFrom(row)
		cells := make([]string, len(ids))
		for j, id := range ids {
			if cell := s.Graph.GetNode(id); cell != nil {
				cells[j] = strings.ReplaceAll(s.Esc(cell.Text()), "|", "\\|")
			}
		}
		s.Write("| " + strings.Join(cells, " | ") + " |")
		s.Out += "\n"
		if i == 0 {
			seps := make([]string, len(cells))
			for j := range seps {
				seps[j] = "---"
			}
			s.Write("| " + strings.Join(seps, " | ") + " |")
			s.Out += "\n"
		}
	}
	s.CloseBlock(node)
}

var (
	escRegexp1 = regexp.MustCompile("([`*\\\\~\\[\\]])")
	escRegexp2 = regexp.MustCompile(`(\b_)|(_\b)`)
	escRegexp3 = regexp.MustCompile(`^([#\-*+>])`)
	escRegexp4 = regexp.MustCompile(`^(\s*\d+)\.`)
)

// Esc escapes the given string so that it can safely appear in Markdown
// content. If `startOfLine` is true, also escape characters that have special
// meaning only at the start of the line.
func (s *SerializerState) Esc(str string, startOfLine ...bool) string {
	start := false
	if len(startOfLine) > 0 {
		start = startOfLine[0]
	}
	str = escRegexp1.ReplaceAllString(str, "\\$1")
	str = escRegexp2.ReplaceAllString(str, "\\_")
	if start {
		str = escRegexp3.ReplaceAllString(str, "\\$1")
		str = escRegexp4.ReplaceAllString(str, "$1\\.")
	}
	return str
}

// Quote wraps the string as a quote.
func (s *SerializerState) Quote(str string) string {
	wrap := `()`
	if !strings.Contains(str, `"`) {
		wrap = `""`
	} else if !strings.Contains(str, "'") {
		wrap = "''"
	}
	return wrap[:1] + str + wrap[1:]
}

func (s *SerializerState) annotationString(anno *model.Node, open bool, text string) string {
	info := s.Annotations[anno.Type.Name]
	value := info.Open
	if !open {
		value = info.Close
	}
	switch value := value.(type) {
	case string:
		return value
	case AnnotationStringFunc:
		return value(s, anno, text)
	case func(state *SerializerState, anno *model.Node, text string) string:
		return value(s, anno, text)
	}
	return ""
}
