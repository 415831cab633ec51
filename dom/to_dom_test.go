package dom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	. "github.com/cozy/substance-go/dom"
	"github.com/cozy/substance-go/model"
	"github.com/cozy/substance-go/test/builder"
)

var (
	p      = builder.P
	h2     = builder.H2
	pre    = builder.Pre
	li     = builder.Li
	strong = builder.Strong
	em     = builder.Em
	a      = builder.A
	code   = builder.Code
)

func TestRender(t *testing.T) {
	serializer := DefaultSerializer()
	render := func(expected string, nodes ...model.NodeData) {
		t.Helper()
		doc := builder.Doc(nodes...)
		actual, err := serializer.Render(doc.Graph(), builder.BodyID)
		require.NoError(t, err)
		assert.Equal(t, expected, actual)
	}
	path := func(id string) model.Path { return model.Path{id, model.PropContent} }

	// a paragraph
	render("<p>hello</p>", p("p1", "hello"))

	// the article, with its annotations
	doc := builder.Article()
	actual, err := serializer.Render(doc.Graph(), builder.BodyID)
	require.NoError(t, err)
	assert.Equal(t, `<h1>Title</h1><p><strong>Hello</strong> <a href="foo">world</a></p><p>Second <em>paragraph</em></p>`, actual)

	// nested annotations
	render("<p><strong>Hello <em>world</em></strong></p>",
		p("p1", "Hello world"), strong("s1", path("p1"), 0, 11), em("e1", path("p1"), 6, 11))

	// annotations on the same range are nested by type name
	render("<p><code><strong>x</strong></code></p>",
		p("p1", "x"), code("c1", path("p1"), 0, 1), strong("s1", path("p1"), 0, 1))

	// the text is escaped
	render("<p>a &lt;b&gt; &amp; c</p>", p("p1", "a <b> & c"))

	// a heading of level 2
	render("<h2>Sub</h2>", h2("h1", "Sub"))

	// a code block with a language
	block := pre("c1", "x := 1")
	block["language"] = "go"
	render(`<pre><code class="language-go">x := 1</code></pre>`, block)

	// an image
	render(`<img src="a.png" alt=""/>`, builder.Img("i1", "a.png"))

	// lists
	render("<ul><li>one</li><li>two</li></ul>",
		builder.Ul("l1", "i1", "i2"), li("i1", "one"), li("i2", "two"))
	render("<ol><li>one</li></ol>",
		builder.Ol("l1", "i1"), li("i1", "one"))

	// a link with a title
	link := a("l1", path("p1"), 0, 4)
	link["title"] = "Home"
	render(`<p><a href="foo" title="Home">home</a> page</p>`, p("p1", "home page"), link)
}

func TestRenderErrors(t *testing.T) {
	doc := builder.Article()
	_, err := DefaultSerializer().Render(doc.Graph(), "missing")
	assert.ErrorIs(t, err, model.ErrNodeNotFound)
	_, err = DefaultSerializer().Render(doc.Graph(), "p1")
	assert.ErrorIs(t, err, model.ErrInvalidNode)
}

func TestCustomSerializer(t *testing.T) {
	serializer := DefaultSerializer()
	serializer.Nodes["heading"] = func(n *model.Node) *html.Node {
		return &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.H6,
			Data:     "customtag",
			Attr:     []html.Attribute{{Key: "customAttr", Val: "attr_value"}},
		}
	}
	delete(serializer.Annotations, "link")

	doc := builder.Article()
	actual, err := serializer.Render(doc.Graph(), builder.BodyID)
	require.NoError(t, err)
	assert.Equal(t, `<customtag customAttr="attr_value">Title</customtag><p><strong>Hello</strong> world</p><p>Second <em>paragraph</em></p>`, actual)

	// the default serializer is not changed
	assert.NotNil(t, DefaultSerializer().Annotations["link"])
}
