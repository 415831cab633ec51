// Package builder provides helpers to write the fixtures of the tests: a
// schema with the basic and list nodes, builders for node data, and a
// function to make a document from a list of blocks.
package builder

import (
	"github.com/cozy/substance-go/document"
	"github.com/cozy/substance-go/model"
	"github.com/cozy/substance-go/schema/basic"
	"github.com/cozy/substance-go/schema/list"
)

// BodyID is the id of the container of the documents made by Doc.
const BodyID = "body"

type Spec map[string]interface{}

// BlockBuilder returns the data of a text node.
type BlockBuilder func(id, text string) model.NodeData

// AnnotationBuilder returns the data of an annotation on a text property.
type AnnotationBuilder func(id string, path model.Path, start, end int) model.NodeData

func takeAttrs(data model.NodeData, attrs Spec) model.NodeData {
	for k, v := range attrs {
		if k != "nodeType" {
			data[k] = v
		}
	}
	return data
}

func block(typ string, attrs Spec) BlockBuilder {
	return func(id, text string) model.NodeData {
		return takeAttrs(model.NodeData{
			model.PropID:      id,
			model.PropType:    typ,
			model.PropContent: text,
		}, attrs)
	}
}

func annotation(typ string, attrs Spec) AnnotationBuilder {
	return func(id string, path model.Path, start, end int) model.NodeData {
		return takeAttrs(model.NodeData{
			model.PropID:          id,
			model.PropType:        typ,
			model.PropPath:        []string(path),
			model.PropStartOffset: start,
			model.PropEndOffset:   end,
		}, attrs)
	}
}

// Builders returns a builder for each text and annotation type of the
// schema, by type name, and for each entry of names, which gives the type
// and the attributes of the nodes.
func Builders(schema *model.Schema, names map[string]Spec) map[string]interface{} {
	result := map[string]interface{}{"schema": schema}
	for _, typ := range schema.NodeTypes() {
		switch typ.Kind {
		case model.KindText:
			result[typ.Name] = block(typ.Name, nil)
		case model.KindAnnotation:
			result[typ.Name] = annotation(typ.Name, nil)
		}
	}
	for name, spec := range names {
		typeName, _ := spec["nodeType"].(string)
		typ, ok := schema.NodeType(typeName)
		if !ok {
			continue
		}
		switch typ.Kind {
		case model.KindText:
			result[name] = block(typ.Name, spec)
		case model.KindAnnotation:
			result[name] = annotation(typ.Name, spec)
		}
	}
	return result
}

func newTestSchema() *model.Schema {
	schema, err := basic.NewSchema(list.AddListNodes(nil)...)
	if err != nil {
		panic(err)
	}
	return schema
}

var out = Builders(newTestSchema(), map[string]Spec{
	"p":   {"nodeType": "paragraph"},
	"pre": {"nodeType": "codeblock"},
	"h1":  {"nodeType": "heading", "level": 1},
	"h2":  {"nodeType": "heading", "level": 2},
	"h3":  {"nodeType": "heading", "level": 3},
	"li":  {"nodeType": "list-item"},
	"a":   {"nodeType": "link", "url": "foo"},
	"em":  {"nodeType": "emphasis"},
})

var (
	Schema = out["schema"].(*model.Schema)
	P      = out["p"].(BlockBuilder)
	Pre    = out["pre"].(BlockBuilder)
	H1     = out["h1"].(BlockBuilder)
	H2     = out["h2"].(BlockBuilder)
	H3     = out["h3"].(BlockBuilder)
	Li     = out["li"].(BlockBuilder)
	A      = out["a"].(AnnotationBuilder)
	Em     = out["em"].(AnnotationBuilder)
	Strong = out["strong"].(AnnotationBuilder)
	Code   = out["code"].(AnnotationBuilder)
)

// Img returns the data of an image.
func Img(id, src string) model.NodeData {
	return model.NodeData{model.PropID: id, model.PropType: "image", "src": src}
}

// Ul returns the data of a bullet list with the given items.
func Ul(id string, items ...string) model.NodeData {
	return model.NodeData{model.PropID: id, model.PropType: "list", model.PropNodes: items}
}

// Ol returns the data of an ordered list with the given items.
func Ol(id string, items ...string) model.NodeData {
	data := Ul(id, items...)
	data["ordered"] = true
	return data
}

// Comment returns the data of a comment in the body, from a position in a
// text property to a position in another one.
func Comment(id string, startPath model.Path, startOffset int, endPath model.Path, endOffset int) model.NodeData {
	return model.NodeData{
		model.PropID:          id,
		model.PropType:        "comment",
		model.PropContainer:   BodyID,
		model.PropStartPath:   []string(startPath),
		model.PropStartOffset: startOffset,
		model.PropEndPath:     []string(endPath),
		model.PropEndOffset:   endOffset,
	}
}

// Seed returns the snapshot of a document with a body holding the given
// nodes. Text nodes, images and lists are appended to the body, in order.
// The list items and the annotations are not.
func Seed(nodes ...model.NodeData) document.Snapshot {
	snap := document.Snapshot{
		Schema: [2]string{Schema.Name, Schema.Version},
		Nodes:  map[string]model.NodeData{},
	}
	inList := map[string]bool{}
	for _, data := range nodes {
		if ids, ok := data[model.PropNodes].([]string); ok {
			for _, id := range ids {
				inList[id] = true
			}
		}
	}
	var body []string
	for _, data := range nodes {
		snap.Nodes[data.ID()] = data
		typ, ok := Schema.NodeType(data.Type())
		if !ok || typ.IsAnnotation() || inList[data.ID()] {
			continue
		}
		body = append(body, data.ID())
	}
	snap.Nodes[BodyID] = model.NodeData{
		model.PropID:    BodyID,
		model.PropType:  "container",
		model.PropNodes: body,
	}
	return snap
}

// Doc returns a document loaded with Seed(nodes...). It panics if the nodes
// are invalid.
func Doc(nodes ...model.NodeData) *document.Document {
	return DocWith(nil, nodes...)
}

// DocWith is like Doc, with options for the document.
func DocWith(opts []document.Option, nodes ...model.NodeData) *document.Document {
	doc := document.New(Schema, opts...)
	if err := doc.LoadSeed(Seed(nodes...)); err != nil {
		panic(err)
	}
	return doc
}

// Article returns a small document used by many tests:
//
//	body: [h1, p1, p2]
//	h1 "Title"
//	p1 "Hello world" with strong s1 on "Hello" and link l1 on "world"
//	p2 "Second paragraph" with emphasis e1 on "paragraph"
//	comment c1 from p1:6 to p2:6
func Article() *document.Document {
	return Doc(
		H1("h1", "Title"),
		P("p1", "Hello world"),
		P("p2", "Second paragraph"),
		Strong("s1", model.Path{"p1", "content"}, 0, 5),
		A("l1", model.Path{"p1", "content"}, 6, 11),
		Em("e1", model.Path{"p2", "content"}, 7, 16),
		Comment("c1", model.Path{"p1", "content"}, 6, model.Path{"p2", "content"}, 6),
	)
}
