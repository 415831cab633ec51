// Package basic defines the node types of a basic article: a body container
// with paragraphs, headings, code blocks, images and tables, and the usual
// annotations. Its specs can be reused in other schemas.
package basic

import "github.com/cozy/substance-go/model"

// Name and Version of the schema built by NewSchema.
const (
	Name    = "substance-article"
	Version = "1.0.0"
)

// Nodes are the specs for the nodes defined in this schema.
var Nodes = []*model.NodeSpec{
	// The container holding the blocks of the document, in reading order.
	{Name: "container", Kind: model.KindContainer, Content: "block*"},

	// A plain paragraph.
	{Name: "paragraph", Kind: model.KindText, Group: "block"},

	// A heading, with a level attribute that should hold the number 1 to 6.
	{Name: "heading", Kind: model.KindText, Group: "block", Properties: map[string]*model.PropertySpec{
		"level": {Type: model.TypeNumber, Default: 1},
	}},

	// A code listing. The language is optional.
	{Name: "codeblock", Kind: model.KindText, Group: "block", Properties: map[string]*model.PropertySpec{
		"language": {Type: model.TypeString, Optional: true},
	}},

	// An image block. alt defaults to the empty string.
	{Name: "image", Kind: model.KindNode, Group: "block", Properties: map[string]*model.PropertySpec{
		"src": {Type: model.TypeString},
		"alt": {Type: model.TypeString, Default: ""},
	}},

	// A table: cells holds the rows, each row being an array of ids of
	// table-cell nodes.
	{Name: "table", Kind: model.KindNode, Group: "block", Properties: map[string]*model.PropertySpec{
		"cells": {Type: model.TypeArray, Default: []interface{}{}},
	}},

	// The text of a table cell.
	{Name: "table-cell", Kind: model.KindText},

	// The base type of the annotations on a text property.
	{Name: "annotation", Kind: model.KindAnnotation},

	// Strong emphasis, rendered in bold.
	{Name: "strong", Parent: "annotation", Inclusive: true},

	// Emphasis, rendered in italic.
	{Name: "emphasis", Parent: "annotation", Inclusive: true},

	// Code font.
	{Name: "code", Parent: "annotation", Inclusive: true},

	// A link. Has url and title attributes. Typing at the end of a link
	// doesn't extend it.
	{Name: "link", Parent: "annotation", Properties: map[string]*model.PropertySpec{
		"url":   {Type: model.TypeString},
		"title": {Type: model.TypeString, Optional: true},
	}},

	// The base type of the annotations spanning several nodes.
	{Name: "container-annotation", Kind: model.KindContainerAnnotation},

	// A comment on a range of the document.
	{Name: "comment", Parent: "container-annotation", Properties: map[string]*model.PropertySpec{
		"author": {Type: model.TypeString, Default: ""},
		"text":   {Type: model.TypeString, Default: ""},
	}},
}

// NewSchema returns a new schema with the nodes of this package, followed by
// the extra node specs.
func NewSchema(extra ...*model.NodeSpec) (*model.Schema, error) {
	specs := make([]*model.NodeSpec, 0, len(Nodes)+len(extra))
	specs = append(specs, Nodes...)
	specs = append(specs, extra...)
	return model.NewSchema(Name, Version, specs...)
}
