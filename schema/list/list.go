// Package list exports list-related node specs: a list is a container of
// list items, and a list item is a text node with a nesting level.
package list

import "github.com/cozy/substance-go/model"

var (
	// A list node spec. Has a single attribute, ordered, which determines if
	// the items are numbered, and defaults to false.
	listSpec = model.NodeSpec{
		Name:    "list",
		Kind:    model.KindContainer,
		Group:   "block",
		Content: "list-item*",
		Properties: map[string]*model.PropertySpec{
			"ordered": {Type: model.TypeBool, Default: false},
		},
	}

	// A list item spec. Its level starts at 1.
	listItemSpec = model.NodeSpec{
		Name: "list-item",
		Kind: model.KindText,
		Properties: map[string]*model.PropertySpec{
			"level": {Type: model.TypeNumber, Default: 1},
		},
	}
)

// AddListNodes is a convenience function for adding list-related node specs
// to the specs of a schema. Adds the list as "list" and the list items as
// "list-item".
func AddListNodes(nodes []*model.NodeSpec) []*model.NodeSpec {
	list, item := listSpec, listItemSpec
	result := make([]*model.NodeSpec, len(nodes), len(nodes)+2)
	copy(result, nodes)
	return append(result, &list, &item)
}
