package document

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/cozy/substance-go/model"
	"github.com/cozy/substance-go/transform"
)

// Snapshot is the persisted form of a document: the name and version of its
// schema, and the data of its nodes by id.
type Snapshot struct {
	Schema [2]string                 `json:"schema" cbor:"schema"`
	Nodes  map[string]model.NodeData `json:"nodes" cbor:"nodes"`
}

// ToJSON returns a snapshot of the primary graph.
func (d *Document) ToJSON() Snapshot {
	snap := Snapshot{
		Schema: [2]string{d.schema.Name, d.schema.Version},
		Nodes:  make(map[string]model.NodeData, d.graph.Len()),
	}
	for _, node := range d.graph.NodeList() {
		snap.Nodes[node.ID] = node.ToData()
	}
	return snap
}

// LoadSeed replaces the content of the document by the nodes of a snapshot.
// The history is cleared and the stage is reset. The document is left
// untouched if the seed is invalid.
func (d *Document) LoadSeed(seed Snapshot) error {
	if d.stage.IsTransacting() {
		return fmt.Errorf("%w: can't load a seed during a transaction", transform.ErrIllegalState)
	}
	if seed.Schema[0] != d.schema.Name {
		return fmt.Errorf("%w: the seed is for %q, the document uses %q", ErrSchemaMismatch, seed.Schema[0], d.schema.Name)
	}
	ids := make([]string, 0, len(seed.Nodes))
	for id := range seed.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// Check the seed on a scratch graph first.
	scratch := model.NewGraph(d.schema)
	if err := createAll(scratch, seed.Nodes, ids); err != nil {
		return err
	}
	if err := checkIntegrity(scratch); err != nil {
		return err
	}

	d.graph.Reset()
	if err := createAll(d.graph, seed.Nodes, ids); err != nil {
		return err
	}
	d.stage.Reset()
	d.done = nil
	d.undone = nil
	d.version++
	d.logger.Info("seed loaded", zap.Int("nodes", d.graph.Len()), zap.Int("version", d.version))
	return nil
}

func createAll(g *model.Graph, nodes map[string]model.NodeData, ids []string) error {
	for _, id := range ids {
		data := nodes[id].Clone()
		if data == nil {
			return fmt.Errorf("%w: no data for %s", model.ErrInvalidNode, id)
		}
		if data.ID() == "" {
			data[model.PropID] = id
		} else if data.ID() != id {
			return fmt.Errorf("%w: node %s is stored under %s", model.ErrInvalidNode, data.ID(), id)
		}
		if _, err := g.Create(data); err != nil {
			return err
		}
	}
	return nil
}

// checkIntegrity verifies that the containers only reference existing
// nodes of the types they accept, and that the annotations fit in their
// text.
func checkIntegrity(g *model.Graph) error {
	for _, node := range g.NodeList() {
		switch {
		case node.IsContainer():
			types := make([]*model.NodeType, 0, len(node.ChildIDs()))
			for _, id := range node.ChildIDs() {
				child := g.GetNode(id)
				if child == nil {
					return fmt.Errorf("%w: container %s references missing node %s", ErrIntegrity, node.ID, id)
				}
				types = append(types, child.Type)
			}
			if err := node.Type.ValidContent(types); err != nil {
				return fmt.Errorf("%w: %v", ErrIntegrity, err)
			}
		case node.HasRange():
			text, ok := g.Get(node.Path()).(string)
			if !ok {
				return fmt.Errorf("%w: annotation %s is on %s which is not a text", ErrIntegrity, node.ID, node.Path())
			}
			start, end := node.StartOffset(), node.EndOffset()
			if start < 0 || end < start {
				return fmt.Errorf("%w: annotation %s has an invalid range [%d, %d]", ErrIntegrity, node.ID, start, end)
			}
			if end > model.TextLength(text) {
				return fmt.Errorf("%w: annotation %s ends after the end of %s", ErrIntegrity, node.ID, node.Path())
			}
		case node.HasContainer():
			container := g.GetNode(node.ContainerID())
			if container == nil || !container.IsContainer() {
				return fmt.Errorf("%w: container annotation %s is in missing container %s", ErrIntegrity, node.ID, node.ContainerID())
			}
			anchors := []struct {
				path   model.Path
				offset int
			}{
				{node.StartPath(), node.StartOffset()},
				{node.EndPath(), node.EndOffset()},
			}
			for _, anchor := range anchors {
				text, ok := g.Get(anchor.path).(string)
				if !ok {
					return fmt.Errorf("%w: container annotation %s is anchored on %s which is not a text", ErrIntegrity, node.ID, anchor.path)
				}
				if anchor.offset < 0 || anchor.offset > model.TextLength(text) {
					return fmt.Errorf("%w: container annotation %s has offset %d outside of %s", ErrIntegrity, node.ID, anchor.offset, anchor.path)
				}
			}
			if node.StartPath().Equal(node.EndPath()) && node.EndOffset() < node.StartOffset() {
				return fmt.Errorf("%w: container annotation %s ends before its start", ErrIntegrity, node.ID)
			}
		}
	}
	return nil
}
