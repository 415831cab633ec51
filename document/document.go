// Package document provides the Document, the entry point of the editing
// core: it owns the node graph and its indexes, runs the transactions on a
// stage, keeps the undo and redo history, and notifies the changes to its
// listeners.
package document

import (
	"go.uber.org/zap"

	"github.com/cozy/substance-go/model"
	"github.com/cozy/substance-go/transform"
)

// ChangeInfo is given to the change listeners with each change.
type ChangeInfo struct {
	// Replay is true for the changes made by Undo and Redo: the editor can
	// restore its state from the After state of the change.
	Replay bool
	// Info is the data given when the transaction was saved.
	Info map[string]interface{}
}

// ChangeListener is called after each change of the document.
type ChangeListener func(change *transform.DocumentChange, info ChangeInfo)

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger of the document. It is a no-op logger by
// default.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithHistoryLimit keeps at most n changes in the undo history. 0 means no
// limit.
func WithHistoryLimit(n int) Option {
	return func(d *Document) {
		if n >= 0 {
			d.historyLimit = n
		}
	}
}

// Document is a graph of nodes with transactions and an undo history.
//
// A Document is not safe for concurrent use.
type Document struct {
	schema *model.Schema
	graph  *model.Graph
	stage  *transform.Stage

	done    []*transform.DocumentChange
	undone  []*transform.DocumentChange
	version int

	historyLimit int
	logger       *zap.Logger

	listeners    map[int]ChangeListener
	nextListener int
	proxies      map[string]EventProxy
}

// New creates an empty document for the given schema.
func New(schema *model.Schema, opts ...Option) *Document {
	d := &Document{
		schema:    schema,
		graph:     model.NewGraph(schema),
		logger:    zap.NewNop(),
		listeners: map[int]ChangeListener{},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.stage = transform.NewStage(d.graph, d)
	d.proxies = map[string]EventProxy{
		"path": NewPathEventProxy(),
	}
	return d
}

// Schema returns the schema of the document.
func (d *Document) Schema() *model.Schema { return d.schema }

// Graph returns the primary graph. It must only be read.
func (d *Document) Graph() *model.Graph { return d.graph }

// Stage returns the stage where the transactions are run.
func (d *Document) Stage() *transform.Stage { return d.stage }

// Version is incremented by each change applied to the document.
func (d *Document) Version() int { return d.version }

// IsTransacting returns true while a transaction is open.
func (d *Document) IsTransacting() bool { return d.stage.IsTransacting() }

// Done returns the changes that can be undone, the most recent last.
func (d *Document) Done() []*transform.DocumentChange {
	return append([]*transform.DocumentChange(nil), d.done...)
}

// Undone returns the changes that can be redone, the most recent last.
func (d *Document) Undone() []*transform.DocumentChange {
	return append([]*transform.DocumentChange(nil), d.undone...)
}

// Get returns the node for a path of length 1, or the value of a property.
func (d *Document) Get(path model.Path) interface{} {
	return d.graph.Get(path)
}

// GetNode returns the node with the given id, or nil.
func (d *Document) GetNode(id string) *model.Node {
	return d.graph.GetNode(id)
}

// Contains returns true if the document has a node with this id.
func (d *Document) Contains(id string) bool {
	return d.graph.Contains(id)
}

// Annotations returns the annotation index of the primary graph.
func (d *Document) Annotations() *model.AnnotationIndex {
	return d.graph.Annotations()
}

// ContainerAnnotations returns the container annotation index of the
// primary graph.
func (d *Document) ContainerAnnotations() *model.ContainerAnnotationIndex {
	return d.graph.ContainerAnnotations()
}
