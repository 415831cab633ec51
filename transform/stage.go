package transform

import (
	"fmt"

	"github.com/cozy/substance-go/model"
)

// Committer is the document a stage commits its transactions to.
type Committer interface {
	// CommitTransaction replays the operations of a saved transaction on the
	// primary graph, and returns the change recording them.
	CommitTransaction(tx *Transaction) (*DocumentChange, error)
}

// Stage is a shadow copy of the primary graph of a document, where the
// operations of a transaction are applied before being committed. Between
// two transactions, the stage graph mirrors the primary graph.
//
// Only one transaction can be open at a time.
type Stage struct {
	primary     *model.Graph
	graph       *model.Graph
	committer   Committer
	current     *Transaction
	transacting bool
	listeners   map[int]func(tx *Transaction)
	nextID      int
}

// NewStage creates a stage mirroring the primary graph.
func NewStage(primary *model.Graph, committer Committer) *Stage {
	s := &Stage{
		primary:   primary,
		committer: committer,
		listeners: map[int]func(tx *Transaction){},
	}
	s.Reset()
	return s
}

// Graph returns the stage graph.
func (s *Stage) Graph() *model.Graph {
	return s.graph
}

// IsTransacting returns true while a transaction is open and not committed.
func (s *Stage) IsTransacting() bool {
	return s.transacting
}

// Current returns the open transaction, or nil.
func (s *Stage) Current() *Transaction {
	return s.current
}

// OnStart registers a function called when a transaction is started. The
// returned function unregisters it.
func (s *Stage) OnStart(fn func(tx *Transaction)) func() {
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

// Reset makes the stage graph a fresh copy of the primary graph.
func (s *Stage) Reset() {
	s.graph = s.primary.Clone()
}

// Apply replays an operation on the stage graph, to keep it in sync with the
// primary graph. It can't be called during a transaction.
func (s *Stage) Apply(op Operation) error {
	if s.current != nil {
		return fmt.Errorf("%w: the stage can't replay operations during a transaction", ErrIllegalState)
	}
	return op.Apply(s.graph)
}

// StartTransaction opens a transaction. baseVersion is the version of the
// document the transaction is started from: it is checked again on commit.
func (s *Stage) StartTransaction(before State, baseVersion int) (*Transaction, error) {
	if s.current != nil {
		return nil, ErrNestedTransaction
	}
	tx := &Transaction{
		stage:       s,
		before:      before.Clone(),
		baseVersion: baseVersion,
	}
	s.current = tx
	s.transacting = true
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.listeners[id]; ok {
			fn(tx)
		}
	}
	return tx, nil
}

// BeginCommit is called by the committer when it starts to commit the
// transaction: the stage leaves the transacting state, so that the change
// can be applied to the primary graph.
func (s *Stage) BeginCommit(tx *Transaction) error {
	if !s.transacting || s.current != tx {
		return fmt.Errorf("%w: not in a transaction", ErrIllegalState)
	}
	s.transacting = false
	return nil
}

// rollback reverts the operations of an abandoned transaction on the stage
// graph.
func (s *Stage) rollback(ops []Operation) {
	for _, op := range InvertOps(ops) {
		if err := op.Apply(s.graph); err != nil {
			s.Reset()
			return
		}
	}
}

// Transaction records the operations made on the stage graph. It is created
// by Stage.StartTransaction, and Cleanup must be called when it is done,
// even on errors.
type Transaction struct {
	stage       *Stage
	ops         []Operation
	before      State
	after       State
	info        map[string]interface{}
	baseVersion int
	saved       bool
	closed      bool
}

// Before returns the editor state given when the transaction was started.
func (tx *Transaction) Before() State { return tx.before.Clone() }

// After returns the editor state given on save.
func (tx *Transaction) After() State { return tx.after.Clone() }

// Info returns the data given on save.
func (tx *Transaction) Info() map[string]interface{} { return tx.info }

// BaseVersion returns the version of the document when the transaction was
// started.
func (tx *Transaction) BaseVersion() int { return tx.baseVersion }

// Ops returns the recorded operations.
func (tx *Transaction) Ops() []Operation {
	return append([]Operation(nil), tx.ops...)
}

// IsSaved returns true once the transaction has been committed.
func (tx *Transaction) IsSaved() bool { return tx.saved }

// Graph returns the stage graph. It must only be read: the mutations go
// through the methods of the transaction.
func (tx *Transaction) Graph() *model.Graph { return tx.stage.graph }

// Get returns the node or the value at the given path, on the stage.
func (tx *Transaction) Get(path model.Path) interface{} {
	return tx.stage.graph.Get(path)
}

// GetNode returns the node with the given id, on the stage.
func (tx *Transaction) GetNode(id string) *model.Node {
	return tx.stage.graph.GetNode(id)
}

// Contains returns true if the stage has a node with this id.
func (tx *Transaction) Contains(id string) bool {
	return tx.stage.graph.Contains(id)
}

// Annotations returns the annotation index of the stage.
func (tx *Transaction) Annotations() *model.AnnotationIndex {
	return tx.stage.graph.Annotations()
}

// ContainerAnnotations returns the container annotation index of the stage.
func (tx *Transaction) ContainerAnnotations() *model.ContainerAnnotationIndex {
	return tx.stage.graph.ContainerAnnotations()
}

func (tx *Transaction) checkOpen() error {
	if tx.closed || tx.saved {
		return fmt.Errorf("%w: the transaction is closed", ErrIllegalState)
	}
	return nil
}

// Create creates a node on the stage. When the data has no id, a new one is
// generated from the type.
func (tx *Transaction) Create(data model.NodeData) (*model.Node, error) {
	if err := tx.checkOpen(); err != nil {
		return nil, err
	}
	data = data.Clone()
	if data.ID() == "" && data.Type() != "" {
		data[model.PropID] = NewID(data.Type())
	}
	node, err := tx.stage.graph.Create(data)
	if err != nil {
		return nil, err
	}
	tx.ops = append(tx.ops, NewCreateOp(node.ToData()))
	return node, nil
}

// Delete deletes a node from the stage, and returns it. Nothing is recorded
// if there is no such node, and nil is returned.
func (tx *Transaction) Delete(id string) (*model.Node, error) {
	if err := tx.checkOpen(); err != nil {
		return nil, err
	}
	node := tx.stage.graph.GetNode(id)
	if node == nil {
		return nil, nil
	}
	data := node.ToData()
	tx.stage.graph.Delete(id)
	tx.ops = append(tx.ops, NewDeleteOp(data))
	return node, nil
}

// Set replaces the value of a property on the stage, and returns the old
// value.
func (tx *Transaction) Set(path model.Path, value interface{}) (interface{}, error) {
	if err := tx.checkOpen(); err != nil {
		return nil, err
	}
	old, err := tx.stage.graph.Set(path, value)
	if err != nil {
		return nil, err
	}
	tx.ops = append(tx.ops, NewSetOp(path, tx.stage.graph.Get(path), old))
	return old, nil
}

// Update applies a diff to a property on the stage, and returns the applied
// diff.
func (tx *Transaction) Update(path model.Path, diff model.Diff) (model.Diff, error) {
	if err := tx.checkOpen(); err != nil {
		return diff, err
	}
	applied, err := tx.stage.graph.Update(path, diff)
	if err != nil {
		return diff, err
	}
	tx.ops = append(tx.ops, NewUpdateOp(path, applied))
	return applied, nil
}

// Save commits the transaction to the document. It can be called only once.
func (tx *Transaction) Save(after State, info map[string]interface{}) (*DocumentChange, error) {
	if err := tx.checkOpen(); err != nil {
		return nil, err
	}
	tx.after = after.Clone()
	tx.info = info
	change, err := tx.stage.committer.CommitTransaction(tx)
	if err != nil {
		return nil, err
	}
	tx.saved = true
	return change, nil
}

// Cleanup closes the transaction and releases the stage. If the transaction
// has not been saved, its operations are reverted on the stage graph, and
// the document is left untouched. It is safe to call it several times.
func (tx *Transaction) Cleanup() {
	if tx.closed {
		return
	}
	tx.closed = true
	if !tx.saved {
		tx.stage.rollback(tx.ops)
	}
	tx.stage.transacting = false
	tx.stage.current = nil
}
