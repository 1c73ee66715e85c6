package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/dd0wney/infragraph/pkg/model"
)

// GraphStore is the in-memory graph store shared by the upsert engine and
// the traversal engine. Nodes are keyed by their canonical string id, edges
// by their (from, to, kind) triple. Adjacency lists preserve insertion
// order, which gives traversals a deterministic expansion order.
//
// Writers take the write lock for a whole batch; readers take the read lock
// for a whole traversal, so a walk never observes a half-applied batch.
type GraphStore struct {
	nodes       map[string]*model.Node
	edges       map[model.EdgeKey]*model.Edge
	outgoing    map[string][]model.EdgeKey // from-node id -> edge keys, insertion order
	incoming    map[string][]model.EdgeKey // to-node id -> edge keys, insertion order
	nodesByType map[model.NodeType][]string

	mu     sync.RWMutex
	closed bool

	stats Statistics
}

// Statistics tracks store counters. Mutated only under the write lock.
type Statistics struct {
	NodeCount   int
	EdgeCount   int
	TotalMerges int
	LastMergeAt time.Time
}

// New creates an empty graph store.
func New() *GraphStore {
	return &GraphStore{
		nodes:       make(map[string]*model.Node),
		edges:       make(map[model.EdgeKey]*model.Edge),
		outgoing:    make(map[string][]model.EdgeKey),
		incoming:    make(map[string][]model.EdgeKey),
		nodesByType: make(map[model.NodeType][]string),
	}
}

// Read runs fn against a consistent snapshot of the graph. The read lock is
// held for the duration of fn, so multi-step traversals observe a stable
// adjacency structure even while merges are pending.
func (gs *GraphStore) Read(fn func(tx *ReadTx) error) error {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	if gs.closed {
		return ErrStoreClosed
	}
	return fn(&ReadTx{gs: gs})
}

// Write runs fn with exclusive access to the graph. One call corresponds to
// one fact batch: concurrent merges serialize here as whole units.
func (gs *GraphStore) Write(fn func(tx *WriteTx) error) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.closed {
		return ErrStoreClosed
	}

	err := fn(&WriteTx{gs: gs})
	if err == nil {
		gs.stats.TotalMerges++
		gs.stats.LastMergeAt = time.Now()
	}
	return err
}

// GetNode retrieves a single node by id.
func (gs *GraphStore) GetNode(id string) (*model.Node, error) {
	var node *model.Node
	err := gs.Read(func(tx *ReadTx) error {
		var txErr error
		node, txErr = tx.GetNode(id)
		return txErr
	})
	return node, err
}

// NodesByType returns all nodes of the given type, ordered by id.
func (gs *GraphStore) NodesByType(t model.NodeType) ([]*model.Node, error) {
	var nodes []*model.Node
	err := gs.Read(func(tx *ReadTx) error {
		nodes = tx.NodesByType(t)
		return nil
	})
	return nodes, err
}

// Statistics returns a copy of the current store counters.
func (gs *GraphStore) Statistics() Statistics {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	stats := gs.stats
	stats.NodeCount = len(gs.nodes)
	stats.EdgeCount = len(gs.edges)
	return stats
}

// Closed reports whether the store has been shut down.
func (gs *GraphStore) Closed() bool {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.closed
}

// Close marks the store unavailable. Subsequent reads and writes fail with
// ErrStoreClosed.
func (gs *GraphStore) Close() error {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.closed = true
	return nil
}

// sortedIDs returns a sorted copy of a node id slice.
func sortedIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	sort.Strings(out)
	return out
}
