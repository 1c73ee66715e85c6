package storage

import (
	"github.com/dd0wney/infragraph/pkg/model"
)

// ReadTx is a read-only view of the graph, valid only inside GraphStore.Read.
type ReadTx struct {
	gs *GraphStore
}

// GetNode retrieves a node by id.
func (tx *ReadTx) GetNode(id string) (*model.Node, error) {
	node, exists := tx.gs.nodes[id]
	if !exists {
		return nil, nodeError("GetNode", id, ErrNodeNotFound)
	}
	return node.Clone(), nil
}

// HasNode reports whether a node id exists.
func (tx *ReadTx) HasNode(id string) bool {
	_, exists := tx.gs.nodes[id]
	return exists
}

// Outgoing returns the edges leaving id, optionally filtered by kind
// (empty kind matches all). Order is edge insertion order.
func (tx *ReadTx) Outgoing(id string, kind model.EdgeKind) []*model.Edge {
	return tx.collect(tx.gs.outgoing[id], kind)
}

// Incoming returns the edges arriving at id, optionally filtered by kind.
func (tx *ReadTx) Incoming(id string, kind model.EdgeKind) []*model.Edge {
	return tx.collect(tx.gs.incoming[id], kind)
}

func (tx *ReadTx) collect(keys []model.EdgeKey, kind model.EdgeKind) []*model.Edge {
	var edges []*model.Edge
	for _, key := range keys {
		if kind != "" && key.Kind != kind {
			continue
		}
		if edge, exists := tx.gs.edges[key]; exists {
			edges = append(edges, edge.Clone())
		}
	}
	return edges
}

// NodesByType returns all nodes of the given type, ordered by id.
func (tx *ReadTx) NodesByType(t model.NodeType) []*model.Node {
	ids := sortedIDs(tx.gs.nodesByType[t])
	nodes := make([]*model.Node, 0, len(ids))
	for _, id := range ids {
		if node, exists := tx.gs.nodes[id]; exists {
			nodes = append(nodes, node.Clone())
		}
	}
	return nodes
}

// NodeCount returns the number of nodes in the snapshot.
func (tx *ReadTx) NodeCount() int {
	return len(tx.gs.nodes)
}

// WriteTx is an exclusive view of the graph, valid only inside
// GraphStore.Write. Its upserts are the only way graph state changes;
// nothing here ever deletes a node or edge.
type WriteTx struct {
	gs *GraphStore
}

// UpsertNode inserts the node or, if the id already exists, shallow-merges
// its attributes (new values win) without touching relationships. The
// stored type is immutable: an upsert whose type conflicts fails with
// ErrTypeConflict. Returns true when a new node was created.
func (tx *WriteTx) UpsertNode(node *model.Node) (bool, error) {
	if err := node.Validate(); err != nil {
		return false, err
	}

	existing, exists := tx.gs.nodes[node.ID]
	if !exists {
		clone := node.Clone()
		clone.Attrs = model.NormalizeAttrs(clone.Attrs)
		tx.gs.nodes[node.ID] = clone
		tx.gs.nodesByType[node.Type] = append(tx.gs.nodesByType[node.Type], node.ID)
		return true, nil
	}

	if existing.Type != node.Type {
		return false, nodeError("UpsertNode", node.ID, ErrTypeConflict)
	}

	if len(node.Attrs) > 0 {
		if existing.Attrs == nil {
			existing.Attrs = make(map[string]string, len(node.Attrs))
		}
		for k, v := range node.Attrs {
			existing.Attrs[k] = v
		}
	}
	if node.Source != "" {
		existing.Source = node.Source
	}
	return false, nil
}

// UpsertEdge inserts the edge or, if the identity triple already exists,
// overwrites its attributes. Both endpoints must already be present;
// dangling edges fail with ErrEndpointMissing. Returns true when a new
// edge was created.
func (tx *WriteTx) UpsertEdge(edge *model.Edge) (bool, error) {
	if err := edge.Validate(); err != nil {
		return false, err
	}

	key := edge.Key()
	if _, exists := tx.gs.nodes[edge.From]; !exists {
		return false, edgeError("UpsertEdge", key.String(), ErrEndpointMissing)
	}
	if _, exists := tx.gs.nodes[edge.To]; !exists {
		return false, edgeError("UpsertEdge", key.String(), ErrEndpointMissing)
	}

	if existing, exists := tx.gs.edges[key]; exists {
		existing.Attrs = model.NormalizeAttrs(edge.Attrs)
		return false, nil
	}

	clone := edge.Clone()
	clone.Attrs = model.NormalizeAttrs(clone.Attrs)
	tx.gs.edges[key] = clone
	tx.gs.outgoing[edge.From] = append(tx.gs.outgoing[edge.From], key)
	tx.gs.incoming[edge.To] = append(tx.gs.incoming[edge.To], key)
	return true, nil
}

// HasNode reports whether a node id exists.
func (tx *WriteTx) HasNode(id string) bool {
	_, exists := tx.gs.nodes[id]
	return exists
}
