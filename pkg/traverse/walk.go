package traverse

import (
	"github.com/dd0wney/infragraph/pkg/model"
	"github.com/dd0wney/infragraph/pkg/storage"
)

// Direction selects which way edges are followed during a walk.
type Direction int

const (
	// DirectionOut follows edges from -> to (what the source depends on).
	DirectionOut Direction = iota
	// DirectionIn follows edges to -> from (what depends on the source).
	DirectionIn
)

func (d Direction) String() string {
	if d == DirectionIn {
		return "in"
	}
	return "out"
}

// WalkOptions configures a bounded reachability walk.
type WalkOptions struct {
	Kind      model.EdgeKind // edge kind to follow; defaults to DEPENDS_ON
	Direction Direction
	MaxDepth  int // 0 means unbounded (full transitive closure)
}

// WalkResult holds the reachable set of a walk. The source node is never
// included, even when a cycle leads back to it.
type WalkResult struct {
	SourceID  string
	Nodes     []*model.Node  // BFS discovery order
	Distances map[string]int // node id -> hop count from source
	ByDepth   map[int][]string
}

type walkEntry struct {
	id    string
	depth int
}

// Walk performs a breadth-first reachability walk from sourceID, following
// edges of the configured kind in the configured direction. A visited set
// guarantees each node is expanded at most once, so the walk terminates on
// arbitrary cyclic graphs in O(V+E) of the reachable subgraph.
//
// The whole walk runs against one read snapshot of the store.
func Walk(gs *storage.GraphStore, sourceID string, opts WalkOptions) (*WalkResult, error) {
	var result *WalkResult
	err := gs.Read(func(tx *storage.ReadTx) error {
		var txErr error
		result, txErr = walkTx(tx, sourceID, opts)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// walkTx is the snapshot-scoped walk used by Walk and by composed queries
// that need several traversals over the same snapshot.
func walkTx(tx *storage.ReadTx, sourceID string, opts WalkOptions) (*WalkResult, error) {
	if _, err := tx.GetNode(sourceID); err != nil {
		return nil, err
	}
	if opts.Kind == "" {
		opts.Kind = model.KindDependsOn
	}

	visited := map[string]bool{sourceID: true}
	result := &WalkResult{
		SourceID:  sourceID,
		Distances: make(map[string]int),
		ByDepth:   make(map[int][]string),
	}

	queue := []walkEntry{{id: sourceID, depth: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if opts.MaxDepth > 0 && current.depth >= opts.MaxDepth {
			continue
		}
		nextDepth := current.depth + 1

		for _, neighborID := range neighborIDs(tx, current.id, opts) {
			if visited[neighborID] {
				continue
			}
			visited[neighborID] = true

			node, err := tx.GetNode(neighborID)
			if err != nil {
				// Adjacency entries always reference stored nodes; an id
				// that fails to resolve is skipped rather than fatal.
				continue
			}

			result.Nodes = append(result.Nodes, node)
			result.Distances[neighborID] = nextDepth
			result.ByDepth[nextDepth] = append(result.ByDepth[nextDepth], neighborID)
			queue = append(queue, walkEntry{id: neighborID, depth: nextDepth})
		}
	}

	return result, nil
}

func neighborIDs(tx *storage.ReadTx, id string, opts WalkOptions) []string {
	var ids []string
	if opts.Direction == DirectionOut {
		for _, edge := range tx.Outgoing(id, opts.Kind) {
			ids = append(ids, edge.To)
		}
	} else {
		for _, edge := range tx.Incoming(id, opts.Kind) {
			ids = append(ids, edge.From)
		}
	}
	return ids
}

// Downstream returns every node reachable from id following edges of kind
// forward: the things id depends on, directly or transitively.
func Downstream(gs *storage.GraphStore, id string, kind model.EdgeKind, maxDepth int) (*WalkResult, error) {
	return Walk(gs, id, WalkOptions{Kind: kind, Direction: DirectionOut, MaxDepth: maxDepth})
}

// Upstream returns every node from which id is reachable following edges of
// kind: the things that depend on id, directly or transitively.
func Upstream(gs *storage.GraphStore, id string, kind model.EdgeKind, maxDepth int) (*WalkResult, error) {
	return Walk(gs, id, WalkOptions{Kind: kind, Direction: DirectionIn, MaxDepth: maxDepth})
}
