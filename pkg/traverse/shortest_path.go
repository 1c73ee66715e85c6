package traverse

import (
	"github.com/dd0wney/infragraph/pkg/model"
	"github.com/dd0wney/infragraph/pkg/storage"
)

// ShortestPath finds a minimal-hop path from fromID to toID following edges
// of kind forward. Ties between equal-length paths resolve to the first one
// discovered, which is deterministic because adjacency lists preserve edge
// insertion order.
//
// Returns (nil, nil) when both nodes exist but no path connects them; "no
// path" is an expected outcome, not an error. A missing endpoint is an
// error (storage.ErrNodeNotFound).
func ShortestPath(gs *storage.GraphStore, fromID, toID string, kind model.EdgeKind) ([]*model.Node, error) {
	if kind == "" {
		kind = model.KindDependsOn
	}

	var path []*model.Node
	err := gs.Read(func(tx *storage.ReadTx) error {
		start, err := tx.GetNode(fromID)
		if err != nil {
			return err
		}
		if _, err := tx.GetNode(toID); err != nil {
			return err
		}

		if fromID == toID {
			path = []*model.Node{start}
			return nil
		}

		ids := bfsPath(tx, fromID, toID, kind)
		if ids == nil {
			return nil // no path
		}

		path = make([]*model.Node, 0, len(ids))
		for _, id := range ids {
			node, err := tx.GetNode(id)
			if err != nil {
				return err
			}
			path = append(path, node)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return path, nil
}

// bfsPath runs a forward BFS with a parent map and reconstructs the first
// path that reaches toID. Returns nil when toID is unreachable.
func bfsPath(tx *storage.ReadTx, fromID, toID string, kind model.EdgeKind) []string {
	parent := map[string]string{fromID: fromID}
	queue := []string{fromID}

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		for _, edge := range tx.Outgoing(currentID, kind) {
			neighborID := edge.To
			if _, seen := parent[neighborID]; seen {
				continue
			}
			parent[neighborID] = currentID

			if neighborID == toID {
				return reconstructPath(parent, fromID, toID)
			}
			queue = append(queue, neighborID)
		}
	}

	return nil
}

// reconstructPath walks the parent map back from toID and reverses.
func reconstructPath(parent map[string]string, fromID, toID string) []string {
	path := []string{toID}
	for node := toID; node != fromID; {
		node = parent[node]
		path = append(path, node)
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
