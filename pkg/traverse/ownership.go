package traverse

import (
	"sort"

	"github.com/dd0wney/infragraph/pkg/model"
	"github.com/dd0wney/infragraph/pkg/storage"
)

// Owner returns the team connected to id via a single OWNED_BY edge.
// Returns (nil, nil) when the node exists but has no owner; unowned
// resources are a normal state of the graph.
func Owner(gs *storage.GraphStore, id string) (*model.Node, error) {
	var owner *model.Node
	err := gs.Read(func(tx *storage.ReadTx) error {
		if _, err := tx.GetNode(id); err != nil {
			return err
		}
		var txErr error
		owner, txErr = ownerTx(tx, id)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return owner, nil
}

func ownerTx(tx *storage.ReadTx, id string) (*model.Node, error) {
	for _, edge := range tx.Outgoing(id, model.KindOwnedBy) {
		owner, err := tx.GetNode(edge.To)
		if err != nil {
			continue
		}
		return owner, nil
	}
	return nil, nil
}

// ResourcesOwnedBy returns every node with an OWNED_BY edge pointing at
// teamID, ordered by id.
func ResourcesOwnedBy(gs *storage.GraphStore, teamID string) ([]*model.Node, error) {
	var resources []*model.Node
	err := gs.Read(func(tx *storage.ReadTx) error {
		if _, err := tx.GetNode(teamID); err != nil {
			return err
		}

		for _, edge := range tx.Incoming(teamID, model.KindOwnedBy) {
			node, err := tx.GetNode(edge.From)
			if err != nil {
				continue
			}
			resources = append(resources, node)
		}

		sort.Slice(resources, func(i, j int) bool {
			return resources[i].ID < resources[j].ID
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resources, nil
}
