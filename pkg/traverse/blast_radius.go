package traverse

import (
	"sort"

	"github.com/dd0wney/infragraph/pkg/model"
	"github.com/dd0wney/infragraph/pkg/storage"
)

// BlastRadiusResult describes what is affected if the root node becomes
// unavailable: every transitive dependent, plus the teams owning the root
// or any affected dependent.
type BlastRadiusResult struct {
	Root     *model.Node
	Impacted []*model.Node // transitive dependents, BFS discovery order
	Teams    []*model.Node // owning teams of root and dependents, ordered by id
}

// BlastRadius computes the blast radius of id. It is a composed query, not
// a single primitive: an upstream DEPENDS_ON walk ("what depends on the
// thing that failed") joined with the ownership edge of each affected node.
// Both steps run against a single read snapshot.
func BlastRadius(gs *storage.GraphStore, id string) (*BlastRadiusResult, error) {
	var result *BlastRadiusResult
	err := gs.Read(func(tx *storage.ReadTx) error {
		walk, err := walkTx(tx, id, WalkOptions{Kind: model.KindDependsOn, Direction: DirectionIn})
		if err != nil {
			return err
		}

		root, err := tx.GetNode(id)
		if err != nil {
			return err
		}

		teams := make(map[string]*model.Node)
		affected := append([]*model.Node{root}, walk.Nodes...)
		for _, node := range affected {
			owner, err := ownerTx(tx, node.ID)
			if err != nil || owner == nil {
				continue
			}
			teams[owner.ID] = owner
		}

		teamList := make([]*model.Node, 0, len(teams))
		for _, team := range teams {
			teamList = append(teamList, team)
		}
		sort.Slice(teamList, func(i, j int) bool {
			return teamList[i].ID < teamList[j].ID
		})

		result = &BlastRadiusResult{
			Root:     root,
			Impacted: walk.Nodes,
			Teams:    teamList,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
