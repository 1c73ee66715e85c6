package connectors

import (
	"github.com/dd0wney/infragraph/pkg/model"
)

// TeamsConnector parses team ownership files:
//
//	teams:
//	  - name: payments
//	    lead: ada
//	    slack_channel: "#payments"
//	    owns: [payment-service, payments-db]
//
// Each team becomes a team node; each owned resource becomes a node of its
// inferred type plus an OWNED_BY edge. Resource nodes are emitted so
// ownership files can be ingested before (or without) the file defining
// the resource itself.
type TeamsConnector struct{}

func NewTeamsConnector() *TeamsConnector {
	return &TeamsConnector{}
}

func (c *TeamsConnector) Name() string {
	return "teams"
}

func (c *TeamsConnector) CanHandle(filename string, doc map[string]any) bool {
	_, hasTeams := doc["teams"]
	return hasTeams
}

func (c *TeamsConnector) Parse(doc map[string]any) (model.FactBatch, error) {
	var batch model.FactBatch

	for _, raw := range sliceOf(doc["teams"]) {
		team := mapOf(raw)
		teamName := stringOf(team["name"])
		if teamName == "" {
			continue
		}

		teamNode, err := model.NewNode(model.TypeTeam, teamName, model.FlattenAttrs(map[string]any{
			"lead":               team["lead"],
			"slack_channel":      team["slack_channel"],
			"pagerduty_schedule": team["pagerduty_schedule"],
		}))
		if err != nil {
			return model.FactBatch{}, err
		}
		batch.Nodes = append(batch.Nodes, teamNode)

		for _, rawResource := range sliceOf(team["owns"]) {
			resourceName := stringOf(rawResource)
			if resourceName == "" {
				continue
			}

			resourceType := inferResourceType(resourceName, "")
			resourceNode, err := model.NewNode(resourceType, resourceName, nil)
			if err != nil {
				return model.FactBatch{}, err
			}

			batch.Nodes = append(batch.Nodes, resourceNode)
			batch.Edges = append(batch.Edges, &model.Edge{
				From: resourceNode.ID,
				To:   teamNode.ID,
				Kind: model.KindOwnedBy,
			})
		}
	}

	return batch, nil
}
