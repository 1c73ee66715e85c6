package intent

import (
	"fmt"
	"strings"

	"github.com/dd0wney/infragraph/pkg/model"
	"github.com/dd0wney/infragraph/pkg/query"
)

// Rendering is template-based on the outcome code. The same result always
// produces the same text.

func renderOwner(result query.NodeResult) string {
	switch result.Reason {
	case query.ReasonOK:
		owner := result.Node
		var extras []string
		if lead := owner.Attrs["lead"]; lead != "" {
			extras = append(extras, "lead: "+lead)
		}
		if slack := owner.Attrs["slack_channel"]; slack != "" {
			extras = append(extras, "Slack: "+slack)
		}
		if len(extras) > 0 {
			return fmt.Sprintf("Owned by %s (%s).", owner.Name, strings.Join(extras, ", "))
		}
		return fmt.Sprintf("Owned by %s.", owner.Name)
	case query.ReasonNoOwner:
		return "No owner is recorded for that resource."
	default:
		return renderFailure(result.Status)
	}
}

func renderNodeList(nodeType string, result query.NodesResult) string {
	if !result.OK {
		return renderFailure(result.Status)
	}
	if result.Count == 0 {
		return fmt.Sprintf("No %ss found.", nodeType)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d %s(s):\n", result.Count, nodeType)
	for _, node := range result.Nodes {
		fmt.Fprintf(&b, "- %s (%s)\n", node.Name, node.ID)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderWalk(verb string, result query.NodesResult) string {
	if !result.OK {
		return renderFailure(result.Status)
	}
	if result.Count == 0 {
		return "Nothing " + verb + " that resource."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d resource(s):\n", result.Count)
	for _, node := range result.Nodes {
		fmt.Fprintf(&b, "- %s (%s)\n", node.Name, node.Type)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderBlastRadius(result query.BlastRadiusResult) string {
	if !result.OK {
		return renderFailure(result.Status)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Blast radius of %s:\n", result.Root.Name)
	if len(result.Impacted) == 0 {
		b.WriteString("- No other resources are impacted.\n")
	} else {
		fmt.Fprintf(&b, "- %d impacted resource(s): %s\n", len(result.Impacted), nodeNames(result.Impacted))
	}
	if len(result.Teams) > 0 {
		fmt.Fprintf(&b, "- Teams to notify: %s\n", nodeNames(result.Teams))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderPath(result query.PathResult) string {
	switch result.Reason {
	case query.ReasonOK:
		steps := make([]string, len(result.Path))
		for i, node := range result.Path {
			steps[i] = node.Name
		}
		return fmt.Sprintf("Path (%d hop(s)): %s", result.Hops, strings.Join(steps, " -> "))
	case query.ReasonNoPath:
		return "No dependency path connects those resources."
	default:
		return renderFailure(result.Status)
	}
}

func renderTeamResources(teamID string, result query.NodesResult) string {
	if !result.OK {
		return renderFailure(result.Status)
	}
	if result.Count == 0 {
		return fmt.Sprintf("%s owns no recorded resources.", teamID)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s owns %d resource(s):\n", teamID, result.Count)
	for _, node := range result.Nodes {
		fmt.Fprintf(&b, "- %s (%s)\n", node.Name, node.Type)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderFailure(status query.Status) string {
	switch status.Reason {
	case query.ReasonNotFound:
		return "I could not find that resource in the graph."
	case query.ReasonInvalidType:
		return "That is not a resource type I know about."
	case query.ReasonInvalidKind:
		return "That is not a relationship I know about."
	case query.ReasonStoreUnavailable:
		return "The graph is not available right now; try again shortly."
	default:
		return "Something went wrong answering that."
	}
}

func nodeNames(nodes []*model.Node) string {
	names := make([]string, len(nodes))
	for i, node := range nodes {
		names[i] = node.Name
	}
	return strings.Join(names, ", ")
}
