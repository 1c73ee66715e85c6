package intent

import (
	"strings"

	"github.com/dd0wney/infragraph/pkg/model"
	"github.com/dd0wney/infragraph/pkg/query"
)

// Reply is one answered question: the operation that ran, its outcome
// code, and the rendered text.
type Reply struct {
	Op     Op           `json:"op"`
	OK     bool         `json:"ok"`
	Reason query.Reason `json:"reason"`
	Text   string       `json:"text"`
}

// Executor runs classified intents against the query engine. Exactly one
// facade operation runs per intent; rendering is deterministic per
// outcome code.
type Executor struct {
	engine *query.Engine
}

// NewExecutor creates an executor over the given engine.
func NewExecutor(engine *query.Engine) *Executor {
	return &Executor{engine: engine}
}

// Execute runs the intent and renders the outcome.
func (x *Executor) Execute(in Intent) Reply {
	switch in.Op {
	case OpOwner:
		result := x.engine.Owner(x.resolveID(in.Param(ParamNodeID)))
		return reply(in.Op, result.Status, renderOwner(result))
	case OpListNodes:
		result := x.engine.ListByType(in.Param(ParamNodeType))
		return reply(in.Op, result.Status, renderNodeList(in.Param(ParamNodeType), result))
	case OpDownstream:
		result := x.engine.Downstream(x.resolveID(in.Param(ParamNodeID)), "", 0)
		return reply(in.Op, result.Status, renderWalk("depends on", result))
	case OpUpstream:
		result := x.engine.Upstream(x.resolveID(in.Param(ParamNodeID)), "", 0)
		return reply(in.Op, result.Status, renderWalk("is depended on by", result))
	case OpBlastRadius:
		result := x.engine.BlastRadius(x.resolveID(in.Param(ParamNodeID)))
		return reply(in.Op, result.Status, renderBlastRadius(result))
	case OpPath:
		result := x.engine.Path(x.resolveID(in.Param(ParamFromID)), x.resolveID(in.Param(ParamToID)), "")
		return reply(in.Op, result.Status, renderPath(result))
	case OpTeamResources:
		teamID := x.resolveTeam(in.Param(ParamTeam))
		result := x.engine.ResourcesOwnedBy(teamID)
		return reply(in.Op, result.Status, renderTeamResources(teamID, result))
	default:
		return Reply{
			Op:     OpUnknown,
			OK:     false,
			Reason: query.ReasonInternal,
			Text: "I can answer questions about ownership, dependencies, blast radius " +
				"and paths between resources. Try \"who owns orders-db?\" or " +
				"\"what breaks if redis fails?\".",
		}
	}
}

func reply(op Op, status query.Status, text string) Reply {
	return Reply{Op: op, OK: status.OK, Reason: status.Reason, Text: text}
}

// typePrefixes recognizes ids that already carry their type.
var typePrefixes = []string{
	"k8s-deployment-", "k8s-service-",
	"service-", "database-", "cache-", "team-",
}

// resolveID maps a possibly bare resource name to a canonical node id.
// Prefixed ids pass through; bare names are tried against each node type
// and the first hit wins. Unresolvable names pass through unchanged so
// the operation reports NOT_FOUND itself.
func (x *Executor) resolveID(raw string) string {
	id := strings.ToLower(strings.TrimSpace(raw))
	for _, prefix := range typePrefixes {
		if strings.HasPrefix(id, prefix) {
			return id
		}
	}
	if x.engine.GetNode(id).OK {
		return id
	}
	for _, t := range model.AllNodeTypes {
		candidate := model.NodeID(t, id)
		if x.engine.GetNode(candidate).OK {
			return candidate
		}
	}
	return id
}

func (x *Executor) resolveTeam(name string) string {
	id := strings.ToLower(strings.TrimSpace(name))
	if strings.HasPrefix(id, "team-") {
		return id
	}
	return model.NodeID(model.TypeTeam, id)
}
