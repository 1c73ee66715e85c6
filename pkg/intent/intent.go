// Package intent turns natural-language questions about the
// infrastructure graph into exactly one facade query. Classification is a
// separate step from execution: the classifier only names the operation
// and its parameters, and the executor runs it against the query engine.
package intent

import "fmt"

// Op names one facade operation the classifier may select.
type Op string

const (
	OpOwner         Op = "get_owner"
	OpListNodes     Op = "list_nodes"
	OpDownstream    Op = "get_downstream_dependencies"
	OpUpstream      Op = "get_upstream_dependents"
	OpBlastRadius   Op = "calculate_blast_radius"
	OpPath          Op = "find_path"
	OpTeamResources Op = "get_team_resources"
	OpUnknown       Op = "unknown"
)

// Parameter keys used in Intent.Params.
const (
	ParamNodeID   = "node_id"
	ParamNodeType = "node_type"
	ParamFromID   = "from_id"
	ParamToID     = "to_id"
	ParamTeam     = "team_name"
)

// Intent is one classified question: the operation to run and its
// parameters.
type Intent struct {
	Op     Op                `json:"tool"`
	Params map[string]string `json:"params"`
}

// Param returns a named parameter or the empty string.
func (in Intent) Param(key string) string {
	if in.Params == nil {
		return ""
	}
	return in.Params[key]
}

// Validate checks that the intent carries the parameters its operation
// needs.
func (in Intent) Validate() error {
	switch in.Op {
	case OpOwner, OpDownstream, OpUpstream, OpBlastRadius:
		if in.Param(ParamNodeID) == "" {
			return fmt.Errorf("%s: missing %s", in.Op, ParamNodeID)
		}
	case OpPath:
		if in.Param(ParamFromID) == "" || in.Param(ParamToID) == "" {
			return fmt.Errorf("%s: missing %s or %s", in.Op, ParamFromID, ParamToID)
		}
	case OpListNodes:
		if in.Param(ParamNodeType) == "" {
			return fmt.Errorf("%s: missing %s", in.Op, ParamNodeType)
		}
	case OpTeamResources:
		if in.Param(ParamTeam) == "" {
			return fmt.Errorf("%s: missing %s", in.Op, ParamTeam)
		}
	case OpUnknown:
		// Nothing to check; the executor renders a help message.
	default:
		return fmt.Errorf("unknown operation %q", in.Op)
	}
	return nil
}
