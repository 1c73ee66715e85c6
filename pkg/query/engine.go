// Package query is the fixed facade every external caller goes through:
// the HTTP API, the CLI and the chat intent executor all call these named
// operations and nothing else. No ad-hoc graph query language is exposed.
package query

import (
	"time"

	"github.com/dd0wney/infragraph/pkg/logging"
	"github.com/dd0wney/infragraph/pkg/metrics"
	"github.com/dd0wney/infragraph/pkg/model"
	"github.com/dd0wney/infragraph/pkg/storage"
	"github.com/dd0wney/infragraph/pkg/traverse"
)

// Engine exposes the facade operations over a graph store. It is stateless
// apart from its collaborators and safe for concurrent callers.
type Engine struct {
	store   *storage.GraphStore
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewEngine creates a facade over the given store. logger and registry may
// be nil, in which case logging and metrics are disabled.
func NewEngine(store *storage.GraphStore, logger logging.Logger, registry *metrics.Registry) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Engine{
		store:   store,
		logger:  logger.With(logging.Component("query")),
		metrics: registry,
	}
}

func (e *Engine) record(operation string, reason Reason, start time.Time) {
	elapsed := time.Since(start)
	if e.metrics != nil {
		e.metrics.RecordQuery(operation, string(reason), elapsed)
	}
	e.logger.Debug("query executed",
		logging.Operation(operation),
		logging.Reason(string(reason)),
		logging.Latency(elapsed),
	)
}

// classify maps a store/traversal error to a failure status.
func classify(err error) Status {
	switch {
	case storage.IsUnavailable(err):
		return fail(ReasonStoreUnavailable, err.Error())
	case storage.IsNotFound(err):
		return fail(ReasonNotFound, err.Error())
	default:
		return fail(ReasonInternal, err.Error())
	}
}

// GetNode looks up a single node by id.
func (e *Engine) GetNode(id string) NodeResult {
	start := time.Now()
	node, err := e.store.GetNode(id)
	if err != nil {
		status := classify(err)
		e.record("getNode", status.Reason, start)
		return NodeResult{Status: status}
	}
	e.record("getNode", ReasonOK, start)
	return NodeResult{Status: ok(), Node: node}
}

// Upstream returns the transitive dependents of id: the nodes that break,
// directly or indirectly, when id goes away. maxDepth 0 means unbounded.
func (e *Engine) Upstream(id, kind string, maxDepth int) NodesResult {
	return e.walk("upstream", traverse.DirectionIn, id, kind, maxDepth)
}

// Downstream returns what id depends on, directly or transitively.
func (e *Engine) Downstream(id, kind string, maxDepth int) NodesResult {
	return e.walk("downstream", traverse.DirectionOut, id, kind, maxDepth)
}

func (e *Engine) walk(operation string, direction traverse.Direction, id, kind string, maxDepth int) NodesResult {
	start := time.Now()

	edgeKind, status, invalid := resolveKind(kind)
	if invalid {
		e.record(operation, status.Reason, start)
		return NodesResult{Status: status}
	}

	result, err := traverse.Walk(e.store, id, traverse.WalkOptions{
		Kind:      edgeKind,
		Direction: direction,
		MaxDepth:  maxDepth,
	})
	if err != nil {
		status := classify(err)
		e.record(operation, status.Reason, start)
		return NodesResult{Status: status}
	}

	e.record(operation, ReasonOK, start)
	return NodesResult{
		Status: ok(),
		Nodes:  result.Nodes,
		Count:  len(result.Nodes),
		Depth:  result.Distances,
	}
}

// BlastRadius returns everything affected if id becomes unavailable,
// including the owning teams of each affected node.
func (e *Engine) BlastRadius(id string) BlastRadiusResult {
	start := time.Now()

	result, err := traverse.BlastRadius(e.store, id)
	if err != nil {
		status := classify(err)
		e.record("blastRadius", status.Reason, start)
		return BlastRadiusResult{Status: status}
	}

	e.record("blastRadius", ReasonOK, start)
	return BlastRadiusResult{
		Status:   ok(),
		Root:     result.Root,
		Impacted: result.Impacted,
		Teams:    result.Teams,
	}
}

// Path returns a minimal-hop dependency path between two nodes. An absent
// route is a NO_PATH result, not an error.
func (e *Engine) Path(fromID, toID, kind string) PathResult {
	start := time.Now()

	edgeKind, status, invalid := resolveKind(kind)
	if invalid {
		e.record("path", status.Reason, start)
		return PathResult{Status: status}
	}

	path, err := traverse.ShortestPath(e.store, fromID, toID, edgeKind)
	if err != nil {
		status := classify(err)
		e.record("path", status.Reason, start)
		return PathResult{Status: status}
	}
	if path == nil {
		e.record("path", ReasonNoPath, start)
		return PathResult{Status: fail(ReasonNoPath, "no route between nodes")}
	}

	e.record("path", ReasonOK, start)
	return PathResult{Status: ok(), Path: path, Hops: len(path) - 1}
}

// Owner returns the team owning id. A node without an owner is a NO_OWNER
// result, not an error.
func (e *Engine) Owner(id string) NodeResult {
	start := time.Now()

	owner, err := traverse.Owner(e.store, id)
	if err != nil {
		status := classify(err)
		e.record("owner", status.Reason, start)
		return NodeResult{Status: status}
	}
	if owner == nil {
		e.record("owner", ReasonNoOwner, start)
		return NodeResult{Status: fail(ReasonNoOwner, "no owning team")}
	}

	e.record("owner", ReasonOK, start)
	return NodeResult{Status: ok(), Node: owner}
}

// ListByType returns all nodes of a type, ordered by id.
func (e *Engine) ListByType(nodeType string) NodesResult {
	start := time.Now()

	t, err := model.ParseNodeType(nodeType)
	if err != nil {
		e.record("listByType", ReasonInvalidType, start)
		return NodesResult{Status: fail(ReasonInvalidType, err.Error())}
	}

	nodes, err := e.store.NodesByType(t)
	if err != nil {
		status := classify(err)
		e.record("listByType", status.Reason, start)
		return NodesResult{Status: status}
	}

	e.record("listByType", ReasonOK, start)
	return NodesResult{Status: ok(), Nodes: nodes, Count: len(nodes)}
}

// ResourcesOwnedBy returns every resource owned by teamID, ordered by id.
func (e *Engine) ResourcesOwnedBy(teamID string) NodesResult {
	start := time.Now()

	resources, err := traverse.ResourcesOwnedBy(e.store, teamID)
	if err != nil {
		status := classify(err)
		e.record("resourcesOwnedBy", status.Reason, start)
		return NodesResult{Status: status}
	}

	e.record("resourcesOwnedBy", ReasonOK, start)
	return NodesResult{Status: ok(), Nodes: resources, Count: len(resources)}
}

// resolveKind parses an optional kind parameter. Empty input defaults to
// DEPENDS_ON; an unrecognized kind is an INVALID_KIND failure.
func resolveKind(kind string) (model.EdgeKind, Status, bool) {
	if kind == "" {
		return model.KindDependsOn, Status{}, false
	}
	edgeKind, err := model.ParseEdgeKind(kind)
	if err != nil {
		return "", fail(ReasonInvalidKind, err.Error()), true
	}
	return edgeKind, Status{}, false
}
