package query

import (
	"github.com/dd0wney/infragraph/pkg/model"
)

// Reason is a machine-readable outcome code. Reason codes, not free text,
// are the primary failure signal of every facade operation; rendering them
// as prose is the presentation layer's job.
type Reason string

const (
	ReasonOK               Reason = "OK"
	ReasonNotFound         Reason = "NOT_FOUND"
	ReasonNoPath           Reason = "NO_PATH"
	ReasonNoOwner          Reason = "NO_OWNER"
	ReasonInvalidKind      Reason = "INVALID_KIND"
	ReasonInvalidType      Reason = "INVALID_TYPE"
	ReasonStoreUnavailable Reason = "STORE_UNAVAILABLE"
	ReasonInternal         Reason = "INTERNAL"
)

// Status is the success/failure envelope every result carries. Message is
// for debugging only and never the primary signal.
type Status struct {
	OK      bool   `json:"ok"`
	Reason  Reason `json:"reason"`
	Message string `json:"message,omitempty"`
}

func ok() Status {
	return Status{OK: true, Reason: ReasonOK}
}

func fail(reason Reason, message string) Status {
	return Status{OK: false, Reason: reason, Message: message}
}

// NodeResult is the outcome of a single-node lookup (getNode, owner).
type NodeResult struct {
	Status
	Node *model.Node `json:"node,omitempty"`
}

// NodesResult is the outcome of a set-valued operation (upstream,
// downstream, listByType, resourcesOwnedBy).
type NodesResult struct {
	Status
	Nodes []*model.Node  `json:"nodes"`
	Count int            `json:"count"`
	Depth map[string]int `json:"depth,omitempty"` // node id -> hop distance, walks only
}

// PathResult is the outcome of a shortest-path query. Hops is len(Path)-1.
type PathResult struct {
	Status
	Path []*model.Node `json:"path,omitempty"`
	Hops int           `json:"hops"`
}

// BlastRadiusResult is the outcome of a blast-radius query.
type BlastRadiusResult struct {
	Status
	Root     *model.Node   `json:"root,omitempty"`
	Impacted []*model.Node `json:"impacted"`
	Teams    []*model.Node `json:"teams"`
}
