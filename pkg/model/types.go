package model

import (
	"fmt"
	"strings"
)

// NodeType classifies an infrastructure entity.
type NodeType string

const (
	TypeService       NodeType = "service"
	TypeDatabase      NodeType = "database"
	TypeCache         NodeType = "cache"
	TypeTeam          NodeType = "team"
	TypeK8sDeployment NodeType = "k8s_deployment"
	TypeK8sService    NodeType = "k8s_service"
)

// AllNodeTypes lists every recognized node type, in display order.
var AllNodeTypes = []NodeType{
	TypeService,
	TypeDatabase,
	TypeCache,
	TypeTeam,
	TypeK8sDeployment,
	TypeK8sService,
}

// Valid reports whether t is a recognized node type.
func (t NodeType) Valid() bool {
	switch t {
	case TypeService, TypeDatabase, TypeCache, TypeTeam, TypeK8sDeployment, TypeK8sService:
		return true
	}
	return false
}

func (t NodeType) String() string {
	return string(t)
}

// ParseNodeType converts a string to a NodeType, accepting any case.
func ParseNodeType(s string) (NodeType, error) {
	t := NodeType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", &ValidationError{Field: "type", Value: s, Reason: "unknown node type"}
	}
	return t, nil
}

// EdgeKind classifies a directed relationship between two nodes.
type EdgeKind string

const (
	KindDependsOn EdgeKind = "DEPENDS_ON"
	KindOwnedBy   EdgeKind = "OWNED_BY"
)

// Valid reports whether k is a recognized edge kind.
func (k EdgeKind) Valid() bool {
	return k == KindDependsOn || k == KindOwnedBy
}

func (k EdgeKind) String() string {
	return string(k)
}

// ParseEdgeKind converts a string to an EdgeKind, accepting any case.
func ParseEdgeKind(s string) (EdgeKind, error) {
	k := EdgeKind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", &ValidationError{Field: "kind", Value: s, Reason: "unknown edge kind"}
	}
	return k, nil
}

// Node is a typed entity in the graph. ID is globally unique and derived
// from the type and name, so re-ingesting the same logical entity always
// resolves to the same node.
type Node struct {
	ID     string            `json:"id" yaml:"id"`
	Type   NodeType          `json:"type" yaml:"type"`
	Name   string            `json:"name" yaml:"name"`
	Attrs  map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Source string            `json:"source,omitempty" yaml:"source,omitempty"`
}

// Clone creates a deep copy of a node.
func (n *Node) Clone() *Node {
	clone := &Node{
		ID:     n.ID,
		Type:   n.Type,
		Name:   n.Name,
		Source: n.Source,
	}
	if n.Attrs != nil {
		clone.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			clone.Attrs[k] = v
		}
	}
	return clone
}

// Edge is a directed, typed relationship between two nodes. Identity is
// the (From, To, Kind) triple; duplicates collapse on upsert.
type Edge struct {
	From  string            `json:"from" yaml:"from"`
	To    string            `json:"to" yaml:"to"`
	Kind  EdgeKind          `json:"kind" yaml:"kind"`
	Attrs map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// EdgeKey is the identity of an edge.
type EdgeKey struct {
	From string
	To   string
	Kind EdgeKind
}

// Key returns the edge's identity triple.
func (e *Edge) Key() EdgeKey {
	return EdgeKey{From: e.From, To: e.To, Kind: e.Kind}
}

func (k EdgeKey) String() string {
	return fmt.Sprintf("%s-[%s]->%s", k.From, k.Kind, k.To)
}

// Clone creates a deep copy of an edge.
func (e *Edge) Clone() *Edge {
	clone := &Edge{
		From: e.From,
		To:   e.To,
		Kind: e.Kind,
	}
	if e.Attrs != nil {
		clone.Attrs = make(map[string]string, len(e.Attrs))
		for k, v := range e.Attrs {
			clone.Attrs[k] = v
		}
	}
	return clone
}

// FactBatch is the (nodes, edges) output of parsing one configuration
// source. It is the unit of merge: connectors produce batches, the upsert
// engine applies them.
type FactBatch struct {
	Source string
	Nodes  []*Node
	Edges  []*Edge
}

// Empty reports whether the batch carries no facts.
func (b FactBatch) Empty() bool {
	return len(b.Nodes) == 0 && len(b.Edges) == 0
}
