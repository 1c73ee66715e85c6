package model

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var kebabUnsafe = regexp.MustCompile(`[^a-z0-9-]+`)

// NodeID derives the canonical node identifier for a type/name pair:
// lower-kebab "{type}-{name}". The derivation is deterministic so that
// repeated ingestion of the same logical entity is idempotent. The
// convention is public contract: callers construct these ids to query by.
func NodeID(t NodeType, name string) string {
	return kebab(string(t)) + "-" + kebab(name)
}

func kebab(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)
	s = kebabUnsafe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// NewNode validates a proposed type/name combination and constructs a node
// with its canonical id. Pure value construction; no side effects.
func NewNode(t NodeType, name string, attrs map[string]string) (*Node, error) {
	if !t.Valid() {
		return nil, &ValidationError{Field: "type", Value: string(t), Reason: "unknown node type"}
	}
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "name is empty"}
	}
	return &Node{
		ID:    NodeID(t, name),
		Type:  t,
		Name:  name,
		Attrs: NormalizeAttrs(attrs),
	}, nil
}

// Validate checks a node built elsewhere (e.g. decoded from a request or a
// connector) against the model invariants.
func (n *Node) Validate() error {
	if n == nil {
		return &ValidationError{Field: "node", Reason: "node is nil"}
	}
	if strings.TrimSpace(n.ID) == "" {
		return &ValidationError{Field: "id", Reason: "id is empty"}
	}
	if !n.Type.Valid() {
		return &ValidationError{Field: "type", Value: string(n.Type), Reason: "unknown node type"}
	}
	if strings.TrimSpace(n.Name) == "" {
		return &ValidationError{Field: "name", Reason: "name is empty"}
	}
	return nil
}

// Validate checks an edge against the model invariants. Endpoint existence
// is the store's concern, not the model's.
func (e *Edge) Validate() error {
	if e == nil {
		return &ValidationError{Field: "edge", Reason: "edge is nil"}
	}
	if strings.TrimSpace(e.From) == "" {
		return &ValidationError{Field: "from", Reason: "from id is empty"}
	}
	if strings.TrimSpace(e.To) == "" {
		return &ValidationError{Field: "to", Reason: "to id is empty"}
	}
	if !e.Kind.Valid() {
		return &ValidationError{Field: "kind", Value: string(e.Kind), Reason: "unknown edge kind"}
	}
	return nil
}

// NormalizeAttrs drops empty keys and values from an attribute map.
// Returns nil for an effectively empty map so attribute-less nodes
// compare cleanly.
func NormalizeAttrs(attrs map[string]string) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// FlattenAttrs converts a loosely typed metadata map (as produced by YAML
// decoding) into the string attribute map nodes carry. Nil values are
// dropped, scalars are stringified, and anything structured is kept as its
// JSON encoding.
func FlattenAttrs(meta map[string]any) map[string]string {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		if v == nil || k == "" {
			continue
		}
		switch val := v.(type) {
		case string:
			if val == "" {
				continue
			}
			out[k] = val
		case bool, int, int64, float64:
			out[k] = fmt.Sprintf("%v", val)
		default:
			data, err := json.Marshal(val)
			if err != nil {
				continue
			}
			out[k] = string(data)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
