// Package connectors turns raw configuration documents into fact batches.
// Each connector understands one dialect; the registry picks the first one
// whose predicate matches a decoded document. Registration is static
// configuration: the default set is fixed at construction, no reflection.
package connectors

import (
	"strings"

	"github.com/dd0wney/infragraph/pkg/model"
)

// Connector parses one configuration dialect into graph facts.
type Connector interface {
	// Name identifies the connector in logs and batch sources.
	Name() string
	// CanHandle reports whether this connector understands the document.
	CanHandle(filename string, doc map[string]any) bool
	// Parse extracts a fact batch from the document.
	Parse(doc map[string]any) (model.FactBatch, error)
}

// Registry holds an ordered list of connectors. Order matters: the first
// match wins, mirroring how a document claimed by one dialect is never
// offered to the next.
type Registry struct {
	connectors []Connector
}

// NewRegistry creates a registry with the given connectors.
func NewRegistry(connectors ...Connector) *Registry {
	return &Registry{connectors: connectors}
}

// DefaultRegistry returns the standard connector set.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewTeamsConnector(),
		NewDockerComposeConnector(),
		NewKubernetesConnector(),
	)
}

// Match returns the first connector that can handle the document, or nil.
func (r *Registry) Match(filename string, doc map[string]any) Connector {
	for _, c := range r.connectors {
		if c.CanHandle(filename, doc) {
			return c
		}
	}
	return nil
}

// Connectors returns the registered connectors in match order.
func (r *Registry) Connectors() []Connector {
	return r.connectors
}

// inferResourceType guesses a node type from naming and image conventions:
// "-db" suffixed names and relational/document images are databases, redis
// is a cache, everything else is a service.
func inferResourceType(name, image string) model.NodeType {
	if strings.HasSuffix(name, "-db") {
		return model.TypeDatabase
	}

	image = strings.ToLower(image)
	for _, db := range []string{"postgres", "mysql", "mongo"} {
		if strings.Contains(image, db) {
			return model.TypeDatabase
		}
	}

	if strings.Contains(image, "redis") || strings.HasPrefix(name, "redis") {
		return model.TypeCache
	}

	return model.TypeService
}

// stringOf returns v as a string if it is one, else "".
func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

// mapOf returns v as a map if it is one, else nil.
func mapOf(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// sliceOf returns v as a slice if it is one, else nil.
func sliceOf(v any) []any {
	s, _ := v.([]any)
	return s
}
