package connectors

import (
	"sort"

	"github.com/dd0wney/infragraph/pkg/model"
)

// DockerComposeConnector parses docker-compose documents. Every service
// entry becomes a node of its inferred type; depends_on entries become
// DEPENDS_ON edges. Dependency targets resolve to the type inferred for
// the target's own definition, so "orders -> orders-db" links to the
// database node, not a phantom service.
type DockerComposeConnector struct{}

func NewDockerComposeConnector() *DockerComposeConnector {
	return &DockerComposeConnector{}
}

func (c *DockerComposeConnector) Name() string {
	return "docker-compose"
}

func (c *DockerComposeConnector) CanHandle(filename string, doc map[string]any) bool {
	_, hasServices := doc["services"]
	return hasServices
}

func (c *DockerComposeConnector) Parse(doc map[string]any) (model.FactBatch, error) {
	var batch model.FactBatch

	services := mapOf(doc["services"])

	names := make([]string, 0, len(services))
	inferred := make(map[string]model.NodeType, len(services))
	for name, rawDef := range services {
		def := mapOf(rawDef)
		inferred[name] = inferResourceType(name, stringOf(def["image"]))
		names = append(names, name)
	}
	// Sorted iteration keeps batch order, and with it edge insertion
	// order in the store, deterministic across runs.
	sort.Strings(names)

	// Two passes: nodes first so dependency edges can resolve the target's
	// inferred type regardless of declaration order.
	for _, name := range names {
		def := mapOf(services[name])

		node, err := model.NewNode(inferred[name], name, model.FlattenAttrs(map[string]any{
			"image":       def["image"],
			"ports":       def["ports"],
			"environment": def["environment"],
			"labels":      def["labels"],
		}))
		if err != nil {
			return model.FactBatch{}, err
		}
		batch.Nodes = append(batch.Nodes, node)
	}

	for _, name := range names {
		def := mapOf(services[name])
		fromID := model.NodeID(inferred[name], name)

		for _, depName := range dependencyNames(def["depends_on"]) {
			depType, known := inferred[depName]
			if !known {
				depType = inferResourceType(depName, "")
			}

			batch.Edges = append(batch.Edges, &model.Edge{
				From: fromID,
				To:   model.NodeID(depType, depName),
				Kind: model.KindDependsOn,
			})
		}
	}

	return batch, nil
}

// dependencyNames handles both compose syntaxes: the short list form and
// the long map form with per-dependency conditions.
func dependencyNames(raw any) []string {
	var names []string
	switch deps := raw.(type) {
	case []any:
		for _, d := range deps {
			if name := stringOf(d); name != "" {
				names = append(names, name)
			}
		}
	case map[string]any:
		for name := range deps {
			if name != "" {
				names = append(names, name)
			}
		}
		sort.Strings(names)
	}
	return names
}
