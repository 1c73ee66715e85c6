package connectors

import (
	"github.com/dd0wney/infragraph/pkg/model"
)

// KubernetesConnector parses Kubernetes manifests. Deployments and
// Services become k8s_deployment / k8s_service nodes; other kinds are
// ignored. Manifests carry no explicit dependency information, so this
// connector emits nodes only.
type KubernetesConnector struct{}

func NewKubernetesConnector() *KubernetesConnector {
	return &KubernetesConnector{}
}

func (c *KubernetesConnector) Name() string {
	return "kubernetes"
}

func (c *KubernetesConnector) CanHandle(filename string, doc map[string]any) bool {
	_, hasKind := doc["kind"]
	_, hasMetadata := doc["metadata"]
	return hasKind && hasMetadata
}

func (c *KubernetesConnector) Parse(doc map[string]any) (model.FactBatch, error) {
	var batch model.FactBatch

	kind := stringOf(doc["kind"])
	metadata := mapOf(doc["metadata"])
	spec := mapOf(doc["spec"])

	name := stringOf(metadata["name"])
	if kind == "" || name == "" {
		return batch, nil
	}

	namespace := stringOf(metadata["namespace"])
	if namespace == "" {
		namespace = "default"
	}

	switch kind {
	case "Deployment":
		attrs := map[string]any{
			"namespace": namespace,
			"replicas":  spec["replicas"],
			"labels":    metadata["labels"],
		}
		// A nil slice would flatten to the JSON literal "null"; only set
		// collection attributes when there is something to record.
		if containers := deploymentContainers(spec); len(containers) > 0 {
			attrs["containers"] = containers
		}
		node, err := model.NewNode(model.TypeK8sDeployment, name, model.FlattenAttrs(attrs))
		if err != nil {
			return model.FactBatch{}, err
		}
		batch.Nodes = append(batch.Nodes, node)

	case "Service":
		serviceType := stringOf(spec["type"])
		if serviceType == "" {
			serviceType = "ClusterIP"
		}
		attrs := map[string]any{
			"namespace":    namespace,
			"service_type": serviceType,
			"selector":     spec["selector"],
		}
		if ports := servicePorts(spec); len(ports) > 0 {
			attrs["ports"] = ports
		}
		node, err := model.NewNode(model.TypeK8sService, name, model.FlattenAttrs(attrs))
		if err != nil {
			return model.FactBatch{}, err
		}
		batch.Nodes = append(batch.Nodes, node)
	}

	return batch, nil
}

func deploymentContainers(spec map[string]any) []any {
	podSpec := mapOf(mapOf(spec["template"])["spec"])

	var containers []any
	for _, raw := range sliceOf(podSpec["containers"]) {
		container := mapOf(raw)

		var ports []any
		for _, rawPort := range sliceOf(container["ports"]) {
			ports = append(ports, mapOf(rawPort)["containerPort"])
		}

		entry := map[string]any{
			"name":  container["name"],
			"image": container["image"],
		}
		if len(ports) > 0 {
			entry["ports"] = ports
		}
		containers = append(containers, entry)
	}
	return containers
}

func servicePorts(spec map[string]any) []any {
	var ports []any
	for _, raw := range sliceOf(spec["ports"]) {
		port := mapOf(raw)
		ports = append(ports, map[string]any{
			"port":       port["port"],
			"targetPort": port["targetPort"],
			"protocol":   port["protocol"],
		})
	}
	return ports
}
