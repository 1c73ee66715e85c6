package traverse

import (
	"errors"
	"testing"

	"github.com/dd0wney/infragraph/pkg/model"
	"github.com/dd0wney/infragraph/pkg/storage"
)

// setupGraph builds a store from shorthand node ids ("type/name") and
// edges. Used by all traversal tests.
func setupGraph(t *testing.T, nodes []string, deps [][2]string, owners [][2]string) *storage.GraphStore {
	t.Helper()
	gs := storage.New()

	err := gs.Write(func(tx *storage.WriteTx) error {
		for _, spec := range nodes {
			nodeType, name, ok := splitSpec(spec)
			if !ok {
				t.Fatalf("Bad node spec %q", spec)
			}
			node, err := model.NewNode(nodeType, name, nil)
			if err != nil {
				t.Fatalf("NewNode(%s) failed: %v", spec, err)
			}
			if _, err := tx.UpsertNode(node); err != nil {
				t.Fatalf("UpsertNode(%s) failed: %v", node.ID, err)
			}
		}
		for _, dep := range deps {
			if _, err := tx.UpsertEdge(&model.Edge{From: dep[0], To: dep[1], Kind: model.KindDependsOn}); err != nil {
				t.Fatalf("UpsertEdge(%s -> %s) failed: %v", dep[0], dep[1], err)
			}
		}
		for _, own := range owners {
			if _, err := tx.UpsertEdge(&model.Edge{From: own[0], To: own[1], Kind: model.KindOwnedBy}); err != nil {
				t.Fatalf("UpsertEdge(%s OWNED_BY %s) failed: %v", own[0], own[1], err)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Graph setup failed: %v", err)
	}
	return gs
}

func splitSpec(spec string) (model.NodeType, string, bool) {
	for _, nodeType := range model.AllNodeTypes {
		prefix := string(nodeType) + "/"
		if len(spec) > len(prefix) && spec[:len(prefix)] == prefix {
			return nodeType, spec[len(prefix):], true
		}
	}
	return "", "", false
}

func ids(nodes []*model.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func containsID(nodes []*model.Node, id string) bool {
	for _, n := range nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

func TestDownstream_Chain(t *testing.T) {
	gs := setupGraph(t,
		[]string{"service/api", "service/orders", "database/orders-db"},
		[][2]string{
			{"service-api", "service-orders"},
			{"service-orders", "database-orders-db"},
		}, nil)

	result, err := Downstream(gs, "service-api", model.KindDependsOn, 0)
	if err != nil {
		t.Fatalf("Downstream failed: %v", err)
	}

	if len(result.Nodes) != 2 {
		t.Fatalf("Expected 2 downstream nodes, got %v", ids(result.Nodes))
	}
	if result.Distances["service-orders"] != 1 || result.Distances["database-orders-db"] != 2 {
		t.Errorf("Unexpected distances: %v", result.Distances)
	}
}

func TestDownstream_CycleTerminatesAndExcludesSource(t *testing.T) {
	// A -> B -> C -> A
	gs := setupGraph(t,
		[]string{"service/a", "service/b", "service/c"},
		[][2]string{
			{"service-a", "service-b"},
			{"service-b", "service-c"},
			{"service-c", "service-a"},
		}, nil)

	result, err := Downstream(gs, "service-a", model.KindDependsOn, 0)
	if err != nil {
		t.Fatalf("Downstream on cyclic graph failed: %v", err)
	}

	// The source is never part of its own result set, even via a cycle.
	if containsID(result.Nodes, "service-a") {
		t.Errorf("Source must be excluded, got %v", ids(result.Nodes))
	}
	if len(result.Nodes) != 2 {
		t.Errorf("Expected {service-b, service-c}, got %v", ids(result.Nodes))
	}
}

func TestUpstream_Dependents(t *testing.T) {
	// api and worker both depend on orders-db (worker transitively).
	gs := setupGraph(t,
		[]string{"service/api", "service/worker", "service/orders", "database/orders-db"},
		[][2]string{
			{"service-api", "database-orders-db"},
			{"service-worker", "service-orders"},
			{"service-orders", "database-orders-db"},
		}, nil)

	result, err := Upstream(gs, "database-orders-db", model.KindDependsOn, 0)
	if err != nil {
		t.Fatalf("Upstream failed: %v", err)
	}

	want := map[string]bool{"service-api": true, "service-orders": true, "service-worker": true}
	if len(result.Nodes) != len(want) {
		t.Fatalf("Expected 3 dependents, got %v", ids(result.Nodes))
	}
	for _, node := range result.Nodes {
		if !want[node.ID] {
			t.Errorf("Unexpected dependent %s", node.ID)
		}
	}
}

func TestWalk_MaxDepth(t *testing.T) {
	gs := setupGraph(t,
		[]string{"service/a", "service/b", "service/c", "service/d"},
		[][2]string{
			{"service-a", "service-b"},
			{"service-b", "service-c"},
			{"service-c", "service-d"},
		}, nil)

	result, err := Walk(gs, "service-a", WalkOptions{Kind: model.KindDependsOn, Direction: DirectionOut, MaxDepth: 2})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(result.Nodes) != 2 {
		t.Errorf("Depth 2 should reach b and c only, got %v", ids(result.Nodes))
	}
	if containsID(result.Nodes, "service-d") {
		t.Error("service-d is at depth 3 and must be excluded")
	}
}

func TestWalk_NoEdgesIsEmptyNotError(t *testing.T) {
	gs := setupGraph(t, []string{"service/lonely"}, nil, nil)

	result, err := Downstream(gs, "service-lonely", model.KindDependsOn, 0)
	if err != nil {
		t.Fatalf("Walk on isolated node must succeed: %v", err)
	}
	if len(result.Nodes) != 0 {
		t.Errorf("Expected empty result, got %v", ids(result.Nodes))
	}
}

func TestWalk_NotFound(t *testing.T) {
	gs := setupGraph(t, []string{"service/a"}, nil, nil)

	_, err := Upstream(gs, "service-ghost", model.KindDependsOn, 0)
	if !errors.Is(err, storage.ErrNodeNotFound) {
		t.Errorf("Expected ErrNodeNotFound, got %v", err)
	}
}

func TestWalk_KindFilter(t *testing.T) {
	gs := setupGraph(t,
		[]string{"service/a", "database/b", "team/core"},
		[][2]string{{"service-a", "database-b"}},
		[][2]string{{"service-a", "team-core"}})

	result, err := Downstream(gs, "service-a", model.KindDependsOn, 0)
	if err != nil {
		t.Fatalf("Downstream failed: %v", err)
	}
	if containsID(result.Nodes, "team-core") {
		t.Error("OWNED_BY edges must not be followed on a DEPENDS_ON walk")
	}
}
