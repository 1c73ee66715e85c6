package storage

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dd0wney/infragraph/pkg/model"
)

func mustUpsertNode(t *testing.T, gs *GraphStore, nodeType model.NodeType, name string) *model.Node {
	t.Helper()
	node, err := model.NewNode(nodeType, name, nil)
	if err != nil {
		t.Fatalf("NewNode(%s, %s) failed: %v", nodeType, name, err)
	}
	err = gs.Write(func(tx *WriteTx) error {
		_, upsertErr := tx.UpsertNode(node)
		return upsertErr
	})
	if err != nil {
		t.Fatalf("UpsertNode(%s) failed: %v", node.ID, err)
	}
	return node
}

func mustUpsertEdge(t *testing.T, gs *GraphStore, from, to string, kind model.EdgeKind) {
	t.Helper()
	err := gs.Write(func(tx *WriteTx) error {
		_, upsertErr := tx.UpsertEdge(&model.Edge{From: from, To: to, Kind: kind})
		return upsertErr
	})
	if err != nil {
		t.Fatalf("UpsertEdge(%s -> %s) failed: %v", from, to, err)
	}
}

func TestUpsertNode_CreateThenUpdate(t *testing.T) {
	gs := New()

	node, _ := model.NewNode(model.TypeService, "orders", map[string]string{"x": "1"})
	var created bool
	gs.Write(func(tx *WriteTx) error {
		created, _ = tx.UpsertNode(node)
		return nil
	})
	if !created {
		t.Fatal("First upsert should create the node")
	}

	// Same id, new attribute value: must update in place, not duplicate.
	update, _ := model.NewNode(model.TypeService, "orders", map[string]string{"x": "2", "y": "3"})
	gs.Write(func(tx *WriteTx) error {
		created, _ = tx.UpsertNode(update)
		return nil
	})
	if created {
		t.Error("Second upsert of the same id must not create")
	}

	stored, err := gs.GetNode("service-orders")
	if err != nil {
		t.Fatalf("GetNode failed: %v", err)
	}
	if stored.Attrs["x"] != "2" || stored.Attrs["y"] != "3" {
		t.Errorf("Expected shallow-merged attrs with new values winning, got %v", stored.Attrs)
	}

	if stats := gs.Statistics(); stats.NodeCount != 1 {
		t.Errorf("Expected exactly one node, got %d", stats.NodeCount)
	}
}

func TestUpsertNode_TypeImmutable(t *testing.T) {
	gs := New()
	mustUpsertNode(t, gs, model.TypeService, "orders")

	conflict := &model.Node{ID: "service-orders", Type: model.TypeDatabase, Name: "orders"}
	err := gs.Write(func(tx *WriteTx) error {
		_, upsertErr := tx.UpsertNode(conflict)
		return upsertErr
	})
	if !errors.Is(err, ErrTypeConflict) {
		t.Errorf("Expected ErrTypeConflict, got %v", err)
	}

	stored, _ := gs.GetNode("service-orders")
	if stored.Type != model.TypeService {
		t.Errorf("Stored type must not change, got %s", stored.Type)
	}
}

func TestUpsertEdge_NoDuplicates(t *testing.T) {
	gs := New()
	a := mustUpsertNode(t, gs, model.TypeService, "a")
	b := mustUpsertNode(t, gs, model.TypeDatabase, "b")

	mustUpsertEdge(t, gs, a.ID, b.ID, model.KindDependsOn)

	// Re-upsert with different attributes: one edge, attributes overwritten.
	err := gs.Write(func(tx *WriteTx) error {
		created, upsertErr := tx.UpsertEdge(&model.Edge{
			From: a.ID, To: b.ID, Kind: model.KindDependsOn,
			Attrs: map[string]string{"via": "tcp"},
		})
		if created {
			t.Error("Identical (from, to, kind) must not create a second edge")
		}
		return upsertErr
	})
	if err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	if stats := gs.Statistics(); stats.EdgeCount != 1 {
		t.Errorf("Expected exactly one edge, got %d", stats.EdgeCount)
	}

	gs.Read(func(tx *ReadTx) error {
		edges := tx.Outgoing(a.ID, model.KindDependsOn)
		if len(edges) != 1 {
			t.Fatalf("Expected 1 outgoing edge, got %d", len(edges))
		}
		if edges[0].Attrs["via"] != "tcp" {
			t.Errorf("Expected overwritten attrs, got %v", edges[0].Attrs)
		}
		return nil
	})
}

func TestUpsertEdge_EndpointMissing(t *testing.T) {
	gs := New()
	a := mustUpsertNode(t, gs, model.TypeService, "a")

	err := gs.Write(func(tx *WriteTx) error {
		_, upsertErr := tx.UpsertEdge(&model.Edge{From: a.ID, To: "database-ghost", Kind: model.KindDependsOn})
		return upsertErr
	})
	if !errors.Is(err, ErrEndpointMissing) {
		t.Errorf("Expected ErrEndpointMissing, got %v", err)
	}
	if stats := gs.Statistics(); stats.EdgeCount != 0 {
		t.Errorf("Dangling edge must not be stored, got %d edges", stats.EdgeCount)
	}
}

func TestNodesByType_OrderedByID(t *testing.T) {
	gs := New()
	mustUpsertNode(t, gs, model.TypeService, "zeta")
	mustUpsertNode(t, gs, model.TypeService, "alpha")
	mustUpsertNode(t, gs, model.TypeDatabase, "orders-db")

	nodes, err := gs.NodesByType(model.TypeService)
	if err != nil {
		t.Fatalf("NodesByType failed: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("Expected 2 services, got %d", len(nodes))
	}
	if nodes[0].ID != "service-alpha" || nodes[1].ID != "service-zeta" {
		t.Errorf("Expected id order [service-alpha service-zeta], got [%s %s]", nodes[0].ID, nodes[1].ID)
	}
}

func TestGetNode_NotFound(t *testing.T) {
	gs := New()
	_, err := gs.GetNode("service-ghost")
	if !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Expected ErrNodeNotFound, got %v", err)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound should classify the error")
	}
}

func TestClosedStore(t *testing.T) {
	gs := New()
	gs.Close()

	if err := gs.Read(func(tx *ReadTx) error { return nil }); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Read on closed store: expected ErrStoreClosed, got %v", err)
	}
	if err := gs.Write(func(tx *WriteTx) error { return nil }); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Write on closed store: expected ErrStoreClosed, got %v", err)
	}
	if !IsUnavailable(ErrStoreClosed) {
		t.Error("IsUnavailable should classify ErrStoreClosed")
	}
}

func TestConcurrentWrite_DisjointBatches(t *testing.T) {
	gs := New()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				name := fmt.Sprintf("svc-%d-%d", worker, i)
				node, _ := model.NewNode(model.TypeService, name, nil)
				gs.Write(func(tx *WriteTx) error {
					_, err := tx.UpsertNode(node)
					return err
				})
			}
		}(w)
	}
	wg.Wait()

	if stats := gs.Statistics(); stats.NodeCount != 200 {
		t.Errorf("Expected 200 nodes from disjoint concurrent writers, got %d", stats.NodeCount)
	}
}

func TestReadSnapshot_Isolation(t *testing.T) {
	gs := New()
	a := mustUpsertNode(t, gs, model.TypeService, "a")
	b := mustUpsertNode(t, gs, model.TypeDatabase, "b")
	mustUpsertEdge(t, gs, a.ID, b.ID, model.KindDependsOn)

	// A returned node is a clone: mutating it must not leak into the store.
	node, _ := gs.GetNode(a.ID)
	node.Attrs = map[string]string{"poison": "true"}
	fresh, _ := gs.GetNode(a.ID)
	if _, ok := fresh.Attrs["poison"]; ok {
		t.Error("Store must hand out clones, not internal pointers")
	}
}
