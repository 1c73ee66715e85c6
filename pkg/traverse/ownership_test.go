package traverse

import (
	"errors"
	"testing"

	"github.com/dd0wney/infragraph/pkg/storage"
)

func TestOwner(t *testing.T) {
	gs := setupGraph(t,
		[]string{"service/payments", "team/payments-team"},
		nil,
		[][2]string{{"service-payments", "team-payments-team"}})

	owner, err := Owner(gs, "service-payments")
	if err != nil {
		t.Fatalf("Owner failed: %v", err)
	}
	if owner == nil || owner.ID != "team-payments-team" {
		t.Errorf("Expected team-payments-team, got %v", owner)
	}
}

func TestOwner_Unowned(t *testing.T) {
	gs := setupGraph(t, []string{"service/orphan"}, nil, nil)

	owner, err := Owner(gs, "service-orphan")
	if err != nil {
		t.Fatalf("Unowned node must not error: %v", err)
	}
	if owner != nil {
		t.Errorf("Expected nil owner, got %v", owner)
	}
}

func TestOwner_NotFound(t *testing.T) {
	gs := setupGraph(t, nil, nil, nil)

	_, err := Owner(gs, "service-ghost")
	if !errors.Is(err, storage.ErrNodeNotFound) {
		t.Errorf("Expected ErrNodeNotFound, got %v", err)
	}
}

func TestResourcesOwnedBy_OrderedByID(t *testing.T) {
	gs := setupGraph(t,
		[]string{"service/zeta", "service/alpha", "database/orders-db", "team/core"},
		nil,
		[][2]string{
			{"service-zeta", "team-core"},
			{"database-orders-db", "team-core"},
			{"service-alpha", "team-core"},
		})

	resources, err := ResourcesOwnedBy(gs, "team-core")
	if err != nil {
		t.Fatalf("ResourcesOwnedBy failed: %v", err)
	}

	want := []string{"database-orders-db", "service-alpha", "service-zeta"}
	got := ids(resources)
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestBlastRadius_Composition(t *testing.T) {
	// a and c depend on b; b owned by team-x, a owned by team-y.
	gs := setupGraph(t,
		[]string{"service/a", "database/b", "service/c", "team/x", "team/y"},
		[][2]string{
			{"service-a", "database-b"},
			{"service-c", "database-b"},
		},
		[][2]string{
			{"database-b", "team-x"},
			{"service-a", "team-y"},
		})

	result, err := BlastRadius(gs, "database-b")
	if err != nil {
		t.Fatalf("BlastRadius failed: %v", err)
	}

	if len(result.Impacted) != 2 {
		t.Fatalf("Expected {service-a, service-c} impacted, got %v", ids(result.Impacted))
	}
	if !containsID(result.Impacted, "service-a") || !containsID(result.Impacted, "service-c") {
		t.Errorf("Wrong impacted set: %v", ids(result.Impacted))
	}

	// Teams: owner of the root (team-x) and owner of each dependent (team-y).
	if len(result.Teams) != 2 {
		t.Fatalf("Expected 2 teams, got %v", ids(result.Teams))
	}
	if result.Teams[0].ID != "team-x" || result.Teams[1].ID != "team-y" {
		t.Errorf("Expected [team-x team-y] (id order), got %v", ids(result.Teams))
	}
}

func TestBlastRadius_NotFound(t *testing.T) {
	gs := setupGraph(t, nil, nil, nil)

	_, err := BlastRadius(gs, "database-ghost")
	if !errors.Is(err, storage.ErrNodeNotFound) {
		t.Errorf("Expected ErrNodeNotFound, got %v", err)
	}
}
