package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/infragraph/pkg/model"
	"github.com/dd0wney/infragraph/pkg/query"
	"github.com/dd0wney/infragraph/pkg/storage"
)

// newTestEngine builds a small reference topology:
//
//	api -> orders -> orders-db, redis
//	orders-db OWNED_BY team-data (lead sam, #team-data)
func newTestEngine(t *testing.T) *query.Engine {
	t.Helper()
	gs := storage.New()

	err := gs.Write(func(tx *storage.WriteTx) error {
		specs := []struct {
			t    model.NodeType
			name string
		}{
			{model.TypeService, "api"},
			{model.TypeService, "orders"},
			{model.TypeDatabase, "orders-db"},
			{model.TypeCache, "redis"},
			{model.TypeTeam, "data"},
		}
		for _, s := range specs {
			node, err := model.NewNode(s.t, s.name, nil)
			if err != nil {
				return err
			}
			if s.name == "data" {
				node.Attrs = map[string]string{"lead": "sam", "slack_channel": "#team-data"}
			}
			if _, err := tx.UpsertNode(node); err != nil {
				return err
			}
		}
		edges := []*model.Edge{
			{From: "service-api", To: "service-orders", Kind: model.KindDependsOn},
			{From: "service-orders", To: "database-orders-db", Kind: model.KindDependsOn},
			{From: "service-orders", To: "cache-redis", Kind: model.KindDependsOn},
			{From: "database-orders-db", To: "team-data", Kind: model.KindOwnedBy},
		}
		for _, e := range edges {
			if _, err := tx.UpsertEdge(e); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	return query.NewEngine(gs, nil, nil)
}

func TestIntentValidate(t *testing.T) {
	cases := []struct {
		name    string
		in      Intent
		wantErr bool
	}{
		{"owner ok", Intent{Op: OpOwner, Params: map[string]string{ParamNodeID: "service-api"}}, false},
		{"owner missing id", Intent{Op: OpOwner}, true},
		{"path ok", Intent{Op: OpPath, Params: map[string]string{ParamFromID: "a", ParamToID: "b"}}, false},
		{"path half", Intent{Op: OpPath, Params: map[string]string{ParamFromID: "a"}}, true},
		{"list missing type", Intent{Op: OpListNodes}, true},
		{"unknown op name", Intent{Op: "make_coffee"}, true},
		{"unknown passes", Intent{Op: OpUnknown}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestKeywordClassifier(t *testing.T) {
	c := NewKeywordClassifier()
	ctx := context.Background()

	cases := []struct {
		question string
		wantOp   Op
		wantKey  string
		wantVal  string
	}{
		{"Who owns orders-db?", OpOwner, ParamNodeID, "orders-db"},
		{"What breaks if redis goes down?", OpBlastRadius, ParamNodeID, "redis"},
		{"what is the blast radius of cache-redis", OpBlastRadius, ParamNodeID, "cache-redis"},
		{"What depends on orders-db?", OpUpstream, ParamNodeID, "orders-db"},
		{"What does orders depend on?", OpDownstream, ParamNodeID, "orders"},
		{"List all databases", OpListNodes, ParamNodeType, "database"},
		{"how does api connect to orders-db", OpPath, ParamFromID, "api"},
		{"What does the data team own?", OpTeamResources, ParamTeam, "data"},
		{"tell me a joke", OpUnknown, "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.question, func(t *testing.T) {
			in, err := c.Classify(ctx, tc.question, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.wantOp, in.Op)
			if tc.wantKey != "" {
				assert.Equal(t, tc.wantVal, in.Param(tc.wantKey))
			}
		})
	}
}

func TestExecutor_Owner(t *testing.T) {
	x := NewExecutor(newTestEngine(t))

	reply := x.Execute(Intent{Op: OpOwner, Params: map[string]string{ParamNodeID: "database-orders-db"}})
	assert.True(t, reply.OK)
	assert.Equal(t, query.ReasonOK, reply.Reason)
	assert.Contains(t, reply.Text, "data")
	assert.Contains(t, reply.Text, "lead: sam")
}

func TestExecutor_ResolvesBareNames(t *testing.T) {
	x := NewExecutor(newTestEngine(t))

	// "orders-db" has no type prefix; the executor should find the
	// database node.
	reply := x.Execute(Intent{Op: OpOwner, Params: map[string]string{ParamNodeID: "orders-db"}})
	assert.True(t, reply.OK)
	assert.Contains(t, reply.Text, "data")
}

func TestExecutor_NoOwner(t *testing.T) {
	x := NewExecutor(newTestEngine(t))

	reply := x.Execute(Intent{Op: OpOwner, Params: map[string]string{ParamNodeID: "cache-redis"}})
	assert.False(t, reply.OK)
	assert.Equal(t, query.ReasonNoOwner, reply.Reason)
	assert.Contains(t, reply.Text, "No owner")
}

func TestExecutor_BlastRadius(t *testing.T) {
	x := NewExecutor(newTestEngine(t))

	reply := x.Execute(Intent{Op: OpBlastRadius, Params: map[string]string{ParamNodeID: "orders-db"}})
	assert.True(t, reply.OK)
	assert.Contains(t, reply.Text, "orders")
	assert.Contains(t, reply.Text, "Teams to notify")
}

func TestExecutor_Path(t *testing.T) {
	x := NewExecutor(newTestEngine(t))

	reply := x.Execute(Intent{Op: OpPath, Params: map[string]string{
		ParamFromID: "service-api", ParamToID: "database-orders-db",
	}})
	assert.True(t, reply.OK)
	assert.Contains(t, reply.Text, "api -> orders -> orders-db")

	reply = x.Execute(Intent{Op: OpPath, Params: map[string]string{
		ParamFromID: "database-orders-db", ParamToID: "service-api",
	}})
	assert.Equal(t, query.ReasonNoPath, reply.Reason)
	assert.Contains(t, reply.Text, "No dependency path")
}

func TestExecutor_NotFound(t *testing.T) {
	x := NewExecutor(newTestEngine(t))

	reply := x.Execute(Intent{Op: OpUpstream, Params: map[string]string{ParamNodeID: "service-ghost"}})
	assert.False(t, reply.OK)
	assert.Equal(t, query.ReasonNotFound, reply.Reason)
}

func TestExecutor_Unknown(t *testing.T) {
	x := NewExecutor(newTestEngine(t))

	reply := x.Execute(Intent{Op: OpUnknown})
	assert.False(t, reply.OK)
	assert.Contains(t, reply.Text, "who owns")
}

// stubClassifier returns a fixed intent or error.
type stubClassifier struct {
	in  Intent
	err error
}

func (s stubClassifier) Classify(context.Context, string, []Turn) (Intent, error) {
	return s.in, s.err
}

func TestResponder_FallsBackOnClassifierError(t *testing.T) {
	engine := newTestEngine(t)
	r := NewResponder(stubClassifier{err: context.DeadlineExceeded}, engine, nil)

	reply := r.Answer(context.Background(), "Who owns orders-db?", nil)
	assert.Equal(t, OpOwner, reply.Op)
	assert.True(t, reply.OK)
}

func TestResponder_UsesPrimaryClassifier(t *testing.T) {
	engine := newTestEngine(t)
	r := NewResponder(stubClassifier{in: Intent{
		Op:     OpListNodes,
		Params: map[string]string{ParamNodeType: "service"},
	}}, engine, nil)

	reply := r.Answer(context.Background(), "anything", nil)
	assert.Equal(t, OpListNodes, reply.Op)
	assert.Contains(t, reply.Text, "api")
}
