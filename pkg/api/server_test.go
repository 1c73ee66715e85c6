package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/infragraph/pkg/health"
	"github.com/dd0wney/infragraph/pkg/intent"
	"github.com/dd0wney/infragraph/pkg/metrics"
	"github.com/dd0wney/infragraph/pkg/model"
	"github.com/dd0wney/infragraph/pkg/query"
	"github.com/dd0wney/infragraph/pkg/storage"
)

// newTestServer builds a server over a small topology:
//
//	api -> orders -> orders-db
//	orders-db OWNED_BY team-data
func newTestServer(t *testing.T) *Server {
	t.Helper()
	gs := storage.New()

	err := gs.Write(func(tx *storage.WriteTx) error {
		for _, spec := range []struct {
			t    model.NodeType
			name string
		}{
			{model.TypeService, "api"},
			{model.TypeService, "orders"},
			{model.TypeDatabase, "orders-db"},
			{model.TypeTeam, "data"},
		} {
			node, err := model.NewNode(spec.t, spec.name, nil)
			if err != nil {
				return err
			}
			if _, err := tx.UpsertNode(node); err != nil {
				return err
			}
		}
		for _, edge := range []*model.Edge{
			{From: "service-api", To: "service-orders", Kind: model.KindDependsOn},
			{From: "service-orders", To: "database-orders-db", Kind: model.KindDependsOn},
			{From: "database-orders-db", To: "team-data", Kind: model.KindOwnedBy},
		} {
			if _, err := tx.UpsertEdge(edge); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	registry := metrics.NewRegistry()
	engine := query.NewEngine(gs, nil, registry)
	checker := health.NewChecker()
	checker.RegisterReadiness("store", health.StoreCheck(gs))
	checker.RegisterLiveness("process", func() health.Check {
		return health.Check{Status: health.StatusHealthy}
	})

	return NewServer(Options{
		Engine:    engine,
		Responder: intent.NewResponder(nil, engine, nil),
		Checker:   checker,
		Store:     gs,
		Metrics:   registry,
	})
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestGetNode(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/nodes/service-api", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var result query.NodeResult
	decode(t, rec, &result)
	assert.True(t, result.OK)
	assert.Equal(t, "api", result.Node.Name)
}

func TestGetNode_NotFound(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/nodes/service-ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var result query.NodeResult
	decode(t, rec, &result)
	assert.False(t, result.OK)
	assert.Equal(t, query.ReasonNotFound, result.Reason)
}

func TestGetNode_InvalidID(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/v1/nodes/Service-API", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpstream(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/nodes/database-orders-db/upstream", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var result query.NodesResult
	decode(t, rec, &result)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, 1, result.Depth["service-orders"])
	assert.Equal(t, 2, result.Depth["service-api"])
}

func TestUpstream_DepthLimited(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/nodes/database-orders-db/upstream?depth=1", "")
	var result query.NodesResult
	decode(t, rec, &result)
	assert.Equal(t, 1, result.Count)
}

func TestUpstream_BadKind(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/v1/nodes/service-api/upstream?kind=LIKES", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownstream(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/nodes/service-api/downstream", "")
	var result query.NodesResult
	decode(t, rec, &result)
	assert.Equal(t, 2, result.Count)
}

func TestOwner_NoOwnerIsAnswered(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/nodes/service-api/owner", "")
	// A missing owner is an answer, not an error.
	assert.Equal(t, http.StatusOK, rec.Code)

	var result query.NodeResult
	decode(t, rec, &result)
	assert.Equal(t, query.ReasonNoOwner, result.Reason)
	assert.Nil(t, result.Node)
}

func TestOwner(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/nodes/database-orders-db/owner", "")
	var result query.NodeResult
	decode(t, rec, &result)
	assert.True(t, result.OK)
	assert.Equal(t, "team-data", result.Node.ID)
}

func TestBlastRadius(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/nodes/database-orders-db/blast-radius", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var result query.BlastRadiusResult
	decode(t, rec, &result)
	assert.Len(t, result.Impacted, 2)
	require.Len(t, result.Teams, 1)
	assert.Equal(t, "team-data", result.Teams[0].ID)
}

func TestPath(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/path?from=service-api&to=database-orders-db", "")
	var result query.PathResult
	decode(t, rec, &result)
	assert.True(t, result.OK)
	assert.Equal(t, 2, result.Hops)
}

func TestPath_NoPathIsAnswered(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/path?from=database-orders-db&to=service-api", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var result query.PathResult
	decode(t, rec, &result)
	assert.Equal(t, query.ReasonNoPath, result.Reason)
}

func TestPath_MissingParams(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/v1/path?from=service-api", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListNodes(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/nodes?type=service", "")
	var result query.NodesResult
	decode(t, rec, &result)
	assert.Equal(t, 2, result.Count)

	rec = do(t, s, http.MethodGet, "/api/v1/nodes?type=mainframe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/nodes", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTeamResources(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/teams/team-data/resources", "")
	var result query.NodesResult
	decode(t, rec, &result)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, "database-orders-db", result.Nodes[0].ID)
}

func TestStatistics(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/statistics", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	decode(t, rec, &body)
	assert.EqualValues(t, 4, body["nodes"])
	assert.EqualValues(t, 3, body["edges"])
}

func TestChat(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/chat", `{"message":"Who owns orders-db?"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var reply intent.Reply
	decode(t, rec, &reply)
	assert.True(t, reply.OK)
	assert.Contains(t, reply.Text, "data")
}

func TestChat_BadBody(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/chat", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/chat", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health/ready", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	// Generate one request so counters exist.
	do(t, s, http.MethodGet, "/api/v1/nodes/service-api", "")

	rec := do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "infragraph_")
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/statistics", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/statistics", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodOptions, "/api/v1/nodes/service-api", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
