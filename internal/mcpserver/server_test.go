package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NassimMahmoudi/mcp-server/internal/domain"
	"github.com/NassimMahmoudi/mcp-server/internal/metrics"
	"github.com/NassimMahmoudi/mcp-server/internal/normalize"
	searchMock "github.com/NassimMahmoudi/mcp-server/internal/search/mock"
	"github.com/NassimMahmoudi/mcp-server/internal/service"
)

// recordingService captures the query it was called with.
type recordingService struct {
	last domain.SearchQuery
	out  []any
}

func (r *recordingService) SearchDocuments(_ context.Context, q domain.SearchQuery) []any {
	r.last = q
	return r.out
}

func newTestServer(t *testing.T, body string, m *metrics.Metrics) (*Server, *searchMock.Client) {
	t.Helper()
	fetcher := searchMock.New().WithBody(body)
	svc := service.NewSearchService(service.SearchServiceDeps{
		Fetcher:    fetcher,
		Normalizer: normalize.New(zap.NewNop(), m),
		Logger:     zap.NewNop(),
		Metrics:    m,
	})
	return New(Config{}, svc, zap.NewNop(), m), fetcher
}

func connect(t *testing.T, srv *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := srv.MCP().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })

	return cs
}

func callSearch(t *testing.T, cs *mcp.ClientSession, args map[string]any) []map[string]any {
	t.Helper()

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolSearchDocuments,
		Arguments: args,
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content should be text")

	var docs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &docs))
	return docs
}

func TestServer_ListTools(t *testing.T) {
	srv, _ := newTestServer(t, `[]`, nil)
	cs := connect(t, srv)

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, res.Tools, 1)

	tool := res.Tools[0]
	assert.Equal(t, ToolSearchDocuments, tool.Name)
	assert.NotEmpty(t, tool.Description)

	schema, err := json.Marshal(tool.InputSchema)
	require.NoError(t, err)
	assert.Contains(t, string(schema), `"query"`)
	assert.Contains(t, string(schema), `"limit"`)
}

func TestServer_SearchDocuments(t *testing.T) {
	srv, fetcher := newTestServer(t,
		`{"result":{"svcA":{"documents":[{"id":"x","position":2,"document":{"title":"A","text":["L1",null,"L2"]}}]}}}`,
		nil,
	)
	cs := connect(t, srv)

	docs := callSearch(t, cs, map[string]any{"query": "indexing", "limit": 5})

	require.Len(t, docs, 1)
	assert.Equal(t, "x", docs[0]["id"])
	assert.Equal(t, "A", docs[0]["title"])
	assert.Equal(t, "text/markdown", docs[0]["content_type"])
	assert.Equal(t, "L1\nL2", docs[0]["content"])
	assert.Equal(t, map[string]any{"position": float64(2), "fieldCount": nil}, docs[0]["meta"])

	assert.Equal(t, "indexing", fetcher.LastRequest.Query)
	assert.Equal(t, 5, fetcher.LastRequest.Limit)
}

func TestServer_DefaultLimit(t *testing.T) {
	svc := &recordingService{out: []any{}}
	srv := New(Config{}, svc, zap.NewNop(), nil)
	cs := connect(t, srv)

	callSearch(t, cs, map[string]any{"query": "q"})
	assert.Equal(t, domain.SearchQuery{Text: "q", Limit: 20}, svc.last)

	callSearch(t, cs, map[string]any{"query": "q", "limit": 0})
	assert.Equal(t, 0, svc.last.Limit)
}

func TestServer_ConfiguredDefaultLimit(t *testing.T) {
	svc := &recordingService{out: []any{}}
	srv := New(Config{DefaultLimit: 3}, svc, zap.NewNop(), nil)
	cs := connect(t, srv)

	callSearch(t, cs, map[string]any{"query": "q"})
	assert.Equal(t, 3, svc.last.Limit)
}

func TestServer_EmptyResultIsList(t *testing.T) {
	srv, _ := newTestServer(t, `"garbage"`, nil)
	cs := connect(t, srv)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolSearchDocuments,
		Arguments: map[string]any{"query": "q"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "[]", res.Content[0].(*mcp.TextContent).Text)
}

func TestServer_Healthz(t *testing.T) {
	srv, _ := newTestServer(t, `[]`, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServer_MetricsEndpoint(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	srv, _ := newTestServer(t, `[]`, m)
	m.RecordShape("bare_list")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "search_mcp_payload_shapes_total")
}

func TestServer_NoMetricsEndpointWithoutMetrics(t *testing.T) {
	srv, _ := newTestServer(t, `[]`, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ServeStreamableHTTP(t *testing.T) {
	srv, _ := newTestServer(t, `[{"id":"1","content":"hello"}]`, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	base := "http://" + ln.Addr().String()
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	client := mcp.NewClient(&mcp.Implementation{Name: "http-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(context.Background(), &mcp.StreamableClientTransport{Endpoint: base + "/mcp"}, nil)
	require.NoError(t, err)

	docs := callSearch(t, cs, map[string]any{"query": "hello"})
	require.Len(t, docs, 1)
	assert.Equal(t, "hello", docs[0]["content"])
	cs.Close()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestRecoverer(t *testing.T) {
	srv, _ := newTestServer(t, `[]`, nil)
	h := srv.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
