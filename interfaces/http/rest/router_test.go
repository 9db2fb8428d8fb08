package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"grapheditor/infrastructure/config"
	"grapheditor/infrastructure/di"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type errorBody struct {
	Error   bool   `json:"error"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

type viewBody struct {
	SessionID string            `json:"session_id"`
	Elements  []json.RawMessage `json:"elements"`
	Directed  bool              `json:"directed"`
	NextID    string            `json:"next_id"`
	CanUndo   bool              `json:"can_undo"`
	CanRedo   bool              `json:"can_redo"`
}

func testConfig() *config.Config {
	return &config.Config{
		ServerAddress:  ":0",
		Environment:    config.Development,
		LogLevel:       "error",
		HistoryLimit:   50,
		MaxElements:    1000,
		SessionTTL:     time.Hour,
		LayoutScale:    500,
		DocumentStore:  config.DocumentStoreMemory,
		EventPublisher: config.PublisherNone,
		EnableMetrics:  true,
	}
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	container, err := di.InitializeContainer(ctx, testConfig())
	require.NoError(t, err)
	container.Start(ctx)

	server := httptest.NewServer(container.Router)
	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return server
}

func do(t *testing.T, server *httptest.Server, method, path string, body interface{}) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeData(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.True(t, env.Success)
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Error)
	return body
}

func createSession(t *testing.T, server *httptest.Server) string {
	t.Helper()
	id := uuid.New().String()
	resp := do(t, server, http.MethodPost, "/api/sessions", map[string]interface{}{"session_id": id})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return id
}

func TestRouter_Health(t *testing.T) {
	server := newServer(t)

	for _, path := range []string{"/health", "/ready"} {
		resp := do(t, server, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp := do(t, server, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_UnknownRoute(t *testing.T) {
	server := newServer(t)

	resp := do(t, server, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	decodeError(t, resp)
}

func TestRouter_CreateSession(t *testing.T) {
	server := newServer(t)

	tests := []struct {
		name       string
		body       map[string]interface{}
		wantStatus int
		directed   bool
	}{
		{name: "generated id", body: map[string]interface{}{}, wantStatus: http.StatusCreated, directed: true},
		{name: "caller id", body: map[string]interface{}{"session_id": uuid.New().String()}, wantStatus: http.StatusCreated, directed: true},
		{name: "undirected", body: map[string]interface{}{"directed": false}, wantStatus: http.StatusCreated, directed: false},
		{name: "malformed id", body: map[string]interface{}{"session_id": "not-a-uuid"}, wantStatus: http.StatusBadRequest},
		{name: "unknown field", body: map[string]interface{}{"colour": "red"}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, server, http.MethodPost, "/api/sessions", tt.body)
			require.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus != http.StatusCreated {
				decodeError(t, resp)
				return
			}

			var view viewBody
			decodeData(t, resp, &view)
			assert.NotEmpty(t, view.SessionID)
			assert.Equal(t, "/api/sessions/"+view.SessionID, resp.Header.Get("Location"))
			assert.Equal(t, tt.directed, view.Directed)
			assert.Empty(t, view.Elements)
			assert.Equal(t, "1", view.NextID)
		})
	}
}

func TestRouter_DuplicateSessionConflicts(t *testing.T) {
	server := newServer(t)
	id := createSession(t, server)

	resp := do(t, server, http.MethodPost, "/api/sessions", map[string]interface{}{"session_id": id})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRouter_EditAndUndo(t *testing.T) {
	server := newServer(t)
	id := createSession(t, server)
	base := "/api/sessions/" + id

	resp := do(t, server, http.MethodPost, base+"/nodes", map[string]interface{}{"x": 10, "y": 20})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view viewBody
	decodeData(t, resp, &view)
	assert.Len(t, view.Elements, 1)
	assert.Equal(t, "2", view.NextID)
	assert.True(t, view.CanUndo)

	resp = do(t, server, http.MethodPost, base+"/nodes", map[string]interface{}{"x": 30, "y": 40})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, server, http.MethodPost, base+"/edges", map[string]interface{}{"source": "1", "target": "2"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeData(t, resp, &view)
	assert.Len(t, view.Elements, 3)

	resp = do(t, server, http.MethodPost, base+"/undo", map[string]interface{}{"clicks": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeData(t, resp, &view)
	assert.Len(t, view.Elements, 2)
	assert.True(t, view.CanRedo)

	resp = do(t, server, http.MethodPost, base+"/redo", map[string]interface{}{"clicks": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeData(t, resp, &view)
	assert.Len(t, view.Elements, 3)

	resp = do(t, server, http.MethodDelete, base+"/edges/1/2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeData(t, resp, &view)
	assert.Len(t, view.Elements, 2)

	resp = do(t, server, http.MethodPost, base+"/reset", map[string]interface{}{"clicks": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeData(t, resp, &view)
	assert.Empty(t, view.Elements)
	assert.Equal(t, "1", view.NextID)
	assert.False(t, view.CanUndo)
}

func TestRouter_EdgeToMissingNodeIsStale(t *testing.T) {
	server := newServer(t)
	id := createSession(t, server)

	resp := do(t, server, http.MethodPost, "/api/sessions/"+id+"/edges", map[string]interface{}{"source": "1", "target": "9"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, "STALE_REFERENCE", body.Type)
}

func TestRouter_SessionLifecycle(t *testing.T) {
	server := newServer(t)
	id := createSession(t, server)

	resp := do(t, server, http.MethodGet, "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, server, http.MethodDelete, "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, server, http.MethodGet, "/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Type)
}

func TestRouter_GenerateExportAndImport(t *testing.T) {
	server := newServer(t)
	id := createSession(t, server)
	base := "/api/sessions/" + id

	resp := do(t, server, http.MethodPost, base+"/generate", map[string]interface{}{
		"template": "circle_graph",
		"params":   map[string]interface{}{"num_nodes": 3},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view viewBody
	decodeData(t, resp, &view)
	assert.Len(t, view.Elements, 6)

	resp = do(t, server, http.MethodGet, base+"/export?format=json", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	var exported bytes.Buffer
	_, err := exported.ReadFrom(resp.Body)
	require.NoError(t, err)

	other := createSession(t, server)
	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/sessions/"+other+"/import", bytes.NewReader(exported.Bytes()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	importResp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer importResp.Body.Close()
	require.Equal(t, http.StatusOK, importResp.StatusCode)

	decodeData(t, importResp, &view)
	assert.Len(t, view.Elements, 6)
	assert.Equal(t, other, view.SessionID)
}

func TestRouter_UnknownTemplate(t *testing.T) {
	server := newServer(t)
	id := createSession(t, server)

	resp := do(t, server, http.MethodPost, "/api/sessions/"+id+"/generate", map[string]interface{}{"template": "nope"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_SaveAndListDocuments(t *testing.T) {
	server := newServer(t)
	id := createSession(t, server)
	base := "/api/sessions/" + id

	resp := do(t, server, http.MethodPost, base+"/nodes", map[string]interface{}{"x": 1, "y": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, server, http.MethodPost, base+"/save", map[string]interface{}{"name": "first"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, server, http.MethodGet, "/api/documents", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var docs []map[string]interface{}
	decodeData(t, resp, &docs)
	require.Len(t, docs, 1)

	resp = do(t, server, http.MethodGet, "/api/documents/first/revisions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	other := createSession(t, server)
	resp = do(t, server, http.MethodPost, "/api/sessions/"+other+"/open", map[string]interface{}{"name": "first"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view viewBody
	decodeData(t, resp, &view)
	assert.Len(t, view.Elements, 1)

	resp = do(t, server, http.MethodDelete, "/api/documents/first", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, server, http.MethodGet, "/api/documents/first", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_ListTemplates(t *testing.T) {
	server := newServer(t)

	resp := do(t, server, http.MethodGet, "/api/templates", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var templates []struct {
		Name string `json:"name"`
	}
	decodeData(t, resp, &templates)

	var names []string
	for _, tmpl := range templates {
		names = append(names, tmpl.Name)
	}
	assert.Contains(t, strings.Join(names, ","), "circle_graph")
}
