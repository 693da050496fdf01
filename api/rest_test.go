package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	provinspector "github.com/dbis-ilm/streamvizzard-provinspector"
	"github.com/dbis-ilm/streamvizzard-provinspector/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.MemoryAdapter) {
	t.Helper()

	adapter := storage.NewMemoryAdapter()
	database, err := storage.NewProvGraphDatabase(context.Background(), adapter)
	require.NoError(t, err)

	return NewServer(provinspector.New(database)), adapter
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	request := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"ok"`)
	assert.Contains(t, recorder.Body.String(), "goVersion")
}

func TestEventIngestion(t *testing.T) {
	server, adapter := newTestServer(t)

	t.Run("initialize accepts change lines", func(t *testing.T) {
		body := `{"uniqueID":"i-1","updateType":"OperatorCreation","opID":7,"opName":"map","opData":{"lr":0.1}}`
		request := httptest.NewRequest(http.MethodPost, "/initialize", strings.NewReader(body))
		recorder := httptest.NewRecorder()
		server.Handler().ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.NotEmpty(t, adapter.Nodes())
	})

	t.Run("events accepts a debug step", func(t *testing.T) {
		body := `{"uniqueStepID":"s-1","timeStamp":1700000000,"branchID":0,"stepID":0,"parentBranchID":null,
			"uniqueOpID":7,"opName":"map","stepType":"ON_OP_EXECUTED",
			"metrics":[{"name":"loss","value":0.7}],"updates":null}`
		request := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
		recorder := httptest.NewRecorder()
		server.Handler().ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
	})

	t.Run("malformed events are rejected", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"stepType":"NONSENSE"}`))
		recorder := httptest.NewRecorder()
		server.Handler().ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestClearAndQuery(t *testing.T) {
	server, adapter := newTestServer(t)

	body := `{"uniqueID":"i-1","updateType":"OperatorCreation","opID":7,"opName":"map","opData":{}}`
	request := httptest.NewRequest(http.MethodPost, "/initialize", strings.NewReader(body))
	server.Handler().ServeHTTP(httptest.NewRecorder(), request)
	require.NotEmpty(t, adapter.Nodes())

	t.Run("clear empties the graph", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/clear", nil)
		recorder := httptest.NewRecorder()
		server.Handler().ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.Empty(t, adapter.Nodes())
	})

	t.Run("query on an empty graph returns an empty cursor", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/query",
			strings.NewReader(`{"query":"MATCH (n) RETURN n"}`))
		request.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()
		server.Handler().ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"records":[]`)
	})

	t.Run("empty query is rejected", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"query":""}`))
		request.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()
		server.Handler().ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
