package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/switchback/pkg/domain"
	"github.com/aretw0/switchback/pkg/runner"
)

func testGraph() *domain.TransitionGraph {
	return &domain.TransitionGraph{
		Version:    "1.0",
		Entrypoint: "deploy",
		StartNode:  "fetch",
		Nodes: []domain.NodeDefinition{
			{Name: "fetch", Module: "nodes.deploy.fetch", Function: "fetch"},
			{Name: "exit.success.done", Module: "nodes.exit.success.done", Function: "done", IsExit: true},
		},
		Transitions: []domain.StateTransition{
			{FromNode: "fetch", FromState: "success::done", ToTarget: "exit.success.done"},
		},
		Options: domain.DefaultGraphOptions(),
	}
}

type fakeHistory struct {
	runs  []string
	steps map[string][]runner.StepRecord
}

func (f *fakeHistory) Runs(context.Context) ([]string, error) { return f.runs, nil }

func (f *fakeHistory) History(_ context.Context, runID string) ([]runner.StepRecord, error) {
	return f.steps[runID], nil
}

func TestHealthz(t *testing.T) {
	handler := NewHandler(testGraph(), "test.yml")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetGraph(t *testing.T) {
	handler := NewHandler(testGraph(), "deploy_20250125.yml")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graph", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var dto graphDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "deploy", dto.Metadata.Entrypoint)
	assert.Equal(t, "deploy_20250125.yml", dto.Metadata.Source)
	require.Len(t, dto.Nodes, 2)
	assert.True(t, dto.Nodes[1].IsExit)
	require.Len(t, dto.Transitions, 1)
	assert.Equal(t, "exit.success.done", dto.Transitions[0].ToTarget)
}

func TestValidateLoaded(t *testing.T) {
	t.Run("valid graph", func(t *testing.T) {
		handler := NewHandler(testGraph(), "test.yml")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/validate", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var report reportDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.True(t, report.IsValid)
	})

	t.Run("broken graph", func(t *testing.T) {
		graph := testGraph()
		graph.StartNode = "ghost"
		handler := NewHandler(graph, "test.yml")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/validate", nil))

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var report reportDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.False(t, report.IsValid)
		assert.Equal(t, "E001", report.Errors[0].Code)
	})
}

func TestValidateBody(t *testing.T) {
	handler := NewHandler(testGraph(), "test.yml")

	t.Run("posted graph validated", func(t *testing.T) {
		body := `
version: "1.0"
entrypoint: tiny
nodes:
  a:
    module: nodes.tiny.a
    function: a
  exit.success.done:
    module: nodes.exit.success.done
    function: done
start: a
transitions:
  a:
    success::done: exit.success.done
`
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/validate", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)
		var report reportDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.True(t, report.IsValid)
	})

	t.Run("unparsable body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/validate", strings.NewReader("nodes: [")))

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var report reportDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.False(t, report.IsValid)
		assert.Equal(t, "PARSE", report.Errors[0].Code)
	})
}

func TestRunHistoryEndpoints(t *testing.T) {
	history := &fakeHistory{
		runs: []string{"run-1"},
		steps: map[string][]runner.StepRecord{
			"run-1": {{NodeName: "fetch", State: "fetch::success::done", Timestamp: time.Now()}},
		},
	}
	handler := NewHandler(testGraph(), "test.yml", WithHistory(history))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"runs":["run-1"]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/run-1/steps", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fetch::success::done")
}

func TestRunEndpointsAbsentWithoutHistory(t *testing.T) {
	handler := NewHandler(testGraph(), "test.yml")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	handler := NewHandler(testGraph(), "test.yml")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
