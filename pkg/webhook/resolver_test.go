package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/flowbridge/pkg/config"
	"github.com/dukex/flowbridge/pkg/models"
)

type fakeLister struct {
	executions []*models.Execution
	err        error
}

func (f *fakeLister) GetExecutions(_ context.Context, _ string, _ int) ([]*models.Execution, error) {
	return f.executions, f.err
}

type recordingHandler struct {
	mu       sync.Mutex
	requests []string
	bodies   []map[string]any
	respond  func(path string) int
}

func (h *recordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var body map[string]any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	h.requests = append(h.requests, r.URL.Path)
	h.bodies = append(h.bodies, body)

	status := h.respond(r.URL.Path)
	w.WriteHeader(status)

	if status == http.StatusOK {
		_, _ = w.Write([]byte(`{"output":"ok"}`))
	}
}

func chatTriggerWorkflow(active bool) *models.Workflow {
	return &models.Workflow{
		ID:     "wf-1",
		Name:   "Support Agent",
		Active: active,
		Nodes: []*models.Node{
			{ID: "n1", Name: "Chat Trigger", Type: "@vendor.chatTrigger", WebhookID: "abc123"},
		},
	}
}

func newTestResolver(t *testing.T, live, test string, lister ExecutionLister) *Resolver {
	t.Helper()

	cfg := &config.Config{
		EngineURL:      "http://engine.local",
		APIKey:         "key",
		LiveWebhookURL: live,
		TestWebhookURL: test,
		RequestTimeout: 2 * time.Second,
	}

	resolver, err := NewResolver(cfg, lister, slog.Default())
	require.NoError(t, err)

	return resolver
}

func TestNewResolver_UnconfiguredRoots(t *testing.T) {
	cfg := &config.Config{EngineURL: "http://engine.local", APIKey: "key"}

	_, err := NewResolver(cfg, nil, slog.Default())
	require.ErrorIs(t, err, config.ErrWebhookBaseNotConfigured)
}

func TestSelectTrigger_NoCandidates(t *testing.T) {
	workflow := &models.Workflow{ID: "wf-1", Nodes: []*models.Node{
		{ID: "n1", Type: "nodes-base.set"},
	}}

	_, err := SelectTrigger(workflow, nil, "")
	require.ErrorIs(t, err, ErrNoTriggerFound)
}

func TestSelectTrigger_ExplicitNodeWins(t *testing.T) {
	workflow := &models.Workflow{ID: "wf-1", Nodes: []*models.Node{
		{ID: "chat", Type: "@vendor.chatTrigger", WebhookID: "a"},
		{ID: "hook", Type: "nodes-base.webhook", WebhookID: "b"},
	}}

	node, err := SelectTrigger(workflow, map[string]any{"message": "hi"}, "hook")
	require.NoError(t, err)
	assert.Equal(t, "hook", node.ID)
}

func TestSelectTrigger_ExplicitNonCandidateFallsThrough(t *testing.T) {
	workflow := &models.Workflow{ID: "wf-1", Nodes: []*models.Node{
		{ID: "set", Type: "nodes-base.set"},
		{ID: "chat", Type: "@vendor.chatTrigger", WebhookID: "a"},
	}}

	node, err := SelectTrigger(workflow, map[string]any{"message": "hi"}, "set")
	require.NoError(t, err)
	assert.Equal(t, "chat", node.ID)
}

func TestSelectTrigger_ChatPreferredWhenPayloadNotAPILike(t *testing.T) {
	workflow := &models.Workflow{ID: "wf-1", Nodes: []*models.Node{
		{ID: "hook", Type: "nodes-base.webhook", WebhookID: "b"},
		{ID: "chat", Type: "@vendor.chatTrigger", WebhookID: "a"},
	}}

	node, err := SelectTrigger(workflow, map[string]any{"message": "hi"}, "")
	require.NoError(t, err)
	assert.Equal(t, "chat", node.ID)
}

func TestSelectTrigger_APIPayloadPrefersPlainWebhook(t *testing.T) {
	workflow := &models.Workflow{ID: "wf-1", Nodes: []*models.Node{
		{ID: "chat", Type: "@vendor.chatTrigger", WebhookID: "a"},
		{ID: "hook", Type: "nodes-base.webhook", WebhookID: "b"},
	}}

	node, err := SelectTrigger(workflow, map[string]any{"event": "order.created"}, "")
	require.NoError(t, err)
	assert.Equal(t, "hook", node.ID)
}

func TestSelectTrigger_ChatFallbackWhenOnlyChatAndAPIPayload(t *testing.T) {
	workflow := chatTriggerWorkflow(true)

	node, err := SelectTrigger(workflow, map[string]any{"event": "order.created"}, "")
	require.NoError(t, err)
	assert.Equal(t, "n1", node.ID)
}

func TestSelectTrigger_FirstCandidateFallback(t *testing.T) {
	workflow := &models.Workflow{ID: "wf-1", Nodes: []*models.Node{
		{ID: "form", Type: "nodes-base.formTrigger", WebhookID: "f"},
	}}

	node, err := SelectTrigger(workflow, map[string]any{"event": "x"}, "")
	require.NoError(t, err)
	assert.Equal(t, "form", node.ID)
}

func TestExecute_ChatSuffixFallbackOnLiveBase(t *testing.T) {
	handler := &recordingHandler{respond: func(path string) int {
		if path == "/abc123/chat" {
			return http.StatusOK
		}

		return http.StatusNotFound
	}}
	live := httptest.NewServer(handler)
	defer live.Close()

	resolver := newTestResolver(t, live.URL, live.URL+"-test", nil)

	result, err := resolver.Execute(t.Context(), chatTriggerWorkflow(true), map[string]any{"message": "Hallo"}, "")
	require.NoError(t, err)

	require.Len(t, handler.requests, 2)
	assert.Equal(t, "/abc123", handler.requests[0])
	assert.Equal(t, "/abc123/chat", handler.requests[1])
	assert.Equal(t, live.URL+"/abc123/chat", result.URL)

	// Chat enrichment: chatInput derived from message, timestamp stamped at
	// call time.
	for _, body := range handler.bodies {
		assert.Equal(t, "Hallo", body["chatInput"])
		assert.NotEmpty(t, body["timestamp"])
	}
}

func TestExecute_InactiveWorkflowUsesTestBaseFirst(t *testing.T) {
	var order []string

	liveHandler := &recordingHandler{respond: func(string) int { return http.StatusNotFound }}
	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "live"+r.URL.Path)
		liveHandler.ServeHTTP(w, r)
	}))
	defer live.Close()

	test := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "test"+r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer test.Close()

	resolver := newTestResolver(t, live.URL, test.URL, nil)

	result, err := resolver.Execute(t.Context(), chatTriggerWorkflow(false), map[string]any{"message": "hi"}, "")
	require.NoError(t, err)

	require.Len(t, order, 1)
	assert.Equal(t, "test/abc123", order[0])
	assert.Equal(t, test.URL+"/abc123", result.URL)
}

func TestExecute_AllVariants404(t *testing.T) {
	handler := &recordingHandler{respond: func(string) int { return http.StatusNotFound }}
	live := httptest.NewServer(handler)
	defer live.Close()

	testHandler := &recordingHandler{respond: func(string) int { return http.StatusNotFound }}
	test := httptest.NewServer(testHandler)
	defer test.Close()

	resolver := newTestResolver(t, live.URL, test.URL, nil)

	_, err := resolver.Execute(t.Context(), chatTriggerWorkflow(true), map[string]any{"message": "hi"}, "")
	require.ErrorIs(t, err, ErrWebhookNotFound)

	assert.Equal(t, []string{"/abc123", "/abc123/chat"}, handler.requests)
	assert.Equal(t, []string{"/abc123", "/abc123/chat"}, testHandler.requests)
}

func TestExecute_Non404FailureIsTerminal(t *testing.T) {
	handler := &recordingHandler{respond: func(string) int { return http.StatusInternalServerError }}
	live := httptest.NewServer(handler)
	defer live.Close()

	resolver := newTestResolver(t, live.URL, live.URL+"-test", nil)

	_, err := resolver.Execute(t.Context(), chatTriggerWorkflow(true), map[string]any{"message": "hi"}, "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrWebhookNotFound)
	assert.Len(t, handler.requests, 1)
}

func TestExecute_ExplicitPathParameterOverridesWebhookID(t *testing.T) {
	handler := &recordingHandler{respond: func(string) int { return http.StatusOK }}
	live := httptest.NewServer(handler)
	defer live.Close()

	workflow := &models.Workflow{
		ID:     "wf-1",
		Active: true,
		Nodes: []*models.Node{
			{
				ID:         "hook",
				Type:       "nodes-base.webhook",
				WebhookID:  "id-123",
				Parameters: map[string]any{"path": "orders"},
			},
		},
	}

	resolver := newTestResolver(t, live.URL, live.URL+"-test", nil)

	result, err := resolver.Execute(t.Context(), workflow, map[string]any{"event": "x"}, "")
	require.NoError(t, err)
	assert.Equal(t, "/orders", handler.requests[0])
	assert.Equal(t, live.URL+"/orders", result.URL)
}

func TestExecute_GETCarriesNoBody(t *testing.T) {
	var gotBody []byte

	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = json.Marshal(r.ContentLength)
		w.WriteHeader(http.StatusOK)
	}))
	defer live.Close()

	workflow := &models.Workflow{
		ID:     "wf-1",
		Active: true,
		Nodes: []*models.Node{
			{
				ID:         "hook",
				Type:       "nodes-base.webhook",
				WebhookID:  "id-123",
				Parameters: map[string]any{"httpMethod": "GET"},
			},
		},
	}

	resolver := newTestResolver(t, live.URL, live.URL+"-test", nil)

	_, err := resolver.Execute(t.Context(), workflow, map[string]any{"event": "x"}, "")
	require.NoError(t, err)
	assert.Equal(t, "0", string(gotBody))
}

func TestExecute_CorrelatesExecutionID(t *testing.T) {
	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer live.Close()

	lister := &fakeLister{executions: []*models.Execution{
		{ID: "exec-77", Status: models.ExecutionStatusRunning, StartedAt: time.Now()},
	}}

	resolver := newTestResolver(t, live.URL, live.URL+"-test", lister)

	result, err := resolver.Execute(t.Context(), chatTriggerWorkflow(true), map[string]any{"message": "hi"}, "")
	require.NoError(t, err)
	assert.Equal(t, "exec-77", result.ExecutionID)
}

func TestExecute_CorrelationFailureIsNotAnError(t *testing.T) {
	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer live.Close()

	lister := &fakeLister{err: errors.New("engine down")}

	resolver := newTestResolver(t, live.URL, live.URL+"-test", lister)

	result, err := resolver.Execute(t.Context(), chatTriggerWorkflow(true), map[string]any{"message": "hi"}, "")
	require.NoError(t, err)
	assert.Empty(t, result.ExecutionID)
}
