package agents

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-ideas/internal/contracts"
	"github.com/wonny/aegis-ideas/pkg/config"
	"github.com/wonny/aegis-ideas/pkg/httputil"
	"github.com/wonny/aegis-ideas/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{Agents: config.AgentsConfig{Timeout: 5 * time.Second}}
	log := logger.NewNop()
	return NewClient(httputil.New(cfg, log), server.URL+"/", log)
}

func TestCreateResearchPlan(t *testing.T) {
	var got planningRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/planning", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"planId":"plan-9","researchDepth":"deep","focusAreas":["rates"],"tasks":[]}`))
	}))

	pc := &contracts.PlanningContext{Objectives: []string{"Generate up to 3 investment ideas"}}
	plan, err := client.CreateResearchPlan(context.Background(), "req-1", pc)
	require.NoError(t, err)

	assert.Equal(t, "plan-9", plan.PlanID)
	assert.Equal(t, []string{"rates"}, plan.FocusAreas)
	assert.Equal(t, "req-1", got.RequestID)
	require.NotNil(t, got.Context)
	assert.Equal(t, pc.Objectives, got.Context.Objectives)
}

func TestStageEndpoints(t *testing.T) {
	paths := make(chan string, 4)
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		switch r.URL.Path {
		case "/research":
			_, _ = w.Write([]byte(`{"topic":"t","researchType":"market-trends","findings":[{"title":"f"}],"investments":[{"name":"Apple","ticker":"AAPL","type":"stock"}]}`))
		case "/analysis":
			_, _ = w.Write([]byte(`{"analyses":[{"investment":{"name":"Apple"},"expectedReturn":0.1}],"summary":"ok"}`))
		case "/compliance":
			_, _ = w.Write([]byte(`{"checks":[{"investment":"Apple","compliant":true}]}`))
		case "/synthesis":
			_, _ = w.Write([]byte(`{"investmentIdeas":[{"title":"Idea","confidenceScore":0}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	ctx := context.Background()

	research, err := client.ProcessResearchRequest(ctx, &contracts.ResearchRequest{Topic: "t"})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", research.Investments[0].Ticker)

	analysis, err := client.ProcessAnalysisRequest(ctx, &contracts.AnalysisRequest{})
	require.NoError(t, err)
	assert.Len(t, analysis.Analyses, 1)

	compliance, err := client.ProcessComplianceRequest(ctx, &contracts.ComplianceRequest{})
	require.NoError(t, err)
	assert.True(t, compliance.Checks[0].Compliant)

	synthesis, err := client.ProcessSynthesisRequest(ctx, &contracts.SynthesisRequest{})
	require.NoError(t, err)
	require.Len(t, synthesis.InvestmentIdeas, 1)
	require.NotNil(t, synthesis.InvestmentIdeas[0].ConfidenceScore)
	assert.Equal(t, 0.0, *synthesis.InvestmentIdeas[0].ConfidenceScore)

	assert.Equal(t, "/research", <-paths)
	assert.Equal(t, "/analysis", <-paths)
	assert.Equal(t, "/compliance", <-paths)
	assert.Equal(t, "/synthesis", <-paths)
}

func TestStatusError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte("  unsupported jurisdiction\n"))
	}))

	_, err := client.ProcessComplianceRequest(context.Background(), &contracts.ComplianceRequest{})
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, contracts.PhaseCompliance, statusErr.Stage)
	assert.Equal(t, http.StatusUnprocessableEntity, statusErr.StatusCode)
	assert.Equal(t, "unsupported jurisdiction", statusErr.Body)
	assert.Equal(t, "compliance-agent returned status 422: unsupported jurisdiction", err.Error())
}

func TestRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"checks":[]}`))
	}))
	defer server.Close()

	log := logger.NewNop()
	cfg := &config.Config{Agents: config.AgentsConfig{Timeout: 5 * time.Second}}
	httpClient := httputil.New(cfg, log).WithRetry(2, 10*time.Millisecond)
	client := NewClient(httpClient, server.URL, log)

	out, err := client.ProcessComplianceRequest(context.Background(), &contracts.ComplianceRequest{})
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDecodeError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))

	_, err := client.ProcessAnalysisRequest(context.Background(), &contracts.AnalysisRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode analysis-agent response")
}

func TestHealth(t *testing.T) {
	var down atomic.Bool
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		if down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))

	assert.NoError(t, client.Health(context.Background()))

	down.Store(true)
	assert.Error(t, client.Health(context.Background()))
}

func TestAgentsBundle(t *testing.T) {
	c := NewClient(nil, "http://agents", logger.NewNop())
	bundle := c.Agents()

	assert.Same(t, c, bundle.Planning)
	assert.Same(t, c, bundle.Synthesis)
	assert.Equal(t, "http://agents", c.baseURL)
}
