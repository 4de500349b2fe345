package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/wonny/aegis-ideas/internal/contracts"
	"github.com/wonny/aegis-ideas/pkg/httputil"
	"github.com/wonny/aegis-ideas/pkg/logger"
)

// maxErrorBody bounds how much of a failed response is kept in StatusError
const maxErrorBody = 1024

// Client talks to the remote stage agents over HTTP
// ⭐ SSOT: stage agent 호출은 이 클라이언트에서만
//
//	POST <base>/planning | /research | /analysis | /compliance | /synthesis
//	GET  <base>/health
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a stage agent client rooted at baseURL
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Agents returns the client as the orchestrator's stage bundle
func (c *Client) Agents() contracts.Agents {
	return contracts.Agents{
		Planning:   c,
		Research:   c,
		Analysis:   c,
		Compliance: c,
		Synthesis:  c,
	}
}

// StatusError is returned when an agent answers with a non-2xx status
type StatusError struct {
	Stage      contracts.Phase
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Stage.AgentName(), e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Stage.AgentName(), e.StatusCode, e.Body)
}

// planningRequest is the wire body of the planning call
type planningRequest struct {
	RequestID string                     `json:"requestId"`
	Context   *contracts.PlanningContext `json:"context"`
}

// CreateResearchPlan calls the planning agent
func (c *Client) CreateResearchPlan(ctx context.Context, requestID string, pc *contracts.PlanningContext) (*contracts.PlanningOutput, error) {
	var out contracts.PlanningOutput
	body := planningRequest{RequestID: requestID, Context: pc}
	if err := c.call(ctx, contracts.PhasePlanning, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProcessResearchRequest calls the research agent for one sub-request
func (c *Client) ProcessResearchRequest(ctx context.Context, req *contracts.ResearchRequest) (*contracts.ResearchResult, error) {
	var out contracts.ResearchResult
	if err := c.call(ctx, contracts.PhaseResearch, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProcessAnalysisRequest calls the analysis agent
func (c *Client) ProcessAnalysisRequest(ctx context.Context, req *contracts.AnalysisRequest) (*contracts.AnalysisOutput, error) {
	var out contracts.AnalysisOutput
	if err := c.call(ctx, contracts.PhaseAnalysis, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProcessComplianceRequest calls the compliance agent
func (c *Client) ProcessComplianceRequest(ctx context.Context, req *contracts.ComplianceRequest) (*contracts.ComplianceOutput, error) {
	var out contracts.ComplianceOutput
	if err := c.call(ctx, contracts.PhaseCompliance, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProcessSynthesisRequest calls the synthesis agent
func (c *Client) ProcessSynthesisRequest(ctx context.Context, req *contracts.SynthesisRequest) (*contracts.SynthesisOutput, error) {
	var out contracts.SynthesisOutput
	if err := c.call(ctx, contracts.PhaseSynthesis, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks that the agent gateway is reachable
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.httpClient.Get(ctx, c.baseURL+"/health")
	if err != nil {
		return fmt.Errorf("agents health check failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("agents health check: unexpected status code: %d", resp.StatusCode)
	}
	return nil
}

// call posts payload to the stage endpoint and decodes the answer into out
func (c *Client) call(ctx context.Context, stage contracts.Phase, payload interface{}, out interface{}) error {
	url := fmt.Sprintf("%s/%s", c.baseURL, stage)

	resp, err := c.httpClient.PostJSON(ctx, url, payload)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", stage.AgentName(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{
			Stage:      stage,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}

		c.logger.WithFields(map[string]interface{}{
			"stage":       stage.String(),
			"status_code": resp.StatusCode,
		}).Warn("Stage agent returned error status")
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", stage.AgentName(), err)
	}
	return nil
}
