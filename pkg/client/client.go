// Package client is a Go client for the kektorgraph HTTP API.
//
// It covers graph upload and download, catalog listing, consistency checks,
// compaction, induced subgraphs, and both isomorphism searches, including
// background subgraph searches polled through a Task.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sanonone/kektorgraph/pkg/ingest"
)

// APIError is an error returned by the API (status >= 400).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// GraphSummary is one catalog entry.
type GraphSummary struct {
	Key            string `json:"key"`
	Name           string `json:"name"`
	Nodes          int    `json:"nodes"`
	Edges          int    `json:"edges"`
	NodeLabelBytes int    `json:"node_label_bytes"`
	EdgeLabelBytes int    `json:"edge_label_bytes"`
	Direct         bool   `json:"direct"`
}

// GraphDetail adds layout figures to a GraphSummary.
type GraphDetail struct {
	GraphSummary
	Connections      int  `json:"connections"`
	SlackConnections int  `json:"slack_connections"`
	SlackNodeUnits   int  `json:"slack_node_label_units"`
	SlackEdgeUnits   int  `json:"slack_edge_label_units"`
	OldestGeneration int8 `json:"oldest_generation"`
	NewestGeneration int8 `json:"newest_generation"`
}

// Stored reports where a graph was stored.
type Stored struct {
	Key   string `json:"key"`
	Nodes int    `json:"nodes"`
	Edges int    `json:"edges"`
}

// CheckResult is the consistency report of a stored graph.
type CheckResult struct {
	Key        string `json:"key"`
	Consistent bool   `json:"consistent"`
	Kind       string `json:"kind,omitempty"`
	Index      int    `json:"index,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// Pair names two stored graphs.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// IsomorphicResult is the outcome for one pair.
type IsomorphicResult struct {
	A          string  `json:"a"`
	B          string  `json:"b"`
	Found      bool    `json:"found"`
	Reason     string  `json:"reason"`
	Mapping    []int   `json:"mapping,omitempty"`
	Steps      int     `json:"steps"`
	Backtracks int     `json:"backtracks"`
	ElapsedMS  float64 `json:"elapsed_ms"`
}

// Embedding maps pattern nodes and edges to target indices.
type Embedding struct {
	Nodes []int `json:"nodes"`
	Edges []int `json:"edges"`
}

// SubgraphResult lists the embeddings a search found.
type SubgraphResult struct {
	Embeddings []Embedding `json:"embeddings"`
	Steps      int         `json:"steps"`
	Backtracks int         `json:"backtracks"`
	ElapsedMS  float64     `json:"elapsed_ms"`
}

// SubgraphQuery describes a subgraph search. Limit nil uses the server
// maximum; 0 means no limit.
type SubgraphQuery struct {
	Target  string `json:"target"`
	Pattern string `json:"pattern"`
	Labels  bool   `json:"labels,omitempty"`
	Limit   *int   `json:"limit,omitempty"`
	Async   bool   `json:"async,omitempty"`

	// InjectiveEdges maps parallel pattern edges to distinct target edges.
	InjectiveEdges bool `json:"injective_edges,omitempty"`
}

// Task is a background search on the server.
type Task struct {
	ID              string          `json:"id"`
	Status          string          `json:"status"`
	ProgressMessage string          `json:"progress_message,omitempty"`
	Error           string          `json:"error,omitempty"`
	Result          *SubgraphResult `json:"result,omitempty"`

	client *Client
}

// Client talks to one kektorgraph server.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// New creates a client for the server at baseURL (for example
// "http://localhost:9470"). An empty authToken sends no Authorization header.
func New(baseURL, authToken string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// jsonRequest executes a request and returns the response body. Error
// responses become *APIError.
func (c *Client) jsonRequest(method, endpoint string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON payload: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		var errResp map[string]string
		if json.Unmarshal(respBody, &errResp) == nil {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: errResp["error"]}
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	return respBody, nil
}

// call runs jsonRequest and decodes the response into out.
func (c *Client) call(op, method, endpoint string, payload, out any) error {
	respBody, err := c.jsonRequest(method, endpoint, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("invalid JSON response for %s: %w", op, err)
	}
	return nil
}

func graphPath(key string, suffix ...string) string {
	return "/graphs/" + url.PathEscape(key) + strings.Join(suffix, "")
}

// --- Graph Methods ---

// Put stores doc. An empty key falls back to the document name, then to a
// server-generated UUID.
func (c *Client) Put(key string, doc ingest.Document) (*Stored, error) {
	endpoint := "/graphs"
	method := http.MethodPost
	if key != "" {
		endpoint, method = graphPath(key), http.MethodPut
	}
	var out Stored
	if err := c.call("Put", method, endpoint, doc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get downloads the graph stored under key.
func (c *Client) Get(key string) (*ingest.Document, error) {
	var doc ingest.Document
	if err := c.call("Get", http.MethodGet, graphPath(key), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Delete removes the graph stored under key.
func (c *Client) Delete(key string) error {
	_, err := c.jsonRequest(http.MethodDelete, graphPath(key), nil)
	return err
}

// List returns the catalog entries whose key starts with prefix.
func (c *Client) List(prefix string) ([]GraphSummary, error) {
	endpoint := "/graphs"
	if prefix != "" {
		endpoint += "?prefix=" + url.QueryEscape(prefix)
	}
	var out []GraphSummary
	if err := c.call("List", http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Info returns layout details of the graph stored under key.
func (c *Client) Info(key string) (*GraphDetail, error) {
	var out GraphDetail
	if err := c.call("Info", http.MethodGet, graphPath(key, "/info"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Check runs the consistency checker on the graph stored under key.
func (c *Client) Check(key string) (*CheckResult, error) {
	var out CheckResult
	if err := c.call("Check", http.MethodPost, graphPath(key, "/check"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Compact rewrites the graph stored under key without slack.
func (c *Client) Compact(key string) (*Stored, error) {
	var out Stored
	if err := c.call("Compact", http.MethodPost, graphPath(key, "/compact"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Induce stores the subgraph of key made of nodes and edges under newKey.
func (c *Client) Induce(key, newKey string, nodes, edges []int) (*Stored, error) {
	payload := map[string]any{"key": newKey, "nodes": nodes, "edges": edges}
	var out Stored
	if err := c.call("Induce", http.MethodPost, graphPath(key, "/induce"), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportBundle streams the bundle of the graph stored under key to w.
func (c *Client) ExportBundle(key string, w io.Writer) error {
	resp, err := c.rawRequest(http.MethodGet, graphPath(key, "/bundle"), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to read bundle: %w", err)
	}
	return nil
}

// ImportBundle uploads a bundle read from r and stores it under key.
func (c *Client) ImportBundle(key string, r io.Reader) (*Stored, error) {
	resp, err := c.rawRequest(http.MethodPut, graphPath(key, "/bundle"), r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var out Stored
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid JSON response for ImportBundle: %w", err)
	}
	return &out, nil
}

// rawRequest sends an octet-stream body and returns the successful response
// unread. Error responses become *APIError.
func (c *Client) rawRequest(method, endpoint string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connection error: %w", err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		var errResp map[string]string
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: errResp["error"]}
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}
	return resp, nil
}

// --- Match Methods ---

// Isomorphic runs a whole-graph isomorphism test for each pair. The server
// caps workers at its configured maximum; workers <= 0 asks for that maximum.
func (c *Client) Isomorphic(pairs []Pair, workers int) ([]IsomorphicResult, error) {
	payload := map[string]any{"pairs": pairs}
	if workers > 0 {
		payload["workers"] = workers
	}
	var out struct {
		Results []IsomorphicResult `json:"results"`
	}
	if err := c.call("Isomorphic", http.MethodPost, "/match/isomorphic", payload, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Subgraph runs a subgraph search and waits for its result.
func (c *Client) Subgraph(q SubgraphQuery) (*SubgraphResult, error) {
	q.Async = false
	var out SubgraphResult
	if err := c.call("Subgraph", http.MethodPost, "/match/subgraph", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubgraphAsync starts a background subgraph search.
func (c *Client) SubgraphAsync(q SubgraphQuery) (*Task, error) {
	q.Async = true
	var task Task
	if err := c.call("SubgraphAsync", http.MethodPost, "/match/subgraph", q, &task); err != nil {
		return nil, err
	}
	task.client = c
	return &task, nil
}

// GetTaskStatus retrieves the state of a background task.
func (c *Client) GetTaskStatus(taskID string) (*Task, error) {
	var task Task
	if err := c.call("GetTaskStatus", http.MethodGet, "/tasks/"+url.PathEscape(taskID), nil, &task); err != nil {
		return nil, err
	}
	task.client = c
	return &task, nil
}

// Refresh updates the task from the server.
func (t *Task) Refresh() error {
	if t.client == nil {
		return fmt.Errorf("client is not associated with the task")
	}
	updated, err := t.client.GetTaskStatus(t.ID)
	if err != nil {
		return err
	}
	t.Status = updated.Status
	t.ProgressMessage = updated.ProgressMessage
	t.Error = updated.Error
	t.Result = updated.Result
	return nil
}

// Wait polls the task every interval until it finishes or timeout elapses.
func (t *Task) Wait(interval, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-timer.C:
			return fmt.Errorf("timeout exceeded while waiting for task %s", t.ID)
		case <-ticker.C:
			if err := t.Refresh(); err != nil {
				return err
			}
			switch t.Status {
			case "completed":
				return nil
			case "failed":
				return fmt.Errorf("task %s failed with error: %s", t.ID, t.Error)
			case "running", "started":
			default:
				return fmt.Errorf("unknown task status: %s", t.Status)
			}
		}
	}
}
