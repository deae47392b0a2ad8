package judge0

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	resultFields     = "token,stdout,stderr,status_id,language_id"
	maxErrorBodySize = 512
)

// BatchAPI is the subset of the Judge0 API used for grading.
type BatchAPI interface {
	SubmitBatch(ctx context.Context, requests []ExecutionRequest) ([]SubmissionToken, error)
	GetBatch(ctx context.Context, tokens []SubmissionToken) ([]ExecutionResult, error)
}

// Client talks to the Judge0 batch endpoints over HTTP.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewClient creates a client from a config that already had ApplyDefaults called.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		authToken:  cfg.AuthToken,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type batchSubmitRequest struct {
	Submissions []ExecutionRequest `json:"submissions"`
}

type batchSubmitItem struct {
	Token string `json:"token"`
}

type batchGetResponse struct {
	Submissions []*ExecutionResult `json:"submissions"`
}

// SubmitBatch posts all requests in one call and returns tokens in request order.
func (c *Client) SubmitBatch(ctx context.Context, requests []ExecutionRequest) ([]SubmissionToken, error) {
	body, err := json.Marshal(batchSubmitRequest{Submissions: requests})
	if err != nil {
		return nil, fmt.Errorf("encode batch request failed: %w", err)
	}

	query := url.Values{}
	query.Set("base64_encoded", "false")
	var items []batchSubmitItem
	if err := c.do(ctx, http.MethodPost, "/submissions/batch", query, body, &items); err != nil {
		return nil, err
	}
	if len(items) != len(requests) {
		return nil, fmt.Errorf("judge returned %d tokens for %d submissions", len(items), len(requests))
	}

	tokens := make([]SubmissionToken, len(items))
	for i, item := range items {
		if item.Token == "" {
			return nil, fmt.Errorf("judge rejected submission %d", i+1)
		}
		tokens[i] = SubmissionToken(item.Token)
	}
	return tokens, nil
}

// GetBatch fetches the current state of every token in one call.
func (c *Client) GetBatch(ctx context.Context, tokens []SubmissionToken) ([]ExecutionResult, error) {
	joined := make([]string, len(tokens))
	for i, token := range tokens {
		joined[i] = string(token)
	}

	query := url.Values{}
	query.Set("tokens", strings.Join(joined, ","))
	query.Set("base64_encoded", "false")
	query.Set("fields", resultFields)
	var resp batchGetResponse
	if err := c.do(ctx, http.MethodGet, "/submissions/batch", query, nil, &resp); err != nil {
		return nil, err
	}

	results := make([]ExecutionResult, 0, len(resp.Submissions))
	for _, item := range resp.Submissions {
		// unknown tokens come back as null
		if item == nil {
			continue
		}
		results = append(results, *item)
	}
	return results, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, out interface{}) error {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("X-Auth-Token", c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body failed: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if len(data) > maxErrorBodySize {
			data = data[:maxErrorBodySize]
		}
		return fmt.Errorf("judge responded %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response failed: %w", err)
	}
	return nil
}
