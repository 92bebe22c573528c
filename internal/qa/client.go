package qa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client performs the single round-trip to the question-answering backend.
// It does not retry; retry policy belongs to the caller.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type askRequest struct {
	Question string `json:"question"`
	Mode     string `json:"mode"`
}

// SourceRecord is one raw backend source entry. The backend has shipped
// several field-naming conventions over time, so nothing about its shape is
// assumed here; NormalizeSources sorts it out.
type SourceRecord map[string]interface{}

type AskResponse struct {
	AnswerDisplayText string         `json:"answer_display_text"`
	SourcesList       []SourceRecord `json:"sources_list"`
}

// Ask sends the question with the resolved backend mode string and returns
// the parsed response. Non-2xx statuses and unparsable bodies are returned
// as errors whose text is safe to show in the conversation.
func (c *Client) Ask(ctx context.Context, question, backendMode string) (*AskResponse, error) {
	body, err := json.Marshal(askRequest{Question: question, Mode: backendMode})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read backend response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, errors.New(errorDetail(raw, resp.StatusCode))
	}

	var out AskResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("malformed backend response: %v", err)
	}

	return &out, nil
}

// errorDetail prefers the server-supplied detail message and falls back to a
// generic status line when the error body is not parseable JSON.
func errorDetail(raw []byte, status int) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != "" {
		return body.Detail
	}

	return fmt.Sprintf("API error: %d", status)
}
