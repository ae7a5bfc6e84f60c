package api

import (
	"context"
)

// AssistantClient wraps the conversational natural-language query endpoint.
type AssistantClient struct {
	*Client
}

func NewAssistantClient(c *Client) *AssistantClient {
	return &AssistantClient{Client: c}
}

// QueryResponse is the conversational endpoint's answer. Every field is
// optional; the session layer supplies fallbacks for absent summaries.
type QueryResponse struct {
	Summary  string           `json:"summary"`
	SQLQuery string           `json:"sql_query"`
	Results  []map[string]any `json:"results"`
}

// Query submits one free-text question. On failure the server may explain
// itself through a summary body; that text travels back as the APIError
// message so the session layer can put it in the transcript.
func (a *AssistantClient) Query(ctx context.Context, query string) (QueryResponse, error) {
	body := map[string]string{"query": query}
	var out QueryResponse
	if err := a.post(ctx, "/ai/query", nil, body, &out); err != nil {
		return QueryResponse{}, err
	}
	return out, nil
}
