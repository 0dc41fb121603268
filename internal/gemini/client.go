package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultModel is used when neither flag, environment nor config names one.
	DefaultModel = "gemini-2.5-pro"

	defaultBaseURL = "https://generativelanguage.googleapis.com"
)

// Client calls the Gemini generateContent REST API.
type Client struct {
	httpc  *resty.Client
	model  string
	apiKey string
}

// NewClient wraps a configured resty client. The base URL is only set when
// the caller has not pinned one already, which lets tests point the client at
// a local server.
func NewClient(httpc *resty.Client, model, apiKey string) *Client {
	if httpc.BaseURL == "" {
		httpc.SetBaseURL(defaultBaseURL)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		httpc:  httpc,
		model:  model,
		apiKey: apiKey,
	}
}

// Model returns the model identifier this client sends requests to.
func (c *Client) Model() string {
	return c.model
}

// Generate sends the whole conversation history and returns the model's
// reply text. An empty reply is not an error.
func (c *Client) Generate(ctx context.Context, history []Content) (string, error) {
	body := generateRequest{Contents: make([]content, 0, len(history))}
	for _, turn := range history {
		body.Contents = append(body.Contents, content{
			Role:  turn.Role,
			Parts: []part{{Text: turn.Text}},
		})
	}

	var result generateResponse
	var apiError errorResponse
	resp, err := c.httpc.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&result).
		SetError(&apiError).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", c.model))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if resp.IsError() {
		if apiError.Error.Message != "" {
			return "", fmt.Errorf("gemini API error: %s (code: %d)", apiError.Error.Message, apiError.Error.Code)
		}
		return "", fmt.Errorf("gemini API error: status %d", resp.StatusCode())
	}

	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", result.PromptFeedback.BlockReason)
	}
	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("gemini response has no candidates")
	}

	var text strings.Builder
	if candidate := result.Candidates[0]; candidate.Content != nil {
		for _, p := range candidate.Content.Parts {
			text.WriteString(p.Text)
		}
	}
	return text.String(), nil
}

// Gemini generateContent wire types, the consumed subset only.

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates     []candidate     `json:"candidates"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
}

type candidate struct {
	Content      *content `json:"content"`
	FinishReason string   `json:"finishReason"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
