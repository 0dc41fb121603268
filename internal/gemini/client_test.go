package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	httpc := resty.New().SetBaseURL(server.URL)
	return NewClient(httpc, "gemini-test", "test-key")
}

func TestGenerateSendsHistoryAndReturnsReply(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates": [{"content": {"role": "model", "parts": [{"text": "looks "}, {"text": "benign"}]}, "finishReason": "STOP"}]}`)
	})

	reply, err := client.Generate(context.Background(), []Content{
		{Role: RoleUser, Text: "triage this"},
		{Role: RoleModel, Text: "ok"},
		{Role: RoleUser, Text: "why?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "looks benign", reply)

	assert.Equal(t, "/v1beta/models/gemini-test:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, gotBody.Contents, 3)
	assert.Equal(t, "user", gotBody.Contents[0].Role)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Equal(t, "triage this", gotBody.Contents[0].Parts[0].Text)
	assert.Equal(t, "model", gotBody.Contents[1].Role)
	assert.Equal(t, "why?", gotBody.Contents[2].Parts[0].Text)
}

func TestGenerateAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error": {"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"}}`)
	})

	_, err := client.Generate(context.Background(), []Content{{Role: RoleUser, Text: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini API error: API key not valid (code: 400)")
}

func TestGenerateErrorWithoutBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Generate(context.Background(), []Content{{Role: RoleUser, Text: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini API error: status 503")
}

func TestGenerateBlockedPrompt(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"promptFeedback": {"blockReason": "SAFETY"}}`)
	})

	_, err := client.Generate(context.Background(), []Content{{Role: RoleUser, Text: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt blocked: SAFETY")
}

func TestGenerateNoCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates": []}`)
	})

	_, err := client.Generate(context.Background(), []Content{{Role: RoleUser, Text: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestGenerateEmptyCandidateContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates": [{"finishReason": "SAFETY"}]}`)
	})

	reply, err := client.Generate(context.Background(), []Content{{Role: RoleUser, Text: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "", reply)
}

func TestNewClientDefaults(t *testing.T) {
	httpc := resty.New()
	client := NewClient(httpc, "", "key")

	assert.Equal(t, DefaultModel, client.Model())
	assert.Equal(t, defaultBaseURL, httpc.BaseURL)

	pinned := resty.New().SetBaseURL("http://localhost:1")
	NewClient(pinned, "m", "key")
	assert.Equal(t, "http://localhost:1", pinned.BaseURL)
}
