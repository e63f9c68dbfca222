package providers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/sparqlassist/llm"
)

func TestAnthropicProvider_BuildURL(t *testing.T) {
	p := &AnthropicProvider{}

	assert.Equal(t, "https://api.anthropic.com/v1/messages", p.BuildURL(""))
	assert.Equal(t, "https://proxy.example.com/v1/messages", p.BuildURL("https://proxy.example.com/"))
}

func TestAnthropicProvider_BuildRequestBody_SystemExtracted(t *testing.T) {
	p := &AnthropicProvider{}

	messages := []llm.Message{
		{Role: "system", Content: "You translate questions into SPARQL."},
		{Role: "user", Content: "List all enzymes"},
	}

	body, err := p.BuildRequestBody("claude-sonnet", messages, nil, 0)
	require.NoError(t, err)

	var req map[string]any
	require.NoError(t, json.Unmarshal(body, &req))

	// system prompt moves out of the message list
	assert.Equal(t, "You translate questions into SPARQL.", req["system"])
	msgs := req["messages"].([]any)
	require.Len(t, msgs, 1)

	// max_tokens defaults when unset
	assert.Equal(t, float64(4096), req["max_tokens"])
}

func TestAnthropicProvider_ParseResponse(t *testing.T) {
	p := &AnthropicProvider{}

	responseBody := []byte(`{
		"id": "msg_123",
		"type": "message",
		"role": "assistant",
		"content": [{"type": "text", "text": "ASK { ?s ?p ?o }"}],
		"model": "claude-sonnet",
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 12, "output_tokens": 7}
	}`)

	resp, err := p.ParseResponse(responseBody, "claude-sonnet")
	require.NoError(t, err)

	assert.Equal(t, "ASK { ?s ?p ?o }", resp.Content)
	assert.Equal(t, "claude-sonnet", resp.Model)
	assert.Equal(t, "end_turn", resp.FinishReason)
	assert.Equal(t, 19, resp.Usage.TotalTokens)
}
