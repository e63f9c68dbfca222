package providers

import (
	"net/http"
	"os"
	"strings"

	"github.com/c360studio/sparqlassist/llm"
)

const openAIDefaultBaseURL = "https://api.openai.com/v1"

// OpenAIProvider targets the hosted OpenAI API. It shares the
// OpenAI-compatible request and response format with OllamaProvider and
// differs only in its default URL and bearer authentication.
type OpenAIProvider struct {
	OllamaProvider
}

func init() {
	llm.RegisterProvider(&OpenAIProvider{})
}

func (o *OpenAIProvider) Name() string {
	return "openai"
}

// BuildURL appends the chat-completions route unless the configured URL
// already names it, so both base URLs and full endpoint URLs work.
func (o *OpenAIProvider) BuildURL(baseURL string) string {
	if baseURL == "" {
		baseURL = openAIDefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if strings.HasSuffix(baseURL, "/chat/completions") {
		return baseURL
	}
	return baseURL + "/chat/completions"
}

// SetHeaders sets the bearer token from OPENAI_API_KEY when present.
func (o *OpenAIProvider) SetHeaders(req *http.Request) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
}
