package llm

import (
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultOpenRouterTitle   = "Mandarin Exam"
)

// OpenRouterProvider talks to OpenRouter's OpenAI-compatible API. Requests
// carry the app attribution headers OpenRouter shows on its dashboard.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
// Model names are passed through unchanged.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL
	if config.BaseURL == "" {
		config.BaseURL = defaultOpenRouterBaseURL
	}
	title := cfg.Title
	if title == "" {
		title = defaultOpenRouterTitle
	}
	config.HTTPClient = &http.Client{Transport: &attributionTransport{
		base:    http.DefaultTransport,
		title:   title,
		referer: cfg.Referer,
	}}

	return &OpenRouterProvider{OpenAIProvider: &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
	}}, nil
}

type attributionTransport struct {
	base    http.RoundTripper
	title   string
	referer string
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("X-Title", t.title)
	if t.referer != "" {
		req.Header.Set("HTTP-Referer", t.referer)
	}
	return t.base.RoundTrip(req)
}
