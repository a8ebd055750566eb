package ai

import (
	"context"
	"net/http"
	"strings"

	"github.com/doeshing/cmdai-go/internal/domain"
	"github.com/doeshing/cmdai-go/internal/ports"
)

const (
	defaultOllamaEndpoint = "http://localhost:11434"
	defaultOllamaModel    = "codellama:7b"
)

type ollamaOptions struct {
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"top_p"`
	Stop        []string `json:"stop"`
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

// OllamaProvider talks to a local Ollama server.
type OllamaProvider struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

// NewOllamaProvider builds the provider from settings, applying defaults.
func NewOllamaProvider(settings domain.OllamaSettings, client *http.Client) *OllamaProvider {
	return &OllamaProvider{
		endpoint:   strings.TrimRight(valueOrDefault(settings.Endpoint, defaultOllamaEndpoint), "/"),
		model:      valueOrDefault(settings.Model, defaultOllamaModel),
		httpClient: client,
	}
}

func (o *OllamaProvider) ID() string { return domain.ProviderIDOllama }

func (o *OllamaProvider) ModelName() string { return o.model }

// Endpoint returns the server base URL.
func (o *OllamaProvider) Endpoint() string { return o.endpoint }

// IsAvailable probes the tags listing.
func (o *OllamaProvider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}
	_, _, err = do(o.httpClient, req)
	return err == nil
}

// Generate implements ports.AIProvider.
func (o *OllamaProvider) Generate(ctx context.Context, tool, query, contextText string) (string, error) {
	payload := ollamaGenerateRequest{
		Model:  o.model,
		Prompt: BuildPrompt(tool, query, contextText),
		Stream: false,
		Options: ollamaOptions{
			Temperature: 0.1,
			TopP:        0.9,
			Stop:        []string{"\n\n", "Human:", "Assistant:"},
		},
	}
	body, _, err := postJSON(ctx, o.httpClient, o.endpoint+"/api/generate", payload, nil)
	if err != nil {
		return "", err
	}
	return extractText(body, "response")
}

func valueOrDefault(value string, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

var _ ports.AIProvider = (*OllamaProvider)(nil)
