package ai

import (
	"context"
	"net/http"
	"os"

	"github.com/doeshing/cmdai-go/internal/domain"
	"github.com/doeshing/cmdai-go/internal/ports"
)

const (
	defaultAzureModel     = "model-router"
	defaultAzureAPIKeyEnv = "AZURE_OPENAI_API_KEY"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Messages         []chatMessage `json:"messages"`
	MaxTokens        int           `json:"max_tokens"`
	Temperature      float64       `json:"temperature"`
	TopP             float64       `json:"top_p,omitempty"`
	FrequencyPenalty float64       `json:"frequency_penalty"`
	PresencePenalty  float64       `json:"presence_penalty"`
}

// AzureOpenAIProvider calls an Azure OpenAI chat completions deployment.
// The endpoint is the full deployment URL including api-version.
type AzureOpenAIProvider struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewAzureOpenAIProvider resolves the API key from settings.APIKeyEnv.
func NewAzureOpenAIProvider(settings domain.AzureOpenAISettings, client *http.Client) *AzureOpenAIProvider {
	return &AzureOpenAIProvider{
		endpoint:   settings.Endpoint,
		apiKey:     os.Getenv(valueOrDefault(settings.APIKeyEnv, defaultAzureAPIKeyEnv)),
		model:      valueOrDefault(settings.Model, defaultAzureModel),
		httpClient: client,
	}
}

func (a *AzureOpenAIProvider) ID() string { return domain.ProviderIDAzureOpenAI }

func (a *AzureOpenAIProvider) ModelName() string { return a.model }

// Configured reports whether both endpoint and key are present.
func (a *AzureOpenAIProvider) Configured() bool {
	return a.endpoint != "" && a.apiKey != ""
}

// IsAvailable sends a one-token completion. Rate limiting still counts as
// available since the deployment exists.
func (a *AzureOpenAIProvider) IsAvailable(ctx context.Context) bool {
	if !a.Configured() {
		return false
	}
	probe := chatCompletionRequest{
		Messages:    []chatMessage{{Role: roleUser, Content: "test"}},
		MaxTokens:   1,
		Temperature: 0.1,
	}
	_, status, err := postJSON(ctx, a.httpClient, a.endpoint, probe, a.headers())
	return err == nil || status == http.StatusTooManyRequests
}

// Generate implements ports.AIProvider.
func (a *AzureOpenAIProvider) Generate(ctx context.Context, tool, query, contextText string) (string, error) {
	if !a.Configured() {
		return "", domain.ErrProviderUnavailable
	}
	payload := chatCompletionRequest{
		Messages:    []chatMessage{{Role: roleUser, Content: BuildPrompt(tool, query, contextText)}},
		MaxTokens:   256,
		Temperature: 0.1,
		TopP:        0.9,
	}
	body, _, err := postJSON(ctx, a.httpClient, a.endpoint, payload, a.headers())
	if err != nil {
		return "", err
	}
	return extractText(body, domain.DefaultResponsePath)
}

func (a *AzureOpenAIProvider) headers() map[string]string {
	return map[string]string{domain.DefaultAuthHeaderName: domain.DefaultAuthHeaderPrefix + a.apiKey}
}

var _ ports.AIProvider = (*AzureOpenAIProvider)(nil)
