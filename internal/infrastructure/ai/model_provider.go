package ai

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/doeshing/cmdai-go/internal/domain"
	"github.com/doeshing/cmdai-go/internal/ports"
)

const defaultModelMaxTokens = 256

// ModelProvider is a configuration-driven HTTP chat provider.
// All provider-specific behavior is controlled through the model's APIFormat configuration.
type ModelProvider struct {
	model      domain.ModelDefinition
	httpClient *http.Client
}

// NewModelProvider creates a provider for a model declared in the config file.
func NewModelProvider(model domain.ModelDefinition, client *http.Client) *ModelProvider {
	return &ModelProvider{model: model, httpClient: client}
}

// ID is the lower-cased model name.
func (p *ModelProvider) ID() string {
	return strings.ToLower(strings.TrimSpace(p.model.Name))
}

func (p *ModelProvider) ModelName() string {
	return valueOrDefault(p.model.ModelID, p.model.Name)
}

// IsAvailable checks configuration only; chat endpoints have no free probe.
func (p *ModelProvider) IsAvailable(context.Context) bool {
	if strings.TrimSpace(p.model.Endpoint) == "" {
		return false
	}
	return p.model.AuthEnvVar == "" || p.apiKey() != ""
}

// Generate implements ports.AIProvider.
func (p *ModelProvider) Generate(ctx context.Context, tool, query, contextText string) (string, error) {
	headers, err := p.headers()
	if err != nil {
		return "", err
	}
	body, _, err := postJSON(ctx, p.httpClient, p.model.Endpoint, p.buildRequestBody(BuildMessages(tool, query, contextText)), headers)
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.model.Name, err)
	}
	return extractText(body, p.model.APIFormat.GetResponseJSONPath())
}

// buildRequestBody constructs the JSON request body based on the model's APIFormat configuration.
func (p *ModelProvider) buildRequestBody(messages []PromptMessage) map[string]interface{} {
	format := p.model.APIFormat
	request := map[string]interface{}{
		"max_tokens":  p.maxTokens(),
		"temperature": 0.1,
	}
	if p.model.ModelID != "" {
		request["model"] = p.model.ModelID
	}

	if format.IsSystemMessageSeparate() {
		var system []string
		var chat []map[string]interface{}
		for _, msg := range messages {
			if msg.Role == roleSystem {
				system = append(system, msg.Content)
				continue
			}
			chat = append(chat, formatMessage(msg, format))
		}
		if len(system) > 0 {
			request["system"] = strings.Join(system, "\n")
		}
		request["messages"] = chat
		return request
	}

	inline := make([]map[string]interface{}, 0, len(messages))
	for _, msg := range messages {
		inline = append(inline, formatMessage(msg, format))
	}
	request["messages"] = inline
	return request
}

// formatMessage formats a single message based on the content wrapper configuration.
func formatMessage(msg PromptMessage, format domain.APIFormat) map[string]interface{} {
	message := map[string]interface{}{"role": msg.Role}
	if format.IsContentWrapped() {
		message["content"] = []map[string]string{{"type": "text", "text": msg.Content}}
	} else {
		message["content"] = msg.Content
	}
	return message
}

func (p *ModelProvider) headers() (map[string]string, error) {
	format := p.model.APIFormat
	headers := make(map[string]string, len(format.ExtraHeaders)+1)
	for key, value := range format.ExtraHeaders {
		headers[key] = value
	}
	if p.model.AuthEnvVar == "" {
		return headers, nil
	}
	key := p.apiKey()
	if key == "" {
		return nil, fmt.Errorf("%w: set %s environment variable", domain.ErrProviderUnavailable, p.model.AuthEnvVar)
	}
	headers[format.GetAuthHeaderName()] = format.GetAuthHeaderPrefix() + key
	return headers, nil
}

func (p *ModelProvider) apiKey() string {
	if p.model.AuthEnvVar == "" {
		return ""
	}
	return os.Getenv(p.model.AuthEnvVar)
}

func (p *ModelProvider) maxTokens() int {
	if p.model.MaxTokens > 0 {
		return p.model.MaxTokens
	}
	return defaultModelMaxTokens
}

var _ ports.AIProvider = (*ModelProvider)(nil)
