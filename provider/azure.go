package provider

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"

	"github.com/chatweet/chatweet/types"
)

// azureDeployment holds what both Azure variants share: an SDK client bound to
// the resource endpoint and api-version, and the deployment name.
type azureDeployment struct {
	client     openai.Client
	endpoint   string
	deployment string
	maxTokens  int
	logger     Logger
}

func newAzureDeployment(cfg Config) azureDeployment {
	return azureDeployment{
		client: newOpenAIClient(cfg,
			azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
			azure.WithAPIKey(cfg.APIKey),
		),
		endpoint:   cfg.Endpoint,
		deployment: cfg.Deployment,
		maxTokens:  cfg.MaxTokens,
		logger:     cfg.Logger,
	}
}

// deploymentFor returns the configured deployment, or the model ID when none
// is configured. The SDK routes requests by the model field, so this is what
// goes out as the model.
func (d azureDeployment) deploymentFor(model string) string {
	if d.deployment != "" {
		return d.deployment
	}
	return model
}

// AzureCompletion talks to the completions endpoint of an Azure OpenAI
// deployment.
type AzureCompletion struct {
	azureDeployment
}

// NewAzureCompletion creates an AzureCompletion from cfg.
func NewAzureCompletion(cfg Config) *AzureCompletion {
	return &AzureCompletion{azureDeployment: newAzureDeployment(cfg)}
}

// Complete renders the non-system turns as one prompt and returns the first
// choice's text with surrounding whitespace removed.
func (p *AzureCompletion) Complete(ctx context.Context, turns []types.Turn, model string, temperature float64) (string, error) {
	deployment := p.deploymentFor(model)
	resp, err := p.client.Completions.New(ctx, completionParams(turns, deployment, temperature, p.maxTokens))
	if err != nil {
		err = translateOpenAIError(err, "completions", p.endpoint)
		p.logger.Error("azure completion failed", "deployment", deployment, "retryable", retryable(err), "error", err)
		return "", err
	}
	p.logger.Debug("azure completion", "deployment", deployment, "response_id", resp.ID)
	return firstText(resp)
}

// AzureChat talks to the chat completions endpoint of an Azure OpenAI
// deployment.
type AzureChat struct {
	azureDeployment
}

// NewAzureChat creates an AzureChat from cfg.
func NewAzureChat(cfg Config) *AzureChat {
	return &AzureChat{azureDeployment: newAzureDeployment(cfg)}
}

// Complete sends turns as chat messages and returns the first choice's
// content unmodified.
func (p *AzureChat) Complete(ctx context.Context, turns []types.Turn, model string, temperature float64) (string, error) {
	deployment := p.deploymentFor(model)
	resp, err := p.client.Chat.Completions.New(ctx, chatParams(turns, deployment, temperature, p.maxTokens))
	if err != nil {
		err = translateOpenAIError(err, "chat.completions", p.endpoint)
		p.logger.Error("azure chat completion failed", "deployment", deployment, "retryable", retryable(err), "error", err)
		return "", err
	}
	p.logger.Debug("azure chat completion", "deployment", deployment, "response_id", resp.ID)
	return firstContent(resp)
}
