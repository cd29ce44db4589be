package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/omnichat/omnichat/internal/domain"
	"github.com/omnichat/omnichat/internal/ports"
)

// groqBaseURL points go-openai at Groq's OpenAI-compatible endpoint.
const groqBaseURL = "https://api.groq.com/openai/v1"

// openAICompatProvider serves every backend that speaks the OpenAI chat
// completions wire format. OpenAI itself uses the default base URL; Groq
// swaps in its own.
type openAICompatProvider struct {
	descriptor domain.ProviderDescriptor
	model      string
	settings   domain.GenerationSettings
	client     *openai.Client
}

// NewOpenAIProvider builds an adapter for the OpenAI API.
func NewOpenAIProvider(model string, settings domain.GenerationSettings, secret string) (ports.Provider, error) {
	return newOpenAICompat(OpenAIDescriptor(), model, settings, secret, "")
}

// NewGroqProvider builds an adapter for Groq's hosted inference API.
func NewGroqProvider(model string, settings domain.GenerationSettings, secret string) (ports.Provider, error) {
	return newOpenAICompat(GroqDescriptor(), model, settings, secret, groqBaseURL)
}

func newOpenAICompat(descriptor domain.ProviderDescriptor, model string, settings domain.GenerationSettings, secret, baseURL string) (ports.Provider, error) {
	if secret == "" {
		return nil, &domain.ConstructionError{ID: descriptor.ID, Err: fmt.Errorf("missing API key: set %s", descriptor.SecretEnvVar)}
	}
	if model == "" {
		model = descriptor.DefaultModel
	}

	config := openai.DefaultConfig(secret)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	config.HTTPClient = &http.Client{Timeout: httpClientTimeout}

	return &openAICompatProvider{
		descriptor: descriptor,
		model:      model,
		settings:   settings,
		client:     openai.NewClientWithConfig(config),
	}, nil
}

func (p *openAICompatProvider) Descriptor() domain.ProviderDescriptor { return p.descriptor }
func (p *openAICompatProvider) ActiveModel() string                   { return p.model }
func (p *openAICompatProvider) AvailableModels() []domain.ModelInfo   { return p.descriptor.Models }

func (p *openAICompatProvider) Invoke(ctx context.Context, history []domain.Message) (domain.Message, error) {
	resp, err := p.client.CreateChatCompletion(ctx, p.request(history, false))
	if err != nil {
		return domain.Message{}, fmt.Errorf("%s: %w", p.descriptor.ID, err)
	}
	if len(resp.Choices) == 0 {
		return domain.Message{}, fmt.Errorf("%s: empty response (no choices)", p.descriptor.ID)
	}
	return domain.NewAIMessage(strings.TrimSpace(resp.Choices[0].Message.Content)), nil
}

func (p *openAICompatProvider) Stream(ctx context.Context, history []domain.Message) (<-chan ports.StreamChunk, error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, p.request(history, true))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.descriptor.ID, err)
	}

	out := make(chan ports.StreamChunk)
	go func() {
		defer close(out)
		defer stream.Close()
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				select {
				case out <- ports.StreamChunk{Err: fmt.Errorf("%s: %w", p.descriptor.ID, err)}:
				case <-ctx.Done():
				}
				return
			}
			if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
				continue
			}
			select {
			case out <- ports.StreamChunk{Content: resp.Choices[0].Delta.Content}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (p *openAICompatProvider) ValidateSecret(ctx context.Context) bool {
	_, err := p.Invoke(ctx, []domain.Message{domain.NewHumanMessage(validationPrompt)})
	return err == nil
}

func (p *openAICompatProvider) request(history []domain.Message, stream bool) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Role == domain.RoleAI {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	return openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: float32(p.settings.Temperature),
		MaxTokens:   p.settings.MaxTokens,
		Stream:      stream,
	}
}

var _ ports.Provider = (*openAICompatProvider)(nil)
