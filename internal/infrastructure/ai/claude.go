package ai

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/omnichat/omnichat/internal/domain"
	"github.com/omnichat/omnichat/internal/ports"
)

// claudeProvider wraps the official Anthropic SDK.
type claudeProvider struct {
	descriptor domain.ProviderDescriptor
	model      string
	settings   domain.GenerationSettings
	client     anthropic.Client
}

// NewClaudeProvider builds a Claude adapter. The secret must already be
// resolved; an immediately-wrong key is only discovered on first Invoke.
func NewClaudeProvider(model string, settings domain.GenerationSettings, secret string) (ports.Provider, error) {
	return newClaudeProvider(model, settings, secret)
}

func newClaudeProvider(model string, settings domain.GenerationSettings, secret string, opts ...option.RequestOption) (ports.Provider, error) {
	descriptor := ClaudeDescriptor()
	if secret == "" {
		return nil, &domain.ConstructionError{ID: descriptor.ID, Err: fmt.Errorf("missing API key: set %s", descriptor.SecretEnvVar)}
	}
	if model == "" {
		model = descriptor.DefaultModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(secret)}, opts...)
	return &claudeProvider{
		descriptor: descriptor,
		model:      model,
		settings:   settings,
		client:     anthropic.NewClient(opts...),
	}, nil
}

func (p *claudeProvider) Descriptor() domain.ProviderDescriptor { return p.descriptor }
func (p *claudeProvider) ActiveModel() string                   { return p.model }
func (p *claudeProvider) AvailableModels() []domain.ModelInfo   { return p.descriptor.Models }

func (p *claudeProvider) Invoke(ctx context.Context, history []domain.Message) (domain.Message, error) {
	resp, err := p.client.Messages.New(ctx, p.params(history))
	if err != nil {
		return domain.Message{}, fmt.Errorf("claude: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	return domain.NewAIMessage(strings.TrimSpace(sb.String())), nil
}

func (p *claudeProvider) Stream(ctx context.Context, history []domain.Message) (<-chan ports.StreamChunk, error) {
	stream := p.client.Messages.NewStreaming(ctx, p.params(history))

	out := make(chan ports.StreamChunk)
	go func() {
		defer close(out)
		defer stream.Close()
		for stream.Next() {
			event := stream.Current()
			delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok {
				continue
			}
			text, ok := delta.Delta.AsAny().(anthropic.TextDelta)
			if !ok || text.Text == "" {
				continue
			}
			select {
			case out <- ports.StreamChunk{Content: text.Text}:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil {
			select {
			case out <- ports.StreamChunk{Err: fmt.Errorf("claude: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}

func (p *claudeProvider) ValidateSecret(ctx context.Context) bool {
	_, err := p.Invoke(ctx, []domain.Message{domain.NewHumanMessage(validationPrompt)})
	return err == nil
}

func (p *claudeProvider) params(history []domain.Message) anthropic.MessageNewParams {
	messages := make([]anthropic.MessageParam, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case domain.RoleAI:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   int64(p.settings.MaxTokens),
		Temperature: anthropic.Float(p.settings.Temperature),
		Messages:    messages,
	}
}

var _ ports.Provider = (*claudeProvider)(nil)
